package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	APIPort            string
	WorkerEnabled      bool
	BackendAPIKey      string
	CorsAllowedOrigins string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Object store (S3-compatible)
	ObjectStoreBucket    string
	ObjectStoreRegion    string
	ObjectStoreEndpoint  string // non-empty for S3-compatible services other than AWS
	ObjectStoreAccessKey string
	ObjectStoreSecretKey string

	// Transcription
	OpenAIKey string

	// Media toolchain
	FFmpegPath  string
	FFprobePath string
	FontPath    string // bold TrueType font used for watermark/caption overlays
	ScratchDir  string

	// Worker
	WorkerConcurrency    int
	JobHardTimeout       time.Duration
	JobSoftWarning       time.Duration
	MaxConcurrentRenders int // per-owner cap on non-terminal renders
	RenderFanoutConcurrency int // per-render-job (candidate, aspect) transcode concurrency

	// Candidate generation defaults
	DefaultClipMinSeconds       float64
	DefaultClipMaxSeconds       float64
	DefaultTargetSeconds        float64
	DefaultMaxCandidates        int
	DefaultSceneThreshold       float64
	DefaultMotionSampleEveryN   int
	DefaultSceneSampleEveryN    int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "8080"),
		WorkerEnabled:      getEnvBool("WORKER_ENABLED", true),
		BackendAPIKey:      getEnv("BACKEND_API_KEY", ""),
		CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		ObjectStoreBucket:    getEnv("OBJECT_STORE_BUCKET", ""),
		ObjectStoreRegion:    getEnv("OBJECT_STORE_REGION", "us-east-1"),
		ObjectStoreEndpoint:  getEnv("OBJECT_STORE_ENDPOINT", ""),
		ObjectStoreAccessKey: getEnv("OBJECT_STORE_ACCESS_KEY", ""),
		ObjectStoreSecretKey: getEnv("OBJECT_STORE_SECRET_KEY", ""),

		OpenAIKey: getEnv("OPENAI_API_KEY", ""),

		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),
		FontPath:    getEnv("CAPTION_FONT_PATH", "assets/fonts/DejaVuSans-Bold.ttf"),
		ScratchDir:  getEnv("SCRATCH_DIR", "/tmp/clipper"),

		WorkerConcurrency:    getEnvInt("WORKER_CONCURRENCY", 4),
		JobHardTimeout:       time.Duration(getEnvInt("JOB_HARD_TIMEOUT_MINUTES", 65)) * time.Minute,
		JobSoftWarning:       time.Duration(getEnvInt("JOB_SOFT_WARNING_MINUTES", 60)) * time.Minute,
		MaxConcurrentRenders: getEnvInt("MAX_CONCURRENT_RENDERS_PER_OWNER", 3),
		RenderFanoutConcurrency: getEnvInt("RENDER_FANOUT_CONCURRENCY", 2),

		DefaultClipMinSeconds:     getEnvFloat("DEFAULT_CLIP_MIN_SECONDS", 15),
		DefaultClipMaxSeconds:     getEnvFloat("DEFAULT_CLIP_MAX_SECONDS", 60),
		DefaultTargetSeconds:      getEnvFloat("DEFAULT_TARGET_SECONDS", 30),
		DefaultMaxCandidates:      getEnvInt("DEFAULT_MAX_CANDIDATES", 20),
		DefaultSceneThreshold:     getEnvFloat("DEFAULT_SCENE_THRESHOLD", 0.3),
		DefaultMotionSampleEveryN: getEnvInt("DEFAULT_MOTION_SAMPLE_EVERY_N", 5),
		DefaultSceneSampleEveryN:  getEnvInt("DEFAULT_SCENE_SAMPLE_EVERY_N", 3),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.OpenAIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	if cfg.ObjectStoreBucket == "" {
		return nil, fmt.Errorf("OBJECT_STORE_BUCKET is required")
	}
	if cfg.ObjectStoreAccessKey == "" || cfg.ObjectStoreSecretKey == "" {
		return nil, fmt.Errorf("OBJECT_STORE_ACCESS_KEY and OBJECT_STORE_SECRET_KEY are required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
