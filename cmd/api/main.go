package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/duskreel/clipper/internal/analyzer"
	"github.com/duskreel/clipper/internal/api"
	"github.com/duskreel/clipper/internal/config"
	"github.com/duskreel/clipper/internal/db"
	"github.com/duskreel/clipper/internal/media"
	"github.com/duskreel/clipper/internal/models"
	"github.com/duskreel/clipper/internal/queue"
	"github.com/duskreel/clipper/internal/renderer"
	sig "github.com/duskreel/clipper/internal/signal"
	"github.com/duskreel/clipper/internal/storage"
	"github.com/duskreel/clipper/internal/transcript"
	"github.com/duskreel/clipper/internal/worker"
)

func main() {
	log.Println("Starting Clipper API...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	stor, err := storage.New(cfg.ObjectStoreBucket, cfg.ObjectStoreRegion, cfg.ObjectStoreEndpoint,
		cfg.ObjectStoreAccessKey, cfg.ObjectStoreSecretKey)
	if err != nil {
		log.Fatalf("Failed to initialize object store: %v", err)
	}
	log.Println("Initialized object store")

	defaultTargets := models.AnalyzeTargets{
		ClipMinSeconds: cfg.DefaultClipMinSeconds,
		ClipMaxSeconds: cfg.DefaultClipMaxSeconds,
		TargetSeconds:  cfg.DefaultTargetSeconds,
		MaxCandidates:  cfg.DefaultMaxCandidates,
	}

	handler := &api.Handler{
		DB: database, Queue: q, Storage: stor,
		MaxConcurrentRenders: cfg.MaxConcurrentRenders,
		DefaultAnalyzeTargets: defaultTargets,
	}
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		mediaClient := media.New(cfg.FFmpegPath, cfg.FFprobePath)
		signalClient := sig.New(mediaClient)
		transcriptProducer := transcript.New(cfg.OpenAIKey)

		az := analyzer.New(analyzer.Dependencies{
			DB: database, Storage: stor, Media: mediaClient,
			Signals: signalClient, Transcript: transcriptProducer,
			ScratchDir:         cfg.ScratchDir,
			SceneSampleEveryN:  cfg.DefaultSceneSampleEveryN,
			MotionSampleEveryN: cfg.DefaultMotionSampleEveryN,
			SceneThreshold:     cfg.DefaultSceneThreshold,
		})
		rd := renderer.New(renderer.Dependencies{
			DB: database, Storage: stor, Media: mediaClient,
			ScratchDir: cfg.ScratchDir, FontPath: cfg.FontPath,
			Concurrency: cfg.RenderFanoutConcurrency,
		})

		w := worker.New(database, q, az, rd, cfg.JobHardTimeout, cfg.JobSoftWarning, cfg.WorkerConcurrency)

		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.WorkerConcurrency)
	}

	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if workerCancel != nil {
		workerCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
