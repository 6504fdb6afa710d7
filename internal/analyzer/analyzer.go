// Package analyzer is the C6 orchestrator: downloads a video, probes it,
// transcribes its audio, runs the three signal extractors, scores and
// persists candidates, and generates their thumbnails — reporting progress
// and honoring cooperative cancellation at each milestone along the way.
package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/candidates"
	"github.com/duskreel/clipper/internal/db"
	"github.com/duskreel/clipper/internal/media"
	"github.com/duskreel/clipper/internal/models"
	"github.com/duskreel/clipper/internal/signal"
	"github.com/duskreel/clipper/internal/storage"
	"github.com/duskreel/clipper/internal/transcript"
)

// the fixed milestone sequence from §4.5.
const (
	stepDownloading         = "downloading"
	stepAnalyzingMetadata   = "analyzing_metadata"
	stepTranscribing        = "transcribing"
	stepDetectingScenes     = "detecting_scenes"
	stepAnalyzingMotion     = "analyzing_motion"
	stepAnalyzingAudio      = "analyzing_audio"
	stepGeneratingCandidates = "generating_candidates"
	stepCreatingThumbnails  = "creating_thumbnails"
)

type Dependencies struct {
	DB         *db.DB
	Storage    *storage.Storage
	Media      *media.Client
	Signals    *signal.Client
	Transcript *transcript.Producer

	ScratchDir         string
	SceneSampleEveryN  int
	MotionSampleEveryN int
	SceneThreshold     float64
}

type Orchestrator struct {
	deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// Run executes one analyze job end to end. The caller is responsible for
// the pending->processing CAS (db.TryStartJob) before invoking Run.
func (o *Orchestrator) Run(ctx context.Context, job *models.Job, video *models.Video, targets models.AnalyzeTargets) error {
	scratch := filepath.Join(o.deps.ScratchDir, job.ID.String())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return o.fail(ctx, job, apierrors.New(apierrors.StorageError, "failed to create scratch dir", err))
	}
	defer os.RemoveAll(scratch)

	milestone := func(progress int, step string) error {
		cancelled, err := o.deps.DB.IsCancelled(ctx, job.ID)
		if err != nil {
			return err
		}
		if cancelled {
			return apierrors.New(apierrors.CancelledErr, "job cancelled at "+step, nil)
		}
		return o.deps.DB.UpdateJobProgress(ctx, job.ID, progress, step)
	}

	if err := milestone(5, stepDownloading); err != nil {
		return o.fail(ctx, job, err)
	}
	videoPath := filepath.Join(scratch, "source.mp4")
	data, err := o.deps.Storage.Download(ctx, video.SourceBlobKey)
	if err != nil {
		return o.fail(ctx, job, err)
	}
	if err := os.WriteFile(videoPath, data, 0o644); err != nil {
		return o.fail(ctx, job, apierrors.New(apierrors.StorageError, "failed to write scratch video", err))
	}

	if err := milestone(10, stepAnalyzingMetadata); err != nil {
		return o.fail(ctx, job, err)
	}
	probe, err := o.deps.Media.Probe(ctx, videoPath)
	if err != nil {
		return o.fail(ctx, job, err)
	}
	resolution := fmt.Sprintf("%dx%d", probe.Width, probe.Height)
	if err := o.deps.DB.UpdateVideoProbe(ctx, video.ID, probe.DurationS, resolution); err != nil {
		return o.fail(ctx, job, err)
	}

	if err := milestone(20, stepTranscribing); err != nil {
		return o.fail(ctx, job, err)
	}
	audioPath := filepath.Join(scratch, "audio.wav")
	if err := o.deps.Media.ExtractAudio(ctx, videoPath, audioPath); err != nil {
		return o.fail(ctx, job, err)
	}
	lang, words, err := o.deps.Transcript.Transcribe(ctx, audioPath, "auto")
	if err != nil {
		return o.fail(ctx, job, err)
	}
	t := &models.Transcript{ID: uuid.New(), VideoID: video.ID, Lang: lang, Words: words}
	if err := o.deps.DB.CreateTranscript(ctx, t); err != nil {
		return o.fail(ctx, job, err)
	}

	if err := milestone(40, stepDetectingScenes); err != nil {
		return o.fail(ctx, job, err)
	}
	scenes, err := o.deps.Signals.DetectSceneBoundaries(ctx, videoPath, probe.FPS, probe.DurationS,
		o.deps.SceneSampleEveryN, o.deps.SceneThreshold)
	if err != nil {
		return o.fail(ctx, job, err)
	}

	if err := milestone(55, stepAnalyzingMotion); err != nil {
		return o.fail(ctx, job, err)
	}
	motion, err := o.deps.Signals.ComputeMotionScores(ctx, videoPath, probe.FPS, o.deps.MotionSampleEveryN)
	if err != nil {
		return o.fail(ctx, job, err)
	}

	if err := milestone(70, stepAnalyzingAudio); err != nil {
		return o.fail(ctx, job, err)
	}
	audio, err := o.deps.Signals.ComputeAudioEnergy(ctx, audioPath, probe.DurationS)
	if err != nil {
		return o.fail(ctx, job, err)
	}

	if err := milestone(80, stepGeneratingCandidates); err != nil {
		return o.fail(ctx, job, err)
	}
	cfg := candidates.Config{
		ClipMinS:      targets.ClipMinSeconds,
		ClipMaxS:      targets.ClipMaxSeconds,
		TargetS:       targets.TargetSeconds,
		MaxCandidates: targets.MaxCandidates,
		Keywords:      targets.Keywords,
		Weights:       candidates.DefaultWeights(),
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 20
	}
	scored := candidates.GenerateAndScore(scenes, probe.DurationS, words, motion, audio, cfg)

	if err := milestone(90, stepCreatingThumbnails); err != nil {
		return o.fail(ctx, job, err)
	}
	for idx, s := range scored {
		thumbPath := filepath.Join(scratch, fmt.Sprintf("thumb_%d.jpg", idx))
		mid := (s.StartS + s.EndS) / 2
		if err := o.deps.Media.ExtractFrame(ctx, videoPath, mid, thumbPath); err != nil {
			return o.fail(ctx, job, err)
		}
		thumbData, err := os.ReadFile(thumbPath)
		if err != nil {
			return o.fail(ctx, job, apierrors.New(apierrors.StorageError, "failed to read thumbnail", err))
		}
		key := fmt.Sprintf("thumbnails/%s_%d.jpg", video.ID, idx)
		if err := o.deps.Storage.Upload(ctx, key, thumbData, "image/jpeg"); err != nil {
			return o.fail(ctx, job, err)
		}

		features := models.JSONB{}
		for k, v := range s.Features {
			features[k] = v
		}
		candidateKey := key
		cand := &models.Candidate{
			ID: uuid.New(), VideoID: video.ID,
			StartS: s.StartS, EndS: s.EndS, Score: s.Score,
			Features: features, ThumbBlobKey: &candidateKey,
		}
		if err := o.deps.DB.CreateCandidate(ctx, cand); err != nil {
			return o.fail(ctx, job, err)
		}
	}

	cancelled, err := o.deps.DB.IsCancelled(ctx, job.ID)
	if err != nil {
		return o.fail(ctx, job, err)
	}
	if cancelled {
		return o.fail(ctx, job, apierrors.New(apierrors.CancelledErr, "job cancelled before completion", nil))
	}
	return o.deps.DB.CompleteJob(ctx, job.ID)
}

// fail marks the job failed and writes the error to logs.error. Candidates
// and the transcript persisted by earlier steps are left in place — §7's
// propagation policy does not roll back partial results.
func (o *Orchestrator) fail(ctx context.Context, job *models.Job, err error) error {
	_ = o.deps.DB.FailJob(ctx, job.ID, err.Error())
	return err
}
