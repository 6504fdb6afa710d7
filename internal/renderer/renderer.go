// Package renderer is the C8 orchestrator: for every (candidate, output
// aspect) pair in a render submission, composes the filter graph, transcodes
// the clip, and uploads it — preserving whatever outputs already succeeded
// if a later pair fails, instead of discarding them.
package renderer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/captions"
	"github.com/duskreel/clipper/internal/db"
	"github.com/duskreel/clipper/internal/filtergraph"
	"github.com/duskreel/clipper/internal/media"
	"github.com/duskreel/clipper/internal/models"
	"github.com/duskreel/clipper/internal/storage"
)

type Dependencies struct {
	DB         *db.DB
	Storage    *storage.Storage
	Media      *media.Client
	ScratchDir string
	FontPath   string

	// Concurrency bounds how many (candidate, aspect) outputs transcode at
	// once within a single render job.
	Concurrency int
}

type Orchestrator struct {
	deps Dependencies
}

func New(deps Dependencies) *Orchestrator {
	return &Orchestrator{deps: deps}
}

// outputTask is one (candidate, aspect) pair to transcode and upload.
type outputTask struct {
	candidate *models.Candidate
	videoPath string
	words     []models.Word
	aspect    models.Aspect
}

// Run executes one render job end to end. The caller is responsible for the
// pending->processing CAS (db.TryStartRender) before invoking Run. Candidate
// outputs fan out across a bounded worker pool since each (candidate,
// aspect) pair transcodes independently once its source video is staged.
func (o *Orchestrator) Run(ctx context.Context, render *models.Render, params models.RenderParams) error {
	scratch := filepath.Join(o.deps.ScratchDir, "render_"+render.ID.String())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return o.fail(ctx, render, models.JSONB{}, apierrors.New(apierrors.StorageError, "failed to create scratch dir", err))
	}
	defer os.RemoveAll(scratch)

	files := models.JSONB{}

	videoCache := map[uuid.UUID]string{}
	var tasks []outputTask
	for _, candID := range params.CandidateIDs {
		cand, err := o.deps.DB.GetCandidate(ctx, candID)
		if err != nil {
			return o.fail(ctx, render, files, err)
		}
		video, err := o.deps.DB.GetVideo(ctx, cand.VideoID)
		if err != nil {
			return o.fail(ctx, render, files, err)
		}

		var words []models.Word
		if params.Captions {
			if t, err := o.deps.DB.GetTranscriptForVideo(ctx, cand.VideoID); err == nil {
				words = t.Words
			}
		}

		videoPath, ok := videoCache[video.ID]
		if !ok {
			videoPath = filepath.Join(scratch, video.ID.String()+".mp4")
			data, err := o.deps.Storage.Download(ctx, video.SourceBlobKey)
			if err != nil {
				return o.fail(ctx, render, files, err)
			}
			if err := os.WriteFile(videoPath, data, 0o644); err != nil {
				return o.fail(ctx, render, files, apierrors.New(apierrors.StorageError, "failed to write scratch video", err))
			}
			videoCache[video.ID] = videoPath
		}

		for _, aspect := range params.Outputs {
			tasks = append(tasks, outputTask{candidate: cand, videoPath: videoPath, words: words, aspect: aspect})
		}
	}

	concurrency := o.deps.Concurrency
	if concurrency <= 0 {
		concurrency = 2
	}

	var mu sync.Mutex
	completed := 0
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, concurrency)

	for _, task := range tasks {
		task := task
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			cancelled, err := o.deps.DB.IsRenderCancelled(gctx, render.ID)
			if err != nil {
				return err
			}
			if cancelled {
				return apierrors.New(apierrors.CancelledErr, "render cancelled", nil)
			}

			candID := task.candidate.ID
			outPath := filepath.Join(scratch, fmt.Sprintf("%s_%s.mp4", candID, task.aspect.Sanitized()))
			graph, err := buildGraph(task.candidate, task.words, params, task.aspect, o.deps.FontPath)
			if err != nil {
				return err
			}
			spec := media.TranscodeSpec{
				InputPath: task.videoPath, OutputPath: outPath,
				StartS: task.candidate.StartS, DurationS: task.candidate.EndS - task.candidate.StartS,
				Graph: graph,
			}
			if _, err := o.deps.Media.Transcode(gctx, spec); err != nil {
				return err
			}
			outData, err := os.ReadFile(outPath)
			if err != nil {
				return apierrors.New(apierrors.StorageError, "failed to read render output", err)
			}
			key := fmt.Sprintf("renders/%s/%s_%s.mp4", render.ID, candID, task.aspect.Sanitized())
			if err := o.deps.Storage.Upload(gctx, key, outData, "video/mp4"); err != nil {
				return err
			}
			os.Remove(outPath)

			mu.Lock()
			candFiles, ok := files[candID.String()].(models.JSONB)
			if !ok {
				candFiles = models.JSONB{}
			}
			candFiles[string(task.aspect)] = key
			files[candID.String()] = candFiles
			completed++
			progress := 100 * completed / len(tasks)
			mu.Unlock()

			return o.deps.DB.UpdateRenderProgress(gctx, render.ID, progress)
		})
	}

	if err := g.Wait(); err != nil {
		return o.fail(ctx, render, files, err)
	}

	return o.deps.DB.CompleteRender(ctx, render.ID, files)
}

// fail marks the render failed, keeping files as whatever outputs were
// already uploaded — the original implementation overwrote this with an
// empty map on the first mid-render failure, discarding completed work.
func (o *Orchestrator) fail(ctx context.Context, render *models.Render, files models.JSONB, err error) error {
	_ = o.deps.DB.FailRender(ctx, render.ID, files, err.Error())
	return err
}

func buildGraph(cand *models.Candidate, words []models.Word, params models.RenderParams, aspect models.Aspect, fontPath string) (filtergraph.Graph, error) {
	w, h, ok := captions.CanvasSize(aspect)
	if !ok {
		return filtergraph.Graph{}, apierrors.New(apierrors.Validation, "unsupported output aspect: "+string(aspect), nil)
	}

	video := filtergraph.Chain{filtergraph.Scale{Width: w, Height: h}, filtergraph.Crop{Width: w, Height: h}}
	if params.Template == models.TemplateManga {
		video = append(video, filtergraph.Zoompan{Width: w, Height: h})
	}

	watermark := params.Watermark
	if watermark == "" {
		watermark = "@clipper"
	}
	video = append(video, filtergraph.DrawText{
		Text: watermark, FontFile: fontPath,
		Size: 24, Color: "white@0.6",
		X: "20", Y: "20",
		ShadowColor: "black@0.5", ShadowX: 2, ShadowY: 2,
	})

	if params.Captions {
		for _, n := range captions.Build(words, cand.StartS, cand.EndS, params.Template, aspect, fontPath) {
			video = append(video, n)
		}
	}

	loudness := params.Loudness
	if loudness == "" {
		loudness = "-14"
	}
	audio := filtergraph.Chain{
		filtergraph.Loudnorm{IntegratedLUFS: loudness, TruePeak: "-1", LRA: "11"},
		filtergraph.AFormat{SampleRate: 48000},
	}

	return filtergraph.Graph{Video: video, Audio: audio}, nil
}
