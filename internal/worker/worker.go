// Package worker dequeues analyze/render jobs and dispatches them to the
// analyzer/renderer orchestrators, performing the CAS idempotency guard and
// wall-clock timeout enforcement the orchestrators themselves don't handle.
package worker

import (
	"context"
	"log"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"

	"github.com/duskreel/clipper/internal/analyzer"
	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/db"
	cliplog "github.com/duskreel/clipper/internal/log"
	"github.com/duskreel/clipper/internal/models"
	"github.com/duskreel/clipper/internal/queue"
	"github.com/duskreel/clipper/internal/renderer"
)

type Worker struct {
	db       *db.DB
	queue    *queue.Queue
	analyzer *analyzer.Orchestrator
	renderer *renderer.Orchestrator
	clock    clock.Clock

	hardTimeout time.Duration
	softWarning time.Duration

	// toolchainSem bounds how many dequeued jobs (analyze and render
	// together) are dispatched at once; it is held for a job's whole run.
	toolchainSem chan struct{}
}

func New(database *db.DB, q *queue.Queue, az *analyzer.Orchestrator, rd *renderer.Orchestrator, hardTimeout, softWarning time.Duration, toolchainConcurrency int) *Worker {
	if toolchainConcurrency <= 0 {
		toolchainConcurrency = 2
	}
	return &Worker{
		db:           database,
		queue:        q,
		analyzer:     az,
		renderer:     rd,
		clock:        clock.New(),
		hardTimeout:  hardTimeout,
		softWarning:  softWarning,
		toolchainSem: make(chan struct{}, toolchainConcurrency),
	}
}

// Start launches concurrency workers per pipeline kind, each looping on its
// own blocking dequeue until ctx is cancelled.
func (w *Worker) Start(ctx context.Context, concurrency int) {
	log.Printf("worker started with concurrency %d", concurrency)
	for i := 0; i < concurrency; i++ {
		go w.loop(ctx, models.JobKindAnalyze)
		go w.loop(ctx, models.JobKindRender)
	}
	<-ctx.Done()
	log.Println("worker shutting down")
}

func (w *Worker) loop(ctx context.Context, kind models.JobKind) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := w.queue.Dequeue(ctx, kind, 5*time.Second)
		if err != nil {
			log.Printf("dequeue %s error: %v", kind, err)
			continue
		}
		if msg == nil {
			continue
		}

		select {
		case w.toolchainSem <- struct{}{}:
		case <-ctx.Done():
			return
		}
		func() {
			defer func() { <-w.toolchainSem }()
			w.dispatch(ctx, msg)
		}()
	}
}

func (w *Worker) dispatch(ctx context.Context, msg *queue.Message) {
	runCtx, cancel := context.WithTimeout(ctx, w.hardTimeout)
	defer cancel()

	warnTimer := w.clock.Timer(w.softWarning)
	defer warnTimer.Stop()
	go func() {
		select {
		case <-warnTimer.C:
			cliplog.Log(msg.ID.String(), "exceeded soft warning threshold", "kind", msg.Kind)
		case <-runCtx.Done():
		}
	}()

	switch msg.Kind {
	case models.JobKindAnalyze:
		w.runAnalyze(runCtx, msg.ID)
	case models.JobKindRender:
		w.runRender(runCtx, msg.ID)
	default:
		log.Printf("unknown queue message kind %q for id %s", msg.Kind, msg.ID)
	}
}

func (w *Worker) runAnalyze(ctx context.Context, jobID uuid.UUID) {
	id := jobID.String()
	ok, err := w.db.TryStartJob(ctx, jobID)
	if err != nil {
		cliplog.LogError(id, "analyze CAS failed", err)
		return
	}
	if !ok {
		return // redelivered message observing a non-pending job: drop it
	}

	job, err := w.db.GetJob(ctx, jobID)
	if err != nil {
		cliplog.LogError(id, "failed to load job", err)
		return
	}
	video, err := w.db.GetVideo(ctx, job.VideoID)
	if err != nil {
		_ = w.db.FailJob(ctx, jobID, err.Error())
		return
	}

	targets := analyzeTargetsFromLogs(job.Logs)
	if err := w.analyzer.Run(ctx, job, video, targets); err != nil {
		if !apierrors.Is(err, apierrors.CancelledErr) {
			cliplog.LogError(id, "analyze failed", err)
		}
	}
}

func (w *Worker) runRender(ctx context.Context, renderID uuid.UUID) {
	id := renderID.String()
	ok, err := w.db.TryStartRender(ctx, renderID)
	if err != nil {
		cliplog.LogError(id, "render CAS failed", err)
		return
	}
	if !ok {
		return
	}

	render, err := w.db.GetRender(ctx, renderID)
	if err != nil {
		cliplog.LogError(id, "failed to load render", err)
		return
	}

	params := renderParamsFromJSONB(render.Params)
	if err := w.renderer.Run(ctx, render, params); err != nil {
		if !apierrors.Is(err, apierrors.CancelledErr) {
			cliplog.LogError(id, "render failed", err)
		}
	}
}
