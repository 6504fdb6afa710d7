// Package api is the HTTP surface (§6): submission endpoints with their
// admission checks, and status polling for jobs and renders. Pipeline logic
// itself lives entirely in the analyzer/renderer orchestrators — handlers
// only validate, check admission, persist, and enqueue.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/db"
	"github.com/duskreel/clipper/internal/models"
	"github.com/duskreel/clipper/internal/queue"
	"github.com/duskreel/clipper/internal/storage"
)

type Handler struct {
	DB      *db.DB
	Queue   *queue.Queue
	Storage *storage.Storage

	MaxConcurrentRenders int
	DefaultAnalyzeTargets models.AnalyzeTargets
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Videos -----------------------------------------------------------

type createVideoRequest struct {
	OwnerID       uuid.UUID `json:"owner_id"`
	SourceBlobKey string    `json:"source_blob_key"`
	Title         string    `json:"title"`
}

func (h *Handler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	var req createVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid request body", err))
		return
	}
	if req.SourceBlobKey == "" {
		respondError(w, apierrors.New(apierrors.Validation, "source_blob_key is required", nil))
		return
	}

	video := &models.Video{
		ID: uuid.New(), OwnerID: req.OwnerID,
		SourceBlobKey: req.SourceBlobKey, Title: req.Title,
	}
	if err := h.DB.CreateVideo(r.Context(), video); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, video)
}

func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid video id", err))
		return
	}
	video, err := h.DB.GetVideo(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, video)
}

// --- Analyze jobs -------------------------------------------------------

type submitAnalyzeRequest struct {
	ClipMinSeconds float64  `json:"clip_min_s"`
	ClipMaxSeconds float64  `json:"clip_max_s"`
	TargetSeconds  float64  `json:"target_s"`
	MaxCandidates  int      `json:"max_candidates"`
	Keywords       []string `json:"keywords"`
}

// SubmitAnalyze implements §6's analyze submission: rejects admission when
// the video already has a non-terminal analyze job (Conflict).
func (h *Handler) SubmitAnalyze(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid video id", err))
		return
	}

	if _, err := h.DB.GetVideo(r.Context(), videoID); err != nil {
		respondError(w, err)
		return
	}

	exists, err := h.DB.HasNonTerminalAnalyzeJob(r.Context(), videoID)
	if err != nil {
		respondError(w, apierrors.New(apierrors.DatabaseError, "admission check failed", err))
		return
	}
	if exists {
		respondError(w, apierrors.New(apierrors.Conflict, "video already has a non-terminal analyze job", nil))
		return
	}

	var req submitAnalyzeRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	targets := h.DefaultAnalyzeTargets
	if req.ClipMinSeconds > 0 {
		targets.ClipMinSeconds = req.ClipMinSeconds
	}
	if req.ClipMaxSeconds > 0 {
		targets.ClipMaxSeconds = req.ClipMaxSeconds
	}
	if req.TargetSeconds > 0 {
		targets.TargetSeconds = req.TargetSeconds
	}
	if req.MaxCandidates > 0 {
		targets.MaxCandidates = req.MaxCandidates
	}
	if len(req.Keywords) > 0 {
		targets.Keywords = req.Keywords
	}

	cfgJSON, err := toJSONB(targets)
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "failed to encode analyze config", err))
		return
	}

	job := &models.Job{
		ID: uuid.New(), VideoID: videoID,
		Kind: models.JobKindAnalyze, Status: models.JobStatusPending,
		Logs: models.JSONB{"config": cfgJSON},
	}
	if err := h.DB.CreateJob(r.Context(), job); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Queue.Enqueue(r.Context(), models.JobKindAnalyze, job.ID, queue.PriorityNormal); err != nil {
		respondError(w, apierrors.New(apierrors.DatabaseError, "failed to enqueue analyze job", err))
		return
	}
	respondJSON(w, http.StatusAccepted, job)
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid job id", err))
		return
	}
	job, err := h.DB.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, job)
}

func (h *Handler) CancelJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid job id", err))
		return
	}
	if err := h.DB.CancelJob(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RetryJob clones a failed job's config into a fresh pending job (§7).
func (h *Handler) RetryJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid job id", err))
		return
	}
	original, err := h.DB.GetJob(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	clone, err := h.DB.CloneFailedJob(r.Context(), original)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.Queue.Enqueue(r.Context(), models.JobKindAnalyze, clone.ID, queue.PriorityHigh); err != nil {
		respondError(w, apierrors.New(apierrors.DatabaseError, "failed to enqueue retried job", err))
		return
	}
	respondJSON(w, http.StatusAccepted, clone)
}

// --- Candidates ---------------------------------------------------------

func (h *Handler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid video id", err))
		return
	}
	candidates, err := h.DB.ListCandidatesForVideo(r.Context(), videoID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, candidates)
}

// --- Renders --------------------------------------------------------------

type submitRenderRequest struct {
	OwnerID      uuid.UUID       `json:"owner_id"`
	CandidateIDs []uuid.UUID     `json:"candidate_ids"`
	Template     models.Template `json:"template"`
	Outputs      []models.Aspect `json:"outputs"`
	Watermark    string          `json:"watermark"`
	Loudness     string          `json:"loudness"`
	Captions     bool            `json:"captions"`
}

// SubmitRender implements §6's render submission: rejects admission past
// the per-owner concurrent-render cap (TooManyRequests).
func (h *Handler) SubmitRender(w http.ResponseWriter, r *http.Request) {
	var req submitRenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid request body", err))
		return
	}
	if len(req.CandidateIDs) == 0 {
		respondError(w, apierrors.New(apierrors.Validation, "candidate_ids is required", nil))
		return
	}
	if len(req.Outputs) == 0 {
		respondError(w, apierrors.New(apierrors.Validation, "outputs is required", nil))
		return
	}

	active, err := h.DB.CountActiveRendersForOwner(r.Context(), req.OwnerID)
	if err != nil {
		respondError(w, err)
		return
	}
	if active >= h.MaxConcurrentRenders {
		respondError(w, apierrors.New(apierrors.TooManyRequests, "owner has reached the concurrent render limit", nil))
		return
	}

	params := models.RenderParams{
		CandidateIDs: req.CandidateIDs, Template: req.Template, Outputs: req.Outputs,
		Watermark: req.Watermark, Loudness: req.Loudness, Captions: req.Captions,
	}
	paramsJSON, err := toJSONB(params)
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "failed to encode render params", err))
		return
	}

	render := &models.Render{
		ID: uuid.New(), OwnerID: req.OwnerID,
		Params: paramsJSON, Status: models.JobStatusPending,
	}
	if err := h.DB.CreateRender(r.Context(), render); err != nil {
		respondError(w, err)
		return
	}
	if err := h.Queue.Enqueue(r.Context(), models.JobKindRender, render.ID, queue.PriorityNormal); err != nil {
		respondError(w, apierrors.New(apierrors.DatabaseError, "failed to enqueue render job", err))
		return
	}
	respondJSON(w, http.StatusAccepted, render)
}

func (h *Handler) GetRender(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid render id", err))
		return
	}
	render, err := h.DB.GetRender(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, render)
}

func (h *Handler) CancelRender(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid render id", err))
		return
	}
	if err := h.DB.CancelRender(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRenderDownloadURL mints a 24-hour signed URL for one rendered output
// (§6). Validation if the render hasn't produced that file yet.
func (h *Handler) GetRenderDownloadURL(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, apierrors.New(apierrors.Validation, "invalid render id", err))
		return
	}
	candidateID := chi.URLParam(r, "candidateId")
	aspect := chi.URLParam(r, "aspect")

	render, err := h.DB.GetRender(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	candFilesRaw, ok := render.Files[candidateID]
	if !ok {
		respondError(w, apierrors.New(apierrors.Validation, "render has no outputs for that candidate yet", nil))
		return
	}
	candFiles, ok := candFilesRaw.(map[string]interface{})
	if !ok {
		respondError(w, apierrors.New(apierrors.Validation, "render has no outputs for that candidate yet", nil))
		return
	}
	keyRaw, ok := candFiles[aspect]
	if !ok {
		respondError(w, apierrors.New(apierrors.Validation, "render has no output for that aspect yet", nil))
		return
	}
	key, ok := keyRaw.(string)
	if !ok {
		respondError(w, apierrors.New(apierrors.Validation, "render has no output for that aspect yet", nil))
		return
	}

	url, err := h.Storage.SignedURL(key, 24*time.Hour)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}

// --- helpers --------------------------------------------------------------

func toJSONB(v interface{}) (models.JSONB, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out models.JSONB
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, err error) {
	kind, ok := apierrors.KindOf(err)
	status := http.StatusInternalServerError
	if ok {
		switch kind {
		case apierrors.NotFound:
			status = http.StatusNotFound
		case apierrors.Forbidden:
			status = http.StatusForbidden
		case apierrors.Conflict:
			status = http.StatusConflict
		case apierrors.Validation:
			status = http.StatusBadRequest
		case apierrors.TooManyRequests:
			status = http.StatusTooManyRequests
		case apierrors.TimeoutErr:
			status = http.StatusGatewayTimeout
		}
	}
	respondJSON(w, status, map[string]string{"error": err.Error()})
}
