package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobKind enumerates the two pipeline kinds a Job can run.
type JobKind string

const (
	JobKindAnalyze JobKind = "analyze"
	JobKindRender  JobKind = "render"
)

type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusCancelled  JobStatus = "cancelled"
)

// IsTerminal reports whether status is an absorbing state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

type Template string

const (
	TemplateClean   Template = "clean"
	TemplateManga   Template = "manga"
	TemplateImpact  Template = "impact"
	TemplateKaraoke Template = "karaoke"
)

type Aspect string

const (
	Aspect9x16 Aspect = "9:16"
	Aspect1x1  Aspect = "1:1"
	Aspect4x5  Aspect = "4:5"
)

// Sanitized returns the aspect with ':' replaced by 'x', per the blob-key
// layout ("renders/{render_id}/{candidate_id}_{aspect_sanitized}.mp4").
func (a Aspect) Sanitized() string {
	out := make([]byte, 0, len(a))
	for i := 0; i < len(a); i++ {
		if a[i] == ':' {
			out = append(out, 'x')
		} else {
			out = append(out, a[i])
		}
	}
	return string(out)
}

// JSONB is a free-form JSON map stored in a single JSONB column.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	PwHash    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type Video struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	SourceBlobKey   string    `json:"source_blob_key"`
	Title           string    `json:"title"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	Resolution      *string   `json:"resolution,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// Job is one attempt at running a pipeline (analyze or render) against a video.
type Job struct {
	ID        uuid.UUID `json:"id"`
	VideoID   uuid.UUID `json:"video_id"`
	Kind      JobKind   `json:"kind"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Logs      JSONB     `json:"logs"`
	CreatedAt time.Time `json:"created_at"`
}

// Word is a single transcript token with word-level timing.
type Word struct {
	Word       string  `json:"word"`
	StartS     float64 `json:"start_s"`
	EndS       float64 `json:"end_s"`
	Confidence float64 `json:"confidence"`
}

type Transcript struct {
	ID      uuid.UUID `json:"id"`
	VideoID uuid.UUID `json:"video_id"`
	Lang    string    `json:"lang"`
	Words   []Word    `json:"words"`
}

// Value/Scan let []Word round-trip through a single JSONB column.
type WordList []Word

func (w WordList) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	return json.Marshal(w)
}

func (w *WordList) Scan(value interface{}) error {
	if value == nil {
		*w = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, w)
}

// Candidate is a scored time interval proposed as a clip.
type Candidate struct {
	ID           uuid.UUID `json:"id"`
	VideoID      uuid.UUID `json:"video_id"`
	StartS       float64   `json:"start_s"`
	EndS         float64   `json:"end_s"`
	Score        float64   `json:"score"`
	Features     JSONB     `json:"features"`
	ThumbBlobKey *string   `json:"thumb_blob_key,omitempty"`
}

// Render is both the render submission and its own job record: §6's status
// observation contract exposes {id, status, progress, files, created_at} for
// a Render the same way it does {id, status, progress, logs, created_at} for
// a Job, so Render tracks progress directly rather than through a Job row.
type Render struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Params    JSONB     `json:"params"`
	Status    JobStatus `json:"status"`
	Progress  int       `json:"progress"`
	Files     JSONB     `json:"files"` // candidate_id -> aspect -> blob_key
	CreatedAt time.Time `json:"created_at"`
}

// RenderParams is the typed view of Render.Params, as submitted at §6's
// render contract.
type RenderParams struct {
	CandidateIDs []uuid.UUID `json:"candidate_ids"`
	Template     Template    `json:"template"`
	Outputs      []Aspect    `json:"outputs"`
	Watermark    string      `json:"watermark"`
	Loudness     string      `json:"loudness"`
	Captions     bool        `json:"captions"`
}

// AnalyzeTargets is the typed view of an analyze job's configuration,
// submitted at §6's analyze contract.
type AnalyzeTargets struct {
	ClipMinSeconds     float64  `json:"clip_min_s"`
	ClipMaxSeconds     float64  `json:"clip_max_s"`
	TargetSeconds      float64  `json:"target_s"`
	CandidatesPerMinute float64 `json:"candidates_per_minute"`
	MaxCandidates      int      `json:"max_candidates"`
	Keywords           []string `json:"keywords"`
}
