package api

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/duskreel/clipper/internal/db"
	"github.com/duskreel/clipper/internal/models"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &Handler{DB: &db.DB{DB: sqlDB}, MaxConcurrentRenders: 2}, mock
}

// withURLParams attaches the chi route params a matched route would set,
// e.g. {"id": videoID, "aspect": "9x16"}.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestHealthReturnsOK(t *testing.T) {
	h := &Handler{}
	rr := httptest.NewRecorder()
	h.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestCreateVideoRejectsMissingSourceBlobKey(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/videos", bytes.NewBufferString(`{"title":"no key"}`))
	rr := httptest.NewRecorder()

	h.CreateVideo(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCreateVideoPersistsAndReturns201(t *testing.T) {
	h, mock := newTestHandler(t)
	mock.ExpectQuery(`INSERT INTO videos`).WillReturnRows(
		sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()),
	)

	body := `{"owner_id":"` + uuid.New().String() + `","source_blob_key":"raw/video.mp4","title":"ep1"}`
	req := httptest.NewRequest(http.MethodPost, "/videos", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.CreateVideo(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVideoNotFoundMapsTo404(t *testing.T) {
	h, mock := newTestHandler(t)
	id := uuid.New()
	mock.ExpectQuery(`FROM videos WHERE id = \$1`).WithArgs(id.String()).WillReturnError(sql.ErrNoRows)

	req := httptest.NewRequest(http.MethodGet, "/videos/"+id.String(), nil)
	req = withURLParams(req, map[string]string{"id": id.String()})
	rr := httptest.NewRecorder()

	h.GetVideo(rr, req)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSubmitAnalyzeRejectsWhenNonTerminalJobExists(t *testing.T) {
	h, mock := newTestHandler(t)
	videoID := uuid.New()

	mock.ExpectQuery(`FROM videos WHERE id = \$1`).WithArgs(videoID.String()).WillReturnRows(
		sqlmock.NewRows([]string{"id", "owner_id", "source_blob_key", "title", "duration_seconds", "resolution", "created_at"}).
			AddRow(videoID.String(), uuid.New().String(), "raw/v.mp4", "t", nil, nil, time.Now()),
	)
	mock.ExpectQuery(`SELECT EXISTS`).WillReturnRows(
		sqlmock.NewRows([]string{"exists"}).AddRow(true),
	)

	req := httptest.NewRequest(http.MethodPost, "/videos/"+videoID.String()+"/analyze", bytes.NewBufferString(`{}`))
	req = withURLParams(req, map[string]string{"id": videoID.String()})
	rr := httptest.NewRecorder()

	h.SubmitAnalyze(rr, req)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRenderRejectsPastConcurrencyCap(t *testing.T) {
	h, mock := newTestHandler(t)
	h.MaxConcurrentRenders = 1
	ownerID := uuid.New()

	mock.ExpectQuery(`SELECT COUNT`).WithArgs(ownerID.String(), sqlmock.AnyArg(), sqlmock.AnyArg()).WillReturnRows(
		sqlmock.NewRows([]string{"count"}).AddRow(1),
	)

	body := `{"owner_id":"` + ownerID.String() + `","candidate_ids":["` + uuid.New().String() + `"],"outputs":["9:16"]}`
	req := httptest.NewRequest(http.MethodPost, "/renders", bytes.NewBufferString(body))
	rr := httptest.NewRecorder()

	h.SubmitRender(rr, req)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmitRenderRejectsEmptyCandidateIDs(t *testing.T) {
	h, _ := newTestHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/renders", bytes.NewBufferString(`{"owner_id":"`+uuid.New().String()+`","outputs":["9:16"]}`))
	rr := httptest.NewRecorder()

	h.SubmitRender(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetRenderDownloadURLValidationWhenOutputMissing(t *testing.T) {
	h, mock := newTestHandler(t)
	renderID := uuid.New()
	candID := uuid.New()

	mock.ExpectQuery(`FROM renders WHERE id = \$1`).WithArgs(renderID.String()).WillReturnRows(
		sqlmock.NewRows([]string{"id", "owner_id", "params", "status", "progress", "files", "created_at"}).
			AddRow(renderID.String(), uuid.New().String(), []byte(`{}`), string(models.JobStatusProcessing), 10, []byte(`{}`), time.Now()),
	)

	req := httptest.NewRequest(http.MethodGet, "/renders/"+renderID.String()+"/download/"+candID.String()+"/9x16", nil)
	req = withURLParams(req, map[string]string{
		"id":          renderID.String(),
		"candidateId": candID.String(),
		"aspect":      "9x16",
	})
	rr := httptest.NewRecorder()

	h.GetRenderDownloadURL(rr, req)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}
