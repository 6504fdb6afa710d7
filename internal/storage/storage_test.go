package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/duskreel/clipper/internal/apierrors"
)

// fakeBucket is a minimal path-style S3 stand-in: enough of PutObject,
// GetObject and DeleteObject for the aws-sdk-go v1 client to round-trip
// against, without reaching out to a real object store.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucketServer() (*httptest.Server, *fakeBucket) {
	fb := &fakeBucket{objects: map[string][]byte{}}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		switch r.Method {
		case http.MethodPut:
			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			fb.mu.Lock()
			fb.objects[key] = body
			fb.mu.Unlock()
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			fb.mu.Lock()
			data, ok := fb.objects[key]
			fb.mu.Unlock()
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write(data)
		case http.MethodDelete:
			fb.mu.Lock()
			delete(fb.objects, key)
			fb.mu.Unlock()
			w.WriteHeader(http.StatusNoContent)
		case http.MethodHead:
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	return ts, fb
}

func newTestStorage(t *testing.T, endpoint string) *Storage {
	t.Helper()
	s, err := New("clipper-test", "us-east-1", endpoint, "test-access-key", "test-secret-key")
	require.NoError(t, err)
	return s
}

func TestUploadDownloadRoundTrips(t *testing.T) {
	ts, _ := newFakeBucketServer()
	defer ts.Close()

	s := newTestStorage(t, ts.URL)
	ctx := t.Context()

	require.NoError(t, s.Upload(ctx, "renders/abc.mp4", []byte("clip bytes"), "video/mp4"))

	data, err := s.Download(ctx, "renders/abc.mp4")
	require.NoError(t, err)
	require.Equal(t, "clip bytes", string(data))
}

func TestDownloadMissingKeyErrorsAsStorageError(t *testing.T) {
	ts, _ := newFakeBucketServer()
	defer ts.Close()

	s := newTestStorage(t, ts.URL)
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	_, err := s.Download(ctx, "does/not/exist.mp4")
	require.Error(t, err)
	require.True(t, apierrors.Is(err, apierrors.StorageError))
}

func TestDeleteRemovesObject(t *testing.T) {
	ts, fb := newFakeBucketServer()
	defer ts.Close()

	s := newTestStorage(t, ts.URL)
	ctx := t.Context()
	require.NoError(t, s.Upload(ctx, "thumbnails/1.jpg", []byte("jpg"), "image/jpeg"))
	require.NoError(t, s.Delete(ctx, "thumbnails/1.jpg"))

	fb.mu.Lock()
	_, ok := fb.objects["/clipper-test/thumbnails/1.jpg"]
	fb.mu.Unlock()
	require.False(t, ok)
}

func TestSignedURLIncludesExpiry(t *testing.T) {
	ts, _ := newFakeBucketServer()
	defer ts.Close()

	s := newTestStorage(t, ts.URL)
	url, err := s.SignedURL("renders/abc.mp4", 24*time.Hour)
	require.NoError(t, err)
	require.Contains(t, url, "renders/abc.mp4")
	require.Contains(t, url, "X-Amz-Expires")
}
