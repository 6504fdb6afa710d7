// Package log provides structured logfmt logging keyed by job id, following
// the same memoized-logger-per-key shape the wider media-pipeline pack uses
// for request-scoped logging.
package log

import (
	"os"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/patrickmn/go-cache"
)

var (
	loggerCache  *cache.Cache
	cacheExpiry  = 6 * time.Hour
	cleanupEvery = 10 * time.Minute
)

func init() {
	loggerCache = cache.New(cacheExpiry, cleanupEvery)
}

// Log writes a single log line tagged with jobID, message, and keyvals.
func Log(jobID string, message string, keyvals ...interface{}) {
	_ = kitlog.With(getLogger(jobID), "msg", message).Log(keyvals...)
}

// LogError is Log plus an "err" keyval carrying err.Error().
func LogError(jobID string, message string, err error, keyvals ...interface{}) {
	l := kitlog.With(getLogger(jobID), "msg", message, "err", err.Error())
	_ = l.Log(keyvals...)
}

// LogNoJobID logs in contexts with no job to tag (HTTP middleware, startup).
func LogNoJobID(message string, keyvals ...interface{}) {
	_ = kitlog.With(newLogger(), "msg", message).Log(keyvals...)
}

func getLogger(jobID string) kitlog.Logger {
	if l, found := loggerCache.Get(jobID); found {
		return l.(kitlog.Logger)
	}
	l := kitlog.With(newLogger(), "job_id", jobID)
	_ = loggerCache.Add(jobID, l, cacheExpiry)
	return l
}

func newLogger() kitlog.Logger {
	base := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr))
	return kitlog.With(base, "ts", kitlog.DefaultTimestampUTC)
}
