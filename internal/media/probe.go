package media

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	ffprobe "gopkg.in/vansante/go-ffprobe.v2"

	"github.com/duskreel/clipper/internal/apierrors"
)

// ProbeResult is the subset of ffprobe's output the rest of the pipeline
// needs: duration, frame rate, and resolution (§4.1).
type ProbeResult struct {
	DurationS float64
	FPS       float64
	Width     int
	Height    int
}

// Probe extracts duration/fps/resolution via ffprobe. A freshly-downloaded
// file can transiently fail a first probe (still being synced to disk), so
// the call is retried with bounded exponential backoff.
func (c *Client) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if _, err := exec.LookPath(c.FFprobePath); err != nil {
		return ProbeResult{}, apierrors.New(apierrors.ToolchainMissing, "ffprobe binary not found", err)
	}
	ffprobe.SetFFProbeBinPath(c.FFprobePath)

	var data *ffprobe.ProbeData
	operation := func() error {
		probeCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
		var err error
		data, err = ffprobe.ProbeURL(probeCtx, path, "-loglevel", "error")
		return err
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 300 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = 10 * time.Second
	if err := backoff.Retry(operation, backoff.WithMaxRetries(b, 3)); err != nil {
		return ProbeResult{}, apierrors.New(apierrors.ToolchainError, "ffprobe failed", err)
	}

	vs := data.FirstVideoStream()
	if vs == nil {
		return ProbeResult{}, apierrors.New(apierrors.ToolchainError, "no video stream found", nil)
	}

	fps, err := parseFPS(vs.RFrameRate)
	if err != nil || fps == 0 {
		if fps2, err2 := parseFPS(vs.AvgFrameRate); err2 == nil && fps2 != 0 {
			fps = fps2
		} else if err != nil {
			return ProbeResult{}, apierrors.New(apierrors.ToolchainError, "failed to parse frame rate", err)
		}
	}

	duration := data.Format.DurationSeconds
	if duration == 0 {
		if d, err := strconv.ParseFloat(vs.Duration, 64); err == nil {
			duration = d
		}
	}

	return ProbeResult{
		DurationS: duration,
		FPS:       fps,
		Width:     vs.Width,
		Height:    vs.Height,
	}, nil
}

// parseFPS parses ffprobe's rational frame-rate form "num/den" (§4.1), which
// may also degenerate to "0/0" on a stream with no fixed rate.
func parseFPS(framerate string) (float64, error) {
	if framerate == "" {
		return 0, nil
	}
	parts := strings.SplitN(framerate, "/", 2)
	if len(parts) < 2 {
		return strconv.ParseFloat(framerate, 64)
	}
	num, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate numerator %q: %w", parts[0], err)
	}
	den, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid frame rate denominator %q: %w", parts[1], err)
	}
	if den == 0 {
		if num == 0 {
			return 0, nil
		}
		return 0, fmt.Errorf("frame rate denominator is 0 with nonzero numerator %v", num)
	}
	return num / den, nil
}
