// Package media wraps the external ffmpeg/ffprobe toolchain (C1). Every
// operation shells out to a subprocess; none of it decodes pixels or audio
// samples in-process, matching the no-in-process-decoding constraint the
// rest of the pipeline (C4's signal extractors especially) relies on.
package media

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/duskreel/clipper/internal/apierrors"
)

// Client invokes ffmpeg/ffprobe at configured paths (which may be bare
// binary names resolved via PATH, or absolute paths in a locked-down
// deployment).
type Client struct {
	FFmpegPath  string
	FFprobePath string
}

func New(ffmpegPath, ffprobePath string) *Client {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Client{FFmpegPath: ffmpegPath, FFprobePath: ffprobePath}
}

// ffmpeg runs the configured ffmpeg binary, returning captured stdout bytes.
// A missing binary classifies as ToolchainMissing (§7); a non-zero exit or
// any other Run failure classifies as ToolchainError carrying ffmpeg's own
// stderr as the message.
func (c *Client) ffmpeg(ctx context.Context, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(c.FFmpegPath); err != nil {
		return nil, apierrors.New(apierrors.ToolchainMissing, "ffmpeg binary not found", err)
	}
	cmd := exec.CommandContext(ctx, c.FFmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, apierrors.New(apierrors.ToolchainError, stderr.String(), err)
	}
	return stdout.Bytes(), nil
}
