package media

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/filtergraph"
)

// TranscodeSpec composes the filter graph and timing for one renderer
// invocation (§4.7).
type TranscodeSpec struct {
	InputPath  string
	OutputPath string
	StartS     float64
	DurationS  float64
	Graph      filtergraph.Graph
}

// Transcode invokes ffmpeg with the composed filter graph and the renderer's
// fixed encoding settings: H.264 high profile yuv420p with faststart, AAC
// 128kbps (§4.7.2).
func (c *Client) Transcode(ctx context.Context, spec TranscodeSpec) (string, error) {
	if _, err := exec.LookPath(c.FFmpegPath); err != nil {
		return "", apierrors.New(apierrors.ToolchainMissing, "ffmpeg binary not found", err)
	}
	args := []string{
		"-ss", fmt.Sprintf("%f", spec.StartS),
		"-i", spec.InputPath,
		"-t", fmt.Sprintf("%f", spec.DurationS),
		"-filter_complex", spec.Graph.Serialize(),
		"-map", "[v]", "-map", "[a]",
		"-c:v", "libx264",
		"-preset", "fast",
		"-crf", "23",
		"-profile:v", "high",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		"-c:a", "aac",
		"-b:a", "128k",
		"-y", spec.OutputPath,
	}
	if _, err := c.ffmpeg(ctx, args...); err != nil {
		return "", err
	}
	return spec.OutputPath, nil
}
