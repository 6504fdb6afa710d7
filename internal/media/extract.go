package media

import (
	"context"
	"fmt"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"

	"github.com/duskreel/clipper/internal/apierrors"
)

// ExtractAudio produces mono 16kHz PCM WAV (§4.1), the format the transcript
// producer and the audio-energy signal both expect as input.
func (c *Client) ExtractAudio(ctx context.Context, videoPath, destPath string) error {
	_, err := c.ffmpeg(ctx, "-i", videoPath, "-vn", "-ar", "16000", "-ac", "1", "-y", destPath)
	return err
}

// ExtractFrame produces a single JPEG at t seconds via the fluent ffmpeg-go
// API, used for candidate thumbnails.
func (c *Client) ExtractFrame(ctx context.Context, videoPath string, t float64, destPath string) error {
	err := ffmpeg_go.Input(videoPath, ffmpeg_go.KwArgs{"ss": fmt.Sprintf("%f", t)}).
		Output(destPath, ffmpeg_go.KwArgs{"vframes": 1, "q:v": 2}).
		OverWriteOutput().
		WithContext(ctx).
		Silent(true).
		Run()
	if err != nil {
		return apierrors.New(apierrors.ToolchainError, "frame extraction failed", err)
	}
	return nil
}

// ExtractRawFrames decodes every Nth frame, downsampled to w x h RGB24, via
// an ffmpeg select+scale filter piped to rawvideo on stdout. The signal
// extractors do their own arithmetic over the returned bytes; they never
// decode a frame themselves.
func (c *Client) ExtractRawFrames(ctx context.Context, videoPath string, everyN, w, h int) ([]byte, error) {
	filter := fmt.Sprintf(`select='not(mod(n\,%d))',scale=%d:%d`, everyN, w, h)
	return c.ffmpeg(ctx, "-i", videoPath, "-vf", filter, "-vsync", "vfr", "-f", "rawvideo", "-pix_fmt", "rgb24", "-")
}

// ExtractRawGrayFrames is ExtractRawFrames with a grayscale pixel format,
// for the motion signal's frame differencing.
func (c *Client) ExtractRawGrayFrames(ctx context.Context, videoPath string, everyN, w, h int) ([]byte, error) {
	filter := fmt.Sprintf(`select='not(mod(n\,%d))',scale=%d:%d,format=gray`, everyN, w, h)
	return c.ffmpeg(ctx, "-i", videoPath, "-vf", filter, "-vsync", "vfr", "-f", "rawvideo", "-pix_fmt", "gray", "-")
}

// RunAstatsRMS streams the per-frame RMS level metadata ffmpeg's astats
// filter prints to stdout, for the audio-energy signal to parse.
func (c *Client) RunAstatsRMS(ctx context.Context, audioPath string) ([]byte, error) {
	return c.ffmpeg(ctx, "-i", audioPath, "-af",
		"astats=metadata=1:reset=1,ametadata=print:key=lavfi.astats.Overall.RMS_level:file=-",
		"-f", "null", "-")
}
