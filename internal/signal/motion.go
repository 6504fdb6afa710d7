package signal

import (
	"context"

	"github.com/duskreel/clipper/internal/apierrors"
)

const (
	DefaultMotionSampleEveryN = 5
	motionFrameWidth          = 320
	motionFrameHeight         = 180
)

// ComputeMotionScores implements §4.3.2: sample every sampleEveryN-th frame,
// downsampled to grayscale, take the mean absolute pixel difference against
// the previous sampled frame, bucket by the integer second it falls in, and
// normalize the resulting per-second curve to [0, 1] by its own max.
func (c *Client) ComputeMotionScores(ctx context.Context, videoPath string, fps float64, sampleEveryN int) ([]float64, error) {
	if sampleEveryN <= 0 {
		sampleEveryN = DefaultMotionSampleEveryN
	}
	if fps <= 0 {
		return nil, apierrors.New(apierrors.ToolchainError, "motion scoring requires a positive frame rate", nil)
	}

	raw, err := c.media.ExtractRawGrayFrames(ctx, videoPath, sampleEveryN, motionFrameWidth, motionFrameHeight)
	if err != nil {
		return nil, err
	}

	frameSize := motionFrameWidth * motionFrameHeight
	if frameSize == 0 || len(raw) < frameSize {
		return nil, nil
	}
	numFrames := len(raw) / frameSize

	sums := map[int]float64{}
	counts := map[int]int{}
	maxSecond := 0
	var prev []byte
	for i := 0; i < numFrames; i++ {
		frame := raw[i*frameSize : (i+1)*frameSize]
		if prev != nil {
			diff := meanAbsDiff(frame, prev)
			frameIndex := i * sampleEveryN
			second := int(float64(frameIndex) / fps)
			sums[second] += diff
			counts[second]++
			if second > maxSecond {
				maxSecond = second
			}
		}
		prev = frame
	}

	scores := make([]float64, maxSecond+1)
	for s := 0; s <= maxSecond; s++ {
		if counts[s] > 0 {
			scores[s] = sums[s] / float64(counts[s])
		}
	}
	normalize(scores)
	return scores, nil
}

func meanAbsDiff(a, b []byte) float64 {
	if len(a) == 0 {
		return 0
	}
	sum := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(a))
}
