package signal

import (
	"context"
	"math"

	"github.com/duskreel/clipper/internal/apierrors"
)

const (
	DefaultSceneSampleEveryN = 3
	DefaultSceneThreshold    = 0.3

	sceneFrameWidth  = 160
	sceneFrameHeight = 90
	hueBins          = 50
	satBins          = 60
)

// DetectSceneBoundaries implements §4.3.1: sample every sampleEveryN-th
// frame at a small fixed resolution, build an HSV hue/saturation histogram
// per sampled frame, and mark a boundary wherever the L1 distance to the
// previous frame's histogram exceeds threshold. Boundaries always include
// t=0 and the clip's duration as implicit bookends.
func (c *Client) DetectSceneBoundaries(ctx context.Context, videoPath string, fps, duration float64, sampleEveryN int, threshold float64) ([]float64, error) {
	if sampleEveryN <= 0 {
		sampleEveryN = DefaultSceneSampleEveryN
	}
	if threshold <= 0 {
		threshold = DefaultSceneThreshold
	}
	if fps <= 0 {
		return nil, apierrors.New(apierrors.ToolchainError, "scene detection requires a positive frame rate", nil)
	}

	raw, err := c.media.ExtractRawFrames(ctx, videoPath, sampleEveryN, sceneFrameWidth, sceneFrameHeight)
	if err != nil {
		return nil, err
	}

	frameSize := sceneFrameWidth * sceneFrameHeight * 3
	if frameSize == 0 || len(raw) < frameSize {
		return []float64{0.0, duration}, nil
	}
	numFrames := len(raw) / frameSize

	boundaries := []float64{0.0}
	var prevHist []float64
	for i := 0; i < numFrames; i++ {
		frame := raw[i*frameSize : (i+1)*frameSize]
		hist := hueSatHistogram(frame)
		if prevHist != nil {
			if l1Distance(hist, prevHist) > threshold {
				frameIndex := i * sampleEveryN
				ts := float64(frameIndex) / fps
				if ts > boundaries[len(boundaries)-1] && ts < duration {
					boundaries = append(boundaries, ts)
				}
			}
		}
		prevHist = hist
	}
	if boundaries[len(boundaries)-1] != duration {
		boundaries = append(boundaries, duration)
	}
	return boundaries, nil
}

// hueSatHistogram buckets each pixel's hue/saturation into a hueBins x
// satBins grid and L1-normalizes it (divides by total pixel count), mapping
// cv2's HSV-histogram-plus-NORM_L1 idiom onto raw RGB24 bytes.
func hueSatHistogram(rgb []byte) []float64 {
	hist := make([]float64, hueBins*satBins)
	pixelCount := len(rgb) / 3
	if pixelCount == 0 {
		return hist
	}
	for i := 0; i < pixelCount; i++ {
		r := float64(rgb[i*3])
		g := float64(rgb[i*3+1])
		b := float64(rgb[i*3+2])
		h, s := rgbToHS(r, g, b)
		hBin := int(h / 360.0 * float64(hueBins))
		if hBin >= hueBins {
			hBin = hueBins - 1
		}
		sBin := int(s * float64(satBins))
		if sBin >= satBins {
			sBin = satBins - 1
		}
		hist[hBin*satBins+sBin]++
	}
	total := float64(pixelCount)
	for i := range hist {
		hist[i] /= total
	}
	return hist
}

func rgbToHS(r, g, b float64) (h, s float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	if max == 0 {
		s = 0
	} else {
		s = delta / max
	}

	switch {
	case delta == 0:
		h = 0
	case max == r:
		h = 60 * math.Mod((g-b)/delta, 6)
	case max == g:
		h = 60 * ((b-r)/delta + 2)
	default:
		h = 60 * ((r-g)/delta + 4)
	}
	if h < 0 {
		h += 360
	}
	return h, s
}

func l1Distance(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}
