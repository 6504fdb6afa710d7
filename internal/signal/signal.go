// Package signal computes the three per-second/per-boundary signals C5's
// scorer consumes: scene-cut boundaries, a motion-energy curve, and an
// audio-energy curve. Every extractor delegates decoding to the media
// toolchain and does only Go-side arithmetic over the bytes/metadata it
// gets back — none of it decodes video or audio itself.
package signal

import "github.com/duskreel/clipper/internal/media"

type Client struct {
	media *media.Client
}

func New(m *media.Client) *Client {
	return &Client{media: m}
}

// normalize scales values in place to [0, 1] by their own max, leaving an
// all-zero signal untouched.
func normalize(values []float64) {
	max := 0.0
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return
	}
	for i := range values {
		values[i] /= max
	}
}
