// Package filtergraph is a typed representation of the ffmpeg filter-complex
// nodes the renderer composes, in place of building the filter string by
// hand inline at the call site. Every node knows how to serialize itself;
// a Graph joins a video chain and an audio chain the way the renderer wires
// them: "[0:v]...[v];[0:a]...[a]".
package filtergraph

import (
	"fmt"
	"strings"
)

// Node is one ffmpeg filter invocation.
type Node interface {
	Serialize() string
}

// EscapeText escapes the two characters that break a drawtext literal:
// a single quote ends the quoted text early, a colon is read as the next
// option separator.
func EscapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\'':
			b.WriteString(`\'`)
		case ':':
			b.WriteString(`\:`)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Chain is an ordered sequence of filters applied to one stream.
type Chain []Node

func (c Chain) Serialize() string {
	parts := make([]string, len(c))
	for i, n := range c {
		parts[i] = n.Serialize()
	}
	return strings.Join(parts, ",")
}

// Graph is a complete -filter_complex expression: a video chain labeled
// [v] and an audio chain labeled [a].
type Graph struct {
	Video Chain
	Audio Chain
}

func (g Graph) Serialize() string {
	return fmt.Sprintf("[0:v]%s[v];[0:a]%s[a]", g.Video.Serialize(), g.Audio.Serialize())
}

// Scale resizes while preserving aspect ratio, growing to at least Width x
// Height so a subsequent Crop always has enough pixels (§4.7.1a).
type Scale struct {
	Width, Height int
}

func (s Scale) Serialize() string {
	return fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase", s.Width, s.Height)
}

// Crop centers a Width x Height window over the scaled frame.
type Crop struct {
	Width, Height int
}

func (c Crop) Serialize() string {
	return fmt.Sprintf("crop=%d:%d", c.Width, c.Height)
}

// Zoompan is the manga template's slow zoom ramp: z grows 0.0005/frame up to
// a 1.05x ceiling, centered (§4.7.1b).
type Zoompan struct {
	Width, Height int
}

func (z Zoompan) Serialize() string {
	return fmt.Sprintf(
		"zoompan=z='min(zoom+0.0005,1.05)':d=1:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':s=%dx%d",
		z.Width, z.Height,
	)
}

// DrawText is one drawtext invocation: a watermark string or a single
// caption word/line, optionally gated to a time window.
type DrawText struct {
	Text            string
	FontFile        string
	Size            int
	Color           string
	BorderWidth     int
	BorderColor     string
	X, Y            string
	ShadowColor     string
	ShadowX, ShadowY int
	EnableStart     *float64
	EnableEnd       *float64
}

func (d DrawText) Serialize() string {
	var b strings.Builder
	fmt.Fprintf(&b, "drawtext=text='%s'", EscapeText(d.Text))
	if d.FontFile != "" {
		fmt.Fprintf(&b, ":fontfile='%s'", EscapeText(d.FontFile))
	}
	fmt.Fprintf(&b, ":fontsize=%d:fontcolor=%s", d.Size, d.Color)
	if d.BorderWidth > 0 {
		fmt.Fprintf(&b, ":borderw=%d:bordercolor=%s", d.BorderWidth, d.BorderColor)
	}
	fmt.Fprintf(&b, ":x=%s:y=%s", d.X, d.Y)
	if d.ShadowColor != "" {
		fmt.Fprintf(&b, ":shadowcolor=%s:shadowx=%d:shadowy=%d", d.ShadowColor, d.ShadowX, d.ShadowY)
	}
	if d.EnableStart != nil && d.EnableEnd != nil {
		fmt.Fprintf(&b, ":enable='between(t,%.3f,%.3f)'", *d.EnableStart, *d.EnableEnd)
	}
	return b.String()
}

// Loudnorm normalizes integrated loudness, true peak, and loudness range
// (§4.7.1e).
type Loudnorm struct {
	IntegratedLUFS string
	TruePeak       string
	LRA            string
}

func (l Loudnorm) Serialize() string {
	return fmt.Sprintf("loudnorm=I=%s:TP=%s:LRA=%s", l.IntegratedLUFS, l.TruePeak, l.LRA)
}

type AFormat struct {
	SampleRate int
}

func (a AFormat) Serialize() string {
	return fmt.Sprintf("aformat=sample_rates=%d", a.SampleRate)
}
