// Package captions builds the per-template drawtext overlay chain (C7) for
// a rendered clip: which words appear when, at what size/color/position,
// given the caption template and output aspect ratio.
package captions

import (
	"fmt"
	"strings"

	"github.com/duskreel/clipper/internal/filtergraph"
	"github.com/duskreel/clipper/internal/models"
)

type canvas struct {
	Width, Height int
	BaselineY     int
}

// canvases gives each supported output aspect its render resolution and the
// caption safe-zone baseline (§4.6): 9:16 -> 1080x1920/1620, 1:1 ->
// 1080x1080/880, 4:5 -> 1080x1350/1100.
var canvases = map[models.Aspect]canvas{
	models.Aspect9x16: {Width: 1080, Height: 1920, BaselineY: 1620},
	models.Aspect1x1:  {Width: 1080, Height: 1080, BaselineY: 880},
	models.Aspect4x5:  {Width: 1080, Height: 1350, BaselineY: 1100},
}

// CanvasSize returns the scale/crop target for an aspect, shared with the
// renderer so the video chain and the caption chain agree on dimensions.
func CanvasSize(aspect models.Aspect) (width, height int, ok bool) {
	c, ok := canvases[aspect]
	return c.Width, c.Height, ok
}

// Build returns the drawtext nodes for one clip, or nil if the aspect or
// template is unsupported or no word starts inside the interval. It does not
// check whether captions are enabled; the caller decides whether to call it.
func Build(words []models.Word, startS, endS float64, template models.Template, aspect models.Aspect, fontPath string) []filtergraph.Node {
	zone, ok := canvases[aspect]
	if !ok {
		return nil
	}
	clipped := clipWords(words, startS, endS)
	if len(clipped) == 0 {
		return nil
	}

	switch template {
	case models.TemplateClean:
		return buildClean(clipped, startS, zone, fontPath)
	case models.TemplateManga:
		return buildManga(clipped, startS, zone, fontPath)
	case models.TemplateImpact:
		return buildImpact(clipped, startS, zone, fontPath)
	case models.TemplateKaraoke:
		return buildKaraoke(clipped, startS, zone, fontPath)
	default:
		return nil
	}
}

// clipWords keeps words whose start falls inside [startS, endS], matching
// the analyzer's own interval-membership rule.
func clipWords(words []models.Word, startS, endS float64) []models.Word {
	out := make([]models.Word, 0, len(words))
	for _, w := range words {
		if w.StartS >= startS && w.StartS <= endS {
			out = append(out, w)
		}
	}
	return out
}

func timeWindow(w models.Word, clipStart float64) (start, end float64) {
	start = w.StartS - clipStart
	end = w.EndS - clipStart
	if end <= start {
		end = start + 0.3
	}
	return start, end
}

// buildClean renders each word as white text, centered, with a black
// border and a soft drop shadow (§4.6.1).
func buildClean(words []models.Word, clipStart float64, zone canvas, fontPath string) []filtergraph.Node {
	nodes := make([]filtergraph.Node, 0, len(words))
	for _, w := range words {
		start, end := timeWindow(w, clipStart)
		nodes = append(nodes, filtergraph.DrawText{
			Text: w.Word, FontFile: fontPath,
			Size: 48, Color: "white",
			BorderWidth: 3, BorderColor: "black",
			X: "(w-text_w)/2", Y: fmt.Sprintf("%d", zone.BaselineY),
			ShadowColor: "black@0.5", ShadowX: 2, ShadowY: 2,
			EnableStart: &start, EnableEnd: &end,
		})
	}
	return nodes
}

// buildManga renders each word oversized in bold yellow with a heavy black
// border, meant to pair with the zoompan Ken Burns effect (§4.6.1b).
func buildManga(words []models.Word, clipStart float64, zone canvas, fontPath string) []filtergraph.Node {
	nodes := make([]filtergraph.Node, 0, len(words))
	for _, w := range words {
		start, end := timeWindow(w, clipStart)
		nodes = append(nodes, filtergraph.DrawText{
			Text: strings.ToUpper(w.Word), FontFile: fontPath,
			Size: 56, Color: "yellow",
			BorderWidth: 4, BorderColor: "black",
			X: "(w-text_w)/2", Y: fmt.Sprintf("%d", zone.BaselineY),
			ShadowColor: "black@0.8", ShadowX: 3, ShadowY: 3,
			EnableStart: &start, EnableEnd: &end,
		})
	}
	return nodes
}

// buildImpact sets emphasis per word: a word that starts with an uppercase
// letter in the transcript renders large and red, any other word renders
// smaller and white; each successive word nudges 10px up from the last to
// suggest a stack rather than a single flat line (§4.6.1c).
func buildImpact(words []models.Word, clipStart float64, zone canvas, fontPath string) []filtergraph.Node {
	nodes := make([]filtergraph.Node, 0, len(words))
	for i, w := range words {
		start, end := timeWindow(w, clipStart)
		size, color := 50, "white"
		if isEmphasized(w.Word) {
			size, color = 60, "red"
		}
		y := zone.BaselineY - i*10
		nodes = append(nodes, filtergraph.DrawText{
			Text: w.Word, FontFile: fontPath,
			Size: size, Color: color,
			BorderWidth: 3, BorderColor: "black",
			X: "(w-text_w)/2", Y: fmt.Sprintf("%d", y),
			EnableStart: &start, EnableEnd: &end,
		})
	}
	return nodes
}

func isEmphasized(word string) bool {
	trimmed := strings.TrimSpace(word)
	if trimmed == "" {
		return false
	}
	r := trimmed[0]
	return r >= 'A' && r <= 'Z'
}

// buildKaraoke shows the full phrase persistently in gray, with each word
// overlaid in yellow only during its own time window, approximating a
// highlight sweep without relying on libass karaoke tags (§4.6.1d).
func buildKaraoke(words []models.Word, clipStart float64, zone canvas, fontPath string) []filtergraph.Node {
	phrase := make([]string, len(words))
	for i, w := range words {
		phrase[i] = w.Word
	}
	nodes := []filtergraph.Node{
		filtergraph.DrawText{
			Text: strings.Join(phrase, " "), FontFile: fontPath,
			Size: 48, Color: "gray",
			BorderWidth: 3, BorderColor: "black",
			X: "(w-text_w)/2", Y: fmt.Sprintf("%d", zone.BaselineY),
		},
	}
	for _, w := range words {
		start, end := timeWindow(w, clipStart)
		nodes = append(nodes, filtergraph.DrawText{
			Text: w.Word, FontFile: fontPath,
			Size: 48, Color: "yellow",
			BorderWidth: 3, BorderColor: "black",
			X: "(w-text_w)/2", Y: fmt.Sprintf("%d", zone.BaselineY),
			EnableStart: &start, EnableEnd: &end,
		})
	}
	return nodes
}
