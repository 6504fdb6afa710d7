// Package candidates implements C5: enumerate candidate clip intervals from
// scene boundaries, score each one against the transcript and signal
// curves, and select the top-scoring, non-overlapping-preferring set.
package candidates

import (
	"math"
	"sort"
	"strings"

	"github.com/duskreel/clipper/internal/models"
)

// Proposal is an un-scored candidate interval.
type Proposal struct {
	StartS, EndS float64
}

// Scored is a proposal with its composite score and per-axis features.
type Scored struct {
	StartS, EndS, Score float64
	Features            map[string]float64
}

// Weights are the five scoring-axis weights from §4.4, summing to 1.0.
type Weights struct {
	SpeechHook      float64
	Motion          float64
	AudioPeak       float64
	KeywordMatch    float64
	SceneFreshness  float64
}

func DefaultWeights() Weights {
	return Weights{
		SpeechHook:     0.30,
		Motion:         0.25,
		AudioPeak:      0.20,
		KeywordMatch:   0.15,
		SceneFreshness: 0.10,
	}
}

// Config bundles an analyze job's target parameters with the scoring
// weights.
type Config struct {
	ClipMinS, ClipMaxS, TargetS float64
	MaxCandidates               int
	Keywords                    []string
	Weights                     Weights
}

// Enumerate implements §4.4.1: for each pair of adjacent scene boundaries,
// try each of the three trial durations (target, min, max), clamped to the
// scene and the video's total duration, and keep it only if the resulting
// interval still meets the minimum clip length. Proposals are deduplicated
// by their rounded (start, end) so the same interval reached via two trial
// durations only scores once.
func Enumerate(sceneBoundaries []float64, duration float64, cfg Config) []Proposal {
	trials := []float64{cfg.TargetS, cfg.ClipMinS, cfg.ClipMaxS}
	seen := map[[2]float64]bool{}
	var proposals []Proposal

	for i := 0; i < len(sceneBoundaries)-1; i++ {
		sceneStart := sceneBoundaries[i]
		sceneEnd := sceneBoundaries[i+1]
		for _, trial := range trials {
			end := math.Min(sceneStart+trial, math.Min(sceneEnd, duration))
			if end-sceneStart < cfg.ClipMinS {
				continue
			}
			key := [2]float64{round2(sceneStart), round2(end)}
			if seen[key] {
				continue
			}
			seen[key] = true
			proposals = append(proposals, Proposal{StartS: sceneStart, EndS: end})
		}
	}
	return proposals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// GenerateAndScore enumerates proposals, scores them in enumeration order
// (so scene_freshness penalizes later proposals against earlier-accepted
// ones, per §4.4.2's order-dependent rule), sorts by descending score, and
// truncates to MaxCandidates.
func GenerateAndScore(sceneBoundaries []float64, duration float64, words []models.Word, motion, audio []float64, cfg Config) []Scored {
	proposals := Enumerate(sceneBoundaries, duration, cfg)
	weights := cfg.Weights
	if weights == (Weights{}) {
		weights = DefaultWeights()
	}

	scored := make([]Scored, 0, len(proposals))
	var accepted [][2]float64
	for _, p := range proposals {
		score, features := Score(p, words, motion, audio, cfg.Keywords, accepted, weights)
		scored = append(scored, Scored{StartS: p.StartS, EndS: p.EndS, Score: score, Features: features})
		accepted = append(accepted, [2]float64{p.StartS, p.EndS})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].StartS < scored[j].StartS
	})

	max := cfg.MaxCandidates
	if max <= 0 || max > len(scored) {
		max = len(scored)
	}
	return scored[:max]
}

var hookWords = map[string]bool{
	"wait": true, "hey": true, "no": true, "stop": true,
	"what": true, "now": true, "look": true, "watch": true,
}

var questionWords = map[string]bool{
	"who": true, "what": true, "where": true, "when": true, "why": true, "how": true,
}

// SpeechHook implements §4.4.2a: scan the first 2.5s of the interval for
// attention-grabbing openers — hook words worth 0.5, question words worth
// 0.3, an exclaimed word worth 0.2 — summed and clamped to 1.0.
func SpeechHook(words []models.Word, startS, endS float64) float64 {
	score := 0.0
	earlyWindow := startS + 2.5
	for _, w := range words {
		if w.StartS < startS || w.StartS > endS || w.StartS > earlyWindow {
			continue
		}
		clean := strings.ToLower(strings.Trim(w.Word, ".,!?"))
		if hookWords[clean] {
			score += 0.5
		}
		if questionWords[clean] {
			score += 0.3
		}
		if strings.HasSuffix(w.Word, "!") {
			score += 0.2
		}
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// rangeMean averages a per-second signal over [startS, endS), treating
// indices past the end of the signal as absent rather than zero-padding.
func rangeMean(sig []float64, startS, endS float64) float64 {
	if len(sig) == 0 {
		return 0
	}
	startIdx := int(startS)
	endIdx := int(endS)
	if startIdx < 0 {
		startIdx = 0
	}
	if endIdx > len(sig) {
		endIdx = len(sig)
	}
	if endIdx <= startIdx || startIdx >= len(sig) {
		return 0
	}
	sum := 0.0
	for _, v := range sig[startIdx:endIdx] {
		sum += v
	}
	return sum / float64(endIdx-startIdx)
}

// KeywordMatch implements §4.4.2d: count how many distinct keywords appear
// as a substring anywhere in the interval's transcript text, divided by
// max(|keywords|, 1), clamped to 1.0.
func KeywordMatch(words []models.Word, startS, endS float64, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	var b strings.Builder
	for _, w := range words {
		if w.StartS >= startS && w.StartS <= endS {
			b.WriteString(strings.ToLower(w.Word))
			b.WriteByte(' ')
		}
	}
	text := b.String()
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			count++
		}
	}
	score := float64(count) / float64(max(len(keywords), 1))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// SceneFreshness implements §4.4.2e: 1 minus the fraction of this interval's
// duration that overlaps any already-accepted interval, floored at 0.
// Evaluated against proposals accepted earlier in enumeration order, so
// later-overlapping proposals score worse than the one that claimed the
// time range first.
func SceneFreshness(startS, endS float64, accepted [][2]float64) float64 {
	overlapFraction := 0.0
	span := endS - startS
	if span <= 0 {
		return 0
	}
	for _, a := range accepted {
		overlap := math.Min(endS, a[1]) - math.Max(startS, a[0])
		if overlap > 0 {
			overlapFraction += overlap / span
		}
	}
	f := 1.0 - overlapFraction
	if f < 0 {
		f = 0
	}
	return f
}

// Score computes the weighted composite of all five axes for one proposal.
func Score(p Proposal, words []models.Word, motion, audio []float64, keywords []string, accepted [][2]float64, w Weights) (float64, map[string]float64) {
	hook := SpeechHook(words, p.StartS, p.EndS)
	motionScore := rangeMean(motion, p.StartS, p.EndS)
	audioScore := rangeMean(audio, p.StartS, p.EndS)
	kw := KeywordMatch(words, p.StartS, p.EndS, keywords)
	fresh := SceneFreshness(p.StartS, p.EndS, accepted)

	total := w.SpeechHook*hook + w.Motion*motionScore + w.AudioPeak*audioScore +
		w.KeywordMatch*kw + w.SceneFreshness*fresh

	return total, map[string]float64{
		"speech_hook":     hook,
		"motion":          motionScore,
		"audio_peak":      audioScore,
		"keyword_match":   kw,
		"scene_freshness": fresh,
	}
}
