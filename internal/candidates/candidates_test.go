package candidates

import (
	"testing"

	"github.com/duskreel/clipper/internal/models"
)

func TestEnumerateDeduplicatesByRoundedInterval(t *testing.T) {
	cfg := Config{ClipMinS: 15, ClipMaxS: 60, TargetS: 30}
	// The 20s first scene clamps the 30s and 60s trials to the same [0, 20].
	scenes := []float64{0, 20, 100}
	proposals := Enumerate(scenes, 100, cfg)

	seen := map[[2]float64]bool{}
	for _, p := range proposals {
		key := [2]float64{round2(p.StartS), round2(p.EndS)}
		if seen[key] {
			t.Fatalf("found duplicate proposal %+v after dedup", p)
		}
		seen[key] = true
	}
}

func TestEnumerateDropsIntervalsBelowMinimum(t *testing.T) {
	cfg := Config{ClipMinS: 15, ClipMaxS: 60, TargetS: 30}
	scenes := []float64{0, 5, 100}
	proposals := Enumerate(scenes, 100, cfg)
	for _, p := range proposals {
		if p.StartS == 0 && p.EndS-p.StartS < 15 {
			t.Errorf("expected sub-minimum interval %+v to be dropped", p)
		}
	}
}

func TestSpeechHookDetectsOpener(t *testing.T) {
	words := []models.Word{
		{Word: "Wait", StartS: 0.1, EndS: 0.4},
		{Word: "this", StartS: 0.5, EndS: 0.7},
		{Word: "is", StartS: 0.8, EndS: 0.9},
		{Word: "crazy", StartS: 1.0, EndS: 1.4},
	}
	score := SpeechHook(words, 0, 10)
	if score < 0.5 {
		t.Errorf("expected a hook-word opener to score >= 0.5, got %v", score)
	}
}

func TestSpeechHookIgnoresLateOccurrence(t *testing.T) {
	words := []models.Word{
		{Word: "wait", StartS: 8.0, EndS: 8.3},
	}
	score := SpeechHook(words, 0, 10)
	if score != 0 {
		t.Errorf("expected a hook word outside the early window to score 0, got %v", score)
	}
}

func TestSceneFreshnessPenalizesOverlap(t *testing.T) {
	accepted := [][2]float64{{0, 30}}
	fresh := SceneFreshness(15, 45, accepted)
	if fresh <= 0 || fresh >= 1 {
		t.Errorf("expected partial overlap to score strictly between 0 and 1, got %v", fresh)
	}

	full := SceneFreshness(5, 25, accepted)
	if full != 0 {
		t.Errorf("expected full containment to score 0, got %v", full)
	}

	none := SceneFreshness(40, 70, accepted)
	if none != 1 {
		t.Errorf("expected no overlap to score 1, got %v", none)
	}
}

func TestKeywordMatchCountsDistinctKeywordsOnly(t *testing.T) {
	words := []models.Word{
		{Word: "money", StartS: 1, EndS: 1.5},
		{Word: "money", StartS: 2, EndS: 2.5},
		{Word: "fame", StartS: 3, EndS: 3.5},
	}
	score := KeywordMatch(words, 0, 10, []string{"money", "fame", "power"})
	want := 2.0 / 3.0
	if score != want {
		t.Errorf("KeywordMatch() = %v, want %v", score, want)
	}
}

func TestGenerateAndScoreRespectsMaxCandidates(t *testing.T) {
	cfg := Config{
		ClipMinS: 15, ClipMaxS: 60, TargetS: 30, MaxCandidates: 2,
		Weights: DefaultWeights(),
	}
	scenes := []float64{0, 20, 40, 60, 80, 100}
	scored := GenerateAndScore(scenes, 100, nil, nil, nil, cfg)
	if len(scored) > 2 {
		t.Errorf("expected at most 2 candidates, got %d", len(scored))
	}
}

func TestGenerateAndScoreSortsDescending(t *testing.T) {
	cfg := Config{ClipMinS: 15, ClipMaxS: 60, TargetS: 30, Weights: DefaultWeights()}
	scenes := []float64{0, 20, 40, 60, 100}
	motion := []float64{0.1, 0.1, 0.9, 0.9, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1}
	scored := GenerateAndScore(scenes, 100, nil, motion, nil, cfg)
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Fatalf("expected descending score order, got %v then %v", scored[i-1].Score, scored[i].Score)
		}
	}
}
