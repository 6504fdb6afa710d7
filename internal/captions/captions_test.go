package captions

import (
	"testing"

	"github.com/duskreel/clipper/internal/filtergraph"
	"github.com/duskreel/clipper/internal/models"
)

func sampleWords() []models.Word {
	return []models.Word{
		{Word: "Wait", StartS: 10.0, EndS: 10.3},
		{Word: "what", StartS: 10.3, EndS: 10.6},
		{Word: "happened", StartS: 10.6, EndS: 11.1},
	}
}

func TestBuildCleanProducesOneNodePerWord(t *testing.T) {
	nodes := Build(sampleWords(), 10.0, 12.0, models.TemplateClean, models.Aspect9x16, "/fonts/impact.ttf")
	if len(nodes) != 3 {
		t.Fatalf("expected 3 caption nodes, got %d", len(nodes))
	}
}

func TestBuildUnsupportedAspectReturnsNil(t *testing.T) {
	nodes := Build(sampleWords(), 10.0, 12.0, models.TemplateClean, models.Aspect("16:9"), "")
	if nodes != nil {
		t.Errorf("expected nil for unsupported aspect, got %d nodes", len(nodes))
	}
}

func TestBuildImpactEmphasizesCapitalizedWords(t *testing.T) {
	nodes := Build(sampleWords(), 10.0, 12.0, models.TemplateImpact, models.Aspect9x16, "")
	if len(nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(nodes))
	}
	first, ok := nodes[0].(filtergraph.DrawText)
	if !ok {
		t.Fatalf("expected filtergraph.DrawText, got %T", nodes[0])
	}
	if first.Color != "red" || first.Size != 60 {
		t.Errorf("expected 'Wait' to be emphasized (red/60), got color=%s size=%d", first.Color, first.Size)
	}
	second := nodes[1].(filtergraph.DrawText)
	if second.Color != "white" || second.Size != 50 {
		t.Errorf("expected 'what' to be unemphasized (white/50), got color=%s size=%d", second.Color, second.Size)
	}
}

func TestBuildKaraokeHasPersistentPhraseLine(t *testing.T) {
	nodes := Build(sampleWords(), 10.0, 12.0, models.TemplateKaraoke, models.Aspect9x16, "")
	if len(nodes) != 4 {
		t.Fatalf("expected 1 persistent line + 3 per-word overlays, got %d", len(nodes))
	}
	persistent := nodes[0].(filtergraph.DrawText)
	if persistent.EnableStart != nil {
		t.Errorf("expected the persistent phrase line to have no enable window")
	}
	if persistent.Text != "Wait what happened" {
		t.Errorf("expected full phrase, got %q", persistent.Text)
	}
}

func TestBuildExcludesWordsOutsideInterval(t *testing.T) {
	words := append(sampleWords(), models.Word{Word: "later", StartS: 30.0, EndS: 30.3})
	nodes := Build(words, 10.0, 12.0, models.TemplateClean, models.Aspect9x16, "")
	if len(nodes) != 3 {
		t.Errorf("expected out-of-interval word to be excluded, got %d nodes", len(nodes))
	}
}
