package renderer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/duskreel/clipper/internal/apierrors"
	"github.com/duskreel/clipper/internal/models"
)

func sampleCandidate() *models.Candidate {
	return &models.Candidate{ID: uuid.New(), VideoID: uuid.New(), StartS: 10, EndS: 22}
}

func TestBuildGraphDefaultTemplateHasNoZoompan(t *testing.T) {
	graph, err := buildGraph(sampleCandidate(), nil, models.RenderParams{Template: models.TemplateClean}, models.Aspect9x16, "/fonts/impact.ttf")
	require.NoError(t, err)

	serialized := graph.Video.Serialize()
	require.NotContains(t, serialized, "zoompan")
	require.Contains(t, serialized, "scale=1080:1920")
	require.Contains(t, serialized, "crop=1080:1920")
}

func TestBuildGraphMangaTemplateAddsZoompan(t *testing.T) {
	graph, err := buildGraph(sampleCandidate(), nil, models.RenderParams{Template: models.TemplateManga}, models.Aspect1x1, "")
	require.NoError(t, err)
	require.Contains(t, graph.Video.Serialize(), "zoompan")
}

func TestBuildGraphRejectsUnsupportedAspect(t *testing.T) {
	_, err := buildGraph(sampleCandidate(), nil, models.RenderParams{}, models.Aspect("16:9"), "")
	require.Error(t, err)
	kind, ok := apierrors.KindOf(err)
	require.True(t, ok)
	require.Equal(t, apierrors.Validation, kind)
}

func TestBuildGraphDefaultsWatermarkWhenUnset(t *testing.T) {
	graph, err := buildGraph(sampleCandidate(), nil, models.RenderParams{}, models.Aspect9x16, "")
	require.NoError(t, err)
	require.Contains(t, graph.Video.Serialize(), "@clipper")
}

func TestBuildGraphUsesCustomWatermark(t *testing.T) {
	graph, err := buildGraph(sampleCandidate(), nil, models.RenderParams{Watermark: "@acme"}, models.Aspect9x16, "")
	require.NoError(t, err)
	require.Contains(t, graph.Video.Serialize(), "@acme")
	require.NotContains(t, graph.Video.Serialize(), "@clipper")
}

func TestBuildGraphDefaultLoudnessTarget(t *testing.T) {
	graph, err := buildGraph(sampleCandidate(), nil, models.RenderParams{}, models.Aspect9x16, "")
	require.NoError(t, err)
	require.Contains(t, graph.Audio.Serialize(), "loudnorm=I=-14")
}

func TestBuildGraphCaptionsAddDrawtextNodes(t *testing.T) {
	words := []models.Word{
		{Word: "hello", StartS: 10.1, EndS: 10.4},
		{Word: "world", StartS: 10.5, EndS: 10.9},
	}
	without, err := buildGraph(sampleCandidate(), words, models.RenderParams{Captions: false}, models.Aspect9x16, "")
	require.NoError(t, err)
	with, err := buildGraph(sampleCandidate(), words, models.RenderParams{Captions: true, Template: models.TemplateClean}, models.Aspect9x16, "")
	require.NoError(t, err)

	require.Greater(t, len(with.Video), len(without.Video))
}
