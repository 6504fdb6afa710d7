package worker

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duskreel/clipper/internal/models"
)

func TestAnalyzeTargetsFromLogsRoundTrips(t *testing.T) {
	logs := models.JSONB{
		"config": map[string]interface{}{
			"clip_min_s":     15.0,
			"clip_max_s":     60.0,
			"target_s":       30.0,
			"max_candidates": 20.0,
			"keywords":       []interface{}{"wow", "secret"},
		},
	}
	targets := analyzeTargetsFromLogs(logs)
	require.Equal(t, 15.0, targets.ClipMinSeconds)
	require.Equal(t, 60.0, targets.ClipMaxSeconds)
	require.Equal(t, 30.0, targets.TargetSeconds)
	require.Equal(t, 20, targets.MaxCandidates)
	require.Equal(t, []string{"wow", "secret"}, targets.Keywords)
}

func TestAnalyzeTargetsFromLogsMissingConfigIsZeroValue(t *testing.T) {
	targets := analyzeTargetsFromLogs(models.JSONB{})
	require.Zero(t, targets.ClipMinSeconds)
	require.Nil(t, targets.Keywords)
}

func TestRenderParamsFromJSONBRoundTrips(t *testing.T) {
	id := "6f9619ff-8b86-d011-b42d-00cf4fc964ff"
	params := models.JSONB{
		"candidate_ids": []interface{}{id},
		"template":      "karaoke",
		"outputs":       []interface{}{"9:16", "1:1"},
		"captions":      true,
	}
	out := renderParamsFromJSONB(params)
	require.Equal(t, models.TemplateKaraoke, out.Template)
	require.Equal(t, []models.Aspect{models.Aspect9x16, models.Aspect1x1}, out.Outputs)
	require.True(t, out.Captions)
	require.Len(t, out.CandidateIDs, 1)
}
