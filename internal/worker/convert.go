package worker

import (
	"encoding/json"

	"github.com/duskreel/clipper/internal/models"
)

// analyzeTargetsFromLogs reads the submission config an analyze job's
// creator stashed under logs.config (§6), falling back to the zero value
// if absent. Of the zero fields, the analyzer substitutes a default only for
// MaxCandidates.
func analyzeTargetsFromLogs(logs models.JSONB) models.AnalyzeTargets {
	var targets models.AnalyzeTargets
	raw, ok := logs["config"]
	if !ok {
		return targets
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return targets
	}
	_ = json.Unmarshal(data, &targets)
	return targets
}

func renderParamsFromJSONB(params models.JSONB) models.RenderParams {
	var out models.RenderParams
	data, err := json.Marshal(params)
	if err != nil {
		return out
	}
	_ = json.Unmarshal(data, &out)
	return out
}
