package queue

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/duskreel/clipper/internal/models"
)

func TestKeyForSeparatesPriorityTiers(t *testing.T) {
	require.Equal(t, "queue:analyze:normal", keyFor(models.JobKindAnalyze, PriorityNormal))
	require.Equal(t, "queue:analyze:high", keyFor(models.JobKindAnalyze, PriorityHigh))
	require.NotEqual(t,
		keyFor(models.JobKindAnalyze, PriorityNormal),
		keyFor(models.JobKindRender, PriorityNormal),
	)
}

func TestMessageRoundTripsThroughJSON(t *testing.T) {
	msg := Message{ID: uuid.New(), Kind: models.JobKindRender}
	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var out Message
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, msg.ID, out.ID)
	require.Equal(t, msg.Kind, out.Kind)
}
