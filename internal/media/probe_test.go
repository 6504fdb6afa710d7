package media

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFPSRational(t *testing.T) {
	fps, err := parseFPS("30000/1001")
	require.NoError(t, err)
	require.InDelta(t, 29.97, fps, 0.01)
}

func TestParseFPSWholeNumber(t *testing.T) {
	fps, err := parseFPS("25/1")
	require.NoError(t, err)
	require.Equal(t, 25.0, fps)
}

func TestParseFPSEmptyIsZero(t *testing.T) {
	fps, err := parseFPS("")
	require.NoError(t, err)
	require.Zero(t, fps)
}

func TestParseFPSZeroOverZeroIsZero(t *testing.T) {
	fps, err := parseFPS("0/0")
	require.NoError(t, err)
	require.Zero(t, fps)
}

func TestParseFPSNonzeroOverZeroErrors(t *testing.T) {
	_, err := parseFPS("30/0")
	require.Error(t, err)
}

func TestParseFPSNonRational(t *testing.T) {
	fps, err := parseFPS("24")
	require.NoError(t, err)
	require.Equal(t, 24.0, fps)
}
