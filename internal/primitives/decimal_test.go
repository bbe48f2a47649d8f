package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"polyclob/internal/primitives"
)

func TestToBaseUnits_RoundDown(t *testing.T) {
	out, err := primitives.ToBaseUnits(3.03, 6, true)
	require.NoError(t, err)
	require.Equal(t, "3030000", out)
}

func TestToBaseUnits_FloatNoise(t *testing.T) {
	out, err := primitives.ToBaseUnits(0.1+0.2, 6, true)
	require.NoError(t, err)
	require.Equal(t, "300000", out)
}

func TestToBaseUnits_TruncatesExtraPrecision(t *testing.T) {
	out, err := primitives.ToBaseUnits(1.23456789012345, 6, true)
	require.NoError(t, err)
	require.Equal(t, "1234567", out)
}

func TestToBaseUnits_Zero(t *testing.T) {
	out, err := primitives.ToBaseUnits(0, 6, true)
	require.NoError(t, err)
	require.Equal(t, "0", out)
}

func TestToBaseUnits_WholeNumber(t *testing.T) {
	out, err := primitives.ToBaseUnits(5, 6, true)
	require.NoError(t, err)
	require.Equal(t, "5000000", out)
}
