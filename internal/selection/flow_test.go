package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlowHappyPath(t *testing.T) {
	f := NewFlow("owner")

	require.Equal(t, StageAssetClass, f.Stage())
	require.NoError(t, f.Advance("stocks", "owner"))

	require.Equal(t, StageInstrument, f.Stage())
	opts := f.Options()
	require.Len(t, opts, 8)
	require.NoError(t, f.Advance("TSLA", "owner"))

	require.Equal(t, StageDuration, f.Stage())
	require.NoError(t, f.Advance("6h", "owner"))

	require.Equal(t, StageComplete, f.Stage())
	result, ok := f.Result()
	require.True(t, ok)
	assert.Equal(t, "TSLA", result.Ticker)
	assert.Equal(t, "Tesla, Inc.", result.Instrument)
	assert.Equal(t, 0.25, result.Days)
}

func TestFlowCryptoPath(t *testing.T) {
	f := NewFlow("owner")

	require.NoError(t, f.Advance("crypto", "owner"))
	require.NoError(t, f.Advance("ETH-USD", "owner"))
	require.NoError(t, f.Advance("7d", "owner"))

	result, ok := f.Result()
	require.True(t, ok)
	assert.Equal(t, "ETH-USD", result.Ticker)
	assert.Equal(t, 7.0, result.Days)
}

func TestFlowRejectsNonOwner(t *testing.T) {
	f := NewFlow("owner")

	err := f.Advance("stocks", "intruder")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, StageAssetClass, f.Stage(), "stage must not change on non-owner interaction")

	require.NoError(t, f.Advance("stocks", "owner"))
	err = f.Advance("AAPL", "intruder")
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.Equal(t, StageInstrument, f.Stage())
}

func TestFlowUnknownOption(t *testing.T) {
	f := NewFlow("owner")

	assert.ErrorIs(t, f.Advance("bonds", "owner"), ErrUnknownOption)
	assert.Equal(t, StageAssetClass, f.Stage())

	require.NoError(t, f.Advance("stocks", "owner"))
	assert.ErrorIs(t, f.Advance("DOGE-USD", "owner"), ErrUnknownOption)
}

func TestFlowExpireMakesInert(t *testing.T) {
	f := NewFlow("owner")
	require.NoError(t, f.Advance("stocks", "owner"))

	f.Expire()
	assert.Equal(t, StageTimedOut, f.Stage())
	assert.Nil(t, f.Options())
	assert.ErrorIs(t, f.Advance("AAPL", "owner"), ErrInert)

	_, ok := f.Result()
	assert.False(t, ok, "timed-out flow must not produce a result")
}

func TestFlowExpireAfterCompleteKeepsResult(t *testing.T) {
	f := NewFlow("owner")
	require.NoError(t, f.Advance("stocks", "owner"))
	require.NoError(t, f.Advance("AAPL", "owner"))
	require.NoError(t, f.Advance("14d", "owner"))

	f.Expire()
	assert.Equal(t, StageComplete, f.Stage())
	_, ok := f.Result()
	assert.True(t, ok)
}
