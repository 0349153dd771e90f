package dataflows

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, true)

	params := map[string]string{"symbol": "AAPL", "from": "2025-06-01"}
	require.NoError(t, cm.Set("finnhub", "company_news", params, []string{"a", "b"}))

	var got []string
	require.True(t, cm.Get("finnhub", "company_news", params, &got))
	assert.Equal(t, []string{"a", "b"}, got)

	// Different parameters miss.
	other := map[string]string{"symbol": "MSFT", "from": "2025-06-01"}
	assert.False(t, cm.Get("finnhub", "company_news", other, &got))
}

func TestCacheDisabled(t *testing.T) {
	cm := NewCacheManager(t.TempDir(), time.Hour, false)

	require.NoError(t, cm.Set("finnhub", "profile", "AAPL", "value"))

	var got string
	assert.False(t, cm.Get("finnhub", "profile", "AAPL", &got))
}

func TestValidateSymbol(t *testing.T) {
	assert.NoError(t, ValidateSymbol("aapl"))
	assert.NoError(t, ValidateSymbol("BTC-USD"))
	assert.Error(t, ValidateSymbol(""))
	assert.Error(t, ValidateSymbol("WAYTOOLONGSYM"))
}

func TestNormalizeSymbol(t *testing.T) {
	assert.Equal(t, "AAPL", NormalizeSymbol("  aapl "))
}
