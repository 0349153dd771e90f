package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFinanceRelated(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"price question", "What's AAPL's price today?", true},
		{"macro term", "Will the Fed cut rates?", true},
		{"impact phrase", "What are the implications for the company?", true},
		{"rating verb", "Is the stock a buy or a sell?", true},
		{"weather", "What's the weather like?", false},
		{"small talk", "Tell me a joke about cats", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsFinanceRelated(tt.text))
		})
	}
}

func TestExtractTickers(t *testing.T) {
	got := ExtractTickers("AAPL and MSFT surged, but GDP fell")
	assert.Equal(t, []string{"AAPL", "MSFT"}, got)
}

func TestExtractTickersOrderAndDuplicates(t *testing.T) {
	got := ExtractTickers("TSLA beat NVDA, then TSLA dipped")
	assert.Equal(t, []string{"TSLA", "NVDA", "TSLA"}, got)
}

func TestExtractTickersCompoundSymbols(t *testing.T) {
	got := ExtractTickers("Compare BRK-B with BTC-USD")
	assert.Equal(t, []string{"BRK-B", "BTC-USD"}, got)
}

func TestExtractTickersIgnoresLowercase(t *testing.T) {
	assert.Empty(t, ExtractTickers("apple and msft in lowercase"))
}

func TestWantsLiveData(t *testing.T) {
	assert.True(t, WantsLiveData("what is the current price of TSLA"))
	assert.True(t, WantsLiveData("give me a quote for BTC-USD"))
	assert.True(t, WantsLiveData("how is it trading right now"))
	assert.False(t, WantsLiveData("how does the acquisition affect the business outlook"))
}
