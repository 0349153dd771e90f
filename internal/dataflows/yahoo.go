package dataflows

import (
	"fmt"

	"github.com/piquette/finance-go/equity"
	"github.com/piquette/finance-go/quote"
	"github.com/shopspring/decimal"

	"github.com/finbot-ai/finbot/internal/models"
)

// YahooFinanceClient handles Yahoo Finance data operations
type YahooFinanceClient struct{}

// NewYahooFinanceClient creates a new Yahoo Finance client
func NewYahooFinanceClient() *YahooFinanceClient {
	return &YahooFinanceClient{}
}

// GetQuote gets current quote data for a symbol
func (yf *YahooFinanceClient) GetQuote(symbol string) (*models.Quote, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	q, err := quote.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get quote for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("no quote data for %s", symbol)
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         optionalDecimal(q.RegularMarketPrice),
		Change:        optionalDecimal(q.RegularMarketChange),
		ChangePercent: optionalDecimal(q.RegularMarketChangePercent),
		DayLow:        optionalDecimal(q.RegularMarketDayLow),
		DayHigh:       optionalDecimal(q.RegularMarketDayHigh),
		PrevClose:     optionalDecimal(q.RegularMarketPreviousClose),
	}, nil
}

// GetMarketSummary gets price and size data used in the asset-info
// package: name, current price, previous close, day range, volume.
func (yf *YahooFinanceClient) GetMarketSummary(symbol string) (*models.Profile, error) {
	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	q, err := equity.Get(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to get market summary for %s: %w", symbol, err)
	}
	if q == nil {
		return nil, fmt.Errorf("no market data for %s", symbol)
	}

	profile := &models.Profile{
		Symbol:    symbol,
		Name:      q.ShortName,
		Price:     optionalDecimal(q.RegularMarketPrice),
		PrevClose: optionalDecimal(q.RegularMarketPreviousClose),
		DayLow:    optionalDecimal(q.RegularMarketDayLow),
		DayHigh:   optionalDecimal(q.RegularMarketDayHigh),
	}
	if q.MarketCap > 0 {
		cap := decimal.NewFromInt(q.MarketCap)
		profile.MarketCap = &cap
	}
	if q.RegularMarketVolume > 0 {
		vol := int64(q.RegularMarketVolume)
		profile.Volume = &vol
	}

	return profile, nil
}
