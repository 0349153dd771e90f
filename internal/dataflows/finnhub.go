package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/finbot-ai/finbot/config"
	"github.com/finbot-ai/finbot/internal/models"
)

// FinnhubClient handles Finnhub API operations
type FinnhubClient struct {
	client *resty.Client
	cache  *CacheManager
	apiKey string
}

// NewFinnhubClient creates a new Finnhub client
func NewFinnhubClient(cfg *config.Config) *FinnhubClient {
	cacheDir := filepath.Join(cfg.DataCacheDir, "finnhub")
	cache := NewCacheManager(cacheDir, 6*time.Hour, cfg.CacheEnabled) // 6 hour cache for news

	client := resty.New()
	client.SetBaseURL("https://finnhub.io/api/v1")
	client.SetTimeout(30 * time.Second)

	return &FinnhubClient{
		client: client,
		cache:  cache,
		apiKey: cfg.FinnhubAPIKey,
	}
}

// finnhubNews represents a news article from the Finnhub API
type finnhubNews struct {
	Category string `json:"category"`
	DateTime int64  `json:"datetime"`
	Headline string `json:"headline"`
	ID       int64  `json:"id"`
	Image    string `json:"image"`
	Related  string `json:"related"`
	Source   string `json:"source"`
	Summary  string `json:"summary"`
	URL      string `json:"url"`
}

// finnhubQuote represents the /quote payload. Finnhub reports zeroed
// fields for unknown symbols, so callers must treat 0 as absent.
type finnhubQuote struct {
	Current       float64 `json:"c"`
	Change        float64 `json:"d"`
	ChangePercent float64 `json:"dp"`
	High          float64 `json:"h"`
	Low           float64 `json:"l"`
	Open          float64 `json:"o"`
	PrevClose     float64 `json:"pc"`
	Timestamp     int64   `json:"t"`
}

// finnhubProfile represents the /stock/profile2 payload
type finnhubProfile struct {
	Name          string  `json:"name"`
	Ticker        string  `json:"ticker"`
	Exchange      string  `json:"exchange"`
	Industry      string  `json:"finnhubIndustry"`
	WebURL        string  `json:"weburl"`
	MarketCapM    float64 `json:"marketCapitalization"` // millions
	ShareOutstand float64 `json:"shareOutstanding"`
	Currency      string  `json:"currency"`
}

// GetCompanyNews gets news articles for a symbol in [from, to]
func (fc *FinnhubClient) GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("Finnhub API key not configured")
	}

	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	cacheKey := map[string]interface{}{
		"symbol": symbol,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	}

	var cached []models.NewsItem
	if fc.cache.Get("finnhub", "company_news", cacheKey, &cached) {
		return cached, nil
	}

	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"from":   from.Format("2006-01-02"),
			"to":     to.Format("2006-01-02"),
			"token":  fc.apiKey,
		}).
		Get("/company-news")

	if err != nil {
		return nil, fmt.Errorf("failed to fetch news for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var raw []finnhubNews
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse news response: %w", err)
	}

	result := make([]models.NewsItem, 0, len(raw))
	for _, news := range raw {
		result = append(result, models.NewsItem{
			Headline: news.Headline,
			Summary:  news.Summary,
			Source:   news.Source,
			Category: news.Category,
			URL:      news.URL,
			Image:    news.Image,
			DateTime: news.DateTime,
		})
	}

	fc.cache.Set("finnhub", "company_news", cacheKey, result)

	return result, nil
}

// GetQuote gets a live quote for a symbol. Never cached.
func (fc *FinnhubClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("Finnhub API key not configured")
	}

	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  fc.apiKey,
		}).
		Get("/quote")

	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var raw finnhubQuote
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse quote response: %w", err)
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         optionalDecimal(raw.Current),
		Change:        optionalDecimal(raw.Change),
		ChangePercent: optionalDecimal(raw.ChangePercent),
		DayLow:        optionalDecimal(raw.Low),
		DayHigh:       optionalDecimal(raw.High),
		PrevClose:     optionalDecimal(raw.PrevClose),
	}, nil
}

// GetProfile gets descriptive company data for a symbol
func (fc *FinnhubClient) GetProfile(ctx context.Context, symbol string) (*models.Profile, error) {
	if fc.apiKey == "" {
		return nil, fmt.Errorf("Finnhub API key not configured")
	}

	if err := ValidateSymbol(symbol); err != nil {
		return nil, err
	}
	symbol = NormalizeSymbol(symbol)

	var cached models.Profile
	if fc.cache.Get("finnhub", "profile", symbol, &cached) {
		return &cached, nil
	}

	resp, err := fc.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": symbol,
			"token":  fc.apiKey,
		}).
		Get("/stock/profile2")

	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile for %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("API error %d: %s", resp.StatusCode(), resp.String())
	}

	var raw finnhubProfile
	if err := json.Unmarshal(resp.Body(), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse profile response: %w", err)
	}

	profile := &models.Profile{
		Symbol:   symbol,
		Name:     raw.Name,
		Industry: raw.Industry,
		Website:  raw.WebURL,
	}
	if raw.MarketCapM > 0 {
		// Finnhub reports market cap in millions
		cap := decimal.NewFromFloat(raw.MarketCapM).Mul(decimal.NewFromInt(1_000_000))
		profile.MarketCap = &cap
	}

	fc.cache.Set("finnhub", "profile", symbol, profile)

	return profile, nil
}

// optionalDecimal treats a zero upstream value as "not reported"
func optionalDecimal(v float64) *decimal.Decimal {
	if v == 0 {
		return nil
	}
	d := decimal.NewFromFloat(v)
	return &d
}
