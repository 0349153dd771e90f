// Package market wraps the market-data collaborators into the snapshot
// provider used by sessions. The provider never aborts a session: a
// total upstream failure becomes a user-facing message, and any single
// absent field renders as "N/A".
package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/finbot-ai/finbot/internal/chat"
	"github.com/finbot-ai/finbot/internal/models"
)

// QuoteSource is the live-quote and company-profile lookup;
// *dataflows.FinnhubClient satisfies it.
type QuoteSource interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetProfile(ctx context.Context, symbol string) (*models.Profile, error)
}

// SummarySource is the price/size summary lookup;
// *dataflows.YahooFinanceClient satisfies it.
type SummarySource interface {
	GetMarketSummary(symbol string) (*models.Profile, error)
}

// Provider serves asset profiles and live quotes.
type Provider struct {
	quotes  QuoteSource
	summary SummarySource
}

func NewProvider(quotes QuoteSource, summary SummarySource) *Provider {
	return &Provider{quotes: quotes, summary: summary}
}

// ProfileEmbed builds the asset-info package for a symbol. Price and
// size data come from Yahoo, descriptive fields from Finnhub; either
// source failing alone degrades fields to "N/A" rather than failing
// the embed. Both failing is a real error the caller reports.
func (p *Provider) ProfileEmbed(ctx context.Context, symbol string) (chat.Embed, error) {
	summary, yahooErr := p.summary.GetMarketSummary(symbol)
	detail, finnhubErr := p.quotes.GetProfile(ctx, symbol)

	if yahooErr != nil && finnhubErr != nil {
		slog.Warn("profile lookup failed", "symbol", symbol, "yahoo_err", yahooErr, "finnhub_err", finnhubErr)
		return chat.Embed{}, fmt.Errorf("fetch market info for %s: %w", symbol, yahooErr)
	}

	profile := mergeProfiles(symbol, summary, detail)

	embed := chat.Embed{
		Title: fmt.Sprintf("Market Info for %s", displayName(profile)),
		Fields: []chat.EmbedField{
			{Name: "Price", Value: dollar(profile.Price), Inline: true},
			{Name: "Previous Close", Value: dollar(profile.PrevClose), Inline: true},
			{Name: "Day's Range", Value: fmt.Sprintf("%s - %s", dollar(profile.DayLow), dollar(profile.DayHigh))},
			{Name: "Market Cap", Value: dollar(profile.MarketCap), Inline: true},
			{Name: "Volume", Value: count(profile.Volume), Inline: true},
			{Name: "Sector", Value: orNA(profile.Sector), Inline: true},
			{Name: "Industry", Value: orNA(profile.Industry), Inline: true},
			{Name: "Website", Value: orNA(profile.Website)},
		},
		FooterText: "Finbot",
	}
	return embed, nil
}

// LiveQuoteText fetches a fresh quote and formats it as a single line.
// An upstream failure is folded into the returned text.
func (p *Provider) LiveQuoteText(ctx context.Context, symbol string) string {
	q, err := p.quotes.GetQuote(ctx, symbol)
	if err != nil {
		slog.Warn("live quote failed", "symbol", symbol, "err", err)
		return fmt.Sprintf("Couldn't retrieve live data for %s right now.", symbol)
	}
	return FormatQuote(q)
}

// FormatQuote renders a quote in the compact one-line reply format.
func FormatQuote(q *models.Quote) string {
	return fmt.Sprintf("%s: price %s (change %s, %s%%). Day range: %s - %s. Prev close: %s.",
		q.Symbol,
		dollar(q.Price),
		signed(q.Change),
		signed(q.ChangePercent),
		dollar(q.DayLow),
		dollar(q.DayHigh),
		dollar(q.PrevClose),
	)
}

func mergeProfiles(symbol string, summary, detail *models.Profile) models.Profile {
	merged := models.Profile{Symbol: symbol}
	if summary != nil {
		merged = *summary
	}
	if detail != nil {
		if merged.Name == "" {
			merged.Name = detail.Name
		}
		if merged.MarketCap == nil {
			merged.MarketCap = detail.MarketCap
		}
		merged.Sector = detail.Sector
		merged.Industry = detail.Industry
		merged.Website = detail.Website
	}
	return merged
}

func displayName(p models.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return p.Symbol
}

func dollar(d *decimal.Decimal) string {
	if d == nil {
		return "N/A"
	}
	return "$" + d.StringFixed(2)
}

func signed(d *decimal.Decimal) string {
	if d == nil {
		return "N/A"
	}
	if d.Sign() >= 0 {
		return "+" + d.StringFixed(2)
	}
	return d.StringFixed(2)
}

func count(v *int64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%d", *v)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
