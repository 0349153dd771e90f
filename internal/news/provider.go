// Package news wraps the news-retrieval collaborator. Upstream failure
// degrades to an empty result so the session can report "no news found"
// instead of aborting.
package news

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/finbot-ai/finbot/internal/models"
)

// Fetcher is the upstream news lookup; *dataflows.FinnhubClient
// satisfies it.
type Fetcher interface {
	GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error)
}

// Provider fetches and deduplicates company news.
type Provider struct {
	fetcher Fetcher
	now     func() time.Time
}

func NewProvider(fetcher Fetcher) *Provider {
	return &Provider{fetcher: fetcher, now: time.Now}
}

// CompanyNews returns deduplicated news for the window [now-days, now].
// days may be fractional (0.25 = 6 hours); the upstream API takes whole
// dates, so the window is enforced here on publish timestamps.
func (p *Provider) CompanyNews(ctx context.Context, symbol string, days float64) []models.NewsItem {
	now := p.now().UTC()
	from := now.Add(-time.Duration(days * float64(24*time.Hour)))

	items, err := p.fetcher.GetCompanyNews(ctx, symbol, from, now)
	if err != nil {
		slog.Warn("news fetch failed", "symbol", symbol, "days", days, "err", err)
		return nil
	}

	cutoff := from.Unix()
	inWindow := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		if item.DateTime >= cutoff {
			inWindow = append(inWindow, item)
		}
	}

	return Deduplicate(inWindow)
}

// Deduplicate drops repeated headlines, keeping the first occurrence
// and preserving order. Items with blank headlines are dropped.
func Deduplicate(items []models.NewsItem) []models.NewsItem {
	seen := make(map[string]struct{}, len(items))
	deduped := make([]models.NewsItem, 0, len(items))
	for _, item := range items {
		headline := strings.TrimSpace(item.Headline)
		if headline == "" {
			continue
		}
		if _, ok := seen[headline]; ok {
			continue
		}
		seen[headline] = struct{}{}
		deduped = append(deduped, item)
	}
	return deduped
}
