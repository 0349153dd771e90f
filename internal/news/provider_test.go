package news

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbot-ai/finbot/internal/models"
)

type stubFetcher struct {
	items []models.NewsItem
	err   error
	from  time.Time
	to    time.Time
}

func (s *stubFetcher) GetCompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]models.NewsItem, error) {
	s.from, s.to = from, to
	return s.items, s.err
}

func TestCompanyNewsSubDayWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{items: []models.NewsItem{
		{Headline: "fresh", DateTime: now.Add(-time.Hour).Unix()},
		{Headline: "stale", DateTime: now.Add(-8 * time.Hour).Unix()},
	}}
	p := NewProvider(fetcher)
	p.now = func() time.Time { return now }

	got := p.CompanyNews(context.Background(), "AAPL", 0.25) // 6 hours

	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].Headline)
	assert.Equal(t, now.Add(-6*time.Hour), fetcher.from)
}

func TestCompanyNewsFailureReturnsEmpty(t *testing.T) {
	p := NewProvider(&stubFetcher{err: fmt.Errorf("upstream down")})
	assert.Empty(t, p.CompanyNews(context.Background(), "AAPL", 3))
}

func TestCompanyNewsDeduplicates(t *testing.T) {
	now := time.Now().UTC()
	fetcher := &stubFetcher{items: []models.NewsItem{
		{Headline: "same story", DateTime: now.Unix(), URL: "u1"},
		{Headline: "same story", DateTime: now.Unix(), URL: "u2"},
	}}
	p := NewProvider(fetcher)

	got := p.CompanyNews(context.Background(), "AAPL", 3)
	require.Len(t, got, 1)
	assert.Equal(t, "u1", got[0].URL)
}

func TestDeduplicateKeepsFirstOccurrence(t *testing.T) {
	items := []models.NewsItem{
		{Headline: "Fed raises rates", URL: "https://a.example/1"},
		{Headline: "Chip demand surges", URL: "https://a.example/2"},
		{Headline: "Fed raises rates", URL: "https://b.example/1"},
		{Headline: "Guidance raised", URL: "https://a.example/3"},
	}

	got := Deduplicate(items)

	require.Len(t, got, 3)
	assert.Equal(t, "Fed raises rates", got[0].Headline)
	assert.Equal(t, "https://a.example/1", got[0].URL, "first occurrence wins")
	assert.Equal(t, "Chip demand surges", got[1].Headline)
	assert.Equal(t, "Guidance raised", got[2].Headline)
}

func TestDeduplicateDropsBlankHeadlines(t *testing.T) {
	items := []models.NewsItem{
		{Headline: "   "},
		{Headline: ""},
		{Headline: "Real story"},
	}

	got := Deduplicate(items)
	require.Len(t, got, 1)
	assert.Equal(t, "Real story", got[0].Headline)
}

func TestDeduplicateEmpty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}
