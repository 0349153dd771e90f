package dataflows

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbot-ai/finbot/config"
)

func newTestFinnhubClient(t *testing.T, handler http.HandlerFunc) *FinnhubClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	fc := NewFinnhubClient(&config.Config{
		FinnhubAPIKey: "test-key",
		DataCacheDir:  t.TempDir(),
		CacheEnabled:  false,
	})
	fc.client.SetBaseURL(srv.URL)
	return fc
}

func TestGetCompanyNews(t *testing.T) {
	fc := newTestFinnhubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/company-news", r.URL.Path)
		assert.Equal(t, "AAPL", r.URL.Query().Get("symbol"))
		assert.Equal(t, "test-key", r.URL.Query().Get("token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"headline":"Apple ships product","summary":"a summary","source":"wire","category":"company","url":"https://x","image":"https://img","datetime":1700000000},
			{"headline":"Second story","summary":"","source":"wire","category":"company","url":"https://y","datetime":1700000100}
		]`))
	})

	items, err := fc.GetCompanyNews(context.Background(), "aapl", time.Now().Add(-72*time.Hour), time.Now())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Apple ships product", items[0].Headline)
	assert.Equal(t, int64(1700000000), items[0].DateTime)
	assert.Equal(t, "https://img", items[0].Image)
}

func TestGetCompanyNewsAPIError(t *testing.T) {
	fc := newTestFinnhubClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "limit exceeded", http.StatusTooManyRequests)
	})

	_, err := fc.GetCompanyNews(context.Background(), "AAPL", time.Now().Add(-time.Hour), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API error 429")
}

func TestGetQuote(t *testing.T) {
	fc := newTestFinnhubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/quote", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"c":190.25,"d":-1.5,"dp":-0.78,"h":192.3,"l":188.1,"o":191.0,"pc":191.75,"t":1700000000}`))
	})

	q, err := fc.GetQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	require.NotNil(t, q.Price)
	assert.Equal(t, "190.25", q.Price.String())
	require.NotNil(t, q.Change)
	assert.Equal(t, "-1.5", q.Change.String())
}

func TestGetQuoteZeroFieldsAreAbsent(t *testing.T) {
	fc := newTestFinnhubClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"c":0,"d":0,"dp":0,"h":0,"l":0,"o":0,"pc":0,"t":0}`))
	})

	q, err := fc.GetQuote(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Nil(t, q.Price)
	assert.Nil(t, q.PrevClose)
}

func TestGetProfile(t *testing.T) {
	fc := newTestFinnhubClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stock/profile2", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Apple Inc","ticker":"AAPL","finnhubIndustry":"Technology","weburl":"https://apple.com","marketCapitalization":2900000}`))
	})

	p, err := fc.GetProfile(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "Apple Inc", p.Name)
	assert.Equal(t, "Technology", p.Industry)
	require.NotNil(t, p.MarketCap)
	assert.Equal(t, "2900000000000", p.MarketCap.String())
}

func TestMissingAPIKey(t *testing.T) {
	fc := NewFinnhubClient(&config.Config{DataCacheDir: t.TempDir()})
	_, err := fc.GetQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key not configured")
}
