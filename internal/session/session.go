// Package session runs the time-boxed Q&A dialogue that follows a
// completed instrument selection: deliver the snapshot and news digest,
// then route each question to the live-quote path or the
// context-grounded answerer until the session budget expires.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/finbot-ai/finbot/internal/answer"
	"github.com/finbot-ai/finbot/internal/chat"
	"github.com/finbot-ai/finbot/internal/classify"
	"github.com/finbot-ai/finbot/internal/models"
)

const (
	// DefaultBudget is the overall question window per session.
	DefaultBudget = 10 * time.Minute
	// DefaultReceiveTimeout bounds each message wait so the deadline
	// is re-checked periodically. It is not a cancellation signal.
	DefaultReceiveTimeout = 60 * time.Second
	// DefaultPaceDelay spaces consecutive deliveries to respect
	// downstream rate limits.
	DefaultPaceDelay = 500 * time.Millisecond

	maxDigestItems = 10
)

// Session is one user's Q&A state. Created when the selection flow
// completes; falls out of scope when the loop exits on expiry.
type Session struct {
	UserID    string
	Ticker    string
	Days      float64
	StartedAt time.Time
	ExpiresAt time.Time
	News      []models.NewsItem
}

// MarketData serves asset profiles and live quotes.
type MarketData interface {
	ProfileEmbed(ctx context.Context, symbol string) (chat.Embed, error)
	LiveQuoteText(ctx context.Context, symbol string) string
}

// NewsSource fetches deduplicated company news for a lookback window.
type NewsSource interface {
	CompanyNews(ctx context.Context, symbol string, days float64) []models.NewsItem
}

// Answerer produces a context-grounded reply; it never fails, a model
// error is folded into the returned text.
type Answerer interface {
	Answer(ctx context.Context, question string, newsContext []models.NewsItem, defaultSymbol string, days float64) string
}

// Orchestrator wires the providers together for every session it runs.
// It holds no per-session state; each Run owns its session exclusively.
type Orchestrator struct {
	market   MarketData
	news     NewsSource
	answerer Answerer

	budget         time.Duration
	receiveTimeout time.Duration
	paceDelay      time.Duration
}

// Option tunes orchestrator timing; tests shrink the windows.
type Option func(*Orchestrator)

func WithBudget(d time.Duration) Option         { return func(o *Orchestrator) { o.budget = d } }
func WithReceiveTimeout(d time.Duration) Option { return func(o *Orchestrator) { o.receiveTimeout = d } }
func WithPaceDelay(d time.Duration) Option      { return func(o *Orchestrator) { o.paceDelay = d } }

func NewOrchestrator(market MarketData, news NewsSource, answerer Answerer, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		market:         market,
		news:           news,
		answerer:       answerer,
		budget:         DefaultBudget,
		receiveTimeout: DefaultReceiveTimeout,
		paceDelay:      DefaultPaceDelay,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run delivers the full package for a completed selection and then
// holds the Q&A loop. inbound carries only private messages from the
// owning user; the adapter guarantees that filtering.
func (o *Orchestrator) Run(ctx context.Context, m chat.Messenger, inbound <-chan chat.Message, userID, ticker string, days float64) {
	// Asset profile first; failure is reported, not fatal.
	if embed, err := o.market.ProfileEmbed(ctx, ticker); err != nil {
		o.sendText(m, userID, fmt.Sprintf("Could not fetch market info for %s.", ticker))
	} else {
		o.sendEmbed(m, userID, embed)
	}

	items := o.news.CompanyNews(ctx, ticker, days)
	if len(items) == 0 {
		o.sendText(m, userID, fmt.Sprintf("No news found for %s in the last %g days.", ticker, days))
	} else {
		o.sendText(m, userID, fmt.Sprintf("Latest news for %s (last %g days):", ticker, days))
		digest := items
		if len(digest) > maxDigestItems {
			digest = digest[:maxDigestItems]
		}
		for i, item := range digest {
			if i > 0 {
				o.pace(ctx)
			}
			o.sendEmbed(m, userID, newsEmbed(item))
		}
	}

	now := time.Now()
	sess := &Session{
		UserID:    userID,
		Ticker:    ticker,
		Days:      days,
		StartedAt: now,
		ExpiresAt: now.Add(o.budget),
		News:      items,
	}

	o.sendText(m, userID, fmt.Sprintf("If you have questions, please ask. You have %s.", formatBudget(o.budget)))
	o.runQA(ctx, m, inbound, sess)
	o.sendText(m, userID, "Q&A session ended.")
}

func (o *Orchestrator) runQA(ctx context.Context, m chat.Messenger, inbound <-chan chat.Message, sess *Session) {
	for {
		remaining := time.Until(sess.ExpiresAt)
		if remaining <= 0 {
			return
		}
		wait := o.receiveTimeout
		if wait > remaining {
			wait = remaining
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			// Re-check the overall deadline and wait again.
			continue
		case msg, ok := <-inbound:
			timer.Stop()
			if !ok {
				return
			}
			if !time.Now().Before(sess.ExpiresAt) {
				return
			}
			o.handleQuestion(ctx, m, sess, msg)
		}
	}
}

func (o *Orchestrator) handleQuestion(ctx context.Context, m chat.Messenger, sess *Session, msg chat.Message) {
	content := strings.TrimSpace(msg.Content)
	if content == "" {
		return
	}

	if !classify.IsFinanceRelated(content) {
		o.sendText(m, sess.UserID, "Please keep questions related to finance, markets, or business impact.")
		return
	}

	// Live-data questions bypass the answerer entirely.
	if classify.WantsLiveData(content) {
		symbol := firstTicker(content, sess.Ticker)
		o.sendText(m, sess.UserID, o.market.LiveQuoteText(ctx, symbol))
		return
	}

	reply := o.answerer.Answer(ctx, content, sess.News, sess.Ticker, sess.Days)

	if answer.HasLiveDirective(reply) {
		// The model deferred to live data; its reply names the symbol,
		// else fall back to the question's, else the session default.
		symbol := firstTicker(reply, firstTicker(content, sess.Ticker))
		o.sendText(m, sess.UserID, o.market.LiveQuoteText(ctx, symbol))
		return
	}

	o.deliver(ctx, m, sess.UserID, reply)
}

// deliver sends text as a single message, or chunked when it exceeds
// the platform's single-message size limit.
func (o *Orchestrator) deliver(ctx context.Context, m chat.Messenger, userID, text string) {
	if utf8.RuneCountInString(text) <= maxMessageLen {
		o.sendText(m, userID, text)
		return
	}
	for i, chunk := range SplitMessage(text) {
		if i > 0 {
			o.pace(ctx)
			chunk = continuedPrefix + chunk
		}
		o.sendText(m, userID, chunk)
	}
}

func (o *Orchestrator) pace(ctx context.Context) {
	timer := time.NewTimer(o.paceDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (o *Orchestrator) sendText(m chat.Messenger, userID, text string) {
	if err := m.SendText(userID, text); err != nil {
		slog.Warn("send message failed", "user", userID, "err", err)
	}
}

func (o *Orchestrator) sendEmbed(m chat.Messenger, userID string, embed chat.Embed) {
	if err := m.SendEmbed(userID, embed); err != nil {
		slog.Warn("send embed failed", "user", userID, "err", err)
	}
}

func newsEmbed(item models.NewsItem) chat.Embed {
	embed := chat.Embed{
		Title:       truncateRunes(item.Headline, 256),
		URL:         item.URL,
		Description: truncateRunes(item.Summary, 4096),
		ImageURL:    item.Image,
		FooterText:  "Finbot News",
	}
	// A missing publish time stays zero so renderers omit it.
	if item.DateTime > 0 {
		embed.Timestamp = time.Unix(item.DateTime, 0).UTC()
	}
	if embed.Description == "" {
		embed.Description = "No description available"
	}
	if item.Source != "" {
		embed.Fields = append(embed.Fields, chat.EmbedField{Name: "Source", Value: item.Source, Inline: true})
	}
	if item.Category != "" {
		embed.Fields = append(embed.Fields, chat.EmbedField{Name: "Category", Value: item.Category, Inline: true})
	}
	return embed
}

func firstTicker(text, fallback string) string {
	if tickers := classify.ExtractTickers(text); len(tickers) > 0 {
		return tickers[0]
	}
	return fallback
}

func formatBudget(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(d.Minutes()))
	}
	return d.String()
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
