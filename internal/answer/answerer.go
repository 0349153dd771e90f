// Package answer turns a question plus a bounded news context into a
// model-grounded reply. The model may instead emit a live-data
// directive, which callers resolve against the market provider.
package answer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/finbot-ai/finbot/internal/models"
)

// Sentinel is the directive token the model emits, followed by a
// symbol, when the user asks for live price data instead of analysis.
const Sentinel = "USE_FINNHUB"

// Fallback is returned when the model reply is empty or whitespace.
const Fallback = "I don't have enough information to provide a detailed analysis right now."

// maxContextItems caps how many news items are serialized into the prompt.
const maxContextItems = 15

const systemPrompt = `You are a finance assistant analyzing market news and business impacts. The user will ask questions about recent news, market trends, and how developments affect companies.

Use the provided news JSON as context to answer questions about:
- How news impacts specific companies or sectors
- Market implications of recent developments
- Business analysis and outlook based on news
- Company performance and competitive positioning

ONLY say "` + Sentinel + ` [SYMBOL]" if the user specifically asks for current/live price data, quotes, or real-time market numbers.

For analytical questions about business impact, market implications, or news analysis, provide detailed insights based on the news context.`

// Answerer asks the chat model questions grounded in a news context.
type Answerer struct {
	chatModel model.BaseChatModel
}

func New(chatModel model.BaseChatModel) *Answerer {
	return &Answerer{chatModel: chatModel}
}

// Answer returns the model's reply, the fallback string on an empty
// reply, or an error message string on upstream failure. It never
// returns an error value; nothing propagates past this boundary.
func (a *Answerer) Answer(ctx context.Context, question string, newsContext []models.NewsItem, defaultSymbol string, days float64) string {
	messages := []*schema.Message{
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(buildUserPrompt(question, newsContext, defaultSymbol, days)),
	}

	resp, err := a.chatModel.Generate(ctx, messages)
	if err != nil {
		slog.Warn("model generate failed", "symbol", defaultSymbol, "err", err)
		return "Error getting AI response. Please try again."
	}

	text := ""
	if resp != nil {
		text = strings.TrimSpace(resp.Content)
	}
	if text == "" {
		return Fallback
	}
	return text
}

// HasLiveDirective reports whether a model reply contains the
// live-data sentinel. Callers must then resolve the target symbol from
// the reply, falling back to the question's own extracted symbol.
func HasLiveDirective(reply string) bool {
	return strings.Contains(reply, Sentinel)
}

func buildUserPrompt(question string, newsContext []models.NewsItem, defaultSymbol string, days float64) string {
	bounded := newsContext
	if len(bounded) > maxContextItems {
		bounded = bounded[:maxContextItems]
	}
	contextJSON, err := json.Marshal(bounded)
	if err != nil {
		contextJSON = []byte("[]")
	}

	return fmt.Sprintf(`The news covers approximately the last %g days for %s and related companies.

News context JSON:
%s

User question: %s

Provide a comprehensive analysis based on the news context. Focus on business implications, market impact, and strategic insights.`,
		days, defaultSymbol, contextJSON, question)
}
