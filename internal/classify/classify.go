// Package classify decides whether free text is finance-related and
// extracts ticker-like tokens from it. All functions are pure.
package classify

import "regexp"

var financePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(stock|stocks|equity|equities|share|shares|price|quote|market|markets|index|indices)\b`),
	regexp.MustCompile(`(?i)\b(bond|bonds|yield|etf|fund|crypto|bitcoin|ethereum|token|fx|forex|currency)\b`),
	regexp.MustCompile(`(?i)\b(usd|eur|gbp|dividend|earnings|guidance|revenue|profit|loss|valuation|pe|p/e)\b`),
	regexp.MustCompile(`(?i)\b(volatility|options|call|put|derivative|hedge|portfolio|trading|invest|investment)\b`),
	regexp.MustCompile(`(?i)\b(macro|federal reserve|fed|inflation|cpi|ppi|gdp|jobs|economy|economic)\b`),
	regexp.MustCompile(`(?i)\b(impact|affect|affecting|influence|effect|implications|outlook|forecast)\b.*\b(company|business|stock|market|price|valuation|revenue)\b`),
	regexp.MustCompile(`(?i)\b(news|announcement|report|earnings|financial|performance)\b.*\b(impact|affect|influence)\b`),
	regexp.MustCompile(`(?i)\bhow.*\b(company|stock|market|business|price|valuation|revenue|earnings)\b`),
	regexp.MustCompile(`(?i)\b(microsoft|apple|google|amazon|tesla|meta|nvidia|companies)\b.*\b(impact|affect|stock|price|market|business)\b`),
	regexp.MustCompile(`(?i)\b(bullish|bearish|buy|sell|hold|rating|upgrade|downgrade|target|analyst)\b`),
}

// tickerPattern matches uppercase symbols of 1-5 letters, optionally a
// hyphenated suffix for class shares and currency pairs (BRK-B, BTC-USD).
var tickerPattern = regexp.MustCompile(`\b[A-Z]{1,5}(?:-[A-Z]{1,4})?\b`)

// Common finance acronyms that look like tickers but are not.
var tickerDenylist = map[string]struct{}{
	"USD": {}, "ETF": {}, "GDP": {}, "CPI": {},
	"PPI": {}, "EPS": {}, "YOY": {}, "QOQ": {},
}

var liveDataPattern = regexp.MustCompile(`(?i)\b(price|quote|now|current|live|today|right now|latest price|current price)\b`)

// IsFinanceRelated reports whether text matches any finance-topic pattern.
func IsFinanceRelated(text string) bool {
	for _, p := range financePatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// ExtractTickers returns candidate ticker symbols in first-occurrence
// order. Duplicates are retained; denylisted acronyms are skipped.
func ExtractTickers(text string) []string {
	candidates := tickerPattern.FindAllString(text, -1)
	tickers := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if _, denied := tickerDenylist[c]; denied {
			continue
		}
		tickers = append(tickers, c)
	}
	return tickers
}

// WantsLiveData reports whether a question asks for current market
// numbers rather than analysis of the news context.
func WantsLiveData(text string) bool {
	return liveDataPattern.MatchString(text)
}
