package models

// NewsItem is a single company news article as delivered to the user
// and as serialized into the model prompt. Immutable once fetched.
type NewsItem struct {
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Category string `json:"category"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	DateTime int64  `json:"datetime"` // seconds since epoch
}
