// Package chat defines the narrow contracts the core needs from a chat
// platform. Adapters (Discord, console) implement them; the session and
// selection logic never imports a platform SDK.
package chat

import "time"

// Message is an inbound message addressed to the bot.
type Message struct {
	AuthorID string
	Content  string
	Private  bool
}

// EmbedField is one labeled value inside a rich message.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a platform-neutral rich message.
type Embed struct {
	Title       string
	URL         string
	Description string
	Fields      []EmbedField
	ImageURL    string
	FooterText  string
	Timestamp   time.Time
}

// Messenger delivers private messages to a single user.
type Messenger interface {
	SendText(userID, text string) error
	SendEmbed(userID string, embed Embed) error
}
