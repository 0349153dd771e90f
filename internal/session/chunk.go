package session

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxMessageLen is the platform's single-message size limit.
	maxMessageLen = 2000
	// chunkLimit leaves headroom for the continuation prefix.
	chunkLimit = 1900

	continuedPrefix = "**(continued...)**\n"
)

// SplitMessage splits text into chunks of at most chunkLimit runes,
// breaking on line boundaries where possible. A single line longer than
// the limit is hard-split into limit-sized pieces; nothing is dropped,
// and concatenating the chunks in order reproduces the input exactly.
func SplitMessage(text string) []string {
	lines := strings.SplitAfter(text, "\n")

	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range lines {
		n := utf8.RuneCountInString(line)
		if n > chunkLimit {
			flush()
			chunks = append(chunks, splitRunes(line, chunkLimit)...)
			continue
		}
		if currentLen+n > chunkLimit {
			flush()
		}
		current.WriteString(line)
		currentLen += n
	}
	flush()

	return chunks
}

func splitRunes(s string, limit int) []string {
	runes := []rune(s)
	pieces := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		pieces = append(pieces, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}
