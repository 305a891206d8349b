package pipeline

import (
	"strings"

	"parts.dev/tagger/pos"
)

type Request struct {
	ID    string   `json:"id"`
	Words []string `json:"words,omitempty"`
	Text  string   `json:"text,omitempty"`
}

// Tokens returns the lower-cased words to tag. Text is split on whitespace
// when no words are given.
func (r Request) Tokens() []string {
	words := r.Words
	if len(words) == 0 {
		words = strings.Fields(r.Text)
	}
	tokens := make([]string, len(words))
	for i, w := range words {
		tokens[i] = strings.ToLower(w)
	}
	return tokens
}

type Result struct {
	ID     string           `json:"id"`
	Model  string           `json:"model"`
	Score  float64          `json:"score"`
	Tagged []pos.TaggedWord `json:"tagged"`
	Error  string           `json:"error,omitempty"`
	Err    error            `json:"-"`
}
