// Package text holds the small text utilities the tokenizer front ends use:
// input normalization before encoding and spacing cleanup after decoding.
package text

import (
	"errors"
	"strings"
)

// ErrEmptyText is returned when the input text is empty or whitespace-only.
var ErrEmptyText = errors.New("text is empty")

// cleaner undoes the detached punctuation and contraction spacing that
// subword decoding leaves behind ("hello , world" -> "hello, world").
// Replacement order follows the reference cleanup rules.
var cleaner = strings.NewReplacer(
	" .", ".",
	" ?", "?",
	" !", "!",
	" ,", ",",
	" ' ", "'",
	" n't", "n't",
	" 'm", "'m",
	" do not", " don't",
	" 's", "'s",
	" 've", "'ve",
	" 're", "'re",
)

// CleanSpacing normalizes tokenization artifacts in decoded text. It is
// idempotent: applying it to already-clean text is a no-op.
func CleanSpacing(s string) string {
	return cleaner.Replace(s)
}

// Normalize prepares raw input text for encoding. It converts CRLF and bare
// CR line endings to LF, trims surrounding whitespace, and rejects empty or
// whitespace-only input.
func Normalize(s string) (string, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}
