// Package bpe provides byte-pair-encoding segmentation. The Segmenter
// interface is the contract consumed by the bridging tokenizer; Encoder is a
// GPT-2 style byte-level implementation of it.
package bpe

// ID is a merge-space identifier: an index into the segmenter's own native
// vocabulary. It is deliberately a distinct type from the dictionary-space ID
// so the two spaces cannot be conflated by accident.
type ID int

// Segmenter splits text into subword tokens and converts between token
// strings and merge-space IDs. Implementations are immutable after load and
// safe for concurrent readers, so a single pretrained instance can be shared
// across tokenizers.
type Segmenter interface {
	// Tokenize splits text into subword token strings.
	Tokenize(text string) []string

	// TokensToIDs maps subword tokens to merge-space IDs.
	TokensToIDs(tokens []string) []ID

	// IDsToTokens maps merge-space IDs back to subword tokens.
	IDsToTokens(ids []ID) []string

	// TokensToString renders subword tokens back into display text,
	// reversing any joiner markers the tokenization introduced.
	TokensToString(tokens []string) string
}
