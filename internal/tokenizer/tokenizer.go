// Package tokenizer bridges two independent ID spaces: the merge-space of a
// byte-level BPE segmenter and the dictionary-space of a fairseq-style symbol
// dictionary. Encoding segments text into merge-space IDs, renders them as
// decimal strings wrapped in boundary markers, and resolves that line through
// the dictionary; decoding inverts each step. Sentence pairs are supported by
// delimiting segments with two consecutive separator markers.
package tokenizer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/go-roberta-tokenizer/internal/bpe"
	"github.com/example/go-roberta-tokenizer/internal/dict"
	"github.com/example/go-roberta-tokenizer/internal/text"
)

// DecodeFormatError reports a symbol that was expected to be a decimal
// merge-space ID during decoding but did not parse as one.
type DecodeFormatError struct {
	Token string
}

func (e *DecodeFormatError) Error() string {
	return fmt.Sprintf("tokenizer: non-numeric symbol %q in decoded ID stream", e.Token)
}

// Tokenizer owns a symbol dictionary and holds a shared reference to a
// pretrained BPE segmenter. The segmenter is never mutated; the dictionary
// may grow during encoding when add-unknown is enabled, so a Tokenizer must
// not be shared across concurrent encoders in that mode.
type Tokenizer struct {
	dict  *dict.Dictionary
	seg   bpe.Segmenter
	cls   string
	sep   string
	sepID dict.ID

	addUnknown bool
	clean      func(string) string
}

// Option configures a Tokenizer.
type Option func(*Tokenizer)

// WithMarkers overrides the boundary marker symbols. Both must already be
// registered in the dictionary; the defaults <s> and </s> are seeded by
// dict.DefaultSpecials.
func WithMarkers(cls, sep string) Option {
	return func(t *Tokenizer) {
		t.cls = cls
		t.sep = sep
	}
}

// WithAddUnknown controls whether encoding registers unseen merge-ID strings
// in the dictionary (the pretrained-loading default) or resolves them to unk.
func WithAddUnknown(add bool) Option {
	return func(t *Tokenizer) { t.addUnknown = add }
}

// WithCleanFunc replaces the post-decode spacing cleanup collaborator.
func WithCleanFunc(fn func(string) string) Option {
	return func(t *Tokenizer) { t.clean = fn }
}

// New builds a bridging tokenizer over d and seg. The separator marker's
// dictionary ID is resolved here, once, so decoding never relies on a
// hard-coded ID value.
func New(d *dict.Dictionary, seg bpe.Segmenter, opts ...Option) *Tokenizer {
	t := &Tokenizer{
		dict:       d,
		seg:        seg,
		cls:        "<s>",
		sep:        "</s>",
		addUnknown: true,
		clean:      text.CleanSpacing,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.sepID = d.Index(t.sep)
	return t
}

// Dict exposes the owned symbol dictionary.
func (t *Tokenizer) Dict() *dict.Dictionary { return t.dict }

// Encode converts a primary text, plus any additional sentence-pair texts,
// into dictionary-space IDs. The result always starts with the cls marker's
// ID and ends with the sep marker's ID; each additional text is wrapped in a
// further pair of sep markers, so segment boundaries appear as two
// consecutive sep IDs.
func (t *Tokenizer) Encode(primary string, additional ...string) []dict.ID {
	parts := make([]string, 0, 8)
	parts = append(parts, t.cls)
	parts = append(parts, t.mergeIDStrings(primary)...)
	parts = append(parts, t.sep)
	for _, extra := range additional {
		parts = append(parts, t.sep)
		parts = append(parts, t.mergeIDStrings(extra)...)
		parts = append(parts, t.sep)
	}

	opts := []dict.LineOption{dict.WithoutEOS()}
	if !t.addUnknown {
		opts = append(opts, dict.LookupOnly())
	}
	return t.dict.EncodeLine(strings.Join(parts, " "), opts...)
}

// mergeIDStrings segments one text and renders its merge-space IDs as
// decimal strings.
func (t *Tokenizer) mergeIDStrings(s string) []string {
	ids := t.seg.TokensToIDs(t.seg.Tokenize(s))
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strconv.Itoa(int(id))
	}
	return out
}

type decodeOptions struct {
	skipSpecial bool
	clean       bool
}

// DecodeOption configures a single Decode call.
type DecodeOption func(*decodeOptions)

// SkipSpecial drops non-numeric special symbols found inside segments
// instead of failing on them.
func SkipSpecial() DecodeOption {
	return func(o *decodeOptions) { o.skipSpecial = true }
}

// RawSpacing disables the post-decode spacing cleanup.
func RawSpacing() DecodeOption {
	return func(o *decodeOptions) { o.clean = false }
}

// Decode converts dictionary-space IDs produced by Encode back into text,
// one string per segment. The first and last IDs are the structural cls/sep
// wrapper and are always dropped; the remaining stream is split into
// segments wherever two consecutive sep IDs occur.
//
// A symbol inside a segment that does not parse as a decimal merge-space ID
// yields a *DecodeFormatError unless SkipSpecial is set.
func (t *Tokenizer) Decode(ids []dict.ID, opts ...DecodeOption) ([]string, error) {
	o := decodeOptions{clean: true}
	for _, opt := range opts {
		opt(&o)
	}

	// Structural wrapper added by Encode.
	if len(ids) >= 2 {
		ids = ids[1 : len(ids)-1]
	} else {
		ids = nil
	}

	segments := splitOnSepPair(ids, t.sepID)
	texts := make([]string, 0, len(segments))
	for _, segment := range segments {
		mergeIDs := make([]bpe.ID, 0, len(segment))
		for _, id := range segment {
			sym := t.dict.Symbol(id)
			n, err := strconv.Atoi(sym)
			if err != nil {
				if o.skipSpecial {
					continue
				}
				return nil, &DecodeFormatError{Token: sym}
			}
			mergeIDs = append(mergeIDs, bpe.ID(n))
		}

		out := t.seg.TokensToString(t.seg.IDsToTokens(mergeIDs))
		if o.clean {
			out = t.clean(out)
		}
		texts = append(texts, out)
	}

	return texts, nil
}

// splitOnSepPair splits ids into segments delimited by two consecutive sep
// IDs. It always returns at least one (possibly empty) segment.
func splitOnSepPair(ids []dict.ID, sep dict.ID) [][]dict.ID {
	var parts [][]dict.ID
	start := 0
	for i := 0; i+1 < len(ids); {
		if ids[i] == sep && ids[i+1] == sep {
			parts = append(parts, ids[start:i])
			i += 2
			start = i
		} else {
			i++
		}
	}
	return append(parts, ids[start:])
}

// TokenToID resolves a single symbol to its dictionary-space ID, with the
// dictionary's unk fallback.
func (t *Tokenizer) TokenToID(token string) dict.ID {
	return t.dict.Index(token)
}

// IDToToken resolves a single dictionary-space ID to a subword token. A
// numeric symbol is treated as a merge-space ID and resolved through the
// segmenter; a non-numeric symbol (a special marker) is returned verbatim.
func (t *Tokenizer) IDToToken(id dict.ID) string {
	sym := t.dict.Symbol(id)
	n, err := strconv.Atoi(sym)
	if err != nil {
		return sym
	}

	tokens := t.seg.IDsToTokens([]bpe.ID{bpe.ID(n)})
	if len(tokens) == 0 {
		return sym
	}
	return tokens[0]
}
