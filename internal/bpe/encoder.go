package bpe

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// mergeCacheSize bounds the per-fragment merge-result cache.
const mergeCacheSize = 8192

// splitPattern is the GPT-2 word-split expression, rewritten without the
// trailing negative lookahead so it compiles under RE2.
const splitPattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+(\S){0}|\s+`

// ErrEmptyPath is returned when NewEncoder is called with an empty file path.
var ErrEmptyPath = errors.New("bpe: vocabulary and merges paths must not be empty")

type pair struct {
	left  string
	right string
}

// Encoder is a byte-level BPE segmenter backed by a pretrained GPT-2 style
// vocabulary (encoder.json) and ranked merge table (vocab.bpe). It is
// immutable after construction apart from its internal cache, which is safe
// for concurrent use.
type Encoder struct {
	vocab    map[string]ID
	tokens   map[ID]string
	ranks    map[pair]int
	pattern  *regexp.Regexp
	byteRune [256]rune
	runeByte map[rune]byte
	cache    *lru.Cache[string, []string]
}

// NewEncoder loads a byte-level BPE segmenter from a token-to-ID vocabulary
// JSON file and a ranked merge list. The merge file's first line is treated
// as a header and skipped.
func NewEncoder(vocabPath, mergesPath string) (*Encoder, error) {
	if vocabPath == "" || mergesPath == "" {
		return nil, ErrEmptyPath
	}

	vocabData, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("bpe: read vocabulary %q: %w", vocabPath, err)
	}
	vocab := make(map[string]ID)
	if err := json.Unmarshal(vocabData, &vocab); err != nil {
		return nil, fmt.Errorf("bpe: parse vocabulary %q: %w", vocabPath, err)
	}

	tokens := make(map[ID]string, len(vocab))
	for tok, id := range vocab {
		tokens[id] = tok
	}

	ranks, err := loadMerges(mergesPath)
	if err != nil {
		return nil, err
	}

	pattern, err := regexp.Compile(splitPattern)
	if err != nil {
		return nil, fmt.Errorf("bpe: compile split pattern: %w", err)
	}

	cache, err := lru.New[string, []string](mergeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("bpe: create merge cache: %w", err)
	}

	e := &Encoder{
		vocab:   vocab,
		tokens:  tokens,
		ranks:   ranks,
		pattern: pattern,
		cache:   cache,
	}
	e.byteRune, e.runeByte = byteTables()

	return e, nil
}

func loadMerges(path string) (map[pair]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("bpe: open merges %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	ranks := make(map[pair]int)
	scanner := bufio.NewScanner(f)
	rank := 0
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue // "#version" header
		}
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("bpe: merges %q: malformed line %q", path, line)
		}
		ranks[pair{parts[0], parts[1]}] = rank
		rank++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("bpe: read merges %q: %w", path, err)
	}

	return ranks, nil
}

// byteTables builds the reversible byte-to-rune remapping GPT-2 uses so that
// arbitrary bytes become printable runes. Printable Latin-1 bytes map to
// themselves; the rest shift into the range starting at U+0100.
func byteTables() ([256]rune, map[rune]byte) {
	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}

	var toRune [256]rune
	fromRune := make(map[rune]byte, 256)
	shift := 0
	for b := 0; b < 256; b++ {
		if printable(b) {
			toRune[b] = rune(b)
		} else {
			toRune[b] = rune(256 + shift)
			shift++
		}
		fromRune[toRune[b]] = byte(b)
	}

	return toRune, fromRune
}

// Tokenize splits text into byte-level BPE subword tokens.
func (e *Encoder) Tokenize(text string) []string {
	out := []string{}
	for _, word := range e.pattern.FindAllString(text, -1) {
		out = append(out, e.merge(e.toUnicode(word))...)
	}
	return out
}

// TokensToIDs maps subword tokens to merge-space IDs. Tokens missing from
// the vocabulary map to ID 0.
func (e *Encoder) TokensToIDs(tokens []string) []ID {
	ids := make([]ID, len(tokens))
	for i, tok := range tokens {
		ids[i] = e.vocab[tok]
	}
	return ids
}

// IDsToTokens maps merge-space IDs back to subword tokens. IDs missing from
// the vocabulary are skipped.
func (e *Encoder) IDsToTokens(ids []ID) []string {
	tokens := make([]string, 0, len(ids))
	for _, id := range ids {
		if tok, ok := e.tokens[id]; ok {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// TokensToString renders subword tokens back into text by inverting the
// byte-to-rune remapping.
func (e *Encoder) TokensToString(tokens []string) string {
	joined := strings.Join(tokens, "")
	decoded := make([]byte, 0, len(joined))
	for _, r := range joined {
		if b, ok := e.runeByte[r]; ok {
			decoded = append(decoded, b)
		}
	}
	return string(decoded)
}

// toUnicode remaps each byte of word to its printable rune form.
func (e *Encoder) toUnicode(word string) string {
	raw := []byte(word)
	runes := make([]rune, len(raw))
	for i, b := range raw {
		runes[i] = e.byteRune[b]
	}
	return string(runes)
}

// merge applies the ranked merge table to a remapped word fragment, greedily
// merging the lowest-ranked adjacent pair until none remains.
func (e *Encoder) merge(fragment string) []string {
	if hit, ok := e.cache.Get(fragment); ok {
		return hit
	}

	word := strings.Split(fragment, "")
	for len(word) > 1 {
		best := -1
		var bestPair pair
		for i := 0; i < len(word)-1; i++ {
			p := pair{word[i], word[i+1]}
			if r, ok := e.ranks[p]; ok && (best == -1 || r < best) {
				best = r
				bestPair = p
			}
		}
		if best == -1 {
			break
		}

		merged := make([]string, 0, len(word))
		for i := 0; i < len(word); {
			if i < len(word)-1 && word[i] == bestPair.left && word[i+1] == bestPair.right {
				merged = append(merged, word[i]+word[i+1])
				i += 2
			} else {
				merged = append(merged, word[i])
				i++
			}
		}
		word = merged
	}

	e.cache.Add(fragment, word)
	return word
}
