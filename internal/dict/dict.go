// Package dict implements a fairseq-style symbol dictionary: a bidirectional
// mapping between string symbols and dense consecutive integer IDs, with
// per-symbol occurrence counts and a fixed set of reserved special symbols.
//
// Lookups never fail: an unknown symbol resolves to the unk ID and an
// out-of-range ID resolves to the unk symbol string.
package dict

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ID is a dictionary-space identifier: the position of a symbol in the
// dictionary. IDs are assigned in insertion order, are dense, and are never
// reused or renumbered.
type ID int

// FormatError reports a dictionary line that does not match the expected
// "<symbol> <count>" layout.
type FormatError struct {
	Line int    // 1-based line number
	Text string // offending line content
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("dict: line %d: expected \"<symbol> <count>\", got %q", e.Line, e.Text)
}

// EncodingError reports a dictionary source that is not valid UTF-8.
type EncodingError struct {
	Line int // 1-based line number of the first invalid line
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("dict: line %d: source is not valid UTF-8", e.Line)
}

// Specials names the reserved symbols registered at construction.
type Specials struct {
	Pad   string
	EOS   string
	Unk   string
	BOS   string
	Extra []string
}

// DefaultSpecials returns the conventional special symbols used by the
// pretrained RoBERTa dictionaries.
func DefaultSpecials() Specials {
	return Specials{Pad: "<pad>", EOS: "</s>", Unk: "<unk>", BOS: "<s>"}
}

// Dictionary maps string symbols to dense integer IDs and back. It grows
// append-only and is not safe for concurrent mutation; read-only use after
// loading is safe from multiple goroutines.
type Dictionary struct {
	symbols []string
	counts  []int
	indices map[string]ID

	padWord string
	eosWord string
	unkWord string

	bos, pad, eos, unk ID
	nspecial           int
}

// New builds a dictionary seeded with the given special symbols.
// Registration order is fixed: BOS, Pad, EOS, Unk, then any extras. With
// DefaultSpecials this yields <s>=0, <pad>=1, </s>=2, <unk>=3.
func New(sp Specials) *Dictionary {
	d := &Dictionary{
		indices: make(map[string]ID),
		padWord: sp.Pad,
		eosWord: sp.EOS,
		unkWord: sp.Unk,
	}
	d.bos = d.Add(sp.BOS)
	d.pad = d.Add(sp.Pad)
	d.eos = d.Add(sp.EOS)
	d.unk = d.Add(sp.Unk)
	for _, s := range sp.Extra {
		d.Add(s)
	}
	d.nspecial = len(d.symbols)
	return d
}

// FromFile builds a dictionary with the default specials and loads entries
// from the file at path.
func FromFile(path string, ignoreEncodingErrors bool) (*Dictionary, error) {
	d := New(DefaultSpecials())
	if err := d.LoadFile(path, ignoreEncodingErrors); err != nil {
		return nil, err
	}
	return d, nil
}

// Add registers word with an occurrence count of one and returns its ID.
// If word is already registered its count is incremented and the existing
// ID is returned.
func (d *Dictionary) Add(word string) ID {
	return d.AddCount(word, 1)
}

// AddCount registers word with the given occurrence count, accumulating
// counts for already-registered symbols. It always succeeds.
func (d *Dictionary) AddCount(word string, n int) ID {
	if id, ok := d.indices[word]; ok {
		d.counts[id] += n
		return id
	}
	id := ID(len(d.symbols))
	d.indices[word] = id
	d.symbols = append(d.symbols, word)
	d.counts = append(d.counts, n)
	return id
}

// Index returns the ID registered for sym, or the unk ID when sym is
// unknown.
func (d *Dictionary) Index(sym string) ID {
	if id, ok := d.indices[sym]; ok {
		return id
	}
	return d.unk
}

// Symbol returns the symbol registered at id, or the unk symbol string when
// id is outside the dictionary's dense range.
func (d *Dictionary) Symbol(id ID) string {
	if id >= 0 && int(id) < len(d.symbols) {
		return d.symbols[id]
	}
	return d.unkWord
}

// Count returns the occurrence count recorded for id, or zero when id is out
// of range.
func (d *Dictionary) Count(id ID) int {
	if id >= 0 && int(id) < len(d.counts) {
		return d.counts[id]
	}
	return 0
}

// Len returns the number of registered symbols, specials included.
func (d *Dictionary) Len() int { return len(d.symbols) }

// NSpecial returns the number of special symbols registered at construction.
func (d *Dictionary) NSpecial() int { return d.nspecial }

// BOS returns the beginning-of-sequence ID.
func (d *Dictionary) BOS() ID { return d.bos }

// Pad returns the padding ID.
func (d *Dictionary) Pad() ID { return d.pad }

// EOS returns the end-of-sequence ID.
func (d *Dictionary) EOS() ID { return d.eos }

// Unk returns the unknown-symbol ID.
func (d *Dictionary) Unk() ID { return d.unk }

// PadWord returns the padding symbol string.
func (d *Dictionary) PadWord() string { return d.padWord }

// EOSWord returns the end-of-sequence symbol string.
func (d *Dictionary) EOSWord() string { return d.eosWord }

// UnkWord returns the unknown symbol string.
func (d *Dictionary) UnkWord() string { return d.unkWord }

// Load appends dictionary entries read from r. Each line carries a symbol
// followed by a count separated by the line's last space; the symbol itself
// may contain spaces.
//
// This is a raw bulk load: lines are appended without duplicate checking, so
// a repeated symbol shadows the earlier entry in the string index while both
// remain reachable by ID. A line with no space separator or a non-integer
// count yields a *FormatError. Input that is not valid UTF-8 yields an
// *EncodingError unless ignoreEncodingErrors is set, in which case the
// invalid bytes are dropped.
func (d *Dictionary) Load(r io.Reader, ignoreEncodingErrors bool) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("dict: read source: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1] // trailing newline
	}

	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")

		if !utf8.ValidString(line) {
			if !ignoreEncodingErrors {
				return &EncodingError{Line: i + 1}
			}
			line = strings.ToValidUTF8(line, "")
		}

		cut := strings.LastIndex(line, " ")
		if cut < 0 {
			return &FormatError{Line: i + 1, Text: line}
		}

		count, err := strconv.Atoi(line[cut+1:])
		if err != nil {
			return &FormatError{Line: i + 1, Text: line}
		}

		word := line[:cut]
		d.indices[word] = ID(len(d.symbols))
		d.symbols = append(d.symbols, word)
		d.counts = append(d.counts, count)
	}

	return nil
}

// LoadFile opens path and delegates to Load.
func (d *Dictionary) LoadFile(path string, ignoreEncodingErrors bool) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("dict: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return d.Load(f, ignoreEncodingErrors)
}
