package dict

import "strings"

// lineOptions carries the knobs for EncodeLine. Defaults match the pretrained
// loading convention: unknown words are added to the dictionary and the line
// is terminated with the EOS ID.
type lineOptions struct {
	addIfMissing bool
	appendEOS    bool
	reverse      bool
	onToken      func(word string, id ID)
	split        func(string) []string
}

// LineOption configures a single EncodeLine call.
type LineOption func(*lineOptions)

// WithoutEOS suppresses the trailing EOS ID.
func WithoutEOS() LineOption {
	return func(o *lineOptions) { o.appendEOS = false }
}

// LookupOnly resolves words via Index instead of Add, so unknown words map to
// the unk ID rather than growing the dictionary.
func LookupOnly() LineOption {
	return func(o *lineOptions) { o.addIfMissing = false }
}

// ReverseOrder reverses the word order before resolving IDs.
func ReverseOrder() LineOption {
	return func(o *lineOptions) { o.reverse = true }
}

// WithTokenFunc installs an observation hook invoked once per word with the
// word and its resolved ID. It has no effect on the result.
func WithTokenFunc(fn func(word string, id ID)) LineOption {
	return func(o *lineOptions) { o.onToken = fn }
}

// WithSplitFunc replaces the default whitespace splitter.
func WithSplitFunc(fn func(string) []string) LineOption {
	return func(o *lineOptions) { o.split = fn }
}

// EncodeLine splits line into words (collapsing whitespace runs and trimming
// the ends by default) and resolves each word to its dictionary ID, returning
// the ordered ID sequence.
func (d *Dictionary) EncodeLine(line string, opts ...LineOption) []ID {
	o := lineOptions{
		addIfMissing: true,
		appendEOS:    true,
		split:        strings.Fields,
	}
	for _, opt := range opts {
		opt(&o)
	}

	words := o.split(line)
	if o.reverse {
		for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
			words[i], words[j] = words[j], words[i]
		}
	}

	ids := make([]ID, 0, len(words)+1)
	for _, word := range words {
		var id ID
		if o.addIfMissing {
			id = d.Add(word)
		} else {
			id = d.Index(word)
		}
		if o.onToken != nil {
			o.onToken(word, id)
		}
		ids = append(ids, id)
	}

	if o.appendEOS {
		ids = append(ids, d.eos)
	}

	return ids
}
