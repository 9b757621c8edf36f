// Package testutil provides shared vocabulary fixtures for tests that need
// real files on disk: a tiny GPT-2 style BPE vocabulary and merge table able
// to tokenize "hello world", and a matching fairseq-format dictionary file.
//
// Typical usage:
//
//	func TestEncodeCommand(t *testing.T) {
//	    fix := testutil.WriteVocabFixture(t)
//	    ...
//	}
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Fixture holds the paths of the files written by WriteVocabFixture.
type Fixture struct {
	DictPath   string
	VocabPath  string
	MergesPath string
}

// fixtureVocab maps byte-level token strings to merge-space IDs. "Ġ" is
// the remapped space byte.
const fixtureVocab = `{"h":0,"e":1,"l":2,"o":3,"w":4,"r":5,"d":6,"ll":7,"he":8,"hell":9,"hello":10,"Ġ":11,"or":12,"ld":13,"orld":14,"world":15,"Ġworld":16}`

const fixtureMerges = `#version: 0.2
l l
h e
he ll
hell o
o r
l d
or ld
w orld
` + "Ġ" + ` world
`

// fixtureDict registers the merge-space IDs of "hello" (10), "Ġworld"
// (16) and "world" (15) as dictionary symbols, in that order, so they get
// dictionary IDs 4, 5 and 6 after the four default specials.
const fixtureDict = `10 100
16 50
15 40
`

// WriteVocabFixture writes the fixture files into a fresh temp directory and
// returns their paths. With this fixture:
//
//	Tokenize("hello world") -> ["hello", "Ġworld"] -> merge IDs [10, 16]
//	Tokenize("world")       -> ["world"]                -> merge IDs [15]
func WriteVocabFixture(tb testing.TB) Fixture {
	tb.Helper()

	dir := tb.TempDir()
	fix := Fixture{
		DictPath:   filepath.Join(dir, "dict.txt"),
		VocabPath:  filepath.Join(dir, "encoder.json"),
		MergesPath: filepath.Join(dir, "vocab.bpe"),
	}

	writeFile(tb, fix.DictPath, fixtureDict)
	writeFile(tb, fix.VocabPath, fixtureVocab)
	writeFile(tb, fix.MergesPath, fixtureMerges)

	return fix
}

func writeFile(tb testing.TB, path, content string) {
	tb.Helper()

	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		tb.Fatalf("write fixture %s: %v", path, err)
	}
}
