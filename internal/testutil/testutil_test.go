package testutil_test

import (
	"testing"

	"github.com/example/go-roberta-tokenizer/internal/dict"
	"github.com/example/go-roberta-tokenizer/internal/testutil"
)

func TestWriteVocabFixture_DictLoads(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	d, err := dict.FromFile(fix.DictPath, false)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if d.Len() != 7 {
		t.Errorf("Len() = %d, want 7 (4 specials + 3 fixture entries)", d.Len())
	}
	if got := d.Index("10"); got != 4 {
		t.Errorf("Index(10) = %d, want 4", got)
	}
}
