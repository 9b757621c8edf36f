package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/go-roberta-tokenizer/internal/testutil"
)

func TestDecodeCommand_SingleSegment(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	out, err := runCommand(t, fixtureArgs(fix, "decode", "0", "4", "5", "2")...)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := strings.TrimSpace(out); got != "hello world" {
		t.Errorf("output = %q, want %q", got, "hello world")
	}
}

func TestDecodeCommand_TwoSegments(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	out, err := runCommand(t, fixtureArgs(fix, "decode", "0", "4", "2", "2", "6", "2")...)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := strings.TrimSpace(out); got != "hello\nworld" {
		t.Errorf("output = %q, want %q", got, "hello\nworld")
	}
}

func TestDecodeCommand_JSON(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	out, err := runCommand(t, fixtureArgs(fix, "decode", "--json", "0", "4", "2")...)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if got := strings.TrimSpace(out); got != `{"segments":["hello"]}` {
		t.Errorf("output = %q, want %q", got, `{"segments":["hello"]}`)
	}
}

func TestDecodeCommand_StdinFallback(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader("0 4 5 2\n"))
	root.SetArgs(fixtureArgs(fix, "decode"))

	if err := root.Execute(); err != nil {
		t.Fatalf("decode from stdin: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hello world" {
		t.Errorf("output = %q, want %q", got, "hello world")
	}
}

func TestDecodeCommand_StraySpecialFails(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	// Inner ID 1 renders as the literal "<pad>" symbol.
	if _, err := runCommand(t, fixtureArgs(fix, "decode", "0", "1", "2")...); err == nil {
		t.Fatal("expected decode error for stray special symbol")
	}
}

func TestDecodeCommand_SkipSpecial(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	out, err := runCommand(t, fixtureArgs(fix, "decode", "--skip-special", "0", "4", "1", "2")...)
	if err != nil {
		t.Fatalf("decode --skip-special: %v", err)
	}

	if got := strings.TrimSpace(out); got != "hello" {
		t.Errorf("output = %q, want %q", got, "hello")
	}
}

func TestDecodeCommand_NonNumericArgFails(t *testing.T) {
	fix := testutil.WriteVocabFixture(t)

	if _, err := runCommand(t, fixtureArgs(fix, "decode", "zero")...); err == nil {
		t.Fatal("expected error for non-numeric ID argument")
	}
}
