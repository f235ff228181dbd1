package parser_test

import (
	"testing"

	"github.com/lookbusy1344/riscv-pipeline/parser"
)

func TestProcessEscapeSequencesExpandsKnownEscapes(t *testing.T) {
	got := parser.ProcessEscapeSequences(`line1\nline2\ttabbed\x41`)
	want := "line1\nline2\ttabbedA"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestProcessEscapeSequencesLeavesUnknownEscapeAlone(t *testing.T) {
	got := parser.ProcessEscapeSequences(`\q`)
	if got != `\q` {
		t.Fatalf("got %q, want %q", got, `\q`)
	}
}

func TestParseEscapeCharDecodesHexEscape(t *testing.T) {
	b, consumed, err := parser.ParseEscapeChar(`\x41`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b != 'A' || consumed != 4 {
		t.Fatalf("got (%q, %d), want ('A', 4)", b, consumed)
	}
}

func TestParseEscapeCharRejectsUnknownEscape(t *testing.T) {
	if _, _, err := parser.ParseEscapeChar(`\q`); err == nil {
		t.Fatal("expected an error for an unknown escape sequence")
	}
}
