package tools_test

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/riscv-pipeline/parser"
	"github.com/lookbusy1344/riscv-pipeline/tools"
)

func mustParse(t *testing.T, src string) *parser.Program {
	t.Helper()
	prog, err := parser.Parse("t.s", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return prog
}

func TestFormatAlignsOperandsAndKeepsLabels(t *testing.T) {
	prog := mustParse(t, ".text\nL: addi x1, x0, 5\n")
	out := tools.Format(prog, nil)
	if !strings.Contains(out, "L:\n") {
		t.Fatalf("expected label line, got:\n%s", out)
	}
	if !strings.Contains(out, "addi") || !strings.Contains(out, "x1, x0, 5") {
		t.Fatalf("expected formatted instruction, got:\n%s", out)
	}
}

func TestFormatEmitsDataSegment(t *testing.T) {
	prog := mustParse(t, ".data\n.word 1, 2\n.text\naddi x1, x0, 0\n")
	out := tools.Format(prog, nil)
	if !strings.Contains(out, ".data") {
		t.Fatalf("expected .data section in output, got:\n%s", out)
	}
}
