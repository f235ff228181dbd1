package tools_test

import (
	"testing"

	"github.com/lookbusy1344/riscv-pipeline/tools"
)

func hasCode(issues []*tools.LintIssue, code string) bool {
	for _, i := range issues {
		if i.Code == code {
			return true
		}
	}
	return false
}

func TestLintFlagsUndefinedLabel(t *testing.T) {
	prog := mustParse(t, ".text\nbeq x0, x0, NOWHERE\n")
	issues := tools.Lint(prog)
	if !hasCode(issues, "UNDEF_LABEL") {
		t.Fatalf("expected UNDEF_LABEL, got %v", issues)
	}
}

func TestLintFlagsUnusedLabel(t *testing.T) {
	prog := mustParse(t, ".text\nL: addi x1, x0, 1\naddi x2, x0, 2\n")
	issues := tools.Lint(prog)
	if !hasCode(issues, "UNUSED_LABEL") {
		t.Fatalf("expected UNUSED_LABEL, got %v", issues)
	}
}

func TestLintFlagsWriteToX0(t *testing.T) {
	prog := mustParse(t, ".text\naddi x0, x0, 5\n")
	issues := tools.Lint(prog)
	if !hasCode(issues, "WRITE_TO_X0") {
		t.Fatalf("expected WRITE_TO_X0, got %v", issues)
	}
}

func TestLintCleanProgramHasNoErrors(t *testing.T) {
	prog := mustParse(t, ".text\nL: addi x1, x0, 1\nbeq x1, x0, L\n")
	issues := tools.Lint(prog)
	for _, i := range issues {
		if i.Level == tools.LintError {
			t.Fatalf("unexpected error-level issue: %v", i)
		}
	}
}
