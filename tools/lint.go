package tools

import (
	"fmt"

	"github.com/lookbusy1344/riscv-pipeline/isa"
	"github.com/lookbusy1344/riscv-pipeline/parser"
)

// LintLevel is the severity of a lint finding.
type LintLevel int

const (
	LintError LintLevel = iota
	LintWarning
	LintInfo
)

func (l LintLevel) String() string {
	switch l {
	case LintError:
		return "error"
	case LintWarning:
		return "warning"
	default:
		return "info"
	}
}

// LintIssue is a single finding, located at the statement's source position.
type LintIssue struct {
	Level   LintLevel
	Pos     parser.Position
	Message string
	Code    string
}

func (i *LintIssue) String() string {
	return fmt.Sprintf("%s: %s: %s [%s]", i.Pos, i.Level, i.Message, i.Code)
}

// Lint analyzes an already-parsed program for undefined/unused labels,
// unreachable code after an unconditional jump, and writes to x0.
func Lint(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue

	issues = append(issues, lintUndefinedLabels(prog)...)
	issues = append(issues, lintUnusedLabels(prog)...)
	issues = append(issues, lintUnreachableCode(prog)...)
	issues = append(issues, lintWritesToX0(prog)...)

	return issues
}

func lintUndefinedLabels(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue
	for _, inst := range prog.Instructions {
		for _, op := range inst.Operands {
			if !looksLikeLabelReference(inst.Mnemonic, op) {
				continue
			}
			if _, ok := prog.Labels.Lookup(op); !ok {
				issues = append(issues, &LintIssue{
					Level: LintError, Pos: inst.Pos, Code: "UNDEF_LABEL",
					Message: fmt.Sprintf("undefined label %q", op),
				})
			}
		}
	}
	return issues
}

func lintUnusedLabels(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue
	for name, label := range prog.Labels.All() {
		if len(label.References) == 0 {
			issues = append(issues, &LintIssue{
				Level: LintWarning, Pos: label.Pos, Code: "UNUSED_LABEL",
				Message: fmt.Sprintf("label %q is never referenced", name),
			})
		}
	}
	return issues
}

// lintUnreachableCode flags any instruction immediately following an
// unconditional jump (jal with x0 as rd, which does not link) that isn't itself
// the target of some label — a straight-line program never branches back
// into it.
func lintUnreachableCode(prog *parser.Program) []*LintIssue {
	targeted := make(map[uint32]bool)
	for _, label := range prog.Labels.All() {
		targeted[label.Address] = true
	}

	var issues []*LintIssue
	prevWasUnconditionalJump := false
	for _, inst := range prog.Instructions {
		if prevWasUnconditionalJump && !targeted[inst.Address] {
			issues = append(issues, &LintIssue{
				Level: LintWarning, Pos: inst.Pos, Code: "UNREACHABLE_CODE",
				Message: "instruction follows an unconditional jump and is never branched to",
			})
		}
		prevWasUnconditionalJump = inst.Mnemonic == "jal" && len(inst.Operands) > 0 && inst.Operands[0] == "x0"
	}
	return issues
}

func lintWritesToX0(prog *parser.Program) []*LintIssue {
	var issues []*LintIssue
	for _, inst := range prog.Instructions {
		def, ok := isa.ByMnemonic(inst.Mnemonic)
		if !ok || def.Format == isa.FormatS || def.Format == isa.FormatB {
			continue
		}
		if len(inst.Operands) > 0 && (inst.Operands[0] == "x0" || inst.Operands[0] == "zero") {
			issues = append(issues, &LintIssue{
				Level: LintInfo, Pos: inst.Pos, Code: "WRITE_TO_X0",
				Message: "writing to x0 has no effect, x0 is hardwired to zero",
			})
		}
	}
	return issues
}

func looksLikeLabelReference(mnemonic, operand string) bool {
	switch mnemonic {
	case "beq", "bne", "blt", "bge", "bltu", "bgeu", "jal":
		return len(operand) > 0 && (operand[0] < '0' || operand[0] > '9') && operand[0] != '-' && operand[0] != 'x'
	default:
		return false
	}
}
