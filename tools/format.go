// Package tools provides source-level assembly tooling: a column-aligning
// formatter, a best-practices linter, and a label cross-referencer, all
// operating on an already-parsed parser.Program.
package tools

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lookbusy1344/riscv-pipeline/parser"
)

// FormatOptions controls column alignment in the formatter's output.
type FormatOptions struct {
	InstructionColumn int
	OperandColumn     int
	AlignOperands     bool
}

// DefaultFormatOptions returns the formatter's out-of-the-box column widths.
func DefaultFormatOptions() *FormatOptions {
	return &FormatOptions{InstructionColumn: 8, OperandColumn: 16, AlignOperands: true}
}

// Format re-renders prog's statements with consistent column alignment,
// grouped under `.text`/`.data` the way they were declared. Labels print on
// their own line when followed immediately by an instruction at the same
// address.
func Format(prog *parser.Program, opts *FormatOptions) string {
	if opts == nil {
		opts = DefaultFormatOptions()
	}

	labelsByAddr := make(map[uint32][]string)
	for name, label := range prog.Labels.All() {
		labelsByAddr[label.Address] = append(labelsByAddr[label.Address], name)
	}
	for addr := range labelsByAddr {
		sort.Strings(labelsByAddr[addr])
	}

	var b strings.Builder
	b.WriteString(".text\n")
	for _, inst := range prog.Instructions {
		for _, name := range labelsByAddr[inst.Address] {
			fmt.Fprintf(&b, "%s:\n", name)
		}
		writeStatement(&b, opts, inst.Mnemonic, inst.Operands)
	}

	if len(prog.Directives) > 0 {
		b.WriteString(".data\n")
		for _, d := range prog.Directives {
			for _, name := range labelsByAddr[d.Address] {
				fmt.Fprintf(&b, "%s:\n", name)
			}
			writeStatement(&b, opts, d.Name, d.Args)
		}
	}

	return b.String()
}

func writeStatement(b *strings.Builder, opts *FormatOptions, mnemonic string, operands []string) {
	pad := opts.InstructionColumn
	b.WriteString(strings.Repeat(" ", pad))
	b.WriteString(mnemonic)
	if len(operands) == 0 {
		b.WriteByte('\n')
		return
	}
	if opts.AlignOperands {
		gap := opts.OperandColumn - pad - len(mnemonic)
		if gap < 1 {
			gap = 1
		}
		b.WriteString(strings.Repeat(" ", gap))
	} else {
		b.WriteByte(' ')
	}
	b.WriteString(strings.Join(operands, ", "))
	b.WriteByte('\n')
}
