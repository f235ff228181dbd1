package tools

import (
	"fmt"
	"io"
	"sort"

	"github.com/lookbusy1344/riscv-pipeline/parser"
)

// XrefEntry is one label's definition site and every place it is used.
type XrefEntry struct {
	Name       string
	Address    uint32
	DefinedAt  parser.Position
	References []parser.Position
}

// Xref builds a cross-reference table from a parsed program's label table,
// sorted by address for a stable, readable report.
func Xref(prog *parser.Program) []XrefEntry {
	labels := prog.Labels.All()
	entries := make([]XrefEntry, 0, len(labels))
	for name, label := range labels {
		entries = append(entries, XrefEntry{
			Name:       name,
			Address:    label.Address,
			DefinedAt:  label.Pos,
			References: label.References,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Address < entries[j].Address })
	return entries
}

// WriteXref renders a cross-reference table:
//
//	<label> (0x<addr>) defined at <pos>
//	    referenced at <pos>, <pos>, ...
func WriteXref(w io.Writer, entries []XrefEntry) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s (%#08x) defined at %s\n", e.Name, e.Address, e.DefinedAt)
		if len(e.References) == 0 {
			fmt.Fprintf(w, "    (never referenced)\n")
			continue
		}
		fmt.Fprintf(w, "    referenced at")
		for i, pos := range e.References {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, " %s", pos)
		}
		fmt.Fprintln(w)
	}
}
