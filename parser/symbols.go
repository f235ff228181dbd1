package parser

import "fmt"

// Label records a text-segment label and where it was defined.
type Label struct {
	Name       string
	Address    uint32
	Pos        Position
	References []Position
}

// LabelTable is the pass-1 label table (spec.md §3/§4.3): label name to the
// address it marks within the text segment. Every label is unique.
type LabelTable struct {
	labels map[string]*Label
}

// NewLabelTable creates an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{labels: make(map[string]*Label)}
}

// Define records a label at an address. Redefining an already-defined
// label is a syntax error the caller should surface as ErrorInvalidLabel.
func (lt *LabelTable) Define(name string, address uint32, pos Position) error {
	if existing, ok := lt.labels[name]; ok {
		return fmt.Errorf("label %q already defined at %s", name, existing.Pos)
	}
	lt.labels[name] = &Label{Name: name, Address: address, Pos: pos}
	return nil
}

// Reference records a use of a label (for the undefined-label check after
// pass 1, and for the cross-reference tool).
func (lt *LabelTable) Reference(name string, pos Position) {
	if l, ok := lt.labels[name]; ok {
		l.References = append(l.References, pos)
	}
}

// Lookup returns a label's address, per spec.md's INVALID_LABEL failure
// mode for undefined labels.
func (lt *LabelTable) Lookup(name string) (uint32, bool) {
	l, ok := lt.labels[name]
	if !ok {
		return 0, false
	}
	return l.Address, true
}

// All returns every defined label, for xref/debug tooling.
func (lt *LabelTable) All() map[string]*Label {
	return lt.labels
}
