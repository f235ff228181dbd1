package vm

import (
	"fmt"
	"io"
)

// btbEntry is one branch-target-buffer row (spec.md §4.8).
type btbEntry struct {
	pc        uint32
	target    uint32
	valid     bool
	direction bool // last observed taken/not-taken
}

// BranchPredictor is a never-evicting branch-target buffer with a one-bit
// last-outcome direction predictor. Entries are appended in first-seen
// order and never removed, matching the "ordered list of entries" wording
// of spec.md §4.8.
type BranchPredictor struct {
	entries []btbEntry
	index   map[uint32]int
}

// NewBranchPredictor creates an empty predictor.
func NewBranchPredictor() *BranchPredictor {
	return &BranchPredictor{index: make(map[uint32]int)}
}

// Predict returns the predicted (taken, target) for a fetch at pc. An
// unseen PC predicts not-taken with target PC+4.
func (p *BranchPredictor) Predict(pc uint32) (taken bool, target uint32) {
	if i, ok := p.index[pc]; ok {
		e := p.entries[i]
		if e.valid {
			return e.direction, e.target
		}
	}
	return false, pc + 4
}

// Resolve records the observed outcome of a branch at pc. It reports
// whether the BTB was written: true for a new entry or a changed one, false
// when the existing entry already matched. decodeStage uses this to mark a
// BTB update in the trace.
func (p *BranchPredictor) Resolve(pc uint32, taken bool, target uint32) (updated bool) {
	if i, ok := p.index[pc]; ok {
		e := &p.entries[i]
		if e.direction == taken && e.target == target {
			return false
		}
		e.direction = taken
		e.target = target
		e.valid = true
		return true
	}
	p.index[pc] = len(p.entries)
	p.entries = append(p.entries, btbEntry{pc: pc, target: target, valid: true, direction: taken})
	return true
}

// Entries returns a stable snapshot of the BTB contents for the dump/trace
// tooling, in insertion order.
func (p *BranchPredictor) Entries() []BTBEntrySnapshot {
	out := make([]BTBEntrySnapshot, len(p.entries))
	for i, e := range p.entries {
		out[i] = BTBEntrySnapshot{PC: e.pc, Target: e.target, Valid: e.valid, Direction: e.direction}
	}
	return out
}

// DumpState writes one line per BTB entry in insertion order, for the
// -btb-dump CLI flag.
func (p *BranchPredictor) DumpState(w io.Writer) {
	for i, e := range p.entries {
		fmt.Fprintf(w, "BTB[%d]: PC=%#08x Target=%#08x Valid=%t LastDir=%t\n", i, e.pc, e.target, e.valid, e.direction)
	}
}

// BTBEntrySnapshot is the read-only view of a BTB row exposed outside the
// package (the tuiwatch BTB pane, the apiserver's new-entry events).
type BTBEntrySnapshot struct {
	PC        uint32
	Target    uint32
	Valid     bool
	Direction bool
}
