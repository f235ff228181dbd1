package vm

// InstructionCategory buckets a committed instruction for the per-category
// counters (spec.md §4.10).
type InstructionCategory int

const (
	CategoryALU InstructionCategory = iota
	CategoryDataTransfer
	CategoryControl
)

// Statistics accumulates the counters spec.md §4.10 names. All fields are
// read-only from outside the package except through the Simulator's public
// accessors.
type Statistics struct {
	TotalCycles       uint64
	TotalInstructions uint64 // non-NOP commits only (spec.md §3 invariant)

	CategoryCounts map[InstructionCategory]uint64

	TotalStallCycles          uint64
	DataHazardStalls          uint64
	ControlHazardStalls       uint64
	StructuralHazardStalls    uint64
	DistinctDataHazards       int
	DistinctControlHazards    int
	DistinctStructuralHazards int
	BranchMispredictions      uint64

	MemoryWarnings         []string // misaligned-access
	MemoryReadMissWarnings []string // read of an address with no explicit entry
	UnknownOpcodeWarnings  []string // (opcode, funct3, funct7) with no table entry
	DivByZeroWarnings      []string // div/rem by zero
}

// NewStatistics creates a zeroed statistics block.
func NewStatistics() *Statistics {
	return &Statistics{CategoryCounts: make(map[InstructionCategory]uint64)}
}

// CPI computes cycles-per-instruction; 0 instructions reports 0 rather than
// dividing by zero.
func (s *Statistics) CPI() float64 {
	if s.TotalInstructions == 0 {
		return 0
	}
	return float64(s.TotalCycles) / float64(s.TotalInstructions)
}

func categoryFor(mnemonic string, ctrl Control) InstructionCategory {
	switch {
	case ctrl.MemRead || ctrl.MemWrite:
		return CategoryDataTransfer
	case ctrl.IsBranch || ctrl.IsJump:
		return CategoryControl
	default:
		return CategoryALU
	}
}
