package vm

import "github.com/lookbusy1344/riscv-pipeline/isa"

// Control is the per-instruction control bundle a decoded instruction
// carries through the rest of the pipeline (spec.md §3).
type Control struct {
	MemRead      bool
	MemWrite     bool
	RegWrite     bool
	IsBranch     bool
	UseImmediate bool
	OutputSelect isa.OutputSelect
	ALUOp        isa.ALUOp
	MemSize      isa.MemSize
	IsNop        bool
	IsJump       bool
	BranchOp     isa.BranchOp
}

// IFID is the fetch/decode latch: the raw fetched word, its PC, and the
// prediction fetch made for the *next* PC (needed at decode to tell whether
// the branch predictor got this instruction right).
type IFID struct {
	Valid           bool
	PC              uint32
	InstNum         uint64
	Word            uint32
	PredictedTaken  bool
	PredictedTarget uint32
}

// IDEX is the decode/execute latch: decoded fields, resolved immediate, and
// the control bundle decode produced.
type IDEX struct {
	Valid     bool
	PC        uint32
	InstNum   uint64
	Ctrl      Control
	Rd        uint32
	Rs1       uint32
	Rs2       uint32
	Rs1Val    int32
	Rs2Val    int32
	Imm       int32
	Mnemonic  string
	BranchDir bool   // resolved branch direction (decode-stage resolution, spec.md §4.5 step 5)
	BranchPC  uint32 // resolved target, valid when Ctrl.IsBranch or Ctrl.IsJump
}

// EXMEM is the execute/memory latch.
type EXMEM struct {
	Valid     bool
	PC        uint32
	InstNum   uint64
	Ctrl      Control
	Rd        uint32
	Rs2       uint32
	ALUResult int32
	StoreVal  int32
	Mnemonic  string
}

// MEMWB is the memory/writeback latch.
type MEMWB struct {
	Valid      bool
	PC         uint32
	InstNum    uint64
	Ctrl       Control
	Rd         uint32
	ALUResult  int32
	MemData    int32
	Mnemonic   string
	Misaligned bool
}
