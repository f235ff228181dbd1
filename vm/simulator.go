package vm

import (
	"fmt"

	"github.com/lookbusy1344/riscv-pipeline/image"
	"github.com/lookbusy1344/riscv-pipeline/isa"
)

// Options are the simulator's frozen configuration knobs (spec.md §4.10/§9:
// "the configuration knobs become a frozen config struct passed in at
// construction").
type Options struct {
	Pipelining       bool // false models a fully-serialized, always-stalling pipeline
	Forwarding       bool
	StructuralHazard bool // stall decode while ID/EX and EX/MEM both hold a memory access
	CycleLimit       uint64
	Trace            bool
	TraceOnlyPC      uint64 // instruction number filter, 0 = all
	DumpRegisters    bool
	DumpLatches      bool
	DumpBTB          bool
}

// DefaultOptions returns the simulator's out-of-the-box knobs.
func DefaultOptions() Options {
	return Options{Pipelining: true, Forwarding: true, CycleLimit: 10000}
}

// Simulator owns every piece of mutable state the five stages act on: the
// register file, the two memory images, the four pipeline latches, the
// hazard/forwarding unit, the branch predictor, and the running statistics.
// Stages are plain methods over this value rather than free functions
// closing over package-level globals (spec.md §9).
type Simulator struct {
	Opts Options

	Regs     *RegisterFile
	Text     *image.Image
	Data     *image.Image
	Predict  *BranchPredictor
	Hazard   *HazardUnit
	Stats    *Statistics
	Trace    *Tracer
	Warnings []string

	PC    uint32
	cycle uint64

	ifid  IFID
	idex  IDEX
	exmem EXMEM
	memwb MEMWB

	nextInstNum uint64
	halted      bool
	haltReason  string

	lastCommit      commitInfo
	lastCommitValid bool
}

type commitInfo struct {
	InstNum  uint64
	PC       uint32
	Mnemonic string
	Rd       uint32
	Value    int32
}

// NewSimulator constructs a simulator over the given text (instructions)
// and data images. The data image is cloned so the caller's copy is never
// mutated (spec.md §8's "two runs produce identical results" property
// depends on each run starting from an untouched data image).
func NewSimulator(text, data *image.Image, opts Options) *Simulator {
	hazard := NewHazardUnit(opts.Forwarding)
	hazard.StructuralHazard = opts.StructuralHazard
	return &Simulator{
		Opts:    opts,
		Regs:    NewRegisterFile(),
		Text:    text,
		Data:    data.Clone(),
		Predict: NewBranchPredictor(),
		Hazard:  hazard,
		Stats:   NewStatistics(),
		Trace:   NewTracer(opts.Trace, opts.TraceOnlyPC),
	}
}

// LatchView is the read-only, JSON-friendly summary of one latch's payload,
// exposed to external tooling (apiserver, tuiwatch) without leaking the
// internal latch types.
type LatchView struct {
	Valid    bool
	PC       uint32
	Mnemonic string
}

// LatchSnapshot is the current contents of all four named latches, taken
// between cycles.
type LatchSnapshot struct {
	IFID  LatchView
	IDEX  LatchView
	EXMEM LatchView
	MEMWB LatchView
}

// Latches returns a snapshot of the pipeline's current latch contents.
func (s *Simulator) Latches() LatchSnapshot {
	return LatchSnapshot{
		IFID:  LatchView{Valid: s.ifid.Valid, PC: s.ifid.PC},
		IDEX:  LatchView{Valid: s.idex.Valid, PC: s.idex.PC, Mnemonic: s.idex.Mnemonic},
		EXMEM: LatchView{Valid: s.exmem.Valid, PC: s.exmem.PC, Mnemonic: s.exmem.Mnemonic},
		MEMWB: LatchView{Valid: s.memwb.Valid, PC: s.memwb.PC, Mnemonic: s.memwb.Mnemonic},
	}
}

// LastCommit reports the instruction retired by writeback on the most
// recently executed cycle, if any committed that cycle.
func (s *Simulator) LastCommit() (instNum uint64, pc uint32, mnemonic string, rd uint32, value int32, ok bool) {
	if !s.lastCommitValid {
		return 0, 0, "", 0, 0, false
	}
	c := s.lastCommit
	return c.InstNum, c.PC, c.Mnemonic, c.Rd, c.Value, true
}

// Drained reports whether the pipeline has nothing left to do: no
// instruction at PC and every latch invalid (spec.md §4.5/§5).
func (s *Simulator) Drained() bool {
	if s.halted {
		return true
	}
	return !s.Text.Has(s.PC) && !s.ifid.Valid && !s.idex.Valid && !s.exmem.Valid && !s.memwb.Valid
}

// HaltReason explains why Run stopped, for diagnostics and the CLI summary.
func (s *Simulator) HaltReason() string {
	return s.haltReason
}

// CycleLimitReached reports whether the simulator has hit its configured
// cycle cap (spec.md §5's runaway-loop guard, default 10000 when
// Opts.CycleLimit is left at zero). Step never checks this on its own —
// any caller driving the pipeline cycle by cycle instead of through Run
// must check it between steps to honor the cap.
func (s *Simulator) CycleLimitReached() bool {
	limit := s.Opts.CycleLimit
	if limit == 0 {
		limit = 10000
	}
	return s.cycle >= limit
}

// Run advances the pipeline one cycle at a time until drained or the cycle
// cap is reached (spec.md §5).
func (s *Simulator) Run() {
	limit := s.Opts.CycleLimit
	if limit == 0 {
		limit = 10000
	}
	for !s.Drained() {
		if s.CycleLimitReached() {
			s.halted = true
			s.haltReason = fmt.Sprintf("cycle limit of %d reached", limit)
			break
		}
		s.Step()
	}
	if s.haltReason == "" {
		s.haltReason = "drained"
	}
}

// Step advances the pipeline exactly one cycle, evaluating the five stages
// in reverse order (writeback, memory, execute, decode, fetch) so each
// stage sees the previous cycle's value of its own input latch (spec.md
// §4.5).
func (s *Simulator) Step() {
	s.cycle++
	s.Stats.TotalCycles = s.cycle

	oldIFID, oldIDEX, oldEXMEM, oldMEMWB := s.ifid, s.idex, s.exmem, s.memwb

	var rs1, rs2 uint32
	if oldIFID.Valid {
		f := extractFields(oldIFID.Word)
		usesRs1, usesRs2 := registerSources(oldIFID.Word)
		if usesRs1 {
			rs1 = f.rs1
		}
		if usesRs2 {
			rs2 = f.rs2
		}
	}
	stall := oldIFID.Valid && s.Opts.Pipelining && s.Hazard.DetectStall(oldIFID.PC, rs1, rs2, oldIDEX, oldEXMEM, oldMEMWB)
	if stall {
		s.Stats.TotalStallCycles++
		if s.Hazard.StructuralHazard && oldIDEX.Valid && (oldIDEX.Ctrl.MemRead || oldIDEX.Ctrl.MemWrite) &&
			oldEXMEM.Valid && (oldEXMEM.Ctrl.MemRead || oldEXMEM.Ctrl.MemWrite) {
			s.Stats.StructuralHazardStalls++
		} else {
			s.Stats.DataHazardStalls++
		}
	}
	if !s.Opts.Pipelining {
		// A non-pipelined run stalls fetch/decode every cycle an older
		// instruction is still in ID/EX or EX/MEM, modeling full serialization.
		stall = oldIDEX.Valid || oldEXMEM.Valid
	}

	s.writebackStage(oldMEMWB)
	s.memoryStage(oldEXMEM)
	s.executeStage(oldIDEX)
	mispredict, redirectPC := s.decodeStage(oldIFID, stall)
	s.fetchStage(stall, mispredict, redirectPC)

	s.Stats.DistinctDataHazards = s.Hazard.DistinctDataHazards()
	s.Stats.DistinctControlHazards = s.Hazard.DistinctControlHazards()
	s.Stats.DistinctStructuralHazards = s.Hazard.DistinctStructuralHazards()
}

func (s *Simulator) writebackStage(lat MEMWB) {
	s.lastCommitValid = false
	if !lat.Valid {
		return
	}
	value := lat.ALUResult
	if lat.Ctrl.OutputSelect == isa.OutMemory {
		value = lat.MemData
	}
	if lat.Ctrl.RegWrite {
		s.Regs.Write(lat.Rd, value)
	}
	if !lat.Ctrl.IsNop {
		s.Stats.TotalInstructions++
		s.Stats.CategoryCounts[categoryFor(lat.Mnemonic, lat.Ctrl)]++
		s.lastCommit = commitInfo{InstNum: lat.InstNum, PC: lat.PC, Mnemonic: lat.Mnemonic, Rd: lat.Rd, Value: value}
		s.lastCommitValid = true
	}
	s.Trace.Stage(lat.InstNum, lat.PC, lat.Mnemonic, "WB", s.cycle)
}

func (s *Simulator) memoryStage(lat EXMEM) {
	memData, misaligned, misalignWarning, missWarning := memoryStage(s.Data, lat)
	if misalignWarning != "" {
		s.Warnings = append(s.Warnings, misalignWarning)
		s.Stats.MemoryWarnings = append(s.Stats.MemoryWarnings, misalignWarning)
	}
	if missWarning != "" {
		s.Warnings = append(s.Warnings, missWarning)
		s.Stats.MemoryReadMissWarnings = append(s.Stats.MemoryReadMissWarnings, missWarning)
	}
	if !lat.Valid {
		s.memwb = MEMWB{}
		return
	}
	s.memwb = MEMWB{
		Valid:      true,
		PC:         lat.PC,
		InstNum:    lat.InstNum,
		Ctrl:       lat.Ctrl,
		Rd:         lat.Rd,
		ALUResult:  lat.ALUResult,
		MemData:    memData,
		Mnemonic:   lat.Mnemonic,
		Misaligned: misaligned,
	}
	s.Trace.Stage(lat.InstNum, lat.PC, lat.Mnemonic, "MEM", s.cycle)
}

func (s *Simulator) executeStage(lat IDEX) {
	if !lat.Valid {
		s.exmem = EXMEM{}
		return
	}

	b := lat.Rs2Val
	if lat.Ctrl.UseImmediate {
		b = lat.Imm
	}
	if isDivByZero(lat.Ctrl.ALUOp, b) {
		warning := fmt.Sprintf("div/rem by zero at pc %#08x (%s)", lat.PC, lat.Mnemonic)
		s.Warnings = append(s.Warnings, warning)
		s.Stats.DivByZeroWarnings = append(s.Stats.DivByZeroWarnings, warning)
	}
	aluResult := aluCompute(lat.Ctrl.ALUOp, lat.Rs1Val, b)

	switch lat.Ctrl.ALUOp {
	case isa.ALUAUIPC:
		aluResult = int32(lat.PC) + lat.Imm
	}
	if lat.Ctrl.OutputSelect == isa.OutPCPlus4 {
		aluResult = int32(lat.PC) + 4
	}

	storeVal := lat.Rs2Val

	s.exmem = EXMEM{
		Valid:     true,
		PC:        lat.PC,
		InstNum:   lat.InstNum,
		Ctrl:      lat.Ctrl,
		Rd:        lat.Rd,
		Rs2:       lat.Rs2,
		ALUResult: aluResult,
		StoreVal:  storeVal,
		Mnemonic:  lat.Mnemonic,
	}
	s.Trace.Stage(lat.InstNum, lat.PC, lat.Mnemonic, "EX", s.cycle)
}

// decodeStage decodes oldIFID (unless stalled), resolving operands through
// forwarding sourced from this cycle's freshly-updated EX/MEM and MEM/WB
// latches (s.exmem/s.memwb, just produced above by executeStage/
// memoryStage) — the natural effect of evaluating stages in reverse order.
// It returns whether the resolved branch/jump disagreed with fetch's
// prediction and, if so, the corrected PC.
func (s *Simulator) decodeStage(lat IFID, stall bool) (mispredict bool, redirectPC uint32) {
	if stall {
		s.idex = IDEX{}
		s.Trace.Stage(lat.InstNum, lat.PC, "", "decode-stall", s.cycle)
		return false, 0
	}
	if !lat.Valid {
		s.idex = IDEX{}
		return false, 0
	}

	d := decodeWord(lat.Word)
	if d.unknown {
		warning := fmt.Sprintf("unknown opcode at pc %#08x (word %#08x), treated as bubble", lat.PC, lat.Word)
		s.Warnings = append(s.Warnings, warning)
		s.Stats.UnknownOpcodeWarnings = append(s.Stats.UnknownOpcodeWarnings, warning)
	}

	rs1fwd := Forward(d.rs1, s.exmem, s.memwb, s.Regs.Read(d.rs1))
	rs2fwd := Forward(d.rs2, s.exmem, s.memwb, s.Regs.Read(d.rs2))
	if rs1fwd.Forwarded {
		s.Trace.Forward(lat.InstNum, fmt.Sprintf("rs1=x%d", d.rs1))
	}
	if rs2fwd.Forwarded {
		s.Trace.Forward(lat.InstNum, fmt.Sprintf("rs2=x%d", d.rs2))
	}

	next := IDEX{
		Valid:    true,
		PC:       lat.PC,
		InstNum:  lat.InstNum,
		Ctrl:     d.ctrl,
		Rd:       d.rd,
		Rs1:      d.rs1,
		Rs2:      d.rs2,
		Rs1Val:   rs1fwd.Value,
		Rs2Val:   rs2fwd.Value,
		Imm:      d.imm,
		Mnemonic: d.mnemonic,
	}

	if d.ctrl.IsBranch || d.ctrl.IsJump {
		taken, target := s.resolveControlFlow(d, lat.PC, rs1fwd.Value, rs2fwd.Value)
		next.BranchDir = taken
		next.BranchPC = target

		if taken != lat.PredictedTaken || (taken && target != lat.PredictedTarget) {
			mispredict = true
			if taken {
				redirectPC = target
			} else {
				redirectPC = lat.PC + 4
			}
			s.Stats.BranchMispredictions++
			s.Stats.ControlHazardStalls++
			s.Hazard.NoteControlHazard(lat.PC)
		}
		if s.Predict.Resolve(lat.PC, taken, target) {
			s.Trace.BTBUpdate(lat.InstNum)
		}
	}

	s.idex = next
	s.Trace.Stage(lat.InstNum, lat.PC, d.mnemonic, "ID", s.cycle)
	return mispredict, redirectPC
}

func (s *Simulator) resolveControlFlow(d decoded, pc uint32, rs1val, rs2val int32) (taken bool, target uint32) {
	switch {
	case d.ctrl.IsBranch:
		taken = branchTaken(d.ctrl.BranchOp, rs1val, rs2val)
		target = uint32(int32(pc) + d.imm)
		if !taken {
			target = pc + 4
		}
	case d.mnemonic == "jalr":
		taken = true
		target = uint32(rs1val+d.imm) &^ 1
	default: // jal
		taken = true
		target = uint32(int32(pc) + d.imm)
	}
	return taken, target
}

func (s *Simulator) fetchStage(stall, mispredict bool, redirectPC uint32) {
	if mispredict {
		s.ifid = IFID{}
		s.PC = redirectPC
		return
	}
	if stall {
		s.ifid = oldIFIDFreeze(s.ifid)
		return
	}
	if !s.Text.Has(s.PC) {
		s.ifid = IFID{}
		return
	}

	word := s.Text.Load(s.PC)
	instNum := s.nextInstNum
	s.nextInstNum++

	predTaken, predTarget := s.Predict.Predict(s.PC)
	next := IFID{Valid: true, PC: s.PC, InstNum: instNum, Word: word, PredictedTaken: predTaken, PredictedTarget: predTarget}
	s.Trace.Stage(instNum, s.PC, "", "IF", s.cycle)

	if predTaken {
		s.PC = predTarget
	} else {
		s.PC = s.PC + 4
	}
	s.ifid = next
}

// oldIFIDFreeze is a no-op identity helper documenting that, on a stall,
// IF/ID is replayed unchanged rather than refetched (spec.md §4.5 "the
// decode stage replays its current IF/ID").
func oldIFIDFreeze(cur IFID) IFID { return cur }
