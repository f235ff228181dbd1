package vm

import "github.com/lookbusy1344/riscv-pipeline/isa"

// HazardUnit detects stalls and counts distinct hazards, per spec.md §4.7.
type HazardUnit struct {
	Forwarding       bool
	StructuralHazard bool // stall decode while ID/EX and EX/MEM both hold a memory access (original_source Knobs.enable_structural_hazard)

	seenDataHazardPCs       map[uint32]bool
	seenControlHazardPCs    map[uint32]bool
	seenStructuralHazardPCs map[uint32]bool
}

// NewHazardUnit creates a hazard unit with the given forwarding policy.
func NewHazardUnit(forwarding bool) *HazardUnit {
	return &HazardUnit{
		Forwarding:              forwarding,
		seenDataHazardPCs:       make(map[uint32]bool),
		seenControlHazardPCs:    make(map[uint32]bool),
		seenStructuralHazardPCs: make(map[uint32]bool),
	}
}

// DetectStall decides whether the instruction being decoded (at pc, reading
// rs1/rs2) must stall against the producers currently in ID/EX, EX/MEM, and
// MEM/WB. With forwarding enabled, only the load-use pair is unavoidable;
// without it, any in-flight producer of rs1/rs2 forces a stall until
// writeback. When StructuralHazard is set, it also stalls whenever ID/EX and
// EX/MEM both hold a memory access: the instruction in IF/ID is held and
// ID/EX gets a bubble. The two memory instructions themselves are not held
// back.
func (h *HazardUnit) DetectStall(pc, rs1, rs2 uint32, idex IDEX, exmem EXMEM, memwb MEMWB) bool {
	stall := false
	if h.Forwarding {
		if idex.Valid && idex.Ctrl.MemRead && idex.Rd != 0 && (idex.Rd == rs1 || idex.Rd == rs2) {
			stall = true
		}
	} else {
		if producerMatches(idex.Valid, idex.Ctrl.RegWrite, idex.Rd, rs1, rs2) ||
			producerMatches(exmem.Valid, exmem.Ctrl.RegWrite, exmem.Rd, rs1, rs2) ||
			producerMatches(memwb.Valid, memwb.Ctrl.RegWrite, memwb.Rd, rs1, rs2) {
			stall = true
		}
	}
	if stall && !h.seenDataHazardPCs[pc] {
		h.seenDataHazardPCs[pc] = true
	}

	if h.StructuralHazard && idex.Valid && (idex.Ctrl.MemRead || idex.Ctrl.MemWrite) &&
		exmem.Valid && (exmem.Ctrl.MemRead || exmem.Ctrl.MemWrite) {
		stall = true
		h.seenStructuralHazardPCs[pc] = true
	}
	return stall
}

// DistinctStructuralHazards reports how many unique PCs ever stalled on the
// single-memory-port constraint.
func (h *HazardUnit) DistinctStructuralHazards() int {
	return len(h.seenStructuralHazardPCs)
}

func producerMatches(valid, regWrite bool, rd, rs1, rs2 uint32) bool {
	return valid && regWrite && rd != 0 && (rd == rs1 || rd == rs2)
}

// DistinctDataHazards reports how many unique IF/ID PCs ever stalled.
func (h *HazardUnit) DistinctDataHazards() int {
	return len(h.seenDataHazardPCs)
}

// NoteControlHazard records a misprediction at pc for the distinct-hazard
// count (spec.md §4.7 "counts distinct hazards... separately").
func (h *HazardUnit) NoteControlHazard(pc uint32) {
	h.seenControlHazardPCs[pc] = true
}

// DistinctControlHazards reports how many unique branch PCs ever
// mispredicted.
func (h *HazardUnit) DistinctControlHazards() int {
	return len(h.seenControlHazardPCs)
}

// ForwardResult is what the forwarding mux chose for one operand.
type ForwardResult struct {
	Value     int32
	Forwarded bool
}

// Forward resolves one source register against the EX/MEM and MEM/WB
// latches, preferring EX/MEM (the newer value) over MEM/WB when both match
// (spec.md §4.7). EX/MEM never forwards a load's result — that value isn't
// ready until the memory stage — so a load-use pair must have already been
// stalled by DetectStall before this is called.
func Forward(reg uint32, exmem EXMEM, memwb MEMWB, fallback int32) ForwardResult {
	if reg == 0 {
		return ForwardResult{Value: 0}
	}
	if exmem.Valid && exmem.Ctrl.RegWrite && !exmem.Ctrl.MemRead && exmem.Rd == reg {
		return ForwardResult{Value: exmem.ALUResult, Forwarded: true}
	}
	if memwb.Valid && memwb.Ctrl.RegWrite && memwb.Rd == reg {
		return ForwardResult{Value: memWBCommitValue(memwb), Forwarded: true}
	}
	return ForwardResult{Value: fallback}
}

func memWBCommitValue(memwb MEMWB) int32 {
	switch memwb.Ctrl.OutputSelect {
	case isa.OutMemory:
		return memwb.MemData
	default:
		return memwb.ALUResult
	}
}
