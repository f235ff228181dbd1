// Package vm implements the cycle-accurate five-stage pipelined simulator:
// the register file, the four inter-stage latches, the decoder, the hazard
// and forwarding unit, the branch predictor, and the per-cycle execution
// loop that ties them together.
package vm

// RegisterFile holds the 32 general-purpose registers. x0 is wired to zero:
// reads always return 0 and writes are silently suppressed.
type RegisterFile struct {
	regs [32]uint32
}

// Initial non-zero register contents (spec.md §3).
const (
	initialSP   = 0x7FFFFFE4 // x2
	initialGP   = 0x10000000 // x3
	initialArgc = 0x00000001 // x10
	initialArgv = 0x07FFFFE4 // x11
)

// NewRegisterFile builds a register file with the simulator's fixed startup
// values in x2/x3/x10/x11; every other register starts at 0.
func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{}
	rf.regs[2] = initialSP
	rf.regs[3] = initialGP
	rf.regs[10] = initialArgc
	rf.regs[11] = initialArgv
	return rf
}

// Read returns a register's value; x0 always reads 0.
func (rf *RegisterFile) Read(n uint32) int32 {
	if n == 0 {
		return 0
	}
	return int32(rf.regs[n&0x1F])
}

// Write stores a value; writes to x0 are suppressed (spec.md §3 invariant).
func (rf *RegisterFile) Write(n uint32, value int32) {
	if n == 0 {
		return
	}
	rf.regs[n&0x1F] = uint32(value)
}

// Snapshot returns a copy of all 32 registers, used for the register dump
// and for the "two runs produce identical final state" round-trip check.
func (rf *RegisterFile) Snapshot() [32]uint32 {
	return rf.regs
}
