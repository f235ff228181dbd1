package vm

import "github.com/lookbusy1344/riscv-pipeline/isa"

// isDivByZero reports whether op is one of the four divide/remainder
// operations and b is zero — the case spec.md §7 calls out separately from
// ordinary ALU results: the computed result is still 0, but it is reported
// as a warning rather than silently returned.
func isDivByZero(op isa.ALUOp, b int32) bool {
	switch op {
	case isa.ALUDiv, isa.ALUDivU, isa.ALURem, isa.ALURemU:
		return b == 0
	default:
		return false
	}
}

// aluCompute performs the arithmetic/logical/comparison operation tagged by
// op on two 32-bit operands. Overflow wraps (two's complement); shifts use
// only the low 5 bits of b (spec.md §9).
func aluCompute(op isa.ALUOp, a, b int32) int32 {
	switch op {
	case isa.ALUAdd:
		return a + b
	case isa.ALUSub:
		return a - b
	case isa.ALUMul:
		return a * b
	case isa.ALUDiv:
		if b == 0 {
			return 0
		}
		return a / b
	case isa.ALUDivU:
		if b == 0 {
			return 0
		}
		return int32(uint32(a) / uint32(b))
	case isa.ALURem:
		if b == 0 {
			return 0
		}
		return a % b
	case isa.ALURemU:
		if b == 0 {
			return 0
		}
		return int32(uint32(a) % uint32(b))
	case isa.ALUAnd:
		return a & b
	case isa.ALUOr:
		return a | b
	case isa.ALUXor:
		return a ^ b
	case isa.ALUSLL:
		return a << (uint32(b) & 0x1F)
	case isa.ALUSRL:
		return int32(uint32(a) >> (uint32(b) & 0x1F))
	case isa.ALUSRA:
		return a >> (uint32(b) & 0x1F)
	case isa.ALUSLT:
		if a < b {
			return 1
		}
		return 0
	case isa.ALUSLTU:
		if uint32(a) < uint32(b) {
			return 1
		}
		return 0
	case isa.ALULUI:
		return b
	default:
		return 0
	}
}

// branchTaken evaluates a conditional-branch comparison.
func branchTaken(op isa.BranchOp, a, b int32) bool {
	switch op {
	case isa.BranchEQ:
		return a == b
	case isa.BranchNE:
		return a != b
	case isa.BranchLT:
		return a < b
	case isa.BranchGE:
		return a >= b
	case isa.BranchLTU:
		return uint32(a) < uint32(b)
	case isa.BranchGEU:
		return uint32(a) >= uint32(b)
	default:
		return false
	}
}
