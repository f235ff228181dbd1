package encoder

import "github.com/lookbusy1344/riscv-pipeline/parser"

// Range limits for signed/unsigned immediate fields (spec.md §4.3).
const (
	iTypeMin = -2048
	iTypeMax = 2047

	sTypeMin = -2048
	sTypeMax = 2047

	bTypeMin = -4096
	bTypeMax = 4094

	jTypeMin = -1048576
	jTypeMax = 1048574

	uTypeMax = 0xFFFFF // 20-bit unsigned
)

func encodeR(opcode, funct3, funct7, rd, rs1, rs2 uint32) uint32 {
	return (funct7 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeI(opcode, funct3, rd, rs1 uint32, imm int64) uint32 {
	return (uint32(imm)&0xFFF)<<20 | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeShiftImm(opcode, funct3, funct7, rd, rs1, shamt uint32) uint32 {
	return (funct7 << 25) | (shamt&0x1F)<<20 | (rs1 << 15) | (funct3 << 12) | (rd << 7) | opcode
}

func encodeS(opcode, funct3, rs1, rs2 uint32, imm int64) uint32 {
	u := uint32(imm) & 0xFFF
	imm11_5 := (u >> 5) & 0x7F
	imm4_0 := u & 0x1F
	return (imm11_5 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) | (imm4_0 << 7) | opcode
}

// encodeB packs a branch immediate. imm is the byte offset (must be even);
// bit 0 is never stored since branch targets are always 2-byte aligned.
func encodeB(opcode, funct3, rs1, rs2 uint32, imm int64) uint32 {
	u := uint32(imm) & 0x1FFE
	bit12 := (u >> 12) & 0x1
	bit11 := (u >> 11) & 0x1
	bits10_5 := (u >> 5) & 0x3F
	bits4_1 := (u >> 1) & 0xF
	return (bit12 << 31) | (bits10_5 << 25) | (rs2 << 20) | (rs1 << 15) | (funct3 << 12) |
		(bits4_1 << 8) | (bit11 << 7) | opcode
}

func encodeU(opcode, rd uint32, imm20 int64) uint32 {
	return (uint32(imm20)&0xFFFFF)<<12 | (rd << 7) | opcode
}

// encodeJ packs a jump immediate. imm is the byte offset (must be even).
func encodeJ(opcode, rd uint32, imm int64) uint32 {
	u := uint32(imm) & 0x1FFFFE
	bit20 := (u >> 20) & 0x1
	bits10_1 := (u >> 1) & 0x3FF
	bit11 := (u >> 11) & 0x1
	bits19_12 := (u >> 12) & 0xFF
	return (bit20 << 31) | (bits10_1 << 21) | (bit11 << 20) | (bits19_12 << 12) | (rd << 7) | opcode
}

func (e *Encoder) checkRange(inst *parser.Instruction, value int64, lo, hi int64, what string) error {
	if value < lo || value > hi {
		return e.errorf(inst, parser.ErrorInvalidImmediateValue,
			"%s %d out of range [%d, %d]", what, value, lo, hi)
	}
	return nil
}

func (e *Encoder) checkEven(inst *parser.Instruction, value int64, what string) error {
	if value%2 != 0 {
		return e.errorf(inst, parser.ErrorInvalidImmediateValue, "%s %d must be a multiple of 2", what, value)
	}
	return nil
}
