// Package encoder implements pass 2 of the assembler: turning a parsed
// program, whose labels are already fully resolved, into 32-bit RISC-V
// words via the per-format bit layouts named in spec.md §4.3.
package encoder

import (
	"github.com/lookbusy1344/riscv-pipeline/isa"
	"github.com/lookbusy1344/riscv-pipeline/parser"
)

// Encoder packs one parsed instruction at a time against a fully-populated
// label table. It carries no other mutable state, so a single Encoder can
// be reused across an entire program.
type Encoder struct {
	labels *parser.LabelTable
}

// NewEncoder creates an Encoder bound to prog's resolved label table.
func NewEncoder(labels *parser.LabelTable) *Encoder {
	return &Encoder{labels: labels}
}

// EncodeInstruction packs a single instruction into its 32-bit word. address
// is the instruction's own PC, needed to turn branch/jump label operands
// into PC-relative offsets.
func (e *Encoder) EncodeInstruction(inst *parser.Instruction, address uint32) (uint32, error) {
	def, ok := isa.ByMnemonic(inst.Mnemonic)
	if !ok {
		return 0, e.errorf(inst, parser.ErrorInvalidInstruction, "unknown mnemonic %q", inst.Mnemonic)
	}

	switch def.Format {
	case isa.FormatR:
		return e.encodeRType(inst, def)
	case isa.FormatShiftImm:
		return e.encodeShiftType(inst, def)
	case isa.FormatI:
		switch {
		case def.IsLoad:
			return e.encodeLoad(inst, def)
		case def.IsJump && def.Mnemonic == "jalr":
			return e.encodeJALR(inst, def)
		default:
			return e.encodeIType(inst, def)
		}
	case isa.FormatS:
		return e.encodeSType(inst, def)
	case isa.FormatB:
		return e.encodeBType(inst, def, address)
	case isa.FormatU:
		return e.encodeUType(inst, def)
	case isa.FormatJ:
		return e.encodeJType(inst, def, address)
	default:
		return 0, e.errorf(inst, parser.ErrorInvalidInstruction, "unhandled format for %q", inst.Mnemonic)
	}
}

func (e *Encoder) expectOperands(inst *parser.Instruction, n int) error {
	if len(inst.Operands) != n {
		return e.errorf(inst, parser.ErrorSyntax, "%s expects %d operand(s), got %d", inst.Mnemonic, n, len(inst.Operands))
	}
	return nil
}

func (e *Encoder) encodeRType(inst *parser.Instruction, def isa.InstructionDef) (uint32, error) {
	if err := e.expectOperands(inst, 3); err != nil {
		return 0, err
	}
	rd, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	rs1, err := e.parseRegister(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	rs2, err := e.parseRegister(inst, inst.Operands[2])
	if err != nil {
		return 0, err
	}
	return encodeR(def.Opcode, def.Funct3, def.Funct7, rd, rs1, rs2), nil
}

func (e *Encoder) encodeShiftType(inst *parser.Instruction, def isa.InstructionDef) (uint32, error) {
	if err := e.expectOperands(inst, 3); err != nil {
		return 0, err
	}
	rd, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	rs1, err := e.parseRegister(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	shamt, err := e.parseImmediate(inst, inst.Operands[2])
	if err != nil {
		return 0, err
	}
	if !isa.IsShiftImmediate(shamt) {
		return 0, e.errorf(inst, parser.ErrorInvalidImmediateValue, "shift amount %d out of range [0, 31]", shamt)
	}
	return encodeShiftImm(def.Opcode, def.Funct3, def.Funct7, rd, rs1, uint32(shamt)), nil
}

func (e *Encoder) encodeIType(inst *parser.Instruction, def isa.InstructionDef) (uint32, error) {
	if err := e.expectOperands(inst, 3); err != nil {
		return 0, err
	}
	rd, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	rs1, err := e.parseRegister(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	imm, err := e.parseImmediate(inst, inst.Operands[2])
	if err != nil {
		return 0, err
	}
	if err := e.checkRange(inst, imm, iTypeMin, iTypeMax, "immediate"); err != nil {
		return 0, err
	}
	return encodeI(def.Opcode, def.Funct3, rd, rs1, imm), nil
}

func (e *Encoder) encodeLoad(inst *parser.Instruction, def isa.InstructionDef) (uint32, error) {
	if err := e.expectOperands(inst, 2); err != nil {
		return 0, err
	}
	rd, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	imm, rs1, err := e.parseMemoryOperand(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	if err := e.checkRange(inst, imm, iTypeMin, iTypeMax, "offset"); err != nil {
		return 0, err
	}
	return encodeI(def.Opcode, def.Funct3, rd, rs1, imm), nil
}

func (e *Encoder) encodeJALR(inst *parser.Instruction, def isa.InstructionDef) (uint32, error) {
	if err := e.expectOperands(inst, 2); err != nil {
		return 0, err
	}
	rd, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	imm, rs1, err := e.parseMemoryOperand(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	if err := e.checkRange(inst, imm, iTypeMin, iTypeMax, "offset"); err != nil {
		return 0, err
	}
	return encodeI(def.Opcode, def.Funct3, rd, rs1, imm), nil
}

func (e *Encoder) encodeSType(inst *parser.Instruction, def isa.InstructionDef) (uint32, error) {
	if err := e.expectOperands(inst, 2); err != nil {
		return 0, err
	}
	rs2, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	imm, rs1, err := e.parseMemoryOperand(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	if err := e.checkRange(inst, imm, sTypeMin, sTypeMax, "offset"); err != nil {
		return 0, err
	}
	return encodeS(def.Opcode, def.Funct3, rs1, rs2, imm), nil
}

func (e *Encoder) encodeBType(inst *parser.Instruction, def isa.InstructionDef, address uint32) (uint32, error) {
	if err := e.expectOperands(inst, 3); err != nil {
		return 0, err
	}
	rs1, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	rs2, err := e.parseRegister(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	target, err := e.parseImmediate(inst, inst.Operands[2])
	if err != nil {
		return 0, err
	}
	offset := target - int64(address)
	if err := e.checkEven(inst, offset, "branch offset"); err != nil {
		return 0, err
	}
	if err := e.checkRange(inst, offset, bTypeMin, bTypeMax, "branch offset"); err != nil {
		return 0, err
	}
	return encodeB(def.Opcode, def.Funct3, rs1, rs2, offset), nil
}

func (e *Encoder) encodeUType(inst *parser.Instruction, def isa.InstructionDef) (uint32, error) {
	if err := e.expectOperands(inst, 2); err != nil {
		return 0, err
	}
	rd, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	imm, err := e.parseImmediate(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	if err := e.checkRange(inst, imm, 0, uTypeMax, "upper immediate"); err != nil {
		return 0, err
	}
	return encodeU(def.Opcode, rd, imm), nil
}

func (e *Encoder) encodeJType(inst *parser.Instruction, def isa.InstructionDef, address uint32) (uint32, error) {
	if err := e.expectOperands(inst, 2); err != nil {
		return 0, err
	}
	rd, err := e.parseRegister(inst, inst.Operands[0])
	if err != nil {
		return 0, err
	}
	target, err := e.parseImmediate(inst, inst.Operands[1])
	if err != nil {
		return 0, err
	}
	offset := target - int64(address)
	if err := e.checkEven(inst, offset, "jump offset"); err != nil {
		return 0, err
	}
	if err := e.checkRange(inst, offset, jTypeMin, jTypeMax, "jump offset"); err != nil {
		return 0, err
	}
	return encodeJ(def.Opcode, rd, offset), nil
}
