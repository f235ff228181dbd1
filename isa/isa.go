// Package isa holds the canonical RISC-V instruction tables shared by the
// assembler's encoder and the simulator's decoder. There is exactly one
// table: both tools derive their lookup keys from it, so the two never
// drift the way a duplicated table could.
package isa

// Format names the six base instruction encodings plus the shift-immediate
// subfamily, which reuses the I opcode but carries a funct7 field.
type Format int

const (
	FormatR Format = iota
	FormatI
	FormatShiftImm
	FormatS
	FormatB
	FormatU
	FormatJ
)

func (f Format) String() string {
	switch f {
	case FormatR:
		return "R"
	case FormatI:
		return "I"
	case FormatShiftImm:
		return "I-shift"
	case FormatS:
		return "S"
	case FormatB:
		return "B"
	case FormatU:
		return "U"
	case FormatJ:
		return "J"
	default:
		return "?"
	}
}

// Opcode values (bits 6..0).
const (
	OpcodeLoad     = 0x03
	OpcodeOpImm    = 0x13
	OpcodeAUIPC    = 0x17
	OpcodeStore    = 0x23
	OpcodeOp       = 0x33
	OpcodeLUI      = 0x37
	OpcodeBranch   = 0x63
	OpcodeJALR     = 0x67
	OpcodeJAL      = 0x6F
)

// MemSize tags the width and signedness of a load/store.
type MemSize int

const (
	SizeNone MemSize = iota
	SizeByte
	SizeHalf
	SizeWord
	SizeByteUnsigned
	SizeHalfUnsigned
)

// ALUOp tags the operation the execute stage must perform. Distinct from
// funct3/funct7 so the execute stage never has to re-inspect raw fields.
type ALUOp int

const (
	ALUAdd ALUOp = iota
	ALUSub
	ALUMul
	ALUDiv
	ALUDivU
	ALURem
	ALURemU
	ALUAnd
	ALUOr
	ALUXor
	ALUSLL
	ALUSRL
	ALUSRA
	ALUSLT
	ALUSLTU
	ALULUI
	ALUAUIPC
	ALUJAL
	ALUJALR
	ALUNone // no arithmetic result needed (e.g. pure branch)
)

// OutputSelect picks what writeback commits for an instruction.
type OutputSelect int

const (
	OutALU OutputSelect = iota
	OutMemory
	OutPCPlus4
)

// BranchOp distinguishes the six conditional-branch comparisons.
type BranchOp int

const (
	BranchNone BranchOp = iota
	BranchEQ
	BranchNE
	BranchLT
	BranchGE
	BranchLTU
	BranchGEU
)

// InstructionDef is the per-mnemonic row of the canonical table.
type InstructionDef struct {
	Mnemonic string
	Format   Format
	Opcode   uint32
	Funct3   uint32 // valid when HasFunct3
	HasFunct3 bool
	Funct7   uint32 // valid when HasFunct7 (R-type and shift-immediate)
	HasFunct7 bool
	ALUOp    ALUOp
	MemSize  MemSize
	Branch   BranchOp
	IsJump   bool // jal/jalr
	IsLoad   bool
	IsStore  bool
}

// Table is the single canonical mnemonic -> definition map. Both the
// encoder and the decoder build their lookup indices from this map.
var Table = map[string]InstructionDef{
	// R-type arithmetic / logical / multiply-divide
	"add":  {Mnemonic: "add", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x0, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUAdd},
	"sub":  {Mnemonic: "sub", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x0, HasFunct3: true, Funct7: 0x20, HasFunct7: true, ALUOp: ALUSub},
	"mul":  {Mnemonic: "mul", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x0, HasFunct3: true, Funct7: 0x01, HasFunct7: true, ALUOp: ALUMul},
	"div":  {Mnemonic: "div", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x4, HasFunct3: true, Funct7: 0x01, HasFunct7: true, ALUOp: ALUDiv},
	"divu": {Mnemonic: "divu", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x5, HasFunct3: true, Funct7: 0x01, HasFunct7: true, ALUOp: ALUDivU},
	"rem":  {Mnemonic: "rem", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x6, HasFunct3: true, Funct7: 0x01, HasFunct7: true, ALUOp: ALURem},
	"remu": {Mnemonic: "remu", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x7, HasFunct3: true, Funct7: 0x01, HasFunct7: true, ALUOp: ALURemU},
	"and":  {Mnemonic: "and", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x7, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUAnd},
	"or":   {Mnemonic: "or", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x6, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUOr},
	"xor":  {Mnemonic: "xor", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x4, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUXor},
	"sll":  {Mnemonic: "sll", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x1, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUSLL},
	"srl":  {Mnemonic: "srl", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x5, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUSRL},
	"sra":  {Mnemonic: "sra", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x5, HasFunct3: true, Funct7: 0x20, HasFunct7: true, ALUOp: ALUSRA},
	"slt":  {Mnemonic: "slt", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x2, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUSLT},
	"sltu": {Mnemonic: "sltu", Format: FormatR, Opcode: OpcodeOp, Funct3: 0x3, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUSLTU},

	// I-type arithmetic / logical / comparisons
	"addi":  {Mnemonic: "addi", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 0x0, HasFunct3: true, ALUOp: ALUAdd},
	"andi":  {Mnemonic: "andi", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 0x7, HasFunct3: true, ALUOp: ALUAnd},
	"ori":   {Mnemonic: "ori", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 0x6, HasFunct3: true, ALUOp: ALUOr},
	"xori":  {Mnemonic: "xori", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 0x4, HasFunct3: true, ALUOp: ALUXor},
	"slti":  {Mnemonic: "slti", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 0x2, HasFunct3: true, ALUOp: ALUSLT},
	"sltiu": {Mnemonic: "sltiu", Format: FormatI, Opcode: OpcodeOpImm, Funct3: 0x3, HasFunct3: true, ALUOp: ALUSLTU},

	// Shift-immediates (I opcode, funct7 distinguishes logical/arithmetic)
	"slli": {Mnemonic: "slli", Format: FormatShiftImm, Opcode: OpcodeOpImm, Funct3: 0x1, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUSLL},
	"srli": {Mnemonic: "srli", Format: FormatShiftImm, Opcode: OpcodeOpImm, Funct3: 0x5, HasFunct3: true, Funct7: 0x00, HasFunct7: true, ALUOp: ALUSRL},
	"srai": {Mnemonic: "srai", Format: FormatShiftImm, Opcode: OpcodeOpImm, Funct3: 0x5, HasFunct3: true, Funct7: 0x20, HasFunct7: true, ALUOp: ALUSRA},

	// Loads
	"lb":  {Mnemonic: "lb", Format: FormatI, Opcode: OpcodeLoad, Funct3: 0x0, HasFunct3: true, MemSize: SizeByte, IsLoad: true},
	"lh":  {Mnemonic: "lh", Format: FormatI, Opcode: OpcodeLoad, Funct3: 0x1, HasFunct3: true, MemSize: SizeHalf, IsLoad: true},
	"lw":  {Mnemonic: "lw", Format: FormatI, Opcode: OpcodeLoad, Funct3: 0x2, HasFunct3: true, MemSize: SizeWord, IsLoad: true},
	"lbu": {Mnemonic: "lbu", Format: FormatI, Opcode: OpcodeLoad, Funct3: 0x4, HasFunct3: true, MemSize: SizeByteUnsigned, IsLoad: true},
	"lhu": {Mnemonic: "lhu", Format: FormatI, Opcode: OpcodeLoad, Funct3: 0x5, HasFunct3: true, MemSize: SizeHalfUnsigned, IsLoad: true},

	// Stores
	"sb": {Mnemonic: "sb", Format: FormatS, Opcode: OpcodeStore, Funct3: 0x0, HasFunct3: true, MemSize: SizeByte, IsStore: true},
	"sh": {Mnemonic: "sh", Format: FormatS, Opcode: OpcodeStore, Funct3: 0x1, HasFunct3: true, MemSize: SizeHalf, IsStore: true},
	"sw": {Mnemonic: "sw", Format: FormatS, Opcode: OpcodeStore, Funct3: 0x2, HasFunct3: true, MemSize: SizeWord, IsStore: true},

	// Branches
	"beq":  {Mnemonic: "beq", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x0, HasFunct3: true, Branch: BranchEQ},
	"bne":  {Mnemonic: "bne", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x1, HasFunct3: true, Branch: BranchNE},
	"blt":  {Mnemonic: "blt", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x4, HasFunct3: true, Branch: BranchLT},
	"bge":  {Mnemonic: "bge", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x5, HasFunct3: true, Branch: BranchGE},
	"bltu": {Mnemonic: "bltu", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x6, HasFunct3: true, Branch: BranchLTU},
	"bgeu": {Mnemonic: "bgeu", Format: FormatB, Opcode: OpcodeBranch, Funct3: 0x7, HasFunct3: true, Branch: BranchGEU},

	// Upper-immediate
	"lui":   {Mnemonic: "lui", Format: FormatU, Opcode: OpcodeLUI, ALUOp: ALULUI},
	"auipc": {Mnemonic: "auipc", Format: FormatU, Opcode: OpcodeAUIPC, ALUOp: ALUAUIPC},

	// Jumps
	"jal":  {Mnemonic: "jal", Format: FormatJ, Opcode: OpcodeJAL, ALUOp: ALUJAL, IsJump: true},
	"jalr": {Mnemonic: "jalr", Format: FormatI, Opcode: OpcodeJALR, Funct3: 0x0, HasFunct3: true, ALUOp: ALUJALR, IsJump: true},
}

// byKey indexes definitions by (opcode, funct3, funct7) for the decoder,
// built once from Table so the decoder can never see a key the encoder
// doesn't also recognize.
type decodeKey struct {
	opcode uint32
	funct3 uint32
	funct7 uint32
}

var byKey map[decodeKey]InstructionDef

func init() {
	byKey = make(map[decodeKey]InstructionDef, len(Table))
	for _, def := range Table {
		key := decodeKey{opcode: def.Opcode}
		if def.HasFunct3 {
			key.funct3 = def.Funct3
		}
		if def.HasFunct7 {
			key.funct7 = def.Funct7
		}
		byKey[key] = def
	}
}

// Lookup finds the definition matching an encoded (opcode, funct3, funct7)
// triple. funct3/funct7 are ignored (treated as zero) for formats that don't
// carry them, mirroring how the encoder only ever sets the bits it needs.
func Lookup(opcode, funct3, funct7 uint32) (InstructionDef, bool) {
	// Formats without a funct3/funct7 field (U, J) are keyed on opcode alone,
	// so try progressively coarser keys.
	if def, ok := byKey[decodeKey{opcode: opcode, funct3: funct3, funct7: funct7}]; ok {
		return def, ok
	}
	if def, ok := byKey[decodeKey{opcode: opcode, funct3: funct3}]; ok {
		return def, ok
	}
	if def, ok := byKey[decodeKey{opcode: opcode}]; ok {
		return def, ok
	}
	return InstructionDef{}, false
}

// ByMnemonic looks up a definition by its assembly mnemonic (lowercased).
func ByMnemonic(mnemonic string) (InstructionDef, bool) {
	def, ok := Table[mnemonic]
	return def, ok
}

// FormatForOpcode reports which of the six formats (or shift-immediate) an
// opcode belongs to, so the decoder knows which fields to extract before it
// has fully identified the instruction.
func FormatForOpcode(opcode uint32) (Format, bool) {
	switch opcode {
	case OpcodeOp:
		return FormatR, true
	case OpcodeOpImm:
		return FormatI, true // shift-immediates are disambiguated by funct3 after extraction
	case OpcodeLoad, OpcodeJALR:
		return FormatI, true
	case OpcodeStore:
		return FormatS, true
	case OpcodeBranch:
		return FormatB, true
	case OpcodeLUI, OpcodeAUIPC:
		return FormatU, true
	case OpcodeJAL:
		return FormatJ, true
	default:
		return 0, false
	}
}

// IsShiftImmediate reports whether the shift amount fits the 5-bit
// unsigned field (0..31), the boundary named in spec.md §8.
func IsShiftImmediate(amount int64) bool {
	return amount >= 0 && amount <= 31
}
