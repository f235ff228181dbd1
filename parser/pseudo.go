package parser

// pseudoExpansion rewrites a pseudo-instruction into its real-instruction
// equivalent, per the fixed table in spec.md §4.2. Expansion happens in
// place, before pass 2, so the rest of the assembler never sees a
// pseudo-mnemonic.
func pseudoExpansion(mnemonic string, operands []string) (string, []string, bool) {
	switch mnemonic {
	case "nop":
		return "addi", []string{"x0", "x0", "0"}, true
	case "mv":
		if len(operands) != 2 {
			return "", nil, false
		}
		return "addi", []string{operands[0], operands[1], "0"}, true
	case "not":
		if len(operands) != 2 {
			return "", nil, false
		}
		return "xori", []string{operands[0], operands[1], "-1"}, true
	case "neg":
		if len(operands) != 2 {
			return "", nil, false
		}
		return "sub", []string{operands[0], "x0", operands[1]}, true
	case "li":
		if len(operands) != 2 {
			return "", nil, false
		}
		return "addi", []string{operands[0], "x0", operands[1]}, true
	default:
		return "", nil, false
	}
}

// IsPseudoInstruction reports whether mnemonic is one of the fixed
// pseudo-instructions spec.md §4.2 expands.
func IsPseudoInstruction(mnemonic string) bool {
	switch mnemonic {
	case "nop", "mv", "not", "neg", "li":
		return true
	default:
		return false
	}
}
