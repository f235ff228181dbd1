package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/riscv-pipeline/parser"
)

// parseRegister resolves a register operand (x0-x31 or an ABI alias) to its
// numeric index, or an INVALID_REGISTER failure (spec.md §4.3).
func (e *Encoder) parseRegister(inst *parser.Instruction, operand string) (uint32, error) {
	operand = strings.TrimSpace(operand)
	reg, ok := parser.ResolveRegister(operand)
	if !ok {
		return 0, e.errorf(inst, parser.ErrorInvalidRegister, "invalid register %q", operand)
	}
	return uint32(reg), nil
}

// parseImmediate evaluates an immediate operand: a decimal/hex/binary/octal
// literal, a negative literal, a character literal, or a label reference
// resolved through the symbol table.
func (e *Encoder) parseImmediate(inst *parser.Instruction, operand string) (int64, error) {
	operand = strings.TrimSpace(operand)
	if operand == "" {
		return 0, e.errorf(inst, parser.ErrorInvalidImmediateValue, "empty immediate")
	}

	if len(operand) >= 3 && operand[0] == '\'' && operand[len(operand)-1] == '\'' {
		body := operand[1 : len(operand)-1]
		if strings.HasPrefix(body, "\\") {
			b, consumed, err := parser.ParseEscapeChar(body)
			if err != nil || consumed != len(body) {
				return 0, e.errorf(inst, parser.ErrorInvalidImmediateValue, "invalid character literal %q", operand)
			}
			return int64(b), nil
		}
		if len(body) != 1 {
			return 0, e.errorf(inst, parser.ErrorInvalidImmediateValue, "character literal must be one character: %q", operand)
		}
		return int64(body[0]), nil
	}

	if addr, ok := e.labels.Lookup(operand); ok {
		return int64(addr), nil
	}
	if isLikelyIdentifier(operand) {
		return 0, e.errorf(inst, parser.ErrorInvalidLabel, "undefined label %q", operand)
	}

	negative := false
	text := operand
	if strings.HasPrefix(text, "-") {
		negative = true
		text = text[1:]
	}

	var value uint64
	var err error
	switch {
	case strings.HasPrefix(text, "0x") || strings.HasPrefix(text, "0X"):
		value, err = strconv.ParseUint(text[2:], 16, 64)
	case strings.HasPrefix(text, "0b") || strings.HasPrefix(text, "0B"):
		value, err = strconv.ParseUint(text[2:], 2, 64)
	case strings.HasPrefix(text, "0") && len(text) > 1:
		value, err = strconv.ParseUint(text[1:], 8, 64)
	default:
		value, err = strconv.ParseUint(text, 10, 64)
	}
	if err != nil {
		return 0, e.errorf(inst, parser.ErrorInvalidImmediateValue, "invalid immediate value %q", operand)
	}

	result := int64(value)
	if negative {
		result = -result
	}
	return result, nil
}

// parseMemoryOperand splits a load/store offset operand of the form
// "imm(rs1)" into its immediate and base register.
func (e *Encoder) parseMemoryOperand(inst *parser.Instruction, operand string) (int64, uint32, error) {
	operand = strings.TrimSpace(operand)
	open := strings.IndexByte(operand, '(')
	if open < 0 || !strings.HasSuffix(operand, ")") {
		return 0, 0, e.errorf(inst, parser.ErrorSyntax, "expected imm(rs1), got %q", operand)
	}
	immText := strings.TrimSpace(operand[:open])
	regText := strings.TrimSpace(operand[open+1 : len(operand)-1])

	var imm int64
	var err error
	if immText == "" {
		imm = 0
	} else {
		imm, err = e.parseImmediate(inst, immText)
		if err != nil {
			return 0, 0, err
		}
	}
	rs1, err := e.parseRegister(inst, regText)
	if err != nil {
		return 0, 0, err
	}
	return imm, rs1, nil
}

func isLikelyIdentifier(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func (e *Encoder) errorf(inst *parser.Instruction, kind parser.ErrorKind, format string, args ...interface{}) error {
	return parser.NewError(inst.Pos, kind, fmt.Sprintf(format, args...), inst.Line)
}
