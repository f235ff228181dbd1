package encoder_test

import (
	"strings"
	"testing"

	"github.com/lookbusy1344/riscv-pipeline/encoder"
	"github.com/lookbusy1344/riscv-pipeline/parser"
)

func assembleSrc(t *testing.T, src string) (uint32, error) {
	t.Helper()
	prog, err := parser.Parse("t.s", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Instructions) == 0 {
		t.Fatalf("no instructions parsed")
	}
	text, _, err := encoder.Assemble(prog)
	if err != nil {
		return 0, err
	}
	return text.Load(prog.Instructions[0].Address), nil
}

func TestEncodeAddRType(t *testing.T) {
	word, err := assembleSrc(t, ".text\nadd x1, x2, x3\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// opcode=0110011 funct3=000 funct7=0000000 rd=1 rs1=2 rs2=3
	want := uint32(0x003100B3)
	if word != want {
		t.Fatalf("add encoding = %#08x, want %#08x", word, want)
	}
}

func TestEncodeSubDistinguishedByFunct7(t *testing.T) {
	word, err := assembleSrc(t, ".text\nsub x1, x2, x3\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := uint32(0x403100B3)
	if word != want {
		t.Fatalf("sub encoding = %#08x, want %#08x", word, want)
	}
}

func TestEncodeAddiPositiveAndNegativeImmediate(t *testing.T) {
	posWord, err := assembleSrc(t, ".text\naddi x1, x0, 2047\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	negWord, err := assembleSrc(t, ".text\naddi x1, x0, -2048\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if posWord == negWord {
		t.Fatalf("positive and negative boundary immediates encoded identically")
	}
}

func TestImmediateOutOfRangeFails(t *testing.T) {
	_, err := assembleSrc(t, ".text\naddi x1, x0, 2048\n")
	if err == nil {
		t.Fatalf("expected range error for 2048")
	}
	perr, ok := err.(*parser.Error)
	if !ok || perr.Kind != parser.ErrorInvalidImmediateValue {
		t.Fatalf("err = %v, want ErrorInvalidImmediateValue", err)
	}
}

func TestShiftAmountBoundary(t *testing.T) {
	if _, err := assembleSrc(t, ".text\nslli x1, x2, 31\n"); err != nil {
		t.Fatalf("shift of 31 should be valid: %v", err)
	}
	if _, err := assembleSrc(t, ".text\nslli x1, x2, 32\n"); err == nil {
		t.Fatalf("shift of 32 should be rejected")
	}
}

func TestLoadStoreOffsetEncoding(t *testing.T) {
	word, err := assembleSrc(t, ".text\nlw x1, 16(x2)\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// imm=16, rs1=x2, funct3=010, rd=1, opcode=0000011
	want := uint32(16)<<20 | 2<<15 | 2<<12 | 1<<7 | 0x03
	if word != want {
		t.Fatalf("lw encoding = %#08x, want %#08x", word, want)
	}
}

func TestBranchOffsetIsPCRelativeAndEven(t *testing.T) {
	src := ".text\nbeq x0, x0, L\naddi x1, x0, 1\nL: addi x2, x0, 2\n"
	prog, err := parser.Parse("t.s", strings.NewReader(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	text, _, err := encoder.Assemble(prog)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	// beq at 0, L at 8: offset +8, so imm[4:1] = 0b0100 and every other
	// immediate bit is zero.
	word := text.Load(0)
	want := uint32(4<<8 | 0x63)
	if word != want {
		t.Fatalf("beq encoding = %#08x, want %#08x", word, want)
	}
}

func TestJumpOffsetOutOfRangeFails(t *testing.T) {
	prog, err := parser.Parse("t.s", strings.NewReader(".text\njal x1, 3000000\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, _, errs := encoder.AssembleAll(prog)
	if len(errs) == 0 {
		t.Fatalf("expected out-of-range jump offset to fail")
	}
}

func TestLuiEncodesUpperBitsOnly(t *testing.T) {
	word, err := assembleSrc(t, ".text\nlui x1, 0x10000\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	want := uint32(0x10000)<<12 | 1<<7 | 0x37
	if word != want {
		t.Fatalf("lui encoding = %#08x, want %#08x", word, want)
	}
	if word&0xFFF != 1<<7|0x37 {
		t.Fatalf("lui must put only rd and the opcode in the low 12 bits, got %#03x", word&0xFFF)
	}
}

func TestUpperImmediateOutOfRangeFails(t *testing.T) {
	_, err := assembleSrc(t, ".text\nlui x1, 0x100000\n")
	if err == nil {
		t.Fatalf("expected 20-bit range error")
	}
}

func TestUnknownMnemonicIsInvalidInstruction(t *testing.T) {
	_, err := assembleSrc(t, ".text\nfrobnicate x1, x2, x3\n")
	if err == nil {
		t.Fatalf("expected an error")
	}
	perr, ok := err.(*parser.Error)
	if !ok || perr.Kind != parser.ErrorInvalidInstruction {
		t.Fatalf("err = %v, want ErrorInvalidInstruction", err)
	}
}

func TestDataByteWordMerge(t *testing.T) {
	prog, err := parser.Parse("t.s", strings.NewReader(".data\n.word 0x11111111\n.byte 0x22\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	_, data, err := encoder.Assemble(prog)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if data.Load(0x10000000) != 0x11111111 {
		t.Fatalf("word = %#x, want 0x11111111", data.Load(0x10000000))
	}
	if data.Load(0x10000004) != 0x22 {
		t.Fatalf("byte merge = %#x, want 0x22", data.Load(0x10000004))
	}
}
