package isa

import "testing"

func TestLookupRoundTripsEveryMnemonic(t *testing.T) {
	for mnemonic, def := range Table {
		found, ok := Lookup(def.Opcode, def.Funct3, def.Funct7)
		if !ok {
			t.Fatalf("%s: Lookup(opcode=%#x, funct3=%#x, funct7=%#x) found nothing", mnemonic, def.Opcode, def.Funct3, def.Funct7)
		}
		if found.Mnemonic != mnemonic {
			t.Fatalf("%s: Lookup resolved to %s instead", mnemonic, found.Mnemonic)
		}
	}
}

func TestShiftAndArithmeticShareOpcodeButDiffer(t *testing.T) {
	slli, ok := Lookup(OpcodeOpImm, 0x1, 0x00)
	if !ok || slli.Mnemonic != "slli" {
		t.Fatalf("expected slli, got %+v ok=%v", slli, ok)
	}
	srli, ok := Lookup(OpcodeOpImm, 0x5, 0x00)
	if !ok || srli.Mnemonic != "srli" {
		t.Fatalf("expected srli, got %+v ok=%v", srli, ok)
	}
	srai, ok := Lookup(OpcodeOpImm, 0x5, 0x20)
	if !ok || srai.Mnemonic != "srai" {
		t.Fatalf("expected srai, got %+v ok=%v", srai, ok)
	}
}

func TestSignedAndUnsignedCompareAreDistinct(t *testing.T) {
	slt, _ := ByMnemonic("slt")
	sltu, _ := ByMnemonic("sltu")
	if slt.ALUOp == sltu.ALUOp {
		t.Fatalf("slt and sltu must use distinct ALU ops, got %v for both", slt.ALUOp)
	}
	if slt.Funct3 == sltu.Funct3 {
		t.Fatalf("slt and sltu must have distinct funct3, got %#x for both", slt.Funct3)
	}
}

func TestLoadVariantsCarryDistinctSignExtensionTags(t *testing.T) {
	lb, _ := ByMnemonic("lb")
	lbu, _ := ByMnemonic("lbu")
	if lb.MemSize == lbu.MemSize {
		t.Fatalf("lb and lbu must carry distinct MemSize tags (signed vs zero-extend)")
	}
}

func TestIsShiftImmediateBoundary(t *testing.T) {
	cases := []struct {
		amount int64
		want   bool
	}{
		{0, true},
		{31, true},
		{32, false},
		{-1, false},
	}
	for _, c := range cases {
		if got := IsShiftImmediate(c.amount); got != c.want {
			t.Errorf("IsShiftImmediate(%d) = %v, want %v", c.amount, got, c.want)
		}
	}
}

func TestFormatForOpcodeCoversEveryTableEntry(t *testing.T) {
	for mnemonic, def := range Table {
		if _, ok := FormatForOpcode(def.Opcode); !ok {
			t.Errorf("%s: opcode %#x has no FormatForOpcode entry", mnemonic, def.Opcode)
		}
	}
}
