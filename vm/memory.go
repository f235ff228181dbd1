package vm

import (
	"fmt"

	"github.com/lookbusy1344/riscv-pipeline/image"
	"github.com/lookbusy1344/riscv-pipeline/isa"
)

// memoryStage performs the EX/MEM latch's load or store against data
// memory and produces the MEM/WB payload. Warnings are returned (not
// errors — the simulator is fail-soft, spec.md §7) for a misaligned
// half/word access and for a load that misses every explicit entry.
func memoryStage(mem *image.Image, lat EXMEM) (memData int32, misaligned bool, misalignWarning, missWarning string) {
	if !lat.Valid {
		return 0, false, "", ""
	}
	addr := uint32(lat.ALUResult)

	if lat.Ctrl.MemSize != isa.SizeNone {
		misaligned = isMisaligned(addr, lat.Ctrl.MemSize)
		if misaligned {
			misalignWarning = fmt.Sprintf("misaligned %s access at %#08x (pc %#08x)", sizeName(lat.Ctrl.MemSize), addr, lat.PC)
		}
	}

	if lat.Ctrl.MemRead {
		var missed bool
		memData, missed = loadSized(mem, addr, lat.Ctrl.MemSize)
		if missed {
			missWarning = fmt.Sprintf("memory read miss at %#08x (pc %#08x), returning 0", addr, lat.PC)
		}
	}
	if lat.Ctrl.MemWrite {
		storeSized(mem, addr, lat.StoreVal, lat.Ctrl.MemSize)
	}
	return memData, misaligned, misalignWarning, missWarning
}

func isMisaligned(addr uint32, size isa.MemSize) bool {
	switch size {
	case isa.SizeHalf, isa.SizeHalfUnsigned:
		return addr%2 != 0
	case isa.SizeWord:
		return addr%4 != 0
	default:
		return false
	}
}

func sizeName(size isa.MemSize) string {
	switch size {
	case isa.SizeByte, isa.SizeByteUnsigned:
		return "byte"
	case isa.SizeHalf, isa.SizeHalfUnsigned:
		return "half"
	case isa.SizeWord:
		return "word"
	default:
		return "access"
	}
}

// loadSized reads addr's byte/half/word and applies the sign/zero extension
// rule tied to the load variant (spec.md §4.1/§8: lb/lh sign-extend, lbu/lhu
// zero-extend). missed reports whether the containing word had no explicit
// entry in the image — spec.md §7's memory-read-miss case, which still
// reads as 0 but is reported.
func loadSized(mem *image.Image, addr uint32, size isa.MemSize) (value int32, missed bool) {
	base := addr &^ 3
	shift := (addr & 3) * 8
	missed = !mem.Has(base)
	word := mem.Load(base)

	switch size {
	case isa.SizeByte:
		b := byte(word >> shift)
		return int32(int8(b)), missed
	case isa.SizeByteUnsigned:
		b := byte(word >> shift)
		return int32(b), missed
	case isa.SizeHalf:
		h := uint16(word >> shift)
		return int32(int16(h)), missed
	case isa.SizeHalfUnsigned:
		h := uint16(word >> shift)
		return int32(h), missed
	case isa.SizeWord:
		return int32(word), missed
	default:
		return 0, missed
	}
}

// storeSized merges a sub-word write into its containing aligned word
// rather than splitting across words, per the reference implementation's
// behavior for misaligned sub-word writes (spec.md §9 open question).
func storeSized(mem *image.Image, addr uint32, value int32, size isa.MemSize) {
	base := addr &^ 3
	shift := (addr & 3) * 8
	word := mem.Load(base)

	switch size {
	case isa.SizeByte, isa.SizeByteUnsigned:
		word = (word &^ (0xFF << shift)) | (uint32(value)&0xFF)<<shift
		mem.Store(base, word)
	case isa.SizeHalf, isa.SizeHalfUnsigned:
		word = (word &^ (0xFFFF << shift)) | (uint32(value)&0xFFFF)<<shift
		mem.Store(base, word)
	case isa.SizeWord:
		mem.Store(addr&^3, uint32(value))
	}
}
