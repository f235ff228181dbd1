package encoder

import (
	"strconv"
	"strings"

	"github.com/lookbusy1344/riscv-pipeline/image"
	"github.com/lookbusy1344/riscv-pipeline/parser"
)

// EncodeData lays out one data directive into img at its assigned address.
// Multi-byte elements are stored little-endian. Byte/half elements are
// read-modify-write merged into the aligned word that contains them; a word
// element replaces the aligned word containing its address, and a .dword
// writes that word and the next. Elements are not split across word
// boundaries, the way the simulator's own stores work, so the text and data
// images share the same "word is the unit of storage" model end to end.
func EncodeData(d *parser.DataDirective, img *image.Image) error {
	switch d.Name {
	case ".asciiz", ".string":
		return encodeString(d, img)
	default:
		return encodeNumeric(d, img)
	}
}

func encodeString(d *parser.DataDirective, img *image.Image) error {
	s := d.Args[0]
	addr := d.Address
	for i := 0; i < len(s); i++ {
		storeByte(img, addr, s[i])
		addr++
	}
	if d.Name == ".asciiz" {
		storeByte(img, addr, 0)
	}
	return nil
}

func encodeNumeric(d *parser.DataDirective, img *image.Image) error {
	size, ok := parser.DataElementSize[d.Name]
	if !ok {
		return parser.NewError(d.Pos, parser.ErrorInvalidData, "unknown data directive \""+d.Name+"\"", d.Line)
	}
	addr := d.Address
	for _, arg := range d.Args {
		arg = strings.TrimSpace(arg)
		value, err := strconv.ParseInt(arg, 0, 64)
		if err != nil {
			uvalue, uerr := strconv.ParseUint(arg, 0, 64)
			if uerr != nil {
				return parser.NewError(d.Pos, parser.ErrorInvalidData, "invalid numeric literal \""+arg+"\"", d.Line)
			}
			value = int64(uvalue)
		}
		switch size {
		case 1:
			storeByte(img, addr, byte(value))
		case 2:
			storeHalf(img, addr, uint16(value))
		case 4:
			storeWord(img, addr, uint32(value))
		case 8:
			storeWord(img, addr, uint32(value))
			storeWord(img, addr+4, uint32(value>>32))
		}
		addr += uint32(size)
	}
	return nil
}

// storeByte/storeHalf/storeWord merge a sub-word write into the aligned
// 32-bit word that contains it, matching how the simulator's memory stage
// treats an Image as word-addressed storage with byte/half masking.
func storeByte(img *image.Image, addr uint32, v byte) {
	base := addr &^ 3
	shift := (addr & 3) * 8
	word := img.Load(base)
	word = (word &^ (0xFF << shift)) | uint32(v)<<shift
	img.Store(base, word)
}

func storeHalf(img *image.Image, addr uint32, v uint16) {
	base := addr &^ 3
	shift := (addr & 3) * 8
	word := img.Load(base)
	word = (word &^ (0xFFFF << shift)) | uint32(v)<<shift
	img.Store(base, word)
}

func storeWord(img *image.Image, addr uint32, v uint32) {
	img.Store(addr&^3, v)
}
