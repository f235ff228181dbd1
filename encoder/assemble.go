package encoder

import (
	"github.com/lookbusy1344/riscv-pipeline/image"
	"github.com/lookbusy1344/riscv-pipeline/parser"
)

// Assemble runs pass 2 over an already-parsed, label-resolved program,
// producing the text and data images the simulator reads back in as its
// only input (spec.md §4.4). Every statement is encoded, as in AssembleAll,
// but only the first error is returned.
func Assemble(prog *parser.Program) (text, data *image.Image, err error) {
	text, data, errs := AssembleAll(prog)
	if len(errs) > 0 {
		return text, data, errs[0]
	}
	return text, data, nil
}

// AssembleAll runs pass 2 and collects every encoding error instead of
// stopping at the first, so a single invocation reports every problem in
// the source the way a real assembler session would.
func AssembleAll(prog *parser.Program) (text, data *image.Image, errs []error) {
	text = image.New()
	data = image.New()
	enc := NewEncoder(prog.Labels)

	for _, inst := range prog.Instructions {
		word, err := enc.EncodeInstruction(inst, inst.Address)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		text.Store(inst.Address, word)
	}

	for _, d := range prog.Directives {
		if err := EncodeData(d, data); err != nil {
			errs = append(errs, err)
		}
	}

	return text, data, errs
}
