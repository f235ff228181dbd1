package parser

// DataSegmentStart is the base address the two-pass assembler lays out
// `.data` directives from (spec.md §3/§4.3).
const DataSegmentStart uint32 = 0x10000000

// DataElementSize gives the element size, in bytes, of each recognized
// data directive (spec.md §4.2).
var DataElementSize = map[string]int{
	".byte":   1,
	".half":   2,
	".word":   4,
	".dword":  8,
	".asciiz": 1,
	".string": 1,
}

// registerAliases maps ABI register names to their numeric index (spec.md
// §6). x0-x31 are accepted directly by the lexer without consulting this
// table.
var registerAliases = map[string]int{
	"zero": 0,
	"ra":   1,
	"sp":   2,
	"gp":   3,
	"tp":   4,
	"t0":   5,
	"t1":   6,
	"t2":   7,
	"s0":   8,
	"fp":   8,
	"s1":   9,
	"a0":   10,
	"a1":   11,
	"a2":   12,
	"a3":   13,
	"a4":   14,
	"a5":   15,
	"a6":   16,
	"a7":   17,
	"s2":   18,
	"s3":   19,
	"s4":   20,
	"s5":   21,
	"s6":   22,
	"s7":   23,
	"s8":   24,
	"s9":   25,
	"s10":  26,
	"s11":  27,
	"t3":   28,
	"t4":   29,
	"t5":   30,
	"t6":   31,
}
