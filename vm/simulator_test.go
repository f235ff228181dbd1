package vm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/riscv-pipeline/encoder"
	"github.com/lookbusy1344/riscv-pipeline/image"
	"github.com/lookbusy1344/riscv-pipeline/parser"
	"github.com/lookbusy1344/riscv-pipeline/vm"
)

func assemble(t *testing.T, src string) (*image.Image, *image.Image) {
	t.Helper()
	prog, err := parser.Parse("t.s", strings.NewReader(src))
	require.NoError(t, err)
	text, data, err := encoder.Assemble(prog)
	require.NoError(t, err)
	return text, data
}

func TestAddImmediateChainCommitsExpectedSum(t *testing.T) {
	text, data := assemble(t, ".text\naddi x1, x0, 5\naddi x2, x0, 7\nadd x3, x1, x2\n")
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()

	regs := sim.Regs.Snapshot()
	if int32(regs[3]) != 12 {
		t.Fatalf("x3 = %d, want 12", int32(regs[3]))
	}
	if sim.Stats.TotalInstructions != 3 {
		t.Fatalf("committed = %d, want 3", sim.Stats.TotalInstructions)
	}
}

func TestRegisterZeroNeverObservablyNonzero(t *testing.T) {
	text, data := assemble(t, ".text\naddi x0, x0, 99\naddi x1, x0, 1\n")
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	for !sim.Drained() && !sim.CycleLimitReached() {
		sim.Step()
		if regs := sim.Regs.Snapshot(); regs[0] != 0 {
			t.Fatalf("cycle %d: x0 = %d, want 0", sim.Stats.TotalCycles, regs[0])
		}
	}
	if sim.Regs.Read(0) != 0 {
		t.Fatalf("x0 = %d, want 0", sim.Regs.Read(0))
	}
}

func TestLoadUseHazardStallsExactlyOnceWithForwarding(t *testing.T) {
	src := ".data\n.word 42\n.text\nlui x2, 0x10000\nlw x1, 0(x2)\nadd x3, x1, x4\n"
	text, data := assemble(t, src)
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()

	regs := sim.Regs.Snapshot()
	if int32(regs[3]) != 42 {
		t.Fatalf("x3 = %d, want 42 (x4 is 0)", int32(regs[3]))
	}
	if sim.Stats.TotalStallCycles != 1 {
		t.Fatalf("stall cycles = %d, want exactly 1", sim.Stats.TotalStallCycles)
	}
}

func TestUnconditionalBranchScenario(t *testing.T) {
	src := ".text\nbeq x0, x0, L\naddi x1, x0, 99\nL: addi x2, x0, 1\n"
	text, data := assemble(t, src)
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()

	regs := sim.Regs.Snapshot()
	if int32(regs[1]) != 0 {
		t.Fatalf("x1 = %d, want 0 (skipped by the taken branch)", int32(regs[1]))
	}
	if int32(regs[2]) != 1 {
		t.Fatalf("x2 = %d, want 1", int32(regs[2]))
	}
	if sim.Stats.BranchMispredictions != 1 {
		t.Fatalf("mispredictions = %d, want 1 (first time the branch is seen)", sim.Stats.BranchMispredictions)
	}
}

func TestJalAndJalrRoundTrip(t *testing.T) {
	src := ".text\njal x1, FN\naddi x5, x0, 7\nFN: jalr x0, 0(x1)\n"
	text, data := assemble(t, src)
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()

	regs := sim.Regs.Snapshot()
	if regs[1] != 4 {
		t.Fatalf("x1 (link) = %#x, want 0x4 (pc_of_jal + 4)", regs[1])
	}
}

func TestLoadByteSignAndZeroExtension(t *testing.T) {
	src := ".data\n.byte 0xFF\n.text\nlui x2, 0x10000\nlb x1, 0(x2)\nlbu x3, 0(x2)\n"
	text, data := assemble(t, src)
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()

	regs := sim.Regs.Snapshot()
	if int32(regs[1]) != -1 {
		t.Fatalf("lb result = %d, want -1", int32(regs[1]))
	}
	if int32(regs[3]) != 255 {
		t.Fatalf("lbu result = %d, want 255", int32(regs[3]))
	}
}

func TestDataSegmentWordLayoutInMemory(t *testing.T) {
	_, data := assemble(t, ".data\n.word 1, 2, 3\n")
	if data.Load(0x10000000) != 1 || data.Load(0x10000004) != 2 || data.Load(0x10000008) != 3 {
		t.Fatalf("data layout wrong: %#x %#x %#x", data.Load(0x10000000), data.Load(0x10000004), data.Load(0x10000008))
	}
}

func TestTwoRunsProduceIdenticalFinalState(t *testing.T) {
	text, data := assemble(t, ".text\naddi x1, x0, 5\naddi x2, x0, 7\nadd x3, x1, x2\n")
	sim1 := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim1.Run()
	sim2 := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim2.Run()

	require.Equal(t, sim1.Regs.Snapshot(), sim2.Regs.Snapshot(), "register files diverged between runs")
	require.Equal(t, sim1.Stats.TotalCycles, sim2.Stats.TotalCycles, "cycle counts diverged")
	require.Equal(t, sim1.Stats, sim2.Stats, "statistics diverged between identical runs")
}

func TestWithoutForwardingIncursMoreStalls(t *testing.T) {
	src := ".text\naddi x1, x0, 5\naddi x2, x0, 7\nadd x3, x1, x2\n"
	text, data := assemble(t, src)

	optsFwd := vm.DefaultOptions()
	simFwd := vm.NewSimulator(text, data, optsFwd)
	simFwd.Run()

	optsNoFwd := vm.DefaultOptions()
	optsNoFwd.Forwarding = false
	simNoFwd := vm.NewSimulator(text, data, optsNoFwd)
	simNoFwd.Run()

	if simNoFwd.Stats.TotalStallCycles <= simFwd.Stats.TotalStallCycles {
		t.Fatalf("expected more stalls without forwarding: with=%d without=%d",
			simFwd.Stats.TotalStallCycles, simNoFwd.Stats.TotalStallCycles)
	}
}

func TestDivByZeroReportsWarningAndResultZero(t *testing.T) {
	text, data := assemble(t, ".text\naddi x1, x0, 5\ndiv x2, x1, x0\n")
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()

	regs := sim.Regs.Snapshot()
	if int32(regs[2]) != 0 {
		t.Fatalf("x2 = %d, want 0", int32(regs[2]))
	}
	if len(sim.Stats.DivByZeroWarnings) != 1 {
		t.Fatalf("div-by-zero warnings = %d, want 1", len(sim.Stats.DivByZeroWarnings))
	}
	if len(sim.Warnings) != 1 {
		t.Fatalf("Warnings = %d, want 1", len(sim.Warnings))
	}
}

func TestUnknownOpcodeBubblesAndWarns(t *testing.T) {
	text := image.New()
	text.Store(0, 0x0000007F) // opcode 0x7F has no table entry
	sim := vm.NewSimulator(text, image.New(), vm.DefaultOptions())
	sim.Run()

	if sim.Stats.TotalInstructions != 0 {
		t.Fatalf("committed = %d, want 0 (bubble only)", sim.Stats.TotalInstructions)
	}
	if len(sim.Stats.UnknownOpcodeWarnings) != 1 {
		t.Fatalf("unknown-opcode warnings = %d, want 1", len(sim.Stats.UnknownOpcodeWarnings))
	}
}

func TestMemoryReadMissWarnsAndReadsZero(t *testing.T) {
	text, data := assemble(t, ".text\nlui x2, 0x10000\nlw x1, 0(x2)\n")
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()

	regs := sim.Regs.Snapshot()
	if int32(regs[1]) != 0 {
		t.Fatalf("x1 = %d, want 0 (unbacked address)", int32(regs[1]))
	}
	if len(sim.Stats.MemoryReadMissWarnings) != 1 {
		t.Fatalf("memory-read-miss warnings = %d, want 1", len(sim.Stats.MemoryReadMissWarnings))
	}
}

func TestCycleLimitReachedStopsAnExternalStepLoop(t *testing.T) {
	src := ".text\nstart: jal x0, start\n"
	text, data := assemble(t, src)
	opts := vm.DefaultOptions()
	opts.CycleLimit = 5
	sim := vm.NewSimulator(text, data, opts)

	cycles := 0
	for !sim.Drained() && !sim.CycleLimitReached() {
		sim.Step()
		cycles++
	}
	if cycles != 5 {
		t.Fatalf("cycles run = %d, want 5 (CycleLimitReached must stop an external driver loop)", cycles)
	}
}

func TestCPIMatchesCyclesOverInstructions(t *testing.T) {
	text, data := assemble(t, ".text\naddi x1, x0, 1\naddi x2, x0, 2\n")
	sim := vm.NewSimulator(text, data, vm.DefaultOptions())
	sim.Run()
	want := float64(sim.Stats.TotalCycles) / float64(sim.Stats.TotalInstructions)
	if sim.Stats.CPI() != want {
		t.Fatalf("CPI = %f, want %f", sim.Stats.CPI(), want)
	}
}
