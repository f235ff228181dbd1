// Command rvsim runs the five-stage pipelined simulator over a pair of
// on-disk text/data memory images.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/riscv-pipeline/apiserver"
	"github.com/lookbusy1344/riscv-pipeline/config"
	"github.com/lookbusy1344/riscv-pipeline/image"
	"github.com/lookbusy1344/riscv-pipeline/tuiwatch"
	"github.com/lookbusy1344/riscv-pipeline/vm"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion  = flag.Bool("version", false, "Show version information")
		noPipelining = flag.Bool("no-pipelining", false, "Disable pipelining (fully serialized execution)")
		noForwarding = flag.Bool("no-forwarding", false, "Disable operand forwarding")
		structural   = flag.Bool("structural-hazard", false, "Stall decode while ID/EX and EX/MEM both hold a memory access")
		cycleLimit   = flag.Uint64("cycle-limit", 0, "Maximum cycles before halting (0 = use config default)")
		traceFlag    = flag.Bool("trace", false, "Print a per-instruction stage trace on exit")
		traceOnly    = flag.Uint64("trace-only", 0, "Restrict the trace to one instruction number (0 = all)")
		dumpBTB      = flag.Bool("btb-dump", false, "Dump the branch target buffer on exit")
		watch        = flag.Bool("watch", false, "Open the interactive cycle-stepping TUI instead of running to completion")
		serve        = flag.Bool("serve", false, "Stream live cycle events over a WebSocket instead of running locally")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rvsim %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() != 2 {
		fmt.Fprintln(os.Stderr, "usage: rvsim [flags] <text.img> <data.img>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvsim: %v\n", err)
		os.Exit(1)
	}

	text := mustLoadImage(flag.Arg(0))
	data := mustLoadImage(flag.Arg(1))

	opts := vm.DefaultOptions()
	opts.Pipelining = cfg.Pipeline.Pipelining && !*noPipelining
	opts.Forwarding = cfg.Pipeline.Forwarding && !*noForwarding
	opts.StructuralHazard = cfg.Pipeline.StructuralHazardEnabled || *structural
	opts.CycleLimit = cfg.Pipeline.CycleLimit
	if *cycleLimit != 0 {
		opts.CycleLimit = *cycleLimit
	}
	opts.Trace = *traceFlag || cfg.Trace.Enabled
	opts.TraceOnlyPC = *traceOnly

	sim := vm.NewSimulator(text, data, opts)

	switch {
	case *watch:
		if err := tuiwatch.NewWatch(sim).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "rvsim: %v\n", err)
			os.Exit(1)
		}
	case *serve:
		addr := cfg.Server.Address
		server := apiserver.NewServer(addr)
		go func() {
			if err := server.Start(); err != nil {
				fmt.Fprintf(os.Stderr, "rvsim: apiserver: %v\n", err)
			}
		}()
		fmt.Printf("streaming cycle events on %s/ws\n", addr)
		server.Drive(sim)
	default:
		sim.Run()
	}

	for _, w := range sim.Warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	if *dumpBTB {
		sim.Predict.DumpState(os.Stdout)
	}

	if opts.Trace {
		for _, rec := range sim.Trace.Records() {
			fmt.Println(rec.String())
		}
	}

	s := sim.Stats
	fmt.Printf("halted: %s\n", sim.HaltReason())
	fmt.Printf("cycles=%d instructions=%d CPI=%.3f stalls=%d (data=%d structural=%d distinct-data=%d distinct-structural=%d) mispredicts=%d distinct-control=%d\n",
		s.TotalCycles, s.TotalInstructions, s.CPI(), s.TotalStallCycles, s.DataHazardStalls, s.StructuralHazardStalls,
		s.DistinctDataHazards, s.DistinctStructuralHazards, s.BranchMispredictions, s.DistinctControlHazards)
}

func mustLoadImage(path string) *image.Image {
	f, err := os.Open(path) // #nosec G304 -- CLI-supplied image path
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvsim: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	img, warnings, err := image.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvsim: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s: %s\n", path, w)
	}
	return img
}
