// Command rvasm assembles a RISC-V assembly source file into a pair of
// on-disk text/data memory images.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/riscv-pipeline/encoder"
	"github.com/lookbusy1344/riscv-pipeline/image"
	"github.com/lookbusy1344/riscv-pipeline/parser"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		outTextFile = flag.String("text-out", "", "Output text-segment image path (default: <input>.text.img)")
		outDataFile = flag.String("data-out", "", "Output data-segment image path (default: <input>.data.img)")
		keepGoing   = flag.Bool("keep-going", false, "Report every error instead of stopping at the first")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("rvasm %s (%s)\n", Version, Commit)
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rvasm [flags] <source.s>")
		os.Exit(1)
	}
	srcPath := flag.Arg(0)

	src, err := os.Open(srcPath) // #nosec G304 -- CLI-supplied source path
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvasm: %v\n", err)
		os.Exit(1)
	}
	defer src.Close()

	prog, err := parser.Parse(srcPath, src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvasm: %v\n", err)
		os.Exit(2)
	}

	var text, data = assemble(prog, *keepGoing)

	textPath := *outTextFile
	if textPath == "" {
		textPath = srcPath + ".text.img"
	}
	dataPath := *outDataFile
	if dataPath == "" {
		dataPath = srcPath + ".data.img"
	}

	if err := writeImage(textPath, text); err != nil {
		fmt.Fprintf(os.Stderr, "rvasm: %v\n", err)
		os.Exit(3)
	}
	if err := writeImage(dataPath, data); err != nil {
		fmt.Fprintf(os.Stderr, "rvasm: %v\n", err)
		os.Exit(3)
	}

	fmt.Printf("assembled %s: %d text words, %d data words\n", srcPath, text.Len(), data.Len())
}

func assemble(prog *parser.Program, keepGoing bool) (text, data *image.Image) {
	if keepGoing {
		t, d, errs := encoder.AssembleAll(prog)
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "rvasm: %v\n", e)
		}
		if len(errs) > 0 {
			os.Exit(2)
		}
		return t, d
	}
	t, d, err := encoder.Assemble(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rvasm: %v\n", err)
		os.Exit(2)
	}
	return t, d
}

func writeImage(path string, img *image.Image) error {
	f, err := os.Create(path) // #nosec G304 -- CLI-supplied output path
	if err != nil {
		return err
	}
	defer f.Close()
	return img.Save(f)
}
