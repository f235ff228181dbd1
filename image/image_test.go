package image_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lookbusy1344/riscv-pipeline/image"
)

func TestLoadThenSaveRoundTrips(t *testing.T) {
	src := "0x00000000 0x00A00093\n0x00000004 0x00000013 # nop\n"
	img, warnings, err := image.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	var buf bytes.Buffer
	if err := img.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}
	want := "0x00000000 0x00A00093\n0x00000004 0x00000013\n"
	if buf.String() != want {
		t.Fatalf("round trip mismatch:\ngot:  %q\nwant: %q", buf.String(), want)
	}
}

func TestAbsentAddressReadsZero(t *testing.T) {
	img := image.New()
	if v := img.Load(0x10000000); v != 0 {
		t.Fatalf("Load of unset address = %#x, want 0", v)
	}
}

func TestMalformedLinesAreSkippedWithWarning(t *testing.T) {
	src := "not a line\n0x00000000 0x00000001\n0xZZ 0x1\n"
	img, warnings, err := image.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if img.Len() != 1 {
		t.Fatalf("got %d entries, want 1 surviving entry", img.Len())
	}
	if len(warnings) != 2 {
		t.Fatalf("got %d warnings, want 2", len(warnings))
	}
}

func TestCloneIsIndependent(t *testing.T) {
	img := image.New()
	img.Store(0x10000000, 42)
	clone := img.Clone()
	clone.Store(0x10000000, 99)
	if img.Load(0x10000000) != 42 {
		t.Fatalf("mutating clone affected original")
	}
}
