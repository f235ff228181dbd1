// Package tuiwatch is a full-screen interactive cycle-stepping monitor for
// a running simulator: one pane per pipeline latch, a register pane, a BTB
// pane, and a status line of running statistics. Built on the same
// tview/tcell pairing and command-dispatch idiom as the debugger TUI it is
// grounded on.
package tuiwatch

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/riscv-pipeline/vm"
)

// Watch is the cycle-stepping pipeline monitor.
type Watch struct {
	Sim *vm.Simulator
	App *tview.Application

	MainLayout *tview.Flex

	IFIDView     *tview.TextView
	IDEXView     *tview.TextView
	EXMEMView    *tview.TextView
	MEMWBView    *tview.TextView
	RegisterView *tview.TextView
	BTBView      *tview.TextView
	StatusView   *tview.TextView
}

// NewWatch builds a monitor over sim. Call Run to take over the terminal.
func NewWatch(sim *vm.Simulator) *Watch {
	w := &Watch{
		Sim: sim,
		App: tview.NewApplication(),
	}
	w.initializeViews()
	w.buildLayout()
	w.setupKeyBindings()
	w.refresh()
	return w
}

func (w *Watch) initializeViews() {
	w.IFIDView = newPane(" IF/ID ")
	w.IDEXView = newPane(" ID/EX ")
	w.EXMEMView = newPane(" EX/MEM ")
	w.MEMWBView = newPane(" MEM/WB ")
	w.RegisterView = newPane(" Registers ")
	w.BTBView = newPane(" Branch Target Buffer ")
	w.StatusView = newPane(" Status (F5 step, F6 run, F10 quit) ")
}

func newPane(title string) *tview.TextView {
	v := tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	v.SetBorder(true).SetTitle(title)
	return v
}

func (w *Watch) buildLayout() {
	latches := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(w.IFIDView, 0, 1, false).
		AddItem(w.IDEXView, 0, 1, false).
		AddItem(w.EXMEMView, 0, 1, false).
		AddItem(w.MEMWBView, 0, 1, false)

	side := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(w.RegisterView, 0, 2, false).
		AddItem(w.BTBView, 0, 1, false)

	top := tview.NewFlex().
		AddItem(latches, 0, 2, false).
		AddItem(side, 0, 1, false)

	w.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 1, false).
		AddItem(w.StatusView, 3, 0, false)

	w.App.SetRoot(w.MainLayout, true)
}

func (w *Watch) setupKeyBindings() {
	w.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			w.step()
			return nil
		case tcell.KeyF6:
			w.runToCompletion()
			return nil
		case tcell.KeyF10, tcell.KeyCtrlC:
			w.App.Stop()
			return nil
		}
		return event
	})
}

// Run takes over the terminal until the user quits.
func (w *Watch) Run() error {
	return w.App.Run()
}

func (w *Watch) step() {
	if !w.Sim.Drained() {
		w.Sim.Step()
	}
	w.refresh()
}

func (w *Watch) runToCompletion() {
	for !w.Sim.Drained() && !w.Sim.CycleLimitReached() {
		w.Sim.Step()
	}
	w.refresh()
}

func (w *Watch) refresh() {
	lat := w.Sim.Latches()
	w.IFIDView.SetText(latchText(lat.IFID))
	w.IDEXView.SetText(latchText(lat.IDEX))
	w.EXMEMView.SetText(latchText(lat.EXMEM))
	w.MEMWBView.SetText(latchText(lat.MEMWB))
	w.RegisterView.SetText(registerText(w.Sim))
	w.BTBView.SetText(btbText(w.Sim))
	w.StatusView.SetText(statusText(w.Sim))
}

func latchText(v vm.LatchView) string {
	if !v.Valid {
		return "[gray]bubble[white]"
	}
	return fmt.Sprintf("PC=%#08x  %s", v.PC, v.Mnemonic)
}

func registerText(sim *vm.Simulator) string {
	regs := sim.Regs.Snapshot()
	var b strings.Builder
	for i := 0; i < 32; i += 4 {
		fmt.Fprintf(&b, "x%-2d=%#010x  x%-2d=%#010x  x%-2d=%#010x  x%-2d=%#010x\n",
			i, regs[i], i+1, regs[i+1], i+2, regs[i+2], i+3, regs[i+3])
	}
	return b.String()
}

func btbText(sim *vm.Simulator) string {
	entries := sim.Predict.Entries()
	if len(entries) == 0 {
		return "(empty)"
	}
	var b strings.Builder
	for i, e := range entries {
		fmt.Fprintf(&b, "BTB[%d]: PC=%#08x Target=%#08x LastDir=%t\n", i, e.PC, e.Target, e.Direction)
	}
	return b.String()
}

func statusText(sim *vm.Simulator) string {
	s := sim.Stats
	return fmt.Sprintf("cycle=%d committed=%d stalls=%d (data=%d structural=%d) mispredicts=%d CPI=%.3f",
		s.TotalCycles, s.TotalInstructions, s.TotalStallCycles, s.DataHazardStalls,
		s.StructuralHazardStalls, s.BranchMispredictions, s.CPI())
}
