package debugger

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lookbusy1344/mc8/vm"
)

func newSimScreenTUI(t *testing.T) *TUI {
	t.Helper()
	machine := vm.NewVM()
	dbg := NewDebugger(machine)
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("failed to init simulation screen: %v", err)
	}
	t.Cleanup(screen.Fini)
	return NewTUIWithScreen(dbg, screen)
}

// TestExecuteCommandAsync checks that executeCommand returns promptly for a non-running command.
func TestExecuteCommandAsync(t *testing.T) {
	tui := newSimScreenTUI(t)

	done := make(chan bool, 1)
	go func() {
		tui.executeCommand("info")
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("executeCommand blocked for more than 2 seconds")
	}
}

// TestHandleCommandAsync checks that handleCommand spawns its work and returns immediately.
func TestHandleCommandAsync(t *testing.T) {
	tui := newSimScreenTUI(t)
	tui.CommandInput.SetText("info")

	done := make(chan bool, 1)
	go func() {
		tui.handleCommand(tcell.KeyEnter)
		done <- true
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("handleCommand blocked for more than 100ms - should return immediately")
	}
}

func TestUpdateRegisterView_RendersWithOverflowFlagSet(t *testing.T) {
	tui := newSimScreenTUI(t)
	tui.Debugger.VM.CPU.SetFlag(3, true) // overflow, by bit index
	tui.UpdateRegisterView()

	if tui.RegisterView.GetText(true) == "" {
		t.Error("register view should not be empty")
	}
}
