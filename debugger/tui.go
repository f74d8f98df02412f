package debugger

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/mc8/isa"
)

// TUI is the terminal UI described in §10.3: registers and flags, a hex view around
// HL and PC, the 256-byte stack with the stack pointer highlighted, and a command line bound to
// step/continue/breakpoint/quit.
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	MainLayout   *tview.Flex
	RegisterView *tview.TextView
	MemoryView   *tview.TextView
	StackView    *tview.TextView
	BreakpointsView *tview.TextView
	OutputView   *tview.TextView
	CommandInput *tview.InputField
}

// NewTUI creates a terminal UI over debugger, rendering to the real terminal.
func NewTUI(dbg *Debugger) *TUI {
	return newTUI(dbg, tview.NewApplication())
}

// NewTUIWithScreen creates a terminal UI driven by screen, for use under tcell's simulation
// screen in tests.
func NewTUIWithScreen(dbg *Debugger, screen tcell.Screen) *TUI {
	app := tview.NewApplication().SetScreen(screen)
	return newTUI(dbg, app)
}

func newTUI(dbg *Debugger, app *tview.Application) *TUI {
	t := &TUI{Debugger: dbg, App: app}
	t.initializeViews()
	t.buildLayout()
	t.setupKeyBindings()
	return t
}

func (t *TUI) initializeViews() {
	t.RegisterView = tview.NewTextView().SetDynamicColors(true)
	t.RegisterView.SetBorder(true).SetTitle(" Registers / Flags ")

	t.MemoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.MemoryView.SetBorder(true).SetTitle(" Memory ")

	t.StackView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.BreakpointsView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.BreakpointsView.SetBorder(true).SetTitle(" Breakpoints ")

	t.OutputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().SetLabel("> ").SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

func (t *TUI) buildLayout() {
	leftPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.RegisterView, 10, 0, false).
		AddItem(t.MemoryView, 0, 1, false)

	rightPanel := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(t.StackView, 0, 2, false).
		AddItem(t.BreakpointsView, 0, 1, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(leftPanel, 0, 1, false).
		AddItem(rightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 4, false).
		AddItem(t.OutputView, 6, 0, false).
		AddItem(t.CommandInput, 3, 0, true)
}

func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF5:
			t.executeCommand("continue")
			return nil
		case tcell.KeyF11:
			t.executeCommand("step")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.CommandInput.GetText()
	t.CommandInput.SetText("")
	go t.executeCommand(cmd)
}

func (t *TUI) executeCommand(cmd string) {
	err := t.Debugger.ExecuteCommand(cmd)
	output := t.Debugger.GetOutput()

	t.App.QueueUpdateDraw(func() {
		if err != nil {
			t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
		}
		if output != "" {
			t.WriteOutput(output)
		}
		t.RefreshAll()
	})

	if cmd == "quit" || cmd == "q" {
		t.App.Stop()
		return
	}

	if t.Debugger.Running {
		go t.runUntilStopped()
	}
}

// runUntilStopped drives the debugger's Tick loop after a continue/step command, redrawing after
// every instruction so the TUI stays live while the program runs.
func (t *TUI) runUntilStopped() {
	for t.Debugger.Running {
		if err := t.Debugger.Tick(); err != nil {
			t.App.QueueUpdateDraw(func() {
				t.WriteOutput(fmt.Sprintf("[red]error:[white] %v\n", err))
			})
			return
		}
		t.App.QueueUpdateDraw(func() {
			if out := t.Debugger.GetOutput(); out != "" {
				t.WriteOutput(out)
			}
			t.RefreshAll()
		})
		time.Sleep(time.Millisecond)
	}
}

func (t *TUI) WriteOutput(text string) {
	_, _ = t.OutputView.Write([]byte(text))
	t.OutputView.ScrollToEnd()
}

func (t *TUI) RefreshAll() {
	t.UpdateRegisterView()
	t.UpdateMemoryView()
	t.UpdateStackView()
	t.UpdateBreakpointsView()
}

func (t *TUI) UpdateRegisterView() {
	cpu := t.Debugger.VM.CPU
	var lines []string

	for r := isa.Register(0); r <= 7; r++ {
		lines = append(lines, fmt.Sprintf("%-9s 0x%02X", r.String(), cpu.Get(r)))
	}
	lines = append(lines, fmt.Sprintf("%-9s 0x%04X", "pc", cpu.PC()))
	lines = append(lines, fmt.Sprintf("%-9s 0x%04X", "hl", cpu.HL()))

	var flags []string
	for f := isa.Flag(0); f <= isa.FlagEqual; f++ {
		name := f.String()
		if cpu.GetFlag(f) {
			flags = append(flags, fmt.Sprintf("[green]%s[white]", name))
		} else {
			flags = append(flags, name)
		}
	}
	lines = append(lines, "flags: "+strings.Join(flags, " "))

	t.RegisterView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateMemoryView() {
	cpu := t.Debugger.VM.CPU
	mem := t.Debugger.VM.Mem

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]around PC (0x%04X)[white]", cpu.PC()))
	lines = append(lines, hexDump(mem.RAM[:], windowStart(cpu.PC(), 8*8), 8))
	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("[yellow]around HL (0x%04X)[white]", cpu.HL()))
	lines = append(lines, hexDump(mem.RAM[:], windowStart(cpu.HL(), 8*8), 8))

	t.MemoryView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateStackView() {
	cpu := t.Debugger.VM.CPU
	mem := t.Debugger.VM.Mem
	sp := cpu.Get(isa.StackPtr)

	var lines []string
	lines = append(lines, fmt.Sprintf("[yellow]stack_ptr = 0x%02X[white]", sp))
	for row := 0; row < 16; row++ {
		base := byte(row * 16)
		var cells []string
		for col := 0; col < 16; col++ {
			addr := base + byte(col)
			cell := fmt.Sprintf("%02X", mem.Stack[addr])
			if addr == sp {
				cell = fmt.Sprintf("[green]%s[white]", cell)
			}
			cells = append(cells, cell)
		}
		lines = append(lines, fmt.Sprintf("%02X: %s", base, strings.Join(cells, " ")))
	}

	t.StackView.SetText(strings.Join(lines, "\n"))
}

func (t *TUI) UpdateBreakpointsView() {
	bps := t.Debugger.Breakpoints.GetAllBreakpoints()
	if len(bps) == 0 {
		t.BreakpointsView.SetText("[yellow]no breakpoints[white]")
		return
	}

	var lines []string
	for _, bp := range bps {
		status := "enabled"
		color := "green"
		if !bp.Enabled {
			status = "disabled"
			color = "red"
		}
		lines = append(lines, fmt.Sprintf("%d: 0x%04X [%s]%s[white] (hits: %d)", bp.ID, bp.Address, color, status, bp.HitCount))
	}

	t.BreakpointsView.SetText(strings.Join(lines, "\n"))
}

// hexDump renders n rows of 16 bytes starting at start.
func hexDump(ram []byte, start uint16, rows int) string {
	var lines []string
	addr := uint32(start)
	for row := 0; row < rows; row++ {
		var cells []string
		for col := 0; col < 16; col++ {
			cells = append(cells, fmt.Sprintf("%02X", ram[uint16(addr)+uint16(col)]))
		}
		lines = append(lines, fmt.Sprintf("0x%04X: %s", addr, strings.Join(cells, " ")))
		addr += 16
		if addr > 0xFFFF {
			break
		}
	}
	return strings.Join(lines, "\n")
}

// windowStart picks a row-aligned start address half (width/2) bytes before center, clamped to
// RAM bounds so the window never wraps.
func windowStart(center uint16, width int) uint16 {
	half := uint16(width / 2)
	if center < half {
		return 0
	}
	start := center - half
	return start - (start % 16)
}

// Run starts the TUI's event loop.
func (t *TUI) Run() error {
	t.RefreshAll()
	t.WriteOutput("[green]mc8 debugger[white]\n")
	t.WriteOutput("F5 continue, F11 step, Ctrl-C quit. Type 'help' for commands.\n\n")
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}

// Stop stops the TUI's event loop.
func (t *TUI) Stop() {
	t.App.Stop()
}
