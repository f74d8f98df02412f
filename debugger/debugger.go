// Package debugger implements the emulator's interactive terminal stepper (§10.3):
// register/flag display, a hex view around HL and PC, the 256-byte stack, and
// step/continue/breakpoint/quit commands. It watches an already-decoding VM; it never
// disassembles raw bytes itself.
package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lookbusy1344/mc8/vm"
)

// StepMode tracks whether the next Tick should stop after one instruction.
type StepMode int

const (
	StepNone   StepMode = iota // run until a breakpoint or halt
	StepSingle                 // stop after the next instruction
)

// Debugger wraps a VM with breakpoints and the tiny command language the TUI drives.
type Debugger struct {
	VM *vm.VM

	Breakpoints *BreakpointManager

	Running  bool
	StepMode StepMode

	LastCommand string

	Output strings.Builder
}

// NewDebugger creates a debugger over machine, paused at its current PC.
func NewDebugger(machine *vm.VM) *Debugger {
	return &Debugger{
		VM:          machine,
		Breakpoints: NewBreakpointManager(),
	}
}

// ExecuteCommand parses and runs one command line. An empty line repeats the last command, the
// gdb-style convention this mirrors so Enter alone continues stepping.
func (d *Debugger) ExecuteCommand(cmdLine string) error {
	cmdLine = strings.TrimSpace(cmdLine)
	if cmdLine == "" {
		cmdLine = d.LastCommand
	}
	if cmdLine != "" {
		d.LastCommand = cmdLine
	}

	parts := strings.Fields(cmdLine)
	if len(parts) == 0 {
		return nil
	}

	return d.handleCommand(strings.ToLower(parts[0]), parts[1:])
}

func (d *Debugger) handleCommand(cmd string, args []string) error {
	switch cmd {
	case "continue", "c":
		return d.cmdContinue()
	case "step", "s":
		return d.cmdStep()
	case "break", "b":
		return d.cmdBreak(args, false)
	case "tbreak", "tb":
		return d.cmdBreak(args, true)
	case "delete", "d":
		return d.cmdDelete(args)
	case "enable":
		return d.cmdToggle(args, true)
	case "disable":
		return d.cmdToggle(args, false)
	case "info", "i":
		return d.cmdInfo()
	case "quit", "q":
		d.Running = false
		return nil
	case "help", "h", "?":
		d.Println("commands: continue(c) step(s) break(b) ADDR tbreak(tb) ADDR delete(d) ID enable ID disable ID info(i) quit(q)")
		return nil
	default:
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
	}
}

func (d *Debugger) cmdContinue() error {
	if d.VM.CPU.Halted() {
		return fmt.Errorf("program has halted")
	}
	d.StepMode = StepNone
	d.Running = true
	return nil
}

func (d *Debugger) cmdStep() error {
	if d.VM.CPU.Halted() {
		return fmt.Errorf("program has halted")
	}
	d.StepMode = StepSingle
	d.Running = true
	return nil
}

func (d *Debugger) cmdBreak(args []string, temporary bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: break <address>")
	}
	addr, err := parseAddress(args[0])
	if err != nil {
		return err
	}
	bp := d.Breakpoints.AddBreakpoint(addr, temporary)
	d.Printf("breakpoint %d at 0x%04X\n", bp.ID, addr)
	return nil
}

func (d *Debugger) cmdDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	return d.Breakpoints.DeleteBreakpoint(id)
}

func (d *Debugger) cmdToggle(args []string, enable bool) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: enable|disable <id>")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid breakpoint id: %s", args[0])
	}
	if enable {
		return d.Breakpoints.EnableBreakpoint(id)
	}
	return d.Breakpoints.DisableBreakpoint(id)
}

func (d *Debugger) cmdInfo() error {
	d.Printf("pc=0x%04X halted=%v breakpoints=%d\n", d.VM.CPU.PC(), d.VM.CPU.Halted(), d.Breakpoints.Count())
	return nil
}

func parseAddress(s string) (uint16, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address: %s", s)
	}
	return uint16(v), nil
}

// ShouldBreak reports whether execution should pause at the VM's current PC, and why.
func (d *Debugger) ShouldBreak() (bool, string) {
	pc := d.VM.CPU.PC()

	if d.StepMode == StepSingle {
		d.StepMode = StepNone
		return true, "single step"
	}

	if bp := d.Breakpoints.ProcessHit(pc); bp != nil {
		return true, fmt.Sprintf("breakpoint %d", bp.ID)
	}

	return false, ""
}

// Tick advances the VM by one instruction while Running, stopping it (and reporting why) when
// ShouldBreak says to pause or the machine halts. The TUI's event loop calls this repeatedly
// while the debugger is in the running state.
func (d *Debugger) Tick() error {
	if !d.Running {
		return nil
	}

	if err := d.VM.Step(); err != nil {
		d.Running = false
		return err
	}

	if d.VM.CPU.Halted() {
		d.Running = false
		d.Println("program halted")
		return nil
	}

	if stop, reason := d.ShouldBreak(); stop {
		d.Running = false
		d.Println(reason)
	}

	return nil
}

// GetOutput returns and clears the accumulated output buffer.
func (d *Debugger) GetOutput() string {
	output := d.Output.String()
	d.Output.Reset()
	return output
}

// Printf appends formatted text to the output buffer.
func (d *Debugger) Printf(format string, args ...interface{}) {
	d.Output.WriteString(fmt.Sprintf(format, args...))
}

// Println appends a line to the output buffer.
func (d *Debugger) Println(args ...interface{}) {
	d.Output.WriteString(fmt.Sprintln(args...))
}
