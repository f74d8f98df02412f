package vm

import (
	"fmt"
	"io"

	"github.com/lookbusy1344/mc8/isa"
)

// ExecutionTrace writes one line per executed instruction to Writer, per §10.5: no disassembly,
// no per-register diffing, just sequence/address/opcode/flags — enough to reconstruct what ran
// without reintroducing a disassembler (a non-goal).
type ExecutionTrace struct {
	Writer   io.Writer
	sequence uint64
}

// NewExecutionTrace creates a trace that writes to w.
func NewExecutionTrace(w io.Writer) *ExecutionTrace {
	return &ExecutionTrace{Writer: w}
}

// Record appends one trace line for the instruction that just executed at pc.
func (t *ExecutionTrace) Record(pc uint16, op isa.Op, c *CPU) {
	t.sequence++
	fmt.Fprintf(t.Writer, "%06d pc=0x%04X op=%-4s flags=0x%02X\n", t.sequence, pc, op, c.Get(isa.FlagReg))
}
