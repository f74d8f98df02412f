package vm

import "github.com/lookbusy1344/mc8/isa"

// GetFlag reads bit f of the flags register (register 7): bit i stores the state of flag i (§4.5).
func (c *CPU) GetFlag(f isa.Flag) bool {
	return c.Reg[isa.FlagReg]&(1<<uint(f)) != 0
}

// SetFlag writes bit f of the flags register to v.
func (c *CPU) SetFlag(f isa.Flag, v bool) {
	if v {
		c.Reg[isa.FlagReg] |= 1 << uint(f)
	} else {
		c.Reg[isa.FlagReg] &^= 1 << uint(f)
	}
}

// Halted reports whether the HALT flag (bit 0) is set — the main loop's termination condition.
func (c *CPU) Halted() bool {
	return c.GetFlag(isa.FlagHalt)
}
