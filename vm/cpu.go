package vm

import "github.com/lookbusy1344/mc8/isa"

// CPU holds the eight general-purpose register bytes of the mc8 machine (§4.5). Four slots carry
// aliases rather than distinct storage: 2/3 are the HIGH/LOW halves of the address pair HL, 4/5
// are the PC high/low halves, 6 is the stack pointer, 7 is the flags byte.
type CPU struct {
	Reg [8]byte

	// Cycles counts executed instructions, available to the emulator's optional max-cycles
	// safety harness (§5) and to tracing (§10.5).
	Cycles uint64
}

// NewCPU returns a CPU with every register zeroed, matching the boot state in §4.5.
func NewCPU() *CPU {
	return &CPU{}
}

// Get reads a register by index.
func (c *CPU) Get(r isa.Register) byte {
	return c.Reg[r]
}

// Set writes a register by index.
func (c *CPU) Set(r isa.Register, v byte) {
	c.Reg[r] = v
}

// PC returns the 16-bit program counter formed from the PCHigh/PCLow register pair, big-endian.
func (c *CPU) PC() uint16 {
	return uint16(c.Reg[isa.PCHigh])<<8 | uint16(c.Reg[isa.PCLow])
}

// SetPC writes the program counter back into the PCHigh/PCLow register pair.
func (c *CPU) SetPC(addr uint16) {
	c.Reg[isa.PCHigh] = byte(addr >> 8)
	c.Reg[isa.PCLow] = byte(addr & 0xFF)
}

// HL returns the 16-bit address formed from the HIGH/LOW register pair, big-endian.
func (c *CPU) HL() uint16 {
	return uint16(c.Reg[isa.High])<<8 | uint16(c.Reg[isa.Low])
}

// ValueOf reads a Value operand: either a register's contents, reinterpreted as a signed 8-bit
// literal, or the literal itself.
func (c *CPU) ValueOf(v isa.Value) int8 {
	if v.IsRegister() {
		return int8(c.Reg[v.Kind])
	}
	return v.Lit
}
