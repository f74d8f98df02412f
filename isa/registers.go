// Package isa holds the source-of-truth types and tables for the mc8 instruction set: the
// register file, flags, operand shapes, and the tagged instruction variant shared by the
// assembler's encoder and the emulator's executor.
package isa

import "fmt"

// Register identifies one of the eight general-purpose register slots by its 3-bit index.
// Slots 2/3 and 4/5 double as the HL and PC register pairs; slot 6 is the stack pointer and
// slot 7 is the flags byte.
type Register byte

// Register slot indices and their architectural aliases.
const (
	Reg0    Register = 0
	Reg1    Register = 1
	High    Register = 2 // HL pair, high byte
	Low     Register = 3 // HL pair, low byte
	PCHigh  Register = 4
	PCLow   Register = 5
	StackPtr Register = 6
	FlagReg Register = 7
)

// registerNames maps canonical lowercase register names to their slot index.
var registerNames = map[string]Register{
	"reg0":      Reg0,
	"reg1":      Reg1,
	"reg2":      High,
	"reg3":      Low,
	"reg4":      PCHigh,
	"reg5":      PCLow,
	"reg6":      StackPtr,
	"reg7":      FlagReg,
	"high":      High,
	"low":       Low,
	"pc_high":   PCHigh,
	"pc_low":    PCLow,
	"stack_ptr": StackPtr,
	"flag":      FlagReg,
}

var registerDisplayNames = [8]string{
	"reg0", "reg1", "high", "low", "pc_high", "pc_low", "stack_ptr", "flag",
}

// LookupRegister resolves a lowercase identifier to a Register, following the alias table in
// the assembly grammar (§6).
func LookupRegister(name string) (Register, bool) {
	r, ok := registerNames[name]
	return r, ok
}

// String renders a register using its canonical alias name.
func (r Register) String() string {
	if int(r) < len(registerDisplayNames) {
		return registerDisplayNames[r]
	}
	return fmt.Sprintf("reg%d", byte(r))
}

// Valid reports whether r is a legal 3-bit register index.
func (r Register) Valid() bool {
	return r <= 7
}
