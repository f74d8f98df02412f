package vm

import (
	"fmt"

	"github.com/lookbusy1344/mc8/isa"
)

// VM bundles the CPU and Memory into the single machine the emulator drives, per §4.5.
type VM struct {
	CPU   *CPU
	Mem   *Memory
	Trace *ExecutionTrace // nil when tracing is disabled (§10.5)
}

// NewVM returns a VM with a zeroed CPU and RAM, ready to Load a byte image.
func NewVM() *VM {
	return &VM{CPU: NewCPU(), Mem: NewMemory()}
}

// decoded is one fetched-and-decoded instruction: its addressed opcode, operand shape, and the
// number of bytes it occupies in RAM.
type decoded struct {
	op   isa.Op
	reg  isa.Register
	flg  isa.Flag
	immv bool // true: value operand is an immediate literal; false: a source register
	litv int8
	srcr isa.Register
	imma bool // true: address operand is a 16-bit immediate; false: the HL pair
	addr uint16
	size int
}

// ErrUnknownOpcode reports a reserved opcode pattern encountered in RAM — fatal, per §7.
type ErrUnknownOpcode struct {
	PC     uint16
	Opcode byte
}

func (e *ErrUnknownOpcode) Error() string {
	return fmt.Sprintf("unknown opcode 0x%X at PC=0x%04X", e.Opcode, e.PC)
}

// fetch decodes the instruction at pc, mirroring the encoder's bit layout in reverse: high nibble
// = opcode, bit 3 = immediate-mode flag, low 3 bits = register or flag field.
func (vm *VM) fetch(pc uint16) (decoded, error) {
	w0 := vm.Mem.ReadByte(pc)
	nibble := w0 >> 4
	im := w0&0x08 != 0
	rrr := isa.Register(w0 & 0x07)

	d := decoded{flg: isa.Flag(rrr), reg: rrr}

	switch nibble {
	case 0x0:
		d.op, d.size = isa.OpNop, 1

	case 0x1, 0x8, 0x9, 0xA, 0xB, 0xD, 0xE, 0xF:
		d.op = opFromNibble(nibble)
		d.size = 2
		d.immv = im
		if im {
			d.litv = int8(vm.Mem.ReadByte(pc + 1))
		} else {
			d.srcr = isa.Register(vm.Mem.ReadByte(pc + 1))
		}

	case 0x2, 0x3:
		d.op = opFromNibble(nibble)
		d.imma = im
		if im {
			d.size = 3
			d.addr = vm.Mem.ReadWord(pc + 1)
		} else {
			d.size = 1
		}

	case 0x4:
		d.op = isa.OpLda
		d.imma = im
		if im {
			d.size = 3
			d.addr = vm.Mem.ReadWord(pc + 1)
		} else {
			d.size = 1
		}

	case 0x5:
		d.op = isa.OpPsh
		d.size = 2
		d.immv = im
		if im {
			d.litv = int8(vm.Mem.ReadByte(pc + 1))
		} else {
			d.srcr = isa.Register(vm.Mem.ReadByte(pc + 1))
		}

	case 0x6:
		d.op, d.size = isa.OpPop, 1

	case 0x7:
		d.op = isa.OpJmp
		d.imma = im
		if im {
			d.size = 3
			d.addr = vm.Mem.ReadWord(pc + 1)
		} else {
			d.size = 1
		}

	case 0xC:
		d.op, d.size = isa.OpInv, 1

	default:
		return decoded{}, &ErrUnknownOpcode{PC: pc, Opcode: w0}
	}

	return d, nil
}

func opFromNibble(nibble byte) isa.Op {
	switch nibble {
	case 0x1:
		return isa.OpMov
	case 0x2:
		return isa.OpLdw
	case 0x3:
		return isa.OpStw
	case 0x8:
		return isa.OpAdd
	case 0x9:
		return isa.OpSub
	case 0xA:
		return isa.OpAnd
	case 0xB:
		return isa.OpOr
	case 0xD:
		return isa.OpCmp
	case 0xE:
		return isa.OpShl
	case 0xF:
		return isa.OpShr
	}
	return isa.OpNop
}

// value resolves a decoded value operand to its signed 8-bit reading.
func (d decoded) value(c *CPU) int8 {
	if d.immv {
		return d.litv
	}
	return int8(c.Get(d.srcr))
}

// address resolves a decoded address operand to its 16-bit reading.
func (d decoded) address(c *CPU) uint16 {
	if d.imma {
		return d.addr
	}
	return c.HL()
}

// Step executes exactly one fetch-decode-execute cycle (§4.5): the PC is advanced past the
// consumed bytes before the per-opcode semantics run, so that JMP's own PC write is not
// clobbered by the generic advance.
func (vm *VM) Step() error {
	pc := vm.CPU.PC()
	d, err := vm.fetch(pc)
	if err != nil {
		return err
	}
	vm.CPU.SetPC(pc + uint16(d.size))
	vm.execute(d)
	vm.CPU.Cycles++
	if vm.Trace != nil {
		vm.Trace.Record(pc, d.op, vm.CPU)
	}
	return nil
}

// execute applies the per-opcode semantics table in §4.5 to an already-fetched, already
// PC-advanced instruction.
func (vm *VM) execute(d decoded) {
	c := vm.CPU

	switch d.op {
	case isa.OpNop:
		// none

	case isa.OpMov:
		c.Set(d.reg, byte(d.value(c)))

	case isa.OpLdw:
		c.Set(d.reg, vm.Mem.ReadByte(d.address(c)))

	case isa.OpStw:
		vm.Mem.WriteByte(d.address(c), c.Get(d.reg))

	case isa.OpLda:
		a := d.address(c)
		c.Set(isa.High, vm.Mem.ReadByte(a))
		c.Set(isa.Low, vm.Mem.ReadByte(a+1))

	case isa.OpPsh:
		sp := c.Get(isa.StackPtr)
		newSP := vm.Mem.Push(sp, byte(d.value(c)))
		c.Set(isa.StackPtr, newSP)

	case isa.OpPop:
		sp := c.Get(isa.StackPtr)
		v, newSP := vm.Mem.Pop(sp)
		c.Set(isa.StackPtr, newSP)
		c.Set(d.reg, v)

	case isa.OpJmp:
		if c.GetFlag(d.flg) {
			c.SetPC(d.address(c))
		}

	case isa.OpAdd:
		result, overflow := AddSigned8(int8(c.Get(d.reg)), d.value(c))
		c.Set(d.reg, byte(result))
		c.SetFlag(isa.FlagCarry, overflow)

	case isa.OpSub:
		result, overflow := SubSigned8(int8(c.Get(d.reg)), d.value(c))
		c.Set(d.reg, byte(result))
		c.SetFlag(isa.FlagBorrow, overflow)

	case isa.OpAnd:
		c.Set(d.reg, c.Get(d.reg)&byte(d.value(c)))

	case isa.OpOr:
		c.Set(d.reg, c.Get(d.reg)|byte(d.value(c)))

	case isa.OpInv:
		c.Set(d.reg, ^c.Get(d.reg))

	case isa.OpCmp:
		a := c.Get(d.reg)
		b := byte(d.value(c))
		c.SetFlag(isa.FlagLess, a < b)
		c.SetFlag(isa.FlagEqual, a == b)

	case isa.OpShl:
		shift, ok := ShiftAmount(d.value(c))
		if !ok {
			c.Set(d.reg, 0)
		} else {
			c.Set(d.reg, c.Get(d.reg)<<shift)
		}

	case isa.OpShr:
		shift, ok := ShiftAmount(d.value(c))
		if !ok {
			c.Set(d.reg, 0)
		} else {
			c.Set(d.reg, c.Get(d.reg)>>shift)
		}
	}
}

// Run steps the VM until the HALT flag is set. maxCycles, when positive, bounds execution as a
// safety harness for tests and the CLI's -max-cycles flag (§5); 0 means
// unbounded.
func (vm *VM) Run(maxCycles uint64) error {
	for !vm.CPU.Halted() {
		if maxCycles > 0 && vm.CPU.Cycles >= maxCycles {
			return fmt.Errorf("exceeded maximum cycle count %d without halting", maxCycles)
		}
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}
