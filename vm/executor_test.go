package vm_test

import (
	"testing"

	"github.com/lookbusy1344/mc8/isa"
	"github.com/lookbusy1344/mc8/vm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVM_ConcreteScenario_MovAdd(t *testing.T) {
	m := vm.NewVM()
	m.Mem.Load([]byte{0x18, 0x05, 0x1A, 0x07, 0x80, 0x02})

	require.NoError(t, m.Step())
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())

	assert.Equal(t, byte(12), m.CPU.Get(isa.Reg0))
	assert.False(t, m.CPU.GetFlag(isa.FlagCarry))
	assert.Equal(t, uint16(6), m.CPU.PC())
}

func TestVM_AddSignedOverflowSetsCarry(t *testing.T) {
	m := vm.NewVM()
	m.Mem.Load([]byte{0x18, 0x7F, 0x88, 0x01}) // mov reg0, 127 ; add reg0, 1
	require.NoError(t, m.Step())
	require.NoError(t, m.Step())

	assert.Equal(t, byte(0x80), m.CPU.Get(isa.Reg0)) // wrapped to -128
	assert.True(t, m.CPU.GetFlag(isa.FlagCarry))
}

func TestVM_PushPopWrapAroundStackPointer(t *testing.T) {
	m := vm.NewVM()
	m.CPU.Set(isa.StackPtr, 255)

	m.Mem.Load([]byte{0x58, 0x2A}) // psh 42
	require.NoError(t, m.Step())
	assert.Equal(t, byte(0), m.CPU.Get(isa.StackPtr)) // wrapped 255+1 -> 0
	assert.Equal(t, byte(42), m.Mem.Stack[255])

	m.CPU.SetPC(0)
	m.Mem.Load([]byte{0x60}) // pop reg0
	require.NoError(t, m.Step())
	assert.Equal(t, byte(255), m.CPU.Get(isa.StackPtr)) // wrapped 0-1 -> 255
	assert.Equal(t, byte(42), m.CPU.Get(isa.Reg0))
}

func TestVM_JmpTakenWhenFlagSet(t *testing.T) {
	m := vm.NewVM()
	m.CPU.SetFlag(isa.FlagEqual, true)
	m.Mem.Load([]byte{0x7D, 0x00, 0x0A}) // jmp equal, 10 (I=1, flag index 5)

	require.NoError(t, m.Step())
	assert.Equal(t, uint16(10), m.CPU.PC())
}

func TestVM_JmpNotTakenAdvancesPastInstruction(t *testing.T) {
	m := vm.NewVM()
	m.Mem.Load([]byte{0x78, 0x00, 0x0A}) // jmp halt, 10; HALT flag unset

	require.NoError(t, m.Step())
	assert.Equal(t, uint16(3), m.CPU.PC())
}

func TestVM_ShrLogicalNotArithmetic(t *testing.T) {
	m := vm.NewVM()
	m.CPU.Set(isa.Reg0, 0x80) // high bit set
	m.Mem.Load([]byte{0xF8, 0x01})

	require.NoError(t, m.Step())
	assert.Equal(t, byte(0x40), m.CPU.Get(isa.Reg0)) // logical shift, not sign-extended
}

func TestVM_CmpIsUnsigned(t *testing.T) {
	m := vm.NewVM()
	m.CPU.Set(isa.Reg0, 0xFF) // -1 signed, 255 unsigned
	m.Mem.Load([]byte{0xD8, 0x01})

	require.NoError(t, m.Step())
	assert.False(t, m.CPU.GetFlag(isa.FlagLess)) // 255 is not < 1 unsigned
	assert.False(t, m.CPU.GetFlag(isa.FlagEqual))
}

func TestVM_RunHaltsOnFlag(t *testing.T) {
	m := vm.NewVM()
	m.CPU.Set(isa.Reg0, 1)
	m.Mem.Load([]byte{
		0x18, 0x01, // mov reg0, 1
		0xD8, 0x00, // cmp reg0, 0
		0x1F, 0x01, // mov flag, 1 (sets HALT bit directly via register write)
	})

	err := m.Run(100)
	require.NoError(t, err)
	assert.True(t, m.CPU.Halted())
}

func TestVM_RunStopsAtMaxCycles(t *testing.T) {
	m := vm.NewVM()
	m.Mem.Load([]byte{0x00}) // nop, never halts

	err := m.Run(5)
	require.Error(t, err)
}

func TestVM_AllOpcodeNibblesDecode(t *testing.T) {
	m := vm.NewVM()
	for nibble := byte(0); nibble <= 0xF; nibble++ {
		m.Mem.RAM[0] = nibble << 4
		m.CPU.SetPC(0)
		assert.NoError(t, m.Step())
	}
}
