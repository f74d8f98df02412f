package isa

import "testing"

func TestSizeTable(t *testing.T) {
	tests := []struct {
		name string
		inst Instruction
		want int
	}{
		{"nop", Instruction{Op: OpNop}, 1},
		{"mov reg,lit", Instruction{Op: OpMov, Reg: Reg0, Val: LiteralValue(5)}, 2},
		{"mov reg,reg", Instruction{Op: OpMov, Reg: Reg0, Val: RegisterValue(Reg1)}, 2},
		{"ldw HL", Instruction{Op: OpLdw, Reg: Reg0, Addr: HLAddress()}, 1},
		{"ldw addr", Instruction{Op: OpLdw, Reg: Reg0, Addr: LiteralAddress(258)}, 3},
		{"stw HL", Instruction{Op: OpStw, Reg: Reg0, Addr: HLAddress()}, 1},
		{"stw addr", Instruction{Op: OpStw, Reg: Reg0, Addr: LiteralAddress(258)}, 3},
		{"lda HL", Instruction{Op: OpLda, Addr: HLAddress()}, 1},
		{"lda addr", Instruction{Op: OpLda, Addr: LiteralAddress(258)}, 3},
		{"psh", Instruction{Op: OpPsh, Val: LiteralValue(1)}, 2},
		{"pop", Instruction{Op: OpPop, Reg: Reg0}, 1},
		{"jmp HL", Instruction{Op: OpJmp, Flg: FlagHalt, Addr: HLAddress()}, 1},
		{"jmp addr", Instruction{Op: OpJmp, Flg: FlagHalt, Addr: LiteralAddress(0)}, 3},
		{"add", Instruction{Op: OpAdd, Reg: Reg0, Val: LiteralValue(1)}, 2},
		{"sub", Instruction{Op: OpSub, Reg: Reg0, Val: LiteralValue(1)}, 2},
		{"and", Instruction{Op: OpAnd, Reg: Reg0, Val: LiteralValue(1)}, 2},
		{"or", Instruction{Op: OpOr, Reg: Reg0, Val: LiteralValue(1)}, 2},
		{"inv", Instruction{Op: OpInv, Reg: Reg0}, 1},
		{"cmp", Instruction{Op: OpCmp, Reg: Reg0, Val: LiteralValue(1)}, 2},
		{"shl", Instruction{Op: OpShl, Reg: Reg0, Val: LiteralValue(1)}, 2},
		{"shr", Instruction{Op: OpShr, Reg: Reg0, Val: LiteralValue(1)}, 2},
		{"label", Label("loop"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Size(tt.inst); got != tt.want {
				t.Errorf("Size(%v) = %d, want %d", tt.inst, got, tt.want)
			}
		})
	}
}

func TestRegisterAliases(t *testing.T) {
	tests := []struct {
		name string
		want Register
	}{
		{"reg2", High}, {"reg3", Low}, {"reg4", PCHigh}, {"reg5", PCLow},
		{"reg6", StackPtr}, {"reg7", FlagReg},
		{"high", High}, {"low", Low}, {"stack_ptr", StackPtr}, {"flag", FlagReg},
	}
	for _, tt := range tests {
		got, ok := LookupRegister(tt.name)
		if !ok || got != tt.want {
			t.Errorf("LookupRegister(%q) = (%v, %v), want (%v, true)", tt.name, got, ok, tt.want)
		}
	}
}

func TestFlagAliases(t *testing.T) {
	tests := []struct {
		name string
		want Flag
	}{
		{"halt", FlagHalt}, {"carry", FlagCarry}, {"borrow", FlagBorrow},
		{"overflow", FlagOverflow}, {"less", FlagLess}, {"equal", FlagEqual},
	}
	for _, tt := range tests {
		got, ok := LookupFlag(tt.name)
		if !ok || got != tt.want {
			t.Errorf("LookupFlag(%q) = (%v, %v), want (%v, true)", tt.name, got, ok, tt.want)
		}
	}
}
