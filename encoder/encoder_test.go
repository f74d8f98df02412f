package encoder

import (
	"bytes"
	"testing"

	"github.com/lookbusy1344/mc8/isa"
)

func TestEncodeConcreteScenarios(t *testing.T) {
	tests := []struct {
		name    string
		program []isa.Instruction
		want    []byte
	}{
		{
			"nop",
			[]isa.Instruction{{Op: isa.OpNop}},
			[]byte{0x00},
		},
		{
			"mov reg0 literal",
			[]isa.Instruction{{Op: isa.OpMov, Reg: isa.Reg0, Val: isa.LiteralValue(5)}},
			[]byte{0x18, 0x05},
		},
		{
			"mov reg0 reg1",
			[]isa.Instruction{{Op: isa.OpMov, Reg: isa.Reg0, Val: isa.RegisterValue(isa.Reg1)}},
			[]byte{0x10, 0x01},
		},
		{
			"lda HL",
			[]isa.Instruction{{Op: isa.OpLda, Addr: isa.HLAddress()}},
			[]byte{0x40},
		},
		{
			"lda literal address",
			[]isa.Instruction{{Op: isa.OpLda, Addr: isa.LiteralAddress(258)}},
			[]byte{0x48, 0x01, 0x02},
		},
		{
			"label resolves to offset 0",
			[]isa.Instruction{
				isa.Label("loop"),
				{Op: isa.OpNop},
				{Op: isa.OpJmp, Flg: isa.FlagHalt, Addr: isa.LabelAddress("loop")},
			},
			[]byte{0x00, 0x78, 0x00, 0x00},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.program)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Encode() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestEncodeDeterministic(t *testing.T) {
	program := []isa.Instruction{
		{Op: isa.OpMov, Reg: isa.Reg0, Val: isa.LiteralValue(5)},
		{Op: isa.OpMov, Reg: isa.High, Val: isa.LiteralValue(7)},
		{Op: isa.OpAdd, Reg: isa.Reg0, Val: isa.RegisterValue(isa.High)},
	}
	first, err := Encode(program)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	second, err := Encode(program)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("Encode() is not deterministic: %x != %x", first, second)
	}
}

func TestEncodeUndefinedLabel(t *testing.T) {
	program := []isa.Instruction{
		{Op: isa.OpJmp, Flg: isa.FlagHalt, Addr: isa.LabelAddress("nowhere")},
	}
	if _, err := Encode(program); err == nil {
		t.Error("Encode() with an undefined label reference should fail")
	}
}

func TestEncodeDuplicateLabel(t *testing.T) {
	program := []isa.Instruction{
		isa.Label("dup"),
		{Op: isa.OpNop},
		isa.Label("dup"),
	}
	if _, err := Encode(program); err == nil {
		t.Error("Encode() with a duplicate label should fail")
	}
}

func TestEncodeSizeMatchesPass1(t *testing.T) {
	program := []isa.Instruction{
		{Op: isa.OpMov, Reg: isa.Reg0, Val: isa.LiteralValue(1)},
		{Op: isa.OpLdw, Reg: isa.Reg1, Addr: isa.LiteralAddress(10)},
		{Op: isa.OpStw, Reg: isa.Reg1, Addr: isa.HLAddress()},
	}
	var wantLen int
	for _, inst := range program {
		wantLen += isa.Size(inst)
	}
	got, err := Encode(program)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if len(got) != wantLen {
		t.Errorf("Encode() produced %d bytes, want %d (sum of isa.Size)", len(got), wantLen)
	}
}
