package encoder

import (
	"fmt"

	"github.com/lookbusy1344/mc8/isa"
	"github.com/lookbusy1344/mc8/parser"
)

// Encode runs the two-pass assembly described in §4.4: pass 1 sizes every instruction (a pure
// function of operand shape, isa.Size) to compute each label's byte offset; pass 2 walks the
// program again and emits bytes, substituting resolved addresses for label references. Duplicate
// label definitions and unresolved label references are reported here, at encode time.
func Encode(program []isa.Instruction) ([]byte, error) {
	offsets, err := resolveLabels(program)
	if err != nil {
		return nil, err
	}

	var out []byte
	for _, inst := range program {
		if inst.Op == isa.OpLabel {
			continue
		}
		bytes, err := encodeOne(inst, offsets)
		if err != nil {
			return nil, err
		}
		out = append(out, bytes...)
	}
	return out, nil
}

// resolveLabels is pass 1: walk the program accumulating a running byte offset via isa.Size,
// recording each LABEL's offset and rejecting duplicate labels.
func resolveLabels(program []isa.Instruction) (map[string]uint16, error) {
	offsets := make(map[string]uint16)
	var offset int
	for _, inst := range program {
		if inst.Op == isa.OpLabel {
			if _, exists := offsets[inst.Name]; exists {
				return nil, NewEncodingError(parser.Position{}, parser.ErrorDuplicateLabel,
					fmt.Sprintf("duplicate label: %q", inst.Name))
			}
			offsets[inst.Name] = uint16(offset)
			continue
		}
		offset += isa.Size(inst)
	}
	return offsets, nil
}

// resolveAddress turns an address operand into a concrete 16-bit value, consulting offsets for a
// label reference. It never applies to HL-shaped addresses (those emit no address bytes at all).
func resolveAddress(addr isa.Address, offsets map[string]uint16) (uint16, error) {
	switch addr.AddrKind {
	case isa.AddressLiteral:
		return addr.Literal, nil
	case isa.AddressLabel:
		off, ok := offsets[addr.Label]
		if !ok {
			return 0, NewEncodingError(parser.Position{}, parser.ErrorUndefinedLabel,
				fmt.Sprintf("undefined label: %q", addr.Label))
		}
		return off, nil
	default:
		return 0, nil
	}
}

// encodeOne emits the bytes for a single non-label instruction, per the bit layout in §6: high
// nibble = opcode, bit 3 = immediate-mode flag I, low 3 bits = register or flag field.
func encodeOne(inst isa.Instruction, offsets map[string]uint16) ([]byte, error) {
	nibble := inst.Op.Opcode()

	switch inst.Op {
	case isa.OpNop:
		return []byte{0x00}, nil

	case isa.OpMov, isa.OpAdd, isa.OpSub, isa.OpAnd, isa.OpOr, isa.OpCmp, isa.OpShl, isa.OpShr:
		return encodeRegValue(nibble, inst.Reg, inst.Val)

	case isa.OpLdw, isa.OpStw:
		return encodeRegAddr(nibble, inst.Reg, inst.Addr, offsets)

	case isa.OpLda:
		return encodeAddr(nibble, inst.Addr, offsets)

	case isa.OpPsh:
		return encodeValueOnly(nibble, inst.Val)

	case isa.OpPop:
		return []byte{nibble<<4 | byte(inst.Reg)}, nil

	case isa.OpJmp:
		return encodeFlagAddr(nibble, inst.Flg, inst.Addr, offsets)

	case isa.OpInv:
		return []byte{nibble<<4 | byte(inst.Reg)}, nil

	default:
		return nil, NewEncodingError(parser.Position{}, parser.ErrorSyntax, "unencodable instruction")
	}
}

// encodeRegValue encodes `op R, v` (MOV/ADD/SUB/AND/OR/CMP/SHL/SHR): word 0 carries R and the
// immediate-mode bit; word 1 carries either the literal or the source register index.
func encodeRegValue(nibble byte, reg isa.Register, val isa.Value) ([]byte, error) {
	if val.IsRegister() {
		word0 := nibble<<4 | byte(reg)
		return []byte{word0, byte(val.Kind)}, nil
	}
	word0 := nibble<<4 | 0x08 | byte(reg)
	return []byte{word0, byte(val.Lit)}, nil
}

// encodeRegAddr encodes `op R, a` (LDW/STW): no extra bytes when the address is the HL pair,
// else two big-endian address bytes.
func encodeRegAddr(nibble byte, reg isa.Register, addr isa.Address, offsets map[string]uint16) ([]byte, error) {
	if addr.IsImmediate() {
		a, err := resolveAddress(addr, offsets)
		if err != nil {
			return nil, err
		}
		word0 := nibble<<4 | 0x08 | byte(reg)
		return []byte{word0, byte(a >> 8), byte(a & 0xFF)}, nil
	}
	word0 := nibble<<4 | byte(reg)
	return []byte{word0}, nil
}

// encodeAddr encodes `op a` with no register field (LDA).
func encodeAddr(nibble byte, addr isa.Address, offsets map[string]uint16) ([]byte, error) {
	if addr.IsImmediate() {
		a, err := resolveAddress(addr, offsets)
		if err != nil {
			return nil, err
		}
		word0 := nibble<<4 | 0x08
		return []byte{word0, byte(a >> 8), byte(a & 0xFF)}, nil
	}
	return []byte{nibble << 4}, nil
}

// encodeValueOnly encodes `op v` with no register field (PSH).
func encodeValueOnly(nibble byte, val isa.Value) ([]byte, error) {
	if val.IsRegister() {
		return []byte{nibble << 4, byte(val.Kind)}, nil
	}
	return []byte{nibble<<4 | 0x08, byte(val.Lit)}, nil
}

// encodeFlagAddr encodes `op f, a` (JMP): low 3 bits carry the flag index instead of a register.
func encodeFlagAddr(nibble byte, flg isa.Flag, addr isa.Address, offsets map[string]uint16) ([]byte, error) {
	if addr.IsImmediate() {
		a, err := resolveAddress(addr, offsets)
		if err != nil {
			return nil, err
		}
		word0 := nibble<<4 | 0x08 | byte(flg)
		return []byte{word0, byte(a >> 8), byte(a & 0xFF)}, nil
	}
	word0 := nibble<<4 | byte(flg)
	return []byte{word0}, nil
}
