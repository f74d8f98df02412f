package isa

import "fmt"

// ValueKind tags the two shapes a Value operand can take.
type ValueKind int

const (
	ValueRegister ValueKind = iota
	ValueLiteral
)

// Value is either a register reference or an 8-bit signed literal (§3).
type Value struct {
	Kind Register
	Lit  int8
	kind ValueKind
}

// RegisterValue builds a Value that reads from a register.
func RegisterValue(r Register) Value {
	return Value{Kind: r, kind: ValueRegister}
}

// LiteralValue builds a Value carrying an immediate 8-bit signed literal.
func LiteralValue(v int8) Value {
	return Value{Lit: v, kind: ValueLiteral}
}

// IsRegister reports whether this Value reads from a register rather than an immediate.
func (v Value) IsRegister() bool { return v.kind == ValueRegister }

func (v Value) String() string {
	if v.IsRegister() {
		return v.Kind.String()
	}
	return fmt.Sprintf("%d", v.Lit)
}

// AddressKind tags the three shapes an Address operand can take.
type AddressKind int

const (
	AddressHL AddressKind = iota
	AddressLiteral
	AddressLabel
)

// Address is either the implicit HL register pair, a 16-bit literal, or an unresolved label
// reference (§3). Label references are resolved to Literal during encoding (§4.4).
type Address struct {
	AddrKind AddressKind
	Literal  uint16
	Label    string
}

// HLAddress builds the implicit address-register-pair operand.
func HLAddress() Address { return Address{AddrKind: AddressHL} }

// LiteralAddress builds a resolved 16-bit address operand.
func LiteralAddress(v uint16) Address { return Address{AddrKind: AddressLiteral, Literal: v} }

// LabelAddress builds an address operand that refers to a label by name.
func LabelAddress(name string) Address { return Address{AddrKind: AddressLabel, Label: name} }

// IsImmediate reports whether this address occupies two extra bytes in the encoding (i.e. it is
// not the implicit HL form).
func (a Address) IsImmediate() bool { return a.AddrKind != AddressHL }

func (a Address) String() string {
	switch a.AddrKind {
	case AddressHL:
		return "HL"
	case AddressLabel:
		return "@" + a.Label
	default:
		return fmt.Sprintf("%d", a.Literal)
	}
}
