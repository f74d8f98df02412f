package isa

import "fmt"

// Flag identifies one bit position in the flags byte (register 7) for JMP's condition operand.
type Flag byte

// Named flag bit positions. Indices 6 and 7 are reserved.
const (
	FlagHalt     Flag = 0
	FlagCarry    Flag = 1
	FlagBorrow   Flag = 2
	FlagOverflow Flag = 3
	FlagLess     Flag = 4
	FlagEqual    Flag = 5
)

var flagNames = map[string]Flag{
	"flag0":    FlagHalt,
	"flag1":    FlagCarry,
	"flag2":    FlagBorrow,
	"flag3":    FlagOverflow,
	"flag4":    FlagLess,
	"flag5":    FlagEqual,
	"flag6":    Flag(6),
	"flag7":    Flag(7),
	"halt":     FlagHalt,
	"carry":    FlagCarry,
	"borrow":   FlagBorrow,
	"overflow": FlagOverflow,
	"less":     FlagLess,
	"equal":    FlagEqual,
}

var flagDisplayNames = [8]string{
	"halt", "carry", "borrow", "overflow", "less", "equal", "flag6", "flag7",
}

// LookupFlag resolves a lowercase identifier to a Flag, following the alias table in §3.
func LookupFlag(name string) (Flag, bool) {
	f, ok := flagNames[name]
	return f, ok
}

func (f Flag) String() string {
	if int(f) < len(flagDisplayNames) {
		return flagDisplayNames[f]
	}
	return fmt.Sprintf("flag%d", byte(f))
}

// Valid reports whether f is a legal 3-bit flag index.
func (f Flag) Valid() bool {
	return f <= 7
}
