package vm

// AddSigned8 adds two signed 8-bit values and reports whether the addition overflowed the signed
// 8-bit range — the CARRY condition for ADD (§4.5). The wrapped sum is still returned: mc8
// arithmetic does not trap on overflow, it only raises the flag.
func AddSigned8(a, b int8) (int8, bool) {
	sum := int16(a) + int16(b)
	return int8(sum), sum < -128 || sum > 127
}

// SubSigned8 subtracts two signed 8-bit values and reports whether the subtraction overflowed the
// signed 8-bit range — the BORROW condition for SUB (§4.5).
func SubSigned8(a, b int8) (int8, bool) {
	diff := int16(a) - int16(b)
	return int8(diff), diff < -128 || diff > 127
}

// ShiftAmount clamps a shift operand to the byte width: shifts by a value of 8 or more yield 0
// (§4.5), so the executor never needs to perform an out-of-range Go shift. v is taken as an
// unsigned count regardless of the value operand's signed representation.
func ShiftAmount(v int8) (uint, bool) {
	count := uint(byte(v))
	if count >= 8 {
		return 0, false
	}
	return count, true
}
