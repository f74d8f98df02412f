package vm

import "testing"

func TestAddSigned8(t *testing.T) {
	tests := []struct {
		a, b         int8
		wantSum      int8
		wantOverflow bool
	}{
		{5, 7, 12, false},
		{127, 1, -128, true},
		{-128, -1, 127, true},
		{0, 0, 0, false},
		{100, 27, 127, false},
		{100, 28, -128, true},
	}
	for _, tt := range tests {
		sum, overflow := AddSigned8(tt.a, tt.b)
		if sum != tt.wantSum || overflow != tt.wantOverflow {
			t.Errorf("AddSigned8(%d, %d) = (%d, %v), want (%d, %v)", tt.a, tt.b, sum, overflow, tt.wantSum, tt.wantOverflow)
		}
	}
}

func TestSubSigned8(t *testing.T) {
	tests := []struct {
		a, b          int8
		wantDiff      int8
		wantOverflow bool
	}{
		{10, 3, 7, false},
		{-128, 1, 127, true},
		{127, -1, -128, true},
		{0, 0, 0, false},
	}
	for _, tt := range tests {
		diff, overflow := SubSigned8(tt.a, tt.b)
		if diff != tt.wantDiff || overflow != tt.wantOverflow {
			t.Errorf("SubSigned8(%d, %d) = (%d, %v), want (%d, %v)", tt.a, tt.b, diff, overflow, tt.wantDiff, tt.wantOverflow)
		}
	}
}

func TestShiftAmount(t *testing.T) {
	tests := []struct {
		v        int8
		wantN    uint
		wantOK   bool
	}{
		{0, 0, true},
		{3, 3, true},
		{7, 7, true},
		{8, 0, false},
		{-1, 0, false}, // byte(-1) == 255, clamps to 0 via overflow
	}
	for _, tt := range tests {
		n, ok := ShiftAmount(tt.v)
		if n != tt.wantN || ok != tt.wantOK {
			t.Errorf("ShiftAmount(%d) = (%d, %v), want (%d, %v)", tt.v, n, ok, tt.wantN, tt.wantOK)
		}
	}
}
