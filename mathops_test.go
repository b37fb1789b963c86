package celtenv

import "testing"

// TestCeltLog2KnownValues validates the Q10 log2 approximation at points
// with exactly known results.
// Reference: libopus celt/mathops.h celt_log2
func TestCeltLog2KnownValues(t *testing.T) {
	cases := []struct {
		x    int32
		want int16
	}{
		{0, -32767},
		{1, -14336},
		{16384, 0},
		{32768, 1024},
		{49152, 1623},
		{65536, 2048},
	}
	for _, c := range cases {
		if got := celtLog2(c.x); got != c.want {
			t.Errorf("celtLog2(%d) = %d, want %d", c.x, got, c.want)
		}
	}
}

// TestPshr32 validates round-to-nearest shifting, in particular the
// behavior at the rounding boundary for negative values.
func TestPshr32(t *testing.T) {
	cases := []struct {
		x     int32
		shift uint
		want  int32
	}{
		{64, 7, 1},
		{63, 7, 0},
		{-64, 7, 0},
		{-65, 7, -1},
		{-131072, 7, -1024},
		{-1024, 8, -4},
		{4096, 8, 16},
	}
	for _, c := range cases {
		if got := pshr32(c.x, c.shift); got != c.want {
			t.Errorf("pshr32(%d, %d) = %d, want %d", c.x, c.shift, got, c.want)
		}
	}
}

// TestVshr32 validates the signed-direction shift used to normalize
// mantissas in celtLog2.
func TestVshr32(t *testing.T) {
	cases := []struct {
		x     int32
		shift int
		want  int32
	}{
		{1, -15, 32768},
		{32768, 0, 32768},
		{65536, 1, 32768},
		{16384, -1, 32768},
	}
	for _, c := range cases {
		if got := vshr32(c.x, c.shift); got != c.want {
			t.Errorf("vshr32(%d, %d) = %d, want %d", c.x, c.shift, got, c.want)
		}
	}
}

// TestMultQ15 validates the Q15 multiply helpers against hand-computed
// products, including truncation direction for negative results.
func TestMultQ15(t *testing.T) {
	if got := mult1616Q15(-16384, -1401); got != 700 {
		t.Errorf("mult1616Q15(-16384, -1401) = %d, want 700", got)
	}
	if got := mult1616Q15(29440, 29440); got != 26450 {
		t.Errorf("mult1616Q15(29440, 29440) = %d, want 26450", got)
	}
	if got := mult1616Q15(-16384, 19166); got != -9583 {
		t.Errorf("mult1616Q15(-16384, 19166) = %d, want -9583", got)
	}
	if got := mult1632Q15(26450, 200); got != 161 {
		t.Errorf("mult1632Q15(26450, 200) = %d, want 161", got)
	}
}
