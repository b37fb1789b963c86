// Package celtenv implements the band-energy coding stage of the CELT layer.
// This file provides the fixed-point arithmetic primitives used by the
// energy coder, matching libopus celt/mathops.h.

package celtenv

import "math/bits"

// celtIlog2 returns the integer base-2 logarithm of x, i.e. the position of
// the highest set bit. x must be positive.
func celtIlog2(x int32) int {
	return bits.Len32(uint32(x)) - 1
}

// pshr32 shifts right by shift with rounding to nearest.
func pshr32(x int32, shift uint) int32 {
	return (x + (1 << (shift - 1))) >> shift
}

// vshr32 shifts right by shift, or left when shift is negative.
func vshr32(x int32, shift int) int32 {
	if shift > 0 {
		return x >> uint(shift)
	}
	return x << uint(-shift)
}

// mult1616Q15 multiplies two Q15 values, keeping Q15.
func mult1616Q15(a, b int32) int32 {
	return (a * b) >> 15
}

// mult1632Q15 multiplies a Q15 coefficient by a 32-bit value, keeping the
// value's scale.
func mult1632Q15(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> 15)
}

// log2Coef is the Q14 polynomial approximating log2 over [1, 2), adjusted
// so the Q10 result is exact at powers of two.
var log2Coef = [5]int32{-6793, 15746, -5217, 2545, -1401}

// celtLog2 returns log2(x) in Q10 for a Q14 input, -32767 for zero input.
// Reference: libopus celt/mathops.h celt_log2
func celtLog2(x int32) int16 {
	if x == 0 {
		return -32767
	}
	i := celtIlog2(x)
	n := vshr32(x, i-15) - 32768 - 16384
	frac := log2Coef[0] + mult1616Q15(n,
		log2Coef[1]+mult1616Q15(n,
			log2Coef[2]+mult1616Q15(n,
				log2Coef[3]+mult1616Q15(n, log2Coef[4]))))
	return int16((i-13)<<dbShift + int(frac>>(14-dbShift)))
}
