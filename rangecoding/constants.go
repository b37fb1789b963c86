// Package rangecoding implements the range coder used by the band-energy
// codec, following RFC 6716 Section 4.1 and the libopus entenc.c/entdec.c
// wire format. Range-coded symbols grow from the front of the frame buffer
// and raw bits grow backwards from the tail; the two meet in the middle
// when the budget is exhausted.
package rangecoding

import "math/bits"

// Coder geometry per RFC 6716 Section 4.1 and libopus celt/mfrngcod.h.
const (
	EC_SYM_BITS    = 8                                // bits emitted per renormalization
	EC_CODE_BITS   = 32                               // state register width
	EC_SYM_MAX     = (1 << EC_SYM_BITS) - 1           // 255
	EC_CODE_TOP    = 1 << (EC_CODE_BITS - 1)          // 0x80000000
	EC_CODE_BOT    = EC_CODE_TOP >> EC_SYM_BITS       // 0x00800000
	EC_CODE_SHIFT  = EC_CODE_BITS - EC_SYM_BITS - 1   // 23
	EC_CODE_EXTRA  = (EC_CODE_BITS-2)%EC_SYM_BITS + 1 // 7
	EC_UINT_BITS   = 8                                // range-coded bits of a uint symbol
	EC_WINDOW_SIZE = 32                               // raw-bit accumulator width
)

// tellFracCorrection maps the top bits of rng to the fractional bit count
// used by TellFrac on both coder sides.
var tellFracCorrection = [8]uint32{35733, 38967, 42495, 46340, 50535, 55109, 60097, 65535}

// ilog returns the position of the highest set bit plus one, and 0 for 0.
func ilog(x uint32) int {
	return bits.Len32(x)
}
