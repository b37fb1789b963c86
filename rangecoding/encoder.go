package rangecoding

// Encoder is the range encoder half of the entropy coder. It writes
// range-coded symbols from the front of a caller-supplied buffer and raw
// bits from the tail, with carry propagation deferred through rem/ext so
// emitted bytes never need rewriting.
//
// The zero value is not usable; call Init first.
type Encoder struct {
	buf        []byte
	storage    uint32
	offs       uint32 // front bytes written
	endOffs    uint32 // tail bytes written
	endWindow  uint32 // pending raw bits
	nendBits   int
	nbitsTotal int
	rng        uint32
	val        uint32
	rem        int // buffered byte awaiting carry, -1 when empty
	ext        uint32
	err        int
}

// Init readies the encoder to fill buf. The buffer length fixes the frame's
// bit budget: StorageBits() == 8*len(buf).
func (e *Encoder) Init(buf []byte) {
	e.buf = buf
	e.storage = uint32(len(buf))
	e.offs = 0
	e.endOffs = 0
	e.endWindow = 0
	e.nendBits = 0
	e.nbitsTotal = EC_CODE_BITS + 1
	e.rng = EC_CODE_TOP
	e.val = 0
	e.rem = -1
	e.ext = 0
	e.err = 0
}

func (e *Encoder) writeByte(b byte) {
	if e.offs+e.endOffs >= e.storage {
		e.err = -1
		return
	}
	e.buf[e.offs] = b
	e.offs++
}

func (e *Encoder) writeEndByte(b byte) {
	if e.offs+e.endOffs >= e.storage {
		e.err = -1
		return
	}
	e.endOffs++
	e.buf[e.storage-e.endOffs] = b
}

// carryOut feeds one output symbol through the carry chain. A 0xFF symbol
// only bumps ext, because a later carry could still turn it into 0x00; any
// other symbol releases the buffered byte and the pending 0xFF run.
func (e *Encoder) carryOut(c int) {
	if c != EC_SYM_MAX {
		carry := c >> EC_SYM_BITS
		if e.rem >= 0 {
			e.writeByte(byte(e.rem + carry))
		}
		if e.ext > 0 {
			sym := (EC_SYM_MAX + carry) & EC_SYM_MAX
			for e.ext > 0 {
				e.writeByte(byte(sym))
				e.ext--
			}
		}
		e.rem = c & EC_SYM_MAX
	} else {
		e.ext++
	}
}

func (e *Encoder) normalize() {
	for e.rng <= EC_CODE_BOT {
		e.carryOut(int(e.val >> EC_CODE_SHIFT))
		e.val = (e.val << EC_SYM_BITS) & (EC_CODE_TOP - 1)
		e.rng <<= EC_SYM_BITS
		e.nbitsTotal += EC_SYM_BITS
	}
}

// Encode narrows the range to the symbol whose cumulative frequency span is
// [fl, fh) out of ft.
func (e *Encoder) Encode(fl, fh, ft uint32) {
	r := e.rng / ft
	if fl > 0 {
		e.val += e.rng - r*(ft-fl)
		e.rng = r * (fh - fl)
	} else {
		e.rng -= r * (ft - fh)
	}
	e.normalize()
}

// EncodeBin is Encode specialized for a power-of-two total ft = 1<<bits.
func (e *Encoder) EncodeBin(fl, fh uint32, bits uint) {
	r := e.rng >> bits
	if fl > 0 {
		e.val += e.rng - r*((uint32(1)<<bits)-fl)
		e.rng = r * (fh - fl)
	} else {
		e.rng -= r * ((uint32(1) << bits) - fh)
	}
	e.normalize()
}

// EncodeICDF encodes symbol s against an inverse-CDF table with 1<<ftb
// total frequency. The table holds the frequency mass above each symbol,
// so it is strictly decreasing and ends at 0.
func (e *Encoder) EncodeICDF(s int, icdf []uint8, ftb uint) {
	r := e.rng >> ftb
	if s > 0 {
		e.val += e.rng - r*uint32(icdf[s-1])
		e.rng = r * uint32(icdf[s-1]-icdf[s])
	} else {
		e.rng -= r * uint32(icdf[s])
	}
	e.normalize()
}

// EncodeBit encodes one bit whose set probability is 1/2^logp.
func (e *Encoder) EncodeBit(bit int, logp uint) {
	r := e.rng
	s := r >> logp
	if bit != 0 {
		e.val += r - s
		e.rng = s
	} else {
		e.rng = r - s
	}
	e.normalize()
}

// EncodeUniform encodes a value uniformly distributed in [0, ft). Values
// wider than EC_UINT_BITS split into a range-coded high part and raw low
// bits, mirroring DecodeUniform.
func (e *Encoder) EncodeUniform(val uint32, ft uint32) {
	if ft <= 1 {
		return
	}
	ftb := uint(ilog(ft - 1))
	if ftb > EC_UINT_BITS {
		ftb -= EC_UINT_BITS
		ft1 := ((ft - 1) >> ftb) + 1
		e.encodeUniformRange(val>>ftb, ft1)
		e.EncodeRawBits(val&((uint32(1)<<ftb)-1), ftb)
	} else {
		e.encodeUniformRange(val, ft)
	}
}

// encodeUniformRange is Encode with fl=val, fh=val+1 folded together.
func (e *Encoder) encodeUniformRange(val uint32, ft uint32) {
	r := e.rng / ft
	if val > 0 {
		e.val += e.rng - r*(ft-val)
		e.rng = r
	} else {
		e.rng -= r * (ft - 1)
	}
	e.normalize()
}

// EncodeRawBits appends bits raw bits at the tail of the buffer. Raw bits
// never interact with the range state; they only shrink the shared budget.
func (e *Encoder) EncodeRawBits(val uint32, bits uint) {
	window := e.endWindow
	used := e.nendBits
	if used+int(bits) > EC_WINDOW_SIZE {
		for used >= EC_SYM_BITS {
			e.writeEndByte(byte(window & EC_SYM_MAX))
			window >>= EC_SYM_BITS
			used -= EC_SYM_BITS
		}
	}
	window |= val << used
	used += int(bits)
	e.endWindow = window
	e.nendBits = used
	e.nbitsTotal += int(bits)
}

// Done flushes the final interval and the pending raw bits and returns the
// finished frame: range bytes at the front, raw-bit bytes at the tail,
// zeros between. The slice always covers the full storage so a decoder fed
// these bytes derives the same bit budget this encoder had.
func (e *Encoder) Done() []byte {
	// Emit just enough high bits of val to pin the final interval no matter
	// what a decoder reads past them.
	l := EC_CODE_BITS - ilog(e.rng)
	msk := uint32(EC_CODE_TOP-1) >> uint(l)
	end := (e.val + msk) &^ msk
	if (end | msk) >= e.val+e.rng {
		l++
		msk >>= 1
		end = (e.val + msk) &^ msk
	}
	for l > 0 {
		e.carryOut(int(end >> EC_CODE_SHIFT))
		end = (end << EC_SYM_BITS) & (EC_CODE_TOP - 1)
		l -= EC_SYM_BITS
	}
	if e.rem >= 0 || e.ext > 0 {
		e.carryOut(0)
	}
	window := e.endWindow
	used := e.nendBits
	for used >= EC_SYM_BITS {
		e.writeEndByte(byte(window & EC_SYM_MAX))
		window >>= EC_SYM_BITS
		used -= EC_SYM_BITS
	}
	if e.err == 0 {
		for i := e.offs; i < e.storage-e.endOffs; i++ {
			e.buf[i] = 0
		}
		if used > 0 {
			// Fold leftover raw bits into the last tail byte. If front and
			// tail collided, keep only the bits that fit ahead of the range
			// data and flag the overflow.
			if e.endOffs >= e.storage {
				e.err = -1
			} else {
				l = -l
				if e.offs+e.endOffs >= e.storage && l < used {
					window &= (uint32(1) << uint(l)) - 1
					e.err = -1
				}
				e.buf[e.storage-e.endOffs-1] |= byte(window)
			}
		}
	}
	return e.buf[:e.storage]
}

// Tell reports the number of whole bits consumed so far, counting buffered
// raw bits. The first symbol always costs at least one bit.
func (e *Encoder) Tell() int {
	return e.nbitsTotal - ilog(e.rng)
}

// TellFrac is Tell with 1/8-bit resolution, used by budget comparisons that
// must see sub-bit differences between coding choices.
func (e *Encoder) TellFrac() int {
	nbits := e.nbitsTotal << 3
	l := ilog(e.rng)
	r := e.rng >> uint(l-16)
	b := int(r>>12) - 8
	if r > tellFracCorrection[b] {
		b++
	}
	return nbits - ((l << 3) + b)
}

// Range exposes the current range width. Matching Range values on the
// encoder and a decoder that consumed the same symbols is the cheap
// end-to-end consistency check.
func (e *Encoder) Range() uint32 {
	return e.rng
}

// StorageBits is the frame's total bit budget, 8 bits per buffer byte.
func (e *Encoder) StorageBits() int {
	return int(e.storage * 8)
}

// Error reports the sticky overflow flag; nonzero once any write did not
// fit the buffer. Encoding past the budget is not fatal, the surplus
// symbols are simply dropped and the frame flagged.
func (e *Encoder) Error() int {
	return e.err
}

// EncoderState is a checkpoint of the encoder: the register state plus
// copies of the exact byte ranges emitted so far at the front and tail.
// Restoring it makes the encoder byte-identical to the moment of capture,
// which is what lets a caller try one coding of a frame region, roll back,
// try another, and still splice the first attempt's bytes back in by
// restoring its checkpoint.
type EncoderState struct {
	offs       uint32
	endOffs    uint32
	endWindow  uint32
	nendBits   int
	nbitsTotal int
	rng        uint32
	val        uint32
	rem        int
	ext        uint32
	err        int
	bufFront   []byte
	bufBack    []byte
}

// SaveState captures the current state into a fresh checkpoint.
func (e *Encoder) SaveState() *EncoderState {
	s := &EncoderState{}
	e.SaveStateInto(s)
	return s
}

// SaveStateInto captures the current state into a caller-owned checkpoint,
// reusing its byte slices when they are large enough. This keeps repeated
// two-pass trials allocation-free.
func (e *Encoder) SaveStateInto(s *EncoderState) {
	s.offs = e.offs
	s.endOffs = e.endOffs
	s.endWindow = e.endWindow
	s.nendBits = e.nendBits
	s.nbitsTotal = e.nbitsTotal
	s.rng = e.rng
	s.val = e.val
	s.rem = e.rem
	s.ext = e.ext
	s.err = e.err
	if e.offs > 0 {
		if cap(s.bufFront) < int(e.offs) {
			s.bufFront = make([]byte, e.offs)
		} else {
			s.bufFront = s.bufFront[:e.offs]
		}
		copy(s.bufFront, e.buf[:e.offs])
	} else {
		s.bufFront = s.bufFront[:0]
	}
	if e.endOffs > 0 {
		if cap(s.bufBack) < int(e.endOffs) {
			s.bufBack = make([]byte, e.endOffs)
		} else {
			s.bufBack = s.bufBack[:e.endOffs]
		}
		copy(s.bufBack, e.buf[e.storage-e.endOffs:e.storage])
	} else {
		s.bufBack = s.bufBack[:0]
	}
}

// RestoreState rewinds the encoder to a checkpoint, re-injecting the saved
// front and tail byte ranges over whatever was written since.
func (e *Encoder) RestoreState(s *EncoderState) {
	e.offs = s.offs
	e.endOffs = s.endOffs
	e.endWindow = s.endWindow
	e.nendBits = s.nendBits
	e.nbitsTotal = s.nbitsTotal
	e.rng = s.rng
	e.val = s.val
	e.rem = s.rem
	e.ext = s.ext
	e.err = s.err
	if len(s.bufFront) > 0 {
		copy(e.buf[:s.offs], s.bufFront)
	}
	if len(s.bufBack) > 0 {
		copy(e.buf[e.storage-s.endOffs:e.storage], s.bufBack)
	}
}
