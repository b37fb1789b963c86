package rangecoding

// Decoder is the range decoder half of the entropy coder. It mirrors the
// Encoder byte for byte: range symbols are read from the front of the frame
// and raw bits from the tail, and Tell/TellFrac advance exactly as they did
// while encoding, which is what keeps budget-driven decisions on the two
// sides in lockstep.
//
// The zero value is not usable; call Init first.
type Decoder struct {
	buf        []byte
	storage    uint32
	offs       uint32
	endOffs    uint32
	endWindow  uint32
	nendBits   int
	nbitsTotal int
	rng        uint32
	val        uint32
	ext        uint32 // scale saved by decode/DecodeBin for the matching update
	rem        int
	err        int
}

// Init readies the decoder to consume buf, which must be the exact frame an
// Encoder produced (or any buffer of the same length; reads past the end
// yield zero bytes rather than failing).
func (d *Decoder) Init(buf []byte) {
	d.buf = buf
	d.storage = uint32(len(buf))
	d.offs = 0
	d.endOffs = 0
	d.endWindow = 0
	d.nendBits = 0
	d.err = 0
	d.rng = 1 << EC_CODE_EXTRA
	d.rem = int(d.readByte())
	d.val = d.rng - 1 - uint32(d.rem>>(EC_SYM_BITS-EC_CODE_EXTRA))
	// Counted before normalize so that Tell reports 1 for the first symbol,
	// matching the encoder.
	d.nbitsTotal = EC_CODE_BITS + 1 -
		((EC_CODE_BITS-EC_CODE_EXTRA)/EC_SYM_BITS)*EC_SYM_BITS
	d.ext = 0
	d.normalize()
}

func (d *Decoder) readByte() byte {
	if d.offs < d.storage {
		b := d.buf[d.offs]
		d.offs++
		return b
	}
	return 0
}

func (d *Decoder) normalize() {
	for d.rng <= EC_CODE_BOT {
		d.nbitsTotal += EC_SYM_BITS
		d.rng <<= EC_SYM_BITS
		sym := d.rem
		d.rem = int(d.readByte())
		sym = (sym<<EC_SYM_BITS | d.rem) >> (EC_SYM_BITS - EC_CODE_EXTRA)
		d.val = ((d.val << EC_SYM_BITS) + uint32(EC_SYM_MAX&^sym)) & (EC_CODE_TOP - 1)
	}
}

// decode returns the cumulative frequency of the next symbol under total ft
// and stashes the scale for the update call that follows.
func (d *Decoder) decode(ft uint32) uint32 {
	d.ext = d.rng / ft
	s := d.val / d.ext
	if s+1 > ft {
		s = ft - 1
	}
	return ft - (s + 1)
}

// DecodeBin is decode specialized for ft = 1<<bits.
func (d *Decoder) DecodeBin(bits uint) uint32 {
	ft := uint32(1) << bits
	d.ext = d.rng >> bits
	s := d.val / d.ext
	if s+1 > ft {
		s = ft - 1
	}
	return ft - (s + 1)
}

// update narrows the range to the symbol [fl, fh) chosen after a decode or
// DecodeBin call with the same ft.
func (d *Decoder) update(fl, fh, ft uint32) {
	s := d.ext * (ft - fh)
	d.val -= s
	if fl > 0 {
		d.rng = d.ext * (fh - fl)
	} else {
		d.rng -= s
	}
	d.normalize()
}

// DecodeICDF decodes a symbol against an inverse-CDF table with 1<<ftb
// total frequency, the read side of EncodeICDF.
func (d *Decoder) DecodeICDF(icdf []uint8, ftb uint) int {
	s := d.rng
	dval := d.val
	r := s >> ftb
	ret := -1
	for {
		t := s
		ret++
		s = r * uint32(icdf[ret])
		if dval >= s {
			d.val = dval - s
			d.rng = t - s
			d.normalize()
			return ret
		}
	}
}

// DecodeBit reads one bit whose set probability is 1/2^logp.
func (d *Decoder) DecodeBit(logp uint) int {
	r := d.rng
	dval := d.val
	s := r >> logp
	ret := 0
	if dval < s {
		ret = 1
	} else {
		d.val = dval - s
	}
	if ret == 1 {
		d.rng = s
	} else {
		d.rng = r - s
	}
	d.normalize()
	return ret
}

// DecodeUniform reads a value uniformly distributed in [0, ft), the read
// side of EncodeUniform. Out-of-range wide values clamp and set the error
// flag rather than propagating garbage.
func (d *Decoder) DecodeUniform(ft uint32) uint32 {
	if ft <= 1 {
		return 0
	}
	ft--
	ftb := uint(ilog(ft))
	if ftb > EC_UINT_BITS {
		ftb -= EC_UINT_BITS
		ft1 := (ft >> ftb) + 1
		s := d.decode(ft1)
		d.update(s, s+1, ft1)
		t := s<<ftb | d.DecodeRawBits(ftb)
		if t <= ft {
			return t
		}
		d.err = 1
		return ft
	}
	ft++
	s := d.decode(ft)
	d.update(s, s+1, ft)
	return s
}

// DecodeRawBits reads bits raw bits from the tail of the buffer, the read
// side of EncodeRawBits.
func (d *Decoder) DecodeRawBits(bits uint) uint32 {
	for d.nendBits < int(bits) {
		if d.endOffs < d.storage {
			d.endOffs++
			d.endWindow |= uint32(d.buf[d.storage-d.endOffs]) << uint(d.nendBits)
			d.nendBits += 8
		} else {
			d.nendBits = int(bits)
		}
	}
	val := d.endWindow & ((uint32(1) << bits) - 1)
	d.endWindow >>= bits
	d.nendBits -= int(bits)
	d.nbitsTotal += int(bits)
	return val
}

// Tell reports the number of whole bits consumed so far, counting raw bits.
func (d *Decoder) Tell() int {
	return d.nbitsTotal - ilog(d.rng)
}

// TellFrac is Tell with 1/8-bit resolution.
func (d *Decoder) TellFrac() int {
	nbits := d.nbitsTotal << 3
	l := ilog(d.rng)
	r := d.rng >> uint(l-16)
	b := int(r>>12) - 8
	if r > tellFracCorrection[b] {
		b++
	}
	return nbits - ((l << 3) + b)
}

// Range exposes the current range width for consistency checks against the
// encoder.
func (d *Decoder) Range() uint32 {
	return d.rng
}

// StorageBits is the frame's total bit budget, 8 bits per buffer byte.
// Budget-driven coding paths derive their thresholds from this so that the
// decoder makes the same choices the encoder did.
func (d *Decoder) StorageBits() int {
	return int(d.storage * 8)
}

// Error reports the sticky error flag; nonzero after a malformed wide
// uniform symbol.
func (d *Decoder) Error() int {
	return d.err
}
