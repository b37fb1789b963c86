package rangecoding

// Laplace-distributed symbol coding for energy prediction residuals,
// following libopus celt/laplace.c. The model is parameterized by fs0, the
// probability mass of zero out of 32768, and decay, the Q14 ratio between
// the masses of successive magnitudes. Every magnitude keeps a floor of
// laplaceMinP so arbitrarily large residuals stay codable until the range
// runs out, at which point the encoder clamps the value.
const (
	laplaceLogMinP = 0
	laplaceMinP    = 1 << laplaceLogMinP
	// Guaranteed representable magnitudes in each direction before the
	// decayed frequencies can reach the floor.
	laplaceNMin = 16
)

// laplaceFreq1 returns the frequency of magnitude one given the frequency
// of zero. Valid for decay in (0, 11456], which covers the Q6-scaled model
// table bytes.
func laplaceFreq1(fs0 uint32, decay int) uint32 {
	ft := 32768 - laplaceMinP*(2*laplaceNMin) - fs0
	return ft * uint32(16384-decay) >> 15
}

// EncodeLaplace encodes value under the (fs0, decay) model and returns the
// value actually coded. The two differ only when the tail of the
// distribution cannot represent the magnitude, in which case the value is
// clamped toward zero; callers must keep the returned value so their state
// updates match the decoder's.
func (e *Encoder) EncodeLaplace(value int, fs0 uint32, decay int) int {
	var fl uint32
	fs := fs0
	val := value
	if val != 0 {
		s := 0
		if val < 0 {
			s = -1
		}
		val = (val + s) ^ s
		fl = fs
		fs = laplaceFreq1(fs, decay)
		// Walk down the decaying part of the distribution.
		i := 1
		for ; fs > 0 && i < val; i++ {
			fs *= 2
			fl += fs + 2*laplaceMinP
			fs = fs * uint32(decay) >> 15
		}
		if fs == 0 {
			// Flat tail: everything left shares the minimum probability.
			ndiMax := int(32768-fl+laplaceMinP-1) >> laplaceLogMinP
			ndiMax = (ndiMax - s) >> 1
			di := val - i
			if di > ndiMax-1 {
				di = ndiMax - 1
			}
			fl += uint32(2*di+1+s) * laplaceMinP
			fs = laplaceMinP
			if 32768-fl < fs {
				fs = 32768 - fl
			}
			value = (i + di + s) ^ s
		} else {
			fs += laplaceMinP
			if s == 0 {
				fl += fs
			}
		}
	}
	e.EncodeBin(fl, fl+fs, 15)
	return value
}

// DecodeLaplace decodes a value under the (fs0, decay) model, the read side
// of EncodeLaplace.
func (d *Decoder) DecodeLaplace(fs0 uint32, decay int) int {
	val := 0
	var fl uint32
	fs := fs0
	fm := d.DecodeBin(15)
	if fm >= fs {
		val++
		fl = fs
		fs = laplaceFreq1(fs, decay) + laplaceMinP
		for fs > laplaceMinP && fm >= fl+2*fs {
			fs *= 2
			fl += fs
			fs = (fs - 2*laplaceMinP) * uint32(decay) >> 15
			fs += laplaceMinP
			val++
		}
		if fs <= laplaceMinP {
			di := int(fm-fl) >> (laplaceLogMinP + 1)
			val += di
			fl += 2 * uint32(di) * laplaceMinP
		}
		if fm < fl+fs {
			val = -val
		} else {
			fl += fs
		}
	}
	fh := fl + fs
	if fh > 32768 {
		fh = 32768
	}
	d.update(fl, fh, 32768)
	return val
}
