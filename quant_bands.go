// Package celtenv implements the band-energy (spectral envelope) coding
// stage of the CELT layer per RFC 6716 Section 4.3.2: coarse energy
// quantization with per-frame intra/inter prediction, fine refinement bits
// and final leftover-bit allocation, with bit-exact encoder/decoder pairs.
// This file implements the encoder side, matching libopus quant_bands.c.

package celtenv

import (
	"github.com/mavire/celtenv/rangecoding"
	"github.com/mavire/celtenv/util"
)

// CoarseParams configures one frame of coarse energy coding.
type CoarseParams struct {
	// Start is the first band to encode (0, or 17 for hybrid frames).
	Start int
	// End is the last band to encode (exclusive).
	End int
	// EffEnd is the effective end for distortion tracking; bands past it
	// carry no signal.
	EffEnd int
	// LM is the frame size class (0=2.5ms .. 3=20ms).
	LM int
	// NBAvailableBytes is the byte count still available to the frame,
	// bounding the per-frame energy decay and the intra heuristic.
	NBAvailableBytes int
	// ForceIntra forces intra mode regardless of the heuristic.
	ForceIntra bool
	// TwoPass enables trying both modes and keeping the better one.
	TwoPass bool
	// LossRate is the expected packet loss rate in percent; higher rates
	// bias the mode decision toward intra.
	LossRate int
	// LFE marks a low-frequency-effects channel, which pins energy above
	// band 2 and tightens the decay cap.
	LFE bool
}

// lossDistortion measures the squared log-energy distance between the
// frame's target energies and the current prediction reference, coarsened
// and capped at 200. It feeds the intra heuristic and delayedIntra.
// Reference: libopus celt/quant_bands.c loss_distortion()
func lossDistortion(eBands, oldEBands []int16, start, end, bands, channels int) int32 {
	var dist int32
	for c := 0; c < channels; c++ {
		for i := start; i < end; i++ {
			d := int32(eBands[i+c*bands]>>3) - int32(oldEBands[i+c*bands]>>3)
			dist += d * d
		}
	}
	return min(200, dist>>(2*dbShift-6))
}

// quantCoarseEnergyImpl runs one coarse coding pass in the given mode over
// oldEBands and errorVal, returning the accumulated badness: how far
// budget clamping pushed the coded indices off the ideal ones.
// Reference: libopus celt/quant_bands.c quant_coarse_energy_impl()
func (e *Encoder) quantCoarseEnergyImpl(re *rangecoding.Encoder, start, end int,
	eBands, oldEBands []int16, budget, tell int, probModel []uint8,
	errorVal []int32, intra bool, lm int, maxDecay int32, lfe bool) int {

	badness := 0
	prev := [2]int32{}
	var coef, beta int32

	if tell+3 <= budget {
		bit := 0
		if intra {
			bit = 1
		}
		re.EncodeBit(bit, 3)
	}

	if intra {
		coef = 0
		beta = betaIntra
	} else {
		beta = int32(betaCoef[lm])
		coef = int32(predCoef[lm])
	}

	for i := start; i < end; i++ {
		for c := 0; c < e.channels; c++ {
			idx := i + c*e.bands
			x := int32(eBands[idx])
			oldE := max(int32(oldEBands[idx]), -(9 << dbShift))
			pred := pshr32(coef*oldE, 8)
			f := (x << 7) - pred - prev[c]
			// Rounding to nearest integer here is really important.
			qi := int((f + (1 << (dbShift + 6))) >> (dbShift + 7))
			decayBound := max(int32(oldEBands[idx])-maxDecay, -(28 << dbShift))

			// Prevent the energy from going down too quickly (e.g. for
			// bands that have just one bin).
			if qi < 0 && x < decayBound {
				qi += int((decayBound - x) >> dbShift)
				if qi > 0 {
					qi = 0
				}
			}
			qi0 := qi

			// If there aren't enough bits left for all the energy, assume
			// something safe.
			tell = re.Tell()
			bitsLeft := budget - tell - 3*e.channels*(end-i)
			if i != start && bitsLeft < 30 {
				if bitsLeft < 24 {
					qi = min(1, qi)
				}
				if bitsLeft < 16 {
					qi = max(-1, qi)
				}
			}
			if lfe && i >= 2 {
				qi = min(qi, 0)
			}

			if budget-tell >= 15 {
				pi := 2 * min(i, 20)
				qi = re.EncodeLaplace(qi,
					uint32(probModel[pi])<<7, int(probModel[pi+1])<<6)
			} else if budget-tell >= 2 {
				qi = max(-1, min(1, qi))
				s := 2 * qi
				if qi < 0 {
					s = -s - 1
				}
				re.EncodeICDF(s, smallEnergyICDF, 2)
			} else if budget-tell >= 1 {
				qi = min(qi, 0)
				re.EncodeBit(-qi, 1)
			} else {
				qi = -1
			}

			errorVal[idx] = pshr32(f, 7) - int32(qi)<<dbShift
			if tmpCoarseDumpEnabled {
				println("COARSE_DUMP band", i, "ch", c, "x", x, "oldE", oldE,
					"f", f, "qi", qi, "err", errorVal[idx], "tell", tell, "bitsLeft", bitsLeft)
			}
			badness += util.Abs(qi0 - qi)

			q := int32(qi) << dbShift
			tmp := max(pred+prev[c]+(q<<7), -(28 << (dbShift + 7)))
			oldEBands[idx] = int16(pshr32(tmp, 7))
			prev[c] += (q << 7) - beta*pshr32(q, 8)
		}
	}
	if lfe {
		return 0
	}
	return badness
}

// QuantCoarseEnergy encodes the frame's coarse energies and reports the
// committed mode (true for intra). In two-pass operation it first codes
// the frame in intra mode against scratch state, rewinds the coder, codes
// it in inter mode against the live state, and keeps whichever pass
// clamped less, breaking ties on bit cost biased by accumulated distortion
// and loss rate. The frame's bit budget is the coder's full storage.
// Reference: libopus celt/quant_bands.c quant_coarse_energy()
func (e *Encoder) QuantCoarseEnergy(re *rangecoding.Encoder, eBands []int16, p CoarseParams) bool {
	budget := re.StorageBits()
	lm := p.LM
	twoPass := p.TwoPass
	if tmpForceSinglePassEnabled {
		twoPass = false
	}

	intra := p.ForceIntra || (!twoPass &&
		e.delayedIntra > int32(2*e.channels*(p.End-p.Start)) &&
		p.NBAvailableBytes > (p.End-p.Start)*e.channels)
	intraBias := budget * int(e.delayedIntra) * p.LossRate / (e.channels * 512)
	newDistortion := lossDistortion(eBands, e.oldEBands, p.Start, p.EffEnd, e.bands, e.channels)

	tell := re.Tell()
	if tell+3 > budget {
		twoPass = false
		intra = false
	}

	maxDecay := int32(16 << dbShift)
	if p.End-p.Start > 10 {
		maxDecay = min(maxDecay, int32(p.NBAvailableBytes)<<(dbShift-3))
	}
	if p.LFE {
		maxDecay = 3 << dbShift
	}

	re.SaveStateInto(&e.startState)
	copy(e.oldIntra, e.oldEBands)

	badness1 := 0
	if twoPass || intra {
		badness1 = e.quantCoarseEnergyImpl(re, p.Start, p.End, eBands, e.oldIntra,
			budget, tell, eProbModel[lm][1][:], e.errorIntra, true, lm, maxDecay, p.LFE)
	}

	if !intra {
		tellIntra := re.TellFrac()
		re.SaveStateInto(&e.intraState)
		re.RestoreState(&e.startState)

		badness2 := e.quantCoarseEnergyImpl(re, p.Start, p.End, eBands, e.oldEBands,
			budget, tell, eProbModel[lm][0][:], e.errorVal, false, lm, maxDecay, p.LFE)

		if twoPass && (badness1 < badness2 ||
			(badness1 == badness2 && re.TellFrac()+intraBias > tellIntra)) {
			// The intra trial wins: bring back its coder bytes and state.
			re.RestoreState(&e.intraState)
			copy(e.oldEBands, e.oldIntra)
			copy(e.errorVal, e.errorIntra)
			intra = true
		}
	} else {
		copy(e.oldEBands, e.oldIntra)
		copy(e.errorVal, e.errorIntra)
	}

	if intra {
		e.delayedIntra = newDistortion
	} else {
		e.delayedIntra = mult1632Q15(
			mult1616Q15(int32(predCoef[lm]), int32(predCoef[lm])),
			e.delayedIntra) + newDistortion
	}
	return intra
}

// QuantFineEnergy refines the coarse energies with fineQuant[i] raw bits
// per band and channel, quantizing the residual left by the coarse stage.
// Bands with no allocation are skipped and cost nothing.
// Reference: libopus celt/quant_bands.c quant_fine_energy()
func (e *Encoder) QuantFineEnergy(re *rangecoding.Encoder, start, end int, fineQuant []int) {
	for i := start; i < end; i++ {
		if fineQuant[i] <= 0 {
			continue
		}
		frac := int32(1) << fineQuant[i]
		for c := 0; c < e.channels; c++ {
			idx := i + c*e.bands
			q2 := (e.errorVal[idx] + (1 << (dbShift - 1))) >> (dbShift - fineQuant[i])
			q2 = max(0, min(frac-1, q2))
			re.EncodeRawBits(uint32(q2), uint(fineQuant[i]))
			offset := (((q2 << dbShift) + (1 << (dbShift - 1))) >> fineQuant[i]) - (1 << (dbShift - 1))
			e.oldEBands[idx] += int16(offset)
			e.errorVal[idx] -= offset
		}
	}
}

// QuantEnergyFinalise spends the frame's leftover bits one at a time on
// the sign of the remaining per-band residual, lowest priority class
// first, stopping once fewer than one bit per channel remains. Bands
// already refined to MaxFineBits are left alone.
// Reference: libopus celt/quant_bands.c quant_energy_finalise()
func (e *Encoder) QuantEnergyFinalise(re *rangecoding.Encoder, start, end int,
	fineQuant, finePriority []int, bitsLeft int) {

	for prio := 0; prio < 2; prio++ {
		for i := start; i < end && bitsLeft >= e.channels; i++ {
			if fineQuant[i] >= MaxFineBits || finePriority[i] != prio {
				continue
			}
			for c := 0; c < e.channels; c++ {
				idx := i + c*e.bands
				q2 := int32(0)
				if e.errorVal[idx] >= 0 {
					q2 = 1
				}
				re.EncodeRawBits(uint32(q2), 1)
				offset := ((q2 << dbShift) - (1 << (dbShift - 1))) >> (fineQuant[i] + 1)
				e.oldEBands[idx] += int16(offset)
				bitsLeft--
			}
		}
	}
}
