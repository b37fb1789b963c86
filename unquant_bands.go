// Package celtenv implements the band-energy coding stage of the CELT layer.
// This file is the decoder side of that stage, matching libopus
// celt/quant_bands.c unquant_*. Each stage mirrors its encoder twin
// bit for bit: the same budget thresholds select the same coding path
// on both sides, so the decoder never needs to be told which path the
// encoder took.

package celtenv

import (
	"github.com/mavire/celtenv/rangecoding"
)

// UnquantCoarseEnergy decodes the frame's coarse energies into the
// decoder's energy state and reports the frame's mode (true for intra).
// The mode flag itself is read from the stream when the budget allowed
// the encoder to write it, and defaults to inter otherwise.
// Reference: libopus celt/quant_bands.c unquant_coarse_energy()
func (d *Decoder) UnquantCoarseEnergy(rd *rangecoding.Decoder, start, end, lm int) bool {
	budget := rd.StorageBits()
	tell := rd.Tell()

	intra := false
	if tell+3 <= budget {
		intra = rd.DecodeBit(3) != 0
	}

	var coef, beta int32
	if intra {
		coef = 0
		beta = betaIntra
	} else {
		beta = int32(betaCoef[lm])
		coef = int32(predCoef[lm])
	}
	probModel := eProbModel[lm][0][:]
	if intra {
		probModel = eProbModel[lm][1][:]
	}

	prev := [2]int32{}
	for i := start; i < end; i++ {
		for c := 0; c < d.channels; c++ {
			idx := i + c*d.bands
			var qi int

			tell = rd.Tell()
			if budget-tell >= 15 {
				pi := 2 * min(i, 20)
				qi = rd.DecodeLaplace(uint32(probModel[pi])<<7, int(probModel[pi+1])<<6)
			} else if budget-tell >= 2 {
				v := rd.DecodeICDF(smallEnergyICDF, 2)
				qi = (v >> 1) ^ -(v & 1)
			} else if budget-tell >= 1 {
				qi = -rd.DecodeBit(1)
			} else {
				qi = -1
			}

			q := int32(qi) << dbShift
			oldE := max(int32(d.oldEBands[idx]), -(9 << dbShift))
			tmp := max(pshr32(coef*oldE, 8)+prev[c]+(q<<7), -(28 << (dbShift + 7)))
			d.oldEBands[idx] = int16(pshr32(tmp, 7))
			prev[c] += (q << 7) - beta*pshr32(q, 8)
		}
	}
	return intra
}

// UnquantFineEnergy reads fineQuant[i] refinement bits per band and
// channel and applies the midpoint offset the encoder subtracted. Bands
// with no allocation are skipped and cost nothing.
// Reference: libopus celt/quant_bands.c unquant_fine_energy()
func (d *Decoder) UnquantFineEnergy(rd *rangecoding.Decoder, start, end int, fineQuant []int) {
	for i := start; i < end; i++ {
		if fineQuant[i] <= 0 {
			continue
		}
		for c := 0; c < d.channels; c++ {
			idx := i + c*d.bands
			q2 := int32(rd.DecodeRawBits(uint(fineQuant[i])))
			offset := (((q2 << dbShift) + (1 << (dbShift - 1))) >> fineQuant[i]) - (1 << (dbShift - 1))
			d.oldEBands[idx] += int16(offset)
		}
	}
}

// UnquantEnergyFinalise reads the leftover sign bits the encoder spent,
// lowest priority class first, and applies the matching small offsets.
// Stops once fewer than one bit per channel remains.
// Reference: libopus celt/quant_bands.c unquant_energy_finalise()
func (d *Decoder) UnquantEnergyFinalise(rd *rangecoding.Decoder, start, end int,
	fineQuant, finePriority []int, bitsLeft int) {

	for prio := 0; prio < 2; prio++ {
		for i := start; i < end && bitsLeft >= d.channels; i++ {
			if fineQuant[i] >= MaxFineBits || finePriority[i] != prio {
				continue
			}
			for c := 0; c < d.channels; c++ {
				idx := i + c*d.bands
				q2 := int32(rd.DecodeRawBits(1))
				offset := ((q2 << dbShift) - (1 << (dbShift - 1))) >> (fineQuant[i] + 1)
				d.oldEBands[idx] += int16(offset)
				bitsLeft--
			}
		}
	}
}
