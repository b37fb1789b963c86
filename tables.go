// Package celtenv implements the band-energy coding stage of the CELT layer.
// This file holds the static tables for band-energy coding: the Laplace
// probability models, per-band energy means and the prediction filter
// coefficients. All values match libopus celt/quant_bands.c.

package celtenv

const (
	// dbShift is the Q-format of log-domain energies: 1<<dbShift equals
	// one octave (6.02 dB).
	dbShift = 10

	// MaxFineBits caps the per-band fine allocation; the finalization
	// stage skips bands already refined this far.
	MaxFineBits = 8

	// MaxBands is the largest supported band count per channel, bounded
	// by the eMeans table.
	MaxBands = 25
)

// eProbModel holds the Laplace model parameters for coarse energy, indexed
// by [LM][intra][2*band] = prior and [LM][intra][2*band+1] = decay, with
// bands past 20 sharing the band-20 entry.
// Reference: libopus celt/quant_bands.c e_prob_model
var eProbModel = [4][2][42]uint8{
	// 120 sample frames (LM=0)
	{
		// Inter
		{
			72, 127, 65, 129, 66, 128, 65, 128, 64, 128, 62, 128, 64, 128,
			64, 128, 92, 78, 92, 79, 92, 78, 90, 79, 116, 41, 115, 40,
			114, 40, 132, 26, 132, 26, 145, 17, 161, 12, 176, 10, 177, 11,
		},
		// Intra
		{
			24, 179, 48, 138, 54, 135, 54, 132, 53, 134, 56, 133, 55, 132,
			55, 132, 61, 114, 70, 96, 74, 88, 75, 88, 87, 74, 89, 66,
			91, 67, 100, 59, 108, 50, 120, 40, 122, 37, 97, 43, 78, 50,
		},
	},
	// 240 sample frames (LM=1)
	{
		// Inter
		{
			83, 78, 84, 81, 88, 75, 86, 74, 87, 71, 90, 73, 93, 74,
			93, 74, 109, 40, 114, 36, 117, 34, 117, 34, 143, 17, 145, 18,
			146, 19, 162, 12, 165, 10, 178, 7, 189, 6, 190, 8, 177, 9,
		},
		// Intra
		{
			23, 178, 54, 115, 63, 102, 66, 98, 69, 99, 74, 89, 71, 91,
			73, 91, 78, 89, 86, 80, 92, 66, 93, 64, 102, 59, 103, 60,
			104, 60, 117, 52, 123, 44, 138, 35, 133, 31, 97, 38, 77, 45,
		},
	},
	// 480 sample frames (LM=2)
	{
		// Inter
		{
			61, 90, 93, 60, 105, 42, 107, 41, 110, 45, 116, 38, 113, 38,
			112, 38, 124, 26, 132, 27, 136, 19, 140, 20, 155, 14, 159, 16,
			158, 18, 170, 13, 177, 10, 187, 8, 192, 6, 175, 9, 159, 10,
		},
		// Intra
		{
			21, 178, 59, 110, 71, 86, 75, 85, 84, 83, 91, 66, 88, 73,
			87, 72, 92, 75, 98, 72, 105, 58, 107, 54, 115, 52, 114, 55,
			112, 56, 129, 51, 132, 40, 150, 33, 140, 29, 98, 35, 77, 42,
		},
	},
	// 960 sample frames (LM=3)
	{
		// Inter
		{
			42, 121, 96, 66, 108, 43, 111, 40, 117, 44, 123, 32, 120, 36,
			119, 33, 127, 33, 134, 34, 139, 21, 147, 23, 152, 20, 158, 25,
			154, 26, 166, 21, 173, 16, 184, 13, 184, 10, 150, 13, 139, 15,
		},
		// Intra
		{
			22, 178, 63, 114, 74, 82, 84, 83, 92, 82, 103, 62, 96, 72,
			96, 67, 101, 73, 107, 72, 113, 55, 118, 52, 125, 52, 118, 52,
			117, 55, 135, 49, 137, 39, 157, 32, 145, 29, 97, 33, 77, 40,
		},
	},
}

// smallEnergyICDF codes the zigzagged coarse delta when fewer than 15 bits
// remain, covering {0, -1, +1}.
// Reference: libopus celt/quant_bands.c small_energy_icdf
var smallEnergyICDF = []uint8{2, 1, 0}

// eMeans is the mean log-energy per band in Q4, subtracted before coding
// and added back during denormalization.
// Reference: libopus celt/quant_bands.c eMeans
var eMeans = [25]int16{
	103, 100, 92, 85, 81,
	77, 72, 70, 78, 75,
	73, 71, 78, 74, 69,
	72, 70, 74, 76, 71,
	60, 60, 60, 60, 60,
}

// predCoef contains inter-frame energy prediction coefficients in Q15,
// indexed by LM: 0=2.5ms, 1=5ms, 2=10ms, 3=20ms.
// Reference: libopus celt/quant_bands.c pred_coef[4]
var predCoef = [4]int16{29440, 26112, 21248, 16384}

// betaCoef contains inter-band prediction decay coefficients in Q15 for
// inter frames, indexed by LM.
// Reference: libopus celt/quant_bands.c beta_coef[4]
var betaCoef = [4]int16{30147, 22282, 12124, 6554}

// betaIntra is the inter-band prediction decay in Q15 for intra frames.
// Reference: libopus celt/quant_bands.c beta_intra
const betaIntra = 4915
