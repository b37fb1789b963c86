// Package celtenv implements the band-energy coding stage of the CELT layer.
// This file defines the per-stream encoder state for band-energy coding
// and the linear-to-log-domain converter feeding it.

package celtenv

import (
	"errors"

	"github.com/mavire/celtenv/rangecoding"
)

var (
	// ErrBadChannels reports a channel count other than 1 or 2.
	ErrBadChannels = errors.New("celtenv: channel count must be 1 or 2")

	// ErrBadBands reports a band count outside [1, MaxBands].
	ErrBadBands = errors.New("celtenv: band count out of range")
)

// Encoder carries the band-energy state of one encoded stream across
// frames: the reconstructed log energies the next frame predicts from, the
// residual quantization error handed from coarse to fine coding, and the
// accumulated distortion driving the intra heuristic.
//
// All per-band arrays use flat band + channel*bands indexing.
//
// An Encoder instance maintains internal state and is NOT safe for
// concurrent use. Each stream should have its own Encoder.
type Encoder struct {
	channels int
	bands    int

	// oldEBands holds the reconstructed log energies in Q10, carried
	// across frames as the inter prediction reference.
	oldEBands []int16

	// errorVal is the coarse quantization residual in Q10, consumed and
	// refined by the fine stage.
	errorVal []int32

	// delayedIntra accumulates frame distortion with a geometric
	// forgetting factor; large values bias the mode decision to intra.
	delayedIntra int32

	// Scratch for the intra trial of the two-pass decision.
	oldIntra   []int16
	errorIntra []int32
	startState rangecoding.EncoderState
	intraState rangecoding.EncoderState
}

// NewEncoder creates an energy encoder.
//
// channels must be 1 (mono) or 2 (stereo); bands is the band count per
// channel, at most MaxBands. State starts at zero energy, matching a
// freshly created decoder.
func NewEncoder(channels, bands int) (*Encoder, error) {
	if channels != 1 && channels != 2 {
		return nil, ErrBadChannels
	}
	if bands <= 0 || bands > MaxBands {
		return nil, ErrBadBands
	}
	n := channels * bands
	return &Encoder{
		channels:   channels,
		bands:      bands,
		oldEBands:  make([]int16, n),
		errorVal:   make([]int32, n),
		oldIntra:   make([]int16, n),
		errorIntra: make([]int32, n),
	}, nil
}

// Reset clears all cross-frame state, as after a stream restart. The next
// frame predicts from zero energy, matching a freshly created decoder.
func (e *Encoder) Reset() {
	for i := range e.oldEBands {
		e.oldEBands[i] = 0
	}
	e.delayedIntra = 0
}

// Channels returns the configured channel count.
func (e *Encoder) Channels() int { return e.channels }

// Bands returns the configured band count per channel.
func (e *Encoder) Bands() int { return e.bands }

// Energy returns the reconstructed log energies in Q10, flat indexed. The
// slice aliases encoder state and changes on the next frame call.
func (e *Encoder) Energy() []int16 { return e.oldEBands }

// Amp2Log2 converts linear band energies to the mean-relative log domain
// the energy stages code. Bands below effEnd get
// celtLog2(4*energy) - eMeans[band] in Q10; bands in [effEnd, end) carry
// no signal and are forced to the silence floor. Both arrays use
// band + channel*bands layout.
// Reference: libopus celt/quant_bands.c amp2Log2
func Amp2Log2(bandLogE []int16, bandE []int32, effEnd, end, channels, bands int) {
	for c := 0; c < channels; c++ {
		for i := 0; i < effEnd; i++ {
			idx := i + c*bands
			bandLogE[idx] = celtLog2(bandE[idx]<<2) - eMeans[i]<<6
		}
		for i := effEnd; i < end; i++ {
			bandLogE[i+c*bands] = -(14 << dbShift)
		}
	}
}
