package celtenv

// Decoder reconstructs per-band log energies from a coded frame. It
// mirrors Encoder: the same band layout, the same cross-frame prediction
// state, and the same coding paths driven by the same budget rules, so
// that both sides stay synchronized without any side information.
//
// A Decoder is NOT safe for concurrent use.
type Decoder struct {
	channels int
	bands    int

	// oldEBands holds the reconstructed log energies of the previous
	// frame, indexed band + channel*bands, in Q10 (dbShift).
	oldEBands []int16
}

// NewDecoder creates a band-energy decoder.
//
// channels must be 1 (mono) or 2 (stereo); bands is the band count per
// channel, at most MaxBands. State starts at zero energy, matching a
// freshly created encoder.
func NewDecoder(channels, bands int) (*Decoder, error) {
	if channels != 1 && channels != 2 {
		return nil, ErrBadChannels
	}
	if bands <= 0 || bands > MaxBands {
		return nil, ErrBadBands
	}
	return &Decoder{
		channels:  channels,
		bands:     bands,
		oldEBands: make([]int16, channels*bands),
	}, nil
}

// Reset clears all cross-frame state, as after a stream restart.
func (d *Decoder) Reset() {
	for i := range d.oldEBands {
		d.oldEBands[i] = 0
	}
}

// Channels returns the configured channel count.
func (d *Decoder) Channels() int { return d.channels }

// Bands returns the configured band count per channel.
func (d *Decoder) Bands() int { return d.bands }

// Energy returns the reconstructed log energies, indexed
// band + channel*bands. The slice aliases decoder state and is
// rewritten by each decoded frame.
func (d *Decoder) Energy() []int16 { return d.oldEBands }
