// Command envtool codes one frame of Q10 band energies from the command
// line and decodes it back, printing the coded energies and bit usage.
//
// Usage:
//
//	envtool [frameBytes] [energies]
//
// energies is a comma-separated list of Q10 log-domain values (1024 per
// octave, 0 = the 16384 linear reference). Defaults code a descending
// eight-band ramp into 47 bytes.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mavire/celtenv"
	"github.com/mavire/celtenv/rangecoding"
)

func main() {
	size := 47
	input := []int{0, -1024, -2048, -3072, -4096, -5120, -6144, -7168}
	if len(os.Args) > 1 {
		if v, err := strconv.Atoi(os.Args[1]); err == nil && v > 0 {
			size = v
		}
	}
	if len(os.Args) > 2 {
		input = input[:0]
		for _, p := range strings.Split(os.Args[2], ",") {
			v, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil {
				fmt.Fprintf(os.Stderr, "envtool: bad energy %q: %v\n", p, err)
				os.Exit(2)
			}
			input = append(input, v)
		}
	}
	nbands := len(input)

	enc, err := celtenv.NewEncoder(1, nbands)
	if err != nil {
		fmt.Fprintf(os.Stderr, "envtool: %v (bands=%d, max %d)\n", err, nbands, celtenv.MaxBands)
		os.Exit(2)
	}
	dec, err := celtenv.NewDecoder(1, nbands)
	if err != nil {
		panic(err)
	}

	eBands := make([]int16, nbands)
	for i, v := range input {
		eBands[i] = int16(v)
	}

	re := &rangecoding.Encoder{}
	re.Init(make([]byte, size))
	intra := enc.QuantCoarseEnergy(re, eBands, celtenv.CoarseParams{
		End:              nbands,
		EffEnd:           nbands,
		NBAvailableBytes: size,
		TwoPass:          true,
	})
	coarseBits := re.Tell()

	// Uniform fine depth from whatever the coarse pass left over, with one
	// finalise bit reserved per band.
	fq := (re.StorageBits() - coarseBits - nbands) / nbands
	fq = max(0, min(fq, 7))
	fineQuant := make([]int, nbands)
	finePriority := make([]int, nbands)
	for i := range fineQuant {
		fineQuant[i] = fq
		finePriority[i] = i & 1
	}
	enc.QuantFineEnergy(re, 0, nbands, fineQuant)
	fineBits := re.Tell() - coarseBits
	enc.QuantEnergyFinalise(re, 0, nbands, fineQuant, finePriority,
		re.StorageBits()-re.Tell())

	frame := re.Done()
	fmt.Printf("frame: %d bytes, intra=%v, coarse=%d bits, fine=%d bits (fq=%d), tell=%d\n",
		len(frame), intra, coarseBits, fineBits, fq, re.Tell())
	n := min(len(frame), 16)
	fmt.Printf("first%d: % X\n", n, frame[:n])

	rd := &rangecoding.Decoder{}
	rd.Init(frame)
	decIntra := dec.UnquantCoarseEnergy(rd, 0, nbands, 0)
	dec.UnquantFineEnergy(rd, 0, nbands, fineQuant)
	dec.UnquantEnergyFinalise(rd, 0, nbands, fineQuant, finePriority,
		rd.StorageBits()-rd.Tell())

	match := decIntra == intra
	for i := 0; i < nbands; i++ {
		out := enc.Energy()[i]
		fmt.Printf(" band %2d: in=%6d coded=%6d diff=%5d\n",
			i, eBands[i], out, int(out)-int(eBands[i]))
		if dec.Energy()[i] != out {
			match = false
		}
	}
	fmt.Printf("decode match: %v (tell enc=%d dec=%d)\n", match, re.Tell(), rd.Tell())
}
