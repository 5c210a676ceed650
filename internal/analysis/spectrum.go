package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/san-kum/cuspsim/internal/dynamo"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is the one-sided amplitude spectrum of a uniformly sampled series.
type Spectrum struct {
	Frequencies []float64
	Amplitudes  []float64
}

// NewSpectrum transforms samples taken every dt seconds. The mean is removed
// first so the DC bin only carries rounding noise.
func NewSpectrum(samples []float64, dt float64) Spectrum {
	n := len(samples)
	if n < 2 || !(dt > 0) {
		return Spectrum{}
	}

	mean := stat.Mean(samples, nil)
	centred := make([]float64, n)
	for i, v := range samples {
		centred[i] = v - mean
	}

	coeffs := fft.FFTReal(centred)
	bins := n/2 + 1
	s := Spectrum{
		Frequencies: make([]float64, bins),
		Amplitudes:  make([]float64, bins),
	}
	for k := 0; k < bins; k++ {
		s.Frequencies[k] = float64(k) / (float64(n) * dt)
		s.Amplitudes[k] = cmplx.Abs(coeffs[k]) / float64(n)
	}
	return s
}

// Dominant returns the frequency of the strongest non-DC bin, or 0 when the
// spectrum has no such bin.
func (s Spectrum) Dominant() float64 {
	best, freq := 0.0, 0.0
	for k := 1; k < len(s.Amplitudes); k++ {
		if s.Amplitudes[k] > best {
			best, freq = s.Amplitudes[k], s.Frequencies[k]
		}
	}
	return freq
}

// CyclotronFrequency returns qm*|B|/(2 pi) in hertz.
func CyclotronFrequency(chargeToMass, b float64) float64 {
	return math.Abs(chargeToMass*b) / (2 * math.Pi)
}

// Series extracts one coordinate of particle i from every snapshot.
func Series(history []dynamo.Snapshot, i int, coord func(dynamo.Electron) float64) []float64 {
	out := make([]float64, 0, len(history))
	for _, s := range history {
		if i < len(s.Particles) {
			out = append(out, coord(s.Particles[i]))
		}
	}
	return out
}

// Coordinate accessors for Series.
var (
	CoordX      = func(e dynamo.Electron) float64 { return e.Position.X }
	CoordY      = func(e dynamo.Electron) float64 { return e.Position.Y }
	CoordZ      = func(e dynamo.Electron) float64 { return e.Position.Z }
	CoordRadius = func(e dynamo.Electron) float64 { return e.Radius() }
	CoordSpeed  = func(e dynamo.Electron) float64 { return e.Speed() }
)
