// Package bandsplit implements a phase-matched two-band crossover filter.
//
// The splitter separates a signal into low and high frequency bands that sum
// back to an all-passed copy of the input: the high band is formed by
// subtracting the low-pass output from a first-order all-pass section whose
// phase matches the two-stage low-pass. Feeding a time-reversed signal
// through ApplyAllpass before splitting cancels the splitter's inherent phase
// rotation, which the HRTF decoder builder relies on.
package bandsplit

import "math"

// epsilon guards the coefficient derivation against a vanishing cos term at
// a quarter-band crossover.
const epsilon = 1.1920929e-7

// Splitter splits a signal into low and high bands around a fixed crossover
// frequency. The zero value is not usable; construct with New.
type Splitter struct {
	coeff float64
	lpZ1  float64
	lpZ2  float64
	apZ1  float64
}

// New returns a splitter with its crossover at f0norm, the crossover
// frequency divided by the sample rate.
func New(f0norm float64) *Splitter {
	w := f0norm * 2 * math.Pi
	cw := math.Cos(w)

	s := &Splitter{}
	if cw > epsilon {
		s.coeff = (math.Sin(w) - 1) / cw
	} else {
		s.coeff = cw * -0.5
	}
	return s
}

// Clear resets the filter state without changing the crossover.
func (s *Splitter) Clear() {
	s.lpZ1 = 0
	s.lpZ2 = 0
	s.apZ1 = 0
}

// Process splits input into its high and low bands. hpOut and lpOut must be
// at least as long as input. Recombining the two bands reproduces the input
// signal through the splitter's all-pass response.
func (s *Splitter) Process(hpOut, lpOut, input []float64) {
	apCoeff := s.coeff
	lpCoeff := s.coeff*0.5 + 0.5
	lpZ1, lpZ2, apZ1 := s.lpZ1, s.lpZ2, s.apZ1

	for i, in := range input {
		// Two cascaded one-pole stages form the second-order low-pass.
		d := (in - lpZ1) * lpCoeff
		lpY := lpZ1 + d
		lpZ1 = lpY + d

		d = (lpY - lpZ2) * lpCoeff
		lpY = lpZ2 + d
		lpZ2 = lpY + d

		lpOut[i] = lpY

		// First-order all-pass with matching phase; the high band is its
		// output minus the low band.
		apY := in*apCoeff + apZ1
		apZ1 = in - apY*apCoeff

		hpOut[i] = apY - lpY
	}

	s.lpZ1, s.lpZ2, s.apZ1 = lpZ1, lpZ2, apZ1
}

// ApplyAllpass runs the splitter's all-pass section over buf in place,
// starting from cleared state and leaving the splitter state untouched.
func (s *Splitter) ApplyAllpass(buf []float64) {
	coeff := s.coeff
	z1 := 0.0
	for i, x := range buf {
		out := x*coeff + z1
		z1 = x - out*coeff
		buf[i] = out
	}
}
