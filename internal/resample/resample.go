// Package resample provides a band-limited polyphase resampler for
// fixed-length sample blocks, used to adapt HRTF impulse responses between a
// data set's native rate and the playback device rate.
//
// The resampler is one-shot rather than streaming: every call processes a
// complete block with zero-padded boundaries, and the prototype filter's
// group delay is compensated so an impulse at input sample n lands at output
// sample round(n*dstRate/srcRate). That property keeps the separately stored
// HRIR delays consistent with the resampled responses.
package resample

import (
	"math"

	"github.com/tphakala/simd/f64"
)

// Prototype design parameters. The attenuation keeps resampling artifacts
// below the 24-bit sample formats the loaders accept; the transition band is
// measured at the upsampled rate.
const (
	stopbandAttenuation = 120.0
	transitionFraction  = 0.1
	passbandFraction    = 0.9
)

// Rational converts sample blocks between two integer rates. It is not safe
// for concurrent use; create one per goroutine.
type Rational struct {
	interp int // upsampling factor p
	decim  int // downsampling factor q
	taps   int // prototype filter length
	center int // group-delay compensation in upsampled samples
	proto  []float64
	window []float64
	kernel []float64
}

// NewRational creates a resampler for the srcRate to dstRate conversion. The
// rates are reduced by their greatest common divisor before the polyphase
// decomposition, so common conversions keep small phase counts.
func NewRational(srcRate, dstRate uint32) *Rational {
	g := gcd(int(srcRate), int(dstRate))
	p := int(dstRate) / g
	q := int(srcRate) / g

	// Cut off at the narrower of the two Nyquist bands, normalized to the
	// upsampled rate srcRate*p.
	band := 0.5 / float64(max(p, q))
	cutoff := band * passbandFraction
	transition := band * transitionFraction

	beta := kaiserBeta(stopbandAttenuation)
	taps := kaiserLength(stopbandAttenuation, transition)

	// The upsampled signal carries 1/p of the original energy per sample;
	// fold the compensation into the prototype gain.
	proto := kaiserWindowedSinc(taps, cutoff, beta, float64(p))

	// A polyphase branch never exceeds ceil(taps/p) coefficients.
	branchLen := (taps + p - 1) / p

	return &Rational{
		interp: p,
		decim:  q,
		taps:   taps,
		center: (taps - 1) / 2,
		proto:  proto,
		window: make([]float64, 0, branchLen),
		kernel: make([]float64, branchLen),
	}
}

// Ratio returns the conversion ratio dstRate/srcRate.
func (r *Rational) Ratio() float64 {
	return float64(r.interp) / float64(r.decim)
}

// Process resamples in into out. Both blocks are treated as complete
// signals: samples outside in are zero. len(out) determines how many output
// samples are produced; content beyond the scaled input length decays to
// zero with the filter tail.
func (r *Rational) Process(in, out []float64) {
	p, q := r.interp, r.decim

	for i := range out {
		// Position of this output sample on the upsampled grid, shifted by
		// the filter center so the response stays time-aligned.
		t := i*q + r.center

		// Highest contributing input index and its coefficient offset.
		nEnd := t / p
		k0 := t % p

		// Gather the input window (reversed) and the matching polyphase
		// branch so the dot product runs over contiguous memory.
		win := r.window[:0]
		for k := 0; k0+k*p < r.taps; k++ {
			n := nEnd - k
			if n < 0 {
				break
			}
			if n < len(in) {
				win = append(win, in[n])
			} else {
				win = append(win, 0)
			}
		}

		kernel := r.kernel[:len(win)]
		for k := range kernel {
			kernel[k] = r.proto[k0+k*p]
		}

		out[i] = f64.DotProductUnsafe(win, kernel)
	}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Resample is a convenience wrapper for a single conversion.
func Resample(in []float64, srcRate, dstRate uint32, outLen int) []float64 {
	out := make([]float64, outLen)
	NewRational(srcRate, dstRate).Process(in, out)
	return out
}

// ScaleLength converts a sample count between rates, rounding up so no
// response energy is dropped by the length change alone.
func ScaleLength(n int, srcRate, dstRate uint32) int {
	return int(math.Ceil(float64(n) * float64(dstRate) / float64(srcRate)))
}
