package resample

import "math"

// Kaiser window design constants, following Kaiser & Schafer.
const (
	besselSmallArgThreshold = 3.75

	kaiserAttHigh        = 50.0
	kaiserAttMedium      = 21.0
	kaiserBetaHighCoeff  = 0.1102
	kaiserBetaHighOffset = 8.7
	kaiserBetaMedCoeff1  = 0.5842
	kaiserBetaMedCoeff2  = 0.07886
	kaiserBetaMedPower   = 0.4

	kaiserLengthOffset = 8.0
	kaiserLengthFactor = 2.285
)

// besselI0 computes the zeroth-order modified Bessel function of the first
// kind using the Abramowitz & Stegun polynomial approximations: a direct
// series for small arguments and an exponentially scaled asymptotic expansion
// beyond 3.75.
func besselI0(x float64) float64 {
	ax := math.Abs(x)

	if ax < besselSmallArgThreshold {
		t := x / besselSmallArgThreshold
		t *= t
		return 1.0 + t*(3.5156229+t*(3.0899424+t*(1.2067492+
			t*(0.2659732+t*(0.0360768+t*0.0045813)))))
	}

	t := besselSmallArgThreshold / ax
	poly := 0.39894228 + t*(0.01328592+t*(0.00225319+t*(-0.00157565+
		t*(0.00916281+t*(-0.02057706+t*(0.02635537+
			t*(-0.01647633+t*0.00392377)))))))
	return math.Exp(ax) * poly / math.Sqrt(ax)
}

// kaiserBeta computes the Kaiser window shape parameter for the desired
// stopband attenuation in decibels.
func kaiserBeta(attenuation float64) float64 {
	switch {
	case attenuation > kaiserAttHigh:
		return kaiserBetaHighCoeff * (attenuation - kaiserBetaHighOffset)
	case attenuation >= kaiserAttMedium:
		delta := attenuation - kaiserAttMedium
		return kaiserBetaMedCoeff1*math.Pow(delta, kaiserBetaMedPower) +
			kaiserBetaMedCoeff2*delta
	default:
		return 0
	}
}

// kaiserLength estimates the FIR length needed to reach the attenuation with
// the given normalized transition bandwidth, rounded up to the next odd
// count so the filter is symmetric around a center tap.
func kaiserLength(attenuation, transitionBW float64) int {
	taps := int(math.Ceil((attenuation - kaiserLengthOffset) /
		(kaiserLengthFactor * 2 * math.Pi * transitionBW)))
	if taps%2 == 0 {
		taps++
	}
	return taps
}

// kaiserWindowedSinc designs a linear-phase lowpass prototype of the given
// length: an ideal sinc at the cutoff, shaped by a Kaiser window with the
// given beta, normalized to the given DC gain.
func kaiserWindowedSinc(length int, cutoff, beta, gain float64) []float64 {
	filter := make([]float64, length)
	center := float64(length-1) / 2
	i0beta := besselI0(beta)

	const zeroThreshold = 1e-10
	var sum float64
	for n := range filter {
		x := float64(n) - center

		var sinc float64
		if math.Abs(x) < zeroThreshold {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*x) / (math.Pi * x)
		}

		w := x / center
		window := besselI0(beta*math.Sqrt(1-w*w)) / i0beta

		filter[n] = sinc * window
		sum += filter[n]
	}

	if math.Abs(sum) > zeroThreshold {
		scale := gain / sum
		for n := range filter {
			filter[n] *= scale
		}
	}

	return filter
}
