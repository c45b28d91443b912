package resample

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stijn-volckaert/openal-soft/internal/testutil"
)

func TestBesselI0KnownValues(t *testing.T) {
	// Reference values for the modified Bessel function I0.
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 1.0},
		{1, 1.2660658777520084},
		{2, 2.2795853023360673},
		{3.75, 9.118945800838637},
		{5, 27.239871823604442},
		{10, 2815.716628466254},
	}
	for _, tc := range tests {
		got := besselI0(tc.x)
		assert.InEpsilon(t, tc.want, got, 1e-6, "I0(%g)", tc.x)
	}

	// The function is even.
	assert.Equal(t, besselI0(2.5), besselI0(-2.5))
}

func TestKaiserBetaRegimes(t *testing.T) {
	// High attenuation uses the linear formula.
	assert.InDelta(t, 0.1102*(120-8.7), kaiserBeta(120), 1e-12)

	// Low attenuation degenerates to a rectangular window.
	assert.Equal(t, 0.0, kaiserBeta(10))

	// The estimate increases with the attenuation target.
	assert.Greater(t, kaiserBeta(120), kaiserBeta(60))
	assert.Greater(t, kaiserBeta(40), kaiserBeta(25))
}

func TestKaiserLengthIsOddAndScales(t *testing.T) {
	n1 := kaiserLength(120, 0.01)
	n2 := kaiserLength(120, 0.005)

	assert.Equal(t, 1, n1%2)
	assert.Equal(t, 1, n2%2)

	// Halving the transition band roughly doubles the length.
	assert.InEpsilon(t, 2.0, float64(n2)/float64(n1), 0.05)
}

func TestKaiserWindowedSinc(t *testing.T) {
	const length = 101
	filter := kaiserWindowedSinc(length, 0.25, 10.0, 1.0)

	testutil.AssertNoNaNOrInf(t, filter)

	// Linear phase: symmetric around the center tap, which is the peak.
	for i := 0; i < length/2; i++ {
		assert.InDelta(t, filter[i], filter[length-1-i], 1e-12, "tap %d", i)
	}
	assert.Equal(t, length/2, testutil.PeakIndex(filter))

	// Normalized to the requested DC gain.
	var sum float64
	for _, c := range filter {
		sum += c
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// A doubled gain scales every tap.
	double := kaiserWindowedSinc(length, 0.25, 10.0, 2.0)
	for i := range filter {
		assert.InDelta(t, filter[i]*2, double[i], 1e-12)
	}
}

func TestKaiserWindowedSincHalfBandZeros(t *testing.T) {
	// At cutoff 0.25 the ideal sinc zeroes out every second tap away from
	// the center; the window preserves those zeros.
	const length = 33
	filter := kaiserWindowedSinc(length, 0.25, 8.0, 1.0)
	center := length / 2
	for i := center % 2; i < length; i += 2 {
		if i == center {
			continue
		}
		assert.InDelta(t, 0.0, filter[i], 1e-12, "tap %d", i)
	}
}

func TestKaiserWindowStopband(t *testing.T) {
	// The designed prototype must actually meet a strong attenuation target:
	// evaluate the frequency response directly in the stopband.
	beta := kaiserBeta(120)
	taps := kaiserLength(120, 0.05)
	filter := kaiserWindowedSinc(taps, 0.2, beta, 1.0)

	for _, f := range []float64{0.28, 0.33, 0.4, 0.48} {
		re, im := 0.0, 0.0
		for n, c := range filter {
			re += c * math.Cos(2*math.Pi*f*float64(n))
			im -= c * math.Sin(2*math.Pi*f*float64(n))
		}
		mag := 20 * math.Log10(math.Hypot(re, im))
		assert.Less(t, mag, -100.0, "frequency %g", f)
	}
}
