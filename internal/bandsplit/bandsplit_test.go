package bandsplit

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/stijn-volckaert/openal-soft/internal/testutil"
)

// testF0 is a typical crossover placement: 400 Hz at a 48 kHz rate.
const testF0 = 400.0 / 48000.0

func TestSplitBandsSumToAllpass(t *testing.T) {
	// The defining invariant: per sample, high + low equals the all-pass
	// section's output, so recombining the bands is phase coherent.
	const n = 1024
	rng := rand.New(rand.NewSource(1))
	input := make([]float64, n)
	for i := range input {
		input[i] = rng.Float64()*2 - 1
	}

	s := New(testF0)
	hp := make([]float64, n)
	lp := make([]float64, n)
	s.Process(hp, lp, input)

	ap := make([]float64, n)
	copy(ap, input)
	New(testF0).ApplyAllpass(ap)

	for i := range input {
		assert.InDelta(t, ap[i], hp[i]+lp[i], 1e-12, "sample %d", i)
	}
}

func TestSplitPreservesMagnitudeSpectrum(t *testing.T) {
	// The all-pass recombination must not color the signal: the magnitude
	// spectrum of high + low matches the input's at every bin.
	const n = 2048
	rng := rand.New(rand.NewSource(7))
	input := make([]float64, n)
	for i := range input {
		input[i] = rng.Float64()*2 - 1
	}

	s := New(testF0)
	hp := make([]float64, n)
	lp := make([]float64, n)
	s.Process(hp, lp, input)

	sum := make([]float64, n)
	for i := range sum {
		sum[i] = hp[i] + lp[i]
	}

	fft := fourier.NewFFT(n)
	inSpec := fft.Coefficients(nil, input)
	outSpec := fft.Coefficients(nil, sum)

	// Skip the lowest bins where the filter's startup transient dominates a
	// finite window.
	for k := 4; k < len(inSpec); k++ {
		inMag := cmplx.Abs(inSpec[k])
		outMag := cmplx.Abs(outSpec[k])
		assert.InDelta(t, inMag, outMag, 0.05*inMag+0.5, "bin %d", k)
	}
}

func TestSplitBandSeparation(t *testing.T) {
	const n = 4096
	s := New(testF0)
	hp := make([]float64, n)
	lp := make([]float64, n)

	// A deep sub-crossover tone lands in the low band.
	low := make([]float64, n)
	for i := range low {
		low[i] = math.Sin(2 * math.Pi * 50.0 / 48000.0 * float64(i))
	}
	s.Process(hp, lp, low)
	assert.Greater(t, testutil.Energy(lp[n/2:]), 100*testutil.Energy(hp[n/2:]))

	// A tone well above the crossover lands in the high band.
	s.Clear()
	high := make([]float64, n)
	for i := range high {
		high[i] = math.Sin(2 * math.Pi * 8000.0 / 48000.0 * float64(i))
	}
	s.Process(hp, lp, high)
	assert.Greater(t, testutil.Energy(hp[n/2:]), 100*testutil.Energy(lp[n/2:]))
}

func TestClearResetsState(t *testing.T) {
	const n = 256
	input := make([]float64, n)
	input[0] = 1

	s := New(testF0)
	hp1 := make([]float64, n)
	lp1 := make([]float64, n)
	s.Process(hp1, lp1, input)

	s.Clear()
	hp2 := make([]float64, n)
	lp2 := make([]float64, n)
	s.Process(hp2, lp2, input)

	assert.Equal(t, hp1, hp2)
	assert.Equal(t, lp1, lp2)
}

func TestApplyAllpassPreservesEnergyAndState(t *testing.T) {
	const n = 4096
	rng := rand.New(rand.NewSource(3))
	input := make([]float64, n)
	for i := range input {
		input[i] = rng.Float64()*2 - 1
	}

	s := New(testF0)
	s.lpZ1, s.lpZ2, s.apZ1 = 0.25, -0.5, 0.75

	buf := make([]float64, n)
	copy(buf, input)
	s.ApplyAllpass(buf)

	// The section is all-pass: energy passes through (up to edge effects).
	assert.InEpsilon(t, testutil.Energy(input), testutil.Energy(buf), 0.01)

	// The in-place pass never disturbs the splitter's own state.
	assert.Equal(t, 0.25, s.lpZ1)
	assert.Equal(t, -0.5, s.lpZ2)
	assert.Equal(t, 0.75, s.apZ1)
}

func TestNewQuarterBandCoefficient(t *testing.T) {
	// At a quarter-band crossover the cos term vanishes; the coefficient
	// derivation must stay finite and small.
	s := New(0.25)
	assert.False(t, math.IsNaN(s.coeff))
	assert.False(t, math.IsInf(s.coeff, 0))
	assert.LessOrEqual(t, math.Abs(s.coeff), 1.0)
}
