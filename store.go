package hrtf

import (
	"math"
	"sync/atomic"
)

// Data set limits. These must be at least as permissive as the limits the
// authoring tools enforce, so every valid file remains loadable.
const (
	minIRSize = 8
	maxIRSize = 512

	// modIRSize is the length modulus: impulse responses always contain an
	// even number of taps, and derived lengths are rounded up to it.
	modIRSize = 2

	minFieldCount = 1
	maxFieldCount = 16

	// Field distances in the newest format revision, in millimeters.
	minFieldDistance = 50
	maxFieldDistance = 2500

	minEvCount = 5
	maxEvCount = 181

	minAzCount = 1
	maxAzCount = 255
)

// HRIRLength is the padded per-response storage length in samples. It bounds
// the impulse-response size after rate adaptation and decoder construction,
// and is the row length callers must provide to [Store.Coeffs].
const HRIRLength = 1024

// Delay storage. Delays are kept in fixed point with 1/4-sample resolution
// and are bounded by the convolution history length.
const (
	historyLength = 64
	maxHRIRDelay  = historyLength - 1

	delayFracBits = 2
	delayFracOne  = 1 << delayFracBits
	delayFracHalf = delayFracOne >> 1
)

// passthruCoeff is the first tap of the flat pass-through response used for
// omnidirectional (fully spread) sounds: sqrt(0.5) for an equal power split.
const passthruCoeff = 0.70710678118654752440

// hrirStride is the number of float32 values in one stereo response row.
// 2*HRIRLength*4 bytes is a multiple of 16, so every row starts at the same
// alignment within the backing array for vectorized access.
const hrirStride = HRIRLength * 2

// Field groups the measurements taken at one source distance. Multi-distance
// tables store fields with strictly decreasing distance so that the
// interpolator's forward scan ends at the nearest usable field.
type Field struct {
	// Distance is the measurement distance in meters; 0 for single-field
	// format revisions that carry no distance information.
	Distance float32

	// EvCount is the number of elevation rows measured for this field.
	EvCount uint8
}

// Elevation describes one elevation row: how many azimuths were measured and
// where the row's responses begin in the response table.
type Elevation struct {
	AzCount  uint16
	IROffset uint16
}

// Store is an immutable directional-response table: the impulse responses and
// inter-aural delays of one HRTF data set, indexed by field, elevation and
// azimuth.
//
// A Store is never mutated after it has been published by the registry, so
// concurrent reads require no synchronization. Lifetime is managed by the
// registry through an atomic reference count; see [Registry.Release].
type Store struct {
	sampleRate uint32
	irSize     uint32

	fields []Field
	elevs  []Elevation

	// coeffs holds one stereo response row of hrirStride float32 values per
	// (field, elevation, azimuth) triple, interleaved [left, right] pairs,
	// in a single backing allocation.
	coeffs []float32

	// delays holds the matching fixed-point delay pair per response.
	delays [][2]uint8

	refs atomic.Int32
}

// tableLayout is the result of the layout-planning step: all element counts
// are computed and validated from the header before any table storage is
// allocated, so construction either succeeds completely or not at all.
type tableLayout struct {
	fieldCount int
	evTotal    int
	irCount    int
}

// planLayout derives the table layout from per-field elevation counts and the
// flattened per-elevation azimuth counts.
func planLayout(evCounts []uint8, azCounts []uint16) tableLayout {
	lay := tableLayout{fieldCount: len(evCounts)}
	for _, ev := range evCounts {
		lay.evTotal += int(ev)
	}
	for _, az := range azCounts {
		lay.irCount += int(az)
	}
	return lay
}

// newStore builds a Store from fully validated loader output. distances are
// in millimeters (one per field), azCounts and irOffsets are the flattened
// per-elevation values, coeffs holds irCount*irSize stereo taps and delays
// one fixed-point pair per response.
func newStore(rate uint32, irSize uint16, distances []uint16, evCounts []uint8,
	azCounts, irOffsets []uint16, coeffs [][2]float32, delays [][2]uint8) *Store {

	lay := planLayout(evCounts, azCounts)

	s := &Store{
		sampleRate: rate,
		irSize:     uint32(irSize),
		fields:     make([]Field, lay.fieldCount),
		elevs:      make([]Elevation, lay.evTotal),
		coeffs:     make([]float32, lay.irCount*hrirStride),
		delays:     make([][2]uint8, lay.irCount),
	}
	s.refs.Store(1)

	const mmPerMeter = 1000.0
	for i := range s.fields {
		s.fields[i] = Field{
			Distance: float32(distances[i]) / mmPerMeter,
			EvCount:  evCounts[i],
		}
	}
	for i := range s.elevs {
		s.elevs[i] = Elevation{AzCount: azCounts[i], IROffset: irOffsets[i]}
	}

	// Copy each response into its padded row; the tail beyond irSize stays
	// zero so blends may always run over full rows.
	for i := 0; i < lay.irCount; i++ {
		row := s.response(i)
		for j := 0; j < int(irSize); j++ {
			row[j*2] = coeffs[i*int(irSize)+j][0]
			row[j*2+1] = coeffs[i*int(irSize)+j][1]
		}
	}
	copy(s.delays, delays)

	return s
}

// response returns the stereo coefficient row of the i-th impulse response as
// interleaved [left, right] pairs of HRIRLength taps.
func (s *Store) response(i int) []float32 {
	return s.coeffs[i*hrirStride : (i+1)*hrirStride : (i+1)*hrirStride]
}

// irCount returns the total number of stored responses, derived from the last
// elevation row.
func (s *Store) irCount() int {
	last := s.elevs[len(s.elevs)-1]
	return int(last.IROffset) + int(last.AzCount)
}

// SampleRate returns the rate, in Hz, the stored responses are valid for.
func (s *Store) SampleRate() uint32 { return s.sampleRate }

// IRSize returns the impulse-response length in samples.
func (s *Store) IRSize() uint32 { return s.irSize }

// Fields returns a copy of the distance-field table.
func (s *Store) Fields() []Field {
	out := make([]Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Elevations returns a copy of the flattened elevation table across all
// fields.
func (s *Store) Elevations() []Elevation {
	out := make([]Elevation, len(s.elevs))
	copy(out, s.elevs)
	return out
}

// addRef increments the shared ownership count.
func (s *Store) addRef() { s.refs.Add(1) }

// roundUpIRSize rounds a length up to the next multiple of the IR length
// modulus.
func roundUpIRSize(n uint32) uint32 {
	n += modIRSize - 1
	return n - n%modIRSize
}

// delayRound converts a fixed-point delay to whole samples, rounding to
// nearest.
func delayRound(d uint32) uint32 {
	return (d + delayFracHalf) >> delayFracBits
}

// delayBlendRound converts a blended floating-point fixed-point delay to
// whole samples.
func delayBlendRound(d float64) uint32 {
	return uint32(math.Floor(d/delayFracOne + 0.5))
}
