package hrtf

import (
	"fmt"
	"math"

	"github.com/stijn-volckaert/openal-soft/internal/bandsplit"
)

// MaxAmbiChannels is the highest ambisonic channel count the decoder builder
// supports (third order).
const MaxAmbiChannels = 16

// orderFromChan maps an ACN channel index to its ambisonic order.
var orderFromChan = [MaxAmbiChannels]int{
	0, 1, 1, 1, 2, 2, 2, 2, 2, 3, 3, 3, 3, 3, 3, 3,
}

// decoderBaseDelay is the whole-sample latency added to every direction's
// delay, compensating for the group delay the high-frequency scaling stage
// introduces on the minimum-phase responses.
const decoderBaseDelay = 16

// xoverFreq is the dual-band crossover frequency in Hz.
const xoverFreq = 400.0

// AngularPoint is one sample direction for ambisonic decoding, as polar
// angles in radians.
type AngularPoint struct {
	Elev float32
	Azim float32
}

// Decoder is a fixed per-ambisonic-channel stereo filter bank, ready for
// direct convolution. It is immutable once returned by BuildDecoder.
type Decoder struct {
	// IRSize is the usable filter length in samples, a multiple of the
	// format's length modulus.
	IRSize uint32

	// Coeffs holds one stereo response of HRIRLength taps per ambisonic
	// channel.
	Coeffs [][][2]float32
}

// impulseResponse is the raw blended response for one sample direction,
// accumulated in double precision, with its per-ear fixed-point delays.
type impulseResponse struct {
	hrir   [HRIRLength][2]float64
	ldelay uint32
	rdelay uint32
}

// BuildDecoder precomputes the stereo filter bank that renders channels
// ambisonic channels to binaural audio. Each sample direction's response is
// blended from the table's first field, dual-band split with phase
// correction, scaled by the direction's decode-matrix row and the per-order
// high-frequency gains, and accumulated into the per-channel filters at its
// normalized delay offset.
//
// matrix must hold one row per point with at least channels weights each;
// hfGains must cover ambisonic orders 0-3. BuildDecoder is executed once per
// output layout change, not per audio frame.
func BuildDecoder(s *Store, points []AngularPoint, matrix [][]float32, hfGains []float32, channels int) (*Decoder, error) {
	if channels < 1 || channels > MaxAmbiChannels {
		return nil, fmt.Errorf("hrtf: decoder channel count %d out of range [1, %d]",
			channels, MaxAmbiChannels)
	}
	if len(matrix) < len(points) {
		return nil, fmt.Errorf("hrtf: decode matrix has %d rows for %d points",
			len(matrix), len(points))
	}
	const maxOrder = 3
	if len(hfGains) < maxOrder+1 {
		return nil, fmt.Errorf("hrtf: %d high-frequency gains, need %d",
			len(hfGains), maxOrder+1)
	}

	minDelay := uint32(historyLength * delayFracOne)
	maxDelay := uint32(0)
	impres := make([]impulseResponse, len(points))
	for i, pt := range points {
		res := &impres[i]
		s.blendPoint(pt, res)

		minDelay = min(minDelay, min(res.ldelay, res.rdelay))
		maxDelay = max(maxDelay, max(res.ldelay, res.rdelay))
	}

	// Temp buffers sized for the all-pass pre-ringing: the response sits at
	// the tail of a 4x window so the backwards phase-shift has room to decay.
	const fltLen = HRIRLength * 4
	var tmpflt [3][fltLen]float64
	tmpres := make([][HRIRLength][2]float64, channels)

	splitter := bandsplit.New(xoverFreq / float64(s.sampleRate))

	for c := range points {
		hrir := &impres[c].hrir
		ldelay := delayRound(impres[c].ldelay-minDelay) + decoderBaseDelay
		rdelay := delayRound(impres[c].rdelay-minDelay) + decoderBaseDelay

		for ear := 0; ear < 2; ear++ {
			// Load the response backwards into the padded buffer, apply the
			// all-pass and reverse the result: the forward response now
			// carries a backwards phase-shift that the band-splitter's own
			// phase rotation will cancel.
			buf := &tmpflt[2]
			for i := range buf {
				buf[i] = 0
			}
			for i := 0; i < HRIRLength; i++ {
				buf[HRIRLength-1-i] = hrir[i][ear]
			}

			splitter.ApplyAllpass(buf[:])
			for i, j := 0, fltLen-1; i < j; i, j = i+1, j-1 {
				buf[i], buf[j] = buf[j], buf[i]
			}

			splitter.Clear()
			splitter.Process(tmpflt[0][:], tmpflt[1][:], buf[:])

			delay := ldelay
			if ear == 1 {
				delay = rdelay
			}

			// Accumulate into every channel with the decode weight, scaling
			// only the high band by the order's HF gain.
			for i := 0; i < channels; i++ {
				mult := float64(matrix[c][i])
				hfgain := float64(hfGains[orderFromChan[i]])
				j := fltLen - HRIRLength - int(delay)
				for k := 0; k < HRIRLength; k++ {
					tmpres[i][k][ear] += (tmpflt[0][j]*hfgain + tmpflt[1][j]) * mult
					j++
				}
			}
		}
	}

	dec := &Decoder{Coeffs: make([][][2]float32, channels)}
	for i := range dec.Coeffs {
		out := make([][2]float32, HRIRLength)
		for k := 0; k < HRIRLength; k++ {
			out[k][0] = float32(tmpres[i][k][0])
			out[k][1] = float32(tmpres[i][k][1])
		}
		dec.Coeffs[i] = out
	}

	// The HF scaling head and tail extend the response by the base delay on
	// each side; truncate whatever falls beyond the writable window.
	maxDelay -= minDelay
	irSize := min(s.irSize+decoderBaseDelay*2, HRIRLength)
	maxLength := min(delayRound(maxDelay)+irSize, HRIRLength)
	dec.IRSize = roundUpIRSize(maxLength)

	return dec, nil
}

// blendPoint computes the four-corner bilinear blend for one sample
// direction against the table's first field, carried out in double precision
// since results accumulate across many directions.
func (s *Store) blendPoint(pt AngularPoint, res *impulseResponse) {
	field := s.fields[0]

	elev0 := calcEvIndex(uint32(field.EvCount), pt.Elev)
	elev1idx := elev0.idx + 1
	if elev1idx > uint32(field.EvCount)-1 {
		elev1idx = uint32(field.EvCount) - 1
	}
	ir0 := uint32(s.elevs[elev0.idx].IROffset)
	ir1 := uint32(s.elevs[elev1idx].IROffset)

	az0count := uint32(s.elevs[elev0.idx].AzCount)
	az1count := uint32(s.elevs[elev1idx].AzCount)
	az0 := calcAzIndex(az0count, pt.Azim)
	az1 := calcAzIndex(az1count, pt.Azim)

	idx := [4]uint32{
		ir0 + az0.idx,
		ir0 + (az0.idx+1)%az0count,
		ir1 + az1.idx,
		ir1 + (az1.idx+1)%az1count,
	}
	blend := [4]float64{
		float64(1-elev0.blend) * float64(1-az0.blend),
		float64(1-elev0.blend) * float64(az0.blend),
		float64(elev0.blend) * float64(1-az1.blend),
		float64(elev0.blend) * float64(az1.blend),
	}

	var d float64
	for c := 0; c < 4; c++ {
		d += float64(s.delays[idx[c]][0]) * blend[c]
	}
	res.ldelay = uint32(math.Floor(d + 0.5))
	d = 0
	for c := 0; c < 4; c++ {
		d += float64(s.delays[idx[c]][1]) * blend[c]
	}
	res.rdelay = uint32(math.Floor(d + 0.5))

	for c := 0; c < 4; c++ {
		row := s.response(int(idx[c]))
		mult := blend[c]
		for i := 0; i < HRIRLength; i++ {
			res.hrir[i][0] += float64(row[i*2]) * mult
			res.hrir[i][1] += float64(row[i*2+1]) * mult
		}
	}
}
