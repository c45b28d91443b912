// Command hrir-export interpolates the stereo impulse response for a given
// direction from an HRTF data file and writes it as a 16-bit WAV file, for
// listening tests and filter inspection.
//
// Usage:
//
//	hrir-export -elev 0 -azim 90 file.mhr out.wav
//	hrir-export -elev -30 -azim 45 -spread 20 file.mhr out.wav
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	hrtf "github.com/stijn-volckaert/openal-soft"
)

const (
	bitDepth  = 16
	pcmFormat = 1
	maxInt16  = 32767.0
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	elevDeg := flag.Float64("elev", 0, "Source elevation in degrees (-90 to 90)")
	azimDeg := flag.Float64("azim", 0, "Source azimuth in degrees (0 = front, 90 = right)")
	distance := flag.Float64("dist", 1.0, "Source distance in meters")
	spreadDeg := flag.Float64("spread", 0, "Source spread in degrees (0 to 360)")
	flag.Parse()

	if flag.NArg() < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file.mhr out.wav\n\n", os.Args[0])
		flag.PrintDefaults()
		return fmt.Errorf("insufficient arguments")
	}
	inPath, outPath := flag.Arg(0), flag.Arg(1)

	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}
	store, err := hrtf.LoadStore(data)
	if err != nil {
		return fmt.Errorf("%s: %w", inPath, err)
	}

	coeffs := make([][2]float32, hrtf.HRIRLength)
	ldelay, rdelay := store.Coeffs(
		float32(*elevDeg*math.Pi/180),
		float32(*azimDeg*math.Pi/180),
		float32(*distance),
		float32(*spreadDeg*math.Pi/180),
		coeffs,
	)

	coeffs = coeffs[:store.IRSize()]

	// Realize each ear's whole-sample onset delay as leading silence.
	lpad := int(ldelay)
	rpad := int(rdelay)
	frames := max(lpad, rpad) + len(coeffs)

	samples := make([]int, frames*2)
	for i, c := range coeffs {
		samples[(lpad+i)*2] = clamp16(c[0])
		samples[(rpad+i)*2+1] = clamp16(c[1])
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	enc := wav.NewEncoder(out, int(store.SampleRate()), bitDepth, 2, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: int(store.SampleRate())},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing %s: %w", outPath, err)
	}

	fmt.Printf("Exported %d-frame stereo response (onset delays L=%d R=%d samples)\n",
		frames, ldelay, rdelay)
	return nil
}

func clamp16(v float32) int {
	s := float64(v)
	if s > 1.0 {
		s = 1.0
	} else if s < -1.0 {
		s = -1.0
	}
	return int(math.Round(s * maxInt16))
}
