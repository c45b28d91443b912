// Command mhr-info inspects an HRTF data file and prints its layout.
//
// Usage:
//
//	mhr-info file.mhr
//	mhr-info -v file.mhr    # include per-elevation azimuth counts
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	hrtf "github.com/stijn-volckaert/openal-soft"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	verbose := flag.Bool("v", false, "Print per-elevation azimuth counts")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] file.mhr\n\n", os.Args[0])
		flag.PrintDefaults()
		return fmt.Errorf("missing input file")
	}
	path := flag.Arg(0)

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	store, err := hrtf.LoadStore(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	fields := store.Fields()
	elevs := store.Elevations()

	irCount := 0
	for _, ev := range elevs {
		irCount += int(ev.AzCount)
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  Sample rate:   %d Hz\n", store.SampleRate())
	fmt.Printf("  IR length:     %d samples\n", store.IRSize())
	fmt.Printf("  Fields:        %d\n", len(fields))
	fmt.Printf("  Elevations:    %d\n", len(elevs))
	fmt.Printf("  Responses:     %d\n", irCount)

	if !*verbose {
		return nil
	}

	ebase := 0
	for f, field := range fields {
		fmt.Printf("  Field %d: distance %.3f m, %d elevations\n",
			f, field.Distance, field.EvCount)
		for e := 0; e < int(field.EvCount); e++ {
			fmt.Printf("    elevation %3d: %3d azimuths (offset %d)\n",
				e, elevs[ebase+e].AzCount, elevs[ebase+e].IROffset)
		}
		ebase += int(field.EvCount)
	}
	return nil
}
