// Package hrtf loads head-related transfer function data sets and derives
// the per-source filter coefficients and binaural decoders used for
// spatial audio rendering over headphones.
//
// An HRTF data set is a table of head-related impulse responses (HRIRs)
// measured on a grid of elevations and azimuths, optionally at several
// distances, stored in the compact MinPHR binary format. The package reads
// all three format revisions, interpolates filters for arbitrary
// directions, builds HRTF-filtered ambisonic decoders, and manages the
// loaded tables through a reference-counted registry.
//
// # Quick Start
//
// Enumerate the available data sets and load one at the device rate:
//
//	reg := hrtf.NewRegistry(nil)
//	names := reg.Enumerate("")
//	store, err := reg.Load(names[0], "", 48000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer reg.Release(store)
//
// Derive the stereo filter for a source direction:
//
//	coeffs := make([][2]float32, hrtf.HRIRLength)
//	ldelay, rdelay := store.Coeffs(elevation, azimuth, distance, spread, coeffs)
//
// # Data Sets
//
// Data files use the ".mhr" extension and are discovered under the user's
// configuration directory and the system data directories, or under the
// directories named by the "hrtf-paths" setting. A default data set is
// embedded in the binary so rendering works with no files installed.
//
// # Filter Interpolation
//
// [Store.Coeffs] blends the four HRIRs surrounding the requested direction
// bilinearly, with the ear delays blended in the same proportions. The
// spread parameter widens the source by fading the directional filter
// toward a flat passthrough response.
//
// # Ambisonic Decoding
//
// [BuildDecoder] combines a speaker layout, an ambisonic decoder matrix and
// per-order high-frequency gains into one stereo filter per ambisonic
// channel. The speaker responses are split at 400 Hz with a phase-matched
// band splitter so the dual-band decoder sums without comb filtering.
//
// # Thread Safety
//
// A [Store] is immutable once published and safe for concurrent readers.
// [Registry] methods are safe for concurrent use. The internal resampler
// instances are not shared.
package hrtf
