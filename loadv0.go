package hrtf

import "fmt"

// loadV0 parses the oldest revision: a single field at distance 0 whose
// header encodes elevation offsets directly; azimuth counts are derived by
// subtracting consecutive offsets. Coefficients are 16-bit fixed point for
// the left ear only.
func loadV0(r *byteReader) (*Store, error) {
	rate := r.u32()
	irCount := r.u16()
	irSize := r.u16()
	evCount := r.u8()
	if !r.ok() {
		return nil, ErrTruncated
	}

	if err := validateIRSize(irSize); err != nil {
		return nil, err
	}
	if err := validateEvCount(evCount); err != nil {
		return nil, err
	}

	irOffsets := make([]uint16, evCount)
	for i := range irOffsets {
		irOffsets[i] = r.u16()
	}
	if !r.ok() {
		return nil, ErrTruncated
	}
	for i := 1; i < int(evCount); i++ {
		if irOffsets[i] <= irOffsets[i-1] {
			return nil, fmt.Errorf("%w: evOffset[%d]=%d (last=%d)",
				ErrNotMonotonic, i, irOffsets[i], irOffsets[i-1])
		}
	}
	last := irOffsets[evCount-1]
	if irCount <= last {
		return nil, fmt.Errorf("%w: evOffset[%d]=%d (irCount=%d)",
			ErrBadHeader, evCount-1, last, irCount)
	}

	azCounts := make([]uint16, evCount)
	for i := 1; i < int(evCount); i++ {
		azCounts[i-1] = irOffsets[i] - irOffsets[i-1]
		if err := validateAzCount(i-1, azCounts[i-1]); err != nil {
			return nil, err
		}
	}
	azCounts[evCount-1] = irCount - last
	if err := validateAzCount(int(evCount)-1, azCounts[evCount-1]); err != nil {
		return nil, err
	}

	coeffs := make([][2]float32, int(irCount)*int(irSize))
	for i := range coeffs {
		coeffs[i][0] = float32(r.i16()) / scaleS16
	}
	delays := make([][2]uint8, irCount)
	if err := readDelays(r, delays, 0); err != nil {
		return nil, err
	}

	mirrorLeftEar(int(irSize), azCounts, irOffsets, coeffs, delays)

	return newStore(rate, irSize, []uint16{0}, []uint8{evCount},
		azCounts, irOffsets, coeffs, delays), nil
}
