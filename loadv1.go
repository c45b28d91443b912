package hrtf

// loadV1 parses the mid revision: a single field at distance 0 whose header
// encodes per-elevation azimuth counts directly; response offsets are derived
// by prefix sum. Coefficients are 16-bit fixed point for the left ear only.
func loadV1(r *byteReader) (*Store, error) {
	rate := r.u32()
	irSize := uint16(r.u8())
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

	azCounts := make([]uint16, evCount)
	for i := range azCounts {
		azCounts[i] = uint16(r.u8())
	}
	if !r.ok() {
		return nil, ErrTruncated
	}
	for i, az := range azCounts {
		if err := validateAzCount(i, az); err != nil {
			return nil, err
		}
	}

	irOffsets := make([]uint16, evCount)
	irCount := azCounts[0]
	for i := 1; i < int(evCount); i++ {
		irOffsets[i] = irOffsets[i-1] + azCounts[i-1]
		irCount += azCounts[i]
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
