package hrtf

import "fmt"

// LoadStore parses one of the supported binary format revisions into a
// validated directional-response table. The revision is selected once from
// the 8-byte magic marker, newest first. On any structural failure the
// partial state is discarded and an error from the format taxonomy is
// returned; a partially populated table is never exposed.
func LoadStore(data []byte) (*Store, error) {
	if len(data) < magicLen {
		return nil, fmt.Errorf("%w: %d bytes is too short for a format marker",
			ErrTruncated, len(data))
	}

	r := &byteReader{buf: data, pos: magicLen}
	switch string(data[:magicLen]) {
	case magicMarkerV2:
		return loadV2(r)
	case magicMarkerV1:
		return loadV1(r)
	case magicMarkerV0:
		return loadV0(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, string(data[:magicLen]))
}

// validateIRSize checks the impulse-response length bound and modulus shared
// by all revisions.
func validateIRSize(irSize uint16) error {
	if irSize < minIRSize || irSize > maxIRSize || irSize%modIRSize != 0 {
		return fmt.Errorf("%w: irSize=%d (%d to %d by %d)",
			ErrBadHeader, irSize, minIRSize, maxIRSize, modIRSize)
	}
	return nil
}

// validateEvCount checks the per-field elevation count bound.
func validateEvCount(evCount uint8) error {
	if evCount < minEvCount || evCount > maxEvCount {
		return fmt.Errorf("%w: evCount=%d (%d to %d)",
			ErrBadHeader, evCount, minEvCount, maxEvCount)
	}
	return nil
}

// validateAzCount checks one elevation row's azimuth count bound.
func validateAzCount(i int, azCount uint16) error {
	if azCount < minAzCount || azCount > maxAzCount {
		return fmt.Errorf("%w: azCount[%d]=%d (%d to %d)",
			ErrBadHeader, i, azCount, minAzCount, maxAzCount)
	}
	return nil
}

// readDelays reads and validates one delay byte per response for a single
// ear, shifting it into fixed-point delay units.
func readDelays(r *byteReader, delays [][2]uint8, ear int) error {
	for i := range delays {
		delays[i][ear] = r.u8()
	}
	if !r.ok() {
		return ErrTruncated
	}
	for i := range delays {
		if delays[i][ear] > maxHRIRDelay {
			return fmt.Errorf("%w: delays[%d]=%d (max %d)",
				ErrBadHeader, i, delays[i][ear], maxHRIRDelay)
		}
		delays[i][ear] <<= delayFracBits
	}
	return nil
}

// mirrorLeftEar synthesizes the right ear from left-only data. Within each
// elevation row, the right-ear response at azimuth index j is the left-ear
// response at index (azCount-j) mod azCount, and likewise for the delay.
func mirrorLeftEar(irSize int, azCounts, irOffsets []uint16, coeffs [][2]float32, delays [][2]uint8) {
	for e := range azCounts {
		offset := int(irOffsets[e])
		azCount := int(azCounts[e])
		for j := 0; j < azCount; j++ {
			lidx := offset + j
			ridx := offset + (azCount-j)%azCount

			for k := 0; k < irSize; k++ {
				coeffs[ridx*irSize+k][1] = coeffs[lidx*irSize+k][0]
			}
			delays[ridx][1] = delays[lidx][0]
		}
	}
}
