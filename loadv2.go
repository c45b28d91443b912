package hrtf

import "fmt"

// loadV2 parses the newest revision: 1-16 distance fields with strictly
// increasing distances, a sample-encoding selector (16 or 24-bit fixed point)
// and a channel selector (left ear mirrored, or true stereo).
func loadV2(r *byteReader) (*Store, error) {
	rate := r.u32()
	sampleType := r.u8()
	channelType := r.u8()
	irSize := uint16(r.u8())
	fdCount := r.u8()
	if !r.ok() {
		return nil, ErrTruncated
	}

	if sampleType > sampleTypeS24 {
		return nil, fmt.Errorf("%w: sample type %d", ErrBadHeader, sampleType)
	}
	if channelType > chanTypeLeftRight {
		return nil, fmt.Errorf("%w: channel type %d", ErrBadHeader, channelType)
	}
	if err := validateIRSize(irSize); err != nil {
		return nil, err
	}
	if fdCount < minFieldCount || fdCount > maxFieldCount {
		return nil, fmt.Errorf("%w: fdCount=%d (%d to %d)",
			ErrBadHeader, fdCount, minFieldCount, maxFieldCount)
	}

	distances := make([]uint16, fdCount)
	evCounts := make([]uint8, fdCount)
	var azCounts []uint16
	for f := 0; f < int(fdCount); f++ {
		distances[f] = r.u16()
		evCounts[f] = r.u8()
		if !r.ok() {
			return nil, ErrTruncated
		}

		if distances[f] < minFieldDistance || distances[f] > maxFieldDistance {
			return nil, fmt.Errorf("%w: distance[%d]=%d (%d to %d millimeters)",
				ErrBadHeader, f, distances[f], minFieldDistance, maxFieldDistance)
		}
		if f > 0 && distances[f] <= distances[f-1] {
			return nil, fmt.Errorf("%w: distance[%d]=%d not after %d",
				ErrNotMonotonic, f, distances[f], distances[f-1])
		}
		if err := validateEvCount(evCounts[f]); err != nil {
			return nil, err
		}

		ebase := len(azCounts)
		for e := 0; e < int(evCounts[f]); e++ {
			azCounts = append(azCounts, uint16(r.u8()))
		}
		if !r.ok() {
			return nil, ErrTruncated
		}
		for e := 0; e < int(evCounts[f]); e++ {
			if err := validateAzCount(ebase+e, azCounts[ebase+e]); err != nil {
				return nil, err
			}
		}
	}

	irOffsets := make([]uint16, len(azCounts))
	for i := 1; i < len(azCounts); i++ {
		irOffsets[i] = irOffsets[i-1] + azCounts[i-1]
	}
	irCount := int(irOffsets[len(irOffsets)-1]) + int(azCounts[len(azCounts)-1])

	coeffs := make([][2]float32, irCount*int(irSize))
	delays := make([][2]uint8, irCount)

	readSample := func() float32 {
		if sampleType == sampleTypeS24 {
			return float32(r.i24()) / scaleS24
		}
		return float32(r.i16()) / scaleS16
	}

	if channelType == chanTypeLeftOnly {
		for i := range coeffs {
			coeffs[i][0] = readSample()
		}
		if err := readDelays(r, delays, 0); err != nil {
			return nil, err
		}
	} else {
		for i := range coeffs {
			coeffs[i][0] = readSample()
			coeffs[i][1] = readSample()
		}
		for i := range delays {
			delays[i][0] = r.u8()
			delays[i][1] = r.u8()
		}
		if !r.ok() {
			return nil, ErrTruncated
		}
		for i := range delays {
			for ear := 0; ear < 2; ear++ {
				if delays[i][ear] > maxHRIRDelay {
					return nil, fmt.Errorf("%w: delays[%d][%d]=%d (max %d)",
						ErrBadHeader, i, ear, delays[i][ear], maxHRIRDelay)
				}
				delays[i][ear] <<= delayFracBits
			}
		}
	}

	if channelType == chanTypeLeftOnly {
		// Mirror field by field; each field's elevation block is mirrored
		// independently.
		ebase := 0
		for f := 0; f < int(fdCount); f++ {
			n := int(evCounts[f])
			mirrorLeftEar(int(irSize), azCounts[ebase:ebase+n],
				irOffsets[ebase:ebase+n], coeffs, delays)
			ebase += n
		}
	}

	if fdCount > 1 {
		distances, evCounts, azCounts, irOffsets, coeffs, delays =
			reverseFields(int(irSize), distances, evCounts, azCounts, coeffs, delays)
	}

	return newStore(rate, irSize, distances, evCounts,
		azCounts, irOffsets, coeffs, delays), nil
}

// reverseFields reorders a multi-field table so the fields are stored with
// decreasing distance: the field list, each field's elevation group, and each
// field's response/delay group are reversed at the group level, preserving
// the original relative order within each elevation's azimuth row. The
// interpolator can then select a distance field with a single forward scan.
func reverseFields(irSize int, distances []uint16, evCounts []uint8,
	azCounts []uint16, coeffs [][2]float32, delays [][2]uint8) (
	[]uint16, []uint8, []uint16, []uint16, [][2]float32, [][2]uint8) {

	fdCount := len(distances)
	distances2 := make([]uint16, fdCount)
	evCounts2 := make([]uint8, fdCount)
	azCounts2 := make([]uint16, len(azCounts))
	coeffs2 := make([][2]float32, len(coeffs))
	delays2 := make([][2]uint8, len(delays))

	for f := 0; f < fdCount; f++ {
		distances2[f] = distances[fdCount-1-f]
		evCounts2[f] = evCounts[fdCount-1-f]
	}

	// Walk the fields in original order, copying each field's elevation
	// group and response/delay group toward the back of the new arrays.
	azEnd := len(azCounts2)
	coeffEnd := len(coeffs2)
	delayEnd := len(delays2)
	ebase, abase := 0, 0
	for f := 0; f < fdCount; f++ {
		numEvs := int(evCounts[f])
		numAzs := 0
		for e := 0; e < numEvs; e++ {
			numAzs += int(azCounts[ebase+e])
		}

		copy(azCounts2[azEnd-numEvs:azEnd], azCounts[ebase:ebase+numEvs])
		azEnd -= numEvs

		copy(coeffs2[coeffEnd-numAzs*irSize:coeffEnd],
			coeffs[abase*irSize:(abase+numAzs)*irSize])
		coeffEnd -= numAzs * irSize

		copy(delays2[delayEnd-numAzs:delayEnd], delays[abase:abase+numAzs])
		delayEnd -= numAzs

		ebase += numEvs
		abase += numAzs
	}

	// Reestablish response offsets for the new elevation ordering.
	irOffsets2 := make([]uint16, len(azCounts2))
	for i := 1; i < len(azCounts2); i++ {
		irOffsets2[i] = irOffsets2[i-1] + azCounts2[i-1]
	}

	return distances2, evCounts2, azCounts2, irOffsets2, coeffs2, delays2
}
