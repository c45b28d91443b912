package hrtf

import "math"

// idxBlend pairs a row index with the fractional blend weight toward the next
// row.
type idxBlend struct {
	idx   uint32
	blend float32
}

// calcEvIndex maps a polar elevation in radians (-pi/2..pi/2) onto an
// elevation row index in [0, evCount-1] and the blend factor toward the next
// row.
func calcEvIndex(evCount uint32, ev float32) idxBlend {
	pos := (math.Pi*0.5 + float64(ev)) * float64(evCount-1) / math.Pi
	idx := uint32(pos)
	if idx > evCount-1 {
		idx = evCount - 1
	}
	return idxBlend{idx: idx, blend: float32(pos - math.Floor(pos))}
}

// calcAzIndex maps a polar azimuth in radians onto an azimuth index in
// [0, azCount) and the blend factor toward the next index, wrapping over the
// full circle.
func calcAzIndex(azCount uint32, az float32) idxBlend {
	const tau = 2 * math.Pi
	pos := (tau + float64(az)) * float64(azCount) / tau
	idx := uint32(pos)
	return idxBlend{idx: idx % azCount, blend: float32(pos - math.Floor(pos))}
}

// Coeffs computes the blended stereo filter coefficients and whole-sample
// delays for the given direction. Elevation and azimuth are polar angles in
// radians, distance is in meters and spread in radians widens the source from
// a point (0) to fully diffuse (2*pi). coeffs must hold HRIRLength stereo
// pairs; it is fully overwritten.
//
// The directional component is a bilinear blend of the four responses
// surrounding the direction, scaled by the energy retained after spreading;
// the remaining energy is carried by a flat pass-through term so the total
// gain stays continuous as spread varies. Coeffs performs no allocation and
// is safe for concurrent use on the same Store.
func (s *Store) Coeffs(elevation, azimuth, distance, spread float32, coeffs [][2]float32) (ldelay, rdelay uint32) {
	const tau = 2 * math.Pi
	dirfact := 1 - spread/tau

	// Select the distance field: fields are stored with decreasing distance,
	// so scan forward while the request is closer than the current field.
	fi := 0
	ebase := uint32(0)
	for distance < s.fields[fi].Distance && fi < len(s.fields)-1 {
		ebase += uint32(s.fields[fi].EvCount)
		fi++
	}
	field := s.fields[fi]

	// Elevation indices.
	elev0 := calcEvIndex(uint32(field.EvCount), elevation)
	elev1idx := elev0.idx + 1
	if elev1idx > uint32(field.EvCount)-1 {
		elev1idx = uint32(field.EvCount) - 1
	}
	ir0 := uint32(s.elevs[ebase+elev0.idx].IROffset)
	ir1 := uint32(s.elevs[ebase+elev1idx].IROffset)

	// Azimuth indices, per elevation row since each row has its own count.
	az0count := uint32(s.elevs[ebase+elev0.idx].AzCount)
	az1count := uint32(s.elevs[ebase+elev1idx].AzCount)
	az0 := calcAzIndex(az0count, azimuth)
	az1 := calcAzIndex(az1count, azimuth)

	// The four responses to blend.
	idx := [4]uint32{
		ir0 + az0.idx,
		ir0 + (az0.idx+1)%az0count,
		ir1 + az1.idx,
		ir1 + (az1.idx+1)%az1count,
	}

	// Bilinear weights, attenuated by the directional energy factor.
	blend := [4]float32{
		(1 - elev0.blend) * (1 - az0.blend) * dirfact,
		(1 - elev0.blend) * az0.blend * dirfact,
		elev0.blend * (1 - az1.blend) * dirfact,
		elev0.blend * az1.blend * dirfact,
	}

	// Blend the fixed-point delays per ear and round to whole samples.
	for ear := 0; ear < 2; ear++ {
		var d float64
		for c := 0; c < 4; c++ {
			d += float64(s.delays[idx[c]][ear]) * float64(blend[c])
		}
		if ear == 0 {
			ldelay = delayBlendRound(d)
		} else {
			rdelay = delayBlendRound(d)
		}
	}

	// Blend the coefficients on top of the spread pass-through term.
	passthru := float32(passthruCoeff) * (1 - dirfact)
	coeffs[0] = [2]float32{passthru, passthru}
	for i := 1; i < HRIRLength; i++ {
		coeffs[i] = [2]float32{}
	}
	irSize := int(s.irSize)
	for c := 0; c < 4; c++ {
		row := s.response(int(idx[c]))
		mult := blend[c]
		for i := 0; i < irSize; i++ {
			coeffs[i][0] += row[i*2] * mult
			coeffs[i][1] += row[i*2+1] * mult
		}
	}

	return ldelay, rdelay
}
