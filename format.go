package hrtf

import "encoding/binary"

// Magic markers, 8 ASCII bytes each. The revision is selected once from the
// marker at the top of loading, newest first.
const (
	magicMarkerV0 = "MinPHR00"
	magicMarkerV1 = "MinPHR01"
	magicMarkerV2 = "MinPHR02"

	magicLen = 8
)

// Sample and channel encoding selectors used by the newest revision.
const (
	sampleTypeS16 = 0
	sampleTypeS24 = 1

	chanTypeLeftOnly  = 0
	chanTypeLeftRight = 1
)

// Fixed-point coefficient scales.
const (
	scaleS16 = 32768.0
	scaleS24 = 8388608.0
)

// byteReader consumes little-endian fields from an in-memory data blob. A
// short read marks the reader truncated and yields zero values; callers check
// ok() after each header group before acting on the values, mirroring the
// validate-before-payload contract of the loaders.
type byteReader struct {
	buf       []byte
	pos       int
	truncated bool
}

func (r *byteReader) ok() bool { return !r.truncated }

func (r *byteReader) take(n int) []byte {
	if r.pos+n > len(r.buf) {
		r.truncated = true
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *byteReader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *byteReader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *byteReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *byteReader) i16() int16 {
	return int16(r.u16())
}

// i24 reads a 3-byte signed little-endian sample.
func (r *byteReader) i24() int32 {
	b := r.take(3)
	if b == nil {
		return 0
	}
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	return (v ^ 0x800000) - 0x800000
}
