// Package testutil provides reusable helpers for HRTF loader and filter
// tests: a little-endian blob writer for building data files byte by byte,
// and assertions over sample slices.
package testutil

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for filter and interpolation checks.
const (
	DefaultTolerance = 1e-10
	CoeffTolerance   = 1e-6
	EnergyTolerance  = 1e-3
)

// Writer accumulates little-endian binary data, matching the byte layout of
// the HRTF file formats.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the accumulated data.
func (w *Writer) Bytes() []byte { return w.buf.Bytes() }

// Raw appends bytes verbatim.
func (w *Writer) Raw(b []byte) { w.buf.Write(b) }

// Magic appends a format identifier string.
func (w *Writer) Magic(s string) { w.buf.WriteString(s) }

// U8 appends an unsigned byte.
func (w *Writer) U8(v uint8) { w.buf.WriteByte(v) }

// U16 appends a 16-bit little-endian value.
func (w *Writer) U16(v uint16) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
}

// U32 appends a 32-bit little-endian value.
func (w *Writer) U32(v uint32) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v >> 16))
	w.buf.WriteByte(byte(v >> 24))
}

// I16 appends a signed 16-bit little-endian sample.
func (w *Writer) I16(v int16) { w.U16(uint16(v)) }

// I24 appends a signed 24-bit little-endian sample.
func (w *Writer) I24(v int32) {
	w.buf.WriteByte(byte(v))
	w.buf.WriteByte(byte(v >> 8))
	w.buf.WriteByte(byte(v >> 16))
}

// AssertNoNaNOrInf32 verifies that no element of the slice is NaN or Inf.
func AssertNoNaNOrInf32(t *testing.T, s []float32) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no element of the slice is NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float64) bool {
	t.Helper()
	for i, v := range s {
		if math.IsNaN(v) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(v, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllZero verifies that every element of the slice is exactly zero.
func AssertAllZero(t *testing.T, s []float32) bool {
	t.Helper()
	for i, v := range s {
		if v != 0 {
			return assert.Fail(t, "nonzero value", "s[%d]=%f, want 0", i, v)
		}
	}
	return true
}

// PeakIndex returns the index of the sample with the largest magnitude.
func PeakIndex(s []float64) int {
	best, bestAbs := 0, 0.0
	for i, v := range s {
		if a := math.Abs(v); a > bestAbs {
			best, bestAbs = i, a
		}
	}
	return best
}

// Energy returns the sum of squared samples.
func Energy(s []float64) float64 {
	var sum float64
	for _, v := range s {
		sum += v * v
	}
	return sum
}
