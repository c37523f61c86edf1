// Package image provides the floating-point buffers, mip pyramids and
// texture sampling used by the bloom passes.
//
// Buffers store straight (non-premultiplied) RGBA with one float32 per
// channel, so intermediate results may exceed [0, 1] without clipping.
package image

import (
	"errors"
	"math"
)

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrTooLarge is returned when width*height*4 does not fit in an int.
	ErrTooLarge = errors.New("image: dimensions too large")
)

// Channels is the number of float32 values per pixel.
const Channels = 4

// Buf is a float32 RGBA pixel buffer laid out row by row without padding.
//
// Thread safety: Buf is safe for concurrent reads. Concurrent writers must
// touch disjoint rows.
type Buf struct {
	pix    []float32
	width  int
	height int
}

// NewBuf creates a zeroed buffer with the given dimensions.
func NewBuf(width, height int) (*Buf, error) {
	n, err := PixLen(width, height)
	if err != nil {
		return nil, err
	}
	return &Buf{
		pix:    make([]float32, n),
		width:  width,
		height: height,
	}, nil
}

// FromRaw wraps existing pixel data without copying.
// The caller must keep pix valid for the lifetime of the Buf.
func FromRaw(pix []float32, width, height int) (*Buf, error) {
	n, err := PixLen(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) < n {
		return nil, ErrDataTooSmall
	}
	return &Buf{
		pix:    pix[:n],
		width:  width,
		height: height,
	}, nil
}

// PixLen returns the number of float32 values needed for a width x height
// buffer, guarding against non-positive sizes and int overflow.
func PixLen(width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, ErrInvalidDimensions
	}
	if width > math.MaxInt/Channels/height {
		return 0, ErrTooLarge
	}
	return width * height * Channels, nil
}

// Clone creates a deep copy of the buffer.
func (b *Buf) Clone() *Buf {
	pix := make([]float32, len(b.pix))
	copy(pix, b.pix)
	return &Buf{pix: pix, width: b.width, height: b.height}
}

// Width returns the buffer width in pixels.
func (b *Buf) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *Buf) Height() int {
	return b.height
}

// Bounds returns the buffer dimensions as (width, height).
func (b *Buf) Bounds() (int, int) {
	return b.width, b.height
}

// Pix returns the raw pixel slice.
func (b *Buf) Pix() []float32 {
	return b.pix
}

// Row returns the pixel values of row y, or nil if y is out of bounds.
func (b *Buf) Row(y int) []float32 {
	if y < 0 || y >= b.height {
		return nil
	}
	start := y * b.width * Channels
	return b.pix[start : start+b.width*Channels]
}

// Offset returns the index of pixel (x, y) in Pix, or -1 if out of bounds.
func (b *Buf) Offset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return (y*b.width + x) * Channels
}

// At returns the pixel at (x, y). Out-of-bounds reads return zero.
func (b *Buf) At(x, y int) [4]float32 {
	i := b.Offset(x, y)
	if i < 0 {
		return [4]float32{}
	}
	return [4]float32{b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]}
}

// AtClamped returns the pixel at (x, y) with coordinates clamped to the edge.
func (b *Buf) AtClamped(x, y int) [4]float32 {
	x = clamp(x, 0, b.width-1)
	y = clamp(y, 0, b.height-1)
	i := (y*b.width + x) * Channels
	return [4]float32{b.pix[i], b.pix[i+1], b.pix[i+2], b.pix[i+3]}
}

// Set writes the pixel at (x, y). Out-of-bounds writes are ignored.
func (b *Buf) Set(x, y int, c [4]float32) {
	i := b.Offset(x, y)
	if i < 0 {
		return
	}
	b.pix[i] = c[0]
	b.pix[i+1] = c[1]
	b.pix[i+2] = c[2]
	b.pix[i+3] = c[3]
}

// Fill sets every pixel to c.
func (b *Buf) Fill(c [4]float32) {
	for i := 0; i < len(b.pix); i += Channels {
		b.pix[i] = c[0]
		b.pix[i+1] = c[1]
		b.pix[i+2] = c[2]
		b.pix[i+3] = c[3]
	}
}

// Clear sets all pixels to transparent black.
func (b *Buf) Clear() {
	clear(b.pix)
}

// ByteSize returns the memory held by the pixel data in bytes.
func (b *Buf) ByteSize() int {
	return len(b.pix) * 4
}
