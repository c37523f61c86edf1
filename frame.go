package bloom

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"

	intColor "github.com/gogpu/bloom/internal/color"
	intImage "github.com/gogpu/bloom/internal/image"
)

// Frame is a float32 RGBA color buffer: straight (non-premultiplied)
// alpha, four floats per pixel, rows stored top to bottom without padding.
//
// The filter treats values as linear light. Use FromImageLinear to decode
// sRGB images and OutputPass to encode the result for display.
type Frame struct {
	pix    []float32
	width  int
	height int
}

// NewFrame creates a transparent black frame.
func NewFrame(width, height int) (*Frame, error) {
	n, err := intImage.PixLen(width, height)
	if err != nil {
		return nil, frameSizeError("NewFrame", width, height, err)
	}
	return &Frame{pix: make([]float32, n), width: width, height: height}, nil
}

// NewFrameFromPix wraps pix without copying. len(pix) must be at least
// width*height*4.
func NewFrameFromPix(pix []float32, width, height int) (*Frame, error) {
	b, err := intImage.FromRaw(pix, width, height)
	if err != nil {
		return nil, frameSizeError("NewFrameFromPix", width, height, err)
	}
	return &Frame{pix: b.Pix(), width: width, height: height}, nil
}

func frameSizeError(op string, w, h int, err error) error {
	if errors.Is(err, intImage.ErrTooLarge) {
		return fmt.Errorf("bloom: %s %dx%d: %w", op, w, h, ErrResourceExhausted)
	}
	return &ConfigError{Op: op, Width: w, Height: h, PixelSize: 1, Reason: err.Error()}
}

// Width returns the width of the frame.
func (f *Frame) Width() int {
	return f.width
}

// Height returns the height of the frame.
func (f *Frame) Height() int {
	return f.height
}

// Pix returns the raw pixel data.
func (f *Frame) Pix() []float32 {
	return f.pix
}

// GetPixel returns the color at (x, y). Out-of-bounds reads return zero.
func (f *Frame) GetPixel(x, y int) [4]float32 {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return [4]float32{}
	}
	i := (y*f.width + x) * 4
	return [4]float32{f.pix[i], f.pix[i+1], f.pix[i+2], f.pix[i+3]}
}

// SetPixel sets the color at (x, y). Out-of-bounds writes are ignored.
func (f *Frame) SetPixel(x, y int, c [4]float32) {
	if x < 0 || x >= f.width || y < 0 || y >= f.height {
		return
	}
	i := (y*f.width + x) * 4
	copy(f.pix[i:i+4], c[:])
}

// Fill sets every pixel to c.
func (f *Frame) Fill(c [4]float32) {
	for i := 0; i < len(f.pix); i += 4 {
		copy(f.pix[i:i+4], c[:])
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	return &Frame{pix: append([]float32(nil), f.pix...), width: f.width, height: f.height}
}

// buf views the frame as an internal buffer without copying.
func (f *Frame) buf() *intImage.Buf {
	b, _ := intImage.FromRaw(f.pix, f.width, f.height)
	return b
}

// At implements the image.Image interface. Values are clamped to [0,1].
func (f *Frame) At(x, y int) color.Color {
	c := f.GetPixel(x, y)
	return color.NRGBA64{
		R: to16(c[0]),
		G: to16(c[1]),
		B: to16(c[2]),
		A: to16(c[3]),
	}
}

// Bounds implements the image.Image interface.
func (f *Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.width, f.height)
}

// ColorModel implements the image.Image interface.
func (f *Frame) ColorModel() color.Model {
	return color.NRGBA64Model
}

func to16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

// FromImage converts img to a frame without any transfer function: 8-bit
// and 16-bit channel values map linearly onto [0,1].
func FromImage(img image.Image) (*Frame, error) {
	b := img.Bounds()
	f, err := NewFrame(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}
	for y := range f.height {
		for x := range f.width {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			f.SetPixel(x, y, [4]float32{
				float32(c.R) / 0xffff,
				float32(c.G) / 0xffff,
				float32(c.B) / 0xffff,
				float32(c.A) / 0xffff,
			})
		}
	}
	return f, nil
}

// FromImageLinear converts an sRGB-encoded img to a linear-light frame.
// Color channels are reduced to 8 bits and decoded through a lookup table;
// alpha is kept linear.
func FromImageLinear(img image.Image) (*Frame, error) {
	b := img.Bounds()
	f, err := NewFrame(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}
	nb := nrgba.Bounds()
	for y := range f.height {
		row := nrgba.Pix[nrgba.PixOffset(nb.Min.X, nb.Min.Y+y):]
		out := f.pix[y*f.width*4:]
		for x := range f.width {
			s := row[x*4 : x*4+4]
			out[x*4+0] = intColor.SRGBToLinearFast(s[0])
			out[x*4+1] = intColor.SRGBToLinearFast(s[1])
			out[x*4+2] = intColor.SRGBToLinearFast(s[2])
			out[x*4+3] = intColor.FromByte(s[3])
		}
	}
	return f, nil
}

// ToNRGBA converts the frame to 8-bit straight RGBA, clamping each channel
// to [0,1] without a transfer function.
func (f *Frame) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.width, f.height))
	for i, v := range f.pix {
		img.Pix[i] = intColor.ToByte(v)
	}
	return img
}
