package bloom

import (
	"time"

	intColor "github.com/gogpu/bloom/internal/color"
)

// OutputPass encodes a linear-light frame to sRGB, clamping to [0,1].
// It is normally the last pass of a Composer.
type OutputPass struct {
	width, height int
}

var _ Pass = (*OutputPass)(nil)

// NewOutputPass creates an sRGB output pass.
func NewOutputPass() *OutputPass {
	return &OutputPass{}
}

// Configure records the frame size.
func (o *OutputPass) Configure(width, height, pixelSize int) error {
	if width <= 0 || height <= 0 || pixelSize < 1 {
		return &ConfigError{Op: "OutputPass.Configure", Width: width, Height: height, PixelSize: pixelSize,
			Reason: "size must be positive"}
	}
	o.width, o.height = width, height
	return nil
}

// Apply writes the sRGB encoding of src to dst.
func (o *OutputPass) Apply(dst, src *Frame, _ time.Duration) error {
	if err := sameSize("OutputPass.Apply", dst, src); err != nil {
		return err
	}
	for i := 0; i < len(src.pix); i += 4 {
		out := intColor.EncodePixel([4]float32(src.pix[i : i+4]))
		copy(dst.pix[i:i+4], out[:])
	}
	return nil
}

// Release is a no-op.
func (o *OutputPass) Release() {}
