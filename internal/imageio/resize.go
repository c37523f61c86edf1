package imageio

import (
	"image"

	"golang.org/x/image/draw"
)

// Resize scales img to w x h with a Catmull-Rom filter. A non-positive
// dimension keeps the aspect ratio of the other one; if both are
// non-positive img is returned unchanged.
func Resize(img image.Image, w, h int) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return img
	}
	switch {
	case w <= 0 && h <= 0:
		return img
	case w <= 0:
		w = max(1, b.Dx()*h/b.Dy())
	case h <= 0:
		h = max(1, b.Dy()*w/b.Dx())
	}
	if w == b.Dx() && h == b.Dy() {
		return img
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
