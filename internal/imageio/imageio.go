// Package imageio reads and writes the still images the bloom command
// processes: PNG, JPEG, TGA and WebP.
package imageio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/webp"
)

// ErrUnknownFormat is returned for file extensions without a codec.
var ErrUnknownFormat = errors.New("imageio: unknown image format")

// JPEGQuality is the quality used when writing .jpg files.
const JPEGQuality = 95

// Format returns the lower-case codec name for path's extension
// ("png", "jpeg", "tga", "webp"), or "" if none matches.
func Format(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "png"
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".tga":
		return "tga"
	case ".webp":
		return "webp"
	default:
		return ""
	}
}

// Load decodes the image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: open %s: %w", path, err)
	}
	defer f.Close()

	img, err := Decode(f, Format(path))
	if err != nil {
		return nil, fmt.Errorf("imageio: decode %s: %w", path, err)
	}
	return img, nil
}

// Decode reads an image in the named format. An empty format is sniffed
// from the PNG, JPEG and WebP signatures; TGA has none and must be named.
//
// The tga package registers an empty magic string with image.Decode, which
// matches any input, so Decode never goes through the registry.
func Decode(r io.Reader, format string) (image.Image, error) {
	if format == "" {
		br := bufio.NewReader(r)
		sniffed, err := sniff(br)
		if err != nil {
			return nil, err
		}
		format, r = sniffed, br
	}

	switch format {
	case "png":
		return png.Decode(r)
	case "jpeg":
		return jpeg.Decode(r)
	case "webp":
		return webp.Decode(r)
	case "tga":
		return tga.Decode(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

var (
	pngMagic  = []byte("\x89PNG\r\n\x1a\n")
	jpegMagic = []byte{0xff, 0xd8, 0xff}
)

// sniff identifies the format from the leading bytes of br.
func sniff(br *bufio.Reader) (string, error) {
	head, err := br.Peek(12)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	switch {
	case bytes.HasPrefix(head, pngMagic):
		return "png", nil
	case bytes.HasPrefix(head, jpegMagic):
		return "jpeg", nil
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WEBP":
		return "webp", nil
	default:
		return "", fmt.Errorf("%w: unrecognized signature", ErrUnknownFormat)
	}
}

// Save encodes img to path in the format implied by its extension.
func Save(path string, img image.Image) (err error) {
	format := Format(path)
	if format == "" {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("imageio: create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("imageio: close %s: %w", path, cerr)
		}
	}()

	if err := Encode(f, img, format); err != nil {
		return fmt.Errorf("imageio: encode %s: %w", path, err)
	}
	return nil
}

// Encode writes img in the named format.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case "png":
		return png.Encode(w, img)
	case "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case "tga":
		return tga.Encode(w, img)
	case "webp":
		// Lossless VP8L.
		return nativewebp.Encode(w, img, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}
