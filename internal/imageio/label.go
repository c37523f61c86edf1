package imageio

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

const (
	// labelPadding is the margin around HUD text, in pixels.
	labelPadding = 4

	// LabelSize is the HUD font size in pixels per em.
	LabelSize = 13
)

// hudFont is Go Regular parsed twice: go-text shapes runs against it and
// sfnt supplies the glyph outlines.
type hudFont struct {
	shape   *gtfont.Font
	outline *sfnt.Font
	metrics font.Metrics
}

var loadHUDFont = sync.OnceValues(func() (*hudFont, error) {
	face, err := gtfont.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("imageio: parse HUD font: %w", err)
	}
	outline, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("imageio: parse HUD outlines: %w", err)
	}
	var buf sfnt.Buffer
	m, err := outline.Metrics(&buf, fixed.I(LabelSize), font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("imageio: HUD font metrics: %w", err)
	}
	return &hudFont{shape: face.Font, outline: outline, metrics: m}, nil
})

// shapeLine lays out one left-to-right line. A go-text Face is not safe for
// concurrent use, so each call gets its own.
func (f *hudFont) shapeLine(s string) shaping.Output {
	runes := []rune(s)
	var hb shaping.HarfbuzzShaper
	return hb.Shape(shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: di.DirectionLTR,
		Face:      gtfont.NewFace(f.shape),
		Size:      fixed.I(LabelSize),
		Script:    language.Latin,
		Language:  language.NewLanguage("en"),
	})
}

// Label draws lines of text in the top-left corner of dst over a
// translucent black box.
func Label(dst draw.Image, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	hf, err := loadHUDFont()
	if err != nil {
		return err
	}

	runs := make([]shaping.Output, len(lines))
	var width fixed.Int26_6
	for i, l := range lines {
		if l == "" {
			continue
		}
		runs[i] = hf.shapeLine(l)
		width = max(width, runs[i].Advance)
	}
	lineHeight := hf.metrics.Height.Ceil()
	ascent := hf.metrics.Ascent.Ceil()

	b := dst.Bounds()
	box := image.Rect(0, 0, width.Ceil()+2*labelPadding, len(lines)*lineHeight+2*labelPadding).
		Add(b.Min).Intersect(b)
	draw.Draw(dst, box, image.NewUniform(color.NRGBA{A: 160}), image.Point{}, draw.Over)

	var buf sfnt.Buffer
	for i, run := range runs {
		dot := fixed.P(b.Min.X+labelPadding, b.Min.Y+labelPadding+ascent+i*lineHeight)
		for _, g := range run.Glyphs {
			// go-text offsets grow up, image space grows down.
			at := fixed.Point26_6{X: dot.X + g.XOffset, Y: dot.Y - g.YOffset}
			if err := hf.drawGlyph(dst, box, &buf, sfnt.GlyphIndex(g.GlyphID), at); err != nil {
				return err
			}
			dot.X += g.Advance
		}
	}
	return nil
}

// drawGlyph rasterizes glyph gid with its origin at dot and composites it
// in white over dst, clipped to clip.
func (f *hudFont) drawGlyph(dst draw.Image, clip image.Rectangle, buf *sfnt.Buffer, gid sfnt.GlyphIndex, dot fixed.Point26_6) error {
	segs, err := f.outline.LoadGlyph(buf, gid, fixed.I(LabelSize), nil)
	if err != nil {
		return fmt.Errorf("imageio: load glyph %d: %w", gid, err)
	}
	if len(segs) == 0 {
		return nil
	}

	gb := segs.Bounds()
	r := image.Rect(
		(dot.X+gb.Min.X).Floor(), (dot.Y+gb.Min.Y).Floor(),
		(dot.X+gb.Max.X).Ceil(), (dot.Y+gb.Max.Y).Ceil(),
	)
	if r.Empty() || !r.Overlaps(clip) {
		return nil
	}

	// Outline coordinates relative to the mask's top-left corner.
	ox := float32(dot.X)/64 - float32(r.Min.X)
	oy := float32(dot.Y)/64 - float32(r.Min.Y)
	pt := func(p fixed.Point26_6) (float32, float32) {
		return ox + float32(p.X)/64, oy + float32(p.Y)/64
	}

	z := vector.NewRasterizer(r.Dx(), r.Dy())
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			z.MoveTo(pt(s.Args[0]))
		case sfnt.SegmentOpLineTo:
			z.LineTo(pt(s.Args[0]))
		case sfnt.SegmentOpQuadTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			z.QuadTo(bx, by, cx, cy)
		case sfnt.SegmentOpCubeTo:
			bx, by := pt(s.Args[0])
			cx, cy := pt(s.Args[1])
			dx, dy := pt(s.Args[2])
			z.CubeTo(bx, by, cx, cy, dx, dy)
		}
	}

	mask := image.NewAlpha(image.Rect(0, 0, r.Dx(), r.Dy()))
	z.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})

	visible := r.Intersect(clip)
	draw.DrawMask(dst, visible, image.White, image.Point{}, mask, visible.Min.Sub(r.Min), draw.Over)
	return nil
}
