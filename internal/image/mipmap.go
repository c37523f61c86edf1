package image

import "math/bits"

// RowFunc runs band(y0, y1) over row ranges covering [0, height).
// Bands may run concurrently; each band must only write its own rows.
// A nil RowFunc runs a single band serially.
type RowFunc func(height int, band func(y0, y1 int))

// Run invokes f, falling back to one serial band when f is nil.
func (f RowFunc) Run(height int, band func(y0, y1 int)) {
	if f == nil {
		band(0, height)
		return
	}
	f(height, band)
}

// Pyramid is a mip chain derived from a single source buffer.
//
// Level 0 is the source itself; level N has dimensions
// max(1, W>>N) x max(1, H>>N). The pyramid carries no state across frames:
// Regenerate rebuilds the chain from whatever level 0 currently holds.
type Pyramid struct {
	levels []*Buf
	pooled bool
}

// MaxLevels returns the length of a full chain for a width x height source,
// down to the level where the larger dimension reaches one pixel.
func MaxLevels(width, height int) int {
	m := max(width, height)
	if m <= 0 {
		return 0
	}
	return bits.Len(uint(m))
}

// LevelSize returns the dimensions of level n of a width x height source.
func LevelSize(width, height, n int) (int, int) {
	return max(1, width>>n), max(1, height>>n)
}

// NewPyramid allocates a pyramid with a fresh level-0 buffer and the given
// number of levels, capped at MaxLevels. Buffers come from the default pool.
func NewPyramid(width, height, levels int) (*Pyramid, error) {
	if width <= 0 || height <= 0 || levels <= 0 {
		return nil, ErrInvalidDimensions
	}
	levels = min(levels, MaxLevels(width, height))

	p := &Pyramid{levels: make([]*Buf, levels), pooled: true}
	for n := range levels {
		w, h := LevelSize(width, height, n)
		buf, err := GetFromDefault(w, h)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.levels[n] = buf
	}
	return p, nil
}

// BuildPyramid derives a pyramid from src with the given number of levels
// (capped at MaxLevels) using a 2x2 box filter. src becomes level 0 and is
// not copied or retained by Release.
func BuildPyramid(src *Buf, levels int) (*Pyramid, error) {
	if src == nil || levels <= 0 {
		return nil, ErrInvalidDimensions
	}
	levels = min(levels, MaxLevels(src.width, src.height))

	p := &Pyramid{levels: make([]*Buf, levels)}
	p.levels[0] = src
	for n := 1; n < levels; n++ {
		w, h := LevelSize(src.width, src.height, n)
		buf, err := GetFromDefault(w, h)
		if err != nil {
			p.Release()
			return nil, err
		}
		p.levels[n] = buf
	}
	p.Regenerate(levels, nil)
	return p, nil
}

// Regenerate recomputes levels 1..levels-1 in place from level 0.
// levels is clamped to the allocated chain length.
func (p *Pyramid) Regenerate(levels int, rows RowFunc) {
	levels = min(levels, len(p.levels))
	for n := 1; n < levels; n++ {
		src, dst := p.levels[n-1], p.levels[n]
		rows.Run(dst.height, func(y0, y1 int) {
			downsample(src, dst, y0, y1)
		})
	}
}

// downsample box-filters rows [y0, y1) of dst from src (2x2 average,
// clamped at odd edges).
func downsample(src, dst *Buf, y0, y1 int) {
	sw, sh := src.width, src.height
	for dy := y0; dy < y1; dy++ {
		sy0 := min(dy*2, sh-1)
		sy1 := min(dy*2+1, sh-1)
		row := dst.Row(dy)
		for dx := 0; dx < dst.width; dx++ {
			sx0 := min(dx*2, sw-1)
			sx1 := min(dx*2+1, sw-1)

			i00 := (sy0*sw + sx0) * Channels
			i10 := (sy0*sw + sx1) * Channels
			i01 := (sy1*sw + sx0) * Channels
			i11 := (sy1*sw + sx1) * Channels

			o := dx * Channels
			for c := range Channels {
				row[o+c] = (src.pix[i00+c] + src.pix[i10+c] + src.pix[i01+c] + src.pix[i11+c]) * 0.25
			}
		}
	}
}

// Level returns the buffer at level n, or nil if n is out of range.
func (p *Pyramid) Level(n int) *Buf {
	if p == nil || n < 0 || n >= len(p.levels) {
		return nil
	}
	return p.levels[n]
}

// Levels returns the first n levels (all if n exceeds the chain length).
func (p *Pyramid) Levels(n int) []*Buf {
	if p == nil {
		return nil
	}
	return p.levels[:min(max(n, 0), len(p.levels))]
}

// NumLevels returns the number of levels in the chain.
func (p *Pyramid) NumLevels() int {
	if p == nil {
		return 0
	}
	return len(p.levels)
}

// ByteSize returns the memory held by all levels.
func (p *Pyramid) ByteSize() int {
	total := 0
	for _, l := range p.levels {
		if l != nil {
			total += l.ByteSize()
		}
	}
	return total
}

// Release returns owned levels to the pool. Level 0 is only returned when
// the pyramid allocated it (NewPyramid). The pyramid must not be used after.
func (p *Pyramid) Release() {
	if p == nil {
		return
	}
	for n, l := range p.levels {
		if l == nil || (n == 0 && !p.pooled) {
			continue
		}
		PutToDefault(l)
		p.levels[n] = nil
	}
}
