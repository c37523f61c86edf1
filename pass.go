package bloom

import (
	"fmt"
	"time"
)

// Pass is one stage of a post-processing chain.
//
// Configure is called whenever the output size changes, Apply once per
// frame, Release once at teardown. Apply must accept dst == src.
type Pass interface {
	Configure(width, height, pixelSize int) error
	Apply(dst, src *Frame, dt time.Duration) error
	Release()
}

// Composer runs an ordered list of passes, ping-ponging between two scratch
// frames so that each pass reads the previous pass's complete output.
// The first pass reads the caller's source and the last writes the caller's
// destination.
//
// Composer is itself a Pass, so chains can nest.
type Composer struct {
	passes []Pass

	width, height int
	ping, pong    *Frame
}

var _ Pass = (*Composer)(nil)

// NewComposer creates a composer running passes in order.
func NewComposer(passes ...Pass) *Composer {
	return &Composer{passes: passes}
}

// Add appends a pass. Call Configure again before the next Apply.
func (c *Composer) Add(p Pass) {
	c.passes = append(c.passes, p)
}

// Passes returns the passes in execution order.
func (c *Composer) Passes() []Pass {
	return c.passes
}

// Configure configures every pass and resizes the scratch frames.
func (c *Composer) Configure(width, height, pixelSize int) error {
	for _, p := range c.passes {
		if err := p.Configure(width, height, pixelSize); err != nil {
			return err
		}
	}
	if c.ping != nil && c.width == width && c.height == height {
		return nil
	}
	ping, err := NewFrame(width, height)
	if err != nil {
		return err
	}
	pong, err := NewFrame(width, height)
	if err != nil {
		return err
	}
	c.ping, c.pong = ping, pong
	c.width, c.height = width, height
	return nil
}

// Apply runs every pass in order.
func (c *Composer) Apply(dst, src *Frame, dt time.Duration) error {
	switch len(c.passes) {
	case 0:
		if err := sameSize("Composer.Apply", dst, src); err != nil {
			return err
		}
		if dst != src {
			copy(dst.pix, src.pix)
		}
		return nil
	case 1:
		return c.passes[0].Apply(dst, src, dt)
	}
	if c.ping == nil {
		return &ConfigError{Op: "Composer.Apply", Reason: "composer not configured"}
	}

	read := src
	for i, p := range c.passes {
		write := dst
		if i < len(c.passes)-1 {
			write = c.ping
			if read == c.ping {
				write = c.pong
			}
		}
		if err := p.Apply(write, read, dt); err != nil {
			return err
		}
		read = write
	}
	return nil
}

// Release releases the passes in reverse order.
func (c *Composer) Release() {
	for i := len(c.passes) - 1; i >= 0; i-- {
		c.passes[i].Release()
	}
	c.ping, c.pong = nil, nil
}

// sameSize reports a *ConfigError unless dst and src are non-nil frames of
// equal size.
func sameSize(op string, dst, src *Frame) error {
	if dst == nil || src == nil {
		return &ConfigError{Op: op, PixelSize: 1, Reason: "nil frame"}
	}
	if dst.width != src.width || dst.height != src.height {
		return &ConfigError{Op: op, Width: src.width, Height: src.height, PixelSize: 1,
			Reason: fmt.Sprintf("destination is %dx%d", dst.width, dst.height)}
	}
	return nil
}
