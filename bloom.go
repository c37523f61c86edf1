package bloom

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/bloom/internal/blend"
	"github.com/gogpu/bloom/internal/filter"
	intImage "github.com/gogpu/bloom/internal/image"
	"github.com/gogpu/bloom/internal/noise"
	"github.com/gogpu/bloom/internal/parallel"
)

// Filter is the bloom pass. Each Apply runs four stages in order:
//
//  1. extract luminance above the threshold into a buffer sized
//     (width, height) / pixelSize
//  2. rebuild the mip pyramid of that buffer
//  3. blur each output pixel with a noise-rotated golden-angle spiral,
//     summed over several mip levels
//  4. composite the bloom over the source frame
//
// Stages 3 and 4 run on the accelerator when one was given to New.
//
// Filter serializes Configure, Apply and Release, so at most one frame is
// in flight. The luminance buffer and pyramid are owned by the filter and
// never exposed.
type Filter struct {
	mu sync.Mutex

	params   Params
	pool     *parallel.WorkerPool
	accel    Accelerator
	logger   *slog.Logger
	maxBytes int64

	width, height, pixelSize int
	pyramid                  *intImage.Pyramid
	period                   float64
	spiral                   *filter.Spiral

	elapsed     time.Duration
	warnedOnCPU bool
	released    bool
}

var _ Pass = (*Filter)(nil)

// New creates a filter. If an accelerator is given it is initialized here,
// once; failure returns an error matching ErrUnsupportedEnvironment.
//
// The filter must be configured before the first Apply.
func New(opts ...Option) (*Filter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.params.Validate(); err != nil {
		return nil, err
	}

	log := Logger()
	if o.accel != nil {
		propagateLogger(o.accel, log)
		if err := o.accel.Init(); err != nil {
			return nil, fmt.Errorf("bloom: init %s accelerator: %w: %w", o.accel.Name(), ErrUnsupportedEnvironment, err)
		}
		log.Info("bloom: accelerator selected", "name", o.accel.Name())
	}

	return &Filter{
		params:   o.params,
		pool:     parallel.NewWorkerPool(o.workers),
		accel:    o.accel,
		logger:   log,
		maxBytes: o.maxBufferBytes,
		spiral:   filter.SpiralFor(o.params.Samples),
	}, nil
}

// Configure (re)allocates the luminance pyramid for a width x height output
// whose bloom is computed at (width, height) / pixelSize.
//
// Invalid sizes return a *ConfigError and requests over the buffer budget
// return ErrResourceExhausted; in both cases the previous buffers are kept.
func (f *Filter) Configure(width, height, pixelSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.configureLocked("Configure", width, height, pixelSize)
}

// SetPixelSize re-runs Configure with the current output size.
func (f *Filter) SetPixelSize(pixelSize int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pyramid == nil && !f.released {
		return &ConfigError{Op: "SetPixelSize", PixelSize: pixelSize, Reason: "filter not configured"}
	}
	return f.configureLocked("SetPixelSize", f.width, f.height, pixelSize)
}

func (f *Filter) configureLocked(op string, width, height, pixelSize int) error {
	if f.released {
		return ErrReleased
	}
	cfgErr := func(reason string) error {
		return &ConfigError{Op: op, Width: width, Height: height, PixelSize: pixelSize, Reason: reason}
	}
	switch {
	case pixelSize < 1:
		return cfgErr("pixel size must be at least 1")
	case width <= 0 || height <= 0:
		return cfgErr("size must be positive")
	}
	lw, lh := width/pixelSize, height/pixelSize
	if lw < 1 || lh < 1 {
		return cfgErr(fmt.Sprintf("luminance buffer %dx%d would be empty", lw, lh))
	}

	if f.pyramid != nil && f.width == width && f.height == height && f.pixelSize == pixelSize {
		return nil
	}

	size, err := pyramidBytes(lw, lh)
	if err != nil || (f.maxBytes > 0 && size > f.maxBytes) {
		return fmt.Errorf("bloom: %s %dx%d: %d buffer bytes over budget %d: %w",
			op, lw, lh, size, f.maxBytes, ErrResourceExhausted)
	}

	p, err := intImage.NewPyramid(lw, lh, intImage.MaxLevels(lw, lh))
	if err != nil {
		if errors.Is(err, intImage.ErrTooLarge) {
			return fmt.Errorf("bloom: %s: %w: %w", op, ErrResourceExhausted, err)
		}
		return cfgErr(err.Error())
	}

	if f.pyramid != nil {
		f.pyramid.Release()
	}
	f.pyramid = p
	f.width, f.height, f.pixelSize = width, height, pixelSize
	f.period = noise.TilingPeriod(width, height)

	Logger().Debug("bloom: configured",
		"width", width, "height", height, "pixelSize", pixelSize,
		"levels", p.NumLevels(), "bytes", p.ByteSize())
	return nil
}

// pyramidBytes returns the memory of a full chain for a w x h level 0.
func pyramidBytes(w, h int) (int64, error) {
	var total int64
	for n := range intImage.MaxLevels(w, h) {
		lw, lh := intImage.LevelSize(w, h, n)
		floats, err := intImage.PixLen(lw, lh)
		if err != nil {
			return 0, err
		}
		total += int64(floats) * 4
	}
	return total, nil
}

// SetParams validates p and uses it from the next Apply on.
func (f *Filter) SetParams(p Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return ErrReleased
	}
	f.params = p
	if p.Samples != f.spiral.Samples() {
		f.spiral = filter.SpiralFor(p.Samples)
	}
	return nil
}

// Params returns the current parameters.
func (f *Filter) Params() Params {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

// Size returns the configured output size and pixel size, or zeros before
// Configure.
func (f *Filter) Size() (width, height, pixelSize int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.width, f.height, f.pixelSize
}

// Elapsed returns the sum of all dt passed to Apply.
func (f *Filter) Elapsed() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

// Backend returns the accelerator name, or "cpu".
func (f *Filter) Backend() string {
	if f.accel == nil {
		return "cpu"
	}
	return f.accel.Name()
}

// Apply runs the bloom pipeline on src and writes the result to dst.
// Both frames must match the configured size; dst may be src.
// dt advances the elapsed-time accumulator.
func (f *Filter) Apply(dst, src *Frame, dt time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.released {
		return ErrReleased
	}
	if f.pyramid == nil {
		return &ConfigError{Op: "Apply", Reason: "filter not configured"}
	}
	for _, fr := range []*Frame{src, dst} {
		if fr == nil {
			return &ConfigError{Op: "Apply", Width: f.width, Height: f.height, PixelSize: f.pixelSize,
				Reason: "nil frame"}
		}
		if fr.width != f.width || fr.height != f.height {
			return &ConfigError{Op: "Apply", Width: f.width, Height: f.height, PixelSize: f.pixelSize,
				Reason: fmt.Sprintf("frame is %dx%d", fr.width, fr.height)}
		}
	}

	p := f.params
	f.elapsed += dt
	start := time.Now()

	if log := Logger(); log != f.logger {
		f.logger = log
		if f.accel != nil {
			propagateLogger(f.accel, log)
		}
	}

	filter.Extract(f.pyramid.Level(0), src.buf(), p.Threshold, p.SmoothWidth, f.pool.Rows)
	n := p.levelsNeeded(f.pyramid.NumLevels())
	f.pyramid.Regenerate(n, f.pool.Rows)
	levels := f.pyramid.Levels(n)
	radii := filter.Radii(p.Disk, f.width, f.height)

	if f.accel != nil {
		err := f.accel.Composite(f.job(dst, src, levels, p, radii))
		switch {
		case err == nil:
			f.logger.Debug("bloom: frame", "backend", f.accel.Name(), "took", time.Since(start))
			return nil
		case errors.Is(err, ErrFallbackToCPU):
			if !f.warnedOnCPU {
				f.logger.Warn("bloom: accelerator declined frame, using CPU", "name", f.accel.Name(), "err", err)
				f.warnedOnCPU = true
			}
		default:
			return fmt.Errorf("bloom: %s composite: %w", f.accel.Name(), err)
		}
	}

	f.composite(dst, src, levels, p, radii)
	f.logger.Debug("bloom: frame", "backend", "cpu", "took", time.Since(start))
	return nil
}

func (f *Filter) job(dst, src *Frame, levels []*intImage.Buf, p Params, radii [2]float32) *CompositeJob {
	mips := make([]MipLevel, len(levels))
	for i, l := range levels {
		mips[i] = MipLevel{Pix: l.Pix(), Width: l.Width(), Height: l.Height()}
	}
	return &CompositeJob{
		Src:        src,
		Dst:        dst,
		Levels:     mips,
		Params:     p,
		RadiusX:    radii[0],
		RadiusY:    radii[1],
		NoiseScale: float32(f.period),
		Time:       float32(f.elapsed.Seconds()),
	}
}

// composite is the CPU implementation of the blur and composite stages.
// Each pixel reads only its own src texel, so dst may alias src.
func (f *Filter) composite(dst, src *Frame, levels []*intImage.Buf, p Params, radii [2]float32) {
	spiral := f.spiral
	period := f.period
	w, h := f.width, f.height
	invW, invH := 1/float32(w), 1/float32(h)
	mode := p.Blend.law()

	f.pool.Rows(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			v := (float32(y) + 0.5) * invH
			for x := range w {
				u := (float32(x) + 0.5) * invW
				polar := filter.Polar(noise.Periodic(float64(u)*period, float64(v)*period, period, period))
				glow := spiral.Accumulate(levels, u, v, polar, radii, p.Lods, p.LodSteps, p.Compression)

				i := (y*w + x) * 4
				out := blend.Composite([4]float32(src.pix[i:i+4]), glow, p.Saturation, p.Strength, mode)
				copy(dst.pix[i:i+4], out[:])
			}
		}
	})
}

// Release frees the pyramid, stops the workers and closes the accelerator.
// It is safe to call more than once.
func (f *Filter) Release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.released {
		return
	}
	f.released = true
	if f.pyramid != nil {
		f.pyramid.Release()
		f.pyramid = nil
	}
	f.pool.Close()
	if f.accel != nil {
		f.accel.Close()
	}
}
