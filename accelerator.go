package bloom

import "errors"

// ErrFallbackToCPU indicates the accelerator cannot handle this job.
// The filter transparently runs the CPU path instead.
var ErrFallbackToCPU = errors.New("bloom: falling back to CPU rendering")

// MipLevel is one level of the luminance pyramid handed to an accelerator:
// straight RGBA floats, row by row.
type MipLevel struct {
	Pix           []float32
	Width, Height int
}

// CompositeJob carries everything the blur and composite stages need for
// one frame. The filter has already extracted luminance and rebuilt the
// pyramid; the accelerator must write every pixel of Dst.
//
// Dst may alias Src. Levels and Src are read-only.
type CompositeJob struct {
	Src, Dst *Frame

	// Levels holds the pyramid levels the accumulation reads, level 0 first.
	Levels []MipLevel

	// Params is the immutable per-frame snapshot.
	Params Params

	// RadiusX and RadiusY are the aspect-corrected spiral radii in UV units.
	RadiusX, RadiusY float32

	// NoiseScale is the tiling period of the rotation noise, the next power
	// of two >= max(width, height).
	NoiseScale float32

	// Time is the elapsed-time accumulator in seconds. It does not affect
	// the rotation noise.
	Time float32
}

// Accelerator is an optional GPU implementation of the blur and composite
// stages.
//
// An accelerator is passed to New with WithAccelerator, which calls Init
// exactly once. An Init failure makes New fail with
// ErrUnsupportedEnvironment; it is not retried.
//
// Implementations live in backend packages:
//
//	f, err := bloom.New(bloom.WithAccelerator(gpu.New()))
type Accelerator interface {
	// Name returns the accelerator name (e.g., "vulkan").
	Name() string

	// Init initializes GPU resources.
	Init() error

	// Close releases GPU resources.
	Close()

	// Composite blurs the pyramid and composites it over Src into Dst.
	// Returns ErrFallbackToCPU if the job cannot be accelerated.
	Composite(job *CompositeJob) error
}
