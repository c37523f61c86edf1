// Package bloom implements a multi-scale spiral bloom post-processing
// filter.
//
// # Overview
//
// Bright regions of a frame are extracted with a smooth luminance
// threshold, reduced into a mip pyramid, and blurred per pixel with a
// golden-angle spiral of Gaussian-weighted taps over several pyramid
// levels. The spiral's orientation is randomized per pixel with tileable
// gradient noise, which hides the ring patterns that a fixed tap pattern
// would leave. The bloom is finally blended back into the frame.
//
// Large blur radii cost the same as small ones: the pyramid supplies the
// spread, so each output pixel costs samples x lods texture fetches.
//
// # Quick Start
//
//	f, err := bloom.New()
//	if err != nil {
//	    return err
//	}
//	defer f.Release()
//
//	if err := f.Configure(1920, 1080, 1); err != nil {
//	    return err
//	}
//	for frame := range frames {
//	    if err := f.Apply(frame, frame, dt); err != nil {
//	        return err
//	    }
//	}
//
// # GPU Acceleration
//
// The blur and composite stages can run in a compute shader:
//
//	import "github.com/gogpu/bloom/gpu"
//
//	f, err := bloom.New(bloom.WithAccelerator(gpu.New()))
//	if errors.Is(err, bloom.ErrUnsupportedEnvironment) {
//	    f, err = bloom.New() // CPU fallback
//	}
//
// # Pass Chains
//
// Filter, OutputPass and Composer implement Pass. A Composer runs passes in
// an explicit order:
//
//	chain := bloom.NewComposer(f, bloom.NewOutputPass())
//
// # Color
//
// Frames hold straight RGBA float32 in linear light. Intermediate values
// may exceed 1; only the final composite clamps to [0,1].
package bloom
