package bloom

// DefaultMaxBufferBytes caps the memory Configure may allocate for the
// luminance pyramid.
const DefaultMaxBufferBytes = 1 << 30

// Option configures a Filter during creation.
//
// Example:
//
//	// CPU filter with default parameters
//	f, err := bloom.New()
//
//	// GPU accelerated, screen blending
//	p := bloom.DefaultParams()
//	p.Blend = bloom.BlendScreen
//	f, err := bloom.New(bloom.WithParams(p), bloom.WithAccelerator(gpu.New()))
type Option func(*options)

// options holds optional configuration for Filter creation.
type options struct {
	params         Params
	workers        int
	accel          Accelerator
	maxBufferBytes int64
}

// defaultOptions returns the default filter options.
func defaultOptions() options {
	return options{
		params:         DefaultParams(),
		workers:        0, // GOMAXPROCS
		maxBufferBytes: DefaultMaxBufferBytes,
	}
}

// WithParams sets the initial parameters. They are validated by New.
func WithParams(p Params) Option {
	return func(o *options) {
		o.params = p
	}
}

// WithWorkers sets the number of CPU worker goroutines.
// Zero or negative uses GOMAXPROCS; 1 runs every pass on the caller.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithAccelerator runs the blur and composite stages on a.
// New calls a.Init and fails with ErrUnsupportedEnvironment if it fails.
func WithAccelerator(a Accelerator) Option {
	return func(o *options) {
		o.accel = a
	}
}

// WithMaxBufferBytes sets the buffer budget checked by Configure.
// Zero or negative disables the check.
func WithMaxBufferBytes(n int64) Option {
	return func(o *options) {
		o.maxBufferBytes = n
	}
}
