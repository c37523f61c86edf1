package bloom

import (
	"errors"
	"fmt"
)

// Sentinel errors. Match them with errors.Is; the concrete error usually
// carries more context.
var (
	// ErrConfiguration is returned for requests that would produce an empty
	// buffer, invalid parameters, mismatched frame sizes, or Apply before
	// Configure. The filter keeps its previous valid state.
	ErrConfiguration = errors.New("bloom: invalid configuration")

	// ErrUnsupportedEnvironment is returned by New when the requested
	// accelerator cannot run here (no GPU backend or adapter, shader
	// compilation failure). It is reported once and never retried; hosts
	// should fall back to the CPU filter or disable bloom.
	ErrUnsupportedEnvironment = errors.New("bloom: unsupported environment")

	// ErrResourceExhausted is returned by Configure when the requested
	// resolution exceeds the buffer budget. Retrying the same request fails
	// identically.
	ErrResourceExhausted = errors.New("bloom: resource exhausted")

	// ErrReleased is returned when a filter is used after Release.
	ErrReleased = errors.New("bloom: filter released")
)

// ConfigError describes a rejected Configure or Apply request.
// It unwraps to ErrConfiguration.
type ConfigError struct {
	Op        string
	Width     int
	Height    int
	PixelSize int
	Reason    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("bloom: %s %dx%d (pixel size %d): %s",
		e.Op, e.Width, e.Height, e.PixelSize, e.Reason)
}

// Unwrap returns ErrConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
