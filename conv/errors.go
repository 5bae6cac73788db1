package conv

import "errors"

// Errors returned by the convolution engines in this package.
var (
	// ErrNonPowerOfTwo is returned when a block size is not a positive power of two.
	ErrNonPowerOfTwo = errors.New("conv: block size must be a positive power of two")

	// ErrResponseTooLong is returned when an impulse response exceeds the
	// configured maximum length.
	ErrResponseTooLong = errors.New("conv: impulse response exceeds configured max length")

	// ErrLengthMismatch is returned when input and output buffers passed to
	// Process do not match the configured block size.
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")

	// ErrSegmentIndexOutOfRange is returned by UpdateSegment for an out of
	// range segment index.
	ErrSegmentIndexOutOfRange = errors.New("conv: segment index out of range")

	// ErrInvalidScaleFactor is returned when a Stepwise convolver is
	// constructed with a scale factor less than 1.
	ErrInvalidScaleFactor = errors.New("conv: scale factor must be >= 1")

	// ErrInvalidCrossfadeSamples is returned when a Crossfade convolver is
	// constructed with a crossfade length less than 1.
	ErrInvalidCrossfadeSamples = errors.New("conv: crossfade samples must be >= 1")
)
