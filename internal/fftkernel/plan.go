// Package fftkernel wraps the complex FFT primitive the convolution engine
// uses for its real-signal transforms, and provides the real-sample pack/unpack
// helpers every caller needs around it.
//
// The transform itself (algo-fft) is an external collaborator per the core's
// design: this package only adapts it to the float32 sample format and the
// zero-padded, real-packed-as-complex convention used throughout conv.Engine.
package fftkernel

import (
	"fmt"

	algofft "github.com/cwbudde/algo-fft"
)

// Plan is a reusable forward/inverse FFT plan of a fixed size.
type Plan struct {
	size int
	plan *algofft.Plan[complex64]
}

// New creates a plan for the given transform size, which must be a power of two.
func New(size int) (*Plan, error) {
	plan, err := algofft.NewPlan32(size)
	if err != nil {
		return nil, fmt.Errorf("fftkernel: create plan (size=%d): %w", size, err)
	}

	return &Plan{size: size, plan: plan}, nil
}

// Size returns the transform size this plan was created for.
func (p *Plan) Size() int {
	return p.size
}

// Forward computes the forward transform of src into dst. Both must have
// length Size(). dst and src may alias.
func (p *Plan) Forward(dst, src []complex64) error {
	if err := p.plan.Forward(dst, src); err != nil {
		return fmt.Errorf("fftkernel: forward transform: %w", err)
	}
	return nil
}

// Inverse computes the inverse transform of src into dst. Both must have
// length Size(). dst and src may alias. The result is already normalized
// (a forward-then-inverse round trip returns the original signal).
func (p *Plan) Inverse(dst, src []complex64) error {
	if err := p.plan.Inverse(dst, src); err != nil {
		return fmt.Errorf("fftkernel: inverse transform: %w", err)
	}
	return nil
}

// PackReal packs real samples into a complex buffer (zero imaginary part).
// If src is shorter than dst, the remainder of dst is zeroed (zero-padding).
func PackReal(dst []complex64, src []float32) {
	n := len(src)
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = complex(src[i], 0)
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// UnpackReal extracts the real parts of src into dst. dst and src must have
// equal length.
func UnpackReal(dst []float32, src []complex64) {
	for i := range dst {
		dst[i] = real(src[i])
	}
}
