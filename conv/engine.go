package conv

import (
	"fmt"

	"github.com/holoplot/fft-convolution/internal/fftkernel"
)

// Engine is a uniform partitioned, block-overlap-save FFT convolver.
//
// It applies a fixed-length impulse response to a stream of fixed-size
// blocks, holding the last N input-block spectra in a frequency-domain
// delay line (the FDL) and the IR's own segment spectra side by side, so
// that each block's output is a multiply-accumulate over the FDL against
// the IR segments followed by a single inverse transform.
//
// Engine is not safe for concurrent use: Process, SetResponse and
// UpdateSegment must be externally serialized on the same instance.
type Engine struct {
	blockSize         int // S
	fftSize           int // 2S
	maxResponseLength int
	segCount          int // N = ceil(maxResponseLength / S), fixed for the life of the engine

	plan *fftkernel.Plan

	irSpectra [][]complex64 // segCount segments, each fftSize long
	fdl       [][]complex64 // ring of segCount spectra, each fftSize long
	head      int

	prevInput []float32    // S samples carried from the previous block
	timeBuf   []complex64  // fftSize scratch: pack/transform buffer
	accum     []complex64  // fftSize scratch: frequency-domain accumulator
}

// NewEngine constructs an Engine for the given block size and a maximum
// impulse response length declared up front; all buffers are sized once
// from these two values. response is the initial impulse response and must
// not exceed maxResponseLength samples.
func NewEngine(response []float32, blockSize, maxResponseLength int) (*Engine, error) {
	if !isPowerOfTwo(blockSize) {
		return nil, fmt.Errorf("%w: got %d", ErrNonPowerOfTwo, blockSize)
	}
	if maxResponseLength <= 0 {
		return nil, fmt.Errorf("conv: maxResponseLength must be > 0, got %d", maxResponseLength)
	}
	if len(response) > maxResponseLength {
		return nil, fmt.Errorf("%w: %d > %d", ErrResponseTooLong, len(response), maxResponseLength)
	}

	fftSize := 2 * blockSize
	segCount := ceilDiv(maxResponseLength, blockSize)
	if segCount < 1 {
		segCount = 1
	}

	plan, err := fftkernel.New(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: engine FFT plan (blockSize=%d): %w", blockSize, err)
	}

	e := &Engine{
		blockSize:         blockSize,
		fftSize:           fftSize,
		maxResponseLength: maxResponseLength,
		segCount:          segCount,
		plan:              plan,
		irSpectra:         make([][]complex64, segCount),
		fdl:               make([][]complex64, segCount),
		prevInput:         make([]float32, blockSize),
		timeBuf:           make([]complex64, fftSize),
		accum:             make([]complex64, fftSize),
	}
	for k := range e.irSpectra {
		e.irSpectra[k] = make([]complex64, fftSize)
		e.fdl[k] = make([]complex64, fftSize)
	}

	if err := e.SetResponse(response); err != nil {
		return nil, err
	}

	return e, nil
}

// ActiveSegCount returns N, the fixed number of IR segments this engine
// was sized for (ceil(maxResponseLength / blockSize)).
func (e *Engine) ActiveSegCount() int {
	return e.segCount
}

// BlockSize returns the configured processing block size S.
func (e *Engine) BlockSize() int {
	return e.blockSize
}

// SetResponse replaces every IR segment's spectrum with the corresponding
// S-sample window of response (zero-padded past len(response), including
// windows entirely beyond it), then resets the FDL, overlap tail and ring
// position exactly as Reset does. A full response replacement has no
// meaningful continuity with the convolver's prior input history: per the
// reset-on-update invariant, the very next Process call must behave
// exactly like a freshly constructed engine carrying the new response,
// fed input from that point on. Real-time safe: no allocation,
// O(N*S log S).
//
// UpdateSegment, and the internal per-segment update path Stepwise and
// Crossfade drive, deliberately do NOT reset anything — only a full
// response swap through SetResponse does.
func (e *Engine) SetResponse(response []float32) error {
	if err := e.setSegments(response); err != nil {
		return err
	}
	e.Reset()
	return nil
}

// setSegments recomputes every IR segment's spectrum without touching the
// FDL, overlap tail or ring position. Used by SetResponse (which adds the
// reset) and by Crossfade's install-and-fade path, which must NOT reset
// the engine it installs into: that engine keeps running continuously
// underneath the fade, and resetting its input history would throw away
// real signal the fade is about to start blending in.
func (e *Engine) setSegments(response []float32) error {
	if len(response) > e.maxResponseLength {
		return fmt.Errorf("%w: %d > %d", ErrResponseTooLong, len(response), e.maxResponseLength)
	}
	for k := 0; k < e.segCount; k++ {
		if err := e.computeSegmentSpectrum(e.irSpectra[k], response, k); err != nil {
			return err
		}
	}
	return nil
}

// UpdateSegment recomputes only segment k's spectrum from
// response[k*S:(k+1)*S] (zero-padded), leaving every other segment and the
// FDL/overlap state untouched. Real-time safe: no allocation, O(S log S).
// response is indexed the same way SetResponse's argument is (i.e. the
// full response array, not just segment k's window).
func (e *Engine) UpdateSegment(response []float32, k int) error {
	if k < 0 || k >= e.segCount {
		return fmt.Errorf("%w: %d (have %d)", ErrSegmentIndexOutOfRange, k, e.segCount)
	}
	return e.computeSegmentSpectrum(e.irSpectra[k], response, k)
}

// computeSegmentSpectrum packs response[k*S:(k+1)*S] (zero-padded) into the
// first half of a length-2S buffer, zeros the second half, and forward
// transforms it into dst.
func (e *Engine) computeSegmentSpectrum(dst []complex64, response []float32, k int) error {
	s := e.blockSize
	start := k * s
	end := start + s

	var seg []float32
	if start < len(response) {
		clipEnd := end
		if clipEnd > len(response) {
			clipEnd = len(response)
		}
		seg = response[start:clipEnd]
	}

	if err := e.computeSpectrumFromWindow(dst, seg); err != nil {
		return fmt.Errorf("conv: segment %d spectrum: %w", k, err)
	}
	return nil
}

// computeSpectrumFromWindow forward-transforms an already-extracted,
// at-most-S-sample window (the segment content; any missing tail is
// zero-padded) into dst.
func (e *Engine) computeSpectrumFromWindow(dst []complex64, window []float32) error {
	s := e.blockSize
	buf := e.timeBuf
	fftkernel.PackReal(buf[:s], window)
	for i := s; i < e.fftSize; i++ {
		buf[i] = 0
	}
	return e.plan.Forward(dst, buf)
}

// updateSegmentWindow recomputes segment k's spectrum directly from a
// pre-extracted S-sample window, bypassing the full-response indexing
// UpdateSegment does. Used by Stepwise, which already has the exact
// window it needs to install for the segment currently being loaded.
func (e *Engine) updateSegmentWindow(window []float32, k int) error {
	if k < 0 || k >= e.segCount {
		return fmt.Errorf("%w: %d (have %d)", ErrSegmentIndexOutOfRange, k, e.segCount)
	}
	if err := e.computeSpectrumFromWindow(e.irSpectra[k], window); err != nil {
		return fmt.Errorf("conv: segment %d spectrum: %w", k, err)
	}
	return nil
}

// Process convolves exactly BlockSize() input samples with the current
// impulse response, writing BlockSize() output samples. It is real-time
// safe: no allocation, no locks.
func (e *Engine) Process(input, output []float32) error {
	s := e.blockSize
	if len(input) != s || len(output) != s {
		return fmt.Errorf("%w: block size %d, got input=%d output=%d", ErrLengthMismatch, s, len(input), len(output))
	}

	buf := e.timeBuf
	fftkernel.PackReal(buf[:s], e.prevInput)
	fftkernel.PackReal(buf[s:e.fftSize], input)

	if err := e.plan.Forward(buf, buf); err != nil {
		return fmt.Errorf("conv: forward transform: %w", err)
	}
	copy(e.fdl[e.head], buf)

	accum := e.accum
	clear(accum)
	n := e.segCount
	for k := 0; k < n; k++ {
		ring := e.head - k
		if ring < 0 {
			ring += n
		}
		irSpec := e.irSpectra[k]
		fdlSpec := e.fdl[ring]
		for i := range accum {
			accum[i] += irSpec[i] * fdlSpec[i]
		}
	}

	if err := e.plan.Inverse(buf, accum); err != nil {
		return fmt.Errorf("conv: inverse transform: %w", err)
	}
	fftkernel.UnpackReal(output, buf[s:e.fftSize])

	e.head++
	if e.head >= n {
		e.head = 0
	}
	copy(e.prevInput, input)

	return nil
}

// Reset clears the FDL, overlap history and ring position, as if freshly
// constructed. The IR segment spectra are left untouched.
func (e *Engine) Reset() {
	for _, spec := range e.fdl {
		clear(spec)
	}
	for i := range e.prevInput {
		e.prevInput[i] = 0
	}
	e.head = 0
}
