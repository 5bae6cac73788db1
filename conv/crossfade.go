package conv

import (
	"fmt"

	"github.com/holoplot/fft-convolution/crossfade"
)

// Crossfade runs two Engines in parallel and crossfades between them
// whenever the response changes, so the convolver currently at full gain
// is never disturbed by an update: the new response is installed into the
// other engine and faded in.
//
// Crossfade is not safe for concurrent use: Update and Process must be
// externally serialized on the same instance.
type Crossfade struct {
	engines [2]*Engine // indexed by crossfade.Target
	fader   *crossfade.Crossfader

	bufA, bufB []float32 // blockSize scratch, one per engine's output

	maxResponseLength int
	storedResponse    []float32
	responsePending   bool
}

// NewCrossfade constructs a Crossfade convolver. response is the initial
// impulse response, installed into both engines so the output is correct
// from the very first block (no fade in progress at rest). crossfadeSamples
// is the length, in samples, of a full fade and must be >= 1.
func NewCrossfade(response []float32, blockSize, maxResponseLength, crossfadeSamples int) (*Crossfade, error) {
	if crossfadeSamples < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCrossfadeSamples, crossfadeSamples)
	}

	engineA, err := NewEngine(response, blockSize, maxResponseLength)
	if err != nil {
		return nil, err
	}
	engineB, err := NewEngine(response, blockSize, maxResponseLength)
	if err != nil {
		return nil, err
	}

	fader, err := crossfade.New(crossfadeSamples)
	if err != nil {
		return nil, fmt.Errorf("conv: crossfader: %w", err)
	}

	xf := &Crossfade{
		engines:           [2]*Engine{engineA, engineB},
		fader:             fader,
		bufA:              make([]float32, blockSize),
		bufB:              make([]float32, blockSize),
		maxResponseLength: maxResponseLength,
		storedResponse:    make([]float32, maxResponseLength),
	}

	return xf, nil
}

// Crossfading reports whether a fade between the two engines is currently
// in progress.
func (xf *Crossfade) Crossfading() bool {
	return !xf.fader.State().Reached()
}

// BlockSize returns the configured processing block size.
func (xf *Crossfade) BlockSize() int {
	return len(xf.bufA)
}

// Update stages response for install. It always just stores the response
// and marks it pending (supersedes any previously staged response,
// coalesce-latest-wins, until it is actually installed) — it never
// installs directly. Process installs the staged response (and starts the
// fade) only after it finishes the block that was already in flight when
// Update was called, so that block is never retroactively affected: the
// fade itself only ever starts on the next block boundary.
func (xf *Crossfade) Update(response []float32) error {
	if len(response) > xf.maxResponseLength {
		return fmt.Errorf("%w: %d > %d", ErrResponseTooLong, len(response), xf.maxResponseLength)
	}

	clear(xf.storedResponse)
	copy(xf.storedResponse, response)
	xf.responsePending = true
	return nil
}

// installAndFade writes response into the engine opposite the current
// fade target (without resetting that engine's input history, since it
// keeps running underneath the fade) and starts a fade toward that
// opposite target.
func (xf *Crossfade) installAndFade(response []float32) error {
	current := xf.fader.State().Target()
	opposite := oppositeTarget(current)

	if err := xf.engines[opposite].setSegments(response); err != nil {
		return err
	}
	xf.fader.FadeInto(opposite)
	return nil
}

func oppositeTarget(t crossfade.Target) crossfade.Target {
	if t == crossfade.TargetA {
		return crossfade.TargetB
	}
	return crossfade.TargetA
}

// Process runs one block through both engines and writes the crossfaded
// result to output. If a staged update is waiting and no fade is currently
// in progress, it is installed (and its fade started) only after this
// block's output has been computed, so it first takes effect on the next
// call.
func (xf *Crossfade) Process(input, output []float32) error {
	s := len(xf.bufA)
	if len(input) != s || len(output) != s {
		return fmt.Errorf("%w: block size %d, got input=%d output=%d", ErrLengthMismatch, s, len(input), len(output))
	}

	if err := xf.engines[crossfade.TargetA].Process(input, xf.bufA); err != nil {
		return err
	}
	if err := xf.engines[crossfade.TargetB].Process(input, xf.bufB); err != nil {
		return err
	}

	for i := range output {
		output[i] = xf.fader.Mix(xf.bufA[i], xf.bufB[i])
	}

	if xf.responsePending && xf.fader.State().Reached() {
		if err := xf.installAndFade(xf.storedResponse); err != nil {
			return err
		}
		xf.responsePending = false
	}

	return nil
}

// Reset clears both underlying engines' FDL and overlap history. The fade
// state, installed responses and pending update are left untouched.
func (xf *Crossfade) Reset() {
	xf.engines[crossfade.TargetA].Reset()
	xf.engines[crossfade.TargetB].Reset()
}
