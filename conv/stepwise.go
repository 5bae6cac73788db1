package conv

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Stepwise wraps an Engine and replaces its impulse response one segment
// per block, optionally spreading each segment's replacement over several
// blocks (scaleFactor) so the commit is a cross-interpolation rather than a
// hard swap.
//
// Stepwise is not safe for concurrent use: Update and Process must be
// externally serialized on the same instance, exactly like Engine.
type Stepwise struct {
	engine      *Engine
	blockSize   int
	segCount    int
	scaleFactor int

	// currentResponse, nextResponse and queuedResponse are each
	// segCount*blockSize long: the fixed-size, zero-padded working copies
	// Update and the step schedule read and write. No allocation happens
	// past construction.
	currentResponse []float32
	nextResponse    []float32
	queuedResponse  []float32

	transitionCounter int
	switching         bool
	responsePending   bool

	// mixWindow and mixScratch are blockSize-long scratch buffers for the
	// per-segment windowed mix.
	mixWindow  []float32
	mixScratch []float32
}

// NewStepwise constructs a Stepwise convolver. response is the initial
// impulse response (at most maxResponseLength samples); blockSize and
// maxResponseLength size the underlying Engine exactly as NewEngine does.
// scaleFactor is the number of blocks spent per segment during a transition
// and must be >= 1 (1 is a hard per-block segment swap).
func NewStepwise(response []float32, blockSize, maxResponseLength, scaleFactor int) (*Stepwise, error) {
	if scaleFactor < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidScaleFactor, scaleFactor)
	}

	engine, err := NewEngine(response, blockSize, maxResponseLength)
	if err != nil {
		return nil, err
	}

	segCount := engine.ActiveSegCount()
	bufLen := segCount * blockSize

	sw := &Stepwise{
		engine:          engine,
		blockSize:       blockSize,
		segCount:        segCount,
		scaleFactor:     scaleFactor,
		currentResponse: make([]float32, bufLen),
		nextResponse:    make([]float32, bufLen),
		queuedResponse:  make([]float32, bufLen),
		mixWindow:       make([]float32, blockSize),
		mixScratch:      make([]float32, blockSize),
	}
	copy(sw.currentResponse, response)

	return sw, nil
}

// Switching reports whether a transition to a new response is currently in
// progress.
func (sw *Stepwise) Switching() bool {
	return sw.switching
}

// TransitionBlocks returns the number of Process calls a full transition
// takes to complete: one per segment per scale factor step.
func (sw *Stepwise) TransitionBlocks() int {
	return sw.segCount * sw.scaleFactor
}

// BlockSize returns the configured processing block size.
func (sw *Stepwise) BlockSize() int {
	return sw.blockSize
}

// Update begins (or queues) a transition to a new response. If no
// transition is in progress, response becomes the target and the
// transition starts on the next Process call. If a transition is already
// in progress, response is queued and supersedes any previously queued
// response (coalesce-latest-wins) until the current transition commits.
func (sw *Stepwise) Update(response []float32) error {
	maxLen := sw.engine.maxResponseLength
	if len(response) > maxLen {
		return fmt.Errorf("%w: %d > %d", ErrResponseTooLong, len(response), maxLen)
	}

	if !sw.switching {
		clear(sw.nextResponse)
		copy(sw.nextResponse, response)
		sw.switching = true
		sw.responsePending = false
		return nil
	}

	clear(sw.queuedResponse)
	copy(sw.queuedResponse, response)
	sw.responsePending = true
	return nil
}

// Process runs one block of the step schedule (if a transition is in
// progress) and then delegates to the underlying Engine.
func (sw *Stepwise) Process(input, output []float32) error {
	if sw.switching {
		sw.stepSchedule()
	}
	return sw.engine.Process(input, output)
}

// Reset clears the underlying Engine's FDL and overlap history. Any
// in-progress transition and pending update are left untouched, matching
// Engine.Reset's "IR state is untouched" contract.
func (sw *Stepwise) Reset() {
	sw.engine.Reset()
}

func (sw *Stepwise) stepSchedule() {
	f := sw.scaleFactor
	c := sw.transitionCounter

	segIndex := c / f
	phase := float32((c%f)+1) / float32(f)

	s := sw.blockSize
	start := segIndex * s
	end := start + s

	vecmath.ScaleBlock(sw.mixWindow, sw.currentResponse[start:end], 1-phase)
	vecmath.ScaleBlock(sw.mixScratch, sw.nextResponse[start:end], phase)
	vecmath.AddBlockInPlace(sw.mixWindow, sw.mixScratch)

	// updateSegmentWindow cannot fail here: segIndex is derived from c,
	// which stepSchedule's caller only advances while switching, and the
	// commit below stops the schedule once c/f reaches segCount.
	_ = sw.engine.updateSegmentWindow(sw.mixWindow, segIndex)

	sw.transitionCounter++

	if sw.transitionCounter/f == sw.segCount {
		copy(sw.currentResponse, sw.nextResponse)
		sw.switching = false
		sw.transitionCounter = 0

		if sw.responsePending {
			copy(sw.nextResponse, sw.queuedResponse)
			sw.responsePending = false
			sw.switching = true
		}
	}
}
