package conv

import "testing"

// TestSetResponseZeroesShrunkTail checks that replacing a long response
// with a shorter one zeroes the now-unused segment spectra rather than
// leaving the previous IR's tail contributing to the output, so Process's
// fixed-segCount accumulation loop never needs to special-case a shrunk
// response.
func TestSetResponseZeroesShrunkTail(t *testing.T) {
	const blockSize = 256
	const maxLen = 4 * blockSize

	e, err := NewEngine(generateSinusoid(maxLen, 600, 48000, 0.8), blockSize, maxLen)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	if err := e.SetResponse(impulseResponse(blockSize)); err != nil {
		t.Fatalf("SetResponse: %v", err)
	}

	input := randomSignal(blockSize, 42)
	output := make([]float32, blockSize)
	if err := e.Process(input, output); err != nil {
		t.Fatalf("Process: %v", err)
	}
	assertCloseSlice(t, output, input, 1e-6, "shrunk response behaves as pass-through")

	e2, err := NewEngine(impulseResponse(blockSize), blockSize, maxLen)
	if err != nil {
		t.Fatalf("NewEngine (fresh): %v", err)
	}
	output2 := make([]float32, blockSize)
	if err := e2.Process(input, output2); err != nil {
		t.Fatalf("Process (fresh): %v", err)
	}
	assertCloseSlice(t, output, output2, 1e-6, "shrunk response matches a freshly constructed engine with the same short IR")
}

// TestStepwiseFinalSegmentReachesFullPhase checks the design note's
// requirement that the loop bound on segment index is exclusive while the
// phase value is inclusive of 1.0: the last segment written during a
// transition must be installed purely from nextResponse, not a blend.
func TestStepwiseFinalSegmentReachesFullPhase(t *testing.T) {
	const blockSize = 128
	const segCount = 3
	const maxLen = segCount * blockSize
	const scaleFactor = 2

	oldResponse := generateSinusoid(maxLen, 300, 48000, 0.5)
	newResponse := generateSinusoid(maxLen, 900, 48000, 0.9)

	sw, err := NewStepwise(oldResponse, blockSize, maxLen, scaleFactor)
	if err != nil {
		t.Fatalf("NewStepwise: %v", err)
	}
	if err := sw.Update(newResponse); err != nil {
		t.Fatalf("Update: %v", err)
	}

	refNew, err := NewEngine(newResponse, blockSize, maxLen)
	if err != nil {
		t.Fatalf("NewEngine ref: %v", err)
	}

	input := make([]float32, blockSize)
	output := make([]float32, blockSize)
	total := sw.TransitionBlocks()
	for i := 0; i < total; i++ {
		if err := sw.Process(input, output); err != nil {
			t.Fatalf("Process block %d: %v", i, err)
		}
	}
	if sw.Switching() {
		t.Fatal("expected the transition to have committed")
	}

	// Post-commit, the engine's last segment spectrum must match the one a
	// freshly constructed engine over the full new response computes,
	// i.e. phase reached exactly 1.0 and the blend contributed nothing of
	// the old response.
	lastSeg := segCount - 1
	got := make([]complex64, len(sw.engine.irSpectra[lastSeg]))
	copy(got, sw.engine.irSpectra[lastSeg])
	want := refNew.irSpectra[lastSeg]

	if len(got) != len(want) {
		t.Fatalf("spectrum length mismatch: got=%d want=%d", len(got), len(want))
	}
	for i := range got {
		d := got[i] - want[i]
		if re := real(d); re > 1e-4 || re < -1e-4 {
			t.Fatalf("segment %d bin %d real part = %v, want %v", lastSeg, i, got[i], want[i])
		}
		if im := imag(d); im > 1e-4 || im < -1e-4 {
			t.Fatalf("segment %d bin %d imag part = %v, want %v", lastSeg, i, got[i], want[i])
		}
	}
}
