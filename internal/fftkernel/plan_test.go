package fftkernel

import "testing"

func TestPackRealZeroPads(t *testing.T) {
	dst := make([]complex64, 8)
	for i := range dst {
		dst[i] = complex(99, 99) // poison to make zero-padding visible
	}
	src := []float32{1, 2, 3}

	PackReal(dst, src)

	for i, want := range []float32{1, 2, 3, 0, 0, 0, 0, 0} {
		if real(dst[i]) != want || imag(dst[i]) != 0 {
			t.Fatalf("dst[%d] = %v, want (%v+0i)", i, dst[i], want)
		}
	}
}

func TestPackRealTruncatesOversizeSrc(t *testing.T) {
	dst := make([]complex64, 4)
	src := []float32{1, 2, 3, 4, 5, 6}

	PackReal(dst, src)

	for i, want := range []float32{1, 2, 3, 4} {
		if real(dst[i]) != want {
			t.Fatalf("dst[%d] = %v, want %v", i, real(dst[i]), want)
		}
	}
}

func TestUnpackReal(t *testing.T) {
	src := []complex64{complex(1, 5), complex(2, -3), complex(-4, 0)}
	dst := make([]float32, 3)

	UnpackReal(dst, src)

	for i, want := range []float32{1, 2, -4} {
		if dst[i] != want {
			t.Fatalf("dst[%d] = %v, want %v", i, dst[i], want)
		}
	}
}

func TestPlanRoundTripIsIdentity(t *testing.T) {
	const size = 16

	plan, err := New(size)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	src := make([]float32, size)
	for i := range src {
		src[i] = float32(i%5) - 2
	}

	buf := make([]complex64, size)
	PackReal(buf, src)

	if err := plan.Forward(buf, buf); err != nil {
		t.Fatalf("Forward: %v", err)
	}
	if err := plan.Inverse(buf, buf); err != nil {
		t.Fatalf("Inverse: %v", err)
	}

	out := make([]float32, size)
	UnpackReal(out, buf)

	for i := range src {
		if diff := float64(out[i] - src[i]); diff > 1e-4 || diff < -1e-4 {
			t.Fatalf("round trip[%d] = %v, want %v", i, out[i], src[i])
		}
	}
}
