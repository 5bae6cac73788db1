// Package conv implements a real-time FIR convolution core built around a
// partitioned, block-overlap-save FFT convolver (Engine), and two strategies
// for changing its impulse response on the fly without audible artifacts:
//
//   - Stepwise replaces the engine's frequency-domain segments one per
//     processing block, spreading the transition over time with a single
//     engine (one extra segment transform per block while switching).
//   - Crossfade runs two engines in parallel and blends between them with a
//     sample-accurate raised-cosine (or other) envelope, guaranteeing an
//     artifact-free transition regardless of signal content at roughly
//     double the steady-state cost.
//
// # Usage
//
// For a fixed impulse response, use Engine directly:
//
//	e, err := conv.NewEngine(response, blockSize, len(response))
//	err = e.Process(input, output)
//
// For a response that changes at runtime, wrap it in Stepwise or Crossfade:
//
//	sw, err := conv.NewStepwise(response, blockSize, maxResponseLength, 1)
//	sw.Update(newResponse)
//	err = sw.Process(input, output)
//
//	xf, err := conv.NewCrossfade(response, blockSize, maxResponseLength, blockSize)
//	xf.Update(newResponse)
//	err = xf.Process(input, output)
//
// All buffers are allocated once at construction from blockSize and
// maxResponseLength; Process and Update never allocate.
package conv
