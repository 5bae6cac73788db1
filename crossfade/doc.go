// Package crossfade implements a sample-accurate crossfade envelope: a
// state machine that walks a blend weight from one endpoint to the other
// over a fixed number of samples, plus a handful of gain-curve shapes to
// evaluate it with.
//
// Crossfader is the reusable building block behind conv.Crossfade, but has
// no dependency on conv itself — it mixes two float32 values, nothing more.
package crossfade
