package crossfade

import "fmt"

// Target identifies which side of a crossfade a FadingState refers to.
type Target int

const (
	// TargetA is the side with weight 0 (value=0).
	TargetA Target = iota
	// TargetB is the side with weight 1 (value=1).
	TargetB
)

// String implements fmt.Stringer.
func (t Target) String() string {
	if t == TargetB {
		return "B"
	}
	return "A"
}

// FadingState is a tagged union over {Reached(Target), Approaching(Target)}.
// It is deliberately not represented as a pair of booleans: every accessor
// on Crossfader goes through this interface so the invariants from the
// component design (counter/value/step relative to the variant) stay
// expressed in terms of the variant itself.
type FadingState interface {
	// Target returns the endpoint this state is reached at or approaching.
	Target() Target
	// Reached reports whether this is a Reached (vs. Approaching) state.
	Reached() bool
}

type reachedState struct{ target Target }

func (s reachedState) Target() Target { return s.target }
func (s reachedState) Reached() bool  { return true }

type approachingState struct{ target Target }

func (s approachingState) Target() Target { return s.target }
func (s approachingState) Reached() bool  { return false }

// Option configures a Crossfader at construction.
type Option func(*Crossfader)

// WithMixer sets the gain curve used while Approaching. The default is
// RaisedCosine.
func WithMixer(m Mixer) Option {
	return func(c *Crossfader) {
		if m != nil {
			c.mixer = m
		}
	}
}

// Crossfader is a sample-accurate fade between two signals, weighted by a
// Mixer curve. It starts Reached(A) with value 0 (full weight on a).
type Crossfader struct {
	mixer   Mixer
	samples int
	counter int
	step    float32
	value   float32
	state   FadingState
}

// New creates a Crossfader that fades over the given number of samples.
// samples must be >= 1.
func New(samples int, opts ...Option) (*Crossfader, error) {
	if samples < 1 {
		return nil, fmt.Errorf("crossfade: samples must be >= 1, got %d", samples)
	}

	c := &Crossfader{
		mixer:   RaisedCosine{},
		samples: samples,
		counter: 0,
		step:    -1.0 / float32(samples), // see FadeInto: Reached(A) holds the step toward A, which FadeInto(B) negates
		value:   0,
		state:   reachedState{target: TargetA},
	}
	for _, o := range opts {
		if o != nil {
			o(c)
		}
	}
	return c, nil
}

// State returns the current fading state.
func (c *Crossfader) State() FadingState {
	return c.state
}

// Value returns the current blend weight (weight of B).
func (c *Crossfader) Value() float32 {
	return c.value
}

// FadeInto begins approaching target. A no-op if target is already the
// current state's target (whether Reached or Approaching it).
//
// Starting fresh from Reached, the counter resets to 0 and a full-length
// fade begins. Reversing mid-fade (Approaching the opposite target)
// reflects the counter (counter <- samples - counter) so the value
// trajectory stays continuous at the point of reversal, per the
// relationship between step sign and elapsed samples.
func (c *Crossfader) FadeInto(target Target) {
	if c.state.Target() == target {
		return
	}

	c.step = -c.step

	if c.state.Reached() {
		c.counter = 0
	} else {
		c.counter = c.samples - c.counter
	}

	c.state = approachingState{target: target}
}

// Mix blends a (weight toward A) and b (weight toward B) for the next
// output sample, advancing the fade state by one sample.
func (c *Crossfader) Mix(a, b float32) float32 {
	if c.state.Reached() {
		if c.state.Target() == TargetB {
			return b
		}
		return a
	}

	target := c.state.Target()
	c.value += c.step
	c.counter++

	if c.counter == c.samples {
		c.state = reachedState{target: target}
		if target == TargetB {
			c.value = 1
			return b
		}
		c.value = 0
		return a
	}

	return c.mixer.Mix(a, b, c.value)
}
