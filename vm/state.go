package vm

import "math"

// MaxDelaySeconds caps the time parameter of a delay operator. It bounds
// the ring allocation a single token can demand.
const MaxDelaySeconds = 10.0

// DefaultNoiseSeed seeds a noise generator that was given no explicit
// seed and no identity-derived one. Must be nonzero: the xorshift
// generator is stuck at zero.
const DefaultNoiseSeed uint64 = 0x9E3779B97F4A7C15

const tau = 2 * math.Pi

// NodeState is the mutable per-instance state of one stateful operator.
// One record serves every compilation of the same logical token, which is
// how an oscillator keeps its phase across program edits. The fields are
// a union: each operator kind touches only its own.
//
// A record is shared between the compiler's Context (control thread) and
// any Program that references it (audio thread). Once a record has been
// handed to a Program, only the audio thread writes to it; the control
// side expresses every change of shape (a different ring length, a new
// seed) by building a fresh record instead. Neither side frees records;
// one lives while either still holds it.
type NodeState struct {
	Phase float64   // oscillators: position in the cycle, [0, 1)
	Rng   uint64    // noise: xorshift generator state, never zero
	Mem   [2]Sample // filters: [0] output memory, [1] previous input
	Ring  []Sample  // delay: circular buffer, sized at construction
	Pos   int       // delay: write head into Ring
}

// NewState builds a state record shaped for the given operator.
// param carries the structural parameter where one applies: the delay
// time in seconds (ring length), or the noise seed. sampleRate converts
// the delay time to a ring length.
func NewState(op Opcode, param Sample, sampleRate int) *NodeState {
	st := &NodeState{}
	switch op {
	case OpNoise:
		seed := uint64(param)
		if seed == 0 {
			seed = DefaultNoiseSeed
		}
		st.Rng = seed
	case OpDelay:
		n := int(param * Sample(sampleRate))
		if n < 1 {
			n = 1
		}
		st.Ring = make([]Sample, n)
	}
	return st
}

// noiseNorm maps the full uint64 range onto [-1, 1).
const noiseNorm = 2.0 / math.MaxUint64

// noise advances the xorshift generator one step and returns a sample
// in [-1, 1).
func (st *NodeState) noise() Sample {
	st.Rng ^= st.Rng << 13
	st.Rng ^= st.Rng >> 7
	st.Rng ^= st.Rng << 17
	return float64(st.Rng)*noiseNorm - 1
}

// lpfCoeff converts a cutoff frequency to a one-pole low-pass smoothing
// coefficient at the given sample rate.
func lpfCoeff(f, sr float64) float64 {
	return 1 / (1 + 1/(tau*f/sr))
}

// hpfCoeff converts a cutoff frequency to a one-pole high-pass (DC
// blocker) coefficient at the given sample rate.
func hpfCoeff(f, sr float64) float64 {
	return 1 / (1 + tau*f/sr)
}
