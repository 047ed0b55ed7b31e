package vm

// Sample is a single audio sample. All synthesis runs in float64; the
// output layer narrows to whatever the device wants.
type Sample = float64

// CHANNELS is the number of output channels, fixed at build time.
// Channel 0 is left.
const CHANNELS = 2

// Frame holds one Sample per output channel. It is a value type: producing
// one allocates nothing, and the zero Frame is silence.
type Frame = [CHANNELS]Sample

// Clip hard-limits a sample to [-1, 1]. The output layer applies it to
// every sample leaving the machine; it is also the kernel of the clip
// operator.
func Clip(x Sample) Sample {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}
