// Package audio connects the machine to the outside world: a PortAudio
// output stream that pulls frames from a FrameSource, and a WAV
// recorder for capturing or offline-rendering a performance.
//
// The PortAudio runtime has process-global lifecycle (Initialize and
// Terminate); commands own that, this package only opens streams.
package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"

	"github.com/codeblessmax/sound-garden-0x2/vm"
)

// FrameSource produces one frame per call. The engine satisfies it; so
// does a bare VM. NextFrame is called from the PortAudio callback
// thread, once per output frame.
type FrameSource interface {
	NextFrame() vm.Frame
}

// Output is a default-device PortAudio stream pulling from a
// FrameSource. Every sample is hard-clipped to [-1, 1] and narrowed to
// float32 on the way out; the synthesis core itself never clamps.
type Output struct {
	stream *portaudio.Stream
}

// NewOutput opens a callback stream on the default output device.
// bufferSize is the frames-per-buffer hint handed to PortAudio. The
// caller must have run portaudio.Initialize first.
func NewOutput(src FrameSource, sampleRate, bufferSize int) (*Output, error) {
	stream, err := portaudio.OpenDefaultStream(
		0, vm.CHANNELS, float64(sampleRate), bufferSize,
		func(out []float32) {
			for i := 0; i < len(out); i += vm.CHANNELS {
				f := src.NextFrame()
				for c := 0; c < vm.CHANNELS; c++ {
					out[i+c] = float32(vm.Clip(f[c]))
				}
			}
		})
	if err != nil {
		return nil, fmt.Errorf("cannot open output stream: %w", err)
	}
	return &Output{stream: stream}, nil
}

// Start begins pulling frames.
func (o *Output) Start() error {
	if err := o.stream.Start(); err != nil {
		return fmt.Errorf("cannot start output stream: %w", err)
	}
	return nil
}

// Stop drains and halts the stream. The source stops being called.
func (o *Output) Stop() error {
	if err := o.stream.Stop(); err != nil {
		return fmt.Errorf("cannot stop output stream: %w", err)
	}
	return nil
}

// Close releases the stream. The Output is unusable afterwards.
func (o *Output) Close() error {
	return o.stream.Close()
}

// tee forwards frames from a source while copying them into a recorder.
type tee struct {
	src FrameSource
	rec *Recorder
}

func (t *tee) NextFrame() vm.Frame {
	f := t.src.NextFrame()
	t.rec.Write(f)
	return f
}

// Tee wraps src so every frame pulled through it is also written to
// rec. Wrap the engine with it before opening an Output to record a
// performance while it plays.
func Tee(src FrameSource, rec *Recorder) FrameSource {
	return &tee{src: src, rec: rec}
}
