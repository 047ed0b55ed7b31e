package audio

import (
	"fmt"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/codeblessmax/sound-garden-0x2/vm"
)

// Recorder captures frames and writes them out as a 16-bit PCM WAV
// file on Close. Samples accumulate in memory until then: Write is
// called from the audio path, and the encoder's file I/O has no place
// there. A one-hour stereo take at 48 kHz is a few gigabytes short of
// being a problem.
type Recorder struct {
	path       string
	sampleRate int
	data       []int
	closed     bool
}

// NewRecorder prepares a recorder targeting path. Nothing touches the
// filesystem until Close.
func NewRecorder(path string, sampleRate int) *Recorder {
	return &Recorder{
		path:       path,
		sampleRate: sampleRate,
		data:       make([]int, 0, sampleRate*vm.CHANNELS),
	}
}

// Write appends one frame, clipped and scaled to the 16-bit range.
func (r *Recorder) Write(f vm.Frame) {
	for c := 0; c < vm.CHANNELS; c++ {
		r.data = append(r.data, int(vm.Clip(f[c])*32767))
	}
}

// Frames returns the number of frames captured so far.
func (r *Recorder) Frames() int {
	return len(r.data) / vm.CHANNELS
}

// Close encodes everything captured and writes the WAV file. Calling
// it again is a no-op.
func (r *Recorder) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", r.path, err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, r.sampleRate, 16, vm.CHANNELS, 1)
	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: vm.CHANNELS,
			SampleRate:  r.sampleRate,
		},
		Data:           r.data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return fmt.Errorf("cannot write %s: %w", r.path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("cannot finalize %s: %w", r.path, err)
	}
	return nil
}
