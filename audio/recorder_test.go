package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/codeblessmax/sound-garden-0x2/vm"
)

func TestRecorderWritesValidWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	rec := NewRecorder(path, 44100)

	for i := 0; i < 100; i++ {
		rec.Write(vm.Frame{0.5, -0.5})
	}
	if rec.Frames() != 100 {
		t.Errorf("Expected 100 frames captured, got %d", rec.Frames())
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Cannot open recording: %v", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		t.Fatalf("Cannot decode recording: %v", err)
	}
	if dec.NumChans != vm.CHANNELS {
		t.Errorf("Expected %d channels, got %d", vm.CHANNELS, dec.NumChans)
	}
	if int(dec.SampleRate) != 44100 {
		t.Errorf("Expected rate 44100, got %d", dec.SampleRate)
	}
	if len(buf.Data) != 100*vm.CHANNELS {
		t.Fatalf("Expected %d samples, got %d", 100*vm.CHANNELS, len(buf.Data))
	}
	if buf.Data[0] != 16383 || buf.Data[1] != -16383 {
		t.Errorf("Expected first frame [16383 -16383], got [%d %d]", buf.Data[0], buf.Data[1])
	}
}

func TestRecorderClipsOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hot.wav")
	rec := NewRecorder(path, 48000)
	rec.Write(vm.Frame{2.0, -3.0})
	if err := rec.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Cannot open recording: %v", err)
	}
	defer f.Close()

	buf, err := wav.NewDecoder(f).FullPCMBuffer()
	if err != nil {
		t.Fatalf("Cannot decode recording: %v", err)
	}
	if buf.Data[0] != 32767 || buf.Data[1] != -32767 {
		t.Errorf("Expected clipped frame [32767 -32767], got [%d %d]", buf.Data[0], buf.Data[1])
	}
}

func TestRecorderCloseTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "take.wav")
	rec := NewRecorder(path, 48000)
	rec.Write(vm.Frame{})
	if err := rec.Close(); err != nil {
		t.Fatalf("First Close failed: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

// constSource always produces the same frame.
type constSource struct{ f vm.Frame }

func (s constSource) NextFrame() vm.Frame { return s.f }

func TestTeeCopiesFramesToRecorder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tee.wav")
	rec := NewRecorder(path, 48000)
	src := Tee(constSource{vm.Frame{0.25, 0.75}}, rec)

	for i := 0; i < 10; i++ {
		f := src.NextFrame()
		if f[0] != 0.25 || f[1] != 0.75 {
			t.Fatalf("Tee altered the frame: %v", f)
		}
	}
	if rec.Frames() != 10 {
		t.Errorf("Expected 10 frames recorded, got %d", rec.Frames())
	}
}
