// Play CLI - compile a program from stdin and play or render it
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gordonklaus/portaudio"

	"github.com/codeblessmax/sound-garden-0x2/audio"
	"github.com/codeblessmax/sound-garden-0x2/compiler"
	"github.com/codeblessmax/sound-garden-0x2/vm"
)

func main() {
	expr := flag.String("e", "", "Program text (default: read from stdin)")
	sampleRate := flag.Int("sr", 48000, "Sample rate in Hz")
	wavPath := flag.String("wav", "", "Render to a WAV file instead of playing")
	dur := flag.Duration("dur", 10*time.Second, "Render length (with -wav)")
	bufferSize := flag.Int("buf", 256, "Frames per buffer (with audio output)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: play [options]\n\n")
		fmt.Fprintf(os.Stderr, "Compiles one program and plays it until interrupted, or renders it offline.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  echo 'sine:440 0.3 *' | play\n")
		fmt.Fprintf(os.Stderr, "  play -e 'noise lpf:400'\n")
		fmt.Fprintf(os.Stderr, "  play -e 'saw:55 0.2 *' -wav bass.wav -dur 5s\n")
	}
	flag.Parse()

	text := *expr
	if text == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		text = string(data)
	}

	ops := compiler.ParseOps(text)
	program, err := compiler.Compile(ops, *sampleRate, compiler.NewContext())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	machine := vm.New()
	machine.LoadProgram(program)

	if *wavPath != "" {
		if err := render(machine, *wavPath, *sampleRate, *dur); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := play(machine, *sampleRate, *bufferSize); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// render pulls frames in a plain loop and writes them to a WAV file.
// No sound card involved.
func render(machine *vm.VM, path string, sampleRate int, dur time.Duration) error {
	frames := int(dur.Seconds() * float64(sampleRate))
	rec := audio.NewRecorder(path, sampleRate)
	for i := 0; i < frames; i++ {
		rec.Write(machine.NextFrame())
	}
	if err := rec.Close(); err != nil {
		return err
	}
	fmt.Printf("Rendered %d frames to %s\n", frames, path)
	return nil
}

// play streams to the default device until SIGINT or SIGTERM.
func play(machine *vm.VM, sampleRate, bufferSize int) error {
	if err := portaudio.Initialize(); err != nil {
		return err
	}
	defer portaudio.Terminate()

	out, err := audio.NewOutput(machine, sampleRate, bufferSize)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := out.Start(); err != nil {
		return err
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	fmt.Fprintln(os.Stderr)

	return out.Stop()
}
