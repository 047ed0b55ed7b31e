package vm

import "testing"

// voiceProgram builds a representative patch touching every stateful
// operator class: noise through a filter, a panned oscillator, a delay.
func voiceProgram(tb testing.TB) *Program {
	tb.Helper()
	code := []Instr{
		{Code: OpNoise, State: NewState(OpNoise, 7, 48000)},
		{Code: OpConst, Value: 2000},
		{Code: OpLPF, State: NewState(OpLPF, 0, 48000)},
		{Code: OpConst, Value: 110},
		{Code: OpSaw, State: NewState(OpSaw, 0, 48000)},
		{Code: OpAdd},
		{Code: OpDup},
		{Code: OpDelay, State: NewState(OpDelay, 0.3, 48000)},
		{Code: OpAdd},
		{Code: OpTanh},
		{Code: OpConst, Value: 0.2},
		{Code: OpPan},
	}
	p, err := NewProgram(code, 48000)
	if err != nil {
		tb.Fatalf("NewProgram failed: %v", err)
	}
	return p
}

func TestNextFrameDoesNotAllocate(t *testing.T) {
	v := New()
	v.LoadProgram(voiceProgram(t))

	allocs := testing.AllocsPerRun(1000, func() {
		v.NextFrame()
	})
	if allocs != 0 {
		t.Errorf("NextFrame allocated %.1f times per run", allocs)
	}
}

func BenchmarkNextFrame(b *testing.B) {
	v := New()
	v.LoadProgram(voiceProgram(b))

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.NextFrame()
	}
}

func BenchmarkNextFrameSingleOscillator(b *testing.B) {
	v := New()
	p, err := NewProgram([]Instr{
		{Code: OpConst, Value: 440},
		{Code: OpSine, State: NewState(OpSine, 0, 48000)},
	}, 48000)
	if err != nil {
		b.Fatalf("NewProgram failed: %v", err)
	}
	v.LoadProgram(p)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.NextFrame()
	}
}

func BenchmarkLoadProgram(b *testing.B) {
	v := New()
	pA := voiceProgram(b)
	pB := voiceProgram(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%2 == 0 {
			v.LoadProgram(pA)
		} else {
			v.LoadProgram(pB)
		}
	}
}
