package vm

import (
	"math"
	"sync/atomic"
)

// VM evaluates the currently loaded Program once per call to NextFrame.
//
// Exactly one goroutine may call NextFrame (the audio callback); any
// other goroutine may call LoadProgram concurrently with it. The only
// shared point is an atomic program pointer, so the audio side never
// waits on the control side.
type VM struct {
	program atomic.Pointer[Program]
	stack   Stack
}

// New returns a machine with no program loaded. It produces silence
// until the first LoadProgram.
func New() *VM {
	return &VM{}
}

// LoadProgram atomically installs p as the running program. The swap
// takes effect at the next frame boundary: a frame mid-evaluation
// finishes under the program it started with. Loading nil silences the
// machine.
func (v *VM) LoadProgram(p *Program) {
	v.program.Store(p)
}

// Program returns the currently installed program, or nil.
func (v *VM) Program() *Program {
	return v.program.Load()
}

// NextFrame evaluates the current program and returns one output frame.
// It resets the evaluation stack, executes every instruction in order,
// and maps the final stack onto the channels: exact when the depth
// matches CHANNELS, top CHANNELS values when deeper, top value repeated
// when shallower. With no program loaded it returns silence.
//
// NextFrame does not allocate, lock, or branch on anything but the
// instruction stream; it is safe to call from a real-time audio thread.
func (v *VM) NextFrame() Frame {
	var f Frame
	p := v.program.Load()
	if p == nil {
		return f
	}
	s := &v.stack
	s.Reset()
	rate, inv := p.rate, p.inv
	code := p.code
	for i := range code {
		in := &code[i]
		switch in.Code {
		case OpConst:
			s.Push(in.Value)

		case OpDup:
			s.Push(s.Peek())
		case OpSwap:
			b, a := s.Pop(), s.Pop()
			s.Push(b)
			s.Push(a)
		case OpDrop:
			s.Pop()
		case OpOver:
			b, a := s.Pop(), s.Pop()
			s.Push(a)
			s.Push(b)
			s.Push(a)
		case OpRot:
			c, b, a := s.Pop(), s.Pop(), s.Pop()
			s.Push(b)
			s.Push(c)
			s.Push(a)

		case OpAdd:
			b, a := s.Pop(), s.Pop()
			s.Push(a + b)
		case OpSub:
			b, a := s.Pop(), s.Pop()
			s.Push(a - b)
		case OpMul:
			b, a := s.Pop(), s.Pop()
			s.Push(a * b)
		case OpDiv:
			b, a := s.Pop(), s.Pop()
			s.Push(a / b)
		case OpMod:
			b, a := s.Pop(), s.Pop()
			s.Push(math.Mod(a, b))
		case OpPow:
			b, a := s.Pop(), s.Pop()
			s.Push(math.Pow(a, b))
		case OpMin:
			b, a := s.Pop(), s.Pop()
			s.Push(math.Min(a, b))
		case OpMax:
			b, a := s.Pop(), s.Pop()
			s.Push(math.Max(a, b))

		case OpGt:
			b, a := s.Pop(), s.Pop()
			if a > b {
				s.Push(1)
			} else {
				s.Push(0)
			}
		case OpLt:
			b, a := s.Pop(), s.Pop()
			if a < b {
				s.Push(1)
			} else {
				s.Push(0)
			}

		case OpAbs:
			s.Push(math.Abs(s.Pop()))
		case OpNeg:
			s.Push(-s.Pop())
		case OpSqrt:
			s.Push(math.Sqrt(s.Pop()))
		case OpTanh:
			s.Push(math.Tanh(s.Pop()))
		case OpRound:
			s.Push(math.Round(s.Pop()))
		case OpClip:
			s.Push(Clip(s.Pop()))

		case OpSine:
			st, freq := in.State, s.Pop()
			s.Push(math.Sin(tau * st.Phase))
			st.Phase = wrap(st.Phase + freq*inv)
		case OpCosine:
			st, freq := in.State, s.Pop()
			s.Push(math.Cos(tau * st.Phase))
			st.Phase = wrap(st.Phase + freq*inv)
		case OpTri:
			st, freq := in.State, s.Pop()
			s.Push(1 - 4*math.Abs(st.Phase-0.5))
			st.Phase = wrap(st.Phase + freq*inv)
		case OpSaw:
			st, freq := in.State, s.Pop()
			s.Push(2*st.Phase - 1)
			st.Phase = wrap(st.Phase + freq*inv)
		case OpSquare:
			st, freq := in.State, s.Pop()
			if st.Phase < 0.5 {
				s.Push(1)
			} else {
				s.Push(-1)
			}
			st.Phase = wrap(st.Phase + freq*inv)
		case OpPhasor:
			st, freq := in.State, s.Pop()
			s.Push(st.Phase)
			st.Phase = wrap(st.Phase + freq*inv)

		case OpNoise:
			s.Push(in.State.noise())

		case OpDelay:
			st := in.State
			x := s.Pop()
			s.Push(st.Ring[st.Pos])
			st.Ring[st.Pos] = x
			st.Pos++
			if st.Pos == len(st.Ring) {
				st.Pos = 0
			}

		case OpLPF:
			fc, x := s.Pop(), s.Pop()
			st := in.State
			st.Mem[0] += (x - st.Mem[0]) * lpfCoeff(fc, rate)
			s.Push(st.Mem[0])
		case OpHPF:
			fc, x := s.Pop(), s.Pop()
			st := in.State
			y := (st.Mem[0] + x - st.Mem[1]) * hpfCoeff(fc, rate)
			st.Mem[0], st.Mem[1] = y, x
			s.Push(y)

		case OpPan:
			pos, x := s.Pop(), s.Pop()
			if pos > 1 {
				pos = 1
			} else if pos < -1 {
				pos = -1
			}
			a := (pos + 1) * (math.Pi / 4)
			s.Push(x * math.Cos(a))
			s.Push(x * math.Sin(a))
		}
	}

	d := p.depth
	if d >= CHANNELS {
		base := d - CHANNELS
		for c := 0; c < CHANNELS; c++ {
			f[c] = s.data[base+c]
		}
	} else {
		for c := 0; c < CHANNELS; c++ {
			i := c
			if i >= d {
				i = d - 1
			}
			f[c] = s.data[i]
		}
	}
	return f
}

// wrap keeps a phase in [0, 1). Handles negative increments too, so an
// oscillator fed a negative frequency runs backwards.
func wrap(p float64) float64 {
	return p - math.Floor(p)
}
