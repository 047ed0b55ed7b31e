package vm

import "fmt"

// Instr is one machine instruction: an opcode, the constant it pushes if
// it is OpConst, and the state record it works through if its opcode is
// stateful. Pure instructions carry a nil State.
type Instr struct {
	Code  Opcode
	Value Sample
	State *NodeState
}

// Program is an immutable instruction sequence bound to the sample rate
// it was compiled for. Construction copies the instruction slice and
// verifies the whole sequence's stack effect, so a Program that exists
// is a Program that runs without underflow, overflow, or an empty final
// stack.
type Program struct {
	code  []Instr
	rate  float64
	inv   float64 // 1/rate, for phase increments
	depth int     // final stack depth after a full evaluation
}

// NewProgram builds a Program from an instruction sequence. It rejects
// sequences whose static stack effect would underflow, exceed MaxDepth,
// finish empty, or reference an opcode outside the instruction set, and
// sequences whose stateful instructions lack a state record. These are
// compiler bugs by the time they reach here, so the errors are plain.
func NewProgram(code []Instr, sampleRate int) (*Program, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("vm: invalid sample rate %d", sampleRate)
	}
	depth := 0
	for i := range code {
		in := &code[i]
		info, ok := opInfoTable[in.Code]
		if !ok {
			return nil, fmt.Errorf("vm: instruction %d: unknown opcode 0x%02X", i, byte(in.Code))
		}
		if info.Stateful && in.State == nil {
			return nil, fmt.Errorf("vm: instruction %d (%s): missing state", i, info.Name)
		}
		if in.Code == OpDelay && len(in.State.Ring) == 0 {
			return nil, fmt.Errorf("vm: instruction %d (delay): empty ring", i)
		}
		depth -= info.Pops
		if depth < 0 {
			return nil, fmt.Errorf("vm: instruction %d (%s): stack underflow", i, info.Name)
		}
		depth += info.Pushes
		if depth > MaxDepth {
			return nil, fmt.Errorf("vm: instruction %d (%s): stack overflow (%d > %d)", i, info.Name, depth, MaxDepth)
		}
	}
	if depth == 0 {
		return nil, fmt.Errorf("vm: program leaves nothing on the stack")
	}
	p := &Program{
		code:  make([]Instr, len(code)),
		rate:  float64(sampleRate),
		inv:   1 / float64(sampleRate),
		depth: depth,
	}
	copy(p.code, code)
	return p, nil
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.code)
}

// SampleRate returns the rate the program was compiled for.
func (p *Program) SampleRate() int {
	return int(p.rate)
}

// Depth returns the final stack depth of a full evaluation.
func (p *Program) Depth() int {
	return p.depth
}
