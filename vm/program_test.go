package vm

import (
	"strings"
	"testing"
)

func TestNewProgramVerifies(t *testing.T) {
	tests := []struct {
		name    string
		code    []Instr
		wantErr string
	}{
		{
			name:    "underflow",
			code:    []Instr{{Code: OpAdd}},
			wantErr: "underflow",
		},
		{
			name:    "underflow mid-sequence",
			code:    []Instr{{Code: OpConst, Value: 1}, {Code: OpAdd}},
			wantErr: "underflow",
		},
		{
			name:    "empty final stack",
			code:    []Instr{{Code: OpConst, Value: 1}, {Code: OpDrop}},
			wantErr: "nothing on the stack",
		},
		{
			name:    "empty program",
			code:    nil,
			wantErr: "nothing on the stack",
		},
		{
			name:    "unknown opcode",
			code:    []Instr{{Code: Opcode(0xEE)}},
			wantErr: "unknown opcode",
		},
		{
			name:    "stateful without state",
			code:    []Instr{{Code: OpConst, Value: 440}, {Code: OpSine}},
			wantErr: "missing state",
		},
	}
	for _, tt := range tests {
		_, err := NewProgram(tt.code, 44100)
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error %q does not mention %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestNewProgramOverflow(t *testing.T) {
	code := make([]Instr, MaxDepth+1)
	for i := range code {
		code[i] = Instr{Code: OpConst, Value: 1}
	}
	_, err := NewProgram(code, 44100)
	if err == nil || !strings.Contains(err.Error(), "overflow") {
		t.Errorf("Expected overflow error, got %v", err)
	}
}

func TestNewProgramRejectsBadRate(t *testing.T) {
	_, err := NewProgram([]Instr{{Code: OpConst, Value: 1}}, 0)
	if err == nil {
		t.Error("Expected error for zero sample rate")
	}
}

func TestNewProgramDepth(t *testing.T) {
	p, err := NewProgram([]Instr{
		{Code: OpConst, Value: 1},
		{Code: OpConst, Value: 2},
		{Code: OpConst, Value: 3},
	}, 48000)
	if err != nil {
		t.Fatalf("NewProgram failed: %v", err)
	}
	if got := p.Depth(); got != 3 {
		t.Errorf("Expected depth 3, got %d", got)
	}
	if got := p.SampleRate(); got != 48000 {
		t.Errorf("Expected rate 48000, got %d", got)
	}
	if got := p.Len(); got != 3 {
		t.Errorf("Expected 3 instructions, got %d", got)
	}
}

func TestNewProgramCopiesCode(t *testing.T) {
	code := []Instr{{Code: OpConst, Value: 1}}
	p, err := NewProgram(code, 44100)
	if err != nil {
		t.Fatalf("NewProgram failed: %v", err)
	}

	// Mutating the caller's slice must not reach the program.
	code[0].Value = 99
	v := New()
	v.LoadProgram(p)
	if got := v.NextFrame()[0]; got != 1 {
		t.Errorf("Program saw caller mutation: got %g", got)
	}
}

func TestDisassemble(t *testing.T) {
	p, err := NewProgram([]Instr{
		{Code: OpConst, Value: 440},
		{Code: OpSine, State: NewState(OpSine, 0, 44100)},
		{Code: OpConst, Value: 0.25},
		{Code: OpDelay, State: NewState(OpDelay, 0.25, 44100)},
	}, 44100)
	if err != nil {
		t.Fatalf("NewProgram failed: %v", err)
	}
	listing := p.Disassemble()
	for _, want := range []string{"const", "440", "sine", "delay", "(ring 11025)"} {
		if !strings.Contains(listing, want) {
			t.Errorf("Listing missing %q:\n%s", want, listing)
		}
	}
}
