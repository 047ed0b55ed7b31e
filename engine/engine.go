// Package engine ties the compiler and the machine together on the
// control side. An Engine owns one VM, one compiler Context, and the
// sample rate, and funnels every program change through a single
// serialized Apply call, so several control surfaces (a REPL, a
// language server) can share one running instrument without
// interleaving compile-and-commit sequences.
//
// The audio thread only ever calls NextFrame, which goes straight to
// the VM's atomic program pointer; the engine's mutex is never on that
// path.
package engine

import (
	"fmt"
	"strings"
	"sync"

	"github.com/codeblessmax/sound-garden-0x2/compiler"
	"github.com/codeblessmax/sound-garden-0x2/session"
	"github.com/codeblessmax/sound-garden-0x2/vm"
)

// Engine is the control-side façade over one VM and its compiler
// Context.
type Engine struct {
	machine *vm.VM
	rate    int

	mu      sync.Mutex
	ctx     *compiler.Context
	ops     []compiler.TextOp
	journal *session.Journal
}

// New returns an engine with an empty context and a silent machine.
func New(sampleRate int) *Engine {
	return &Engine{
		machine: vm.New(),
		rate:    sampleRate,
		ctx:     compiler.NewContext(),
	}
}

// AttachJournal makes every successful Apply append a revision to j.
// The engine does not own the journal; closing it is the caller's job.
func (e *Engine) AttachJournal(j *session.Journal) {
	e.mu.Lock()
	e.journal = j
	e.mu.Unlock()
}

// Apply compiles ops against the engine's context and, on success,
// loads the result into the machine and journals the revision. On a
// compile error nothing changes: the running program keeps playing and
// the context keeps its state. A journal failure after a successful
// load is reported but does not undo the load; the sound already
// changed.
func (e *Engine) Apply(ops []compiler.TextOp) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := compiler.Compile(ops, e.rate, e.ctx)
	if err != nil {
		return err
	}
	e.machine.LoadProgram(p)
	e.ops = append(e.ops[:0], ops...)

	if e.journal != nil {
		if _, err := e.journal.Append(ops, SourceText(ops)); err != nil {
			return fmt.Errorf("program applied, but journal append failed: %w", err)
		}
	}
	return nil
}

// NextFrame produces one output frame. This is the audio-thread entry
// point; it touches nothing but the VM.
func (e *Engine) NextFrame() vm.Frame {
	return e.machine.NextFrame()
}

// Program returns the currently running program, or nil before the
// first successful Apply.
func (e *Engine) Program() *vm.Program {
	return e.machine.Program()
}

// SampleRate returns the rate the engine compiles and runs at.
func (e *Engine) SampleRate() int {
	return e.rate
}

// Ops returns a copy of the most recently applied token sequence.
// Editors use it to carry identities into the next edit.
func (e *Engine) Ops() []compiler.TextOp {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]compiler.TextOp, len(e.ops))
	copy(out, e.ops)
	return out
}

// Nodes returns the number of live stateful records in the context.
func (e *Engine) Nodes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ctx.Len()
}

// SourceText renders a token sequence back into program text, the form
// journals and listings show to humans.
func SourceText(ops []compiler.TextOp) string {
	texts := make([]string, len(ops))
	for i, op := range ops {
		texts[i] = op.Text
	}
	return strings.Join(texts, " ")
}
