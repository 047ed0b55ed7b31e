package compiler

import (
	"encoding/binary"

	"github.com/google/uuid"

	"github.com/codeblessmax/sound-garden-0x2/vm"
)

// node records what one identity compiled to: the opcode, the structural
// parameter and sample rate its state was built for, and the live state
// record itself. A later compilation reuses the record only when all
// three still match; anything else would need an in-place mutation of
// state the audio thread may be running, so it builds fresh instead.
type node struct {
	code   vm.Opcode
	sparam vm.Sample // structural parameter: ring seconds, noise seed
	rate   int
	state  *vm.NodeState
}

// Context owns the identity-to-state mapping for stateful operators.
// It belongs to a single control goroutine; the audio thread never sees
// it, only the NodeState records it hands out inside programs.
type Context struct {
	nodes map[uuid.UUID]*node
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{nodes: make(map[uuid.UUID]*node)}
}

// Len returns the number of live state records.
func (c *Context) Len() int {
	return len(c.nodes)
}

// bind resolves the state record for one stateful token against the
// committed mapping, recording the binding in next. The first occurrence
// of an identity in a sequence owns its binding; a duplicated identity
// (an editor bug) gets an independent fresh record so two instructions
// never share one delay line or phase within a single program.
func (c *Context) bind(next map[uuid.UUID]*node, id uuid.UUID, code vm.Opcode, sparam vm.Sample, rate int) *vm.NodeState {
	if _, taken := next[id]; !taken {
		if prev, ok := c.nodes[id]; ok && prev.code == code && prev.sparam == sparam && prev.rate == rate {
			next[id] = prev
			return prev.state
		}
	}
	st := vm.NewState(code, sparam, rate)
	if code == vm.OpNoise && sparam == 0 {
		st.Rng = deriveSeed(id)
	}
	if _, taken := next[id]; !taken {
		next[id] = &node{code: code, sparam: sparam, rate: rate, state: st}
	}
	return st
}

// commit installs the new mapping. Identities absent from it are
// dropped; their records die once no loaded program holds them.
func (c *Context) commit(next map[uuid.UUID]*node) {
	c.nodes = next
}

// deriveSeed folds an identity into a noise seed, so unseeded noise
// tokens are decorrelated from one another yet reproducible for as long
// as the token lives (and across restarts of a saved session).
func deriveSeed(id uuid.UUID) uint64 {
	hi := binary.BigEndian.Uint64(id[0:8])
	lo := binary.BigEndian.Uint64(id[8:16])
	if s := hi ^ lo; s != 0 {
		return s
	}
	return vm.DefaultNoiseSeed
}
