package vm

import (
	"fmt"
	"sort"
)

// Opcode identifies one machine instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Literals (0x00-0x0F)
	// ========================================================================

	OpConst Opcode = 0x00 // Push the instruction's constant value

	// ========================================================================
	// Stack shuffling (0x10-0x1F)
	// ========================================================================

	OpDup  Opcode = 0x10 // Duplicate top of stack
	OpSwap Opcode = 0x11 // Swap top two stack values
	OpDrop Opcode = 0x12 // Discard top of stack
	OpOver Opcode = 0x13 // Copy second value to top: a b -> a b a
	OpRot  Opcode = 0x14 // Rotate top three: a b c -> b c a

	// ========================================================================
	// Arithmetic (0x20-0x2F)
	// ========================================================================

	OpAdd Opcode = 0x20 // Pop two, push sum
	OpSub Opcode = 0x21 // Pop two, push difference (a - b where b is TOS)
	OpMul Opcode = 0x22 // Pop two, push product
	OpDiv Opcode = 0x23 // Pop two, push quotient
	OpMod Opcode = 0x24 // Pop two, push floating-point remainder
	OpPow Opcode = 0x25 // Pop two, push a**b
	OpMin Opcode = 0x26 // Pop two, push the smaller
	OpMax Opcode = 0x27 // Pop two, push the larger

	// ========================================================================
	// Comparison (0x30-0x3F)
	// ========================================================================

	OpGt Opcode = 0x30 // Pop two, push 1 if a > b, else 0
	OpLt Opcode = 0x31 // Pop two, push 1 if a < b, else 0

	// ========================================================================
	// Waveshaping (0x40-0x4F)
	// ========================================================================

	OpAbs   Opcode = 0x40 // Absolute value of top
	OpNeg   Opcode = 0x41 // Negate top
	OpSqrt  Opcode = 0x42 // Square root of top
	OpTanh  Opcode = 0x43 // Hyperbolic tangent (soft clip)
	OpRound Opcode = 0x44 // Round top to nearest integer
	OpClip  Opcode = 0x45 // Hard-limit top to [-1, 1]

	// ========================================================================
	// Oscillators (0x50-0x5F) - stateful, phase wrapped to [0, 1)
	// ========================================================================

	OpSine   Opcode = 0x50 // Pop frequency, push sin(tau * phase)
	OpCosine Opcode = 0x51 // Pop frequency, push cos(tau * phase)
	OpTri    Opcode = 0x52 // Pop frequency, push triangle wave
	OpSaw    Opcode = 0x53 // Pop frequency, push rising sawtooth
	OpSquare Opcode = 0x54 // Pop frequency, push 50% square wave
	OpPhasor Opcode = 0x55 // Pop frequency, push raw phase ramp 0..1

	// ========================================================================
	// Noise (0x60-0x6F) - stateful xorshift generator
	// ========================================================================

	OpNoise Opcode = 0x60 // Push white noise in [-1, 1]

	// ========================================================================
	// Delay (0x70-0x7F) - stateful ring buffer
	// ========================================================================

	OpDelay Opcode = 0x70 // Pop x, push x delayed by the ring length

	// ========================================================================
	// Filters (0x80-0x8F) - stateful one-pole
	// ========================================================================

	OpLPF Opcode = 0x80 // Pop cutoff Hz and signal, push low-passed signal
	OpHPF Opcode = 0x81 // Pop cutoff Hz and signal, push high-passed signal

	// ========================================================================
	// Spatial (0x90-0x9F)
	// ========================================================================

	OpPan Opcode = 0x90 // Pop position -1..1 and signal, push equal-power L R
)

// ParamMode says what a trailing :param means for an operator.
type ParamMode byte

const (
	// ParamNone: the operator takes no parameter.
	ParamNone ParamMode = iota
	// ParamLowered: an optional parameter compiles into a constant push
	// in front of the operator, standing in for its top stack input.
	ParamLowered
	// ParamRing: a required parameter giving the delay time in seconds;
	// it sizes the operator's ring buffer and never touches the stack.
	ParamRing
	// ParamSeed: an optional parameter seeding the noise generator.
	ParamSeed
)

// OpInfo provides metadata about each opcode for validation, editor help,
// and disassembly.
type OpInfo struct {
	Name     string    // Registry name as written in programs
	Pops     int       // Values popped from the stack
	Pushes   int       // Values pushed to the stack
	Stateful bool      // True if the op reads/writes a NodeState
	Param    ParamMode // Meaning of a trailing :param, if allowed
	Group    string    // Editor-facing grouping
	Help     string    // One-line usage text, forth-style stack effect
}

// opInfoTable maps opcodes to their metadata. A name appearing here is a
// word of the language, with one exception: "const" is reserved for the
// literal instruction that numeric tokens compile to and is not callable
// by name.
var opInfoTable = map[Opcode]OpInfo{
	// Literals
	OpConst: {"const", 0, 1, false, ParamNone, groupStack, "push a number"},

	// Stack shuffling
	OpDup:  {"dup", 1, 2, false, ParamNone, groupStack, "( x -- x x ) duplicate the top value"},
	OpSwap: {"swap", 2, 2, false, ParamNone, groupStack, "( a b -- b a ) swap the top two values"},
	OpDrop: {"drop", 1, 0, false, ParamNone, groupStack, "( x -- ) discard the top value"},
	OpOver: {"over", 2, 3, false, ParamNone, groupStack, "( a b -- a b a ) copy the second value to the top"},
	OpRot:  {"rot", 3, 3, false, ParamNone, groupStack, "( a b c -- b c a ) rotate the third value to the top"},

	// Arithmetic
	OpAdd: {"+", 2, 1, false, ParamNone, groupArith, "( a b -- a+b ) add"},
	OpSub: {"-", 2, 1, false, ParamNone, groupArith, "( a b -- a-b ) subtract"},
	OpMul: {"*", 2, 1, false, ParamNone, groupArith, "( a b -- a*b ) multiply"},
	OpDiv: {"/", 2, 1, false, ParamNone, groupArith, "( a b -- a/b ) divide"},
	OpMod: {"mod", 2, 1, false, ParamNone, groupArith, "( a b -- a%b ) floating-point remainder"},
	OpPow: {"pow", 2, 1, false, ParamNone, groupArith, "( a b -- a**b ) raise to a power"},
	OpMin: {"min", 2, 1, false, ParamNone, groupArith, "( a b -- min ) smaller of two values"},
	OpMax: {"max", 2, 1, false, ParamNone, groupArith, "( a b -- max ) larger of two values"},

	// Comparison
	OpGt: {"gt", 2, 1, false, ParamNone, groupCompare, "( a b -- 1|0 ) 1 if a > b, else 0"},
	OpLt: {"lt", 2, 1, false, ParamNone, groupCompare, "( a b -- 1|0 ) 1 if a < b, else 0"},

	// Waveshaping
	OpAbs:   {"abs", 1, 1, false, ParamNone, groupShape, "( x -- |x| ) absolute value"},
	OpNeg:   {"neg", 1, 1, false, ParamNone, groupShape, "( x -- -x ) negate"},
	OpSqrt:  {"sqrt", 1, 1, false, ParamNone, groupShape, "( x -- sqrt(x) ) square root"},
	OpTanh:  {"tanh", 1, 1, false, ParamNone, groupShape, "( x -- tanh(x) ) soft clip"},
	OpRound: {"round", 1, 1, false, ParamNone, groupShape, "( x -- round(x) ) round to nearest integer"},
	OpClip:  {"clip", 1, 1, false, ParamNone, groupShape, "( x -- x' ) hard-limit to [-1, 1]"},

	// Oscillators
	OpSine:   {"sine", 1, 1, true, ParamLowered, groupOsc, "( freq -- x ) sine oscillator; sine:440 fixes the frequency"},
	OpCosine: {"cosine", 1, 1, true, ParamLowered, groupOsc, "( freq -- x ) cosine oscillator"},
	OpTri:    {"tri", 1, 1, true, ParamLowered, groupOsc, "( freq -- x ) triangle oscillator"},
	OpSaw:    {"saw", 1, 1, true, ParamLowered, groupOsc, "( freq -- x ) rising sawtooth oscillator"},
	OpSquare: {"square", 1, 1, true, ParamLowered, groupOsc, "( freq -- x ) square oscillator, 50% duty"},
	OpPhasor: {"phasor", 1, 1, true, ParamLowered, groupOsc, "( freq -- p ) raw phase ramp 0..1"},

	// Noise
	OpNoise: {"noise", 0, 1, true, ParamSeed, groupNoise, "( -- x ) white noise; noise:7 fixes the seed"},

	// Delay
	OpDelay: {"delay", 1, 1, true, ParamRing, groupDelay, "( x -- x' ) delay by the given time; delay:0.5 holds half a second"},

	// Filters
	OpLPF: {"lpf", 2, 1, true, ParamLowered, groupFilter, "( x cutoff -- x' ) one-pole low-pass; lpf:800 fixes the cutoff"},
	OpHPF: {"hpf", 2, 1, true, ParamLowered, groupFilter, "( x cutoff -- x' ) one-pole high-pass; hpf:80 fixes the cutoff"},

	// Spatial
	OpPan: {"pan", 2, 2, false, ParamLowered, groupSpatial, "( x pos -- l r ) equal-power pan, -1 left .. 1 right"},
}

// Group names, in the order editors present them.
const (
	groupStack   = "stack"
	groupArith   = "arithmetic"
	groupCompare = "comparison"
	groupShape   = "shaping"
	groupOsc     = "oscillators"
	groupNoise   = "noise"
	groupDelay   = "delay"
	groupFilter  = "filters"
	groupSpatial = "spatial"
)

var groupOrder = []string{
	groupStack, groupArith, groupCompare, groupShape,
	groupOsc, groupNoise, groupDelay, groupFilter, groupSpatial,
}

// nameIndex resolves registry names to opcodes. Built once at init.
var nameIndex = make(map[string]Opcode, len(opInfoTable))

func init() {
	for op, info := range opInfoTable {
		if op == OpConst {
			continue // literal instruction, not a word
		}
		if _, dup := nameIndex[info.Name]; dup {
			panic(fmt.Sprintf("vm: duplicate op name %q", info.Name))
		}
		nameIndex[info.Name] = op
	}
}

// Info returns metadata for an opcode.
// Returns a zero OpInfo with name "UNKNOWN" if the opcode is not recognized.
func Info(op Opcode) OpInfo {
	if info, ok := opInfoTable[op]; ok {
		return info
	}
	return OpInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// LookupName resolves an operator name to its opcode.
func LookupName(name string) (Opcode, bool) {
	op, ok := nameIndex[name]
	return op, ok
}

// Help returns the one-line usage text for an operator name.
func Help(name string) (string, bool) {
	op, ok := nameIndex[name]
	if !ok {
		return "", false
	}
	return opInfoTable[op].Help, true
}

// OpGroup is one editor-facing group of operator names.
type OpGroup struct {
	Name string
	Ops  []string
}

// Groups returns every operator name grouped and ordered for display:
// groups in presentation order, names within a group in opcode order.
func Groups() []OpGroup {
	byGroup := make(map[string][]Opcode)
	for op, info := range opInfoTable {
		if op == OpConst {
			continue
		}
		byGroup[info.Group] = append(byGroup[info.Group], op)
	}
	groups := make([]OpGroup, 0, len(groupOrder))
	for _, g := range groupOrder {
		ops := byGroup[g]
		if len(ops) == 0 {
			continue
		}
		sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
		names := make([]string, len(ops))
		for i, op := range ops {
			names[i] = opInfoTable[op].Name
		}
		groups = append(groups, OpGroup{Name: g, Ops: names})
	}
	return groups
}
