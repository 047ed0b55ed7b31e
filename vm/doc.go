// Package vm provides a stack-based virtual machine for sample-at-a-time
// audio synthesis. Programs are flat sequences of postfix operators that
// the machine evaluates once per audio frame, pushing and popping Samples
// on a fixed-capacity stack and leaving one value per output channel.
//
// The machine is built for live performance:
//
//   - NextFrame runs on the audio callback thread. It never allocates,
//     never locks, and executes in time proportional to the program
//     length. All operator state (oscillator phase, delay memory) is
//     preallocated before a program is loaded.
//
//   - LoadProgram atomically replaces the running program. It may be
//     called from a control thread while NextFrame is executing; the
//     swap is a single pointer exchange, and no frame is ever evaluated
//     partly under the old program and partly under the new one.
//
//   - Stateful operators read and write through shared NodeState records.
//     The compiler hands the same record to successive compilations of
//     the same logical token, which is what lets an oscillator keep its
//     phase while the program around it is rewritten mid-performance.
//
// # Architecture Overview
//
// The package consists of several components:
//
//   - Opcodes: a closed set of ~30 instructions covering literals, stack
//     shuffling, arithmetic, comparison, waveshaping, oscillators, noise,
//     delay lines, one-pole filters, and stereo panning. Each opcode has
//     a fixed stack arity recorded in a metadata table, which is what
//     makes whole-program validation a static walk.
//
//   - Instr/Program: an instruction pairs an opcode with an optional
//     constant value and an optional pointer to its NodeState. A Program
//     is an immutable instruction sequence plus the sample rate it was
//     compiled for; construction verifies stack safety and records the
//     final stack depth.
//
//   - Stack: a fixed-size array of Samples with an index. Operations are
//     unchecked because programs are verified before they ever run.
//
//   - VM: holds the atomically-swappable current program and evaluates
//     it. With no program loaded it produces silence.
//
// # Output Mapping
//
// After a program runs, the final stack depth d maps to the output frame
// as follows: with d == CHANNELS the values map bottom-to-top onto
// channels 0..CHANNELS-1; with d > CHANNELS the top CHANNELS values are
// taken; with 0 < d < CHANNELS the top value is repeated across the
// remaining channels, so a mono program plays on both speakers. Programs
// that would finish with an empty stack are rejected at build time.
package vm
