// Package compiler turns flat sequences of textual operator tokens into
// executable vm Programs, carrying per-token operator state across
// recompilations.
//
// The input is a []TextOp: each token pairs an opaque identity (assigned
// once by whatever editor produced it) with a text like "440", "dup",
// "sine:110" or "delay:0.5". Compilation resolves names against the vm
// registry, verifies the stack effect of the whole sequence, lowers
// :param sugar, and binds every stateful token to a NodeState record
// held in a Context keyed by identity. Compiling the same identity again
// hands the same record to the new program — that pointer sharing is the
// entire continuity mechanism; nothing is copied and nothing is migrated.
//
// A failed compilation returns a *Error naming the offending token and
// leaves both the Context and whatever program is currently running
// completely untouched. Only a successful compilation commits: the
// Context then drops records whose identities vanished from the program.
//
// The Context belongs to one control goroutine. Programs it produces may
// be handed to a VM running on another; the safety rule is that a
// NodeState, once published inside a program, is only ever written by
// the audio thread. The compiler therefore never mutates a reused
// record — a token whose structural parameter changed (a delay's length,
// a noise seed) gets a fresh record instead of an in-place edit.
package compiler
