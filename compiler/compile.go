package compiler

import (
	"fmt"
	"math"
	"strconv"

	"github.com/google/uuid"

	"github.com/codeblessmax/sound-garden-0x2/vm"
)

// Compile resolves, verifies, and lowers a token sequence into an
// executable Program, binding stateful tokens to records held in ctx.
//
// The walk is a single pass in token order: numeric tokens become
// constant pushes; names resolve against the vm registry; a :param
// either lowers to a constant push in front of the operator or shapes
// its state, depending on the operator; and the stack depth is tracked
// through every instruction so underflow, overflow, and an empty final
// stack are rejected here with the offending token attached.
//
// On success the context commits: reused identities keep their records,
// new ones are added, and records for identities that vanished from the
// sequence are dropped. On any error the context and the caller's
// running program are left exactly as they were.
func Compile(ops []TextOp, sampleRate int, ctx *Context) (*vm.Program, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("compiler: invalid sample rate %d", sampleRate)
	}
	if ctx == nil {
		return nil, fmt.Errorf("compiler: nil context")
	}

	code := make([]vm.Instr, 0, 2*len(ops))
	next := make(map[uuid.UUID]*node, len(ops))
	depth := 0

	for i, op := range ops {
		if v, err := strconv.ParseFloat(op.Text, 64); err == nil {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errAt(InvalidParameter, i, op, "not a finite number")
			}
			code = append(code, vm.Instr{Code: vm.OpConst, Value: v})
			if depth++; depth > vm.MaxDepth {
				return nil, errAt(StackOverflow, i, op, overflowHint(depth))
			}
			continue
		}

		name, rawParam, hasParam := splitToken(op.Text)
		opc, ok := vm.LookupName(name)
		if !ok {
			return nil, errAt(UnknownOperator, i, op, "")
		}
		info := vm.Info(opc)

		var param vm.Sample
		if hasParam {
			if info.Param == vm.ParamNone {
				return nil, errAt(InvalidParameter, i, op, "takes no parameter")
			}
			v, err := strconv.ParseFloat(rawParam, 64)
			if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errAt(InvalidParameter, i, op, "not a finite number")
			}
			param = v
		} else if info.Param == vm.ParamRing {
			return nil, errAt(MissingParameter, i, op, "needs a time, e.g. delay:0.5")
		}

		switch {
		case hasParam && info.Param == vm.ParamRing:
			if param <= 0 || param > vm.MaxDelaySeconds {
				return nil, errAt(InvalidParameter, i, op,
					fmt.Sprintf("time must be in (0, %g] seconds", vm.MaxDelaySeconds))
			}
		case hasParam && info.Param == vm.ParamSeed:
			if param < 1 || param != math.Trunc(param) {
				return nil, errAt(InvalidParameter, i, op, "seed must be a positive integer")
			}
		case hasParam && info.Param == vm.ParamLowered:
			code = append(code, vm.Instr{Code: vm.OpConst, Value: param})
			if depth++; depth > vm.MaxDepth {
				return nil, errAt(StackOverflow, i, op, overflowHint(depth))
			}
		}

		if depth < info.Pops {
			return nil, errAt(StackUnderflow, i, op,
				fmt.Sprintf("pops %d, have %d", info.Pops, depth))
		}
		depth += info.Pushes - info.Pops
		if depth > vm.MaxDepth {
			return nil, errAt(StackOverflow, i, op, overflowHint(depth))
		}

		in := vm.Instr{Code: opc}
		if info.Stateful {
			var sparam vm.Sample
			if hasParam && (info.Param == vm.ParamRing || info.Param == vm.ParamSeed) {
				sparam = param
			}
			in.State = ctx.bind(next, op.ID, opc, sparam, sampleRate)
		}
		code = append(code, in)
	}

	if depth == 0 {
		return nil, &Error{Kind: InsufficientOutputs, Index: -1,
			Hint: "program leaves nothing on the stack"}
	}

	p, err := vm.NewProgram(code, sampleRate)
	if err != nil {
		// The walk above proves everything NewProgram re-checks, so this
		// is a compiler bug, not a user error.
		return nil, fmt.Errorf("compiler: internal: %w", err)
	}
	ctx.commit(next)
	return p, nil
}

func overflowHint(depth int) string {
	return fmt.Sprintf("depth %d exceeds %d", depth, vm.MaxDepth)
}
