package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program, one line
// per instruction. Useful in the REPL and in test failures.
func (p *Program) Disassemble() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("; %d instructions @ %d Hz, %d output(s)\n",
		len(p.code), int(p.rate), p.depth))
	for i := range p.code {
		in := &p.code[i]
		sb.WriteString(fmt.Sprintf("%04d  %s\n", i, disasmInstr(in)))
	}
	return sb.String()
}

func disasmInstr(in *Instr) string {
	info := Info(in.Code)
	switch in.Code {
	case OpConst:
		return fmt.Sprintf("%-8s %g", info.Name, in.Value)
	case OpDelay:
		return fmt.Sprintf("%-8s (ring %d)", info.Name, len(in.State.Ring))
	default:
		return info.Name
	}
}
