package formica

import (
	"fmt"
	"slices"
	"strings"
)

// Disassemble renders p as Formica source. Jump targets get synthetic labels
// named after their address, so Assemble(Disassemble(p)) reproduces p for
// any program that passes Validate. Targets past the end are all defined
// after the last instruction and reassemble as jumps to len(p).
func Disassemble(p Program) string {
	targets := make(map[uint32]bool)
	for _, in := range p {
		if in.Op.IsJump() {
			targets[in.Arg] = true
		}
	}

	var b strings.Builder
	for pc, in := range p {
		if targets[uint32(pc)] {
			fmt.Fprintf(&b, "%s:\n", labelFor(uint32(pc)))
		}
		switch in.Op.Operand() {
		case OperandLabel:
			fmt.Fprintf(&b, "\t%s %s\n", in.Op, labelFor(in.Arg))
		case OperandScent:
			fmt.Fprintf(&b, "\t%s %d\n", in.Op, in.Scent())
		default:
			fmt.Fprintf(&b, "\t%s\n", in.Op)
		}
	}

	var past []uint32
	for t := range targets {
		if t >= uint32(len(p)) {
			past = append(past, t)
		}
	}
	slices.Sort(past)
	for _, t := range past {
		fmt.Fprintf(&b, "%s:\n", labelFor(t))
	}
	return b.String()
}

func labelFor(addr uint32) string { return fmt.Sprintf("L%d", addr) }
