package rv32

import (
	"fmt"
	"io"
)

// ABI register names, used by the trace output.
var regNames = [32]string{
	"x0", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// Tracer writes one line per step describing the architectural updates the
// instruction produced, plus a second line when the step trapped.
type Tracer struct {
	W io.Writer
}

// Step prints the trace line for one executed instruction. A 16-bit
// instruction is right-aligned in the 8-hex-digit field. The rd and pc
// clauses appear only when that component updates.
func (t *Tracer) Step(pc, instr uint32, compressed bool, o *outcome) {
	if compressed {
		fmt.Fprintf(t.W, "%08x:     %04x : ", pc, instr&0xffff)
	} else {
		fmt.Fprintf(t.W, "%08x: %08x : ", pc, instr)
	}
	if o.hasRd && o.rd != 0 && !o.trapped {
		fmt.Fprintf(t.W, "%-3s <- %08x ", regNames[o.rd], o.rdVal)
	} else {
		fmt.Fprintf(t.W, "                ")
	}
	if o.hasPC {
		fmt.Fprintf(t.W, ": pc <- %08x\n", o.pcVal)
	} else {
		fmt.Fprintf(t.W, ":\n")
	}
}

// Trap prints the extra line emitted when a step enters the trap handler.
func (t *Tracer) Trap(cause, target uint32) {
	fmt.Fprintf(t.W, "Trap cause %2d: pc <- %08x\n", cause, target)
}
