// Package cdp1802 implements the instruction-set interpreter, register
// file, and memory/IO interface of RCA's CDP1802 (COSMAC) 8-bit
// microprocessor. The core is a synchronous value owned by its caller;
// it never names a physical device, and advances one instruction per
// call to Step.
package cdp1802

import (
	"fmt"
	"log"
	"time"
)

// CPU is the complete architectural state of a CDP1802. Zero value is
// not meaningful except for fields Reset explicitly documents; use New
// to obtain a usable CPU.
type CPU struct {
	R [16]uint16 // scratchpad registers, any of which may serve as PC or data pointer
	D byte       // accumulator
	T byte       // (X<<4)|P captured at MARK/interrupt time

	P byte // selects R(P), the program counter
	X byte // selects R(X), the data pointer
	I byte // high nibble of current opcode
	N byte // low nibble of current opcode

	DF bool // arithmetic carry/borrow flag
	IE bool // interrupt enable
	Q  bool // programmable output flip-flop

	EF1, EF2, EF3, EF4 bool // external flag inputs, sampled before flag branches

	Cycles uint64 // approximate machine-cycle counter

	host Host

	// Logger, when non-nil, receives one line per Step describing the
	// instruction executed and the resulting register snapshot.
	Logger *log.Logger

	// OpDiss holds the disassembly of the most recently executed
	// instruction, refreshed at the start of every Step.
	OpDiss string
}

// New constructs a CPU wired to host. The returned CPU is not reset;
// callers normally call Reset before the first Step.
func New(host Host) *CPU {
	return &CPU{host: host}
}

// Reset clears the subset of state the 1802 datasheet specifies: I, N,
// Q, P, X, R[0], and the cycle counter go to zero, IE is set. All other
// fields (D, T, DF, EFn, R[1..15]) are left as they were, matching the
// datasheet's explicit reset list.
func (c *CPU) Reset() {
	c.I = 0
	c.N = 0
	c.setQ(false)
	c.P = 0
	c.X = 0
	c.R[0] = 0
	c.Cycles = 0
	c.IE = true
}

// Interrupt performs the standard CDP1802 interrupt entry sequence: the
// current (X,P) is packed into T, X is forced to 2, P is forced to 1,
// and IE is cleared. Unlike MARK (0x79) this does not write T to
// memory; software at the new P is expected to do that with SAV if it
// wants to preserve it. The core never calls this itself; it exists so
// a host that models an interrupt request line has a correct entry
// point to call instead of hand-rolling the nibble arithmetic.
func (c *CPU) Interrupt() {
	c.T = (c.X << 4) | c.P
	c.X = 2
	c.P = 1
	c.IE = false
}

// Step fetches and executes exactly one instruction, returning the
// number of machine cycles it consumed.
func (c *CPU) Step() uint64 {
	before := c.Cycles
	opcode := c.fetch()
	c.OpDiss = disassembleOne(c, opcode)
	c.execute(opcode)

	if c.Logger != nil {
		c.Logger.Print(c.logLine(opcode))
	}

	return c.Cycles - before
}

// Run executes steps instructions in sequence and returns the total
// cycles consumed. When Logger is set, it also logs the wall-clock time
// the batch took.
func (c *CPU) Run(steps int) uint64 {
	start := time.Now()

	var total uint64
	for i := 0; i < steps; i++ {
		total += c.Step()
	}

	if c.Logger != nil {
		c.Logger.Printf("Run(%d) took %s", steps, time.Since(start))
	}

	return total
}

// fetch reads the byte at R(P), splits it into I/N, advances R(P), and
// returns the raw opcode byte. Fetch has no flag or arithmetic effects
// beyond advancing the program counter.
func (c *CPU) fetch() byte {
	opcode := c.host.MemRead(c.R[c.P])
	c.I = opcode >> 4
	c.N = opcode & 0x0F
	c.R[c.P]++
	return opcode
}

func (c *CPU) setP(n byte) { c.P = n & 0x0F }
func (c *CPU) setX(n byte) { c.X = n & 0x0F }

func (c *CPU) setQ(bit bool) {
	c.Q = bit
	if c.host != nil {
		c.host.SetQ(bit)
	}
}

// sampleFlags refreshes EF1..EF4 from the host. Called exactly once per
// flag-conditional branch opcode, before the condition is evaluated.
func (c *CPU) sampleFlags() {
	c.EF1, c.EF2, c.EF3, c.EF4 = c.host.SampleFlags()
}

func (c *CPU) logLine(opcode byte) string {
	return fmt.Sprintf(
		"D%02X P%XX%X:I%XN%X R0=%#04x R%d=%#04x cyc=%d  %s",
		c.D, c.P, c.X, c.I, c.N, c.R[0], c.P, c.R[c.P], c.Cycles, c.OpDiss,
	)
}

// DebugString renders a compact snapshot of CPU state: D, P, X, I, N,
// R0, R1, and the cycle counter.
func (c *CPU) DebugString() string {
	return fmt.Sprintf("D%02X P%XX%X:I%XN%X R0=0x%04X R1=0x%04X cy%d",
		c.D, c.P, c.X, c.I, c.N, c.R[0], c.R[1], c.Cycles)
}
