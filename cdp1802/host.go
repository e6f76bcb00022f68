package cdp1802

// Host is the set of collaborators a CDP1802 core needs in order to run.
// The core never touches hardware directly; everything outside the
// register file and the opcode semantics is delegated here. A Host
// implementation owns memory, I/O ports, the Q output sink, the four
// external flag inputs, and the idle-wait condition.
//
// Implementations must be safe to call synchronously from within Step;
// the core makes no concurrency guarantees beyond that.
type Host interface {
	// MemRead returns the byte at addr. addr is always a full 16-bit
	// value; folding a smaller physical memory onto the 16-bit address
	// space is the Host's responsibility.
	MemRead(addr uint16) byte

	// MemWrite stores value at addr.
	MemWrite(addr uint16, value byte)

	// PortRead returns a byte from input port n. The core only ever
	// calls this with n in 1..7 (INP masks N to its low 3 bits).
	PortRead(n byte) byte

	// PortWrite sends value to output port n. The core only ever calls
	// this with n in 1..7.
	PortWrite(n byte, value byte)

	// SampleFlags reports the current level of EF1..EF4. Called once
	// per flag-conditional branch opcode, immediately before the
	// condition is evaluated.
	SampleFlags() (ef1, ef2, ef3, ef4 bool)

	// SetQ is invoked whenever the Q output flip-flop changes: on
	// reset, and on REQ/SEQ.
	SetQ(bit bool)

	// IdleWait is invoked on IDL (opcode 0x00). It must block until the
	// host's resume condition (DMA or interrupt request) is satisfied,
	// and it must not touch R(P). The default memhost.Host
	// implementation blocks on a channel; a test Host may return
	// immediately.
	IdleWait()
}
