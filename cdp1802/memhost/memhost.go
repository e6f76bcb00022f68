// Package memhost provides a minimal, non-hardware cdp1802.Host: a flat
// byte array for memory, an 8-slot table for each of the input/output
// N-lines, and a channel-driven idle predicate. It exists to drive the
// core from tests and the CLI without any of the physical I/O the core
// deliberately excludes.
package memhost

import (
	"os"

	"github.com/pkg/errors"
)

// Host is a flat-memory implementation of cdp1802.Host. Output-port
// writes and Q changes can optionally be observed through OutSink and
// OnQChange.
// Its zero value is not usable; construct with New.
type Host struct {
	mem  []byte
	mask uint16

	inPorts  [8]byte
	outPorts [8]byte

	ef [4]bool

	q     bool
	qSink func(bool)

	// OutSink, when non-nil, is called in addition to recording the
	// value in outPorts, e.g. to print output to a console.
	OutSink func(n byte, value byte)

	resume chan struct{}
}

// New constructs a Host with size bytes of memory. size must be a power
// of two; addresses are folded onto it by masking.
func New(size int) *Host {
	if size <= 0 || size&(size-1) != 0 {
		panic("memhost: size must be a positive power of two")
	}
	return &Host{
		mem:    make([]byte, size),
		mask:   uint16(size - 1),
		resume: make(chan struct{}, 1),
	}
}

// LoadFile reads the named file and copies it into memory starting at
// offset.
func (h *Host) LoadFile(path string, offset uint16) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "memhost: reading image %q", path)
	}
	return h.LoadBytes(data, offset)
}

// LoadBytes copies data into memory starting at offset. It is an error
// for the image to run past the end of the host's address mask.
func (h *Host) LoadBytes(data []byte, offset uint16) error {
	if int(offset)+len(data) > len(h.mem) {
		return errors.Errorf("memhost: image of %d bytes at offset %#04x overruns %d-byte memory",
			len(data), offset, len(h.mem))
	}
	copy(h.mem[offset:], data)
	return nil
}

// MemRead implements cdp1802.Host.
func (h *Host) MemRead(addr uint16) byte { return h.mem[addr&h.mask] }

// MemWrite implements cdp1802.Host.
func (h *Host) MemWrite(addr uint16, value byte) { h.mem[addr&h.mask] = value }

// SetInPort sets the byte PortRead(n) will return until changed again.
func (h *Host) SetInPort(n byte, value byte) { h.inPorts[n&0x7] = value }

// OutPort returns the last byte written to output port n.
func (h *Host) OutPort(n byte) byte { return h.outPorts[n&0x7] }

// PortRead implements cdp1802.Host.
func (h *Host) PortRead(n byte) byte { return h.inPorts[n&0x7] }

// PortWrite implements cdp1802.Host.
func (h *Host) PortWrite(n byte, value byte) {
	h.outPorts[n&0x7] = value
	if h.OutSink != nil {
		h.OutSink(n, value)
	}
}

// SetFlag sets the level memhost reports for EFn (n in 1..4) the next
// time SampleFlags is called.
func (h *Host) SetFlag(n int, level bool) { h.ef[n-1] = level }

// SampleFlags implements cdp1802.Host.
func (h *Host) SampleFlags() (ef1, ef2, ef3, ef4 bool) {
	return h.ef[0], h.ef[1], h.ef[2], h.ef[3]
}

// Q reports the last value SetQ was called with.
func (h *Host) Q() bool { return h.q }

// OnQChange registers a callback invoked whenever SetQ fires.
func (h *Host) OnQChange(sink func(bool)) { h.qSink = sink }

// SetQ implements cdp1802.Host.
func (h *Host) SetQ(bit bool) {
	h.q = bit
	if h.qSink != nil {
		h.qSink(bit)
	}
}

// IdleWait implements cdp1802.Host. It blocks until Resume is called
// from another goroutine.
func (h *Host) IdleWait() {
	<-h.resume
}

// Resume unblocks a pending (or future) IdleWait call. Safe to call
// from any goroutine; a Resume with no corresponding IdleWait is
// remembered for the next one.
func (h *Host) Resume() {
	select {
	case h.resume <- struct{}{}:
	default:
	}
}
