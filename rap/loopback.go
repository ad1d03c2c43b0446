// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rap

import "sync"

// ReadHook lets a LoopbackPort user compute a register's value
// dynamically from the rest of the register file instead of from a
// fixed stored value. It is used to model registers like the on-chip
// RSSI accumulator, whose value is a function of other register state
// (gain codes, filter trim codes) rather than something ever written
// directly. ok is false to fall through to the stored value.
type ReadHook func(addr uint16, regs map[uint16]uint16) (value uint16, ok bool)

// LoopbackPort is a complete in-memory Port implementation with no
// transport at all: reads and writes go straight to a register map
// protected by the same serialization discipline real Port
// implementations must provide. It is used by this module's own tests,
// and is a reasonable starting point for a
// hardware-in-the-loop test harness.
type LoopbackPort struct {
	mu   sync.Mutex
	regs map[uint16]uint16
	hook ReadHook

	streaming    bool
	refClockHz   float64
	timestampRst int
	buffersRst   int
}

// NewLoopbackPort creates a LoopbackPort seeded with the given initial
// register values (nil is treated as an empty register file, i.e. every
// unwritten register reads back as zero). hook, if non-nil, is consulted
// before the stored value on every read.
func NewLoopbackPort(seed map[uint16]uint16, hook ReadHook) *LoopbackPort {
	regs := make(map[uint16]uint16, len(seed))
	for k, v := range seed {
		regs[k] = v
	}
	return &LoopbackPort{regs: regs, hook: hook}
}

// SetHook replaces the ReadHook.
func (p *LoopbackPort) SetHook(hook ReadHook) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hook = hook
}

// Snapshot returns a copy of the current register file, for assertions.
func (p *LoopbackPort) Snapshot() map[uint16]uint16 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[uint16]uint16, len(p.regs))
	for k, v := range p.regs {
		out[k] = v
	}
	return out
}

func (p *LoopbackPort) readLocked(addr uint16) uint16 {
	if p.hook != nil {
		if v, ok := p.hook(addr, p.regs); ok {
			return v
		}
	}
	return p.regs[addr]
}

// ReadReg implements Port.
func (p *LoopbackPort) ReadReg(addr uint16) (uint16, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readLocked(addr), nil
}

// WriteReg implements Port.
func (p *LoopbackPort) WriteReg(addr, data uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.regs[addr] = data
	return nil
}

// ReadRegs implements Port.
func (p *LoopbackPort) ReadRegs(addrs []uint16) ([]uint16, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint16, len(addrs))
	for i, a := range addrs {
		out[i] = p.readLocked(a)
	}
	return out, nil
}

// WriteRegs implements Port.
func (p *LoopbackPort) WriteRegs(writes []DirectWrite) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range writes {
		p.regs[w.Addr] = w.Data
	}
	return nil
}

// WriteMaskedBatch implements Port.
func (p *LoopbackPort) WriteMaskedBatch(b RegisterBatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range b.Masked {
		cur := p.readLocked(m.Addr)
		p.regs[m.Addr] = (cur &^ m.Mask) | (m.Data & m.Mask)
	}
	for _, d := range b.Direct {
		p.regs[d.Addr] = d.Data
	}
	return nil
}

// SetReferenceClockRate implements Port.
func (p *LoopbackPort) SetReferenceClockRate(hz float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refClockHz = hz
	return nil
}

// StartStreaming implements Port.
func (p *LoopbackPort) StartStreaming() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streaming = true
	return nil
}

// StopStreaming implements Port.
func (p *LoopbackPort) StopStreaming() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streaming = false
	return nil
}

// ResetTimestamp implements Port.
func (p *LoopbackPort) ResetTimestamp() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timestampRst++
	return nil
}

// ResetStreamBuffers implements Port.
func (p *LoopbackPort) ResetStreamBuffers() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buffersRst++
	return nil
}

// IsStreaming reports whether StartStreaming has been called more
// recently than StopStreaming.
func (p *LoopbackPort) IsStreaming() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.streaming
}

var _ Port = (*LoopbackPort)(nil)
