// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rap

import (
	"fmt"
	"sync"
	"time"
)

// Port is the Register Access Port: a serialized, transport-agnostic
// interface for single-register and batched-register reads and writes,
// plus the handful of streaming-control commands grouped alongside it.
// All operations are totally ordered on the wire; implementations must
// serialize concurrent callers with an internal mutex (see
// SerializedPort).
type Port interface {
	// ReadReg reads a single 16-bit register.
	ReadReg(addr uint16) (uint16, error)

	// WriteReg writes a single 16-bit register.
	WriteReg(addr, data uint16) error

	// ReadRegs reads a set of registers in the given order. The
	// returned slice has the same length as addrs.
	ReadRegs(addrs []uint16) ([]uint16, error)

	// WriteRegs writes a set of (addr, data) pairs in order.
	WriteRegs(writes []DirectWrite) error

	// WriteMaskedBatch applies a RegisterBatch: for each masked entry
	// it reads the current value, replaces the masked bits, and
	// writes back, in order, followed by the direct writes.
	WriteMaskedBatch(b RegisterBatch) error

	// SetReferenceClockRate tells the transport the host-observed
	// reference clock rate in Hz. It does not touch chip registers.
	SetReferenceClockRate(hz float64) error

	// StartStreaming arms the FPGA's streaming datapath.
	StartStreaming() error

	// StopStreaming disarms the FPGA's streaming datapath.
	StopStreaming() error

	// ResetTimestamp zeroes the FPGA's free-running sample counter.
	ResetTimestamp() error

	// ResetStreamBuffers clears any FPGA-side buffering of stream
	// samples, discarding in-flight data.
	ResetStreamBuffers() error
}

// RawTransport is the narrow contract a concrete byte-level transport
// (USB bulk, PCIe, embedded CPU SPI bus, ...) must implement to back a
// SerializedPort. Implementing a real transport is out of scope for
// this module; RawTransport exists so that one can be plugged in
// without touching the rest of lms7core.
type RawTransport interface {
	// TransferControl performs one opaque request/response exchange on
	// the control endpoint (register I/O is SPI-like: 16-bit address,
	// 16-bit data, masked read-modify-write). req and
	// the returned response are transport-defined byte encodings; Port
	// implementations built on RawTransport own that encoding.
	TransferControl(req []byte, timeout time.Duration) ([]byte, error)

	// StartStreaming and StopStreaming arm/disarm the FPGA datapath.
	StartStreaming() error
	StopStreaming() error

	// ResetTimestamp and ResetStreamBuffers are forwarded verbatim from
	// Port.
	ResetTimestamp() error
	ResetStreamBuffers() error

	// SetReferenceClockRate informs the transport of the host-measured
	// reference clock rate, which some transports use to recompute
	// internal baud/settling parameters.
	SetReferenceClockRate(hz float64) error
}

// ControlTimeout bounds every RawTransport.TransferControl call issued
// by SerializedPort.
const ControlTimeout = 100 * time.Millisecond

// SerializedPort decorates a RawTransport with the register-batching
// logic and the internal mutex needed to serialize concurrent
// callers: a narrow transport interface plus a decorator that adds
// policy on top of it.
type SerializedPort struct {
	mu    sync.Mutex
	xport RawTransport
}

// NewSerializedPort wraps xport with register-access serialization.
func NewSerializedPort(xport RawTransport) *SerializedPort {
	return &SerializedPort{xport: xport}
}

func encodeRead(addr uint16) []byte {
	return []byte{0x00, byte(addr >> 8), byte(addr), 0, 0}
}

func encodeWrite(addr, data uint16) []byte {
	return []byte{0x01, byte(addr >> 8), byte(addr), byte(data >> 8), byte(data)}
}

func decodeData(resp []byte) (uint16, error) {
	if len(resp) < 5 {
		return 0, fmt.Errorf("rap: %w: short response (%d bytes)", ErrTransport, len(resp))
	}
	return uint16(resp[3])<<8 | uint16(resp[4]), nil
}

// ReadReg implements Port.
func (p *SerializedPort) ReadReg(addr uint16) (uint16, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.readRegLocked(addr)
}

func (p *SerializedPort) readRegLocked(addr uint16) (uint16, error) {
	resp, err := p.xport.TransferControl(encodeRead(addr), ControlTimeout)
	if err != nil {
		return 0, err
	}
	return decodeData(resp)
}

// WriteReg implements Port.
func (p *SerializedPort) WriteReg(addr, data uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writeRegLocked(addr, data)
}

func (p *SerializedPort) writeRegLocked(addr, data uint16) error {
	_, err := p.xport.TransferControl(encodeWrite(addr, data), ControlTimeout)
	return err
}

// ReadRegs implements Port.
func (p *SerializedPort) ReadRegs(addrs []uint16) ([]uint16, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint16, len(addrs))
	for i, a := range addrs {
		v, err := p.readRegLocked(a)
		if err != nil {
			return nil, fmt.Errorf("rap: read 0x%04X: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

// WriteRegs implements Port.
func (p *SerializedPort) WriteRegs(writes []DirectWrite) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range writes {
		if err := p.writeRegLocked(w.Addr, w.Data); err != nil {
			return fmt.Errorf("rap: write 0x%04X: %w", w.Addr, err)
		}
	}
	return nil
}

// WriteMaskedBatch implements Port. For each masked entry it reads the
// current value, replaces the masked bits, and writes back, followed
// by direct writes of the write-only list.
func (p *SerializedPort) WriteMaskedBatch(b RegisterBatch) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range b.Masked {
		cur, err := p.readRegLocked(m.Addr)
		if err != nil {
			return fmt.Errorf("rap: masked read 0x%04X: %w", m.Addr, err)
		}
		next := (cur &^ m.Mask) | (m.Data & m.Mask)
		if err := p.writeRegLocked(m.Addr, next); err != nil {
			return fmt.Errorf("rap: masked write 0x%04X: %w", m.Addr, err)
		}
	}
	for _, d := range b.Direct {
		if err := p.writeRegLocked(d.Addr, d.Data); err != nil {
			return fmt.Errorf("rap: direct write 0x%04X: %w", d.Addr, err)
		}
	}
	return nil
}

// SetReferenceClockRate implements Port.
func (p *SerializedPort) SetReferenceClockRate(hz float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.xport.SetReferenceClockRate(hz)
}

// StartStreaming implements Port.
func (p *SerializedPort) StartStreaming() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.xport.StartStreaming()
}

// StopStreaming implements Port.
func (p *SerializedPort) StopStreaming() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.xport.StopStreaming()
}

// ResetTimestamp implements Port.
func (p *SerializedPort) ResetTimestamp() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.xport.ResetTimestamp()
}

// ResetStreamBuffers implements Port.
func (p *SerializedPort) ResetStreamBuffers() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.xport.ResetStreamBuffers()
}

var _ Port = (*SerializedPort)(nil)
