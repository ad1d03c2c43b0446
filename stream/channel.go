// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/lms7x/lms7core/fifo"
	"github.com/lms7x/lms7core/wire"
)

// Metadata accompanies every Channel.Read/Write call, matching
// Streamer.h's StreamMetadata{timestamp,flags}.
type Metadata struct {
	Timestamp uint64
	Flags     fifo.PacketFlags
}

// Info is a point-in-time snapshot of a Channel's health, matching
// Streamer.h's StreamChannel::Info. Overrun and Underrun are reported
// as independent fields — see fifo's package doc for why that
// independence matters.
type Info struct {
	FifoSize       int
	FifoItemsCount int
	Overrun        uint64
	Underrun       uint64
	Active         bool
	LinkRateBps    float64
	DroppedPackets uint64
	Timestamp      uint64
}

// Channel is one RX or TX stream endpoint: a uuid-addressable handle
// wrapping a fifo.RingFifo, its Config, and its running state.
type Channel struct {
	ID     uuid.UUID
	Config Config

	fifo *fifo.RingFifo
	rate *RateCounter

	active  atomic.Bool
	lastTS  atomic.Uint64
	pktLost atomic.Uint64

	mu sync.Mutex
}

// NewChannel creates a Channel backed by a freshly sized RingFifo.
func NewChannel(cfg Config) *Channel {
	return &Channel{
		ID:     uuid.New(),
		Config: cfg,
		fifo:   fifo.NewRingFifo(cfg.FifoSlotCount(), maxSamplesFor(cfg.LinkFormat)*2),
		rate:   NewRateCounter(),
	}
}

// IsActive reports whether the channel's worker goroutine is running.
func (c *Channel) IsActive() bool {
	return c.active.Load()
}

// Read pops the next queued packet's samples into dst, blocking until
// data is available or deadline passes.
func (c *Channel) Read(dst []int16, deadline time.Time) (Metadata, int, error) {
	ts, flags, n, err := c.fifo.Pop(dst, deadline)
	if err != nil {
		return Metadata{}, 0, err
	}
	c.rate.Add(uint64(n * 2))
	return Metadata{Timestamp: ts, Flags: flags}, n, nil
}

// Write pushes src's samples for transmission, tagged with md. It does
// not wait for FIFO space: when the FIFO is full, Push applies its
// overflow policy at once.
func (c *Channel) Write(src []int16, md Metadata, deadline time.Time) error {
	if err := c.fifo.Push(src, md.Timestamp, md.Flags, deadline); err != nil {
		return err
	}
	c.rate.Add(uint64(len(src) * 2))
	c.lastTS.Store(md.Timestamp)
	return nil
}

// ReadF32 is Read's F32 counterpart: it pops the next queued packet
// into a temporary int16 buffer and converts its samples to float32 in
// dst (divide by 2048), matching
// ILimeSDRStreaming.cpp's ReadStream F32 path.
func (c *Channel) ReadF32(dst []float32, deadline time.Time) (Metadata, int, error) {
	tmp := make([]int16, len(dst))
	md, n, err := c.Read(tmp, deadline)
	if err != nil {
		return Metadata{}, 0, err
	}
	wire.I16ToF32(dst[:n], tmp[:n])
	return md, n, nil
}

// WriteF32 is Write's F32 counterpart: it converts src into a temporary
// int16 buffer (multiply by 2047, saturating) before pushing, matching
// ILimeSDRStreaming.cpp's WriteStream F32 path.
func (c *Channel) WriteF32(src []float32, md Metadata, deadline time.Time) error {
	tmp := make([]int16, len(src))
	wire.F32ToI16(tmp, src)
	return c.Write(tmp, md, deadline)
}

// recordPacketsLost accounts for n packets this channel never received
// or never transmitted (RX gap, TX late-timestamp drop, or an
// abandoned burst), independent of the FIFO's own overflow accounting.
func (c *Channel) recordPacketsLost(n uint64) {
	c.pktLost.Add(n)
}

// DropPacket records a single abandoned packet (e.g. a TX burst
// cancelled mid-flight).
func (c *Channel) DropPacket() {
	c.recordPacketsLost(1)
}

// GetInfo returns a snapshot of the channel's counters, resetting the
// FIFO's own overflow/underrun/dropped counts (matching
// IStreamChannel::GetInfo's reset-on-read convention) but NOT silently
// merging Overrun into Underrun the way ILimeSDRStreaming.cpp's
// GetInfo() does.
func (c *Channel) GetInfo() Info {
	stats := c.fifo.TakeStats()
	return Info{
		FifoSize:       stats.Size,
		FifoItemsCount: stats.ItemsQueued,
		Overrun:        stats.Overflow,
		Underrun:       stats.Underrun,
		Active:         c.IsActive(),
		LinkRateBps:    c.rate.BytesPerSecond(),
		DroppedPackets: stats.DroppedPackets + c.pktLost.Swap(0),
		Timestamp:      c.lastTS.Load(),
	}
}

// GetStreamSize returns the channel's configured buffer length in
// samples, matching Streamer::GetStreamSize.
func (c *Channel) GetStreamSize() int {
	return c.Config.NormalizedBufferLength()
}
