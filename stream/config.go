// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import "github.com/lms7x/lms7core/wire"

// MaxSamplesPerPacket bounds a single DataPacket's payload in samples
// for each link format, matching SamplesPacket::maxSamplesInPacket's
// two values in the original firmware (Packed-12 fits more samples per
// packet than I12-in-I16 for the same payload budget).
const (
	MaxSamplesPerPacketPacked12 = 1360
	MaxSamplesPerPacketI12InI16 = 680
)

// Config describes one RX or TX channel's streaming setup, matching
// Streamer.h's StreamConfig.
type Config struct {
	IsTx               bool
	ChannelID          int
	Align              bool
	PerformanceLatency float64
	BufferLength       int
	Format             string
	LinkFormat         wire.LinkFormat

	// AutoIQCal gates the supplemental DC-offset/IQ-imbalance digital
	// self-test (stream/iqcal.go) run once by update_threads() right
	// after StartStreaming. Default off: a caller who only wants the
	// bare link brought up can leave it disabled.
	AutoIQCal bool
}

// maxSamplesFor returns the per-packet sample cap for format.
func maxSamplesFor(format wire.LinkFormat) int {
	if format == wire.LinkFormatPacked12 {
		return MaxSamplesPerPacketPacked12
	}
	return MaxSamplesPerPacketI12InI16
}

// NormalizedBufferLength rounds c.BufferLength up to the nearest
// multiple of a power-of-two FIFO slot count times the link format's
// max-samples-per-packet, matching ILimeSDRStreaming::SetupStream's
// "fifoSize <<= 1 until it covers bufferLength/maxSamplesInPacket"
// rounding.
func (c Config) NormalizedBufferLength() int {
	return c.FifoSlotCount() * maxSamplesFor(c.LinkFormat)
}

// FifoSlotCount returns the power-of-two slot count backing
// NormalizedBufferLength, for direct use constructing a fifo.RingFifo.
// The floor is 8192 slots for an unspecified (zero) BufferLength, well
// above SetupStream's own default of 64, to give a channel enough
// headroom to absorb scheduling jitter before Push starts dropping.
func (c Config) FifoSlotCount() int {
	maxSamples := maxSamplesFor(c.LinkFormat)
	fifoSize := 8192
	for fifoSize < c.BufferLength/maxSamples {
		fifoSize <<= 1
	}
	return fifoSize
}
