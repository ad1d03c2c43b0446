// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

// PacketFlags are per-packet metadata bits carried alongside a
// SamplePacket's payload.
type PacketFlags uint8

const (
	// FlagSyncTimestamp marks a packet whose Timestamp should be
	// latched as the stream's reference point rather than checked for
	// continuity against the previous packet.
	FlagSyncTimestamp PacketFlags = 1 << iota
	// FlagEndOfBurst marks the final packet of a bounded TX burst.
	FlagEndOfBurst
	// FlagOverwrite marks a packet the producer is allowed to clobber
	// in place even if the consumer has not yet read it (used for
	// continuously-regenerated TX waveforms, not normal streaming).
	FlagOverwrite
)

// SamplePacket is the fixed-size unit of work RingFifo moves between a
// producer and a consumer: a timestamped, interleaved I/Q sample
// buffer plus flags. Samples is reused across Push/Pop cycles by
// RingFifo's backing slots; callers must not retain a slice obtained
// from Pop past their next Pop call.
type SamplePacket struct {
	Timestamp uint64
	Flags     PacketFlags
	Samples   []int16
	Count     int
}

// Reset clears a SamplePacket for reuse without reallocating Samples.
func (p *SamplePacket) Reset() {
	p.Timestamp = 0
	p.Flags = 0
	p.Count = 0
}
