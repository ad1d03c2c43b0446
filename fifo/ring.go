// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fifo

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrDeadlineExceeded is returned by Push/Pop when the supplied
// deadline passes before the operation can complete.
var ErrDeadlineExceeded = errors.New("fifo: deadline exceeded")

// Stats is a snapshot of a RingFifo's counters, reset to zero by
// TakeStats. Overflow and Underrun are tracked independently —
// ILimeSDRStreaming.cpp's GetInfo() famously assigns both to the same
// output field, one overwriting the other; this type keeps them apart
// on purpose.
type Stats struct {
	Size           int
	ItemsQueued    int
	Overflow       uint64
	Underrun       uint64
	DroppedPackets uint64
}

// RingFifo is a bounded single-producer/single-consumer ring buffer of
// SamplePackets. Capacity must be a power of two. Pop blocks up to an
// absolute deadline when the buffer is empty; a zero deadline means
// "return immediately if not possible", matching the original's
// IStreamChannel semantics. Push never waits: when the buffer is full
// it applies the overflow policy straight away.
//
// The producer and consumer each own one index (head/tail); Push and
// Pop both take the mutex, and the cond wakes a Pop blocked on an
// empty buffer, following
// helpers/duo/synchro.go's discipline of a fixed-capacity slice
// advanced by exactly one owner at a time.
type RingFifo struct {
	slots []SamplePacket
	cap   uint64

	head uint64 // next slot the consumer will read
	tail uint64 // next slot the producer will write

	mu   sync.Mutex
	cond *sync.Cond

	overflow atomic.Uint64
	underrun atomic.Uint64
	dropped  atomic.Uint64
}

// NewRingFifo creates a RingFifo with the given power-of-two capacity
// and packet sample width (samples per slot).
func NewRingFifo(capacity int, samplesPerPacket int) *RingFifo {
	if capacity <= 0 || capacity&(capacity-1) != 0 {
		panic("fifo: capacity must be a power of two")
	}
	f := &RingFifo{
		slots: make([]SamplePacket, capacity),
		cap:   uint64(capacity),
	}
	for i := range f.slots {
		f.slots[i].Samples = make([]int16, samplesPerPacket)
	}
	f.cond = sync.NewCond(&f.mu)
	return f
}

func (f *RingFifo) size() uint64 {
	return atomic.LoadUint64(&f.tail) - atomic.LoadUint64(&f.head)
}

// Push copies n samples from src into the next free slot, along with
// timestamp and flags. deadline is accepted for signature symmetry with
// Pop but is otherwise unused: Push never waits for space. If the ring
// is full, it applies the producer overflow policy instead of
// blocking: with flags&FlagOverwrite set, it clobbers the oldest queued
// packet's slot in place without touching Overflow (the packet stays
// at the front of the queue, just with new content); otherwise it
// drops the oldest queued packet, incrementing Overflow, and enqueues
// the new one at the back as usual.
func (f *RingFifo) Push(src []int16, timestamp uint64, flags PacketFlags, deadline time.Time) error {
	f.mu.Lock()
	if f.size() >= f.cap {
		if flags&FlagOverwrite != 0 {
			f.writeSlotLocked(f.head, src, timestamp, flags)
			f.cond.Broadcast()
			f.mu.Unlock()
			return nil
		}
		f.overflow.Add(1)
		atomic.AddUint64(&f.head, 1)
	}
	f.writeSlotLocked(f.tail, src, timestamp, flags)
	atomic.AddUint64(&f.tail, 1)
	f.cond.Broadcast()
	f.mu.Unlock()
	return nil
}

// writeSlotLocked writes src/timestamp/flags into the slot at index
// (modulo capacity). f.mu must be held.
func (f *RingFifo) writeSlotLocked(index uint64, src []int16, timestamp uint64, flags PacketFlags) {
	slot := &f.slots[index&(f.cap-1)]
	slot.Reset()
	n := copy(slot.Samples, src)
	slot.Count = n
	slot.Timestamp = timestamp
	slot.Flags = flags
}

// Pop copies the next queued packet's samples into dst (which must be
// at least as large as the packet's Count) and returns its timestamp,
// flags, and sample count, blocking until a packet is available or
// deadline passes. Returns ErrDeadlineExceeded on timeout, incrementing
// Underrun.
func (f *RingFifo) Pop(dst []int16, deadline time.Time) (timestamp uint64, flags PacketFlags, n int, err error) {
	f.mu.Lock()
	for f.size() == 0 {
		if !f.waitUntil(deadline) {
			f.mu.Unlock()
			f.underrun.Add(1)
			return 0, 0, 0, ErrDeadlineExceeded
		}
	}
	head := atomic.LoadUint64(&f.head)
	slot := &f.slots[head&(f.cap-1)]
	n = copy(dst, slot.Samples[:slot.Count])
	timestamp, flags = slot.Timestamp, slot.Flags
	atomic.AddUint64(&f.head, 1)
	f.cond.Broadcast()
	f.mu.Unlock()
	return timestamp, flags, n, nil
}

// waitUntil blocks on f.cond until woken or deadline passes, reporting
// whether the caller should re-check its condition (true) or give up
// (false). f.mu must be held on entry and is held again on return.
// A zero deadline never waits.
func (f *RingFifo) waitUntil(deadline time.Time) bool {
	if deadline.IsZero() {
		return false
	}
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return false
	}

	done := make(chan struct{})
	timer := time.AfterFunc(remaining, func() {
		f.mu.Lock()
		close(done)
		f.cond.Broadcast()
		f.mu.Unlock()
	})
	defer timer.Stop()

	f.cond.Wait()
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// DropPacket records a packet the caller chose not to enqueue (e.g. a
// TX burst abandoned mid-flight), independent from Push's own overflow
// accounting.
func (f *RingFifo) DropPacket() {
	f.dropped.Add(1)
}

// TakeStats returns the current counters and resets them to zero,
// matching GetInfo()'s reset-on-read convention.
func (f *RingFifo) TakeStats() Stats {
	f.mu.Lock()
	size := int(f.size())
	f.mu.Unlock()
	return Stats{
		Size:           len(f.slots),
		ItemsQueued:    size,
		Overflow:       f.overflow.Swap(0),
		Underrun:       f.underrun.Swap(0),
		DroppedPackets: f.dropped.Swap(0),
	}
}
