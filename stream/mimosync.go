// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import "fmt"

// MIMOEvent is an out-of-band notification MIMOAligner raises when its
// two input channels fall in or out of step with each other.
type MIMOEvent int

const (
	MIMOEventReset MIMOEvent = iota
	MIMOEventSync
	MIMOEventOutOfSync
)

// MIMOCallbackFn receives time-aligned samples from both RX channels
// once cbScalars samples are available for each, matching the layout
// updateThreadsLocked's enableMIMOChannelB wiring expects: channel A
// and channel B share one LML lane pair and must be consumed in lock
// step.
type MIMOCallbackFn func(xia, xqa, xib, xqb []int16, reset bool)

// MIMOEventFn receives MIMOAligner's synchronization state changes. It
// may be nil to ignore events.
type MIMOEventFn func(evt MIMOEvent, msg string)

// MIMOAligner merges the independent per-channel Read streams of a
// Streamer's two RX Channels into one time-aligned callback, the way
// Synchro merged an RSPduo's two independent tuner streams. It assumes:
//  1. Both channels run at the same effective sample rate.
//  2. Channel A and channel B are fed in a consistently alternating
//     order (one FeedA, one FeedB, repeating).
//  3. Each FeedA/FeedB pair carries the same sample count.
type MIMOAligner struct {
	cbScalars int
	cb        MIMOCallbackFn
	evtCb     MIMOEventFn

	xia, xqa, xib, xqb []int16
	numSamplesA        int
	rxIdx              int
	txIdx              int
	reset              bool
	sync               bool
}

// NewMIMOAligner creates an aligner that calls cb once cbSamples
// scalars are available for both channels. evtCb may be nil.
func NewMIMOAligner(cbSamples int, cb MIMOCallbackFn, evtCb MIMOEventFn) *MIMOAligner {
	bufSize := 10 * cbSamples
	for bufSize < 10*1024 {
		bufSize *= 2
	}
	buf := make([]int16, 4*bufSize)
	return &MIMOAligner{
		cbScalars: cbSamples,
		cb:        cb,
		evtCb:     evtCb,
		xia:       buf[:bufSize],
		xqa:       buf[bufSize : 2*bufSize],
		xib:       buf[2*bufSize : 3*bufSize],
		xqb:       buf[3*bufSize:],
		reset:     true,
	}
}

// Reset clears the aligner's state and raises MIMOEventReset. It
// should only be called between FeedA/FeedB pairs.
func (f *MIMOAligner) Reset() {
	f.doEvent(MIMOEventReset, "mimo aligner reset")
	f.numSamplesA = 0
	f.rxIdx = 0
	f.txIdx = 0
	f.reset = true
	f.sync = false
}

func (f *MIMOAligner) doCallback() {
	end := f.txIdx + f.cbScalars
	xia := f.xia[f.txIdx:end]
	xqa := f.xqa[f.txIdx:end]
	xib := f.xib[f.txIdx:end]
	xqb := f.xqb[f.txIdx:end]
	f.txIdx = (f.txIdx + f.cbScalars) % len(f.xia)
	reset := f.reset
	f.reset = false
	if f.cb == nil {
		return
	}
	f.cb(xia, xqa, xib, xqb, reset)
}

func (f *MIMOAligner) doEvent(evt MIMOEvent, msg string) {
	if f.evtCb != nil {
		f.evtCb(evt, msg)
	}
}

// FeedA buffers one channel-A read. The user callback is never called
// from FeedA; it is only called from FeedB once both sides line up.
func (f *MIMOAligner) FeedA(xi, xq []int16, reset bool) {
	if reset {
		f.Reset()
	}
	switch {
	case len(xi) != len(xq):
		if f.sync {
			f.doEvent(MIMOEventOutOfSync, fmt.Sprintf("len(xia)=%d len(xqa)=%d", len(xi), len(xq)))
		}
		return
	case f.numSamplesA != 0:
		if f.sync {
			f.doEvent(MIMOEventOutOfSync, "channel B has not been handled")
		}
		return
	}
	f.reset = f.reset || reset

	f.numSamplesA = len(xi)
	idx := f.rxIdx
	mod := len(f.xia)
	if idx+len(xi) < mod {
		copy(f.xia[idx:], xi)
		copy(f.xqa[idx:], xq)
	} else {
		copy(f.xia[idx:], xi)
		n := copy(f.xqa[idx:], xq)
		copy(f.xia, xi[n:])
		copy(f.xqa, xq[n:])
	}
}

// FeedB buffers one channel-B read and, once cbScalars worth of
// aligned samples have accumulated, invokes the user callback.
func (f *MIMOAligner) FeedB(xi, xq []int16, reset bool) {
	switch {
	case len(xi) != len(xq):
		if f.sync {
			f.doEvent(MIMOEventOutOfSync, fmt.Sprintf("len(xib)=%d len(xqb)=%d", len(xi), len(xq)))
		}
		return
	case f.numSamplesA == 0:
		if f.sync {
			f.sync = false
			f.doEvent(MIMOEventOutOfSync, "channel A has not been handled")
		}
		return
	case f.numSamplesA != len(xi):
		if f.sync {
			f.sync = false
			f.doEvent(MIMOEventOutOfSync, fmt.Sprintf("numSamplesA=%d numSamplesB=%d", f.numSamplesA, len(xi)))
		}
		return
	}
	f.reset = f.reset || reset

	if !f.sync {
		f.doEvent(MIMOEventSync, fmt.Sprintf("synchronized; numSamples=%d", len(xi)))
	}
	f.sync = true

	idx := f.rxIdx
	rem := len(xi)
	for rem > 0 {
		lastCb := idx - (idx % f.cbScalars)
		nextCb := lastCb + f.cbScalars
		toNext := nextCb - idx
		bufIdx := len(xi) - rem
		if toNext > rem {
			copy(f.xib[idx:], xi[bufIdx:])
			copy(f.xqb[idx:], xq[bufIdx:])
			idx += rem
			rem = 0
		} else {
			copy(f.xib[idx:nextCb], xi[bufIdx:])
			copy(f.xqb[idx:nextCb], xq[bufIdx:])
			idx = nextCb
			rem -= toNext
			f.doCallback()
		}
		idx %= len(f.xia)
	}

	f.rxIdx = idx
	f.numSamplesA = 0
}
