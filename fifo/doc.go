// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package fifo implements the Sample FIFO: a bounded single-producer/
single-consumer ring buffer of fixed-size SamplePackets whose push
never blocks and whose pop blocks until a deadline, grounded on ILimeSDRStreaming.cpp's RingFIFO usage
and helpers/duo/synchro.go's ping-pong buffering discipline from the
teacher corpus (fixed-capacity slices indexed modulo capacity, advanced
by exactly one owner).

Overflow, underrun, and dropped-packet counts are tracked
independently. ILimeSDRStreaming.cpp's GetInfo() has a bug where
`stats.overrun = overflow` is immediately overwritten by
`stats.overrun = underflow`, silently losing the overflow count and
never reporting underrun under its own name — Stats (as returned by
RingFifo.TakeStats) deliberately
keeps Overflow and Underrun as separate fields so the same mistake
cannot happen here.
*/
package fifo
