// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package stream implements the Streamer: per-chip RX/TX worker
goroutines, FPGA link-format/LML/MIMO register programming
(update_threads), timestamp-gated TX, self-calibration drain, and rate
counters. It is grounded directly on Streamer.h's type shapes and
ILimeSDRStreaming.cpp's SetupStream/CloseStream/ControlStream/
ReadStream/WriteStream/UpdateThreads/EnterSelfCalibration/
ExitSelfCalibration.

RX/TX workers are goroutines rather than OS threads: Go's scheduler
multiplexes them onto OS threads, so "one RX worker and one TX worker
per chip" is satisfied by starting exactly one goroutine of each kind,
matching Streamer::UpdateThreads' one-thread-per-direction-per-chip
model without needing to manage threads directly.
*/
package stream
