// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import "errors"

var (
	// ErrNotActive names a channel whose worker is not running. No
	// function in this package returns it; Channel.Read and
	// Channel.Write work on the FIFO whether or not a worker runs.
	ErrNotActive = errors.New("stream: channel not active")
	// ErrAlreadyActive names a channel that is already running. No
	// function in this package returns it; Streamer.Start restarts
	// running workers instead.
	ErrAlreadyActive = errors.New("stream: channel already active")
	// ErrBusy is returned by EnterSelfCalibration if the streamer is
	// not in a state where a calibration drain makes sense (e.g.
	// neither RX nor TX is running).
	ErrBusy = errors.New("stream: streamer busy")
	// ErrSelfCalibrationTimeout is returned by EnterSelfCalibration when
	// the running worker does not reach a safe-to-reconfigure point
	// within the wait budget.
	ErrSelfCalibrationTimeout = errors.New("stream: self-calibration drain timed out")
)
