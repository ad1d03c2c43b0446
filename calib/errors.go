// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package calib

import "errors"

var (
	// ErrOutOfRange is returned when a requested IF frequency falls
	// outside the filter's tunable range (RxLPF_RF_LimitLow/High,
	// TxLPF_RF_Limit{Low,LowMid,MidHigh,High} in lms7002m_filters.c).
	ErrOutOfRange = errors.New("calib: frequency out of range")

	// ErrInvalidTiaGain names a TIA gain readback that is not one of
	// the three values the original firmware's TuneRxFilterSetup
	// branches on (1, 2, 3). No function in this package returns it.
	ErrInvalidTiaGain = errors.New("calib: invalid TIA gain code")

	// ErrSearchExhausted is returned by FilterSearch whenever its
	// exponential probe hits its step limit without crossing the RSSI
	// target, i.e. the original firmware's E_INCREASE_R/E_DECREASE_R
	// condition; the SearchDirection returned with it names the
	// resistor-code adjustment to retry with.
	ErrSearchExhausted = errors.New("calib: filter search exhausted without convergence")
)

// SearchDirection reports which resistor-code adjustment a caller
// should retry with after a FilterSearch hits its step limit, matching
// lms7002m_filters.c's E_INCREASE_R/E_DECREASE_R sentinels.
type SearchDirection int

const (
	// SearchConverged means FilterSearch found a crossing; no retry is
	// needed.
	SearchConverged SearchDirection = iota
	// SearchIncreaseR asks the caller to increase the associated
	// resistor control code and retry.
	SearchIncreaseR
	// SearchDecreaseR asks the caller to decrease the associated
	// resistor control code and retry.
	SearchDecreaseR
)
