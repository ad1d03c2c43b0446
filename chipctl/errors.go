// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl

import "errors"

var (
	// ErrUnknownParam is returned by Get/Modify when the name is not in
	// the loaded parameter table.
	ErrUnknownParam = errors.New("chipctl: unknown parameter")

	// ErrPllLock is returned by SetFrequencySX when the synthesizer does
	// not report lock within the polling budget.
	ErrPllLock = errors.New("chipctl: PLL failed to lock")

	// ErrOutOfRange is returned when a requested frequency or NCO index
	// falls outside what the chip can represent.
	ErrOutOfRange = errors.New("chipctl: value out of range")

	// ErrReferenceClockUnresolved is returned by DetectReferenceClock
	// when the measured rate does not fall within tolerance of any
	// entry in the candidate table.
	ErrReferenceClockUnresolved = errors.New("chipctl: could not resolve reference clock rate")
)
