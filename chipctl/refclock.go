// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl

import "math"

// fpgaCounterClockHz is the fixed clock the FPGA's reference-clock
// detection counter is itself clocked against, matching
// Connection_uLimeSDR.cpp's DetectRefClk (fx3Clk).
const fpgaCounterClockHz = 100e6

// fpgaCounterWindow is the counter's fixed window length in its own
// clock ticks (fx3Cnt in the original), i.e. the measurement window is
// fpgaCounterWindow/fpgaCounterClockHz seconds long.
const fpgaCounterWindow = 16777210

// ReferenceClockCandidates is the set of reference clock rates this
// chip is ever wired to in practice, in Hz. DetectReferenceClock picks
// the nearest of these and returns ErrReferenceClockUnresolved when the
// measured rate is more than 15% away from it.
var ReferenceClockCandidates = []float64{30.72e6, 38.4e6, 40e6, 52e6}

// DetectReferenceClock converts a raw FPGA counter value into a
// reference clock rate in Hz by scaling against fpgaCounterClockHz and
// matching the result to the nearest entry in ReferenceClockCandidates
// by minimum absolute error.
//
// Unlike Connection_uLimeSDR.cpp's DetectRefClk, whose nearest-match
// loop compares each candidate's error against the *previous*
// candidate's error rather than against the running minimum, this
// always tracks the running minimum directly — the two are equivalent
// only when the candidate table is sorted and the true rate is
// adjacent to its nearest entry, which holds for the fixed table above
// but is not a safe loop idiom to copy in general.
func DetectReferenceClock(rawCount uint32) (hz float64, err error) {
	measured := float64(rawCount) * fpgaCounterClockHz / fpgaCounterWindow

	best := ReferenceClockCandidates[0]
	bestErr := math.Abs(measured - best)
	for _, cand := range ReferenceClockCandidates[1:] {
		if e := math.Abs(measured - cand); e < bestErr {
			best, bestErr = cand, e
		}
	}

	const tolerance = 0.15 // fractional tolerance around a candidate
	if bestErr > best*tolerance {
		return 0, ErrReferenceClockUnresolved
	}
	return best, nil
}
