// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package calib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lms7x/lms7core/calib"
	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/rap"
)

type rssiFunc func() (uint16, error)

func (f rssiFunc) GetRSSI() (uint16, error) { return f() }

// decreasingRSSI models the physical convention FilterSearch assumes:
// RSSI falls as the trim code rises (e.g. a larger filter capacitor
// code admitting less of the calibration tone). ceiling must exceed
// maxValue so the function never saturates at zero across the whole
// codomain, keeping it strictly monotone over [0, maxValue].
func decreasingRSSI(port rap.Port, table *chipctl.ParamTable, field string, ceiling uint16) calib.RSSISource {
	return rssiFunc(func() (uint16, error) {
		v, err := table.GetBits(port, field)
		if err != nil {
			return 0, err
		}
		return ceiling - v, nil
	})
}

// TestFilterSearchConvergesWithinOneLSB exercises the filter search
// convergence property: given a monotone synthetic RSSI function over
// code v, FilterSearch returns the code whose RSSI is closest to the
// target within +-1 LSB.
func TestFilterSearchConvergesWithinOneLSB(t *testing.T) {
	const maxValue = uint16(2047)
	const ceiling = uint16(4096)

	rapid.Check(t, func(r *rapid.T) {
		port := rap.NewLoopbackPort(nil, nil)
		table := chipctl.DefaultParamTable
		// Keep clear of the extreme ends of the codomain: at the exact
		// boundary the clamp can hold RSSI pinned exactly at target
		// without ever reporting a strict crossing, which is a
		// legitimate exhaustion case (tested separately) rather than a
		// convergence case.
		target := rapid.Uint16Range(ceiling-maxValue+4, ceiling-4).Draw(r, "target")

		rssi := decreasingRSSI(port, table, "C_CTL_LPFL_RBB", ceiling)
		dir, err := calib.FilterSearch(port, table, rssi, "C_CTL_LPFL_RBB", target, maxValue, 2048)
		require.NoError(t, err)
		assert.Equal(t, calib.SearchConverged, dir)

		v, gerr := table.GetBits(port, "C_CTL_LPFL_RBB")
		require.NoError(t, gerr)
		wantV := ceiling - target
		diff := int(v) - int(wantV)
		if diff < 0 {
			diff = -diff
		}
		assert.LessOrEqual(t, diff, 1)
	})
}

func TestFilterSearchExhaustsWhenTargetUnreachable(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	table := chipctl.DefaultParamTable
	rssi := rssiFunc(func() (uint16, error) { return 0, nil })

	_, err := calib.FilterSearch(port, table, rssi, "C_CTL_LPFL_RBB", 5000, 2047, 256)
	assert.ErrorIs(t, err, calib.ErrSearchExhausted)
}

// TestFilterSearchExponentialPhaseQuirk forces a search with stepLimit
// 1000 to exhaustion and checks the error, the SearchIncreaseR
// direction and the final field value of 0; the step size reached by
// the doubling probe is not observable from here.
func TestFilterSearchExponentialPhaseQuirk(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	table := chipctl.DefaultParamTable
	rssi := rssiFunc(func() (uint16, error) { return 0, nil })

	const stepLimit = 1000
	dir, err := calib.FilterSearch(port, table, rssi, "C_CTL_LPFL_RBB", 5000, 2047, stepLimit)
	assert.ErrorIs(t, err, calib.ErrSearchExhausted)
	assert.Equal(t, calib.SearchIncreaseR, dir)

	v, gerr := table.GetBits(port, "C_CTL_LPFL_RBB")
	require.NoError(t, gerr)
	// doDecrement was true throughout (RSSI always 0 < target), and
	// the field clamps at 0, so the final written value is 0 — the
	// quirk itself (stepSize reaching up to 2x stepLimit) is exercised
	// internally but only observable here through the error/direction.
	assert.Equal(t, uint16(0), v)
}
