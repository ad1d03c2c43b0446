// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package calib

import (
	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/rap"
)

// RSSISource abstracts a settled RSSI read so FilterSearch can be
// property-tested against a synthetic monotone function without a
// chip, and used in production against chipctl.GetRSSI.
type RSSISource interface {
	GetRSSI() (uint16, error)
}

// rssiSourceFunc adapts a plain function to RSSISource.
type rssiSourceFunc func() (uint16, error)

func (f rssiSourceFunc) GetRSSI() (uint16, error) { return f() }

// ChipRSSISource reads RSSI from a live port through chipctl, applying
// its configured settling delay before every sample.
func ChipRSSISource(port rap.Port, table *chipctl.ParamTable, delay *chipctl.RSSIDelay) RSSISource {
	return rssiSourceFunc(func() (uint16, error) {
		return chipctl.GetRSSI(port, table, delay)
	})
}

// FilterSearch is the shared binary/exponential-probe primitive: it
// adjusts the named trim-code field up or down, one settled RSSI
// sample at a time, until the sampled RSSI crosses rssiTarget, then
// bisects back to the crossing point. It is a direct port of
// lms7002m_filters.c's RxFilterSearch (itself shared verbatim by the
// TX tuning path), parameterized over an RSSISource and a
// chipctl.ParamTable field instead of hardcoded register addresses.
//
// If the exponential phase exhausts stepLimit without the sampled RSSI
// ever crossing rssiTarget, FilterSearch returns (SearchIncreaseR,
// ErrSearchExhausted) or (SearchDecreaseR, ErrSearchExhausted)
// depending on the search direction, asking the caller to adjust an
// associated resistor control code and retry — exactly
// lms7002m_filters.c's E_INCREASE_R/E_DECREASE_R contract.
//
// The exponential phase doubles stepSize before each probe (stepSize
// starts at 1, and the first move applied is already 2), so the loop
// can exit with stepSize anywhere in [stepLimit, 2*stepLimit) rather
// than exactly at stepLimit. This is preserved exactly: it is load
// bearing for which trim code each calibration converges to, not an
// incidental detail.
func FilterSearch(port rap.Port, table *chipctl.ParamTable, rssi RSSISource, field string, rssiTarget uint16, maxValue uint16, stepLimit uint16) (SearchDirection, error) {
	if table == nil {
		table = chipctl.DefaultParamTable
	}

	current, err := rssi.GetRSSI()
	if err != nil {
		return SearchConverged, err
	}
	doDecrement := current < rssiTarget

	value, err := table.GetBits(port, field)
	if err != nil {
		return SearchConverged, err
	}

	stepSize := uint16(1)
	for {
		stepSize <<= 1
		value = clampStep(value, stepSize, doDecrement, maxValue)
		if err := table.ModifyBits(port, field, value); err != nil {
			return SearchConverged, err
		}

		sample, err := rssi.GetRSSI()
		if err != nil {
			return SearchConverged, err
		}
		if doDecrement != (sample < rssiTarget) {
			break
		}
		if stepSize >= stepLimit {
			if doDecrement {
				return SearchIncreaseR, ErrSearchExhausted
			}
			return SearchDecreaseR, ErrSearchExhausted
		}
	}

	for stepSize > 1 {
		stepSize /= 2
		sample, err := rssi.GetRSSI()
		if err != nil {
			return SearchConverged, err
		}
		if sample >= rssiTarget {
			value = addClamped(value, stepSize, maxValue)
		} else {
			value = subClamped(value, stepSize)
		}
		if err := table.ModifyBits(port, field, value); err != nil {
			return SearchConverged, err
		}
	}
	return SearchConverged, nil
}

func clampStep(value, step uint16, decrement bool, maxValue uint16) uint16 {
	if decrement {
		return subClamped(value, step)
	}
	return addClamped(value, step, maxValue)
}

func addClamped(value, delta, maxValue uint16) uint16 {
	v := uint32(value) + uint32(delta)
	if v > uint32(maxValue) {
		return maxValue
	}
	return uint16(v)
}

func subClamped(value, delta uint16) uint16 {
	if delta > value {
		return 0
	}
	return value - delta
}
