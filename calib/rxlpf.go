// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package calib

import (
	"fmt"
	"math"

	"github.com/davecgh/go-spew/spew"

	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/logx"
	"github.com/lms7x/lms7core/rap"
)

// rssiInjectTarget is the calibration tone's target RSSI floor
// (lms7002m_filters.c uses 0x2700 throughout TuneRxFilter/TuneTxFilter
// to decide when enough loopback/current gain has been injected).
const rssiInjectTarget = 0x2700

// RxTuneLPF runs the RX-LPF bandwidth calibration for the given IF
// frequency (Hz). It is a direct port of lms7002m_filters.c's
// TuneRxFilterSetup + TuneRxFilter: write the calibration preamble,
// inject a loopback tone
// of increasing gain until RSSI crosses rssiInjectTarget, compute the
// -3dB RSSI target, then FilterSearch the low-band or high-band trim
// code depending on rxLpfIF, retrying with an adjusted R_CTL_LPF_RBB
// code if the search hits its step limit.
//
// Chip state is captured in a ChipStateGuard on entry, restored on
// every error return and committed on success — replacing the
// original firmware's SaveChipState(0)/RestoreChipState(0) pair at
// RxFilterSearchEndStage with an explicit, non-shared guard.
func RxTuneLPF(port rap.Port, table *chipctl.ParamTable, delay *chipctl.RSSIDelay, rxLpfIF float64, log logx.Logger) (err error) {
	if table == nil {
		table = chipctl.DefaultParamTable
	}
	if log == nil {
		log = logx.Discard
	}
	if rxLpfIF < RxLPFLimitLow || rxLpfIF > RxLPFLimitHigh {
		return fmt.Errorf("%w: RX-LPF IF %gHz", ErrOutOfRange, rxLpfIF)
	}

	guard, err := chipctl.NewChipStateGuard(port, table)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			log.Printf("rx-lpf tune failed at %gHz: %v\nchip state at entry:\n%s", rxLpfIF, err, spew.Sdump(guard.Snapshot()))
			_ = guard.Release()
		}
	}()

	if err = port.WriteMaskedBatch(RxFilterSetupPreamble); err != nil {
		return err
	}

	rssi := ChipRSSISource(port, table, delay)

	if err = rampLoopbackGain(port, table, rssi); err != nil {
		return err
	}

	currentRSSI, err := rssi.GetRSSI()
	if err != nil {
		return err
	}
	rssi3dB := uint16(float64(currentRSSI) * 0.7071 * math.Pow(10, (-0.0018*rxLpfIF/1e6)/20))

	if rxLpfIF >= RxLPFLimitLow && rxLpfIF < 18e6 {
		err = tuneRxLowBand(port, table, rssi, rssi3dB)
	} else {
		err = tuneRxHighBand(port, table, rssi, rssi3dB)
	}
	if err != nil {
		return err
	}

	guard.Commit()
	log.Printf("rx-lpf tuned at %gHz", rxLpfIF)
	return nil
}

// rampLoopbackGain raises G_RXLOOPB_RFE in steps of 2 until RSSI
// crosses rssiInjectTarget or the gain field saturates at 14, then
// raises CG_IAMP_TBB the same way up to 30, matching TuneRxFilter's
// injection ramp.
func rampLoopbackGain(port rap.Port, table *chipctl.ParamTable, rssi RSSISource) error {
	for {
		v, err := table.GetBits(port, "MAC")
		if err != nil {
			return err
		}
		sample, err := rssi.GetRSSI()
		if err != nil {
			return err
		}
		if sample >= rssiInjectTarget || v >= 14 {
			break
		}
		if err := table.ModifyBits(port, "MAC", v+2); err != nil {
			return err
		}
	}

	for {
		v, err := table.GetBits(port, "CG_IAMP_TBB")
		if err != nil {
			return err
		}
		sample, err := rssi.GetRSSI()
		if err != nil {
			return err
		}
		if sample >= rssiInjectTarget || v >= 30 {
			break
		}
		if err := table.ModifyBits(port, "CG_IAMP_TBB", v+2); err != nil {
			return err
		}
	}
	return nil
}

// tuneRxLowBand searches C_CTL_LPFL_RBB (IF < 18MHz band), retrying
// with R_CTL_LPF_RBB nudged by +-1 on step-limit exhaustion, matching
// TuneRxFilter's low-band branch.
func tuneRxLowBand(port rap.Port, table *chipctl.ParamTable, rssi RSSISource, rssi3dB uint16) error {
	const maxValue = 2047
	const stepLimit = 2048

	dir, err := FilterSearch(port, table, rssi, "C_CTL_LPFL_RBB", rssi3dB, maxValue, stepLimit)
	if err == nil {
		return nil
	}
	if err != ErrSearchExhausted {
		return err
	}
	return retryWithRCtlAdjust(port, table, rssi, "C_CTL_LPFL_RBB", rssi3dB, maxValue, stepLimit, dir)
}

// tuneRxHighBand searches C_CTL_LPFH_RBB (IF >= 18MHz band), with the
// same R_CTL_LPF_RBB retry discipline as the low-band search.
func tuneRxHighBand(port rap.Port, table *chipctl.ParamTable, rssi RSSISource, rssi3dB uint16) error {
	const maxValue = 255
	const stepLimit = 256

	dir, err := FilterSearch(port, table, rssi, "C_CTL_LPFH_RBB", rssi3dB, maxValue, stepLimit)
	if err == nil {
		return nil
	}
	if err != ErrSearchExhausted {
		return err
	}
	return retryWithRCtlAdjust(port, table, rssi, "C_CTL_LPFH_RBB", rssi3dB, maxValue, stepLimit, dir)
}

// retryWithRCtlAdjust nudges R_CTL_LPF_RBB by one in the direction
// FilterSearch requested and retries the search exactly once, matching
// TuneRxFilter's single-retry-then-fail discipline.
func retryWithRCtlAdjust(port rap.Port, table *chipctl.ParamTable, rssi RSSISource, field string, rssi3dB uint16, maxValue, stepLimit uint16, dir SearchDirection) error {
	rCtl, err := table.GetBits(port, "R_CTL_LPF_RBB")
	if err != nil {
		return err
	}
	if dir == SearchIncreaseR {
		rCtl = addClamped(rCtl, 1, 31)
	} else {
		rCtl = subClamped(rCtl, 1)
	}
	if err := table.ModifyBits(port, "R_CTL_LPF_RBB", rCtl); err != nil {
		return err
	}

	_, err = FilterSearch(port, table, rssi, field, rssi3dB, maxValue, stepLimit)
	if err == ErrSearchExhausted {
		return fmt.Errorf("%w: RX-LPF did not converge after R_CTL_LPF_RBB retry", ErrSearchExhausted)
	}
	return err
}
