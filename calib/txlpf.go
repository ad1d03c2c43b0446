// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package calib

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"

	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/logx"
	"github.com/lms7x/lms7core/rap"
)

// maxTxTuneIterations bounds TxTuneLPF's refinement loop, matching
// lms7002m_filters.c's TuneTxFilter ("at most 5 iterations").
const maxTxTuneIterations = 5

// TxTuneLPF runs the TX-LPF bandwidth calibration for the given
// bandwidth (Hz), a direct port of lms7002m_filters.c's
// TuneTxFilterSetup + TuneTxFilter. Unlike the RX path's single
// FilterSearch call per band, TX tuning iteratively refines
// CCAL_LPFLAD_TBB/RCAL_LPFLAD_TBB
// (or RCAL_LPFH_TBB above TxLPFLimitMidHigh) against a -3dB target
// recomputed from a fresh RSSI sample each pass, for up to
// maxTxTuneIterations rounds.
func TxTuneLPF(port rap.Port, table *chipctl.ParamTable, delay *chipctl.RSSIDelay, txLpfBW float64, log logx.Logger) (err error) {
	if table == nil {
		table = chipctl.DefaultParamTable
	}
	if log == nil {
		log = logx.Discard
	}
	if txLpfBW < TxLPFLimitLow || txLpfBW > TxLPFLimitHigh {
		return fmt.Errorf("%w: TX-LPF bandwidth %gHz", ErrOutOfRange, txLpfBW)
	}

	guard, err := chipctl.NewChipStateGuard(port, table)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			log.Printf("tx-lpf tune failed at %gHz: %v\nchip state at entry:\n%s", txLpfBW, err, spew.Sdump(guard.Snapshot()))
			_ = guard.Release()
		}
	}()

	if err = port.WriteMaskedBatch(TxFilterSetupPreamble); err != nil {
		return err
	}

	rssi := ChipRSSISource(port, table, delay)

	if err = rampTxInjectGain(port, table, rssi); err != nil {
		return err
	}

	highBand := txLpfBW > TxLPFLimitMidHigh
	field, maxValue := "RCAL_LPFLAD_TBB", uint16(255)
	if highBand {
		field, maxValue = "RCAL_LPFH_TBB", uint16(255)
	}

	for i := 0; i < maxTxTuneIterations; i++ {
		dcRSSI, err2 := rssi.GetRSSI()
		if err2 != nil {
			err = err2
			return err
		}
		rssi3dB := uint16(float64(dcRSSI) * 0.7071)

		sample, err2 := rssi.GetRSSI()
		if err2 != nil {
			err = err2
			return err
		}
		if sample < rssi3dB {
			if err2 := stepCCal(port, table, rssi, rssi3dB, true); err2 != nil {
				err = err2
				return err
			}
			r, err2 := table.GetBits(port, field)
			if err2 != nil {
				err = err2
				return err
			}
			if err2 := table.ModifyBits(port, field, addClamped(r, 25, maxValue)); err2 != nil {
				err = err2
				return err
			}
		} else if sample > rssi3dB {
			if err2 := stepCCal(port, table, rssi, rssi3dB, false); err2 != nil {
				err = err2
				return err
			}
			r, err2 := table.GetBits(port, field)
			if err2 != nil {
				err = err2
				return err
			}
			if err2 := table.ModifyBits(port, field, subClamped(r, 10)); err2 != nil {
				err = err2
				return err
			}
		} else {
			break
		}
	}

	guard.Commit()
	log.Printf("tx-lpf tuned at %gHz", txLpfBW)
	return nil
}

// rampTxInjectGain sets ICT_IAMP_FRP_TBB to 1 and ICT_IAMP_GG_FRP_TBB
// to 6, then raises CG_IAMP_TBB by 1 until RSSI reaches
// rssiInjectTarget or the field reaches 43, matching TuneTxFilter's
// injection ramp (the TX-side analog of rampLoopbackGain).
func rampTxInjectGain(port rap.Port, table *chipctl.ParamTable, rssi RSSISource) error {
	if err := table.ModifyBits(port, "ICT_IAMP_FRP_TBB", 1); err != nil {
		return err
	}
	if err := table.ModifyBits(port, "ICT_IAMP_GG_FRP_TBB", 6); err != nil {
		return err
	}

	for {
		sample, err := rssi.GetRSSI()
		if err != nil {
			return err
		}
		v, err := table.GetBits(port, "CG_IAMP_TBB")
		if err != nil {
			return err
		}
		if sample >= rssiInjectTarget || v >= 43 {
			break
		}
		if err := table.ModifyBits(port, "CG_IAMP_TBB", v+1); err != nil {
			return err
		}
	}
	return nil
}

// stepCCal walks CCAL_LPFLAD_TBB by one count per settled RSSI sample
// toward the target, matching TuneTxFilter's inner while loops
// ("while(rssi < rssi_3dB_lad && ccal_lpflad_tbb > 0)" and its mirror).
func stepCCal(port rap.Port, table *chipctl.ParamTable, rssi RSSISource, target uint16, decrement bool) error {
	for i := 0; i < 32; i++ {
		v, err := table.GetBits(port, "CCAL_LPFLAD_TBB")
		if err != nil {
			return err
		}
		sample, err := rssi.GetRSSI()
		if err != nil {
			return err
		}
		if decrement {
			if sample >= target || v == 0 {
				break
			}
			if err := table.ModifyBits(port, "CCAL_LPFLAD_TBB", v-1); err != nil {
				return err
			}
		} else {
			if sample <= target || v >= 31 {
				break
			}
			if err := table.ModifyBits(port, "CCAL_LPFLAD_TBB", v+1); err != nil {
				return err
			}
		}
	}
	return nil
}
