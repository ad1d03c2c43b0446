// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl

import "github.com/lms7x/lms7core/rap"

// stateParams is the set of fields a ChipStateGuard captures and
// restores. It covers the registers the original firmware's
// SaveChipState/RestoreChipState touch around a filter calibration run
// (gain, loopback, and filter trim codes) — see lms7002m_filters.c's
// TuneRxFilter/TuneTxFilter, which call SaveChipState(0) on entry and
// restore from slot 0 or 1 on every exit path.
var stateParams = []string{
	"MAC",
	"G_PGA_RBB",
	"R_CTL_LPF_RBB",
	"C_CTL_LPFL_RBB",
	"C_CTL_LPFH_RBB",
	"CFB_TIA_RFE",
	"CCOMP_TIA_RFE",
	"ICT_IAMP_FRP_TBB",
	"ICT_IAMP_GG_FRP_TBB",
	"CG_IAMP_TBB",
	"RCAL_LPFLAD_TBB",
	"RCAL_LPFH_TBB",
	"CCAL_LPFLAD_TBB",
}

// ChipStateGuard captures a snapshot of stateParams on construction and
// restores it when Release is called, unless Commit was called first.
// Each calibration routine captures its own guard instead of sharing a
// package-level save slot, so two calibrations can never stomp on each
// other's saved state.
//
// Typical use:
//
//	guard, err := chipctl.NewChipStateGuard(port, table)
//	if err != nil { return err }
//	defer guard.Release()
//	... run calibration, mutating registers ...
//	if calibrationSucceeded {
//		guard.Commit()
//	}
type ChipStateGuard struct {
	port      rap.Port
	table     *ParamTable
	snapshot  map[string]uint16
	committed bool
}

// NewChipStateGuard reads and stores the current value of every
// parameter in stateParams.
func NewChipStateGuard(port rap.Port, table *ParamTable) (*ChipStateGuard, error) {
	if table == nil {
		table = DefaultParamTable
	}
	g := &ChipStateGuard{port: port, table: table, snapshot: make(map[string]uint16, len(stateParams))}
	for _, name := range stateParams {
		v, err := table.GetBits(port, name)
		if err != nil {
			return nil, err
		}
		g.snapshot[name] = v
	}
	return g, nil
}

// Snapshot returns the captured parameter values, keyed by name, for
// diagnostic dumps when a calibration routine fails partway through.
func (g *ChipStateGuard) Snapshot() map[string]uint16 {
	return g.snapshot
}

// Commit marks the guard as successful: Release becomes a no-op.
func (g *ChipStateGuard) Commit() {
	g.committed = true
}

// Release restores the captured snapshot unless Commit was called.
// Safe to call multiple times: after Commit, or after the first
// Release, it does nothing and returns nil.
func (g *ChipStateGuard) Release() error {
	if g.committed {
		return nil
	}
	g.committed = true
	for _, name := range stateParams {
		if err := g.table.ModifyBits(g.port, name, g.snapshot[name]); err != nil {
			return err
		}
	}
	return nil
}
