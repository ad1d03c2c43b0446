// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package calib_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lms7x/lms7core/calib"
	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/logx"
	"github.com/lms7x/lms7core/rap"
)

// rssiRegAddr is the RSSI accumulator register (see params.yaml's RSSI
// entry), used directly by test ReadHooks that model RSSI as a
// function of a trim register's raw value.
const rssiRegAddr = 0x040F

// failingPreamblePort wraps a LoopbackPort and fails every
// WriteMaskedBatch call, modeling a transport fault during a
// calibration preamble write.
type failingPreamblePort struct {
	*rap.LoopbackPort
}

func (p *failingPreamblePort) WriteMaskedBatch(b rap.RegisterBatch) error {
	return errors.New("injected transport fault")
}

func TestRxTuneLPFConvergesLowBand(t *testing.T) {
	const ceiling = uint16(5000)
	const trimAddr = uint16(0x0116) // C_CTL_LPFL_RBB

	hook := func(addr uint16, regs map[uint16]uint16) (uint16, bool) {
		if addr == rssiRegAddr {
			return ceiling - regs[trimAddr], true
		}
		return 0, false
	}
	port := rap.NewLoopbackPort(nil, hook)
	table := chipctl.DefaultParamTable

	err := calib.RxTuneLPF(port, table, chipctl.NewRSSIDelay(), 2e6, logx.Discard)
	require.NoError(t, err)

	v, gerr := table.GetBits(port, "C_CTL_LPFL_RBB")
	require.NoError(t, gerr)
	assert.InDelta(t, 1466, int(v), 2)
}

func TestRxTuneLPFConvergesHighBand(t *testing.T) {
	const ceiling = uint16(500)
	const trimAddr = uint16(0x0112) // C_CTL_LPFH_RBB

	hook := func(addr uint16, regs map[uint16]uint16) (uint16, bool) {
		if addr == rssiRegAddr {
			return ceiling - regs[trimAddr], true
		}
		return 0, false
	}
	port := rap.NewLoopbackPort(nil, hook)
	table := chipctl.DefaultParamTable

	err := calib.RxTuneLPF(port, table, chipctl.NewRSSIDelay(), 20e6, logx.Discard)
	require.NoError(t, err)

	v, gerr := table.GetBits(port, "C_CTL_LPFH_RBB")
	require.NoError(t, gerr)
	assert.InDelta(t, 148, int(v), 2)
}

func TestRxTuneLPFRejectsOutOfRangeIF(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	err := calib.RxTuneLPF(port, chipctl.DefaultParamTable, chipctl.NewRSSIDelay(), 1e9, logx.Discard)
	assert.ErrorIs(t, err, calib.ErrOutOfRange)
}

func TestRxTuneLPFLogsDiagnosticDumpOnFailure(t *testing.T) {
	port := &failingPreamblePort{LoopbackPort: rap.NewLoopbackPort(nil, nil)}
	var buf bytes.Buffer
	log := logx.New(&buf, "calib", logx.LevelInfo)

	err := calib.RxTuneLPF(port, chipctl.DefaultParamTable, chipctl.NewRSSIDelay(), 2e6, log)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "rx-lpf tune failed")
	assert.Contains(t, buf.String(), "chip state at entry")
}
