// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/rap"
)

func TestGetModifyBitsRoundTrip(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	require.NoError(t, chipctl.ModifyBits(port, "C_CTL_LPFL_RBB", 0x3AB))
	v, err := chipctl.GetBits(port, "C_CTL_LPFL_RBB")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x3AB), v)
}

func TestModifyBitsDoesNotDisturbNeighboringField(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	require.NoError(t, chipctl.ModifyBits(port, "CFB_TIA_RFE", 0xABC))
	require.NoError(t, chipctl.ModifyBits(port, "CCOMP_TIA_RFE", 0xF))

	v, err := chipctl.GetBits(port, "CFB_TIA_RFE")
	require.NoError(t, err)
	assert.Equal(t, uint16(0xABC), v, "writing CCOMP_TIA_RFE must not disturb CFB_TIA_RFE, same register")
}

func TestModifyBitsRejectsOversizedValue(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	err := chipctl.ModifyBits(port, "MAC", 0xFF) // MAC is a 2-bit field
	assert.Error(t, err)
}

func TestUnknownParamIsError(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	_, err := chipctl.GetBits(port, "NOT_A_REAL_FIELD")
	assert.ErrorIs(t, err, chipctl.ErrUnknownParam)
}

// Property: for every field in the default table, writing any value
// within its bit width and reading it back returns the same value,
// independent of what else lives in that register.
func TestFieldRoundTripProperty(t *testing.T) {
	names := []string{
		"MAC", "G_PGA_RBB", "R_CTL_LPF_RBB", "C_CTL_LPFL_RBB",
		"C_CTL_LPFH_RBB", "CFB_TIA_RFE", "CCOMP_TIA_RFE",
		"RCAL_LPFLAD_TBB", "RCAL_LPFH_TBB", "CCAL_LPFLAD_TBB",
	}
	widths := map[string]uint{
		"MAC": 2, "G_PGA_RBB": 6, "R_CTL_LPF_RBB": 5, "C_CTL_LPFL_RBB": 11,
		"C_CTL_LPFH_RBB": 8, "CFB_TIA_RFE": 12, "CCOMP_TIA_RFE": 4,
		"RCAL_LPFLAD_TBB": 8, "RCAL_LPFH_TBB": 8, "CCAL_LPFLAD_TBB": 5,
	}

	rapid.Check(t, func(r *rapid.T) {
		port := rap.NewLoopbackPort(nil, nil)
		name := rapid.SampledFrom(names).Draw(r, "name")
		maxVal := uint16(1)<<widths[name] - 1
		value := rapid.Uint16Range(0, maxVal).Draw(r, "value")

		require.NoError(t, chipctl.ModifyBits(port, name, value))
		got, err := chipctl.GetBits(port, name)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})
}
