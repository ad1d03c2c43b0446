// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/rap"
)

func TestSetSectionDefaultsWritesKnownRegisters(t *testing.T) {
	port := rap.NewLoopbackPort(map[uint16]uint16{0x0115: 0xFFFF}, nil)
	require.NoError(t, chipctl.SetSectionDefaults(port, chipctl.SectionRBB))

	v, err := port.ReadReg(0x0115)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x8090), v, "only the masked bits of 0x0115 should change")
}

func TestSetSectionDefaultsUnknownSectionIsNoop(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	assert.NoError(t, chipctl.SetSectionDefaults(port, chipctl.Section(999)))
}
