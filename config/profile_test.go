// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lms7x/lms7core/config"
)

func TestLoadDeviceProfileMissingFileYieldsDefaults(t *testing.T) {
	profile, err := config.LoadDeviceProfile(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.DefaultDeviceProfile(), profile)
}

func TestLoadDeviceProfileOverlaysFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	body := `
reference_clock_hz = 40000000
rx_tune_frequency_hz = 2400000000
auto_iq_cal = true
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	profile, err := config.LoadDeviceProfile(path)
	require.NoError(t, err)

	assert.Equal(t, 40e6, profile.ReferenceClockHz)
	assert.Equal(t, 2.4e9, profile.RxTuneFrequencyHz)
	assert.True(t, profile.AutoIQCal)

	// Untouched fields fall back to defaults.
	def := config.DefaultDeviceProfile()
	assert.Equal(t, def.TxTuneFrequencyHz, profile.TxTuneFrequencyHz)
	assert.Equal(t, def.RxBandwidthHz, profile.RxBandwidthHz)
}
