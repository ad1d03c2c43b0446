// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DeviceProfile is the set of configuration inputs that live outside
// the chip's own register state: the reference clock rate (when not
// auto-detected), default RX/TX tune frequencies and filter
// bandwidths, and whether the automatic IQ calibration runs.
type DeviceProfile struct {
	ReferenceClockHz  float64 `koanf:"reference_clock_hz"`
	RxTuneFrequencyHz float64 `koanf:"rx_tune_frequency_hz"`
	TxTuneFrequencyHz float64 `koanf:"tx_tune_frequency_hz"`
	RxBandwidthHz     float64 `koanf:"rx_bandwidth_hz"`
	TxBandwidthHz     float64 `koanf:"tx_bandwidth_hz"`
	AutoIQCal         bool    `koanf:"auto_iq_cal"`
}

// DefaultDeviceProfile returns the profile used when no config file is
// present: a mid-band RX/TX plan at the 30.72MHz reference clock, the
// most common of the four candidates in
// chipctl.ReferenceClockCandidates.
func DefaultDeviceProfile() DeviceProfile {
	return DeviceProfile{
		ReferenceClockHz:  30.72e6,
		RxTuneFrequencyHz: 900e6,
		TxTuneFrequencyHz: 900e6,
		RxBandwidthHz:     5e6,
		TxBandwidthHz:     5e6,
		AutoIQCal:         false,
	}
}

// LoadDeviceProfile reads a DeviceProfile from a TOML file at path,
// starting from DefaultDeviceProfile and overlaying whatever keys the
// file sets, following the koanf "load a default then merge a file
// provider" pattern. A missing file is not an error: it yields
// DefaultDeviceProfile unchanged, since a freshly-installed device has
// no profile on disk yet.
func LoadDeviceProfile(path string) (DeviceProfile, error) {
	k := koanf.New(".")

	def := DefaultDeviceProfile()
	defaults := map[string]interface{}{
		"reference_clock_hz":   def.ReferenceClockHz,
		"rx_tune_frequency_hz": def.RxTuneFrequencyHz,
		"tx_tune_frequency_hz": def.TxTuneFrequencyHz,
		"rx_bandwidth_hz":      def.RxBandwidthHz,
		"tx_bandwidth_hz":      def.TxBandwidthHz,
		"auto_iq_cal":          def.AutoIQCal,
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return DeviceProfile{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if err := k.Load(file.Provider(path), toml.Parser()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return DeviceProfile{}, fmt.Errorf("config: load %s: %w", path, err)
	}

	var profile DeviceProfile
	if err := k.Unmarshal("", &profile); err != nil {
		return DeviceProfile{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return profile, nil
}
