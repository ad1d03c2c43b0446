// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package config loads a DeviceProfile (reference clock, default
frequencies, bandwidths, calibration defaults) from a TOML file via
knadh/koanf, and provides k/M/G-suffixed human-friendly frequency and
buffer-size parsing.
*/
package config
