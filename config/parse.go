// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHz parses a frequency value given as a command-line or config
// argument. For convenience, valid arguments can have a suffix of k,
// K, m, M, g, or G indicating the value is in kHz, MHz, or GHz
// respectively (e.g. "1.42G"). Any text before such a suffix must
// parse as a float. The return value is the parsed frequency in Hz.
func ParseHz(arg string) (float64, error) {
	var mult float64 = 1
	arg = strings.ToLower(strings.TrimSpace(arg))
	switch {
	case arg == "":
		// do nothing
	case strings.HasSuffix(arg, "k"):
		mult = 1e3
		arg = strings.TrimSuffix(arg, "k")
	case strings.HasSuffix(arg, "m"):
		mult = 1e6
		arg = strings.TrimSuffix(arg, "m")
	case strings.HasSuffix(arg, "g"):
		mult = 1e9
		arg = strings.TrimSuffix(arg, "g")
	}
	hz, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		return 0, err
	}
	return hz * mult, nil
}

// ParseTuneFrequency wraps ParseHz and guarantees the result is a
// valid tune frequency for the chip's RF front end (100kHz-3.8GHz).
func ParseTuneFrequency(arg string) (float64, error) {
	hz, err := ParseHz(arg)
	if err != nil {
		return 0, err
	}
	if hz < 100e3 || hz > 3.8e9 {
		return 0, fmt.Errorf("invalid tune frequency; got %f Hz, want 100kHz<=Freq<=3.8GHz", hz)
	}
	return hz, nil
}

// ParseBandwidth wraps ParseHz and guarantees the result is a valid
// analog filter bandwidth (1.4MHz-130MHz, the chip's LPF tuning
// range).
func ParseBandwidth(arg string) (float64, error) {
	hz, err := ParseHz(arg)
	if err != nil {
		return 0, err
	}
	if hz < 1.4e6 || hz > 130e6 {
		return 0, fmt.Errorf("invalid filter bandwidth; got %f Hz, want 1.4MHz<=BW<=130MHz", hz)
	}
	return hz, nil
}

// ParseSize parses a byte-size value with an optional k/K/m/M/g/G
// suffix (binary-decimal: 1k = 1000 bytes, matching the suffix
// convention ParseHz uses), returning the size in bytes.
func ParseSize(arg string) (int64, error) {
	var mult int64 = 1
	arg = strings.ToLower(strings.TrimSpace(arg))
	switch {
	case arg == "":
		// do nothing
	case strings.HasSuffix(arg, "k"):
		mult = 1e3
		arg = strings.TrimSuffix(arg, "k")
	case strings.HasSuffix(arg, "m"):
		mult = 1e6
		arg = strings.TrimSuffix(arg, "m")
	case strings.HasSuffix(arg, "g"):
		mult = 1e9
		arg = strings.TrimSuffix(arg, "g")
	}
	size, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, err
	}
	return size * mult, nil
}
