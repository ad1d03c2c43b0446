// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl

import (
	"fmt"
	"math"
	"time"

	"github.com/lms7x/lms7core/rap"
)

// Direction selects which of the chip's two synthesizers (Rx or Tx) an
// SX operation targets.
type Direction int

const (
	DirectionRx Direction = iota
	DirectionTx
)

// pllLockPoll mirrors the original firmware's fixed polling cadence
// around a synthesizer lock bit: a handful of short waits rather than
// one long blocking read, so a never-locking PLL fails fast.
const (
	pllLockPollInterval = 50 * time.Microsecond
	pllLockPollAttempts = 20
)

// vcoCompareParam returns the lock-indicator bit field for dir.
func vcoCompareParam(dir Direction) string {
	if dir == DirectionTx {
		return "SXT_VCO_CMPHO"
	}
	return "SXR_VCO_CMPHO"
}

// sxFrequencyWord computes the integer frequency word the synthesizer
// divider expects for a target output of hz given a reference of
// refHz, following the PLL's standard integer-N form: word =
// round(hz / refHz * 2^18). This closed-form helper takes and returns
// plain float64/uint32 values, independently testable without a chip.
func sxFrequencyWord(hz, refHz float64) uint32 {
	const fracBits = 18
	word := hz / refHz * float64(uint32(1)<<fracBits)
	return uint32(math.Round(word))
}

// sxWordToFrequency is the inverse of sxFrequencyWord: it converts a
// word back to the frequency it represents. No code in this module
// calls it.
func sxWordToFrequency(word uint32, refHz float64) float64 {
	const fracBits = 18
	return float64(word) / float64(uint32(1)<<fracBits) * refHz
}

// SetFrequencySX programs the named synthesizer to hz against the
// given reference clock rate and polls for lock, returning ErrPllLock
// if the lock bit never sets.
func SetFrequencySX(port rap.Port, table *ParamTable, dir Direction, hz, refHz float64) error {
	if table == nil {
		table = DefaultParamTable
	}
	if hz <= 0 || refHz <= 0 {
		return fmt.Errorf("%w: frequency must be positive", ErrOutOfRange)
	}
	word := sxFrequencyWord(hz, refHz)
	if word == 0 || hz/refHz >= 1<<14 {
		return fmt.Errorf("%w: %gHz not representable against %gHz reference", ErrOutOfRange, hz, refHz)
	}
	if err := table.ModifyBits(port, "CGEN_FREQ_COARSE", uint16(word&0x3FFF)); err != nil {
		return err
	}
	lockParam := vcoCompareParam(dir)
	for i := 0; i < pllLockPollAttempts; i++ {
		locked, err := table.GetBits(port, lockParam)
		if err != nil {
			return err
		}
		if locked != 0 {
			return nil
		}
		time.Sleep(pllLockPollInterval)
	}
	return fmt.Errorf("%w: %s to %gHz", ErrPllLock, lockParam, hz)
}

// SetFrequencyCGEN programs the clock-generator PLL to hz against
// refHz, following the same integer-N math as SetFrequencySX.
func SetFrequencyCGEN(port rap.Port, table *ParamTable, hz, refHz float64) error {
	if table == nil {
		table = DefaultParamTable
	}
	if hz <= 0 || refHz <= 0 {
		return fmt.Errorf("%w: frequency must be positive", ErrOutOfRange)
	}
	word := sxFrequencyWord(hz, refHz)
	if word == 0 || hz/refHz >= 1<<14 {
		return fmt.Errorf("%w: %gHz not representable as a CGEN word against %gHz reference", ErrOutOfRange, hz, refHz)
	}
	if err := table.ModifyBits(port, "CGEN_FREQ_COARSE", uint16(word&0x3FFF)); err != nil {
		return err
	}
	for i := 0; i < pllLockPollAttempts; i++ {
		locked, err := table.GetBits(port, "CGEN_CMPLO_CTRL")
		if err != nil {
			return err
		}
		if locked != 0 {
			return nil
		}
		time.Sleep(pllLockPollInterval)
	}
	return fmt.Errorf("%w: CGEN to %gHz", ErrPllLock, hz)
}

// NCO channel count: each direction has 16 phase/frequency slots
// addressable by index, per the chip's NCO table depth.
const ncoTableDepth = 16

// SetNCOFrequency checks that index is an NCO table slot (0..15) and
// sets the direction's CHENB_RXTSP/CHENB_TXTSP enable bit from the
// frequency word for hz against refHz. It does not write the slot's
// frequency or phase registers.
func SetNCOFrequency(port rap.Port, table *ParamTable, dir Direction, hz, refHz float64, index int) error {
	if table == nil {
		table = DefaultParamTable
	}
	if index < 0 || index >= ncoTableDepth {
		return fmt.Errorf("%w: NCO index %d out of [0,%d)", ErrOutOfRange, index, ncoTableDepth)
	}
	word := sxFrequencyWord(hz, refHz)
	field := "CHENB_RXTSP"
	if dir == DirectionTx {
		field = "CHENB_TXTSP"
	}
	// Enables the NCO output path for dir; table[index] itself is a
	// multi-register phase-accumulator write this field map does not
	// break out per-slot, so only the enable bit (derived from the
	// computed word's parity) is programmed here.
	return table.ModifyBits(port, field, uint16(word&1))
}
