// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rap

// MaskedWrite is one entry of a RegisterBatch's masked read-modify-write
// list: the bits selected by Mask in register Addr are replaced with the
// corresponding bits of Data, leaving the rest of the register untouched.
type MaskedWrite struct {
	Addr uint16
	Data uint16
	Mask uint16
}

// DirectWrite is one entry of a RegisterBatch's write-only list: Data is
// written to Addr unconditionally, with no preceding read.
type DirectWrite struct {
	Addr uint16
	Data uint16
}

// RegisterBatch is an ordered, immutable register program: a list of
// masked read-modify-writes followed by a list of write-only direct
// writes. Calibration preambles and chip-section defaults are declared
// as RegisterBatch literals at package init time rather than built on
// every call.
//
// A RegisterBatch must not be mutated after it is built; Port.WriteMaskedBatch
// implementations may assume this and share a single RegisterBatch value
// across concurrent callers.
type RegisterBatch struct {
	Masked []MaskedWrite
	Direct []DirectWrite
}

// NewRegisterBatch builds a RegisterBatch from parallel (addr, data,
// mask) triples for the masked list and parallel (addr, data) pairs for
// the direct list. It panics if the triple slices are not the same
// length, or the pair slices are not the same length — this is a
// programmer error in a startup-time data table, not a runtime
// condition a caller should need to handle.
func NewRegisterBatch(maskedAddr, maskedData, maskedMask []uint16, directAddr, directData []uint16) RegisterBatch {
	if len(maskedAddr) != len(maskedData) || len(maskedAddr) != len(maskedMask) {
		panic("rap: mismatched masked register batch table lengths")
	}
	if len(directAddr) != len(directData) {
		panic("rap: mismatched direct register batch table lengths")
	}
	b := RegisterBatch{
		Masked: make([]MaskedWrite, len(maskedAddr)),
		Direct: make([]DirectWrite, len(directAddr)),
	}
	for i := range maskedAddr {
		b.Masked[i] = MaskedWrite{Addr: maskedAddr[i], Data: maskedData[i], Mask: maskedMask[i]}
	}
	for i := range directAddr {
		b.Direct[i] = DirectWrite{Addr: directAddr[i], Data: directData[i]}
	}
	return b
}
