// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package chipctl

import "github.com/lms7x/lms7core/rap"

// Section identifies one of the chip's register banks. Only SectionRBB,
// SectionTBB, SectionLML and SectionCGEN have a default table that
// SetSectionDefaults writes in one batch; for the other sections it
// writes nothing and returns nil. The tables mirror the
// RxFilterSetup/TxFilterSetup preamble tables in lms7002m_filters.c.
type Section int

const (
	SectionRFE Section = iota
	SectionRBB
	SectionTRF
	SectionTBB
	SectionSXR
	SectionSXT
	SectionCGEN
	SectionLML
	SectionTxTSP
	SectionRxTSP
)

// sectionDefaults holds one RegisterBatch per Section, declared as
// immutable literal tables at package init time rather than built on
// demand.
var sectionDefaults = map[Section]rap.RegisterBatch{
	SectionRBB: rap.NewRegisterBatch(
		[]uint16{0x0115, 0x0117, 0x0119},
		[]uint16{0x8010, 0x0000, 0x0000},
		[]uint16{0xFF7F, 0xFFFF, 0xFFFF},
		nil, nil,
	),
	SectionTBB: rap.NewRegisterBatch(
		[]uint16{0x0108, 0x010A},
		[]uint16{0x0000, 0x0000},
		[]uint16{0xFFFF, 0xFFFF},
		nil, nil,
	),
	SectionLML: rap.NewRegisterBatch(
		nil, nil, nil,
		[]uint16{0x0023, 0x0024, 0x002A, 0x002E},
		[]uint16{0x0000, 0x0000, 0x0000, 0x0000},
	),
	SectionCGEN: rap.NewRegisterBatch(
		[]uint16{0x0086},
		[]uint16{0x0000},
		[]uint16{0x3FFF},
		nil, nil,
	),
}

// SetSectionDefaults writes sect's documented power-on defaults to
// port in one batch.
func SetSectionDefaults(port rap.Port, sect Section) error {
	b, ok := sectionDefaults[sect]
	if !ok {
		return nil
	}
	return port.WriteMaskedBatch(b)
}
