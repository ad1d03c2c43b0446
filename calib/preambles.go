// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package calib

import "github.com/lms7x/lms7core/rap"

// RxFilterSetupPreamble is the masked/direct register batch
// TuneRxFilterSetup writes before an RX-LPF calibration run: it enables
// the TX-to-RX loopback path, configures both TSPs (tone generation on
// TX, AGC-mode RSSI on RX), and powers up CGEN/AFE/XBUF, matching
// lms7002m_filters.c's RxFilterSetupAddr/Data/Mask and
// RxFilterSetupWrOnlyAddr/Data tables.
var RxFilterSetupPreamble = rap.NewRegisterBatch(
	[]uint16{0x0085, 0x010D, 0x0113, 0x0114},
	[]uint16{0x0001, 0x0100, 0x0004, 0x0010},
	[]uint16{0x0007, 0x0188, 0x003C, 0x001F},
	[]uint16{0x0082, 0x0086, 0x0087, 0x0088, 0x0089, 0x008A, 0x008C, 0x0100, 0x0101, 0x010A, 0x010C},
	[]uint16{0x8003, 0x4901, 0x0400, 0x0780, 0x0020, 0x0514, 0x067B, 0x3409, 0x6001, 0x0088, 0x88C5},
)

// TxFilterSetupPreamble is the equivalent preamble for TX-LPF
// calibration, matching lms7002m_filters.c's TxFilterSetupAddr/Data/
// Mask tables.
var TxFilterSetupPreamble = rap.NewRegisterBatch(
	[]uint16{0x0105, 0x0106, 0x0108, 0x0109},
	[]uint16{0x0000, 0x0000, 0x0000, 0x0000},
	[]uint16{0x07FF, 0x07FF, 0x07FF, 0x07FF},
	[]uint16{0x0440},
	[]uint16{0x0020},
)

// Rx-LPF tunable IF range, halved, matching RxLPF_RF_LimitLow/High in
// lms7002m_filters.c (the routine tunes at IF = RF/2).
const (
	RxLPFLimitLow  = 1.4e6 / 2
	RxLPFLimitHigh = 130e6 / 2
)

// Tx-LPF tunable bandwidth bands, matching TxLPF_RF_Limit{Low,LowMid,
// MidHigh,High} in lms7002m_filters.c.
const (
	TxLPFLimitLow     = 5e6
	TxLPFLimitLowMid  = 40e6
	TxLPFLimitMidHigh = 50e6
	TxLPFLimitHigh    = 130e6
)
