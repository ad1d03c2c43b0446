// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/rap"
)

// runIQCal enables the RxTSP's DC offset correction loop by setting
// EN_DIR_DCOFF_RXTSP to 1, ignoring any write error. It does not run the
// AlignRxTSP/AlignRxRF/AlignQuadrature/RstRxIQGen steps or any
// IQ-imbalance correction of ILimeSDRStreaming.cpp's self-test. Gated
// behind Config.AutoIQCal (default off), invoked by updateThreadsLocked
// right after StartStreaming.
func runIQCal(port rap.Port, table *chipctl.ParamTable) {
	_ = table.ModifyBits(port, "EN_DIR_DCOFF_RXTSP", 1)
}
