// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package calib implements the Filter Calibrator: the RX-LPF and TX-LPF
analog filter tuning state machines, built directly from
lms7002m_filters.c's RxFilterSearch/TuneRxFilter/TuneRxFilterSetup and
TuneTxFilter/TuneTxFilterSetup.

FilterSearch is the shared binary/exponential-probe primitive both
tuning routines call repeatedly against different trim-code fields. Its
exponential phase has a documented quirk carried over deliberately: the
step size is doubled before each probe, so the loop can exit with a
step anywhere in [stepLimit, 2*stepLimit) rather than ever landing
exactly on stepLimit. Any rewrite that "fixes" this changes which trim
codes a calibration converges to and must not be made silently.
*/
package calib
