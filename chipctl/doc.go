// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package chipctl implements Chip Control: a named bit-field parameter
table over the Register Access Port (rap), section-default register
loads, PLL (SX) and CGEN frequency setting, NCO programming, settled
RSSI reads, and reference-clock autodetection.

The parameter table (addr, msb, lsb per name) is loaded once at init
time from an embedded YAML asset (see assets/params.yaml) rather than
hand-written as Go literals, keeping the bit-field map separate from
the code that walks it.

Chip state snapshotting is exposed as an explicit ChipStateGuard,
captured on construction and restored on Release unless Commit is
called first.
*/
package chipctl
