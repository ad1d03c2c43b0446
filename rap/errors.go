// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rap

import "errors"

// Sentinel errors returned by Port implementations. Use errors.Is to
// test for these; concrete implementations may wrap them with
// additional context via fmt.Errorf("...: %w", ...).
var (
	// ErrTransport indicates the underlying bus or device failed in a
	// way that is not expected to be transient (e.g. the device is
	// gone). It is surfaced to the caller and never retried internally.
	ErrTransport = errors.New("rap: transport error")

	// ErrTimeout indicates a register operation did not complete
	// within its bounded deadline.
	ErrTimeout = errors.New("rap: timeout")
)
