// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package logx provides the logging glue used by calib and stream: a
small Logger interface compatible
with the standard library and logrus, plus a constructor that wires it
to a charmbracelet/log.Logger so callers get leveled, colorized output
without depending on charmbracelet/log directly.
*/
package logx
