// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package lms7core is the top-level package of the lms7core module. It is
documentation-only. See the rap package for the register access port, the
chipctl package for chip control, the calib package for RF filter
calibration, the fifo package for the sample FIFO, the wire package for
the streaming wire format, the stream package for real-time sample
streaming, the config package for device profile configuration, and the
logx package for the shared logging glue.
*/
package lms7core
