// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

/*
Package wire implements the FPGA data-packet codec shared by stream and
any future transport implementation: the fixed 16-byte header plus
payload framing, Packed-12 and I12-in-I16 sample encodings, and the
F32<->I16 sample conversion ILimeSDRStreaming.cpp's ReadStream/
WriteStream perform in place.

The F32<->I16 conversion is intentionally asymmetric, exactly matching
the original: reading divides by 2048.0 (the full 12-bit negative
range) while writing multiplies by 2047 (one less, to keep the
positive range inside the signed 12-bit sample range). This is not a bug to "fix" —
changing either constant changes the gain applied to every sample that
crosses the boundary.
*/
package wire
