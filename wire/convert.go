// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire

// I16ToF32 converts RX samples in place semantics: dst[i] =
// float32(src[i]) / 2048.0, matching ILimeSDRStreaming.cpp's
// ReadStream conversion exactly (divide by the full negative-side
// range, not 2047).
func I16ToF32(dst []float32, src []int16) {
	for i, v := range src {
		dst[i] = float32(v) / 2048.0
	}
}

// F32ToI16 converts TX samples: dst[i] = clamp(round(src[i]*2047),
// -2048, 2047), matching ILimeSDRStreaming.cpp's WriteStream
// conversion (multiply by 2047, one less than the read-side divisor,
// so a full-scale +1.0 sample does not overflow into the sign bit).
func F32ToI16(dst []int16, src []float32) {
	for i, v := range src {
		s := v * 2047.0
		if s > 2047 {
			s = 2047
		} else if s < -2048 {
			s = -2048
		}
		if s >= 0 {
			s += 0.5
		} else {
			s -= 0.5
		}
		dst[i] = int16(s)
	}
}
