// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package wire_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lms7x/lms7core/wire"
)

func TestEncodeDecodeHeaderRoundTrip(t *testing.T) {
	buf := make([]byte, wire.HeaderSize+4)
	p := wire.DataPacket{Timestamp: 123456789, Format: wire.LinkFormatI12InI16, Flags: wire.FlagSyncTimestamp, Payload: []byte{1, 2, 3, 4}}
	n, err := wire.Encode(buf, p)
	require.NoError(t, err)
	assert.Equal(t, wire.HeaderSize+4, n)

	got, err := wire.Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, p.Timestamp, got.Timestamp)
	assert.Equal(t, p.Format, got.Format)
	assert.Equal(t, p.Flags, got.Flags)
	assert.Equal(t, p.Payload, got.Payload)
}

func TestDecodeShortBufferErrors(t *testing.T) {
	_, err := wire.Decode(make([]byte, 4))
	assert.ErrorIs(t, err, wire.ErrShortBuffer)
}

func TestEncodeRejectsOversizedPayload(t *testing.T) {
	buf := make([]byte, wire.HeaderSize+wire.MaxPayloadSize+1)
	_, err := wire.Encode(buf, wire.DataPacket{Payload: make([]byte, wire.MaxPayloadSize+1)})
	assert.ErrorIs(t, err, wire.ErrPayloadTooLarge)
}

func TestPacked12RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		n := rapid.IntRange(0, 32).Draw(r, "pairs") * 2
		samples := make([]int16, n)
		for i := range samples {
			samples[i] = rapid.Int16Range(-2048, 2047).Draw(r, "sample")
		}

		buf := make([]byte, n/2*3)
		_, err := wire.EncodePacked12(buf, samples)
		require.NoError(t, err)

		dst := make([]int16, n)
		_, err = wire.DecodePacked12(dst, buf)
		require.NoError(t, err)

		for i, s := range samples {
			assert.Equal(t, to12Bit(s), dst[i])
		}
	})
}

func to12Bit(v int16) int16 {
	masked := uint16(v) & 0x0FFF
	if masked&0x0800 != 0 {
		return int16(masked) - 4096
	}
	return int16(masked)
}

func TestF32ToI16AndBackRoundTripsNearZero(t *testing.T) {
	src := []float32{0, 0.25, -0.25, 1.0, -1.0}
	i16 := make([]int16, len(src))
	wire.F32ToI16(i16, src)

	f32 := make([]float32, len(src))
	wire.I16ToF32(f32, i16)

	for i := range src {
		assert.InDelta(t, src[i], f32[i], 0.002)
	}
}

func TestF32ToI16Clamps(t *testing.T) {
	src := []float32{10, -10}
	dst := make([]int16, 2)
	wire.F32ToI16(dst, src)
	assert.Equal(t, int16(2047), dst[0])
	assert.Equal(t, int16(-2048), dst[1])
}
