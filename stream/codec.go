// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"encoding/binary"

	"github.com/lms7x/lms7core/wire"
)

// interleaveChannels merges each channel's I/Q-interleaved sample slice
// into a single flat buffer, one channel's (I,Q) pair per frame slot,
// generalizing helpers/duo/interleave.go's fixed two-channel
// [IA,QA,IB,QB] frame to N channels. Channels are truncated to the
// shortest one's frame count.
func interleaveChannels(chans [][]int16) []int16 {
	if len(chans) == 0 {
		return nil
	}
	frames := len(chans[0]) / 2
	for _, c := range chans[1:] {
		if f := len(c) / 2; f < frames {
			frames = f
		}
	}
	out := make([]int16, frames*2*len(chans))
	o := 0
	for i := 0; i < frames; i++ {
		for _, c := range chans {
			out[o] = c[i*2]
			out[o+1] = c[i*2+1]
			o += 2
		}
	}
	return out
}

// deinterleaveChannels is interleaveChannels' inverse: it splits a flat
// buffer of numChans interleaved (I,Q) frames back into one slice per
// channel.
func deinterleaveChannels(flat []int16, numChans int) [][]int16 {
	if numChans == 0 {
		return nil
	}
	frames := len(flat) / (2 * numChans)
	out := make([][]int16, numChans)
	for c := range out {
		out[c] = make([]int16, frames*2)
	}
	o := 0
	for i := 0; i < frames; i++ {
		for c := 0; c < numChans; c++ {
			out[c][i*2] = flat[o]
			out[c][i*2+1] = flat[o+1]
			o += 2
		}
	}
	return out
}

// encodePayload packs a flat interleaved sample buffer into wire bytes
// for format, bridging wire's sample-level codecs to the byte payload
// DataPacket.Encode expects.
func encodePayload(format wire.LinkFormat, samples []int16) ([]byte, error) {
	if format == wire.LinkFormatPacked12 {
		dst := make([]byte, len(samples)/2*3)
		n, err := wire.EncodePacked12(dst, samples)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil
	}

	masked := make([]int16, len(samples))
	wire.EncodeI12InI16(masked, samples)
	dst := make([]byte, len(masked)*2)
	for i, v := range masked {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(v))
	}
	return dst, nil
}

// decodePayload is encodePayload's inverse, recovering a flat
// interleaved sample buffer from a DataPacket's payload bytes.
func decodePayload(format wire.LinkFormat, payload []byte) ([]int16, error) {
	if format == wire.LinkFormatPacked12 {
		n := len(payload) / 3 * 2
		dst := make([]int16, n)
		if _, err := wire.DecodePacked12(dst, payload); err != nil {
			return nil, err
		}
		return dst, nil
	}

	n := len(payload) / 2
	raw := make([]int16, n)
	for i := 0; i < n; i++ {
		raw[i] = int16(binary.LittleEndian.Uint16(payload[i*2:]))
	}
	wire.EncodeI12InI16(raw, raw)
	return raw, nil
}
