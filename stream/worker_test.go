// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/fifo"
	"github.com/lms7x/lms7core/rap"
	"github.com/lms7x/lms7core/stream"
	"github.com/lms7x/lms7core/wire"
)

// onceRxTransport serves one crafted buffer on its first SubmitRx call,
// then parks until cancelled, so a test can observe the RX worker
// decode and push exactly one packet.
type onceRxTransport struct {
	packet []byte
	served atomic.Bool
}

func (t *onceRxTransport) SubmitRx(ctx context.Context, buf []byte) (int, error) {
	if !t.served.Swap(true) {
		return copy(buf, t.packet), nil
	}
	<-ctx.Done()
	return 0, ctx.Err()
}

func (t *onceRxTransport) SubmitTx(ctx context.Context, buf []byte) error {
	return nil
}

func TestRxWorkerLoopDecodesAndPushesSamples(t *testing.T) {
	samples := []int16{100, -200, 300, -400} // two I/Q frames
	payload := make([]byte, len(samples)/2*3)
	n, err := wire.EncodePacked12(payload, samples)
	require.NoError(t, err)

	buf := make([]byte, wire.HeaderSize+n)
	_, err = wire.Encode(buf, wire.DataPacket{
		Timestamp: 5,
		Format:    wire.LinkFormatPacked12,
		Payload:   payload[:n],
	})
	require.NoError(t, err)

	port := rap.NewLoopbackPort(nil, nil)
	transport := &onceRxTransport{packet: buf}
	s := stream.NewStreamer(port, chipctl.DefaultParamTable, transport)

	ch, err := s.SetupStream(stream.Config{
		ChannelID:    0,
		LinkFormat:   wire.LinkFormatPacked12,
		BufferLength: 8192 * stream.MaxSamplesPerPacketPacked12,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	dst := make([]int16, len(samples))
	md, got, err := ch.Read(dst, time.Now().Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, len(samples), got)
	assert.Equal(t, uint64(5), md.Timestamp)
	assert.Equal(t, samples, dst)
}

// recordingTxTransport captures every buffer handed to SubmitTx so a
// test can inspect what the TX worker actually transmitted.
type recordingTxTransport struct {
	got chan []byte
}

func (t *recordingTxTransport) SubmitRx(ctx context.Context, buf []byte) (int, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func (t *recordingTxTransport) SubmitTx(ctx context.Context, buf []byte) error {
	cp := append([]byte(nil), buf...)
	select {
	case t.got <- cp:
	default:
	}
	return nil
}

func TestTxWorkerLoopDropsLateSyncTimestampPackets(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	transport := &recordingTxTransport{got: make(chan []byte, 4)}
	s := stream.NewStreamer(port, chipctl.DefaultParamTable, transport)

	ch, err := s.SetupStream(stream.Config{
		IsTx:         true,
		ChannelID:    0,
		LinkFormat:   wire.LinkFormatPacked12,
		BufferLength: 8192 * stream.MaxSamplesPerPacketPacked12,
	})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	// Late: SyncTimestamp at/before the current (zero) hardware
	// timestamp must be dropped and never reach the transport.
	require.NoError(t, ch.Write([]int16{1, -1}, stream.Metadata{
		Timestamp: 0,
		Flags:     fifo.FlagSyncTimestamp,
	}, time.Time{}))
	// On time: far enough ahead of the hardware timestamp to transmit.
	require.NoError(t, ch.Write([]int16{2, -2}, stream.Metadata{
		Timestamp: 1_000_000,
		Flags:     fifo.FlagSyncTimestamp,
	}, time.Time{}))

	select {
	case got := <-transport.got:
		pkt, err := wire.Decode(got)
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000), pkt.Timestamp, "the late packet must not have been transmitted")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the on-time packet to transmit")
	}

	info := ch.GetInfo()
	assert.Equal(t, uint64(1), info.DroppedPackets)
}
