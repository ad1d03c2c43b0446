// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/logx"
	"github.com/lms7x/lms7core/rap"
	"github.com/lms7x/lms7core/stream"
	"github.com/lms7x/lms7core/wire"
)

type fakeTransport struct{}

func (fakeTransport) SubmitRx(ctx context.Context, buf []byte) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(time.Millisecond):
		return len(buf), nil
	}
}

func (fakeTransport) SubmitTx(ctx context.Context, buf []byte) error {
	return nil
}

func TestStreamerSetupAndStartStopRx(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	s := stream.NewStreamer(port, chipctl.DefaultParamTable, fakeTransport{})

	ch, err := s.SetupStream(stream.Config{ChannelID: 0, LinkFormat: wire.LinkFormatI12InI16, BufferLength: 64 * stream.MaxSamplesPerPacketI12InI16})
	require.NoError(t, err)
	require.NoError(t, s.Start())

	assert.True(t, port.IsStreaming())
	require.NoError(t, s.Stop())
	assert.False(t, port.IsStreaming())

	s.CloseStream(ch)
}

func TestStreamerEnterSelfCalibrationReturnsBusyWithoutActiveStreaming(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	s := stream.NewStreamer(port, chipctl.DefaultParamTable, fakeTransport{})

	err := s.EnterSelfCalibration()
	assert.ErrorIs(t, err, stream.ErrBusy)
}

var errRxSubmit = errors.New("submit failed")

type failingRxTransport struct{}

func (failingRxTransport) SubmitRx(ctx context.Context, buf []byte) (int, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-time.After(time.Millisecond):
		return 0, errRxSubmit
	}
}

func (failingRxTransport) SubmitTx(ctx context.Context, buf []byte) error {
	return nil
}

func TestStreamerWithLoggerReportsSubmitFailures(t *testing.T) {
	var buf bytes.Buffer
	port := rap.NewLoopbackPort(nil, nil)
	s := stream.NewStreamer(port, chipctl.DefaultParamTable, failingRxTransport{}, stream.WithLogger(logx.New(&buf, "stream", logx.LevelInfo)))

	_, err := s.SetupStream(stream.Config{ChannelID: 0, LinkFormat: wire.LinkFormatI12InI16, BufferLength: 64 * stream.MaxSamplesPerPacketI12InI16})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Contains(t, buf.String(), "rx submit failed")
}

func TestStreamerEnterExitSelfCalibrationWhileRxActive(t *testing.T) {
	port := rap.NewLoopbackPort(nil, nil)
	s := stream.NewStreamer(port, chipctl.DefaultParamTable, fakeTransport{})

	_, err := s.SetupStream(stream.Config{ChannelID: 0, LinkFormat: wire.LinkFormatI12InI16, BufferLength: 64 * stream.MaxSamplesPerPacketI12InI16})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	err = s.EnterSelfCalibration()
	assert.NoError(t, err)
	s.ExitSelfCalibration()
}
