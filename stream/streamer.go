// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lms7x/lms7core/chipctl"
	"github.com/lms7x/lms7core/fifo"
	"github.com/lms7x/lms7core/logx"
	"github.com/lms7x/lms7core/rap"
	"github.com/lms7x/lms7core/wire"
)

// selfCalibrationWait bounds EnterSelfCalibration's drain wait,
// matching ILimeSDRStreaming.cpp's EnterSelfCalibration "waits up to
// 250ms on safeToConfigInterface".
const selfCalibrationWait = 250 * time.Millisecond

// Transport submits and awaits framed sample buffers for one chip's
// streaming datapath. A concrete implementation (USB bulk, PCIe) is
// out of scope for this module; Streamer only depends on this narrow
// contract, matching rap.RawTransport's split between policy and
// transport.
type Transport interface {
	SubmitRx(ctx context.Context, buf []byte) (int, error)
	SubmitTx(ctx context.Context, buf []byte) error
}

// Streamer owns one chip's RX and TX Channels and the worker goroutines
// that move samples between them and a Transport, matching Streamer.h's
// Streamer type (SetupStream/CloseStream/UpdateThreads/
// GetHardwareTimestamp/SetHardwareTimestamp/GetRelativeTimestamp).
type Streamer struct {
	port      rap.Port
	table     *chipctl.ParamTable
	transport Transport
	log       logx.Logger

	mu      sync.Mutex
	rxChans map[int]*Channel
	txChans map[int]*Channel

	// rxLastTimestamp is the FPGA sample counter position of the most
	// recently observed RX packet; timestampOffset lets
	// SetHardwareTimestamp rebase GetHardwareTimestamp's reported value
	// without touching the FPGA counter while a stream is running.
	rxLastTimestamp     atomic.Uint64
	rxExpectedTimestamp atomic.Uint64
	timestampOffset     atomic.Int64

	// generateData, when set by EnterSelfCalibration, tells both worker
	// loops to stop issuing real transport I/O and park instead, so no
	// RAP write from the calibration caller can interleave with an
	// in-flight bulk transfer.
	generateData   atomic.Bool
	txLastLateTime atomic.Uint64
	sawEndOfBurst  atomic.Bool

	rxCancel context.CancelFunc
	txCancel context.CancelFunc
	rxDone   chan struct{}
	txDone   chan struct{}

	calMu        sync.Mutex
	calCond      *sync.Cond
	safeToConfig bool
	rxRunning    bool
	txRunning    bool
}

// NewStreamer creates a Streamer over port/table, moving samples
// through transport.
func NewStreamer(port rap.Port, table *chipctl.ParamTable, transport Transport, opts ...Option) *Streamer {
	if table == nil {
		table = chipctl.DefaultParamTable
	}
	s := &Streamer{
		port:      port,
		table:     table,
		transport: transport,
		log:       logx.Discard,
		rxChans:   make(map[int]*Channel),
		txChans:   make(map[int]*Channel),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.calCond = sync.NewCond(&s.calMu)
	s.safeToConfig = true
	return s
}

// Option configures a Streamer at construction time.
type Option func(*Streamer)

// WithLogger routes Streamer's diagnostic output (submit errors,
// self-calibration timeouts) through lg instead of discarding it.
func WithLogger(lg logx.Logger) Option {
	return func(s *Streamer) { s.log = lg }
}

// SetupStream registers a new channel for cfg.ChannelID/cfg.IsTx,
// matching ILimeSDRStreaming::SetupStream.
func (s *Streamer) SetupStream(cfg Config) (*Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := NewChannel(cfg)
	if cfg.IsTx {
		s.txChans[cfg.ChannelID] = ch
	} else {
		s.rxChans[cfg.ChannelID] = ch
	}
	return ch, nil
}

// CloseStream unregisters a channel, matching
// ILimeSDRStreaming::CloseStream. It does not stop any running worker;
// callers must Stop first.
func (s *Streamer) CloseStream(ch *Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch.Config.IsTx {
		delete(s.txChans, ch.Config.ChannelID)
	} else {
		delete(s.rxChans, ch.Config.ChannelID)
	}
}

// GetHardwareTimestamp returns the FPGA's free-running sample counter
// position, rebased by any offset set while a stream was running.
func (s *Streamer) GetHardwareTimestamp() uint64 {
	return uint64(int64(s.rxLastTimestamp.Load()) + s.timestampOffset.Load())
}

// SetHardwareTimestamp rebases the value GetHardwareTimestamp reports
// to value. With no stream running there is no live rxLastTimestamp to
// rebase against, so it instead commands the FPGA counter itself to
// reset and zeroes both rxLastTimestamp and the offset. With a stream
// running it only adjusts timestampOffset, leaving the RX worker's view
// of rxLastTimestamp untouched.
func (s *Streamer) SetHardwareTimestamp(value uint64) error {
	s.mu.Lock()
	running := s.rxRunning || s.txRunning
	s.mu.Unlock()

	if !running {
		if err := s.port.ResetTimestamp(); err != nil {
			return err
		}
		s.timestampOffset.Store(0)
		s.rxLastTimestamp.Store(0)
		s.rxExpectedTimestamp.Store(0)
		return nil
	}
	s.timestampOffset.Store(int64(value) - int64(s.rxLastTimestamp.Load()))
	return nil
}

// LastLateTimestamp returns the timestamp of the most recent TX packet
// dropped for arriving at or before the current hardware timestamp.
func (s *Streamer) LastLateTimestamp() uint64 {
	return s.txLastLateTime.Load()
}

// SawEndOfBurst reports whether the TX worker has transmitted an
// end-of-burst packet since the last call, clearing the flag.
func (s *Streamer) SawEndOfBurst() bool {
	return s.sawEndOfBurst.Swap(false)
}

// Start begins streaming: it runs update_threads to program the FPGA
// link format and launches the worker goroutines needed for the
// currently registered channels. Matches ILimeSDRStreaming::
// ControlStream(true).
func (s *Streamer) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateThreadsLocked()
}

// Stop halts streaming: it stops any running workers and disarms the
// FPGA datapath. Matches ControlStream(false).
func (s *Streamer) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopWorkersLocked()
	return s.port.StopStreaming()
}

// updateThreadsLocked implements Streamer::UpdateThreads: stop workers
// no longer needed, on an all-stopped->any-running transition reset
// timestamps and stream buffers, program the FPGA link format/LML/MIMO
// registers from the registered channels' configs, then start the
// workers the registration now calls for. s.mu must be held.
func (s *Streamer) updateThreadsLocked() error {
	wantRx := len(s.rxChans) > 0
	wantTx := len(s.txChans) > 0
	wasRunning := s.rxRunning || s.txRunning

	s.stopWorkersLocked()

	if !wasRunning && (wantRx || wantTx) {
		if err := s.port.StopStreaming(); err != nil {
			return err
		}
		if err := s.port.ResetTimestamp(); err != nil {
			return err
		}
		s.rxLastTimestamp.Store(0)
		s.rxExpectedTimestamp.Store(0)
		if err := s.port.ResetStreamBuffers(); err != nil {
			return err
		}
	}

	linkFormat := s.pickLinkFormat()
	if err := s.programLinkFormat(linkFormat); err != nil {
		return err
	}

	if err := s.port.StartStreaming(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if wantRx {
		s.rxCancel = cancel
		s.rxDone = make(chan struct{})
		s.rxRunning = true
		go s.rxWorkerLoop(ctx, s.rxDone)
	}
	if wantTx {
		if !wantRx {
			s.txCancel = cancel
		} else {
			txCtx, txCancel := context.WithCancel(context.Background())
			ctx = txCtx
			s.txCancel = txCancel
		}
		s.txDone = make(chan struct{})
		s.txRunning = true
		go s.txWorkerLoop(ctx, s.txDone)
	}

	if !wantRx && !wantTx {
		cancel()
	}

	if linkFormatRequestsIQCal(s) {
		runIQCal(s.port, s.table)
	}

	return nil
}

func linkFormatRequestsIQCal(s *Streamer) bool {
	for _, ch := range s.rxChans {
		if ch.Config.AutoIQCal {
			return true
		}
	}
	return false
}

// pickLinkFormat prefers I12-in-I16 if any registered channel requests
// it, matching UpdateThreads' "prefer STREAM_12_BIT_IN_16 if any
// channel requests it" rule.
func (s *Streamer) pickLinkFormat() (fmt int) {
	for _, ch := range s.rxChans {
		if ch.Config.LinkFormat == 1 {
			return 1
		}
	}
	for _, ch := range s.txChans {
		if ch.Config.LinkFormat == 1 {
			return 1
		}
	}
	return 0
}

// programLinkFormat writes the chip-side LML1_SISODDR, LML1_MODE,
// LML2_MODE and LML2_FIDM fields, the PD_RX_AFE1/PD_TX_AFE2 power-down
// bits and the CHENB_RXTSP/CHENB_TXTSP enables for linkFormat. It takes
// the place of UpdateThreads' register-0x0008 (mode|smpl_width) and
// register-0x0007 (channel enables) programming and does not write
// those two registers.
func (s *Streamer) programLinkFormat(linkFormat int) error {
	// linkFormat selects LML1_SISODDR/LML1_TRXIQPULSE (sample width and
	// pulse mode); the mode/width word itself is composed from those
	// two fields by a concrete transport, which owns the wire-level
	// packing this package's chipctl/wire layers feed.
	if err := s.table.ModifyBits(s.port, "LML1_SISODDR", uint16(linkFormat)); err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "LML1_MODE", 0); err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "LML2_MODE", 0); err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "LML2_FIDM", 0); err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "PD_RX_AFE1", 0); err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "PD_TX_AFE2", 0); err != nil {
		return err
	}

	enableRx, enableTx := uint16(0), uint16(0)
	if len(s.rxChans) > 0 {
		enableRx = 1
	}
	if len(s.txChans) > 0 {
		enableTx = 1
	}
	if err := s.table.ModifyBits(s.port, "CHENB_RXTSP", enableRx); err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "CHENB_TXTSP", enableTx); err != nil {
		return err
	}

	if _, ok := s.rxChans[1]; ok {
		if err := s.enableMIMOChannelB(); err != nil {
			return err
		}
	}
	return nil
}

// enableMIMOChannelB ping-pongs MAC to program channel B's enable bits
// alongside channel A's, matching UpdateThreads' "enable MIMO
// companion bits via MAC ping-pong if channel 1 enabled".
func (s *Streamer) enableMIMOChannelB() error {
	orig, err := s.table.GetBits(s.port, "MAC")
	if err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "MAC", 2); err != nil {
		return err
	}
	if err := s.table.ModifyBits(s.port, "CHENB_RXTSP", 1); err != nil {
		return err
	}
	return s.table.ModifyBits(s.port, "MAC", orig)
}

func (s *Streamer) stopWorkersLocked() {
	if s.rxRunning {
		if s.rxCancel != nil {
			s.rxCancel()
		}
		if s.rxDone != nil {
			<-s.rxDone
		}
		s.rxRunning = false
	}
	if s.txRunning {
		if s.txCancel != nil {
			s.txCancel()
		}
		if s.txDone != nil {
			<-s.txDone
		}
		s.txRunning = false
	}
}

// sortedChannels returns m's values ordered by ChannelID, giving the
// worker loops a stable per-packet channel ordering to interleave and
// de-interleave against.
func sortedChannels(m map[int]*Channel) []*Channel {
	out := make([]*Channel, 0, len(m))
	for _, ch := range m {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Config.ChannelID < out[j].Config.ChannelID })
	return out
}

func (s *Streamer) rxWorkerLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	buf := make([]byte, wire.HeaderSize+wire.MaxPayloadSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		chans := sortedChannels(s.rxChans)
		s.mu.Unlock()

		if s.generateData.Load() {
			ts := s.rxLastTimestamp.Load()
			for _, ch := range chans {
				zero := make([]int16, maxSamplesFor(ch.Config.LinkFormat)*2)
				_ = ch.Write(zero, Metadata{Timestamp: ts}, time.Time{})
			}
			s.markSafeToConfig()
			time.Sleep(time.Millisecond)
			continue
		}

		n, err := s.transport.SubmitRx(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Printf("rx submit failed: %v", err)
			continue
		}
		if n < wire.HeaderSize || len(chans) == 0 {
			continue
		}

		pkt, err := wire.Decode(buf[:n])
		if err != nil {
			s.log.Printf("rx decode failed: %v", err)
			continue
		}

		samples, err := decodePayload(pkt.Format, pkt.Payload)
		if err != nil {
			s.log.Printf("rx payload decode failed: %v", err)
			continue
		}
		perChan := deinterleaveChannels(samples, len(chans))

		if expected := s.rxExpectedTimestamp.Load(); expected != 0 && pkt.Timestamp > expected {
			gap := pkt.Timestamp - expected
			for _, ch := range chans {
				ch.recordPacketsLost(gap)
			}
		}
		frameCount := uint64(0)
		if len(perChan) > 0 {
			frameCount = uint64(len(perChan[0]) / 2)
		}
		s.rxExpectedTimestamp.Store(pkt.Timestamp + frameCount)
		for {
			prev := s.rxLastTimestamp.Load()
			if pkt.Timestamp <= prev || s.rxLastTimestamp.CompareAndSwap(prev, pkt.Timestamp) {
				break
			}
		}

		md := Metadata{Timestamp: pkt.Timestamp, Flags: fifo.PacketFlags(pkt.Flags)}
		for i, ch := range chans {
			if err := ch.Write(perChan[i], md, time.Time{}); err != nil {
				ch.recordPacketsLost(1)
			}
		}
		s.markSafeToConfig()
	}
}

func (s *Streamer) txWorkerLoop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.generateData.Load() {
			s.markSafeToConfig()
			time.Sleep(time.Millisecond)
			continue
		}

		s.mu.Lock()
		chans := sortedChannels(s.txChans)
		s.mu.Unlock()

		if len(chans) == 0 {
			time.Sleep(time.Millisecond)
			continue
		}

		format := chans[0].Config.LinkFormat
		perChanCap := maxSamplesFor(format) / len(chans)
		if perChanCap == 0 {
			perChanCap = 1
		}

		perChan := make([][]int16, len(chans))
		var timestamp uint64
		var flags fifo.PacketFlags
		var anyRead bool
		for i, ch := range chans {
			sampleBuf := make([]int16, perChanCap*2)
			md, n, err := ch.Read(sampleBuf, time.Now().Add(time.Millisecond))
			if err != nil {
				perChan[i] = sampleBuf
				continue
			}
			if md.Flags&fifo.FlagSyncTimestamp != 0 {
				now := s.GetHardwareTimestamp()
				if md.Timestamp <= now {
					ch.recordPacketsLost(1)
					s.txLastLateTime.Store(md.Timestamp)
					perChan[i] = sampleBuf
					continue
				}
			}
			perChan[i] = sampleBuf[:n]
			timestamp = md.Timestamp
			flags |= md.Flags
			anyRead = true
		}
		if !anyRead {
			s.markSafeToConfig()
			continue
		}

		flat := interleaveChannels(perChan)
		payload, err := encodePayload(format, flat)
		if err != nil {
			s.log.Printf("tx payload encode failed: %v", err)
			continue
		}

		var hdrFlags uint8
		if flags&fifo.FlagSyncTimestamp != 0 {
			hdrFlags |= wire.FlagSyncTimestamp
		}
		if flags&fifo.FlagEndOfBurst != 0 {
			hdrFlags |= wire.FlagEndOfBurst
			s.sawEndOfBurst.Store(true)
		}

		buf := make([]byte, wire.HeaderSize+len(payload))
		if _, err := wire.Encode(buf, wire.DataPacket{
			Timestamp: timestamp,
			Format:    format,
			Flags:     hdrFlags,
			Payload:   payload,
		}); err != nil {
			s.log.Printf("tx encode failed: %v", err)
			continue
		}

		if err := s.transport.SubmitTx(ctx, buf); err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Printf("tx submit failed: %v", err)
		}
		s.markSafeToConfig()
	}
}

// EnterSelfCalibration signals running workers to drain to a safe
// reconfiguration point and waits up to selfCalibrationWait,
// matching ILimeSDRStreaming::EnterSelfCalibration. It returns
// ErrBusy immediately if neither direction is running (there is
// nothing to drain).
func (s *Streamer) EnterSelfCalibration() error {
	s.mu.Lock()
	running := s.rxRunning || s.txRunning
	s.mu.Unlock()
	if !running {
		return fmt.Errorf("%w: no active streaming to calibrate around", ErrBusy)
	}

	s.generateData.Store(true)

	s.calMu.Lock()
	defer s.calMu.Unlock()
	s.safeToConfig = false

	deadline := time.Now().Add(selfCalibrationWait)
	for !s.safeToConfig {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			s.log.Printf("self-calibration drain timed out after %s", selfCalibrationWait)
			return ErrSelfCalibrationTimeout
		}
		waitCh := make(chan struct{})
		timer := time.AfterFunc(remaining, func() {
			s.calMu.Lock()
			s.calCond.Broadcast()
			s.calMu.Unlock()
			close(waitCh)
		})
		s.calCond.Wait()
		timer.Stop()
		select {
		case <-waitCh:
		default:
		}
	}
	return nil
}

// ExitSelfCalibration signals workers that reconfiguration is
// complete and they may resume normal operation.
func (s *Streamer) ExitSelfCalibration() {
	s.generateData.Store(false)
	s.calMu.Lock()
	s.safeToConfig = true
	s.calCond.Broadcast()
	s.calMu.Unlock()
}

// markSafeToConfig is called by both worker loops at the end of every
// iteration, and specifically right after a generateData iteration
// parks instead of touching the transport, unblocking
// EnterSelfCalibration once both loops have stopped interleaving real
// transfers with RAP access.
func (s *Streamer) markSafeToConfig() {
	s.calMu.Lock()
	s.safeToConfig = true
	s.calCond.Broadcast()
	s.calMu.Unlock()
}
