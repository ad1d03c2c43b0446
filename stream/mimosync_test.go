// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lms7x/lms7core/stream"
)

func TestMIMOAlignerCallsBackOnceBothChannelsArrive(t *testing.T) {
	var got [][]int16
	aligner := stream.NewMIMOAligner(4, func(xia, xqa, xib, xqb []int16, reset bool) {
		got = append(got, append([]int16{}, xia...))
	}, nil)

	aligner.FeedA([]int16{1, 2, 3, 4}, []int16{10, 20, 30, 40}, false)
	aligner.FeedB([]int16{5, 6, 7, 8}, []int16{50, 60, 70, 80}, false)

	require.Len(t, got, 1)
	assert.Equal(t, []int16{1, 2, 3, 4}, got[0])
}

func TestMIMOAlignerRaisesOutOfSyncOnLengthMismatch(t *testing.T) {
	var events []stream.MIMOEvent
	aligner := stream.NewMIMOAligner(4, func(xia, xqa, xib, xqb []int16, reset bool) {}, func(evt stream.MIMOEvent, msg string) {
		events = append(events, evt)
	})

	aligner.FeedA([]int16{1, 2, 3, 4}, []int16{10, 20, 30, 40}, false)
	aligner.FeedB([]int16{5, 6, 7, 8}, []int16{50, 60, 70, 80}, false)
	require.Contains(t, events, stream.MIMOEventSync)

	aligner.FeedA([]int16{1, 2, 3, 4}, []int16{10, 20, 30, 40}, false)
	aligner.FeedB([]int16{5, 6, 7}, []int16{50, 60, 70}, false)
	assert.Contains(t, events, stream.MIMOEventOutOfSync)
}

func TestMIMOAlignerResetClearsState(t *testing.T) {
	var resets int
	aligner := stream.NewMIMOAligner(4, func(xia, xqa, xib, xqb []int16, reset bool) {
		if reset {
			resets++
		}
	}, nil)

	aligner.FeedA([]int16{1, 2, 3, 4}, []int16{1, 2, 3, 4}, true)
	aligner.FeedB([]int16{1, 2, 3, 4}, []int16{1, 2, 3, 4}, false)
	assert.Equal(t, 1, resets)
}
