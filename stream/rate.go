// Copyright 2026 The lms7core Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package stream

import (
	"sync"
	"time"
)

// rateWindow is the sliding window RateCounter averages over, matching
// Streamer::rxDataRate_Bps/txDataRate_Bps's 1-second reporting period.
const rateWindow = time.Second

// rateBucket is one sub-interval of the sliding window.
type rateBucket struct {
	start time.Time
	bytes uint64
}

// RateCounter accumulates byte counts over a 1-second sliding window
// and reports bytes-per-second, expressed as small pure functions over
// the minimal state needed to track elapsed wall-clock time. It is
// independently testable without a transport.
type RateCounter struct {
	mu      sync.Mutex
	buckets []rateBucket
	now     func() time.Time
}

// NewRateCounter creates a RateCounter using time.Now as its clock.
func NewRateCounter() *RateCounter {
	return &RateCounter{now: time.Now}
}

// newRateCounterWithClock is used by tests to control elapsed time
// deterministically.
func newRateCounterWithClock(now func() time.Time) *RateCounter {
	return &RateCounter{now: now}
}

// Add records n bytes transferred at the current time.
func (c *RateCounter) Add(n uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.buckets) > 0 && now.Sub(c.buckets[len(c.buckets)-1].start) < 10*time.Millisecond {
		c.buckets[len(c.buckets)-1].bytes += n
	} else {
		c.buckets = append(c.buckets, rateBucket{start: now, bytes: n})
	}
	c.evictOld(now)
}

// BytesPerSecond returns the average byte rate over the trailing
// 1-second window.
func (c *RateCounter) BytesPerSecond() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	c.evictOld(now)
	if len(c.buckets) == 0 {
		return 0
	}
	var total uint64
	for _, b := range c.buckets {
		total += b.bytes
	}
	elapsed := now.Sub(c.buckets[0].start)
	if elapsed <= 0 {
		return float64(total)
	}
	return float64(total) / elapsed.Seconds()
}

func (c *RateCounter) evictOld(now time.Time) {
	cutoff := now.Add(-rateWindow)
	i := 0
	for i < len(c.buckets) && c.buckets[i].start.Before(cutoff) {
		i++
	}
	if i > 0 {
		c.buckets = c.buckets[i:]
	}
}
