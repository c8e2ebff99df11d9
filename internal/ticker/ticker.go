/*
 * MIT License
 *
 * Copyright (c) 2024-2026 The Sidereal Authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package ticker provides the periodic pulse behind background sweeps. It
// wraps time.Ticker with lossy delivery: a receiver still busy with the
// previous sweep skips pulses instead of queueing them, so a slow sweep can
// never fall behind its own schedule.
package ticker

import (
	"time"

	"go.uber.org/atomic"
)

// Ticker delivers pulses on Ticks at a fixed interval. Pulses with no ready
// receiver are dropped.
type Ticker struct {
	Ticks chan time.Time

	interval time.Duration
	running  *atomic.Bool
	done     chan struct{}
}

// New creates a Ticker pulsing every interval. The interval must be
// positive.
func New(interval time.Duration) *Ticker {
	if interval <= 0 {
		panic("ticker interval must be positive")
	}
	return &Ticker{
		Ticks:    make(chan time.Time),
		interval: interval,
		running:  atomic.NewBool(false),
		done:     make(chan struct{}),
	}
}

// Start begins pulsing. Starting a running ticker is a no-op.
func (t *Ticker) Start() {
	if !t.running.CompareAndSwap(false, true) {
		return
	}
	go t.run()
}

// Stop ends pulsing. No pulse is delivered after Stop returns until Start
// is called again.
func (t *Ticker) Stop() {
	if t.running.CompareAndSwap(true, false) {
		t.done <- struct{}{}
	}
}

// Ticking reports whether the ticker is pulsing.
func (t *Ticker) Ticking() bool {
	return t.running.Load()
}

func (t *Ticker) run() {
	source := time.NewTicker(t.interval)
	defer source.Stop()

	for {
		select {
		case at := <-source.C:
			select {
			case t.Ticks <- at:
			default:
				// receiver busy, skip this pulse
			}
		case <-t.done:
			return
		}
	}
}
