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

package actor

import (
	"context"
	"sync"
)

// turnScheduler enforces turn-based concurrency: at most one turn runs per
// actor id at any time, and concurrent callers for the same id are granted
// their turn strictly in arrival order. Actors are single-threaded by
// contract; this is the single point enforcing it, regardless of how many
// concurrent sidecar calls arrive.
//
// Waiters suspend on a per-caller channel rather than spinning. Lanes for
// different ids are fully independent.
type turnScheduler struct {
	mu    sync.Mutex
	lanes map[string]*turnLane
}

// turnLane is the turn state of one actor id: whether a turn is in progress
// and the FIFO queue of suspended callers.
type turnLane struct {
	busy    bool
	waiters []chan struct{}
}

func newTurnScheduler() *turnScheduler {
	return &turnScheduler{
		lanes: make(map[string]*turnLane),
	}
}

// Acquire blocks until no other turn is in progress for the given actor id,
// or until the context is done. On success the caller owns the id's turn slot
// and must call Release exactly once.
func (s *turnScheduler) Acquire(ctx context.Context, actorID string) error {
	s.mu.Lock()
	lane, ok := s.lanes[actorID]
	if !ok {
		lane = &turnLane{}
		s.lanes[actorID] = lane
	}

	if !lane.busy {
		lane.busy = true
		s.mu.Unlock()
		return nil
	}

	ticket := make(chan struct{})
	lane.waiters = append(lane.waiters, ticket)
	s.mu.Unlock()

	select {
	case <-ticket:
		return nil
	case <-ctx.Done():
		s.mu.Lock()
		for i, waiter := range lane.waiters {
			if waiter == ticket {
				lane.waiters = append(lane.waiters[:i], lane.waiters[i+1:]...)
				s.mu.Unlock()
				return ctx.Err()
			}
		}
		s.mu.Unlock()
		// the ticket was granted concurrently with cancellation:
		// hand the slot to the next waiter before giving up
		s.Release(actorID)
		return ctx.Err()
	}
}

// Release frees the turn slot of the given actor id and wakes the next queued
// caller, if any.
func (s *turnScheduler) Release(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lane, ok := s.lanes[actorID]
	if !ok {
		return
	}

	if len(lane.waiters) > 0 {
		next := lane.waiters[0]
		lane.waiters = lane.waiters[1:]
		close(next)
		return
	}

	lane.busy = false
	delete(s.lanes, actorID)
}

// Pending returns the number of callers queued behind the current turn of the
// given actor id.
func (s *turnScheduler) Pending(actorID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lane, ok := s.lanes[actorID]; ok {
		return len(lane.waiters)
	}
	return 0
}
