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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestTurnScheduler(t *testing.T) {
	ctx := context.TODO()

	t.Run("free slot is granted immediately", func(t *testing.T) {
		turns := newTurnScheduler()
		require.NoError(t, turns.Acquire(ctx, "a"))
		turns.Release("a")
	})

	t.Run("different ids never contend", func(t *testing.T) {
		turns := newTurnScheduler()
		require.NoError(t, turns.Acquire(ctx, "a"))
		require.NoError(t, turns.Acquire(ctx, "b"))
		turns.Release("a")
		turns.Release("b")
	})

	t.Run("slot holder excludes other acquirers", func(t *testing.T) {
		turns := newTurnScheduler()
		require.NoError(t, turns.Acquire(ctx, "a"))

		blocked, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()
		err := turns.Acquire(blocked, "a")
		require.ErrorIs(t, err, context.DeadlineExceeded)

		turns.Release("a")
		require.NoError(t, turns.Acquire(ctx, "a"))
		turns.Release("a")
	})

	t.Run("waiters are granted in arrival order", func(t *testing.T) {
		turns := newTurnScheduler()
		require.NoError(t, turns.Acquire(ctx, "a"))

		var mu sync.Mutex
		var order []int
		var wg sync.WaitGroup
		ready := make(chan struct{}, 3)

		for i := 1; i <= 3; i++ {
			wg.Add(1)
			go func(rank int) {
				defer wg.Done()
				ready <- struct{}{}
				require.NoError(t, turns.Acquire(ctx, "a"))
				mu.Lock()
				order = append(order, rank)
				mu.Unlock()
				turns.Release("a")
			}(i)
			// let each waiter enqueue before the next arrives
			<-ready
			require.Eventually(t, func() bool {
				return turns.Pending("a") == i
			}, time.Second, time.Millisecond)
		}

		turns.Release("a")
		wg.Wait()
		assert.Equal(t, []int{1, 2, 3}, order)
	})

	t.Run("cancelled waiter gives up its place", func(t *testing.T) {
		turns := newTurnScheduler()
		require.NoError(t, turns.Acquire(ctx, "a"))

		cancelable, cancel := context.WithCancel(ctx)
		errs := make(chan error, 1)
		go func() {
			errs <- turns.Acquire(cancelable, "a")
		}()

		require.Eventually(t, func() bool {
			return turns.Pending("a") == 1
		}, time.Second, time.Millisecond)

		cancel()
		require.ErrorIs(t, <-errs, context.Canceled)
		assert.Zero(t, turns.Pending("a"))

		// the slot still hands over cleanly
		turns.Release("a")
		require.NoError(t, turns.Acquire(ctx, "a"))
		turns.Release("a")
	})

	t.Run("no two holders overlap", func(t *testing.T) {
		turns := newTurnScheduler()
		holders := atomic.NewInt32(0)
		overlaps := atomic.NewInt32(0)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				require.NoError(t, turns.Acquire(ctx, "a"))
				if holders.Inc() > 1 {
					overlaps.Inc()
				}
				time.Sleep(time.Millisecond)
				holders.Dec()
				turns.Release("a")
			}()
		}

		wg.Wait()
		assert.Zero(t, overlaps.Load())
	})
}
