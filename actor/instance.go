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
	"time"

	"go.uber.org/atomic"

	"github.com/sidereal-io/sidereal/internal/syncmap"
)

// instance lifecycle states. The only legal transitions are
// unactivated → active → deactivating → removed; deactivating is never
// skipped while a turn is in flight.
const (
	instanceUnactivated int32 = iota
	instanceActive
	instanceDeactivating
	instanceRemoved
)

// instance is one logical actor: its identity, the user behavior object and
// the bookkeeping the manager needs around it. An instance is owned
// exclusively by its manager and must never run two turns concurrently; the
// turnScheduler enforces that invariant.
type instance struct {
	actorType string
	actorID   string
	behavior  Actor
	tracker   *stateTracker

	state      *atomic.Int32
	lastActive *atomic.Time

	// transient timers registered on this instance, by name
	timers *syncmap.SyncMap[string, TimerDefinition]
}

func newInstance(actorType, actorID string, behavior Actor) *instance {
	inst := &instance{
		actorType:  actorType,
		actorID:    actorID,
		behavior:   behavior,
		tracker:    newStateTracker(),
		state:      atomic.NewInt32(instanceUnactivated),
		lastActive: atomic.NewTime(time.Now()),
		timers:     syncmap.New[string, TimerDefinition](),
	}
	return inst
}

// isActive returns true when the instance accepts turns.
func (inst *instance) isActive() bool {
	return inst.state.Load() == instanceActive
}

// markActivity records that a turn just finished on the instance.
func (inst *instance) markActivity(at time.Time) {
	inst.lastActive.Store(at)
}

// idleTime returns how long the instance has been without a turn.
func (inst *instance) idleTime(now time.Time) time.Duration {
	return now.Sub(inst.lastActive.Load())
}
