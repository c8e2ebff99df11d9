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
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sidereal-io/sidereal/client"
	gerrors "github.com/sidereal-io/sidereal/errors"
	"github.com/sidereal-io/sidereal/internal/syncmap"
	"github.com/sidereal-io/sidereal/internal/ticker"
	"github.com/sidereal-io/sidereal/log"
	"github.com/sidereal-io/sidereal/scheduler"
)

// Manager owns the pool of activated instances of one actor type. It handles
// activation, deactivation, method invocation, timer and reminder firing, and
// state commits for that type.
//
// Operations for different actor ids proceed fully in parallel; operations
// for the same id are serialized by the turn scheduler. The instance table
// itself is guarded by short internal locks, separate from the long-held
// per-id turn slots, so instance creation and removal never block unrelated
// turns.
type Manager struct {
	actorType string
	factory   Factory
	config    *Config

	instances *syncmap.SyncMap[string, *instance]
	turns     *turnScheduler

	stateClient client.StateClient
	timers      *scheduler.TimerScheduler
	logger      log.Logger

	scanning   *atomic.Bool
	scanTicker *ticker.Ticker
	stopSignal chan struct{}
}

func newManager(actorType string, factory Factory, config *Config, stateClient client.StateClient, timers *scheduler.TimerScheduler, logger log.Logger) *Manager {
	return &Manager{
		actorType:   actorType,
		factory:     factory,
		config:      config,
		instances:   syncmap.New[string, *instance](),
		turns:       newTurnScheduler(),
		stateClient: stateClient,
		timers:      timers,
		logger:      logger,
		scanning:    atomic.NewBool(false),
		stopSignal:  make(chan struct{}),
	}
}

// Activate creates and initializes the instance for the given actor id.
// It fails with errors.ErrActorAlreadyActive when an instance already exists:
// the sidecar's call discipline never double-activates, so a duplicate
// activation is a caller bug, not a case to absorb.
func (x *Manager) Activate(ctx context.Context, actorID string) error {
	_, err := x.activate(ctx, actorID)
	return err
}

// Deactivate drains and removes the instance of the given actor id.
//
// A running turn is never interrupted: deactivation waits for it up to the
// configured drain timeout and reports a DrainTimeoutError past that, leaving
// the instance active. The OnDeactivate hook is best-effort; a hook failure
// is logged and deactivation completes regardless, so resources are always
// freed.
func (x *Manager) Deactivate(ctx context.Context, actorID string) error {
	inst, ok := x.instances.Get(actorID)
	if !ok {
		return fmt.Errorf("actor=(%s/%s) %w", x.actorType, actorID, gerrors.ErrActorNotActive)
	}

	// only one caller wins the transition to deactivating; concurrent or
	// repeated deactivations observe the actor as gone
	if !inst.state.CompareAndSwap(instanceActive, instanceDeactivating) {
		return fmt.Errorf("actor=(%s/%s) %w", x.actorType, actorID, gerrors.ErrActorNotActive)
	}

	drainTimeout := x.config.DrainOngoingCallTimeout()
	drainCtx, cancel := context.WithTimeout(ctx, drainTimeout)
	defer cancel()

	if err := x.turns.Acquire(drainCtx, actorID); err != nil {
		// the in-flight turn outlived the drain bound: report the failure
		// and leave the actor running rather than preempting it
		inst.state.Store(instanceActive)
		return gerrors.NewDrainTimeoutError(drainTimeout, actorID)
	}
	defer x.turns.Release(actorID)

	hookCtx := newContext(ctx, turnDeactivate, "", nil, inst, x)
	if err := x.runHook(func() error { return inst.behavior.OnDeactivate(hookCtx) }); err != nil {
		inst.tracker.rollback()
		x.logger.Errorf("actor=(%s/%s) deactivation hook failed: %v", x.actorType, actorID, err)
	} else if err := x.flush(ctx, inst); err != nil {
		x.logger.Errorf("actor=(%s/%s) failed to commit deactivation state: %v", x.actorType, actorID, err)
	}

	// transient timers die with the instance
	inst.timers.Range(func(name string, _ TimerDefinition) {
		x.timers.Cancel(timerKey(x.actorType, actorID, name))
	})

	x.instances.Delete(actorID)
	inst.state.Store(instanceRemoved)
	x.logger.Debugf("actor=(%s/%s) deactivated", x.actorType, actorID)
	return nil
}

// DeactivateAll drains and deactivates every instance of the type. Each
// instance either deactivates fully or is reported in the combined error;
// instances that were concurrently deactivated by someone else do not count
// as failures.
func (x *Manager) DeactivateAll(ctx context.Context) error {
	var mu sync.Mutex
	var combined error

	eg := new(errgroup.Group)
	eg.SetLimit(runtime.NumCPU())

	for _, actorID := range x.instances.Keys() {
		actorID := actorID
		eg.Go(func() error {
			if err := x.Deactivate(ctx, actorID); err != nil && !errors.Is(err, gerrors.ErrActorNotActive) {
				mu.Lock()
				combined = multierr.Append(combined, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = eg.Wait()
	return combined
}

// InvokeMethod runs one method turn on the given actor id. When the id has no
// live instance it is activated first, unless the type was registered with
// WithRequireExplicitActivation. The method's state changes are committed as
// one batch on success and discarded on failure.
func (x *Manager) InvokeMethod(ctx context.Context, actorID, method string, payload []byte) ([]byte, error) {
	inst, err := x.instanceFor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return x.executeTurn(ctx, inst, turnMethod, method, payload)
}

// RegisterTimer registers a transient timer on the given actor id. The timer
// fires as a regular turn; its state changes commit exactly like a method
// call's. Registering an existing name replaces the previous schedule.
func (x *Manager) RegisterTimer(ctx context.Context, actorID string, definition TimerDefinition) error {
	if definition.Name == "" || definition.Method == "" {
		return fmt.Errorf("timer registration for actor=(%s/%s) needs a name and a method", x.actorType, actorID)
	}

	inst, err := x.instanceFor(ctx, actorID)
	if err != nil {
		return err
	}

	inst.timers.Set(definition.Name, definition)
	return x.timers.Schedule(
		timerKey(x.actorType, actorID, definition.Name),
		definition.DueTime,
		definition.Period,
		func(fireCtx context.Context) {
			x.fireScheduledTimer(fireCtx, inst, definition)
		},
	)
}

// UnregisterTimer removes a transient timer from the given actor id.
// Unregistering an unknown name is a no-op.
func (x *Manager) UnregisterTimer(_ context.Context, actorID, name string) error {
	inst, ok := x.instances.Get(actorID)
	if !ok {
		return fmt.Errorf("actor=(%s/%s) %w", x.actorType, actorID, gerrors.ErrActorNotActive)
	}
	inst.timers.Delete(name)
	x.timers.Cancel(timerKey(x.actorType, actorID, name))
	return nil
}

// RegisterReminder delegates durable storage of the reminder definition to
// the sidecar's store. The sidecar fires it back through FireReminder, also
// after the actor has been deactivated and reactivated in between.
func (x *Manager) RegisterReminder(ctx context.Context, actorID string, reminder client.Reminder) error {
	if reminder.Name == "" || reminder.Method == "" {
		return fmt.Errorf("reminder registration for actor=(%s/%s) needs a name and a method", x.actorType, actorID)
	}
	return x.stateClient.RegisterReminder(ctx, x.actorType, actorID, reminder)
}

// UnregisterReminder removes a durable reminder from the sidecar's store.
func (x *Manager) UnregisterReminder(ctx context.Context, actorID, name string) error {
	return x.stateClient.UnregisterReminder(ctx, x.actorType, actorID, name)
}

// FireTimer runs the turn of a timer fire arriving through the inbound
// dispatch path. A firing error is returned to the caller but does not
// unregister the timer.
func (x *Manager) FireTimer(ctx context.Context, actorID, name string) error {
	inst, ok := x.instances.Get(actorID)
	if !ok {
		return fmt.Errorf("actor=(%s/%s) %w", x.actorType, actorID, gerrors.ErrActorNotActive)
	}

	definition, ok := inst.timers.Get(name)
	if !ok {
		return gerrors.NewErrTimerNotFound(name)
	}

	_, err := x.executeTurn(ctx, inst, turnTimer, definition.Method, definition.Data)
	return err
}

// FireReminder runs the turn of a reminder fire. The payload is the envelope
// stored at registration, carrying the bound method and the user data; an
// inactive instance is reactivated first since reminders survive
// deactivation. A firing error does not unregister the reminder: persistent
// retry is the sidecar's responsibility.
func (x *Manager) FireReminder(ctx context.Context, actorID, name string, payload []byte) error {
	method, data, err := client.DecodeReminderPayload(payload)
	if err != nil {
		return fmt.Errorf("reminder=(%s) %w: %w", name, gerrors.ErrInvalidReminderPayload, err)
	}

	inst, err := x.instanceFor(ctx, actorID)
	if err != nil {
		return err
	}

	_, err = x.executeTurn(ctx, inst, turnReminder, method, data)
	return err
}

// activate constructs the behavior, runs the activation hook inside the
// instance's first turn and publishes the instance. Any hook failure discards
// the instance; it is never left half-initialized.
func (x *Manager) activate(ctx context.Context, actorID string) (*instance, error) {
	inst := newInstance(x.actorType, actorID, x.factory(actorID))
	if _, loaded := x.instances.GetOrSet(actorID, inst); loaded {
		return nil, fmt.Errorf("actor=(%s/%s) %w", x.actorType, actorID, gerrors.ErrActorAlreadyActive)
	}

	if err := x.turns.Acquire(ctx, actorID); err != nil {
		x.instances.Delete(actorID)
		return nil, err
	}
	defer x.turns.Release(actorID)

	retrier := retry.NewRetrier(x.config.activationMaxRetries, activationRetryDelay, activationRetryDelay)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		// each attempt gets its own deadline and starts from clean state
		attemptCtx, cancel := context.WithTimeout(ctx, x.config.activationTimeout)
		defer cancel()

		hookCtx := newContext(attemptCtx, turnActivate, "", nil, inst, x)
		if err := x.runHook(func() error { return inst.behavior.OnActivate(hookCtx) }); err != nil {
			inst.tracker.rollback()
			return err
		}
		return nil
	})
	if err != nil {
		x.instances.Delete(actorID)
		return nil, gerrors.NewErrActivationFailure(err)
	}

	if err := x.flush(ctx, inst); err != nil {
		x.instances.Delete(actorID)
		return nil, err
	}

	inst.state.Store(instanceActive)
	inst.markActivity(time.Now())
	x.logger.Debugf("actor=(%s/%s) activated", x.actorType, actorID)
	return inst, nil
}

// instanceFor returns the live instance of the given actor id, lazily
// activating it when the type allows that.
func (x *Manager) instanceFor(ctx context.Context, actorID string) (*instance, error) {
	if inst, ok := x.instances.Get(actorID); ok {
		return inst, nil
	}

	if x.config.RequireExplicitActivation() {
		return nil, fmt.Errorf("actor=(%s/%s) %w", x.actorType, actorID, gerrors.ErrActorNotActive)
	}

	inst, err := x.activate(ctx, actorID)
	if err != nil {
		// lost the activation race to a concurrent caller
		if errors.Is(err, gerrors.ErrActorAlreadyActive) {
			if existing, ok := x.instances.Get(actorID); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return inst, nil
}

// executeTurn runs one unit of work under the instance's turn slot: acquire
// the slot FIFO-fair, run the behavior, then commit or discard its state
// changes. The slot is released on every path so queued callers proceed.
func (x *Manager) executeTurn(ctx context.Context, inst *instance, kind turnKind, method string, payload []byte) ([]byte, error) {
	if err := x.turns.Acquire(ctx, inst.actorID); err != nil {
		return nil, err
	}
	defer x.turns.Release(inst.actorID)

	if !inst.isActive() {
		return nil, fmt.Errorf("actor=(%s/%s) %w", x.actorType, inst.actorID, gerrors.ErrActorNotActive)
	}

	turnCtx := newContext(ctx, kind, method, payload, inst, x)
	response, err := x.receive(turnCtx)
	if err != nil {
		inst.tracker.rollback()
		inst.markActivity(time.Now())
		return nil, err
	}

	if err := x.flush(ctx, inst); err != nil {
		inst.markActivity(time.Now())
		return nil, err
	}

	inst.markActivity(time.Now())
	return response, nil
}

// receive invokes the behavior's Receive, converting panics into errors so a
// panicking turn still releases its slot and discards its state changes.
func (x *Manager) receive(turnCtx *Context) (response []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			if recovered, ok := r.(error); ok {
				err = gerrors.NewPanicError(recovered)
				return
			}
			err = gerrors.NewPanicError(fmt.Errorf("%v", r))
		}
	}()
	return turnCtx.inst.behavior.Receive(turnCtx)
}

// runHook invokes a lifecycle hook with the same panic safety as receive.
func (x *Manager) runHook(hook func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if recovered, ok := r.(error); ok {
				err = gerrors.NewPanicError(recovered)
				return
			}
			err = gerrors.NewPanicError(fmt.Errorf("%v", r))
		}
	}()
	return hook()
}

// flush commits the turn's pending state changes as one all-or-nothing
// batch. On a store failure the changes are discarded so they can never be
// partially re-applied by a later turn.
func (x *Manager) flush(ctx context.Context, inst *instance) error {
	changes := inst.tracker.changes()
	if len(changes) == 0 {
		return nil
	}

	if err := x.stateClient.SaveState(ctx, x.actorType, inst.actorID, changes); err != nil {
		inst.tracker.rollback()
		return err
	}

	inst.tracker.commit()
	return nil
}

// fireScheduledTimer executes a locally scheduled timer fire. Errors are
// logged, not propagated: there is no caller to report to.
func (x *Manager) fireScheduledTimer(ctx context.Context, inst *instance, definition TimerDefinition) {
	if _, err := x.executeTurn(ctx, inst, turnTimer, definition.Method, definition.Data); err != nil {
		x.logger.Errorf("actor=(%s/%s) timer=(%s) fire failed: %v", x.actorType, inst.actorID, definition.Name, err)
	}
	if definition.Period <= 0 {
		inst.timers.Delete(definition.Name)
	}
}

// startIdleScan launches the background loop deactivating instances idle
// past the configured timeout.
func (x *Manager) startIdleScan() {
	if !x.scanning.CompareAndSwap(false, true) {
		return
	}

	x.stopSignal = make(chan struct{})
	x.scanTicker = ticker.New(x.config.ScanInterval())
	x.scanTicker.Start()

	go func(stop chan struct{}) {
		for {
			select {
			case <-x.scanTicker.Ticks:
				x.sweepIdle()
			case <-stop:
				return
			}
		}
	}(x.stopSignal)
}

// stopIdleScan stops the background idle loop.
func (x *Manager) stopIdleScan() {
	if x.scanning.CompareAndSwap(true, false) {
		x.scanTicker.Stop()
		close(x.stopSignal)
	}
}

// sweepIdle deactivates every instance idle past the configured timeout.
// Drain failures are logged and retried on the next sweep.
func (x *Manager) sweepIdle() {
	now := time.Now()
	x.instances.Range(func(actorID string, inst *instance) {
		if !inst.isActive() || inst.idleTime(now) < x.config.IdleTimeout() {
			return
		}
		if err := x.Deactivate(context.Background(), actorID); err != nil && !errors.Is(err, gerrors.ErrActorNotActive) {
			x.logger.Warnf("actor=(%s/%s) idle deactivation failed: %v", x.actorType, actorID, err)
		}
	})
}
