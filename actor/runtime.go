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
	"fmt"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/sidereal-io/sidereal/client"
	gerrors "github.com/sidereal-io/sidereal/errors"
	"github.com/sidereal-io/sidereal/internal/syncmap"
	"github.com/sidereal-io/sidereal/log"
	"github.com/sidereal-io/sidereal/scheduler"
)

// DefaultSidecarAddress is the sidecar HTTP endpoint used when no state
// client is supplied.
const DefaultSidecarAddress = "http://127.0.0.1:3500"

// registration holds what Register captured for one actor type.
type registration struct {
	factory Factory
	config  *Config
}

// Runtime is the host-side entry point of the actor subsystem. It keeps the
// catalog of registered actor types, routes inbound sidecar dispatches
// (method calls, timer and reminder fires, activations and deactivations) to
// the per-type managers, and renders the configuration document the sidecar
// reads at startup.
//
// A Runtime is safe for concurrent use. Types must be registered before
// Start; dispatch operations fail with errors.ErrRuntimeStopped until Start
// and after Stop.
type Runtime struct {
	mu sync.Mutex

	registrations *syncmap.SyncMap[string, *registration]
	managers      *syncmap.SyncMap[string, *Manager]
	entities      mapset.Set[string]

	defaults    *Config
	stateClient client.StateClient
	timers      *scheduler.TimerScheduler
	logger      log.Logger
	started     *atomic.Bool
}

// RuntimeOption configures a Runtime at construction.
type RuntimeOption func(*Runtime)

// WithStateClient overrides the sidecar client used for state, reminders and
// outbound invocations. Tests substitute an in-memory implementation here.
func WithStateClient(stateClient client.StateClient) RuntimeOption {
	return func(r *Runtime) {
		r.stateClient = stateClient
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger log.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithDefaultConfig sets the runtime-wide defaults applied to actor types
// registered without their own settings.
func WithDefaultConfig(opts ...ConfigOption) RuntimeOption {
	return func(r *Runtime) {
		r.defaults = NewConfig(opts...)
	}
}

// NewRuntime creates a Runtime. Without options it talks to the sidecar at
// DefaultSidecarAddress and logs through log.DefaultLogger.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		registrations: syncmap.New[string, *registration](),
		managers:      syncmap.New[string, *Manager](),
		entities:      mapset.NewSet[string](),
		defaults:      NewConfig(),
		logger:        log.DefaultLogger,
		started:       atomic.NewBool(false),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.stateClient == nil {
		r.stateClient = client.NewHTTP(DefaultSidecarAddress, client.WithLogger(r.logger))
	}
	r.timers = scheduler.New(r.logger)
	return r
}

// Register adds an actor type to the runtime catalog. Each type registers
// exactly once; a second registration fails with
// errors.ErrDuplicateActorType and leaves the first binding untouched.
// Types may be registered before or after Start.
func (r *Runtime) Register(actorType string, factory Factory, opts ...ConfigOption) error {
	if actorType == "" {
		return fmt.Errorf("actor type name is required")
	}
	if factory == nil {
		return fmt.Errorf("actor type=(%s) needs a factory", actorType)
	}

	config := r.defaults.clone()
	for _, opt := range opts {
		opt(config)
	}

	reg := &registration{factory: factory, config: config}
	if _, loaded := r.registrations.GetOrSet(actorType, reg); loaded {
		return fmt.Errorf("actor type=(%s) %w", actorType, gerrors.ErrDuplicateActorType)
	}

	r.entities.Add(actorType)
	r.logger.Infof("registered actor type=(%s)", actorType)
	return nil
}

// Start brings the runtime online: the timer scheduler starts and dispatch
// operations are accepted. Starting an already started runtime is a no-op.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started.CompareAndSwap(false, true) {
		return nil
	}

	if err := r.timers.Start(ctx); err != nil {
		r.started.Store(false)
		return err
	}
	r.managers.Range(func(_ string, manager *Manager) {
		manager.startIdleScan()
	})
	r.logger.Info("actor runtime started")
	return nil
}

// Stop drains and deactivates every active instance of every type, then
// shuts the timer scheduler down. Per-type drain failures are combined and
// returned; the runtime stops regardless.
func (r *Runtime) Stop(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.started.CompareAndSwap(true, false) {
		return nil
	}

	var combined error
	r.managers.Range(func(actorType string, manager *Manager) {
		manager.stopIdleScan()
		if err := manager.DeactivateAll(ctx); err != nil {
			combined = multierr.Append(combined, fmt.Errorf("actor type=(%s): %w", actorType, err))
		}
	})

	r.timers.Stop(ctx)
	r.logger.Info("actor runtime stopped")
	return combined
}

// Running reports whether the runtime accepts dispatches.
func (r *Runtime) Running() bool {
	return r.started.Load()
}

// Activate explicitly activates the given actor. Types registered with
// WithRequireExplicitActivation must be activated through this before they
// can be invoked.
func (r *Runtime) Activate(ctx context.Context, actorType, actorID string) error {
	manager, err := r.managerFor(actorType)
	if err != nil {
		return err
	}
	return manager.Activate(ctx, actorID)
}

// Deactivate drains and deactivates the given actor. The sidecar calls this
// when it rebalances or garbage-collects placements.
func (r *Runtime) Deactivate(ctx context.Context, actorType, actorID string) error {
	manager, err := r.managerFor(actorType)
	if err != nil {
		return err
	}
	return manager.Deactivate(ctx, actorID)
}

// Invoke dispatches one inbound method call to the given actor and returns
// the method's response bytes.
func (r *Runtime) Invoke(ctx context.Context, actorType, actorID, method string, payload []byte) ([]byte, error) {
	manager, err := r.managerFor(actorType)
	if err != nil {
		return nil, err
	}
	return manager.InvokeMethod(ctx, actorID, method, payload)
}

// FireTimer dispatches one inbound timer fire to the given actor.
func (r *Runtime) FireTimer(ctx context.Context, actorType, actorID, name string) error {
	manager, err := r.managerFor(actorType)
	if err != nil {
		return err
	}
	return manager.FireTimer(ctx, actorID, name)
}

// FireReminder dispatches one inbound reminder fire to the given actor,
// reactivating it first when necessary.
func (r *Runtime) FireReminder(ctx context.Context, actorType, actorID, name string, payload []byte) error {
	manager, err := r.managerFor(actorType)
	if err != nil {
		return err
	}
	return manager.FireReminder(ctx, actorID, name, payload)
}

// RegisteredTypes returns the sorted names of the registered actor types.
func (r *Runtime) RegisteredTypes() []string {
	return mapset.Sorted(r.entities)
}

// Config renders the configuration document the sidecar reads at startup:
// the registered types, the runtime defaults, and one override block per
// type whose settings differ from the defaults.
func (r *Runtime) Config() *RuntimeConfig {
	document := &RuntimeConfig{
		Entities:                r.RegisteredTypes(),
		ActorIdleTimeout:        r.defaults.IdleTimeout().String(),
		ActorScanInterval:       r.defaults.ScanInterval().String(),
		DrainOngoingCallTimeout: r.defaults.DrainOngoingCallTimeout().String(),
		DrainRebalancedActors:   r.defaults.DrainRebalancedActors(),
	}

	for _, actorType := range document.Entities {
		reg, ok := r.registrations.Get(actorType)
		if !ok || reg.config.equal(r.defaults) {
			continue
		}
		document.EntitiesConfig = append(document.EntitiesConfig, EntityConfig{
			Entities:                []string{actorType},
			ActorIdleTimeout:        reg.config.IdleTimeout().String(),
			ActorScanInterval:       reg.config.ScanInterval().String(),
			DrainOngoingCallTimeout: reg.config.DrainOngoingCallTimeout().String(),
			DrainRebalancedActors:   reg.config.DrainRebalancedActors(),
		})
	}
	return document
}

// managerFor returns the manager of the given type, creating it on first
// dispatch. Dispatch against a stopped runtime or an unregistered type
// fails.
func (r *Runtime) managerFor(actorType string) (*Manager, error) {
	if !r.started.Load() {
		return nil, gerrors.ErrRuntimeStopped
	}

	if manager, ok := r.managers.Get(actorType); ok {
		return manager, nil
	}

	reg, ok := r.registrations.Get(actorType)
	if !ok {
		return nil, fmt.Errorf("actor type=(%s) %w", actorType, gerrors.ErrUnknownActorType)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if manager, ok := r.managers.Get(actorType); ok {
		return manager, nil
	}

	manager := newManager(actorType, reg.factory, reg.config, r.stateClient, r.timers, r.logger)
	manager.startIdleScan()
	r.managers.Set(actorType, manager)
	return manager, nil
}

var (
	defaultRuntime     *Runtime
	defaultRuntimeOnce sync.Once
)

// Default returns the process-wide runtime, creating it with default
// options on first use.
func Default() *Runtime {
	defaultRuntimeOnce.Do(func() {
		defaultRuntime = NewRuntime()
	})
	return defaultRuntime
}
