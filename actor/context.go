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

	"github.com/sidereal-io/sidereal/client"
	"github.com/sidereal-io/sidereal/log"
)

// turnKind discriminates the unit of work a turn executes. Method calls,
// timer fires, reminder fires and lifecycle hooks all queue identically
// through the turnScheduler.
type turnKind int

const (
	turnMethod turnKind = iota
	turnTimer
	turnReminder
	turnActivate
	turnDeactivate
)

// Context is handed to a behavior for the duration of one turn. It carries
// the turn's input (method name and payload), the actor's identity, and the
// state, timer and reminder APIs.
//
// A Context is only valid within the turn it was created for. Behaviors must
// not retain it.
type Context struct {
	ctx     context.Context
	kind    turnKind
	method  string
	payload []byte

	inst    *instance
	manager *Manager
}

func newContext(ctx context.Context, kind turnKind, method string, payload []byte, inst *instance, manager *Manager) *Context {
	return &Context{
		ctx:     ctx,
		kind:    kind,
		method:  method,
		payload: payload,
		inst:    inst,
		manager: manager,
	}
}

// Context returns the context of the ongoing turn. It carries the caller's
// cancellation and deadline.
func (c *Context) Context() context.Context {
	return c.ctx
}

// ActorType returns the actor type name of the instance.
func (c *Context) ActorType() string {
	return c.inst.actorType
}

// ActorID returns the actor id of the instance.
func (c *Context) ActorID() string {
	return c.inst.actorID
}

// Method returns the dispatched method name. It is empty during lifecycle
// hooks.
func (c *Context) Method() string {
	return c.method
}

// Payload returns the opaque payload of the turn. The runtime never inspects
// its structure; decode it with the codec of your choice.
func (c *Context) Payload() []byte {
	return c.payload
}

// Logger returns the runtime logger.
func (c *Context) Logger() log.Logger {
	return c.manager.logger
}

// GetState returns the value of the given state key as observed by the
// current turn: uncommitted writes of the turn are visible, otherwise the
// value is read through from the store. The second return value is false
// when the key does not exist.
func (c *Context) GetState(key string) ([]byte, bool, error) {
	return c.inst.tracker.get(c.ctx, c.manager.stateClient, c.inst.actorType, c.inst.actorID, key)
}

// SetState records an upsert of the given state key. The change is committed
// to the store as part of the turn's batch after the turn returns
// successfully, and discarded when the turn fails.
func (c *Context) SetState(key string, value []byte) {
	c.inst.tracker.set(key, value)
}

// RemoveState records a deletion of the given state key, committed or
// discarded with the turn like SetState.
func (c *Context) RemoveState(key string) {
	c.inst.tracker.remove(key)
}

// ContainsState reports whether the given state key currently holds a value
// as observed by the turn.
func (c *Context) ContainsState(key string) (bool, error) {
	return c.inst.tracker.contains(c.ctx, c.manager.stateClient, c.inst.actorType, c.inst.actorID, key)
}

// RegisterTimer registers a transient timer on the current instance. The
// timer is lost when the instance deactivates.
func (c *Context) RegisterTimer(definition TimerDefinition) error {
	return c.manager.RegisterTimer(c.ctx, c.inst.actorID, definition)
}

// UnregisterTimer removes a transient timer from the current instance.
// Unregistering an unknown name is a no-op.
func (c *Context) UnregisterTimer(name string) error {
	return c.manager.UnregisterTimer(c.ctx, c.inst.actorID, name)
}

// RegisterReminder registers a durable reminder for the current actor. The
// definition is persisted by the sidecar's store and survives deactivation.
func (c *Context) RegisterReminder(reminder client.Reminder) error {
	return c.manager.RegisterReminder(c.ctx, c.inst.actorID, reminder)
}

// UnregisterReminder removes a durable reminder of the current actor.
func (c *Context) UnregisterReminder(name string) error {
	return c.manager.UnregisterReminder(c.ctx, c.inst.actorID, name)
}
