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

// Package actor implements a client-side virtual actor runtime. Application
// code defines actor behaviors; their activation, turn-based dispatch, state
// commits and scheduled invocations are coordinated locally while durable
// storage and placement are delegated to a sidecar process reachable through
// the collaborator interfaces of the client package.
package actor

// Actor defines the contract for virtual actor behaviors.
//
// An actor is a single-threaded, stateful, addressable unit of behavior
// identified by a (type, id) pair. Instances are activated on demand and
// deactivated when idle. The runtime guarantees that at most one turn — a
// method call, a timer fire or a reminder fire — executes per instance at any
// time, so implementations never need their own locking.
//
// Implementations should:
//   - use OnActivate to load state or initialize resources,
//   - use OnDeactivate to persist state and release resources,
//   - respect the turn's context for cancellation and deadlines,
//   - not retain the *Context beyond the scope of the call.
type Actor interface {
	// OnActivate is called when the instance is loaded into memory, before
	// any turn runs. Returning an error aborts the activation and the
	// instance is discarded.
	OnActivate(ctx *Context) error

	// OnDeactivate is called before the instance is removed from memory.
	// Errors are logged, not propagated: deactivation always completes.
	OnDeactivate(ctx *Context) error

	// Receive handles one turn. The context carries the dispatched method
	// name and its payload; implementations return
	// errors.ErrMethodNotFound (ideally via errors.NewErrMethodNotFound)
	// for method names they do not expose. State changes recorded through
	// the context are committed as one batch after Receive returns nil and
	// discarded when it returns an error.
	Receive(ctx *Context) ([]byte, error)
}

// Factory constructs a fresh behavior object for the given actor id. It is
// called once per activation.
type Factory func(actorID string) Actor
