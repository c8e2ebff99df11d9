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

// Package client defines the narrow collaborator interfaces through which the
// actor runtime reaches the sidecar process, together with the data types
// that cross that boundary. The runtime is agnostic to the transport; the
// HTTP implementation in this package is one binding of these interfaces.
package client

import (
	"context"
)

// OperationType describes a single mutation against the actor state store.
type OperationType string

const (
	// OperationUpsert adds a key or overwrites its current value.
	OperationUpsert OperationType = "upsert"
	// OperationDelete removes a key.
	OperationDelete OperationType = "delete"
)

// StateChange is one mutation of a logical state key. A slice of StateChange
// forms the atomic batch an actor turn commits: the store applies either all
// changes of the batch or none of them.
type StateChange struct {
	Operation OperationType
	Key       string
	Value     []byte
}

// StateClient is the state-facing collaborator of the runtime. It persists
// actor state batches and durable reminder definitions in the sidecar's
// store.
//
// Implementations must be safe for concurrent use: the runtime calls these
// methods from many actor turns in parallel.
type StateClient interface {
	// GetState fetches the value of a single state key. The second return
	// value is false when the key does not exist.
	GetState(ctx context.Context, actorType, actorID, key string) ([]byte, bool, error)

	// SaveState commits the given changes as one all-or-nothing batch.
	SaveState(ctx context.Context, actorType, actorID string, changes []StateChange) error

	// RegisterReminder persists a durable reminder definition. The sidecar
	// owns firing: it calls back into the runtime when the reminder is due,
	// echoing the payload stored at registration.
	RegisterReminder(ctx context.Context, actorType, actorID string, reminder Reminder) error

	// UnregisterReminder removes a durable reminder definition.
	UnregisterReminder(ctx context.Context, actorType, actorID, name string) error
}

// InvocationClient is the invocation-facing collaborator used by actor
// proxies. It routes a method call to wherever the sidecar placed the target
// actor and returns the raw response payload.
type InvocationClient interface {
	// InvokeActor invokes the named method on the actor identified by
	// actorType and actorID and returns the response payload.
	InvokeActor(ctx context.Context, actorType, actorID, method string, payload []byte) ([]byte, error)
}
