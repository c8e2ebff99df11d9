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

// Package errors defines the error taxonomy surfaced by the actor runtime.
// Callers match against the sentinel errors with errors.Is and inspect the
// typed errors with errors.As.
package errors

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

var (
	// ErrDuplicateActorType is returned when registering an actor type name
	// that is already registered with the runtime. Registration is one-time
	// per process lifetime.
	ErrDuplicateActorType = errors.New("actor type is already registered")

	// ErrUnknownActorType is returned when dispatching to an actor type name
	// that has not been registered with the runtime.
	ErrUnknownActorType = errors.New("actor type is not registered")

	// ErrActorAlreadyActive is returned when activating an actor id that
	// already has a live instance.
	ErrActorAlreadyActive = errors.New("actor is already active")

	// ErrActorNotActive is returned when deactivating or addressing an actor
	// id that has no live instance.
	ErrActorNotActive = errors.New("actor is not active")

	// ErrMethodNotFound is returned when an actor behavior does not expose the
	// dispatched method name.
	ErrMethodNotFound = errors.New("actor method not found")

	// ErrTimerNotFound is returned when firing or unregistering a timer name
	// unknown to the actor instance.
	ErrTimerNotFound = errors.New("actor timer not found")

	// ErrRuntimeStopped is returned when dispatching through a runtime that
	// has been shut down.
	ErrRuntimeStopped = errors.New("actor runtime is not running")

	// ErrActivationFailure indicates the actor's activation hook failed and
	// the instance was discarded.
	ErrActivationFailure = errors.New("actor activation failed")

	// ErrInvalidReminderPayload indicates a reminder fire carried a payload
	// the runtime could not decode.
	ErrInvalidReminderPayload = errors.New("invalid reminder payload")

	// ErrSchedulerNotStarted is returned when attempting to schedule a timer
	// before the scheduler has started.
	ErrSchedulerNotStarted = errors.New("scheduler has not started")
)

// NewErrActivationFailure wraps a base error with ErrActivationFailure to
// indicate that an activation hook failed.
func NewErrActivationFailure(err error) error {
	return errors.Join(ErrActivationFailure, err)
}

// NewErrMethodNotFound formats an ErrMethodNotFound with the given method name.
func NewErrMethodNotFound(method string) error {
	return fmt.Errorf("method=(%s) %w", method, ErrMethodNotFound)
}

// NewErrTimerNotFound formats an ErrTimerNotFound with the given timer name.
func NewErrTimerNotFound(name string) error {
	return fmt.Errorf("timer=(%s) %w", name, ErrTimerNotFound)
}

// StateStoreError reports a failed interaction with the external state store.
// It carries the operation and the key (when the operation targets a single
// key) that failed.
type StateStoreError struct {
	Op  string
	Key string
	err error
}

// enforce compilation error
var _ error = (*StateStoreError)(nil)

// NewStateStoreError creates an instance of StateStoreError. The key may be
// empty for batch operations.
func NewStateStoreError(op, key string, err error) *StateStoreError {
	return &StateStoreError{Op: op, Key: key, err: err}
}

// Error implements the standard error interface
func (e *StateStoreError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("state store %s failed: %v", e.Op, e.err)
	}
	return fmt.Sprintf("state store %s failed for key=(%s): %v", e.Op, e.Key, e.err)
}

func (e *StateStoreError) Unwrap() error {
	return e.err
}

// InvocationError reports a failed actor invocation through the sidecar,
// carrying the remote status code and message.
type InvocationError struct {
	Code    int
	Message string
}

// enforce compilation error
var _ error = (*InvocationError)(nil)

// NewInvocationError creates an instance of InvocationError
func NewInvocationError(code int, message string) *InvocationError {
	return &InvocationError{Code: code, Message: message}
}

// Error implements the standard error interface
func (e *InvocationError) Error() string {
	return fmt.Sprintf("actor invocation failed: status=%d message=%s", e.Code, e.Message)
}

// DrainTimeoutError reports that deactivation gave up waiting for in-flight
// turns to finish. IDs lists the actor ids that could not be drained.
type DrainTimeoutError struct {
	Timeout time.Duration
	IDs     []string
}

// enforce compilation error
var _ error = (*DrainTimeoutError)(nil)

// NewDrainTimeoutError creates an instance of DrainTimeoutError
func NewDrainTimeoutError(timeout time.Duration, ids ...string) *DrainTimeoutError {
	return &DrainTimeoutError{Timeout: timeout, IDs: ids}
}

// Error implements the standard error interface
func (e *DrainTimeoutError) Error() string {
	return fmt.Sprintf("drain timed out after %s for actors=[%s]", e.Timeout, strings.Join(e.IDs, ","))
}

// PanicError wraps a panic recovered from a user behavior while a turn was
// running, enriched with the call site for logging.
type PanicError struct {
	err   error
	stack []byte
}

// enforce compilation error
var _ error = (*PanicError)(nil)

// NewPanicError creates an instance of PanicError. It must be called from the
// deferred function that recovered the panic so the captured stack still
// contains the panicking frame.
func NewPanicError(err error) *PanicError {
	return &PanicError{err: err, stack: debug.Stack()}
}

// Error implements the standard error interface
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.err)
}

// Stack returns the stack trace captured at recovery, panicking frame
// included.
func (e *PanicError) Stack() []byte {
	return e.stack
}

func (e *PanicError) Unwrap() error {
	return e.err
}
