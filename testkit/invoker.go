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

package testkit

import (
	"context"
	"sync"

	"github.com/sidereal-io/sidereal/actor"
	"github.com/sidereal-io/sidereal/client"
)

// RuntimeInvocationClient routes proxy calls straight into a local Runtime,
// standing in for the sidecar's placement and transport.
type RuntimeInvocationClient struct {
	runtime *actor.Runtime
}

var _ client.InvocationClient = (*RuntimeInvocationClient)(nil)

// NewRuntimeInvocationClient wraps the given runtime.
func NewRuntimeInvocationClient(runtime *actor.Runtime) *RuntimeInvocationClient {
	return &RuntimeInvocationClient{runtime: runtime}
}

// InvokeActor dispatches the call through the wrapped runtime.
func (c *RuntimeInvocationClient) InvokeActor(ctx context.Context, actorType, actorID, method string, payload []byte) ([]byte, error) {
	return c.runtime.Invoke(ctx, actorType, actorID, method, payload)
}

// InvocationRecord is one call captured by a RecordingInvocationClient.
type InvocationRecord struct {
	ActorType string
	ActorID   string
	Method    string
	Payload   []byte
}

// RecordingInvocationClient captures proxy calls and answers them with a
// canned response.
type RecordingInvocationClient struct {
	mu       sync.Mutex
	calls    []InvocationRecord
	Response []byte
	Err      error
}

var _ client.InvocationClient = (*RecordingInvocationClient)(nil)

// InvokeActor records the call and returns the configured response.
func (c *RecordingInvocationClient) InvokeActor(_ context.Context, actorType, actorID, method string, payload []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, InvocationRecord{
		ActorType: actorType,
		ActorID:   actorID,
		Method:    method,
		Payload:   payload,
	})
	return c.Response, c.Err
}

// Calls returns a copy of the captured calls.
func (c *RecordingInvocationClient) Calls() []InvocationRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]InvocationRecord, len(c.calls))
	copy(out, c.calls)
	return out
}
