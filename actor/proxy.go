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

	"github.com/sidereal-io/sidereal/client"
)

// Proxy is a caller-side handle on a remote actor. It carries only the
// actor's address; the sidecar resolves where the actor actually lives and
// activates it on first call. Creating a proxy is cheap and performs no IO.
//
// A Proxy is safe for concurrent use, though calls through it are still
// serialized at the target by the actor's turn discipline.
type Proxy struct {
	actorType string
	actorID   string

	address string
	invoker client.InvocationClient
	resolve sync.Once
}

// ProxyOption configures a Proxy at construction.
type ProxyOption func(*Proxy)

// WithInvocationClient overrides the client calls go through. Tests
// substitute a fake here.
func WithInvocationClient(invoker client.InvocationClient) ProxyOption {
	return func(p *Proxy) {
		p.invoker = invoker
	}
}

// WithSidecarAddress points the proxy at a sidecar other than
// DefaultSidecarAddress.
func WithSidecarAddress(address string) ProxyOption {
	return func(p *Proxy) {
		p.address = address
	}
}

// NewProxy creates a handle on the actor with the given type and id.
func NewProxy(actorType, actorID string, opts ...ProxyOption) *Proxy {
	p := &Proxy{
		actorType: actorType,
		actorID:   actorID,
		address:   DefaultSidecarAddress,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ActorType returns the target actor's type.
func (p *Proxy) ActorType() string {
	return p.actorType
}

// ActorID returns the target actor's id.
func (p *Proxy) ActorID() string {
	return p.actorID
}

// Invoke calls the named method on the target actor and returns its response
// bytes. The first call lazily builds the underlying HTTP client when none
// was supplied.
func (p *Proxy) Invoke(ctx context.Context, method string, payload []byte) ([]byte, error) {
	p.resolve.Do(func() {
		if p.invoker == nil {
			p.invoker = client.NewHTTP(p.address)
		}
	})
	return p.invoker.InvokeActor(ctx, p.actorType, p.actorID, method, payload)
}
