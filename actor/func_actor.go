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
	gerrors "github.com/sidereal-io/sidereal/errors"
)

// MethodFunc handles one named method of a FuncActor.
type MethodFunc func(ctx *Context) ([]byte, error)

// HookFunc handles a lifecycle transition of a FuncActor.
type HookFunc func(ctx *Context) error

// FuncActor is an Actor assembled from named method functions, for small
// actors and tests where a dedicated behavior type is not worth writing.
// Methods without an entry fail with errors.ErrMethodNotFound.
type FuncActor struct {
	methods      map[string]MethodFunc
	onActivate   HookFunc
	onDeactivate HookFunc
}

var _ Actor = (*FuncActor)(nil)

// FuncActorOption configures a FuncActor at construction.
type FuncActorOption func(*FuncActor)

// WithMethod binds a handler to a method name.
func WithMethod(name string, fn MethodFunc) FuncActorOption {
	return func(f *FuncActor) {
		f.methods[name] = fn
	}
}

// WithOnActivate sets the activation hook.
func WithOnActivate(fn HookFunc) FuncActorOption {
	return func(f *FuncActor) {
		f.onActivate = fn
	}
}

// WithOnDeactivate sets the deactivation hook.
func WithOnDeactivate(fn HookFunc) FuncActorOption {
	return func(f *FuncActor) {
		f.onDeactivate = fn
	}
}

// NewFuncActor assembles an actor from the given methods and hooks.
func NewFuncActor(opts ...FuncActorOption) *FuncActor {
	f := &FuncActor{
		methods: make(map[string]MethodFunc),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// OnActivate runs the activation hook when one is set.
func (f *FuncActor) OnActivate(ctx *Context) error {
	if f.onActivate != nil {
		return f.onActivate(ctx)
	}
	return nil
}

// OnDeactivate runs the deactivation hook when one is set.
func (f *FuncActor) OnDeactivate(ctx *Context) error {
	if f.onDeactivate != nil {
		return f.onDeactivate(ctx)
	}
	return nil
}

// Receive routes the turn to the handler bound to the called method.
func (f *FuncActor) Receive(ctx *Context) ([]byte, error) {
	fn, ok := f.methods[ctx.Method()]
	if !ok {
		return nil, gerrors.NewErrMethodNotFound(ctx.Method())
	}
	return fn(ctx)
}
