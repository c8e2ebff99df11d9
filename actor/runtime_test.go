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

package actor_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"github.com/sidereal-io/sidereal/actor"
	"github.com/sidereal-io/sidereal/client"
	gerrors "github.com/sidereal-io/sidereal/errors"
	"github.com/sidereal-io/sidereal/log"
	"github.com/sidereal-io/sidereal/testkit"
)

// counterFactory builds an actor keeping an integer under the "count" state
// key, with an "increment" method adding the decimal payload to it.
func counterFactory(string) actor.Actor {
	return actor.NewFuncActor(
		actor.WithMethod("increment", func(ctx *actor.Context) ([]byte, error) {
			delta, err := strconv.Atoi(string(ctx.Payload()))
			if err != nil {
				return nil, err
			}
			current := 0
			if raw, ok, err := ctx.GetState("count"); err != nil {
				return nil, err
			} else if ok {
				if current, err = strconv.Atoi(string(raw)); err != nil {
					return nil, err
				}
			}
			next := strconv.Itoa(current + delta)
			ctx.SetState("count", []byte(next))
			return []byte(next), nil
		}),
	)
}

func newTestRuntime(t *testing.T, store client.StateClient) *actor.Runtime {
	t.Helper()
	runtime := actor.NewRuntime(
		actor.WithStateClient(store),
		actor.WithLogger(log.DiscardLogger),
	)
	require.NoError(t, runtime.Start(context.TODO()))
	t.Cleanup(func() {
		require.NoError(t, runtime.Stop(context.TODO()))
	})
	return runtime
}

func TestRegister(t *testing.T) {
	t.Run("each type registers exactly once", func(t *testing.T) {
		runtime := actor.NewRuntime(
			actor.WithStateClient(testkit.NewInMemoryStateClient()),
			actor.WithLogger(log.DiscardLogger),
		)
		require.NoError(t, runtime.Register("Counter", counterFactory))

		err := runtime.Register("Counter", counterFactory)
		require.ErrorIs(t, err, gerrors.ErrDuplicateActorType)
		assert.Equal(t, 409, gerrors.CodeOf(err))
	})

	t.Run("registered types come back sorted", func(t *testing.T) {
		runtime := actor.NewRuntime(
			actor.WithStateClient(testkit.NewInMemoryStateClient()),
			actor.WithLogger(log.DiscardLogger),
		)
		require.NoError(t, runtime.Register("Zebra", counterFactory))
		require.NoError(t, runtime.Register("Aardvark", counterFactory))
		assert.Equal(t, []string{"Aardvark", "Zebra"}, runtime.RegisteredTypes())
	})
}

func TestDispatchGuards(t *testing.T) {
	ctx := context.TODO()

	t.Run("dispatch before start is rejected", func(t *testing.T) {
		runtime := actor.NewRuntime(
			actor.WithStateClient(testkit.NewInMemoryStateClient()),
			actor.WithLogger(log.DiscardLogger),
		)
		require.NoError(t, runtime.Register("Counter", counterFactory))

		_, err := runtime.Invoke(ctx, "Counter", "a", "increment", []byte("1"))
		require.ErrorIs(t, err, gerrors.ErrRuntimeStopped)
	})

	t.Run("dispatch to an unregistered type is rejected", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())

		_, err := runtime.Invoke(ctx, "Ghost", "a", "increment", []byte("1"))
		require.ErrorIs(t, err, gerrors.ErrUnknownActorType)
		assert.Equal(t, 404, gerrors.CodeOf(err))
	})

	t.Run("dispatch after stop is rejected", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := actor.NewRuntime(
			actor.WithStateClient(store),
			actor.WithLogger(log.DiscardLogger),
		)
		require.NoError(t, runtime.Register("Counter", counterFactory))
		require.NoError(t, runtime.Start(ctx))

		_, err := runtime.Invoke(ctx, "Counter", "a", "increment", []byte("1"))
		require.NoError(t, err)

		require.NoError(t, runtime.Stop(ctx))
		_, err = runtime.Invoke(ctx, "Counter", "a", "increment", []byte("1"))
		require.ErrorIs(t, err, gerrors.ErrRuntimeStopped)
	})
}

func TestActivation(t *testing.T) {
	ctx := context.TODO()

	t.Run("first invoke activates exactly once", func(t *testing.T) {
		activations := atomic.NewInt32(0)
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Greeter", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithOnActivate(func(*actor.Context) error {
					activations.Inc()
					return nil
				}),
				actor.WithMethod("greet", func(*actor.Context) ([]byte, error) {
					return []byte("hello"), nil
				}),
			)
		}))

		for i := 0; i < 5; i++ {
			response, err := runtime.Invoke(ctx, "Greeter", "a", "greet", nil)
			require.NoError(t, err)
			assert.Equal(t, []byte("hello"), response)
		}
		assert.Equal(t, int32(1), activations.Load())
	})

	t.Run("concurrent first invokes activate exactly once", func(t *testing.T) {
		activations := atomic.NewInt32(0)
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Greeter", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithOnActivate(func(*actor.Context) error {
					activations.Inc()
					return nil
				}),
				actor.WithMethod("greet", func(*actor.Context) ([]byte, error) {
					return []byte("hello"), nil
				}),
			)
		}))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := runtime.Invoke(ctx, "Greeter", "a", "greet", nil)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), activations.Load())
	})

	t.Run("explicit activation mode rejects lazy invokes", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Strict", counterFactory,
			actor.WithRequireExplicitActivation()))

		_, err := runtime.Invoke(ctx, "Strict", "a", "increment", []byte("1"))
		require.ErrorIs(t, err, gerrors.ErrActorNotActive)
		assert.Equal(t, 404, gerrors.CodeOf(err))

		require.NoError(t, runtime.Activate(ctx, "Strict", "a"))
		_, err = runtime.Invoke(ctx, "Strict", "a", "increment", []byte("1"))
		require.NoError(t, err)
	})

	t.Run("double activation is rejected", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Counter", counterFactory))

		require.NoError(t, runtime.Activate(ctx, "Counter", "a"))
		err := runtime.Activate(ctx, "Counter", "a")
		require.ErrorIs(t, err, gerrors.ErrActorAlreadyActive)
		assert.Equal(t, 409, gerrors.CodeOf(err))
	})

	t.Run("an activation attempt is bounded by the activation timeout", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Sluggish", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithOnActivate(func(ctx *actor.Context) error {
					// never completes on its own; only the attempt deadline
					// can end it
					<-ctx.Context().Done()
					return ctx.Context().Err()
				}),
			)
		},
			actor.WithActivationTimeout(20*time.Millisecond),
			actor.WithActivationMaxRetries(1),
		))

		start := time.Now()
		err := runtime.Activate(ctx, "Sluggish", "a")
		require.ErrorIs(t, err, gerrors.ErrActivationFailure)
		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("failed activation leaves no instance behind", func(t *testing.T) {
		boom := errors.New("boom")
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Flaky", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithOnActivate(func(*actor.Context) error {
					return boom
				}),
			)
		}, actor.WithActivationMaxRetries(1)))

		err := runtime.Activate(ctx, "Flaky", "a")
		require.ErrorIs(t, err, gerrors.ErrActivationFailure)

		// the failed attempt did not leave a half-built instance; a retry
		// goes through the full activation path again
		err = runtime.Activate(ctx, "Flaky", "a")
		require.ErrorIs(t, err, gerrors.ErrActivationFailure)
	})
}

func TestStateLifecycle(t *testing.T) {
	ctx := context.TODO()

	t.Run("successful turn commits one batch", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Profile", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("update", func(ctx *actor.Context) ([]byte, error) {
					ctx.SetState("name", []byte("ada"))
					ctx.SetState("city", []byte("london"))
					return nil, nil
				}),
			)
		}))

		_, err := runtime.Invoke(ctx, "Profile", "p1", "update", nil)
		require.NoError(t, err)

		name, ok := store.State("Profile", "p1", "name")
		require.True(t, ok)
		assert.Equal(t, []byte("ada"), name)
		city, ok := store.State("Profile", "p1", "city")
		require.True(t, ok)
		assert.Equal(t, []byte("london"), city)

		// both writes traveled in a single batch
		assert.Equal(t, int64(1), store.SaveCalls())
	})

	t.Run("failed turn discards its changes", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Profile", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("fail", func(ctx *actor.Context) ([]byte, error) {
					ctx.SetState("name", []byte("ghost"))
					return nil, errors.New("nope")
				}),
				actor.WithMethod("read", func(ctx *actor.Context) ([]byte, error) {
					value, ok, err := ctx.GetState("name")
					if err != nil || !ok {
						return nil, err
					}
					return value, nil
				}),
			)
		}))

		_, err := runtime.Invoke(ctx, "Profile", "p1", "fail", nil)
		require.Error(t, err)

		_, ok := store.State("Profile", "p1", "name")
		assert.False(t, ok)
		assert.Zero(t, store.SaveCalls())

		// the discarded write is invisible to the next turn too
		value, err := runtime.Invoke(ctx, "Profile", "p1", "read", nil)
		require.NoError(t, err)
		assert.Empty(t, value)
	})

	t.Run("panicking turn discards its changes and frees the slot", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Profile", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("explode", func(ctx *actor.Context) ([]byte, error) {
					ctx.SetState("name", []byte("ghost"))
					panic("kaboom")
				}),
			)
		}))

		_, err := runtime.Invoke(ctx, "Profile", "p1", "explode", nil)
		var panicErr *gerrors.PanicError
		require.ErrorAs(t, err, &panicErr)
		_, ok := store.State("Profile", "p1", "name")
		assert.False(t, ok)

		// the turn slot was released: the next invoke proceeds
		_, err = runtime.Invoke(ctx, "Profile", "p1", "explode", nil)
		require.ErrorAs(t, err, &panicErr)
	})

	t.Run("store failure surfaces and discards the batch", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Counter", counterFactory))

		store.FailSaves(errors.New("store down"))
		_, err := runtime.Invoke(ctx, "Counter", "a", "increment", []byte("1"))
		var storeErr *gerrors.StateStoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, 500, gerrors.CodeOf(err))

		// once the store recovers the counter restarts from the committed
		// value, not from the discarded write
		store.FailSaves(nil)
		response, err := runtime.Invoke(ctx, "Counter", "a", "increment", []byte("1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("1"), response)
	})

	t.Run("unknown method is rejected", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Counter", counterFactory))

		_, err := runtime.Invoke(ctx, "Counter", "a", "decrement", []byte("1"))
		require.ErrorIs(t, err, gerrors.ErrMethodNotFound)
		assert.Equal(t, 404, gerrors.CodeOf(err))
	})
}

func TestTurnExclusivity(t *testing.T) {
	ctx := context.TODO()

	t.Run("concurrent increments serialize", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Counter", counterFactory))

		var wg sync.WaitGroup
		for _, delta := range []string{"5", "3"} {
			wg.Add(1)
			go func(delta string) {
				defer wg.Done()
				_, err := runtime.Invoke(ctx, "Counter", "a", "increment", []byte(delta))
				assert.NoError(t, err)
			}(delta)
		}
		wg.Wait()

		value, ok := store.State("Counter", "a", "count")
		require.True(t, ok)
		assert.Equal(t, []byte("8"), value)
	})

	t.Run("turns on one id never overlap", func(t *testing.T) {
		inTurn := atomic.NewInt32(0)
		overlaps := atomic.NewInt32(0)
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Busy", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("work", func(*actor.Context) ([]byte, error) {
					if inTurn.Inc() > 1 {
						overlaps.Inc()
					}
					time.Sleep(2 * time.Millisecond)
					inTurn.Dec()
					return nil, nil
				}),
			)
		}))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := runtime.Invoke(ctx, "Busy", "a", "work", nil)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Zero(t, overlaps.Load())
	})

	t.Run("different ids run in parallel", func(t *testing.T) {
		gate := make(chan struct{})
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Pair", func(actorID string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("meet", func(*actor.Context) ([]byte, error) {
					// both turns must be inside their actor at once to
					// rendezvous; a serialized pair would deadlock here
					select {
					case gate <- struct{}{}:
					case <-gate:
					}
					return nil, nil
				}),
			)
		}))

		var wg sync.WaitGroup
		for _, actorID := range []string{"a", "b"} {
			wg.Add(1)
			go func(actorID string) {
				defer wg.Done()
				_, err := runtime.Invoke(ctx, "Pair", actorID, "meet", nil)
				assert.NoError(t, err)
			}(actorID)
		}
		wg.Wait()
	})
}

func TestDeactivation(t *testing.T) {
	ctx := context.TODO()

	t.Run("deactivating an inactive actor is rejected", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Counter", counterFactory))

		err := runtime.Deactivate(ctx, "Counter", "ghost")
		require.ErrorIs(t, err, gerrors.ErrActorNotActive)
	})

	t.Run("deactivation runs the hook and commits its state", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Session", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithOnDeactivate(func(ctx *actor.Context) error {
					ctx.SetState("closed", []byte("true"))
					return nil
				}),
				actor.WithMethod("ping", func(*actor.Context) ([]byte, error) {
					return []byte("pong"), nil
				}),
			)
		}, actor.WithRequireExplicitActivation()))

		require.NoError(t, runtime.Activate(ctx, "Session", "s1"))
		require.NoError(t, runtime.Deactivate(ctx, "Session", "s1"))

		closed, ok := store.State("Session", "s1", "closed")
		require.True(t, ok)
		assert.Equal(t, []byte("true"), closed)

		// the instance is gone for good under explicit activation
		_, err := runtime.Invoke(ctx, "Session", "s1", "ping", nil)
		require.ErrorIs(t, err, gerrors.ErrActorNotActive)
	})

	t.Run("deactivation waits for the running turn", func(t *testing.T) {
		entered := make(chan struct{})
		finished := atomic.NewBool(false)
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Slow", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("work", func(*actor.Context) ([]byte, error) {
					close(entered)
					time.Sleep(100 * time.Millisecond)
					finished.Store(true)
					return nil, nil
				}),
			)
		}))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := runtime.Invoke(ctx, "Slow", "a", "work", nil)
			assert.NoError(t, err)
		}()

		<-entered
		require.NoError(t, runtime.Deactivate(ctx, "Slow", "a"))
		assert.True(t, finished.Load(), "deactivation must not preempt the running turn")
		wg.Wait()
	})

	t.Run("drain timeout leaves the actor running", func(t *testing.T) {
		entered := make(chan struct{})
		release := make(chan struct{})
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Stuck", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("hang", func(*actor.Context) ([]byte, error) {
					close(entered)
					<-release
					return []byte("done"), nil
				}),
			)
		}, actor.WithDrainOngoingCallTimeout(20*time.Millisecond)))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			response, err := runtime.Invoke(ctx, "Stuck", "a", "hang", nil)
			assert.NoError(t, err)
			assert.Equal(t, []byte("done"), response)
		}()

		<-entered
		err := runtime.Deactivate(ctx, "Stuck", "a")
		var drainErr *gerrors.DrainTimeoutError
		require.ErrorAs(t, err, &drainErr)
		assert.Equal(t, 408, gerrors.CodeOf(err))

		// the turn completes and the actor stays dispatchable
		close(release)
		wg.Wait()
		_, err = runtime.Invoke(ctx, "Stuck", "a", "ping", nil)
		require.ErrorIs(t, err, gerrors.ErrMethodNotFound)
	})

	t.Run("failing deactivation hook still removes the instance", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Grumpy", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithOnDeactivate(func(*actor.Context) error {
					return errors.New("refuse")
				}),
			)
		}, actor.WithRequireExplicitActivation()))

		require.NoError(t, runtime.Activate(ctx, "Grumpy", "a"))
		require.NoError(t, runtime.Deactivate(ctx, "Grumpy", "a"))

		err := runtime.Deactivate(ctx, "Grumpy", "a")
		require.ErrorIs(t, err, gerrors.ErrActorNotActive)
	})

	t.Run("stop deactivates every instance", func(t *testing.T) {
		deactivated := atomic.NewInt32(0)
		store := testkit.NewInMemoryStateClient()
		runtime := actor.NewRuntime(
			actor.WithStateClient(store),
			actor.WithLogger(log.DiscardLogger),
		)
		require.NoError(t, runtime.Register("Session", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithOnDeactivate(func(*actor.Context) error {
					deactivated.Inc()
					return nil
				}),
				actor.WithMethod("ping", func(*actor.Context) ([]byte, error) {
					return nil, nil
				}),
			)
		}))
		require.NoError(t, runtime.Start(ctx))

		for i := 0; i < 5; i++ {
			_, err := runtime.Invoke(ctx, "Session", fmt.Sprintf("s%d", i), "ping", nil)
			require.NoError(t, err)
		}

		require.NoError(t, runtime.Stop(ctx))
		assert.Equal(t, int32(5), deactivated.Load())
	})
}

func TestIdlePassivation(t *testing.T) {
	ctx := context.TODO()

	deactivated := make(chan struct{})
	runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
	require.NoError(t, runtime.Register("Ephemeral", func(string) actor.Actor {
		return actor.NewFuncActor(
			actor.WithOnDeactivate(func(*actor.Context) error {
				close(deactivated)
				return nil
			}),
			actor.WithMethod("ping", func(*actor.Context) ([]byte, error) {
				return nil, nil
			}),
		)
	},
		actor.WithIdleTimeout(30*time.Millisecond),
		actor.WithScanInterval(10*time.Millisecond),
	))

	_, err := runtime.Invoke(ctx, "Ephemeral", "a", "ping", nil)
	require.NoError(t, err)

	select {
	case <-deactivated:
	case <-time.After(2 * time.Second):
		t.Fatal("idle instance was never deactivated")
	}
}

func TestReminders(t *testing.T) {
	ctx := context.TODO()

	t.Run("registration persists the definition", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Billing", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("subscribe", func(ctx *actor.Context) ([]byte, error) {
					return nil, ctx.RegisterReminder(client.Reminder{
						Name:    "renew",
						DueTime: time.Hour,
						Period:  24 * time.Hour,
						Method:  "charge",
						Data:    []byte("plan-a"),
					})
				}),
			)
		}))

		_, err := runtime.Invoke(ctx, "Billing", "b1", "subscribe", nil)
		require.NoError(t, err)

		reminder, ok := store.Reminder("Billing", "b1", "renew")
		require.True(t, ok)
		assert.Equal(t, "charge", reminder.Method)
	})

	t.Run("a fire survives deactivation and rebinds its method", func(t *testing.T) {
		charged := make(chan []byte, 1)
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Billing", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("charge", func(ctx *actor.Context) ([]byte, error) {
					charged <- ctx.Payload()
					return nil, nil
				}),
			)
		}))

		reminder := client.Reminder{Name: "renew", Method: "charge", Data: []byte("plan-a")}
		require.NoError(t, store.RegisterReminder(ctx, "Billing", "b1", reminder))

		// the actor was never activated in this process; the sidecar echo
		// alone must be enough to reactivate it and route the fire
		payload, err := client.EncodeReminderPayload(reminder)
		require.NoError(t, err)
		require.NoError(t, runtime.FireReminder(ctx, "Billing", "b1", "renew", payload))
		assert.Equal(t, []byte("plan-a"), <-charged)
	})

	t.Run("a malformed fire payload is rejected", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Billing", counterFactory))

		err := runtime.FireReminder(ctx, "Billing", "b1", "renew", []byte("{not json"))
		require.ErrorIs(t, err, gerrors.ErrInvalidReminderPayload)
	})

	t.Run("unregistration removes the definition", func(t *testing.T) {
		store := testkit.NewInMemoryStateClient()
		runtime := newTestRuntime(t, store)
		require.NoError(t, runtime.Register("Billing", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("subscribe", func(ctx *actor.Context) ([]byte, error) {
					return nil, ctx.RegisterReminder(client.Reminder{Name: "renew", Method: "charge"})
				}),
				actor.WithMethod("cancel", func(ctx *actor.Context) ([]byte, error) {
					return nil, ctx.UnregisterReminder("renew")
				}),
			)
		}))

		_, err := runtime.Invoke(ctx, "Billing", "b1", "subscribe", nil)
		require.NoError(t, err)
		_, err = runtime.Invoke(ctx, "Billing", "b1", "cancel", nil)
		require.NoError(t, err)

		_, ok := store.Reminder("Billing", "b1", "renew")
		assert.False(t, ok)
	})
}

func TestTimers(t *testing.T) {
	ctx := context.TODO()

	t.Run("a registered timer fires its method", func(t *testing.T) {
		fired := make(chan []byte, 1)
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Clock", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("arm", func(ctx *actor.Context) ([]byte, error) {
					return nil, ctx.RegisterTimer(actor.TimerDefinition{
						Name:    "tick",
						DueTime: 10 * time.Millisecond,
						Method:  "tock",
						Data:    []byte("now"),
					})
				}),
				actor.WithMethod("tock", func(ctx *actor.Context) ([]byte, error) {
					select {
					case fired <- ctx.Payload():
					default:
					}
					return nil, nil
				}),
			)
		}))

		_, err := runtime.Invoke(ctx, "Clock", "c1", "arm", nil)
		require.NoError(t, err)

		select {
		case payload := <-fired:
			assert.Equal(t, []byte("now"), payload)
		case <-time.After(2 * time.Second):
			t.Fatal("timer never fired")
		}
	})

	t.Run("an unregistered timer stops firing", func(t *testing.T) {
		fires := atomic.NewInt32(0)
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Clock", func(string) actor.Actor {
			return actor.NewFuncActor(
				actor.WithMethod("arm", func(ctx *actor.Context) ([]byte, error) {
					return nil, ctx.RegisterTimer(actor.TimerDefinition{
						Name:    "tick",
						DueTime: 10 * time.Millisecond,
						Period:  10 * time.Millisecond,
						Method:  "tock",
					})
				}),
				actor.WithMethod("disarm", func(ctx *actor.Context) ([]byte, error) {
					return nil, ctx.UnregisterTimer("tick")
				}),
				actor.WithMethod("tock", func(*actor.Context) ([]byte, error) {
					fires.Inc()
					return nil, nil
				}),
			)
		}))

		_, err := runtime.Invoke(ctx, "Clock", "c1", "arm", nil)
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			return fires.Load() >= 1
		}, 2*time.Second, 5*time.Millisecond)

		_, err = runtime.Invoke(ctx, "Clock", "c1", "disarm", nil)
		require.NoError(t, err)

		observed := fires.Load()
		time.Sleep(50 * time.Millisecond)
		assert.LessOrEqual(t, fires.Load(), observed+1, "at most one in-flight fire may land after disarm")
	})

	t.Run("an inbound fire for an unknown timer is rejected", func(t *testing.T) {
		runtime := newTestRuntime(t, testkit.NewInMemoryStateClient())
		require.NoError(t, runtime.Register("Clock", counterFactory))

		require.NoError(t, runtime.Activate(ctx, "Clock", "c1"))
		err := runtime.FireTimer(ctx, "Clock", "c1", "ghost")
		require.ErrorIs(t, err, gerrors.ErrTimerNotFound)
	})
}

func TestConfigDocument(t *testing.T) {
	runtime := actor.NewRuntime(
		actor.WithStateClient(testkit.NewInMemoryStateClient()),
		actor.WithLogger(log.DiscardLogger),
		actor.WithDefaultConfig(actor.WithIdleTimeout(time.Hour)),
	)
	require.NoError(t, runtime.Register("Plain", counterFactory))
	require.NoError(t, runtime.Register("Tuned", counterFactory,
		actor.WithIdleTimeout(5*time.Minute)))

	document := runtime.Config()
	assert.Equal(t, []string{"Plain", "Tuned"}, document.Entities)
	assert.Equal(t, "1h0m0s", document.ActorIdleTimeout)

	require.Len(t, document.EntitiesConfig, 1)
	override := document.EntitiesConfig[0]
	assert.Equal(t, []string{"Tuned"}, override.Entities)
	assert.Equal(t, "5m0s", override.ActorIdleTimeout)
}
