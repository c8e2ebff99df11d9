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
)

// changeKind describes the pending mutation of one cached state key.
type changeKind int

const (
	// changeNone marks a clean cache entry mirroring the store.
	changeNone changeKind = iota
	// changeAdd marks a key created during the current turn.
	changeAdd
	// changeUpdate marks a key overwritten during the current turn.
	changeUpdate
	// changeRemove marks a key deleted during the current turn.
	changeRemove
)

type stateEntry struct {
	value []byte
	kind  changeKind
}

// stateTracker records the state mutations an actor turn performs so they can
// be committed as one all-or-nothing batch after the turn returns, or
// discarded when it fails. It doubles as a read cache: a turn always observes
// its own uncommitted writes.
//
// The tracker is not synchronized. Turn exclusivity guarantees that only one
// goroutine touches it at a time.
type stateTracker struct {
	entries map[string]*stateEntry
	// keys in first-touch order so batches are deterministic
	order []string
}

func newStateTracker() *stateTracker {
	return &stateTracker{
		entries: make(map[string]*stateEntry),
	}
}

// get returns the value of key as the current turn observes it, reading
// through to the store for keys the tracker has not seen yet.
func (t *stateTracker) get(ctx context.Context, store client.StateClient, actorType, actorID, key string) ([]byte, bool, error) {
	if entry, ok := t.entries[key]; ok {
		if entry.kind == changeRemove {
			return nil, false, nil
		}
		return entry.value, true, nil
	}

	value, found, err := store.GetState(ctx, actorType, actorID, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	t.track(key, &stateEntry{value: value, kind: changeNone})
	return value, true, nil
}

// set records an upsert of key. Whether the batch carries it as an add or an
// update depends on what the turn already knows about the key's presence.
func (t *stateTracker) set(key string, value []byte) {
	if entry, ok := t.entries[key]; ok {
		switch entry.kind {
		case changeAdd:
			entry.value = value
		default:
			entry.value = value
			entry.kind = changeUpdate
		}
		return
	}
	t.track(key, &stateEntry{value: value, kind: changeAdd})
}

// remove records a deletion of key. Removing a key added during the same turn
// cancels out: the store never hears about it.
func (t *stateTracker) remove(key string) {
	if entry, ok := t.entries[key]; ok {
		if entry.kind == changeAdd {
			t.untrack(key)
			return
		}
		entry.value = nil
		entry.kind = changeRemove
		return
	}
	t.track(key, &stateEntry{kind: changeRemove})
}

// contains reports whether the turn currently observes a value for key.
func (t *stateTracker) contains(ctx context.Context, store client.StateClient, actorType, actorID, key string) (bool, error) {
	_, found, err := t.get(ctx, store, actorType, actorID, key)
	return found, err
}

// changes returns the pending mutations as the batch to commit, in
// first-touch key order.
func (t *stateTracker) changes() []client.StateChange {
	var batch []client.StateChange
	for _, key := range t.order {
		entry := t.entries[key]
		switch entry.kind {
		case changeAdd, changeUpdate:
			batch = append(batch, client.StateChange{
				Operation: client.OperationUpsert,
				Key:       key,
				Value:     entry.value,
			})
		case changeRemove:
			batch = append(batch, client.StateChange{
				Operation: client.OperationDelete,
				Key:       key,
			})
		}
	}
	return batch
}

// commit marks the pending mutations as applied: upserts become clean cache
// entries and removed keys are forgotten.
func (t *stateTracker) commit() {
	for _, key := range t.order {
		entry := t.entries[key]
		switch entry.kind {
		case changeAdd, changeUpdate:
			entry.kind = changeNone
		case changeRemove:
			t.untrack(key)
		}
	}
}

// rollback discards the pending mutations. Clean cache entries survive so
// later turns still avoid redundant store reads.
func (t *stateTracker) rollback() {
	for _, key := range append([]string(nil), t.order...) {
		if entry, ok := t.entries[key]; ok && entry.kind != changeNone {
			t.untrack(key)
		}
	}
}

func (t *stateTracker) track(key string, entry *stateEntry) {
	t.entries[key] = entry
	t.order = append(t.order, key)
}

func (t *stateTracker) untrack(key string) {
	delete(t.entries, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}
