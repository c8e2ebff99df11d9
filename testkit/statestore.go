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

// Package testkit provides in-memory doubles of the sidecar collaborators
// for tests of actor behaviors and of the runtime itself.
package testkit

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/sidereal-io/sidereal/client"
	"github.com/sidereal-io/sidereal/errors"
)

// InMemoryStateClient is a client.StateClient backed by plain maps. Batches
// apply atomically the way the sidecar's transactional state API does, and
// every call is observable for assertions. Failure injection covers the
// store-down paths.
type InMemoryStateClient struct {
	mu        sync.RWMutex
	states    map[string]map[string][]byte
	reminders map[string]map[string]client.Reminder

	saveCalls *atomic.Int64
	failSave  error
	failGet   error
}

var _ client.StateClient = (*InMemoryStateClient)(nil)

// NewInMemoryStateClient creates an empty in-memory store.
func NewInMemoryStateClient() *InMemoryStateClient {
	return &InMemoryStateClient{
		states:    make(map[string]map[string][]byte),
		reminders: make(map[string]map[string]client.Reminder),
		saveCalls: atomic.NewInt64(0),
	}
}

func storeKey(actorType, actorID string) string {
	return actorType + "/" + actorID
}

// GetState returns the stored value of the given key.
func (s *InMemoryStateClient) GetState(_ context.Context, actorType, actorID, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.failGet != nil {
		return nil, false, errors.NewStateStoreError("get", key, s.failGet)
	}

	value, ok := s.states[storeKey(actorType, actorID)][key]
	if !ok {
		return nil, false, nil
	}
	return value, true, nil
}

// SaveState applies the change batch atomically: either every upsert and
// delete lands or, when failure injection is armed, none do.
func (s *InMemoryStateClient) SaveState(_ context.Context, actorType, actorID string, changes []client.StateChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.saveCalls.Inc()
	if s.failSave != nil {
		return errors.NewStateStoreError("save", storeKey(actorType, actorID), s.failSave)
	}

	bucket, ok := s.states[storeKey(actorType, actorID)]
	if !ok {
		bucket = make(map[string][]byte)
		s.states[storeKey(actorType, actorID)] = bucket
	}

	for _, change := range changes {
		switch change.Operation {
		case client.OperationUpsert:
			bucket[change.Key] = change.Value
		case client.OperationDelete:
			delete(bucket, change.Key)
		default:
			return errors.NewStateStoreError("save", change.Key, fmt.Errorf("unknown operation %q", change.Operation))
		}
	}
	return nil
}

// RegisterReminder stores the reminder definition.
func (s *InMemoryStateClient) RegisterReminder(_ context.Context, actorType, actorID string, reminder client.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.reminders[storeKey(actorType, actorID)]
	if !ok {
		bucket = make(map[string]client.Reminder)
		s.reminders[storeKey(actorType, actorID)] = bucket
	}
	bucket[reminder.Name] = reminder
	return nil
}

// UnregisterReminder removes the reminder definition.
func (s *InMemoryStateClient) UnregisterReminder(_ context.Context, actorType, actorID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.reminders[storeKey(actorType, actorID)], name)
	return nil
}

// State returns the stored value of the given key, for assertions.
func (s *InMemoryStateClient) State(actorType, actorID, key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.states[storeKey(actorType, actorID)][key]
	return value, ok
}

// Reminder returns the stored reminder definition, for assertions.
func (s *InMemoryStateClient) Reminder(actorType, actorID, name string) (client.Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reminder, ok := s.reminders[storeKey(actorType, actorID)][name]
	return reminder, ok
}

// SaveCalls returns how many times SaveState was called, failed attempts
// included.
func (s *InMemoryStateClient) SaveCalls() int64 {
	return s.saveCalls.Load()
}

// FailSaves arms save failure injection; pass nil to disarm.
func (s *InMemoryStateClient) FailSaves(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failSave = err
}

// FailGets arms read failure injection; pass nil to disarm.
func (s *InMemoryStateClient) FailGets(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failGet = err
}
