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

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/sidereal-io/sidereal/errors"
	"github.com/sidereal-io/sidereal/log"
)

func TestGetState(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/v1.0/actors/Counter/c1/state/count", r.URL.Path)
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			_, _ = w.Write([]byte(`5`))
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		value, found, err := httpClient.GetState(context.TODO(), "Counter", "c1", "count")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, []byte(`5`), value)
	})

	t.Run("not found on 204", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		value, found, err := httpClient.GetState(context.TODO(), "Counter", "c1", "count")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, value)
	})

	t.Run("store failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		_, _, err := httpClient.GetState(context.TODO(), "Counter", "c1", "count")
		require.Error(t, err)

		var storeErr *gerrors.StateStoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "get", storeErr.Op)
		assert.Equal(t, "count", storeErr.Key)
	})
}

func TestSaveState(t *testing.T) {
	t.Run("sends one batch", func(t *testing.T) {
		var received []stateOperation
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1.0/actors/Counter/c1/state", r.URL.Path)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &received))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		changes := []StateChange{
			{Operation: OperationUpsert, Key: "count", Value: []byte(`8`)},
			{Operation: OperationDelete, Key: "stale"},
		}
		require.NoError(t, httpClient.SaveState(context.TODO(), "Counter", "c1", changes))

		require.Len(t, received, 2)
		assert.Equal(t, "upsert", received[0].Operation)
		assert.Equal(t, "count", received[0].Request.Key)
		assert.Equal(t, []byte(`8`), received[0].Request.Value)
		assert.Equal(t, "delete", received[1].Operation)
		assert.Equal(t, "stale", received[1].Request.Key)
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		httpClient := NewHTTP("http://127.0.0.1:0", WithLogger(log.DiscardLogger))
		require.NoError(t, httpClient.SaveState(context.TODO(), "Counter", "c1", nil))
	})

	t.Run("store failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		err := httpClient.SaveState(context.TODO(), "Counter", "c1", []StateChange{
			{Operation: OperationUpsert, Key: "count", Value: []byte(`8`)},
		})

		var storeErr *gerrors.StateStoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "save", storeErr.Op)
	})
}

func TestReminders(t *testing.T) {
	t.Run("register round-trips the envelope", func(t *testing.T) {
		var received reminderRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v1.0/actors/Counter/c1/reminders/r1", r.URL.Path)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &received))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		reminder := Reminder{
			Name:    "r1",
			DueTime: time.Second,
			Period:  10 * time.Second,
			Method:  "Tick",
			Data:    []byte(`{"n":1}`),
		}
		require.NoError(t, httpClient.RegisterReminder(context.TODO(), "Counter", "c1", reminder))

		assert.Equal(t, "1s", received.DueTime)
		assert.Equal(t, "10s", received.Period)

		method, data, err := DecodeReminderPayload(received.Data)
		require.NoError(t, err)
		assert.Equal(t, "Tick", method)
		assert.Equal(t, []byte(`{"n":1}`), data)
	})

	t.Run("unregister", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/v1.0/actors/Counter/c1/reminders/r1", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		require.NoError(t, httpClient.UnregisterReminder(context.TODO(), "Counter", "c1", "r1"))
	})
}

func TestInvokeActor(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1.0/actors/Counter/c1/method/Increment", r.URL.Path)
			body, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"n":5}`), body)
			_, _ = w.Write([]byte(`{"count":5}`))
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		response, err := httpClient.InvokeActor(context.TODO(), "Counter", "c1", "Increment", []byte(`{"n":5}`))
		require.NoError(t, err)
		assert.Equal(t, []byte(`{"count":5}`), response)
	})

	t.Run("remote error carries status and message", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("actor method not found"))
		}))
		defer server.Close()

		httpClient := NewHTTP(server.URL, WithLogger(log.DiscardLogger))
		_, err := httpClient.InvokeActor(context.TODO(), "Counter", "c1", "Missing", nil)

		var invocationErr *gerrors.InvocationError
		require.ErrorAs(t, err, &invocationErr)
		assert.Equal(t, http.StatusNotFound, invocationErr.Code)
		assert.Contains(t, invocationErr.Message, "actor method not found")
	})
}

func TestReminderPayloadDecodeFailure(t *testing.T) {
	_, _, err := DecodeReminderPayload([]byte("not-json"))
	require.Error(t, err)
}
