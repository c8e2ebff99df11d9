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
	"fmt"
	"net/http"
	"time"

	"github.com/flowchartsman/retry"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	gerrors "github.com/sidereal-io/sidereal/errors"
	"github.com/sidereal-io/sidereal/log"
)

const (
	saveStatePath          = "/v1.0/actors/{actorType}/{actorID}/state"
	getStatePath           = "/v1.0/actors/{actorType}/{actorID}/state/{key}"
	reminderPath           = "/v1.0/actors/{actorType}/{actorID}/reminders/{name}"
	invokePath             = "/v1.0/actors/{actorType}/{actorID}/method/{method}"
	requestIDHeader        = "X-Request-ID"
	defaultRequestTimeout  = 30 * time.Second
	defaultMaxRetries      = 3
	defaultMinRetryBackoff = 50 * time.Millisecond
	defaultMaxRetryBackoff = time.Second
)

// stateOperation is the wire form of one StateChange within a batch request.
type stateOperation struct {
	Operation string                `json:"operation"`
	Request   stateOperationRequest `json:"request"`
}

type stateOperationRequest struct {
	Key   string `json:"key"`
	Value []byte `json:"value,omitempty"`
}

// reminderRequest is the wire form of a reminder registration.
type reminderRequest struct {
	DueTime string `json:"dueTime"`
	Period  string `json:"period,omitempty"`
	Data    []byte `json:"data,omitempty"`
}

// HTTP is the REST binding of the sidecar collaborator interfaces. The same
// value implements both StateClient and InvocationClient so a single
// connection pool serves state commits, reminder registrations and proxy
// invocations.
//
// Transient transport failures are retried with exponential backoff; HTTP
// error statuses are not retried since the sidecar already owns retry
// semantics for its own downstream stores.
type HTTP struct {
	resty      *resty.Client
	logger     log.Logger
	maxRetries int
}

// enforce compilation error
var _ StateClient = (*HTTP)(nil)
var _ InvocationClient = (*HTTP)(nil)

// NewHTTP creates a sidecar client targeting the given base URL,
// e.g. http://127.0.0.1:3500.
func NewHTTP(baseURL string, opts ...HTTPOption) *HTTP {
	httpClient := &HTTP{
		resty:      resty.New(),
		logger:     log.DefaultLogger,
		maxRetries: defaultMaxRetries,
	}

	httpClient.resty.
		SetBaseURL(baseURL).
		SetTimeout(defaultRequestTimeout).
		SetHeader("Content-Type", "application/json")

	for _, opt := range opts {
		opt(httpClient)
	}

	return httpClient
}

// GetState fetches the value of a single state key from the sidecar store.
// A 204 or 404 response means the key does not exist.
func (c *HTTP) GetState(ctx context.Context, actorType, actorID, key string) ([]byte, bool, error) {
	var response *resty.Response
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		response, err = c.request(ctx).
			SetPathParams(map[string]string{
				"actorType": actorType,
				"actorID":   actorID,
				"key":       key,
			}).
			Get(getStatePath)
		return err
	})
	if err != nil {
		return nil, false, gerrors.NewStateStoreError("get", key, err)
	}

	switch response.StatusCode() {
	case http.StatusOK:
		return response.Body(), true, nil
	case http.StatusNoContent, http.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, gerrors.NewStateStoreError("get", key, statusError(response))
	}
}

// SaveState commits the given changes as one all-or-nothing batch.
func (c *HTTP) SaveState(ctx context.Context, actorType, actorID string, changes []StateChange) error {
	if len(changes) == 0 {
		return nil
	}

	operations := make([]stateOperation, 0, len(changes))
	for _, change := range changes {
		operations = append(operations, stateOperation{
			Operation: string(change.Operation),
			Request: stateOperationRequest{
				Key:   change.Key,
				Value: change.Value,
			},
		})
	}

	var response *resty.Response
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		response, err = c.request(ctx).
			SetPathParams(map[string]string{
				"actorType": actorType,
				"actorID":   actorID,
			}).
			SetBody(operations).
			Post(saveStatePath)
		return err
	})
	if err != nil {
		return gerrors.NewStateStoreError("save", "", err)
	}

	if response.IsError() {
		return gerrors.NewStateStoreError("save", "", statusError(response))
	}
	return nil
}

// RegisterReminder persists a durable reminder definition with the sidecar.
func (c *HTTP) RegisterReminder(ctx context.Context, actorType, actorID string, reminder Reminder) error {
	payload, err := EncodeReminderPayload(reminder)
	if err != nil {
		return gerrors.NewStateStoreError("register-reminder", reminder.Name, err)
	}

	body := reminderRequest{
		DueTime: reminder.DueTime.String(),
		Data:    payload,
	}
	if reminder.Period > 0 {
		body.Period = reminder.Period.String()
	}

	var response *resty.Response
	err = c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		response, err = c.request(ctx).
			SetPathParams(map[string]string{
				"actorType": actorType,
				"actorID":   actorID,
				"name":      reminder.Name,
			}).
			SetBody(body).
			Post(reminderPath)
		return err
	})
	if err != nil {
		return gerrors.NewStateStoreError("register-reminder", reminder.Name, err)
	}

	if response.IsError() {
		return gerrors.NewStateStoreError("register-reminder", reminder.Name, statusError(response))
	}
	return nil
}

// UnregisterReminder removes a durable reminder definition from the sidecar.
func (c *HTTP) UnregisterReminder(ctx context.Context, actorType, actorID, name string) error {
	var response *resty.Response
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		response, err = c.request(ctx).
			SetPathParams(map[string]string{
				"actorType": actorType,
				"actorID":   actorID,
				"name":      name,
			}).
			Delete(reminderPath)
		return err
	})
	if err != nil {
		return gerrors.NewStateStoreError("unregister-reminder", name, err)
	}

	if response.IsError() {
		return gerrors.NewStateStoreError("unregister-reminder", name, statusError(response))
	}
	return nil
}

// InvokeActor invokes the named method on the given actor through the sidecar
// and returns the raw response payload.
func (c *HTTP) InvokeActor(ctx context.Context, actorType, actorID, method string, payload []byte) ([]byte, error) {
	var response *resty.Response
	err := c.withRetry(ctx, func(ctx context.Context) error {
		var err error
		request := c.request(ctx).
			SetPathParams(map[string]string{
				"actorType": actorType,
				"actorID":   actorID,
				"method":    method,
			})
		if len(payload) > 0 {
			request = request.SetBody(payload)
		}
		response, err = request.Post(invokePath)
		return err
	})
	if err != nil {
		return nil, gerrors.NewInvocationError(0, err.Error())
	}

	if response.IsError() {
		return nil, gerrors.NewInvocationError(response.StatusCode(), string(response.Body()))
	}
	return response.Body(), nil
}

func (c *HTTP) request(ctx context.Context) *resty.Request {
	return c.resty.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, uuid.NewString())
}

// withRetry runs fn with exponential backoff for transport-level failures.
// A fresh retrier is built per call: retriers track attempt state and cannot
// be shared.
func (c *HTTP) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	if c.maxRetries <= 1 {
		return fn(ctx)
	}
	retrier := retry.NewRetrier(c.maxRetries, defaultMinRetryBackoff, defaultMaxRetryBackoff)
	return retrier.RunContext(ctx, fn)
}

func statusError(response *resty.Response) error {
	return fmt.Errorf("sidecar returned status=%d body=%s", response.StatusCode(), string(response.Body()))
}
