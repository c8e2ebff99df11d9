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
	"encoding/json"
	"time"
)

// Reminder is a durable scheduled invocation. Unlike timers, reminders are
// persisted by the sidecar's store and survive actor deactivation: firing a
// reminder for a deactivated actor reactivates it.
//
// A Period of zero means the reminder fires once at DueTime and is then done.
type Reminder struct {
	// Name identifies the reminder, unique per actor instance.
	Name string
	// DueTime is the delay before the first fire.
	DueTime time.Duration
	// Period is the interval between subsequent fires. Zero means one-shot.
	Period time.Duration
	// Method is the behavior method the fire invokes.
	Method string
	// Data is the opaque payload handed to the method on each fire.
	Data []byte
}

// reminderEnvelope is the payload stored with the sidecar at registration and
// echoed back verbatim on every fire. Carrying the method binding inside the
// stored payload is what makes the binding itself durable.
type reminderEnvelope struct {
	Callback string `json:"callback"`
	Data     []byte `json:"data,omitempty"`
}

// EncodeReminderPayload builds the opaque payload registered with the sidecar
// for the given reminder. The sidecar echoes it unchanged on every fire.
func EncodeReminderPayload(reminder Reminder) ([]byte, error) {
	return json.Marshal(reminderEnvelope{
		Callback: reminder.Method,
		Data:     reminder.Data,
	})
}

// DecodeReminderPayload extracts the bound method name and the user payload
// from a reminder fire body produced by EncodeReminderPayload.
func DecodeReminderPayload(payload []byte) (method string, data []byte, err error) {
	var envelope reminderEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return "", nil, err
	}
	return envelope.Callback, envelope.Data, nil
}
