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
	"strings"
	"time"
)

// TimerDefinition describes a transient scheduled invocation. Timers live
// only in process memory for as long as their instance is active: they are
// canceled on deactivation and never persisted. Use a reminder when the
// schedule must survive deactivation.
//
// A Period of zero means the timer fires once at DueTime and is then done.
type TimerDefinition struct {
	// Name identifies the timer, unique per actor instance.
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

// timerKey builds the scheduler key of a timer. Timers are scoped per
// instance so the key embeds the full actor identity.
func timerKey(actorType, actorID, name string) string {
	return strings.Join([]string{actorType, actorID, name}, "/")
}
