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

package errors

import "errors"

// CodeOf maps a runtime error to a transport-agnostic status code so that an
// external request-routing layer can build its response without importing the
// runtime internals. The codes follow HTTP semantics: 200 for nil, 404 for
// addressing failures, 409 for registration and activation conflicts, 408 for
// drain timeouts and 500 for everything else.
func CodeOf(err error) int {
	switch {
	case err == nil:
		return 200
	case errors.Is(err, ErrUnknownActorType),
		errors.Is(err, ErrActorNotActive),
		errors.Is(err, ErrMethodNotFound),
		errors.Is(err, ErrTimerNotFound):
		return 404
	case errors.Is(err, ErrDuplicateActorType),
		errors.Is(err, ErrActorAlreadyActive):
		return 409
	default:
		var drain *DrainTimeoutError
		if errors.As(err, &drain) {
			return 408
		}
		var invocation *InvocationError
		if errors.As(err, &invocation) && invocation.Code > 0 {
			return invocation.Code
		}
		return 500
	}
}
