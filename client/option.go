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
	"net/http"
	"time"

	"github.com/sidereal-io/sidereal/log"
)

// HTTPOption configures the sidecar HTTP client.
type HTTPOption func(*HTTP)

// WithTimeout sets the per-request timeout. The default is 30s.
func WithTimeout(timeout time.Duration) HTTPOption {
	return func(c *HTTP) {
		c.resty.SetTimeout(timeout)
	}
}

// WithMaxRetries sets how many attempts a request gets before the transport
// error is surfaced. A value of 1 disables retrying. The default is 3.
func WithMaxRetries(maxRetries int) HTTPOption {
	return func(c *HTTP) {
		c.maxRetries = maxRetries
	}
}

// WithLogger sets the logger used by the client. The default is
// log.DefaultLogger.
func WithLogger(logger log.Logger) HTTPOption {
	return func(c *HTTP) {
		c.logger = logger
	}
}

// WithTransport replaces the underlying HTTP transport. Mainly useful for
// unix-socket sidecars and tests.
func WithTransport(transport http.RoundTripper) HTTPOption {
	return func(c *HTTP) {
		c.resty.SetTransport(transport)
	}
}
