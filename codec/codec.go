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

// Package codec defines the serialization boundary between user code and the
// actor runtime. The runtime itself treats method payloads and state values
// as opaque byte slices; a Codec is only used at the edges where user values
// enter or leave the system.
package codec

// Codec is the contract for encoding user values into the opaque byte
// payloads the runtime moves around, and back.
//
// A single Codec instance may be called from multiple goroutines
// concurrently. Implementations must be safe for concurrent use without
// external synchronization.
//
// Both methods must return a non-nil error when encoding or decoding fails.
// Returning a nil error alongside a nil value is incorrect and may cause
// silent data loss.
type Codec interface {
	// Marshal encodes value into a byte slice.
	Marshal(value any) ([]byte, error)
	// Unmarshal decodes data into the value pointed to by target.
	Unmarshal(data []byte, target any) error
	// ContentType returns the MIME content type produced by Marshal.
	ContentType() string
}
