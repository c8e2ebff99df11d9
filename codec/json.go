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

package codec

import (
	"encoding/json"
	"errors"
)

// JSON is a Codec backed by encoding/json. It is the default codec of the
// runtime since the sidecar state API speaks JSON.
type JSON struct{}

// enforce compilation error
var _ Codec = (*JSON)(nil)

// NewJSON creates an instance of the JSON codec
func NewJSON() *JSON {
	return &JSON{}
}

// Marshal encodes value into its JSON representation
func (*JSON) Marshal(value any) ([]byte, error) {
	return json.Marshal(value)
}

// Unmarshal decodes JSON data into the value pointed to by target
func (*JSON) Unmarshal(data []byte, target any) error {
	if len(data) == 0 {
		return errors.New("codec: cannot unmarshal empty payload")
	}
	return json.Unmarshal(data, target)
}

// ContentType returns the JSON MIME content type
func (*JSON) ContentType() string {
	return "application/json"
}
