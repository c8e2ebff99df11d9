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
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// CBOR is a Codec backed by the Concise Binary Object Representation
// (RFC 8949). It produces a more compact wire form than JSON and is a good
// fit for payload-heavy actors. Encoding uses core deterministic options so
// the same value always yields the same bytes.
type CBOR struct {
	encMode cbor.EncMode
	decMode cbor.DecMode
}

// enforce compilation error
var _ Codec = (*CBOR)(nil)

// NewCBOR creates an instance of the CBOR codec
func NewCBOR() (*CBOR, error) {
	encMode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	decMode, err := cbor.DecOptions{}.DecMode()
	if err != nil {
		return nil, err
	}
	return &CBOR{encMode: encMode, decMode: decMode}, nil
}

// Marshal encodes value into its CBOR representation
func (c *CBOR) Marshal(value any) ([]byte, error) {
	return c.encMode.Marshal(value)
}

// Unmarshal decodes CBOR data into the value pointed to by target
func (c *CBOR) Unmarshal(data []byte, target any) error {
	if len(data) == 0 {
		return errors.New("codec: cannot unmarshal empty payload")
	}
	return c.decMode.Unmarshal(data, target)
}

// ContentType returns the CBOR MIME content type
func (*CBOR) ContentType() string {
	return "application/cbor"
}
