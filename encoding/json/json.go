// Copyright (c) 2025 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package json adapts JSON values to the method codec callback shape.
package json

import (
	"encoding/json"

	"go.uber.org/rpcwire"
	"go.uber.org/rpcwire/rpcwireerrors"
	"go.uber.org/rpcwire/wire"
)

// Marshaller returns a marshal callback that JSON-encodes messages.
func Marshaller() wire.MarshalFunc {
	return func(msg interface{}) ([]byte, error) {
		payload, err := json.Marshal(msg)
		if err != nil {
			return nil, rpcwireerrors.InvalidArgumentErrorf("cannot encode %T: %v", msg, err)
		}
		return payload, nil
	}
}

// Unmarshaller returns an unmarshal callback that decodes each payload
// into a fresh value from newValue, which must return a pointer.
func Unmarshaller(newValue func() interface{}) wire.UnmarshalFunc {
	return func(payload []byte) (interface{}, error) {
		value := newValue()
		if err := json.Unmarshal(payload, value); err != nil {
			return nil, rpcwireerrors.InvalidArgumentErrorf("cannot decode %T: %v", value, err)
		}
		return value, nil
	}
}

// NewMethod builds a method descriptor whose messages are JSON encoded.
func NewMethod(name string, newValue func() interface{}) rpcwire.Method {
	return rpcwire.NewMethod(name, Marshaller(), Unmarshaller(newValue))
}
