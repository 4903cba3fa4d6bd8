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

// Package protobuf adapts protocol buffer messages to the method codec
// callback shape.
package protobuf

import (
	"github.com/golang/protobuf/proto"
	"go.uber.org/rpcwire"
	"go.uber.org/rpcwire/rpcwireerrors"
	"go.uber.org/rpcwire/wire"
)

// Marshaller returns a marshal callback for proto messages.
func Marshaller() wire.MarshalFunc {
	return func(msg interface{}) ([]byte, error) {
		pb, ok := msg.(proto.Message)
		if !ok {
			return nil, rpcwireerrors.InvalidArgumentErrorf("expected a proto.Message, got %T", msg)
		}
		return proto.Marshal(pb)
	}
}

// Unmarshaller returns an unmarshal callback that decodes each payload
// into a fresh message from newMessage.
func Unmarshaller(newMessage func() proto.Message) wire.UnmarshalFunc {
	return func(payload []byte) (interface{}, error) {
		msg := newMessage()
		if err := proto.Unmarshal(payload, msg); err != nil {
			return nil, rpcwireerrors.InvalidArgumentErrorf("cannot decode %T: %v", msg, err)
		}
		return msg, nil
	}
}

// NewMethod builds a method descriptor whose messages are proto encoded.
func NewMethod(name string, newMessage func() proto.Message) rpcwire.Method {
	return rpcwire.NewMethod(name, Marshaller(), Unmarshaller(newMessage))
}
