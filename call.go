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

package rpcwire

import (
	"context"

	"go.uber.org/rpcwire/header"
	"go.uber.org/rpcwire/wire"
	"google.golang.org/grpc/metadata"
)

// Handler processes one inbound call. The context carries the deadline
// decoded from the timeout header, if any.
type Handler func(ctx context.Context, call *ServerCall) error

// ServerCall is the per-stream view a handler receives: the route, the
// decoded application headers, and the framed message stream. Recv and
// Send cover both unary calls (one message each way) and streaming calls.
//
// A ServerCall belongs to a single stream and is not safe for concurrent
// use.
type ServerCall struct {
	route      string
	headers    metadata.MD
	reader     *wire.Reader
	writer     *wire.Writer
	resHeaders metadata.MD
}

// Route returns the "/service/method" string the call was dispatched on.
func (c *ServerCall) Route() string { return c.route }

// Headers returns the inbound application metadata with "-bin" values
// already decoded.
func (c *ServerCall) Headers() metadata.MD { return c.headers }

// Recv returns the next inbound message, decoded with the route's
// unmarshaller. It returns io.EOF when the peer finishes cleanly.
func (c *ServerCall) Recv() (interface{}, error) {
	return c.reader.Next()
}

// Send frames one outbound message with the route's marshaller.
func (c *ServerCall) Send(msg interface{}) error {
	return c.writer.Write(msg)
}

// SetResponseHeader stages a response header, applying the "-bin"
// convention for non-ASCII values.
func (c *ServerCall) SetResponseHeader(key, value string) {
	if c.resHeaders == nil {
		c.resHeaders = metadata.MD{}
	}
	k, v := header.EncodeBinString(key, value)
	c.resHeaders[k] = append(c.resHeaders[k], v)
}

// ResponseHeaders returns the staged response headers in wire form.
func (c *ServerCall) ResponseHeaders() metadata.MD {
	return c.resHeaders
}
