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

// Package rpcwire is the protocol core of an RPC system: length-prefixed
// message framing, metadata conventions, and a route registry mapping
// "/service/method" strings to codec callbacks and handlers.
//
// An application declares its surface with NewMethod and NewService, loads
// the services into an App, and registers a handler per route. The first
// serve freezes the App; from then on registry reads are safe from any
// goroutine and mutation fails. A Dispatcher drives one inbound stream at
// a time through the registry: it resolves the route, decodes metadata and
// the deadline header, and hands a ServerCall to the handler.
//
// The wire format and header conventions live in the wire and header
// subpackages. Errors throughout carry rpcwireerrors codes.
package rpcwire
