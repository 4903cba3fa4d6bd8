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
	"go.uber.org/rpcwire/rpcwireerrors"
	"go.uber.org/rpcwire/wire"
)

// Method names one RPC within a service and carries its optional codec
// callbacks. A Method with neither callback is a raw byte-in, byte-out
// route.
type Method struct {
	name      string
	marshal   wire.MarshalFunc
	unmarshal wire.UnmarshalFunc
}

// NewMethod builds a method descriptor. Either callback may be nil.
func NewMethod(name string, marshal wire.MarshalFunc, unmarshal wire.UnmarshalFunc) Method {
	return Method{name: name, marshal: marshal, unmarshal: unmarshal}
}

// Name returns the method name.
func (m Method) Name() string { return m.name }

// Marshaller returns the method's marshal callback, or nil.
func (m Method) Marshaller() wire.MarshalFunc { return m.marshal }

// Unmarshaller returns the method's unmarshal callback, or nil.
func (m Method) Unmarshaller() wire.UnmarshalFunc { return m.unmarshal }

// Service is an immutable group of methods under a common name.
type Service struct {
	name    string
	methods []Method
}

// NewService builds a service descriptor. Method names within a service
// must be unique.
func NewService(name string, methods ...Method) (*Service, error) {
	seen := make(map[string]struct{}, len(methods))
	for _, method := range methods {
		if _, ok := seen[method.name]; ok {
			return nil, rpcwireerrors.AlreadyExistsErrorf("service %q declares method %q more than once", name, method.name)
		}
		seen[method.name] = struct{}{}
	}
	return &Service{name: name, methods: methods}, nil
}

// Name returns the service name.
func (s *Service) Name() string { return s.name }

// Methods returns the service's methods in declaration order.
func (s *Service) Methods() []Method {
	methods := make([]Method, len(s.methods))
	copy(methods, s.methods)
	return methods
}

// Route returns the dispatch route for a service and method pair.
func Route(service, method string) string {
	return "/" + service + "/" + method
}
