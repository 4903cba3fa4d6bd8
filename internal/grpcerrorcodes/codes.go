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

// Package grpcerrorcodes translates between rpcwire error codes and native
// gRPC status codes for hosts that emit gRPC trailers.
//
// Both enums follow the gRPC numbering, 0 through 16, so translation is a
// bounds-checked conversion rather than a lookup table.
package grpcerrorcodes

import (
	"go.uber.org/rpcwire/rpcwireerrors"
	"google.golang.org/grpc/codes"
)

// ToGRPCCode returns the gRPC status code with the same meaning as c.
// Values outside the shared numbering map to codes.Unknown rather than
// leaking an unassigned number into trailers.
func ToGRPCCode(c rpcwireerrors.Code) codes.Code {
	if c < rpcwireerrors.CodeOK || c > rpcwireerrors.CodeUnauthenticated {
		return codes.Unknown
	}
	return codes.Code(c)
}

// FromGRPCCode returns the rpcwire code with the same meaning as c, or
// CodeUnknown for values outside the shared numbering.
func FromGRPCCode(c codes.Code) rpcwireerrors.Code {
	if c > codes.Unauthenticated {
		return rpcwireerrors.CodeUnknown
	}
	return rpcwireerrors.Code(c)
}
