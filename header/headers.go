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

package header

import (
	"encoding/base64"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/rpcwire/rpcwireerrors"
	"google.golang.org/grpc/metadata"
)

// BinSuffix marks a metadata key whose value is base64-encoded binary.
const BinSuffix = "-bin"

// TimeoutHeader carries the request deadline in interval form.
const TimeoutHeader = "rpc-timeout"

// EncodeBinValue transforms a binary metadata value: the key gains the
// "-bin" suffix and the value is base64-encoded.
func EncodeBinValue(key string, value []byte) (string, string) {
	return key + BinSuffix, base64.StdEncoding.EncodeToString(value)
}

// EncodeBinString returns the pair unchanged if value is ASCII, and the
// suffixed base64 form otherwise.
func EncodeBinString(key, value string) (string, string) {
	if isASCII(value) {
		return key, value
	}
	return EncodeBinValue(key, []byte(value))
}

// EncodeBinStrings applies the "-bin" convention to a multi-valued header.
// If any element is non-ASCII, every element is base64-encoded and the key
// gains the suffix. Otherwise the pair is returned unchanged.
func EncodeBinStrings(key string, values []string) (string, []string) {
	ascii := true
	for _, value := range values {
		if !isASCII(value) {
			ascii = false
			break
		}
	}
	if ascii {
		return key, values
	}
	encoded := make([]string, len(values))
	for i, value := range values {
		encoded[i] = base64.StdEncoding.EncodeToString([]byte(value))
	}
	return key + BinSuffix, encoded
}

// IsBinKey reports whether the key carries the "-bin" suffix.
func IsBinKey(key string) bool {
	return strings.HasSuffix(key, BinSuffix)
}

// DecodeBinValue inverts EncodeBinValue: it strips the "-bin" suffix and
// base64-decodes the value. Pairs without the suffix pass through with the
// value's raw bytes.
func DecodeBinValue(key, value string) (string, []byte, error) {
	if !IsBinKey(key) {
		return key, []byte(value), nil
	}
	decoded, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return "", nil, rpcwireerrors.InvalidArgumentErrorf("header %q carries invalid base64: %v", key, err)
	}
	return strings.TrimSuffix(key, BinSuffix), decoded, nil
}

// DecodeBinValues inverts EncodeBinStrings for a multi-valued header.
func DecodeBinValues(key string, values []string) (string, [][]byte, error) {
	decoded := make([][]byte, len(values))
	if !IsBinKey(key) {
		for i, value := range values {
			decoded[i] = []byte(value)
		}
		return key, decoded, nil
	}
	for i, value := range values {
		d, err := base64.StdEncoding.DecodeString(value)
		if err != nil {
			return "", nil, rpcwireerrors.InvalidArgumentErrorf("header %q carries invalid base64: %v", key, err)
		}
		decoded[i] = d
	}
	return strings.TrimSuffix(key, BinSuffix), decoded, nil
}

// EncodeMD applies the "-bin" convention to every pair of md, returning a
// new metadata map ready for the wire.
func EncodeMD(md metadata.MD) metadata.MD {
	encoded := make(metadata.MD, len(md))
	for key, values := range md {
		k, vs := EncodeBinStrings(key, values)
		encoded[k] = vs
	}
	return encoded
}

// DecodeMD inverts EncodeMD. Suffixed keys are stripped and their values
// base64-decoded; other pairs pass through. Invalid base64 values are
// reported per key, combined into a single error.
func DecodeMD(md metadata.MD) (metadata.MD, error) {
	decoded := make(metadata.MD, len(md))
	var errs error
	for key, values := range md {
		if !IsBinKey(key) {
			decoded[key] = values
			continue
		}
		plain := make([]string, 0, len(values))
		ok := true
		for _, value := range values {
			d, err := base64.StdEncoding.DecodeString(value)
			if err != nil {
				errs = multierr.Append(errs, rpcwireerrors.InvalidArgumentErrorf("header %q carries invalid base64: %v", key, err))
				ok = false
				break
			}
			plain = append(plain, string(d))
		}
		if ok {
			decoded[strings.TrimSuffix(key, BinSuffix)] = plain
		}
	}
	return decoded, errs
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7F {
			return false
		}
	}
	return true
}
