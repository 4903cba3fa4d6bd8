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
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/rpcwire/rpcwireerrors"
	"google.golang.org/grpc/metadata"
)

func TestEncodeBinValue(t *testing.T) {
	key, value := EncodeBinValue("token", []byte{0, 1, 2})
	assert.Equal(t, "token-bin", key)
	assert.Equal(t, "AAEC", value)
}

func TestEncodeBinString(t *testing.T) {
	tests := []struct {
		msg       string
		key       string
		value     string
		wantKey   string
		wantValue string
	}{
		{"ascii passes through", "x-auth", "bearer abc", "x-auth", "bearer abc"},
		{"empty passes through", "x-auth", "", "x-auth", ""},
		{"non-ascii is encoded", "greet", "héllo", "greet-bin", base64.StdEncoding.EncodeToString([]byte("héllo"))},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			key, value := EncodeBinString(tt.key, tt.value)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}

func TestEncodeBinStrings(t *testing.T) {
	tests := []struct {
		msg        string
		key        string
		values     []string
		wantKey    string
		wantValues []string
	}{
		{
			msg:        "all ascii passes through",
			key:        "accept",
			values:     []string{"json", "proto"},
			wantKey:    "accept",
			wantValues: []string{"json", "proto"},
		},
		{
			msg:     "one non-ascii element encodes all",
			key:     "names",
			values:  []string{"plain", "héllo"},
			wantKey: "names-bin",
			wantValues: []string{
				base64.StdEncoding.EncodeToString([]byte("plain")),
				base64.StdEncoding.EncodeToString([]byte("héllo")),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			key, values := EncodeBinStrings(tt.key, tt.values)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValues, values)
		})
	}
}

func TestDecodeBinValue(t *testing.T) {
	key, value := EncodeBinValue("token", []byte{0, 1, 2})
	gotKey, gotValue, err := DecodeBinValue(key, value)
	require.NoError(t, err)
	assert.Equal(t, "token", gotKey)
	assert.Equal(t, []byte{0, 1, 2}, gotValue)
}

func TestDecodeBinValuePassthrough(t *testing.T) {
	key, value, err := DecodeBinValue("x-auth", "bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "x-auth", key)
	assert.Equal(t, []byte("bearer abc"), value)
}

func TestDecodeBinValueInvalidBase64(t *testing.T) {
	_, _, err := DecodeBinValue("token-bin", "not base64!!!")
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsInvalidArgument(err))
}

func TestDecodeBinValues(t *testing.T) {
	key, values := EncodeBinStrings("names", []string{"plain", "héllo"})
	gotKey, gotValues, err := DecodeBinValues(key, values)
	require.NoError(t, err)
	assert.Equal(t, "names", gotKey)
	assert.Equal(t, [][]byte{[]byte("plain"), []byte("héllo")}, gotValues)
}

func TestDecodeBinValuesInvalidBase64(t *testing.T) {
	_, _, err := DecodeBinValues("names-bin", []string{"AAEC", "!!"})
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsInvalidArgument(err))
}

func TestEncodeDecodeMD(t *testing.T) {
	md := metadata.MD{
		"x-auth": {"bearer abc"},
		"greet":  {"héllo"},
		"token":  {string([]byte{0xFF, 0xFE})},
	}

	encoded := EncodeMD(md)
	assert.Equal(t, metadata.MD{
		"x-auth":    {"bearer abc"},
		"greet-bin": {base64.StdEncoding.EncodeToString([]byte("héllo"))},
		"token-bin": {base64.StdEncoding.EncodeToString([]byte{0xFF, 0xFE})},
	}, encoded)

	decoded, err := DecodeMD(encoded)
	require.NoError(t, err)
	assert.Equal(t, md, decoded)
}

func TestDecodeMDCombinesErrors(t *testing.T) {
	_, err := DecodeMD(metadata.MD{
		"a-bin": {"!!"},
		"b-bin": {"??"},
		"plain": {"ok"},
	})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestMDCarrier(t *testing.T) {
	md := metadata.MD{}
	carrier := MDCarrier(md)
	carrier.Set("Trace-ID", "abc")
	assert.Equal(t, metadata.MD{"trace-id": {"abc"}}, md)

	seen := map[string]string{}
	err := carrier.ForeachKey(func(key, value string) error {
		seen[key] = value
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"trace-id": "abc"}, seen)

	var _ opentracing.TextMapReader = carrier
	var _ opentracing.TextMapWriter = carrier
}
