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

package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/rpcwire/rpcwireerrors"
)

func TestEncodeEmptyPayload(t *testing.T) {
	frame, err := Encode(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, frame)
}

func TestEncodeRawPayload(t *testing.T) {
	frame, err := Encode([]byte{1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 3, 1, 2, 3}, frame)
}

func TestEncodeWithMarshaller(t *testing.T) {
	marshal := func(msg interface{}) ([]byte, error) {
		return []byte(strings.ToUpper(msg.(string))), nil
	}
	frame, err := Encode("abc", marshal)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0, 3, 'A', 'B', 'C'}, frame)
}

func TestEncodeMarshalError(t *testing.T) {
	marshal := func(msg interface{}) ([]byte, error) {
		return nil, rpcwireerrors.InvalidArgumentErrorf("bad message")
	}
	_, err := Encode("abc", marshal)
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsInvalidArgument(err))
}

func TestEncodeRejectsNonBytesWithoutMarshaller(t *testing.T) {
	_, err := Encode(42, nil)
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "int")
}

func TestDecodeEmptyPayload(t *testing.T) {
	msg, err := Decode([]byte{0, 0, 0, 0, 0}, nil)
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestDecodeRawPayload(t *testing.T) {
	msg, err := Decode([]byte{0, 0, 0, 0, 3, 1, 2, 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, msg)
}

func TestDecodeShortFrame(t *testing.T) {
	for _, size := range []int{0, 1, 4} {
		_, err := Decode(make([]byte, size), nil)
		require.Error(t, err, "size %d", size)
		assert.True(t, rpcwireerrors.IsOutOfRange(err), "size %d", size)
	}
}

func TestDecodeLengthMismatch(t *testing.T) {
	tests := []struct {
		msg   string
		frame []byte
	}{
		{"declared longer than present", []byte{0, 0, 0, 0, 4, 1, 2, 3}},
		{"declared shorter than present", []byte{0, 0, 0, 0, 2, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			_, err := Decode(tt.frame, nil)
			require.Error(t, err)
			assert.True(t, rpcwireerrors.IsOutOfRange(err))
		})
	}
}

func TestDecodeRejectsCompressedFrame(t *testing.T) {
	_, err := Decode([]byte{1, 0, 0, 0, 0}, nil)
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsUnimplemented(err))
}

func TestDecodeWithUnmarshaller(t *testing.T) {
	unmarshal := func(payload []byte) (interface{}, error) {
		return string(payload), nil
	}
	msg, err := Decode([]byte{0, 0, 0, 0, 2, 'h', 'i'}, unmarshal)
	require.NoError(t, err)
	assert.Equal(t, "hi", msg)
}

func TestDecodeUnmarshalError(t *testing.T) {
	unmarshal := func(payload []byte) (interface{}, error) {
		return nil, rpcwireerrors.InvalidArgumentErrorf("bad payload")
	}
	_, err := Decode([]byte{0, 0, 0, 0, 1, 1}, unmarshal)
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsInvalidArgument(err))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		nil,
		{},
		{0},
		{1, 2, 3},
		[]byte(strings.Repeat("x", 1<<16)),
	}
	for _, payload := range payloads {
		frame, err := Encode(payload, nil)
		require.NoError(t, err)
		require.Len(t, frame, HeaderSize+len(payload))

		msg, err := Decode(frame, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte(payload), msg)
	}
}
