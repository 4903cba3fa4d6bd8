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
	"encoding/binary"
	"math"

	"go.uber.org/rpcwire/rpcwireerrors"
)

// HeaderSize is the size of the frame header: one flags byte and a four
// byte big-endian payload length.
const HeaderSize = 5

const _maxPayloadSize = math.MaxUint32

// MarshalFunc converts an application message into its byte form.
type MarshalFunc func(msg interface{}) ([]byte, error)

// UnmarshalFunc converts a payload back into an application message.
type UnmarshalFunc func(payload []byte) (interface{}, error)

// Encode frames a single message. If marshal is nil, msg must be a []byte
// (or nil) and is framed untransformed.
func Encode(msg interface{}, marshal MarshalFunc) ([]byte, error) {
	payload, err := marshalPayload(msg, marshal)
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) > _maxPayloadSize {
		return nil, rpcwireerrors.OutOfRangeErrorf("message payload of %d bytes does not fit in a frame", len(payload))
	}
	frame := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(frame[1:HeaderSize], uint32(len(payload)))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// Decode decodes a single complete frame. If unmarshal is nil the raw
// payload bytes are returned.
//
// Buffers shorter than HeaderSize and frames whose length field disagrees
// with the actual payload size fail with an out-of-range error. Frames with
// a non-zero flags byte are rejected: no compression scheme is defined here.
func Decode(frame []byte, unmarshal UnmarshalFunc) (interface{}, error) {
	if len(frame) < HeaderSize {
		return nil, rpcwireerrors.OutOfRangeErrorf("frame of %d bytes is shorter than the %d byte header", len(frame), HeaderSize)
	}
	if frame[0] != 0 {
		return nil, rpcwireerrors.UnimplementedErrorf("compressed frame (flags 0x%02x) is not supported", frame[0])
	}
	length := binary.BigEndian.Uint32(frame[1:HeaderSize])
	payload := frame[HeaderSize:]
	if uint64(len(payload)) != uint64(length) {
		return nil, rpcwireerrors.OutOfRangeErrorf("frame header declares %d payload bytes but %d are present", length, len(payload))
	}
	return unmarshalPayload(payload, unmarshal)
}

func marshalPayload(msg interface{}, marshal MarshalFunc) ([]byte, error) {
	if marshal == nil {
		switch payload := msg.(type) {
		case nil:
			return nil, nil
		case []byte:
			return payload, nil
		default:
			return nil, rpcwireerrors.InvalidArgumentErrorf("route declares no marshaller: expected []byte message, got %T", msg)
		}
	}
	return marshal(msg)
}

func unmarshalPayload(payload []byte, unmarshal UnmarshalFunc) (interface{}, error) {
	if unmarshal == nil {
		return payload, nil
	}
	return unmarshal(payload)
}
