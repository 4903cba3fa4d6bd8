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
	"io"

	"go.uber.org/rpcwire/internal/bufferpool"
	"go.uber.org/rpcwire/rpcwireerrors"
)

const _readChunkSize = 4096

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxMessageSize caps the payload size the Reader will accept. Frames
// declaring a larger payload fail with a resource-exhausted error. Zero
// means no limit.
func WithMaxMessageSize(n uint32) ReaderOption {
	return func(r *Reader) {
		r.maxMessageSize = n
	}
}

// Reader reassembles framed messages from an io.Reader whose reads may
// split or merge frames arbitrarily.
//
// The first error is sticky: once a frame is malformed or the unmarshaller
// fails, every later Next returns that same error.
type Reader struct {
	r              io.Reader
	unmarshal      UnmarshalFunc
	buf            *bufferpool.Buffer
	scratch        []byte
	err            error
	maxMessageSize uint32
	srcEOF         bool
}

// NewReader builds a Reader that reassembles frames from r. If unmarshal is
// nil, Next returns the raw payload bytes of each frame.
func NewReader(r io.Reader, unmarshal UnmarshalFunc, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:         r,
		unmarshal: unmarshal,
		buf:       bufferpool.Get(),
		scratch:   make([]byte, _readChunkSize),
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// SetUnmarshaller swaps the unmarshaller used for subsequent messages.
// Messages already returned are unaffected.
func (r *Reader) SetUnmarshaller(unmarshal UnmarshalFunc) {
	r.unmarshal = unmarshal
}

// Next returns the next complete message, reading more of the stream as
// needed. It returns io.EOF once the stream ends exactly on a frame
// boundary, and an error with CodeInternal if the stream ends with a
// partial frame buffered.
func (r *Reader) Next() (interface{}, error) {
	if r.err != nil {
		return nil, r.err
	}
	for {
		msg, ok, err := r.takeFrame()
		if err != nil {
			return nil, r.fail(err)
		}
		if ok {
			return msg, nil
		}
		if r.srcEOF {
			if r.buf.Len() == 0 {
				return nil, r.fail(io.EOF)
			}
			return nil, r.fail(rpcwireerrors.InternalErrorf("stream ended with a partial frame of %d bytes buffered", r.buf.Len()))
		}
		n, err := r.r.Read(r.scratch)
		if n > 0 {
			r.buf.Write(r.scratch[:n])
		}
		if err == io.EOF {
			r.srcEOF = true
		} else if err != nil {
			return nil, r.fail(err)
		}
	}
}

// takeFrame consumes one complete frame from the buffer if one is present.
func (r *Reader) takeFrame() (interface{}, bool, error) {
	buffered := r.buf.Bytes()
	if len(buffered) < HeaderSize {
		return nil, false, nil
	}
	if buffered[0] != 0 {
		return nil, false, rpcwireerrors.UnimplementedErrorf("compressed frame (flags 0x%02x) is not supported", buffered[0])
	}
	length := binary.BigEndian.Uint32(buffered[1:HeaderSize])
	if r.maxMessageSize != 0 && length > r.maxMessageSize {
		return nil, false, rpcwireerrors.ResourceExhaustedErrorf("frame declares a %d byte payload, larger than the %d byte limit", length, r.maxMessageSize)
	}
	if uint64(len(buffered)) < HeaderSize+uint64(length) {
		return nil, false, nil
	}
	r.buf.Next(HeaderSize)
	// The pooled buffer is reused across frames, so the payload must be
	// copied out before it is handed to the caller.
	payload := make([]byte, length)
	copy(payload, r.buf.Next(int(length)))
	msg, err := unmarshalPayload(payload, r.unmarshal)
	if err != nil {
		return nil, false, err
	}
	return msg, true, nil
}

func (r *Reader) fail(err error) error {
	r.err = err
	if r.buf != nil {
		r.buf.Release()
		r.buf = nil
	}
	return err
}

// Close releases the reader's buffer. Later calls to Next fail with a
// cancelled error. Close does not close the underlying reader.
func (r *Reader) Close() error {
	if r.err == nil {
		r.err = rpcwireerrors.CancelledErrorf("frame reader is closed")
	}
	if r.buf != nil {
		r.buf.Release()
		r.buf = nil
	}
	return nil
}
