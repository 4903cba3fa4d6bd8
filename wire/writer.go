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

// Writer frames messages onto an io.Writer, one frame per message.
//
// The first error is sticky: once a marshal or write fails, every later
// Write returns that same error.
type Writer struct {
	w       io.Writer
	marshal MarshalFunc
	err     error
	closed  bool
}

// NewWriter builds a Writer that frames messages onto w. If marshal is nil
// the Writer accepts only []byte messages.
func NewWriter(w io.Writer, marshal MarshalFunc) *Writer {
	return &Writer{w: w, marshal: marshal}
}

// SetMarshaller swaps the marshaller used for subsequent messages.
// Messages already written are unaffected.
func (w *Writer) SetMarshaller(marshal MarshalFunc) {
	w.marshal = marshal
}

// Write frames a single message onto the underlying writer.
func (w *Writer) Write(msg interface{}) error {
	if w.closed {
		return rpcwireerrors.FailedPreconditionErrorf("write on a closed frame writer")
	}
	if w.err != nil {
		return w.err
	}
	payload, err := marshalPayload(msg, w.marshal)
	if err != nil {
		w.err = err
		return err
	}
	if uint64(len(payload)) > _maxPayloadSize {
		w.err = rpcwireerrors.OutOfRangeErrorf("message payload of %d bytes does not fit in a frame", len(payload))
		return w.err
	}

	buf := bufferpool.Get()
	defer buf.Release()

	var header [HeaderSize]byte
	binary.BigEndian.PutUint32(header[1:], uint32(len(payload)))
	buf.Write(header[:])
	buf.Write(payload)

	if _, err := buf.WriteTo(w.w); err != nil {
		w.err = err
		return err
	}
	return nil
}

// Close marks the writer closed. Later writes fail with a
// failed-precondition error. Close does not close the underlying writer.
func (w *Writer) Close() error {
	w.closed = true
	return nil
}
