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

// Package bufferpool pools the byte queues the framing codecs use for
// frame assembly and stream reassembly.
package bufferpool

import (
	"io"
	"sync"
)

// Buffers above this capacity are discarded on release so a single
// oversized frame does not pin its allocation in the pool forever.
const _maxRetainedCapacity = 1 << 20

var _pool = sync.Pool{
	New: func() interface{} { return &Buffer{} },
}

// Buffer is a pooled byte queue: Write appends at the tail, Next and
// WriteTo consume from the head. Not safe for concurrent use.
type Buffer struct {
	data []byte
	off  int
}

// Get returns an empty Buffer from the shared pool.
func Get() *Buffer {
	return _pool.Get().(*Buffer)
}

// Release empties the buffer and returns it to the shared pool; a buffer
// whose capacity exceeds the retention cap is dropped instead. The buffer
// must not be used afterwards.
func (b *Buffer) Release() {
	if cap(b.data) > _maxRetainedCapacity {
		return
	}
	b.data = b.data[:0]
	b.off = 0
	_pool.Put(b)
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return len(b.data) - b.off
}

// Bytes returns the unconsumed bytes. The slice is only valid until the
// next buffer operation.
func (b *Buffer) Bytes() []byte {
	return b.data[b.off:]
}

// Write appends p after dropping the consumed prefix, so the buffer grows
// with the largest pending frame rather than the whole stream.
func (b *Buffer) Write(p []byte) (int, error) {
	b.compact()
	b.data = append(b.data, p...)
	return len(p), nil
}

// Next consumes and returns the next n bytes, or everything that remains
// if fewer are buffered. The slice is only valid until the next buffer
// operation.
func (b *Buffer) Next(n int) []byte {
	if n > b.Len() {
		n = b.Len()
	}
	p := b.data[b.off : b.off+n]
	b.off += n
	return p
}

// WriteTo drains the unconsumed bytes into w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	b.off += n
	return int64(n), err
}

func (b *Buffer) compact() {
	switch {
	case b.off == 0:
	case b.off == len(b.data):
		b.data = b.data[:0]
		b.off = 0
	default:
		n := copy(b.data, b.data[b.off:])
		b.data = b.data[:n]
		b.off = 0
	}
}
