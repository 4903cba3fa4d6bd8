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
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/net/metrics"
	"go.uber.org/rpcwire/rpcwireerrors"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
)

// stream pairs an inbound byte sequence with a capture of the outbound
// one.
type stream struct {
	io.Reader
	out bytes.Buffer
}

func newStream(inbound []byte) *stream {
	return &stream{Reader: bytes.NewReader(inbound)}
}

func (s *stream) Write(p []byte) (int, error) {
	return s.out.Write(p)
}

func echoHandler(ctx context.Context, call *ServerCall) error {
	for {
		msg, err := call.Recv()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := call.Send(msg); err != nil {
			return err
		}
	}
}

func newTestDispatcher(t *testing.T, opts ...DispatcherOption) (*Dispatcher, *App) {
	app := newTestApp(t)
	require.NoError(t, app.Register("/basic/noop", noopHandler))
	require.NoError(t, app.Register("/test/do_reverse", echoHandler))
	d, err := NewDispatcher(app, opts...)
	require.NoError(t, err)
	return d, app
}

func TestDispatcherHandleNoop(t *testing.T) {
	d, _ := newTestDispatcher(t)
	rw := newStream([]byte{
		0, 0, 0, 0, 1, 'A',
		0, 0, 0, 0, 2, 'B', 'C',
	})

	require.NoError(t, d.Handle(context.Background(), "/basic/noop", nil, rw))
	assert.Empty(t, rw.out.Bytes(), "noop handler sends nothing")
}

func TestDispatcherHandleEchoWithCodecs(t *testing.T) {
	d, _ := newTestDispatcher(t)
	// Payload "abc" decodes to "cba" via the reversing unmarshaller and
	// re-encodes to "abc" on the way out.
	rw := newStream([]byte{0, 0, 0, 0, 3, 'a', 'b', 'c'})

	require.NoError(t, d.Handle(context.Background(), "/test/do_reverse", nil, rw))
	assert.Equal(t, []byte{0, 0, 0, 0, 3, 'a', 'b', 'c'}, rw.out.Bytes())
}

func TestDispatcherHandleFreezesApp(t *testing.T) {
	d, app := newTestDispatcher(t)
	require.NoError(t, d.Handle(context.Background(), "/basic/noop", nil, newStream(nil)))

	svc, err := NewService("late", NewMethod("m", nil, nil))
	require.NoError(t, err)
	err = app.AddService(svc)
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsFailedPrecondition(err))
}

func TestDispatcherHandleUnknownRoute(t *testing.T) {
	d, _ := newTestDispatcher(t)
	err := d.Handle(context.Background(), "/unknown/route", nil, newStream(nil))
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsUnimplemented(err))
	assert.Equal(t, codes.Unimplemented, GRPCCode(err))
}

func TestDispatcherHandleDecodesBinHeaders(t *testing.T) {
	var got string
	appFresh := newTestApp(t)
	require.NoError(t, appFresh.Register("/basic/noop", func(ctx context.Context, call *ServerCall) error {
		got = call.Headers()["token"][0]
		return nil
	}))
	require.NoError(t, appFresh.Register("/test/do_reverse", echoHandler))
	fresh, err := NewDispatcher(appFresh)
	require.NoError(t, err)

	md := metadata.MD{"token-bin": {"AAEC"}}
	require.NoError(t, fresh.Handle(context.Background(), "/basic/noop", md, newStream(nil)))
	assert.Equal(t, string([]byte{0, 1, 2}), got)
}

func TestDispatcherHandleTimeoutHeader(t *testing.T) {
	appFresh := newTestApp(t)
	var deadline time.Time
	var hasDeadline bool
	require.NoError(t, appFresh.Register("/basic/noop", func(ctx context.Context, call *ServerCall) error {
		deadline, hasDeadline = ctx.Deadline()
		_, ok := call.Headers()["rpc-timeout"]
		assert.False(t, ok, "timeout header is consumed, not surfaced")
		return nil
	}))
	require.NoError(t, appFresh.Register("/test/do_reverse", echoHandler))
	d, err := NewDispatcher(appFresh)
	require.NoError(t, err)

	md := metadata.MD{"rpc-timeout": {"10S"}}
	require.NoError(t, d.Handle(context.Background(), "/basic/noop", md, newStream(nil)))
	require.True(t, hasDeadline)
	assert.WithinDuration(t, time.Now().Add(10*time.Second), deadline, time.Second)
}

func TestDispatcherHandleMalformedTimeout(t *testing.T) {
	d, _ := newTestDispatcher(t)
	md := metadata.MD{"rpc-timeout": {"bogus!"}}
	err := d.Handle(context.Background(), "/basic/noop", md, newStream(nil))
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsOutOfRange(err))
}

func TestDispatcherHandleInvalidBinHeader(t *testing.T) {
	d, _ := newTestDispatcher(t)
	md := metadata.MD{"token-bin": {"!!"}}
	err := d.Handle(context.Background(), "/basic/noop", md, newStream(nil))
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsInvalidArgument(err))
}

func TestDispatcherMetrics(t *testing.T) {
	root := metrics.New()
	d, _ := newTestDispatcher(t, Metrics(root.Scope()), Logger(zap.NewNop()))

	require.NoError(t, d.Handle(context.Background(), "/basic/noop", nil, newStream(nil)))
	require.Error(t, d.Handle(context.Background(), "/unknown/route", nil, newStream(nil)))

	assert.Equal(t, int64(2), d.calls.Load())
	assert.Equal(t, int64(1), d.successes.Load())
	assert.Equal(t, int64(1), d.serverFailures.Load())
}

func TestDispatcherTracing(t *testing.T) {
	tracer := mocktracer.New()
	d, _ := newTestDispatcher(t, Tracer(tracer))

	require.NoError(t, d.Handle(context.Background(), "/basic/noop", nil, newStream(nil)))

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "/basic/noop", spans[0].OperationName)
}

func TestDispatcherStop(t *testing.T) {
	d, _ := newTestDispatcher(t)
	require.NoError(t, d.Start())
	require.NoError(t, d.Stop())

	err := d.Handle(context.Background(), "/basic/noop", nil, newStream(nil))
	require.Error(t, err)
	assert.True(t, rpcwireerrors.IsUnavailable(err))
}

func TestGRPCCode(t *testing.T) {
	assert.Equal(t, codes.OK, GRPCCode(nil))
	assert.Equal(t, codes.NotFound, GRPCCode(rpcwireerrors.NotFoundErrorf("nope")))
	assert.Equal(t, codes.Unknown, GRPCCode(io.ErrUnexpectedEOF))
}
