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
	"context"
	"io"
	"time"

	"github.com/opentracing/opentracing-go"
	"go.uber.org/multierr"
	"go.uber.org/net/metrics"
	"go.uber.org/rpcwire/header"
	"go.uber.org/rpcwire/internal/grpcerrorcodes"
	"go.uber.org/rpcwire/pkg/lifecycle"
	"go.uber.org/rpcwire/rpcwireerrors"
	"go.uber.org/rpcwire/wire"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
)

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// Logger sets the logger. The default discards everything.
func Logger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// Metrics sets the scope the dispatcher registers its call counters under.
func Metrics(scope *metrics.Scope) DispatcherOption {
	return func(d *Dispatcher) {
		d.scope = scope
	}
}

// Tracer sets the tracer used to continue spans from inbound metadata.
func Tracer(tracer opentracing.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		d.tracer = tracer
	}
}

// DefaultTimeout bounds calls that carry no timeout header. Zero means no
// bound.
func DefaultTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		d.defaultTimeout = timeout
	}
}

// MaxFrameSize caps inbound message payloads. Zero means no cap.
func MaxFrameSize(size uint32) DispatcherOption {
	return func(d *Dispatcher) {
		d.maxFrameSize = size
	}
}

// Dispatcher drives inbound streams through an App: it resolves the route,
// decodes metadata and the deadline header, and runs the registered
// handler with the route's codec callbacks wired into the stream.
type Dispatcher struct {
	app            *App
	once           *lifecycle.Once
	logger         *zap.Logger
	tracer         opentracing.Tracer
	scope          *metrics.Scope
	defaultTimeout time.Duration
	maxFrameSize   uint32

	calls          *metrics.Counter
	successes      *metrics.Counter
	serverFailures *metrics.Counter
}

// NewDispatcher builds a Dispatcher over app.
func NewDispatcher(app *App, opts ...DispatcherOption) (*Dispatcher, error) {
	d := &Dispatcher{
		app:    app,
		once:   lifecycle.NewOnce(),
		logger: zap.NewNop(),
		tracer: opentracing.NoopTracer{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.scope != nil {
		var err error
		if d.calls, err = d.scope.Counter(metrics.Spec{
			Name: "calls",
			Help: "Total inbound calls.",
		}); err != nil {
			return nil, err
		}
		if d.successes, err = d.scope.Counter(metrics.Spec{
			Name: "successes",
			Help: "Inbound calls that completed without error.",
		}); err != nil {
			return nil, err
		}
		if d.serverFailures, err = d.scope.Counter(metrics.Spec{
			Name: "server_failures",
			Help: "Inbound calls that failed.",
		}); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Start freezes the App and marks the dispatcher running. It is safe to
// call from any goroutine; the first call wins and every call returns its
// result.
func (d *Dispatcher) Start() error {
	return d.once.Start(func() error {
		d.app.Freeze()
		if missing := d.app.MissingRoutes(); len(missing) > 0 {
			d.logger.Warn("serving with unhandled routes", zap.Strings("routes", missing))
		}
		d.logger.Info("dispatcher started", zap.Int("routes", len(d.app.Routes())))
		return nil
	})
}

// Stop marks the dispatcher stopped. In-flight calls are unaffected;
// cancelling them is the host transport's job.
func (d *Dispatcher) Stop() error {
	return d.once.Stop(func() error {
		d.logger.Info("dispatcher stopped")
		return nil
	})
}

// Handle runs one inbound stream: rw carries the peer's framed messages in
// and the handler's framed messages out. Handle must be called at most
// once per stream; the codec instances it builds belong to that stream
// alone. The first Handle freezes the App.
func (d *Dispatcher) Handle(ctx context.Context, routeName string, md metadata.MD, rw io.ReadWriter) error {
	if err := d.Start(); err != nil {
		return err
	}
	if !d.once.IsRunning() {
		return rpcwireerrors.UnavailableErrorf("dispatcher is not running")
	}
	d.incr(d.calls)

	handler, ok := d.app.Handler(routeName)
	if !ok {
		return d.fail(routeName, rpcwireerrors.UnimplementedErrorf("no handler for route %q", routeName))
	}

	headers, err := header.DecodeMD(md)
	if err != nil {
		return d.fail(routeName, err)
	}

	timeout := d.defaultTimeout
	if values := headers[header.TimeoutHeader]; len(values) > 0 {
		timeout, err = header.DecodeTimeout(values[0])
		if err != nil {
			return d.fail(routeName, err)
		}
		delete(headers, header.TimeoutHeader)
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	span := d.startSpan(routeName, md)
	defer span.Finish()
	ctx = opentracing.ContextWithSpan(ctx, span)

	call := &ServerCall{
		route:   routeName,
		headers: headers,
		reader:  wire.NewReader(rw, d.app.Unmarshaller(routeName), wire.WithMaxMessageSize(d.maxFrameSize)),
		writer:  wire.NewWriter(rw, d.app.Marshaller(routeName)),
	}
	err = handler(ctx, call)
	err = multierr.Append(err, call.reader.Close())
	err = multierr.Append(err, call.writer.Close())
	if err != nil {
		span.SetTag("error", true)
		return d.fail(routeName, err)
	}
	d.incr(d.successes)
	return nil
}

func (d *Dispatcher) startSpan(routeName string, md metadata.MD) opentracing.Span {
	parent, _ := d.tracer.Extract(opentracing.TextMap, header.MDCarrier(md))
	if parent != nil {
		return d.tracer.StartSpan(routeName, opentracing.ChildOf(parent))
	}
	return d.tracer.StartSpan(routeName)
}

func (d *Dispatcher) fail(routeName string, err error) error {
	d.incr(d.serverFailures)
	d.logger.Error("call failed",
		zap.String("route", routeName),
		zap.Stringer("grpcCode", GRPCCode(err)),
		zap.Error(err),
	)
	return err
}

func (d *Dispatcher) incr(counter *metrics.Counter) {
	if counter != nil {
		counter.Inc()
	}
}

// GRPCCode maps an error to the gRPC status code a host transport should
// put in its trailers. Errors without a Status map to codes.Unknown.
func GRPCCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return grpcerrorcodes.ToGRPCCode(rpcwireerrors.FromError(err).Code())
}
