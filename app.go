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
	"go.uber.org/atomic"
	"go.uber.org/rpcwire/rpcwireerrors"
	"go.uber.org/rpcwire/wire"
)

// App is the registry mapping routes to codec callbacks and handlers.
//
// An App is built in two phases. While configuring, services are added and
// handlers registered from a single goroutine (or with external
// serialization). The first serve freezes the App; from then on reads are
// safe from any goroutine and mutation fails with a failed-precondition
// error. The App never invokes handlers itself.
type App struct {
	frozen   *atomic.Bool
	services map[string]*Service
	routes   map[string]*route
	order    []string
}

type route struct {
	method  Method
	handler Handler
}

// New builds an App preloaded with the given services.
func New(services ...*Service) (*App, error) {
	app := &App{
		frozen:   atomic.NewBool(false),
		services: make(map[string]*Service),
		routes:   make(map[string]*route),
	}
	for _, svc := range services {
		if err := app.AddService(svc); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// AddService adds every route of svc to the registry with no handler.
// Duplicate service names and colliding routes fail, leaving the registry
// unchanged.
func (a *App) AddService(svc *Service) error {
	if a.frozen.Load() {
		return rpcwireerrors.FailedPreconditionErrorf("cannot add service %q to a frozen registry", svc.name)
	}
	if _, ok := a.services[svc.name]; ok {
		return rpcwireerrors.AlreadyExistsErrorf("service %q is already registered", svc.name)
	}
	for _, method := range svc.methods {
		if _, ok := a.routes[Route(svc.name, method.name)]; ok {
			return rpcwireerrors.AlreadyExistsErrorf("route %q is already registered", Route(svc.name, method.name))
		}
	}
	a.services[svc.name] = svc
	for _, method := range svc.methods {
		r := Route(svc.name, method.name)
		a.routes[r] = &route{method: method}
		a.order = append(a.order, r)
	}
	return nil
}

// Register sets the handler for a known route. Unknown routes and double
// registration fail.
func (a *App) Register(routeName string, handler Handler) error {
	if a.frozen.Load() {
		return rpcwireerrors.FailedPreconditionErrorf("cannot register route %q on a frozen registry", routeName)
	}
	r, ok := a.routes[routeName]
	if !ok {
		return rpcwireerrors.NotFoundErrorf("cannot register handler for unknown route %q", routeName)
	}
	if r.handler != nil {
		return rpcwireerrors.AlreadyExistsErrorf("route %q already has a handler", routeName)
	}
	r.handler = handler
	return nil
}

// HasRoute reports whether a handler is registered for the route. Known
// routes without a handler report false.
func (a *App) HasRoute(routeName string) bool {
	r, ok := a.routes[routeName]
	return ok && r.handler != nil
}

// MissingRoutes returns every known route with no handler, in service
// declaration order followed by method declaration order.
func (a *App) MissingRoutes() []string {
	var missing []string
	for _, name := range a.order {
		if a.routes[name].handler == nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// IsComplete reports whether every known route has a handler.
func (a *App) IsComplete() bool {
	return len(a.MissingRoutes()) == 0
}

// Marshaller returns the route's marshal callback. It is nil when the
// route is unknown or the method declared none; the cases are not
// distinguished.
func (a *App) Marshaller(routeName string) wire.MarshalFunc {
	if r, ok := a.routes[routeName]; ok {
		return r.method.marshal
	}
	return nil
}

// Unmarshaller returns the route's unmarshal callback, or nil on the same
// terms as Marshaller.
func (a *App) Unmarshaller(routeName string) wire.UnmarshalFunc {
	if r, ok := a.routes[routeName]; ok {
		return r.method.unmarshal
	}
	return nil
}

// Handler returns the handler registered for the route.
func (a *App) Handler(routeName string) (Handler, bool) {
	r, ok := a.routes[routeName]
	if !ok || r.handler == nil {
		return nil, false
	}
	return r.handler, true
}

// Routes returns every known route in declaration order.
func (a *App) Routes() []string {
	routes := make([]string, len(a.order))
	copy(routes, a.order)
	return routes
}

// Freeze ends the configuration phase. Freezing twice is a no-op.
func (a *App) Freeze() {
	a.frozen.Store(true)
}
