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

// Package lifecycle provides a thread safe at-most-once start/stop state
// machine for long-lived objects.
package lifecycle

import (
	syncatomic "sync/atomic"

	"go.uber.org/atomic"
)

// State is a position in the lifecycle of an object. States only advance.
type State int32

const (
	// Idle means neither Start nor Stop has been called.
	Idle State = iota

	// Starting means Start has been called and has not returned.
	Starting

	// Running means Start completed without error.
	Running

	// Stopping means Stop has been called and has not returned.
	Stopping

	// Stopped means Stop completed.
	Stopped

	// Errored means Start or Stop returned an error and the object's
	// actual state is unknown.
	Errored
)

var _stateNames = map[State]string{
	Idle:     "idle",
	Starting: "starting",
	Running:  "running",
	Stopping: "stopping",
	Stopped:  "stopped",
	Errored:  "errored",
}

func (s State) String() string {
	if name, ok := _stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Once drives an object through its lifecycle, calling the start and stop
// functions at most once each regardless of how many goroutines race on
// Start and Stop.
//
// Start blocks until the state is at least Running, Stop until at least
// Stopped. A Stop that arrives before any Start wins: the object skips
// straight to Stopped and the start function never runs.
type Once struct {
	// startCh closes once the state reaches Running or beyond.
	startCh chan struct{}
	// stopCh closes once the state reaches Stopped or Errored.
	stopCh chan struct{}
	// err is set by whichever goroutine runs the start or stop function
	// and is immutable afterwards.
	err   syncatomic.Value
	state atomic.Int32
}

// NewOnce returns an idle lifecycle controller.
func NewOnce() *Once {
	return &Once{
		startCh: make(chan struct{}),
		stopCh:  make(chan struct{}),
	}
}

// Start runs f at most once. Every call returns the error from that single
// run. A nil f transitions state only.
func (o *Once) Start(f func() error) error {
	if o.state.CAS(int32(Idle), int32(Starting)) {
		var err error
		if f != nil {
			err = f()
		}
		if err != nil {
			o.setError(err)
			o.state.Store(int32(Errored))
			close(o.stopCh)
		} else {
			o.state.Store(int32(Running))
		}
		close(o.startCh)
		return err
	}

	<-o.startCh
	return o.loadError()
}

// Stop runs f at most once, after any in-flight Start completes. Every
// call returns the error from that single run. Stop before Start marks the
// object Stopped without running either function.
func (o *Once) Stop(f func() error) error {
	if o.state.CAS(int32(Idle), int32(Stopped)) {
		close(o.startCh)
		close(o.stopCh)
		return nil
	}

	<-o.startCh

	if o.state.CAS(int32(Running), int32(Stopping)) {
		var err error
		if f != nil {
			err = f()
		}
		if err != nil {
			o.setError(err)
			o.state.Store(int32(Errored))
		} else {
			o.state.Store(int32(Stopped))
		}
		close(o.stopCh)
		return err
	}

	<-o.stopCh
	return o.loadError()
}

// Started returns a channel that closes once the object is Running or has
// failed to start.
func (o *Once) Started() <-chan struct{} {
	return o.startCh
}

// Stopped returns a channel that closes once the object is Stopped or
// Errored.
func (o *Once) Stopped() <-chan struct{} {
	return o.stopCh
}

// State returns a state the lifecycle has at least passed through.
func (o *Once) State() State {
	return State(o.state.Load())
}

// IsRunning reports whether the object is currently Running.
func (o *Once) IsRunning() bool {
	return o.State() == Running
}

func (o *Once) setError(err error) {
	o.err.Store(err)
}

func (o *Once) loadError() error {
	if err, ok := o.err.Load().(error); ok {
		return err
	}
	return nil
}
