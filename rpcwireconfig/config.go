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

// Package rpcwireconfig loads dispatcher configuration from YAML.
//
//	service: keyvalue
//	defaultTimeout: 10S
//	maxFrameSize: 4194304
//
// defaultTimeout uses the interval grammar of the header package.
package rpcwireconfig

import (
	"io/ioutil"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/rpcwire"
	"go.uber.org/rpcwire/header"
	"go.uber.org/rpcwire/rpcwireerrors"
	yaml "gopkg.in/yaml.v2"
)

// Config is a dispatcher configuration.
type Config struct {
	// Service names the application for logs and metrics.
	Service string `yaml:"service"`
	// DefaultTimeout bounds calls without a timeout header, in interval
	// form. Empty means no bound.
	DefaultTimeout string `yaml:"defaultTimeout"`
	// MaxFrameSize caps inbound message payloads in bytes. Zero means no
	// cap.
	MaxFrameSize int64 `yaml:"maxFrameSize"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, rpcwireerrors.InvalidArgumentErrorf("cannot read config %q: %v", path, err)
	}
	return ParseConfig(data)
}

// ParseConfig parses and validates YAML config bytes. Unknown fields are
// rejected.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return nil, rpcwireerrors.InvalidArgumentErrorf("cannot parse config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every field, reporting all problems at once.
func (c *Config) Validate() error {
	var errs error
	if c.Service == "" {
		errs = multierr.Append(errs, rpcwireerrors.InvalidArgumentErrorf("config is missing a service name"))
	}
	if c.DefaultTimeout != "" && !header.IsInterval(c.DefaultTimeout) {
		errs = multierr.Append(errs, rpcwireerrors.InvalidArgumentErrorf("defaultTimeout %q is not a valid interval", c.DefaultTimeout))
	}
	if c.MaxFrameSize < 0 {
		errs = multierr.Append(errs, rpcwireerrors.InvalidArgumentErrorf("maxFrameSize %d is negative", c.MaxFrameSize))
	}
	if c.MaxFrameSize > int64(^uint32(0)) {
		errs = multierr.Append(errs, rpcwireerrors.InvalidArgumentErrorf("maxFrameSize %d does not fit in a frame length field", c.MaxFrameSize))
	}
	return errs
}

// Timeout returns the decoded default timeout, zero when unset.
func (c *Config) Timeout() (time.Duration, error) {
	if c.DefaultTimeout == "" {
		return 0, nil
	}
	return header.DecodeTimeout(c.DefaultTimeout)
}

// DispatcherOptions translates the config into dispatcher options.
func (c *Config) DispatcherOptions() ([]rpcwire.DispatcherOption, error) {
	var opts []rpcwire.DispatcherOption
	timeout, err := c.Timeout()
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, rpcwire.DefaultTimeout(timeout))
	}
	if c.MaxFrameSize > 0 {
		opts = append(opts, rpcwire.MaxFrameSize(uint32(c.MaxFrameSize)))
	}
	return opts, nil
}
