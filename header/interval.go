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

package header

import (
	"regexp"
	"strconv"
	"time"

	"go.uber.org/rpcwire/rpcwireerrors"
)

// _maxIntervalAmount is the largest digits field an interval may carry.
const _maxIntervalAmount = 99999999

var _intervalPattern = regexp.MustCompile(`^(\d{1,8})(H|M|S|m|u|n)$`)

// _intervalUnits is ordered coarsest first. The encoder returns the first
// unit that divides the value exactly, so an exact hour count encodes as
// hours rather than an equivalent minute count.
var _intervalUnits = []struct {
	suffix string
	micros int64
}{
	{"H", 3600000000},
	{"M", 60000000},
	{"S", 1000000},
	{"m", 1000},
	{"u", 1},
}

var _intervalMicros = map[string]int64{
	"H": 3600000000,
	"M": 60000000,
	"S": 1000000,
	"m": 1000,
	"u": 1,
}

// EncodeInterval encodes a microsecond count as a digits-plus-suffix
// interval with at most eight digits.
//
// Units are tried coarsest first and the first exact divisor wins. If the
// amount under that unit exceeds eight digits, the encoder steps to coarser
// units, flooring at each step, until the amount fits. Values too large to
// express even as hours fail with an out-of-range error. The "n" suffix is
// never produced.
func EncodeInterval(micros int64) (string, error) {
	if micros < 0 {
		return "", rpcwireerrors.OutOfRangeErrorf("cannot encode negative interval of %d microseconds", micros)
	}
	for i, unit := range _intervalUnits {
		if micros%unit.micros != 0 {
			continue
		}
		amount := micros / unit.micros
		for amount > _maxIntervalAmount && i > 0 {
			amount /= _intervalUnits[i-1].micros / _intervalUnits[i].micros
			i--
		}
		if amount > _maxIntervalAmount {
			return "", rpcwireerrors.OutOfRangeErrorf("interval of %d microseconds exceeds %d hours", micros, _maxIntervalAmount)
		}
		return strconv.FormatInt(amount, 10) + _intervalUnits[i].suffix, nil
	}
	// Unreachable: the microsecond unit divides everything.
	return "", rpcwireerrors.InternalErrorf("no interval unit divides %d", micros)
}

// DecodeInterval parses a digits-plus-suffix interval into microseconds.
// The "n" suffix is nanoseconds and floors to microseconds on decode.
func DecodeInterval(s string) (int64, error) {
	match := _intervalPattern.FindStringSubmatch(s)
	if match == nil {
		return 0, rpcwireerrors.OutOfRangeErrorf("malformed interval %q", s)
	}
	amount, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, rpcwireerrors.OutOfRangeErrorf("malformed interval %q: %v", s, err)
	}
	if match[2] == "n" {
		return amount / 1000, nil
	}
	return amount * _intervalMicros[match[2]], nil
}

// IsInterval reports whether s matches the interval grammar.
func IsInterval(s string) bool {
	return _intervalPattern.MatchString(s)
}

// EncodeTimeout encodes a duration for the TimeoutHeader, flooring to
// microseconds.
func EncodeTimeout(d time.Duration) (string, error) {
	return EncodeInterval(int64(d / time.Microsecond))
}

// DecodeTimeout parses a TimeoutHeader value into a duration.
func DecodeTimeout(s string) (time.Duration, error) {
	micros, err := DecodeInterval(s)
	if err != nil {
		return 0, err
	}
	return time.Duration(micros) * time.Microsecond, nil
}
