// This file is part of cpuexec.
//
// cpuexec is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// cpuexec is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with cpuexec.  If not, see <https://www.gnu.org/licenses/>.

package test

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

// id returns the tags as a single string suitable for prefixing a failure
// message.
func id(tags ...any) string {
	if len(tags) == 0 {
		return ""
	}
	s := strings.Builder{}
	for _, t := range tags {
		s.WriteString(fmt.Sprintf("%v: ", t))
	}
	return s.String()
}

// expect returns true if v is a success value for its type.
func expect(t *testing.T, v any, tags ...any) bool {
	t.Helper()

	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return v
	case error:
		return v == nil
	default:
		t.Fatalf("%sunsupported type (%T) for expectation testing", id(tags...), v)
	}

	return false
}

// ExpectSuccess tests argument v for a success value suitable for its type.
func ExpectSuccess(t *testing.T, v any, tags ...any) bool {
	t.Helper()
	if !expect(t, v, tags...) {
		if err, ok := v.(error); ok {
			t.Errorf("%sa success value is expected for type %T (%v)", id(tags...), v, err)
		} else {
			t.Errorf("%sa success value is expected for type %T", id(tags...), v)
		}
		return false
	}
	return true
}

// ExpectFailure tests argument v for a failure value suitable for its type.
func ExpectFailure(t *testing.T, v any, tags ...any) bool {
	t.Helper()
	if v == nil || expect(t, v, tags...) {
		t.Errorf("%sa failure value is expected for type %T", id(tags...), v)
		return false
	}
	return true
}

// ExpectEquality is used to test equality between one value and another.
func ExpectEquality[T comparable](t *testing.T, v T, expectedValue T, tags ...any) bool {
	t.Helper()
	if v != expectedValue {
		t.Errorf("%sequality test of type %T failed: '%v' does not equal '%v'", id(tags...), v, v, expectedValue)
		return false
	}
	return true
}

// ExpectInequality is used to test inequality between one value and another.
func ExpectInequality[T comparable](t *testing.T, v T, notExpectedValue T, tags ...any) bool {
	t.Helper()
	if v == notExpectedValue {
		t.Errorf("%sinequality test of type %T failed: '%v' equals '%v'", id(tags...), v, v, notExpectedValue)
		return false
	}
	return true
}

// Number is the set of types that can be compared approximately.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// ExpectApproximate is used to test approximate equality between one value
// and another. The tolerance is a fraction of the expected value, so a
// tolerance of 0.1 accepts values within ten percent of expectedValue.
func ExpectApproximate[T Number](t *testing.T, v T, expectedValue T, tolerance float64, tags ...any) bool {
	t.Helper()
	low := float64(expectedValue) * (1.0 - tolerance)
	high := float64(expectedValue) * (1.0 + tolerance)
	if low > high {
		low, high = high, low
	}
	if float64(v) < low || float64(v) > high {
		t.Errorf("%sapproximate equality test of type %T failed: '%v' is not within %.2f%% of '%v'",
			id(tags...), v, v, tolerance*100, expectedValue)
		return false
	}
	return true
}

// ExpectWithin is used to test that a value is no further than delta from
// the expected value. Useful for integer values where ExpectApproximate()
// tolerance would be awkward to express.
func ExpectWithin[T Number](t *testing.T, v T, expectedValue T, delta T, tags ...any) bool {
	t.Helper()
	if math.Abs(float64(v)-float64(expectedValue)) > float64(delta) {
		t.Errorf("%swithin test of type %T failed: '%v' is not within %v of '%v'", id(tags...), v, v, delta, expectedValue)
		return false
	}
	return true
}
