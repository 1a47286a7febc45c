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

// Package attotime represents simulated time as whole seconds plus
// attoseconds. Simulated time is never represented as a floating point value
// because a float accumulates error over a long emulation session and cannot
// be compared for exact equality, which the timer queue relies on for
// deterministic ordering.
//
// Float conversions exist only for the edges of the system: converting a
// configured refresh rate or a clock frequency into a Time, or printing a
// value for a human.
package attotime

import (
	"fmt"
	"math"
)

// PerSecond is the number of attoseconds in one second.
const PerSecond int64 = 1_000_000_000_000_000_000

// Subdivisions of a second expressed in attoseconds.
const (
	PerMillisecond int64 = PerSecond / 1000
	PerMicrosecond int64 = PerMillisecond / 1000
	PerNanosecond  int64 = PerMicrosecond / 1000
)

// Time is a point (or duration) in simulated time.
//
// The zero value is the origin. Attoseconds is always normalised to the
// range [0, PerSecond), including for negative times, where the borrow is
// carried into the Seconds field.
type Time struct {
	Seconds     int64
	Attoseconds int64
}

// neverSeconds is far enough from zero that adding any realistic duration
// cannot overflow.
const neverSeconds = math.MaxInt64 / 2

// Zero is the origin of simulated time.
var Zero = Time{}

// Never is later than any time that can be reached by an emulation. It is
// used for timers that are not scheduled.
var Never = Time{Seconds: neverSeconds}

// IsNever returns true if the time is the Never sentinel (or later).
func (t Time) IsNever() bool {
	return t.Seconds >= neverSeconds
}

// IsZero returns true if the time is exactly the origin.
func (t Time) IsZero() bool {
	return t.Seconds == 0 && t.Attoseconds == 0
}

// IsNegative returns true if the time is before the origin.
func (t Time) IsNegative() bool {
	return t.Seconds < 0
}

func normalise(secs int64, attos int64) Time {
	if attos >= PerSecond {
		secs += attos / PerSecond
		attos %= PerSecond
	} else if attos < 0 {
		borrow := (-attos + PerSecond - 1) / PerSecond
		secs -= borrow
		attos += borrow * PerSecond
	}
	return Time{Seconds: secs, Attoseconds: attos}
}

// FromAttoseconds creates a time from a number of attoseconds.
func FromAttoseconds(attos int64) Time {
	return normalise(0, attos)
}

// FromSeconds converts a floating point number of seconds. Only to be used
// when converting configuration values.
func FromSeconds(secs float64) Time {
	whole := math.Floor(secs)
	frac := secs - whole
	return normalise(int64(whole), int64(frac*float64(PerSecond)))
}

// FromHz returns the period of a frequency. A frequency of zero or less,
// or one that is too low to be represented, returns Never. A frequency too
// high to be represented returns Zero.
func FromHz(hz float64) Time {
	if math.IsNaN(hz) || hz <= 0 {
		return Never
	}
	if hz < 1.0 {
		secs := 1.0 / hz
		if secs >= neverSeconds {
			return Never
		}
		return FromSeconds(secs)
	}

	// integral frequencies are divided exactly
	if whole := math.Trunc(hz); whole == hz && whole < float64(math.MaxInt64) {
		return normalise(0, PerSecond/int64(whole))
	}
	return Time{Attoseconds: int64(float64(PerSecond) / hz)}
}

// UsableHz returns true if the period of the frequency is neither Zero nor
// Never.
func UsableHz(hz float64) bool {
	p := FromHz(hz)
	return !p.IsZero() && !p.IsNever()
}

// FromMicroseconds creates a time from a whole number of microseconds.
func FromMicroseconds(us int64) Time {
	return normalise(us/1_000_000, (us%1_000_000)*PerMicrosecond)
}

// FromMilliseconds creates a time from a whole number of milliseconds.
func FromMilliseconds(ms int64) Time {
	return normalise(ms/1000, (ms%1000)*PerMillisecond)
}

// Add returns the sum of t and d. Adding to Never results in Never.
func (t Time) Add(d Time) Time {
	if t.IsNever() || d.IsNever() {
		return Never
	}
	return normalise(t.Seconds+d.Seconds, t.Attoseconds+d.Attoseconds)
}

// Sub returns t minus d. Subtracting from Never results in Never.
func (t Time) Sub(d Time) Time {
	if t.IsNever() {
		return Never
	}
	return normalise(t.Seconds-d.Seconds, t.Attoseconds-d.Attoseconds)
}

// Compare returns -1 if t is before u, 1 if t is after u and 0 if they are
// equal.
func (t Time) Compare(u Time) int {
	switch {
	case t.Seconds < u.Seconds:
		return -1
	case t.Seconds > u.Seconds:
		return 1
	case t.Attoseconds < u.Attoseconds:
		return -1
	case t.Attoseconds > u.Attoseconds:
		return 1
	}
	return 0
}

// Before returns true if t is strictly earlier than u.
func (t Time) Before(u Time) bool {
	return t.Compare(u) < 0
}

// After returns true if t is strictly later than u.
func (t Time) After(u Time) bool {
	return t.Compare(u) > 0
}

// Equal returns true if t and u are the same instant.
func (t Time) Equal(u Time) bool {
	return t == u
}

// Min returns the earlier of the two times.
func Min(a, b Time) Time {
	if a.Before(b) {
		return a
	}
	return b
}

// Max returns the later of the two times.
func Max(a, b Time) Time {
	if a.After(b) {
		return a
	}
	return b
}

// MulInt multiplies the time by a non-negative integer factor. Exact, as long
// as the result does not overflow the Seconds field.
func (t Time) MulInt(factor int64) Time {
	if t.IsNever() || factor < 0 {
		return Never
	}
	if factor == 0 {
		return Zero
	}

	// split the attoseconds so that the partial products cannot overflow
	// an int64. attoseconds are less than 10^18, the hi part less than 10^9
	const split = 1_000_000_000
	hi := t.Attoseconds / split
	lo := t.Attoseconds % split

	secs := t.Seconds * factor

	loProd := lo * factor
	secs += loProd / PerSecond
	loProd %= PerSecond

	hiProd := hi * factor
	secs += hiProd / split
	hiRem := (hiProd % split) * split

	return normalise(secs, loProd+hiRem)
}

// DivInt divides the time by a positive integer divisor. The result is
// rounded towards zero at attosecond precision.
func (t Time) DivInt(divisor int64) Time {
	if divisor <= 0 || t.IsNever() {
		return Never
	}
	secs := t.Seconds / divisor
	rem := t.Seconds % divisor

	// rem is less than divisor, spread it over the attoseconds. do the
	// division in two steps to avoid overflowing rem*PerSecond
	attos := t.Attoseconds / divisor
	carry := t.Attoseconds % divisor
	if rem != 0 {
		perRem := PerSecond / divisor
		attos += rem * perRem
		carry += rem * (PerSecond % divisor)
		attos += carry / divisor
	}

	return normalise(secs, attos)
}

// AsSeconds converts the time to a float. For display and for pacing real
// time against simulated time only.
func (t Time) AsSeconds() float64 {
	return float64(t.Seconds) + float64(t.Attoseconds)/float64(PerSecond)
}

// AsAttoseconds returns the time as a single attosecond count. Only valid
// for times shorter than about nine seconds; longer times saturate.
func (t Time) AsAttoseconds() int64 {
	if t.Seconds >= math.MaxInt64/PerSecond {
		return math.MaxInt64
	}
	if t.Seconds < 0 {
		return 0
	}
	return t.Seconds*PerSecond + t.Attoseconds
}

func (t Time) String() string {
	if t.IsNever() {
		return "never"
	}
	if t.IsNegative() {
		n := Zero.Sub(t)
		return fmt.Sprintf("-%d.%018d", n.Seconds, n.Attoseconds)
	}
	return fmt.Sprintf("%d.%018d", t.Seconds, t.Attoseconds)
}
