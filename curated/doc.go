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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. It takes a
// formatting pattern and placeholder values, like the Errorf() function in
// the fmt package. The pattern is kept with the error and is what
// differentiates one curated error from another:
//
//	e := curated.Errorf(config.ErrZeroClock, "maincpu")
//
//	if curated.Is(e, config.ErrZeroClock) {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain:
//
//	f := curated.Errorf("machine: %v", e)
//
//	if curated.Has(f, config.ErrZeroClock) {
//		fmt.Println("true")
//	}
//
// Patterns that are tested for should be exported as constant strings by the
// package that creates the error. For example, the config package exports
// the patterns for every validation failure.
//
// The IsAny() function answers whether the error was created by
// curated.Errorf(). Put another way, it distinguishes 'expected' errors from
// 'unexpected' errors.
//
// The Error() implementation normalises the error chain so that it does not
// contain duplicate adjacent parts. This makes it easier to decide when and
// how to wrap errors. For example, the following is not a problem:
//
//	err := curated.Errorf("snapshot: %v", curated.Errorf("snapshot: %v", io.EOF))
//
// The message will be "snapshot: EOF" and not "snapshot: snapshot: EOF".
//
// For the purposes of this package chains are composed of parts separated by
// the sub-string ': '.
//
// Curated errors also implement Unwrap() so that the errors package in the
// standard library can see any error that was used as a placeholder value.
package curated
