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

// Package test contains helper functions to remove common boilerplate to make
// testing easier.
//
// The Expect*() functions report a failure and allow the test to continue.
// The Demand*() functions stop the test immediately. Demand is useful when
// later parts of the test depend on the value being correct. For example,
// testing that the length of a slice is correct before indexing it.
//
// Success and failure are interpreted according to the type of the value
// being tested:
//
//	bool  -> success is true
//	error -> success is nil
//	nil   -> always success
//
// It is worth stressing how nil is handled because it is not obvious. The nil
// type is considered a success and consequently will cause ExpectFailure() to
// fail. This is because of how errors usually work (nil to indicate no error).
//
// The optional tags argument to all functions is printed as a prefix to any
// failure message. Useful when testing in a loop.
//
// The CompareWriter and RingWriter types implement io.Writer and are useful
// for capturing output, for example from the logger package.
package test
