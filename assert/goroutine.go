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

package assert

import (
	"bytes"
	"runtime"
	"strconv"
)

// GetGoRoutineID returns an identifier for a goroutine. It returns a result
// that is (a) different between goroutines and (b) consistent for a given
// goroutine. It should only ever be used for debugging or testing purposes.
func GetGoRoutineID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

// Owner records the goroutine that created a value. Values that must only be
// used from one goroutine embed an Owner and call SameGoroutine() at their
// entry points.
type Owner struct {
	id uint64
}

// NewOwner returns an Owner for the current goroutine.
func NewOwner() Owner {
	return Owner{id: GetGoRoutineID()}
}

// Claim transfers ownership to the current goroutine. Used when a value is
// created on one goroutine and handed to another before being used.
func (o *Owner) Claim() {
	o.id = GetGoRoutineID()
}
