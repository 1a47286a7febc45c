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

//go:build assertions

package assert

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/logger"
)

// Enabled is true if the program has been built with the assertions tag.
const Enabled = true

// Contract panics if the condition is false.
func Contract(perm logger.Permission, cond bool, detail string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("contract violation: %s", fmt.Sprintf(detail, args...)))
	}
}

// SameGoroutine panics if the current goroutine is not the owner.
func SameGoroutine(perm logger.Permission, o Owner) {
	if id := GetGoRoutineID(); id != o.id {
		panic(fmt.Sprintf("contract violation: called from goroutine %d but owned by goroutine %d", id, o.id))
	}
}
