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

//go:build !assertions

package assert

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/logger"
)

// Enabled is true if the program has been built with the assertions tag.
const Enabled = false

// Contract logs the violation if the condition is false. The caller is
// expected to return without doing anything further.
func Contract(perm logger.Permission, cond bool, detail string, args ...any) {
	if !cond {
		logger.Logf(perm, "assert", "contract violation: %s", fmt.Sprintf(detail, args...))
	}
}

// SameGoroutine does nothing unless the program has been built with the
// assertions tag. Finding the goroutine ID is too expensive to do on every
// call in a normal build.
func SameGoroutine(perm logger.Permission, o Owner) {
}
