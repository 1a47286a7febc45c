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

package govern_test

import (
	"testing"

	"github.com/jetsetilly/cpuexec/govern"
	"github.com/jetsetilly/cpuexec/test"
)

func TestState(t *testing.T) {
	test.ExpectEquality(t, govern.Running.String(), "Running")
	test.ExpectEquality(t, govern.State(100).String(), "")
	test.ExpectSuccess(t, govern.Running.Advancing())
	test.ExpectFailure(t, govern.Paused.Advancing())
}
