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

package logger

import (
	"fmt"
	"strings"
)

const (
	penTag    = "\033[36m"
	penRepeat = "\033[2m\033[31m"
	penNormal = "\033[0m"
)

// colorize returns the entry as a string decorated with ANSI sequences. The
// tag is coloured so that entries from the same subsystem are easy to pick
// out when echoing to a terminal.
func colorize(e *Entry) string {
	s := strings.Builder{}
	s.WriteString(penTag)
	s.WriteString(e.Tag)
	s.WriteString(penNormal)
	s.WriteString(": ")
	s.WriteString(e.Detail)
	if e.Repeated > 0 {
		s.WriteString(penRepeat)
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.Repeated+1))
		s.WriteString(penNormal)
	}
	s.WriteString("\n")
	return s.String()
}
