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

package modalflag

import (
	"fmt"
	"io"
	"strings"
)

// helpWriter collects the output of the flag package so that it can be
// supplemented with sub-mode information.
type helpWriter struct {
	buffer []byte
}

func (hw *helpWriter) Write(p []byte) (n int, err error) {
	hw.buffer = append(hw.buffer, p...)
	return len(p), nil
}

func (hw *helpWriter) help(output io.Writer, banner string, subModes []string, additionalHelp string) {
	s := string(hw.buffer)
	helpLines := strings.Split(s, "\n")

	if s == "Usage:\n" && len(subModes) == 0 {
		if banner != "" {
			fmt.Fprintf(output, "No help available for %s\n", banner)
		} else {
			fmt.Fprintln(output, "No help available")
		}
		return
	}

	if banner != "" {
		fmt.Fprintf(output, "%s for %s mode\n", helpLines[0], banner)
	} else {
		fmt.Fprintln(output, helpLines[0])
	}

	// flag information produced by the flag package
	if len(helpLines) > 1 {
		io.WriteString(output, strings.Join(helpLines[1:], "\n"))
	}

	if len(subModes) > 0 {
		if len(helpLines) > 2 {
			io.WriteString(output, "\n")
		}
		fmt.Fprintf(output, "  available sub-modes: %s\n", strings.Join(subModes, ", "))
		fmt.Fprintf(output, "    default: %s\n", subModes[0])
	}

	if additionalHelp != "" {
		fmt.Fprintf(output, "\n%s\n", additionalHelp)
	}
}
