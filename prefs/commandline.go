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

package prefs

import (
	"fmt"
	"sort"
	"strings"
)

// the command line stack allows preferences to be specified on the command
// line and for those values to override the values set by the program. groups
// are pushed onto the stack with PushCommandLineStack()
var commandLineStack []map[string]Value

// SizeCommandLineStack returns the number of groups that have been added
// with PushCommandLineStack().
func SizeCommandLineStack() int {
	return len(commandLineStack)
}

// PopCommandLineStack forgets the most recent group added by
// PushCommandLineStack().
//
// Returns the "unused" preferences of the stack entry.
func PopCommandLineStack() string {
	if len(commandLineStack) == 0 {
		return ""
	}

	popped := commandLineStack[len(commandLineStack)-1]
	commandLineStack = commandLineStack[:len(commandLineStack)-1]

	keys := make([]string, 0, len(popped))
	for key := range popped {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, key := range keys {
		s.WriteString(fmt.Sprintf("%s::%v; ", key, popped[key]))
	}

	return strings.TrimSuffix(s.String(), "; ")
}

// PushCommandLineStack parses a preferences string and adds it as a new
// group. The string is of the form:
//
//	key::value; key::value
func PushCommandLineStack(prefs string) {
	cl := make(map[string]Value)
	commandLineStack = append(commandLineStack, cl)

	for _, p := range strings.Split(prefs, ";") {
		kv := strings.Split(p, "::")
		if len(kv) == 2 {
			cl[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
}

// GetCommandLinePref value from current group. The value is deleted when it
// is returned.
func GetCommandLinePref(key string) (bool, Value) {
	if len(commandLineStack) == 0 {
		return false, nil
	}

	cl := commandLineStack[len(commandLineStack)-1]
	if v, ok := cl[key]; ok {
		delete(cl, key)
		return true, v
	}

	return false, nil
}
