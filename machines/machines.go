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

package machines

import (
	"sort"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware"
)

// ErrUnknownMachine is returned by Create() when there is no machine with
// the name.
const ErrUnknownMachine = "machines: unknown machine (%s)"

type entry struct {
	description string
	create      func(env *environment.Environment) (*hardware.Machine, error)
}

var list = map[string]entry{
	"twocpu": {
		description: "main and sound processors with DMA, interval timer and beeper",
		create:      createTwoCPU,
	},
	"quad": {
		description: "four scripted processors exercising suspend, triggers and boosts",
		create:      createQuad,
	},
}

// Names returns the names of the built-in machines in alphabetical order.
func Names() []string {
	var n []string
	for k := range list {
		n = append(n, k)
	}
	sort.Strings(n)
	return n
}

// Description returns a one line description of the machine.
func Description(name string) string {
	return list[name].description
}

// Create the machine with the name. The machine has been reset and is ready
// to run.
func Create(env *environment.Environment, name string) (*hardware.Machine, error) {
	e, ok := list[name]
	if !ok {
		return nil, curated.Errorf(ErrUnknownMachine, name)
	}
	m, err := e.create(env)
	if err != nil {
		return nil, curated.Errorf("machines: %s: %v", name, err)
	}
	m.Reset()
	return m, nil
}
