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

package hardware

import (
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/govern"
)

// Run sets the emulation running as quickly as possible. The continueCheck()
// function is called at the end of every frame. A nil function means the
// machine runs until an error occurs.
//
// The emulation stays in the Paused state without advancing until the
// continueCheck() function returns a different state.
func (m *Machine) Run(continueCheck func() (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func() (govern.State, error) { return govern.Running, nil }
	}

	var err error

	state := govern.Running

	for state != govern.Ending && state != govern.Initialising {
		switch state {
		case govern.Running:
			if err := m.RunFrame(); err != nil {
				return err
			}
		case govern.Paused:
		default:
			return curated.Errorf("machine: unsupported emulation state (%s) in Run() function", state)
		}

		state, err = continueCheck()
		if err != nil {
			return err
		}
	}

	return nil
}

// RunForFrameCount sets the emulation running for the specified number of
// frames. Useful for performance measurement and regression tests.
func (m *Machine) RunForFrameCount(numFrames int, continueCheck func(frame int) (govern.State, error)) error {
	if continueCheck == nil {
		continueCheck = func(frame int) (govern.State, error) { return govern.Running, nil }
	}

	var err error

	state := govern.Running
	for i := 0; i < numFrames && state != govern.Ending; i++ {
		if err := m.RunFrame(); err != nil {
			return err
		}

		state, err = continueCheck(m.Sched.FrameNumber())
		if err != nil {
			return err
		}
	}

	return nil
}
