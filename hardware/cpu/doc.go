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

// Package cpu defines how the scheduler sees a processor core. The scheduler
// knows nothing about instruction sets. A core only has to run for a number
// of cycles when asked, be reset and accept changes to its interrupt lines.
//
// During a call to Execute() the core is given a Burst. The core must run
// instructions while Burst.Icount() is greater than zero, calling Burn()
// with the number of cycles each instruction took. The count can be changed
// by the scheduler while the core is running (because of a call to the
// scheduler by a device the core has written to for example) and so the
// core must not cache the value.
//
// A minimal core looks like this:
//
//	func (c *Core) Execute(b cpu.Burst, cycles int) int {
//		for b.Icount() > 0 {
//			b.Burn(c.step())
//		}
//		return cycles - b.Icount()
//	}
//
// The package also defines the suspend reasons and interrupt line states
// that are used by the scheduler's public API.
package cpu
