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

// Package nullcore is a processor that does nothing. Every burst is consumed
// in its entirety. It is useful as a placeholder for processors that are not
// emulated and as a baseline when measuring the cost of the scheduler.
package nullcore

import "github.com/jetsetilly/cpuexec/hardware/cpu"

// Core implements the cpu.Core interface.
type Core struct {
	// the number of bursts and cycles executed since reset
	Bursts int
	Cycles uint64

	lines [cpu.MaxIRQLines]cpu.LineState
}

// Execute implements the cpu.Core interface.
func (c *Core) Execute(b cpu.Burst, cycles int) int {
	c.Bursts++
	c.Cycles += uint64(max(b.Icount(), 0))
	b.Burn(b.Icount())
	return cycles - b.Icount()
}

// Reset implements the cpu.Core interface.
func (c *Core) Reset(_ any) {
	c.Bursts = 0
	c.Cycles = 0
	c.lines = [cpu.MaxIRQLines]cpu.LineState{}
}

// SetIRQLine implements the cpu.Core interface.
func (c *Core) SetIRQLine(line int, state cpu.LineState) {
	if line >= 0 && line < cpu.MaxIRQLines {
		c.lines[line] = state
	}
}

// Line returns the state of the interrupt line as last set by the scheduler.
func (c *Core) Line(line int) cpu.LineState {
	return c.lines[line]
}

// SetIRQCallback implements the cpu.Core interface. The null core never
// acknowledges an interrupt.
func (c *Core) SetIRQCallback(_ cpu.IRQCallback) {
}
