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

package cpuexec

// Context is the state of the burst currently being run. It is passed to
// the core's Execute() function as a cpu.Burst.
//
// The number of cycles executed is always:
//
//	requested - icount - stolen
//
// Cycles are stolen from the burst when it is aborted. Stolen cycles are
// not counted as having been executed and so the processor's local time does
// not move past the point where it was stopped.
type Context struct {
	cpu       int
	requested int
	icount    int
	stolen    int
	aborted   bool
}

func (c *Context) begin(cpu int, cycles int) {
	*c = Context{
		cpu:       cpu,
		requested: cycles,
		icount:    cycles,
	}
}

// CPU returns the index of the processor that is running.
func (c *Context) CPU() int {
	return c.cpu
}

// Icount implements the cpu.Burst interface.
func (c *Context) Icount() int {
	return c.icount
}

// Burn implements the cpu.Burst interface.
func (c *Context) Burn(n int) {
	c.icount -= n
}

// Aborted implements the cpu.Burst interface.
func (c *Context) Aborted() bool {
	return c.aborted
}

// Requested returns the number of cycles the burst was started with.
func (c *Context) Requested() int {
	return c.requested
}

// CyclesRun returns the number of cycles executed so far.
func (c *Context) CyclesRun() int {
	return c.requested - c.icount - c.stolen
}

// abort stops the burst. Remaining cycles are stolen.
func (c *Context) abort() {
	if c.icount > 0 {
		c.stolen += c.icount
		c.icount = 0
	}
	c.aborted = true
}

// eat consumes n cycles without executing anything. Returns the number of
// cycles eaten.
func (c *Context) eat(n int) int {
	if n > c.icount {
		n = c.icount
	}
	if n < 0 {
		n = 0
	}
	c.icount -= n
	return n
}

// adjust moves cycles between the burst and the stolen count. Returns the
// delta that was applied, which may be smaller than the delta requested
// because a burst can never run for more cycles than were requested.
func (c *Context) adjust(delta int) int {
	if delta > c.stolen {
		delta = c.stolen
	}
	if delta < 0 {
		left := max(c.icount, 0)
		if -delta > left {
			delta = -left
		}
	}
	c.icount += delta
	c.stolen -= delta
	return delta
}
