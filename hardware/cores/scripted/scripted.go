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

// Package scripted is a processor that runs a script of Go functions. Each
// step of the script takes a fixed number of cycles. The script repeats
// forever.
//
// Scripts are a convenient way of describing the behaviour of a processor in
// a test or a demonstration machine without writing a program for a real
// instruction set.
//
// An interrupt handler, also a script, can be set with SetHandler(). The
// handler is started when any interrupt line is asserted. Interrupts are not
// taken while the handler is running.
package scripted

import (
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
)

// ErrState is returned by Plumb() when the state is not from a scripted core.
const ErrState = "scripted: cannot plumb %T"

// Step is a single step of a script. The function is called after the
// cycles have been consumed. The function can be nil.
type Step struct {
	Cycles int
	Do     func()
}

// the number of cycles taken to start the interrupt handler
const interruptCycles = 4

// Core implements the cpu.Core interface.
type Core struct {
	script  []Step
	handler []Step

	pc        int
	inHandler bool
	ret       int

	lines  [cpu.MaxIRQLines]cpu.LineState
	pulsed [cpu.MaxIRQLines]bool
	irq    cpu.IRQCallback

	deficit int

	// Steps is the number of steps run since reset. Includes the steps of
	// the interrupt handler
	Steps uint64

	// Vector is the vector returned by the most recent interrupt
	// acknowledgement
	Vector int

	// Interrupts is the number of interrupts taken since reset
	Interrupts int
}

// NewCore is the preferred method of initialisation for the Core type. The
// script must have at least one step.
func NewCore(script ...Step) *Core {
	if len(script) == 0 {
		script = []Step{{Cycles: 1}}
	}
	return &Core{script: script, Vector: -1}
}

// SetHandler sets the script for the interrupt handler.
func (c *Core) SetHandler(handler ...Step) {
	c.handler = handler
}

// Execute implements the cpu.Core interface.
func (c *Core) Execute(b cpu.Burst, cycles int) int {
	for b.Icount() > 0 {
		if c.deficit > 0 {
			n := min(c.deficit, b.Icount())
			c.deficit -= n
			b.Burn(n)
			continue
		}

		var step Step
		if !c.inHandler && c.interrupt() {
			step = Step{Cycles: interruptCycles}
		} else if c.inHandler {
			step = c.handler[c.pc]
			c.pc++
			if c.pc >= len(c.handler) {
				c.inHandler = false
				c.pc = c.ret
			}
		} else {
			step = c.script[c.pc]
			c.pc = (c.pc + 1) % len(c.script)
		}

		cost := max(step.Cycles, 1)
		if cost > b.Icount() {
			c.deficit = cost - b.Icount()
			cost = b.Icount()
		}
		b.Burn(cost)
		c.Steps++

		if step.Do != nil {
			step.Do()
		}
	}

	return cycles - b.Icount()
}

// interrupt returns true if the interrupt handler has been started.
func (c *Core) interrupt() bool {
	if len(c.handler) == 0 {
		return false
	}
	for line := range c.lines {
		if c.lines[line] == cpu.ClearLine && !c.pulsed[line] {
			continue
		}
		c.pulsed[line] = false
		c.Vector = -1
		if c.irq != nil {
			c.Vector = c.irq(line)
		}
		c.Interrupts++
		c.inHandler = true
		c.ret = c.pc
		c.pc = 0
		return true
	}
	return false
}

// Reset implements the cpu.Core interface. The script starts again from the
// first step.
func (c *Core) Reset(_ any) {
	c.pc = 0
	c.inHandler = false
	c.ret = 0
	c.pulsed = [cpu.MaxIRQLines]bool{}
	c.deficit = 0
	c.Steps = 0
	c.Vector = -1
	c.Interrupts = 0
}

// SetIRQLine implements the cpu.Core interface.
func (c *Core) SetIRQLine(line int, state cpu.LineState) {
	if line < 0 || line >= cpu.MaxIRQLines {
		return
	}
	if state == cpu.PulseLine {
		c.pulsed[line] = true
		state = cpu.ClearLine
	}
	c.lines[line] = state
}

// SetIRQCallback implements the cpu.Core interface.
func (c *Core) SetIRQCallback(cb cpu.IRQCallback) {
	c.irq = cb
}

// State is the state of the core in a snapshot.
type State struct {
	PC         int
	InHandler  bool
	Ret        int
	Lines      [cpu.MaxIRQLines]cpu.LineState
	Pulsed     [cpu.MaxIRQLines]bool
	Deficit    int
	Steps      uint64
	Vector     int
	Interrupts int
}

// Snapshot creates a copy of the core state.
func (c *Core) Snapshot() any {
	return &State{
		PC:         c.pc,
		InHandler:  c.inHandler,
		Ret:        c.ret,
		Lines:      c.lines,
		Pulsed:     c.pulsed,
		Deficit:    c.deficit,
		Steps:      c.Steps,
		Vector:     c.Vector,
		Interrupts: c.Interrupts,
	}
}

// Plumb a state created by Snapshot() into the core.
func (c *Core) Plumb(state any) error {
	s, ok := state.(*State)
	if !ok {
		return curated.Errorf(ErrState, state)
	}
	c.pc = s.PC
	c.inHandler = s.InHandler
	c.ret = s.Ret
	c.lines = s.Lines
	c.pulsed = s.Pulsed
	c.deficit = s.Deficit
	c.Steps = s.Steps
	c.Vector = s.Vector
	c.Interrupts = s.Interrupts
	return nil
}
