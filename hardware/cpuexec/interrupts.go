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

import (
	"github.com/jetsetilly/cpuexec/hardware/cpu"
)

// SetIRQLine changes the state of the processor's interrupt line. Asserting
// the line fires the TriggerInt() trigger for the processor.
//
// A line in the HoldLine state is cleared when the processor acknowledges
// the interrupt. A PulseLine is passed to the core but is never recorded as
// the state of the line.
func (s *Scheduler) SetIRQLine(index int, line int, state cpu.LineState) {
	if !s.checkCPU(index, "set irq line") || !s.checkLine(line, "set irq line") {
		return
	}
	sl := s.slots[index]

	if state == cpu.PulseLine {
		sl.lines[line] = cpu.ClearLine
	} else {
		sl.lines[line] = state
	}

	sl.core.SetIRQLine(line, state)

	if state != cpu.ClearLine {
		s.Trigger(TriggerInt(index))
	}
}

// SetIRQVector sets the vector returned to the core when it acknowledges an
// interrupt on the line. A negative vector means the core's default vector.
func (s *Scheduler) SetIRQVector(index int, line int, vector int) {
	if !s.checkCPU(index, "set irq vector") || !s.checkLine(line, "set irq vector") {
		return
	}
	s.slots[index].vectors[line] = vector
}

func (s *Scheduler) checkLine(line int, op string) bool {
	if line < 0 || line >= cpu.MaxIRQLines {
		s.anomaly("%s: invalid interrupt line %d", op, line)
		return false
	}
	return true
}

// acknowledge is the cpu.IRQCallback given to each core.
func (s *Scheduler) acknowledge(index int, line int) int {
	if line < 0 || line >= cpu.MaxIRQLines {
		s.anomaly("%s: acknowledged invalid interrupt line %d", s.slots[index].tag, line)
		return -1
	}

	sl := s.slots[index]
	vector := sl.vectors[line]

	if sl.lines[line] == cpu.HoldLine {
		sl.lines[line] = cpu.ClearLine
		sl.core.SetIRQLine(line, cpu.ClearLine)
	}

	s.Trigger(TriggerInt(index))

	return vector
}

// SetResetLine changes the state of the processor's reset line. The
// processor is suspended while the line is asserted and the core is reset
// when the line is cleared. Pulsing the line resets the core immediately.
func (s *Scheduler) SetResetLine(index int, state cpu.LineState) {
	if !s.checkCPU(index, "set reset line") {
		return
	}
	sl := s.slots[index]

	switch state {
	case cpu.AssertLine, cpu.HoldLine:
		sl.resetLine = cpu.AssertLine
		s.Suspend(index, cpu.SuspendReset, true)
	case cpu.ClearLine:
		if sl.resetLine != cpu.ClearLine {
			sl.resetLine = cpu.ClearLine
			sl.core.Reset(sl.resetParam)
			s.Resume(index, cpu.SuspendReset)
		}
	case cpu.PulseLine:
		if s.active != nil && s.active.cpu == index {
			s.active.abort()
		}
		sl.resetLine = cpu.ClearLine
		sl.core.Reset(sl.resetParam)
		s.Resume(index, cpu.SuspendReset)
	}
}

// SetHaltLine changes the state of the processor's halt line. The processor
// is suspended while the line is asserted. Pulsing the halt line has no
// effect.
func (s *Scheduler) SetHaltLine(index int, state cpu.LineState) {
	if !s.checkCPU(index, "set halt line") {
		return
	}
	sl := s.slots[index]

	switch state {
	case cpu.AssertLine, cpu.HoldLine:
		sl.haltLine = cpu.AssertLine
		s.Suspend(index, cpu.SuspendHalt, true)
	case cpu.ClearLine:
		sl.haltLine = cpu.ClearLine
		s.Resume(index, cpu.SuspendHalt)
	}
}

// interrupts are not delivered to processors that are halted, held in reset
// or disabled. processors that are spinning or yielding still receive them
const noInterrupts = cpu.SuspendHalt | cpu.SuspendReset | cpu.SuspendDisable

func (s *Scheduler) callInterrupt(index int, f cpu.InterruptFunc) {
	prev := s.interruptCPU
	s.interruptCPU = index
	f(s, index)
	s.interruptCPU = prev
}

// vblankTick is the callback of the vblank timer. It is called
// vblankMultiplier times every frame. The last call is the end of the frame.
func (s *Scheduler) vblankTick(_ int) {
	s.vblankSub++

	for _, sl := range s.slots {
		if sl.vblank == nil {
			continue
		}
		sl.vblankCountdown--
		if sl.vblankCountdown > 0 {
			continue
		}
		sl.vblankCountdown = s.vblankMultiplier / sl.vblankPerFrame

		if sl.suspend&noInterrupts == 0 {
			s.callInterrupt(sl.index, sl.vblank)
		}
		sl.iloops--
	}

	if s.vblankSub >= s.vblankMultiplier {
		s.vblankSub = 0
		s.frame++
		s.frameStart = s.Timers.Base()
		s.frameComplete = true
		for _, sl := range s.slots {
			sl.iloops = sl.vblankPerFrame - 1
		}
	}
}

// timedTick is the callback of a processor's timed interrupt timer.
func (s *Scheduler) timedTick(index int) {
	sl := s.slots[index]
	if sl.suspend&noInterrupts == 0 {
		s.callInterrupt(index, sl.timed)
	}
}

// currentCPU is the processor whose interrupt function is being called or,
// if there is no such processor, the running processor.
func (s *Scheduler) currentCPU(op string) (int, bool) {
	if s.interruptCPU >= 0 {
		return s.interruptCPU, true
	}
	return s.activeCPU(op)
}

// GetIloops returns the number of vblank interrupts remaining in the frame
// for the current processor. Implements the cpu.Controller interface.
func (s *Scheduler) GetIloops() int {
	index, ok := s.currentCPU("get iloops")
	if !ok {
		return 0
	}
	return s.slots[index].iloops
}

// SetIloops sets the number of vblank interrupts remaining in the frame for
// the current processor.
func (s *Scheduler) SetIloops(n int) {
	index, ok := s.currentCPU("set iloops")
	if !ok {
		return
	}
	s.slots[index].iloops = n
}
