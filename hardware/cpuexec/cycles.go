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
	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/hardware/clocks"
)

// ActiveCPU returns the index of the running processor. Returns -1 if no
// burst is running.
func (s *Scheduler) ActiveCPU() int {
	if s.active == nil {
		return -1
	}
	return s.active.cpu
}

// CyclesRun returns the number of cycles the running processor has executed
// in the current burst.
func (s *Scheduler) CyclesRun() int {
	if _, ok := s.activeCPU("cycles run"); !ok {
		return 0
	}
	return s.active.CyclesRun()
}

// CyclesLeft returns the number of cycles remaining in the current burst.
func (s *Scheduler) CyclesLeft() int {
	if _, ok := s.activeCPU("cycles left"); !ok {
		return 0
	}
	return s.active.icount
}

// AdjustIcount changes the number of cycles remaining in the current burst.
// A negative delta shortens the burst without the cycles being counted as
// executed. A positive delta can only return cycles that were previously
// taken from the burst.
func (s *Scheduler) AdjustIcount(delta int) {
	if _, ok := s.activeCPU("adjust icount"); !ok {
		return
	}
	if applied := s.active.adjust(delta); applied != delta {
		s.anomaly("%s: adjust icount of %d limited to %d", s.slots[s.active.cpu].tag, delta, applied)
	}
}

// EatCycles consumes cycles from the current burst without executing
// anything. The cycles are counted as executed.
func (s *Scheduler) EatCycles(n int) {
	if _, ok := s.activeCPU("eat cycles"); !ok {
		return
	}
	s.active.eat(n)
}

// TotalCycles returns the number of cycles executed or eaten by the
// processor since the last reset. If the processor is running the cycles
// executed in the current burst are included.
func (s *Scheduler) TotalCycles(index int) uint64 {
	if !s.checkCPU(index, "total cycles") {
		return 0
	}
	n := s.slots[index].totalCycles
	if s.active != nil && s.active.cpu == index {
		n += uint64(max(s.active.CyclesRun(), 0))
	}
	return n
}

// TotalCycles32 is the same as TotalCycles() but the result is truncated to
// 32 bits. The value wraps around after 2^32 cycles.
func (s *Scheduler) TotalCycles32(index int) uint32 {
	return uint32(s.TotalCycles(index))
}

// LocalTime returns the processor's position in simulated time.
func (s *Scheduler) LocalTime(index int) attotime.Time {
	if !s.checkCPU(index, "local time") {
		return attotime.Zero
	}
	if s.active != nil && s.active.cpu == index {
		return s.Now()
	}
	return s.slots[index].localTime
}

// GetClock returns the nominal frequency of the processor's clock.
func (s *Scheduler) GetClock(index int) uint64 {
	if !s.checkCPU(index, "get clock") {
		return 0
	}
	return s.slots[index].Rate().Hz()
}

// SetClock changes the nominal frequency of the processor's clock. If the
// processor is running the burst is stopped and the new clock takes effect
// from the point it was stopped.
func (s *Scheduler) SetClock(index int, hz uint64) {
	if !s.checkCPU(index, "set clock") {
		return
	}
	if hz == 0 {
		s.anomaly("%s: refusing zero clock", s.slots[index].tag)
		return
	}
	s.setRate(index, s.slots[index].Rate().WithHz(hz))
}

// GetClockScale returns the scaling factor of the processor's clock.
func (s *Scheduler) GetClockScale(index int) float64 {
	if !s.checkCPU(index, "get clock scale") {
		return 0
	}
	return s.slots[index].Rate().Scale()
}

// SetClockScale changes the scaling factor of the processor's clock.
func (s *Scheduler) SetClockScale(index int, scale float64) {
	if !s.checkCPU(index, "set clock scale") {
		return
	}
	if scale <= 0 {
		s.anomaly("%s: refusing clock scale of %f", s.slots[index].tag, scale)
		return
	}
	s.setRate(index, s.slots[index].Rate().WithScale(scale))
}

func (s *Scheduler) setRate(index int, r clocks.Rate) {
	sl := s.slots[index]
	if s.active != nil && s.active.cpu == index {
		sl.pendingRate = &r
		s.active.abort()
	} else {
		sl.rate = r
	}
	s.computeQuantum()
}
