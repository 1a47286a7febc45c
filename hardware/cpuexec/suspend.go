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
	"github.com/jetsetilly/cpuexec/hardware/cpu"
)

// TriggerTimeslice is triggered at the end of every timeslice.
const TriggerTimeslice = -1000

// TriggerInt returns the trigger that is triggered when the processor
// acknowledges an interrupt, or when one of its interrupt lines is asserted.
func TriggerInt(index int) int {
	return -2000 - index
}

// TriggerYieldTime returns the trigger used by YieldUntilTime().
func TriggerYieldTime(index int) int {
	return -3000 - index
}

// TriggerSuspendTime returns the trigger used by SpinUntilTime().
func TriggerSuspendTime(index int) int {
	return -4000 - index
}

// Suspend the processor for the reason. If eat is true the processor eats
// cycles while it is suspended, otherwise its local time stops.
//
// Suspension is immediate. If the processor is running then its burst is
// stopped.
func (s *Scheduler) Suspend(index int, reason cpu.SuspendReason, eat bool) {
	if !s.checkCPU(index, "suspend") {
		return
	}
	sl := s.slots[index]
	sl.suspend |= reason
	sl.eatCycles = eat

	if s.active != nil && s.active.cpu == index {
		s.active.abort()
	}
}

// Resume clears the suspend reason. The processor runs again once all of its
// reasons have been cleared. Resuming with a reason that isn't set does
// nothing.
//
// When the processor can run again its local time is brought up to the
// current time. A processor that was eating cycles is charged for the time
// it was suspended.
func (s *Scheduler) Resume(index int, reason cpu.SuspendReason) {
	if !s.checkCPU(index, "resume") {
		return
	}
	sl := s.slots[index]
	if sl.suspend&reason == 0 {
		return
	}
	sl.suspend &^= reason

	if sl.suspend&(cpu.SuspendSpin|cpu.SuspendTrigger) == 0 {
		sl.waitTrigger = cpu.NoTrigger
	}

	if sl.suspend != cpu.SuspendNone {
		return
	}

	// the local time of the running processor is updated at the end of its
	// burst
	if s.active != nil && s.active.cpu == index {
		return
	}

	sl.catchUp(s.Now())
}

// IsSuspended returns true if the processor is suspended for any of the
// reasons in the mask.
func (s *Scheduler) IsSuspended(index int, mask cpu.SuspendReason) bool {
	if !s.checkCPU(index, "is suspended") {
		return false
	}
	return s.slots[index].suspend&mask != 0
}

// AbortTimeslice stops the burst of the running processor. The processor's
// local time stays where it was stopped and the timeslice ends there.
func (s *Scheduler) AbortTimeslice() {
	if _, ok := s.activeCPU("abort timeslice"); !ok {
		return
	}
	s.active.abort()
}

// SuspendUntilTrigger suspends the processor until the trigger is fired.
// The reason should be SuspendSpin or SuspendTrigger.
func (s *Scheduler) SuspendUntilTrigger(index int, reason cpu.SuspendReason, eat bool, id int) {
	if !s.checkCPU(index, "suspend until trigger") {
		return
	}
	s.slots[index].waitTrigger = id
	s.Suspend(index, reason, eat)
}

// Trigger resumes every processor waiting on the trigger. Processors are
// resumed in ascending order. If a processor is resumed during a burst
// then the burst is stopped so that the resumed processor can run in the
// next timeslice.
func (s *Scheduler) Trigger(id int) {
	resumed := false
	for _, sl := range s.slots {
		if sl.waitTrigger != id || sl.suspend&(cpu.SuspendSpin|cpu.SuspendTrigger) == 0 {
			continue
		}
		s.Resume(sl.index, cpu.SuspendSpin|cpu.SuspendTrigger)
		resumed = true
	}

	if resumed && s.active != nil {
		s.active.abort()
	}
}

// TriggerTime fires the trigger after the delay.
func (s *Scheduler) TriggerTime(delay attotime.Time, id int) {
	s.Timers.Set(triggerTimerTag, delay, id)
}

// Spin suspends the running processor until the end of the timeslice. The
// processor eats cycles while it is suspended.
func (s *Scheduler) Spin() {
	s.SpinUntilTrigger(TriggerTimeslice)
}

// SpinUntilTrigger suspends the running processor until the trigger is
// fired. The processor eats cycles while it is suspended.
func (s *Scheduler) SpinUntilTrigger(id int) {
	if index, ok := s.activeCPU("spin until trigger"); ok {
		s.SuspendUntilTrigger(index, cpu.SuspendSpin, true, id)
	}
}

// SpinUntilInt suspends the running processor until it acknowledges an
// interrupt or has an interrupt line asserted.
func (s *Scheduler) SpinUntilInt() {
	if index, ok := s.activeCPU("spin until int"); ok {
		s.SuspendUntilTrigger(index, cpu.SuspendSpin, true, TriggerInt(index))
	}
}

// SpinUntilTime suspends the running processor for the duration. The
// processor eats cycles while it is suspended.
func (s *Scheduler) SpinUntilTime(d attotime.Time) {
	if index, ok := s.activeCPU("spin until time"); ok {
		id := TriggerSuspendTime(index)
		s.Timers.Set(triggerTimerTag, d, id)
		s.SuspendUntilTrigger(index, cpu.SuspendSpin, true, id)
	}
}

// SpinUntilTriggerCPU suspends the processor until the trigger is fired.
// Unlike SpinUntilTrigger() the processor doesn't need to be running.
func (s *Scheduler) SpinUntilTriggerCPU(index int, id int) {
	s.SuspendUntilTrigger(index, cpu.SuspendSpin, true, id)
}

// Yield suspends the running processor until the end of the timeslice. The
// processor's local time stops while it is suspended.
func (s *Scheduler) Yield() {
	s.YieldUntilTrigger(TriggerTimeslice)
}

// YieldUntilTrigger suspends the running processor until the trigger is
// fired. The processor's local time stops while it is suspended.
func (s *Scheduler) YieldUntilTrigger(id int) {
	if index, ok := s.activeCPU("yield until trigger"); ok {
		s.SuspendUntilTrigger(index, cpu.SuspendTrigger, false, id)
	}
}

// YieldUntilInt suspends the running processor until it acknowledges an
// interrupt or has an interrupt line asserted.
func (s *Scheduler) YieldUntilInt() {
	if index, ok := s.activeCPU("yield until int"); ok {
		s.SuspendUntilTrigger(index, cpu.SuspendTrigger, false, TriggerInt(index))
	}
}

// YieldUntilTime suspends the running processor for the duration. The
// processor's local time stops while it is suspended.
func (s *Scheduler) YieldUntilTime(d attotime.Time) {
	if index, ok := s.activeCPU("yield until time"); ok {
		id := TriggerYieldTime(index)
		s.Timers.Set(triggerTimerTag, d, id)
		s.SuspendUntilTrigger(index, cpu.SuspendTrigger, false, id)
	}
}

// YieldUntilTriggerCPU suspends the processor until the trigger is fired.
// Unlike YieldUntilTrigger() the processor doesn't need to be running.
func (s *Scheduler) YieldUntilTriggerCPU(index int, id int) {
	s.SuspendUntilTrigger(index, cpu.SuspendTrigger, false, id)
}
