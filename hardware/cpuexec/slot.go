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
	"fmt"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/hardware/clocks"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/timer"
)

// Slot is the scheduler's record of a single processor. Fields are only
// changed by the scheduler. The suspend mask in particular is only changed
// through the Suspend() and Resume() functions.
type Slot struct {
	index int
	tag   string
	core  cpu.Core

	rate clocks.Rate

	// rate change requested while the processor was running. applied at the
	// end of the burst
	pendingRate *clocks.Rate

	suspend   cpu.SuspendReason
	eatCycles bool

	localTime   attotime.Time
	totalCycles uint64

	// the trigger the processor is waiting on
	waitTrigger int

	// the number of vblank interrupts remaining in the frame
	iloops int

	lines   [cpu.MaxIRQLines]cpu.LineState
	vectors [cpu.MaxIRQLines]int

	resetLine cpu.LineState
	haltLine  cpu.LineState

	vblank          cpu.InterruptFunc
	vblankPerFrame  int
	vblankCountdown int

	timed          cpu.InterruptFunc
	timedPerSecond float64
	timedTimer     timer.Handle

	resetParam any
	disabled   bool
}

func (sl *Slot) String() string {
	return fmt.Sprintf("%s: %s %s %d cycles (%s)", sl.tag, sl.rate, sl.localTime, sl.totalCycles, sl.suspend)
}

// Tag returns the name of the processor.
func (sl *Slot) Tag() string {
	return sl.tag
}

// Core returns the processor core.
func (sl *Slot) Core() cpu.Core {
	return sl.core
}

// Index returns the position of the processor in the machine.
func (sl *Slot) Index() int {
	return sl.index
}

// Rate returns the effective clock of the processor.
func (sl *Slot) Rate() clocks.Rate {
	if sl.pendingRate != nil {
		return *sl.pendingRate
	}
	return sl.rate
}

// Suspended returns the suspend reasons.
func (sl *Slot) Suspended() cpu.SuspendReason {
	return sl.suspend
}

// EatCycles returns true if the processor will eat cycles while suspended.
func (sl *Slot) EatCycles() bool {
	return sl.eatCycles
}

// LocalTime returns the processor's position in simulated time.
func (sl *Slot) LocalTime() attotime.Time {
	return sl.localTime
}

// TotalCycles returns the number of cycles executed or eaten by the
// processor since the last reset.
func (sl *Slot) TotalCycles() uint64 {
	return sl.totalCycles
}

// WaitTrigger returns the trigger the processor is waiting on. Returns
// cpu.NoTrigger if the processor isn't waiting.
func (sl *Slot) WaitTrigger() int {
	return sl.waitTrigger
}

// Line returns the state of the interrupt line.
func (sl *Slot) Line(line int) cpu.LineState {
	if line < 0 || line >= cpu.MaxIRQLines {
		return cpu.ClearLine
	}
	return sl.lines[line]
}

// catchUp moves the local time forward to the time. Processors that eat
// cycles are charged for the cycles that fit in the gap. Local time never
// moves backwards.
func (sl *Slot) catchUp(now attotime.Time) {
	if !now.After(sl.localTime) {
		return
	}
	if sl.eatCycles {
		n := sl.rate.TimeToCycles(now.Sub(sl.localTime))
		sl.totalCycles += uint64(n)
		sl.localTime = sl.localTime.Add(sl.rate.CyclesToTime(n))
		return
	}
	sl.localTime = now
}

func (sl *Slot) resetState() {
	sl.suspend = cpu.SuspendNone
	sl.eatCycles = false
	sl.localTime = attotime.Zero
	sl.totalCycles = 0
	sl.waitTrigger = cpu.NoTrigger
	sl.iloops = sl.vblankPerFrame - 1
	sl.resetLine = cpu.ClearLine
	sl.haltLine = cpu.ClearLine
	for i := range sl.lines {
		sl.lines[i] = cpu.ClearLine
		sl.vectors[i] = -1
	}
}
