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

package cpu

import (
	"math"
	"strings"
)

// MaxCPUs is the maximum number of processors in a single machine.
const MaxCPUs = 8

// MaxIRQLines is the number of interrupt lines per processor.
const MaxIRQLines = 8

// NoTrigger indicates that a processor is not waiting for a trigger.
const NoTrigger = math.MinInt32

// Burst is the view of the scheduler given to a core while it is running.
type Burst interface {
	// the number of cycles left to run in the burst
	Icount() int

	// reduce the number of cycles left by the number of cycles consumed by
	// an instruction
	Burn(n int)

	// true if the burst has been stopped before the Icount() was exhausted
	Aborted() bool
}

// IRQCallback is called by a core when it acknowledges an interrupt. The
// return value is the vector for the interrupt. A negative value means the
// core should use its default vector.
type IRQCallback func(line int) int

// Core is the capability set required of a processor.
type Core interface {
	// run for the number of cycles and return the number of cycles actually
	// consumed
	Execute(b Burst, cycles int) int

	// reset the core. the param value is taken from the machine
	// configuration and its meaning depends on the core
	Reset(param any)

	// change the state of an interrupt line
	SetIRQLine(line int, state LineState)

	// the callback to be used when an interrupt is acknowledged
	SetIRQCallback(cb IRQCallback)
}

// SuspendReason is a bit field of reasons for a processor to be suspended.
// A processor is only run when no bits are set.
type SuspendReason uint8

// List of suspend reasons.
const (
	SuspendHalt SuspendReason = 1 << iota
	SuspendReset
	SuspendSpin
	SuspendTrigger
	SuspendDisable

	SuspendNone SuspendReason = 0
	SuspendAny  SuspendReason = SuspendHalt | SuspendReset | SuspendSpin | SuspendTrigger | SuspendDisable
)

func (r SuspendReason) String() string {
	if r == SuspendNone {
		return "running"
	}
	var s []string
	if r&SuspendHalt != 0 {
		s = append(s, "HALT")
	}
	if r&SuspendReset != 0 {
		s = append(s, "RESET")
	}
	if r&SuspendSpin != 0 {
		s = append(s, "SPIN")
	}
	if r&SuspendTrigger != 0 {
		s = append(s, "TRIGGER")
	}
	if r&SuspendDisable != 0 {
		s = append(s, "DISABLE")
	}
	return strings.Join(s, "|")
}

// LineState is the state of an interrupt line.
type LineState int

// List of valid line states.
const (
	// the line is not asserted
	ClearLine LineState = iota

	// the line is asserted until it is cleared
	AssertLine

	// the line is asserted until the interrupt is acknowledged
	HoldLine

	// the line is asserted and then immediately cleared
	PulseLine
)

func (s LineState) String() string {
	switch s {
	case ClearLine:
		return "clear"
	case AssertLine:
		return "assert"
	case HoldLine:
		return "hold"
	case PulseLine:
		return "pulse"
	}
	return "unknown"
}

// Controller is the part of the scheduler available to interrupt
// callbacks.
type Controller interface {
	SetIRQLine(index int, line int, state LineState)
	SetIRQVector(index int, line int, vector int)
	GetIloops() int
}

// InterruptFunc is called for vertical blank and timed interrupts. The index
// is the processor the interrupt is for.
type InterruptFunc func(ctl Controller, index int)

// HoldIRQ returns an InterruptFunc that holds the interrupt line until it
// is acknowledged. This is the usual way for a machine to generate a vertical
// blank interrupt.
func HoldIRQ(line int) InterruptFunc {
	return func(ctl Controller, index int) {
		ctl.SetIRQLine(index, line, HoldLine)
	}
}

// PulseIRQ returns an InterruptFunc that pulses the interrupt line.
func PulseIRQ(line int) InterruptFunc {
	return func(ctl Controller, index int) {
		ctl.SetIRQLine(index, line, PulseLine)
	}
}
