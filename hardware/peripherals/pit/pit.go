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

// Package pit is a programmable interval timer. It is modelled on the timer
// found in the 6532 RIOT chip.
//
// The processor writes a value to one of the four interval ports. The value
// is decreased once every interval cycles of the timer's clock. When the
// value passes zero the timer underflows, the TIMINT flag is set and the
// timer continues to decrease once every cycle. An interrupt line can be
// asserted when the timer underflows.
//
// The timer is not stepped every cycle. The current value is calculated
// from the time since the timer was written and the underflow is a timer in
// the scheduler's timer queue.
package pit

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/clocks"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/memory"
	"github.com/jetsetilly/cpuexec/hardware/timer"
)

// ErrState is returned by Plumb() when the state is not from a PIT.
const ErrState = "pit: cannot plumb %T"

// Interval is the number of clock cycles between each decrease of the timer
// value.
type Interval int

// List of valid intervals.
const (
	TIM1T  Interval = 1
	TIM8T  Interval = 8
	TIM64T Interval = 64
	T1024T Interval = 1024
)

// IntervalList is the list of intervals in the order of the interval ports.
var IntervalList = []Interval{TIM1T, TIM8T, TIM64T, T1024T}

func (in Interval) String() string {
	switch in {
	case TIM1T:
		return "TIM1T"
	case TIM8T:
		return "TIM8T"
	case TIM64T:
		return "TIM64T"
	case T1024T:
		return "T1024T"
	}
	return "unknown interval"
}

// The ports of the PIT relative to the origin of the memory area.
const (
	PortTIM1T = iota
	PortTIM8T
	PortTIM64T
	PortT1024T
	PortINTIM
	PortTIMINT
	NumPorts
)

// PIT is the programmable interval timer.
type PIT struct {
	label  string
	timers *timer.Queue
	ctl    cpu.Controller
	rate   clocks.Rate
	tmr    timer.Handle

	// the processor and line to assert on underflow. index of -1 means no
	// interrupt
	irqCPU  int
	irqLine int

	// the interval value most recently requested by the processor
	Divider Interval

	// the value written and the time it was written
	value uint8
	start attotime.Time

	// the state of TIMINT
	TIMINT bool
}

// NewPIT is the preferred method of initialisation for the PIT type. The
// clock is the frequency of the timer's clock, which is usually the clock of
// the processor it is attached to.
//
// The label is used to tag the underflow timer and must be unique in the
// machine.
func NewPIT(label string, timers *timer.Queue, ctl cpu.Controller, hz uint64) *PIT {
	p := &PIT{
		label:   label,
		timers:  timers,
		ctl:     ctl,
		rate:    clocks.NewRate(hz, 1.0),
		irqCPU:  -1,
		Divider: T1024T,
	}
	p.tmr = timers.AllocPersistent(label+".underflow", p.underflow)
	return p
}

// ConnectIRQ sets the interrupt line that is asserted when the timer
// underflows. The line is cleared when TIMINT is read.
func (p *PIT) ConnectIRQ(index int, line int) {
	p.irqCPU = index
	p.irqLine = line
}

func (p *PIT) String() string {
	return fmt.Sprintf("INTIM=%#02x intv=%s TIMINT=%v", p.INTIM(), p.Divider, p.TIMINT)
}

// Reset the timer. The value is zero with the longest interval.
func (p *PIT) Reset() {
	p.Divider = T1024T
	p.value = 0
	p.start = p.timers.Now()
	p.TIMINT = false
	p.schedule()
}

// elapsed returns the number of cycles since the timer was written.
func (p *PIT) elapsed() int64 {
	return p.rate.TimeToCycles(p.timers.Now().Sub(p.start))
}

// the number of cycles from the write to the underflow
func (p *PIT) underflowCycles() int64 {
	return (int64(p.value) + 1) * int64(p.Divider)
}

// INTIM returns the current value of the timer.
func (p *PIT) INTIM() uint8 {
	e := p.elapsed()
	u := p.underflowCycles()
	if e < u {
		return p.value - uint8(e/int64(p.Divider))
	}

	// decreasing once every cycle after the underflow
	return uint8(0xff - (e-u)%256)
}

// SetValue writes the value with the interval. TIMINT is cleared.
func (p *PIT) SetValue(value uint8, interval Interval) {
	p.value = value
	p.Divider = interval
	p.start = p.timers.Now()
	p.clearTIMINT()
	p.schedule()
}

func (p *PIT) schedule() {
	p.timers.AdjustOneShot(p.tmr, p.rate.CyclesToTime(p.underflowCycles()), 0)
}

func (p *PIT) underflow(_ int) {
	p.TIMINT = true
	if p.irqCPU >= 0 {
		p.ctl.SetIRQLine(p.irqCPU, p.irqLine, cpu.AssertLine)
	}
}

func (p *PIT) clearTIMINT() {
	if p.TIMINT && p.irqCPU >= 0 {
		p.ctl.SetIRQLine(p.irqCPU, p.irqLine, cpu.ClearLine)
	}
	p.TIMINT = false
}

// Area returns the memory area for the ports of the PIT.
func (p *PIT) Area(origin uint16) *memory.Ports {
	var ports [NumPorts]memory.Port
	for i, in := range IntervalList {
		in := in
		ports[i] = memory.Port{Write: func(data uint8) {
			p.SetValue(data, in)
		}}
	}
	ports[PortINTIM] = memory.Port{
		Read: p.INTIM,
		Peek: p.INTIM,
	}
	ports[PortTIMINT] = memory.Port{
		Read: func() uint8 {
			v := p.timint()
			p.clearTIMINT()
			return v
		},
		Peek: p.timint,
	}
	return memory.NewPorts(p.label, origin, ports[:]...)
}

func (p *PIT) timint() uint8 {
	if p.TIMINT {
		return 0x80
	}
	return 0x00
}

// State is the state of the PIT in a snapshot. The underflow timer is part of
// the scheduler's snapshot.
type State struct {
	Divider Interval
	Value   uint8
	Start   attotime.Time
	TIMINT  bool
}

// Snapshot creates a copy of the PIT state.
func (p *PIT) Snapshot() any {
	return &State{
		Divider: p.Divider,
		Value:   p.value,
		Start:   p.start,
		TIMINT:  p.TIMINT,
	}
}

// Plumb a state created by Snapshot() into the PIT.
func (p *PIT) Plumb(state any) error {
	s, ok := state.(*State)
	if !ok {
		return curated.Errorf(ErrState, state)
	}
	p.Divider = s.Divider
	p.value = s.Value
	p.start = s.Start
	p.TIMINT = s.TIMINT
	return nil
}
