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

// Package dma is a block transfer controller. A processor writes the source,
// destination and length of a transfer and then starts it by writing to the
// control port. The memory is copied when the transfer completes, a fixed
// number of cycles per byte after it was started.
//
// A transfer can be started so that the processor that started it is
// suspended until the transfer has completed. This uses the scheduler's
// trigger mechanism. Other processors continue to run.
package dma

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/clocks"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/memory"
	"github.com/jetsetilly/cpuexec/hardware/timer"
	"github.com/jetsetilly/cpuexec/logger"
)

// ErrState is returned by Plumb() when the state is not from a DMA
// controller.
const ErrState = "dma: cannot plumb %T"

// Scheduler is the part of the scheduler used by the DMA controller.
type Scheduler interface {
	cpu.Controller
	SpinUntilTrigger(id int)
	Trigger(id int)
}

// The ports of the DMA controller relative to the origin of the memory area.
const (
	PortSrcLo = iota
	PortSrcHi
	PortDstLo
	PortDstHi
	PortLength
	PortControl
	NumPorts
)

// Values written to the control port.
const (
	ControlStart     = 0x01
	ControlStartWait = 0x02
)

// CyclesPerByte is the number of clock cycles taken to transfer one byte.
const CyclesPerByte = 4

// DMA is the block transfer controller.
type DMA struct {
	env    logger.Permission
	label  string
	mem    memory.DebugBus
	sched  Scheduler
	timers *timer.Queue
	rate   clocks.Rate
	tmr    timer.Handle

	// the trigger fired when a transfer completes
	triggerID int

	// the processor and line held when a transfer completes. index of -1
	// means no interrupt
	irqCPU  int
	irqLine int

	Src    uint16
	Dst    uint16
	Length uint8
	Busy   bool

	// number of completed transfers
	Transfers int
}

// NewDMA is the preferred method of initialisation for the DMA type. The
// memory is accessed with Peek() and Poke() so that the transfer has no side
// effects on memory mapped ports.
//
// The label is used to tag the completion timer and must be unique in the
// machine.
func NewDMA(env logger.Permission, label string, mem memory.DebugBus, sched Scheduler, timers *timer.Queue, hz uint64, triggerID int) *DMA {
	d := &DMA{
		env:       env,
		label:     label,
		mem:       mem,
		sched:     sched,
		timers:    timers,
		rate:      clocks.NewRate(hz, 1.0),
		triggerID: triggerID,
		irqCPU:    -1,
	}
	d.tmr = timers.AllocPersistent(label+".complete", d.complete)
	return d
}

func (d *DMA) String() string {
	return fmt.Sprintf("%s: %04x -> %04x len=%d busy=%v", d.label, d.Src, d.Dst, d.Length, d.Busy)
}

// ConnectIRQ sets the interrupt line that is held when a transfer completes.
func (d *DMA) ConnectIRQ(index int, line int) {
	d.irqCPU = index
	d.irqLine = line
}

// Reset the controller. Any transfer in progress is abandoned.
func (d *DMA) Reset() {
	d.Src = 0
	d.Dst = 0
	d.Length = 0
	d.Busy = false
	d.timers.Enable(d.tmr, false)
}

// Start the transfer with the current register values. If wait is true the
// processor writing to the control port is suspended until the transfer
// completes. A transfer of zero bytes completes immediately and never
// suspends the processor.
func (d *DMA) Start(wait bool) {
	if d.Busy {
		logger.Logf(d.env, d.label, "transfer started while busy")
		return
	}
	if d.Length == 0 {
		d.complete(0)
		return
	}
	d.Busy = true
	d.timers.AdjustOneShot(d.tmr, d.rate.CyclesToTime(int64(d.Length)*CyclesPerByte), 0)
	if wait {
		d.sched.SpinUntilTrigger(d.triggerID)
	}
}

func (d *DMA) complete(_ int) {
	for i := 0; i < int(d.Length); i++ {
		v, err := d.mem.Peek(d.Src + uint16(i))
		if err == nil {
			err = d.mem.Poke(d.Dst+uint16(i), v)
		}
		if err != nil {
			logger.Logf(d.env, d.label, "%v", err)
			break
		}
	}
	d.Busy = false
	d.Transfers++
	d.sched.Trigger(d.triggerID)
	if d.irqCPU >= 0 {
		d.sched.SetIRQLine(d.irqCPU, d.irqLine, cpu.HoldLine)
	}
}

func (d *DMA) control(v uint8) {
	switch v {
	case ControlStart:
		d.Start(false)
	case ControlStartWait:
		d.Start(true)
	default:
		logger.Logf(d.env, d.label, "unrecognised control value (%#02x)", v)
	}
}

func (d *DMA) status() uint8 {
	if d.Busy {
		return 0x80
	}
	return 0x00
}

// Area returns the memory area for the ports of the DMA controller.
func (d *DMA) Area(origin uint16) *memory.Ports {
	lo := func(v *uint16) memory.Port {
		return memory.Port{
			Write: func(data uint8) { *v = (*v & 0xff00) | uint16(data) },
			Peek:  func() uint8 { return uint8(*v) },
		}
	}
	hi := func(v *uint16) memory.Port {
		return memory.Port{
			Write: func(data uint8) { *v = (*v & 0x00ff) | uint16(data)<<8 },
			Peek:  func() uint8 { return uint8(*v >> 8) },
		}
	}
	return memory.NewPorts(d.label, origin,
		lo(&d.Src), hi(&d.Src),
		lo(&d.Dst), hi(&d.Dst),
		memory.Port{
			Write: func(data uint8) { d.Length = data },
			Peek:  func() uint8 { return d.Length },
		},
		memory.Port{
			Read:  d.status,
			Write: d.control,
			Peek:  d.status,
		},
	)
}

// State is the state of the DMA controller in a snapshot. The completion
// timer is part of the scheduler's snapshot.
type State struct {
	Src       uint16
	Dst       uint16
	Length    uint8
	Busy      bool
	Transfers int
}

// Snapshot creates a copy of the controller state.
func (d *DMA) Snapshot() any {
	return &State{
		Src:       d.Src,
		Dst:       d.Dst,
		Length:    d.Length,
		Busy:      d.Busy,
		Transfers: d.Transfers,
	}
}

// Plumb a state created by Snapshot() into the controller.
func (d *DMA) Plumb(state any) error {
	s, ok := state.(*State)
	if !ok {
		return curated.Errorf(ErrState, state)
	}
	d.Src = s.Src
	d.Dst = s.Dst
	d.Length = s.Length
	d.Busy = s.Busy
	d.Transfers = s.Transfers
	return nil
}
