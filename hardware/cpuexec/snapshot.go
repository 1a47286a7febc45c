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
	"math"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/clocks"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/timer"
)

// Sentinal error patterns for snapshots.
const (
	ErrSnapshotInBurst  = "cpuexec: snapshot: not at a frame boundary"
	ErrSnapshotMismatch = "cpuexec: snapshot: %s"
	ErrSnapshotFormat   = "cpuexec: snapshot format: %s"
)

// SlotSnapshot is the state of a single processor. There is no burst state
// because snapshots are only taken between frames.
type SlotSnapshot struct {
	Tag             string
	LocalTime       attotime.Time
	TotalCycles     uint64
	Suspend         cpu.SuspendReason
	EatCycles       bool
	Hz              uint64
	Scale           float64
	WaitTrigger     int
	Iloops          int
	VBlankCountdown int
	ResetLine       cpu.LineState
	HaltLine        cpu.LineState
	Lines           [cpu.MaxIRQLines]cpu.LineState
	Vectors         [cpu.MaxIRQLines]int
}

// Snapshot of the scheduler. Snapshots can only be taken, and plumbed in,
// between frames.
type Snapshot struct {
	Slots      []SlotSnapshot
	Frame      int
	FrameStart attotime.Time
	VBlankSub  int
	BoostSlice attotime.Time
	Timers     *timer.Snapshot
}

// Snapshot creates a copy of the scheduler state.
func (s *Scheduler) Snapshot() (*Snapshot, error) {
	if s.active != nil || s.Timers.Firing() || s.inSlice {
		return nil, curated.Errorf(ErrSnapshotInBurst)
	}

	snp := &Snapshot{
		Frame:      s.frame,
		FrameStart: s.frameStart,
		VBlankSub:  s.vblankSub,
		BoostSlice: s.boostSlice,
		Timers:     s.Timers.Snapshot(),
	}

	for _, sl := range s.slots {
		r := sl.Rate()
		snp.Slots = append(snp.Slots, SlotSnapshot{
			Tag:             sl.tag,
			LocalTime:       sl.localTime,
			TotalCycles:     sl.totalCycles,
			Suspend:         sl.suspend,
			EatCycles:       sl.eatCycles,
			Hz:              r.Hz(),
			Scale:           r.Scale(),
			WaitTrigger:     sl.waitTrigger,
			Iloops:          sl.iloops,
			VBlankCountdown: sl.vblankCountdown,
			ResetLine:       sl.resetLine,
			HaltLine:        sl.haltLine,
			Lines:           sl.lines,
			Vectors:         sl.vectors,
		})
	}

	return snp, nil
}

// Plumb the snapshot into the scheduler. The snapshot must have been taken
// from a scheduler created with the same machine configuration.
//
// The scheduler is not changed if an error is returned.
func (s *Scheduler) Plumb(snp *Snapshot) error {
	if s.active != nil || s.Timers.Firing() || s.inSlice {
		return curated.Errorf(ErrSnapshotInBurst)
	}

	if len(snp.Slots) != len(s.slots) {
		return curated.Errorf(ErrSnapshotMismatch, "wrong number of processors")
	}
	for i, ss := range snp.Slots {
		if ss.Tag != s.slots[i].tag {
			return curated.Errorf(ErrSnapshotMismatch, "processor "+ss.Tag+" not in machine")
		}
		if ss.Hz == 0 || !(ss.Scale > 0) || math.IsInf(ss.Scale, 0) {
			return curated.Errorf(ErrSnapshotMismatch, "processor "+ss.Tag+" has an invalid clock")
		}
	}
	if snp.Timers == nil {
		return curated.Errorf(ErrSnapshotMismatch, "no timers")
	}

	if err := s.Timers.Plumb(snp.Timers); err != nil {
		return curated.Errorf(ErrSnapshotMismatch, err)
	}

	s.frame = snp.Frame
	s.frameStart = snp.FrameStart
	s.vblankSub = snp.VBlankSub
	s.boostSlice = snp.BoostSlice
	s.frameComplete = false

	for i, ss := range snp.Slots {
		sl := s.slots[i]
		sl.localTime = ss.LocalTime
		sl.totalCycles = ss.TotalCycles
		sl.suspend = ss.Suspend
		sl.eatCycles = ss.EatCycles
		sl.rate = clocks.NewRate(ss.Hz, ss.Scale)
		sl.pendingRate = nil
		sl.waitTrigger = ss.WaitTrigger
		sl.iloops = ss.Iloops
		sl.vblankCountdown = ss.VBlankCountdown
		sl.resetLine = ss.ResetLine
		sl.haltLine = ss.HaltLine
		sl.lines = ss.Lines
		sl.vectors = ss.Vectors
	}

	s.computeQuantum()

	return nil
}
