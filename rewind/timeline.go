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

package rewind

import (
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
)

func (r *Rewind) addTimelineEntry(frame int) {
	var running int
	for i := 0; i < r.m.Sched.NumCPUs(); i++ {
		if r.m.Sched.Slot(i).Suspended() == cpu.SuspendNone {
			running++
		}
	}

	r.timeline.FrameNum = append(r.timeline.FrameNum, frame)
	r.timeline.Running = append(r.timeline.Running, running)
	r.timeline.Boosted = append(r.timeline.Boosted, !r.m.Sched.Boosted().IsZero())
	if len(r.timeline.FrameNum) > timelineLength {
		r.timeline.FrameNum = r.timeline.FrameNum[1:]
		r.timeline.Running = r.timeline.Running[1:]
		r.timeline.Boosted = r.timeline.Boosted[1:]
	}
}

// Timeline provides a summary of the current state of the rewind system.
//
// Useful for frontends, to present the range of frame numbers that are
// available in the rewind history.
type Timeline struct {
	FrameNum []int

	// the number of processors that were not suspended at the end of the
	// frame
	Running []int

	// whether the interleave was boosted at the end of the frame
	Boosted []bool

	// These two "available" fields state the earliest and latest frames that
	// are available in the rewind history.
	//
	// The earliest information in the Timeline array fields may be different.
	AvailableStart int
	AvailableEnd   int
}

const timelineLength = 1000

func newTimeline() Timeline {
	return Timeline{
		FrameNum: make([]int, 0),
		Running:  make([]int, 0),
		Boosted:  make([]bool, 0),
	}
}

func (tl *Timeline) checkIntegrity() error {
	if len(tl.FrameNum) != len(tl.Running) || len(tl.FrameNum) != len(tl.Boosted) {
		return curated.Errorf("timeline arrays are different lengths")
	}

	if len(tl.FrameNum) > 1 {
		prev := tl.FrameNum[0]
		for _, fn := range tl.FrameNum[1:] {
			if fn != prev+1 {
				return curated.Errorf("frame numbers in timeline are not consecutive")
			}
			prev = fn
		}
	}

	return nil
}

// splice removes the frame and every frame after it from the timeline.
func (tl *Timeline) splice(frame int) {
	for i := range tl.FrameNum {
		if frame == tl.FrameNum[i] {
			tl.FrameNum = tl.FrameNum[:i]
			tl.Running = tl.Running[:i]
			tl.Boosted = tl.Boosted[:i]
			break // for loop
		}
	}
}

// GetTimeline returns a copy of the timeline.
func (r *Rewind) GetTimeline() (Timeline, error) {
	if err := r.timeline.checkIntegrity(); err != nil {
		return Timeline{}, curated.Errorf("rewind: %v", err)
	}

	tl := Timeline{
		FrameNum: append([]int{}, r.timeline.FrameNum...),
		Running:  append([]int{}, r.timeline.Running...),
		Boosted:  append([]bool{}, r.timeline.Boosted...),
	}
	f := r.GetFrames()
	tl.AvailableStart = f.Start
	tl.AvailableEnd = f.End

	return tl, nil
}
