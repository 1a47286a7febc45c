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
	"github.com/jetsetilly/cpuexec/hardware/television"
)

// Screen returns the timing specification of the screen.
func (s *Scheduler) Screen() television.Spec {
	return s.screen
}

// FrameNumber returns the number of frames completed since the last reset.
func (s *Scheduler) FrameNumber() int {
	return s.frame
}

// FrameStart returns the time the current frame started.
func (s *Scheduler) FrameStart() attotime.Time {
	return s.frameStart
}

// elapsed is the time since the start of the frame.
func (s *Scheduler) elapsed() attotime.Time {
	return s.Now().Sub(s.frameStart)
}

// Beam returns the position of the beam at the current time.
func (s *Scheduler) Beam() television.Beam {
	return s.timing.Project(s.elapsed())
}

// Scanline returns the scanline the beam is on.
func (s *Scheduler) Scanline() int {
	return s.Beam().Scanline
}

// HPos returns the horizontal position of the beam.
func (s *Scheduler) HPos() int {
	return s.Beam().HPos
}

// InVBlank returns true if the beam is in the vertical blank.
func (s *Scheduler) InVBlank() bool {
	return s.Beam().VBlank
}

// ScanlinePeriod returns the duration of a scanline.
func (s *Scheduler) ScanlinePeriod() attotime.Time {
	return s.timing.Scanline
}

// TimeUntilScanline returns the time until the beam next reaches the start
// of the scanline.
func (s *Scheduler) TimeUntilScanline(scanline int) attotime.Time {
	return s.timing.TimeUntilScanline(s.elapsed(), scanline)
}

// TimeUntilVBlankStart returns the time until the beam next leaves the
// visible area of the screen.
func (s *Scheduler) TimeUntilVBlankStart() attotime.Time {
	return s.timing.TimeUntilVBlankStart(s.elapsed())
}

// TimeUntilVBlankEnd returns the time until the beam next enters the visible
// area of the screen.
func (s *Scheduler) TimeUntilVBlankEnd() attotime.Time {
	return s.timing.TimeUntilVBlankEnd(s.elapsed())
}
