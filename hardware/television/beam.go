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

package television

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/attotime"
)

// Beam is the position of the electron beam.
type Beam struct {
	Scanline int
	HPos     int
	VBlank   bool
}

func (b Beam) String() string {
	if b.VBlank {
		return fmt.Sprintf("scanline %d hpos %d (vblank)", b.Scanline, b.HPos)
	}
	return fmt.Sprintf("scanline %d hpos %d", b.Scanline, b.HPos)
}

// Timing projects beam positions for a frame period. The frame period is
// given separately from the Spec because the scheduler rounds it to a
// whole number of vertical blank subdivisions.
type Timing struct {
	Spec     Spec
	Frame    attotime.Time
	Scanline attotime.Time
}

// NewTiming is the preferred method of initialisation for the Timing type.
func NewTiming(spec Spec, frame attotime.Time) Timing {
	return Timing{
		Spec:     spec,
		Frame:    frame,
		Scanline: frame.DivInt(int64(spec.ScanlinesTotal)),
	}
}

// Project returns the position of the beam after the elapsed time since the
// start of the frame.
func (tm Timing) Project(elapsed attotime.Time) Beam {
	if elapsed.IsNegative() {
		elapsed = attotime.Zero
	}

	// scanline periods are always less than one second
	per := tm.Scanline.AsAttoseconds()
	if per <= 0 {
		return Beam{}
	}

	var scanline int64
	var rem int64
	if elapsed.Seconds > 0 {
		// whole seconds are rare (only when the scheduler has stalled) and
		// are reduced one second at a time to avoid overflow
		linesPerSecond := attotime.PerSecond / per
		remPerSecond := attotime.PerSecond % per
		scanline = elapsed.Seconds * linesPerSecond
		carry := elapsed.Seconds*remPerSecond + elapsed.Attoseconds
		scanline += carry / per
		rem = carry % per
	} else {
		scanline = elapsed.Attoseconds / per
		rem = elapsed.Attoseconds % per
	}

	b := Beam{
		Scanline: int(scanline),
		HPos:     int(rem / (per / int64(tm.Spec.Width))),
	}
	if b.HPos >= tm.Spec.Width {
		b.HPos = tm.Spec.Width - 1
	}
	if b.Scanline >= tm.Spec.ScanlinesTotal {
		b.Scanline = tm.Spec.ScanlinesTotal - 1
	}
	b.VBlank = b.Scanline < tm.Spec.ScanlineTop || b.Scanline > tm.Spec.ScanlineBottom
	return b
}

// ScanlineStart returns the time from the start of the frame to the start of
// the scanline.
func (tm Timing) ScanlineStart(scanline int) attotime.Time {
	return tm.Scanline.MulInt(int64(scanline))
}

// TimeUntilScanline returns the time until the next start of the scanline.
// If the beam is at or beyond the start of the scanline then the result is
// the time until the scanline in the next frame.
func (tm Timing) TimeUntilScanline(elapsed attotime.Time, scanline int) attotime.Time {
	if scanline < 0 || scanline >= tm.Spec.ScanlinesTotal {
		scanline = 0
	}
	target := tm.ScanlineStart(scanline)
	if !target.After(elapsed) {
		target = target.Add(tm.Frame)
	}
	return target.Sub(elapsed)
}

// TimeUntilVBlankStart returns the time until the scanline after the last
// visible scanline.
func (tm Timing) TimeUntilVBlankStart(elapsed attotime.Time) attotime.Time {
	if tm.Spec.ScanlineBottom+1 >= tm.Spec.ScanlinesTotal {
		return tm.Frame.Sub(elapsed)
	}
	return tm.TimeUntilScanline(elapsed, tm.Spec.ScanlineBottom+1)
}

// TimeUntilVBlankEnd returns the time until the first visible scanline.
func (tm Timing) TimeUntilVBlankEnd(elapsed attotime.Time) attotime.Time {
	return tm.TimeUntilScanline(elapsed, tm.Spec.ScanlineTop)
}
