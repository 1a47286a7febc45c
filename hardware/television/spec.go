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

// Spec is the timing specification of a screen.
type Spec struct {
	ID string

	// the number of frames per second
	RefreshRate float64

	// the total number of scanlines in a frame, including the scanlines in
	// the vertical blank
	ScanlinesTotal int

	// the first and last visible scanlines
	ScanlineTop    int
	ScanlineBottom int

	// the number of horizontal positions in a scanline
	Width int
}

func (spec Spec) String() string {
	return fmt.Sprintf("%s %.2fHz %d scanlines", spec.ID, spec.RefreshRate, spec.ScanlinesTotal)
}

// List of common screen specifications.
var (
	SpecNTSC = Spec{
		ID:             "NTSC",
		RefreshRate:    60.0,
		ScanlinesTotal: 262,
		ScanlineTop:    40,
		ScanlineBottom: 231,
		Width:          228,
	}

	SpecPAL = Spec{
		ID:             "PAL",
		RefreshRate:    50.0,
		ScanlinesTotal: 312,
		ScanlineTop:    48,
		ScanlineBottom: 275,
		Width:          228,
	}

	// a typical raster arcade monitor of the early 1980s
	SpecArcade = Spec{
		ID:             "ARCADE",
		RefreshRate:    60.0,
		ScanlinesTotal: 264,
		ScanlineTop:    16,
		ScanlineBottom: 239,
		Width:          384,
	}
)

// SpecList is the list of specifications that can be selected by ID.
var SpecList = []Spec{SpecNTSC, SpecPAL, SpecArcade}

// FindSpec returns the specification with the ID.
func FindSpec(id string) (Spec, bool) {
	for _, s := range SpecList {
		if s.ID == id {
			return s, true
		}
	}
	return Spec{}, false
}

// Valid returns false if the specification cannot be used by the scheduler.
func (spec Spec) Valid() bool {
	return attotime.UsableHz(spec.RefreshRate) && spec.ScanlinesTotal > 0 &&
		spec.ScanlineTop >= 0 && spec.ScanlineTop <= spec.ScanlineBottom &&
		spec.ScanlineBottom < spec.ScanlinesTotal && spec.Width > 0
}

// FramePeriod returns the duration of one frame.
func (spec Spec) FramePeriod() attotime.Time {
	return attotime.FromHz(spec.RefreshRate)
}
