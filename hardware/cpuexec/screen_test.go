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

package cpuexec_test

import (
	"testing"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/hardware/television"
	"github.com/jetsetilly/cpuexec/test"
)

func TestBeam(t *testing.T) {
	cfg, cores := newConfig(1000000)
	cfg.Screen = television.Spec{
		ID:             "TEST50",
		RefreshRate:    50,
		ScanlinesTotal: 100,
		ScanlineTop:    10,
		ScanlineBottom: 89,
		Width:          100,
	}
	s := newScheduler(t, cfg)
	test.ExpectEquality(t, s.FramePeriod(), attotime.FromMilliseconds(20))
	test.ExpectEquality(t, s.ScanlinePeriod(), attotime.FromMicroseconds(200))

	var checked int
	cores[0].hook = func() {
		switch s.TotalCycles(0) {
		case 1000:
			checked++
			test.ExpectEquality(t, s.Scanline(), 5)
			test.ExpectSuccess(t, s.InVBlank())
			test.ExpectEquality(t, s.TimeUntilVBlankEnd(), attotime.FromMicroseconds(1000))
		case 10100:
			checked++
			test.ExpectEquality(t, s.Scanline(), 50)
			test.ExpectEquality(t, s.HPos(), 50)
			test.ExpectFailure(t, s.InVBlank())
			test.ExpectEquality(t, s.TimeUntilScanline(60), attotime.FromMicroseconds(1900))
			test.ExpectEquality(t, s.TimeUntilScanline(50), attotime.FromMicroseconds(19900))
			test.ExpectEquality(t, s.TimeUntilVBlankStart(), attotime.FromMicroseconds(7900))
		case 30100:
			// the beam position is relative to the start of the frame
			checked++
			test.ExpectEquality(t, s.Scanline(), 50)
		}
	}

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, s.FrameStart(), attotime.FromMilliseconds(20))
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, checked, 3)
}
