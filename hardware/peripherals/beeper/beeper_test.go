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

package beeper_test

import (
	"testing"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/hardware/peripherals/beeper"
	"github.com/jetsetilly/cpuexec/hardware/timer"
	"github.com/jetsetilly/cpuexec/logger"
	"github.com/jetsetilly/cpuexec/test"
)

type mixer struct {
	samples []int16
}

func (m *mixer) SetAudio(samples []int16) error {
	m.samples = append(m.samples, samples...)
	return nil
}

func TestSquareWave(t *testing.T) {
	q := timer.NewQueue(logger.Allow)
	b := beeper.NewBeeper(logger.Allow, "beeper", q, 8000)
	m := &mixer{}
	b.AddMixer(m)
	b.Reset()

	// 1000Hz square wave sampled at 8000Hz is four samples high followed by
	// four samples low
	area := b.Area(0x0900)
	test.ExpectSuccess(t, area.Write(0x0900+beeper.PortFrequency, 100))
	test.ExpectSuccess(t, area.Write(0x0900+beeper.PortVolume, 2))

	// the toggle timer was allocated before the sample timer so it fires
	// first when they coincide
	q.Advance(attotime.FromMilliseconds(2))
	test.DemandSuccess(t, b.NewFrame(0))

	test.ExpectEquality(t, len(m.samples), 16)
	var high int
	for _, s := range m.samples {
		if s > 0 {
			high++
		}
		test.ExpectEquality(t, s == 256 || s == -256, true)
	}
	test.ExpectEquality(t, high, 8)

	// the buffer is emptied at the end of the frame
	test.DemandSuccess(t, b.NewFrame(1))
	test.ExpectEquality(t, len(m.samples), 16)

	// silence
	b.SetFrequency(0)
	q.Advance(attotime.FromMilliseconds(3))
	test.DemandSuccess(t, b.NewFrame(2))
	test.ExpectEquality(t, len(m.samples), 24)
	for _, s := range m.samples[16:] {
		test.ExpectEquality(t, s, 0)
	}
}
