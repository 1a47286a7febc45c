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

package machines_test

import (
	"reflect"
	"testing"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/cores/nullcore"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/peripherals/beeper"
	"github.com/jetsetilly/cpuexec/machines"
	"github.com/jetsetilly/cpuexec/test"
)

func create(t *testing.T, name string) *hardware.Machine {
	t.Helper()
	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	m, err := machines.Create(env, name)
	test.DemandSuccess(t, err)
	return m
}

func TestNames(t *testing.T) {
	n := machines.Names()
	test.ExpectEquality(t, len(n), 2)
	test.ExpectEquality(t, n[0], "quad")
	test.ExpectEquality(t, n[1], "twocpu")
	for _, name := range n {
		test.ExpectInequality(t, machines.Description(name), "")
	}

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	_, err = machines.Create(env, "unknown")
	test.ExpectSuccess(t, curated.Is(err, machines.ErrUnknownMachine))
}

type mixer struct {
	samples int
	loud    int
}

func (m *mixer) SetAudio(samples []int16) error {
	m.samples += len(samples)
	for _, s := range samples {
		if s != 0 {
			m.loud++
		}
	}
	return nil
}

func TestTwoCPU(t *testing.T) {
	m := create(t, "twocpu")

	mx := &mixer{}
	m.Device(machines.LabelBeeper).(*beeper.Beeper).AddMixer(mx)

	test.DemandSuccess(t, m.RunForFrameCount(40, nil))

	// the watchdog is kicked by the main processor every frame
	test.ExpectEquality(t, m.Sched.FrameNumber(), 40)

	// the note table has been copied to the mailbox by the DMA controller
	main := m.Memory(machines.TagMain)
	v, _ := main.Peek(0x0800)
	test.ExpectEquality(t, v, 22)
	v, _ = main.Peek(0x0807)
	test.ExpectEquality(t, v, 44)
	v, _ = m.Memory(machines.TagSound).Peek(0x080f)
	test.ExpectEquality(t, v, 22)

	// the vertical blank of the final frame has not been serviced yet
	v, _ = main.Peek(0x0010)
	test.ExpectSuccess(t, v >= 38 && v <= 40)

	// roughly 100 interval timer interrupts in 40 frames
	v, _ = main.Peek(0x0011)
	test.ExpectSuccess(t, v > 90 && v < 110)

	// the disabled processor never runs
	mcu, ok := m.Sched.FindCPU(machines.TagMCU)
	test.DemandSuccess(t, ok)
	test.ExpectSuccess(t, m.Sched.IsSuspended(mcu, cpu.SuspendDisable))
	test.ExpectEquality(t, m.Sched.Slot(mcu).Core().(*nullcore.Core).Bursts, 0)

	// cycles are counted while waiting so the sound processor, at twice the
	// clock, has counted more cycles
	mainIdx, _ := m.Sched.FindCPU(machines.TagMain)
	soundIdx, _ := m.Sched.FindCPU(machines.TagSound)
	test.ExpectSuccess(t, m.Sched.TotalCycles(soundIdx) > m.Sched.TotalCycles(mainIdx))

	// the second note has been sent
	v, _ = m.Memory(machines.TagSound).Peek(0x0900)
	test.ExpectEquality(t, v, 2)

	// 40 frames of audio at 22050Hz. notes are played from frame 16
	test.ExpectSuccess(t, mx.samples > 14600 && mx.samples < 14800)
	test.ExpectSuccess(t, mx.loud > 0)
}

func TestRewind(t *testing.T) {
	for _, name := range machines.Names() {
		t.Run(name, func(t *testing.T) {
			m := create(t, name)
			test.DemandSuccess(t, m.RunForFrameCount(10, nil))

			s, err := m.Snapshot()
			test.DemandSuccess(t, err)

			test.DemandSuccess(t, m.RunForFrameCount(10, nil))
			expected, err := m.Snapshot()
			test.DemandSuccess(t, err)

			test.DemandSuccess(t, m.Plumb(s))
			test.DemandSuccess(t, m.RunForFrameCount(10, nil))
			got, err := m.Snapshot()
			test.DemandSuccess(t, err)

			test.ExpectSuccess(t, reflect.DeepEqual(got, expected))
		})
	}
}

func TestDeterminism(t *testing.T) {
	for _, name := range machines.Names() {
		t.Run(name, func(t *testing.T) {
			a := create(t, name)
			b := create(t, name)
			test.DemandSuccess(t, a.RunForFrameCount(25, nil))
			test.DemandSuccess(t, b.RunForFrameCount(25, nil))

			sa, err := a.Snapshot()
			test.DemandSuccess(t, err)
			sb, err := b.Snapshot()
			test.DemandSuccess(t, err)
			test.ExpectSuccess(t, reflect.DeepEqual(sa, sb))
		})
	}
}
