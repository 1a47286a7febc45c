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

	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/test"
)

func TestVBlankIloops(t *testing.T) {
	cfg, _ := newConfig(1000000, 1000000)

	var iloops [2][]int
	record := func(ctl cpu.Controller, index int) {
		iloops[index] = append(iloops[index], ctl.GetIloops())
	}
	cfg.CPUs[0].VBlankInterrupt = record
	cfg.CPUs[0].VBlankPerFrame = 3
	cfg.CPUs[1].VBlankInterrupt = record
	cfg.CPUs[1].VBlankPerFrame = 2

	s := newScheduler(t, cfg)
	test.DemandSuccess(t, s.RunFrame())
	test.DemandSuccess(t, s.RunFrame())

	test.ExpectEquality(t, len(iloops[0]), 6)
	test.ExpectEquality(t, len(iloops[1]), 4)
	for i, v := range []int{2, 1, 0, 2, 1, 0} {
		test.ExpectEquality(t, iloops[0][i], v)
	}
	for i, v := range []int{1, 0, 1, 0} {
		test.ExpectEquality(t, iloops[1][i], v)
	}
	test.ExpectEquality(t, s.FrameNumber(), 2)
}

func TestHoldAcknowledge(t *testing.T) {
	cfg, cores := newConfig(1000000)
	cfg.CPUs[0].VBlankInterrupt = cpu.HoldIRQ(2)
	cfg.CPUs[0].VBlankPerFrame = 1

	s := newScheduler(t, cfg)
	s.SetIRQVector(0, 2, 0x40)

	var vectors []int
	cores[0].hook = func() {
		if cores[0].lines[2] == cpu.HoldLine {
			vectors = append(vectors, cores[0].irq(2))
			test.ExpectEquality(t, s.Slot(0).Line(2), cpu.ClearLine)
		}
	}

	// the vblank interrupt is raised at the end of the frame
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, len(vectors), 0)
	test.ExpectEquality(t, s.Slot(0).Line(2), cpu.HoldLine)

	test.DemandSuccess(t, s.RunFrame())
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, len(vectors), 2)
	for _, v := range vectors {
		test.ExpectEquality(t, v, 0x40)
	}
	test.ExpectEquality(t, cores[0].lines[2], cpu.HoldLine)

	// the default vector
	s.SetIRQVector(0, 2, -1)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, vectors[2], -1)
}

func TestPulseLine(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)

	s.SetIRQLine(0, 1, cpu.PulseLine)
	test.ExpectEquality(t, cores[0].lines[1], cpu.PulseLine)
	test.ExpectEquality(t, s.Slot(0).Line(1), cpu.ClearLine)

	s.SetIRQLine(0, 1, cpu.AssertLine)
	test.ExpectEquality(t, s.Slot(0).Line(1), cpu.AssertLine)
	s.SetIRQLine(0, 1, cpu.ClearLine)
	test.ExpectEquality(t, s.Slot(0).Line(1), cpu.ClearLine)
	test.ExpectEquality(t, cores[0].lines[1], cpu.ClearLine)
}

func TestTimedInterrupt(t *testing.T) {
	cfg, _ := newConfig(1000000)

	var count int
	cfg.CPUs[0].TimedInterrupt = func(_ cpu.Controller, _ int) {
		count++
	}
	cfg.CPUs[0].TimedPerSecond = 600

	s := newScheduler(t, cfg)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, count, 10)

	// no interrupts are delivered while the processor is halted
	s.SetHaltLine(0, cpu.AssertLine)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, count, 10)

	s.SetHaltLine(0, cpu.ClearLine)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, count, 20)
}

func TestYieldUntilInt(t *testing.T) {
	cfg, cores := newConfig(1000000)
	cfg.CPUs[0].VBlankInterrupt = cpu.HoldIRQ(0)
	cfg.CPUs[0].VBlankPerFrame = 2

	s := newScheduler(t, cfg)

	var yielded bool
	cores[0].hook = func() {
		if cores[0].lines[0] == cpu.HoldLine {
			cores[0].irq(0)
		}
		if !yielded {
			yielded = true
			s.YieldUntilInt()
		}
	}

	// the processor sleeps until the vblank interrupt in the middle of the
	// frame. the cycles it would have run are not counted
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectWithin(t, s.TotalCycles(0), 16667-8333, 2)
	test.ExpectEquality(t, s.Slot(0).Suspended(), cpu.SuspendNone)
}
