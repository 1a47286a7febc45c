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
	"math"
	"strings"
	"testing"

	"github.com/jetsetilly/cpuexec/assert"
	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/config"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/cpuexec"
	"github.com/jetsetilly/cpuexec/logger"
	"github.com/jetsetilly/cpuexec/test"
)

// logContains returns true if any entry in the central log contains the
// string.
func logContains(s string) bool {
	var found bool
	logger.BorrowLog(func(entries []logger.Entry) {
		for _, e := range entries {
			if strings.Contains(e.String(), s) {
				found = true
			}
		}
	})
	return found
}

func TestTwoCPUs(t *testing.T) {
	for _, interleave := range []int{1, 7, 100} {
		cfg, cores := newConfig(1000000, 2000000)
		cfg.Interleave = interleave
		s := newScheduler(t, cfg)

		test.DemandSuccess(t, s.RunFrame())
		test.ExpectWithin(t, s.TotalCycles(0), 16667, 1, interleave)
		test.ExpectWithin(t, s.TotalCycles(1), 33333, 1, interleave)
		test.ExpectEquality(t, uint64(cores[0].executed), s.TotalCycles(0))
		test.ExpectEquality(t, uint64(cores[1].executed), s.TotalCycles(1))
		test.ExpectEquality(t, s.FrameNumber(), 1)
		test.ExpectEquality(t, s.FrameStart(), s.FramePeriod())

		// at least one burst per timeslice for each processor
		test.ExpectSuccess(t, cores[0].bursts >= interleave)
	}
}

func TestFrameBoundary(t *testing.T) {
	cfg, _ := newConfig(1000000, 2000000, 3579545)
	cfg.Interleave = 13
	s := newScheduler(t, cfg)

	for i := 0; i < 5; i++ {
		test.DemandSuccess(t, s.RunFrame())
		for i := 0; i < s.NumCPUs(); i++ {
			test.ExpectFailure(t, s.LocalTime(i).After(s.FrameStart()), i)

			// local time is always within a cycle of the frame boundary
			period := s.Slot(i).Rate().Period()
			test.ExpectFailure(t, s.FrameStart().Sub(s.LocalTime(i)).After(period), i)
		}
	}

	// cycle counts are derived from absolute time so there is no drift
	test.ExpectEquality(t, s.TotalCycles(0), uint64(83333))
	test.ExpectEquality(t, s.TotalCycles(1), uint64(166666))
}

func TestMonotonicity(t *testing.T) {
	cfg, cores := newConfig(1000000, 2000000)
	cfg.Interleave = 10
	s := newScheduler(t, cfg)
	workload(s, cores)

	last := make([]attotime.Time, s.NumCPUs())
	lastNow := s.Now()
	for s.FrameNumber() < 5 {
		s.Timeslice()
		test.ExpectFailure(t, s.Now().Before(lastNow))
		lastNow = s.Now()
		for i := range last {
			test.ExpectFailure(t, s.LocalTime(i).Before(last[i]), i)
			last[i] = s.LocalTime(i)
		}
	}
}

func TestSuspendResume(t *testing.T) {
	cfg, cores := newConfig(1000000, 2000000)
	s := newScheduler(t, cfg)

	s.Suspend(1, cpu.SuspendHalt, false)
	test.ExpectSuccess(t, s.IsSuspended(1, cpu.SuspendHalt))
	test.ExpectFailure(t, s.IsSuspended(1, cpu.SuspendReset))
	test.ExpectSuccess(t, s.IsSuspended(1, cpu.SuspendAny))

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, cores[1].executed, 0)
	test.ExpectEquality(t, s.TotalCycles(1), uint64(0))
	test.ExpectEquality(t, s.LocalTime(1), attotime.Zero)

	// resuming with a reason that isn't set does nothing
	s.Resume(1, cpu.SuspendSpin)
	test.ExpectSuccess(t, s.IsSuspended(1, cpu.SuspendHalt))

	// the processor doesn't eat cycles so its local time is moved to the
	// current time
	s.Resume(1, cpu.SuspendHalt)
	test.ExpectFailure(t, s.IsSuspended(1, cpu.SuspendAny))
	test.ExpectEquality(t, s.LocalTime(1), s.Now())
	test.ExpectEquality(t, s.TotalCycles(1), uint64(0))

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, s.TotalCycles(1), uint64(33333))

	// a processor that eats cycles while suspended is charged for them
	s.Suspend(1, cpu.SuspendHalt, true)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, s.TotalCycles(1), uint64(66666))
	test.ExpectEquality(t, cores[1].executed, 33333)
	s.Resume(1, cpu.SuspendHalt)
}

func TestMultipleReasons(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)

	s.Suspend(0, cpu.SuspendHalt, false)
	s.Suspend(0, cpu.SuspendReset, false)
	s.Resume(0, cpu.SuspendHalt)
	test.ExpectSuccess(t, s.IsSuspended(0, cpu.SuspendReset))

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, cores[0].executed, 0)

	s.Resume(0, cpu.SuspendReset)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, cores[0].executed, 16666)
}

func TestTriggerTimeWake(t *testing.T) {
	cfg, cores := newConfig(1000000, 2000000)
	s := newScheduler(t, cfg)

	cores[0].hook = func() {
		if s.TotalCycles(0) == 1 {
			s.SuspendUntilTrigger(1, cpu.SuspendSpin, false, 5)
			s.TriggerTime(attotime.FromMilliseconds(1), 5)
		}
	}

	var wokeFrame = -1
	var wokeTime attotime.Time
	cores[1].hook = func() {
		if wokeFrame == -1 && s.TotalCycles(1) == 1 {
			wokeFrame = s.FrameNumber()
			wokeTime = s.Now()
		}
	}

	test.DemandSuccess(t, s.RunFrame())

	// processor 1 was suspended before it ran and woken 1ms after the
	// instruction that suspended it
	test.ExpectEquality(t, wokeFrame, 0)
	test.ExpectEquality(t, wokeTime, attotime.FromMicroseconds(1001).Add(attotime.FromAttoseconds(attotime.PerMicrosecond/2)))
	test.ExpectEquality(t, s.TotalCycles(1), uint64(31331))
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666))
}

func TestTriggerWakeOrdering(t *testing.T) {
	cfg, cores := newConfig(1000000, 1000000)
	s := newScheduler(t, cfg)

	var wokeFrame = -1
	var wokeTime attotime.Time
	cores[0].hook = func() {
		switch s.TotalCycles(0) {
		case 1:
			s.YieldUntilTrigger(7)
		case 2:
			wokeFrame = s.FrameNumber()
			wokeTime = s.Now()
		}
	}

	cores[1].hook = func() {
		if s.TotalCycles(1) == 500 {
			s.Trigger(7)
		}
	}

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, wokeFrame, 0)
	test.ExpectEquality(t, wokeTime, attotime.FromMicroseconds(501))
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16167))
	test.ExpectEquality(t, s.TotalCycles(1), uint64(16666))
}

func TestSpinUntilTime(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)

	cores[0].hook = func() {
		if s.TotalCycles(0) == 100 {
			s.SpinUntilTime(attotime.FromMicroseconds(1000))
		}
	}
	test.DemandSuccess(t, s.RunFrame())

	// spinning eats cycles so the total is unaffected
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666))
	test.ExpectEquality(t, cores[0].executed, 16666-1000)
	test.ExpectFailure(t, s.IsSuspended(0, cpu.SuspendAny))
}

func TestYieldUntilTime(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)

	cores[0].hook = func() {
		if s.TotalCycles(0) == 100 {
			s.YieldUntilTime(attotime.FromMicroseconds(1000))
		}
	}
	test.DemandSuccess(t, s.RunFrame())

	// yielding doesn't eat cycles
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666-1000))
	test.ExpectEquality(t, cores[0].executed, 16666-1000)
}

func TestSpin(t *testing.T) {
	cfg, cores := newConfig(1000000, 1000000)
	cfg.Interleave = 10
	s := newScheduler(t, cfg)

	// processor 0 spins every 100 cycles. spinning ends the timeslice at
	// the point the processor was stopped
	cores[0].hook = func() {
		if s.TotalCycles(0)%100 == 0 {
			s.Spin()
		}
	}
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666))
	test.ExpectEquality(t, s.TotalCycles(1), uint64(16666))
	test.ExpectSuccess(t, cores[0].bursts >= 166)
	test.ExpectSuccess(t, cores[1].bursts >= 166)
}

func TestSpinUntilInt(t *testing.T) {
	cfg, cores := newConfig(1000000, 1000000)
	s := newScheduler(t, cfg)

	cores[0].hook = func() {
		if s.TotalCycles(0) == 10 {
			s.SpinUntilInt()
		}
	}
	cores[1].hook = func() {
		if s.TotalCycles(1) == 2000 {
			s.SetIRQLine(0, 0, cpu.AssertLine)
		}
	}

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, cores[0].lines[0], cpu.AssertLine)
	test.ExpectEquality(t, s.Slot(0).Line(0), cpu.AssertLine)

	// the spinning processor ate the cycles between spinning and the
	// interrupt
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666))
	test.ExpectEquality(t, cores[0].executed, 16666-(2000-10))
	test.ExpectFailure(t, s.IsSuspended(0, cpu.SuspendAny))
}

func TestAbortTimeslice(t *testing.T) {
	cfg, cores := newConfig(1000000, 1000000)
	s := newScheduler(t, cfg)

	var localTime attotime.Time
	cores[0].hook = func() {
		if s.TotalCycles(0) == 300 {
			s.AbortTimeslice()
		}
	}
	cores[1].hook = func() {
		if s.TotalCycles(1) == 300 {
			localTime = s.LocalTime(0)
		}
	}

	s.Timeslice()

	// processor 1 doesn't run further than processor 0
	test.ExpectEquality(t, s.TotalCycles(0), uint64(300))
	test.ExpectEquality(t, s.TotalCycles(1), uint64(300))
	test.ExpectEquality(t, localTime, attotime.FromMicroseconds(300))
	test.ExpectEquality(t, s.Now(), attotime.FromMicroseconds(300))
}

func TestCycleAccessors(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)

	test.ExpectEquality(t, s.ActiveCPU(), -1)

	var active int
	var left, l1, l2, l3 int
	var run int
	cores[0].hook = func() {
		switch s.TotalCycles(0) {
		case 1:
			active = s.ActiveCPU()
			left = s.CyclesLeft()
			s.AdjustIcount(-100)
			l1 = s.CyclesLeft()
			s.AdjustIcount(50)
			l2 = s.CyclesLeft()
			s.AdjustIcount(1000)
			l3 = s.CyclesLeft()
			run = s.CyclesRun()
		case 1000:
			s.EatCycles(99)
		}
	}

	logger.Clear()
	test.DemandSuccess(t, s.RunFrame())

	test.ExpectEquality(t, active, 0)
	test.ExpectEquality(t, left, 16665)
	test.ExpectEquality(t, l1, left-100)
	test.ExpectEquality(t, l2, left-50)
	test.ExpectEquality(t, l3, left)
	test.ExpectEquality(t, run, 1)
	test.ExpectSuccess(t, logContains("adjust icount of 1000 limited to 50"))

	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666))
	test.ExpectEquality(t, cores[0].executed, 16666-99)
	test.ExpectEquality(t, s.TotalCycles32(0), uint32(16666))
}

func TestClock(t *testing.T) {
	cfg, _ := newConfig(1000000)
	s := newScheduler(t, cfg)

	s.SetClock(0, 2000000)
	test.ExpectEquality(t, s.GetClock(0), uint64(2000000))
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, s.TotalCycles(0), uint64(33333))

	s.SetClockScale(0, 0.5)
	test.ExpectEquality(t, s.GetClockScale(0), 0.5)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectWithin(t, s.TotalCycles(0), 33333+16667, 1)

	// zero clocks are refused
	s.SetClock(0, 0)
	test.ExpectEquality(t, s.GetClock(0), uint64(2000000))
}

func TestClockChangeDuringBurst(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)

	cores[0].hook = func() {
		if s.TotalCycles(0) == 1000 {
			s.SetClock(0, 2000000)
		}
	}
	test.DemandSuccess(t, s.RunFrame())

	// 1ms at 1MHz and the rest of the frame at 2MHz
	test.ExpectEquality(t, s.TotalCycles(0), uint64(1000+31333))
}

func TestBadCore(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)
	cores[0].bad = func(cycles int) int {
		return cycles * 2
	}

	logger.Clear()
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666))
	test.ExpectFailure(t, s.LocalTime(0).After(s.FrameStart()))
	test.ExpectSuccess(t, logContains("a: execute returned 33332 cycles for a burst of 16666"))
}

func TestContract(t *testing.T) {
	if assert.Enabled {
		t.Skip("contract violations panic when assertions are enabled")
	}

	cfg, _ := newConfig(1000000)
	s := newScheduler(t, cfg)

	logger.Clear()
	s.Spin()
	test.ExpectSuccess(t, logContains("contract violation: spin until trigger: no processor is running"))
	s.Suspend(9, cpu.SuspendHalt, false)
	test.ExpectSuccess(t, logContains("contract violation: suspend: cpu index 9"))
	test.ExpectEquality(t, s.CyclesLeft(), 0)
}

func TestDisabled(t *testing.T) {
	cfg, cores := newConfig(1000000, 1000000)
	cfg.CPUs[1].Disabled = true
	s := newScheduler(t, cfg)

	test.ExpectSuccess(t, s.IsSuspended(1, cpu.SuspendDisable))
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, cores[1].executed, 0)

	// a spurious trigger does not resume a disabled processor
	s.Trigger(cpuexec.TriggerTimeslice)
	test.ExpectSuccess(t, s.IsSuspended(1, cpu.SuspendDisable))

	s.Resume(1, cpu.SuspendDisable)
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectSuccess(t, cores[1].executed > 0)

	// disabled processors are suspended again on reset
	s.Reset()
	test.ExpectSuccess(t, s.IsSuspended(1, cpu.SuspendDisable))
}

func TestResetAndHaltLines(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)
	test.ExpectEquality(t, cores[0].resets, 1)

	s.SetHaltLine(0, cpu.AssertLine)
	test.ExpectSuccess(t, s.IsSuspended(0, cpu.SuspendHalt))
	test.DemandSuccess(t, s.RunFrame())

	// halted processors eat cycles
	test.ExpectEquality(t, cores[0].executed, 0)
	test.ExpectEquality(t, s.TotalCycles(0), uint64(16666))

	s.SetHaltLine(0, cpu.ClearLine)
	test.ExpectFailure(t, s.IsSuspended(0, cpu.SuspendHalt))

	s.SetResetLine(0, cpu.AssertLine)
	test.ExpectSuccess(t, s.IsSuspended(0, cpu.SuspendReset))
	test.ExpectEquality(t, cores[0].resets, 1)
	s.SetResetLine(0, cpu.ClearLine)
	test.ExpectFailure(t, s.IsSuspended(0, cpu.SuspendReset))
	test.ExpectEquality(t, cores[0].resets, 2)

	// clearing a line that isn't asserted does nothing
	s.SetResetLine(0, cpu.ClearLine)
	test.ExpectEquality(t, cores[0].resets, 2)

	s.SetResetLine(0, cpu.PulseLine)
	test.ExpectEquality(t, cores[0].resets, 3)
	test.ExpectFailure(t, s.IsSuspended(0, cpu.SuspendReset))
}

func TestBoostInterleave(t *testing.T) {
	cfg, cores := newConfig(1000000)
	s := newScheduler(t, cfg)

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, cores[0].bursts, 1)

	s.BoostInterleave(attotime.FromMicroseconds(100), attotime.FromMilliseconds(1))
	test.ExpectEquality(t, s.Boosted(), attotime.FromMicroseconds(100))

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectSuccess(t, cores[0].bursts >= 11)
	test.ExpectEquality(t, s.Boosted(), attotime.Zero)

	// the boost has ended
	b := cores[0].bursts
	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, cores[0].bursts, b+1)

	// a zero slice is the shortest possible timeslice
	s.BoostInterleave(attotime.Zero, attotime.FromMicroseconds(10))
	test.ExpectEquality(t, s.Boosted(), attotime.FromMicroseconds(1))
}

func TestFrameListener(t *testing.T) {
	cfg, _ := newConfig(1000000)
	s := newScheduler(t, cfg)

	r := &frameRecorder{}
	s.AddFrameListener(r)
	for i := 0; i < 3; i++ {
		test.DemandSuccess(t, s.RunFrame())
	}
	test.ExpectEquality(t, len(r.frames), 3)
	test.ExpectEquality(t, r.frames[2], 3)
}

func TestTimerTieBreak(t *testing.T) {
	cfg, _ := newConfig(1000000, 2000000)
	s := newScheduler(t, cfg)

	var order strings.Builder
	for _, tag := range []string{"x", "y", "z"} {
		tag := tag
		h := s.Timers.Alloc(tag, func(_ int) {
			order.WriteString(tag)
		})
		s.Timers.AdjustOneShot(h, attotime.FromMicroseconds(500), 0)
	}

	test.DemandSuccess(t, s.RunFrame())
	test.ExpectEquality(t, order.String(), "xyz")
}

func TestInvalidConfig(t *testing.T) {
	cfg, _ := newConfig()
	_, err := newSchedulerErr(cfg)
	test.ExpectSuccess(t, curated.Is(err, config.ErrNoCPUs))
}

func TestUnusableTiming(t *testing.T) {
	// an infinite refresh rate has no frame period
	cfg, _ := newConfig(1000000)
	cfg.Screen.RefreshRate = math.Inf(1)
	_, err := newSchedulerErr(cfg)
	test.ExpectSuccess(t, curated.Is(err, config.ErrRefreshRate))

	cfg, _ = newConfig(1000000)
	cfg.CPUs[0].TimedInterrupt = cpu.HoldIRQ(0)
	cfg.CPUs[0].TimedPerSecond = math.Inf(1)
	_, err = newSchedulerErr(cfg)
	test.ExpectSuccess(t, curated.Is(err, config.ErrInterruptConfig))

	// a frame of two attoseconds can't be divided into three vblank periods
	cfg, _ = newConfig(1000000)
	cfg.Screen.RefreshRate = 5e17
	cfg.CPUs[0].VBlankInterrupt = cpu.HoldIRQ(0)
	cfg.CPUs[0].VBlankPerFrame = 3
	_, err = newSchedulerErr(cfg)
	test.ExpectSuccess(t, curated.Is(err, cpuexec.ErrTiming))
}
