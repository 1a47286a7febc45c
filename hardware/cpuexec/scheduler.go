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

	"github.com/jetsetilly/cpuexec/assert"
	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware/clocks"
	"github.com/jetsetilly/cpuexec/hardware/config"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/television"
	"github.com/jetsetilly/cpuexec/hardware/timer"
	"github.com/jetsetilly/cpuexec/logger"
)

// ErrTiming is returned by NewScheduler() when the vblank interrupts divide
// the frame into periods that are too short to be represented.
const ErrTiming = "cpuexec: %s: vblank period is too short"

// the largest number of cycles given to a core in a single burst
const maxBurst = math.MaxInt32

// tags of the timers allocated by the scheduler
const (
	vblankTimerTag   = "cpuexec.vblank"
	boostTimerTag    = "cpuexec.boost"
	boostEndTimerTag = "cpuexec.boostend"
	triggerTimerTag  = "cpuexec.trigger"
	timedTimerPrefix = "cpuexec.timed."
)

// FrameListener implementations are told when a frame has completed.
type FrameListener interface {
	NewFrame(frame int) error
}

// Scheduler runs the processors of a machine.
type Scheduler struct {
	env   *environment.Environment
	owner assert.Owner

	name       string
	screen     television.Spec
	interleave int

	// the timer queue is shared with the devices of the machine
	Timers *timer.Queue

	slots []*Slot

	// the burst that is currently running. nil if no burst is running
	ctx    Context
	active *Context

	// the processor whose interrupt function is being called. -1 if no
	// interrupt function is being called
	interruptCPU int

	// the target time of the current timeslice. only valid when inSlice is
	// true
	inSlice bool
	target  attotime.Time

	frame         int
	frameStart    attotime.Time
	framePeriod   attotime.Time
	frameComplete bool

	// the frame is divided into vblankMultiplier parts. vblankSub counts the
	// parts that have passed in the current frame
	vblankMultiplier int
	vblankSub        int
	vblankTimer      timer.Handle

	quantum    attotime.Time
	minQuantum attotime.Time

	boostTimer    timer.Handle
	boostEndTimer timer.Handle
	boostSlice    attotime.Time

	timing television.Timing

	listeners []FrameListener
}

// NewScheduler is the preferred method of initialisation for the Scheduler
// type. The configuration is validated and the scheduler reset.
func NewScheduler(env *environment.Environment, cfg *config.Config) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scheduler{
		env:          env,
		owner:        assert.NewOwner(),
		name:         cfg.Name,
		screen:       cfg.Screen,
		interleave:   cfg.Interleave,
		interruptCPU: -1,
	}

	s.Timers = timer.NewQueue(env)
	s.Timers.SetTimeSource(s.Now)
	s.Timers.OnEarlier(s.timerEarlier)
	s.Timers.Register(triggerTimerTag, func(id int) {
		s.Trigger(id)
	})

	// the vblank timer is allocated first so that it fires before any other
	// timer due at the same instant
	s.vblankTimer = s.Timers.AllocPersistent(vblankTimerTag, s.vblankTick)
	s.boostTimer = s.Timers.AllocPersistent(boostTimerTag, nil)
	s.boostEndTimer = s.Timers.AllocPersistent(boostEndTimerTag, func(_ int) {
		s.Timers.Enable(s.boostTimer, false)
		s.boostSlice = attotime.Zero
	})

	for i, c := range cfg.CPUs {
		sl := &Slot{
			index:          i,
			tag:            c.Tag,
			core:           c.Core,
			rate:           clocks.NewRate(c.ClockHz, 1.0),
			vblank:         c.VBlankInterrupt,
			vblankPerFrame: c.VBlankPerFrame,
			timed:          c.TimedInterrupt,
			timedPerSecond: c.TimedPerSecond,
			timedTimer:     timer.NoHandle,
			resetParam:     c.ResetParam,
			disabled:       c.Disabled,
		}
		s.slots = append(s.slots, sl)

		if sl.timed != nil {
			idx := i
			sl.timedTimer = s.Timers.AllocPersistent(timedTimerPrefix+sl.tag, func(_ int) {
				s.timedTick(idx)
			})
		}

		idx := i
		sl.core.SetIRQCallback(func(line int) int {
			return s.acknowledge(idx, line)
		})
	}

	s.computeTiming()
	if s.framePeriod.DivInt(int64(s.vblankMultiplier)).IsZero() {
		return nil, curated.Errorf(ErrTiming, s.name)
	}

	s.Reset()

	return s, nil
}

func (s *Scheduler) String() string {
	return s.name
}

// Reset the scheduler and every core. Time returns to zero, non-persistent
// timers are removed and every processor is resumed, except for those that
// are configured to be disabled.
func (s *Scheduler) Reset() {
	assert.SameGoroutine(s.env, s.owner)
	if !s.atBoundary("reset") {
		return
	}

	s.Timers.Reset()

	s.frame = 0
	s.frameStart = attotime.Zero
	s.frameComplete = false
	s.vblankSub = 0
	s.boostSlice = attotime.Zero

	s.computeTiming()

	for _, sl := range s.slots {
		sl.resetState()
		sl.rate = sl.Rate()
		sl.pendingRate = nil
		if sl.vblankPerFrame > 0 {
			sl.vblankCountdown = s.vblankMultiplier / sl.vblankPerFrame
		}
		sl.core.Reset(sl.resetParam)
		if sl.disabled {
			s.Suspend(sl.index, cpu.SuspendDisable, true)
		}
	}

	period := s.framePeriod.DivInt(int64(s.vblankMultiplier))
	s.Timers.AdjustPeriodic(s.vblankTimer, period, 0, period)

	for _, sl := range s.slots {
		if sl.timed != nil {
			p := attotime.FromHz(sl.timedPerSecond)
			s.Timers.AdjustPeriodic(sl.timedTimer, p, 0, p)
		}
	}

	s.computeQuantum()
}

// computeTiming sets the length of the frame and the number of subdivisions
// needed for the vblank interrupts of every processor.
func (s *Scheduler) computeTiming() {
	mult := 1
	for _, sl := range s.slots {
		if sl.vblankPerFrame > 0 {
			mult = lcm(mult, sl.vblankPerFrame)
		}
	}
	s.vblankMultiplier = mult

	// the frame period is an exact multiple of the subdivision so that the
	// last vblank timer falls exactly on the end of the frame
	sub := s.screen.FramePeriod().DivInt(int64(mult))
	s.framePeriod = sub.MulInt(int64(mult))
	s.timing = television.NewTiming(s.screen, s.framePeriod)
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcm(a, b int) int {
	return a / gcd(a, b) * b
}

// computeQuantum sets the length of a timeslice from the interleave value.
// The preferences can override the machine's interleave.
func (s *Scheduler) computeQuantum() {
	interleave := s.interleave
	if p := s.env.Prefs.Interleave.Get().(int); p > 0 {
		interleave = p
	}

	// one cycle of the fastest processor
	fastest := attotime.Never
	for _, sl := range s.slots {
		fastest = attotime.Min(fastest, sl.Rate().Period())
	}

	minCycles := s.env.Prefs.MinQuantumCycles.Get().(int)
	if minCycles < 1 {
		minCycles = 1
	}

	s.minQuantum = fastest
	s.quantum = attotime.Max(s.framePeriod.DivInt(int64(interleave)), fastest.MulInt(int64(minCycles)))
}

// AddFrameListener adds a FrameListener to the list of listeners. Listeners
// are told of a new frame in the order they were added.
func (s *Scheduler) AddFrameListener(l FrameListener) {
	s.listeners = append(s.listeners, l)
}

// NumCPUs returns the number of processors.
func (s *Scheduler) NumCPUs() int {
	return len(s.slots)
}

// Slot returns the record of the processor. The Slot must not be kept
// between frames.
func (s *Scheduler) Slot(index int) *Slot {
	if !s.checkCPU(index, "slot") {
		return nil
	}
	return s.slots[index]
}

// FindCPU returns the index of the processor with the tag.
func (s *Scheduler) FindCPU(tag string) (int, bool) {
	for _, sl := range s.slots {
		if sl.tag == tag {
			return sl.index, true
		}
	}
	return -1, false
}

// Now returns the current simulated time. During a burst this is the local
// time of the running processor, including the cycles it has run so far.
// Otherwise it is the time of the timer queue.
func (s *Scheduler) Now() attotime.Time {
	if s.active != nil {
		sl := s.slots[s.active.cpu]
		n := min(max(s.active.CyclesRun(), 0), s.active.requested)
		return sl.localTime.Add(sl.rate.CyclesToTime(int64(n)))
	}
	return s.Timers.Base()
}

// FramePeriod returns the duration of a frame.
func (s *Scheduler) FramePeriod() attotime.Time {
	return s.framePeriod
}

// Quantum returns the length of a timeslice when the interleave is not
// boosted.
func (s *Scheduler) Quantum() attotime.Time {
	return s.quantum
}

// RunFrame runs timeslices until the end of the current frame. Frame
// listeners are told of the new frame before the function returns.
func (s *Scheduler) RunFrame() error {
	assert.SameGoroutine(s.env, s.owner)
	if !s.atBoundary("run frame") {
		return nil
	}

	s.computeQuantum()

	s.frameComplete = false
	for !s.frameComplete {
		s.Timeslice()
	}

	for _, l := range s.listeners {
		if err := l.NewFrame(s.frame); err != nil {
			return err
		}
	}

	return nil
}

// Timeslice runs every processor up to the target time of the timeslice,
// fires the timers that are due and then triggers TriggerTimeslice.
func (s *Scheduler) Timeslice() {
	assert.SameGoroutine(s.env, s.owner)
	if !s.atBoundary("timeslice") {
		return
	}

	now := s.Timers.Base()

	target := attotime.Min(s.Timers.Next(), now.Add(s.quantum))
	target = attotime.Min(target, s.frameStart.Add(s.framePeriod))
	target = attotime.Max(target, now)

	s.target = target
	s.inSlice = true
	s.Timers.SetHorizon(target)

	for _, sl := range s.slots {
		if sl.suspend != cpu.SuspendNone {
			continue
		}
		if !s.target.After(sl.localTime) {
			continue
		}

		cycles := sl.rate.TimeToCycles(s.target.Sub(sl.localTime))
		if cycles <= 0 {
			continue
		}

		ran := s.burst(sl, int(min(cycles, maxBurst)))

		sl.localTime = sl.localTime.Add(sl.rate.CyclesToTime(int64(ran)))
		if sl.pendingRate != nil {
			sl.rate = *sl.pendingRate
			sl.pendingRate = nil
		}

		// the processor stopped early. processors later in the order must not
		// run ahead of it
		if int64(ran) < cycles {
			s.pullTarget(attotime.Max(sl.localTime, now))
		}
	}

	for _, sl := range s.slots {
		if sl.suspend != cpu.SuspendNone && sl.eatCycles {
			sl.catchUp(s.target)
		}
	}

	s.inSlice = false
	s.Timers.SetHorizon(attotime.Never)
	s.Timers.Advance(s.target)

	s.Trigger(TriggerTimeslice)
}

func (s *Scheduler) pullTarget(t attotime.Time) {
	if t.Before(s.target) {
		s.target = t
		s.Timers.SetHorizon(t)
	}
}

// burst runs the core for the number of cycles and returns the number of
// cycles actually run.
func (s *Scheduler) burst(sl *Slot, cycles int) int {
	s.ctx.begin(sl.index, cycles)
	s.active = &s.ctx

	ret := sl.core.Execute(&s.ctx, cycles)

	stolen := s.ctx.stolen
	s.active = nil

	ran := ret - stolen
	if ran < 0 || ran > cycles {
		s.anomaly("%s: execute returned %d cycles for a burst of %d (%d stolen)", sl.tag, ret, cycles, stolen)
		ran = min(max(ran, 0), cycles)
	}

	sl.totalCycles += uint64(ran)

	return ran
}

// timerEarlier is called by the timer queue when a timer is adjusted to
// fire before the target of the current timeslice.
func (s *Scheduler) timerEarlier(fireTime attotime.Time) {
	if !s.inSlice {
		return
	}
	s.pullTarget(attotime.Max(fireTime, s.Timers.Base()))
	if s.active != nil {
		s.active.abort()
	}
}

// BoostInterleave shortens timeslices to the slice duration for the
// duration. A slice of zero means the shortest possible timeslice.
func (s *Scheduler) BoostInterleave(slice attotime.Time, duration attotime.Time) {
	assert.SameGoroutine(s.env, s.owner)

	if duration.IsNegative() || duration.IsZero() {
		return
	}

	slice = attotime.Max(slice, s.minQuantum)

	s.boostSlice = slice
	s.Timers.AdjustPeriodic(s.boostTimer, slice, 0, slice)
	s.Timers.AdjustOneShot(s.boostEndTimer, duration, 0)
}

// Boosted returns the boosted timeslice length. Returns zero if the
// interleave is not boosted.
func (s *Scheduler) Boosted() attotime.Time {
	return s.boostSlice
}

func (s *Scheduler) anomaly(detail string, args ...any) {
	if s.env.Prefs.LogAnomalies.Get().(bool) {
		logger.Logf(s.env, "cpuexec", detail, args...)
	}
}

// checkCPU returns false if the index is not a valid processor index.
func (s *Scheduler) checkCPU(index int, op string) bool {
	assert.SameGoroutine(s.env, s.owner)
	ok := index >= 0 && index < len(s.slots)
	assert.Contract(s.env, ok, "%s: cpu index %d", op, index)
	return ok
}

// activeCPU returns the index of the running processor. Returns false if no
// burst is running.
func (s *Scheduler) activeCPU(op string) (int, bool) {
	assert.SameGoroutine(s.env, s.owner)
	ok := s.active != nil
	assert.Contract(s.env, ok, "%s: no processor is running", op)
	if !ok {
		return -1, false
	}
	return s.active.cpu, true
}

// atBoundary returns false if a burst is running or a timer is firing.
func (s *Scheduler) atBoundary(op string) bool {
	ok := s.active == nil && !s.Timers.Firing() && !s.inSlice
	assert.Contract(s.env, ok, "%s: called during a timeslice", op)
	return ok
}
