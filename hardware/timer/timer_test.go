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

package timer_test

import (
	"testing"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/timer"
	"github.com/jetsetilly/cpuexec/logger"
	"github.com/jetsetilly/cpuexec/test"
)

func ms(n int64) attotime.Time {
	return attotime.FromMilliseconds(n)
}

func TestOneShot(t *testing.T) {
	q := timer.NewQueue(logger.Allow)

	var fired []int
	var firedAt attotime.Time
	h := q.Alloc("oneshot", func(param int) {
		fired = append(fired, param)
		firedAt = q.Now()
	})

	test.ExpectFailure(t, q.Enabled(h))
	test.ExpectSuccess(t, q.Next().IsNever())

	test.ExpectSuccess(t, q.AdjustOneShot(h, ms(10), 5))
	test.ExpectSuccess(t, q.Enabled(h))
	test.ExpectEquality(t, q.Next(), ms(10))
	test.ExpectEquality(t, q.TimeLeft(h), ms(10))
	test.ExpectEquality(t, q.Param(h), 5)

	q.Advance(ms(9))
	test.ExpectEquality(t, len(fired), 0)
	test.ExpectEquality(t, q.Now(), ms(9))
	test.ExpectEquality(t, q.Elapsed(h), ms(9))

	q.Advance(ms(20))
	test.ExpectEquality(t, len(fired), 1)
	test.ExpectEquality(t, fired[0], 5)
	test.ExpectEquality(t, firedAt, ms(10))
	test.ExpectEquality(t, q.Now(), ms(20))
	test.ExpectFailure(t, q.Enabled(h))
	test.ExpectSuccess(t, q.TimeLeft(h).IsNever())

	// a fired one-shot can be re-armed
	test.ExpectSuccess(t, q.AdjustOneShot(h, ms(1), 6))
	q.Advance(ms(30))
	test.ExpectEquality(t, len(fired), 2)
	test.ExpectEquality(t, firedAt, ms(21))
}

func TestPeriodic(t *testing.T) {
	q := timer.NewQueue(logger.Allow)

	var times []attotime.Time
	h := q.Alloc("periodic", func(_ int) {
		times = append(times, q.Now())
	})

	test.ExpectSuccess(t, q.AdjustPeriodic(h, ms(5), 0, ms(10)))
	q.Advance(ms(40))
	test.DemandEquality(t, len(times), 4)
	test.ExpectEquality(t, times[0], ms(5))
	test.ExpectEquality(t, times[1], ms(15))
	test.ExpectEquality(t, times[3], ms(35))
	test.ExpectEquality(t, q.Next(), ms(45))

	// zero and negative periods are refused
	test.ExpectFailure(t, q.AdjustPeriodic(h, ms(5), 0, attotime.Zero))
	test.ExpectFailure(t, q.Enabled(h))
	test.ExpectFailure(t, q.AdjustPeriodic(h, ms(5), 0, attotime.FromAttoseconds(-1)))
}

func TestEnable(t *testing.T) {
	q := timer.NewQueue(logger.Allow)

	var count int
	h := q.Alloc("enable", func(_ int) { count++ })
	q.AdjustPeriodic(h, ms(10), 0, ms(10))

	test.ExpectSuccess(t, q.Enable(h, false))
	q.Advance(ms(25))
	test.ExpectEquality(t, count, 0)

	// the schedule is kept while the timer is disabled. the missed firings
	// happen as soon as it is enabled again
	test.ExpectFailure(t, q.Enable(h, true))
	q.Advance(ms(25))
	test.ExpectEquality(t, count, 2)
}

func TestTieBreak(t *testing.T) {
	for i := 0; i < 10; i++ {
		q := timer.NewQueue(logger.Allow)

		var order []string
		a := q.Alloc("a", func(_ int) { order = append(order, "a") })
		b := q.Alloc("b", func(_ int) { order = append(order, "b") })
		c := q.Alloc("c", func(_ int) { order = append(order, "c") })

		// adjusted in reverse order but fire in registration order
		q.AdjustOneShot(c, ms(1), 0)
		q.AdjustOneShot(b, ms(1), 0)
		q.AdjustOneShot(a, ms(1), 0)

		q.Advance(ms(1))
		test.DemandEquality(t, len(order), 3)
		test.ExpectEquality(t, order[0], "a")
		test.ExpectEquality(t, order[1], "b")
		test.ExpectEquality(t, order[2], "c")
	}
}

func TestCallbackAdjust(t *testing.T) {
	q := timer.NewQueue(logger.Allow)

	var order []string
	var b timer.Handle
	a := q.Alloc("a", func(_ int) {
		order = append(order, "a")
		q.AdjustOneShot(b, ms(1), 0)
	})
	b = q.Alloc("b", func(_ int) {
		order = append(order, "b")
	})

	// a timer adjusted by a callback fires in the same Advance() if it is
	// due before the target
	q.AdjustOneShot(a, ms(1), 0)
	q.Advance(ms(5))
	test.DemandEquality(t, len(order), 2)
	test.ExpectEquality(t, order[1], "b")
	test.ExpectEquality(t, q.Now(), ms(5))
}

func TestStaleHandle(t *testing.T) {
	q := timer.NewQueue(logger.Allow)

	h := q.Alloc("stale", func(_ int) {})
	test.ExpectSuccess(t, q.Remove(h))
	test.ExpectFailure(t, q.AdjustOneShot(h, ms(1), 0))
	test.ExpectFailure(t, q.Remove(h))
	test.ExpectFailure(t, q.Enabled(h))
	test.ExpectFailure(t, q.Enable(h, true))
	test.ExpectFailure(t, q.AdjustOneShot(timer.NoHandle, ms(1), 0))

	// the slot is reused but the old handle does not refer to the new timer
	g := q.Alloc("new", func(_ int) {})
	test.ExpectInequality(t, g, h)
	test.ExpectSuccess(t, q.AdjustOneShot(g, ms(1), 0))
	test.ExpectFailure(t, q.Enabled(h))
	test.ExpectEquality(t, q.Len(), 1)
}

func TestTemporary(t *testing.T) {
	q := timer.NewQueue(logger.Allow)

	var params []int
	q.Register("temp", func(param int) {
		params = append(params, param)
	})

	test.ExpectFailure(t, q.Set("unregistered", ms(1), 0))
	test.ExpectSuccess(t, q.Set("temp", ms(2), 2))
	test.ExpectSuccess(t, q.Set("temp", ms(1), 1))
	test.ExpectEquality(t, q.Len(), 2)

	q.Advance(ms(10))
	test.DemandEquality(t, len(params), 2)
	test.ExpectEquality(t, params[0], 1)
	test.ExpectEquality(t, params[1], 2)

	// temporary timers are removed once they have fired
	test.ExpectEquality(t, q.Len(), 0)
}

func TestTimeSource(t *testing.T) {
	q := timer.NewQueue(logger.Allow)
	h := q.Alloc("source", func(_ int) {})

	now := ms(3)
	q.SetTimeSource(func() attotime.Time { return now })
	q.AdjustOneShot(h, ms(1), 0)
	test.ExpectEquality(t, q.FireTime(h), ms(4))
	test.ExpectEquality(t, q.Base(), attotime.Zero)
}

func TestOnEarlier(t *testing.T) {
	q := timer.NewQueue(logger.Allow)
	h := q.Alloc("earlier", func(_ int) {})

	var called int
	q.OnEarlier(func(_ attotime.Time) { called++ })

	q.SetHorizon(ms(5))
	q.AdjustOneShot(h, ms(10), 0)
	test.ExpectEquality(t, called, 0)
	q.AdjustOneShot(h, ms(2), 0)
	test.ExpectEquality(t, called, 1)
}

func TestReset(t *testing.T) {
	q := timer.NewQueue(logger.Allow)

	p := q.AllocPersistent("persistent", func(_ int) {})
	h := q.Alloc("normal", func(_ int) {})
	q.AdjustOneShot(p, ms(10), 0)
	q.AdjustOneShot(h, ms(10), 0)
	q.Advance(ms(5))

	q.Reset()
	test.ExpectEquality(t, q.Now(), attotime.Zero)
	test.ExpectFailure(t, q.Enabled(p))
	test.ExpectSuccess(t, q.AdjustOneShot(p, ms(1), 0))
	test.ExpectFailure(t, q.AdjustOneShot(h, ms(1), 0))
	test.ExpectEquality(t, q.Len(), 1)
}

func TestSnapshot(t *testing.T) {
	build := func() (*timer.Queue, *[]string, timer.Handle) {
		q := timer.NewQueue(logger.Allow)
		log := &[]string{}
		h := q.Alloc("periodic", func(_ int) { *log = append(*log, "periodic") })
		q.Register("temp", func(_ int) { *log = append(*log, "temp") })
		return q, log, h
	}

	q, log, h := build()
	q.AdjustPeriodic(h, ms(3), 0, ms(3))
	q.Set("temp", ms(7), 0)
	q.Advance(ms(4))
	s := q.Snapshot()

	q.Advance(ms(10))
	expected := append([]string{}, (*log)...)

	// plumbing into a fresh queue continues in the same way
	r, rlog, _ := build()
	test.DemandSuccess(t, r.Plumb(s))
	*rlog = append(*rlog, "periodic")
	r.Advance(ms(10))
	test.ExpectEquality(t, len(*rlog), len(expected))
	for i := range expected {
		test.ExpectEquality(t, (*rlog)[i], expected[i], i)
	}
	test.ExpectEquality(t, r.Next(), q.Next())

	// a snapshot with a timer that the queue doesn't know about
	u := timer.NewQueue(logger.Allow)
	err := u.Plumb(s)
	test.ExpectSuccess(t, curated.Is(err, timer.ErrUnknownTimer))
}

func TestSnapshotInconsistent(t *testing.T) {
	q := timer.NewQueue(logger.Allow)
	h := q.Alloc("periodic", func(_ int) {})
	q.Register("temp", func(_ int) {})
	q.AdjustPeriodic(h, ms(3), 0, ms(3))
	test.DemandSuccess(t, q.Set("temp", ms(7), 0))
	test.DemandSuccess(t, q.Set("temp", ms(8), 0))
	q.Advance(ms(7))

	good := q.Snapshot()
	test.DemandEquality(t, good.Slots, 3)
	test.DemandEquality(t, len(good.Free), 1)

	corrupt := []func(s *timer.Snapshot){
		// slot count that would grow the queue without limit
		func(s *timer.Snapshot) { s.Slots = 50_000_000 },
		func(s *timer.Snapshot) { s.Generations = s.Generations[:1] },
		func(s *timer.Snapshot) { s.Entries[len(s.Entries)-1].Index = 50_000_000 },
		func(s *timer.Snapshot) { s.Entries[len(s.Entries)-1].Index = -1 },
		func(s *timer.Snapshot) { s.Free[0] = 50_000_000 },
		// a free slot that is also in use
		func(s *timer.Snapshot) { s.Free[0] = s.Entries[0].Index },
		// the same slot twice
		func(s *timer.Snapshot) { s.Entries[1].Index = s.Entries[0].Index },
		func(s *timer.Snapshot) {
			s.Slots++
			s.Generations = append(s.Generations, 0)
			s.Free = append(s.Free, s.Free[0])
		},
	}

	for i, c := range corrupt {
		s := q.Snapshot()
		c(s)
		err := q.Plumb(s)
		test.ExpectSuccess(t, curated.Is(err, timer.ErrInconsistent), i)
	}

	// the queue has not changed and the original snapshot can still be used
	test.ExpectEquality(t, q.Len(), 2)
	test.ExpectSuccess(t, q.Plumb(good))
	test.ExpectEquality(t, q.Len(), 2)

	// every allocation uses a different slot
	test.ExpectSuccess(t, q.Set("temp", ms(1), 0))
	test.ExpectSuccess(t, q.Set("temp", ms(1), 0))
	test.ExpectEquality(t, q.Len(), 4)
	test.ExpectEquality(t, q.Snapshot().Slots, 4)
}
