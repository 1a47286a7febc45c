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

package timer

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/logger"
)

// Callback is called when the timer fires. The param value is the one given
// when the timer was last adjusted.
type Callback func(param int)

// Handle refers to a timer in the queue.
type Handle struct {
	index      int
	generation uint32
}

// NoHandle is a handle that never refers to a timer.
var NoHandle = Handle{index: -1}

func (h Handle) String() string {
	if h.index < 0 {
		return "no timer"
	}
	return fmt.Sprintf("timer %d.%d", h.index, h.generation)
}

type entry struct {
	live       bool
	generation uint32

	tag      string
	callback Callback
	param    int

	// start is the time the timer was last armed. used by Elapsed()
	start    attotime.Time
	fireTime attotime.Time

	// zero period means the timer is a one-shot
	period attotime.Time

	enabled    bool
	persistent bool
	temporary  bool

	// registration order. used to break ties between timers with the same
	// fire time
	seq uint64
}

// Queue of timers.
type Queue struct {
	env logger.Permission

	// the current time of the queue. moved forward by Advance()
	now attotime.Time

	entries []entry
	free    []int
	nextSeq uint64

	// callbacks for temporary timers, found by tag
	registered map[string]Callback

	// time source provided by the scheduler. if nil then the queue's own
	// notion of the current time is used
	timeSource func() attotime.Time

	// timers adjusted to fire before the horizon cause the onEarlier
	// function to be called
	horizon   attotime.Time
	onEarlier func(fireTime attotime.Time)

	// the timer currently being fired. -1 if no timer is being fired
	firing int
}

// NewQueue is the preferred method of initialisation for the Queue type.
func NewQueue(env logger.Permission) *Queue {
	return &Queue{
		env:        env,
		registered: make(map[string]Callback),
		horizon:    attotime.Never,
		firing:     -1,
	}
}

// SetTimeSource sets the function used to determine the current time when
// a timer is adjusted. A nil value reverts to the queue's own time.
func (q *Queue) SetTimeSource(f func() attotime.Time) {
	q.timeSource = f
}

// OnEarlier sets the function to be called when a timer is adjusted so that
// it fires before the horizon.
func (q *Queue) OnEarlier(f func(fireTime attotime.Time)) {
	q.onEarlier = f
}

// SetHorizon sets the time used to decide if the OnEarlier() function should
// be called. The scheduler sets this to the target of the current timeslice.
func (q *Queue) SetHorizon(t attotime.Time) {
	q.horizon = t
}

// Base returns the queue's own notion of the current time. During a timer
// callback this is the fire time of the timer.
func (q *Queue) Base() attotime.Time {
	return q.now
}

// Now returns the current time, as reported by the time source if one has
// been set.
func (q *Queue) Now() attotime.Time {
	if q.timeSource != nil {
		return q.timeSource()
	}
	return q.now
}

// Firing returns true if Advance() is in the middle of firing a timer.
func (q *Queue) Firing() bool {
	return q.firing >= 0
}

func (q *Queue) alloc(tag string, cb Callback, persistent bool, temporary bool) Handle {
	var idx int
	if len(q.free) > 0 {
		idx = q.free[len(q.free)-1]
		q.free = q.free[:len(q.free)-1]
	} else {
		q.entries = append(q.entries, entry{})
		idx = len(q.entries) - 1
	}

	e := &q.entries[idx]
	gen := e.generation
	*e = entry{
		live:       true,
		generation: gen,
		tag:        tag,
		callback:   cb,
		fireTime:   attotime.Never,
		persistent: persistent,
		temporary:  temporary,
		seq:        q.nextSeq,
	}
	q.nextSeq++

	return Handle{index: idx, generation: gen}
}

// Alloc a new timer. The timer is disabled until it is adjusted. The tag
// identifies the timer in save-states and log messages and should be unique.
//
// The timer is removed when the queue is Reset().
func (q *Queue) Alloc(tag string, cb Callback) Handle {
	return q.alloc(tag, cb, false, false)
}

// AllocPersistent allocates a new timer that survives a call to Reset().
// The timer is disabled by the reset but the handle remains valid.
func (q *Queue) AllocPersistent(tag string, cb Callback) Handle {
	return q.alloc(tag, cb, true, false)
}

// Register a callback for use with temporary timers. Registering a tag
// more than once replaces the previous callback.
func (q *Queue) Register(tag string, cb Callback) {
	q.registered[tag] = cb
}

// Set creates a temporary one-shot timer that fires after the delay. The
// callback must have been added with Register(). The timer is removed after
// it has fired.
func (q *Queue) Set(tag string, delay attotime.Time, param int) bool {
	cb, ok := q.registered[tag]
	if !ok {
		logger.Logf(q.env, "timer", "no registered callback for temporary timer (%s)", tag)
		return false
	}
	h := q.alloc(tag, cb, false, true)
	return q.AdjustOneShot(h, delay, param)
}

// lookup returns the entry for the handle or nil if the handle is stale.
func (q *Queue) lookup(h Handle, op string) *entry {
	if h.index < 0 || h.index >= len(q.entries) {
		logger.Logf(q.env, "timer", "%s: invalid handle (%s)", op, h)
		return nil
	}
	e := &q.entries[h.index]
	if !e.live || e.generation != h.generation {
		logger.Logf(q.env, "timer", "%s: stale handle (%s)", op, h)
		return nil
	}
	return e
}

func (q *Queue) arm(e *entry, fireTime attotime.Time) {
	e.start = q.Now()
	e.fireTime = fireTime
	e.enabled = true
	if q.onEarlier != nil && e.fireTime.Before(q.horizon) {
		q.onEarlier(e.fireTime)
	}
}

// AdjustOneShot schedules the timer to fire once after the delay. Any
// previous schedule is replaced. A negative delay is treated as zero.
//
// Returns false if the handle is stale.
func (q *Queue) AdjustOneShot(h Handle, delay attotime.Time, param int) bool {
	e := q.lookup(h, "adjust")
	if e == nil {
		return false
	}
	if delay.IsNegative() {
		delay = attotime.Zero
	}
	e.param = param
	e.period = attotime.Zero
	q.arm(e, q.Now().Add(delay))
	return true
}

// AdjustPeriodic schedules the timer to fire first after the initial delay
// and then every period thereafter. A period of zero or less is refused and
// the timer is left disabled.
//
// Returns false if the handle is stale or the period is refused.
func (q *Queue) AdjustPeriodic(h Handle, initial attotime.Time, param int, period attotime.Time) bool {
	e := q.lookup(h, "adjust periodic")
	if e == nil {
		return false
	}
	if period.IsNegative() || period.IsZero() || period.IsNever() {
		logger.Logf(q.env, "timer", "refusing periodic timer (%s) with period %s", e.tag, period)
		e.enabled = false
		e.fireTime = attotime.Never
		return false
	}
	if initial.IsNegative() {
		initial = attotime.Zero
	}
	e.param = param
	e.period = period
	q.arm(e, q.Now().Add(initial))
	return true
}

// Enable or disable the timer without losing its schedule. Returns the
// previous enabled state.
func (q *Queue) Enable(h Handle, enable bool) bool {
	e := q.lookup(h, "enable")
	if e == nil {
		return false
	}
	prev := e.enabled
	e.enabled = enable
	if enable && !prev && q.onEarlier != nil && e.fireTime.Before(q.horizon) {
		q.onEarlier(e.fireTime)
	}
	return prev
}

// Enabled returns true if the timer is enabled.
func (q *Queue) Enabled(h Handle) bool {
	e := q.lookup(h, "enabled")
	if e == nil {
		return false
	}
	return e.enabled
}

// Remove the timer from the queue. The handle is stale after this call.
func (q *Queue) Remove(h Handle) bool {
	e := q.lookup(h, "remove")
	if e == nil {
		return false
	}
	q.release(h.index)
	return true
}

func (q *Queue) release(idx int) {
	e := &q.entries[idx]
	gen := e.generation + 1
	*e = entry{generation: gen, fireTime: attotime.Never}
	q.free = append(q.free, idx)
}

// TimeLeft returns the time until the timer fires. Returns Never if the
// timer is disabled or the handle is stale.
func (q *Queue) TimeLeft(h Handle) attotime.Time {
	e := q.lookup(h, "time left")
	if e == nil || !e.enabled {
		return attotime.Never
	}
	return e.fireTime.Sub(q.Now())
}

// Elapsed returns the time since the timer was armed, or since it last fired
// if it is periodic.
func (q *Queue) Elapsed(h Handle) attotime.Time {
	e := q.lookup(h, "elapsed")
	if e == nil {
		return attotime.Zero
	}
	return q.Now().Sub(e.start)
}

// FireTime returns the absolute time the timer will fire. Returns Never if
// the timer is disabled or the handle is stale.
func (q *Queue) FireTime(h Handle) attotime.Time {
	e := q.lookup(h, "fire time")
	if e == nil || !e.enabled {
		return attotime.Never
	}
	return e.fireTime
}

// Param returns the param value given when the timer was last adjusted.
func (q *Queue) Param(h Handle) int {
	e := q.lookup(h, "param")
	if e == nil {
		return 0
	}
	return e.param
}

// Tag returns the tag of the timer.
func (q *Queue) Tag(h Handle) string {
	e := q.lookup(h, "tag")
	if e == nil {
		return ""
	}
	return e.tag
}

// Len returns the number of timers in the queue, enabled or not.
func (q *Queue) Len() int {
	return len(q.entries) - len(q.free)
}

// next returns the index of the next timer to fire. Returns -1 if there are
// no enabled timers.
func (q *Queue) next() int {
	n := -1
	for i := range q.entries {
		e := &q.entries[i]
		if !e.live || !e.enabled {
			continue
		}
		if n == -1 {
			n = i
			continue
		}
		m := &q.entries[n]
		c := e.fireTime.Compare(m.fireTime)
		if c < 0 || (c == 0 && e.seq < m.seq) {
			n = i
		}
	}
	return n
}

// Next returns the fire time of the next timer. Returns Never if there are
// no enabled timers.
func (q *Queue) Next() attotime.Time {
	n := q.next()
	if n == -1 {
		return attotime.Never
	}
	return q.entries[n].fireTime
}

// Advance moves the queue's time forward to the target, firing every enabled
// timer whose fire time is on or before the target. Timers are fired in
// order of fire time and then registration order.
//
// Callbacks may adjust any timer, including the one being fired. A timer
// adjusted to fire on or before the target is fired by the same call to
// Advance().
func (q *Queue) Advance(target attotime.Time) {
	for {
		n := q.next()
		if n == -1 {
			break
		}
		e := &q.entries[n]
		if e.fireTime.After(target) {
			break
		}

		// time never goes backwards. a timer adjusted to a time before the
		// current time fires at the current time
		if e.fireTime.After(q.now) {
			q.now = e.fireTime
		}

		cb := e.callback
		param := e.param
		temporary := e.temporary

		if e.period.IsZero() {
			e.enabled = false
			e.fireTime = attotime.Never
		} else {
			e.start = e.fireTime
			e.fireTime = e.fireTime.Add(e.period)
		}

		q.firing = n
		if cb != nil {
			cb(param)
		}
		q.firing = -1

		// the callback may have re-armed the temporary timer with a new Set()
		// into a different slot but this slot is still done
		if temporary && q.entries[n].live && !q.entries[n].enabled {
			q.release(n)
		}
	}

	if target.After(q.now) {
		q.now = target
	}
}

// Reset removes all non-persistent timers, disables persistent timers and
// moves the current time back to zero.
func (q *Queue) Reset() {
	for i := range q.entries {
		e := &q.entries[i]
		if !e.live {
			continue
		}
		if e.persistent {
			e.enabled = false
			e.fireTime = attotime.Never
			e.period = attotime.Zero
			e.start = attotime.Zero
			e.param = 0
		} else {
			q.release(i)
		}
	}
	q.now = attotime.Zero
	q.horizon = attotime.Never
}
