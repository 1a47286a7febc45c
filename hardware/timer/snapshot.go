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
	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
)

// ErrUnknownTimer is returned by Plumb() when a timer in the snapshot cannot
// be matched with a timer in the queue.
const ErrUnknownTimer = "timer: unknown timer in snapshot: %s"

// ErrInconsistent is returned by Plumb() when the shape of the snapshot does
// not describe a valid queue.
const ErrInconsistent = "timer: inconsistent snapshot: %s"

// SnapshotEntry is the state of a single timer in a snapshot. Callbacks are
// not part of the snapshot. They are bound again by tag when the snapshot is
// plumbed in.
type SnapshotEntry struct {
	Index      int
	Generation uint32
	Tag        string
	Param      int
	Start      attotime.Time
	FireTime   attotime.Time
	Period     attotime.Time
	Enabled    bool
	Persistent bool
	Temporary  bool
	Seq        uint64
}

// Snapshot of the timer queue.
type Snapshot struct {
	Now     attotime.Time
	NextSeq uint64
	Entries []SnapshotEntry

	// the number of slots in the queue and the order in which free slots
	// will be reused
	Slots       int
	Free        []int
	Generations []uint32
}

// Snapshot creates a copy of the queue state.
func (q *Queue) Snapshot() *Snapshot {
	s := &Snapshot{
		Now:     q.now,
		NextSeq: q.nextSeq,
		Slots:   len(q.entries),
		Free:    append([]int{}, q.free...),
	}
	for i := range q.entries {
		s.Generations = append(s.Generations, q.entries[i].generation)
	}
	for i := range q.entries {
		e := &q.entries[i]
		if !e.live {
			continue
		}
		s.Entries = append(s.Entries, SnapshotEntry{
			Index:      i,
			Generation: e.generation,
			Tag:        e.tag,
			Param:      e.param,
			Start:      e.start,
			FireTime:   e.fireTime,
			Period:     e.period,
			Enabled:    e.enabled,
			Persistent: e.persistent,
			Temporary:  e.temporary,
			Seq:        e.seq,
		})
	}
	return s
}

// Plumb the snapshot into the queue. Allocated timers are matched by
// position and tag and keep their callback. Temporary timers take their
// callback from the registered callbacks.
//
// The queue is not changed if an error is returned.
func (q *Queue) Plumb(s *Snapshot) error {
	// validate before changing anything
	if s.Slots < 0 || s.Slots != len(s.Generations) || len(s.Free)+len(s.Entries) != s.Slots {
		return curated.Errorf(ErrInconsistent, "slot count")
	}
	isFree := make(map[int]bool)
	for _, i := range s.Free {
		if i < 0 || i >= s.Slots || isFree[i] {
			return curated.Errorf(ErrInconsistent, "free list")
		}
		isFree[i] = true
	}

	inSnapshot := make(map[int]bool)
	for _, se := range s.Entries {
		if se.Index < 0 || se.Index >= s.Slots || isFree[se.Index] || inSnapshot[se.Index] {
			return curated.Errorf(ErrInconsistent, "entry index")
		}
		inSnapshot[se.Index] = true
		if se.Temporary {
			if _, ok := q.registered[se.Tag]; !ok {
				return curated.Errorf(ErrUnknownTimer, se.Tag)
			}
			if se.Index < len(q.entries) {
				e := &q.entries[se.Index]
				if e.live && !e.temporary {
					return curated.Errorf(ErrUnknownTimer, se.Tag)
				}
			}
			continue
		}
		if se.Index >= len(q.entries) {
			return curated.Errorf(ErrUnknownTimer, se.Tag)
		}
		e := &q.entries[se.Index]
		if !e.live || e.temporary || e.tag != se.Tag {
			return curated.Errorf(ErrUnknownTimer, se.Tag)
		}
	}

	// temporary timers that are not in the snapshot are dropped. allocated
	// timers that are not in the snapshot are disabled
	for i := range q.entries {
		e := &q.entries[i]
		if !e.live || inSnapshot[i] {
			continue
		}
		if e.temporary {
			q.release(i)
		} else {
			e.enabled = false
			e.fireTime = attotime.Never
		}
	}

	// unused slots beyond the size of the snapshot queue are discarded
	for len(q.entries) > s.Slots && !q.entries[len(q.entries)-1].live {
		q.entries = q.entries[:len(q.entries)-1]
	}

	for len(q.entries) < s.Slots {
		q.entries = append(q.entries, entry{fireTime: attotime.Never})
	}

	for _, se := range s.Entries {
		e := &q.entries[se.Index]

		if se.Temporary {
			e.live = true
			e.generation = se.Generation
			e.callback = q.registered[se.Tag]
			e.tag = se.Tag
		}

		e.param = se.Param
		e.start = se.Start
		e.fireTime = se.FireTime
		e.period = se.Period
		e.enabled = se.Enabled
		e.persistent = se.Persistent
		e.temporary = se.Temporary
		e.seq = se.Seq
	}

	for i := range q.entries {
		if !q.entries[i].live && i < len(s.Generations) {
			q.entries[i].generation = s.Generations[i]
		}
	}

	// allocated timers that were not in the snapshot are still live and
	// can't be in the free list
	q.free = q.free[:0]
	listed := make(map[int]bool)
	for _, i := range s.Free {
		if !q.entries[i].live {
			q.free = append(q.free, i)
			listed[i] = true
		}
	}
	for i := range q.entries {
		if !q.entries[i].live && !listed[i] {
			q.free = append(q.free, i)
		}
	}

	q.now = s.Now
	q.nextSeq = s.NextSeq
	q.horizon = attotime.Never

	return nil
}
