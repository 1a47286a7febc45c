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

package rewind

import (
	"sort"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/logger"
)

// Sentinal error patterns for the rewind package.
const (
	ErrEmpty       = "rewind: no history"
	ErrUnavailable = "rewind: frame %d is not available"
)

// Rewind contains a history of machine states for the emulation.
type Rewind struct {
	env *environment.Environment
	m   *hardware.Machine

	Prefs *Preferences

	// snapshots in frame order
	entries []*hardware.State

	timeline Timeline

	comparison       *hardware.State
	comparisonLocked bool

	// the emulation is being run forward by the rewind system. no snapshots
	// are taken while this is true
	catchingUp bool
}

// NewRewind is the preferred method of initialisation for the Rewind type.
// The rewind system is added to the machine's frame listeners.
func NewRewind(env *environment.Environment, m *hardware.Machine) (*Rewind, error) {
	r := &Rewind{
		env:      env,
		m:        m,
		timeline: newTimeline(),
	}

	var err error
	r.Prefs, err = newPreferences(r)
	if err != nil {
		return nil, curated.Errorf("rewind: %v", err)
	}

	m.Sched.AddFrameListener(r)

	return r, nil
}

// Reset removes all entries and takes a snapshot of the current state. This
// should be called whenever the machine is reset.
func (r *Rewind) Reset() error {
	r.entries = r.entries[:0]
	r.timeline = newTimeline()

	s, err := r.m.Snapshot()
	if err != nil {
		return curated.Errorf("rewind: %v", err)
	}
	r.entries = append(r.entries, s)

	// first comparison is to the snapshot of the reset machine
	r.comparison = s

	return nil
}

// NewFrame implements the cpuexec.FrameListener interface.
func (r *Rewind) NewFrame(frame int) error {
	if r.catchingUp {
		return nil
	}

	// a frame number that isn't later than the most recent entry means the
	// machine has been reset without the rewind system being told
	if n := len(r.entries); n > 0 && frame <= r.entries[n-1].Frame() {
		logger.Logf(r.env, "rewind", "machine has been reset. history cleared at frame %d", frame)
		r.entries = r.entries[:0]
		r.timeline = newTimeline()
	}

	r.addTimelineEntry(frame)

	if frame%r.Prefs.freq() != 0 && len(r.entries) > 0 {
		return nil
	}

	s, err := r.m.Snapshot()
	if err != nil {
		return curated.Errorf("rewind: %v", err)
	}
	r.entries = append(r.entries, s)
	r.trim()

	return nil
}

// trim the history to the maximum number of entries.
func (r *Rewind) trim() {
	if n := len(r.entries) - r.Prefs.maxEntries(); n > 0 {
		r.entries = append(r.entries[:0], r.entries[n:]...)
	}
}

// Frames summarises the frames in the rewind history.
type Frames struct {
	Start   int
	End     int
	Current int
}

// GetFrames returns the earliest and latest frames in the history and the
// current frame of the machine.
func (r *Rewind) GetFrames() Frames {
	f := Frames{Current: r.m.Sched.FrameNumber()}
	if len(r.entries) > 0 {
		f.Start = r.entries[0].Frame()
		f.End = r.entries[len(r.entries)-1].Frame()
	}
	return f
}

// Len returns the number of entries in the history.
func (r *Rewind) Len() int {
	return len(r.entries)
}

// findFrameIndex returns the index of the most recent entry that is not
// later than the frame. Returns -1 if the frame is before the earliest
// entry.
func (r *Rewind) findFrameIndex(frame int) int {
	i := sort.Search(len(r.entries), func(i int) bool {
		return r.entries[i].Frame() > frame
	})
	return i - 1
}

// GotoFrame returns the machine to the frame. The frame must not be earlier
// than the earliest entry in the history. A frame later than the most recent
// entry is reached by running the machine forward.
//
// Entries later than the one used to reach the frame are removed from the
// history.
func (r *Rewind) GotoFrame(frame int) error {
	if len(r.entries) == 0 {
		return curated.Errorf(ErrEmpty)
	}

	idx := r.findFrameIndex(frame)
	if idx < 0 {
		return curated.Errorf(ErrUnavailable, frame)
	}

	return r.plumb(idx, frame)
}

// GotoLast returns the machine to the most recent entry in the history.
func (r *Rewind) GotoLast() error {
	if len(r.entries) == 0 {
		return curated.Errorf(ErrEmpty)
	}
	idx := len(r.entries) - 1
	return r.plumb(idx, r.entries[idx].Frame())
}

// plumb the entry into the machine and run forward to the frame.
func (r *Rewind) plumb(idx int, frame int) error {
	s := r.entries[idx]
	if err := r.m.Plumb(s); err != nil {
		return curated.Errorf("rewind: %v", err)
	}

	// splice the history at the plumbed entry
	r.entries = r.entries[:idx+1]
	r.timeline.splice(s.Frame() + 1)

	r.catchingUp = true
	defer func() {
		r.catchingUp = false
	}()

	if err := r.m.RunForFrameCount(frame-s.Frame(), nil); err != nil {
		return curated.Errorf("rewind: %v", err)
	}

	return nil
}

// GetCurrentState returns a snapshot of the current state of the machine.
func (r *Rewind) GetCurrentState() (*hardware.State, error) {
	return r.m.Snapshot()
}
