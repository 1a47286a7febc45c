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
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/memory"
)

// PokeHook is called by RunPoke() with the state that is to be changed.
type PokeHook func(s *hardware.State) error

// RunPoke changes the history from the frame onwards. The entry for the
// frame is changed by the hook and the machine is run forward to the current
// frame, recreating the entries that were removed.
func (r *Rewind) RunPoke(frame int, poke PokeHook) error {
	if len(r.entries) == 0 {
		return curated.Errorf(ErrEmpty)
	}

	idx := r.findFrameIndex(frame)
	if idx < 0 {
		return curated.Errorf(ErrUnavailable, frame)
	}

	to := r.m.Sched.FrameNumber()

	// the entry is changed in a copy so that the history is untouched if
	// the hook fails
	s := *r.entries[idx]
	s.Memory = clone(s.Memory)
	if err := poke(&s); err != nil {
		return curated.Errorf("rewind: poke: %v", err)
	}
	r.entries[idx] = &s

	if err := r.m.Plumb(&s); err != nil {
		return curated.Errorf("rewind: poke: %v", err)
	}
	r.entries = r.entries[:idx+1]
	r.timeline.splice(s.Frame() + 1)

	// the frames are run with the history being recorded
	if err := r.m.RunForFrameCount(to-s.Frame(), nil); err != nil {
		return curated.Errorf("rewind: poke: %v", err)
	}

	return nil
}

// clone the memory states so that the RAM of a poked state is not shared
// with the original.
func clone(mem map[string]*memory.State) map[string]*memory.State {
	c := make(map[string]*memory.State, len(mem))
	for label, ms := range mem {
		n := &memory.State{RAM: make(map[string][]uint8, len(ms.RAM))}
		for area, data := range ms.RAM {
			n.RAM[area] = append([]uint8{}, data...)
		}
		c[label] = n
	}
	return c
}
