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
	"github.com/jetsetilly/cpuexec/hardware"
)

// ComparisonState is returned by GetComparisonState().
type ComparisonState struct {
	State  *hardware.State
	Locked bool
}

// GetComparisonState gets a reference to the current comparison point.
func (r *Rewind) GetComparisonState() ComparisonState {
	return ComparisonState{
		State:  r.comparison,
		Locked: r.comparisonLocked,
	}
}

// UpdateComparison points the comparison to the current state.
func (r *Rewind) UpdateComparison() error {
	if r.comparisonLocked {
		return nil
	}
	s, err := r.GetCurrentState()
	if err != nil {
		return err
	}
	r.comparison = s
	return nil
}

// SetComparison points the comparison to the nearest entry for the frame.
func (r *Rewind) SetComparison(frame int) {
	if idx := r.findFrameIndex(frame); idx >= 0 {
		r.comparison = r.entries[idx]
	}
}

// LockComparison stops the comparison point from being updated.
func (r *Rewind) LockComparison(locked bool) {
	r.comparisonLocked = locked
}
