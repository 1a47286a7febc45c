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
	"github.com/jetsetilly/cpuexec/prefs"
)

// Preferences for the rewind system.
type Preferences struct {
	grp *prefs.Group

	// the maximum number of snapshots to keep before the earliest are
	// forgotten
	MaxEntries prefs.Int

	// how often a snapshot is taken, in frames
	Freq prefs.Int
}

func (p *Preferences) String() string {
	return p.grp.String()
}

const defaultMaxEntries = 100
const defaultFreq = 1

func newPreferences(r *Rewind) (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.grp = prefs.NewGroup()

	err := p.grp.Add("rewind.maxEntries", &p.MaxEntries)
	if err != nil {
		return nil, err
	}
	err = p.grp.Add("rewind.snapshotFreq", &p.Freq)
	if err != nil {
		return nil, err
	}

	p.MaxEntries.SetHookPost(func(_ prefs.Value) error {
		r.trim()
		return nil
	})

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.MaxEntries.Set(defaultMaxEntries)
	p.Freq.Set(defaultFreq)
}

func (p *Preferences) maxEntries() int {
	return max(p.MaxEntries.Get().(int), 1)
}

func (p *Preferences) freq() int {
	return max(p.Freq.Get().(int), 1)
}
