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

package preferences

import (
	"github.com/jetsetilly/cpuexec/prefs"
)

// Preferences defines and collates the preference values used by the
// scheduler. Values can be changed while the emulation is running, the
// scheduler reads them at the start of every frame.
type Preferences struct {
	grp *prefs.Group

	// number of timeslices per frame. a value of zero means the value in the
	// machine configuration is used
	Interleave prefs.Int

	// log every clamped or out-of-range value reported by a core
	LogAnomalies prefs.Bool

	// whether the watchdog is active. the number of frames before the
	// watchdog expires is a property of the machine
	Watchdog prefs.Bool

	// the smallest timeslice allowed, in cycles of the fastest processor
	MinQuantumCycles prefs.Int
}

func (p *Preferences) String() string {
	return p.grp.String()
}

// NewPreferences is the preferred method of initialisation for the
// Preferences type. Values on the command line prefs stack are applied.
func NewPreferences() (*Preferences, error) {
	p := &Preferences{}
	p.SetDefaults()

	p.grp = prefs.NewGroup()

	err := p.grp.Add("cpuexec.interleave", &p.Interleave)
	if err != nil {
		return nil, err
	}
	err = p.grp.Add("cpuexec.logAnomalies", &p.LogAnomalies)
	if err != nil {
		return nil, err
	}
	err = p.grp.Add("cpuexec.watchdog", &p.Watchdog)
	if err != nil {
		return nil, err
	}
	err = p.grp.Add("cpuexec.minQuantumCycles", &p.MinQuantumCycles)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	p.Interleave.Set(0)
	p.LogAnomalies.Set(true)
	p.Watchdog.Set(true)
	p.MinQuantumCycles.Set(1)
}

// Set the preference with the key.
func (p *Preferences) Set(key string, v prefs.Value) error {
	return p.grp.Set(key, v)
}

// Keys returns the preference keys.
func (p *Preferences) Keys() []string {
	return p.grp.Keys()
}
