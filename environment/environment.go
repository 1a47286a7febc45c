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

package environment

import (
	"github.com/jetsetilly/cpuexec/hardware/preferences"
)

// Label is used to name the environment.
type Label string

// MainEmulation is the label used for the main emulation.
const MainEmulation = Label("main")

// Environment is used to provide context for an emulation. Particularly
// useful when there are multiple emulations running, for example when a
// rewind state is being regenerated or a digest is being compared.
type Environment struct {
	Label Label

	// the scheduling preferences of the emulation
	Prefs *preferences.Preferences
}

// NewEnvironment is the preferred method of initialisation for the
// Environment type. If prefs is nil a new instance of the preferences is
// created.
func NewEnvironment(label Label, prefs *preferences.Preferences) (*Environment, error) {
	env := &Environment{
		Label: label,
		Prefs: prefs,
	}

	if env.Prefs == nil {
		var err error
		env.Prefs, err = preferences.NewPreferences()
		if err != nil {
			return nil, err
		}
	}

	return env, nil
}

// Normalise ensures the environment is in a known default state. Useful for
// regression testing where the initial state must be the same for every
// run of the test.
func (env *Environment) Normalise() {
	env.Prefs.SetDefaults()
}

// IsEmulation checks the emulation label and returns true if it matches.
func (env *Environment) IsEmulation(label Label) bool {
	return env.Label == label
}

// IsMainEmulation returns true if the environment is the main emulation.
func (env *Environment) IsMainEmulation() bool {
	return env.Label == MainEmulation
}

// AllowLogging implements the logger.Permission interface. Only the main
// emulation is allowed to log.
func (env *Environment) AllowLogging() bool {
	return env.IsMainEmulation()
}
