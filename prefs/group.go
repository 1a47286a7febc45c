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

package prefs

import (
	"fmt"
	"sort"
	"strings"
)

// Group is a named collection of preference values. Values are added with a
// key and any value for that key on the command line stack is applied at
// that moment.
type Group struct {
	entries map[string]pref
}

// NewGroup is the preferred method of initialisation for the Group type.
func NewGroup() *Group {
	return &Group{
		entries: make(map[string]pref),
	}
}

// Add preference value to group. If the key has a value in the current
// command line group then that value is set immediately.
func (g *Group) Add(key string, p pref) error {
	if _, ok := g.entries[key]; ok {
		return fmt.Errorf("prefs: key %s already in group", key)
	}
	g.entries[key] = p

	if ok, v := GetCommandLinePref(key); ok {
		if err := p.Set(v); err != nil {
			return fmt.Errorf("prefs: %s: %w", key, err)
		}
	}

	return nil
}

// Set the value of the preference with the key.
func (g *Group) Set(key string, v Value) error {
	p, ok := g.entries[key]
	if !ok {
		return fmt.Errorf("prefs: no such key (%s)", key)
	}
	return p.Set(v)
}

// Get the value of the preference with the key.
func (g *Group) Get(key string) (Value, bool) {
	p, ok := g.entries[key]
	if !ok {
		return nil, false
	}
	return p.Get(), true
}

// Keys returns the keys in the group, sorted.
func (g *Group) Keys() []string {
	keys := make([]string, 0, len(g.entries))
	for k := range g.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String returns the preferences as a list of "key :: value" lines.
func (g *Group) String() string {
	s := strings.Builder{}
	for _, k := range g.Keys() {
		s.WriteString(fmt.Sprintf("%s :: %s\n", k, g.entries[k]))
	}
	return s.String()
}
