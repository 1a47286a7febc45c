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

package memory

import (
	"sort"
	"strings"

	"github.com/jetsetilly/cpuexec/curated"
)

// Sentinal error patterns for the memory package.
const (
	ErrUnmapped = "memory: address %04x is not mapped"
	ErrReadOnly = "memory: address %04x is read only (%s)"
	ErrOverlap  = "memory: %s has the same range as %s"
	ErrState    = "memory: snapshot does not match memory map: %s"
)

// Memory is the address space of a machine. A single Memory can be shared by
// more than one processor.
type Memory struct {
	// areas sorted so that Bank() finds the smallest area covering an address
	areas []Area
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	return &Memory{}
}

// Map the area into the address space. An area can be inside another area
// but two areas can't have the same origin and memtop.
func (mem *Memory) Map(area Area) error {
	for _, a := range mem.areas {
		if a.Origin() == area.Origin() && a.Memtop() == area.Memtop() {
			return curated.Errorf(ErrOverlap, area.Label(), a.Label())
		}
	}
	mem.areas = append(mem.areas, area)
	sort.SliceStable(mem.areas, func(i, j int) bool {
		si := int(mem.areas[i].Memtop()) - int(mem.areas[i].Origin())
		sj := int(mem.areas[j].Memtop()) - int(mem.areas[j].Origin())
		return si < sj
	})
	return nil
}

// Bank returns the area for the address. Returns nil if the address is not
// mapped.
func (mem *Memory) Bank(address uint16) Area {
	for _, a := range mem.areas {
		if address >= a.Origin() && address <= a.Memtop() {
			return a
		}
	}
	return nil
}

// Read implements the Bus interface.
func (mem *Memory) Read(address uint16) (uint8, error) {
	a := mem.Bank(address)
	if a == nil {
		return 0, curated.Errorf(ErrUnmapped, address)
	}
	return a.Read(address)
}

// Write implements the Bus interface.
func (mem *Memory) Write(address uint16, data uint8) error {
	a := mem.Bank(address)
	if a == nil {
		return curated.Errorf(ErrUnmapped, address)
	}
	return a.Write(address, data)
}

// Peek implements the DebugBus interface.
func (mem *Memory) Peek(address uint16) (uint8, error) {
	a := mem.Bank(address)
	if a == nil {
		return 0, curated.Errorf(ErrUnmapped, address)
	}
	return a.Peek(address)
}

// Poke implements the DebugBus interface.
func (mem *Memory) Poke(address uint16, value uint8) error {
	a := mem.Bank(address)
	if a == nil {
		return curated.Errorf(ErrUnmapped, address)
	}
	return a.Poke(address, value)
}

// Read16 reads a little-endian 16 bit value.
func (mem *Memory) Read16(address uint16) (uint16, error) {
	lo, err := mem.Read(address)
	if err != nil {
		return 0, err
	}
	hi, err := mem.Read(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

// Clear every RAM area.
func (mem *Memory) Clear() {
	for _, a := range mem.areas {
		if r, ok := a.(*RAM); ok {
			r.Clear()
		}
	}
}

// String returns the memory map in address order.
func (mem *Memory) String() string {
	areas := append([]Area{}, mem.areas...)
	sort.SliceStable(areas, func(i, j int) bool {
		return areas[i].Origin() < areas[j].Origin()
	})

	s := strings.Builder{}
	for _, a := range areas {
		s.WriteString(AreaInfo{label: a.Label(), origin: a.Origin(), memtop: a.Memtop()}.String())
		s.WriteString("\n")
	}
	return s.String()
}

// State is a copy of every RAM area in the memory.
type State struct {
	RAM map[string][]uint8
}

// Snapshot creates a copy of every RAM area. ROM and Ports areas are not
// part of the snapshot.
func (mem *Memory) Snapshot() *State {
	s := &State{RAM: make(map[string][]uint8)}
	for _, a := range mem.areas {
		if r, ok := a.(*RAM); ok {
			s.RAM[r.Label()] = r.Snapshot()
		}
	}
	return s
}

// Plumb the state into the memory. The memory is not changed if an error is
// returned.
func (mem *Memory) Plumb(s *State) error {
	var rams []*RAM
	for _, a := range mem.areas {
		if r, ok := a.(*RAM); ok {
			data, ok := s.RAM[r.Label()]
			if !ok || len(data) != len(r.memory) {
				return curated.Errorf(ErrState, r.Label())
			}
			rams = append(rams, r)
		}
	}
	if len(rams) != len(s.RAM) {
		return curated.Errorf(ErrState, "wrong number of RAM areas")
	}
	for _, r := range rams {
		r.Plumb(s.RAM[r.Label()])
	}
	return nil
}
