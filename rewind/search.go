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

// SearchResult is returned by SearchRAM().
type SearchResult struct {
	// the state in which the value was first seen
	State *hardware.State
	Frame int
}

// ram returns the contents of the area containing the address and the offset
// of the address in that area.
func ram(s *hardware.State, mem *memory.Memory, memLabel string, address uint16) ([]uint8, int, bool) {
	ms, ok := s.Memory[memLabel]
	if !ok {
		return nil, 0, false
	}
	area := mem.Bank(address)
	if area == nil {
		return nil, 0, false
	}
	data, ok := ms.RAM[area.Label()]
	if !ok {
		return nil, 0, false
	}
	offset := int(address - area.Origin())
	if offset >= len(data) {
		return nil, 0, false
	}
	return data, offset, true
}

// SearchRAM looks backwards through the history for the first frame in which
// the address had the value. Only the bits in the mask are compared.
//
// The address must be in a RAM area of the labelled memory. Returns nil if
// the value is not found.
func (r *Rewind) SearchRAM(memLabel string, address uint16, value uint8, mask uint8) (*SearchResult, error) {
	mem := r.m.Memory(memLabel)
	if mem == nil {
		return nil, curated.Errorf("rewind: search: no memory %s", memLabel)
	}

	var found *SearchResult

	for i := len(r.entries) - 1; i >= 0; i-- {
		s := r.entries[i]
		data, offset, ok := ram(s, mem, memLabel, address)
		if !ok {
			return nil, curated.Errorf("rewind: search: address %#04x is not RAM", address)
		}

		if data[offset]&mask != value&mask {
			break // for loop
		}

		found = &SearchResult{State: s, Frame: s.Frame()}
	}

	return found, nil
}
