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
	"fmt"
	"strings"
)

// RAM is a block of memory that can be read and written by a processor.
type RAM struct {
	AreaInfo
	memory []uint8
}

// NewRAM is the preferred method of initialisation for the RAM type. The
// memory is cleared.
func NewRAM(label string, origin uint16, size int) *RAM {
	ram := &RAM{
		AreaInfo: AreaInfo{
			label:  label,
			origin: origin,
			memtop: uint16(int(origin) + size - 1),
		},
	}
	ram.memory = make([]uint8, ram.size())
	return ram
}

// String returns a hex dump of the RAM.
func (ram *RAM) String() string {
	s := strings.Builder{}
	s.WriteString("       -0 -1 -2 -3 -4 -5 -6 -7 -8 -9 -A -B -C -D -E -F\n")
	s.WriteString("     ---- -- -- -- -- -- -- -- -- -- -- -- -- -- -- --\n")
	for y := 0; y < len(ram.memory); y += 16 {
		s.WriteString(fmt.Sprintf("%04x | ", int(ram.origin)+y))
		for x := 0; x < 16 && y+x < len(ram.memory); x++ {
			s.WriteString(fmt.Sprintf(" %02x", ram.memory[y+x]))
		}
		s.WriteString("\n")
	}
	return strings.TrimRight(s.String(), "\n")
}

// Read implements the Bus interface.
func (ram *RAM) Read(address uint16) (uint8, error) {
	return ram.memory[address-ram.origin], nil
}

// Write implements the Bus interface.
func (ram *RAM) Write(address uint16, data uint8) error {
	ram.memory[address-ram.origin] = data
	return nil
}

// Peek implements the DebugBus interface.
func (ram *RAM) Peek(address uint16) (uint8, error) {
	return ram.Read(address)
}

// Poke implements the DebugBus interface.
func (ram *RAM) Poke(address uint16, value uint8) error {
	return ram.Write(address, value)
}

// Clear sets every byte to zero.
func (ram *RAM) Clear() {
	clear(ram.memory)
}

// Snapshot returns a copy of the contents of the RAM.
func (ram *RAM) Snapshot() []uint8 {
	return append([]uint8{}, ram.memory...)
}

// Plumb copies the data into the RAM. The data must be the same length as
// the RAM.
func (ram *RAM) Plumb(data []uint8) bool {
	if len(data) != len(ram.memory) {
		return false
	}
	copy(ram.memory, data)
	return true
}
