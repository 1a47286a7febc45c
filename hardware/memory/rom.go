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
	"github.com/jetsetilly/cpuexec/curated"
)

// ROM is a block of memory that can only be read by a processor.
type ROM struct {
	AreaInfo
	memory []uint8
}

// NewROM is the preferred method of initialisation for the ROM type. The
// size of the ROM is the length of the data. The data is copied.
func NewROM(label string, origin uint16, data []uint8) *ROM {
	return &ROM{
		AreaInfo: AreaInfo{
			label:  label,
			origin: origin,
			memtop: uint16(int(origin) + len(data) - 1),
		},
		memory: append([]uint8{}, data...),
	}
}

// Read implements the Bus interface.
func (rom *ROM) Read(address uint16) (uint8, error) {
	return rom.memory[address-rom.origin], nil
}

// Write implements the Bus interface. Writing to ROM is an error but the
// error is not fatal.
func (rom *ROM) Write(address uint16, data uint8) error {
	return curated.Errorf(ErrReadOnly, address, rom.label)
}

// Peek implements the DebugBus interface.
func (rom *ROM) Peek(address uint16) (uint8, error) {
	return rom.Read(address)
}

// Poke implements the DebugBus interface. Unlike Write() the ROM is
// changed.
func (rom *ROM) Poke(address uint16, value uint8) error {
	rom.memory[address-rom.origin] = value
	return nil
}
