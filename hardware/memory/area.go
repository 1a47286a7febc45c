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
)

// Bus defines the operations for the memory system when accessed by a
// processor.
type Bus interface {
	Read(address uint16) (uint8, error)
	Write(address uint16, data uint8) error
}

// DebugBus defines the meta-operations for the memory system. Peek and Poke
// never have side effects.
type DebugBus interface {
	Peek(address uint16) (uint8, error)
	Poke(address uint16, value uint8) error
}

// Area is a block of memory that can be mapped into the address space.
// Addresses given to an Area are always absolute addresses.
type Area interface {
	Bus
	DebugBus
	Label() string
	Origin() uint16
	Memtop() uint16
}

// AreaInfo provides the basic information needed to define a memory area.
// Every memory area embeds AreaInfo.
type AreaInfo struct {
	label  string
	origin uint16
	memtop uint16
}

// Label implements the Area interface.
func (ai AreaInfo) Label() string {
	return ai.label
}

// Origin implements the Area interface.
func (ai AreaInfo) Origin() uint16 {
	return ai.origin
}

// Memtop implements the Area interface.
func (ai AreaInfo) Memtop() uint16 {
	return ai.memtop
}

// size of the area in bytes.
func (ai AreaInfo) size() int {
	return int(ai.memtop) - int(ai.origin) + 1
}

func (ai AreaInfo) String() string {
	return fmt.Sprintf("%04x -> %04x %s", ai.origin, ai.memtop, ai.label)
}
