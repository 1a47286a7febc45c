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

// Port is a single address in a Ports area. Either function can be nil.
type Port struct {
	// called when the processor reads the address
	Read func() uint8

	// called when the processor writes to the address
	Write func(data uint8)

	// the value returned by Peek(). if nil then the port can't be peeked
	Peek func() uint8
}

// Ports is a memory area that forwards reads and writes to a device.
type Ports struct {
	AreaInfo
	ports []Port
}

// NewPorts is the preferred method of initialisation for the Ports type.
// The first port in the list is at the origin address.
func NewPorts(label string, origin uint16, ports ...Port) *Ports {
	return &Ports{
		AreaInfo: AreaInfo{
			label:  label,
			origin: origin,
			memtop: uint16(int(origin) + len(ports) - 1),
		},
		ports: ports,
	}
}

// Read implements the Bus interface. Reading a port without a read function
// returns zero.
func (p *Ports) Read(address uint16) (uint8, error) {
	port := p.ports[address-p.origin]
	if port.Read == nil {
		return 0, nil
	}
	return port.Read(), nil
}

// Write implements the Bus interface.
func (p *Ports) Write(address uint16, data uint8) error {
	port := p.ports[address-p.origin]
	if port.Write != nil {
		port.Write(data)
	}
	return nil
}

// Peek implements the DebugBus interface.
func (p *Ports) Peek(address uint16) (uint8, error) {
	port := p.ports[address-p.origin]
	if port.Peek == nil {
		return 0, nil
	}
	return port.Peek(), nil
}

// Poke implements the DebugBus interface. Ports can't be poked.
func (p *Ports) Poke(address uint16, _ uint8) error {
	return nil
}
