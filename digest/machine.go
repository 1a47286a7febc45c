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

package digest

import (
	"crypto/sha1"
	"fmt"
	"sort"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware"
)

// Machine is an implementation of the cpuexec.FrameListener interface. It
// generates a SHA-1 value of the machine state every frame. The state is
// made up of the scheduler and the contents of every RAM area.
type Machine struct {
	m      *hardware.Machine
	digest [sha1.Size]byte
	buffer []byte
}

// NewMachine is the preferred method of initialisation for the Machine type.
// The digest is added to the machine's frame listeners.
func NewMachine(m *hardware.Machine) *Machine {
	dig := &Machine{m: m}
	m.Sched.AddFrameListener(dig)
	return dig
}

// Hash implements the digest.Digest interface.
func (dig *Machine) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the digest.Digest interface.
func (dig *Machine) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
}

// NewFrame implements the cpuexec.FrameListener interface.
func (dig *Machine) NewFrame(_ int) error {
	s, err := dig.m.Snapshot()
	if err != nil {
		return curated.Errorf("digest: %v", err)
	}

	// the previous digest is included so that the hash covers every frame
	// and not just the most recent
	dig.buffer = append(dig.buffer[:0], dig.digest[:]...)
	dig.buffer, err = appendState(dig.buffer, s)
	if err != nil {
		return err
	}

	dig.digest = sha1.Sum(dig.buffer)

	return nil
}

// appendState adds the scheduler and the contents of every RAM area to the
// buffer. RAM areas are added in label order.
func appendState(buffer []byte, s *hardware.State) ([]byte, error) {
	sched, err := s.Scheduler.MarshalBinary()
	if err != nil {
		return buffer, curated.Errorf("digest: %v", err)
	}
	buffer = append(buffer, sched...)

	var labels []string
	for label := range s.Memory {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		var areas []string
		for area := range s.Memory[label].RAM {
			areas = append(areas, area)
		}
		sort.Strings(areas)
		for _, area := range areas {
			buffer = append(buffer, s.Memory[label].RAM[area]...)
		}
	}

	return buffer, nil
}

// State returns the hash of a single machine state.
func State(s *hardware.State) (string, error) {
	buffer, err := appendState(nil, s)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", sha1.Sum(buffer)), nil
}
