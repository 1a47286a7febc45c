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

// Package machines contains the built-in machine descriptions. Each machine
// is created by name with Create(). The list of names is returned by
// Names().
//
// The machines exist to exercise the scheduler in the ways real machines
// do: processors at different clock rates sharing memory, one processor
// interrupting another, processors suspending themselves until a device
// finishes its work and devices driven entirely by timers.
package machines
