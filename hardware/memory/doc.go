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

// Package memory implements a flat 16-bit address space for the processors
// of a machine. Memory areas are mapped into the address space with Map().
// An address that is covered by more than one area is handled by the
// smallest area.
//
// There are three kinds of area. RAM can be read and written. ROM can only be
// read by a processor but can be changed with Poke(). A Ports area forwards
// reads and writes to functions provided by a device. This is how the
// peripherals of a machine are made visible to a processor.
//
// Processors access memory through the Bus interface. Everything else should
// use the Peek() and Poke() functions, which never have side effects.
package memory
