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

// Package hardware is the base package for an emulated machine. It and its
// sub-packages contain everything required for a headless emulation.
//
// The Machine type is the root of the emulation. It owns the scheduler, the
// memory of the machine and the devices attached to it. From here the
// emulation can be reset, run continuously (with a callback to check for
// continuation) or run for a fixed number of frames.
//
// A Machine is built in three stages. The processors and their cores are
// described by a config.Config and given to NewMachine(). Devices that need
// the scheduler or its timer queue are then created and attached with
// AddDevice(). Finally the machine is Reset().
//
// Snapshots of the whole machine are taken with Snapshot() and restored with
// Plumb(). Like the scheduler snapshots they are only valid between frames.
package hardware
