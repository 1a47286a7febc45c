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

// Package timer implements the queue of timed callbacks that drives the
// scheduler. Every event in the emulation that must happen at a particular
// moment, for example a vertical blank interrupt or the completion of a DMA
// transfer, is a timer in the queue.
//
// Timers are allocated once with Alloc() or AllocPersistent() and are then
// scheduled and rescheduled with AdjustOneShot() and AdjustPeriodic(). The
// Handle returned by Alloc() is only a reference to the timer. Once a timer
// has been removed with Remove() the handle is stale and any operation on it
// is ignored.
//
// Temporary timers are created with Set(). They fire once and are then
// removed automatically. Because they have no handle, the callback for a
// temporary timer is found by tag from the callbacks added with Register().
//
// The queue has a notion of the current time which is moved forward by
// Advance(). When Advance() fires a timer the current time is the fire time
// of that timer for the duration of the callback. Timers with exactly the
// same fire time are fired in the order in which they were allocated.
//
// The scheduler provides a time source with SetTimeSource() so that timers
// adjusted in the middle of a CPU burst are scheduled relative to the time
// of the running CPU rather than the start of the timeslice.
package timer
