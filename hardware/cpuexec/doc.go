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

// Package cpuexec is the scheduler for machines with more than one
// processor. Processors share a single simulated clock and are run in turn,
// in short bursts called timeslices. The length of a timeslice is bounded by
// the next timer in the timer queue, by the interleave quantum and by the
// end of the frame.
//
// During a timeslice each processor that isn't suspended is run, in
// ascending index order, until its local time reaches the target time of
// the timeslice. After all processors have run the timers that are due are
// fired and TriggerTimeslice is triggered.
//
// Processors that are running can be stopped early with AbortTimeslice(). A
// processor that is stopped early pulls the target of the timeslice back to
// its local time, so processors later in the order don't run ahead of it.
//
// Processors are suspended and resumed with Suspend() and Resume(). The
// Spin and Yield families of functions suspend the active processor until a
// trigger is fired with Trigger(). The difference between the two families
// is that a spinning processor eats cycles while it is suspended and a
// yielding processor does not.
//
// The scheduler is not safe for concurrent use. All functions must be called
// from the goroutine that created the scheduler, either from the machine
// setup code, from inside a processor's burst or from inside a timer
// callback.
package cpuexec
