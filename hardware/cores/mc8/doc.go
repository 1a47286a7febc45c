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

// Package mc8 is a small 8-bit microcontroller core. It is simple enough that
// programs for it can be written by hand, with the help of the assembler in
// this package, but complete enough to behave as a real processor does when
// run by the scheduler: instructions take differing numbers of cycles, an
// instruction can be stopped by the end of a burst and interrupts are
// acknowledged through the scheduler.
//
// Registers are the accumulator (A), the index register (X), the stack
// pointer (SP) and the program counter (PC). The stack lives in page one of
// the address space. The status flags are Zero, Carry and InterruptDisable.
//
// Interrupt line 0 is a level triggered maskable interrupt (IRQ). Interrupt
// line 1 is an edge triggered non-maskable interrupt (NMI). Other lines are
// ignored. When an interrupt is acknowledged the vector returned by the
// scheduler is used as the address of the interrupt handler. If there is no
// vector the handler address is read from the vector table:
//
//	$fffa  NMI
//	$fffc  reset
//	$fffe  IRQ
//
// The WAI instruction waits for an interrupt. If the OnWait function has been
// set it is called, which allows the machine to suspend the processor until
// an interrupt arrives rather than having it burn cycles.
package mc8
