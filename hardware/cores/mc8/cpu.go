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

package mc8

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/memory"
	"github.com/jetsetilly/cpuexec/logger"
)

// Addresses of the vector table.
const (
	VectorNMI   = uint16(0xfffa)
	VectorReset = uint16(0xfffc)
	VectorIRQ   = uint16(0xfffe)
)

// Interrupt lines.
const (
	LineIRQ = 0
	LineNMI = 1
)

// the number of cycles taken to begin an interrupt handler
const interruptCycles = 7

// the base address of the stack
const stackPage = uint16(0x0100)

// ErrState is returned by Plumb() when the state is not from an mc8 core.
const ErrState = "mc8: cannot plumb %T"

// CPU is the mc8 processor. It implements the cpu.Core interface.
type CPU struct {
	env logger.Permission
	mem memory.Bus

	// label used in log entries
	label string

	PC uint16
	A  uint8
	X  uint8
	SP uint8

	Zero             bool
	Carry            bool
	InterruptDisable bool

	// the cpu has executed a HLT instruction or an illegal opcode. requires
	// a Reset()
	Halted bool

	// the cpu has executed a WAI instruction and is waiting for an interrupt
	Waiting bool

	// OnWait is called when a WAI instruction is executed
	OnWait func()

	lines      [cpu.MaxIRQLines]cpu.LineState
	nmiPending bool
	irqPulsed  bool
	irq        cpu.IRQCallback

	// cycles of the last instruction that did not fit in the burst. paid off
	// at the start of the next burst
	deficit int

	// wait requested by the most recent instruction
	waitRequested bool

	// Instructions is the number of instructions executed since reset
	Instructions uint64
}

// NewCPU is the preferred method of initialisation for the CPU type. The
// CPU must be reset before it is used.
func NewCPU(env logger.Permission, label string, mem memory.Bus) *CPU {
	return &CPU{
		env:   env,
		label: label,
		mem:   mem,
	}
}

func (mc *CPU) String() string {
	return fmt.Sprintf("PC=%04x A=%02x X=%02x SP=%02x %s", mc.PC, mc.A, mc.X, mc.SP, mc.flags())
}

func (mc *CPU) flags() string {
	f := []byte("zci")
	if mc.Zero {
		f[0] = 'Z'
	}
	if mc.Carry {
		f[1] = 'C'
	}
	if mc.InterruptDisable {
		f[2] = 'I'
	}
	return string(f)
}

// Reset implements the cpu.Core interface. If the param is a uint16 it is
// used as the reset address, otherwise the reset address is read from the
// vector table.
func (mc *CPU) Reset(param any) {
	mc.A = 0
	mc.X = 0
	mc.SP = 0xff
	mc.Zero = false
	mc.Carry = false
	mc.InterruptDisable = true
	mc.Halted = false
	mc.Waiting = false
	mc.nmiPending = false
	mc.irqPulsed = false
	mc.deficit = 0
	mc.waitRequested = false
	mc.Instructions = 0

	if pc, ok := param.(uint16); ok {
		mc.PC = pc
	} else {
		mc.PC = mc.read16(VectorReset)
	}
}

// SetIRQCallback implements the cpu.Core interface.
func (mc *CPU) SetIRQCallback(cb cpu.IRQCallback) {
	mc.irq = cb
}

// SetIRQLine implements the cpu.Core interface.
func (mc *CPU) SetIRQLine(line int, state cpu.LineState) {
	if line < 0 || line >= cpu.MaxIRQLines {
		return
	}

	prev := mc.lines[line]

	switch line {
	case LineIRQ:
		if state == cpu.PulseLine {
			mc.irqPulsed = true
			state = cpu.ClearLine
		}
	case LineNMI:
		if state != cpu.ClearLine && prev == cpu.ClearLine {
			mc.nmiPending = true
		}
		if state == cpu.PulseLine {
			state = cpu.ClearLine
		}
	}

	mc.lines[line] = state
}

// Execute implements the cpu.Core interface.
func (mc *CPU) Execute(b cpu.Burst, cycles int) int {
	for b.Icount() > 0 {
		if mc.deficit > 0 {
			n := min(mc.deficit, b.Icount())
			mc.deficit -= n
			b.Burn(n)
			continue
		}

		if mc.Halted {
			b.Burn(b.Icount())
			break
		}

		cost := mc.interrupt()
		if cost == 0 {
			if mc.Waiting {
				// nothing to do until an interrupt arrives
				b.Burn(b.Icount())
				break
			}
			cost = mc.step()
		}

		if cost > b.Icount() {
			mc.deficit = cost - b.Icount()
			cost = b.Icount()
		}
		b.Burn(cost)

		if mc.waitRequested {
			mc.waitRequested = false
			if mc.OnWait != nil && !mc.pending() {
				mc.OnWait()
			}
		}
	}

	return cycles - b.Icount()
}

// interrupt begins the interrupt handler if an interrupt is pending and
// returns the number of cycles taken. Returns zero if there is no interrupt.
func (mc *CPU) interrupt() int {
	if mc.nmiPending {
		mc.nmiPending = false
		return mc.service(LineNMI, VectorNMI)
	}
	if mc.InterruptDisable {
		return 0
	}
	if mc.pending() {
		mc.irqPulsed = false
		return mc.service(LineIRQ, VectorIRQ)
	}
	return 0
}

// pending returns true if an interrupt will be taken before the next
// instruction.
func (mc *CPU) pending() bool {
	if mc.nmiPending {
		return true
	}
	if mc.InterruptDisable {
		return false
	}
	return mc.irqPulsed || mc.lines[LineIRQ] == cpu.AssertLine || mc.lines[LineIRQ] == cpu.HoldLine
}

func (mc *CPU) service(line int, vectorAddress uint16) int {
	vector := -1
	if mc.irq != nil {
		vector = mc.irq(line)
	}

	mc.push(uint8(mc.PC >> 8))
	mc.push(uint8(mc.PC))
	mc.push(mc.status())
	mc.InterruptDisable = true
	mc.Waiting = false

	if vector >= 0 {
		mc.PC = uint16(vector)
	} else {
		mc.PC = mc.read16(vectorAddress)
	}

	return interruptCycles
}

func (mc *CPU) status() uint8 {
	var s uint8
	if mc.Carry {
		s |= 0x01
	}
	if mc.Zero {
		s |= 0x02
	}
	if mc.InterruptDisable {
		s |= 0x04
	}
	return s
}

func (mc *CPU) setStatus(s uint8) {
	mc.Carry = s&0x01 == 0x01
	mc.Zero = s&0x02 == 0x02
	mc.InterruptDisable = s&0x04 == 0x04
}

func (mc *CPU) read(address uint16) uint8 {
	v, err := mc.mem.Read(address)
	if err != nil {
		logger.Logf(mc.env, mc.label, "%v (PC=%04x)", err, mc.PC)
	}
	return v
}

func (mc *CPU) write(address uint16, data uint8) {
	if err := mc.mem.Write(address, data); err != nil {
		logger.Logf(mc.env, mc.label, "%v (PC=%04x)", err, mc.PC)
	}
}

func (mc *CPU) read16(address uint16) uint16 {
	lo := mc.read(address)
	hi := mc.read(address + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (mc *CPU) fetch() uint8 {
	v := mc.read(mc.PC)
	mc.PC++
	return v
}

func (mc *CPU) push(v uint8) {
	mc.write(stackPage|uint16(mc.SP), v)
	mc.SP--
}

func (mc *CPU) pull() uint8 {
	mc.SP++
	return mc.read(stackPage | uint16(mc.SP))
}

// step executes a single instruction and returns the number of cycles taken.
func (mc *CPU) step() int {
	pc := mc.PC
	opcode := mc.fetch()

	defn := opcodes[opcode]
	if defn == nil {
		logger.Logf(mc.env, mc.label, "illegal opcode %02x at %04x", opcode, pc)
		mc.Halted = true
		return 2
	}

	mc.Instructions++
	cycles := defn.Cycles

	// the operand. for immediate mode this is the value, for absolute modes
	// this is the address and for relative mode the offset
	var operand uint16
	switch defn.AddressingMode {
	case Immediate, Relative:
		operand = uint16(mc.fetch())
	case Absolute:
		lo := mc.fetch()
		hi := mc.fetch()
		operand = uint16(hi)<<8 | uint16(lo)
	case AbsoluteIndexedX:
		lo := mc.fetch()
		hi := mc.fetch()
		operand = (uint16(hi)<<8 | uint16(lo)) + uint16(mc.X)
	}

	value := func() uint8 {
		if defn.AddressingMode == Immediate {
			return uint8(operand)
		}
		return mc.read(operand)
	}

	branch := func(cond bool) {
		if cond {
			mc.PC = uint16(int(mc.PC) + int(int8(uint8(operand))))
			cycles++
		}
	}

	switch defn.Mnemonic {
	case "NOP":
	case "HLT":
		mc.Halted = true
	case "WAI":
		mc.Waiting = true
		mc.waitRequested = true
	case "SEI":
		mc.InterruptDisable = true
	case "CLI":
		mc.InterruptDisable = false
	case "SEC":
		mc.Carry = true
	case "CLC":
		mc.Carry = false
	case "RTS":
		lo := mc.pull()
		hi := mc.pull()
		mc.PC = uint16(hi)<<8 | uint16(lo)
	case "RTI":
		mc.setStatus(mc.pull())
		lo := mc.pull()
		hi := mc.pull()
		mc.PC = uint16(hi)<<8 | uint16(lo)
	case "TAX":
		mc.X = mc.A
		mc.Zero = mc.X == 0
	case "TXA":
		mc.A = mc.X
		mc.Zero = mc.A == 0
	case "INX":
		mc.X++
		mc.Zero = mc.X == 0
	case "DEX":
		mc.X--
		mc.Zero = mc.X == 0
	case "PHA":
		mc.push(mc.A)
	case "PLA":
		mc.A = mc.pull()
		mc.Zero = mc.A == 0
	case "LDA":
		mc.A = value()
		mc.Zero = mc.A == 0
	case "STA":
		mc.write(operand, mc.A)
	case "LDX":
		mc.X = value()
		mc.Zero = mc.X == 0
	case "STX":
		mc.write(operand, mc.X)
	case "ADD":
		r := uint16(mc.A) + uint16(value())
		mc.A = uint8(r)
		mc.Carry = r > 0xff
		mc.Zero = mc.A == 0
	case "SUB":
		v := value()
		mc.Carry = mc.A >= v
		mc.A -= v
		mc.Zero = mc.A == 0
	case "CMP":
		v := value()
		mc.Carry = mc.A >= v
		mc.Zero = mc.A == v
	case "CPX":
		v := value()
		mc.Carry = mc.X >= v
		mc.Zero = mc.X == v
	case "AND":
		mc.A &= value()
		mc.Zero = mc.A == 0
	case "ORA":
		mc.A |= value()
		mc.Zero = mc.A == 0
	case "EOR":
		mc.A ^= value()
		mc.Zero = mc.A == 0
	case "INC":
		v := mc.read(operand) + 1
		mc.write(operand, v)
		mc.Zero = v == 0
	case "DEC":
		v := mc.read(operand) - 1
		mc.write(operand, v)
		mc.Zero = v == 0
	case "JMP":
		mc.PC = operand
	case "JSR":
		ret := mc.PC
		mc.push(uint8(ret >> 8))
		mc.push(uint8(ret))
		mc.PC = operand
	case "BEQ":
		branch(mc.Zero)
	case "BNE":
		branch(!mc.Zero)
	case "BCS":
		branch(mc.Carry)
	case "BCC":
		branch(!mc.Carry)
	}

	return cycles
}

// State is the state of the CPU in a snapshot.
type State struct {
	PC               uint16
	A                uint8
	X                uint8
	SP               uint8
	Zero             bool
	Carry            bool
	InterruptDisable bool
	Halted           bool
	Waiting          bool
	Lines            [cpu.MaxIRQLines]cpu.LineState
	NMIPending       bool
	IRQPulsed        bool
	Deficit          int
	Instructions     uint64
}

// Snapshot creates a copy of the CPU state.
func (mc *CPU) Snapshot() any {
	return &State{
		PC:               mc.PC,
		A:                mc.A,
		X:                mc.X,
		SP:               mc.SP,
		Zero:             mc.Zero,
		Carry:            mc.Carry,
		InterruptDisable: mc.InterruptDisable,
		Halted:           mc.Halted,
		Waiting:          mc.Waiting,
		Lines:            mc.lines,
		NMIPending:       mc.nmiPending,
		IRQPulsed:        mc.irqPulsed,
		Deficit:          mc.deficit,
		Instructions:     mc.Instructions,
	}
}

// Plumb a state created by Snapshot() into the CPU.
func (mc *CPU) Plumb(state any) error {
	s, ok := state.(*State)
	if !ok {
		return curated.Errorf(ErrState, state)
	}
	mc.PC = s.PC
	mc.A = s.A
	mc.X = s.X
	mc.SP = s.SP
	mc.Zero = s.Zero
	mc.Carry = s.Carry
	mc.InterruptDisable = s.InterruptDisable
	mc.Halted = s.Halted
	mc.Waiting = s.Waiting
	mc.lines = s.Lines
	mc.nmiPending = s.NMIPending
	mc.irqPulsed = s.IRQPulsed
	mc.deficit = s.Deficit
	mc.waitRequested = false
	mc.Instructions = s.Instructions
	return nil
}
