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

import "fmt"

// AddressingMode describes how an instruction receives the data on which it
// operates.
type AddressingMode int

// List of valid addressing modes.
const (
	Implied AddressingMode = iota
	Immediate
	Absolute
	AbsoluteIndexedX
	Relative
)

func (m AddressingMode) String() string {
	switch m {
	case Implied:
		return "implied"
	case Immediate:
		return "immediate"
	case Absolute:
		return "absolute"
	case AbsoluteIndexedX:
		return "absolute,x"
	case Relative:
		return "relative"
	}
	return "unknown"
}

// Bytes returns the length of an instruction with the addressing mode.
func (m AddressingMode) Bytes() int {
	switch m {
	case Immediate, Relative:
		return 2
	case Absolute, AbsoluteIndexedX:
		return 3
	}
	return 1
}

// Definition is the property list for an instruction. Branch instructions
// take one more cycle than listed if the branch is taken.
type Definition struct {
	OpCode         uint8
	Mnemonic       string
	AddressingMode AddressingMode
	Cycles         int
}

func (defn Definition) String() string {
	return fmt.Sprintf("%02x %s (%s) %d cycles", defn.OpCode, defn.Mnemonic, defn.AddressingMode, defn.Cycles)
}

var definitions = []Definition{
	{OpCode: 0x00, Mnemonic: "NOP", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x01, Mnemonic: "HLT", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x02, Mnemonic: "WAI", AddressingMode: Implied, Cycles: 3},
	{OpCode: 0x03, Mnemonic: "SEI", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x04, Mnemonic: "CLI", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x05, Mnemonic: "SEC", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x06, Mnemonic: "CLC", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x07, Mnemonic: "RTS", AddressingMode: Implied, Cycles: 6},
	{OpCode: 0x08, Mnemonic: "RTI", AddressingMode: Implied, Cycles: 6},
	{OpCode: 0x09, Mnemonic: "TAX", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x0a, Mnemonic: "TXA", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x0b, Mnemonic: "INX", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x0c, Mnemonic: "DEX", AddressingMode: Implied, Cycles: 2},
	{OpCode: 0x0d, Mnemonic: "PHA", AddressingMode: Implied, Cycles: 3},
	{OpCode: 0x0e, Mnemonic: "PLA", AddressingMode: Implied, Cycles: 4},
	{OpCode: 0x10, Mnemonic: "LDA", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x11, Mnemonic: "LDA", AddressingMode: Absolute, Cycles: 4},
	{OpCode: 0x12, Mnemonic: "LDA", AddressingMode: AbsoluteIndexedX, Cycles: 5},
	{OpCode: 0x13, Mnemonic: "STA", AddressingMode: Absolute, Cycles: 4},
	{OpCode: 0x14, Mnemonic: "STA", AddressingMode: AbsoluteIndexedX, Cycles: 5},
	{OpCode: 0x15, Mnemonic: "LDX", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x16, Mnemonic: "LDX", AddressingMode: Absolute, Cycles: 4},
	{OpCode: 0x17, Mnemonic: "STX", AddressingMode: Absolute, Cycles: 4},
	{OpCode: 0x18, Mnemonic: "ADD", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x19, Mnemonic: "ADD", AddressingMode: Absolute, Cycles: 4},
	{OpCode: 0x1a, Mnemonic: "SUB", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x1b, Mnemonic: "SUB", AddressingMode: Absolute, Cycles: 4},
	{OpCode: 0x1c, Mnemonic: "CMP", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x1d, Mnemonic: "CMP", AddressingMode: Absolute, Cycles: 4},
	{OpCode: 0x1e, Mnemonic: "CPX", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x1f, Mnemonic: "AND", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x20, Mnemonic: "ORA", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x21, Mnemonic: "EOR", AddressingMode: Immediate, Cycles: 2},
	{OpCode: 0x22, Mnemonic: "INC", AddressingMode: Absolute, Cycles: 6},
	{OpCode: 0x23, Mnemonic: "DEC", AddressingMode: Absolute, Cycles: 6},
	{OpCode: 0x24, Mnemonic: "JMP", AddressingMode: Absolute, Cycles: 3},
	{OpCode: 0x25, Mnemonic: "JSR", AddressingMode: Absolute, Cycles: 6},
	{OpCode: 0x26, Mnemonic: "BEQ", AddressingMode: Relative, Cycles: 2},
	{OpCode: 0x27, Mnemonic: "BNE", AddressingMode: Relative, Cycles: 2},
	{OpCode: 0x28, Mnemonic: "BCS", AddressingMode: Relative, Cycles: 2},
	{OpCode: 0x29, Mnemonic: "BCC", AddressingMode: Relative, Cycles: 2},
}

// table of definitions indexed by opcode. nil entries are illegal opcodes
var opcodes [256]*Definition

func init() {
	for i := range definitions {
		d := &definitions[i]
		if opcodes[d.OpCode] != nil {
			panic(fmt.Sprintf("mc8: duplicate opcode %02x", d.OpCode))
		}
		opcodes[d.OpCode] = d
	}
}

// Lookup returns the definition for the opcode. Returns false if the opcode
// is illegal.
func Lookup(opcode uint8) (Definition, bool) {
	d := opcodes[opcode]
	if d == nil {
		return Definition{}, false
	}
	return *d, true
}

// Find returns the definition for the mnemonic and addressing mode.
func Find(mnemonic string, mode AddressingMode) (Definition, bool) {
	for _, d := range definitions {
		if d.Mnemonic == mnemonic && d.AddressingMode == mode {
			return d, true
		}
	}
	return Definition{}, false
}

// IsMnemonic returns true if the string is the mnemonic of any instruction.
func IsMnemonic(s string) bool {
	for _, d := range definitions {
		if d.Mnemonic == s {
			return true
		}
	}
	return false
}
