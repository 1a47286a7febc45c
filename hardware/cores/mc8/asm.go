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
	"strconv"
	"strings"

	"github.com/jetsetilly/cpuexec/curated"
)

// ErrAssembly is the pattern for errors returned by Assemble().
const ErrAssembly = "mc8: assembly: line %d: %s"

// Program is the result of assembling source code.
type Program struct {
	// the address of the first byte of Data
	Origin uint16
	Data   []uint8

	// the address of every label
	Labels map[string]uint16
}

// Label returns the address of the label. Panics if the label is not in the
// program. For use when building a machine from a program that is known to
// be correct.
func (p *Program) Label(label string) uint16 {
	a, ok := p.Labels[label]
	if !ok {
		panic("mc8: no label " + label)
	}
	return a
}

type asmLine struct {
	number   int
	label    string
	mnemonic string
	operand  string
}

// Assemble the source code. The program begins at the origin. The syntax
// is:
//
//	label:  MNEMONIC operand   ; comment
//
// Operands are written as #value for immediate mode, address for absolute
// mode and address,X for indexed mode. Branch instructions take an address
// which is converted to a relative offset. Values can be decimal, hex with a
// $ prefix, or a label. The < and > prefixes select the low and high byte
// of a value.
//
// The .org directive moves the program forward to an address, the .byte
// directive stores a list of bytes and the .word directive stores a list of
// 16 bit values.
func Assemble(origin uint16, source string) (*Program, error) {
	var lines []asmLine
	for i, l := range strings.Split(source, "\n") {
		if c := strings.Index(l, ";"); c >= 0 {
			l = l[:c]
		}
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}

		al := asmLine{number: i + 1}
		if c := strings.Index(l, ":"); c >= 0 {
			al.label = strings.TrimSpace(l[:c])
			l = strings.TrimSpace(l[c+1:])
		}

		f := strings.Fields(l)
		if len(f) > 0 {
			al.mnemonic = strings.ToUpper(f[0])
			al.operand = strings.Join(f[1:], "")
		}
		lines = append(lines, al)
	}

	p := &Program{
		Origin: origin,
		Labels: make(map[string]uint16),
	}

	// the first pass finds the address of every label. the second pass
	// creates the data
	for pass := 0; pass < 2; pass++ {
		pc := int(origin)
		p.Data = p.Data[:0]

		for _, al := range lines {
			if al.label != "" && pass == 0 {
				if _, ok := p.Labels[al.label]; ok {
					return nil, curated.Errorf(ErrAssembly, al.number, "duplicate label "+al.label)
				}
				p.Labels[al.label] = uint16(pc)
			}
			if al.mnemonic == "" {
				continue
			}

			// values can't be resolved in the first pass
			resolve := func(s string) (int, error) {
				if pass == 0 {
					return 0, nil
				}
				return p.value(s)
			}

			var out []uint8
			switch al.mnemonic {
			case ".ORG":
				v, err := p.value(al.operand)
				if err != nil {
					return nil, curated.Errorf(ErrAssembly, al.number, err)
				}
				if v < pc {
					return nil, curated.Errorf(ErrAssembly, al.number, ".org moves backwards")
				}
				out = make([]uint8, v-pc)

			case ".BYTE":
				for _, s := range strings.Split(al.operand, ",") {
					v, err := resolve(s)
					if err != nil {
						return nil, curated.Errorf(ErrAssembly, al.number, err)
					}
					out = append(out, uint8(v))
				}

			case ".WORD":
				for _, s := range strings.Split(al.operand, ",") {
					v, err := resolve(s)
					if err != nil {
						return nil, curated.Errorf(ErrAssembly, al.number, err)
					}
					out = append(out, uint8(v), uint8(v>>8))
				}

			default:
				var err error
				out, err = p.instruction(al, pc, resolve, pass == 1)
				if err != nil {
					return nil, curated.Errorf(ErrAssembly, al.number, err)
				}
			}

			p.Data = append(p.Data, out...)
			pc += len(out)
			if pc > 0x10000 {
				return nil, curated.Errorf(ErrAssembly, al.number, "program too large")
			}
		}
	}

	return p, nil
}

func (p *Program) instruction(al asmLine, pc int, resolve func(string) (int, error), final bool) ([]uint8, error) {
	if !IsMnemonic(al.mnemonic) {
		return nil, curated.Errorf("unknown instruction %s", al.mnemonic)
	}

	op := al.operand
	mode := Implied
	switch {
	case op == "":
	case strings.HasPrefix(op, "#"):
		mode = Immediate
		op = op[1:]
	case strings.HasSuffix(strings.ToUpper(op), ",X"):
		mode = AbsoluteIndexedX
		op = op[:len(op)-2]
	default:
		mode = Absolute
		if _, ok := Find(al.mnemonic, Relative); ok {
			mode = Relative
		}
	}

	defn, ok := Find(al.mnemonic, mode)
	if !ok {
		return nil, curated.Errorf("%s does not support %s addressing", al.mnemonic, mode)
	}

	out := []uint8{defn.OpCode}
	if mode == Implied {
		return out, nil
	}

	v, err := resolve(op)
	if err != nil {
		return nil, err
	}

	switch mode {
	case Immediate:
		out = append(out, uint8(v))
	case Relative:
		// the offset is from the address of the next instruction
		offset := v - (pc + 2)
		if final && (offset < -128 || offset > 127) {
			return nil, curated.Errorf("branch out of range")
		}
		out = append(out, uint8(int8(offset)))
	default:
		out = append(out, uint8(v), uint8(v>>8))
	}

	return out, nil
}

// value converts a number or label to an integer.
func (p *Program) value(s string) (int, error) {
	s = strings.TrimSpace(s)

	switch {
	case strings.HasPrefix(s, "<"):
		v, err := p.value(s[1:])
		return v & 0xff, err
	case strings.HasPrefix(s, ">"):
		v, err := p.value(s[1:])
		return (v >> 8) & 0xff, err
	case strings.HasPrefix(s, "$"):
		v, err := strconv.ParseUint(s[1:], 16, 16)
		if err != nil {
			return 0, curated.Errorf("bad hex value %s", s)
		}
		return int(v), nil
	case s != "" && s[0] >= '0' && s[0] <= '9':
		v, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, curated.Errorf("bad value %s", s)
		}
		return int(v), nil
	}

	a, ok := p.Labels[s]
	if !ok {
		return 0, curated.Errorf("unknown label %s", s)
	}
	return int(a), nil
}
