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

package machines

import (
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/config"
	"github.com/jetsetilly/cpuexec/hardware/cores/mc8"
	"github.com/jetsetilly/cpuexec/hardware/cores/nullcore"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/memory"
	"github.com/jetsetilly/cpuexec/hardware/peripherals/beeper"
	"github.com/jetsetilly/cpuexec/hardware/peripherals/dma"
	"github.com/jetsetilly/cpuexec/hardware/peripherals/pit"
	"github.com/jetsetilly/cpuexec/hardware/television"
)

// Device labels used by the twocpu machine.
const (
	LabelBeeper = "beeper"
	LabelDMA    = "dma"
	LabelPIT    = "pit"
	LabelLatch  = "latch"
)

// Processor tags used by the twocpu machine.
const (
	TagMain  = "main"
	TagSound = "sound"
	TagMCU   = "mcu"
)

// the trigger fired by the DMA controller when a transfer completes
const triggerDMA = 1

// main processor address map
const (
	mainRAM      = 0x0000
	mailbox      = 0x0800
	latchPort    = 0x0900
	dmaPorts     = 0x0a00
	pitPorts     = 0x0a10
	watchdogPort = 0x0a20
	romOrigin    = 0xf000
)

// sound processor address map. the mailbox and the latch are at the same
// addresses as they are for the main processor
const (
	soundRAM    = 0x0000
	beeperPorts = 0x0a00
)

const mainProgram = `
; main processor
;
; $0010 frame count
; $0011 interval timer ticks
; $0012 note number

start:  LDA #0
        STA $0010
        STA $0011
        STA $0012

        ; copy the note table to the mailbox and wait for the copy to
        ; complete
        LDA #<notes
        STA $0a00
        LDA #>notes
        STA $0a01
        LDA #$00
        STA $0a02
        LDA #$08
        STA $0a03
        LDA #16
        STA $0a04
        LDA #2
        STA $0a05

        ; the interval timer interrupts every 6400 cycles
        LDA #99
        STA $0a12
        CLI

idle:   WAI
        JMP idle

; vertical blank
nmi:    PHA
        STA $0a20
        INC $0010
        LDA $0010
        AND #$0f
        BNE nmiend

        ; a new note every sixteen frames
        INC $0012
        LDA $0012
        STA $0900
nmiend: PLA
        RTI

; interval timer
irq:    PHA
        LDA $0a15
        INC $0011
        LDA #99
        STA $0a12
        PLA
        RTI

notes:  .byte 22, 25, 28, 29, 33, 37, 41, 44
        .byte 44, 41, 37, 33, 29, 28, 25, 22

.org $fffa
.word nmi, start, irq
`

const soundProgram = `
; sound processor
;
; $0010 envelope volume

start:  LDA #0
        STA $0010
        CLI

idle:   WAI
        JMP idle

; sound command from the main processor. the command selects a note from
; the table in the mailbox
irq:    PHA
        LDA $0900
        AND #$0f
        TAX
        LDA $0800,X
        STA $0a00
        LDA #15
        STA $0010
        STA $0a01
        PLA
        RTI

; envelope timer
nmi:    PHA
        LDA $0010
        BEQ nmiend
        DEC $0010
        LDA $0010
        STA $0a01
nmiend: PLA
        RTI

.org $fffa
.word nmi, start, irq
`

// latch is the sound command latch. Writing to the latch interrupts the
// sound processor.
type latch struct {
	ctl   cpu.Controller
	index int
	Value uint8
}

type latchState struct {
	Value uint8
}

func (l *latch) write(v uint8) {
	l.Value = v
	l.ctl.SetIRQLine(l.index, mc8.LineIRQ, cpu.HoldLine)
}

func (l *latch) read() uint8 {
	return l.Value
}

func (l *latch) Reset() {
	l.Value = 0
}

func (l *latch) Snapshot() any {
	return &latchState{Value: l.Value}
}

func (l *latch) Plumb(state any) error {
	s, ok := state.(*latchState)
	if !ok {
		return curated.Errorf("latch: cannot plumb %T", state)
	}
	l.Value = s.Value
	return nil
}

func createTwoCPU(env *environment.Environment) (*hardware.Machine, error) {
	mainPrg, err := mc8.Assemble(romOrigin, mainProgram)
	if err != nil {
		return nil, err
	}
	soundPrg, err := mc8.Assemble(romOrigin, soundProgram)
	if err != nil {
		return nil, err
	}

	// the mailbox is the same RAM in both address spaces
	box := memory.NewRAM("mailbox", mailbox, 0x100)

	mainMem := memory.NewMemory()
	soundMem := memory.NewMemory()
	for _, a := range []memory.Area{
		memory.NewRAM("main.ram", mainRAM, 0x0800),
		box,
		memory.NewROM("main.rom", mainPrg.Origin, mainPrg.Data),
	} {
		if err := mainMem.Map(a); err != nil {
			return nil, err
		}
	}
	for _, a := range []memory.Area{
		memory.NewRAM("sound.ram", soundRAM, 0x0800),
		box,
		memory.NewROM("sound.rom", soundPrg.Origin, soundPrg.Data),
	} {
		if err := soundMem.Map(a); err != nil {
			return nil, err
		}
	}

	mainCPU := mc8.NewCPU(env, TagMain, mainMem)
	soundCPU := mc8.NewCPU(env, TagSound, soundMem)

	cfg := &config.Config{
		Name:           "twocpu",
		Screen:         television.SpecArcade,
		Interleave:     10,
		WatchdogFrames: 30,
		CPUs: []config.CPU{
			{
				Tag:             TagMain,
				Core:            mainCPU,
				ClockHz:         1000000,
				VBlankInterrupt: cpu.PulseIRQ(mc8.LineNMI),
				VBlankPerFrame:  1,
			},
			{
				Tag:            TagSound,
				Core:           soundCPU,
				ClockHz:        2000000,
				TimedInterrupt: cpu.PulseIRQ(mc8.LineNMI),
				TimedPerSecond: 64,
			},
			{
				Tag:      TagMCU,
				Core:     &nullcore.Core{},
				ClockHz:  4000000,
				Disabled: true,
			},
		},
	}

	m, err := hardware.NewMachine(env, cfg)
	if err != nil {
		return nil, err
	}
	sched := m.Sched

	mainIdx, _ := cfg.FindCPU(TagMain)
	soundIdx, _ := cfg.FindCPU(TagSound)

	// both processors wait for interrupts without using host time
	mainCPU.OnWait = sched.SpinUntilInt
	soundCPU.OnWait = sched.SpinUntilInt

	lt := &latch{ctl: sched, index: soundIdx}

	d := dma.NewDMA(env, LabelDMA, mainMem, sched, sched.Timers, cfg.CPUs[mainIdx].ClockHz, triggerDMA)

	p := pit.NewPIT(LabelPIT, sched.Timers, sched, cfg.CPUs[mainIdx].ClockHz)
	p.ConnectIRQ(mainIdx, mc8.LineIRQ)

	b := beeper.NewBeeper(env, LabelBeeper, sched.Timers, 22050)

	for _, a := range []memory.Area{
		memory.NewPorts(LabelLatch, latchPort, memory.Port{Write: lt.write, Peek: lt.read}),
		d.Area(dmaPorts),
		p.Area(pitPorts),
		memory.NewPorts("watchdog", watchdogPort, memory.Port{Write: func(_ uint8) {
			m.WatchdogReset()
		}}),
	} {
		if err := mainMem.Map(a); err != nil {
			return nil, err
		}
	}
	for _, a := range []memory.Area{
		memory.NewPorts(LabelLatch, latchPort, memory.Port{Read: lt.read, Peek: lt.read}),
		b.Area(beeperPorts),
	} {
		if err := soundMem.Map(a); err != nil {
			return nil, err
		}
	}

	if err := m.AddMemory(TagMain, mainMem); err != nil {
		return nil, err
	}
	if err := m.AddMemory(TagSound, soundMem); err != nil {
		return nil, err
	}

	for _, dev := range []struct {
		label string
		dev   any
	}{
		{LabelLatch, lt},
		{LabelDMA, d},
		{LabelPIT, p},
		{LabelBeeper, b},
	} {
		if err := m.AddDevice(dev.label, dev.dev); err != nil {
			return nil, err
		}
	}

	return m, nil
}
