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

// Package beeper is a square wave sound generator. The frequency and the
// volume are set by a processor through two ports. The output is sampled at
// a fixed sample rate and the samples are given to the attached mixers at
// the end of every frame.
//
// Both the square wave and the sampling are driven by timers in the
// scheduler's timer queue. The beeper never needs to be stepped.
package beeper

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/memory"
	"github.com/jetsetilly/cpuexec/hardware/timer"
	"github.com/jetsetilly/cpuexec/logger"
)

// ErrState is returned by Plumb() when the state is not from a beeper.
const ErrState = "beeper: cannot plumb %T"

// Mixer implementations receive the samples produced by the beeper.
type Mixer interface {
	SetAudio(samples []int16) error
}

// The ports of the beeper relative to the origin of the memory area.
const (
	// the frequency of the square wave is the port value multiplied by
	// FrequencyStep. zero is silence
	PortFrequency = iota

	// the volume of the square wave. zero is silence
	PortVolume

	NumPorts
)

// FrequencyStep is the frequency in Hz of each unit of the frequency port.
const FrequencyStep = 10

// Beeper is the sound generator.
type Beeper struct {
	env    logger.Permission
	label  string
	timers *timer.Queue

	toggleTimer timer.Handle
	sampleTimer timer.Handle

	SampleRate int

	// register values
	Frequency uint8
	Volume    uint8

	// the current level of the square wave
	high bool

	// samples collected since the last frame
	buffer []int16
	mixers []Mixer
}

// NewBeeper is the preferred method of initialisation for the Beeper type.
// The label is used to tag the beeper's timers and must be unique in the
// machine.
func NewBeeper(env logger.Permission, label string, timers *timer.Queue, sampleRate int) *Beeper {
	b := &Beeper{
		env:        env,
		label:      label,
		timers:     timers,
		SampleRate: sampleRate,
	}
	b.toggleTimer = timers.AllocPersistent(label+".toggle", func(_ int) {
		b.high = !b.high
	})
	b.sampleTimer = timers.AllocPersistent(label+".sample", func(_ int) {
		b.buffer = append(b.buffer, b.Sample())
	})
	return b
}

func (b *Beeper) String() string {
	return fmt.Sprintf("%s: freq=%dHz vol=%d", b.label, int(b.Frequency)*FrequencyStep, b.Volume)
}

// AddMixer adds a mixer to the list of mixers that are given samples at
// the end of every frame.
func (b *Beeper) AddMixer(m Mixer) {
	b.mixers = append(b.mixers, m)
}

// Reset the beeper. The beeper is silent after a reset.
func (b *Beeper) Reset() {
	b.Frequency = 0
	b.Volume = 0
	b.high = false
	b.buffer = b.buffer[:0]
	b.timers.Enable(b.toggleTimer, false)

	p := attotime.FromHz(float64(b.SampleRate))
	b.timers.AdjustPeriodic(b.sampleTimer, p, 0, p)
}

// SetFrequency changes the frequency of the square wave.
func (b *Beeper) SetFrequency(v uint8) {
	b.Frequency = v
	if v == 0 {
		b.timers.Enable(b.toggleTimer, false)
		b.high = false
		return
	}

	// the wave changes level twice every cycle
	p := attotime.FromHz(float64(v) * FrequencyStep * 2)
	b.timers.AdjustPeriodic(b.toggleTimer, p, 0, p)
}

// SetVolume changes the volume of the square wave.
func (b *Beeper) SetVolume(v uint8) {
	b.Volume = v
}

// Sample returns the current output of the beeper.
func (b *Beeper) Sample() int16 {
	if b.Frequency == 0 {
		return 0
	}
	amp := int16(b.Volume) * 128
	if b.high {
		return amp
	}
	return -amp
}

// NewFrame implements the cpuexec.FrameListener interface. The samples
// collected during the frame are given to the mixers.
func (b *Beeper) NewFrame(_ int) error {
	for _, m := range b.mixers {
		if err := m.SetAudio(b.buffer); err != nil {
			logger.Logf(b.env, b.label, "%v", err)
		}
	}
	b.buffer = b.buffer[:0]
	return nil
}

// Area returns the memory area for the ports of the beeper.
func (b *Beeper) Area(origin uint16) *memory.Ports {
	return memory.NewPorts(b.label, origin,
		memory.Port{
			Write: b.SetFrequency,
			Peek:  func() uint8 { return b.Frequency },
		},
		memory.Port{
			Write: b.SetVolume,
			Peek:  func() uint8 { return b.Volume },
		},
	)
}

// State is the state of the beeper in a snapshot. The timers are part of the
// scheduler's snapshot.
type State struct {
	Frequency uint8
	Volume    uint8
	High      bool
}

// Snapshot creates a copy of the beeper state. Samples that have not been
// given to the mixers are not part of the snapshot.
func (b *Beeper) Snapshot() any {
	return &State{
		Frequency: b.Frequency,
		Volume:    b.Volume,
		High:      b.high,
	}
}

// Plumb a state created by Snapshot() into the beeper.
func (b *Beeper) Plumb(state any) error {
	s, ok := state.(*State)
	if !ok {
		return curated.Errorf(ErrState, state)
	}
	b.Frequency = s.Frequency
	b.Volume = s.Volume
	b.high = s.High
	b.buffer = b.buffer[:0]
	return nil
}
