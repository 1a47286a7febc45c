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

package hardware_test

import (
	"testing"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/govern"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/config"
	"github.com/jetsetilly/cpuexec/hardware/cores/scripted"
	"github.com/jetsetilly/cpuexec/hardware/memory"
	"github.com/jetsetilly/cpuexec/hardware/television"
	"github.com/jetsetilly/cpuexec/test"
)

// counter is a device that counts frames and resets.
type counter struct {
	resets int
	frames int
	sum    int
}

type counterState struct {
	frames int
	sum    int
}

func (c *counter) Reset() {
	c.resets++
	c.frames = 0
	c.sum = 0
}

func (c *counter) NewFrame(frame int) error {
	c.frames++
	c.sum += frame
	return nil
}

func (c *counter) Snapshot() any {
	return &counterState{frames: c.frames, sum: c.sum}
}

func (c *counter) Plumb(state any) error {
	s, ok := state.(*counterState)
	if !ok {
		return curated.Errorf("counter: cannot plumb %T", state)
	}
	c.frames = s.frames
	c.sum = s.sum
	return nil
}

type machine struct {
	*hardware.Machine
	ram  *memory.RAM
	dev  *counter
	core *scripted.Core
}

func newMachine(t *testing.T, watchdogFrames int, kick bool) *machine {
	t.Helper()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)

	m := &machine{
		ram: memory.NewRAM("ram", 0x0000, 0x0100),
		dev: &counter{},
	}

	mem := memory.NewMemory()
	test.DemandSuccess(t, mem.Map(m.ram))

	// every step increases the value at address 0x10
	m.core = scripted.NewCore(scripted.Step{Cycles: 10, Do: func() {
		v, _ := mem.Read(0x10)
		_ = mem.Write(0x10, v+1)
		if kick {
			m.WatchdogReset()
		}
	}})

	cfg := &config.Config{
		Name:           "test",
		Screen:         television.SpecPAL,
		Interleave:     4,
		WatchdogFrames: watchdogFrames,
		CPUs: []config.CPU{
			{Tag: "main", Core: m.core, ClockHz: 1000000},
		},
	}

	m.Machine, err = hardware.NewMachine(env, cfg)
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, m.AddMemory("main", mem))
	test.DemandSuccess(t, m.AddDevice("counter", m.dev))
	m.Reset()

	return m
}

func TestNewMachine(t *testing.T) {
	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)

	_, err = hardware.NewMachine(env, &config.Config{Name: "empty", Screen: television.SpecPAL, Interleave: 1})
	test.ExpectFailure(t, err)
	test.ExpectSuccess(t, curated.Has(err, config.ErrNoCPUs))

	m := newMachine(t, 0, false)
	test.ExpectEquality(t, m.Name(), "test")
	test.ExpectEquality(t, m.dev.resets, 1)
	test.ExpectFailure(t, m.AddDevice("counter", &counter{}))
	test.ExpectFailure(t, m.AddMemory("main", memory.NewMemory()))
	test.ExpectEquality(t, m.Device("counter").(*counter), m.dev)
	test.ExpectEquality(t, m.Device("unknown"), nil)
	test.ExpectEquality(t, m.Memory("unknown") == nil, true)
}

func TestRunForFrameCount(t *testing.T) {
	m := newMachine(t, 0, false)

	test.DemandSuccess(t, m.RunForFrameCount(3, nil))
	test.ExpectEquality(t, m.Sched.FrameNumber(), 3)
	test.ExpectEquality(t, m.dev.frames, 3)
	test.ExpectEquality(t, m.dev.sum, 1+2+3)

	// 20ms per frame at 1MHz with ten cycles per step
	v, _ := m.ram.Peek(0x10)
	test.ExpectEquality(t, v, uint8((3*20000/10)%256))

	// the continue check can end the run early
	err := m.RunForFrameCount(10, func(frame int) (govern.State, error) {
		if frame == 5 {
			return govern.Ending, nil
		}
		return govern.Running, nil
	})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, m.Sched.FrameNumber(), 5)
}

func TestRun(t *testing.T) {
	m := newMachine(t, 0, false)

	// paused checks do not advance the emulation
	var checks int
	err := m.Run(func() (govern.State, error) {
		checks++
		switch {
		case checks < 3:
			return govern.Running, nil
		case checks < 10:
			return govern.Paused, nil
		case checks < 12:
			return govern.Running, nil
		}
		return govern.Ending, nil
	})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, m.Sched.FrameNumber(), 5)

	err = m.Run(func() (govern.State, error) {
		return govern.Rewinding, nil
	})
	test.ExpectFailure(t, err)
}

func TestWatchdog(t *testing.T) {
	m := newMachine(t, 3, false)

	test.DemandSuccess(t, m.RunForFrameCount(2, nil))
	test.ExpectEquality(t, m.WatchdogCount(), 2)
	test.ExpectEquality(t, m.dev.resets, 1)

	// the watchdog expires at the end of the third frame. memory is not
	// cleared by the watchdog
	test.DemandSuccess(t, m.RunForFrameCount(1, nil))
	test.ExpectEquality(t, m.Sched.FrameNumber(), 0)
	test.ExpectEquality(t, m.WatchdogCount(), 0)
	test.ExpectEquality(t, m.dev.resets, 2)
	v, _ := m.ram.Peek(0x10)
	test.ExpectInequality(t, v, 0)

	test.DemandSuccess(t, m.RunForFrameCount(2, nil))
	test.ExpectEquality(t, m.Sched.FrameNumber(), 2)

	// the watchdog preference disables the watchdog
	test.DemandSuccess(t, m.Env().Prefs.Set("cpuexec.watchdog", false))
	test.DemandSuccess(t, m.RunForFrameCount(5, nil))
	test.ExpectEquality(t, m.Sched.FrameNumber(), 7)
	test.ExpectEquality(t, m.dev.resets, 2)
}

func TestWatchdogKicked(t *testing.T) {
	m := newMachine(t, 3, true)
	test.DemandSuccess(t, m.RunForFrameCount(10, nil))
	test.ExpectEquality(t, m.Sched.FrameNumber(), 10)
	test.ExpectEquality(t, m.dev.resets, 1)
}

type fingerprint struct {
	frame  int
	value  uint8
	cycles uint64
	steps  uint64
	sum    int
}

func (m *machine) fingerprint() fingerprint {
	v, _ := m.ram.Peek(0x10)
	return fingerprint{
		frame:  m.Sched.FrameNumber(),
		value:  v,
		cycles: m.Sched.TotalCycles(0),
		steps:  m.core.Steps,
		sum:    m.dev.sum,
	}
}

func TestSnapshot(t *testing.T) {
	m := newMachine(t, 0, false)

	test.DemandSuccess(t, m.RunForFrameCount(2, nil))
	s, err := m.Snapshot()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, s.Frame(), 2)

	test.DemandSuccess(t, m.RunForFrameCount(3, nil))
	expected := m.fingerprint()

	test.DemandSuccess(t, m.Plumb(s))
	test.ExpectEquality(t, m.Sched.FrameNumber(), 2)
	test.DemandSuccess(t, m.RunForFrameCount(3, nil))
	test.ExpectEquality(t, m.fingerprint(), expected)

	// the same state can be plumbed into a different machine of the same
	// type
	o := newMachine(t, 0, false)
	test.DemandSuccess(t, o.Plumb(s))
	test.DemandSuccess(t, o.RunForFrameCount(3, nil))
	test.ExpectEquality(t, o.fingerprint(), expected)
}

func TestSnapshotMismatch(t *testing.T) {
	m := newMachine(t, 0, false)
	s, err := m.Snapshot()
	test.DemandSuccess(t, err)

	test.ExpectFailure(t, m.Plumb(nil))

	d := *s
	d.Devices = map[string]any{}
	test.ExpectFailure(t, m.Plumb(&d))

	d = *s
	d.Cores = nil
	test.ExpectFailure(t, m.Plumb(&d))

	d = *s
	d.Memory = map[string]*memory.State{"other": s.Memory["main"]}
	test.ExpectFailure(t, m.Plumb(&d))

	test.ExpectSuccess(t, m.Plumb(s))
}
