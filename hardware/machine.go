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

package hardware

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware/config"
	"github.com/jetsetilly/cpuexec/hardware/cpuexec"
	"github.com/jetsetilly/cpuexec/hardware/memory"
	"github.com/jetsetilly/cpuexec/logger"
)

// Sentinal error patterns for the machine.
const (
	ErrDuplicateDevice = "machine: device already attached (%s)"
	ErrState           = "machine: snapshot does not match machine: %s"
)

// Resetter is implemented by devices that need to be reset with the
// machine. Devices with persistent timers must re-arm them on reset because
// the timers are disabled by the scheduler's reset.
type Resetter interface {
	Reset()
}

// Snapshotter is implemented by devices and cores that have state that
// should be part of a machine snapshot. The value returned by Snapshot() must
// be a copy that the device will not change.
type Snapshotter interface {
	Snapshot() any
	Plumb(state any) error
}

type device struct {
	label string
	dev   any
}

// Machine is the container for the components of an emulated machine.
type Machine struct {
	env *environment.Environment
	cfg *config.Config

	Sched *cpuexec.Scheduler

	// memories of the machine by label. a machine can have more than one
	// address space
	memories map[string]*memory.Memory

	devices []device

	// number of frames since WatchdogReset() was last called
	watchdogCount   int
	watchdogExpired bool
}

// NewMachine is the preferred method of initialisation for the Machine type.
// The configuration is validated by the scheduler.
func NewMachine(env *environment.Environment, cfg *config.Config) (*Machine, error) {
	sched, err := cpuexec.NewScheduler(env, cfg)
	if err != nil {
		return nil, curated.Errorf("machine: %v", err)
	}

	m := &Machine{
		env:      env,
		cfg:      cfg,
		Sched:    sched,
		memories: make(map[string]*memory.Memory),
	}

	sched.AddFrameListener(m)

	return m, nil
}

func (m *Machine) String() string {
	s := strings.Builder{}
	s.WriteString(m.cfg.Name)
	for i := 0; i < m.Sched.NumCPUs(); i++ {
		s.WriteString(fmt.Sprintf("\n  %s", m.Sched.Slot(i)))
	}
	for _, d := range m.devices {
		s.WriteString(fmt.Sprintf("\n  %s", d.label))
	}
	return s.String()
}

// Env returns the environment of the machine.
func (m *Machine) Env() *environment.Environment {
	return m.env
}

// Name of the machine.
func (m *Machine) Name() string {
	return m.cfg.Name
}

// AddMemory attaches an address space to the machine. The RAM areas in the
// memory are part of the machine's snapshot.
func (m *Machine) AddMemory(label string, mem *memory.Memory) error {
	if _, ok := m.memories[label]; ok {
		return curated.Errorf(ErrDuplicateDevice, label)
	}
	m.memories[label] = mem
	return nil
}

// Memory returns the memory with the label. Returns nil if there is no such
// memory.
func (m *Machine) Memory(label string) *memory.Memory {
	return m.memories[label]
}

// AddDevice attaches a device to the machine. The device is reset with the
// machine if it implements Resetter, is part of the machine's snapshot if it
// implements Snapshotter and is told of every new frame if it implements
// cpuexec.FrameListener.
//
// Devices are reset in the order they are added.
func (m *Machine) AddDevice(label string, dev any) error {
	for _, d := range m.devices {
		if d.label == label {
			return curated.Errorf(ErrDuplicateDevice, label)
		}
	}
	m.devices = append(m.devices, device{label: label, dev: dev})
	if l, ok := dev.(cpuexec.FrameListener); ok {
		m.Sched.AddFrameListener(l)
	}
	return nil
}

// Device returns the device with the label. Returns nil if there is no such
// device.
func (m *Machine) Device(label string) any {
	for _, d := range m.devices {
		if d.label == label {
			return d.dev
		}
	}
	return nil
}

// Reset the machine. RAM is cleared before the scheduler and the devices are
// reset.
func (m *Machine) Reset() {
	for _, mem := range m.memories {
		mem.Clear()
	}
	m.softReset()
}

// softReset resets the scheduler and devices but leaves memory intact.
func (m *Machine) softReset() {
	m.Sched.Reset()
	for _, d := range m.devices {
		if r, ok := d.dev.(Resetter); ok {
			r.Reset()
		}
	}
	m.watchdogCount = 0
	m.watchdogExpired = false
}

// WatchdogReset restarts the watchdog count. Processors call this
// periodically to prove they are still running correctly.
func (m *Machine) WatchdogReset() {
	m.watchdogCount = 0
}

// WatchdogCount returns the number of frames since the watchdog was last
// reset.
func (m *Machine) WatchdogCount() int {
	return m.watchdogCount
}

// NewFrame implements the cpuexec.FrameListener interface.
func (m *Machine) NewFrame(frame int) error {
	if m.cfg.WatchdogFrames <= 0 || !m.env.Prefs.Watchdog.Get().(bool) {
		return nil
	}
	m.watchdogCount++
	if m.watchdogCount >= m.cfg.WatchdogFrames {
		// the reset happens once the frame has completely ended
		m.watchdogExpired = true
	}
	return nil
}

// RunFrame runs the machine until the end of the current frame.
func (m *Machine) RunFrame() error {
	if err := m.Sched.RunFrame(); err != nil {
		return curated.Errorf("machine: %v", err)
	}
	if m.watchdogExpired {
		logger.Logf(m.env, "machine", "watchdog expired after %d frames. resetting", m.watchdogCount)
		m.softReset()
	}
	return nil
}

// State is a snapshot of the entire machine.
type State struct {
	Scheduler *cpuexec.Snapshot

	// one entry per processor. nil for cores that have no state
	Cores []any

	Memory  map[string]*memory.State
	Devices map[string]any

	WatchdogCount int
}

// Frame returns the frame number of the snapshot.
func (s *State) Frame() int {
	return s.Scheduler.Frame
}

// Snapshot creates a copy of the machine state. Only valid between frames.
func (m *Machine) Snapshot() (*State, error) {
	snp, err := m.Sched.Snapshot()
	if err != nil {
		return nil, err
	}

	s := &State{
		Scheduler:     snp,
		Memory:        make(map[string]*memory.State),
		Devices:       make(map[string]any),
		WatchdogCount: m.watchdogCount,
	}

	for i := 0; i < m.Sched.NumCPUs(); i++ {
		if c, ok := m.Sched.Slot(i).Core().(Snapshotter); ok {
			s.Cores = append(s.Cores, c.Snapshot())
		} else {
			s.Cores = append(s.Cores, nil)
		}
	}

	for label, mem := range m.memories {
		s.Memory[label] = mem.Snapshot()
	}

	for _, d := range m.devices {
		if sn, ok := d.dev.(Snapshotter); ok {
			s.Devices[d.label] = sn.Snapshot()
		}
	}

	return s, nil
}

// Plumb a state created by Snapshot() into the machine. The state must have
// been taken from a machine of the same type.
//
// The shape of the state is checked before anything is changed. A core or
// device that refuses its part of the state leaves the machine partially
// plumbed and the machine should be reset.
func (m *Machine) Plumb(s *State) error {
	if s == nil || s.Scheduler == nil {
		return curated.Errorf(ErrState, "empty state")
	}
	if len(s.Cores) != m.Sched.NumCPUs() {
		return curated.Errorf(ErrState, "wrong number of processors")
	}
	if len(s.Memory) != len(m.memories) {
		return curated.Errorf(ErrState, "wrong number of memories")
	}
	for label := range m.memories {
		if _, ok := s.Memory[label]; !ok {
			return curated.Errorf(ErrState, "memory "+label)
		}
	}
	var labels []string
	for _, d := range m.devices {
		if _, ok := d.dev.(Snapshotter); ok {
			if _, ok := s.Devices[d.label]; !ok {
				return curated.Errorf(ErrState, "device "+d.label)
			}
			labels = append(labels, d.label)
		}
	}
	if len(labels) != len(s.Devices) {
		return curated.Errorf(ErrState, "wrong number of devices")
	}

	if err := m.Sched.Plumb(s.Scheduler); err != nil {
		return err
	}

	// memories are plumbed in a fixed order so that any error is reported
	// consistently
	var memLabels []string
	for label := range m.memories {
		memLabels = append(memLabels, label)
	}
	sort.Strings(memLabels)
	for _, label := range memLabels {
		if err := m.memories[label].Plumb(s.Memory[label]); err != nil {
			return err
		}
	}

	for i := 0; i < m.Sched.NumCPUs(); i++ {
		if c, ok := m.Sched.Slot(i).Core().(Snapshotter); ok {
			if err := c.Plumb(s.Cores[i]); err != nil {
				return err
			}
		}
	}

	for _, d := range m.devices {
		if sn, ok := d.dev.(Snapshotter); ok {
			if err := sn.Plumb(s.Devices[d.label]); err != nil {
				return err
			}
		}
	}

	m.watchdogCount = s.WatchdogCount
	m.watchdogExpired = false

	return nil
}
