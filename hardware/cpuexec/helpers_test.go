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

package cpuexec_test

import (
	"testing"

	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware/config"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/cpuexec"
	"github.com/jetsetilly/cpuexec/hardware/television"
	"github.com/jetsetilly/cpuexec/test"
)

// testCore executes instructions of a fixed number of cycles. The hook is
// called after every instruction.
type testCore struct {
	step     int
	executed int
	bursts   int
	resets   int
	lines    [cpu.MaxIRQLines]cpu.LineState
	irq      cpu.IRQCallback
	hook     func()

	// if not nil, the value returned by Execute()
	bad func(cycles int) int
}

func newTestCore() *testCore {
	return &testCore{step: 1}
}

func (c *testCore) Execute(b cpu.Burst, cycles int) int {
	c.bursts++
	for b.Icount() > 0 {
		b.Burn(min(c.step, b.Icount()))
		c.executed++
		if c.hook != nil {
			c.hook()
		}
	}
	if c.bad != nil {
		return c.bad(cycles)
	}
	return cycles - b.Icount()
}

func (c *testCore) Reset(_ any) {
	c.resets++
}

func (c *testCore) SetIRQLine(line int, state cpu.LineState) {
	c.lines[line] = state
}

func (c *testCore) SetIRQCallback(cb cpu.IRQCallback) {
	c.irq = cb
}

// the screen used by most tests. 60Hz with the frame period an exact number
// of attoseconds
var testScreen = television.Spec{
	ID:             "TEST",
	RefreshRate:    60,
	ScanlinesTotal: 100,
	ScanlineTop:    10,
	ScanlineBottom: 89,
	Width:          100,
}

func newConfig(hz ...uint64) (*config.Config, []*testCore) {
	cfg := &config.Config{
		Name:       "test",
		Screen:     testScreen,
		Interleave: 1,
	}
	var cores []*testCore
	for i, h := range hz {
		c := newTestCore()
		cores = append(cores, c)
		cfg.CPUs = append(cfg.CPUs, config.CPU{
			Tag:     string(rune('a' + i)),
			Core:    c,
			ClockHz: h,
		})
	}
	return cfg, cores
}

func newSchedulerErr(cfg *config.Config) (*cpuexec.Scheduler, error) {
	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	if err != nil {
		return nil, err
	}
	return cpuexec.NewScheduler(env, cfg)
}

func newScheduler(t *testing.T, cfg *config.Config) *cpuexec.Scheduler {
	t.Helper()
	s, err := newSchedulerErr(cfg)
	test.DemandSuccess(t, err)
	return s
}

type frameRecorder struct {
	frames []int
}

func (r *frameRecorder) NewFrame(frame int) error {
	r.frames = append(r.frames, frame)
	return nil
}
