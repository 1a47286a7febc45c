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
	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/config"
	"github.com/jetsetilly/cpuexec/hardware/cores/scripted"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/cpuexec"
	"github.com/jetsetilly/cpuexec/hardware/television"
)

// Processor tags used by the quad machine.
const (
	TagMaster = "master"
	TagSlave1 = "slave1"
	TagSlave2 = "slave2"
	TagSlave3 = "slave3"
)

// the trigger used by the master processor to wake slave1
const triggerWake = 2

// createQuad builds a machine of four scripted processors. The scripts only
// use state that is part of a snapshot (the step count of the core) so the
// machine can be rewound.
func createQuad(env *environment.Environment) (*hardware.Machine, error) {
	var sched *cpuexec.Scheduler
	var master, slave1, slave2, slave3 *scripted.Core

	// the master wakes slave1 every 500 steps and boosts the interleave at
	// the start of every frame
	master = scripted.NewCore(scripted.Step{Cycles: 12, Do: func() {
		if master.Steps%500 == 0 {
			sched.Trigger(triggerWake)
		}
	}})
	master.SetHandler(
		scripted.Step{Cycles: 20, Do: func() {
			sched.BoostInterleave(attotime.FromMicroseconds(10), attotime.FromMicroseconds(200))
		}},
		scripted.Step{Cycles: 20},
	)

	// slave1 runs for 200 steps and then waits for the master
	slave1 = scripted.NewCore(scripted.Step{Cycles: 6, Do: func() {
		if slave1.Steps%200 == 0 {
			sched.YieldUntilTrigger(triggerWake)
		}
	}})

	// slave2 waits for its timed interrupt every 100 steps
	slave2 = scripted.NewCore(scripted.Step{Cycles: 4, Do: func() {
		if slave2.Steps%100 == 0 {
			sched.SpinUntilInt()
		}
	}})
	slave2.SetHandler(scripted.Step{Cycles: 10})

	// slave3 sleeps for 100us every 300 steps and eats some of its own burst
	// every 1000 steps
	slave3 = scripted.NewCore(scripted.Step{Cycles: 8, Do: func() {
		switch {
		case slave3.Steps%1000 == 0:
			sched.EatCycles(16)
		case slave3.Steps%300 == 0:
			sched.SpinUntilTime(attotime.FromMicroseconds(100))
		}
	}})

	// the master is interrupted every time slave3 sees a vblank
	slave3.SetHandler(scripted.Step{Cycles: 30, Do: func() {
		sched.SetIRQLine(0, 1, cpu.PulseLine)
	}})

	cfg := &config.Config{
		Name:       "quad",
		Screen:     television.SpecPAL,
		Interleave: 20,
		CPUs: []config.CPU{
			{
				Tag:             TagMaster,
				Core:            master,
				ClockHz:         4000000,
				VBlankInterrupt: cpu.HoldIRQ(0),
				VBlankPerFrame:  1,
			},
			{
				Tag:     TagSlave1,
				Core:    slave1,
				ClockHz: 2000000,
			},
			{
				Tag:            TagSlave2,
				Core:           slave2,
				ClockHz:        1000000,
				TimedInterrupt: cpu.HoldIRQ(0),
				TimedPerSecond: 1000,
			},
			{
				Tag:             TagSlave3,
				Core:            slave3,
				ClockHz:         3579545,
				VBlankInterrupt: cpu.PulseIRQ(1),
				VBlankPerFrame:  4,
			},
		},
	}

	m, err := hardware.NewMachine(env, cfg)
	if err != nil {
		return nil, err
	}
	sched = m.Sched

	return m, nil
}
