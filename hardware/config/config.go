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

// Package config describes a machine to the scheduler. A Config is a static
// description and is validated before any scheduler is created from it.
package config

import (
	"strings"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/television"
)

// Sentinal error patterns returned by Validate().
const (
	ErrNoCPUs          = "config: %s: no processors"
	ErrTooManyCPUs     = "config: %s: too many processors (%d, max %d)"
	ErrZeroClock       = "config: %s: processor %s has a zero clock"
	ErrDuplicateTag    = "config: %s: duplicate processor tag (%s)"
	ErrNilCore         = "config: %s: processor %s has no core"
	ErrRefreshRate     = "config: %s: invalid screen (%s)"
	ErrInterleave      = "config: %s: interleave must be one or more (%d)"
	ErrInterruptConfig = "config: %s: processor %s: %s"
)

// CPU describes one processor.
type CPU struct {
	// unique name for the processor. used in log entries and snapshots
	Tag string

	Core    cpu.Core
	ClockHz uint64

	// passed to Core.Reset()
	ResetParam any

	// the processor begins suspended with the DISABLE reason
	Disabled bool

	// the number of times VBlankInterrupt is called every frame
	VBlankInterrupt cpu.InterruptFunc
	VBlankPerFrame  int

	// the number of times TimedInterrupt is called every second
	TimedInterrupt cpu.InterruptFunc
	TimedPerSecond float64
}

// Config is the description of a machine.
type Config struct {
	Name string
	CPUs []CPU

	Screen television.Spec

	// the number of timeslices per frame
	Interleave int

	// number of frames before the watchdog resets the machine. a value of
	// zero means the machine has no watchdog
	WatchdogFrames int
}

// Validate the configuration. The first problem found is returned.
func (cfg *Config) Validate() error {
	if len(cfg.CPUs) == 0 {
		return curated.Errorf(ErrNoCPUs, cfg.Name)
	}
	if len(cfg.CPUs) > cpu.MaxCPUs {
		return curated.Errorf(ErrTooManyCPUs, cfg.Name, len(cfg.CPUs), cpu.MaxCPUs)
	}
	if !cfg.Screen.Valid() {
		return curated.Errorf(ErrRefreshRate, cfg.Name, cfg.Screen)
	}
	if cfg.Interleave < 1 {
		return curated.Errorf(ErrInterleave, cfg.Name, cfg.Interleave)
	}

	tags := make(map[string]bool)
	for _, c := range cfg.CPUs {
		tag := strings.TrimSpace(c.Tag)
		if tag == "" || tags[tag] {
			return curated.Errorf(ErrDuplicateTag, cfg.Name, c.Tag)
		}
		tags[tag] = true

		if c.Core == nil {
			return curated.Errorf(ErrNilCore, cfg.Name, c.Tag)
		}
		if c.ClockHz == 0 {
			return curated.Errorf(ErrZeroClock, cfg.Name, c.Tag)
		}
		if c.VBlankInterrupt != nil && c.VBlankPerFrame < 1 {
			return curated.Errorf(ErrInterruptConfig, cfg.Name, c.Tag, "vblank interrupt with no count per frame")
		}
		if c.VBlankInterrupt == nil && c.VBlankPerFrame != 0 {
			return curated.Errorf(ErrInterruptConfig, cfg.Name, c.Tag, "vblank count with no interrupt")
		}
		if c.TimedInterrupt != nil && !attotime.UsableHz(c.TimedPerSecond) {
			return curated.Errorf(ErrInterruptConfig, cfg.Name, c.Tag, "timed interrupt with an unusable rate")
		}
		if c.TimedInterrupt == nil && c.TimedPerSecond != 0 {
			return curated.Errorf(ErrInterruptConfig, cfg.Name, c.Tag, "timed rate with no interrupt")
		}
	}

	return nil
}

// FindCPU returns the index of the processor with the tag.
func (cfg *Config) FindCPU(tag string) (int, bool) {
	for i, c := range cfg.CPUs {
		if c.Tag == tag {
			return i, true
		}
	}
	return -1, false
}
