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

// Package clocks converts between simulated time and CPU cycles for a clock
// of a given frequency. It also defines the frequencies of some well known
// crystals that are useful when describing a machine.
//
// Conversions are always integer based. The scheduler derives the number of
// cycles a CPU may run from the difference between two absolute times so
// rounding errors are never accumulated.
package clocks

import (
	"fmt"

	"github.com/jetsetilly/cpuexec/attotime"
)

// Colour clocks of the television standards in MHz. Values taken from:
// http://www.taswegian.com/WoodgrainWizard/tiki-index.php?page=Clock-Speeds
const (
	NTSC  = 1.193182
	PAL   = 1.182298
	PAL_M = 1.191870
	SECAM = 1.187500
)

// Common crystal frequencies in Hz.
const (
	XTAL_3_579545MHz = 3_579_545
	XTAL_4MHz        = 4_000_000
	XTAL_6MHz        = 6_000_000
	XTAL_7_15909MHz  = 7_159_090
	XTAL_8MHz        = 8_000_000
	XTAL_12MHz       = 12_000_000
	XTAL_18_432MHz   = 18_432_000
)

// MHz converts a frequency in MHz to Hz.
func MHz(mhz float64) uint64 {
	return uint64(mhz*1_000_000 + 0.5)
}

// Rate is the effective frequency of a clock. The zero value is not usable,
// use NewRate().
type Rate struct {
	hz    uint64
	scale float64

	// derived from hz and scale
	cps           int64
	attosPerCycle int64
	period        attotime.Time
}

// NewRate is the preferred method of initialisation for the Rate type. The
// scale value multiplies the frequency and should normally be 1.0.
func NewRate(hz uint64, scale float64) Rate {
	r := Rate{hz: hz, scale: scale}
	r.derive()
	return r
}

func (r *Rate) derive() {
	cps := int64(float64(r.hz) * r.scale)
	if cps < 1 {
		cps = 1
	}
	r.cps = cps
	r.attosPerCycle = attotime.PerSecond / cps
	r.period = attotime.Time{Attoseconds: r.attosPerCycle}
	if cps == 1 {
		r.period = attotime.Time{Seconds: 1}
	}
}

func (r Rate) String() string {
	if r.scale != 1.0 {
		return fmt.Sprintf("%dHz x%.3f", r.hz, r.scale)
	}
	return fmt.Sprintf("%dHz", r.hz)
}

// Hz returns the nominal frequency of the clock.
func (r Rate) Hz() uint64 {
	return r.hz
}

// Scale returns the scaling factor applied to the nominal frequency.
func (r Rate) Scale() float64 {
	return r.scale
}

// CyclesPerSecond is the effective frequency. Always at least one.
func (r Rate) CyclesPerSecond() int64 {
	return r.cps
}

// Period is the duration of one cycle.
func (r Rate) Period() attotime.Time {
	return r.period
}

// WithHz returns a copy of the rate with a new nominal frequency.
func (r Rate) WithHz(hz uint64) Rate {
	return NewRate(hz, r.scale)
}

// WithScale returns a copy of the rate with a new scaling factor.
func (r Rate) WithScale(scale float64) Rate {
	return NewRate(r.hz, scale)
}

// CyclesToTime returns the duration of n cycles. A negative number of cycles
// returns zero.
func (r Rate) CyclesToTime(n int64) attotime.Time {
	if n <= 0 {
		return attotime.Zero
	}
	if r.cps == 1 {
		return attotime.Time{Seconds: n}
	}
	return attotime.Time{
		Seconds:     n / r.cps,
		Attoseconds: (n % r.cps) * r.attosPerCycle,
	}
}

// TimeToCycles returns the number of whole cycles that fit in the duration.
// The result is rounded down. A negative duration returns zero.
func (r Rate) TimeToCycles(d attotime.Time) int64 {
	if d.IsNegative() {
		return 0
	}
	if d.IsNever() {
		return 0
	}
	if r.cps == 1 {
		return d.Seconds
	}

	// the period of a cycle is rounded down so the end of a second can
	// appear to hold one more cycle than it does
	sub := d.Attoseconds / r.attosPerCycle
	if sub >= r.cps {
		sub = r.cps - 1
	}
	return d.Seconds*r.cps + sub
}
