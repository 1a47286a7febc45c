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

package limiter

import (
	"sync/atomic"
	"time"
)

// Limiter paces the emulation so that frames are produced at the speed of
// the real machine.
type Limiter struct {
	// whether to wait for the pulse each frame
	Active atomic.Bool

	// the refresh rate of the emulated screen. this is a copy of the value
	// in the machine configuration, stored atomically so that it can be
	// read by the frontend without a critical section
	RefreshRate atomic.Value // float64

	// the ideal number of frames per second
	IdealFPS atomic.Value // float64

	// the value sent to SetLimit()
	requestedFPS atomic.Value // float64

	// pulse that performs the limiting. the duration of the ticker is set
	// when SetLimit() is called
	pulse *time.Ticker

	// waiting on the ticker every frame is expensive and inaccurate at high
	// frame rates. the limiter instead waits every pulseCtLimit frames
	pulseCt      int
	pulseCtLimit int

	// pulse that performs the FPS measurement
	measuringPulse *time.Ticker

	measureTime time.Time
	measureCt   int

	// the measured number of frames per second
	Measured atomic.Value // float64

	// nudge the limiter so that it doesn't wait for the specified number of
	// frames. used after loading a snapshot or rewinding
	Nudge atomic.Int32
}

// MatchRefreshRate can be used with SetLimit() to indicate that the limit
// should be the refresh rate of the screen.
const MatchRefreshRate float64 = -1.0

// NewLimiter is the preferred method of initialisation for the Limiter type.
// The limit is set to match the refresh rate.
func NewLimiter(refreshRate float64) *Limiter {
	lmtr := &Limiter{}
	lmtr.Active.Store(true)
	lmtr.Measured.Store(0.0)
	lmtr.pulse = time.NewTicker(time.Millisecond * 16)
	lmtr.measuringPulse = time.NewTicker(time.Millisecond * 500)
	lmtr.RefreshRate.Store(refreshRate)
	lmtr.SetLimit(MatchRefreshRate)
	return lmtr
}

// SetRefreshRate changes the refresh rate. The limit is changed too if it
// was set to MatchRefreshRate.
func (lmtr *Limiter) SetRefreshRate(refreshRate float64) {
	lmtr.RefreshRate.Store(refreshRate)
	if lmtr.requestedFPS.Load().(float64) <= 0.0 {
		lmtr.SetLimit(MatchRefreshRate)
	}
}

// SetLimit sets the number of frames per second. A value of zero or less
// (including MatchRefreshRate) means the limit is the refresh rate.
func (lmtr *Limiter) SetLimit(fps float64) {
	lmtr.requestedFPS.Store(fps)

	if fps <= 0.0 {
		fps = lmtr.RefreshRate.Load().(float64)
	}

	// refresh rate hasn't been set
	if fps <= 0.0 {
		return
	}

	lmtr.IdealFPS.Store(fps)

	lmtr.pulseCt = 0
	lmtr.pulseCtLimit = 1 + int(fps/20)
	lmtr.pulse.Reset(time.Duration(float64(time.Second) / fps * float64(lmtr.pulseCtLimit)))

	lmtr.measureCt = 0
	lmtr.measureTime = time.Now()
}

// CheckFrame should be called every frame. It blocks until it is time for the
// next frame.
func (lmtr *Limiter) CheckFrame() {
	lmtr.measureCt++

	if nudge := lmtr.Nudge.Load(); nudge > 0 {
		lmtr.Nudge.Store(nudge - 1)
		return
	}

	if lmtr.Active.Load() {
		lmtr.pulseCt++
		if lmtr.pulseCt >= lmtr.pulseCtLimit {
			lmtr.pulseCt = 0
			<-lmtr.pulse.C
		}
	}
}

// MeasureActual measures the frame rate on every tick of the measuring pulse.
func (lmtr *Limiter) MeasureActual() {
	select {
	case <-lmtr.measuringPulse.C:
		t := time.Now()
		m := float64(lmtr.measureCt) / t.Sub(lmtr.measureTime).Seconds()
		lmtr.Measured.Store(m)
		lmtr.measureTime = t
		lmtr.measureCt = 0
	default:
	}
}

// Stop releases the tickers used by the limiter.
func (lmtr *Limiter) Stop() {
	lmtr.pulse.Stop()
	lmtr.measuringPulse.Stop()
}
