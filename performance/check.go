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

package performance

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/govern"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/television/limiter"
)

// sentinal error returned by Run() loop.
var timedOut = errors.New("performance timed out")

// the time given to the emulation to settle before measurement begins
const leadtime = 2 * time.Second

// Check the performance of the machine.
//
// Emulation will run for the specified duration and will create a cpu,
// memory profile, a trace (or a combination of those) as defined by the
// Profile argument. If uncapped is false the machine is limited to the
// refresh rate of its screen.
func Check(output io.Writer, profile Profile, m *hardware.Machine, uncapped bool, duration string) error {
	dur, err := time.ParseDuration(duration)
	if err != nil {
		return curated.Errorf("performance: %v", err)
	}

	spec := m.Sched.Screen()

	lmtr := limiter.NewLimiter(spec.RefreshRate)
	defer lmtr.Stop()
	lmtr.Active.Store(!uncapped)

	startFrame := m.Sched.FrameNumber()

	runner := func() error {
		// signals false when the leadtime has elapsed and true when the
		// measurement period has finished
		timerChan := make(chan bool, 2)

		time.AfterFunc(leadtime, func() {
			timerChan <- false
			time.AfterFunc(dur, func() {
				timerChan <- true
			})
		})

		return m.Run(func() (govern.State, error) {
			lmtr.CheckFrame()
			lmtr.MeasureActual()

			select {
			case v := <-timerChan:
				if v {
					return govern.Ending, timedOut
				}
				startFrame = m.Sched.FrameNumber()
			default:
			}
			return govern.Running, nil
		})
	}

	err = RunProfiler(profile, "performance", runner)
	if err != nil && !errors.Is(err, timedOut) {
		return curated.Errorf("performance: %v", err)
	}

	numFrames := m.Sched.FrameNumber() - startFrame
	fps, accuracy := CalcFPS(spec, numFrames, dur.Seconds())
	fmt.Fprintf(output, "%.2f fps (%d frames in %.2f seconds) %.1f%%\n", fps, numFrames, dur.Seconds(), accuracy)

	return nil
}
