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

package performance_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware/television"
	"github.com/jetsetilly/cpuexec/machines"
	"github.com/jetsetilly/cpuexec/performance"
	"github.com/jetsetilly/cpuexec/test"
)

func TestCalcFPS(t *testing.T) {
	fps, accuracy := performance.CalcFPS(television.SpecPAL, 100, 2.0)
	test.ExpectEquality(t, fps, 50.0)
	test.ExpectEquality(t, accuracy, 100.0)

	fps, accuracy = performance.CalcFPS(television.SpecNTSC, 30, 1.0)
	test.ExpectEquality(t, fps, 30.0)
	test.ExpectEquality(t, accuracy, 50.0)
}

func TestParseProfileString(t *testing.T) {
	p, err := performance.ParseProfileString("cpu, trace")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileCPU|performance.ProfileTrace)
	test.ExpectEquality(t, p.String(), "CPU,TRACE")

	p, err = performance.ParseProfileString("ALL")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p, performance.ProfileAll)

	p, err = performance.ParseProfileString("none")
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, p.String(), "NONE")

	_, err = performance.ParseProfileString("cpu,gpu")
	test.ExpectFailure(t, err)
}

func TestRunProfiler(t *testing.T) {
	var ran bool
	err := performance.RunProfiler(performance.ProfileNone, "unused", func() error {
		ran = true
		return nil
	})
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ran)
}

func TestCheck(t *testing.T) {
	if testing.Short() {
		t.Skip("performance check takes more than two seconds")
	}

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	m, err := machines.Create(env, "twocpu")
	test.DemandSuccess(t, err)

	var out strings.Builder
	test.DemandSuccess(t, performance.Check(&out, performance.ProfileNone, m, false, "200ms"))
	test.ExpectSuccess(t, strings.Contains(out.String(), "fps"))
	test.ExpectSuccess(t, m.Sched.FrameNumber() > 0)

	test.ExpectFailure(t, performance.Check(&out, performance.ProfileNone, m, true, "soon"))
}
