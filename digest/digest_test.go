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

package digest_test

import (
	"strings"
	"testing"

	"github.com/jetsetilly/cpuexec/digest"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/peripherals/beeper"
	"github.com/jetsetilly/cpuexec/machines"
	"github.com/jetsetilly/cpuexec/test"
)

func create(t *testing.T) *hardware.Machine {
	t.Helper()
	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	test.DemandSuccess(t, err)
	m, err := machines.Create(env, "twocpu")
	test.DemandSuccess(t, err)
	return m
}

var _ digest.Digest = (*digest.Machine)(nil)
var _ digest.Digest = (*digest.Audio)(nil)
var _ beeper.Mixer = (*digest.Audio)(nil)

func TestMachine(t *testing.T) {
	zero := strings.Repeat("0", 40)

	a := create(t)
	dig := digest.NewMachine(a)
	test.ExpectEquality(t, dig.Hash(), zero)

	test.DemandSuccess(t, a.RunForFrameCount(10, nil))
	h := dig.Hash()
	test.ExpectInequality(t, h, zero)

	// the same number of frames on a second machine gives the same hash
	b := create(t)
	digB := digest.NewMachine(b)
	test.DemandSuccess(t, b.RunForFrameCount(10, nil))
	test.ExpectEquality(t, digB.Hash(), h)

	test.DemandSuccess(t, b.RunForFrameCount(1, nil))
	test.ExpectInequality(t, digB.Hash(), h)

	dig.ResetDigest()
	test.ExpectEquality(t, dig.Hash(), zero)
}

func TestAudio(t *testing.T) {
	samples := make([]int16, 2000)
	for i := range samples {
		samples[i] = int16(i * 7)
	}

	a := digest.NewAudio()
	test.DemandSuccess(t, a.SetAudio(samples))
	test.DemandSuccess(t, a.EndMixing())

	// the same samples delivered in different sized pieces
	b := digest.NewAudio()
	test.DemandSuccess(t, b.SetAudio(samples[:123]))
	test.DemandSuccess(t, b.SetAudio(samples[123:]))
	test.DemandSuccess(t, b.EndMixing())
	test.ExpectEquality(t, a.Hash(), b.Hash())

	samples[1999] = 0
	c := digest.NewAudio()
	test.DemandSuccess(t, c.SetAudio(samples))
	test.DemandSuccess(t, c.EndMixing())
	test.ExpectInequality(t, a.Hash(), c.Hash())
}

func TestState(t *testing.T) {
	a := create(t)
	b := create(t)
	test.DemandSuccess(t, a.RunForFrameCount(5, nil))
	test.DemandSuccess(t, b.RunForFrameCount(5, nil))

	sa, err := a.Snapshot()
	test.DemandSuccess(t, err)
	sb, err := b.Snapshot()
	test.DemandSuccess(t, err)

	ha, err := digest.State(sa)
	test.DemandSuccess(t, err)
	hb, err := digest.State(sb)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, ha, hb)
	test.ExpectEquality(t, len(ha), 40)

	test.DemandSuccess(t, b.RunForFrameCount(1, nil))
	sb, err = b.Snapshot()
	test.DemandSuccess(t, err)
	hb, err = digest.State(sb)
	test.DemandSuccess(t, err)
	test.ExpectInequality(t, ha, hb)
}
