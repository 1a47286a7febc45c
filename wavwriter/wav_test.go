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

package wavwriter_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"

	"github.com/jetsetilly/cpuexec/test"
	"github.com/jetsetilly/cpuexec/wavwriter"
)

func TestWrite(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "out.wav")

	aw, err := wavwriter.New(fn, 22050)
	test.DemandSuccess(t, err)

	samples := make([]int16, 1000)
	for i := range samples {
		if i%20 < 10 {
			samples[i] = 1000
		} else {
			samples[i] = -1000
		}
	}
	test.DemandSuccess(t, aw.SetAudio(samples))
	test.ExpectEquality(t, aw.Len(), 1000)
	test.DemandSuccess(t, aw.EndMixing())
	test.ExpectEquality(t, aw.Len(), 0)

	f, err := os.Open(fn)
	test.DemandSuccess(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	test.DemandSuccess(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, int(dec.SampleRate), 22050)
	test.ExpectEquality(t, int(dec.NumChans), 1)
	test.ExpectEquality(t, len(buf.Data), 1000)
	test.ExpectEquality(t, buf.Data[0], 1000)
	test.ExpectEquality(t, buf.Data[10], -1000)
}

func TestBadSampleRate(t *testing.T) {
	_, err := wavwriter.New("unused.wav", 0)
	test.ExpectFailure(t, err)
}
