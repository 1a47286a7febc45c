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

// Package wavwriter allows writing of audio data to disk as a WAV file. Note
// that audio data is buffered in memory in its entirety, and written to disk
// when EndMixing() is called. It is therefore probably only suitable for
// testing purposes.
package wavwriter

import (
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/logger"
)

const bitDepth = 16

// WavWriter implements the beeper.Mixer interface.
type WavWriter struct {
	filename   string
	sampleRate int
	buffer     []int
}

// New is the preferred method of initialisation for the WavWriter type.
func New(filename string, sampleRate int) (*WavWriter, error) {
	if sampleRate <= 0 {
		return nil, curated.Errorf("wavwriter: sample rate must be positive (%d)", sampleRate)
	}

	aw := &WavWriter{
		filename:   filename,
		sampleRate: sampleRate,
		buffer:     make([]int, 0),
	}

	return aw, nil
}

// SetAudio implements the beeper.Mixer interface.
func (aw *WavWriter) SetAudio(samples []int16) error {
	for _, s := range samples {
		aw.buffer = append(aw.buffer, int(s))
	}
	return nil
}

// Len returns the number of samples waiting to be written.
func (aw *WavWriter) Len() int {
	return len(aw.buffer)
}

// EndMixing writes the buffered audio to the file.
func (aw *WavWriter) EndMixing() (rerr error) {
	f, err := os.Create(aw.filename)
	if err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	defer func() {
		err := f.Close()
		if err != nil {
			rerr = curated.Errorf("wavwriter: %v", err)
		}
	}()

	// audio format 1 is uncompressed PCM
	enc := wav.NewEncoder(f, aw.sampleRate, bitDepth, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  aw.sampleRate,
		},
		Data:           aw.buffer,
		SourceBitDepth: bitDepth,
	}

	logger.Logf(logger.Allow, "wavwriter", "writing %d samples to %s", len(aw.buffer), aw.filename)

	if err := enc.Write(buf); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}
	if err := enc.Close(); err != nil {
		return curated.Errorf("wavwriter: %v", err)
	}

	aw.buffer = aw.buffer[:0]

	return nil
}
