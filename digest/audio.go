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

package digest

import (
	"crypto/sha1"
	"fmt"
)

// the length of the buffer isn't really important. that said, it needs to
// be at least sha1.Size bytes in length
const audioBufferLength = 1024 + sha1.Size

// to allow digests of audio streams longer than audioBufferLength, the
// previous digest value is stuffed into the first part of the buffer and is
// included when the next digest value is created
const audioBufferStart = sha1.Size

// Audio is an implementation of the beeper.Mixer interface.
type Audio struct {
	digest   [sha1.Size]byte
	buffer   []uint8
	bufferCt int
}

// NewAudio is the preferred method of initialisation for the Audio type.
func NewAudio() *Audio {
	dig := &Audio{}
	dig.buffer = make([]uint8, audioBufferLength)
	dig.bufferCt = audioBufferStart
	return dig
}

// Hash implements the digest.Digest interface. Audio that has not been
// flushed is not part of the hash.
func (dig *Audio) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements the digest.Digest interface.
func (dig *Audio) ResetDigest() {
	for i := range dig.digest {
		dig.digest[i] = 0
	}
	dig.bufferCt = audioBufferStart
}

// SetAudio implements the beeper.Mixer interface.
func (dig *Audio) SetAudio(samples []int16) error {
	for _, s := range samples {
		dig.buffer[dig.bufferCt] = uint8(s)
		dig.buffer[dig.bufferCt+1] = uint8(s >> 8)
		dig.bufferCt += 2

		if dig.bufferCt >= audioBufferLength {
			dig.flush()
		}
	}
	return nil
}

// EndMixing adds any remaining audio to the digest.
func (dig *Audio) EndMixing() error {
	if dig.bufferCt > audioBufferStart {
		dig.flush()
	}
	return nil
}

func (dig *Audio) flush() {
	dig.digest = sha1.Sum(dig.buffer[:dig.bufferCt])
	copy(dig.buffer, dig.digest[:])
	dig.bufferCt = audioBufferStart
}
