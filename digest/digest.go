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

// Package digest contains implementations of the frame listener and mixer
// interfaces that produce a cryptographic hash of the emulation. The hash can
// be used to compare the output of subsequent emulation executions. If a new
// hash differs from a previously recorded value then something has changed.
//
// Note that the use of SHA-1 is fine for this application because this is
// not a cryptographic task.
package digest

// Digest implementations return a cryptographic hash in response to a Hash()
// request. Generation of the hash is achieved via another interface.
type Digest interface {
	Hash() string
	ResetDigest()
}
