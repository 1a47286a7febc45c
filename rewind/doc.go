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

// Package rewind keeps a history of machine snapshots. A snapshot is taken
// at the end of every frame (or every Nth frame, depending on the
// preferences) and the machine can be returned to any frame in the history
// with GotoFrame().
//
// Because the emulation is deterministic a frame that falls between two
// snapshots is recreated by plumbing in the earlier snapshot and running the
// machine forward.
package rewind
