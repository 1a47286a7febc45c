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

// Package television describes the timing of the screen attached to a
// machine. The scheduler uses the refresh rate to decide the length of a
// frame and the moment of the vertical blank.
//
// The position of the beam is never stored. It is projected from the time
// elapsed since the start of the current frame, which is the moment of the
// previous vertical blank. Scanline zero is the first scanline of the frame
// and the visible area lies between ScanlineTop and ScanlineBottom. Any
// scanline outside of that area is in the vertical blank.
//
// The limiter sub-package is used by the frontend to run the emulation at
// the speed of the real machine.
package television
