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

// Package performance measures how quickly a machine is emulated.
//
// Check() runs a machine for a fixed duration and reports the number of
// emulated frames per second, optionally through the profiler.
//
// RunProfiler() runs any function with the requested profiles (cpu, memory
// and trace) written to disk. It does not limit how long the function runs
// for.
//
// CalcFPS() calculates frames-per-second in aggregate along with an accuracy
// value compared to the refresh rate of the screen. Probably not suitable for
// "live" FPS monitoring.
package performance
