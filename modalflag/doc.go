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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// Arguments are set with NewArgs() and then parsed with Parse(). Sub-modes
// are declared with AddSubModes() before the call to Parse(). The first
// sub-mode is the default and is selected when the first argument doesn't
// match any of the others:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("RUN", "PERFORMANCE", "DIGEST", "LIST")
//
//	p, err := md.Parse()
//	switch p {
//	case modalflag.ParseHelp:
//		os.Exit(0)
//	case modalflag.ParseError:
//		return err
//	}
//
//	switch md.Mode() {
//	case "RUN":
//		md.NewMode()
//		frames := md.AddInt("frames", 0, "number of frames to run")
//		...
//	}
//
// After NewMode() the flags for the selected mode can be added and Parse()
// called again. Modes can be nested as deep as required. The Path() function
// returns the series of modes selected so far, separated by a forward slash.
//
// Non-flag arguments that remain after parsing are retrieved with
// RemainingArgs() and GetArg().
//
// Help is printed to the Output writer when the -help flag is present. The
// help lists both the flags and the available sub-modes.
package modalflag
