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

package performance

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"strings"

	"github.com/jetsetilly/cpuexec/curated"
)

// Profile specifies which profiles are to be created by RunProfiler().
type Profile int

// List of valid Profile values. Values can be combined.
const (
	ProfileNone  Profile = 0
	ProfileCPU   Profile = 0b0001
	ProfileMem   Profile = 0b0010
	ProfileTrace Profile = 0b0100
	ProfileAll   Profile = ProfileCPU | ProfileMem | ProfileTrace
)

// ParseProfileString converts a string of comma separated profile names to a
// Profile value. Valid names are NONE, CPU, MEM, TRACE and ALL.
func ParseProfileString(profile string) (Profile, error) {
	p := ProfileNone
	for _, s := range strings.Split(profile, ",") {
		switch strings.ToUpper(strings.TrimSpace(s)) {
		case "", "NONE":
		case "CPU":
			p |= ProfileCPU
		case "MEM":
			p |= ProfileMem
		case "TRACE":
			p |= ProfileTrace
		case "ALL":
			p |= ProfileAll
		default:
			return ProfileNone, curated.Errorf("performance: unknown profile type (%s)", s)
		}
	}
	return p, nil
}

func (p Profile) String() string {
	if p == ProfileNone {
		return "NONE"
	}
	var s []string
	if p&ProfileCPU == ProfileCPU {
		s = append(s, "CPU")
	}
	if p&ProfileMem == ProfileMem {
		s = append(s, "MEM")
	}
	if p&ProfileTrace == ProfileTrace {
		s = append(s, "TRACE")
	}
	return strings.Join(s, ",")
}

// RunProfiler runs the supplied function "through" the requested Profile
// types. Profile files are named with the prefix.
func RunProfiler(profile Profile, filenameHeader string, run func() error) (rerr error) {
	if profile&ProfileCPU == ProfileCPU {
		f, err := os.Create(fmt.Sprintf("%s_cpu.profile", filenameHeader))
		if err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				rerr = curated.Errorf("performance: %v", err)
			}
		}()

		if err := pprof.StartCPUProfile(f); err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if profile&ProfileTrace == ProfileTrace {
		f, err := os.Create(fmt.Sprintf("%s_trace.profile", filenameHeader))
		if err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				rerr = curated.Errorf("performance: %v", err)
			}
		}()

		if err := trace.Start(f); err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer trace.Stop()
	}

	if err := run(); err != nil {
		return err
	}

	if profile&ProfileMem == ProfileMem {
		f, err := os.Create(fmt.Sprintf("%s_mem.profile", filenameHeader))
		if err != nil {
			return curated.Errorf("performance: %v", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				rerr = curated.Errorf("performance: %v", err)
			}
		}()

		runtime.GC()
		if err := pprof.WriteHeapProfile(f); err != nil {
			return curated.Errorf("performance: %v", err)
		}
	}

	return nil
}
