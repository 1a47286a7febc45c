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

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/bradleyjkemp/memviz"
	"golang.org/x/term"

	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/digest"
	"github.com/jetsetilly/cpuexec/environment"
	"github.com/jetsetilly/cpuexec/govern"
	"github.com/jetsetilly/cpuexec/hardware"
	"github.com/jetsetilly/cpuexec/hardware/peripherals/beeper"
	"github.com/jetsetilly/cpuexec/hardware/television/limiter"
	"github.com/jetsetilly/cpuexec/logger"
	"github.com/jetsetilly/cpuexec/machines"
	"github.com/jetsetilly/cpuexec/modalflag"
	"github.com/jetsetilly/cpuexec/performance"
	"github.com/jetsetilly/cpuexec/prefs"
	"github.com/jetsetilly/cpuexec/rewind"
	"github.com/jetsetilly/cpuexec/statsview"
	"github.com/jetsetilly/cpuexec/wavwriter"
)

// createMachine with the preferences string applied to the emulation
// preferences. The string is of the form "key::value; key::value".
func createMachine(name string, prefsString string) (*hardware.Machine, error) {
	prefs.PushCommandLineStack(prefsString)
	defer func() {
		if unused := prefs.PopCommandLineStack(); unused != "" {
			logger.Logf(logger.Allow, "cpuexec", "unused preferences: %s", unused)
		}
	}()

	env, err := environment.NewEnvironment(environment.MainEmulation, nil)
	if err != nil {
		return nil, err
	}

	return machines.Create(env, name)
}

func echoLog(md *modalflag.Modes, log bool) {
	if log {
		logger.SetEcho(md.Output)
	} else {
		logger.SetEcho(nil)
	}
}

func summary(md *modalflag.Modes, m *hardware.Machine) {
	fmt.Fprintln(md.Output, m)
	fmt.Fprintf(md.Output, "%d frames (%s emulated)\n", m.Sched.FrameNumber(), m.Sched.Now())
	for i := 0; i < m.Sched.NumCPUs(); i++ {
		fmt.Fprintf(md.Output, "  %s: %d cycles\n", m.Sched.Slot(i).Tag(), m.Sched.TotalCycles(i))
	}
}

func run(md *modalflag.Modes, sync *mainSync) error {
	md.NewMode()

	name := md.AddString("machine", "twocpu", "machine to run (see LIST mode)")
	frames := md.AddInt("frames", 0, "number of frames to run. zero to run until interrupted")
	fpsCap := md.AddBool("fpscap", true, "cap fps to the screen refresh rate")
	wav := md.AddString("wav", "", "record audio to wav file")
	log := md.AddBool("log", false, "echo log to stdout")
	prefsString := md.AddString("prefs", "", "preferences in the form key::value; key::value")
	viz := md.AddString("memviz", "", "write graph of the final machine state to file (graphviz format)")
	stats := md.AddBool("statsview", false, "launch statsview server (if available)")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return curated.Errorf("too many arguments for %s mode", md)
	}

	echoLog(md, *log)

	if *stats {
		if !statsview.Available() {
			return curated.Errorf("statsview is not available in this build")
		}
		statsview.Launch(md.Output)
	}

	m, err := createMachine(*name, *prefsString)
	if err != nil {
		return err
	}

	if *wav != "" {
		b, ok := m.Device(machines.LabelBeeper).(*beeper.Beeper)
		if !ok {
			return curated.Errorf("machine %s has no audio", *name)
		}
		aw, err := wavwriter.New(*wav, b.SampleRate)
		if err != nil {
			return err
		}
		b.AddMixer(aw)
		defer func() {
			if err := aw.EndMixing(); err != nil {
				logger.Log(logger.Allow, "cpuexec", err)
			}
		}()
	}

	lmtr := limiter.NewLimiter(m.Sched.Screen().RefreshRate)
	defer lmtr.Stop()
	lmtr.Active.Store(*fpsCap)

	// a status line is shown only if the output is a terminal
	status := false
	if f, ok := md.Output.(*os.File); ok {
		status = term.IsTerminal(int(f.Fd()))
	}
	statusTime := time.Now()

	sync.state <- stateRequest{req: reqForwardIntSig}

	err = m.Run(func() (govern.State, error) {
		select {
		case <-sync.interrupt:
			return govern.Ending, nil
		default:
		}

		if *frames > 0 && m.Sched.FrameNumber() >= *frames {
			return govern.Ending, nil
		}

		lmtr.CheckFrame()
		lmtr.MeasureActual()

		if status && time.Since(statusTime) > time.Second {
			statusTime = time.Now()
			fmt.Fprintf(md.Output, "\rframe %d: %.1f fps  ", m.Sched.FrameNumber(), lmtr.Measured.Load().(float64))
		}

		return govern.Running, nil
	})
	if status {
		fmt.Fprint(md.Output, "\r")
	}
	if err != nil {
		return err
	}

	summary(md, m)

	if *viz != "" {
		s, err := m.Snapshot()
		if err != nil {
			return err
		}
		f, err := os.Create(*viz)
		if err != nil {
			return curated.Errorf("memviz: %v", err)
		}
		defer f.Close()
		memviz.Map(f, s)
	}

	return nil
}

func perform(md *modalflag.Modes) error {
	md.NewMode()

	name := md.AddString("machine", "twocpu", "machine to run (see LIST mode)")
	fpsCap := md.AddBool("fpscap", true, "cap fps to the screen refresh rate")
	duration := md.AddString("duration", "5s", "run duration (note: there is a 2s overhead)")
	profile := md.AddString("profile", "NONE", "run performance check with profiling: command separated CPU, MEM, TRACE or ALL")
	log := md.AddBool("log", false, "echo log to stdout")
	prefsString := md.AddString("prefs", "", "preferences in the form key::value; key::value")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return curated.Errorf("too many arguments for %s mode", md)
	}

	echoLog(md, *log)

	prf, err := performance.ParseProfileString(*profile)
	if err != nil {
		return err
	}

	m, err := createMachine(*name, *prefsString)
	if err != nil {
		return err
	}

	return performance.Check(md.Output, prf, m, !*fpsCap, *duration)
}

func digestMode(md *modalflag.Modes) error {
	md.NewMode()

	name := md.AddString("machine", "twocpu", "machine to run (see LIST mode)")
	frames := md.AddInt("frames", 600, "number of frames to run")
	verify := md.AddBool("verify", false, "rewind to the half-way frame and check the machine reaches the same state")
	log := md.AddBool("log", false, "echo log to stdout")
	prefsString := md.AddString("prefs", "", "preferences in the form key::value; key::value")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) > 0 {
		return curated.Errorf("too many arguments for %s mode", md)
	}

	if *frames <= 0 {
		return curated.Errorf("number of frames must be positive")
	}

	echoLog(md, *log)

	m, err := createMachine(*name, *prefsString)
	if err != nil {
		return err
	}

	dig := digest.NewMachine(m)

	var audio *digest.Audio
	if b, ok := m.Device(machines.LabelBeeper).(*beeper.Beeper); ok {
		audio = digest.NewAudio()
		b.AddMixer(audio)
	}

	var rwnd *rewind.Rewind
	if *verify {
		rwnd, err = rewind.NewRewind(m.Env(), m)
		if err != nil {
			return err
		}
		if err := rwnd.Prefs.MaxEntries.Set(*frames + 1); err != nil {
			return err
		}
		if err := rwnd.Reset(); err != nil {
			return err
		}
	}

	if err := m.RunForFrameCount(*frames, nil); err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "machine: %s\n", dig.Hash())
	if audio != nil {
		if err := audio.EndMixing(); err != nil {
			return err
		}
		fmt.Fprintf(md.Output, "audio: %s\n", audio.Hash())
	}

	if rwnd != nil {
		s, err := m.Snapshot()
		if err != nil {
			return err
		}
		want, err := digest.State(s)
		if err != nil {
			return err
		}

		if err := rwnd.GotoFrame(*frames / 2); err != nil {
			return err
		}
		if err := m.RunForFrameCount(*frames-m.Sched.FrameNumber(), nil); err != nil {
			return err
		}

		s, err = m.Snapshot()
		if err != nil {
			return err
		}
		got, err := digest.State(s)
		if err != nil {
			return err
		}

		if got != want {
			return curated.Errorf("verify: state after rewind (%s) differs from original (%s)", got, want)
		}
		fmt.Fprintf(md.Output, "verified: %s\n", got)
	}

	return nil
}

func list(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	for _, n := range machines.Names() {
		fmt.Fprintf(md.Output, "%-10s %s\n", n, machines.Description(n))
	}

	return nil
}
