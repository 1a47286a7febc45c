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
	"os/signal"

	"github.com/jetsetilly/cpuexec/logger"
	"github.com/jetsetilly/cpuexec/modalflag"
)

type stateReq = string

const (
	// main thread should end as soon as possible.
	//
	// takes optional int argument, indicating the status code.
	reqQuit stateReq = "QUIT"

	// interrupt signals are forwarded to the launched mode rather than
	// ending the program. used by modes that need to end cleanly, for
	// example to write a wav file.
	//
	// takes no arguments.
	reqForwardIntSig stateReq = "FORWARDINTSIG"
)

type stateRequest struct {
	req  stateReq
	args any
}

// communication between the main() function and the launch() function.
type mainSync struct {
	state chan stateRequest

	// interrupt signals are sent on this channel after a reqForwardIntSig
	// request
	interrupt chan bool
}

func main() {
	sync := &mainSync{
		state:     make(chan stateRequest),
		interrupt: make(chan bool, 1),
	}

	// the value to use with os.Exit(). can be changed with reqQuit
	// stateRequest
	exitVal := 0

	intChan := make(chan os.Signal, 1)
	signal.Notify(intChan, os.Interrupt)

	go launch(sync, os.Args[1:])

	forward := false
	done := false
	for !done {
		select {
		case <-intChan:
			if forward {
				select {
				case sync.interrupt <- true:
				default:
				}
			} else {
				fmt.Println("\r")
				done = true
			}

		case state := <-sync.state:
			switch state.req {
			case reqQuit:
				done = true
				if state.args != nil {
					if v, ok := state.args.(int); ok {
						exitVal = v
					} else {
						panic(fmt.Sprintf("cannot convert %s arguments into int", reqQuit))
					}
				}

			case reqForwardIntSig:
				forward = true
			}
		}
	}

	os.Exit(exitVal)
}

// launch is called from main() as a goroutine. uses mainSync instance to
// indicate when to quit.
func launch(sync *mainSync, args []string) {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("RUN", "PERFORMANCE", "DIGEST", "LIST")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		sync.state <- stateRequest{req: reqQuit}
		return

	case modalflag.ParseError:
		fmt.Printf("* error: %v\n", err)
		sync.state <- stateRequest{req: reqQuit, args: 10}
		return
	}

	switch md.Mode() {
	case "RUN":
		err = run(md, sync)

	case "PERFORMANCE":
		err = perform(md)

	case "DIGEST":
		err = digestMode(md)

	case "LIST":
		err = list(md)
	}

	if err != nil {
		logger.SetEcho(nil)
		fmt.Printf("* error in %s mode: %s\n", md.String(), err)
		sync.state <- stateRequest{req: reqQuit, args: 20}
		return
	}

	sync.state <- stateRequest{req: reqQuit}
}
