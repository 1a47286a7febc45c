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

package logger_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jetsetilly/cpuexec/logger"
	"github.com/jetsetilly/cpuexec/test"
)

func TestLogger(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	test.ExpectFailure(t, log.Write(w))
	test.ExpectEquality(t, w.String(), "")

	log.Log(logger.Allow, "test", "this is a test")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "test: this is a test\n")

	w.Reset()
	log.Log(logger.Allow, "test2", "this is another test")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "test: this is a test\ntest2: this is another test\n")

	// asking for too many entries in a Tail() should be okay
	w.Reset()
	log.Tail(w, 100)
	test.ExpectEquality(t, w.String(), "test: this is a test\ntest2: this is another test\n")

	w.Reset()
	log.Tail(w, 1)
	test.ExpectEquality(t, w.String(), "test2: this is another test\n")

	w.Reset()
	log.Tail(w, 0)
	test.ExpectEquality(t, w.String(), "")
}

func TestRepeatedEntries(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(logger.Allow, "tag", "detail")
	log.Log(logger.Allow, "tag", "detail")
	log.Log(logger.Allow, "tag", "detail")
	log.Write(w)
	test.ExpectEquality(t, w.String(), "tag: detail (repeat x3)\n")
	test.ExpectEquality(t, log.Len(), 1)
}

func TestMaximumEntries(t *testing.T) {
	log := logger.NewLogger(3)
	for i := 0; i < 10; i++ {
		log.Logf(logger.Allow, "tag", "%d", i)
	}
	test.ExpectEquality(t, log.Len(), 3)

	w := &strings.Builder{}
	log.Write(w)
	test.ExpectEquality(t, w.String(), "tag: 7\ntag: 8\ntag: 9\n")
}

func TestWriteRecent(t *testing.T) {
	log := logger.NewLogger(10)
	w := &strings.Builder{}

	log.Log(logger.Allow, "tag", "a")
	log.WriteRecent(w)
	test.ExpectEquality(t, w.String(), "tag: a\n")

	w.Reset()
	log.Log(logger.Allow, "tag", "b")
	log.WriteRecent(w)
	test.ExpectEquality(t, w.String(), "tag: b\n")

	w.Reset()
	log.WriteRecent(w)
	test.ExpectEquality(t, w.String(), "")
}

type prohibitLogging struct{}

func (prohibitLogging) AllowLogging() bool {
	return false
}

func TestPermissions(t *testing.T) {
	log := logger.NewLogger(10)
	log.Log(prohibitLogging{}, "tag", "detail")
	test.ExpectEquality(t, log.Len(), 0)
	log.Log(logger.Allow, "tag", "detail")
	test.ExpectEquality(t, log.Len(), 1)
}

// errors are logged using the Error() result
func TestErrorLogging(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	err := errors.New("test error")
	log.Log(logger.Allow, "tag", err)
	log.Write(w)
	test.ExpectEquality(t, w.String(), "tag: test error\n")

	log.Clear()
	w.Reset()
	log.Logf(logger.Allow, "tag", "wrapped: %v", err)
	log.Write(w)
	test.ExpectEquality(t, w.String(), "tag: wrapped: test error\n")
}

func TestEcho(t *testing.T) {
	log := logger.NewLogger(10)
	w := &test.CompareWriter{}
	log.SetEcho(w, false)
	log.Log(logger.Allow, "tag", "echoed")
	test.ExpectSuccess(t, w.Compare("tag: echoed\n"))

	w.Clear()
	log.SetEcho(w, true)
	log.Log(logger.Allow, "tag", "coloured")
	test.ExpectSuccess(t, strings.Contains(w.String(), "coloured"))
	test.ExpectInequality(t, w.String(), "tag: coloured\n")
}
