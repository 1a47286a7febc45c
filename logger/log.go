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

package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry represents a single line/entry in the log.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.Repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.Repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// Logger is a bounded list of log entries. Most code should use the package
// level functions, which log to the central logger. Separate instances are
// useful for testing.
type Logger struct {
	crit sync.Mutex

	maxEntries int
	entries    []Entry

	// the index of the first entry not yet written by WriteRecent()
	recentStart int

	echo         io.Writer
	echoColorize bool
}

// NewLogger is the preferred method of initialisation for the Logger type.
func NewLogger(maxEntries int) *Logger {
	return &Logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

// Log adds an entry to the logger. The detail argument is usually a string
// but errors and fmt.Stringer implementations are also accepted.
func (l *Logger) Log(perm Permission, tag string, detail any) {
	if perm == nil || !(perm == Allow || perm.AllowLogging()) {
		return
	}

	var s string
	switch d := detail.(type) {
	case string:
		s = d
	case error:
		s = d.Error()
	case fmt.Stringer:
		s = d.String()
	default:
		s = fmt.Sprintf("%v", d)
	}

	l.log(tag, s)
}

// Logf adds a formatted entry to the logger.
func (l *Logger) Logf(perm Permission, tag string, detail string, args ...any) {
	if perm == nil || !(perm == Allow || perm.AllowLogging()) {
		return
	}
	l.log(tag, fmt.Sprintf(detail, args...))
}

func (l *Logger) log(tag, detail string) {
	l.crit.Lock()
	defer l.crit.Unlock()

	// remove all newline characters from tag and detail string
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	var e *Entry
	if len(l.entries) > 0 {
		e = &l.entries[len(l.entries)-1]
	}

	if e == nil || detail != e.Detail || tag != e.Tag {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		e = &l.entries[len(l.entries)-1]
	} else {
		e.Repeated++
		e.Timestamp = time.Now()
	}

	// maintain maximum length
	if len(l.entries) > l.maxEntries {
		trim := len(l.entries) - l.maxEntries
		l.entries = l.entries[trim:]
		l.recentStart -= trim
		if l.recentStart < 0 {
			l.recentStart = 0
		}
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		if l.echoColorize {
			io.WriteString(l.echo, colorize(e))
		} else {
			io.WriteString(l.echo, e.String())
		}
	}
}

// Clear all entries from the logger.
func (l *Logger) Clear() {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.entries = l.entries[:0]
	l.recentStart = 0
}

// Write contents of the logger to io.Writer. Returns false if there was
// nothing to write.
func (l *Logger) Write(output io.Writer) bool {
	l.crit.Lock()
	defer l.crit.Unlock()

	if len(l.entries) == 0 {
		return false
	}
	for _, e := range l.entries {
		io.WriteString(output, e.String())
	}
	l.recentStart = len(l.entries)
	return true
}

// WriteRecent writes only the entries added since the last call to
// WriteRecent() or Write().
func (l *Logger) WriteRecent(output io.Writer) {
	l.crit.Lock()
	defer l.crit.Unlock()

	for _, e := range l.entries[l.recentStart:] {
		io.WriteString(output, e.String())
	}
	l.recentStart = len(l.entries)
}

// Tail writes the last N entries to io.Writer.
func (l *Logger) Tail(output io.Writer, number int) {
	l.crit.Lock()
	defer l.crit.Unlock()

	// cap number to the number of entries
	if number > len(l.entries) {
		number = len(l.entries)
	}
	if number <= 0 {
		return
	}

	for _, e := range l.entries[len(l.entries)-number:] {
		io.WriteString(output, e.String())
	}
}

// SetEcho prints new log entries to io.Writer as they are made. A nil writer
// stops the echo. If colorize is true then the entries are decorated with
// ANSI colour sequences.
func (l *Logger) SetEcho(output io.Writer, colorize bool) {
	l.crit.Lock()
	defer l.crit.Unlock()
	l.echo = output
	l.echoColorize = colorize
}

// BorrowLog gives the provided function the critical section and access to
// the list of log entries.
func (l *Logger) BorrowLog(f func([]Entry)) {
	l.crit.Lock()
	defer l.crit.Unlock()
	f(l.entries)
}

// Len returns the number of entries in the log.
func (l *Logger) Len() int {
	l.crit.Lock()
	defer l.crit.Unlock()
	return len(l.entries)
}
