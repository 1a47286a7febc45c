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

package test

import (
	"fmt"
	"strings"
)

// CompareWriter is an implementation of io.Writer. It should be used to
// capture output and to compare with predefined strings.
type CompareWriter struct {
	buffer []byte
}

// Write implements the io.Writer interface.
func (cw *CompareWriter) Write(p []byte) (n int, err error) {
	cw.buffer = append(cw.buffer, p...)
	return len(p), nil
}

// Clear empties the buffer.
func (cw *CompareWriter) Clear() {
	cw.buffer = cw.buffer[:0]
}

// Compare buffered output with predefined/example string.
func (cw *CompareWriter) Compare(s string) bool {
	return s == string(cw.buffer)
}

func (cw *CompareWriter) String() string {
	return string(cw.buffer)
}

// RingWriter is an implementation of io.Writer that only keeps the most
// recent bytes written to it.
type RingWriter struct {
	buffer  []byte
	cursor  int
	wrapped bool
}

// NewRingWriter is the preferred method of initialisation for the RingWriter
// type.
func NewRingWriter(size int) (*RingWriter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid size for RingWriter (%d)", size)
	}
	return &RingWriter{
		buffer: make([]byte, size),
	}, nil
}

func (r *RingWriter) String() string {
	if !r.wrapped {
		return string(r.buffer[:r.cursor])
	}
	s := strings.Builder{}
	s.Write(r.buffer[r.cursor:])
	s.Write(r.buffer[:r.cursor])
	return s.String()
}

// Reset empties the ring writer's buffer.
func (r *RingWriter) Reset() {
	r.cursor = 0
	r.wrapped = false
}

// Write implements the io.Writer interface.
func (r *RingWriter) Write(p []byte) (n int, err error) {
	n = len(p)

	// only the tail of an oversized write can survive
	if len(p) >= len(r.buffer) {
		copy(r.buffer, p[len(p)-len(r.buffer):])
		r.cursor = 0
		r.wrapped = true
		return n, nil
	}

	c := copy(r.buffer[r.cursor:], p)
	if c < len(p) {
		copy(r.buffer, p[c:])
		r.wrapped = true
	}
	r.cursor = (r.cursor + len(p)) % len(r.buffer)
	if r.cursor == 0 && len(p) > 0 {
		r.wrapped = true
	}

	return n, nil
}
