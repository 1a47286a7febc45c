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

package cpuexec

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/jetsetilly/cpuexec/attotime"
	"github.com/jetsetilly/cpuexec/curated"
	"github.com/jetsetilly/cpuexec/hardware/cpu"
	"github.com/jetsetilly/cpuexec/hardware/timer"
)

// the first bytes of a binary snapshot
var snapshotMagic = []byte("CPUX")

// snapshotVersion is incremented whenever the binary layout changes
const snapshotVersion = 2

type encoder struct {
	buf bytes.Buffer
}

func (e *encoder) u8(v uint8) {
	e.buf.WriteByte(v)
}

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) u16(v uint16) {
	e.buf.Write(binary.BigEndian.AppendUint16(nil, v))
}

func (e *encoder) u32(v uint32) {
	e.buf.Write(binary.BigEndian.AppendUint32(nil, v))
}

func (e *encoder) u64(v uint64) {
	e.buf.Write(binary.BigEndian.AppendUint64(nil, v))
}

func (e *encoder) i32(v int) {
	e.u32(uint32(int32(v)))
}

func (e *encoder) i64(v int64) {
	e.u64(uint64(v))
}

func (e *encoder) time(t attotime.Time) {
	e.i64(t.Seconds)
	e.i64(t.Attoseconds)
}

func (e *encoder) str(s string) {
	e.u16(uint16(len(s)))
	e.buf.WriteString(s)
}

type decoder struct {
	b   []byte
	err error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return make([]byte, n)
	}
	if len(d.b) < n {
		d.err = curated.Errorf(ErrSnapshotFormat, "unexpected end of data")
		return make([]byte, n)
	}
	v := d.b[:n]
	d.b = d.b[n:]
	return v
}

func (d *decoder) u8() uint8 {
	return d.take(1)[0]
}

func (d *decoder) bool() bool {
	return d.u8() != 0
}

func (d *decoder) u16() uint16 {
	return binary.BigEndian.Uint16(d.take(2))
}

func (d *decoder) u32() uint32 {
	return binary.BigEndian.Uint32(d.take(4))
}

func (d *decoder) u64() uint64 {
	return binary.BigEndian.Uint64(d.take(8))
}

func (d *decoder) i32() int {
	return int(int32(d.u32()))
}

func (d *decoder) i64() int64 {
	return int64(d.u64())
}

func (d *decoder) time() attotime.Time {
	return attotime.Time{Seconds: d.i64(), Attoseconds: d.i64()}
}

func (d *decoder) str() string {
	return string(d.take(int(d.u16())))
}

// count reads a length and checks that it is plausible for the amount of
// data remaining.
func (d *decoder) count(minSize int) int {
	n := int(d.u32())
	if d.err == nil && n*minSize > len(d.b) {
		d.err = curated.Errorf(ErrSnapshotFormat, "length larger than data")
		return 0
	}
	return n
}

// MarshalBinary implements the encoding.BinaryMarshaler interface. Values
// are written in a fixed order, big-endian.
func (snp *Snapshot) MarshalBinary() ([]byte, error) {
	if snp.Timers == nil {
		return nil, curated.Errorf(ErrSnapshotFormat, "no timers")
	}

	e := &encoder{}
	e.buf.Write(snapshotMagic)
	e.u16(snapshotVersion)

	e.i64(int64(snp.Frame))
	e.time(snp.FrameStart)
	e.i32(snp.VBlankSub)
	e.time(snp.BoostSlice)

	e.u32(uint32(len(snp.Slots)))
	for _, ss := range snp.Slots {
		e.str(ss.Tag)
		e.time(ss.LocalTime)
		e.u64(ss.TotalCycles)
		e.u8(uint8(ss.Suspend))
		e.bool(ss.EatCycles)
		e.u64(ss.Hz)
		e.u64(math.Float64bits(ss.Scale))
		e.i32(ss.WaitTrigger)
		e.i32(ss.Iloops)
		e.i32(ss.VBlankCountdown)
		e.u8(uint8(ss.ResetLine))
		e.u8(uint8(ss.HaltLine))
		for _, l := range ss.Lines {
			e.u8(uint8(l))
		}
		for _, v := range ss.Vectors {
			e.i32(v)
		}
	}

	t := snp.Timers
	e.time(t.Now)
	e.u64(t.NextSeq)
	e.u32(uint32(t.Slots))
	e.u32(uint32(len(t.Free)))
	for _, f := range t.Free {
		e.u32(uint32(f))
	}
	e.u32(uint32(len(t.Generations)))
	for _, g := range t.Generations {
		e.u32(g)
	}
	e.u32(uint32(len(t.Entries)))
	for _, te := range t.Entries {
		e.u32(uint32(te.Index))
		e.u32(te.Generation)
		e.str(te.Tag)
		e.i64(int64(te.Param))
		e.time(te.Start)
		e.time(te.FireTime)
		e.time(te.Period)
		e.bool(te.Enabled)
		e.bool(te.Persistent)
		e.bool(te.Temporary)
		e.u64(te.Seq)
	}

	return e.buf.Bytes(), nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface.
func (snp *Snapshot) UnmarshalBinary(data []byte) error {
	if !bytes.HasPrefix(data, snapshotMagic) {
		return curated.Errorf(ErrSnapshotFormat, "not a snapshot")
	}
	d := &decoder{b: data[len(snapshotMagic):]}

	if v := d.u16(); d.err == nil && v != snapshotVersion {
		return curated.Errorf(ErrSnapshotFormat, "unsupported version")
	}

	n := Snapshot{Timers: &timer.Snapshot{}}

	n.Frame = int(d.i64())
	n.FrameStart = d.time()
	n.VBlankSub = d.i32()
	n.BoostSlice = d.time()

	numSlots := d.count(1)
	if numSlots > cpu.MaxCPUs {
		return curated.Errorf(ErrSnapshotFormat, "too many processors")
	}
	for i := 0; i < numSlots; i++ {
		var ss SlotSnapshot
		ss.Tag = d.str()
		ss.LocalTime = d.time()
		ss.TotalCycles = d.u64()
		ss.Suspend = cpu.SuspendReason(d.u8())
		ss.EatCycles = d.bool()
		ss.Hz = d.u64()
		ss.Scale = math.Float64frombits(d.u64())
		ss.WaitTrigger = d.i32()
		ss.Iloops = d.i32()
		ss.VBlankCountdown = d.i32()
		ss.ResetLine = cpu.LineState(d.u8())
		ss.HaltLine = cpu.LineState(d.u8())
		for i := range ss.Lines {
			ss.Lines[i] = cpu.LineState(d.u8())
		}
		for i := range ss.Vectors {
			ss.Vectors[i] = d.i32()
		}
		n.Slots = append(n.Slots, ss)
	}

	t := n.Timers
	t.Now = d.time()
	t.NextSeq = d.u64()
	t.Slots = int(d.u32())
	numFree := d.count(4)
	for i := 0; i < numFree; i++ {
		t.Free = append(t.Free, int(d.u32()))
	}
	numGens := d.count(4)
	for i := 0; i < numGens; i++ {
		t.Generations = append(t.Generations, d.u32())
	}
	if d.err == nil && t.Slots != len(t.Generations) {
		return curated.Errorf(ErrSnapshotFormat, "timer slots do not match generations")
	}
	numEntries := d.count(8)
	for i := 0; i < numEntries; i++ {
		var te timer.SnapshotEntry
		te.Index = int(d.u32())
		te.Generation = d.u32()
		te.Tag = d.str()
		te.Param = int(d.i64())
		te.Start = d.time()
		te.FireTime = d.time()
		te.Period = d.time()
		te.Enabled = d.bool()
		te.Persistent = d.bool()
		te.Temporary = d.bool()
		te.Seq = d.u64()
		t.Entries = append(t.Entries, te)
	}

	if d.err != nil {
		return d.err
	}
	if len(d.b) != 0 {
		return curated.Errorf(ErrSnapshotFormat, "trailing data")
	}

	*snp = n
	return nil
}
