// This file is part of NeoCD.
//
// NeoCD is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// NeoCD is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with NeoCD.  If not, see <https://www.gnu.org/licenses/>.

// Package savestate provides ordered read/write of primitives and
// raw byte blocks with a sticky failure flag. Every component's
// Save/Restore method in this core is
// written against the Writer/Reader interfaces here so that a
// frontend-supplied implementation (a different wire format, a
// different failure-handling convention) can be substituted without
// touching component code.
package savestate

import (
	"encoding/binary"
	"io"
	"math"
)

// Writer accumulates an ordered sequence of primitives and raw byte
// blocks. Once Failed reports true every subsequent Put call is a
// no-op; callers do not need to check errors after every write.
type Writer interface {
	PutU8(v uint8)
	PutU16(v uint16)
	PutU32(v uint32)
	PutI32(v int32)
	PutF64(v float64)
	PutBytes(b []byte)
	Failed() bool
}

// Reader consumes the sequence a Writer produced, in the same order.
// Once the underlying buffer is exhausted Failed reports true and
// every subsequent Get call returns the zero value.
type Reader interface {
	GetU8() uint8
	GetU16() uint16
	GetU32() uint32
	GetI32() int32
	GetF64() float64
	GetBytes(n int) []byte
	Failed() bool
}

// Saveable is implemented by every stateful component in the core.
type Saveable interface {
	Save(w Writer)
	Restore(r Reader) error
}

// byteWriter is the reference Writer implementation, backed by an
// in-memory buffer and big-endian encoding (matching the guest's own
// word endianness, so memory-bank blocks can be written verbatim).
type byteWriter struct {
	buf    []byte
	failed bool
}

// NewWriter returns a Writer backed by a growable in-memory buffer.
func NewWriter() Writer {
	return &byteWriter{}
}

func (w *byteWriter) PutU8(v uint8)  { w.buf = append(w.buf, v) }
func (w *byteWriter) PutU16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *byteWriter) PutU32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}
func (w *byteWriter) PutI32(v int32) { w.PutU32(uint32(v)) }
func (w *byteWriter) PutF64(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf = append(w.buf, b[:]...)
}
func (w *byteWriter) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}
func (w *byteWriter) Failed() bool { return w.failed }

// Bytes returns the accumulated buffer. Used by the machine aggregate
// to implement the frontend-facing serialize() call.
func Bytes(w Writer) []byte {
	if bw, ok := w.(*byteWriter); ok {
		return bw.buf
	}
	return nil
}

// byteReader is the reference Reader implementation.
type byteReader struct {
	buf    []byte
	pos    int
	failed bool
}

// NewReader returns a Reader over a byte slice previously produced by
// Bytes(Writer).
func NewReader(b []byte) Reader {
	return &byteReader{buf: b}
}

func (r *byteReader) need(n int) bool {
	if r.failed || r.pos+n > len(r.buf) {
		r.failed = true
		return false
	}
	return true
}

func (r *byteReader) GetU8() uint8 {
	if !r.need(1) {
		return 0
	}
	v := r.buf[r.pos]
	r.pos++
	return v
}

func (r *byteReader) GetU16() uint16 {
	if !r.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v
}

func (r *byteReader) GetU32() uint32 {
	if !r.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v
}

func (r *byteReader) GetI32() int32 {
	return int32(r.GetU32())
}

func (r *byteReader) GetF64() float64 {
	if !r.need(8) {
		return 0
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return math.Float64frombits(v)
}

func (r *byteReader) GetBytes(n int) []byte {
	if !r.need(n) {
		return make([]byte, n)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out
}

func (r *byteReader) Failed() bool { return r.failed }

// WriteTo lets the machine aggregate hand a savestate blob directly
// to an io.Writer (e.g. a frontend-provided file).
func WriteTo(w Writer, dst io.Writer) error {
	_, err := dst.Write(Bytes(w))
	return err
}
