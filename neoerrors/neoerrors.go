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

// Package neoerrors defines the curated error kinds used across the
// core. Every caller-visible failure (as opposed to conditions that
// are logged and survived) is surfaced through this package so
// frontends can switch on Errno rather than parse message strings.
package neoerrors

import "fmt"

// Errno enumerates the curated error kinds.
type Errno int

const (
	// InvalidImage: malformed cue, missing file, unsupported audio format.
	InvalidImage Errno = iota

	// BusError: guest accessed an address with no mapped region.
	BusError

	// DecoderState: DMA from the CD while the LC8951 is busy or its
	// byte counter doesn't match the expected 0x7FF.
	DecoderState

	// DmaOpcode: the DMA configuration held an unknown opcode.
	DmaOpcode

	// BiosPatch: the cd_speed_hack patch pattern was not found in the
	// loaded BIOS image.
	BiosPatch

	// CdLength: a CopyFromCD DMA requested more than 0x400 words.
	CdLength

	// IoFailure: the frontend's file-system layer returned an error.
	IoFailure

	// SavestateShort: a restore call received fewer bytes than the
	// format requires.
	SavestateShort

	// UnmappedRegion: a write landed on a memory region with no
	// handler (distinct from BusError, which is raised only for CPU
	// bus cycles; this covers DMA and chip-side accesses that are
	// logged rather than trapped).
	UnmappedRegion

	// ChecksumMismatch: an LC8951 command packet's checksum nibble
	// did not match its payload.
	ChecksumMismatch

	// UnknownDmaTarget: a DMA source or destination address did not
	// resolve to a region at all.
	UnknownDmaTarget
)

var names = map[Errno]string{
	InvalidImage:     "invalid CD image",
	BusError:         "bus error",
	DecoderState:     "LC8951 decoder busy",
	DmaOpcode:        "unknown DMA opcode",
	BiosPatch:        "BIOS patch pattern not found",
	CdLength:         "CD DMA length clamped",
	IoFailure:        "frontend I/O failure",
	SavestateShort:   "savestate buffer too short",
	UnmappedRegion:   "unmapped memory region",
	ChecksumMismatch: "command packet checksum mismatch",
	UnknownDmaTarget: "DMA address did not resolve to a region",
}

func (e Errno) String() string {
	if s, ok := names[e]; ok {
		return s
	}
	return "unknown error"
}

// CoreError wraps an Errno with contextual values, in the manner of
// a curated-error type: the Errno identifies the kind for
// programmatic dispatch, the Values carry the specifics for a human
// reading a log line.
type CoreError struct {
	Errno  Errno
	Values []interface{}
}

// New constructs a CoreError for the given kind.
func New(errno Errno, values ...interface{}) error {
	return &CoreError{Errno: errno, Values: values}
}

func (e *CoreError) Error() string {
	if len(e.Values) == 0 {
		return e.Errno.String()
	}
	return fmt.Sprintf("%s: %v", e.Errno.String(), e.Values)
}

// Is matches any *CoreError target with the same Errno, so checks of
// the form errors.Is(err, neoerrors.Sentinel(neoerrors.BusError)) work.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Errno == t.Errno
}

// Sentinel wraps a bare Errno so it can be used as an errors.Is target,
// e.g. errors.Is(err, neoerrors.Sentinel(neoerrors.BusError)).
func Sentinel(errno Errno) error {
	return &CoreError{Errno: errno}
}

// Wrap attaches an Errno to an underlying error from outside this
// package (a failed os.Open, a malformed file read), keeping the
// original error's text as the CoreError's context value.
func Wrap(errno Errno, err error) error {
	return &CoreError{Errno: errno, Values: []interface{}{err}}
}

// Wrapf is Wrap with a formatted message in place of an underlying
// error.
func Wrapf(errno Errno, format string, args ...interface{}) error {
	return &CoreError{Errno: errno, Values: []interface{}{fmt.Sprintf(format, args...)}}
}
