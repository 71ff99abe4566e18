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

// Package lc8951 models the LC8951 CD-ROM decoder chip: a
// pointer-addressed register file, a 5-byte nibble-packed command and
// response protocol, and the sector-decode step the CD-ROM's 75Hz
// timer drives. One struct per chip, flag constants as untyped bit
// masks, a Reset that restores power-on defaults, Save/Restore
// against neocd/savestate.
package lc8951

import "neocd/savestate"

// IFCTRL bits.
const (
	CMDIEN = 0x80
	DTEIEN = 0x40
	DECIEN = 0x20
	CMDBK  = 0x10
	DTWAI  = 0x08
	STWAI  = 0x04
	DOUTEN = 0x02
	SOUTEN = 0x01
)

// IFSTAT bits.
const (
	CMDI  = 0x80
	DTEI  = 0x40
	DECI  = 0x20
	SUBI  = 0x10
	DTBSY = 0x08
	STBSY = 0x04
	DTEN  = 0x02
	STEN  = 0x01
)

// CTRL0 bits.
const (
	DECEN     = 0x80
	LOOKAHEAD = 0x40
	E01RQ     = 0x20
	AUTORQ    = 0x10
	ERAMRQ    = 0x08
	WRRQ      = 0x04
	ECCRQ     = 0x02
	ENCODE    = 0x01
)

// CTRL1 bits.
const (
	SYIEN  = 0x80
	SYDEN  = 0x40
	DSCREN = 0x20
	COWREN = 0x10
	MODRQ  = 0x08
	FORMRQ = 0x04
	MBCKRQ = 0x02
	SHDREN = 0x01
)

// STAT0 bits.
const CRCOK = 0x80

// Disc is the subset of cdrom.Cdrom the chip and its command
// controller need. Kept as an interface rather than a pointer back
// into a machine aggregate, so the dependency runs one way only.
type Disc interface {
	Position() uint32
	IsData() bool
	IsPregap() bool
	IsTocEmpty() bool
	CurrentTrackIndex() (track, index uint8)
	CurrentTrackPosition() uint32
	CurrentIndexSize() uint32
	FirstTrack() uint8
	LastTrack() uint8
	TrackPosition(track uint8) uint32
	TrackIsData(track uint8) bool
	Leadout() uint32
	Play()
	Stop()
	Seek(position uint32)
	ReadData(buffer []byte)
}

// Chip is the LC8951 register file plus its command/response packet
// state and the CdromController command state machine.
type Chip struct {
	Controller Controller

	disc Disc

	registerPointer uint8

	commandPacket  [5]uint8
	commandPointer uint32
	responsePacket [5]uint8
	responsePointer uint32
	strobe          uint32

	SBOUT uint8
	IFCTRL uint8
	DBCL, DBCH uint8
	DACL, DACH uint8
	DTRG, DTACK uint8
	WAL, WAH uint8
	CTRL0, CTRL1 uint8
	PTL, PTH uint8

	COMIN uint8
	IFSTAT uint8
	HEAD0, HEAD1, HEAD2, HEAD3 uint8
	STAT0, STAT1, STAT2, STAT3 uint8

	Buffer [2048]byte
}

// New constructs a Chip in its power-on state.
func New() *Chip {
	c := &Chip{}
	c.Reset()
	return c
}

// Reset restores every register to its power-on default: WA = 0x0930
// (2352), IFSTAT all-ones except DECI, the response packet
// checksummed-blank, everything else zero.
func (c *Chip) Reset() {
	c.Controller.reset()

	c.commandPacket = [5]uint8{}
	c.responsePacket = [5]uint8{}
	SetPacketChecksum(c.responsePacket[:])

	c.registerPointer = 0
	c.resetPacketPointers()

	c.UpdateHeadRegisters(0)

	c.SBOUT = 0
	c.IFCTRL = 0
	c.DBCL, c.DBCH = 0, 0
	c.DACL, c.DACH = 0, 0
	c.DTRG, c.DTACK = 0, 0
	c.WAL, c.WAH = 0x30, 0x09
	c.CTRL0, c.CTRL1 = 0, 0
	c.PTL, c.PTH = 0, 0
	c.COMIN = 0
	// All interrupt/status lines deasserted. DECI must start clear or
	// the first sector decode's rising edge would go undetected and
	// the decoder IRQ would never latch.
	c.IFSTAT = 0xFF &^ DECI
	c.STAT0, c.STAT1, c.STAT2, c.STAT3 = 0, 0, 0, 0

	c.Buffer = [2048]byte{}
}

func (c *Chip) Save(w savestate.Writer) {
	w.PutU8(c.Controller.status)
	w.PutU8(c.registerPointer)
	w.PutBytes(c.commandPacket[:])
	w.PutU32(c.commandPointer)
	w.PutBytes(c.responsePacket[:])
	w.PutU32(c.responsePointer)
	w.PutU32(c.strobe)
	w.PutU8(c.SBOUT)
	w.PutU8(c.IFCTRL)
	w.PutU8(c.DBCL)
	w.PutU8(c.DBCH)
	w.PutU8(c.DACL)
	w.PutU8(c.DACH)
	w.PutU8(c.DTRG)
	w.PutU8(c.DTACK)
	w.PutU8(c.WAL)
	w.PutU8(c.WAH)
	w.PutU8(c.CTRL0)
	w.PutU8(c.CTRL1)
	w.PutU8(c.PTL)
	w.PutU8(c.PTH)
	w.PutU8(c.COMIN)
	w.PutU8(c.IFSTAT)
	w.PutU8(c.HEAD0)
	w.PutU8(c.HEAD1)
	w.PutU8(c.HEAD2)
	w.PutU8(c.HEAD3)
	w.PutU8(c.STAT0)
	w.PutU8(c.STAT1)
	w.PutU8(c.STAT2)
	w.PutU8(c.STAT3)
	w.PutBytes(c.Buffer[:])
}

func (c *Chip) Restore(r savestate.Reader) error {
	c.Controller.status = r.GetU8()
	c.registerPointer = r.GetU8()
	copy(c.commandPacket[:], r.GetBytes(5))
	c.commandPointer = r.GetU32()
	copy(c.responsePacket[:], r.GetBytes(5))
	c.responsePointer = r.GetU32()
	c.strobe = r.GetU32()
	c.SBOUT = r.GetU8()
	c.IFCTRL = r.GetU8()
	c.DBCL = r.GetU8()
	c.DBCH = r.GetU8()
	c.DACL = r.GetU8()
	c.DACH = r.GetU8()
	c.DTRG = r.GetU8()
	c.DTACK = r.GetU8()
	c.WAL = r.GetU8()
	c.WAH = r.GetU8()
	c.CTRL0 = r.GetU8()
	c.CTRL1 = r.GetU8()
	c.PTL = r.GetU8()
	c.PTH = r.GetU8()
	c.COMIN = r.GetU8()
	c.IFSTAT = r.GetU8()
	c.HEAD0 = r.GetU8()
	c.HEAD1 = r.GetU8()
	c.HEAD2 = r.GetU8()
	c.HEAD3 = r.GetU8()
	c.STAT0 = r.GetU8()
	c.STAT1 = r.GetU8()
	c.STAT2 = r.GetU8()
	c.STAT3 = r.GetU8()
	copy(c.Buffer[:], r.GetBytes(2048))
	return nil
}
