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

package memory

import (
	"neocd/logger"
	"neocd/savestate"
)

// DMA opcode selectors, written to dmaConfig[0] (FF007E) before a
// transfer is triggered by writing 0x40 to FF0061. Two encodings exist
// for several opcodes because different BIOS revisions program
// slightly different values for the same operation.
const (
	opCopy               = 0xFE3D
	opCopyAlt            = 0xFE6D
	opCopyFromCD         = 0xFFC5
	opCopyFromCDAlt      = 0xFF89
	opFill               = 0xFEF5
	opPattern            = 0xFFCD
	opPatternAlt         = 0xFFDD
	opCopyOddBytes       = 0xE2DD
	opCopyOddBytesAlt    = 0xF2DD
	opCopyFromCDOddBytes = 0xFC2D
	opFillOddBytes       = 0xCFFD
)

// DMA is the console's seven-mode transfer engine. Source and
// destination addresses are resolved through the owning Memory's
// region table on every transfer, so DMA naturally respects the
// bank-switch window and any mapped handler (video RAM, palette,
// CD decoder).
type DMA struct {
	m *Memory

	config      [9]uint16
	source      uint32
	destination uint32
	length      uint32
	pattern     uint16
}

func newDMA(m *Memory) *DMA {
	return &DMA{m: m}
}

func (d *DMA) reset() {
	d.config = [9]uint16{}
	d.source = 0
	d.destination = 0
	d.length = 0
	d.pattern = 0
}

// trigger runs the transfer currently programmed into config/source/
// destination/length/pattern. An unrecognized opcode or an unmapped
// target region is logged and the transfer is silently skipped; a bad
// DMA program never raises an exception on real hardware either.
func (d *DMA) trigger() {
	switch d.config[0] {
	case opCopy, opCopyAlt:
		d.doCopy()
	case opCopyFromCD, opCopyFromCDAlt:
		d.doCopyFromCD(false)
	case opFill:
		d.doFill(false)
	case opPattern, opPatternAlt:
		d.doPattern()
	case opCopyOddBytes, opCopyOddBytesAlt:
		d.doCopyOddBytes()
	case opCopyFromCDOddBytes:
		d.doCopyFromCD(true)
	case opFillOddBytes:
		d.doFill(true)
	default:
		logDMAFailure(d)
	}
}

// fetchWord/writeWord take the absolute 24-bit address and resolve it
// the same way the CPU path does: direct regions index their backing
// bank through the region mask, mapped regions see the full address
// and decode it themselves. Keeping the two paths identical is what
// lets DMA respect the bank-switch window and every mapped handler.
func (d *DMA) fetchWord(r *Region, addr uint32) uint16 {
	switch r.ReadMode {
	case DirectRead:
		off := r.offset(addr)
		if r.ReadBase == nil || int(off)+1 >= len(r.ReadBase) {
			return 0xFFFF
		}
		return uint16(r.ReadBase[off])<<8 | uint16(r.ReadBase[off+1])
	case MappedRead:
		if r.Handler == nil {
			return 0xFFFF
		}
		return uint16(r.Handler.ReadByte(addr))<<8 | uint16(r.Handler.ReadByte(addr+1))
	default:
		return 0xFFFF
	}
}

func (d *DMA) writeWord(r *Region, addr uint32, data uint16) {
	switch r.WriteMode {
	case DirectWrite:
		off := r.offset(addr)
		if r.WriteBase != nil && int(off)+1 < len(r.WriteBase) {
			r.WriteBase[off] = uint8(data >> 8)
			r.WriteBase[off+1] = uint8(data)
		}
	case MappedWrite:
		if r.Handler != nil {
			r.Handler.WriteByte(addr, uint8(data>>8))
			r.Handler.WriteByte(addr+1, uint8(data))
		}
	}
}

// doCopy implements the "Copy" and "CopyOddBytes" opcodes' shared
// addressing convention: the source and destination registers are
// swapped by hardware convention, so the transfer reads from
// dmaDestination and writes to dmaSource.
func (d *DMA) doCopy() {
	src := d.m.table.lookup(d.destination)
	dst := d.m.table.lookup(d.source)
	if src == nil || dst == nil {
		logDMAFailure(d)
		return
	}
	srcOff := d.destination & 0xFFFFFF
	dstOff := d.source & 0xFFFFFF
	for length := d.length; length > 0; length-- {
		word := d.fetchWord(src, srcOff)
		d.writeWord(dst, dstOff, word)
		srcOff += 2
		dstOff += 2
	}
}

func (d *DMA) doCopyOddBytes() {
	src := d.m.table.lookup(d.destination)
	dst := d.m.table.lookup(d.source)
	if src == nil || dst == nil {
		logDMAFailure(d)
		return
	}
	srcOff := d.destination & 0xFFFFFF
	dstOff := d.source & 0xFFFFFF
	for length := d.length; length > 0; length-- {
		word := d.fetchWord(src, srcOff)
		srcOff += 2
		d.writeWord(dst, dstOff, word>>8&0xFF|word<<8&0xFF00)
		dstOff += 2
		d.writeWord(dst, dstOff, word)
		dstOff += 2
	}
}

func (d *DMA) doFill(oddBytes bool) {
	dst := d.m.table.lookup(d.destination)
	if dst == nil {
		logDMAFailure(d)
		return
	}
	off := d.destination & 0xFFFFFF
	addr := d.destination
	step := uint32(4)
	if oddBytes {
		step = 8
	}
	for length := d.length; length > 0; length-- {
		if oddBytes {
			// Each word truncates a different 16-bit slice of the
			// 32-bit address, the same overlapping-byte construction
			// CopyOddBytes uses: whichever byte lane the destination
			// RAM actually latches, the right value lands in it.
			d.writeWord(dst, off, uint16(addr>>24))
			off += 2
			d.writeWord(dst, off, uint16(addr>>16))
			off += 2
			d.writeWord(dst, off, uint16(addr>>8))
			off += 2
			d.writeWord(dst, off, uint16(addr))
			off += 2
		} else {
			d.writeWord(dst, off, uint16(addr>>16))
			off += 2
			d.writeWord(dst, off, uint16(addr))
			off += 2
		}
		addr += step
	}
}

func (d *DMA) doPattern() {
	dst := d.m.table.lookup(d.destination)
	if dst == nil {
		logDMAFailure(d)
		return
	}
	off := d.destination & 0xFFFFFF
	for length := d.length; length > 0; length-- {
		d.writeWord(dst, off, d.pattern)
		off += 2
	}
}

// doCopyFromCD implements CopyFromCD / CopyFromCDOddBytes: it copies
// the LC8951's current sector buffer into the destination region and
// ends the transfer on the decoder chip. Length is clamped to 0x400
// words and the guest's own DMA-length shadow at 0x10FEFC is patched
// to 0x800, compensating for a known Art of Fighting CDZ guest bug.
// Whether real hardware clamps this way is unverified; do not change
// the policy without a reference trace.
func (d *DMA) doCopyFromCD(oddBytes bool) {
	dst := d.m.table.lookup(d.destination)
	if dst == nil {
		logDMAFailure(d)
		return
	}
	if d.length > 0x400 {
		d.m.Write8(0x10FEFC, 0)
		d.m.Write8(0x10FEFD, 0)
		d.m.Write8(0x10FEFE, 0x08)
		d.m.Write8(0x10FEFF, 0x00)
		d.length = 0x400
	}

	decoder := d.m.peripherals.CDDecoder
	off := d.destination & 0xFFFFFF
	for i := 0; i < int(d.length); i++ {
		var word uint16
		if decoder != nil {
			word = decoder.ReadSectorWord(i)
		} else {
			word = 0xFFFF
		}
		if oddBytes {
			d.writeWord(dst, off, word>>8)
			off += 2
			d.writeWord(dst, off, word&0xFF)
			off += 2
		} else {
			d.writeWord(dst, off, word)
			off += 2
		}
	}
	if decoder != nil {
		decoder.EndTransfer(int(d.length))
	}
}

func logDMAFailure(d *DMA) {
	logger.Logf("dma", "unknown configuration %04x src=%06x dst=%06x len=%x pattern=%04x",
		d.config[0], d.source, d.destination, d.length, d.pattern)
}

func (d *DMA) Save(w savestate.Writer) {
	for _, v := range d.config {
		w.PutU16(v)
	}
	w.PutU32(d.source)
	w.PutU32(d.destination)
	w.PutU32(d.length)
	w.PutU16(d.pattern)
}

func (d *DMA) Restore(r savestate.Reader) error {
	for i := range d.config {
		d.config[i] = r.GetU16()
	}
	d.source = r.GetU32()
	d.destination = r.GetU32()
	d.length = r.GetU32()
	d.pattern = r.GetU16()
	if r.Failed() {
		return errShort
	}
	return nil
}
