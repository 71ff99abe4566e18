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

package video

import (
	"neocd/logger"
	"neocd/memory"
)

// IRQPort is the seam the machine plugs into the video register
// window for the HIRQ relative-arm and IRQ-acknowledge side effects
// of writes to 3C0006/3C000A/3C000C. Kept as a narrow interface
// rather than a pointer back into the machine aggregate.
type IRQPort interface {
	// ScreenY reports the current raster line, for the 3C0006
	// readback formula (vertical position + 0x100, wrapped).
	ScreenY() int
	// TimesliceElapsedMaster reports how many master cycles the
	// current CPU timeslice has run so far, for the relative-mode
	// HIRQ arm calculation.
	TimesliceElapsedMaster() uint32
	// ArmHbl arms the raster (HBlank/HIRQ) timer to fire after delay
	// master cycles from now.
	ArmHbl(delay uint32)
	ClearRaster()
	ClearVBlank()
	UpdateInterrupts()
}

// Registers services the 3C0000-3C000E window: the VRAM data/offset/
// modulo port, the auto-animation-speed/HIRQ-control register, the
// HIRQ reload counter and the interrupt-acknowledge strobe.
type Registers struct {
	State *State
	Banks *memory.Banks
	IRQ   IRQPort

	// pendingHi buffers the high byte of an in-flight word write; the
	// memory map decomposes every 16-bit access into a high-byte write
	// followed by a low-byte write, so the word registers here are
	// reassembled the same way the CD/machine register block does it.
	pendingHi    [8]uint8
	pendingIsSet [8]bool
}

// screenHeight is the raster's total scanline count, equal to
// clocks.ScreenHeight. Duplicated as a local constant to keep the
// register formula self-contained; the video package otherwise has no
// reason to import clocks.
const screenHeight = 264

func (h *Registers) wordOffset(addr uint32) uint32 {
	return (addr - 0x3C0000) & 0xF
}

func (h *Registers) readWord(off uint32) uint16 {
	s := h.State
	switch off {
	case 0x0, 0x2: // Videoram Data
		return uint16(s.VideoramData)

	case 0x4: // Videoram Modulo
		return uint16(s.VideoramModulo)

	case 0x6: // Auto animation speed & H IRQ control
		verticalPosition := 0
		if h.IRQ != nil {
			verticalPosition = h.IRQ.ScreenY() + 0x100
		}
		if verticalPosition >= 0x200 {
			verticalPosition -= screenHeight
		}
		return uint16((verticalPosition << 7) | int(s.AutoAnimationCounter&7))
	}

	return 0xFFFF
}

func (h *Registers) writeWord(off uint32, data uint16) {
	s := h.State
	switch off {
	case 0x0: // $3C0000: Videoram Offset
		s.VideoramOffset = uint32(data)
		s.VideoramData = uint32(h.vramAt(s.VideoramOffset))

	case 0x2: // $3C0002: Videoram Data
		h.setVramAt(s.VideoramOffset, data)
		s.VideoramOffset = (s.VideoramOffset & 0x8000) | ((s.VideoramOffset + s.VideoramModulo) & 0x7FFF)
		s.VideoramData = uint32(h.vramAt(s.VideoramOffset))

	case 0x4: // $3C0004: Videoram Modulo
		s.VideoramModulo = uint32(data)

	case 0x6: // $3C0006: Auto animation speed & H IRQ control
		s.AutoAnimationSpeed = uint32(data) >> 8
		s.AutoAnimationDisabled = data&0x0008 != 0
		s.HirqControl = uint32(data) & 0x00F0

	case 0x8: // $3C0008: Display counter high
		s.HirqRegister = (s.HirqRegister & 0x0000FFFF) | (uint32(data) << 16)

	case 0xA: // $3C000A: Display Counter low
		s.HirqRegister = (s.HirqRegister & 0xFFFF0000) | uint32(data)
		if s.HirqControl&HirqRelative != 0 && h.IRQ != nil {
			// Karnov uses this for raster effects, calculating
			// precisely the number of cycles to wait for the next
			// line; the elapsed portion of the current timeslice must
			// be folded in or the arm fires too early.
			elapsed := h.IRQ.TimesliceElapsedMaster()
			delay := pixelToMaster(s.HirqRegister + 1)
			h.IRQ.ArmHbl(elapsed + delay)
		}

	case 0xC: // $3C000C: IRQ Acknowledge
		if h.IRQ != nil {
			if data&0x02 != 0 {
				h.IRQ.ClearRaster()
			}
			if data&0x04 != 0 {
				h.IRQ.ClearVBlank()
			}
			h.IRQ.UpdateInterrupts()
		}

	case 0xE: // $3C000E: Unknown
		logger.Logf("video", "write to register 3C000E (data=%#04x)", data)
	}
}

// pixelToMaster duplicates clocks.PixelToMaster's ratio without an
// import, for the same reason as screenHeight above.
func pixelToMaster(pixels uint32) uint32 {
	const ratio = 24_168_000 / 6_042_000
	return pixels * ratio
}

func (h *Registers) vramAt(offset uint32) uint16 {
	idx := int(offset)
	if idx < 0 || idx >= len(h.Banks.VideoRAM) {
		return 0xFFFF
	}
	return h.Banks.VideoRAM[idx]
}

func (h *Registers) setVramAt(offset uint32, value uint16) {
	idx := int(offset)
	if idx < 0 || idx >= len(h.Banks.VideoRAM) {
		return
	}
	h.Banks.VideoRAM[idx] = value
}

// ReadByte/WriteByte implement memory.Handler. Byte reads return the
// high byte of the word register at the even address (masked to the
// four readable words) and 0xFF on odd addresses. Writes reassemble
// the high-then-low byte pair the memory map's word decomposition
// produces: the even byte is buffered, the odd byte completes the
// word write. A lone odd-byte write is ignored, as on hardware.
func (h *Registers) ReadByte(addr uint32) uint8 {
	if addr&1 != 0 {
		return 0xFF
	}
	return uint8(h.readWord(h.wordOffset(addr)&0x6) >> 8)
}

func (h *Registers) WriteByte(addr uint32, data uint8) {
	off := h.wordOffset(addr)
	if addr&1 == 0 {
		h.pendingHi[off>>1] = data
		h.pendingIsSet[off>>1] = true
		return
	}
	base := off &^ 1
	if !h.pendingIsSet[base>>1] {
		return
	}
	h.pendingIsSet[base>>1] = false
	h.writeWord(base, uint16(h.pendingHi[base>>1])<<8|uint16(data))
}
