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

package input

import (
	"neocd/logger"
	"neocd/memory"
)

// VectorMapper is the seam the switch handler plugs into the memory
// map's vector-alias control (000000-00007F aliasing ROM or RAM), per
// memory.Memory.SetVectorIsROM.
type VectorMapper interface {
	SetVectorIsROM(isROM bool)
}

// PaletteBankSelector is the seam the switch handler plugs into the
// video generator's active palette bank latch.
type PaletteBankSelector interface {
	SetActivePaletteBank(bank uint32)
}

// Switches services the 3A0000-3BFFFF window: reads always return all
// ones (nothing is wired to this window for reading); writes select
// the vector alias and the active palette bank.
type Switches struct {
	Vectors VectorMapper
	Palette PaletteBankSelector
}

func (h *Switches) ReadByte(addr uint32) uint8 { return 0xFF }

// WriteByte only acts on the odd (low) byte of a composited word
// write, masking the address down to the even word boundary before
// dispatching, per switchWriteByte/switchWriteWord.
func (h *Switches) WriteByte(addr uint32, data uint8) {
	if addr&1 == 0 {
		return
	}
	off := addr & 0x1E

	switch off {
	case 0x00, 0x10: // Darken colours; not modeled.

	case 0x02: // Set ROM vectors
		if h.Vectors != nil {
			h.Vectors.SetVectorIsROM(true)
		}

	case 0x0E: // Set palette bank 0
		if h.Palette != nil {
			h.Palette.SetActivePaletteBank(0)
		}

	case 0x12: // Set RAM vectors
		if h.Vectors != nil {
			h.Vectors.SetVectorIsROM(false)
		}

	case 0x1E: // Set palette bank 1
		if h.Palette != nil {
			h.Palette.SetActivePaletteBank(1)
		}

	default:
		logger.Logf("switches", "write to unknown switch %#06x (data=%#02x)", addr, data)
	}
}

var _ memory.Handler = (*Switches)(nil)
