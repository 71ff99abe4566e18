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

// paletteHandler services the 400000-4FFFFF window, a 16-bit-word
// bank addressed byte-wise by the CPU and mirrored every 8KiB.
// Every write notifies the installed PaletteWatcher so the RGB565
// shadow stays current with the raw palette word.
type paletteHandler struct {
	m *Memory
}

func (h *paletteHandler) wordIndex(addr uint32) (idx int, hiByte bool) {
	off := (addr - 0x400000) & 0x1FFF
	return int(off / 2), off&1 == 0
}

func (h *paletteHandler) ReadByte(addr uint32) uint8 {
	idx, hi := h.wordIndex(addr)
	w := h.m.banks.Palette[idx]
	if hi {
		return uint8(w >> 8)
	}
	return uint8(w)
}

func (h *paletteHandler) WriteByte(addr uint32, data uint8) {
	idx, hi := h.wordIndex(addr)
	w := h.m.banks.Palette[idx]
	if hi {
		w = uint16(data)<<8 | w&0x00FF
	} else {
		w = w&0xFF00 | uint16(data)
	}
	h.m.banks.Palette[idx] = w
	if h.m.peripherals.Palette != nil {
		h.m.peripherals.Palette.PaletteWritten(idx)
	}
}

// backupRAMHandler services the battery-backed SRAM: the 8KiB chip
// is wired to the odd byte lane of a 16KiB window; even addresses are
// open bus.
type backupRAMHandler struct {
	banks *Banks
}

func (h *backupRAMHandler) index(addr uint32) (idx int, odd bool) {
	off := (addr - 0x800000) & 0x3FFF
	return int(off / 2), off&1 == 1
}

func (h *backupRAMHandler) ReadByte(addr uint32) uint8 {
	idx, odd := h.index(addr)
	if !odd || idx >= len(h.banks.BackupRAM) {
		return 0xFF
	}
	return h.banks.BackupRAM[idx]
}

func (h *backupRAMHandler) WriteByte(addr uint32, data uint8) {
	idx, odd := h.index(addr)
	if !odd || idx >= len(h.banks.BackupRAM) {
		return
	}
	h.banks.BackupRAM[idx] = data
}

// bankSwitchHandler services the E00000 window: the contents exposed
// depend on (area select) AND (bus-request bit for that area).
// Byte reads to the Z80/PCM/FIX areas return valid data
// only on odd offsets; sprite-area access is 3-bit banked, PCM 1-bit
// banked. Writes to the FIX area invalidate the non-blank bitmap.
type bankSwitchHandler struct {
	m *Memory
}

func (h *bankSwitchHandler) target() ([]byte, uint32) {
	s := &h.m.bankSwitch
	if !s.busRequest[s.area] {
		return nil, 0
	}
	banks := h.m.banks
	switch s.area {
	case areaSPR:
		bank := uint32(s.spriteBank & 0x7)
		return banks.SpriteRAM, bank * 0x10000
	case areaPCM:
		bank := uint32(s.pcmBank & 0x1)
		return banks.PCMRAM, bank * 0x80000
	case areaZ80:
		return banks.Z80RAM, 0
	case areaFIX:
		return banks.FixRAM, 0
	}
	return nil, 0
}

func (h *bankSwitchHandler) ReadByte(addr uint32) uint8 {
	data, base := h.target()
	if data == nil {
		return 0xFF
	}
	off := addr & 0xFFFF
	if h.m.bankSwitch.area != areaSPR && off&1 == 0 {
		// even-offset halves return 0xFF for Z80/PCM/FIX areas.
		return 0xFF
	}
	idx := base + off
	if h.m.bankSwitch.area != areaSPR {
		idx = base + off/2
	}
	if int(idx) >= len(data) {
		return 0xFF
	}
	return data[idx]
}

func (h *bankSwitchHandler) WriteByte(addr uint32, data uint8) {
	target, base := h.target()
	if target == nil {
		return
	}
	off := addr & 0xFFFF
	area := h.m.bankSwitch.area
	if area != areaSPR && off&1 == 0 {
		return
	}
	idx := base + off
	if area != areaSPR {
		idx = base + off/2
	}
	if int(idx) >= len(target) {
		return
	}
	target[idx] = data
	if area == areaFIX {
		tile := int(idx) / 32
		h.m.banks.InvalidateFixTile(tile)
	}
}

// SetBankArea and SetBankBusRequest implement the area-select and
// bus-request control bits. The concrete register addresses for these
// controls live in machineRegsHandler, the CD/machine register block
// that owns them on real hardware.
func (m *Memory) SetBankArea(area int) {
	m.bankSwitch.area = area & 0x3
}

func (m *Memory) SetBankBusRequest(area int, asserted bool) {
	if area < 0 || area > 3 {
		return
	}
	m.bankSwitch.busRequest[area] = asserted
}

func (m *Memory) SetSpriteBank(bank uint8) {
	m.bankSwitch.spriteBank = bank & 0x7
}

func (m *Memory) SetPCMBank(bank uint8) {
	m.bankSwitch.pcmBank = bank & 0x1
}
