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

import "neocd/memory"

// ConvertColor recomputes the RGB565 shadow for one palette entry
// from the guest's native 16-bit colour word: a 4-bit nibble per
// channel plus a shared dark bit per channel, in a shuffled bit
// order. The guest word is already stored as a plain numeric value by
// the memory package's word accessors, so no byte-swap is needed
// here.
func (s *State) ConvertColor(banks *memory.Banks, index int) {
	c := banks.Palette[index]
	s.PaletteRGB565[index] = ((c & 0x0F00) << 4) | ((c & 0x4000) >> 3) |
		((c & 0x00F0) << 3) | ((c & 0x2000) >> 7) |
		((c & 0x000F) << 1) | ((c & 0x1000) >> 12)
}

// ConvertPalette rebuilds every palette entry's RGB565 shadow, used
// after a savestate restore repopulates the raw palette bank.
func (s *State) ConvertPalette(banks *memory.Banks) {
	for i := range banks.Palette {
		s.ConvertColor(banks, i)
	}
}
