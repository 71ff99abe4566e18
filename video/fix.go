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

// fixVRAMBase is the word offset into video RAM where the 40x28 fix
// (text) layer's tile map begins.
const fixVRAMBase = 0xE004 / 2

// DrawFix renders one scanline of the fix layer into s.FrameBuffer.
// scanline is the raster line in [16,240); row 0 of the framebuffer
// corresponds to scanline 16.
func (s *State) DrawFix(banks *memory.Banks, scanline uint32) {
	vram := banks.VideoRAM
	rowBase := fixVRAMBase + int((scanline-16)/8)
	fbRow := int(scanline-16) * FrameWidth

	for col := 0; col < FrameWidth; col += 8 {
		cell := rowBase + (LeftBorder+col)*4
		if cell < 0 || cell >= len(vram) {
			continue
		}
		word := vram[cell]
		character := int(word & 0x0FFF)
		palette := (word & 0xF000) >> 12

		if !banks.FixNonBlank[character] {
			continue
		}

		fixBase := character*32 + int(scanline%8)
		paletteBase := int(s.ActivePaletteBank)*4096 + int(palette)*16

		decode := func(n int) (a, b uint8) {
			idx := fixBase + n
			if idx < 0 || idx >= len(banks.FixRAM) {
				return 0, 0
			}
			pixel := banks.FixRAM[idx]
			return pixel & 0x0F, pixel >> 4
		}

		order := [4]int{16, 24, 0, 8}
		out := fbRow + col
		for _, n := range order {
			pixelA, pixelB := decode(n)
			if pixelA != 0 {
				s.FrameBuffer[out] = s.PaletteRGB565[paletteBase+int(pixelA)]
			}
			out++
			if pixelB != 0 {
				s.FrameBuffer[out] = s.PaletteRGB565[paletteBase+int(pixelB)]
			}
			out++
		}
	}
}
