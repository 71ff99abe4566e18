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

// sprDecodeTable spreads each bit of a packed sprite-RAM byte into
// its own nibble: bit n of the input becomes nibble n of the output
// (0 or 1). Four such spread bytes are OR'd together (shifted by
// 0..3) to recombine a 4-bit-planar sprite byte quad into one packed
// pixel word. Generated at package init rather than transcribed as a
// 256-entry literal, in the same deterministic-table spirit as
// memory.Banks' Y-zoom table.
var sprDecodeTable [256]uint32

func init() {
	for i := 0; i < 256; i++ {
		var v uint32
		for bit := 0; bit < 8; bit++ {
			if i&(1<<uint(bit)) != 0 {
				v |= 1 << uint(4*bit)
			}
		}
		sprDecodeTable[i] = v
	}
}

// xZoomTable selects, for a given zoomX factor (0-15) and sub-index
// (0-15), whether that source pixel column survives the horizontal
// zoom: row N (N*16..N*16+15) is the hardware's 16-flag pattern for
// zoom factor N. Unlike the Y-zoom table, the row patterns have no
// closed form, so the table is spelled out.
var xZoomTable = [256]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0,
	0, 0, 1, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0,
	0, 0, 1, 0, 1, 0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 0,
	0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 0, 0, 1, 0, 1, 0,
	0, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0,
	1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0, 1, 0,
	1, 0, 1, 0, 1, 0, 1, 0, 1, 1, 1, 0, 1, 0, 1, 0,
	1, 0, 1, 1, 1, 0, 1, 0, 1, 1, 1, 0, 1, 0, 1, 0,
	1, 0, 1, 1, 1, 0, 1, 0, 1, 1, 1, 0, 1, 0, 1, 1,
	1, 0, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 0, 1, 1,
	1, 0, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
}

func isSpriteOnScanline(scanline, y, clipping uint32) bool {
	return clipping == 0 || clipping >= 0x20 || ((scanline-y)&0x1FF) < clipping*0x10
}

// CreateSpriteList walks the sprite attribute table (VRAM 0x8200) and
// fills spriteList with the indices of every sprite live on scanline.
// spriteList must have capacity for at least MaxSpritesPerLine+1
// entries; entries past the returned count (plus one trailing zero)
// are left zeroed. The walk reads s.spriteY/s.spriteClipping as the
// chain-carried starting values but does not write them back; only
// DrawSprites updates the chain state.
func (s *State) CreateSpriteList(banks *memory.Banks, scanline uint32, spriteList []uint16) uint16 {
	vram := banks.VideoRAM
	attrBase := 0x8200

	var activeCount uint16
	y := s.spriteY
	clipping := s.spriteClipping
	spriteIsOnScanline := false

	for spriteNumber := uint16(0); spriteNumber < MaxSpritesPerScreen; spriteNumber++ {
		idx := attrBase + int(spriteNumber)
		var attributes uint16
		if idx < len(vram) {
			attributes = vram[idx]
		}

		if attributes&0x40 == 0 {
			y = 0x200 - uint32(attributes>>7)
			clipping = uint32(attributes & 0x3F)
			spriteIsOnScanline = isSpriteOnScanline(scanline, y, clipping)
		}

		if !spriteIsOnScanline || clipping == 0 {
			continue
		}

		if int(activeCount) < len(spriteList) {
			spriteList[activeCount] = spriteNumber
		}
		activeCount++

		if activeCount >= MaxSpritesPerLine {
			break
		}
	}

	for i := int(activeCount); i < len(spriteList); i++ {
		spriteList[i] = 0
	}

	return activeCount
}

// DrawSprites draws every sprite named in spriteList[0:spritesToDraw]
// (plus the trailing entry, which re-draws sprite zero). It updates
// s.spriteX/Y/zoomX/zoomY/clipping as it walks chained sprites,
// carrying the final values forward to the next scanline's
// CreateSpriteList call.
func (s *State) DrawSprites(banks *memory.Banks, scanline uint32, spriteList []uint16, spritesToDraw uint16) {
	for current := uint16(0); current <= spritesToDraw; current++ {
		if int(current) >= len(spriteList) {
			break
		}
		spriteNumber := spriteList[current]

		// Sprite zero is skipped on its first occurrence: it is drawn
		// again, deliberately, as the trailing list entry.
		if spriteNumber == 0 && current < spritesToDraw {
			continue
		}

		vram := banks.VideoRAM
		word := func(base int) uint16 {
			idx := base + int(spriteNumber)
			if idx < 0 || idx >= len(vram) {
				return 0
			}
			return vram[idx]
		}
		attr1 := word(0x8000)
		attr2 := word(0x8200)
		attr3 := word(0x8400)

		if attr2&0x40 != 0 {
			s.spriteX = (s.spriteX + s.spriteZoomX + 1) & 0x1FF
			s.spriteZoomX = uint32(attr1>>8) & 0xF
		} else {
			s.spriteZoomY = uint32(attr1 & 0xFF)
			s.spriteZoomX = uint32(attr1>>8) & 0xF
			s.spriteClipping = uint32(attr2 & 0x3F)
			s.spriteY = 0x200 - uint32(attr2>>7)
			s.spriteX = uint32(attr3 >> 7)
		}

		s.drawSprite(banks, uint32(spriteNumber), s.spriteX, s.spriteY, s.spriteZoomX, s.spriteZoomY, scanline, s.spriteClipping)
	}
}

type spriteVisibility int

const (
	spriteNormal spriteVisibility = iota
	spriteClipped
	spriteInvisible
)

func withinLimits(v uint32) bool {
	return v >= LeftBorder && v <= RightBorder
}

// drawSprite draws one sprite's contribution to scanline.
// x/y/zoomX/zoomY/clipping are the resolved attribute values
// DrawSprites just computed for spriteNumber.
func (s *State) drawSprite(banks *memory.Banks, spriteNumber, x, y, zoomX, zoomY, scanline, clipping uint32) {
	spriteLine := (scanline - y) & 0x1FF
	zoomLine := spriteLine & 0xFF
	invert := spriteLine&0x100 != 0

	x2 := (x + zoomX + 1) & 0x1FF
	x1 := x & 0x1FF

	var status spriteVisibility
	switch {
	case !withinLimits(x1) && !withinLimits(x2):
		status = spriteInvisible
	case !withinLimits(x1) || !withinLimits(x2):
		status = spriteClipped
	default:
		status = spriteNormal
	}

	if status == spriteInvisible {
		return
	}

	if invert {
		zoomLine ^= 0xFF
	}

	if clipping > 0x20 {
		zoomLine = zoomLine % ((zoomY + 1) << 1)
		if zoomLine > zoomY {
			zoomLine = ((zoomY+1)<<1 - 1) - zoomLine
			invert = !invert
		}
	}

	yZoomIdx := zoomY*256 + zoomLine
	var tileEntry byte
	if int(yZoomIdx) < len(banks.YZoomTable) {
		tileEntry = banks.YZoomTable[yZoomIdx]
	}
	tileLine := uint32(tileEntry & 0xF)
	tileNumber := uint32(tileEntry >> 4)

	if invert {
		tileLine ^= 0x0F
		tileNumber ^= 0x1F
	}

	vram := banks.VideoRAM
	vwordAt := func(idx uint32) uint16 {
		if int(idx) >= len(vram) {
			return 0
		}
		return vram[idx]
	}
	tileIndex := uint32(vwordAt(spriteNumber*64 + tileNumber*2))
	tileControl := uint32(vwordAt(spriteNumber*64 + tileNumber*2 + 1))

	if tileControl&2 != 0 {
		tileLine ^= 0x0F
	}

	if !s.AutoAnimationDisabled {
		switch {
		case tileControl&0x0008 != 0:
			tileIndex = (tileIndex &^ 0x07) | (s.AutoAnimationCounter & 0x07)
		case tileControl&0x0004 != 0:
			tileIndex = (tileIndex &^ 0x03) | (s.AutoAnimationCounter & 0x03)
		}
	}

	paletteBase := int(s.ActivePaletteBank)*0x1000 + int(tileControl>>8)*16

	spriteBase := int(tileIndex&0x7FFF)*128 + int(tileLine*4)
	sprByte := func(off int) uint8 {
		idx := spriteBase + off
		if idx < 0 || idx >= len(banks.SpriteRAM) {
			return 0
		}
		return banks.SpriteRAM[idx]
	}

	pixelData := uint32(sprDecodeTable[sprByte(64+1)]) |
		uint32(sprDecodeTable[sprByte(64+0)])<<1 |
		uint32(sprDecodeTable[sprByte(64+3)])<<2 |
		uint32(sprDecodeTable[sprByte(64+2)])<<3

	pixelDataB := uint32(sprDecodeTable[sprByte(0+1)]) |
		uint32(sprDecodeTable[sprByte(0+0)])<<1 |
		uint32(sprDecodeTable[sprByte(0+3)])<<2 |
		uint32(sprDecodeTable[sprByte(0+2)])<<3

	rowBase := int(scanline-16) * FrameWidth

	fbIndex := int(x)
	if x > 0x1F0 {
		fbIndex -= 0x200
	}
	fbIndex -= LeftBorder
	fbIndex += rowBase

	increment := 1
	if tileControl&1 != 0 {
		fbIndex += int(zoomX)
		increment = -1
	}

	if status == spriteClipped {
		low := rowBase
		high := rowBase + FrameWidth
		s.drawSpriteLineClipped(zoomX, increment, pixelData, pixelDataB, paletteBase, fbIndex, low, high)
	} else {
		s.drawSpriteLine(zoomX, increment, pixelData, pixelDataB, paletteBase, fbIndex)
	}
}

// drawSpriteLine emits one unclipped sprite scanline: two 8-pixel
// halves, each gated per-column by the X-zoom pattern.
func (s *State) drawSpriteLine(zoomX uint32, increment int, pixelData, pixelDataB uint32, paletteBase, fbIndex int) {
	out := fbIndex
	row := zoomX * 16

	for i := 0; i < 8; i++ {
		if xZoomTable[row+uint32(i)] != 0 {
			mask := uint32(0xF) << uint(i*4)
			if pixelData&mask != 0 && out >= 0 && out < len(s.FrameBuffer) {
				s.FrameBuffer[out] = s.PaletteRGB565[paletteBase+int((pixelData>>uint(i*4))&0xF)]
			}
			out += increment
		}
	}
	for i := 0; i < 8; i++ {
		if xZoomTable[row+8+uint32(i)] != 0 {
			mask := uint32(0xF) << uint(i*4)
			if pixelDataB&mask != 0 && out >= 0 && out < len(s.FrameBuffer) {
				s.FrameBuffer[out] = s.PaletteRGB565[paletteBase+int((pixelDataB>>uint(i*4))&0xF)]
			}
			out += increment
		}
	}
}

// drawSpriteLineClipped is drawSpriteLine with an additional
// [low,high) framebuffer-index window check, for sprites straddling
// the screen edge.
func (s *State) drawSpriteLineClipped(zoomX uint32, increment int, pixelData, pixelDataB uint32, paletteBase, fbIndex, low, high int) {
	out := fbIndex
	row := zoomX * 16

	inWindow := func(v int) bool { return v >= low && v < high && v >= 0 && v < len(s.FrameBuffer) }

	for i := 0; i < 8; i++ {
		if xZoomTable[row+uint32(i)] != 0 {
			mask := uint32(0xF) << uint(i*4)
			if pixelData&mask != 0 && inWindow(out) {
				s.FrameBuffer[out] = s.PaletteRGB565[paletteBase+int((pixelData>>uint(i*4))&0xF)]
			}
			out += increment
		}
	}
	for i := 0; i < 8; i++ {
		if xZoomTable[row+8+uint32(i)] != 0 {
			mask := uint32(0xF) << uint(i*4)
			if pixelDataB&mask != 0 && inWindow(out) {
				s.FrameBuffer[out] = s.PaletteRGB565[paletteBase+int((pixelDataB>>uint(i*4))&0xF)]
			}
			out += increment
		}
	}
}

// DrawBlackLine fills scanline with colour 0, used while the video
// generator is disabled at the register level.
func (s *State) DrawBlackLine(scanline uint32) {
	row := int(scanline-16) * FrameWidth
	for i := 0; i < FrameWidth; i++ {
		s.FrameBuffer[row+i] = 0
	}
}

// DrawEmptyLine fills scanline with the active palette bank's
// background colour (palette index 4095).
func (s *State) DrawEmptyLine(scanline uint32) {
	row := int(scanline-16) * FrameWidth
	color := s.PaletteRGB565[int(s.ActivePaletteBank)*0x1000+4095]
	for i := 0; i < FrameWidth; i++ {
		s.FrameBuffer[row+i] = color
	}
}
