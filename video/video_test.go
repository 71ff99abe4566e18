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
	"testing"

	"github.com/stretchr/testify/require"

	"neocd/memory"
	"neocd/savestate"
)

func TestResetDefaultsMatchOriginalNonZeroSpriteState(t *testing.T) {
	s := New()
	require.Equal(t, uint32(15), s.spriteZoomX)
	require.Equal(t, uint32(255), s.spriteZoomY)
	require.Equal(t, uint32(0x20), s.spriteClipping)
	require.Equal(t, uint32(HirqDisable), s.HirqControl)
}

func TestConvertColorShufflesPaletteBits(t *testing.T) {
	banks := memory.NewBanks()
	s := New()

	// 0xFFFF: all four 4-bit fields and both high bits set.
	banks.Palette[0] = 0xFFFF
	s.ConvertColor(banks, 0)
	require.Equal(t, uint16(0xFFFF), s.PaletteRGB565[0])

	banks.Palette[1] = 0x0000
	s.ConvertColor(banks, 1)
	require.Equal(t, uint16(0), s.PaletteRGB565[1])

	// Only the red nibble (bits 0x0F00) set: shifted left 4 into the
	// top four bits of the RGB565 red field per the shuffle formula.
	banks.Palette[2] = 0x0F00
	s.ConvertColor(banks, 2)
	require.Equal(t, uint16(0x0F00<<4), s.PaletteRGB565[2])
}

func TestConvertPaletteCoversEveryEntry(t *testing.T) {
	banks := memory.NewBanks()
	s := New()
	// i+1 gives every entry a non-zero colour word; a zero word
	// converts to zero (see TestConvertColorShufflesPaletteBits).
	for i := range banks.Palette {
		banks.Palette[i] = uint16(i + 1)
	}
	s.ConvertPalette(banks)
	for i := range banks.Palette {
		require.NotEqual(t, uint16(0), s.PaletteRGB565[i], "index %d should have converted", i)
	}
}

func TestDrawBlackLineClearsRow(t *testing.T) {
	s := New()
	for i := range s.FrameBuffer {
		s.FrameBuffer[i] = 0xFFFF
	}
	s.DrawBlackLine(16)
	for i := 0; i < FrameWidth; i++ {
		require.Equal(t, uint16(0), s.FrameBuffer[i])
	}
	require.Equal(t, uint16(0xFFFF), s.FrameBuffer[FrameWidth])
}

func TestDrawEmptyLineUsesBackgroundPaletteEntry(t *testing.T) {
	s := New()
	s.PaletteRGB565[4095] = 0x1234
	s.DrawEmptyLine(17)
	row := FrameWidth
	for i := 0; i < FrameWidth; i++ {
		require.Equal(t, uint16(0x1234), s.FrameBuffer[row+i])
	}
}

func TestIsSpriteOnScanlineClippingZeroMeansAlwaysOn(t *testing.T) {
	require.True(t, isSpriteOnScanline(100, 50, 0))
}

func TestIsSpriteOnScanlineRespectsWindow(t *testing.T) {
	// clipping*0x10 = 0x10 = 16 lines starting at y.
	require.True(t, isSpriteOnScanline(50, 40, 1))
	require.False(t, isSpriteOnScanline(60, 40, 1))
}

func TestCreateSpriteListSkipsZeroClippingSprites(t *testing.T) {
	banks := memory.NewBanks()
	s := New()

	// Sprite 0: clipping 0 (never drawn), not chained.
	banks.VideoRAM[0x8200+0] = 0

	list := make([]uint16, MaxSpritesPerLine+1)
	count := s.CreateSpriteList(banks, 16, list)
	require.Equal(t, uint16(0), count)
}

func TestCreateSpriteListFindsOnScreenSprite(t *testing.T) {
	banks := memory.NewBanks()
	s := New()

	// Sprite 1: y=16 (attr>>7 gives 0x200-16=0x1F0 -> attr=(0x200-16)<<7),
	// clipping 0x20 (always-on per isSpriteOnScanline).
	attr := uint16(((0x200 - 16) << 7) | 0x20)
	banks.VideoRAM[0x8200+1] = attr

	list := make([]uint16, MaxSpritesPerLine+1)
	count := s.CreateSpriteList(banks, 16, list)
	require.GreaterOrEqual(t, count, uint16(1))
	require.Contains(t, list[:count], uint16(1))
}

func TestDrawFixSkipsTransparentTile(t *testing.T) {
	banks := memory.NewBanks()
	s := New()

	// Character 0 has no non-blank pixel (FixNonBlank[0] == false), so
	// drawFix must not touch the framebuffer at all for this scanline.
	for i := range s.FrameBuffer {
		s.FrameBuffer[i] = 0xBEEF
	}
	s.DrawFix(banks, 16)
	for i := 0; i < FrameWidth; i++ {
		require.Equal(t, uint16(0xBEEF), s.FrameBuffer[i])
	}
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	s := New()
	s.ActivePaletteBank = 1
	s.AutoAnimationCounter = 3
	s.HirqControl = HirqRelative
	s.HirqRegister = 0x1234
	s.VideoramOffset = 0x55
	s.spriteX = 10
	s.spriteZoomX = 4

	w := savestate.NewWriter()
	s.Save(w)

	restored := New()
	require.NoError(t, restored.Restore(savestate.NewReader(savestate.Bytes(w))))

	require.Equal(t, s.ActivePaletteBank, restored.ActivePaletteBank)
	require.Equal(t, s.AutoAnimationCounter, restored.AutoAnimationCounter)
	require.Equal(t, s.HirqControl, restored.HirqControl)
	require.Equal(t, s.HirqRegister, restored.HirqRegister)
	require.Equal(t, s.VideoramOffset, restored.VideoramOffset)
	require.Equal(t, s.spriteX, restored.spriteX)
	require.Equal(t, s.spriteZoomX, restored.spriteZoomX)
}

func TestCreateSpriteListTruncatesAt96(t *testing.T) {
	banks := memory.NewBanks()
	s := New()

	// Every sprite always-on: clipping 0x20, y=0.
	for i := 0; i < MaxSpritesPerScreen; i++ {
		banks.VideoRAM[0x8200+i] = 0x20
	}

	list := make([]uint16, MaxSpritesPerLine+1)
	count := s.CreateSpriteList(banks, 100, list)
	require.Equal(t, uint16(MaxSpritesPerLine), count)
	// The list always carries a trailing zero after the last entry.
	require.Equal(t, uint16(0), list[MaxSpritesPerLine])
}

func TestSpriteChainInheritsPositionAndClipping(t *testing.T) {
	banks := memory.NewBanks()
	s := New()

	// Sprite 1: y=200, clipping 8, x=100, zoomX=15, zoomY=255.
	banks.VideoRAM[0x8000+1] = 0x0FFF
	banks.VideoRAM[0x8200+1] = uint16(((0x200 - 200) << 7) | 8)
	banks.VideoRAM[0x8400+1] = 100 << 7

	// Sprite 2: chained (bit 6), zoomX=7 in its own word 1.
	banks.VideoRAM[0x8000+2] = 7 << 8
	banks.VideoRAM[0x8200+2] = 0x40

	// Sprite 0 is re-drawn as the trailing list entry and its
	// attribute words go through the same chain logic; marking it
	// chained too keeps the walk's state observable afterwards.
	banks.VideoRAM[0x8000+0] = 7 << 8
	banks.VideoRAM[0x8200+0] = 0x40

	list := make([]uint16, MaxSpritesPerLine+1)
	count := s.CreateSpriteList(banks, 204, list)
	require.Equal(t, uint16(2), count)
	require.Equal(t, uint16(1), list[0])
	require.Equal(t, uint16(2), list[1])

	s.DrawSprites(banks, 204, list, count)

	// Sprite 2 advanced x to 100+15+1 = 116 and took zoomX=7; the
	// trailing sprite-0 entry advanced x once more (116+7+1) while y
	// and clipping carried over unchanged through the whole chain.
	require.Equal(t, uint32(116+7+1), s.spriteX)
	require.Equal(t, uint32(7), s.spriteZoomX)
	require.Equal(t, uint32(200), s.spriteY)
	require.Equal(t, uint32(8), s.spriteClipping)
}

func TestOnScanlinePredicateForFiniteClipping(t *testing.T) {
	// clipping < 0x20: on-scanline iff ((s - y) mod 512) < clipping*16.
	y := uint32(200)
	clipping := uint32(8)
	for s := uint32(0); s < 512; s++ {
		want := ((s - y) & 0x1FF) < clipping*16
		require.Equal(t, want, isSpriteOnScanline(s, y, clipping), "scanline %d", s)
	}
}
