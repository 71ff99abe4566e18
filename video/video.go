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

// Package video implements the raster video generator: the fix (text)
// layer, the zoomed sprite layer, palette conversion and the HIRQ
// register window the scheduler arms a timer against. Chip state
// (State) and the register handler (Registers) are split so the
// drawing code never touches bus concerns.
package video

// Frame geometry.
const (
	FrameWidth  = 320
	FrameHeight = 224
)

// MaxSpritesPerScreen/MaxSpritesPerLine bound the sprite list walk
// and the per-scanline draw list, the hardware's own limits.
const (
	MaxSpritesPerScreen = 381
	MaxSpritesPerLine   = 96
)

// LeftBorder/RightBorder bound the visible window sprite X
// coordinates are clipped against.
const (
	LeftBorder  = 160 - (FrameWidth / 2)
	RightBorder = (FrameWidth / 2) + 159
)

// HIRQ control bits, written through the low byte of 3C0006.
const (
	HirqDisable     = 0x00
	HirqEnable      = 0x10
	HirqRelative    = 0x20
	HirqVBlankLoad  = 0x40
	HirqAutoRepeat  = 0x80
)

// State holds the video generator's registers and the derived
// palette shadow and framebuffer. It never holds a pointer to the
// memory banks or the machine aggregate; every drawing method takes
// the banks it needs to read as an explicit argument.
type State struct {
	// PaletteRGB565 shadows the palette RAM (two 4096-entry banks),
	// converted to RGB565 on every palette write (ConvertColor/
	// ConvertPalette). Sized to memory.PaletteWords, not redeclared
	// from it, to avoid an import into a const block.
	PaletteRGB565 [8192]uint16

	// FrameBuffer is the 320x224 RGB565 output, one scanline at a time.
	FrameBuffer [FrameWidth * FrameHeight]uint16

	ActivePaletteBank uint32

	AutoAnimationCounter      uint32
	AutoAnimationSpeed        uint32
	AutoAnimationFrameCounter uint32
	AutoAnimationDisabled     bool

	HirqControl  uint32
	HirqRegister uint32

	VideoramOffset uint32
	VideoramModulo uint32
	VideoramData   uint32

	spriteX        uint32
	spriteY        uint32
	spriteZoomX    uint32
	spriteZoomY    uint32
	spriteClipping uint32
}

// SetActivePaletteBank implements input.PaletteBankSelector, the seam
// the 3A0000 switch-register writes use to pick between the two
// 4096-colour palette banks.
func (s *State) SetActivePaletteBank(bank uint32) {
	s.ActivePaletteBank = bank
}

// New constructs a State in its power-on condition.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores power-on defaults.
// sprite_zoomX/zoomY/clipping default to 15/255/0x20, not zero: the
// first frame's sprite-list walk reads these before any sprite
// attribute word has primed them.
func (s *State) Reset() {
	s.PaletteRGB565 = [8192]uint16{}
	s.FrameBuffer = [FrameWidth * FrameHeight]uint16{}
	s.ActivePaletteBank = 0
	s.AutoAnimationCounter = 0
	s.AutoAnimationSpeed = 0
	s.AutoAnimationFrameCounter = 0
	s.AutoAnimationDisabled = false
	s.HirqControl = HirqDisable
	s.HirqRegister = 0
	s.VideoramOffset = 0
	s.VideoramModulo = 0
	s.VideoramData = 0
	s.spriteX = 0
	s.spriteY = 0
	s.spriteZoomX = 15
	s.spriteZoomY = 255
	s.spriteClipping = 0x20
}
