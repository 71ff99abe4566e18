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

import "neocd/savestate"

// Save/Restore persist the register-level video state only. The
// framebuffer and palette RGB565 shadow are regenerated (the former
// is fully repainted every frame; the latter
// is rebuilt by ConvertPalette once the palette bank itself has been
// restored), so neither is serialized here.
func (s *State) Save(w savestate.Writer) {
	w.PutU32(s.ActivePaletteBank)
	w.PutU32(s.AutoAnimationCounter)
	w.PutU32(s.AutoAnimationSpeed)
	w.PutU32(s.AutoAnimationFrameCounter)
	w.PutU8(boolToU8(s.AutoAnimationDisabled))
	w.PutU32(s.HirqControl)
	w.PutU32(s.HirqRegister)
	w.PutU32(s.VideoramOffset)
	w.PutU32(s.VideoramModulo)
	w.PutU32(s.VideoramData)
	w.PutU32(s.spriteX)
	w.PutU32(s.spriteY)
	w.PutU32(s.spriteZoomX)
	w.PutU32(s.spriteZoomY)
	w.PutU32(s.spriteClipping)
}

func (s *State) Restore(r savestate.Reader) error {
	s.ActivePaletteBank = r.GetU32()
	s.AutoAnimationCounter = r.GetU32()
	s.AutoAnimationSpeed = r.GetU32()
	s.AutoAnimationFrameCounter = r.GetU32()
	s.AutoAnimationDisabled = r.GetU8() != 0
	s.HirqControl = r.GetU32()
	s.HirqRegister = r.GetU32()
	s.VideoramOffset = r.GetU32()
	s.VideoramModulo = r.GetU32()
	s.VideoramData = r.GetU32()
	s.spriteX = r.GetU32()
	s.spriteY = r.GetU32()
	s.spriteZoomX = r.GetU32()
	s.spriteZoomY = r.GetU32()
	s.spriteClipping = r.GetU32()
	if r.Failed() {
		return errShort
	}
	return nil
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
