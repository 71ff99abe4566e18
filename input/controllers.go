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

// validSelector reports whether the controller-mux selector register
// currently holds one of the three values that actually pass the
// joypad state through, per controller1/2/3ReadByte's switch. Any
// other value reads as all-ones (nothing connected).
func validSelector(selector uint8) bool {
	switch selector {
	case 0x00, 0x12, 0x1B:
		return true
	}
	return false
}

// Watchdog is the seam controller 1's data-port write kicks: any
// write to the port resets the watchdog countdown, since real
// software only ever writes here as a side effect of reading the
// controller in its main loop.
type Watchdog interface {
	Kick()
}

// Controller1 services the 300000-31FFFF window: player 1's buttons,
// gated by the selector register, plus the watchdog-kick side effect
// of a write: a byte write only kicks on the odd/low-byte half, so a
// composited word write, hitting both halves once each, kicks once.
type Controller1 struct {
	State    *State
	Watchdog Watchdog
}

func (h *Controller1) ReadByte(addr uint32) uint8 {
	if addr&1 == 0 && validSelector(h.State.selector) {
		return h.State.Input1
	}
	return 0xFF
}

func (h *Controller1) WriteByte(addr uint32, data uint8) {
	if addr&1 != 0 && h.Watchdog != nil {
		h.Watchdog.Kick()
	}
}

// Controller2 services the 340000-35FFFF window: player 2's buttons,
// gated by the same selector register. Writes have no effect.
type Controller2 struct {
	State *State
}

func (h *Controller2) ReadByte(addr uint32) uint8 {
	if addr&1 == 0 && validSelector(h.State.selector) {
		return h.State.Input2
	}
	return 0xFF
}

func (h *Controller2) WriteByte(addr uint32, data uint8) {}

// Controller3 services the 380000-39FFFF window: the Start/Select
// nibble (gated by the selector, reading 0x0F when ungated rather than
// 0xFF) and the selector register itself, which only the odd/low byte
// of a write updates.
type Controller3 struct {
	State *State
}

func (h *Controller3) ReadByte(addr uint32) uint8 {
	if addr&1 == 0 {
		if validSelector(h.State.selector) {
			return h.State.Input3
		}
		return 0x0F
	}
	return 0xFF
}

func (h *Controller3) WriteByte(addr uint32, data uint8) {
	if addr&1 != 0 {
		h.State.selector = data
	}
}
