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

// Package input implements the controller multiplexer (the
// selector-gated joypad windows at 300000-39FFFF) and the vector/
// palette-bank switch latches at 3A0000-3BFFFF.
package input

import "neocd/savestate"

// Controller button bits. The same bit positions serve both joypads
// (Up/Down/Left/Right/A/B/C/D); Start/Select for both players are
// multiplexed onto controller 3's nibble.
const (
	Up    = 0x01
	Down  = 0x02
	Left  = 0x04
	Right = 0x08
	A     = 0x10
	B     = 0x20
	C     = 0x40
	D     = 0x80

	Controller1Start  = 0x01
	Controller1Select = 0x02
	Controller2Start  = 0x04
	Controller2Select = 0x08
)

// State holds the two joypads' button state, the Start/Select nibble
// shared by both, and the selector register controller3's handler
// writes.
type State struct {
	Input1   uint8
	Input2   uint8
	Input3   uint8
	selector uint8
}

// New constructs a State in its power-on condition.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// Reset restores power-on defaults: both joypads idle-high (active
// low, no buttons pressed), Input3 idle at 0x0F (it is only ever 4
// bits wide, so its upper nibble stays 0).
func (s *State) Reset() {
	s.Input1 = 0xFF
	s.Input2 = 0xFF
	s.Input3 = 0x0F
	s.selector = 0
}

// SetInput latches a new button state for both joypads and the
// Start/Select nibble. Called by the frontend once per frame.
func (s *State) SetInput(input1, input2, input3 uint8) {
	s.Input1 = input1
	s.Input2 = input2
	s.Input3 = input3 & 0x0F
}

func (s *State) Save(w savestate.Writer) {
	w.PutU8(s.Input1)
	w.PutU8(s.Input2)
	w.PutU8(s.Input3)
	w.PutU8(s.selector)
}

func (s *State) Restore(r savestate.Reader) error {
	s.Input1 = r.GetU8()
	s.Input2 = r.GetU8()
	s.Input3 = r.GetU8()
	s.selector = r.GetU8()
	if r.Failed() {
		return errShort
	}
	return nil
}
