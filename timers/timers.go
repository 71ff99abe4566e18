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

// Package timers implements the ten-timer wheel that drives every
// suspension point in a frame: VBlank/HBlank interrupts, the CD-ROM's
// 64Hz/75Hz head-position ticks, the watchdog, the one-shot Z80 audio
// command post, and the YM2610's two programmable timers. A small
// value type (Timer) plus a fixed-size array aggregate (Wheel); no
// pointer from either back into the machine aggregate, only callbacks
// the owner installs once.
package timers

import "neocd/savestate"

// Name indexes the ten timers the console hardware exposes.
type Name int

const (
	Watchdog Name = iota
	Drawline
	Vbl
	Hbl
	VblReload
	Cdrom64Hz
	Cdrom75Hz
	AudioCommand
	Ym2610A
	Ym2610B

	count
)

// State is a Timer's armed/stopped state.
type State int

const (
	Stopped State = iota
	Active
)

// Callback fires exactly once when a Timer's delay reaches zero or
// below during Advance. Re-arming within the callback is expected and
// supported; the periodic timers all do it.
type Callback func(t *Timer)

// Timer is a single countdown; master-clock cycles only.
type Timer struct {
	state    State
	callback Callback
	delay    int32
	userData uint32
}

func (t *Timer) IsActive() bool   { return t.state == Active }
func (t *Timer) State() State     { return t.state }
func (t *Timer) Delay() int32     { return t.delay }
func (t *Timer) UserData() uint32 { return t.userData }

func (t *Timer) SetUserData(v uint32) { t.userData = v }
func (t *Timer) SetCallback(cb Callback) { t.callback = cb }

// SetState forces a state transition and immediately re-checks for a
// timeout, so activating an already-expired timer fires it.
func (t *Timer) SetState(s State) {
	t.state = s
	t.checkTimeout()
}

// SetDelay changes the countdown without altering the armed state.
func (t *Timer) SetDelay(delay int32) { t.delay = delay }

// Arm sets an absolute delay and activates the timer.
func (t *Timer) Arm(delay int32) {
	t.delay = delay
	t.state = Active
	t.checkTimeout()
}

// ArmRelative adds to the current delay and activates the timer; used
// by every self-re-arming callback (Vbl, VblReload, Hbl auto-repeat,
// Cdrom64Hz, Cdrom75Hz) so drift from the previous period does not
// accumulate.
func (t *Timer) ArmRelative(delta int32) {
	t.delay += delta
	t.state = Active
	t.checkTimeout()
}

// AdvanceTime subtracts elapsed master cycles from an active timer and
// fires its callback exactly once if the delay reaches zero or below.
func (t *Timer) AdvanceTime(elapsed int32) {
	if !t.IsActive() {
		return
	}
	t.delay -= elapsed
	t.checkTimeout()
}

func (t *Timer) checkTimeout() {
	if !t.IsActive() || t.delay > 0 {
		return
	}
	t.state = Stopped
	if t.callback != nil {
		t.callback(t)
	}
}

func (t *Timer) Save(w savestate.Writer) {
	w.PutU8(uint8(t.state))
	w.PutI32(t.delay)
	w.PutU32(t.userData)
}

func (t *Timer) Restore(r savestate.Reader) error {
	t.state = State(r.GetU8())
	t.delay = r.GetI32()
	t.userData = r.GetU32()
	return nil
}

// Wheel is the fixed set of ten timers. The zero value is not usable;
// construct with NewWheel.
type Wheel struct {
	timers [count]Timer
}

// NewWheel allocates a Wheel with every timer Stopped and no callback
// installed; the owner must call SetCallback for each Name it cares
// about before the first Reset/Advance.
func NewWheel() *Wheel {
	return &Wheel{}
}

// Timer returns the addressable Timer for name, so the owner can arm,
// inspect or install a callback on it.
func (w *Wheel) Timer(name Name) *Timer {
	return &w.timers[name]
}
