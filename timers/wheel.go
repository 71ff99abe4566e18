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

package timers

import (
	"neocd/clocks"
	"neocd/savestate"
)

// TimeSlice returns the smallest positive delay among the active
// timers, bounded above by one frame's worth of master cycles. The
// scheduler runs each CPU for at most this many cycles before calling
// Advance again, so no timer can ever be "missed" mid-slice.
func (w *Wheel) TimeSlice() int32 {
	slice := int32(clocks.CyclesPerFrame)
	for i := range w.timers {
		t := &w.timers[i]
		if t.IsActive() && t.delay < slice {
			slice = t.delay
		}
	}
	return slice
}

// Advance subtracts elapsed master cycles from every timer in the
// wheel, firing any callback whose delay reaches zero or below exactly
// once. Timers are advanced in declared order; callbacks never rely
// on cross-timer ordering since each one only re-arms itself or a
// timer it owns outright.
func (w *Wheel) Advance(elapsed int32) {
	for i := range w.timers {
		w.timers[i].AdvanceTime(elapsed)
	}
}

// Reset re-arms the frame-loop timers to their power-on positions.
// cdz selects the halved Cdrom75Hz period the CDZ-family hardware
// runs its decode interrupt at.
func (w *Wheel) Reset(cdz bool) {
	w.Timer(Watchdog).SetState(Stopped)

	w.Timer(Drawline).Arm(int32(clocks.PixelToMaster(clocks.ActiveTop*clocks.ScreenWidth + clocks.ActiveLeft)))

	const vblIrqX = clocks.ActiveLeft / 2
	vblIrqY := clocks.ActiveTop + clocks.ActiveHeight
	w.Timer(Vbl).Arm(int32(clocks.PixelToMaster(vblIrqY*clocks.ScreenWidth + vblIrqX)))

	w.Timer(Hbl).SetState(Stopped)

	vblReloadX := (clocks.ActiveLeft + clocks.ActiveWidth) - 63
	w.Timer(VblReload).Arm(int32(clocks.PixelToMaster(vblIrqY*clocks.ScreenWidth + vblReloadX)))

	w.Timer(Cdrom64Hz).Arm(Cdrom64HzDelay)

	if cdz {
		w.Timer(Cdrom75Hz).Arm(Cdrom75HzDelay / 2)
	} else {
		w.Timer(Cdrom75Hz).Arm(Cdrom75HzDelay)
	}

	w.Timer(AudioCommand).SetState(Stopped)
	w.Timer(Ym2610A).SetState(Stopped)
	w.Timer(Ym2610B).SetState(Stopped)
}

// Watchdog/Cdrom timer periods, rounded half-away-from-zero from the
// master clock.
var (
	WatchdogDelay  = int32(clocks.RoundHalfAwayFromZero(clocks.MasterClock * 0.13516792))
	Cdrom64HzDelay = int32(clocks.RoundHalfAwayFromZero(float64(clocks.MasterClock) / 64.64))
	Cdrom75HzDelay = int32(clocks.RoundHalfAwayFromZero(float64(clocks.MasterClock) / 75.0))
)

// Save/Restore push every timer in declared Name order.
func (w *Wheel) Save(sw savestate.Writer) {
	for i := range w.timers {
		w.timers[i].Save(sw)
	}
}

func (w *Wheel) Restore(sr savestate.Reader) error {
	for i := range w.timers {
		if err := w.timers[i].Restore(sr); err != nil {
			return err
		}
	}
	return nil
}
