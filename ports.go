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

package neocd

import (
	"neocd/clocks"
	"neocd/timers"
)

// watchdogKick adapts the Machine to input.Watchdog: a controller-1
// write to the odd (low) byte refreshes the watchdog countdown
// without changing its armed state.
type watchdogKick Machine

func (p *watchdogKick) Kick() {
	(*Machine)(p).Wheel.Timer(timers.Watchdog).SetDelay(timers.WatchdogDelay)
}

// watchdogControl adapts the Machine to memory.WatchdogControl for
// FF016F: 0 starts the countdown, nonzero stops it.
type watchdogControl Machine

func (p *watchdogControl) SetActive(active bool) {
	t := (*Machine)(p).Wheel.Timer(timers.Watchdog)
	if active {
		t.SetState(timers.Active)
	} else {
		t.SetState(timers.Stopped)
	}
}

// z80Control adapts the Machine to memory.Z80Control for FF0183:
// writing zero holds the Z80 in reset (the scheduler then burns its
// budget without running it); writing nonzero releases it and resets
// both the core and the sound chip.
type z80Control Machine

func (p *z80Control) SetEnabled(enabled bool) {
	(*Machine)(p).Sched.SetZ80Enabled(enabled)
}

func (p *z80Control) ResetSound() {
	m := (*Machine)(p)
	m.z80.Reset()
	m.YM.Reset()
}

// z80CommPort services the 320000-33FFFF window: the even byte reads
// back the Z80's last audio result; an even-byte write latches a
// sound command into the AudioCommand one-shot. The timer is armed
// with delay 1, not 0, so it fires on the next wheel advance, after
// the Z80 has run up to the write's master time; a write therefore
// always lands before the next Z80 instruction.
type z80CommPort Machine

func (p *z80CommPort) ReadByte(addr uint32) uint8 {
	if addr&0x1FFFF == 0 {
		return (*Machine)(p).audioResult
	}
	return 0xFF
}

func (p *z80CommPort) WriteByte(addr uint32, data uint8) {
	if addr&0x1FFFF != 0 {
		return
	}
	m := (*Machine)(p)
	t := m.Wheel.Timer(timers.AudioCommand)
	t.SetUserData(uint32(data))
	t.Arm(1)
}

// cdAudioPort adapts the Machine to memory.CDAudioPort for the
// FF0188/FF018A direct CD-audio sample registers: the sample at the
// current master-cycle position within the frame.
type cdAudioPort Machine

func (p *cdAudioPort) Playing() bool {
	m := (*Machine)(p)
	return m.disc != nil && m.disc.Playing() && !m.disc.IsData()
}

func (p *cdAudioPort) sampleIndex() int {
	m := (*Machine)(p)
	return m.Mixer.SampleIndex(m.Sched.CyclesElapsedInFrame(), int(clocks.CyclesPerFrame))
}

func (p *cdAudioPort) CurrentSampleLeft() uint16 {
	m := (*Machine)(p)
	return m.Mixer.CurrentSampleLeft(p.sampleIndex())
}

func (p *cdAudioPort) CurrentSampleRight() uint16 {
	m := (*Machine)(p)
	return m.Mixer.CurrentSampleRight(p.sampleIndex())
}

// paletteWatcher adapts the Machine to memory.PaletteWatcher: every
// palette-RAM write recomputes the matching RGB565 shadow entry.
type paletteWatcher Machine

func (p *paletteWatcher) PaletteWritten(index int) {
	m := (*Machine)(p)
	m.Video.ConvertColor(m.Banks, index)
}
