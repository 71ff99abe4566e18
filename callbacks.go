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
	"math"

	"neocd/clocks"
	"neocd/logger"
	"neocd/timers"
	"neocd/video"
)

// installTimerCallbacks wires every timer-wheel entry to its machine
// behaviour. Callbacks re-arm themselves with ArmRelative so period
// drift from firing mid-slice never accumulates.
func (m *Machine) installTimerCallbacks() {
	w := m.Wheel

	w.Timer(timers.Watchdog).SetDelay(timers.WatchdogDelay)
	w.Timer(timers.Watchdog).SetCallback(func(*timers.Timer) {
		logger.Log("neocd", "watchdog timer triggered; machine reset")
		m.m68k.Reset()
	})

	w.Timer(timers.Drawline).SetCallback(m.drawlineCallback)
	w.Timer(timers.Vbl).SetCallback(m.vblCallback)
	w.Timer(timers.Hbl).SetCallback(m.hirqCallback)
	w.Timer(timers.VblReload).SetCallback(m.vblReloadCallback)
	w.Timer(timers.Cdrom64Hz).SetCallback(m.cdrom64HzCallback)
	w.Timer(timers.Cdrom75Hz).SetCallback(m.cdrom75HzCallback)
	w.Timer(timers.AudioCommand).SetCallback(m.audioCommandCallback)

	w.Timer(timers.Ym2610A).SetUserData(0)
	w.Timer(timers.Ym2610A).SetCallback(m.ym2610TimerCallback)
	w.Timer(timers.Ym2610B).SetUserData(1)
	w.Timer(timers.Ym2610B).SetCallback(m.ym2610TimerCallback)
}

// drawlineCallback renders the current scanline and re-arms for the
// next one: active lines re-arm one line later; the line after the
// active area re-arms across the vertical border to the first active
// line of the next frame.
func (m *Machine) drawlineCallback(t *timers.Timer) {
	scanline := uint32(m.Sched.ScreenY())

	const bottom = clocks.ActiveTop + clocks.ActiveHeight

	if scanline >= clocks.ActiveTop && scanline < bottom {
		if !m.fastForward {
			m.drawScanline(scanline)
		}
		t.ArmRelative(int32(clocks.PixelToMaster(clocks.ScreenWidth)))
	} else if scanline == bottom {
		t.ArmRelative(int32(clocks.PixelToMaster((clocks.ScreenHeight - bottom + clocks.ActiveTop) * clocks.ScreenWidth)))
	}
}

func (m *Machine) drawScanline(scanline uint32) {
	if !m.Mem.VideoEnabled() {
		m.Video.DrawBlackLine(scanline)
		return
	}

	m.Video.DrawEmptyLine(scanline)

	if m.Mem.SprLayerEnabled() {
		// The hardware alternates between two scratch areas of VRAM
		// for the per-line sprite list.
		address := 0x8600
		if scanline&1 != 0 {
			address = 0x8680
		}
		list := m.Banks.VideoRAM[address : address+video.MaxSpritesPerLine+1]
		active := m.Video.CreateSpriteList(m.Banks, scanline, list)
		m.Video.DrawSprites(m.Banks, scanline, list, active)
	}

	if m.Mem.FixLayerEnabled() {
		m.Video.DrawFix(m.Banks, scanline)
	}
}

// vblCallback raises the VBlank interrupt when enabled, steps the
// auto-animation counter and re-arms one frame later.
func (m *Machine) vblCallback(t *timers.Timer) {
	if m.isVBLEnabled() {
		m.setInterrupt(intVerticalBlank)
		m.updateInterrupts()
	}

	if m.Video.AutoAnimationFrameCounter == 0 {
		m.Video.AutoAnimationFrameCounter = m.Video.AutoAnimationSpeed
		m.Video.AutoAnimationCounter++
	} else {
		m.Video.AutoAnimationFrameCounter--
	}

	t.ArmRelative(int32(clocks.PixelToMaster(clocks.ScreenWidth * clocks.ScreenHeight)))
}

// hirqCallback raises the raster interrupt when both the video HIRQ
// enable bit and the interrupt mask allow it, then self-re-arms when
// auto-repeat is on. Neo Drift Out programs a reload of 0xFFFFFFFF
// with auto-repeat; the clamp keeps the re-arm delay inside the
// timer's signed 32-bit range.
func (m *Machine) hirqCallback(t *timers.Timer) {
	if m.Video.HirqControl&video.HirqEnable != 0 && m.isHBLEnabled() {
		m.setInterrupt(intRaster)
		m.updateInterrupts()
	}

	if m.Video.HirqControl&video.HirqAutoRepeat != 0 && m.Video.HirqRegister != 0xFFFFFFFF {
		maxPixels := uint32(clocks.MasterToPixel(math.MaxInt32 - 4))
		pixels := m.Video.HirqRegister + 1
		if pixels < 1 {
			pixels = 1
		}
		if pixels > maxPixels {
			pixels = maxPixels
		}
		t.ArmRelative(int32(clocks.PixelToMaster(int(pixels))))
	}
}

// vblReloadCallback re-arms the Hbl timer from the HIRQ reload
// register when the vblank-load control bit is set, then re-arms
// itself one frame later. The Hbl arm folds in this timer's own
// (zero-or-negative) residual delay so the reload is measured from
// this timer's exact expiry point.
func (m *Machine) vblReloadCallback(t *timers.Timer) {
	if m.Video.HirqControl&video.HirqVBlankLoad != 0 {
		m.Wheel.Timer(timers.Hbl).Arm(t.Delay() + int32(clocks.PixelToMaster(int(m.Video.HirqRegister+1))))
	}

	t.ArmRelative(int32(clocks.PixelToMaster(clocks.ScreenWidth * clocks.ScreenHeight)))
}

// cdrom64HzCallback raises the CD communication interrupt while the
// disc is idle; while playing, the 75Hz callback owns that duty.
func (m *Machine) cdrom64HzCallback(t *timers.Timer) {
	t.ArmRelative(timers.Cdrom64HzDelay)

	if m.disc != nil && m.disc.Playing() {
		return
	}

	if m.isCdCommunicationIRQEnabled() {
		m.setInterrupt(intCdromCommunication)
		m.updateInterrupts()
	}
}

// cdrom75HzCallback is the disc tick: decode a sector into the
// LC8951, raise the decoder interrupt on a fresh DECI edge, advance
// the head (every other tick for CDZ audio playback) and raise the
// communication interrupt.
func (m *Machine) cdrom75HzCallback(t *timers.Timer) {
	if m.isCDZ {
		t.ArmRelative(timers.Cdrom75HzDelay / 2)
	} else {
		t.ArmRelative(timers.Cdrom75HzDelay)
	}

	if m.disc == nil || !m.disc.Playing() {
		return
	}

	if m.LC.SectorDecoded() && m.isCdDecoderIRQEnabled() {
		m.setInterrupt(intCdromDecoder)
		m.updateInterrupts()
		m.cdSectorDecodedThisFrame = true
	}

	if m.disc.IsData() {
		m.cdzIrq1Divisor = 0
	} else if m.isCDZ {
		// CDZ drives this timer at 150Hz; audio-track head movement
		// still happens at 75Hz, so every other tick is skipped.
		m.cdzIrq1Divisor ^= 1
	}

	if m.cdzIrq1Divisor == 0 {
		m.disc.AdvancePosition()
	}

	if m.isCdCommunicationIRQEnabled() {
		m.setInterrupt(intCdromCommunication)
		m.updateInterrupts()
	}
}

// audioCommandCallback posts the latched sound command to the Z80
// and pulses its NMI. The one-shot is armed with delay 1 from the
// Z80-comm write handler so the command only lands after the Z80 has
// caught up to the write's master time.
func (m *Machine) audioCommandCallback(t *timers.Timer) {
	m.audioCommand = uint8(t.UserData())

	if !m.z80NMIDisable {
		if nmi, ok := m.z80.(NMICore); ok {
			nmi.PulseNMI()
		}
	}
}

// ym2610TimerCallback forwards a wheel expiry to the chip's overflow
// handler and re-arms for another period while the timer's load bit
// is still set.
func (m *Machine) ym2610TimerCallback(t *timers.Timer) {
	var rearm bool
	var steps int32

	if t.UserData() == 0 {
		rearm = m.YM.TimerAOverflow()
		steps = m.YM.TimerAPeriodSteps()
	} else {
		rearm = m.YM.TimerBOverflow()
		steps = m.YM.TimerBPeriodSteps()
	}

	if rearm {
		t.ArmRelative(clocks.YM2610StepsToMaster(steps))
	}
}

// ymTimerPort adapts the Machine to ym2610.TimerPort: a load-bit edge
// on register 0x27 arms or stops the corresponding wheel entry.
type ymTimerPort Machine

func (p *ymTimerPort) YM2610TimerChanged(which int, periodSteps int32) {
	m := (*Machine)(p)
	name := timers.Ym2610A
	if which != 0 {
		name = timers.Ym2610B
	}
	t := m.Wheel.Timer(name)
	if periodSteps == 0 {
		t.SetState(timers.Stopped)
		return
	}
	t.Arm(clocks.YM2610StepsToMaster(periodSteps))
}
