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

import "neocd/timers"

// Interrupt plumbing: four pending bits are OR'd and the
// highest-priority one decides the M68K IRQ level (VBL=1, either
// CD-ROM source=2, Raster=3). The level-2 autovector is latched from
// the pending CD source; when both are pending, the communication
// vector wins.

func (m *Machine) setInterrupt(bit uint8) {
	m.pendingInterrupts |= bit
}

func (m *Machine) clearInterrupt(bit uint8) {
	m.pendingInterrupts &^= bit
}

func (m *Machine) updateInterrupts() int {
	level := 0

	if m.pendingInterrupts&intVerticalBlank != 0 {
		level = 1
	}
	if m.pendingInterrupts&intCdromDecoder != 0 {
		level = 2
		m.cdromVector = vectorDecoder
	}
	if m.pendingInterrupts&intCdromCommunication != 0 {
		level = 2
		m.cdromVector = vectorCommunication
	}
	if m.pendingInterrupts&intRaster != 0 {
		level = 3
	}

	m.m68k.SetIRQ(level)
	return level
}

// CdromVector reports the autovector latched for the level-2 CD-ROM
// interrupt, for the M68K core's interrupt-acknowledge bridge.
func (m *Machine) CdromVector() uint32 { return m.cdromVector }

// PendingInterrupts exposes the raw pending bits, for tests and
// diagnostics.
func (m *Machine) PendingInterrupts() uint8 { return m.pendingInterrupts }

// Enable predicates: in the FF0002 mask, 0x500 gates the decoder
// (IRQ1) and 0x50 the communication (IRQ2) interrupt; in the FF0004
// mask, 0x030 gates VBL and 0x700 HBL.

func (m *Machine) isVBLEnabled() bool {
	return m.irqMask2&0x030 == 0x030
}

func (m *Machine) isHBLEnabled() bool {
	return m.irqMask2&0x700 == 0x700
}

func (m *Machine) isCdDecoderIRQEnabled() bool {
	return m.irqMask1&0x500 == 0x500 && m.irqMasterEnable
}

func (m *Machine) isCdCommunicationIRQEnabled() bool {
	return m.irqMask1&0x050 == 0x050 && m.irqMasterEnable && m.Mem.CDCommunicationEnabled()
}

// irqPort adapts the Machine to memory.IRQController for the FF0002/
// FF0004/FF000F registers.
type irqPort Machine

func (p *irqPort) m() *Machine { return (*Machine)(p) }

func (p *irqPort) SetMask1(v uint16) {
	m := p.m()
	m.irqMask1 = v
	if m.isCdDecoderIRQEnabled() {
		// Used to detect disc activity within the frame, for the
		// skip-CD-loading preference.
		m.irq1EnabledThisFrame = true
	}
}

func (p *irqPort) SetMask2(v uint16) {
	p.m().irqMask2 = v
}

func (p *irqPort) Mask2() uint16 { return p.m().irqMask2 }

func (p *irqPort) AcknowledgeDecoder() {
	m := p.m()
	m.clearInterrupt(intCdromDecoder)
	m.updateInterrupts()
}

func (p *irqPort) AcknowledgeCommunication() {
	m := p.m()
	m.clearInterrupt(intCdromCommunication)
	m.updateInterrupts()
}

// videoIRQPort adapts the Machine to video.IRQPort for the 3C0006-
// 3C000C register window.
type videoIRQPort Machine

func (p *videoIRQPort) m() *Machine { return (*Machine)(p) }

func (p *videoIRQPort) ScreenY() int { return p.m().Sched.ScreenY() }

func (p *videoIRQPort) TimesliceElapsedMaster() uint32 {
	return p.m().Sched.TimesliceElapsedMaster()
}

func (p *videoIRQPort) ArmHbl(delay uint32) {
	p.m().Wheel.Timer(timers.Hbl).Arm(int32(delay))
}

func (p *videoIRQPort) ClearRaster() {
	p.m().clearInterrupt(intRaster)
}

func (p *videoIRQPort) ClearVBlank() {
	p.m().clearInterrupt(intVerticalBlank)
}

func (p *videoIRQPort) UpdateInterrupts() {
	p.m().updateInterrupts()
}

// ymIRQPort adapts the Machine to ym2610.IRQPort: the chip's IRQ
// line is wired to the Z80's maskable interrupt input on real
// hardware.
type ymIRQPort Machine

func (p *ymIRQPort) SetYM2610IRQ(asserted bool) {
	m := (*Machine)(p)
	if asserted {
		m.z80.SetIRQ(1)
	} else {
		m.z80.SetIRQ(0)
	}
}
