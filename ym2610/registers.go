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

package ym2610

// writePortA dispatches a port-0 register write: SSG (0x00-0x0D),
// timers and key-on (0x24-0x28), LFO (0x22), and FM channels 1/2
// (0x30-0xB6). The address bands follow the documented OPNA/OPNB
// register map, simplified where nothing depends on bit-exact silicon
// layout (see the channel/operator select comment below).
func (c *Chip) writePortA(reg, data uint8) {
	switch {
	case reg <= 0x0D:
		c.ssg.writeRegister(reg, data)
		return
	case reg == 0x22:
		c.lfoEnable = data&0x08 != 0
		c.lfoFreq = data & 0x07
		return
	case reg == 0x24:
		c.timerA = (c.timerA & 0x003) | uint16(data)<<2
		return
	case reg == 0x25:
		c.timerA = (c.timerA & 0x3FC) | uint16(data&0x03)
		return
	case reg == 0x26:
		c.timerB = data
		return
	case reg == 0x27:
		c.writeTimerControl(data)
		return
	case reg == 0x28:
		c.writeKeyOn(data)
		return
	case reg >= 0x30 && reg <= 0xB6:
		c.writeFMOperatorOrChannel(0, reg)
		c.writeFMRegister(0, reg, data)
		return
	}
}

// writePortB dispatches a port-1 register write: the ADPCM-A control
// block (0x00-0x2D) and FM channels 4/5 (0x30-0xB6).
func (c *Chip) writePortB(reg, data uint8) {
	switch {
	case reg <= 0x2D:
		c.writeADPCMA(reg, data)
		return
	case reg >= 0x30 && reg <= 0xB6:
		c.writeFMOperatorOrChannel(1, reg)
		c.writeFMRegister(1, reg, data)
		return
	}
}

// writeTimerControl implements register 0x27: bits 0/1 start timer
// A/B, bits 2/3 enable their IRQ flag, bits 4/5 acknowledge (clear) a
// latched overflow flag. Load-bit edges are reported through the
// TimerPort so the machine can arm or stop the shared wheel entries.
func (c *Chip) writeTimerControl(data uint8) {
	loadA := data&0x01 != 0
	loadB := data&0x02 != 0

	if loadA != c.timerAEnable {
		c.timerAEnable = loadA
		if loadA {
			c.timers.YM2610TimerChanged(0, c.TimerAPeriodSteps())
		} else {
			c.timers.YM2610TimerChanged(0, 0)
		}
	}
	if loadB != c.timerBEnable {
		c.timerBEnable = loadB
		if loadB {
			c.timers.YM2610TimerChanged(1, c.TimerBPeriodSteps())
		} else {
			c.timers.YM2610TimerChanged(1, 0)
		}
	}

	c.timerAIRQEnable = data&0x04 != 0
	c.timerBIRQEnable = data&0x08 != 0

	if data&0x10 != 0 {
		c.statusFlags &^= statusTimerA
	}
	if data&0x20 != 0 {
		c.statusFlags &^= statusTimerB
	}

	c.updateIRQ()
}

// writeKeyOn implements register 0x28: bits 0-1 select the channel
// within the addressing part (2 and 3 are silicon-present but
// unconnected on this chip), bit 2 selects the part itself
// (0 = channels 1/2, 1 = channels 4/5),
// and bits 4-7 are a per-operator key on/off mask.
func (c *Chip) writeKeyOn(data uint8) {
	chInPart := data & 0x03
	if chInPart >= 2 {
		return
	}
	part := (data >> 2) & 0x01
	ch := &c.fm[int(part)*2+int(chInPart)]
	for i := range ch.ops {
		on := data&(0x10<<uint(i)) != 0
		if on && !ch.ops[i].keyOn {
			ch.ops[i].keyOn = true
			ch.ops[i].phase = PhaseAttack
			ch.ops[i].phaseCounter = 0
		} else if !on && ch.ops[i].keyOn {
			ch.ops[i].keyOn = false
			ch.ops[i].phase = PhaseRelease
		}
	}
}

// writeFMOperatorOrChannel is a no-op placeholder kept for symmetry
// with writeADPCMA's split between control and per-channel writes;
// all decoding happens in writeFMRegister.
func (c *Chip) writeFMOperatorOrChannel(part int, reg uint8) {}

// writeFMRegister decodes one of the two FM channels belonging to
// part. Operator-level registers (0x30-0x9F) select the operator via
// bits 2-3 and the in-part channel via bits 0-1 (values 2/3 ignored,
// matching writeKeyOn); channel-level registers (0xA0-0xB6) select
// only the in-part channel. This is a simplified, self-consistent
// address decode rather than a transcription of the real chip's
// historical (and non-contiguous) operator ordering; nothing here
// depends on the silicon bit positions.
func (c *Chip) writeFMRegister(part int, reg, data uint8) {
	chInPart := reg & 0x03
	if chInPart >= 2 {
		return
	}
	ch := &c.fm[part*2+int(chInPart)]

	if reg < 0xA0 {
		op := &ch.ops[(reg>>2)&0x03]
		switch reg & 0xF0 {
		case 0x30:
			op.detune = (data >> 4) & 0x07
			op.multiple = data & 0x0F
		case 0x40:
			op.totalLevel = data & 0x7F
		case 0x50:
			op.keyScale = (data >> 6) & 0x03
			op.attackRate = data & 0x1F
		case 0x60:
			op.decayRate = data & 0x1F
		case 0x70:
			op.sustainRate = data & 0x1F
		case 0x80:
			op.sustainLevel = (data >> 4) & 0x0F
			op.releaseRate = data & 0x0F
		case 0x90:
			op.ssgEG = data & 0x0F
		}
		return
	}

	switch reg & 0xFC {
	case 0xA0:
		ch.fnum = (ch.fnum & 0x700) | uint16(data)
	case 0xA4:
		ch.fnum = (ch.fnum & 0x0FF) | uint16(data&0x07)<<8
		ch.block = (data >> 3) & 0x07
	case 0xB0:
		ch.feedback = (data >> 3) & 0x07
		ch.algorithm = data & 0x07
	case 0xB4:
		ch.panLeft = data&0x80 != 0
		ch.panRight = data&0x40 != 0
	}
}
