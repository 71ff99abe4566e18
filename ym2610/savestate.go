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

import "neocd/savestate"

// Save/Restore persist the chip's register-derived state: FM channel/
// operator state, the SSG block, the six ADPCM-A channels, the
// address latches, the timers and the status/IRQ edge flag. The
// sine/attenuation/step tables are regenerated at package init, not
// serialized, per the same convention memory.Banks uses for its
// Y-zoom table.
func (c *Chip) Save(w savestate.Writer) {
	for ch := range c.fm {
		w.PutU16(c.fm[ch].fnum)
		w.PutU8(c.fm[ch].block)
		w.PutU8(c.fm[ch].feedback)
		w.PutU8(c.fm[ch].algorithm)
		w.PutU8(boolToU8(c.fm[ch].panLeft))
		w.PutU8(boolToU8(c.fm[ch].panRight))
		for op := range c.fm[ch].ops {
			o := &c.fm[ch].ops[op]
			w.PutU32(o.phaseCounter)
			w.PutU8(o.detune)
			w.PutU8(o.multiple)
			w.PutU8(o.totalLevel)
			w.PutU8(o.keyScale)
			w.PutU8(o.attackRate)
			w.PutU8(o.decayRate)
			w.PutU8(o.sustainRate)
			w.PutU8(o.releaseRate)
			w.PutU8(o.sustainLevel)
			w.PutU8(o.ssgEG)
			w.PutU8(uint8(o.phase))
			w.PutU16(o.envLevel)
			w.PutU8(boolToU8(o.keyOn))
			w.PutI32(o.lastOutput)
		}
	}

	for i := range c.ssg.tones {
		t := &c.ssg.tones[i]
		w.PutU16(t.period)
		w.PutU16(t.count)
		w.PutU8(boolToU8(t.output))
		w.PutU8(boolToU8(t.toneEnable))
		w.PutU8(boolToU8(t.noiseEnable))
		w.PutU8(t.volume)
		w.PutU8(boolToU8(t.envelopeFollow))
	}
	w.PutU16(c.ssg.noisePeriod)
	w.PutU16(c.ssg.noiseCount)
	w.PutU32(c.ssg.noiseShift)
	w.PutU8(boolToU8(c.ssg.noiseOutput))
	w.PutU16(c.ssg.envPeriod)
	w.PutU32(c.ssg.envCount)
	w.PutU8(c.ssg.envShape)
	w.PutU8(c.ssg.envStep)
	w.PutU8(boolToU8(c.ssg.envHolding))
	w.PutU8(boolToU8(c.ssg.envAttack))
	w.PutU8(boolToU8(c.ssg.envAlternate))
	w.PutU8(boolToU8(c.ssg.envContinue))

	for i := range c.adpcmA {
		a := &c.adpcmA[i]
		w.PutU32(a.start)
		w.PutU32(a.end)
		w.PutU32(a.address)
		w.PutI32(a.stepIndex)
		w.PutI32(a.accumulator)
		w.PutU8(boolToU8(a.nibbleHigh))
		w.PutU8(a.level)
		w.PutU8(uint8(a.pan))
		w.PutU8(boolToU8(a.playing))
	}
	w.PutU8(c.adpcmATotalLevel)

	w.PutU8(c.addrLatch[0])
	w.PutU8(c.addrLatch[1])
	w.PutU16(c.timerA)
	w.PutU8(c.timerB)
	w.PutU8(boolToU8(c.timerAEnable))
	w.PutU8(boolToU8(c.timerBEnable))
	w.PutU8(boolToU8(c.timerAIRQEnable))
	w.PutU8(boolToU8(c.timerBIRQEnable))
	w.PutU8(c.statusFlags)
	w.PutU8(boolToU8(c.irqAsserted))
	w.PutU8(boolToU8(c.lfoEnable))
	w.PutU8(c.lfoFreq)
	w.PutU32(c.lfoCounter)
}

func (c *Chip) Restore(r savestate.Reader) error {
	for ch := range c.fm {
		c.fm[ch].fnum = r.GetU16()
		c.fm[ch].block = r.GetU8()
		c.fm[ch].feedback = r.GetU8()
		c.fm[ch].algorithm = r.GetU8()
		c.fm[ch].panLeft = r.GetU8() != 0
		c.fm[ch].panRight = r.GetU8() != 0
		for op := range c.fm[ch].ops {
			o := &c.fm[ch].ops[op]
			o.phaseCounter = r.GetU32()
			o.detune = r.GetU8()
			o.multiple = r.GetU8()
			o.totalLevel = r.GetU8()
			o.keyScale = r.GetU8()
			o.attackRate = r.GetU8()
			o.decayRate = r.GetU8()
			o.sustainRate = r.GetU8()
			o.releaseRate = r.GetU8()
			o.sustainLevel = r.GetU8()
			o.ssgEG = r.GetU8()
			o.phase = EnvelopePhase(r.GetU8())
			o.envLevel = r.GetU16()
			o.keyOn = r.GetU8() != 0
			o.lastOutput = r.GetI32()
		}
	}

	for i := range c.ssg.tones {
		t := &c.ssg.tones[i]
		t.period = r.GetU16()
		t.count = r.GetU16()
		t.output = r.GetU8() != 0
		t.toneEnable = r.GetU8() != 0
		t.noiseEnable = r.GetU8() != 0
		t.volume = r.GetU8()
		t.envelopeFollow = r.GetU8() != 0
	}
	c.ssg.noisePeriod = r.GetU16()
	c.ssg.noiseCount = r.GetU16()
	c.ssg.noiseShift = r.GetU32()
	c.ssg.noiseOutput = r.GetU8() != 0
	c.ssg.envPeriod = r.GetU16()
	c.ssg.envCount = r.GetU32()
	c.ssg.envShape = r.GetU8()
	c.ssg.envStep = r.GetU8()
	c.ssg.envHolding = r.GetU8() != 0
	c.ssg.envAttack = r.GetU8() != 0
	c.ssg.envAlternate = r.GetU8() != 0
	c.ssg.envContinue = r.GetU8() != 0

	for i := range c.adpcmA {
		a := &c.adpcmA[i]
		a.start = r.GetU32()
		a.end = r.GetU32()
		a.address = r.GetU32()
		a.stepIndex = r.GetI32()
		a.accumulator = r.GetI32()
		a.nibbleHigh = r.GetU8() != 0
		a.level = r.GetU8()
		a.pan = Pan(r.GetU8())
		a.playing = r.GetU8() != 0
	}
	c.adpcmATotalLevel = r.GetU8()

	c.addrLatch[0] = r.GetU8()
	c.addrLatch[1] = r.GetU8()
	c.timerA = r.GetU16()
	c.timerB = r.GetU8()
	c.timerAEnable = r.GetU8() != 0
	c.timerBEnable = r.GetU8() != 0
	c.timerAIRQEnable = r.GetU8() != 0
	c.timerBIRQEnable = r.GetU8() != 0
	c.statusFlags = r.GetU8()
	c.irqAsserted = r.GetU8() != 0
	c.lfoEnable = r.GetU8() != 0
	c.lfoFreq = r.GetU8()
	c.lfoCounter = r.GetU32()

	if r.Failed() {
		return errShort
	}
	return nil
}
