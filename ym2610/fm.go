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

import "math"

const maxEnvelope = 1023

// sineTable/attenuationTable convert a phase angle and a combined
// attenuation level (total level + envelope level) to a linear
// output sample. Generated at init() rather than transcribed from
// the chip's vendor-supplied logarithmic sine/exp ROMs; the curves
// have simple closed forms and nothing downstream depends on
// bit-exact waveform reproduction.
const sineTableBits = 10
const sineTableSize = 1 << sineTableBits

var sineTable [sineTableSize]int32

const attenuationTableSize = 2048

var attenuationTable [attenuationTableSize]int32

// rateStepTable maps a 0..63 effective envelope rate to a per-sample
// progression step; used additively for decay/release/sustain and
// subtractively for attack. Monotonically increasing, matching the
// real chip's "higher rate number advances faster" shape.
var rateStepTable [64]int32

func init() {
	for i := range sineTable {
		angle := 2 * math.Pi * float64(i) / float64(sineTableSize)
		sineTable[i] = int32(math.Sin(angle) * 8191)
	}
	for i := range attenuationTable {
		db := float64(i) * 0.09375 // ~0.75dB per total-level step, 1/8th per envelope step
		attenuationTable[i] = int32(8191 * math.Pow(10, -db/20))
	}
	for r := range rateStepTable {
		rateStepTable[r] = 1 + int32(r*r)/16
	}
}

const multipleHalf = 0 // multiple register value 0 means ×0.5

// phaseIncrementFor computes an operator's 16.16 fixed-point phase
// increment from its channel's fnum/block and its own multiple.
// Detune nudges the increment by a small fraction rather than the
// vendor's exact detune ROM, for the reason noted at the top of this
// file.
func phaseIncrementFor(ch *fmChannel, op *operator) uint32 {
	base := uint32(ch.fnum) << ch.block
	var inc uint32
	if op.multiple == multipleHalf {
		inc = base / 2
	} else {
		inc = base * uint32(op.multiple)
	}

	detune := int32(op.detune) - 4 // center DT=4 around zero
	inc = uint32(int64(inc) + int64(inc)*int64(detune)/128)
	return inc << 6 // scale into the operator's working fixed-point range
}

// effectiveRate folds an operator's key-scale value into its raw
// envelope rate, clamped to the chip's 0..63 rate space.
func effectiveRate(rate, keyScale uint8) int {
	r := int(rate)*2 + int(keyScale)
	if r > 63 {
		r = 63
	}
	return r
}

// sustainThreshold converts the 4-bit SL register to an envelope
// level, per the OPN convention that SL=15 means "no sustain plateau"
// (decay runs all the way to silence).
func sustainThreshold(sl uint8) uint16 {
	if sl == 15 {
		return maxEnvelope
	}
	return uint16(sl) * (maxEnvelope / 16)
}

// advanceEnvelope steps one operator's envelope generator by one
// sample tick through the attack/decay/sustain/release phase
// machine.
func advanceEnvelope(op *operator) {
	switch op.phase {
	case PhaseAttack:
		if op.attackRate == 0 {
			return
		}
		step := rateStepTable[effectiveRate(op.attackRate, op.keyScale)]
		level := int32(op.envLevel) - step
		if level <= 0 {
			op.envLevel = 0
			op.phase = PhaseDecay
			return
		}
		op.envLevel = uint16(level)
	case PhaseDecay:
		step := rateStepTable[effectiveRate(op.decayRate, op.keyScale)]
		level := int32(op.envLevel) + step
		threshold := int32(sustainThreshold(op.sustainLevel))
		if level >= threshold {
			op.envLevel = uint16(threshold)
			op.phase = PhaseSustain
			return
		}
		op.envLevel = uint16(level)
	case PhaseSustain:
		step := rateStepTable[effectiveRate(op.sustainRate, op.keyScale)]
		level := int32(op.envLevel) + step
		if level >= maxEnvelope {
			op.envLevel = maxEnvelope
			op.phase = PhaseOff
			return
		}
		op.envLevel = uint16(level)
	case PhaseRelease:
		step := rateStepTable[effectiveRate(op.releaseRate*2+1, op.keyScale)]
		level := int32(op.envLevel) + step
		if level >= maxEnvelope {
			op.envLevel = maxEnvelope
			op.phase = PhaseOff
			return
		}
		op.envLevel = uint16(level)
	case PhaseOff:
		op.envLevel = maxEnvelope
	}
}

// operatorOutput advances the operator's phase by one sample and
// returns its signed output, modulated by the given phase-modulation
// input (already scaled by the channel's feedback/algorithm routing).
func operatorOutput(op *operator, modulation int32) int32 {
	op.phaseCounter += op.phaseIncrement
	index := (int32(op.phaseCounter>>16) + modulation) & (sineTableSize - 1)
	if index < 0 {
		index += sineTableSize
	}
	atten := int32(op.totalLevel)*8 + int32(op.envLevel)
	if atten >= attenuationTableSize {
		atten = attenuationTableSize - 1
	}
	amp := attenuationTable[atten]
	out := sineTable[index] * amp / 8191
	op.lastOutput = out
	return out
}

// channelOutput computes one FM channel's combined stereo-mono sample
// for this tick, applying its algorithm's operator routing (the
// 3-bit algorithm register selects one of the eight standard OPN
// topologies). Feedback from operator 0's last output modulates its
// own phase.
func channelOutput(ch *fmChannel) int32 {
	for i := range ch.ops {
		advanceEnvelope(&ch.ops[i])
	}

	var fb int32
	if ch.feedback > 0 {
		fb = (ch.ops[0].lastOutput) >> (10 - ch.feedback)
	}

	op := func(i int) *operator { return &ch.ops[i] }

	o0 := operatorOutput(op(0), fb)
	switch ch.algorithm {
	case 0:
		o1 := operatorOutput(op(1), o0>>3)
		o2 := operatorOutput(op(2), o1>>3)
		o3 := operatorOutput(op(3), o2>>3)
		return o3
	case 1:
		o1 := operatorOutput(op(1), 0)
		sum := (o0 + o1) >> 1
		o2 := operatorOutput(op(2), sum>>3)
		o3 := operatorOutput(op(3), o2>>3)
		return o3
	case 2:
		o1 := operatorOutput(op(1), 0)
		o2 := operatorOutput(op(2), o1>>3)
		sum := (o0 + o2) >> 1
		o3 := operatorOutput(op(3), sum>>3)
		return o3
	case 3:
		o1 := operatorOutput(op(1), o0>>3)
		o2 := operatorOutput(op(2), 0)
		sum := (o1 + o2) >> 1
		o3 := operatorOutput(op(3), sum>>3)
		return o3
	case 4:
		o1 := operatorOutput(op(1), o0>>3)
		o2 := operatorOutput(op(2), 0)
		o3 := operatorOutput(op(3), o2>>3)
		return (o1 + o3) >> 1
	case 5:
		o1 := operatorOutput(op(1), o0>>3)
		o2 := operatorOutput(op(2), o0>>3)
		o3 := operatorOutput(op(3), o0>>3)
		return (o1 + o2 + o3) / 3
	case 6:
		o1 := operatorOutput(op(1), o0>>3)
		o2 := operatorOutput(op(2), 0)
		o3 := operatorOutput(op(3), 0)
		return (o1 + o2 + o3) / 3
	default: // 7
		o1 := operatorOutput(op(1), 0)
		o2 := operatorOutput(op(2), 0)
		o3 := operatorOutput(op(3), 0)
		return (o0 + o1 + o2 + o3) / 4
	}
}
