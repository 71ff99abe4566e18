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

// panBusGain maps an ADPCM-A pan selector onto the two output
// buses: NONE contributes to neither, LEFT/RIGHT to one, and CENTER
// to both at full weight.
func panBusGain(p Pan) (left, right bool) {
	switch p {
	case PanLeft:
		return true, false
	case PanRight:
		return false, true
	case PanCenter:
		return true, true
	default:
		return false, false
	}
}

func clampSample(v int32) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}

// Update generates n stereo samples into out (length 2*n,
// interleaved L/R), each clamped to the 16-bit range. Per sample:
// advance the LFO counter,
// advance every FM channel's operators (envelope counters included),
// compute the SSG output, compute the six ADPCM-A channels onto their
// pan buses, then mix and saturate.
func (c *Chip) Update(out []int16) {
	n := len(out) / 2
	for i := 0; i < n; i++ {
		c.lfoCounter++

		for ch := range c.fm {
			updatePhaseIncrements(&c.fm[ch])
		}

		var fmMix int32
		for ch := range c.fm {
			fmMix += channelOutput(&c.fm[ch])
		}
		fmMix /= numFMChannels

		ssgMix := c.ssg.calc()

		var adpcmLeft, adpcmRight int32
		for idx := range c.adpcmA {
			ch := &c.adpcmA[idx]
			sample := ch.step(c.adpcmROM)
			sample = (sample * int32(63-c.adpcmATotalLevel)) / 63
			left, right := panBusGain(ch.pan)
			if left {
				adpcmLeft += sample
			}
			if right {
				adpcmRight += sample
			}
		}

		left := fmMix + ssgMix + adpcmLeft
		right := fmMix + ssgMix + adpcmRight

		out[2*i] = clampSample(left)
		out[2*i+1] = clampSample(right)
	}
}

// updatePhaseIncrements recomputes every operator's phase increment
// from the channel's current fnum/block/multiple/detune. Recomputed
// every sample rather than cached on register write, trading a little
// CPU for not needing a dirty-bit on four register groups.
func updatePhaseIncrements(ch *fmChannel) {
	for i := range ch.ops {
		ch.ops[i].phaseIncrement = phaseIncrementFor(ch, &ch.ops[i])
	}
}
