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

// Package audio implements the per-frame mixer: a YM2610 sample ring
// and a CD-audio sample ring, rate-matched to the host's fixed 44.1
// kHz output via a fractional sample-count carry, saturating-added
// together at frame end. The buffering follows the same "fixed
// capacity plus explicit write cursor" shape as cdrom.Cdrom's
// producer/consumer ring.
package audio

import "neocd/clocks"

// ymRingCapacity/cdRingCapacity hold one frame of samples: at
// SamplesPerFrame (about 739.93) no frame needs more than 740. The YM
// ring carries 2 samples of slack to accommodate cycle slop.
const (
	ymRingCapacity = 740 + 2
	cdRingCapacity = 740
)

// SamplesPerFrame is the nominal (fractional) sample count per frame
// at 44.1kHz.
const SamplesPerFrame = 44100.0 / clocks.FrameRate

// Ym2610 is the seam the mixer drives to top the YM ring up to
// sampleCount samples at finalize.
type Ym2610 interface {
	Update(out []int16)
}

// Mixer owns the two per-frame sample rings and the fractional
// sample-count carry that keeps the long-run output rate exact.
type Mixer struct {
	ymLeft, ymRight [ymRingCapacity]int16
	cdLeft, cdRight [cdRingCapacity]int16

	ymWritten int // samples already generated into the YM ring this frame
	sampleCount int // samples_this_frame, computed at init_frame

	samplesSoFar float64 // fractional carry across frames

	cdPresent bool
}

// New constructs a Mixer with its fractional carry at zero.
func New() *Mixer {
	return &Mixer{}
}

// Reset clears the rings and the fractional carry, for machine reset.
func (m *Mixer) Reset() {
	*m = Mixer{}
}

// InitFrame computes the upcoming frame's sample count as
// floor(samplesSoFar + SamplesPerFrame) and carries the fractional
// remainder across frames, so the long-run rate is exact. If the YM
// ring still holds overflow samples from last frame (ymWritten were
// generated but only sampleCount were consumed), the overflow is
// copied to the head of the ring and the write cursor adjusted.
func (m *Mixer) InitFrame() {
	m.samplesSoFar += SamplesPerFrame
	total := int(m.samplesSoFar)
	m.samplesSoFar -= float64(total)

	overflow := m.ymWritten - m.sampleCount
	if overflow > 0 {
		copy(m.ymLeft[:overflow], m.ymLeft[m.sampleCount:m.ymWritten])
		copy(m.ymRight[:overflow], m.ymRight[m.sampleCount:m.ymWritten])
		m.ymWritten = overflow
	} else {
		m.ymWritten = 0
	}

	m.sampleCount = total
	m.cdPresent = false
}

// AppendYM appends one YM2610 stereo sample pair to the ring, called
// by the scheduler each time it drives ym2610.Update for a partial
// slice. Samples beyond ymRingCapacity are dropped (cannot happen in
// practice: sampleCount+2 never exceeds the ring).
func (m *Mixer) AppendYM(left, right int16) {
	if m.ymWritten >= ymRingCapacity {
		return
	}
	m.ymLeft[m.ymWritten] = left
	m.ymRight[m.ymWritten] = right
	m.ymWritten++
}

// PushCD copies n CD-audio stereo sample pairs (interleaved) into the
// CD ring, called by the scheduler at frame start from the data the
// CD worker produced asynchronously before this frame began.
func (m *Mixer) PushCD(interleaved []int16) {
	n := len(interleaved) / 2
	if n > cdRingCapacity {
		n = cdRingCapacity
	}
	for i := 0; i < n; i++ {
		m.cdLeft[i] = interleaved[2*i]
		m.cdRight[i] = interleaved[2*i+1]
	}
	m.cdPresent = n > 0
}

// AdvanceYM tops the YM ring up to (but never past) the sample that
// should exist given how far into the frame the scheduler has
// advanced master time, so a mid-frame direct-read of
// CurrentSampleLeft/Right (FF0188/FF018A) sees a freshly generated
// value rather than stale data from the previous slice. Called by the
// scheduler once per timer-wheel slice, per this package's own
// "AppendYM ... called by the scheduler each time it drives
// ym2610.update for a partial slice" contract.
func (m *Mixer) AdvanceYM(ym Ym2610, cyclesIntoFrame, cyclesPerFrame int) {
	target := m.SampleIndex(cyclesIntoFrame, cyclesPerFrame) + 1
	if target > m.sampleCount {
		target = m.sampleCount
	}
	for m.ymWritten < target {
		var buf [2]int16
		ym.Update(buf[:])
		m.AppendYM(buf[0], buf[1])
	}
}

// Finalize tops the YM ring up to sampleCount samples, pair-wise
// saturating-adds the CD ring over it when CD audio is present, and
// returns the interleaved stereo result for this frame.
func (m *Mixer) Finalize(ym Ym2610) []int16 {
	if remaining := m.sampleCount - m.ymWritten; remaining > 0 {
		buf := make([]int16, 2*remaining)
		ym.Update(buf)
		for i := 0; i < remaining; i++ {
			m.AppendYM(buf[2*i], buf[2*i+1])
		}
	}

	out := make([]int16, 2*m.sampleCount)
	for i := 0; i < m.sampleCount; i++ {
		left := m.ymLeft[i]
		right := m.ymRight[i]
		if m.cdPresent {
			left = SaturatingAdd(left, m.cdLeft[i])
			right = SaturatingAdd(right, m.cdRight[i])
		}
		out[2*i] = left
		out[2*i+1] = right
	}
	return out
}

// SampleCount reports this frame's sample count, for the frontend's
// audio-batch push.
func (m *Mixer) SampleCount() int {
	return m.sampleCount
}

// SamplesSoFar/SetSamplesSoFar expose the fractional sample-count
// carry so the machine aggregate's savestate writer can persist it
// alongside its own scalars, per this package's DESIGN.md entry.
func (m *Mixer) SamplesSoFar() float64       { return m.samplesSoFar }
func (m *Mixer) SetSamplesSoFar(v float64)   { m.samplesSoFar = v }

// SampleIndex maps a position within the frame (in master cycles) to
// a sample index: clamp(floor(sampleCount * cycles / cyclesPerFrame),
// 0, sampleCount-1). Used by the CD-audio direct-read registers
// (FF0188/FF018A) to find the current left/right sample.
func (m *Mixer) SampleIndex(cyclesIntoFrame, cyclesPerFrame int) int {
	if m.sampleCount == 0 || cyclesPerFrame == 0 {
		return 0
	}
	idx := m.sampleCount * cyclesIntoFrame / cyclesPerFrame
	if idx < 0 {
		return 0
	}
	if idx >= m.sampleCount {
		return m.sampleCount - 1
	}
	return idx
}

// CurrentSampleLeft/CurrentSampleRight read back the YM+CD-mixed
// sample at the given frame-relative sample index, without requiring
// Finalize to have run yet (the register reads happen mid-frame).
func (m *Mixer) CurrentSampleLeft(idx int) uint16 {
	return uint16(m.mixedAt(idx, m.ymLeft[:], m.cdLeft[:]))
}

func (m *Mixer) CurrentSampleRight(idx int) uint16 {
	return uint16(m.mixedAt(idx, m.ymRight[:], m.cdRight[:]))
}

func (m *Mixer) mixedAt(idx int, ym, cd []int16) int16 {
	if idx < 0 || idx >= m.ymWritten {
		return 0
	}
	v := ym[idx]
	if m.cdPresent && idx < cdRingCapacity {
		v = SaturatingAdd(v, cd[idx])
	}
	return v
}

// SaturatingAdd adds two 16-bit samples, clamping to the int16 range
// instead of wrapping.
func SaturatingAdd(a, b int16) int16 {
	sum := int32(a) + int32(b)
	if sum > 32767 {
		return 32767
	}
	if sum < -32768 {
		return -32768
	}
	return int16(sum)
}
