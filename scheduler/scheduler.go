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

// Package scheduler implements the master cooperative loop that
// interleaves the M68K and Z80 black-box cores between the timer
// wheel's suspension points: one call per displayed frame,
// accumulating a signed cycle carry across calls. It owns none of the
// machine's interrupt state or video/audio chip state; it only
// advances cycles and reports the raster position and cycle
// accounting the rest of the machine aggregate (package neocd) needs
// to drive its own IRQPort/CDAudioPort seams.
package scheduler

import (
	"neocd/audio"
	"neocd/clocks"
	"neocd/cpu"
	"neocd/memory"
	"neocd/savestate"
	"neocd/timers"
)

// Scheduler advances master time by one frame per RunOneFrame call,
// running each CPU for at most one timer-wheel slice before consulting
// the wheel again. It holds no pointer into the machine aggregate:
// the CPU cores, the timer wheel, the memory map (for the pending
// bus-error channel) and the audio mixer are all passed in at
// construction.
type Scheduler struct {
	m68k  cpu.Core
	z80   cpu.Core
	wheel *timers.Wheel
	mem   *memory.Memory
	mixer *audio.Mixer
	ym    audio.Ym2610

	z80Enabled bool

	// remaining is the signed master-cycle carry across frames
	// (surplus or deficit).
	remaining int32

	// z80Budget is the signed master-cycle carry of M68K time the Z80
	// has not yet caught up to; it goes negative when an enabled Z80
	// overruns its budget, and a disabled Z80 consumes it in full.
	z80Budget int32

	m68kCyclesThisFrame int32
	z80CyclesThisFrame  int32

	// frameAudio holds the interleaved stereo output of the most
	// recently finalized frame, for the machine aggregate's
	// audio-batch push.
	frameAudio []int16

	// frameStart, when non-nil, runs immediately after the mixer's
	// InitFrame call, once the frame's sample count is known. The
	// machine aggregate uses it to pull the CD worker's decoded audio
	// into the mixer before any slice runs.
	frameStart func()

	// sliceBudget is the master-cycle length of the timeslice currently
	// (or most recently) handed to the M68K core. cpu.Core.Execute
	// returns only the total cycles consumed once a slice completes, so
	// there is no way for the scheduler to report genuine sub-slice
	// progress to a callback fired from inside Execute; this is the
	// best-effort value TimesliceElapsedMaster reports, documented as
	// an approximation in this repository's DESIGN.md.
	sliceBudget uint32
}

// New constructs a Scheduler wired to the given cores, timer wheel,
// memory map and audio mixer. The Z80 starts enabled, matching the
// wheel's own power-on state; Reset disables it again, mirroring
// FF0183's reset-held default.
func New(m68k, z80 cpu.Core, wheel *timers.Wheel, mem *memory.Memory, mixer *audio.Mixer, ym audio.Ym2610) *Scheduler {
	return &Scheduler{m68k: m68k, z80: z80, wheel: wheel, mem: mem, mixer: mixer, ym: ym, z80Enabled: true}
}

// SetZ80Enabled gates the Z80 leg of the frame loop: when disabled,
// the Z80's budget is treated as already
// consumed in full every slice (it simply never runs), matching
// memory.Z80Control's FF0183 reset/enable register.
func (s *Scheduler) SetZ80Enabled(enabled bool) { s.z80Enabled = enabled }

// SetFrameStartHook installs the function run at the top of every
// RunOneFrame, after the mixer has computed the frame's sample count.
func (s *Scheduler) SetFrameStartHook(f func()) { s.frameStart = f }

func (s *Scheduler) Z80Enabled() bool { return s.z80Enabled }

// Reset clears every cycle accumulator and pulses both CPU cores,
// matching a machine reset: the cycle carry does not survive a reset,
// and the Z80 comes back out of reset disabled until the guest writes
// FF0183.
func (s *Scheduler) Reset() {
	s.remaining = 0
	s.z80Budget = 0
	s.m68kCyclesThisFrame = 0
	s.z80CyclesThisFrame = 0
	s.sliceBudget = 0
	s.z80Enabled = false
	s.m68k.Reset()
	s.z80.Reset()
}

// ScreenY reports the current raster line, derived from how far into
// the frame the scheduler has advanced master time, for video.IRQPort.
func (s *Scheduler) ScreenY() int {
	elapsed := s.CyclesElapsedInFrame()
	pixel := clocks.MasterToPixel(elapsed)
	return pixel / clocks.ScreenWidth
}

// TimesliceElapsedMaster implements video.IRQPort's HIRQ_CTRL_RELATIVE
// seam; see the sliceBudget field comment for the approximation this
// makes given cpu.Core's black-box Execute contract.
func (s *Scheduler) TimesliceElapsedMaster() uint32 { return s.sliceBudget }

// CyclesElapsedInFrame reports how many master cycles have been
// consumed so far in the frame currently running, wrapped into
// [0, CyclesPerFrame): before the first frame and at the very end of a
// frame it reports 0. It serves audio.Mixer.SampleIndex's "current
// sample" direct-read registers.
func (s *Scheduler) CyclesElapsedInFrame() int {
	elapsed := int(clocks.CyclesPerFrame) - int(s.remaining)
	if elapsed < 0 {
		return 0
	}
	return elapsed % int(clocks.CyclesPerFrame)
}

// M68KCyclesThisFrame/Z80CyclesThisFrame report the signed per-frame
// cycle counters (any over/under-run carries into the next frame's
// count rather than resetting to zero), for frontend diagnostics.
func (s *Scheduler) M68KCyclesThisFrame() int32 { return s.m68kCyclesThisFrame }
func (s *Scheduler) Z80CyclesThisFrame() int32  { return s.z80CyclesThisFrame }

// FrameAudio returns the interleaved stereo samples of the most
// recently completed RunOneFrame call.
func (s *Scheduler) FrameAudio() []int16 { return s.frameAudio }

// RunOneFrame advances master time by clocks.CyclesPerFrame, running
// each CPU in timer-wheel-bounded slices. onBusError, when non-nil,
// is called with the faulting address whenever the M68K core reports
// a pending bus error after a slice (or, when the core reports none,
// the memory map does); the memory map's error is cleared regardless
// so it never carries into the next slice.
func (s *Scheduler) RunOneFrame(onBusError func(addr uint32)) {
	s.remaining += int32(clocks.CyclesPerFrame)
	s.mixer.InitFrame()
	if s.frameStart != nil {
		s.frameStart()
	}

	for s.remaining > 0 {
		slice := s.wheel.TimeSlice()
		if slice > s.remaining {
			slice = s.remaining
		}
		if slice < 1 {
			slice = 1
		}
		s.sliceBudget = uint32(slice)

		ran := s.m68k.Execute(clocks.MasterToM68K(int(slice)))
		m68kElapsed := int32(clocks.M68KToMaster(ran))
		if m68kElapsed <= 0 {
			// A slice shorter than one M68K cycle (a timer armed with
			// delay 1) converts to a zero-cycle budget, and a core may
			// legitimately run nothing for it. The slice still has to
			// be consumed or the loop would spin without advancing
			// master time.
			m68kElapsed = slice
		}
		s.m68kCyclesThisFrame += m68kElapsed
		s.z80Budget += m68kElapsed

		if s.z80Budget > 0 {
			var z80Elapsed int32
			if !s.z80Enabled {
				z80Elapsed = s.z80Budget
			} else {
				z80Ran := s.z80.Execute(clocks.MasterToZ80(int(s.z80Budget)))
				z80Elapsed = int32(clocks.Z80ToMaster(z80Ran))
			}
			s.z80Budget -= z80Elapsed
			s.z80CyclesThisFrame += z80Elapsed
		}

		s.remaining -= m68kElapsed
		s.wheel.Advance(m68kElapsed)
		s.mixer.AdvanceYM(s.ym, s.CyclesElapsedInFrame(), int(clocks.CyclesPerFrame))

		addr, pending := s.m68k.PendingBusError()
		if pending {
			s.m68k.ClearBusError()
		} else {
			addr, pending = s.mem.PendingBusError()
		}
		s.mem.ClearBusError()
		if pending && onBusError != nil {
			onBusError(addr)
		}
	}

	s.frameAudio = s.mixer.Finalize(s.ym)
	s.m68kCyclesThisFrame -= int32(clocks.CyclesPerFrame)
	s.z80CyclesThisFrame -= int32(clocks.CyclesPerFrame)
}

// Save/Restore persist the scheduler's own cycle accumulators.
func (s *Scheduler) Save(w savestate.Writer) {
	w.PutI32(s.remaining)
	w.PutI32(s.z80Budget)
	w.PutI32(s.m68kCyclesThisFrame)
	w.PutI32(s.z80CyclesThisFrame)
	w.PutU8(boolToU8(s.z80Enabled))
}

func (s *Scheduler) Restore(r savestate.Reader) error {
	s.remaining = r.GetI32()
	s.z80Budget = r.GetI32()
	s.m68kCyclesThisFrame = r.GetI32()
	s.z80CyclesThisFrame = r.GetI32()
	s.z80Enabled = r.GetU8() != 0
	if r.Failed() {
		return errShort
	}
	return nil
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
