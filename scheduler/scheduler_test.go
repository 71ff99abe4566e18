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

package scheduler

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"neocd/audio"
	"neocd/clocks"
	"neocd/memory"
	"neocd/savestate"
	"neocd/timers"
)

// fakeCore always consumes exactly the requested cycles, so the
// master-cycle arithmetic under test is deterministic.
type fakeCore struct {
	executed  int
	resetHits int
	irq       int
}

func (c *fakeCore) Execute(cycles int) int { c.executed += cycles; return cycles }
func (c *fakeCore) Reset()                 { c.resetHits++ }
func (c *fakeCore) SetIRQ(level int)       { c.irq = level }
func (c *fakeCore) PendingBusError() (uint32, bool) { return 0, false }
func (c *fakeCore) ClearBusError()         {}
func (c *fakeCore) Save(w savestate.Writer) {}
func (c *fakeCore) Restore(r savestate.Reader) error { return nil }

// faultingCore reports a bus error on its first Execute call only.
type faultingCore struct {
	fakeCore
	fault   bool
	faulted bool
}

func (c *faultingCore) PendingBusError() (uint32, bool) {
	if c.fault && !c.faulted {
		return 0xC00000, true
	}
	return 0, false
}
func (c *faultingCore) ClearBusError() { c.faulted = true }

// fakeYM counts how many stereo pairs it was asked to generate.
type fakeYM struct{ generated int }

func (y *fakeYM) Update(out []int16) {
	n := len(out) / 2
	for i := 0; i < n; i++ {
		out[2*i], out[2*i+1] = 1, -1
	}
	y.generated += n
}

func newFixture() (*Scheduler, *fakeCore, *fakeCore, *fakeYM) {
	wheel := timers.NewWheel()
	mem := memory.NewMemory(memory.NewBanks(), memory.Peripherals{})
	mixer := audio.New()
	m68k := &fakeCore{}
	z80 := &fakeCore{}
	ym := &fakeYM{}
	return New(m68k, z80, wheel, mem, mixer, ym), m68k, z80, ym
}

func TestNewStartsWithZ80Enabled(t *testing.T) {
	s, _, _, _ := newFixture()
	require.True(t, s.Z80Enabled())
}

func TestResetDisablesZ80AndClearsAccumulators(t *testing.T) {
	s, m68k, z80, _ := newFixture()
	s.RunOneFrame(nil)
	s.Reset()

	require.False(t, s.Z80Enabled())
	require.Equal(t, int32(0), s.M68KCyclesThisFrame())
	require.Equal(t, int32(0), s.Z80CyclesThisFrame())
	require.Equal(t, 1, m68k.resetHits)
	require.Equal(t, 1, z80.resetHits)
}

func TestRunOneFrameConsumesExactlyOneFrameOfMasterCycles(t *testing.T) {
	s, m68k, z80, _ := newFixture()
	s.RunOneFrame(nil)

	require.Equal(t, int32(0), s.M68KCyclesThisFrame())
	require.Equal(t, int32(0), s.Z80CyclesThisFrame())

	gotMaster := clocks.M68KToMaster(m68k.executed)
	require.Equal(t, int(clocks.CyclesPerFrame), gotMaster)

	z80Master := clocks.Z80ToMaster(z80.executed)
	require.InDelta(t, int(clocks.CyclesPerFrame), z80Master, float64(clocks.Z80ToMaster(1)))
}

func TestZ80DisabledNeverExecutes(t *testing.T) {
	s, _, z80, _ := newFixture()
	s.SetZ80Enabled(false)
	s.RunOneFrame(nil)

	require.Equal(t, 0, z80.executed)
}

func TestRunOneFrameReportsBusErrorOnce(t *testing.T) {
	s, _, _, _ := newFixture()
	faulting := &faultingCore{fault: true}
	s.m68k = faulting

	var reported []uint32
	s.RunOneFrame(func(addr uint32) { reported = append(reported, addr) })

	require.Equal(t, []uint32{0xC00000}, reported)
}

func TestRunOneFrameDrivesYMAcrossTheWholeFrame(t *testing.T) {
	s, _, _, ym := newFixture()
	s.RunOneFrame(nil)

	require.Greater(t, ym.generated, 0)
	require.LessOrEqual(t, ym.generated, int(math.Floor(audio.SamplesPerFrame))+2)
}

func TestCyclesElapsedInFrameStaysWithinFrameBounds(t *testing.T) {
	s, _, _, _ := newFixture()
	require.Equal(t, 0, s.CyclesElapsedInFrame())

	s.remaining = int32(clocks.CyclesPerFrame) / 2
	elapsed := s.CyclesElapsedInFrame()
	require.Greater(t, elapsed, 0)
	require.Less(t, elapsed, int(clocks.CyclesPerFrame))
}

func TestScreenYStartsAtZero(t *testing.T) {
	s, _, _, _ := newFixture()
	require.Equal(t, 0, s.ScreenY())
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	s, _, _, _ := newFixture()
	s.remaining = 123
	s.z80Budget = -45
	s.m68kCyclesThisFrame = 9
	s.z80CyclesThisFrame = -3
	s.z80Enabled = false

	w := savestate.NewWriter()
	s.Save(w)

	other, _, _, _ := newFixture()
	r := savestate.NewReader(savestate.Bytes(w))
	require.NoError(t, other.Restore(r))

	require.Equal(t, s.remaining, other.remaining)
	require.Equal(t, s.z80Budget, other.z80Budget)
	require.Equal(t, s.m68kCyclesThisFrame, other.m68kCyclesThisFrame)
	require.Equal(t, s.z80CyclesThisFrame, other.z80CyclesThisFrame)
	require.Equal(t, s.z80Enabled, other.z80Enabled)
}

func TestRestoreReportsShortBuffer(t *testing.T) {
	s, _, _, _ := newFixture()
	r := savestate.NewReader(nil)
	require.Error(t, s.Restore(r))
}
