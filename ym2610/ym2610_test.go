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

import (
	"testing"

	"github.com/stretchr/testify/require"

	"neocd/savestate"
)

func TestResetClearsStatusAndSilencesOperators(t *testing.T) {
	c := New()
	c.statusFlags = statusTimerA | statusTimerB
	c.Reset()
	require.Equal(t, uint8(0), c.statusFlags)
	for ch := range c.fm {
		for op := range c.fm[ch].ops {
			require.Equal(t, PhaseOff, c.fm[ch].ops[op].phase)
			require.Equal(t, uint16(maxEnvelope), c.fm[ch].ops[op].envLevel)
		}
	}
}

func TestKeyOnStartsEnvelopeAttack(t *testing.T) {
	c := New()
	c.WriteAddr(PortA, 0x28)
	c.WriteData(PortA, 0xF0) // channel 1 (part 0, chInPart 0), all operators on
	require.Equal(t, PhaseAttack, c.fm[0].ops[0].phase)
	require.True(t, c.fm[0].ops[0].keyOn)
}

func TestKeyOnIgnoresInvalidChannelSelector(t *testing.T) {
	c := New()
	c.WriteAddr(PortA, 0x28)
	c.WriteData(PortA, 0xF2) // chInPart == 2, no such channel
	for ch := range c.fm {
		for op := range c.fm[ch].ops {
			require.False(t, c.fm[ch].ops[op].keyOn)
		}
	}
}

func TestSSGToneRegistersRoundTrip(t *testing.T) {
	c := New()
	c.WriteAddr(PortA, 0x00)
	c.WriteData(PortA, 0xCD)
	c.WriteAddr(PortA, 0x01)
	c.WriteData(PortA, 0x0A)
	require.Equal(t, uint16(0x0ACD), c.ssg.tones[0].period)
}

func TestTimerPeriodStepsFollowRegisterConvention(t *testing.T) {
	c := New()
	c.WriteAddr(PortA, 0x24)
	c.WriteData(PortA, 0xFF) // timerA high bits
	c.WriteAddr(PortA, 0x25)
	c.WriteData(PortA, 0x03)
	require.Equal(t, int32(1024-0x3FF), c.TimerAPeriodSteps())

	c.WriteAddr(PortA, 0x26)
	c.WriteData(PortA, 0x00)
	require.Equal(t, int32(256*16), c.TimerBPeriodSteps())
}

func TestTimerOverflowRaisesIRQOnEnabledEdge(t *testing.T) {
	c := New()
	var asserted []bool
	c.SetIRQPort(irqRecorder(func(v bool) { asserted = append(asserted, v) }))

	c.WriteAddr(PortA, 0x27)
	c.WriteData(PortA, 0x01|0x04) // start timer A, enable its IRQ

	rearm := c.TimerAOverflow()
	require.True(t, rearm)
	require.Equal(t, []bool{true}, asserted)
	require.NotEqual(t, uint8(0), c.statusFlags&statusTimerA)

	// Acknowledging via bit 4 of 0x27 clears the flag and drops the IRQ.
	c.WriteData(PortA, 0x01|0x04|0x10)
	require.Equal(t, []bool{true, false}, asserted)
}

func TestTimerOverflowDoesNothingWhenDisabled(t *testing.T) {
	c := New()
	require.False(t, c.TimerAOverflow())
	require.False(t, c.TimerBOverflow())
}

func TestADPCMAKeyOnStartsFromDoubledStartAddress(t *testing.T) {
	c := New()
	c.WriteAddr(PortB, 0x10)
	c.WriteData(PortB, 0x34) // start low
	c.WriteAddr(PortB, 0x18)
	c.WriteData(PortB, 0x12) // start high
	c.WriteAddr(PortB, 0x00)
	c.WriteData(PortB, 0x01) // key on channel 0

	require.True(t, c.adpcmA[0].playing)
	require.Equal(t, uint32(0x1234)<<1, c.adpcmA[0].address)
}

func TestADPCMADumpStopsChannel(t *testing.T) {
	c := New()
	c.adpcmA[2].playing = true
	c.WriteAddr(PortB, 0x00)
	c.WriteData(PortB, 0x80|0x04) // dump, channel 2
	require.False(t, c.adpcmA[2].playing)
}

func TestUpdateProducesSamplesInRange(t *testing.T) {
	c := New()
	c.adpcmROM = make([]byte, 256)
	out := make([]int16, 2*64)
	c.Update(out)
	// Purely a shape/saturation check: every sample must be a valid
	// int16, which is guaranteed by the type itself; this asserts the
	// call completes and leaves no NaN-equivalent runaway state by
	// checking the chip's internal counters advanced.
	require.NotZero(t, c.lfoCounter)
}

func TestSaveRestoreRoundTrips(t *testing.T) {
	c := New()
	c.WriteAddr(PortA, 0x24)
	c.WriteData(PortA, 0x80)
	c.WriteAddr(PortA, 0xA0)
	c.WriteData(PortA, 0x55)
	c.ssg.tones[1].period = 0x321

	w := savestate.NewWriter()
	c.Save(w)

	restored := New()
	err := restored.Restore(savestate.NewReader(savestate.Bytes(w)))
	require.NoError(t, err)
	require.Equal(t, c.timerA, restored.timerA)
	require.Equal(t, c.fm[0].fnum, restored.fm[0].fnum)
	require.Equal(t, c.ssg.tones[1].period, restored.ssg.tones[1].period)
}

func TestRestoreShortBufferFails(t *testing.T) {
	c := New()
	err := c.Restore(savestate.NewReader(nil))
	require.Error(t, err)
}

type irqRecorder func(bool)

func (f irqRecorder) SetYM2610IRQ(asserted bool) { f(asserted) }
