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
	"testing"

	"github.com/stretchr/testify/require"

	"neocd/clocks"
	"neocd/timers"
	"neocd/video"
)

func newTestMachine() *Machine {
	m := New(nil, nil)
	m.Reset()
	return m
}

func TestRunOneFrameBootIdleFillsBackgroundColour(t *testing.T) {
	m := newTestMachine()

	// Background colour lives at palette entry 4095 of the active bank.
	m.Mem.Write16(0x401FFE, 0x0F00)
	require.Equal(t, uint16(0x0F00<<4), m.Video.PaletteRGB565[4095])

	// Enable video output (FF0119); both layers have nothing to draw.
	m.Mem.Write8(0xFF0119, 0x01)

	m.RunOneFrame()

	want := m.Video.PaletteRGB565[4095]
	for i, px := range m.FrameBuffer() {
		require.Equal(t, want, px, "pixel %d", i)
	}

	_, pending := m.Mem.PendingBusError()
	require.False(t, pending)
}

func TestRunOneFrameDrawsBlackWhileVideoDisabled(t *testing.T) {
	m := newTestMachine()
	m.Mem.Write16(0x401FFE, 0x0F00)

	m.RunOneFrame()

	for i, px := range m.FrameBuffer() {
		require.Equal(t, uint16(0), px, "pixel %d", i)
	}
}

func TestVBLInterruptPendingAndAcknowledge(t *testing.T) {
	m := newTestMachine()

	// 0x030 is the VBL enable pair in the FF0004 mask.
	m.Mem.Write16(0xFF0004, 0x0030)
	m.RunOneFrame()
	require.NotZero(t, m.PendingInterrupts()&intVerticalBlank)

	// Acknowledge through the video register window (3C000C bit 2).
	m.Mem.Write16(0x3C000C, 0x0004)
	require.Zero(t, m.PendingInterrupts()&intVerticalBlank)
}

func TestVBLInterruptMaskedOut(t *testing.T) {
	m := newTestMachine()
	m.RunOneFrame()
	require.Zero(t, m.PendingInterrupts()&intVerticalBlank)
}

func TestIRQMask2ReadsBack(t *testing.T) {
	m := newTestMachine()
	m.Mem.Write16(0xFF0004, 0x0731)
	require.Equal(t, uint16(0x0731), m.Mem.Read16(0xFF0004))
}

func TestRasterInterruptViaRelativeHIRQ(t *testing.T) {
	m := newTestMachine()

	// HBL (0x700) and VBL (0x030) enables.
	m.Mem.Write16(0xFF0004, 0x0730)

	// HIRQ control: enable + relative + auto-repeat; the relative bit
	// arms the Hbl timer as soon as the reload register is written.
	m.Mem.Write16(0x3C0006, video.HirqEnable|video.HirqRelative|video.HirqAutoRepeat)
	m.Mem.Write16(0x3C0008, 0x0000)
	m.Mem.Write16(0x3C000A, 99)

	m.RunOneFrame()
	require.NotZero(t, m.PendingInterrupts()&intRaster)
}

func TestAudioCommandLandsAfterDelayOne(t *testing.T) {
	m := newTestMachine()

	m.Mem.Write8(0x320000, 0x42)
	require.True(t, m.Wheel.Timer(timers.AudioCommand).IsActive())
	require.Zero(t, m.AudioCommand())

	m.RunOneFrame()
	require.Equal(t, uint8(0x42), m.AudioCommand())
}

func TestAudioResultReadsBackThroughZ80CommWindow(t *testing.T) {
	m := newTestMachine()
	m.SetAudioResult(0x7E)
	require.Equal(t, uint8(0x7E), m.Mem.Read8(0x320000))
	require.Equal(t, uint8(0xFF), m.Mem.Read8(0x320001))
}

func TestPaletteWriteUpdatesShadowImmediately(t *testing.T) {
	m := newTestMachine()
	m.Mem.Write16(0x400000, 0xFFFF)
	require.Equal(t, uint16(0xFFFF), m.Video.PaletteRGB565[0])
}

func TestSampleCountStaysOnRate(t *testing.T) {
	m := newTestMachine()
	total := 0
	const frames = 120
	for i := 0; i < frames; i++ {
		m.RunOneFrame()
		total += m.Mixer.SampleCount()
		require.Equal(t, m.Mixer.SampleCount()*2, len(m.AudioSamples()))
	}
	want := clocks.RoundHalfAwayFromZero(frames * 44100.0 / clocks.FrameRate)
	require.InDelta(t, want, total, 1)
}

func TestSerializeRoundTripIsBitIdentical(t *testing.T) {
	m := newTestMachine()

	m.Mem.Write16(0xFF0004, 0x0030)
	m.Mem.Write16(0x400000, 0x1234)
	m.Banks.MainRAM[0x1000] = 0xAB
	m.Banks.VideoRAM[0x8200] = 0x4321
	m.RunOneFrame()

	blob := m.Serialize()
	require.NotEmpty(t, blob)

	other := New(nil, nil)
	other.Reset()
	require.NoError(t, other.Unserialize(blob))

	require.Equal(t, blob, other.Serialize())

	// Derived state is rebuilt, not copied: the palette shadow
	// reflects the restored palette bank.
	require.Equal(t, m.Video.PaletteRGB565[0], other.Video.PaletteRGB565[0])
}

func TestUnserializeShortBlobFailsAndResets(t *testing.T) {
	m := newTestMachine()
	blob := m.Serialize()
	require.Error(t, m.Unserialize(blob[:64]))

	// The machine is still usable after the failed restore.
	m.RunOneFrame()
}

func TestWatchdogRefreshedByControllerWrite(t *testing.T) {
	m := newTestMachine()

	// FF016F = 0 starts the watchdog countdown.
	m.Mem.Write8(0xFF016F, 0x00)
	require.True(t, m.Wheel.Timer(timers.Watchdog).IsActive())

	before := m.Wheel.Timer(timers.Watchdog).Delay()
	m.Wheel.Timer(timers.Watchdog).AdvanceTime(1000)
	require.Equal(t, before-1000, m.Wheel.Timer(timers.Watchdog).Delay())

	// Any controller-1 write refreshes the countdown.
	m.Mem.Write8(0x300001, 0x00)
	require.Equal(t, timers.WatchdogDelay, m.Wheel.Timer(timers.Watchdog).Delay())

	// FF016F = 1 stops it.
	m.Mem.Write8(0xFF016F, 0x01)
	require.False(t, m.Wheel.Timer(timers.Watchdog).IsActive())
}

func TestVectorSwitchThroughSwitchRegion(t *testing.T) {
	m := newTestMachine()
	m.Banks.BiosROM[0x10] = 0xCD
	m.Banks.MainRAM[0x10] = 0xAB

	require.Equal(t, uint8(0xCD), m.Mem.Read8(0x10))

	m.Mem.Write8(0x3A0013, 0x01) // RAM vectors
	require.Equal(t, uint8(0xAB), m.Mem.Read8(0x10))

	m.Mem.Write8(0x3A0003, 0x01) // back to ROM vectors
	require.Equal(t, uint8(0xCD), m.Mem.Read8(0x10))
}

func TestPaletteBankSwitchSelectsShadowBank(t *testing.T) {
	m := newTestMachine()
	require.Equal(t, uint32(0), m.Video.ActivePaletteBank)
	m.Mem.Write8(0x3A001F, 0x01)
	require.Equal(t, uint32(1), m.Video.ActivePaletteBank)
	m.Mem.Write8(0x3A000F, 0x01)
	require.Equal(t, uint32(0), m.Video.ActivePaletteBank)
}
