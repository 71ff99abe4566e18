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

package input

import (
	"testing"

	"github.com/stretchr/testify/require"

	"neocd/savestate"
)

func TestResetDefaults(t *testing.T) {
	s := New()
	require.Equal(t, uint8(0xFF), s.Input1)
	require.Equal(t, uint8(0xFF), s.Input2)
	require.Equal(t, uint8(0x0F), s.Input3)
}

func TestSetInputMasksInput3ToNibble(t *testing.T) {
	s := New()
	s.SetInput(0x00, 0x11, 0xFF)
	require.Equal(t, uint8(0x0F), s.Input3)
}

func TestController1ReadGatedBySelector(t *testing.T) {
	s := New()
	s.Input1 = 0xAB
	h := &Controller1{State: s}

	s.selector = 0x00
	require.Equal(t, uint8(0xAB), h.ReadByte(0x300000))

	s.selector = 0x05
	require.Equal(t, uint8(0xFF), h.ReadByte(0x300000))

	// Odd address always reads 0xFF regardless of selector.
	s.selector = 0x00
	require.Equal(t, uint8(0xFF), h.ReadByte(0x300001))
}

type fakeWatchdog struct{ kicked int }

func (f *fakeWatchdog) Kick() { f.kicked++ }

func TestController1WriteKicksWatchdogOnlyOnOddAddress(t *testing.T) {
	s := New()
	wd := &fakeWatchdog{}
	h := &Controller1{State: s, Watchdog: wd}

	h.WriteByte(0x300000, 0)
	require.Equal(t, 0, wd.kicked)

	h.WriteByte(0x300001, 0)
	require.Equal(t, 1, wd.kicked)
}

func TestController3SelectorWriteAndReadback(t *testing.T) {
	s := New()
	s.Input3 = 0x0A
	h := &Controller3{State: s}

	h.WriteByte(0x380001, 0x12)
	require.Equal(t, uint8(0x12), s.selector)
	require.Equal(t, uint8(0x0A), h.ReadByte(0x380000))

	h.WriteByte(0x380001, 0x05)
	require.Equal(t, uint8(0x0F), h.ReadByte(0x380000))
}

type fakeVectors struct{ isROM bool }

func (f *fakeVectors) SetVectorIsROM(v bool) { f.isROM = v }

type fakePaletteBank struct{ bank uint32 }

func (f *fakePaletteBank) SetActivePaletteBank(b uint32) { f.bank = b }

func TestSwitchesDispatchesOnlyOnOddAddress(t *testing.T) {
	vectors := &fakeVectors{}
	palette := &fakePaletteBank{}
	h := &Switches{Vectors: vectors, Palette: palette}

	h.WriteByte(0x3A0002, 0xFF) // even address: ignored
	require.False(t, vectors.isROM)

	h.WriteByte(0x3A0003, 0xFF) // odd address, offset 0x02: ROM vectors
	require.True(t, vectors.isROM)

	h.WriteByte(0x3A0013, 0xFF) // offset 0x12: RAM vectors
	require.False(t, vectors.isROM)

	h.WriteByte(0x3A001F, 0xFF) // offset 0x1E: palette bank 1
	require.Equal(t, uint32(1), palette.bank)

	h.WriteByte(0x3A000F, 0xFF) // offset 0x0E: palette bank 0
	require.Equal(t, uint32(0), palette.bank)
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	s := New()
	s.SetInput(0x01, 0x02, 0x03)
	s.selector = 0x1B

	w := savestate.NewWriter()
	s.Save(w)

	restored := New()
	require.NoError(t, restored.Restore(savestate.NewReader(savestate.Bytes(w))))
	require.Equal(t, s.Input1, restored.Input1)
	require.Equal(t, s.Input2, restored.Input2)
	require.Equal(t, s.Input3, restored.Input3)
	require.Equal(t, s.selector, restored.selector)
}
