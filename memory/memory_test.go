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

package memory

import (
	"testing"

	"neocd/savestate"

	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *Memory {
	t.Helper()
	return NewMemory(NewBanks(), Peripherals{})
}

// TestRegionDispatchIsTotal sweeps the entire 24-bit space: every
// granule must resolve through the lookup table without panicking,
// whether that lands on a real region or a genuine gap (which reports
// a bus error rather than crashing).
func TestRegionDispatchIsTotal(t *testing.T) {
	m := newTestMemory(t)
	for addr := uint32(0); addr <= 0xFFFFFF; addr += 0x4001 {
		_ = m.Read8(addr)
		m.ClearBusError()
	}
}

func TestUnmappedAddressRaisesBusError(t *testing.T) {
	m := newTestMemory(t)
	m.Read8(0x500000)
	_, pending := m.PendingBusError()
	require.True(t, pending)
}

func TestBigEndianWordAccess(t *testing.T) {
	m := newTestMemory(t)
	m.Write16(0x1000, 0xABCD)
	require.Equal(t, uint8(0xAB), m.Read8(0x1000))
	require.Equal(t, uint8(0xCD), m.Read8(0x1001))
	require.Equal(t, uint16(0xABCD), m.Read16(0x1000))
}

func TestVectorAliasFollowsROMRAMSwitch(t *testing.T) {
	m := newTestMemory(t)
	m.Banks().BiosROM[0] = 0x42
	m.Banks().MainRAM[0] = 0x99

	m.SetVectorIsROM(true)
	require.Equal(t, uint8(0x42), m.Read8(0))

	m.SetVectorIsROM(false)
	require.Equal(t, uint8(0x99), m.Read8(0))

	// Writes through the RAM alias land in main RAM; the ROM alias
	// ignores writes entirely.
	m.Write8(0, 0x55)
	require.Equal(t, uint8(0x55), m.Banks().MainRAM[0])

	m.SetVectorIsROM(true)
	m.Write8(0, 0x77)
	require.Equal(t, uint8(0x42), m.Banks().BiosROM[0])
}

func TestPaletteHandlerMasksAndPacksWords(t *testing.T) {
	m := newTestMemory(t)
	m.Write16(0x400000, 0x1234)
	require.Equal(t, uint16(0x1234), m.Banks().Palette[0])
	// Mask 0x1FFF wraps every 8KiB repeat of the 1MiB window onto the
	// same 4096-word bank.
	m.Write16(0x402000, 0x5678)
	require.Equal(t, uint16(0x5678), m.Banks().Palette[0])
}

func TestBackupRAMOnlyOddBytesAreWired(t *testing.T) {
	m := newTestMemory(t)
	m.Write8(0x800000, 0xAA) // even offset: open bus, no-op
	m.Write8(0x800001, 0xBB) // odd offset: backs SRAM[0]
	require.Equal(t, uint8(0xFF), m.Read8(0x800000))
	require.Equal(t, uint8(0xBB), m.Read8(0x800001))
	require.Equal(t, uint8(0xBB), m.Banks().BackupRAM[0])
}

func TestSaveRestoreRoundTrip(t *testing.T) {
	m := newTestMemory(t)
	m.SetVectorIsROM(true)
	m.SetBankArea(areaPCM)
	m.SetBankBusRequest(areaPCM, true)
	m.SetPCMBank(1)

	w := savestate.NewWriter()
	m.Save(w)

	other := newTestMemory(t)
	err := other.Restore(savestate.NewReader(savestate.Bytes(w)))
	require.NoError(t, err)
	require.True(t, other.VectorIsROM())

	other.SetBankBusRequest(areaPCM, true)
	require.Equal(t, uint8(1), other.bankSwitch.pcmBank)
	require.Equal(t, areaPCM, other.bankSwitch.area)
}
