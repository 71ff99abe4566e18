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

	"github.com/stretchr/testify/require"
)

// TestDMAPatternFillScenario drives a pattern fill the way a guest
// would: program FF0064/66 = destination 0x100000, FF0070/72 = length 0x100,
// FF006C = pattern 0xAAAA, FF007E = opcode 0xFFCD, then trigger via
// FF0061 = 0x40. Every word in [0x100000, 0x1001FE] must equal 0xAAAA
// and nothing else in RAM changes.
func TestDMAPatternFillScenario(t *testing.T) {
	m := newTestMemory(t)

	m.Write16(0xFF0064, 0x0010) // destination high word
	m.Write16(0xFF0066, 0x0000) // destination low word
	m.Write16(0xFF0070, 0x0000) // length high word
	m.Write16(0xFF0072, 0x0100) // length low word
	m.Write16(0xFF006C, 0xAAAA) // pattern
	m.Write16(0xFF007E, 0xFFCD) // opcode: Pattern
	m.Write8(0xFF0061, 0x40)    // trigger

	for off := uint32(0); off < 0x100*2; off += 2 {
		addr := 0x100000 + off
		require.Equal(t, uint16(0xAAAA), m.Read16(addr), "addr %06x", addr)
	}
	require.Equal(t, uint8(0), m.Banks().MainRAM[0x100200&uint32(MainRAMSize-1)])
}

func TestDMACopyUsesSwappedSourceDestinationRegisters(t *testing.T) {
	m := newTestMemory(t)
	m.Banks().MainRAM[0x2000] = 0x12
	m.Banks().MainRAM[0x2001] = 0x34

	// Copy reads from dmaDestination and writes to dmaSource: the
	// register names are swapped by hardware convention.
	m.Write16(0xFF0068, 0x0000) // source high -> the actual write target
	m.Write16(0xFF006A, 0x3000) // source low
	m.Write16(0xFF0064, 0x0000) // destination high -> the actual read source
	m.Write16(0xFF0066, 0x2000) // destination low
	m.Write16(0xFF0070, 0x0000)
	m.Write16(0xFF0072, 0x0001) // one word
	m.Write16(0xFF007E, 0xFE3D) // opcode: Copy
	m.Write8(0xFF0061, 0x40)

	require.Equal(t, uint8(0x12), m.Banks().MainRAM[0x3000])
	require.Equal(t, uint8(0x34), m.Banks().MainRAM[0x3001])
}

func TestDMAUnknownOpcodeIsSkippedSilently(t *testing.T) {
	m := newTestMemory(t)
	m.Banks().MainRAM[0x4000] = 0x11

	m.Write16(0xFF0064, 0x0000)
	m.Write16(0xFF0066, 0x4000)
	m.Write16(0xFF0070, 0x0000)
	m.Write16(0xFF0072, 0x0001)
	m.Write16(0xFF007E, 0x0000) // not a recognized opcode
	m.Write8(0xFF0061, 0x40)

	require.Equal(t, uint8(0x11), m.Banks().MainRAM[0x4000])
}

func TestDMAControlClearResetsRegisters(t *testing.T) {
	m := newTestMemory(t)
	m.Write16(0xFF007E, 0xFFCD)
	m.Write8(0xFF0061, 0x00)
	require.Equal(t, uint16(0), m.dma.config[0])
}
