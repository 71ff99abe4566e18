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

package lc8951

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeDisc is a minimal Disc with one data track starting at the
// disc's first sector, enough to drive the command controller and the
// sector-decode path.
type fakeDisc struct {
	position uint32
	playing  bool
	data     bool
	sector   [2048]byte
}

func (d *fakeDisc) Position() uint32   { return d.position }
func (d *fakeDisc) IsData() bool       { return d.data }
func (d *fakeDisc) IsPregap() bool     { return false }
func (d *fakeDisc) IsTocEmpty() bool   { return false }
func (d *fakeDisc) CurrentTrackIndex() (uint8, uint8) { return 1, 1 }
func (d *fakeDisc) CurrentTrackPosition() uint32      { return 0 }
func (d *fakeDisc) CurrentIndexSize() uint32          { return 100 }
func (d *fakeDisc) FirstTrack() uint8  { return 1 }
func (d *fakeDisc) LastTrack() uint8   { return 1 }
func (d *fakeDisc) TrackPosition(track uint8) uint32 { return 0 }
func (d *fakeDisc) TrackIsData(track uint8) bool     { return d.data }
func (d *fakeDisc) Leadout() uint32    { return 100 }
func (d *fakeDisc) Play()              { d.playing = true }
func (d *fakeDisc) Stop()              { d.playing = false }
func (d *fakeDisc) Seek(position uint32) { d.position = position }
func (d *fakeDisc) ReadData(buffer []byte) { copy(buffer, d.sector[:]) }

// sendCommand clocks a checksummed 5-byte packet into the chip one
// nibble at a time, MSB first, the way the BIOS drives FF0163/FF0165.
func sendCommand(c *Chip, packet [5]uint8) {
	SetPacketChecksum(packet[:])
	for i := 0; i < 10; i++ {
		nibble := packet[i/2] >> 4
		if i&1 != 0 {
			nibble = packet[i/2] & 0x0F
		}
		c.WriteCommandPacket(nibble)
		c.IncreasePacketPointer(0x01)
	}
}

func TestPacketChecksumRoundTrip(t *testing.T) {
	for seed := 0; seed < 256; seed++ {
		p := []uint8{uint8(seed), uint8(seed * 3), uint8(seed * 5), uint8(seed * 7), uint8(seed * 11)}
		SetPacketChecksum(p)
		require.Equal(t, p[4]&0x0F, CalculatePacketChecksum(p), "seed %d", seed)
	}
}

func TestResetDefaults(t *testing.T) {
	c := New()
	require.Equal(t, uint8(0x30), c.WAL)
	require.Equal(t, uint8(0x09), c.WAH)
	require.Equal(t, uint8(0xFF)&^uint8(DECI), c.IFSTAT)
	require.Equal(t, CdIdle, c.Controller.status)
	// The blank response packet still carries a valid checksum.
	require.Equal(t, c.responsePacket[4]&0x0F, CalculatePacketChecksum(c.responsePacket[:]))
}

func TestRegisterPointerAutoIncrementWrapsLowNibbleOnly(t *testing.T) {
	c := New()
	c.SetRegisterPointer(0x1F)
	c.ReadRegister()
	require.Equal(t, uint8(0x10), c.registerPointer)
}

func TestRegisterPointerZeroNeverIncrements(t *testing.T) {
	c := New()
	c.SetRegisterPointer(0)
	c.ReadRegister()
	require.Equal(t, uint8(0), c.registerPointer)
}

func TestReadingStat3ClearsDECI(t *testing.T) {
	c := New()
	c.IFSTAT |= DECI
	c.SetRegisterPointer(0x0F)
	c.ReadRegister()
	require.Zero(t, c.IFSTAT&DECI)
}

func TestHeadReadsShieldedWhenSHDREN(t *testing.T) {
	c := New()
	c.HEAD0 = 0x12
	c.CTRL1 = SHDREN
	c.SetRegisterPointer(0x04)
	require.Equal(t, uint8(0), c.ReadRegister())

	c.CTRL1 = 0
	c.SetRegisterPointer(0x04)
	require.Equal(t, uint8(0x12), c.ReadRegister())
}

func TestDTRGWriteBeginsDataOutBurst(t *testing.T) {
	c := New()
	c.IFCTRL = DOUTEN
	c.SetRegisterPointer(0x06)
	c.WriteRegister(0x01)
	require.Zero(t, c.IFSTAT&DTBSY)

	// DTACK acknowledges the transfer-end interrupt.
	c.SetRegisterPointer(0x07)
	c.WriteRegister(0x01)
	require.NotZero(t, c.IFSTAT&DTEI)
}

func TestPlayCommandTransitionsIdleToPlaying(t *testing.T) {
	disc := &fakeDisc{data: true}
	c := New()
	c.SetDisc(disc)

	// Play M=00 S=00 F=02 (BCD).
	sendCommand(c, [5]uint8{0x30, 0x00, 0x00, 0x02, 0x00})

	require.Equal(t, CdPlaying, c.Controller.status)
	require.True(t, disc.playing)
	require.Equal(t, uint8(CdPlaying|0x02), c.responsePacket[0])
	require.Equal(t, uint8(0x01), c.responsePacket[1]) // track 1, BCD
	require.Equal(t, c.responsePacket[4]&0x0F, CalculatePacketChecksum(c.responsePacket[:]))

	// The next sector-decode tick updates the head registers from the
	// play position: 00:00:02 absolute.
	c.CTRL0 = DECEN
	c.SectorDecoded()
	require.Equal(t, uint8(0x00), c.HEAD1)
	require.Equal(t, uint8(0x02), c.HEAD2)
}

func TestCommandWithBadChecksumReturnsStatusOnly(t *testing.T) {
	disc := &fakeDisc{data: true}
	c := New()
	c.SetDisc(disc)

	packet := [5]uint8{0x30, 0x00, 0x00, 0x02, 0x00}
	SetPacketChecksum(packet[:])
	packet[4] ^= 0x05 // corrupt the checksum
	for i := 0; i < 10; i++ {
		nibble := packet[i/2] >> 4
		if i&1 != 0 {
			nibble = packet[i/2] & 0x0F
		}
		c.WriteCommandPacket(nibble)
		c.IncreasePacketPointer(0x01)
	}

	require.Equal(t, CdIdle, c.Controller.status)
	require.False(t, disc.playing)
	// The refused command still answers with a well-formed packet.
	require.Equal(t, c.responsePacket[4]&0x0F, CalculatePacketChecksum(c.responsePacket[:]))
}

func TestQueryInfoRecognitionConstant(t *testing.T) {
	c := New()
	c.SetDisc(&fakeDisc{})

	sendCommand(c, [5]uint8{0x20, 0x07, 0x00, 0x00, 0x00})
	require.Equal(t, uint8(0x02), c.responsePacket[1])
}

func TestSectorDecodedAdvancesWAAndPT(t *testing.T) {
	disc := &fakeDisc{data: true, playing: true}
	disc.sector[0] = 0xAB
	c := New()
	c.SetDisc(disc)
	c.CTRL0 = DECEN
	c.IFCTRL = DECIEN

	raised := c.SectorDecoded()
	require.True(t, raised)
	require.Equal(t, uint8(0xAB), c.Buffer[0])
	require.Equal(t, uint16(2352+2352), wordRegister(c.WAL, c.WAH))
	require.Equal(t, uint16(2352), wordRegister(c.PTL, c.PTH))
	require.Equal(t, uint8(CRCOK), c.STAT0)
	require.NotZero(t, c.IFSTAT&DECI)

	// DECI is already asserted: a second decode must not report a new
	// IRQ edge.
	require.False(t, c.SectorDecoded())
}

func TestEndTransferAdvancesDACAndClearsDBC(t *testing.T) {
	c := New()
	setWordRegister(&c.DBCL, &c.DBCH, 0x7FF)
	c.IFSTAT &^= DTBSY

	c.EndTransfer(0x7FF)

	require.NotZero(t, c.IFSTAT&DTBSY)
	require.Equal(t, uint16(0x800), wordRegister(c.DACL, c.DACH))
	require.Equal(t, uint16(0), wordRegister(c.DBCL, c.DBCH))
}

func TestReadSectorWordIsBigEndian(t *testing.T) {
	c := New()
	c.Buffer[0] = 0x12
	c.Buffer[1] = 0x34
	require.Equal(t, uint16(0x1234), c.ReadSectorWord(0))
	require.Equal(t, uint16(0xFFFF), c.ReadSectorWord(1024))
}
