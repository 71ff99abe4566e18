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

import "neocd/cdrom"

// Controller status codes, as reported in the high nibble of a
// response packet's first byte.
const (
	CdIdle      uint8 = 0x00
	CdPlaying   uint8 = 0x10
	CdSeeking   uint8 = 0x20
	CdScanning  uint8 = 0x30
	CdPaused    uint8 = 0x40
	CdStopped   uint8 = 0x90
	CdEndOfDisc uint8 = 0xC0
)

// ScanSpeed is the number of sectors a scan command steps per call.
const ScanSpeed = 30

// Controller is the command/response state machine layered on top of
// the chip's 5-byte packet protocol. Its only state is the one status
// byte.
type Controller struct {
	status uint8
}

func (ctl *Controller) reset() {
	ctl.status = CdIdle
}

// processCdCommand decodes the 5-byte command packet just clocked
// into chip.commandPacket and writes a 5-byte response. disc is
// chip's installed Disc.
func (ctl *Controller) processCdCommand(chip *Chip) {
	disc := chip.disc
	cmd := chip.commandPacket
	resp := chip.responsePacket[:]

	if (cmd[4] & 0x0F) != CalculatePacketChecksum(cmd[:]) {
		resp[0] = ctl.status
		resp[1] = 0x00
		resp[2] = 0x00
		resp[3] = 0x00
		resp[4] = 0x00
		SetPacketChecksum(resp)
		return
	}

	switch cmd[0] {
	case 0x00: // Status
		resp[0] = (resp[0] & 0x0F) | ctl.status

	case 0x10: // Stop
		disc.Stop()
		ctl.status = CdIdle
		resp[0], resp[1], resp[2], resp[3], resp[4] = ctl.status, 0, 0, 0, 0

	case 0x20: // Query info
		if ctl.status == CdIdle && !disc.IsTocEmpty() {
			ctl.status = CdStopped
		}
		ctl.queryInfo(chip, disc, cmd, resp)

	case 0x30: // Play
		m := cdrom.FromBCD(cmd[1])
		s := cdrom.FromBCD(cmd[2])
		f := cdrom.FromBCD(cmd[3])
		position := cdrom.ToLBA(cdrom.FromMSF(uint32(m), uint32(s), uint32(f)))

		disc.Play()
		disc.Seek(position)

		ctl.status = CdPlaying
		track, _ := disc.CurrentTrackIndex()
		resp[0] = ctl.status | 0x02
		resp[1] = cdrom.ToBCD(track)
		resp[2], resp[3], resp[4] = 0, 0, 0

	case 0x40: // Seek; pauses instead of seeking, with a transient Seeking status
		disc.Stop()
		ctl.status = CdPaused
		resp[0] = CdSeeking
		resp[1], resp[2], resp[3], resp[4] = 0, 0, 0, 0

	case 0x50: // Unknown, CDZ only
		resp[0] = ctl.status

	case 0x60: // Pause
		disc.Stop()
		ctl.status = CdPaused
		resp[0] = ctl.status

	case 0x70: // Resume
		disc.Play()
		ctl.status = CdPlaying
		resp[0] = ctl.status

	case 0x80: // Scan forward
		position := disc.Position() + ScanSpeed
		if leadout := disc.Leadout(); position > leadout-1 {
			position = leadout - 1
		}
		disc.Seek(position)
		ctl.status = CdPlaying
		resp[0] = CdScanning

	case 0x90: // Scan backward
		position := disc.Position()
		if position < ScanSpeed {
			position = 0
		} else {
			position -= ScanSpeed
		}
		disc.Seek(position)
		ctl.status = CdPlaying
		resp[0] = CdScanning

	case 0xB0: // Move to track
		track := cdrom.FromBCD(cmd[1])
		position := disc.TrackPosition(track)
		disc.Play()
		disc.Seek(position)
		ctl.status = CdPlaying
		newTrack, _ := disc.CurrentTrackIndex()
		resp[0] = ctl.status | 0x02
		resp[1] = cdrom.ToBCD(newTrack)
		resp[2], resp[3], resp[4] = 0, 0, 0

	case 0x02, 0x13, 0x23, 0x33, 0x43, 0x53, 0x63, 0xE2: // copy-protection probes
		resp[0], resp[1], resp[2], resp[3], resp[4] = ctl.status, 0, 0, 0, 0

	default:
		resp[0], resp[1], resp[2], resp[3], resp[4] = ctl.status, 0, 0, 0, 0
	}

	SetPacketChecksum(resp)
}

func (ctl *Controller) queryInfo(chip *Chip, disc Disc, cmd [5]uint8, resp []uint8) {
	switch cmd[1] & 0x0F {
	case 0x00: // Current absolute position
		m, s, f := cdrom.ToMSF(cdrom.FromLBA(disc.Position()))
		resp[0] = ctl.status
		resp[1] = cdrom.ToBCD(uint8(m))
		resp[2] = cdrom.ToBCD(uint8(s))
		resp[3] = cdrom.ToBCD(uint8(f))
		resp[4] = dataFlag(disc)

	case 0x01: // Current position relative to track start
		var position uint32
		if disc.IsPregap() {
			position = (disc.CurrentTrackPosition() + disc.CurrentIndexSize()) - (disc.Position() + 1)
		} else {
			position = disc.Position() - disc.CurrentTrackPosition()
		}
		m, s, f := cdrom.ToMSF(position)
		resp[0] = ctl.status | 0x01
		resp[1] = cdrom.ToBCD(uint8(m))
		resp[2] = cdrom.ToBCD(uint8(s))
		resp[3] = cdrom.ToBCD(uint8(f))
		resp[4] = dataFlag(disc)

	case 0x02: // Current track/index
		track, index := disc.CurrentTrackIndex()
		resp[0] = ctl.status | 0x02
		resp[1] = cdrom.ToBCD(track)
		resp[2] = cdrom.ToBCD(index)
		resp[3] = 0x00
		resp[4] = dataFlag(disc)

	case 0x03: // Leadout address
		m, s, f := cdrom.ToMSF(cdrom.FromLBA(disc.Leadout()))
		resp[0] = ctl.status | 0x03
		resp[1] = cdrom.ToBCD(uint8(m))
		resp[2] = cdrom.ToBCD(uint8(s))
		resp[3] = cdrom.ToBCD(uint8(f))
		resp[4] = 0x00

	case 0x04: // First/last track
		resp[0] = ctl.status | 0x04
		resp[1] = cdrom.ToBCD(disc.FirstTrack())
		resp[2] = cdrom.ToBCD(disc.LastTrack())
		resp[3] = 0x00
		resp[4] = 0x00

	case 0x05: // Track info
		track := cdrom.FromBCD(cmd[2])
		position := cdrom.FromLBA(disc.TrackPosition(track))
		m, s, f := cdrom.ToMSF(position)
		resp[0] = ctl.status | 0x05
		resp[1] = cdrom.ToBCD(uint8(m))
		resp[2] = cdrom.ToBCD(uint8(s))
		if disc.TrackIsData(track) {
			resp[3] = cdrom.ToBCD(uint8(f)) | 0x80
		} else {
			resp[3] = cdrom.ToBCD(uint8(f))
		}
		resp[4] = cmd[2] << 4

	case 0x06: // End of disc check
		if disc.Position() >= disc.Leadout() {
			ctl.status = CdEndOfDisc
		}
		resp[0] = ctl.status | 0x06
		resp[1], resp[2], resp[3] = 0, 0, 0
		resp[4] = dataFlag(disc)

	case 0x07: // CDZ disc-recognition probe
		resp[0] = ctl.status | 0x07
		resp[1] = 0x02
		resp[2], resp[3], resp[4] = 0, 0, 0

	default:
		resp[0] = ctl.status
		resp[1], resp[2], resp[3], resp[4] = 0, 0, 0, 0
	}
}

func dataFlag(disc Disc) uint8 {
	if disc.IsData() {
		return 0x40
	}
	return 0x00
}
