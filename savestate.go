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
	"neocd/neoerrors"
	"neocd/prefs"
	"neocd/savestate"
)

var errShort = neoerrors.New(neoerrors.SavestateShort)

// Save pushes the whole machine in a fixed order: machine-level
// scalars, the M68K and Z80 register files, the timer
// wheel, the memory banks, the memory-map latches, the video state,
// the audio state (the mixer's fractional sample carry), the input
// state, the YM2610, the LC8951, the CD-ROM position and finally the
// scheduler's cycle accumulators.
func (m *Machine) Save(w savestate.Writer) {
	w.PutU32(m.cdzIrq1Divisor)
	w.PutU8(boolToU8(m.irqMasterEnable))
	w.PutU16(m.irqMask1)
	w.PutU16(m.irqMask2)
	w.PutU8(boolToU8(m.irq1EnabledThisFrame))
	w.PutU8(boolToU8(m.cdSectorDecodedThisFrame))
	w.PutU8(boolToU8(m.fastForward))
	w.PutU8(uint8(m.nationality))
	w.PutU32(m.cdromVector)
	w.PutU8(m.pendingInterrupts)
	w.PutU8(boolToU8(m.z80NMIDisable))
	w.PutU8(m.audioCommand)
	w.PutU8(m.audioResult)
	w.PutU8(boolToU8(m.isCDZ))

	m.m68k.Save(w)
	m.z80.Save(w)
	m.Wheel.Save(w)
	m.Banks.Save(w)
	m.Mem.Save(w)
	m.Video.Save(w)
	w.PutF64(m.Mixer.SamplesSoFar())
	m.Input.Save(w)
	m.YM.Save(w)
	m.LC.Save(w)

	if m.disc != nil {
		m.disc.Save(w)
	} else {
		w.PutU32(0)
		w.PutU8(0)
	}

	m.Sched.Save(w)
}

// Restore reverses Save exactly, then rebuilds the derived state
// that is regenerated rather than copied: the RGB565 palette shadow,
// the fix non-blank bitmap (rebuilt inside
// Banks.Restore) and the CD play position (re-sought inside
// Cdrom.Restore). A short buffer leaves the machine reset rather than
// half-restored.
func (m *Machine) Restore(r savestate.Reader) error {
	if err := m.restore(r); err != nil {
		m.Reset()
		return err
	}
	return nil
}

func (m *Machine) restore(r savestate.Reader) error {
	m.cdzIrq1Divisor = r.GetU32()
	m.irqMasterEnable = r.GetU8() != 0
	m.irqMask1 = r.GetU16()
	m.irqMask2 = r.GetU16()
	m.irq1EnabledThisFrame = r.GetU8() != 0
	m.cdSectorDecodedThisFrame = r.GetU8() != 0
	m.fastForward = r.GetU8() != 0
	m.nationality = prefs.Region(r.GetU8())
	m.cdromVector = r.GetU32()
	m.pendingInterrupts = r.GetU8()
	m.z80NMIDisable = r.GetU8() != 0
	m.audioCommand = r.GetU8()
	m.audioResult = r.GetU8()
	m.isCDZ = r.GetU8() != 0

	if r.Failed() {
		return errShort
	}

	if err := m.m68k.Restore(r); err != nil {
		return err
	}
	if err := m.z80.Restore(r); err != nil {
		return err
	}
	if err := m.Wheel.Restore(r); err != nil {
		return err
	}
	if err := m.Banks.Restore(r); err != nil {
		return err
	}
	if err := m.Mem.Restore(r); err != nil {
		return err
	}
	if err := m.Video.Restore(r); err != nil {
		return err
	}
	m.Mixer.SetSamplesSoFar(r.GetF64())
	if err := m.Input.Restore(r); err != nil {
		return err
	}
	if err := m.YM.Restore(r); err != nil {
		return err
	}
	if err := m.LC.Restore(r); err != nil {
		return err
	}

	if m.disc != nil {
		if err := m.disc.Restore(r); err != nil {
			return err
		}
	} else {
		r.GetU32()
		r.GetU8()
	}

	if err := m.Sched.Restore(r); err != nil {
		return err
	}
	if r.Failed() {
		return errShort
	}

	m.Mem.SetNationality(uint8(m.nationality))
	m.Mem.SetIsCDZ(m.isCDZ)
	m.Video.ConvertPalette(m.Banks)
	m.updateInterrupts()
	return nil
}

// Serialize produces the opaque savestate blob handed to the
// frontend.
func (m *Machine) Serialize() []byte {
	w := savestate.NewWriter()
	m.Save(w)
	return savestate.Bytes(w)
}

// SerializeSize reports the blob size via a dry-run serialize, for
// frontends that preallocate.
func (m *Machine) SerializeSize() int {
	return len(m.Serialize())
}

// Unserialize restores the machine from a blob produced by Serialize.
func (m *Machine) Unserialize(blob []byte) error {
	return m.Restore(savestate.NewReader(blob))
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
