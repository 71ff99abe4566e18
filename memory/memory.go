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
	"neocd/neoerrors"
	"neocd/savestate"
)

// CDDecoderPort is the seam the LC8951 chip (package lc8951) plugs
// into the CD/machine register block at FF0100-FF01FF: register file
// access, the command/response packet protocol, and the source of
// sector words for CopyFromCD DMA.
type CDDecoderPort interface {
	SetRegisterPointer(v uint8)
	ReadRegister() uint8
	WriteRegister(v uint8)
	WriteCommandPacket(v uint8)
	ReadResponsePacket() uint8
	IncreasePacketPointer(v uint8)
	ResetPacketPointers()
	ReadSectorWord(wordOffset int) uint16
	EndTransfer(dbc int)
	// ResetDrive services the FF0000 CD-ROM drive-reset register:
	// stop the disc and force the command controller back to idle.
	// Distinct from ResetPacketPointers, which FF0181 (CD
	// communication reset) uses.
	ResetDrive()
}

// CDAudioPort exposes the direct-read CD audio sample registers at
// FF0188/FF018A.
type CDAudioPort interface {
	Playing() bool
	CurrentSampleLeft() uint16
	CurrentSampleRight() uint16
}

// IRQController is the seam the interrupt/scheduler layer plugs into
// the CD/machine register block for the IRQ mask and acknowledge
// registers (FF0002, FF0004, FF000F).
type IRQController interface {
	SetMask1(v uint16)
	SetMask2(v uint16)
	// Mask2 returns the VBL/HBL interrupt mask last written to
	// FF0004. Guest code saves and restores this register across its
	// own interrupt handlers, so the read path must be faithful.
	Mask2() uint16
	AcknowledgeDecoder()
	AcknowledgeCommunication()
}

// Z80Control is the seam the Z80 core and YM2610 plug into the
// machine register block's reset/enable register (FF0183).
type Z80Control interface {
	SetEnabled(enabled bool)
	ResetSound()
}

// WatchdogControl is the seam the timer wheel plugs into FF016F.
type WatchdogControl interface {
	SetActive(active bool)
}

// PaletteWatcher is notified after every palette-RAM word changes, so
// the video generator can recompute the affected RGB565 shadow entry
// without rescanning the whole palette.
type PaletteWatcher interface {
	PaletteWritten(index int)
}

// Peripherals collects every externally-owned Handler the memory map
// dispatches to. Each is optional; a nil Handler behaves as
// ReadAsFF/IgnoredWrite so the map stays usable while a frontend wires
// components up incrementally.
type Peripherals struct {
	Controller1 Handler
	Z80Comm     Handler
	Controller2 Handler
	Controller3 Handler
	Switches    Handler
	VideoRegs   Handler
	CDDecoder   CDDecoderPort
	CDAudio     CDAudioPort
	IRQ         IRQController
	Z80         Z80Control
	Watchdog    WatchdogControl
	Palette     PaletteWatcher
}

// Memory is the machine's address-space dispatcher: the region table,
// the banks it resolves direct accesses into, the DMA engine, and the
// vector-alias / bank-switch control state.
type Memory struct {
	banks *Banks
	table *regionTable
	dma   *DMA

	peripherals Peripherals

	// vectorIsROM selects whether [0,0x7F] aliases ROM (true) or RAM
	// (false). Switched by writes to 0x3A0002/0x3A0012.
	vectorIsROM bool

	// bankSwitch controls the E00000 window.
	bankSwitch bankSwitchState

	// busErrorAddr/pending form the pending-exception channel the
	// scheduler polls, rather than unwinding through the CPU core.
	busErrorPending bool
	busErrorAddr    uint32

	// videoCtrl mirrors the layer-enable latches at FF0111/FF0115/
	// FF0119, consulted by the video package.
	videoCtrl videoCtrlState

	// cdCommEnabled mirrors FF0181 (CD communication reset, active low).
	cdCommEnabled bool

	// region/hardware identity consulted by the FF011C system-config
	// read. CDZ units leave clear the 0x1000 bit that Top/Front
	// Loader units set.
	nationality uint8
	isCDZ       bool
}

type videoCtrlState struct {
	sprDisable  bool
	fixDisable  bool
	videoEnable bool
}

type bankSwitchState struct {
	area       int  // 0=SPR 1=PCM 2=Z80 3=FIX
	busRequest [4]bool
	spriteBank uint8 // 3-bit
	pcmBank    uint8 // 1-bit
}

const (
	areaSPR = 0
	areaPCM = 1
	areaZ80 = 2
	areaFIX = 3
)

// NewMemory builds the region table and wires in the given
// peripherals and banks.
func NewMemory(banks *Banks, p Peripherals) *Memory {
	m := &Memory{
		banks:         banks,
		table:         newRegionTable(),
		peripherals:   p,
		cdCommEnabled: true,
		vectorIsROM:   true,
	}
	m.dma = newDMA(m)
	m.buildRegions()
	return m
}

// SetPeripherals replaces the injected handler set, used when a
// frontend wires up components after construction (e.g. the video
// package's VideoRegs handler, which itself needs a *Memory-free
// reference to Banks).
func (m *Memory) SetPeripherals(p Peripherals) {
	m.peripherals = p
	m.buildRegions()
}

func (m *Memory) buildRegions() {
	m.table = newRegionTable()

	// 000080-1FFFFF: Main RAM, direct r/w. The vector alias window
	// [0,0x7F] is serviced specially in Read8/Write8, not through the
	// table, since its target bank changes at runtime.
	m.table.add(&Region{
		Name: "main-ram", Start: 0x000080, End: 0x1FFFFF, Mask: MainRAMSize - 1,
		ReadMode: DirectRead, WriteMode: DirectWrite,
		ReadBase: m.banks.MainRAM, WriteBase: m.banks.MainRAM,
	})
	// The vector window itself still needs a table entry so totality
	// holds; Read8/Write8 special-case it before consulting the table.
	m.table.add(&Region{
		Name: "vector-alias", Start: 0x000000, End: 0x00007F,
		ReadMode: DirectRead, WriteMode: DirectWrite,
	})

	m.table.add(&Region{
		Name: "unused", Start: 0x200000, End: 0x2FFFFF,
		ReadMode: ReadAsFF, WriteMode: IgnoredWrite,
	})
	m.table.add(&Region{
		Name: "controller1", Start: 0x300000, End: 0x31FFFF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: orNop(m.peripherals.Controller1),
	})
	m.table.add(&Region{
		Name: "z80comm", Start: 0x320000, End: 0x33FFFF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: orNop(m.peripherals.Z80Comm),
	})
	m.table.add(&Region{
		Name: "controller2", Start: 0x340000, End: 0x35FFFF,
		ReadMode: MappedRead, WriteMode: IgnoredWrite, Handler: orNop(m.peripherals.Controller2),
	})
	m.table.add(&Region{
		Name: "unused2", Start: 0x360000, End: 0x37FFFF,
		ReadMode: ReadAsFF, WriteMode: IgnoredWrite,
	})
	m.table.add(&Region{
		Name: "controller3", Start: 0x380000, End: 0x39FFFF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: orNop(m.peripherals.Controller3),
	})
	m.table.add(&Region{
		Name: "switches", Start: 0x3A0000, End: 0x3BFFFF,
		ReadMode: ReadAsFF, WriteMode: MappedWrite, Handler: orNop(m.peripherals.Switches),
	})
	m.table.add(&Region{
		Name: "videoregs", Start: 0x3C0000, End: 0x3DFFFF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: orNop(m.peripherals.VideoRegs),
	})
	m.table.add(&Region{
		Name: "unused3", Start: 0x3E0000, End: 0x3FFFFF,
		ReadMode: ReadAsFF, WriteMode: IgnoredWrite,
	})
	m.table.add(&Region{
		Name: "palette", Start: 0x400000, End: 0x4FFFFF, Mask: 0x1FFF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: &paletteHandler{m: m},
	})
	m.table.add(&Region{
		Name: "backup-ram", Start: 0x800000, End: 0x8FFFFF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: &backupRAMHandler{banks: m.banks},
	})
	m.table.add(&Region{
		Name: "bios", Start: 0xC00000, End: 0xCFFFFF, Mask: BiosROMSize - 1,
		ReadMode: DirectRead, WriteMode: IgnoredWrite, ReadBase: m.banks.BiosROM,
	})
	m.table.add(&Region{
		Name: "bankswitch", Start: 0xE00000, End: 0xEFFFFF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: &bankSwitchHandler{m: m},
	})
	m.table.add(&Region{
		Name: "cdregs", Start: 0xFF0000, End: 0xFF01FF,
		ReadMode: MappedRead, WriteMode: MappedWrite, Handler: &machineRegsHandler{m: m},
	})
}

type nopHandler struct{}

func (nopHandler) ReadByte(uint32) uint8     { return 0xFF }
func (nopHandler) WriteByte(uint32, uint8)   {}

func orNop(h Handler) Handler {
	if h == nil {
		return nopHandler{}
	}
	return h
}

// raiseBusError records a pending bus-error exception. The scheduler
// consults PendingBusError after each slice, clears it and passes the
// address to its bus-error callback.
func (m *Memory) raiseBusError(addr uint32) {
	m.busErrorPending = true
	m.busErrorAddr = addr
}

// PendingBusError reports whether an unmapped access occurred since
// the last ClearBusError.
func (m *Memory) PendingBusError() (uint32, bool) {
	return m.busErrorAddr, m.busErrorPending
}

func (m *Memory) ClearBusError() {
	m.busErrorPending = false
}

// Read8 reads one byte, honoring the vector alias and each region's
// ReadMode. Unmapped granules raise a bus error and return 0.
func (m *Memory) Read8(addr uint32) uint8 {
	addr &= 0xFFFFFF
	if addr < 0x80 {
		return m.readVector(addr)
	}
	r := m.table.lookup(addr)
	if r == nil {
		m.raiseBusError(addr)
		return 0
	}
	switch r.ReadMode {
	case DirectRead:
		return r.ReadBase[r.offset(addr)]
	case ReadAsFF:
		return 0xFF
	case MappedRead:
		if r.Handler == nil {
			return 0xFF
		}
		return r.Handler.ReadByte(addr)
	}
	return 0xFF
}

func (m *Memory) readVector(addr uint32) uint8 {
	if m.vectorIsROM {
		return m.banks.BiosROM[addr]
	}
	return m.banks.MainRAM[addr]
}

// Write8 writes one byte, honoring the vector alias and each region's
// WriteMode.
func (m *Memory) Write8(addr uint32, data uint8) {
	addr &= 0xFFFFFF
	if addr < 0x80 {
		m.writeVector(addr, data)
		return
	}
	r := m.table.lookup(addr)
	if r == nil {
		m.raiseBusError(addr)
		return
	}
	switch r.WriteMode {
	case DirectWrite:
		if r.WriteBase != nil {
			r.WriteBase[r.offset(addr)] = data
		}
	case IgnoredWrite:
	case MappedWrite:
		if r.Handler != nil {
			r.Handler.WriteByte(addr, data)
		}
	}
}

func (m *Memory) writeVector(addr uint32, data uint8) {
	if m.vectorIsROM {
		// ROM alias: writes are ignored, matching the BIOS region's
		// own write policy.
		return
	}
	m.banks.MainRAM[addr] = data
}

// Read16/Write16 compose big-endian word access from the byte
// primitives.
func (m *Memory) Read16(addr uint32) uint16 {
	hi := m.Read8(addr)
	lo := m.Read8(addr + 1)
	return uint16(hi)<<8 | uint16(lo)
}

func (m *Memory) Write16(addr uint32, data uint16) {
	m.Write8(addr, uint8(data>>8))
	m.Write8(addr+1, uint8(data))
}

// Peek is a debug-only accessor that never raises a bus error (an
// unmapped address returns a BusError error instead). It reads the
// backing store directly where one exists; other regions are read
// through Read8, so their handlers run.
func (m *Memory) Peek(addr uint32) (uint8, error) {
	addr &= 0xFFFFFF
	if addr < 0x80 {
		return m.readVector(addr), nil
	}
	r := m.table.lookup(addr)
	if r == nil {
		return 0, neoerrors.New(neoerrors.BusError, addr)
	}
	if r.ReadMode == DirectRead && r.ReadBase != nil {
		return r.ReadBase[r.offset(addr)], nil
	}
	return m.Read8(addr), nil
}

// SetVectorIsROM implements the vector switch at 3A0002/3A0012.
func (m *Memory) SetVectorIsROM(isROM bool) {
	m.vectorIsROM = isROM
}

func (m *Memory) VectorIsROM() bool { return m.vectorIsROM }

// SprLayerEnabled/FixLayerEnabled/VideoEnabled report the FF0111/
// FF0115/FF0119 layer-enable latches the video package consults each
// frame.
func (m *Memory) SprLayerEnabled() bool { return !m.videoCtrl.sprDisable }
func (m *Memory) FixLayerEnabled() bool { return !m.videoCtrl.fixDisable }
func (m *Memory) VideoEnabled() bool    { return m.videoCtrl.videoEnable }

// SetNationality and SetIsCDZ configure the FF011C system-config
// read reported to the guest BIOS.
func (m *Memory) SetNationality(n uint8) { m.nationality = n & 0x7 }
func (m *Memory) SetIsCDZ(isCDZ bool)    { m.isCDZ = isCDZ }

// CDCommunicationEnabled reports the state of FF0181 (active low).
func (m *Memory) CDCommunicationEnabled() bool { return m.cdCommEnabled }

func (m *Memory) Banks() *Banks { return m.banks }

func (m *Memory) DMA() *DMA { return m.dma }

// Reset restores the register-level state memory.reset() clears on a
// machine reset: the vector alias, bank-switch window, layer-enable
// latches, CD communication gate and the DMA engine's programmed
// registers. Bank contents (RAM/ROM/VRAM/...) are untouched, matching
// real hardware where a soft reset does not clear memory.
func (m *Memory) Reset() {
	m.vectorIsROM = true
	m.bankSwitch = bankSwitchState{}
	m.videoCtrl = videoCtrlState{}
	m.cdCommEnabled = true
	m.busErrorPending = false
	m.dma.reset()
}

func (m *Memory) Save(w savestate.Writer) {
	w.PutU8(boolToU8(m.vectorIsROM))
	w.PutU8(uint8(m.bankSwitch.area))
	for _, v := range m.bankSwitch.busRequest {
		w.PutU8(boolToU8(v))
	}
	w.PutU8(m.bankSwitch.spriteBank)
	w.PutU8(m.bankSwitch.pcmBank)
	w.PutU8(boolToU8(m.videoCtrl.sprDisable))
	w.PutU8(boolToU8(m.videoCtrl.fixDisable))
	w.PutU8(boolToU8(m.videoCtrl.videoEnable))
	w.PutU8(boolToU8(m.cdCommEnabled))
	m.dma.Save(w)
}

func (m *Memory) Restore(r savestate.Reader) error {
	m.vectorIsROM = r.GetU8() != 0
	m.bankSwitch.area = int(r.GetU8())
	for i := range m.bankSwitch.busRequest {
		m.bankSwitch.busRequest[i] = r.GetU8() != 0
	}
	m.bankSwitch.spriteBank = r.GetU8()
	m.bankSwitch.pcmBank = r.GetU8()
	m.videoCtrl.sprDisable = r.GetU8() != 0
	m.videoCtrl.fixDisable = r.GetU8() != 0
	m.videoCtrl.videoEnable = r.GetU8() != 0
	m.cdCommEnabled = r.GetU8() != 0
	if err := m.dma.Restore(r); err != nil {
		return err
	}
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
