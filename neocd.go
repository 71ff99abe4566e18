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

// Package neocd aggregates every subsystem of the Neo Geo CD core
// into one explicit machine value: the memory map and its banks, the
// timer wheel, the scheduler, the video generator, the LC8951 CD
// decoder, the CD-ROM drive, the YM2610 and the per-frame audio
// mixer. Nothing in this repository reaches for a process-wide
// instance; every cross-component link is a narrow interface wired up
// here, with the machine as the only owner.
package neocd

import (
	"path/filepath"
	"strings"

	"neocd/audio"
	"neocd/cdrom"
	"neocd/clocks"
	"neocd/cpu"
	"neocd/input"
	"neocd/lc8951"
	"neocd/logger"
	"neocd/memory"
	"neocd/neoerrors"
	"neocd/prefs"
	"neocd/scheduler"
	"neocd/timers"
	"neocd/video"
	"neocd/ym2610"
)

// Interrupt pending bits.
const (
	intVerticalBlank      = 0x01
	intCdromDecoder       = 0x02
	intCdromCommunication = 0x04
	intRaster             = 0x08
)

// M68K autovector numbers latched for the level-2 (CD-ROM) interrupt.
const (
	vectorDecoder       = 0x54
	vectorCommunication = 0x58
)

// BIOSPatcher is the seam a frontend supplies to patch a recognized
// BIOS image in place (the CD speed hack). BIOS discovery and the
// patch patterns themselves live with the frontend, outside this core.
type BIOSPatcher interface {
	Patch(rom []byte, cdSpeedHack bool)
}

// NMICore is implemented by Z80 cores that expose a non-maskable
// interrupt line in addition to cpu.Core's maskable one. The audio
// command post pulses it; a core without NMI support simply misses
// sound commands, which is the best a black-box core can offer.
type NMICore interface {
	PulseNMI()
}

// Machine is the whole console. Construct with New, wire a frontend
// to the exported component fields, and call RunOneFrame once per
// displayed frame.
type Machine struct {
	Banks *memory.Banks
	Mem   *memory.Memory
	Wheel *timers.Wheel
	Video *video.State
	Input *input.State
	LC    *lc8951.Chip
	YM    *ym2610.Chip
	Mixer *audio.Mixer
	Sched *scheduler.Scheduler
	Prefs *prefs.Values

	m68k cpu.Core
	z80  cpu.Core

	disc *cdrom.Cdrom

	patcher BIOSPatcher

	// Machine-level scalars, serialized as one block.
	irqMasterEnable          bool
	irqMask1                 uint16
	irqMask2                 uint16
	pendingInterrupts        uint8
	cdromVector              uint32
	cdzIrq1Divisor           uint32
	irq1EnabledThisFrame     bool
	cdSectorDecodedThisFrame bool
	fastForward              bool
	nationality              prefs.Region
	isCDZ                    bool
	audioCommand             uint8
	audioResult              uint8
	z80NMIDisable            bool
}

// New builds a Machine around the two black-box CPU cores. Either may
// be nil, in which case a cpu.NullCore stands in (useful for tests and
// for frontends that wire cores up later via the exported fields).
func New(m68k, z80 cpu.Core) *Machine {
	if m68k == nil {
		m68k = &cpu.NullCore{}
	}
	if z80 == nil {
		z80 = &cpu.NullCore{}
	}

	m := &Machine{
		Banks: memory.NewBanks(),
		Wheel: timers.NewWheel(),
		Video: video.New(),
		Input: input.New(),
		LC:    lc8951.New(),
		YM:    ym2610.New(),
		Mixer: audio.New(),
		Prefs: prefs.NewValues(),
		m68k:  m68k,
		z80:   z80,

		z80NMIDisable: true,
	}

	m.Mem = memory.NewMemory(m.Banks, memory.Peripherals{})
	m.Sched = scheduler.New(m68k, z80, m.Wheel, m.Mem, m.Mixer, m.YM)
	m.Sched.SetFrameStartHook(m.pullCdAudio)

	m.Mem.SetPeripherals(memory.Peripherals{
		Controller1: &input.Controller1{State: m.Input, Watchdog: (*watchdogKick)(m)},
		Z80Comm:     (*z80CommPort)(m),
		Controller2: &input.Controller2{State: m.Input},
		Controller3: &input.Controller3{State: m.Input},
		Switches:    &input.Switches{Vectors: m.Mem, Palette: m.Video},
		VideoRegs:   &video.Registers{State: m.Video, Banks: m.Banks, IRQ: (*videoIRQPort)(m)},
		CDDecoder:   m.LC,
		CDAudio:     (*cdAudioPort)(m),
		IRQ:         (*irqPort)(m),
		Z80:         (*z80Control)(m),
		Watchdog:    (*watchdogControl)(m),
		Palette:     (*paletteWatcher)(m),
	})

	m.YM.SetIRQPort((*ymIRQPort)(m))
	m.YM.SetTimerPort((*ymTimerPort)(m))
	m.YM.SetADPCMROM(m.Banks.PCMRAM)

	m.installTimerCallbacks()
	m.Prefs.SetOnChange(m.prefChanged)
	return m
}

// LoadGame opens a disc image (a cue sheet or a CHD file), replaces
// any disc currently in the drive, and resets the machine. A parse
// failure leaves the previous disc in place.
func (m *Machine) LoadGame(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		toc, err := cdrom.LoadCueSheet(path)
		if err != nil {
			return err
		}
		m.installDisc(cdrom.NewCdrom(toc, nil))
	case ".chd":
		toc, chdFile, err := cdrom.LoadChd(path)
		if err != nil {
			return err
		}
		m.installDisc(cdrom.NewCdrom(toc, chdFile))
	default:
		return neoerrors.New(neoerrors.InvalidImage, path)
	}

	m.Reset()
	return nil
}

func (m *Machine) installDisc(d *cdrom.Cdrom) {
	if m.disc != nil {
		m.disc.Close()
	}
	m.disc = d
	m.LC.SetDisc(d)
}

// Disc returns the loaded disc, or nil when the drive is empty.
func (m *Machine) Disc() *cdrom.Cdrom { return m.disc }

// LoadBIOS installs a system ROM image, truncating or zero-padding
// to the 512KiB BIOS bank, and records whether it is a CDZ-family
// BIOS (which runs the disc-decode interrupt at double rate). The
// installed BIOSPatcher, if any, is given a chance to apply the CD
// speed hack.
func (m *Machine) LoadBIOS(rom []byte, isCDZ bool) {
	for i := range m.Banks.BiosROM {
		m.Banks.BiosROM[i] = 0
	}
	copy(m.Banks.BiosROM, rom)
	m.isCDZ = isCDZ
	m.Mem.SetIsCDZ(isCDZ)
	if m.patcher != nil {
		m.patcher.Patch(m.Banks.BiosROM, bool(m.Prefs.CDSpeedHack))
	}
}

// SetBIOSPatcher installs the frontend's BIOS patching collaborator.
func (m *Machine) SetBIOSPatcher(p BIOSPatcher) { m.patcher = p }

// IsCDZ reports whether the installed BIOS is CDZ-family.
func (m *Machine) IsCDZ() bool { return m.isCDZ }

// Reset performs a full machine reset.
func (m *Machine) Reset() {
	m.Mem.Reset()
	m.Video.Reset()
	m.LC.Reset()
	m.Input.Reset()
	m.YM.Reset()
	m.Mixer.Reset()
	m.Wheel.Reset(m.isCDZ)
	m.Sched.Reset()

	if m.disc != nil {
		m.disc.Stop()
		m.disc.Seek(0)
	}

	m.cdromVector = 0
	m.cdzIrq1Divisor = 0
	m.pendingInterrupts = 0
	m.irqMask1 = 0
	m.irqMask2 = 0
	m.irq1EnabledThisFrame = false
	m.cdSectorDecodedThisFrame = false
	m.fastForward = false
	m.audioCommand = 0
	m.audioResult = 0
	m.z80NMIDisable = true

	// The CD IRQ master gate is treated as wired-true: the BIOS would
	// deadlock waiting for CD IRQs without it. The field (and its
	// savestate slot) is kept in case a register controlling it turns
	// up; see DESIGN.md ("IRQ master enable").
	m.irqMasterEnable = true

	m.Mem.SetNationality(uint8(m.nationality))
	m.updateInterrupts()
}

// RunOneFrame advances the machine by one displayed frame. With the
// skip-CD-loading preference on, frames during which the CD decoder
// requested an interrupt are run back-to-back without rendering
// first, so load screens pass at host speed.
func (m *Machine) RunOneFrame() {
	if m.cdSectorDecodedThisFrame && bool(m.Prefs.SkipCDLoading) {
		m.fastForward = true
		for m.cdSectorDecodedThisFrame {
			m.cdSectorDecodedThisFrame = false
			m.runFrame()
		}
		m.fastForward = false
	}

	m.cdSectorDecodedThisFrame = false
	m.runFrame()
}

func (m *Machine) runFrame() {
	m.irq1EnabledThisFrame = false
	m.Sched.RunOneFrame(func(addr uint32) {
		logger.Logf("neocd", "bus error at %06x", addr)
	})
}

// pullCdAudio is the scheduler's frame-start hook: once the mixer
// has fixed this frame's sample count, the CD worker's decoded audio
// is drained into the CD ring.
func (m *Machine) pullCdAudio() {
	if m.disc == nil || !m.disc.Playing() || m.disc.IsData() {
		return
	}
	n := m.Mixer.SampleCount()
	if n == 0 {
		return
	}
	buf := make([]byte, n*4)
	m.disc.ReadAudio(buf)
	samples := make([]int16, n*2)
	for i := range samples {
		samples[i] = int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
	}
	m.Mixer.PushCD(samples)
}

// SetInput latches the frame's controller state (two joypads plus the
// shared Start/Select nibble), called by the frontend after its input
// poll.
func (m *Machine) SetInput(input1, input2, input3 uint8) {
	m.Input.SetInput(input1, input2, input3)
}

// FrameBuffer exposes the 320x224 RGB565 output of the frame just run.
func (m *Machine) FrameBuffer() []uint16 {
	return m.Video.FrameBuffer[:]
}

// AudioSamples returns the interleaved stereo samples of the frame
// just run; its length is twice Mixer.SampleCount.
func (m *Machine) AudioSamples() []int16 {
	return m.Sched.FrameAudio()
}

// AudioCommand/SetAudioResult/SetZ80NMIDisable are the Z80 side of
// the sound-command mailbox, for the frontend's Z80 port bridge:
// port 0 in reads the command, port 0x0C out posts the result, ports
// 8/0x18 out gate the NMI.
func (m *Machine) AudioCommand() uint8 { return m.audioCommand }

func (m *Machine) ClearAudioCommand() { m.audioCommand = 0 }

func (m *Machine) SetAudioResult(v uint8) { m.audioResult = v }

func (m *Machine) SetZ80NMIDisable(disable bool) { m.z80NMIDisable = disable }

// Close joins the CD worker and releases the disc image files.
func (m *Machine) Close() {
	if m.disc != nil {
		m.disc.Close()
		m.disc = nil
	}
}

// prefChanged reacts to configuration changes: region and BIOS
// selection reset the machine; the speed hack re-patches.
func (m *Machine) prefChanged(name string) {
	switch name {
	case "region":
		m.nationality = m.Prefs.Region
		m.Reset()
	case "bios_selection":
		m.Reset()
	case "cd_speed_hack":
		if m.patcher != nil {
			m.patcher.Patch(m.Banks.BiosROM, bool(m.Prefs.CDSpeedHack))
		}
	}
}

// AVInfo describes the core's fixed output geometry and timing for
// the frontend's get_system_av_info call.
type AVInfo struct {
	Width      int
	Height     int
	PitchBytes int
	FPS        float64
	SampleRate int
}

// GetAVInfo reports the fixed output geometry and rates.
func (m *Machine) GetAVInfo() AVInfo {
	return AVInfo{
		Width:      video.FrameWidth,
		Height:     video.FrameHeight,
		PitchBytes: video.FrameWidth * 2,
		FPS:        clocks.FrameRate,
		SampleRate: 44100,
	}
}

// MainRAM/BackupRAM expose the frontend-visible memory descriptors
// (work RAM and save RAM; video RAM is reachable through Banks).
func (m *Machine) MainRAM() []byte   { return m.Banks.MainRAM }
func (m *Machine) BackupRAM() []byte { return m.Banks.BackupRAM }
