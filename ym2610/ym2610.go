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

// Package ym2610 models the mixed FM / SSG / ADPCM-A sound chip:
// four active FM channels (numbered 1, 2, 4, 5; slots 0 and 3 are
// silicon-present but unused on this console), a three-voice SSG
// block shared with the noise and envelope generators, six ADPCM-A
// sample-playback channels, and the pair of programmable timers the
// scheduler drives through the shared timer wheel. The sine,
// attenuation, volume and ADPCM step tables are generated at init()
// from their closed-form laws, the same "derive, don't transcribe"
// convention as video.sprDecodeTable and memory.buildYZoomTable.
package ym2610

// Port selects one of the chip's two register address spaces: part 0
// carries the SSG, the timers, the key-on register and FM channels
// 1/2; part 1 carries the ADPCM-A control block and FM channels 4/5.
type Port int

const (
	PortA Port = 0
	PortB Port = 1
)

// FM channel/operator counts. Channels are stored 0..3 internally;
// channelNumber maps a (part, index) pair to the chip's own 1/2/4/5
// numbering used only for logging and savestate documentation.
const (
	numFMChannels = 4
	numOperators  = 4
	numSSGTones   = 3
	numADPCMA     = 6
)

// Envelope generator phases.
type EnvelopePhase uint8

const (
	PhaseAttack EnvelopePhase = iota
	PhaseDecay
	PhaseSustain
	PhaseRelease
	PhaseOff
)

// Pan bus selector for ADPCM-A channels.
type Pan uint8

const (
	PanNone Pan = iota
	PanLeft
	PanRight
	PanCenter
)

// IRQPort is the seam the machine aggregate plugs into the chip's
// timer overflow logic: told of every change of (status & mask) != 0,
// asserted on the rising edge and deasserted on the falling one.
type IRQPort interface {
	SetYM2610IRQ(asserted bool)
}

// TimerPort is the seam the machine aggregate plugs into the chip's
// timer load bits: the chip does not count cycles itself, so when
// guest code starts or stops timer A/B (register 0x27), the port is
// told the new period in the chip's own step units (0 = stop) and the
// machine arms or stops the shared wheel's Ym2610A/Ym2610B entries
// accordingly.
type TimerPort interface {
	YM2610TimerChanged(which int, periodSteps int32)
}

// nullIRQPort/nullTimerPort are installed until the machine aggregate
// calls SetIRQPort/SetTimerPort, so a chip built with New() never
// nil-derefs.
type nullIRQPort struct{}

func (nullIRQPort) SetYM2610IRQ(bool) {}

type nullTimerPort struct{}

func (nullTimerPort) YM2610TimerChanged(int, int32) {}

// operator is one FM operator slot: phase generator plus envelope
// generator state.
type operator struct {
	phaseCounter   uint32 // 16.16 fixed point
	phaseIncrement uint32

	detune   uint8 // 3-bit DT
	multiple uint8 // 4-bit MUL (0 treated as 0.5)
	totalLevel uint8 // 7-bit TL, attenuation

	keyScale    uint8 // 2-bit KS, scales the envelope rates
	attackRate  uint8 // 5-bit AR
	decayRate   uint8 // 5-bit D1R
	sustainRate uint8 // 5-bit D2R
	releaseRate uint8 // 4-bit RR (scaled to *2+1 when used, OPN convention)
	sustainLevel uint8 // 4-bit SL

	ssgEG uint8 // SSG-EG control byte; 0 = disabled

	phase    EnvelopePhase
	envLevel uint16 // 0 (loudest) .. 1023 (silent), 10-bit attenuation
	keyOn    bool

	lastOutput int32 // for feedback (operator 0 of each channel only)
}

// fmChannel is one of the four active FM voices.
type fmChannel struct {
	ops [numOperators]operator

	fnum     uint16 // 11-bit
	block    uint8  // 3-bit
	feedback uint8  // 3-bit
	algorithm uint8 // 3-bit, selects operator routing

	panLeft, panRight bool
}

// Chip is the machine-facing YM2610 model. It owns no pointer back
// into the machine aggregate; register writes mutate only its own
// state, and interrupts are reported through irq.
type Chip struct {
	fm  [numFMChannels]fmChannel
	ssg ssgState
	adpcmA [numADPCMA]adpcmAChannel
	adpcmATotalLevel uint8 // 6-bit master attenuation for the ADPCM-A bus

	// adpcmROM is the PCM sample RAM the ADPCM-A channels decode
	// from, installed by the machine aggregate (it is the same byte
	// array memory.Banks.PCM backs).
	adpcmROM []byte

	addrLatch [2]uint8

	timerA       uint16 // 10-bit period
	timerB       uint8  // 8-bit period, counted in steps of 16
	timerAEnable bool
	timerBEnable bool
	timerAIRQEnable bool
	timerBIRQEnable bool
	statusFlags  uint8 // bit0 = timer A overflow, bit1 = timer B overflow
	irqAsserted  bool

	lfoEnable bool
	lfoFreq   uint8
	lfoCounter uint32

	irq    IRQPort
	timers TimerPort
}

// New constructs a Chip in its power-on state.
func New() *Chip {
	c := &Chip{irq: nullIRQPort{}, timers: nullTimerPort{}}
	c.Reset()
	return c
}

// SetIRQPort installs the machine aggregate's interrupt seam.
func (c *Chip) SetIRQPort(p IRQPort) {
	if p == nil {
		p = nullIRQPort{}
	}
	c.irq = p
}

// SetTimerPort installs the machine aggregate's timer-arming seam.
func (c *Chip) SetTimerPort(p TimerPort) {
	if p == nil {
		p = nullTimerPort{}
	}
	c.timers = p
}

// SetADPCMROM installs the PCM sample RAM backing the ADPCM-A
// channels. Neo Geo hardware wires this to the bank-switched PCM
// region (memory.Banks.PCM), not to the chip's own address space.
func (c *Chip) SetADPCMROM(rom []byte) {
	c.adpcmROM = rom
}

// Reset restores power-on defaults.
func (c *Chip) Reset() {
	c.fm = [numFMChannels]fmChannel{}
	c.ssg.reset()
	for i := range c.adpcmA {
		c.adpcmA[i] = adpcmAChannel{}
	}
	c.addrLatch = [2]uint8{}
	c.adpcmATotalLevel = 0
	c.timerA = 0
	c.timerB = 0
	c.timerAEnable = false
	c.timerBEnable = false
	c.timerAIRQEnable = false
	c.timerBIRQEnable = false
	c.statusFlags = 0
	c.irqAsserted = false
	c.lfoEnable = false
	c.lfoFreq = 0
	c.lfoCounter = 0
	for i := range c.fm {
		for j := range c.fm[i].ops {
			c.fm[i].ops[j].phase = PhaseOff
			c.fm[i].ops[j].envLevel = maxEnvelope
		}
	}
}

// WriteAddr latches the register pointer for subsequent WriteData/
// Read calls on the given port.
func (c *Chip) WriteAddr(part Port, reg uint8) {
	c.addrLatch[part] = reg
}

// WriteData writes the register currently latched on the given port.
func (c *Chip) WriteData(part Port, data uint8) {
	reg := c.addrLatch[part]
	if part == PortA {
		c.writePortA(reg, data)
		return
	}
	c.writePortB(reg, data)
}

// ReadStatus returns the chip's status byte. Only port A carries a
// meaningful status register on real hardware (busy flag, which this
// model never sets, plus the two timer-overflow flags); port B always
// reads back 0.
func (c *Chip) ReadStatus(part Port) uint8 {
	if part == PortB {
		return 0
	}
	return c.statusFlags
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
