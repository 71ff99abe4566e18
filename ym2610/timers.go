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

package ym2610

const (
	statusTimerA uint8 = 0x01
	statusTimerB uint8 = 0x02
)

// TimerAPeriodSteps/TimerBPeriodSteps return the current programmed
// period in the chip's own internal timer-tick units: A counts up by
// 1 per tick (10-bit), B counts up by 16 per tick (8-bit). The
// machine aggregate converts these into master-clock delays and arms
// the shared timer wheel's Ym2610A/Ym2610B entries with the result;
// the chip itself never counts cycles.
func (c *Chip) TimerAPeriodSteps() int32 {
	return int32(1024 - c.timerA)
}

func (c *Chip) TimerBPeriodSteps() int32 {
	return int32(256-uint16(c.timerB)) * 16
}

// TimerAOverflow/TimerBOverflow are the Ym2610A/Ym2610B wheel
// callbacks. They set the corresponding status flag and evaluate the
// IRQ edge; the returned bool tells the caller whether the timer is
// still enabled and should be re-armed for another period.
func (c *Chip) TimerAOverflow() (rearm bool) {
	if !c.timerAEnable {
		return false
	}
	c.statusFlags |= statusTimerA
	c.updateIRQ()
	return true
}

func (c *Chip) TimerBOverflow() (rearm bool) {
	if !c.timerBEnable {
		return false
	}
	c.statusFlags |= statusTimerB
	c.updateIRQ()
	return true
}

// updateIRQ reports every edge of (statusFlags & irqEnableMask) != 0
// to the IRQ port, rising and falling; an unchanged level is not
// reported again.
func (c *Chip) updateIRQ() {
	mask := uint8(0)
	if c.timerAIRQEnable {
		mask |= statusTimerA
	}
	if c.timerBIRQEnable {
		mask |= statusTimerB
	}
	asserted := c.statusFlags&mask != 0
	if asserted != c.irqAsserted {
		c.irqAsserted = asserted
		c.irq.SetYM2610IRQ(asserted)
	}
}
