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

// Package cpu defines the black-box interface the scheduler drives
// for the M68K and Z80 cores. The instruction decoders themselves are
// external: this package is the seam a frontend plugs a real decoder
// into, and the rest of the core only ever steps it.
package cpu

import "neocd/savestate"

// Core is satisfied by any steppable CPU core: run for up to the
// given number of native cycles and report how many were actually
// consumed (a core may overrun by the cost of completing its current
// instruction, hence the return value rather than an assumed-exact
// consumption).
type Core interface {
	// Execute runs the core for at most cycles native clock ticks and
	// returns the number actually run.
	Execute(cycles int) (ran int)

	// Reset pulses the core's reset line.
	Reset()

	// SetIRQ raises or lowers the core's interrupt input to the given
	// level (0 = no interrupt).
	SetIRQ(level int)

	// PendingBusError reports whether the most recent Execute call
	// trapped an unmapped address. The scheduler consults this after
	// each slice rather than unwinding through the core.
	PendingBusError() (addr uint32, pending bool)

	// ClearBusError acknowledges a reported bus error once the
	// scheduler has let the core run its exception sequence.
	ClearBusError()

	savestate.Saveable
}

// NullCore is a Core that runs no instructions and reports every
// requested cycle as run; it exists so
// the scheduler and its tests can run without a real decoder plugged
// in, and so a frontend that hasn't wired a CPU yet still gets a
// well-defined machine.
type NullCore struct {
	irqLevel int
}

func (c *NullCore) Execute(cycles int) int { return cycles }
func (c *NullCore) Reset()                 {}
func (c *NullCore) SetIRQ(level int)       { c.irqLevel = level }
func (c *NullCore) PendingBusError() (uint32, bool) { return 0, false }
func (c *NullCore) ClearBusError()         {}
func (c *NullCore) Save(w savestate.Writer) { w.PutI32(int32(c.irqLevel)) }
func (c *NullCore) Restore(r savestate.Reader) error {
	c.irqLevel = int(r.GetI32())
	return nil
}
