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

package scheduler

import "neocd/neoerrors"

var errShort = neoerrors.New(neoerrors.SavestateShort)
