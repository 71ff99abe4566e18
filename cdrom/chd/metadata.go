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

package chd

import (
	"encoding/binary"
	"fmt"
)

// CD track metadata tags, matching MAME's CDROM_TRACK_METADATA_TAG /
// CDROM_TRACK_METADATA2_TAG ("CHTR"/"CHT2" as big-endian uint32s).
const (
	TagCHTR uint32 = 0x43485452
	TagCHT2 uint32 = 0x43485432
)

// Metadata is one parsed entry of the metadata chain: its 4-byte tag
// and its text payload.
type Metadata struct {
	Tag  uint32
	Text string
}

// Metadata walks the metadata chain and returns every entry whose
// tag matches, in chain order (which is index order for repeated
// tags).
func (c *File) Metadata(tag uint32) ([]string, error) {
	var out []string

	offset := c.header.MetaOffset
	for offset != 0 {
		head := make([]byte, 16)
		if _, err := c.f.ReadAt(head, int64(offset)); err != nil {
			return nil, fmt.Errorf("chd: reading metadata entry: %w", err)
		}

		entryTag := binary.BigEndian.Uint32(head[0:4])
		lengthAndFlags := binary.BigEndian.Uint32(head[4:8])
		length := lengthAndFlags & 0x00FFFFFF
		next := binary.BigEndian.Uint64(head[8:16])

		if entryTag == tag {
			text := make([]byte, length)
			if _, err := c.f.ReadAt(text, int64(offset)+16); err != nil {
				return nil, fmt.Errorf("chd: reading metadata text: %w", err)
			}
			// Trim a trailing NUL terminator if present.
			if n := len(text); n > 0 && text[n-1] == 0 {
				text = text[:n-1]
			}
			out = append(out, string(text))
		}

		offset = next
	}

	return out, nil
}
