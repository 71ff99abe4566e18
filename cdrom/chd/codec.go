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

import "fmt"

// Codec decompresses one compressed hunk. Only the plain
// (non-CD-split) form is needed: Neo Geo CD CHDs store whole
// 2352-byte sectors per unit rather than separate sector/subchannel
// streams.
type Codec interface {
	Decompress(dst, src []byte) (int, error)
}

const (
	codecZlib uint32 = 0x7a6c6962 // "zlib"
	codecLZMA uint32 = 0x6c7a6d61 // "lzma"
)

var codecRegistry = map[uint32]func() Codec{}

func registerCodec(tag uint32, factory func() Codec) {
	codecRegistry[tag] = factory
}

// GetCodec returns a codec instance for a compressor tag taken from
// the header's Compressors array.
func GetCodec(tag uint32) (Codec, error) {
	factory, ok := codecRegistry[tag]
	if !ok {
		return nil, fmt.Errorf("%w: tag 0x%08x", ErrUnsupportedCodec, tag)
	}
	return factory(), nil
}
