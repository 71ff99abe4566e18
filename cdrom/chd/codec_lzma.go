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
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

func init() {
	registerCodec(codecLZMA, func() Codec { return &lzmaCodec{} })
}

// lzmaCodec decompresses CHD's headerless raw LZMA hunks: chdman
// encodes with level 8 and reduceSize equal to the hunk size, with no
// embedded LZMA header, so the reader needs a synthesized one.
type lzmaCodec struct{}

func dictSizeForHunk(hunkBytes uint32) uint32 {
	reduce := hunkBytes
	for i := uint32(11); i <= 30; i++ {
		if reduce <= (2 << i) {
			return 2 << i
		}
		if reduce <= (3 << i) {
			return 3 << i
		}
	}
	return 1 << 26
}

func (c *lzmaCodec) Decompress(dst, src []byte) (int, error) {
	if len(src) == 0 {
		return 0, fmt.Errorf("%w: lzma: empty source", ErrDecompressFailed)
	}

	const propsLcLpPb = 0x5D // lc=3, lp=0, pb=2
	header := make([]byte, 13)
	header[0] = propsLcLpPb
	binary.LittleEndian.PutUint32(header[1:5], dictSizeForHunk(uint32(len(dst))))
	binary.LittleEndian.PutUint64(header[5:13], uint64(len(dst)))

	stream := append(header, src...)

	r, err := lzma.NewReader(bytes.NewReader(stream))
	if err != nil {
		return 0, fmt.Errorf("%w: lzma init: %w", ErrDecompressFailed, err)
	}

	n, err := io.ReadFull(r, dst)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("%w: lzma: %w", ErrDecompressFailed, err)
	}
	return n, nil
}
