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
	"compress/flate"
	"errors"
	"fmt"
	"io"
)

func init() {
	registerCodec(codecZlib, func() Codec { return &zlibCodec{} })
}

// zlibCodec decompresses raw-deflate hunks: despite the codec tag's
// name, CHD stores raw deflate (RFC 1951) rather than zlib-wrapped
// streams.
type zlibCodec struct{}

func (*zlibCodec) Decompress(dst, src []byte) (int, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()

	n, err := io.ReadFull(r, dst)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("%w: zlib: %w", ErrDecompressFailed, err)
	}
	return n, nil
}
