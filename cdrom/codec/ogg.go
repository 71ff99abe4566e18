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

package codec

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/jfreymuth/oggvorbis"
)

// OpenOgg decodes an Ogg Vorbis audio track fully into 16-bit stereo
// PCM.
func OpenOgg(r io.Reader) (*Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, errInvalidFile
	}

	samples := make([]float32, 4096)
	pcm := make([]byte, 0, 1<<20)

	for {
		n, err := dec.Read(samples)
		for i := 0; i < n; i++ {
			v := int32(math.Round(float64(samples[i]) * 32767))
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			var b [2]byte
			binary.LittleEndian.PutUint16(b[:], uint16(int16(v)))
			pcm = append(pcm, b[:]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	return newSource(pcm), nil
}
