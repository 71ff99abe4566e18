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

	"github.com/mewkiz/flac"
)

// OpenFLAC decodes a FLAC-compressed audio track fully into 16-bit
// stereo PCM.
func OpenFLAC(r io.Reader) (*Source, error) {
	stream, err := flac.Parse(r)
	if err != nil {
		return nil, errInvalidFile
	}
	defer stream.Close()

	channels := int(stream.Info.NChannels)
	pcm := make([]byte, 0, stream.Info.NSamples*uint64(channels)*2)

	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		n := len(frame.Subframes[0].Samples)
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				sample := frame.Subframes[ch].Samples[i]
				var b [2]byte
				binary.LittleEndian.PutUint16(b[:], uint16(int16(sample)))
				pcm = append(pcm, b[:]...)
			}
		}
	}

	return newSource(pcm), nil
}
