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

// Package codec decodes the three compressed/containerized CD audio
// formats the core accepts (WAV, FLAC, Ogg Vorbis) into the
// interleaved 16-bit 44.1kHz stereo PCM byte stream the CD-ROM audio
// worker consumes. Raw PCM (BINARY cue-sheet tracks, and CHD AudioPCM
// tracks) needs no decoder at all: it is already in that format and is
// read directly from the source file by package cdrom.
//
// Each decoder here fully decodes its track into memory at Open time
// and serves it through a bytes.Reader-style cursor. CD audio tracks
// are a few hundred kilobytes to a few megabytes of PCM; decoding once
// up front is far simpler than a streaming/seekable decoder per format
// and keeps codec-specific seek quirks (FLAC has no random access
// without a seek table; Ogg Vorbis packets do not align to byte
// offsets) out of the hot read path entirely.
package codec

import (
	"encoding/binary"
	"errors"
	"io"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// errInvalidFile is returned when a track's container header does not
// parse, surfaced by cdrom as neoerrors.InvalidImage.
var errInvalidFile = errors.New("codec: not a valid audio container")

// Source is a decoded audio track: a flat byte stream of interleaved
// 16-bit little-endian stereo PCM samples, seekable to any byte
// offset (cdrom.seekAudio always seeks to a whole-sample boundary).
type Source struct {
	pcm []byte
	pos int64
}

func newSource(pcm []byte) *Source {
	return &Source{pcm: pcm}
}

// Len reports the decoded track size in bytes, used by the cue-sheet
// parser to size a FILE entry.
func (s *Source) Len() int64 { return int64(len(s.pcm)) }

func (s *Source) Seek(offset int64) error {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(s.pcm)) {
		offset = int64(len(s.pcm))
	}
	s.pos = offset
	return nil
}

// Read copies from the current position and zero-pads short reads at
// end of stream, matching readAudioDirect's "done < size" fixup.
func (s *Source) Read(buf []byte) (int, error) {
	n := copy(buf, s.pcm[s.pos:])
	s.pos += int64(n)
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}
	return len(buf), nil
}

func (s *Source) Close() error { return nil }

// OpenWAV decodes a PCM WAV file (44.1kHz 16-bit stereo) fully into
// memory.
func OpenWAV(r io.Reader) (*Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		return nil, errInvalidFile
	}
	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if !dec.IsValidFile() {
		return nil, errInvalidFile
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	return newSource(interleave(buf)), nil
}

// interleave flattens a decoded PCM buffer into the little-endian
// 16-bit byte stream the audio worker consumes.
func interleave(buf *gaudio.IntBuffer) []byte {
	pcm := make([]byte, 0, len(buf.Data)*2)
	for _, sample := range buf.Data {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(int16(sample)))
		pcm = append(pcm, b[:]...)
	}
	return pcm
}
