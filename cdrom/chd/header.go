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

// Package chd reads MAME CHD ("Compressed Hunks of Data") disc
// images: the V5 header, the metadata chain (used to recover a CD's
// track layout), and the per-hunk codec dispatch needed to decompress
// sector data. Only the subset of CHD that Neo Geo CD images actually
// use is supported.
package chd

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	ErrNotCHD           = errors.New("chd: not a valid CHD file")
	ErrUnsupportedVersion = errors.New("chd: unsupported CHD version")
	ErrUnsupportedCodec = errors.New("chd: unsupported hunk codec")
	ErrDecompressFailed = errors.New("chd: hunk decompression failed")
	ErrCompressedMap    = errors.New("chd: compressed hunk map not supported")
)

const tagV5 = "MComprHD"

// Header is the fixed V5 CHD header (124 bytes on disk).
type Header struct {
	Version      uint32
	Compressors  [4]uint32
	LogicalBytes uint64
	MapOffset    uint64
	MetaOffset   uint64
	HunkBytes    uint32
	UnitBytes    uint32
}

func parseHeader(r io.ReaderAt) (*Header, error) {
	buf := make([]byte, 124)
	if _, err := r.ReadAt(buf, 0); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotCHD, err)
	}
	if string(buf[0:8]) != tagV5 {
		return nil, ErrNotCHD
	}

	h := &Header{
		Version: binary.BigEndian.Uint32(buf[12:16]),
	}
	if h.Version != 5 {
		return nil, fmt.Errorf("%w: version %d", ErrUnsupportedVersion, h.Version)
	}

	for i := 0; i < 4; i++ {
		h.Compressors[i] = binary.BigEndian.Uint32(buf[16+i*4 : 20+i*4])
	}
	h.LogicalBytes = binary.BigEndian.Uint64(buf[32:40])
	h.MapOffset = binary.BigEndian.Uint64(buf[40:48])
	h.MetaOffset = binary.BigEndian.Uint64(buf[48:56])
	h.HunkBytes = binary.BigEndian.Uint32(buf[56:60])
	h.UnitBytes = binary.BigEndian.Uint32(buf[60:64])

	return h, nil
}

// File is an opened CHD image: header, hunk map and a handle on the
// backing file, ready to serve decompressed hunks and metadata text.
type File struct {
	f      *os.File
	header *Header
	hunks  []hunkEntry
}

func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := parseHeader(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	hunks, err := parseHunkMap(f, header)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &File{f: f, header: header, hunks: hunks}, nil
}

func (c *File) Close() error { return c.f.Close() }

func (c *File) Header() *Header { return c.header }

// ReadHunk returns one fully decompressed hunk (HunkBytes long).
func (c *File) ReadHunk(index uint32) ([]byte, error) {
	if int(index) >= len(c.hunks) {
		return nil, fmt.Errorf("chd: hunk %d out of range", index)
	}
	entry := c.hunks[index]

	dst := make([]byte, c.header.HunkBytes)

	switch entry.compression {
	case compressionNone:
		if _, err := c.f.ReadAt(dst[:entry.length], int64(entry.offset)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompressFailed, err)
		}
		return dst, nil

	case compressionSelf:
		return c.ReadHunk(uint32(entry.offset))

	case compressionType0, compressionType1, compressionType2, compressionType3:
		codec, err := GetCodec(c.header.Compressors[entry.compression])
		if err != nil {
			return nil, err
		}
		src := make([]byte, entry.length)
		if _, err := c.f.ReadAt(src, int64(entry.offset)); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecompressFailed, err)
		}
		n, err := codec.Decompress(dst, src)
		if err != nil {
			return nil, err
		}
		return dst[:n], nil

	default:
		// Parent references and the RLE map forms never appear in a
		// standalone disc image.
		return nil, fmt.Errorf("%w: map compression %d", ErrUnsupportedCodec, entry.compression)
	}
}

// ReadSectors reads count consecutive UnitBytes-sized units starting
// at sector into dst (len(dst) must be count*UnitBytes), spanning
// hunk boundaries transparently.
func (c *File) ReadSectors(sector uint32, count int, dst []byte) error {
	unitsPerHunk := c.header.HunkBytes / c.header.UnitBytes

	remaining := count
	dstOff := 0
	for remaining > 0 {
		hunkIdx := sector / unitsPerHunk
		unitInHunk := sector % unitsPerHunk

		hunk, err := c.ReadHunk(hunkIdx)
		if err != nil {
			return err
		}

		for unitInHunk < unitsPerHunk && remaining > 0 {
			off := unitInHunk * c.header.UnitBytes
			copy(dst[dstOff:dstOff+int(c.header.UnitBytes)], hunk[off:off+c.header.UnitBytes])
			dstOff += int(c.header.UnitBytes)
			unitInHunk++
			sector++
			remaining--
		}
	}
	return nil
}
