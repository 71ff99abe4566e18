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

// Package cdrom owns the CD image: table-of-contents parsing (cue
// sheets and MAME CHD containers), BCD/MSF position arithmetic, and
// the producer/consumer audio ring a worker goroutine fills.
package cdrom

// TrackType enumerates the track/index content kinds a TOC entry may
// hold, including Silence for pregap/postgap entries with no backing
// data.
type TrackType int

const (
	Mode1_2352 TrackType = iota
	Mode1_2048
	Silence
	AudioPCM
	AudioFlac
	AudioOgg
	AudioWav
)

// TrackIndex is a (track, index) pair; track numbers run 1..99, index
// 0 is the pregap, index 1 is the main body, index 2+ covers postgaps
// and any further splits a cue sheet declares.
type TrackIndex struct {
	Track uint8
	Index uint8
}

// Less orders TrackIndex first by track, then by index, for the
// TOC's sorted lookup by (track, index).
func (t TrackIndex) Less(other TrackIndex) bool {
	if t.Track == other.Track {
		return t.Index < other.Index
	}
	return t.Track < other.Track
}

// Entry is one TOC row: a (track, index) pair plus its data-file
// location and extent.
type Entry struct {
	FileIndex   int // -1 for Silence entries with no backing data
	TrackIndex  TrackIndex
	TrackType   TrackType
	IndexPosition uint32 // position within the data file, in sectors
	StartSector uint32   // absolute position on the virtual disc
	FileOffset  int64    // byte offset of this entry's data in the file
	TrackLength uint32   // length in sectors
}

// FileEntry is one source file referenced by the TOC (the raw/bin
// file or an audio file), with its size in bytes (decoded PCM size for
// audio files).
type FileEntry struct {
	FileName string
	FileSize int64
}

// TOC is the parsed table of contents for one loaded disc image.
type TOC struct {
	Entries     []Entry
	Files       []FileEntry
	firstTrack  uint8
	lastTrack   uint8
	totalSectors uint32
}

func (t *TOC) IsEmpty() bool          { return len(t.Entries) == 0 }
func (t *TOC) FirstTrack() uint8      { return t.firstTrack }
func (t *TOC) LastTrack() uint8       { return t.lastTrack }
func (t *TOC) TotalSectors() uint32   { return t.totalSectors }

// FindByIndex looks up the TOC entry for an exact (track, index)
// pair by binary search; entries are kept sorted by TrackIndex.
func (t *TOC) FindByIndex(ti TrackIndex) *Entry {
	lo, hi := 0, len(t.Entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if t.Entries[mid].TrackIndex.Less(ti) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo == len(t.Entries) || t.Entries[lo].TrackIndex != ti {
		return nil
	}
	return &t.Entries[lo]
}

// FindBySector returns the entry whose [StartSector,
// next.StartSector) range contains sector: the last entry with
// StartSector <= sector.
func (t *TOC) FindBySector(sector uint32) *Entry {
	if len(t.Entries) == 0 {
		return nil
	}
	lo, hi := 0, len(t.Entries)
	for lo < hi {
		mid := (lo + hi) / 2
		if sector < t.Entries[mid].StartSector {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if lo > 0 {
		lo--
	}
	return &t.Entries[lo]
}

// Clear resets the TOC to empty.
func (t *TOC) Clear() {
	t.Entries = nil
	t.Files = nil
	t.firstTrack = 0
	t.lastTrack = 0
	t.totalSectors = 0
}

// FromLBA/ToLBA convert between logical block address (LBA, zero at
// the start of track 1's data) and absolute sector numbers, which
// include the 150-sector lead-in.
func FromLBA(lba uint32) uint32 { return lba + 150 }
func ToLBA(position uint32) uint32 { return position - 150 }

// ToMSF converts an absolute sector number to minutes/seconds/frames
// (75 frames/second).
func ToMSF(position uint32) (m, s, f uint32) {
	return position / 4500, (position / 75) % 60, position % 75
}

// FromMSF is the inverse of ToMSF.
func FromMSF(m, s, f uint32) uint32 {
	return (m * 4500) + (s * 75) + f
}

// ToBCD/FromBCD convert between binary and two-decimal-digit BCD.
func ToBCD(value uint8) uint8 {
	return ((value / 10) << 4) | (value % 10)
}

func FromBCD(value uint8) uint8 {
	return (value>>4)*10 + (value & 0x0F)
}
