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

package cdrom

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"neocd/cdrom/chd"
	"neocd/neoerrors"
)

var (
	cht2Regex = regexp.MustCompile(`(?i).*TRACK:([0-9]+) TYPE:(\S+) SUBTYPE:(\S+) FRAMES:([0-9]+) PREGAP:([0-9]+) PGTYPE:(\S+) PGSUB:(\S+) POSTGAP:([0-9]+).*`)
	chtrRegex = regexp.MustCompile(`(?i).*TRACK:([0-9]+) TYPE:(\S+) SUBTYPE:(\S+) FRAMES:([0-9]+).*`)
)

// LoadChd parses a CHD's CHT2/CHTR track metadata into a TOC: each
// track's pregap/body/postgap become up to three TOC entries, laid
// out on a "CHD position" axis that's rounded up to a multiple of 4
// sectors per track and a "CD position" axis that the rest of the
// core sees as the absolute disc position.
func LoadChd(path string) (*TOC, *chd.File, error) {
	f, err := chd.Open(path)
	if err != nil {
		return nil, nil, neoerrors.Wrap(neoerrors.InvalidImage, err)
	}

	toc := &TOC{}

	info, statErr := os.Stat(path)
	size := int64(0)
	if statErr == nil {
		size = info.Size()
	}
	toc.Files = append(toc.Files, FileEntry{FileName: path, FileSize: size})

	cht2Entries, err := f.Metadata(chd.TagCHT2)
	if err != nil {
		f.Close()
		return nil, nil, neoerrors.Wrap(neoerrors.InvalidImage, err)
	}
	chtrEntries, err := f.Metadata(chd.TagCHTR)
	if err != nil {
		f.Close()
		return nil, nil, neoerrors.Wrap(neoerrors.InvalidImage, err)
	}

	var chdPosition uint32
	var cdPosition uint32
	previousWasData := true

	for idx := 0; idx < 99; idx++ {
		text, v2, ok := trackMetadataAt(cht2Entries, chtrEntries, idx)
		if !ok {
			continue
		}

		var trackNumber, trackLength, pregapLength, postgapLength uint32
		var pgType string
		var trackTypeStr string

		if v2 {
			m := cht2Regex.FindStringSubmatch(text)
			if m == nil {
				f.Close()
				return nil, nil, neoerrors.Wrapf(neoerrors.InvalidImage, "chd: track metadata did not match: %s", text)
			}
			trackNumber = atou32(m[1])
			trackTypeStr = m[2]
			trackLength = atou32(m[4])
			pregapLength = atou32(m[5])
			pgType = m[6]
			postgapLength = atou32(m[8])
		} else {
			m := chtrRegex.FindStringSubmatch(text)
			if m == nil {
				f.Close()
				return nil, nil, neoerrors.Wrapf(neoerrors.InvalidImage, "chd: track metadata did not match: %s", text)
			}
			trackNumber = atou32(m[1])
			trackTypeStr = m[2]
			trackLength = atou32(m[4])
		}

		trackType, err := chdTrackType(trackTypeStr)
		if err != nil {
			f.Close()
			return nil, nil, err
		}

		isVAudio := strings.EqualFold(pgType, "VAUDIO")

		if chdPosition%4 != 0 {
			chdPosition += 4 - (chdPosition % 4)
		}

		if pregapLength > 0 {
			toc.Entries = append(toc.Entries, Entry{
				FileIndex:   -1,
				TrackIndex:  TrackIndex{Track: uint8(trackNumber), Index: 0},
				TrackType:   Silence,
				StartSector: cdPosition,
				TrackLength: pregapLength,
			})

			if chdPregapAbsorbsIntoPrevious(previousWasData, isVAudio) {
				chdPosition += pregapLength
				trackLength -= pregapLength
			}

			cdPosition += pregapLength
		}

		toc.Entries = append(toc.Entries, Entry{
			FileIndex:   0,
			TrackIndex:  TrackIndex{Track: uint8(trackNumber), Index: 1},
			TrackType:   trackType,
			StartSector: cdPosition,
			FileOffset:  int64(chdPosition) * 2352,
			TrackLength: trackLength,
		})
		chdPosition += trackLength
		cdPosition += trackLength

		if postgapLength > 0 {
			toc.Entries = append(toc.Entries, Entry{
				FileIndex:   -1,
				TrackIndex:  TrackIndex{Track: uint8(trackNumber), Index: 2},
				TrackType:   Silence,
				StartSector: cdPosition,
				TrackLength: postgapLength,
			})
			cdPosition += postgapLength
		}

		previousWasData = trackType != AudioPCM
	}

	if len(toc.Entries) == 0 {
		f.Close()
		return nil, nil, neoerrors.New(neoerrors.InvalidImage, "chd: TOC is empty")
	}

	toc.totalSectors = cdPosition
	toc.firstTrack = toc.Entries[0].TrackIndex.Track
	toc.lastTrack = toc.Entries[len(toc.Entries)-1].TrackIndex.Track

	return toc, f, nil
}

// chdPregapAbsorbsIntoPrevious decides whether a track's pregap
// occupies its own CHD-side storage (advancing the CHD cursor and
// shrinking the track body) or shares the preceding track's. The rule
// is inferred from observed CHD layouts (a pregap after a data track
// shares storage unless PGTYPE marks it VAUDIO) and emulators differ
// on it; keeping it behind this one predicate makes it revisitable
// against a reference trace without touching the layout walk.
func chdPregapAbsorbsIntoPrevious(previousWasData, isVAudio bool) bool {
	return !previousWasData || isVAudio
}

// trackMetadataAt picks V2 (CHT2) metadata for a track index when
// present, falling back to the older CHTR tag.
func trackMetadataAt(cht2, chtr []string, index int) (text string, v2 bool, ok bool) {
	if index < len(cht2) {
		return cht2[index], true, true
	}
	if index < len(chtr) {
		return chtr[index], false, true
	}
	return "", false, false
}

func chdTrackType(s string) (TrackType, error) {
	switch {
	case strings.EqualFold(s, "MODE1"), strings.EqualFold(s, "MODE1/2048"):
		return Mode1_2048, nil
	case strings.EqualFold(s, "MODE1_RAW"), strings.EqualFold(s, "MODE1/2352"):
		return Mode1_2352, nil
	case strings.EqualFold(s, "AUDIO"):
		return AudioPCM, nil
	default:
		return 0, neoerrors.Wrapf(neoerrors.InvalidImage, "chd: track type %s is not supported", s)
	}
}

func atou32(s string) uint32 {
	v, _ := strconv.ParseUint(s, 10, 32)
	return uint32(v)
}
