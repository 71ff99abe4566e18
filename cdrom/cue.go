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
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"neocd/neoerrors"

	"neocd/cdrom/codec"
)

var (
	fileRegex    = regexp.MustCompile(`(?i)^\s*FILE\s+"(.*)"\s+(\S+)\s*$`)
	trackRegex   = regexp.MustCompile(`(?i)^\s*TRACK\s+([0-9]+)\s+(\S*)\s*$`)
	pregapRegex  = regexp.MustCompile(`(?i)^\s*PREGAP\s+([0-9]+):([0-9]+):([0-9]+)\s*$`)
	indexRegex   = regexp.MustCompile(`(?i)^\s*INDEX\s+([0-9]+)\s+([0-9]+):([0-9]+):([0-9]+)\s*$`)
	postgapRegex = regexp.MustCompile(`(?i)^\s*POSTGAP\s+([0-9]+):([0-9]+):([0-9]+)\s*$`)
)

// LoadCueSheet parses a .cue sheet into a TOC in three passes:
// (1) validate syntax and build entries with blank offsets/lengths,
// recording every source
// file and its size; (2) compute each entry's file offset and
// length; (3) lay out absolute sector positions on the virtual disc.
func LoadCueSheet(path string) (*TOC, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, neoerrors.Wrap(neoerrors.InvalidImage, err)
	}
	defer f.Close()

	toc := &TOC{}

	currentFile := ""
	currentFileIndex := -1
	currentFileAudioType := AudioPCM
	currentTrack := -1
	currentIndex := -1
	currentType := Silence
	trackHasPregap := false
	trackHasPostgap := false
	trackHasIndexOne := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if m := fileRegex.FindStringSubmatch(line); m != nil {
			spec := m[1]
			if filepath.IsAbs(spec) {
				currentFile = spec
			} else {
				currentFile = filepath.Join(filepath.Dir(path), spec)
			}

			currentTrack = -1
			currentIndex = -1
			currentType = Silence
			trackHasPregap = false
			trackHasPostgap = false
			trackHasIndexOne = false

			isBinary := strings.EqualFold(m[2], "BINARY")
			isWave := strings.EqualFold(m[2], "WAVE")
			if !isBinary && !isWave {
				return nil, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: file type %s is not supported", m[2])
			}

			idx := indexOfFile(toc.Files, currentFile)
			if idx < 0 {
				size, audioType, err := fileSizeAndType(currentFile, isBinary)
				if err != nil {
					return nil, err
				}
				currentFileAudioType = audioType
				toc.Files = append(toc.Files, FileEntry{FileName: currentFile, FileSize: size})
				currentFileIndex = len(toc.Files) - 1
			} else {
				currentFileIndex = idx
			}
			continue
		}

		if m := trackRegex.FindStringSubmatch(line); m != nil {
			if currentFileIndex < 0 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: track directive without file")
			}

			newTrack, _ := strconv.Atoi(m[1])
			if newTrack < 1 || newTrack > 99 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: track numbers must be between 1 and 99")
			}
			if currentTrack != -1 && newTrack-currentTrack != 1 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: track numbers must be contiguous and increasing")
			}
			if currentTrack != -1 && !trackHasIndexOne {
				return nil, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: track %02d has no index 01", currentTrack)
			}

			currentTrack = newTrack
			currentIndex = -1
			trackHasPregap = false
			trackHasPostgap = false
			trackHasIndexOne = false

			switch {
			case strings.EqualFold(m[2], "MODE1/2048"):
				currentType = Mode1_2048
			case strings.EqualFold(m[2], "MODE1/2352"):
				currentType = Mode1_2352
			case strings.EqualFold(m[2], "AUDIO"):
				currentType = currentFileAudioType
			default:
				return nil, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: track mode %s is not supported", m[2])
			}

			if (currentType == Mode1_2048 || currentType == Mode1_2352) && currentFileAudioType != AudioPCM {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: data track defined on an audio source file")
			}
			continue
		}

		if m := pregapRegex.FindStringSubmatch(line); m != nil {
			if currentTrack < 0 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: pregap directive with no track defined")
			}
			if trackHasPregap {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: a track can have only one pregap")
			}
			if currentIndex >= 0 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: pregap directive must come before any index")
			}

			length := msfFromMatch(m, 1)
			toc.Entries = append(toc.Entries, Entry{
				FileIndex:  -1,
				TrackIndex: TrackIndex{Track: uint8(currentTrack), Index: 0},
				TrackType:  Silence,
				TrackLength: length,
			})
			trackHasPregap = true
			continue
		}

		if m := indexRegex.FindStringSubmatch(line); m != nil {
			if currentTrack < 0 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: index directive with no track defined")
			}
			if trackHasPostgap {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: index directive must come before postgap")
			}

			newIndex, _ := strconv.Atoi(m[1])
			if newIndex < 0 || newIndex > 99 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: index numbers must be between 0 and 99")
			}
			if trackHasPregap && newIndex == 0 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: index 0 is not allowed with a pregap")
			}
			if currentIndex != -1 && newIndex-currentIndex != 1 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: index numbers must be contiguous and increasing")
			}

			indexPosition := msfFromMatch(m, 2)
			currentIndex = newIndex
			if currentIndex == 1 {
				trackHasIndexOne = true
			}

			toc.Entries = append(toc.Entries, Entry{
				FileIndex:     currentFileIndex,
				TrackIndex:    TrackIndex{Track: uint8(currentTrack), Index: uint8(currentIndex)},
				TrackType:     currentType,
				IndexPosition: indexPosition,
			})
			continue
		}

		if m := postgapRegex.FindStringSubmatch(line); m != nil {
			if currentTrack < 0 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: postgap directive with no track defined")
			}
			if currentIndex < 0 {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: postgap directive must come after all indexes")
			}
			if trackHasPostgap {
				return nil, neoerrors.New(neoerrors.InvalidImage, "cue: a track can have only one postgap")
			}

			currentIndex++
			length := msfFromMatch(m, 1)
			toc.Entries = append(toc.Entries, Entry{
				FileIndex:  -1,
				TrackIndex: TrackIndex{Track: uint8(currentTrack), Index: uint8(currentIndex)},
				TrackType:  Silence,
				TrackLength: length,
			})
			trackHasPostgap = true
			continue
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, neoerrors.Wrap(neoerrors.InvalidImage, err)
	}

	if currentTrack == -1 {
		return nil, neoerrors.New(neoerrors.InvalidImage, "cue: must define at least one track")
	}
	if !trackHasIndexOne {
		return nil, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: track %02d has no index 01", currentTrack)
	}

	fixupFileOffsets(toc)
	layoutSectors(toc)

	return toc, nil
}

func indexOfFile(files []FileEntry, name string) int {
	for i, f := range files {
		if f.FileName == name {
			return i
		}
	}
	return -1
}

func msfFromMatch(m []string, startGroup int) uint32 {
	mm, _ := strconv.Atoi(m[startGroup])
	ss, _ := strconv.Atoi(m[startGroup+1])
	ff, _ := strconv.Atoi(m[startGroup+2])
	return FromMSF(uint32(mm), uint32(ss), uint32(ff))
}

// fixupFileOffsets is loadCueSheet's step 2: within each source file,
// entries are ordered by IndexPosition; every entry's length is the
// gap to the next entry's IndexPosition (or, for the file's last
// entry, computed from the file's total size).
func fixupFileOffsets(toc *TOC) {
	byFile := map[int][]*Entry{}
	order := []int{}
	for i := range toc.Entries {
		e := &toc.Entries[i]
		if e.FileIndex < 0 {
			continue
		}
		if _, ok := byFile[e.FileIndex]; !ok {
			order = append(order, e.FileIndex)
		}
		byFile[e.FileIndex] = append(byFile[e.FileIndex], e)
	}

	for _, fileIndex := range order {
		entries := byFile[fileIndex]
		var fileOffset int64
		for i, e := range entries {
			sectorSize := int64(2352)
			if e.TrackType == Mode1_2048 {
				sectorSize = 2048
			}

			var length uint32
			if i == len(entries)-1 {
				length = uint32((toc.Files[fileIndex].FileSize - fileOffset) / sectorSize)
			} else {
				length = entries[i+1].IndexPosition - e.IndexPosition
			}

			e.FileOffset = fileOffset
			e.TrackLength = length
			fileOffset += int64(length) * sectorSize
		}
	}
}

// layoutSectors is loadCueSheet's step 3: lay entries out in
// declaration order onto the virtual disc's absolute sector axis.
func layoutSectors(toc *TOC) {
	var sector uint32
	for i := range toc.Entries {
		toc.Entries[i].StartSector = sector
		sector += toc.Entries[i].TrackLength
	}
	toc.totalSectors = sector
	if len(toc.Entries) > 0 {
		toc.firstTrack = toc.Entries[0].TrackIndex.Track
		toc.lastTrack = toc.Entries[len(toc.Entries)-1].TrackIndex.Track
	}
}

// fileSizeAndType opens an audio/binary source file to determine its
// size (decoded PCM size for compressed audio) and TrackType.
func fileSizeAndType(path string, isBinary bool) (int64, TrackType, error) {
	if isBinary {
		info, err := os.Stat(path)
		if err != nil {
			return 0, 0, neoerrors.Wrap(neoerrors.InvalidImage, err)
		}
		return info.Size(), AudioPCM, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, 0, neoerrors.Wrap(neoerrors.InvalidImage, err)
	}
	defer f.Close()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		src, err := codec.OpenWAV(f)
		if err != nil {
			return 0, 0, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: %s is not a valid WAV file", path)
		}
		return src.Len(), AudioWav, nil
	case ".flac":
		src, err := codec.OpenFLAC(f)
		if err != nil {
			return 0, 0, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: %s is not a valid FLAC file", path)
		}
		return src.Len(), AudioFlac, nil
	case ".ogg":
		src, err := codec.OpenOgg(f)
		if err != nil {
			return 0, 0, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: %s is not a valid Ogg file", path)
		}
		return src.Len(), AudioOgg, nil
	default:
		return 0, 0, neoerrors.Wrapf(neoerrors.InvalidImage, "cue: unsupported audio file extension %s", ext)
	}
}
