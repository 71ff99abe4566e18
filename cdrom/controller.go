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
	"path/filepath"
	"strings"
	"sync"

	"neocd/cdrom/chd"
	"neocd/cdrom/codec"
	"neocd/logger"
	"neocd/neoerrors"
	"neocd/savestate"
)

var errShort = neoerrors.New(neoerrors.SavestateShort)

// sectorBytes is the size in bytes of one CD-audio sector (588
// 16-bit stereo samples at 75 sectors/second).
const sectorBytes = 2352

// ringCapacity is the decoded-audio ring's fixed size.
const ringCapacity = 1024 * 1024

// Cdrom is the loaded disc image: its parsed TOC, the backing
// file(s), the current play head, and the producer/consumer audio
// ring a worker goroutine fills. It implements lc8951.Disc.
type Cdrom struct {
	toc     *TOC
	chdFile *chd.File // non-nil for CHD images; nil for cue sheets

	mu   sync.Mutex
	cond *sync.Cond
	wg   sync.WaitGroup

	position uint32
	playing  bool
	exiting  bool

	// curEntry is the TOC entry the play head currently sits in.
	// seekGen increments every time it changes, so the worker can
	// discard a chunk it decoded against a now-stale entry rather
	// than push it into the ring after a seek.
	curEntry         *Entry
	seekGen          int
	decodeOffset     int64 // bytes decoded so far within curEntry
	curSource        *codec.Source

	ring      []byte
	ringStart int
	ringLen   int

	dataFiles map[int]*os.File
}

// NewCdrom installs toc (and, for a CHD image, the already-opened
// chd.File) and starts the audio worker goroutine. chdFile is nil for
// a cue-sheet image.
func NewCdrom(toc *TOC, chdFile *chd.File) *Cdrom {
	c := &Cdrom{
		toc:       toc,
		chdFile:   chdFile,
		ring:      make([]byte, ringCapacity),
		dataFiles: map[int]*os.File{},
	}
	c.cond = sync.NewCond(&c.mu)
	c.mu.Lock()
	c.setPositionLocked(0)
	c.mu.Unlock()
	c.wg.Add(1)
	go c.workerLoop()
	return c
}

// Close signals the worker to exit and waits for it to return: the
// exit flag plus a condition-variable broadcast unblocks the worker,
// then the goroutine is joined.
func (c *Cdrom) Close() {
	c.mu.Lock()
	c.exiting = true
	c.cond.Broadcast()
	c.mu.Unlock()
	c.wg.Wait()

	for _, f := range c.dataFiles {
		f.Close()
	}
	if c.chdFile != nil {
		c.chdFile.Close()
	}
}

// Position reports the current absolute play-head sector.
func (c *Cdrom) Position() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position
}

// Playing reports whether the disc is actively spinning, per the
// memory.CDAudioPort contract consumed by the FF0188/FF018A direct CD
// audio registers.
func (c *Cdrom) Playing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

func (c *Cdrom) IsTocEmpty() bool {
	return c.toc == nil || c.toc.IsEmpty()
}

func (c *Cdrom) IsData() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curEntry != nil && isDataType(c.curEntry.TrackType)
}

func (c *Cdrom) IsPregap() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.curEntry != nil && c.curEntry.TrackIndex.Index == 0
}

func (c *Cdrom) CurrentTrackIndex() (track, index uint8) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.curEntry == nil {
		return 0, 0
	}
	return c.curEntry.TrackIndex.Track, c.curEntry.TrackIndex.Index
}

func (c *Cdrom) CurrentTrackPosition() uint32 {
	c.mu.Lock()
	track := uint8(0)
	if c.curEntry != nil {
		track = c.curEntry.TrackIndex.Track
	}
	c.mu.Unlock()
	return c.TrackPosition(track)
}

func (c *Cdrom) CurrentIndexSize() uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.curEntry == nil {
		return 0
	}
	return c.curEntry.TrackLength
}

func (c *Cdrom) FirstTrack() uint8 { return c.toc.FirstTrack() }
func (c *Cdrom) LastTrack() uint8  { return c.toc.LastTrack() }

func (c *Cdrom) Leadout() uint32 { return c.toc.TotalSectors() }

// TrackPosition returns the absolute sector where track's index-01
// body begins, used by the "move to track" command and by QueryInfo's
// track-info sub-command.
func (c *Cdrom) TrackPosition(track uint8) uint32 {
	e := c.toc.FindByIndex(TrackIndex{Track: track, Index: 1})
	if e == nil {
		return 0
	}
	return e.StartSector
}

func (c *Cdrom) TrackIsData(track uint8) bool {
	e := c.toc.FindByIndex(TrackIndex{Track: track, Index: 1})
	return e != nil && isDataType(e.TrackType)
}

// Play marks the disc as spinning; the worker wakes and begins (or
// resumes) filling the ring if the current entry is audio.
func (c *Cdrom) Play() {
	c.mu.Lock()
	c.playing = true
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Stop halts playback; the worker goes back to sleep, and consumers
// blocked in ReadAudio return with silence.
func (c *Cdrom) Stop() {
	c.mu.Lock()
	c.playing = false
	c.cond.Broadcast()
	c.mu.Unlock()
}

// Seek moves the play head to an absolute sector. The ring is cleared
// and the backing file/codec is repositioned to that sector, even when
// it lies inside the current TOC entry.
func (c *Cdrom) Seek(position uint32) {
	c.mu.Lock()
	c.curEntry = nil
	c.setPositionLocked(position)
	c.mu.Unlock()
}

// AdvancePosition steps the play head forward by one sector while
// playing, clamped to the lead-out; it is the Cdrom75Hz timer
// callback's per-tick head movement.
func (c *Cdrom) AdvancePosition() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.playing {
		return
	}
	next := c.position + 1
	if leadout := c.toc.TotalSectors(); next > leadout {
		next = leadout
	}
	c.setPositionLocked(next)
}

func (c *Cdrom) setPositionLocked(position uint32) {
	c.position = position
	e := c.toc.FindBySector(position)
	if e == c.curEntry {
		return
	}
	c.curEntry = e
	c.seekGen++
	c.ringStart, c.ringLen = 0, 0
	c.curSource = nil

	if e == nil || isDataType(e.TrackType) {
		c.cond.Broadcast()
		return
	}

	c.decodeOffset = int64(position-e.StartSector) * sectorBytes

	switch e.TrackType {
	case AudioFlac, AudioOgg, AudioWav:
		if f, err := c.openAudioFile(e.FileIndex); err == nil {
			c.curSource = f
			c.curSource.Seek(c.decodeOffset)
		} else {
			logger.Logf("cdrom", "could not open audio track: %v", err)
		}
	}
	c.cond.Broadcast()
}

func isDataType(t TrackType) bool {
	return t == Mode1_2048 || t == Mode1_2352
}

// ReadData fills buffer (2048 bytes) with the current sector's user
// data: 2048 bytes direct for MODE1/2048, the 2048 bytes after a
// 16-byte sync header for MODE1/2352 (cue or CHD). Missing bytes are
// zero-filled.
func (c *Cdrom) ReadData(buffer []byte) {
	c.mu.Lock()
	e := c.curEntry
	position := c.position
	c.mu.Unlock()

	zero(buffer)
	if e == nil || !isDataType(e.TrackType) {
		return
	}
	sectorInEntry := int64(position - e.StartSector)

	if c.chdFile != nil {
		sector := uint32(e.FileOffset/sectorBytes) + uint32(sectorInEntry)
		frame := make([]byte, sectorBytes)
		if err := c.chdFile.ReadSectors(sector, 1, frame); err != nil {
			return
		}
		skip := 0
		if e.TrackType == Mode1_2352 {
			skip = 16
		}
		copy(buffer, frame[skip:skip+2048])
		return
	}

	f, err := c.openDataFile(e.FileIndex)
	if err != nil {
		return
	}
	var offset int64
	if e.TrackType == Mode1_2048 {
		offset = e.FileOffset + sectorInEntry*2048
	} else {
		offset = e.FileOffset + sectorInEntry*sectorBytes + 16
	}
	n, _ := f.ReadAt(buffer, offset)
	for i := n; i < len(buffer); i++ {
		buffer[i] = 0
	}
}

// ReadAudio copies exactly len(buf) bytes of CD audio for the frame
// just elapsed, blocking on the worker-filled ring until enough data
// is available. When the current track isn't audio, or playback is
// stopped, no producer will ever satisfy
// the wait, so it returns immediately with silence instead.
func (c *Cdrom) ReadAudio(buf []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	got := 0
	for got < len(buf) {
		if c.ringLen == 0 {
			if !c.audioActiveLocked() {
				break
			}
			c.cond.Wait()
			continue
		}
		take := len(buf) - got
		if take > c.ringLen {
			take = c.ringLen
		}
		c.popLocked(buf[got : got+take])
		got += take
	}
	for i := got; i < len(buf); i++ {
		buf[i] = 0
	}
	c.cond.Broadcast()
}

func (c *Cdrom) audioActiveLocked() bool {
	return c.playing && c.curEntry != nil && !isDataType(c.curEntry.TrackType)
}

func (c *Cdrom) popLocked(dst []byte) {
	for i := range dst {
		dst[i] = c.ring[c.ringStart]
		c.ringStart = (c.ringStart + 1) % len(c.ring)
	}
	c.ringLen -= len(dst)
}

func (c *Cdrom) pushLocked(src []byte) {
	pos := (c.ringStart + c.ringLen) % len(c.ring)
	for _, b := range src {
		c.ring[pos] = b
		pos = (pos + 1) % len(c.ring)
	}
	c.ringLen += len(src)
}

func (c *Cdrom) ringFreeLocked() int {
	return len(c.ring) - c.ringLen
}

// workerLoop is the CD audio worker: it wakes whenever there is ring
// space, playback is active and the current entry is audio, decodes
// one sector's worth of bytes, and pushes it to the ring. It wakes
// consumers on every push and goes back to sleep when the ring is
// full, playback stops, or the track changes underneath it.
func (c *Cdrom) workerLoop() {
	c.mu.Lock()
	for {
		if c.exiting {
			c.mu.Unlock()
			c.wg.Done()
			return
		}
		if !c.audioActiveLocked() || c.ringFreeLocked() < sectorBytes {
			c.cond.Wait()
			continue
		}

		entry := c.curEntry
		source := c.curSource
		gen := c.seekGen
		offset := c.decodeOffset
		c.mu.Unlock()

		chunk := make([]byte, sectorBytes)
		c.readAudioDirect(entry, source, offset, chunk)

		c.mu.Lock()
		if c.seekGen != gen {
			// Seek or track change happened while decoding; this
			// chunk no longer corresponds to the current entry.
			continue
		}
		c.pushLocked(chunk)
		c.decodeOffset += sectorBytes
		c.cond.Broadcast()
	}
}

// readAudioDirect decodes exactly len(buf) bytes of track audio at
// offset bytes into entry, dispatching by track type. Short reads are
// zero-padded. Only the worker calls this.
func (c *Cdrom) readAudioDirect(entry *Entry, source *codec.Source, offset int64, buf []byte) {
	switch entry.TrackType {
	case Silence:
		zero(buf)

	case AudioPCM:
		if c.chdFile != nil {
			sector := uint32(entry.FileOffset/sectorBytes) + uint32(offset/sectorBytes)
			if err := c.chdFile.ReadSectors(sector, 1, buf); err != nil {
				zero(buf)
			}
			return
		}
		f, err := c.openDataFile(entry.FileIndex)
		if err != nil {
			zero(buf)
			return
		}
		n, _ := f.ReadAt(buf, entry.FileOffset+offset)
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}

	case AudioFlac, AudioOgg, AudioWav:
		if source == nil {
			zero(buf)
			return
		}
		source.Seek(offset)
		source.Read(buf)

	default:
		zero(buf)
	}
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// openDataFile lazily opens (and caches) the raw BINARY source file
// for a cue-sheet FileIndex.
func (c *Cdrom) openDataFile(fileIndex int) (*os.File, error) {
	if f, ok := c.dataFiles[fileIndex]; ok {
		return f, nil
	}
	f, err := os.Open(c.toc.Files[fileIndex].FileName)
	if err != nil {
		return nil, err
	}
	c.dataFiles[fileIndex] = f
	return f, nil
}

// openAudioFile decodes a compressed audio track's source file fully
// into memory, dispatching by extension; OpenWAV/OpenFLAC/OpenOgg
// mirror the dispatch cue.go's fileSizeAndType already uses at parse
// time.
func (c *Cdrom) openAudioFile(fileIndex int) (*codec.Source, error) {
	path := c.toc.Files[fileIndex].FileName
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return codec.OpenWAV(f)
	case ".flac":
		return codec.OpenFLAC(f)
	case ".ogg":
		return codec.OpenOgg(f)
	default:
		return nil, os.ErrInvalid
	}
}

// Save/Restore persist the play position and playing flag. Restore
// re-seeks the disc to the restored position, clearing and refilling
// the ring from there rather than trying to copy decoder state.
func (c *Cdrom) Save(w savestate.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	w.PutU32(c.position)
	if c.playing {
		w.PutU8(1)
	} else {
		w.PutU8(0)
	}
}

func (c *Cdrom) Restore(r savestate.Reader) error {
	position := r.GetU32()
	playing := r.GetU8() != 0
	if r.Failed() {
		return errShort
	}
	c.mu.Lock()
	c.playing = playing
	c.curEntry = nil
	c.setPositionLocked(position)
	c.mu.Unlock()
	return nil
}
