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

package prefs_test

import (
	"path/filepath"
	"testing"

	"neocd/prefs"

	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "neocd_prefs_test")

	v := prefs.NewValues()
	v.SetRegion(prefs.USA)
	v.SetBIOSSelection("universe-bios-4.0")
	v.CDSpeedHack = prefs.On
	require.NoError(t, v.Save(path))

	loaded := prefs.NewValues()
	require.NoError(t, loaded.Load(path))
	require.Equal(t, prefs.USA, loaded.Region)
	require.Equal(t, "universe-bios-4.0", loaded.BIOSSelection)
	require.Equal(t, prefs.On, loaded.CDSpeedHack)
	require.Equal(t, prefs.Off, loaded.SkipCDLoading)
}

func TestRegionChangeCallback(t *testing.T) {
	v := prefs.NewValues()
	var changed []string
	v.SetOnChange(func(name string) { changed = append(changed, name) })

	v.SetRegion(prefs.Europe)
	v.SetRegion(prefs.Europe) // no-op, same value
	v.SetBIOSSelection("bios-a")

	require.Equal(t, []string{"region", "bios_selection"}, changed)
}

func TestMissingFileIsNotError(t *testing.T) {
	v := prefs.NewValues()
	require.NoError(t, v.Load(filepath.Join(t.TempDir(), "does-not-exist")))
	require.Equal(t, prefs.Japan, v.Region)
}

func TestSRAMFilename(t *testing.T) {
	v := prefs.NewValues()
	require.Equal(t, "backup.srm", v.SRAMFilename("/games/foo.cue"))
	v.PerContentSaves = prefs.On
	require.Equal(t, "/games/foo.cue.srm", v.SRAMFilename("/games/foo.cue"))
}
