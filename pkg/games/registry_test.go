// AltCloud
// Copyright (c) 2026 The AltCloud Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of AltCloud.
//
// AltCloud is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// AltCloud is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with AltCloud.  If not, see <http://www.gnu.org/licenses/>.

package games

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDir = "/cfg"

func readGamesFile(t *testing.T, fs afero.Fs) []Game {
	t.Helper()
	data, err := afero.ReadFile(fs, "/cfg/games.json")
	require.NoError(t, err)
	var gs []Game
	require.NoError(t, json.Unmarshal(data, &gs))
	return gs
}

func TestRegistry_LoadMissingFile(t *testing.T) {
	t.Parallel()

	r := NewRegistry(afero.NewMemMapFs(), testDir)

	require.NoError(t, r.Load())
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_LoadQuarantinesInvalidEntries(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/games.json", []byte(`[
		{"name": "Celeste", "process": "Celeste.exe", "save_path": "C:/saves/celeste"},
		{"name": "", "process": "empty.exe"},
		{"name": "No Process"},
		{"name": "Celeste Again", "process": "celeste.EXE"},
		{"name": 42, "process": "bad.exe"},
		{"name": "Hades", "process": "hades.exe", "is_favorite": true}
	]`), 0o600))

	r := NewRegistry(fs, testDir)
	require.NoError(t, r.Load())

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "Celeste", all[0].Name)
	assert.Equal(t, "Hades", all[1].Name)
	assert.True(t, all[1].IsFavorite)

	data, err := afero.ReadFile(fs, "/cfg/games.quarantine.json")
	require.NoError(t, err)
	var quarantined []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &quarantined))
	assert.Len(t, quarantined, 4)
}

func corruptBackups(t *testing.T, fs afero.Fs) []string {
	t.Helper()
	matches, err := afero.Glob(fs, "/cfg/games.json.corrupt-*")
	require.NoError(t, err)
	return matches
}

func TestRegistry_LoadCorruptFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	original := []byte(`[{"name":"Celeste","process":"celeste.exe"},{"name":"Hades","process":"Had`)
	require.NoError(t, afero.WriteFile(fs, "/cfg/games.json", original, 0o600))

	r := NewRegistry(fs, testDir)
	err := r.Load()

	require.Error(t, err)
	assert.Equal(t, 0, r.Len())

	backups := corruptBackups(t, fs)
	require.Len(t, backups, 1)
	data, err := afero.ReadFile(fs, backups[0])
	require.NoError(t, err)
	assert.Equal(t, original, data)

	// the list the user had is still recoverable after the next save
	require.NoError(t, r.Add(Game{Name: "New", Process: "new.exe"}))
	assert.Len(t, readGamesFile(t, fs), 1)
	data, err = afero.ReadFile(fs, backups[0])
	require.NoError(t, err)
	assert.Equal(t, original, data)
}

// failBackupFs refuses to create backup copies of games.json.
type failBackupFs struct {
	afero.Fs
	fail bool
}

func (f *failBackupFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if f.fail && strings.Contains(name, ".corrupt-") {
		return nil, errors.New("disk full")
	}
	return f.Fs.OpenFile(name, flag, perm)
}

func TestRegistry_UnreadableFileNotOverwrittenWithoutBackup(t *testing.T) {
	t.Parallel()

	mem := afero.NewMemMapFs()
	original := []byte(`[{"name":`)
	require.NoError(t, afero.WriteFile(mem, "/cfg/games.json", original, 0o600))
	fs := &failBackupFs{Fs: mem, fail: true}

	r := NewRegistry(fs, testDir)
	require.Error(t, r.Load())

	err := r.Add(Game{Name: "New", Process: "new.exe"})
	require.ErrorIs(t, err, ErrPersist)
	require.ErrorIs(t, err, ErrUnreadableKept)
	assert.True(t, r.HasProcess("new.exe"))

	data, err := afero.ReadFile(mem, "/cfg/games.json")
	require.NoError(t, err)
	assert.Equal(t, original, data)

	// once the backup can be written, saving goes through
	fs.fail = false
	_, err = r.ToggleFavorite("new.exe")
	require.NoError(t, err)
	assert.Len(t, corruptBackups(t, mem), 1)
	assert.Len(t, readGamesFile(t, mem), 1)
}

func TestRegistry_AddPersists(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r := NewRegistry(fs, testDir)

	require.NoError(t, r.Add(Game{Name: "Celeste", Process: "celeste.exe", IsFavorite: true}))

	saved := readGamesFile(t, fs)
	require.Len(t, saved, 1)
	assert.Equal(t, "Celeste", saved[0].Name)
	assert.False(t, saved[0].IsFavorite, "new games start as non-favourites")
	assert.True(t, r.HasProcess("CELESTE.exe"))
}

func TestRegistry_EditMatchesWholeRecord(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r := NewRegistry(fs, testDir)
	original := Game{Name: "Celeste", Process: "celeste.exe", SavePath: "/a"}
	require.NoError(t, r.Add(original))

	stale := original
	stale.SavePath = "/elsewhere"
	ok, err := r.Edit(stale, Game{Name: "X", Process: "x.exe"})
	require.NoError(t, err)
	assert.False(t, ok)

	updated := Game{Name: "Celeste", Process: "celeste64.exe", SavePath: "/b"}
	ok, err = r.Edit(original, updated)
	require.NoError(t, err)
	assert.True(t, ok)

	saved := readGamesFile(t, fs)
	require.Len(t, saved, 1)
	assert.Equal(t, updated, saved[0])
}

func TestRegistry_Remove(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r := NewRegistry(fs, testDir)
	a := Game{Name: "A", Process: "a.exe"}
	b := Game{Name: "B", Process: "b.exe"}
	require.NoError(t, r.Add(a))
	require.NoError(t, r.Add(b))

	ok, err := r.Remove(a)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Remove(a)
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, []Game{b}, readGamesFile(t, fs))
}

func TestRegistry_ToggleFavorite(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r := NewRegistry(fs, testDir)
	require.NoError(t, r.Add(Game{Name: "A", Process: "a.exe"}))

	g, err := r.ToggleFavorite("A.EXE")
	require.NoError(t, err)
	assert.True(t, g.IsFavorite)
	assert.True(t, readGamesFile(t, fs)[0].IsFavorite)

	_, err = r.ToggleFavorite("missing.exe")
	require.ErrorIs(t, err, ErrNotFound)
}

type readOnlyFs struct {
	afero.Fs
}

func (readOnlyFs) OpenFile(string, int, os.FileMode) (afero.File, error) {
	return nil, errors.New("read-only filesystem")
}

func TestRegistry_PersistFailureKeepsMemory(t *testing.T) {
	t.Parallel()

	r := NewRegistry(readOnlyFs{afero.NewMemMapFs()}, testDir)

	err := r.Add(Game{Name: "A", Process: "a.exe"})

	require.ErrorIs(t, err, ErrPersist)
	assert.True(t, r.HasProcess("a.exe"))
}

func TestRegistry_SaveDoesNotEscapeHTML(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	r := NewRegistry(fs, testDir)
	require.NoError(t, r.Add(Game{Name: "Tom & Jerry <3>", Process: "tj.exe"}))

	data, err := afero.ReadFile(fs, "/cfg/games.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tom & Jerry <3>")
	assert.Contains(t, string(data), "\n    {")
}
