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

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	s := LoadSettings(afero.NewMemMapFs(), "/cfg")

	assert.Equal(t, UserSettings{}, s.Get())
}

func TestLoadSettings_CorruptFileUsesDefaults(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/settings.json", []byte("{nope"), 0o600))

	s := LoadSettings(fs, "/cfg")

	assert.Equal(t, UserSettings{}, s.Get())
}

func TestSettings_UnknownKeysPreserved(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/settings.json",
		[]byte(`{"close_to_tray": true, "theme": "dark"}`), 0o600))

	s := LoadSettings(fs, "/cfg")
	assert.True(t, s.Get().CloseToTray)
	assert.False(t, s.Get().StartWithWindows)

	require.NoError(t, s.Set(UserSettings{StartWithWindows: true, CloseToTray: true}))

	data, err := afero.ReadFile(fs, filepath.Join("/cfg", SettingsFile))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "dark", raw["theme"])
	assert.Equal(t, true, raw["start_with_windows"])
}

type failingFs struct {
	afero.Fs
}

func (failingFs) OpenFile(string, int, os.FileMode) (afero.File, error) {
	return nil, errors.New("disk full")
}

func TestSettings_SetPersistFailureKeepsValues(t *testing.T) {
	t.Parallel()

	s := LoadSettings(failingFs{afero.NewMemMapFs()}, "/cfg")

	err := s.Set(UserSettings{CloseToTray: true})

	require.ErrorIs(t, err, ErrSettingsPersist)
	assert.True(t, s.Get().CloseToTray)
}
