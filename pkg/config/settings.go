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
	"fmt"
	"os"
	"path/filepath"

	"github.com/nakomaNS/AltCloud/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrSettingsPersist is returned when settings.json could not be written.
// The in-memory values stay in effect.
var ErrSettingsPersist = errors.New("failed to persist settings")

// UserSettings are the preferences edited from the front-end.
type UserSettings struct {
	StartWithWindows bool `json:"start_with_windows"`
	CloseToTray      bool `json:"close_to_tray"`
}

// Settings is settings.json. Keys it does not know about are kept and
// written back untouched.
type Settings struct {
	fs    afero.Fs
	path  string
	extra map[string]json.RawMessage
	vals  UserSettings
	mu    syncutil.Mutex
}

// LoadSettings reads settings.json from configDir. A missing or unreadable
// file yields the defaults.
func LoadSettings(fs afero.Fs, configDir string) *Settings {
	s := &Settings{
		fs:    fs,
		path:  filepath.Join(configDir, SettingsFile),
		extra: map[string]json.RawMessage{},
	}

	data, err := afero.ReadFile(fs, s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Msg("failed to read settings, using defaults")
		}
		return s
	}

	if err := json.Unmarshal(data, &s.extra); err != nil {
		log.Warn().Err(err).Msg("invalid settings file, using defaults")
		s.extra = map[string]json.RawMessage{}
		return s
	}
	if err := json.Unmarshal(data, &s.vals); err != nil {
		log.Warn().Err(err).Msg("invalid settings values, using defaults")
		s.vals = UserSettings{}
	}
	delete(s.extra, "start_with_windows")
	delete(s.extra, "close_to_tray")

	return s
}

func (s *Settings) Get() UserSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vals
}

// Set replaces the values and writes the file.
func (s *Settings) Set(vals UserSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vals = vals

	out := make(map[string]any, len(s.extra)+2)
	for k, v := range s.extra {
		out[k] = v
	}
	out["start_with_windows"] = vals.StartWithWindows
	out["close_to_tray"] = vals.CloseToTray

	data, err := json.MarshalIndent(out, "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsPersist, err)
	}
	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsPersist, err)
	}
	if err := afero.WriteFile(s.fs, s.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrSettingsPersist, err)
	}
	return nil
}
