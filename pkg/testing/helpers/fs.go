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

package helpers

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/spf13/afero"
)

// FSHelper provides utilities for filesystem mocking in tests
type FSHelper struct {
	Fs afero.Fs
}

// NewMemoryFS creates a new in-memory filesystem for testing
func NewMemoryFS() *FSHelper {
	return &FSHelper{
		Fs: afero.NewMemMapFs(),
	}
}

// WriteGames writes a games.json holding gs into configDir.
func (h *FSHelper) WriteGames(configDir string, gs ...games.Game) error {
	if gs == nil {
		gs = []games.Game{}
	}
	data, err := json.MarshalIndent(gs, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal games: %w", err)
	}
	return h.write(filepath.Join(configDir, config.GamesFile), data)
}

// WriteSave creates a save file with the given modification time.
func (h *FSHelper) WriteSave(savePath, name string, mtime time.Time) error {
	path := filepath.Join(savePath, name)
	if err := h.write(path, []byte("save:"+name)); err != nil {
		return err
	}
	if err := h.Fs.Chtimes(path, mtime, mtime); err != nil {
		return fmt.Errorf("failed to set save time: %w", err)
	}
	return nil
}

// WriteRecord writes the ledger record the sync helper leaves after
// uploading one save file of gameName at the given time.
func (h *FSHelper) WriteRecord(statusDir, gameName, file string, uploaded time.Time) error {
	data := fmt.Sprintf(`{"last_upload_timestamp": %d}`, uploaded.Unix())
	path := ledger.New(h.Fs, statusDir).RecordPath(gameName, file)
	return h.write(path, []byte(data))
}

func (h *FSHelper) write(path string, data []byte) error {
	if err := h.Fs.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := afero.WriteFile(h.Fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
