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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	// ErrPersist wraps failures writing games.json. The in-memory registry
	// keeps the change.
	ErrPersist          = errors.New("failed to persist game registry")
	ErrNotFound         = errors.New("game not found")
	ErrDuplicateProcess = errors.New("process already registered")
	// ErrUnreadableKept is returned by Save while an unparsable games.json
	// could not be backed up, so it is never overwritten.
	ErrUnreadableKept = errors.New("unreadable game registry not backed up yet")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the required fields of a game.
func Validate(g *Game) error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("invalid game: %w", err)
	}
	return nil
}

// Registry is the ordered list of registered games backed by games.json.
// It is not safe for concurrent use; the monitor's control loop owns it.
type Registry struct {
	fs             afero.Fs
	path           string
	quarantinePath string
	games          []Game
	// unreadable holds the bytes of a games.json that failed to parse until
	// a backup copy has been written.
	unreadable []byte
}

func NewRegistry(fs afero.Fs, configDir string) *Registry {
	return &Registry{
		fs:             fs,
		path:           filepath.Join(configDir, config.GamesFile),
		quarantinePath: filepath.Join(configDir, config.QuarantineFile),
		games:          []Game{},
	}
}

// Load replaces the in-memory list with the contents of games.json. A
// missing file is an empty registry. Entries that fail validation or reuse
// another entry's process are skipped and copied to the quarantine file.
func (r *Registry) Load() error {
	r.games = []Game{}

	data, err := afero.ReadFile(r.fs, r.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", r.path).Msg("no game registry found, starting empty")
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to read game registry: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		r.unreadable = data
		if backupErr := r.backupUnreadable(); backupErr != nil {
			log.Error().Err(backupErr).Msg("failed to back up unreadable game registry")
		}
		return fmt.Errorf("failed to parse game registry: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	var rejected []json.RawMessage
	for i, entry := range raw {
		var g Game
		if err := json.Unmarshal(entry, &g); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping unreadable game entry")
			rejected = append(rejected, entry)
			continue
		}
		if err := Validate(&g); err != nil {
			log.Warn().Err(err).Int("index", i).Str("name", g.Name).Msg("skipping invalid game entry")
			rejected = append(rejected, entry)
			continue
		}
		if _, dup := seen[g.Key()]; dup {
			log.Warn().Int("index", i).Str("process", g.Process).Msg("skipping duplicate game process")
			rejected = append(rejected, entry)
			continue
		}
		seen[g.Key()] = struct{}{}
		r.games = append(r.games, g)
	}

	if len(rejected) > 0 {
		r.quarantine(rejected)
	}

	log.Info().Int("games", len(r.games)).Msg("loaded game registry")
	return nil
}

// backupUnreadable copies an unparsable games.json byte for byte next to
// the original.
func (r *Registry) backupUnreadable() error {
	if r.unreadable == nil {
		return nil
	}
	path := r.path + ".corrupt-" + time.Now().Format("20060102-150405")
	if err := afero.WriteFile(r.fs, path, r.unreadable, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	log.Warn().Str("path", path).Msg("backed up unreadable game registry")
	r.unreadable = nil
	return nil
}

func (r *Registry) quarantine(entries []json.RawMessage) {
	var existing []json.RawMessage
	if data, err := afero.ReadFile(r.fs, r.quarantinePath); err == nil {
		_ = json.Unmarshal(data, &existing)
	}
	existing = append(existing, entries...)

	data, err := json.MarshalIndent(existing, "", "    ")
	if err == nil {
		err = afero.WriteFile(r.fs, r.quarantinePath, data, 0o600)
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to write quarantined game entries")
		return
	}
	log.Warn().Int("entries", len(entries)).Str("path", r.quarantinePath).
		Msg("quarantined game entries")
}

// Save rewrites games.json with the full list. An unparsable games.json
// from Load is only replaced once its backup has been written.
func (r *Registry) Save() error {
	if err := r.backupUnreadable(); err != nil {
		return fmt.Errorf("%w: %w: %w", ErrPersist, ErrUnreadableKept, err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(r.games); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	if err := r.fs.MkdirAll(filepath.Dir(r.path), 0o750); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	tmp := r.path + ".tmp"
	if err := afero.WriteFile(r.fs, tmp, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := r.fs.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

// All returns a copy of the registry in registration order.
func (r *Registry) All() []Game {
	out := make([]Game, len(r.games))
	copy(out, r.games)
	return out
}

func (r *Registry) Len() int {
	return len(r.games)
}

func (r *Registry) index(process string) int {
	key := ProcessKey(process)
	for i := range r.games {
		if r.games[i].Key() == key {
			return i
		}
	}
	return -1
}

func (r *Registry) Find(process string) (Game, bool) {
	i := r.index(process)
	if i < 0 {
		return Game{}, false
	}
	return r.games[i], true
}

// HasProcess reports whether another game already watches process.
func (r *Registry) HasProcess(process string) bool {
	return r.index(process) >= 0
}

// Add appends a new, non-favourite game and persists the registry.
// Uniqueness is the caller's responsibility.
func (r *Registry) Add(g Game) error {
	g.IsFavorite = false
	r.games = append(r.games, g)
	return r.Save()
}

// Edit replaces the record equal to old. It reports false without touching
// the file if no such record exists.
func (r *Registry) Edit(old, updated Game) (bool, error) {
	for i := range r.games {
		if r.games[i] == old {
			r.games[i] = updated
			return true, r.Save()
		}
	}
	return false, nil
}

// Remove deletes the record equal to g.
func (r *Registry) Remove(g Game) (bool, error) {
	for i := range r.games {
		if r.games[i] == g {
			r.games = append(r.games[:i], r.games[i+1:]...)
			return true, r.Save()
		}
	}
	return false, nil
}

// ToggleFavorite flips the favourite flag of the game watching process and
// returns the updated record.
func (r *Registry) ToggleFavorite(process string) (Game, error) {
	i := r.index(process)
	if i < 0 {
		return Game{}, ErrNotFound
	}
	r.games[i].IsFavorite = !r.games[i].IsFavorite
	return r.games[i], r.Save()
}

// SetImagePath records a cached cover image for the game watching process.
func (r *Registry) SetImagePath(process, path string) (Game, error) {
	i := r.index(process)
	if i < 0 {
		return Game{}, ErrNotFound
	}
	r.games[i].ImagePath = path
	return r.games[i], r.Save()
}
