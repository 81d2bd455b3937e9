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

// Package ledger reads the per-file upload records the sync helper leaves
// in the status directory and compares them with local save files.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrSaveDirNotFound  = errors.New("save directory not found")
	ErrRecordUnreadable = errors.New("ledger record unreadable")
)

var backupSuffixes = []string{".bak", ".local_backup"}

// IsBackup reports whether name is a backup copy that is never synced.
func IsBackup(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range backupSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

type SaveFile struct {
	ModTime time.Time
	Name    string
	Path    string
	Size    int64
}

// Record is the content of one ledger file.
type Record struct {
	LastUpload json.Number `json:"last_upload_timestamp"`
}

// Time converts the unix timestamp, integer or fractional, to a time.
func (r Record) Time() (time.Time, error) {
	secs, err := r.LastUpload.Float64()
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", r.LastUpload, err)
	}
	if secs <= 0 || math.IsInf(secs, 0) || math.IsNaN(secs) {
		return time.Time{}, nil
	}
	whole, frac := math.Modf(secs)
	return time.Unix(int64(whole), int64(frac*1e9)), nil
}

// Ledger reads save directories and the ledger records in statusDir. All
// methods are read-only and safe for concurrent use.
type Ledger struct {
	fs        afero.Fs
	statusDir string
}

func New(fs afero.Fs, statusDir string) *Ledger {
	return &Ledger{fs: fs, statusDir: statusDir}
}

func (l *Ledger) StatusDir() string {
	return l.statusDir
}

// SaveFiles lists the non-backup regular files directly inside savePath,
// sorted by name.
func (l *Ledger) SaveFiles(savePath string) ([]SaveFile, error) {
	if savePath == "" {
		return nil, ErrSaveDirNotFound
	}
	info, err := l.fs.Stat(savePath)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrSaveDirNotFound, savePath)
	}

	entries, err := afero.ReadDir(l.fs, savePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read save directory: %w", err)
	}

	files := make([]SaveFile, 0, len(entries))
	for _, e := range entries {
		if !e.Mode().IsRegular() || IsBackup(e.Name()) {
			continue
		}
		files = append(files, SaveFile{
			Name:    e.Name(),
			Path:    filepath.Join(savePath, e.Name()),
			Size:    e.Size(),
			ModTime: e.ModTime(),
		})
	}
	slices.SortFunc(files, func(a, b SaveFile) int {
		return strings.Compare(a.Name, b.Name)
	})
	return files, nil
}

// LatestModTime is the newest modification time among the save files, or
// the zero time when the directory is missing or empty.
func (l *Ledger) LatestModTime(savePath string) time.Time {
	files, err := l.SaveFiles(savePath)
	if err != nil {
		return time.Time{}
	}
	var latest time.Time
	for i := range files {
		if files[i].ModTime.After(latest) {
			latest = files[i].ModTime
		}
	}
	return latest
}

// RecordPath is where the sync helper records the last upload of one file.
func (l *Ledger) RecordPath(gameName, filename string) string {
	name := fmt.Sprintf("status_%s_%s.json", games.SanitizeName(gameName), filename)
	return filepath.Join(l.statusDir, name)
}

// ReadRecord loads a single ledger record.
func (l *Ledger) ReadRecord(gameName, filename string) (time.Time, error) {
	data, err := afero.ReadFile(l.fs, l.RecordPath(gameName, filename))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrRecordUnreadable, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrRecordUnreadable, err)
	}
	t, err := rec.Time()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrRecordUnreadable, err)
	}
	return t, nil
}

// UploadTime is the recorded upload of one file. Missing and corrupt
// records both read as the zero time.
func (l *Ledger) UploadTime(gameName, filename string) time.Time {
	t, err := l.ReadRecord(gameName, filename)
	if err != nil {
		if !isNotExist(err) {
			log.Debug().Err(err).Str("game", gameName).Str("file", filename).
				Msg("ignoring ledger record")
		}
		return time.Time{}
	}
	return t
}

// LatestUploadTime is the newest recorded upload across the game's save
// files, or the zero time when none was ever recorded.
func (l *Ledger) LatestUploadTime(gameName, savePath string) time.Time {
	files, err := l.SaveFiles(savePath)
	if err != nil {
		return time.Time{}
	}
	var latest time.Time
	for i := range files {
		if t := l.UploadTime(gameName, files[i].Name); t.After(latest) {
			latest = t
		}
	}
	return latest
}
