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

package ledger

import (
	"errors"
	"io/fs"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/games"
)

type SyncState string

const (
	StateSynced    SyncState = "synced"
	StateNeedsSync SyncState = "needs_sync"
)

// Status is what the front-end shows for one game.
type Status struct {
	ModTime    time.Time
	UploadTime time.Time
	Running    bool
}

// State is NeedsSync when a local save is newer than the last upload.
func (s Status) State() SyncState {
	if s.ModTime.After(s.UploadTime) {
		return StateNeedsSync
	}
	return StateSynced
}

func (s Status) NeverSynced() bool {
	return s.UploadTime.IsZero()
}

// Status computes the sync status of g. running is passed through.
func (l *Ledger) Status(g *games.Game, running bool) Status {
	return Status{
		Running:    running,
		ModTime:    l.LatestModTime(g.SavePath),
		UploadTime: l.LatestUploadTime(g.Name, g.SavePath),
	}
}

// FileStatus describes one save file for the save details view.
type FileStatus struct {
	ModTime    time.Time `json:"-"`
	UploadTime time.Time `json:"-"`
	Name       string    `json:"filename"`
	RemoteName string    `json:"remoteName"`
	Size       int64     `json:"size"`
}

// Files lists the save files of g with their upload records.
func (l *Ledger) Files(g *games.Game) ([]FileStatus, error) {
	files, err := l.SaveFiles(g.SavePath)
	if err != nil {
		return nil, err
	}
	out := make([]FileStatus, 0, len(files))
	for i := range files {
		out = append(out, FileStatus{
			Name:       files[i].Name,
			RemoteName: games.RemoteName(g.Name, files[i].Name),
			Size:       files[i].Size,
			ModTime:    files[i].ModTime,
			UploadTime: l.UploadTime(g.Name, files[i].Name),
		})
	}
	return out, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
