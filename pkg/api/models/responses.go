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

package models

import (
	"time"

	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
)

type GameResponse struct {
	Name       string `json:"name" validate:"required"`
	Process    string `json:"process" validate:"required"`
	SavePath   string `json:"savePath"`
	ImagePath  string `json:"imagePath"`
	IsFavorite bool   `json:"isFavorite"`
}

func NewGameResponse(g *games.Game) GameResponse {
	return GameResponse{
		Name:       g.Name,
		Process:    g.Process,
		SavePath:   g.SavePath,
		ImagePath:  g.ImagePath,
		IsFavorite: g.IsFavorite,
	}
}

func (r *GameResponse) Game() games.Game {
	return games.Game{
		Name:       r.Name,
		Process:    r.Process,
		SavePath:   r.SavePath,
		ImagePath:  r.ImagePath,
		IsFavorite: r.IsFavorite,
	}
}

type GamesResponse struct {
	Games []GameResponse `json:"games"`
}

// GameStatus carries times as unix seconds; 0 means never.
type GameStatus struct {
	Name        string `json:"name"`
	Process     string `json:"process"`
	State       string `json:"state"`
	ModTime     int64  `json:"modTime"`
	UploadTime  int64  `json:"uploadTime"`
	Running     bool   `json:"running"`
	Syncing     bool   `json:"syncing"`
	NeverSynced bool   `json:"neverSynced"`
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func NewGameStatus(g *games.Game, st ledger.Status, syncing bool) GameStatus {
	return GameStatus{
		Name:        g.Name,
		Process:     g.Process,
		Running:     st.Running,
		Syncing:     syncing,
		ModTime:     unixOrZero(st.ModTime),
		UploadTime:  unixOrZero(st.UploadTime),
		State:       string(st.State()),
		NeverSynced: st.NeverSynced(),
	}
}

type GamesStatusResponse struct {
	Games []GameStatus `json:"games"`
}

type GameEventResponse struct {
	Name    string `json:"name"`
	Process string `json:"process"`
}

type SyncJobResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Process string `json:"process"`
	Mode    string `json:"mode"`
	Trigger string `json:"trigger"`
}

func NewSyncJobResponse(job *syncer.Job) SyncJobResponse {
	return SyncJobResponse{
		ID:      job.ID.String(),
		Name:    job.Game.Name,
		Process: job.Game.Process,
		Mode:    string(job.Mode),
		Trigger: string(job.Trigger),
	}
}

type SyncResultResponse struct {
	SyncJobResponse
	Message    string `json:"message"`
	Log        string `json:"log"`
	Files      int    `json:"files"`
	DurationMs int64  `json:"durationMs"`
	Success    bool   `json:"success"`
}

func NewSyncResultResponse(out *syncer.Outcome) SyncResultResponse {
	return SyncResultResponse{
		SyncJobResponse: NewSyncJobResponse(&out.Job),
		Success:         out.Success(),
		Message:         out.Message,
		Log:             out.Log,
		Files:           out.Files,
		DurationMs:      out.Duration().Milliseconds(),
	}
}

type SaveFileResponse struct {
	Name       string `json:"name"`
	RemoteName string `json:"remoteName"`
	Size       string `json:"size"`
	ModTime    string `json:"modTime"`
	UploadTime string `json:"uploadTime"`
	SizeBytes  int64  `json:"sizeBytes"`
}

type SavesResponse struct {
	Files []SaveFileResponse `json:"files"`
}

type RemoteFileResponse struct {
	Filename  string `json:"filename"`
	Size      string `json:"size"`
	Timestamp string `json:"timestamp"`
	SizeBytes int64  `json:"sizeBytes"`
}

type RemoteSavesResponse struct {
	Files []RemoteFileResponse `json:"files"`
}

type DeleteSavesResponse struct {
	Files   []string `json:"files"`
	Log     string   `json:"log"`
	Message string   `json:"message"`
	Success bool     `json:"success"`
}

type SettingsResponse struct {
	StartWithWindows bool `json:"startWithWindows"`
	CloseToTray      bool `json:"closeToTray"`
	DebugLogging     bool `json:"debugLogging"`
}

type CatalogEntry struct {
	Name  string `json:"name"`
	AppID int    `json:"appId"`
}

type CatalogSearchResponse struct {
	Results []CatalogEntry `json:"results"`
}

type HistoryEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Process    string `json:"process"`
	Mode       string `json:"mode"`
	Trigger    string `json:"trigger"`
	Message    string `json:"message"`
	StartedAt  int64  `json:"startedAt"`
	DurationMs int64  `json:"durationMs"`
	Files      int    `json:"files"`
	Success    bool   `json:"success"`
}

type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}
