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

package requests

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/database/catalog"
	"github.com/nakomaNS/AltCloud/pkg/database/history"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
)

// GameMonitor is the part of the monitor the API drives.
type GameMonitor interface {
	Games(ctx context.Context) ([]games.Game, error)
	Find(ctx context.Context, process string) (games.Game, bool, error)
	Statuses(ctx context.Context) ([]models.GameStatus, error)
	AddGame(ctx context.Context, g games.Game) (games.Game, error)
	UpdateGame(ctx context.Context, old, updated games.Game) (games.Game, error)
	RemoveGame(ctx context.Context, g games.Game) error
	ToggleFavorite(ctx context.Context, process string) (games.Game, error)
	SetImagePath(ctx context.Context, process, path string) (games.Game, error)
	RequestSync(ctx context.Context, process string, mode syncer.Mode) (syncer.Job, error)
}

// RemoteSaves talks to the delete helper.
type RemoteSaves interface {
	Delete(ctx context.Context, remoteNames []string) syncer.DeleteOutcome
	ListRemote(ctx context.Context, folder string) ([]syncer.RemoteFile, error)
}

type Catalog interface {
	Search(ctx context.Context, text string) ([]catalog.Entry, error)
}

type History interface {
	Recent(ctx context.Context, process string, limit int) ([]history.Entry, error)
}

type CoverFetcher interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// RequestEnv is everything a method handler may touch. Optional services
// (Catalog, History, Covers) may be nil.
type RequestEnv struct {
	Context       context.Context
	Config        *config.Instance
	Settings      *config.Settings
	Monitor       GameMonitor
	Saves         RemoteSaves
	Ledger        *ledger.Ledger
	Catalog       Catalog
	History       History
	Covers        CoverFetcher
	Notifications chan<- models.Notification
	Autostart     func(enabled bool) error
	Params        json.RawMessage
	ID            uuid.UUID
	IsLocal       bool
}
