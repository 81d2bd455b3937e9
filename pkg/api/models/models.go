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
	"encoding/json"

	"github.com/google/uuid"
)

const (
	NotificationGamesStatus  = "games.status"
	NotificationGamesChanged = "games.changed"
	NotificationGameStarted  = "games.started"
	NotificationGameStopped  = "games.stopped"
	NotificationSyncStarted  = "sync.started"
	NotificationSyncFinished = "sync.finished"
	NotificationSavesDeleted = "saves.deleted"
)

const (
	MethodVersion        = "version"
	MethodGames          = "games"
	MethodGamesAdd       = "games.add"
	MethodGamesUpdate    = "games.update"
	MethodGamesDelete    = "games.delete"
	MethodGamesFavorite  = "games.favorite"
	MethodGamesSync      = "games.sync"
	MethodGamesStatus    = "games.status"
	MethodSaves          = "saves"
	MethodSavesRemote    = "saves.remote"
	MethodSavesDelete    = "saves.delete"
	MethodSettings       = "settings"
	MethodSettingsUpdate = "settings.update"
	MethodCatalogSearch  = "catalog.search"
	MethodHistory        = "history"
)

type Notification struct {
	Params any
	Method string
}

type RequestObject struct {
	ID      *uuid.UUID      `json:"id,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      uuid.UUID    `json:"id"`
}
