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

package notifications

import (
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// send never blocks the caller; the monitor's control loop publishes
// through here.
func send(ns chan<- models.Notification, n models.Notification) {
	if ns == nil {
		return
	}
	select {
	case ns <- n:
	default:
		log.Warn().Str("method", n.Method).Msg("notification queue full, dropping notification")
	}
}

func GamesStatus(ns chan<- models.Notification, payload models.GamesStatusResponse) {
	send(ns, models.Notification{
		Method: models.NotificationGamesStatus,
		Params: payload,
	})
}

func GamesChanged(ns chan<- models.Notification, payload models.GamesResponse) {
	send(ns, models.Notification{
		Method: models.NotificationGamesChanged,
		Params: payload,
	})
}

func GameStarted(ns chan<- models.Notification, payload models.GameEventResponse) {
	send(ns, models.Notification{
		Method: models.NotificationGameStarted,
		Params: payload,
	})
}

func GameStopped(ns chan<- models.Notification, payload models.GameEventResponse) {
	send(ns, models.Notification{
		Method: models.NotificationGameStopped,
		Params: payload,
	})
}

func SyncStarted(ns chan<- models.Notification, payload models.SyncJobResponse) {
	send(ns, models.Notification{
		Method: models.NotificationSyncStarted,
		Params: payload,
	})
}

func SyncFinished(ns chan<- models.Notification, payload models.SyncResultResponse) {
	send(ns, models.Notification{
		Method: models.NotificationSyncFinished,
		Params: payload,
	})
}

func SavesDeleted(ns chan<- models.Notification, payload models.DeleteSavesResponse) {
	send(ns, models.Notification{
		Method: models.NotificationSavesDeleted,
		Params: payload,
	})
}
