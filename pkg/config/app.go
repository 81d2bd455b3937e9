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

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName           = "AltCloud"
	CfgFile           = "altcloud.toml"
	LogFile           = "altcloud.log"
	LockFile          = "altcloud.lock"
	GamesFile         = "games.json"
	QuarantineFile    = "games.quarantine.json"
	SettingsFile      = "settings.json"
	HistoryDbFile     = "history.db"
	CatalogDbFile     = "steam_games.db"
	SyncExeName       = "altcloud_util.exe"
	DeleterExeName    = "deleter.exe"
	SteamProcess      = "steam.exe"
	APIRequestTimeout = 30 * time.Second
)
