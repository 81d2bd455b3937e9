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

import "github.com/nakomaNS/AltCloud/pkg/games"

type GameParams struct {
	Name      string `json:"name" validate:"required"`
	Process   string `json:"process" validate:"required,process"`
	SavePath  string `json:"savePath" validate:"omitempty,savepath"`
	ImagePath string `json:"imagePath"`
	// FetchCover looks the name up in the catalog and downloads cover art.
	FetchCover bool `json:"fetchCover"`
}

func (p *GameParams) Game() games.Game {
	return games.Game{
		Name:      p.Name,
		Process:   p.Process,
		SavePath:  p.SavePath,
		ImagePath: p.ImagePath,
	}
}

type UpdateGameParams struct {
	Original GameResponse `json:"original" validate:"required"`
	Updated  GameParams   `json:"updated" validate:"required"`
}

type ProcessParams struct {
	Process string `json:"process" validate:"required"`
}

type DeleteGameParams struct {
	Game GameResponse `json:"game" validate:"required"`
}

// DeleteSavesParams names local save files; the cloud copies under the
// game's folder are deleted.
type DeleteSavesParams struct {
	Process string   `json:"process" validate:"required"`
	Files   []string `json:"files" validate:"required,min=1,dive,required"`
}

type SyncParams struct {
	Process string `json:"process" validate:"required"`
	Mode    string `json:"mode" validate:"omitempty,oneof=sync upload"`
}

type RemoteSavesParams struct {
	Process string `json:"process" validate:"required"`
}

type GamesParams = games.ViewOptions

type UpdateSettingsParams struct {
	StartWithWindows *bool `json:"startWithWindows"`
	CloseToTray      *bool `json:"closeToTray"`
	DebugLogging     *bool `json:"debugLogging"`
}

type CatalogSearchParams struct {
	Query string `json:"query" validate:"required"`
}

type HistoryParams struct {
	Process string `json:"process"`
	Limit   int    `json:"limit" validate:"omitempty,min=1,max=500"`
}
