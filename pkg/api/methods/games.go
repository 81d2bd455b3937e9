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

package methods

import (
	"context"
	"errors"
	"fmt"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/models/requests"
	"github.com/nakomaNS/AltCloud/pkg/api/validation"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/rs/zerolog/log"
)

// keepOnPersistError turns a failed games.json write into a warning: the
// change is live for this session and the caller still gets the game.
func keepOnPersistError(err error) error {
	if errors.Is(err, games.ErrPersist) {
		log.Warn().Err(err).Msg("game registry change not saved to disk")
		return nil
	}
	return err
}

func gamesResponse(gs []games.Game) models.GamesResponse {
	resp := models.GamesResponse{Games: make([]models.GameResponse, len(gs))}
	for i := range gs {
		resp.Games[i] = models.NewGameResponse(&gs[i])
	}
	return resp
}

func HandleGames(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received games request")

	var params models.GamesParams
	if err := validation.UnmarshalOptional(env.Params, &params); err != nil {
		return nil, err
	}

	gs, err := env.Monitor.Games(ctxOf(&env))
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	return gamesResponse(games.View(gs, params)), nil
}

// fetchCover downloads cover art in the background and records it on the
// game once it is cached.
func fetchCover(env *requests.RequestEnv, g games.Game) {
	if env.Covers == nil {
		return
	}
	covers := env.Covers
	mon := env.Monitor
	parent := ctxOf(env)
	go func() {
		ctx, cancel := context.WithTimeout(parent, backgroundTimeout)
		defer cancel()

		path, err := covers.Fetch(ctx, g.Name)
		if err != nil {
			log.Info().Err(err).Str("game", g.Name).Msg("no cover art")
			return
		}
		if _, err := mon.SetImagePath(ctx, g.Process, path); keepOnPersistError(err) != nil {
			log.Warn().Err(err).Str("game", g.Name).Msg("failed to record cover art")
		}
	}()
}

//nolint:gocritic // single-use parameter in API handler
func HandleGamesAdd(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games add request")

	var params models.GameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	g, err := env.Monitor.AddGame(ctxOf(&env), params.Game())
	if err = keepOnPersistError(err); err != nil {
		return nil, err
	}
	if params.FetchCover && g.ImagePath == "" {
		fetchCover(&env, g)
	}
	return models.NewGameResponse(&g), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGamesUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games update request")

	var params models.UpdateGameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	g, err := env.Monitor.UpdateGame(ctxOf(&env), params.Original.Game(), params.Updated.Game())
	if err = keepOnPersistError(err); err != nil {
		return nil, err
	}
	if params.Updated.FetchCover {
		fetchCover(&env, g)
	}
	return models.NewGameResponse(&g), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGamesDelete(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games delete request")

	var params models.DeleteGameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	err := env.Monitor.RemoveGame(ctxOf(&env), params.Game.Game())
	if err = keepOnPersistError(err); err != nil {
		return nil, err
	}
	return NoContent{}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGamesFavorite(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games favorite request")

	var params models.ProcessParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	g, err := env.Monitor.ToggleFavorite(ctxOf(&env), params.Process)
	if err = keepOnPersistError(err); err != nil {
		return nil, err
	}
	return models.NewGameResponse(&g), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGamesSync(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games sync request")

	var params models.SyncParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	mode := syncer.ModeSyncNow
	if params.Mode == "upload" {
		mode = syncer.ModeUploadOnly
	}
	job, err := env.Monitor.RequestSync(ctxOf(&env), params.Process, mode)
	if err != nil {
		return nil, err
	}
	return models.NewSyncJobResponse(&job), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGamesStatus(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received games status request")

	st, err := env.Monitor.Statuses(ctxOf(&env))
	if err != nil {
		return nil, fmt.Errorf("failed to read statuses: %w", err)
	}
	if st == nil {
		st = []models.GameStatus{}
	}
	return models.GamesStatusResponse{Games: st}, nil
}
