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
	"errors"
	"fmt"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/models/requests"
	"github.com/nakomaNS/AltCloud/pkg/api/notifications"
	"github.com/nakomaNS/AltCloud/pkg/api/validation"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/helpers"
	"github.com/rs/zerolog/log"
)

var ErrNoHelper = errors.New("remote save helper not available")

func findGame(env *requests.RequestEnv, process string) (games.Game, error) {
	g, ok, err := env.Monitor.Find(ctxOf(env), process)
	if err != nil {
		return games.Game{}, err
	}
	if !ok {
		return games.Game{}, games.ErrNotFound
	}
	return g, nil
}

// HandleSaves lists a game's local save files with their last upload.
func HandleSaves(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received saves request")

	var params models.ProcessParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	g, err := findGame(&env, params.Process)
	if err != nil {
		return nil, err
	}

	files, err := env.Ledger.Files(&g)
	if err != nil {
		return nil, fmt.Errorf("failed to list save files: %w", err)
	}

	resp := models.SavesResponse{Files: make([]models.SaveFileResponse, len(files))}
	for i := range files {
		f := &files[i]
		resp.Files[i] = models.SaveFileResponse{
			Name:       f.Name,
			RemoteName: f.RemoteName,
			Size:       helpers.FormatBytes(f.Size),
			SizeBytes:  f.Size,
			ModTime:    helpers.FormatTimestamp(f.ModTime),
			UploadTime: helpers.FormatTimestamp(f.UploadTime),
		}
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSavesRemote(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received remote saves request")

	var params models.RemoteSavesParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if env.Saves == nil {
		return nil, ErrNoHelper
	}
	g, err := findGame(&env, params.Process)
	if err != nil {
		return nil, err
	}

	remote, err := env.Saves.ListRemote(ctxOf(&env), games.SanitizeName(g.Name))
	if err != nil {
		return nil, err
	}

	resp := models.RemoteSavesResponse{Files: make([]models.RemoteFileResponse, len(remote))}
	for i := range remote {
		resp.Files[i] = models.RemoteFileResponse{
			Filename:  remote[i].Filename,
			Size:      helpers.FormatBytes(remote[i].Size),
			SizeBytes: remote[i].Size,
			Timestamp: helpers.FormatTimestamp(remote[i].Time()),
		}
	}
	return resp, nil
}

// HandleSavesDelete removes the cloud copies of the named save files. A
// helper failure is reported in the result, with its log, not as an error.
func HandleSavesDelete(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received saves delete request")

	var params models.DeleteSavesParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}
	if env.Saves == nil {
		return nil, ErrNoHelper
	}
	g, err := findGame(&env, params.Process)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(params.Files))
	for i, f := range params.Files {
		names[i] = games.RemoteName(g.Name, f)
	}
	out := env.Saves.Delete(ctxOf(&env), names)

	resp := models.DeleteSavesResponse{
		Files:   out.Names,
		Log:     out.Log,
		Message: out.Message,
		Success: out.Success(),
	}
	notifications.SavesDeleted(env.Notifications, resp)
	return resp, nil
}
