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
	"fmt"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/models/requests"
	"github.com/nakomaNS/AltCloud/pkg/api/validation"
	"github.com/rs/zerolog/log"
)

func HandleHistory(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received history request")

	var params models.HistoryParams
	if err := validation.UnmarshalOptional(env.Params, &params); err != nil {
		return nil, err
	}

	resp := models.HistoryResponse{Entries: []models.HistoryEntry{}}
	if env.History == nil {
		return resp, nil
	}

	entries, err := env.History.Recent(ctxOf(&env), params.Process, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	for i := range entries {
		e := &entries[i]
		resp.Entries = append(resp.Entries, models.HistoryEntry{
			ID:         e.JobID,
			Name:       e.Game,
			Process:    e.Process,
			Mode:       e.Mode,
			Trigger:    e.Trigger,
			Message:    e.Message,
			StartedAt:  e.StartedAt.Unix(),
			DurationMs: e.Duration.Milliseconds(),
			Files:      e.Files,
			Success:    e.Success,
		})
	}
	return resp, nil
}
