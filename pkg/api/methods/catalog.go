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

// HandleCatalogSearch suggests game names for the add dialog. Without a
// catalog there are simply no suggestions.
//
//nolint:gocritic // single-use parameter in API handler
func HandleCatalogSearch(env requests.RequestEnv) (any, error) {
	log.Debug().Msg("received catalog search request")

	var params models.CatalogSearchParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	resp := models.CatalogSearchResponse{Results: []models.CatalogEntry{}}
	if env.Catalog == nil {
		return resp, nil
	}

	entries, err := env.Catalog.Search(ctxOf(&env), params.Query)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}
	for _, e := range entries {
		resp.Results = append(resp.Results, models.CatalogEntry{Name: e.Name, AppID: e.AppID})
	}
	return resp, nil
}
