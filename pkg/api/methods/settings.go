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
	"github.com/nakomaNS/AltCloud/pkg/api/validation"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/rs/zerolog/log"
)

func settingsResponse(env *requests.RequestEnv) models.SettingsResponse {
	vals := env.Settings.Get()
	return models.SettingsResponse{
		StartWithWindows: vals.StartWithWindows,
		CloseToTray:      vals.CloseToTray,
		DebugLogging:     env.Config.DebugLogging(),
	}
}

func HandleSettings(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Msg("received settings request")
	return settingsResponse(&env), nil
}

// HandleSettingsUpdate applies the fields present in params. A settings
// file that cannot be written leaves the new values in effect.
//
//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received settings update request")

	var params models.UpdateSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	vals := env.Settings.Get()
	changed := false

	if params.StartWithWindows != nil && *params.StartWithWindows != vals.StartWithWindows {
		log.Info().Bool("startWithWindows", *params.StartWithWindows).Msg("update")
		if env.Autostart != nil {
			if err := env.Autostart(*params.StartWithWindows); err != nil {
				return nil, fmt.Errorf("failed to change autostart: %w", err)
			}
		}
		vals.StartWithWindows = *params.StartWithWindows
		changed = true
	}

	if params.CloseToTray != nil && *params.CloseToTray != vals.CloseToTray {
		log.Info().Bool("closeToTray", *params.CloseToTray).Msg("update")
		vals.CloseToTray = *params.CloseToTray
		changed = true
	}

	if changed {
		if err := env.Settings.Set(vals); err != nil {
			if !errors.Is(err, config.ErrSettingsPersist) {
				return nil, err
			}
			log.Warn().Err(err).Msg("settings not saved to disk")
		}
	}

	if params.DebugLogging != nil {
		log.Info().Bool("debugLogging", *params.DebugLogging).Msg("update")
		env.Config.SetDebugLogging(*params.DebugLogging)
		if err := env.Config.Save(); err != nil {
			log.Error().Err(err).Msg("error saving config")
			return nil, errors.New("error saving config")
		}
	}

	return settingsResponse(&env), nil
}
