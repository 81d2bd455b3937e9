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

// Package methods implements the JSON-RPC methods of the local API.
package methods

import (
	"context"
	"runtime"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/models/requests"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/rs/zerolog/log"
)

// NoContent is returned by methods that succeed without a result.
type NoContent struct{}

// backgroundTimeout bounds work a method starts but does not wait for.
const backgroundTimeout = 30 * time.Second

func ctxOf(env *requests.RequestEnv) context.Context {
	if env.Context != nil {
		return env.Context
	}
	return context.Background()
}

func HandleVersion(env requests.RequestEnv) (any, error) { //nolint:gocritic // single-use parameter in API handler
	log.Info().Bool("local", env.IsLocal).Msg("received version request")
	return models.VersionResponse{
		Version:  config.AppVersion,
		Platform: runtime.GOOS,
	}, nil
}
