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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nakomaNS/AltCloud/pkg/cli"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/procsnap"
	"github.com/nakomaNS/AltCloud/pkg/service"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flags.Pre()

	if os.Geteuid() == 0 {
		return errors.New("altcloud cannot be run as root")
	}

	cfg := cli.Setup(config.BaseDefaults, []io.Writer{os.Stderr})

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	flags.Post(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli.SteamRunning(ctx, procsnap.NewSystem())

	_, stopSvc, done, err := service.Start(cfg, service.Options{})
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		return fmt.Errorf("error starting service: %w", err)
	}
	log.Info().Msgf("started in foreground, api on %s", cfg.APIListen())

	select {
	case <-ctx.Done():
	case <-done:
	}

	if err := stopSvc(); err != nil {
		log.Error().Err(err).Msg("error stopping service")
		return fmt.Errorf("error stopping service: %w", err)
	}
	return nil
}
