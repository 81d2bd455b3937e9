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
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/nakomaNS/AltCloud/pkg/cli"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/procsnap"
	"github.com/nakomaNS/AltCloud/pkg/service"
	"github.com/nakomaNS/AltCloud/pkg/ui/systray"
	"github.com/nixinwang/dialog"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	flags := cli.SetupFlags()
	flags.Pre()

	cfg := cli.Setup(
		config.BaseDefaults,
		[]io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}},
	)

	flags.Post(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if !cli.SteamRunning(ctx, procsnap.NewSystem()) {
		dialog.Message("%s", "Steam is not running. Saves will be watched, "+
			"but syncing needs the Steam client to be open.").
			Title("AltCloud").Info()
	}

	handle, stopSvc, done, err := service.Start(cfg, service.Options{})
	if err != nil {
		log.Error().Err(err).Msg("error starting service")
		dialog.Message("Error starting AltCloud:\n%v", err).Title("AltCloud").Error()
		os.Exit(1)
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		select {
		case <-sigs:
		case <-ctx.Done():
		case <-done:
		}
		if err := stopSvc(); err != nil {
			log.Error().Err(err).Msg("error stopping service")
		}
		systray.Quit()
	}()

	fmt.Printf("AltCloud v%s listening on %s\n", config.AppVersion, cfg.APIListen())

	systray.Run(ctx, cfg, handle, func() {
		cancel()
		<-stopped
		os.Exit(0)
	})
}
