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

// Package service wires the AltCloud components together and runs them
// until stopped: the game monitor, the notification broker, the local API
// and the ledger watcher.
package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/jonboulle/clockwork"
	"github.com/nakomaNS/AltCloud/pkg/api"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/models/requests"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/covers"
	"github.com/nakomaNS/AltCloud/pkg/database/catalog"
	"github.com/nakomaNS/AltCloud/pkg/database/history"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/helpers"
	"github.com/nakomaNS/AltCloud/pkg/helpers/command"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/nakomaNS/AltCloud/pkg/procsnap"
	"github.com/nakomaNS/AltCloud/pkg/service/broker"
	"github.com/nakomaNS/AltCloud/pkg/service/metrics"
	"github.com/nakomaNS/AltCloud/pkg/service/monitor"
	"github.com/nakomaNS/AltCloud/pkg/shared/httpclient"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var ErrAlreadyRunning = errors.New("another AltCloud instance is running")

const (
	notificationQueueSize = 256
	downloadTimeout       = 30 * time.Second
	cleanupTimeout        = 5 * time.Second
	coverWarmupDelay      = 2 * time.Second
)

// Terminator kills leftover helper processes on shutdown.
type Terminator interface {
	Terminate(ctx context.Context, names ...string) int
}

// Options replaces parts of the default wiring, mostly for tests. Zero
// values use the real implementations.
type Options struct {
	Fs          afero.Fs
	Clock       clockwork.Clock
	Snapshotter procsnap.Snapshotter
	Executor    command.Executor
	Terminator  Terminator
	// Listener serves the API instead of the configured address.
	Listener net.Listener
}

// Handle gives the desktop shell access to the running service.
type Handle struct {
	Settings *config.Settings
	Monitor  *monitor.Monitor
	Broker   *broker.Broker
	History  *history.DB
}

func (o *Options) defaults() {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Clock == nil {
		o.Clock = clockwork.NewRealClock()
	}
	sys := procsnap.NewSystem()
	if o.Snapshotter == nil {
		o.Snapshotter = sys
	}
	if o.Terminator == nil {
		o.Terminator = sys
	}
	if o.Executor == nil {
		o.Executor = &command.RealExecutor{}
	}
}

func acquireLock(cfg *config.Instance) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(cfg.Dir(), config.LockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to take instance lock: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyRunning
	}
	return lock, nil
}

func openHistory(ctx context.Context, cfg *config.Instance) *history.DB {
	hist, err := history.Open(ctx, cfg.Dir())
	if err != nil {
		log.Error().Err(err).Msg("sync history unavailable")
		return nil
	}
	removed, err := hist.Prune(ctx, history.RetentionDays)
	if err != nil {
		log.Warn().Err(err).Msg("failed to prune sync history")
	} else if removed > 0 {
		log.Info().Int64("removed", removed).Msg("pruned sync history")
	}
	return hist
}

func openCatalog(ctx context.Context, cfg *config.Instance) *catalog.Catalog {
	cat, err := catalog.Open(ctx, cfg.CatalogDB())
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.CatalogDB()).
			Msg("game catalog unavailable, no suggestions or covers")
		return nil
	}
	return cat
}

// warmCovers fetches cover art for registered games that have none yet.
func warmCovers(ctx context.Context, clock clockwork.Clock, mon *monitor.Monitor, fetcher *covers.Fetcher) {
	select {
	case <-ctx.Done():
		return
	case <-mon.Ready():
	}
	select {
	case <-ctx.Done():
		return
	case <-clock.After(coverWarmupDelay):
	}

	gs, err := mon.Games(ctx)
	if err != nil {
		return
	}
	for i := range gs {
		if gs[i].ImagePath != "" {
			continue
		}
		path, err := fetcher.Fetch(ctx, gs[i].Name)
		if err != nil {
			log.Debug().Err(err).Str("game", gs[i].Name).Msg("no cover art")
			continue
		}
		_, err = mon.SetImagePath(ctx, gs[i].Process, path)
		if err != nil && !errors.Is(err, games.ErrPersist) {
			log.Warn().Err(err).Str("game", gs[i].Name).Msg("failed to record cover art")
		}
	}
}

// Start brings the service up. stop cancels everything and waits for the
// cleanup, done is closed once the service has fully stopped.
func Start(
	cfg *config.Instance,
	opts Options,
) (handle *Handle, stop func() error, done <-chan struct{}, err error) {
	log.Info().Msgf("version: %s", config.AppVersion)
	opts.defaults()

	lock, err := acquireLock(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		log.Warn().Err(err).Msg("failed to register metrics")
	}

	settings := config.LoadSettings(opts.Fs, cfg.Dir())

	log.Info().Msg("loading game registry")
	registry := games.NewRegistry(opts.Fs, cfg.Dir())
	if err := registry.Load(); err != nil {
		log.Error().Err(err).Msg("error loading game registry, starting empty")
	}

	led := ledger.New(opts.Fs, cfg.StatusDir())
	invoker := syncer.New(syncer.Options{
		Fs:         opts.Fs,
		Executor:   opts.Executor,
		Ledger:     led,
		SyncExe:    cfg.SyncExe(),
		DeleterExe: cfg.DeleterExe(),
		ConfigDir:  cfg.StatusDir(),
	})

	log.Info().Msg("opening databases")
	hist := openHistory(ctx, cfg)
	cat := openCatalog(ctx, cfg)

	ns := make(chan models.Notification, notificationQueueSize)
	notifBroker := broker.NewBroker(ctx, ns)
	notifBroker.Start()

	monOpts := monitor.Options{
		Clock:         opts.Clock,
		Snapshotter:   opts.Snapshotter,
		Registry:      registry,
		Ledger:        led,
		Syncer:        invoker,
		Notifications: ns,
		PollInterval:  cfg.PollInterval(),
		Workers:       cfg.Workers(),
	}
	if hist != nil {
		monOpts.History = hist
	}
	mon := monitor.New(monOpts)

	log.Info().Msg("starting game monitor")
	go func() {
		if err := mon.Run(ctx); err != nil {
			log.Error().Err(err).Msg("game monitor stopped with error")
		}
	}()

	if err := led.Watch(ctx, func(string) { mon.RequestRefresh() }); err != nil {
		log.Warn().Err(err).Msg("ledger watcher unavailable, statuses refresh on transitions only")
	}

	env := requests.RequestEnv{
		Settings:      settings,
		Monitor:       mon,
		Saves:         invoker,
		Ledger:        led,
		Notifications: ns,
		Autostart:     helpers.SetAutostart,
	}
	if hist != nil {
		env.History = hist
	}
	if cat != nil {
		env.Catalog = cat
		fetcher := covers.New(opts.Fs, cat, httpclient.NewClient(opts.Fs, downloadTimeout), cfg.ImageCacheDir())
		env.Covers = fetcher
		go warmCovers(ctx, opts.Clock, mon, fetcher)
	}

	log.Info().Msg("starting API service")
	apiDone := make(chan struct{})
	go func() {
		defer close(apiDone)
		var err error
		if opts.Listener != nil {
			err = api.NewServer(ctx, cfg, env, notifBroker, nil).Serve(ctx, opts.Listener)
		} else {
			err = api.Start(ctx, cfg, env, notifBroker)
		}
		if err != nil {
			log.Error().Err(err).Msg("api server error")
		}
	}()

	doneCh := make(chan struct{})
	go func() {
		<-ctx.Done()
		log.Info().Msg("service context cancelled, running cleanup")

		<-mon.Done()
		<-apiDone
		<-notifBroker.Done()

		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), cleanupTimeout)
		killed := opts.Terminator.Terminate(cleanupCtx,
			filepath.Base(cfg.SyncExe()), filepath.Base(cfg.DeleterExe()))
		cleanupCancel()
		if killed > 0 {
			log.Info().Int("killed", killed).Msg("terminated helper processes")
		}

		if hist != nil {
			if err := hist.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing history database")
			}
		}
		if err := cat.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing catalog")
		}
		if err := lock.Unlock(); err != nil {
			log.Warn().Err(err).Msg("error releasing instance lock")
		}

		log.Info().Msg("service cleanup completed")
		close(doneCh)
	}()

	handle = &Handle{
		Settings: settings,
		Monitor:  mon,
		Broker:   notifBroker,
		History:  hist,
	}
	stop = func() error {
		cancel()
		<-doneCh
		return nil
	}
	return handle, stop, doneCh, nil
}
