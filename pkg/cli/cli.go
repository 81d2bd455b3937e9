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

// Package cli holds the command line flags shared by the AltCloud entry
// points and the start-up sequence common to all of them.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/nakomaNS/AltCloud/internal/telemetry"
	"github.com/nakomaNS/AltCloud/pkg/api/client"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/database/history"
	"github.com/nakomaNS/AltCloud/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// syncWaitTimeout bounds how long -sync waits for the helper to finish.
const syncWaitTimeout = 10 * time.Minute

var (
	ErrFlagValue  = errors.New("flag requires a value")
	ErrSyncFailed = errors.New("sync failed")
)

type Flags struct {
	API           *string
	Params        *string
	Sync          *string
	Upload        *bool
	ExportHistory *string
	Version       *bool
}

func SetupFlags() *Flags {
	return &Flags{
		API: flag.String(
			"api",
			"",
			"send method (optionally method:params) to the running instance and print the response",
		),
		Params: flag.String(
			"params",
			"",
			"JSON params for -api",
		),
		Sync: flag.String(
			"sync",
			"",
			"sync the game watching this process now and wait for the result",
		),
		Upload: flag.Bool(
			"upload",
			false,
			"with -sync, only upload local saves",
		),
		ExportHistory: flag.String(
			"export-history",
			"",
			"write the sync history to a CSV file and exit",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("AltCloud v%s (%s)\n", config.AppVersion, runtime.GOOS)
		os.Exit(0)
	}
}

// splitAPI accepts "method", "method:params" and a separate -params value,
// which wins when both are given.
func splitAPI(value, params string) (method, outParams string) {
	ps := strings.SplitN(value, ":", 2)
	method = ps[0]
	if len(ps) > 1 {
		outParams = ps[1]
	}
	if params != "" {
		outParams = params
	}
	return method, outParams
}

// CallAPI sends one request and prints the result.
func CallAPI(ctx context.Context, api client.APIClient, out io.Writer, value, params string) error {
	if value == "" {
		return fmt.Errorf("%w: api", ErrFlagValue)
	}
	method, p := splitAPI(value, params)
	resp, err := api.Call(ctx, method, p)
	if err != nil {
		return fmt.Errorf("error calling API: %w", err)
	}
	_, _ = fmt.Fprintln(out, resp)
	return nil
}

// RunSync requests a manual sync of process and waits for its result. The
// returned error is non-nil when the sync itself failed.
func RunSync(ctx context.Context, api client.APIClient, out io.Writer, process string, upload bool) error {
	if process == "" {
		return fmt.Errorf("%w: sync", ErrFlagValue)
	}

	mode := "sync"
	if upload {
		mode = "upload"
	}
	params, err := json.Marshal(models.SyncParams{Process: process, Mode: mode})
	if err != nil {
		return fmt.Errorf("error encoding params: %w", err)
	}

	waitCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type note struct {
		err  error
		data string
	}
	notes := make(chan note, 1)

	// listen before requesting so a quick helper run is not missed
	go func() {
		for waitCtx.Err() == nil {
			resp, err := api.WaitNotification(waitCtx, syncWaitTimeout, models.NotificationSyncFinished)
			select {
			case notes <- note{data: resp, err: err}:
			case <-waitCtx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	resp, err := api.Call(ctx, models.MethodGamesSync, string(params))
	if err != nil {
		return fmt.Errorf("error requesting sync: %w", err)
	}
	var job models.SyncJobResponse
	if err := json.Unmarshal([]byte(resp), &job); err != nil {
		return fmt.Errorf("invalid sync response: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Syncing %s...\n", job.Name)

	var result models.SyncResultResponse
	for {
		n := <-notes
		if n.err != nil {
			return fmt.Errorf("error waiting for sync: %w", n.err)
		}
		if err := json.Unmarshal([]byte(n.data), &result); err != nil {
			log.Warn().Err(err).Msg("invalid sync result notification")
			continue
		}
		if result.ID == job.ID {
			break
		}
	}

	_, _ = fmt.Fprintln(out, result.Message)
	if !result.Success {
		if result.Log != "" {
			_, _ = fmt.Fprintln(out, result.Log)
		}
		return fmt.Errorf("%w: %s", ErrSyncFailed, result.Message)
	}
	return nil
}

// ExportHistory writes the history database in configDir to path as CSV.
// It reads the database directly so it works without a running instance.
func ExportHistory(ctx context.Context, configDir, path string) (int, error) {
	if path == "" {
		return 0, fmt.Errorf("%w: export-history", ErrFlagValue)
	}
	db, err := history.Open(ctx, configDir)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing history database")
		}
	}()

	f, err := os.Create(path) //nolint:gosec // path chosen by the user
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	n, err := db.ExportCSV(ctx, f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to write %s: %w", path, closeErr)
	}
	return n, err
}

func exitOnError(err error) {
	if err == nil {
		os.Exit(0)
	}
	log.Error().Err(err).Msg("cli command failed")
	_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// Post runs any one-shot flag against cfg and exits. It returns when no
// such flag was given.
func (f *Flags) Post(cfg *config.Instance) {
	api := client.NewLocalAPIClient(cfg)
	ctx := context.Background()

	switch {
	case isFlagPassed("api"):
		exitOnError(CallAPI(ctx, api, os.Stdout, *f.API, *f.Params))
	case isFlagPassed("sync"):
		exitOnError(RunSync(ctx, api, os.Stdout, *f.Sync, *f.Upload))
	case isFlagPassed("export-history"):
		n, err := ExportHistory(ctx, cfg.Dir(), *f.ExportHistory)
		if err == nil {
			_, _ = fmt.Printf("Exported %d entries to %s\n", n, *f.ExportHistory)
		}
		exitOnError(err)
	}
}

// Setup prepares logging, the config file and error reporting.
func Setup(defaultConfig config.Values, writers []io.Writer) *config.Instance {
	configDir := helpers.ConfigDir()

	err := helpers.InitLogging(configDir, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(configDir, defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := telemetry.Init(telemetry.Options{
		Enabled:    cfg.ErrorReporting(),
		DSN:        cfg.ErrorReportingDSN(),
		AppVersion: config.AppVersion,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}

type ProcessChecker interface {
	IsRunning(ctx context.Context, name string) (bool, error)
}

// SteamRunning reports whether the Steam client is up. Cloud syncs done by
// the helper need it, so a failed check counts as not running.
func SteamRunning(ctx context.Context, pc ProcessChecker) bool {
	running, err := pc.IsRunning(ctx, config.SteamProcess)
	if err != nil {
		log.Warn().Err(err).Msg("could not check for the Steam client")
		return false
	}
	if !running {
		log.Warn().Msg("Steam client is not running")
	}
	return running
}
