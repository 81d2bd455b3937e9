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

// Package syncer drives the external helpers that move save files between
// the local save folder and the cloud.
package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/helpers/command"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Mode string

const (
	// ModeSyncNow reconciles both ways, downloading a newer cloud copy.
	ModeSyncNow Mode = "--sync-now"
	// ModeUploadOnly pushes local saves without downloading.
	ModeUploadOnly Mode = "--upload-only"
)

type Trigger string

const (
	TriggerGameStarted Trigger = "game_started"
	TriggerGameStopped Trigger = "game_stopped"
	TriggerManual      Trigger = "manual"
)

// Job is one request to sync every save file of a game.
type Job struct {
	Mode    Mode
	Trigger Trigger
	Game    games.Game
	ID      uuid.UUID
}

func NewJob(g games.Game, mode Mode, trigger Trigger) Job {
	return Job{
		ID:      uuid.New(),
		Game:    g,
		Mode:    mode,
		Trigger: trigger,
	}
}

// Outcome is the terminal state of a Job.
type Outcome struct {
	Started  time.Time
	Finished time.Time
	Err      error
	Message  string
	Log      string
	Job      Job
	Files    int
}

func (o *Outcome) Success() bool {
	return o.Err == nil
}

func (o *Outcome) Duration() time.Duration {
	return o.Finished.Sub(o.Started)
}

type Options struct {
	Fs         afero.Fs
	Executor   command.Executor
	Ledger     *ledger.Ledger
	SyncExe    string
	DeleterExe string
	ConfigDir  string
}

// Invoker runs helper processes. It holds no per-job state and may be used
// from several goroutines at once.
type Invoker struct {
	fs         afero.Fs
	exec       command.Executor
	ledger     *ledger.Ledger
	syncExe    string
	deleterExe string
	configDir  string
	now        func() time.Time
}

func New(opts Options) *Invoker {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	exec := opts.Executor
	if exec == nil {
		exec = &command.RealExecutor{}
	}
	l := opts.Ledger
	if l == nil {
		l = ledger.New(fs, opts.ConfigDir)
	}
	return &Invoker{
		fs:         fs,
		exec:       exec,
		ledger:     l,
		syncExe:    opts.SyncExe,
		deleterExe: opts.DeleterExe,
		configDir:  opts.ConfigDir,
		now:        time.Now,
	}
}

func (i *Invoker) helperExists(path string) bool {
	info, err := i.fs.Stat(path)
	return err == nil && !info.IsDir()
}

var runOptions = command.Options{HideWindow: true}

// Sync runs the sync helper once per save file of the job's game, in name
// order, stopping at the first failure. The log of every run attempted is
// kept in the outcome.
func (i *Invoker) Sync(ctx context.Context, job Job) Outcome {
	out := Outcome{Job: job, Started: i.now()}
	var b strings.Builder
	fmt.Fprintf(&b, "--- Sync (%s) for: %s ---\n\n", job.Mode, job.Game.Name)

	fail := func(err error) Outcome {
		fmt.Fprintf(&b, "\nCRITICAL ERROR:\n%v\n", err)
		out.Err = err
		out.Message = err.Error()
		out.Log = b.String()
		out.Finished = i.now()
		log.Error().Err(err).Str("game", job.Game.Name).Str("mode", string(job.Mode)).
			Msg("sync failed")
		return out
	}

	files, err := i.ledger.SaveFiles(job.Game.SavePath)
	if err != nil {
		return fail(err)
	}
	if len(files) == 0 {
		b.WriteString("No save files found in the folder to sync.\n")
	} else if !i.helperExists(i.syncExe) {
		return fail(fmt.Errorf("%w: %s", ErrHelperNotFound, i.syncExe))
	}

	for _, f := range files {
		remote := games.RemoteName(job.Game.Name, f.Name)
		args := []string{
			string(job.Mode),
			"--localpath", f.Path,
			"--remotename", remote,
			"--configdir", i.configDir,
		}
		fmt.Fprintf(&b, "Running for '%s': %s\n", f.Name, command.CommandLine(i.syncExe, args...))

		res, err := i.exec.Run(ctx, runOptions, i.syncExe, args...)
		writeOutput(&b, f.Name, res)
		if err != nil {
			return fail(&ExecutionError{File: f.Name, ExitCode: res.ExitCode, Err: err})
		}
		if res.ExitCode != 0 {
			return fail(&ExecutionError{File: f.Name, ExitCode: res.ExitCode})
		}
		out.Files++
	}

	out.Log = b.String()
	out.Message = fmt.Sprintf("%d file(s) synced", out.Files)
	out.Finished = i.now()
	log.Info().Str("game", job.Game.Name).Str("mode", string(job.Mode)).
		Int("files", out.Files).Dur("took", out.Duration()).Msg("sync finished")
	return out
}

func writeOutput(b *strings.Builder, file string, res command.Result) {
	if res.Stdout != "" {
		fmt.Fprintf(b, "Output of '%s':\n%s\n", file, res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprintf(b, "Errors of '%s':\n%s\n", file, res.Stderr)
	}
}
