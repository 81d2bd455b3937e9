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

package monitor

import (
	"context"
	"fmt"
	"strings"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/notifications"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/service/metrics"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/rs/zerolog/log"
)

// do runs fn on the control loop and waits for it to finish.
func (m *Monitor) do(ctx context.Context, fn func()) error {
	select {
	case <-m.ready:
	case <-m.stopped:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("waiting for monitor: %w", ctx.Err())
	}

	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case m.commands <- cmd:
	case <-m.stopped:
		return ErrStopped
	case <-ctx.Done():
		return fmt.Errorf("sending monitor command: %w", ctx.Err())
	}
	<-cmd.done
	return nil
}

// Games returns the registry in registration order.
func (m *Monitor) Games(ctx context.Context) ([]games.Game, error) {
	var gs []games.Game
	err := m.do(ctx, func() {
		gs = m.registry.All()
	})
	return gs, err
}

func (m *Monitor) Find(ctx context.Context, process string) (games.Game, bool, error) {
	var (
		g  games.Game
		ok bool
	)
	err := m.do(ctx, func() {
		g, ok = m.registry.Find(process)
	})
	return g, ok, err
}

// Statuses returns the last computed status of every game. It may lag the
// registry by one refresh.
func (m *Monitor) Statuses(ctx context.Context) ([]models.GameStatus, error) {
	var out []models.GameStatus
	err := m.do(ctx, func() {
		out = make([]models.GameStatus, len(m.statuses))
		copy(out, m.statuses)
	})
	return out, err
}

// Running reports whether the game watching process was running at the
// last tick.
func (m *Monitor) Running(ctx context.Context, process string) (bool, error) {
	var running bool
	err := m.do(ctx, func() {
		running = m.running.Running(process)
	})
	return running, err
}

func (m *Monitor) gamesChanged() {
	gs := m.registry.All()
	resp := models.GamesResponse{Games: make([]models.GameResponse, len(gs))}
	for i := range gs {
		resp.Games[i] = models.NewGameResponse(&gs[i])
	}
	notifications.GamesChanged(m.ns, resp)
	metrics.SetGames(m.registry.Len(), m.running.Count())
	m.requestRefresh()
}

// AddGame registers a new game. It starts out stopped so a game that is
// already running is picked up as started on the next tick. A persist
// error is returned but the game stays registered.
func (m *Monitor) AddGame(ctx context.Context, g games.Game) (games.Game, error) {
	g.Name = strings.TrimSpace(g.Name)
	g.IsFavorite = false
	if err := games.Validate(&g); err != nil {
		return games.Game{}, err
	}

	var cmdErr error
	err := m.do(ctx, func() {
		if m.registry.HasProcess(g.Process) {
			cmdErr = games.ErrDuplicateProcess
			return
		}
		cmdErr = m.registry.Add(g)
		m.running.Track(g.Process)
		log.Info().Str("game", g.Name).Str("process", g.Process).Msg("game added")
		m.gamesChanged()
	})
	if err != nil {
		return games.Game{}, err
	}
	if cmdErr != nil && !isPersistErr(cmdErr) {
		return games.Game{}, cmdErr
	}
	return g, cmdErr
}

// UpdateGame replaces the record equal to old. When the process name
// changes the game is tracked afresh as stopped; otherwise its running
// state carries over.
func (m *Monitor) UpdateGame(ctx context.Context, old, updated games.Game) (games.Game, error) {
	updated.Name = strings.TrimSpace(updated.Name)
	updated.IsFavorite = old.IsFavorite
	if err := games.Validate(&updated); err != nil {
		return games.Game{}, err
	}

	var cmdErr error
	err := m.do(ctx, func() {
		rekeyed := old.Key() != updated.Key()
		if rekeyed && m.registry.HasProcess(updated.Process) {
			cmdErr = games.ErrDuplicateProcess
			return
		}

		found, err := m.registry.Edit(old, updated)
		if !found {
			cmdErr = games.ErrNotFound
			return
		}
		cmdErr = err

		if rekeyed {
			m.running.Forget(old.Process)
			m.running.Track(updated.Process)
			delete(m.pending, old.Key())
		}
		log.Info().Str("game", updated.Name).Str("process", updated.Process).Msg("game updated")
		m.gamesChanged()
	})
	if err != nil {
		return games.Game{}, err
	}
	if cmdErr != nil && !isPersistErr(cmdErr) {
		return games.Game{}, cmdErr
	}
	return updated, cmdErr
}

// RemoveGame unregisters the record equal to g and drops any queued jobs
// for it. A job already running is left to finish.
func (m *Monitor) RemoveGame(ctx context.Context, g games.Game) error {
	var cmdErr error
	err := m.do(ctx, func() {
		found, err := m.registry.Remove(g)
		if !found {
			cmdErr = games.ErrNotFound
			return
		}
		cmdErr = err
		m.running.Forget(g.Process)
		delete(m.pending, g.Key())
		log.Info().Str("game", g.Name).Msg("game removed")
		m.gamesChanged()
	})
	if err != nil {
		return err
	}
	return cmdErr
}

func (m *Monitor) ToggleFavorite(ctx context.Context, process string) (games.Game, error) {
	var (
		g      games.Game
		cmdErr error
	)
	err := m.do(ctx, func() {
		g, cmdErr = m.registry.ToggleFavorite(process)
		if cmdErr == nil || isPersistErr(cmdErr) {
			m.gamesChanged()
		}
	})
	if err != nil {
		return games.Game{}, err
	}
	return g, cmdErr
}

// SetImagePath records a downloaded cover for the game watching process.
func (m *Monitor) SetImagePath(ctx context.Context, process, path string) (games.Game, error) {
	var (
		g      games.Game
		cmdErr error
	)
	err := m.do(ctx, func() {
		g, cmdErr = m.registry.SetImagePath(process, path)
		if cmdErr == nil || isPersistErr(cmdErr) {
			m.gamesChanged()
		}
	})
	if err != nil {
		return games.Game{}, err
	}
	return g, cmdErr
}

// RequestSync starts a manual sync of the game watching process. It is
// refused while another job for the same game is running.
func (m *Monitor) RequestSync(ctx context.Context, process string, mode syncer.Mode) (syncer.Job, error) {
	var (
		job    syncer.Job
		cmdErr error
	)
	err := m.do(ctx, func() {
		g, ok := m.registry.Find(process)
		if !ok {
			cmdErr = games.ErrNotFound
			return
		}
		job = syncer.NewJob(g, mode, syncer.TriggerManual)
		cmdErr = m.dispatch(m.runCtx, job)
		if cmdErr == nil {
			m.requestRefresh()
		}
	})
	if err != nil {
		return syncer.Job{}, err
	}
	if cmdErr != nil {
		return syncer.Job{}, cmdErr
	}
	return job, nil
}
