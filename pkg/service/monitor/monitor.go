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

// Package monitor watches the process list for registered games and syncs
// their saves when they start and stop.
//
// A single control goroutine owns the registry, the running state and the
// job tables. Snapshots are taken on each tick; helper runs and ledger
// reads happen on worker goroutines that report back over a channel.
package monitor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/notifications"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/nakomaNS/AltCloud/pkg/procsnap"
	"github.com/nakomaNS/AltCloud/pkg/service/metrics"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"
)

var (
	ErrSyncInProgress = errors.New("a sync for this game is already running")
	ErrStopped        = errors.New("monitor is not running")
)

const defaultShutdownGrace = 5 * time.Second

// Syncer runs one sync job to completion.
type Syncer interface {
	Sync(ctx context.Context, job syncer.Job) syncer.Outcome
}

// Recorder stores finished jobs.
type Recorder interface {
	Add(ctx context.Context, out *syncer.Outcome) error
}

type Options struct {
	Clock         clockwork.Clock
	Snapshotter   procsnap.Snapshotter
	Registry      *games.Registry
	Ledger        *ledger.Ledger
	Syncer        Syncer
	History       Recorder
	Notifications chan<- models.Notification
	PollInterval  time.Duration
	ShutdownGrace time.Duration
	Workers       int
}

type command struct {
	fn   func()
	done chan struct{}
}

type result struct {
	outcome  *syncer.Outcome
	statuses []models.GameStatus
}

type Monitor struct {
	clock       clockwork.Clock
	snapshotter procsnap.Snapshotter
	registry    *games.Registry
	ledger      *ledger.Ledger
	syncer      Syncer
	history     Recorder
	ns          chan<- models.Notification
	sem         *semaphore.Weighted
	commands    chan command
	results     chan result
	refreshReq  chan struct{}
	ready       chan struct{}
	stopped     chan struct{}
	exited      chan struct{}
	quit        chan struct{}
	quitOnce    sync.Once

	// owned by the control loop
	runCtx    context.Context
	cancelRun context.CancelFunc
	running  RunningState
	inflight map[string]syncer.Job
	pending  map[string][]syncer.Job
	statuses []models.GameStatus

	wg           sync.WaitGroup
	interval     time.Duration
	grace        time.Duration
	started      atomic.Bool
	refreshing   bool
	refreshAgain bool
}

func New(opts Options) *Monitor {
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	interval := opts.PollInterval
	if interval <= 0 {
		interval = config.DefaultPollInterval
	}
	workers := opts.Workers
	if workers < 1 {
		workers = config.DefaultWorkers
	}
	grace := opts.ShutdownGrace
	if grace <= 0 {
		grace = defaultShutdownGrace
	}

	return &Monitor{
		clock:       clock,
		snapshotter: opts.Snapshotter,
		registry:    opts.Registry,
		ledger:      opts.Ledger,
		syncer:      opts.Syncer,
		history:     opts.History,
		ns:          opts.Notifications,
		sem:         semaphore.NewWeighted(int64(workers)),
		commands:    make(chan command),
		results:     make(chan result),
		refreshReq:  make(chan struct{}, 1),
		ready:       make(chan struct{}),
		stopped:     make(chan struct{}),
		exited:      make(chan struct{}),
		quit:        make(chan struct{}),
		inflight:    make(map[string]syncer.Job),
		pending:     make(map[string][]syncer.Job),
		interval:    interval,
		grace:       grace,
	}
}

// Ready is closed once the initial snapshot has been taken and the loop
// accepts commands.
func (m *Monitor) Ready() <-chan struct{} {
	return m.ready
}

// Done is closed when Run has returned, after the shutdown grace period.
func (m *Monitor) Done() <-chan struct{} {
	return m.exited
}

// Stop ends the control loop as if Run's context had been cancelled and
// waits for Run to return. It is safe to call more than once.
func (m *Monitor) Stop() {
	m.quitOnce.Do(func() { close(m.quit) })
	if m.started.Load() {
		<-m.exited
	}
}

// Run takes the startup snapshot and runs the control loop until ctx is
// cancelled or Stop is called. It may only be called once.
func (m *Monitor) Run(ctx context.Context) error {
	if !m.started.CompareAndSwap(false, true) {
		return errors.New("monitor already started")
	}
	defer close(m.exited)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.cancelRun = cancel
	m.runCtx = ctx
	m.running = NewRunningState(m.registry.All(), m.snapshot(ctx))
	metrics.SetGames(m.registry.Len(), m.running.Count())
	log.Info().
		Int("games", m.registry.Len()).
		Int("running", m.running.Count()).
		Dur("interval", m.interval).
		Msg("game monitor started")

	ticker := m.clock.NewTicker(m.interval)
	defer ticker.Stop()

	m.requestRefresh()
	close(m.ready)

	for {
		select {
		case <-ctx.Done():
			m.shutdown()
			return nil
		case <-m.quit:
			m.shutdown()
			return nil
		case <-ticker.Chan():
			m.tick(ctx)
		case res := <-m.results:
			m.handleResult(ctx, res)
		case cmd := <-m.commands:
			cmd.fn()
			close(cmd.done)
		case <-m.refreshReq:
			m.requestRefresh()
		}
	}
}

func isPersistErr(err error) bool {
	return errors.Is(err, games.ErrPersist)
}

func (m *Monitor) shutdown() {
	close(m.stopped)
	// jobs still waiting for a worker slot give up instead of starting
	m.cancelRun()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(m.grace)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		log.Warn().Int("jobs", len(m.inflight)).Msg("sync jobs still running at shutdown")
	}
	log.Info().Msg("game monitor stopped")
}

// snapshot never fails: an unreadable process table counts as nothing
// running.
func (m *Monitor) snapshot(ctx context.Context) procsnap.Snapshot {
	snap, err := m.snapshotter.Snapshot(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("process snapshot failed, treating as empty")
		metrics.IncSnapshotFailure()
		return procsnap.Snapshot{}
	}
	return snap
}

func (m *Monitor) tick(ctx context.Context) {
	snap := m.snapshot(ctx)

	for _, e := range m.running.Observe(m.registry.All(), snap) {
		metrics.IncTransition(e.Started)
		ev := models.GameEventResponse{Name: e.Game.Name, Process: e.Game.Process}
		if e.Started {
			log.Info().Str("game", e.Game.Name).Msg("game started")
			notifications.GameStarted(m.ns, ev)
			_ = m.dispatch(ctx, syncer.NewJob(e.Game, syncer.ModeSyncNow, syncer.TriggerGameStarted))
		} else {
			log.Info().Str("game", e.Game.Name).Msg("game stopped")
			notifications.GameStopped(m.ns, ev)
			_ = m.dispatch(ctx, syncer.NewJob(e.Game, syncer.ModeUploadOnly, syncer.TriggerGameStopped))
		}
	}

	metrics.SetGames(m.registry.Len(), m.running.Count())
	m.requestRefresh()
}

// dispatch starts job unless the game already has one in flight. Manual
// requests are then refused; edge-triggered jobs wait for the running one.
func (m *Monitor) dispatch(ctx context.Context, job syncer.Job) error {
	key := job.Game.Key()
	if _, busy := m.inflight[key]; busy {
		if job.Trigger == syncer.TriggerManual {
			return ErrSyncInProgress
		}
		log.Info().Str("game", job.Game.Name).Str("mode", string(job.Mode)).
			Msg("sync already running, queueing job")
		m.pending[key] = append(m.pending[key], job)
		metrics.IncQueued()
		return nil
	}

	m.inflight[key] = job
	notifications.SyncStarted(m.ns, models.NewSyncJobResponse(&job))
	log.Info().Str("game", job.Game.Name).Str("mode", string(job.Mode)).
		Str("trigger", string(job.Trigger)).Str("job", job.ID.String()).
		Msg("dispatching sync job")

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		out := m.runJob(ctx, job)
		m.report(result{outcome: &out})
	}()
	return nil
}

func (m *Monitor) runJob(ctx context.Context, job syncer.Job) syncer.Outcome {
	if err := m.sem.Acquire(ctx, 1); err != nil {
		now := m.clock.Now()
		return syncer.Outcome{
			Job:      job,
			Err:      err,
			Message:  "sync cancelled before it started",
			Started:  now,
			Finished: now,
		}
	}
	defer m.sem.Release(1)

	out := m.syncer.Sync(ctx, job)
	if m.history != nil {
		// history must survive a cancelled monitor context
		hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		if err := m.history.Add(hctx, &out); err != nil {
			log.Error().Err(err).Msg("failed to record sync history")
		}
		cancel()
	}
	return out
}

// report hands a worker's result to the control loop, or drops it if the
// loop has stopped.
func (m *Monitor) report(r result) {
	select {
	case m.results <- r:
	case <-m.stopped:
	}
}

func (m *Monitor) handleResult(ctx context.Context, res result) {
	if res.outcome != nil {
		m.finishJob(ctx, res.outcome)
		return
	}

	m.statuses = res.statuses
	notifications.GamesStatus(m.ns, models.GamesStatusResponse{Games: res.statuses})
	m.refreshing = false
	if m.refreshAgain {
		m.refreshAgain = false
		m.requestRefresh()
	}
}

func (m *Monitor) finishJob(ctx context.Context, out *syncer.Outcome) {
	key := out.Job.Game.Key()
	if cur, ok := m.inflight[key]; ok && cur.ID == out.Job.ID {
		delete(m.inflight, key)
	}

	metrics.ObserveSync(string(out.Job.Mode), string(out.Job.Trigger), out.Success(),
		out.Duration().Seconds())
	notifications.SyncFinished(m.ns, models.NewSyncResultResponse(out))

	if q := m.pending[key]; len(q) > 0 {
		next := q[0]
		if len(q) == 1 {
			delete(m.pending, key)
		} else {
			m.pending[key] = q[1:]
		}
		_ = m.dispatch(ctx, next)
	}

	m.requestRefresh()
}

// RequestRefresh asks for a status recompute from outside the loop, e.g.
// when a ledger record changes. It never blocks.
func (m *Monitor) RequestRefresh() {
	select {
	case m.refreshReq <- struct{}{}:
	default:
	}
}

// requestRefresh recomputes every game's status off the loop. At most one
// recompute runs at a time; requests made meanwhile fold into one more.
func (m *Monitor) requestRefresh() {
	if m.refreshing {
		m.refreshAgain = true
		return
	}
	m.refreshing = true

	gs := m.registry.All()
	running := make([]bool, len(gs))
	syncing := make([]bool, len(gs))
	for i := range gs {
		running[i] = m.running.Running(gs[i].Process)
		_, syncing[i] = m.inflight[gs[i].Key()]
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		statuses := make([]models.GameStatus, len(gs))
		for i := range gs {
			st := m.ledger.Status(&gs[i], running[i])
			statuses[i] = models.NewGameStatus(&gs[i], st, syncing[i])
		}
		m.report(result{statuses: statuses})
	}()
}
