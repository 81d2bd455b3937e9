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

// Package metrics exposes Prometheus collectors for the monitor and the
// sync jobs it runs.
package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	regOK atomic.Bool

	syncJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "altcloud",
			Subsystem: "sync",
			Name:      "jobs_total",
			Help:      "Sync jobs finished, by mode, trigger and result.",
		}, []string{"mode", "trigger", "result"},
	)
	syncDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "altcloud",
			Subsystem: "sync",
			Name:      "job_duration_seconds",
			Help:      "Wall time of sync jobs.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}, []string{"mode"},
	)
	syncQueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "altcloud",
			Subsystem: "sync",
			Name:      "jobs_queued_total",
			Help:      "Edge-triggered jobs queued behind a running job of the same game.",
		},
	)
	gamesRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "altcloud",
			Subsystem: "monitor",
			Name:      "games_running",
			Help:      "Registered games currently seen running.",
		},
	)
	gamesRegistered = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "altcloud",
			Subsystem: "monitor",
			Name:      "games_registered",
			Help:      "Games in the registry.",
		},
	)
	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "altcloud",
			Subsystem: "monitor",
			Name:      "transitions_total",
			Help:      "Observed game process transitions.",
		}, []string{"to"},
	)
	snapshotFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "altcloud",
			Subsystem: "monitor",
			Name:      "snapshot_failures_total",
			Help:      "Process snapshots that failed and were treated as empty.",
		},
	)
)

// Register registers all collectors. Calling it again is a no-op.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{
		syncJobs, syncDuration, syncQueued, gamesRunning, gamesRegistered,
		transitions, snapshotFailures,
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err //nolint:wrapcheck // prometheus errors are descriptive
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// The helpers below do nothing until Register succeeded.

func ObserveSync(mode, trigger string, success bool, seconds float64) {
	if !regOK.Load() {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	syncJobs.WithLabelValues(mode, trigger, result).Inc()
	syncDuration.WithLabelValues(mode).Observe(seconds)
}

func IncQueued() {
	if regOK.Load() {
		syncQueued.Inc()
	}
}

func SetGames(registered, running int) {
	if regOK.Load() {
		gamesRegistered.Set(float64(registered))
		gamesRunning.Set(float64(running))
	}
}

func IncTransition(started bool) {
	if !regOK.Load() {
		return
	}
	to := "stopped"
	if started {
		to = "running"
	}
	transitions.WithLabelValues(to).Inc()
}

func IncSnapshotFailure() {
	if regOK.Load() {
		snapshotFailures.Inc()
	}
}
