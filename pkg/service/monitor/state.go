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
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/procsnap"
)

// Edge is a change in a game's running state between two snapshots.
type Edge struct {
	Game    games.Game
	Started bool
}

// RunningState is the last known running flag per game, keyed by
// games.ProcessKey. Only the control loop touches it.
type RunningState map[string]bool

// NewRunningState seeds the state from one snapshot without producing
// edges, so games already running at startup are not synced.
func NewRunningState(gs []games.Game, snap procsnap.Snapshot) RunningState {
	rs := make(RunningState, len(gs))
	for i := range gs {
		rs[gs[i].Key()] = snap.Has(gs[i].Process)
	}
	return rs
}

// Observe records snap and returns the games whose running flag flipped,
// in registry order. Games not yet in the state count as stopped.
func (rs RunningState) Observe(gs []games.Game, snap procsnap.Snapshot) []Edge {
	var edges []Edge
	for i := range gs {
		key := gs[i].Key()
		now := snap.Has(gs[i].Process)
		if rs[key] == now {
			continue
		}
		rs[key] = now
		edges = append(edges, Edge{Game: gs[i], Started: now})
	}
	return edges
}

// Track adds a newly registered game as stopped.
func (rs RunningState) Track(process string) {
	rs[games.ProcessKey(process)] = false
}

// Forget drops a game that is no longer registered.
func (rs RunningState) Forget(process string) {
	delete(rs, games.ProcessKey(process))
}

func (rs RunningState) Running(process string) bool {
	return rs[games.ProcessKey(process)]
}

// Count is the number of games currently running.
func (rs RunningState) Count() int {
	n := 0
	for _, running := range rs {
		if running {
			n++
		}
	}
	return n
}
