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

// Package procsnap samples the names of running processes.
package procsnap

import (
	"context"
	"errors"
	"fmt"

	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrQuery is returned when the process list itself could not be read.
var ErrQuery = errors.New("failed to query processes")

// Snapshot is the set of running executable names at one instant, keyed by
// games.ProcessKey.
type Snapshot map[string]struct{}

func NewSnapshot(names ...string) Snapshot {
	s := make(Snapshot, len(names))
	for _, n := range names {
		s.add(n)
	}
	return s
}

func (s Snapshot) add(name string) {
	if name == "" {
		return
	}
	s[games.ProcessKey(name)] = struct{}{}
}

// Has reports whether a process with this executable name is running.
func (s Snapshot) Has(name string) bool {
	_, ok := s[games.ProcessKey(name)]
	return ok
}

// Snapshotter takes process snapshots.
type Snapshotter interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

type proc interface {
	NameWithContext(ctx context.Context) (string, error)
	KillWithContext(ctx context.Context) error
}

// System reads the operating system's process table with gopsutil.
type System struct {
	list func(ctx context.Context) ([]proc, error)
}

func NewSystem() *System {
	return &System{list: listProcesses}
}

func listProcesses(ctx context.Context) ([]proc, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // wrapped by caller
	}
	out := make([]proc, len(ps))
	for i, p := range ps {
		out[i] = p
	}
	return out, nil
}

// Snapshot lists the names of all running processes. Processes that exit
// or deny access while being inspected are skipped.
func (s *System) Snapshot(ctx context.Context) (Snapshot, error) {
	ps, err := s.list(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	snap := make(Snapshot, len(ps))
	for _, p := range ps {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		snap.add(name)
	}
	return snap, nil
}

// IsRunning reports whether any process is named name.
func (s *System) IsRunning(ctx context.Context, name string) (bool, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return snap.Has(name), nil
}

// Terminate kills every process whose name is one of names and returns how
// many were killed.
func (s *System) Terminate(ctx context.Context, names ...string) int {
	targets := NewSnapshot(names...)

	ps, err := s.list(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to list processes for termination")
		return 0
	}

	killed := 0
	for _, p := range ps {
		name, err := p.NameWithContext(ctx)
		if err != nil || !targets.Has(name) {
			continue
		}
		if err := p.KillWithContext(ctx); err != nil {
			log.Warn().Err(err).Str("process", name).Msg("failed to kill process")
			continue
		}
		log.Info().Str("process", name).Msg("killed helper process")
		killed++
	}
	return killed
}
