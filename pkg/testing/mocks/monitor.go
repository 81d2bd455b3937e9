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

package mocks

import (
	"context"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/stretchr/testify/mock"
)

// MockGameMonitor is a testify mock for requests.GameMonitor.
type MockGameMonitor struct {
	mock.Mock
}

func (m *MockGameMonitor) Games(ctx context.Context) ([]games.Game, error) {
	args := m.Called(ctx)
	gs, _ := args.Get(0).([]games.Game)
	//nolint:wrapcheck // mock
	return gs, args.Error(1)
}

func (m *MockGameMonitor) Find(ctx context.Context, process string) (games.Game, bool, error) {
	args := m.Called(ctx, process)
	g, _ := args.Get(0).(games.Game)
	//nolint:wrapcheck // mock
	return g, args.Bool(1), args.Error(2)
}

func (m *MockGameMonitor) Statuses(ctx context.Context) ([]models.GameStatus, error) {
	args := m.Called(ctx)
	st, _ := args.Get(0).([]models.GameStatus)
	//nolint:wrapcheck // mock
	return st, args.Error(1)
}

func (m *MockGameMonitor) AddGame(ctx context.Context, g games.Game) (games.Game, error) {
	args := m.Called(ctx, g)
	out, _ := args.Get(0).(games.Game)
	//nolint:wrapcheck // mock
	return out, args.Error(1)
}

func (m *MockGameMonitor) UpdateGame(ctx context.Context, old, updated games.Game) (games.Game, error) {
	args := m.Called(ctx, old, updated)
	out, _ := args.Get(0).(games.Game)
	//nolint:wrapcheck // mock
	return out, args.Error(1)
}

func (m *MockGameMonitor) RemoveGame(ctx context.Context, g games.Game) error {
	//nolint:wrapcheck // mock
	return m.Called(ctx, g).Error(0)
}

func (m *MockGameMonitor) ToggleFavorite(ctx context.Context, process string) (games.Game, error) {
	args := m.Called(ctx, process)
	out, _ := args.Get(0).(games.Game)
	//nolint:wrapcheck // mock
	return out, args.Error(1)
}

func (m *MockGameMonitor) SetImagePath(ctx context.Context, process, path string) (games.Game, error) {
	args := m.Called(ctx, process, path)
	out, _ := args.Get(0).(games.Game)
	//nolint:wrapcheck // mock
	return out, args.Error(1)
}

func (m *MockGameMonitor) RequestSync(
	ctx context.Context,
	process string,
	mode syncer.Mode,
) (syncer.Job, error) {
	args := m.Called(ctx, process, mode)
	job, _ := args.Get(0).(syncer.Job)
	//nolint:wrapcheck // mock
	return job, args.Error(1)
}

// MockRemoteSaves is a testify mock for requests.RemoteSaves.
type MockRemoteSaves struct {
	mock.Mock
}

func (m *MockRemoteSaves) Delete(ctx context.Context, remoteNames []string) syncer.DeleteOutcome {
	args := m.Called(ctx, remoteNames)
	out, _ := args.Get(0).(syncer.DeleteOutcome)
	return out
}

func (m *MockRemoteSaves) ListRemote(ctx context.Context, folder string) ([]syncer.RemoteFile, error) {
	args := m.Called(ctx, folder)
	files, _ := args.Get(0).([]syncer.RemoteFile)
	//nolint:wrapcheck // mock
	return files, args.Error(1)
}
