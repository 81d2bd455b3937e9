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

package service

import (
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/api/client"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/testing/helpers"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTerminator struct {
	names []string
	mu    sync.Mutex
}

func (f *fakeTerminator) Terminate(_ context.Context, names ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = append(f.names, names...)
	return 0
}

func (f *fakeTerminator) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func startTestService(t *testing.T) (*config.Instance, string, *fakeTerminator, func() error) {
	t.Helper()
	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)

	term := &fakeTerminator{}
	_, stop, _, err := Start(cfg, Options{
		Fs:          afero.NewOsFs(),
		Snapshotter: helpers.NewFakeSnapshotter(),
		Executor:    helpers.NewMockCommandExecutor(),
		Terminator:  term,
		Listener:    ln,
	})
	require.NoError(t, err)
	return cfg, ln.Addr().String(), term, stop
}

func TestStart_SingleInstance(t *testing.T) {
	t.Parallel()
	cfg, _, _, stop := startTestService(t)

	_, _, _, err := Start(cfg, Options{
		Snapshotter: helpers.NewFakeSnapshotter(),
		Terminator:  &fakeTerminator{},
	})
	require.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, stop())
}

func TestStart_ServesAPIAndStops(t *testing.T) {
	t.Parallel()
	cfg, addr, term, stop := startTestService(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	saveDir := t.TempDir()
	params, err := json.Marshal(models.GameParams{
		Name:     "Hollow Knight",
		Process:  "hollow_knight.exe",
		SavePath: saveDir,
	})
	require.NoError(t, err)

	res, err := client.Call(ctx, addr, models.MethodGamesAdd, string(params))
	require.NoError(t, err)
	var added models.GameResponse
	require.NoError(t, json.Unmarshal([]byte(res), &added))
	assert.Equal(t, "hollow_knight.exe", added.Process)
	assert.FileExists(t, filepath.Join(cfg.Dir(), config.GamesFile))

	// statuses are recomputed in the background after a registry change
	var st models.GamesStatusResponse
	require.Eventually(t, func() bool {
		res, err := client.Call(ctx, addr, models.MethodGamesStatus, "")
		if err != nil || json.Unmarshal([]byte(res), &st) != nil {
			return false
		}
		return len(st.Games) == 1
	}, 5*time.Second, 50*time.Millisecond)
	assert.True(t, st.Games[0].NeverSynced)

	require.NoError(t, stop())
	assert.ElementsMatch(t, []string{config.SyncExeName, config.DeleterExeName}, term.Names())

	// the lock is released on stop
	_, stop2, _, err := Start(cfg, Options{
		Snapshotter: helpers.NewFakeSnapshotter(),
		Executor:    helpers.NewMockCommandExecutor(),
		Terminator:  &fakeTerminator{},
		Listener:    mustListen(t),
	})
	require.NoError(t, err)
	require.NoError(t, stop2())
}

func mustListen(t *testing.T) net.Listener {
	t.Helper()
	var lc net.ListenConfig
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}
