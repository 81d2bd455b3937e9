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

package syncer_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/helpers/command"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/nakomaNS/AltCloud/pkg/testing/mocks"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	syncExe    = "/app/main/bin/altcloud_util.exe"
	deleterExe = "/app/main/bin/deleter.exe"
	configDir  = "/appdata/AltCloud"
)

func newTestInvoker(t *testing.T, files ...string) (*syncer.Invoker, *mocks.MockCommandExecutor, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, syncExe, []byte("exe"), 0o700))
	require.NoError(t, afero.WriteFile(fs, deleterExe, []byte("exe"), 0o700))
	require.NoError(t, fs.MkdirAll("/saves/G", 0o750))
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, "/saves/G/"+f, []byte("save"), 0o600))
	}

	exec := &mocks.MockCommandExecutor{}
	inv := syncer.New(syncer.Options{
		Fs:         fs,
		Executor:   exec,
		Ledger:     ledger.New(fs, configDir),
		SyncExe:    syncExe,
		DeleterExe: deleterExe,
		ConfigDir:  configDir,
	})
	return inv, exec, fs
}

func syncArgs(mode syncer.Mode, file string) []string {
	return []string{
		string(mode),
		"--localpath", "/saves/G/" + file,
		"--remotename", "G Remastered/" + file,
		"--configdir", configDir,
	}
}

var testGame = games.Game{Name: "G: Remastered", Process: "g.exe", SavePath: "/saves/G"}

func TestSync_RunsHelperPerFile(t *testing.T) {
	t.Parallel()

	inv, exec, fs := newTestInvoker(t, "b.sav", "a.sav", "a.sav.bak")
	require.NoError(t, fs.MkdirAll("/saves/G/subdir", 0o750))
	exec.On("Run", mock.Anything, command.Options{HideWindow: true}, syncExe, syncArgs(syncer.ModeSyncNow, "a.sav")).
		Return(command.Result{Stdout: "uploaded a"}, nil).Once()
	exec.On("Run", mock.Anything, command.Options{HideWindow: true}, syncExe, syncArgs(syncer.ModeSyncNow, "b.sav")).
		Return(command.Result{Stderr: "warning b"}, nil).Once()

	out := inv.Sync(context.Background(), syncer.NewJob(testGame, syncer.ModeSyncNow, syncer.TriggerGameStarted))

	require.NoError(t, out.Err)
	assert.True(t, out.Success())
	assert.Equal(t, 2, out.Files)
	assert.Contains(t, out.Log, "Running for 'a.sav'")
	assert.Contains(t, out.Log, "uploaded a")
	assert.Contains(t, out.Log, "warning b")
	assert.NotContains(t, out.Log, ".bak")
	assert.Less(t, strings.Index(out.Log, "'a.sav'"), strings.Index(out.Log, "'b.sav'"))
	exec.AssertExpectations(t)
}

func TestSync_FailFastKeepsPartialLog(t *testing.T) {
	t.Parallel()

	inv, exec, _ := newTestInvoker(t, "a.sav", "b.sav", "c.sav")
	exec.On("Run", mock.Anything, mock.Anything, syncExe, syncArgs(syncer.ModeUploadOnly, "a.sav")).
		Return(command.Result{Stdout: "ok a"}, nil).Once()
	exec.On("Run", mock.Anything, mock.Anything, syncExe, syncArgs(syncer.ModeUploadOnly, "b.sav")).
		Return(command.Result{Stderr: "quota exceeded", ExitCode: 2}, nil).Once()

	out := inv.Sync(context.Background(), syncer.NewJob(testGame, syncer.ModeUploadOnly, syncer.TriggerGameStopped))

	require.Error(t, out.Err)
	var execErr *syncer.ExecutionError
	require.ErrorAs(t, out.Err, &execErr)
	assert.Equal(t, "b.sav", execErr.File)
	assert.Equal(t, 2, execErr.ExitCode)
	assert.Equal(t, 1, out.Files)
	assert.Contains(t, out.Log, "ok a")
	assert.Contains(t, out.Log, "quota exceeded")
	assert.Contains(t, out.Log, "CRITICAL ERROR")
	assert.NotEmpty(t, out.Message)
	exec.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, syncExe, syncArgs(syncer.ModeUploadOnly, "c.sav"))
	exec.AssertNumberOfCalls(t, "Run", 2)
}

func TestSync_StartFailure(t *testing.T) {
	t.Parallel()

	inv, exec, _ := newTestInvoker(t, "a.sav")
	exec.On("Run", mock.Anything, mock.Anything, syncExe, mock.Anything).
		Return(command.Result{ExitCode: -1}, errors.New("exec format error")).Once()

	out := inv.Sync(context.Background(), syncer.NewJob(testGame, syncer.ModeSyncNow, syncer.TriggerManual))

	var execErr *syncer.ExecutionError
	require.ErrorAs(t, out.Err, &execErr)
	assert.Equal(t, "a.sav", execErr.File)
}

func TestSync_MissingSaveDir(t *testing.T) {
	t.Parallel()

	inv, exec, _ := newTestInvoker(t)
	g := testGame
	g.SavePath = "/does/not/exist"

	out := inv.Sync(context.Background(), syncer.NewJob(g, syncer.ModeSyncNow, syncer.TriggerManual))

	require.ErrorIs(t, out.Err, syncer.ErrSaveDirNotFound)
	assert.False(t, out.Success())
	exec.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_EmptyDirIsNoop(t *testing.T) {
	t.Parallel()

	inv, exec, _ := newTestInvoker(t, "only.bak")

	out := inv.Sync(context.Background(), syncer.NewJob(testGame, syncer.ModeSyncNow, syncer.TriggerManual))

	require.NoError(t, out.Err)
	assert.Equal(t, 0, out.Files)
	assert.Contains(t, out.Log, "No save files found")
	exec.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_MissingHelper(t *testing.T) {
	t.Parallel()

	inv, _, fs := newTestInvoker(t, "a.sav")
	require.NoError(t, fs.Remove(syncExe))

	out := inv.Sync(context.Background(), syncer.NewJob(testGame, syncer.ModeSyncNow, syncer.TriggerManual))

	require.ErrorIs(t, out.Err, syncer.ErrHelperNotFound)
}

func TestNewJob(t *testing.T) {
	t.Parallel()

	a := syncer.NewJob(testGame, syncer.ModeSyncNow, syncer.TriggerManual)
	b := syncer.NewJob(testGame, syncer.ModeSyncNow, syncer.TriggerManual)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, testGame, a.Game)
}
