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

package methods

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/models/requests"
	"github.com/nakomaNS/AltCloud/pkg/api/validation"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/database/catalog"
	"github.com/nakomaNS/AltCloud/pkg/database/history"
	"github.com/nakomaNS/AltCloud/pkg/games"
	"github.com/nakomaNS/AltCloud/pkg/ledger"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/nakomaNS/AltCloud/pkg/testing/helpers"
	"github.com/nakomaNS/AltCloud/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var hollow = games.Game{
	Name:     "Hollow Knight",
	Process:  "hollow_knight.exe",
	SavePath: "/saves/hk",
}

func newEnv(t *testing.T, params string) (requests.RequestEnv, *mocks.MockGameMonitor) {
	t.Helper()
	mon := &mocks.MockGameMonitor{}
	t.Cleanup(func() { mon.AssertExpectations(t) })
	env := requests.RequestEnv{
		Context:       context.Background(),
		Monitor:       mon,
		Notifications: make(chan models.Notification, 8),
		IsLocal:       true,
	}
	if params != "" {
		env.Params = json.RawMessage(params)
	}
	return env, mon
}

func TestHandleVersion(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, "")

	res, err := HandleVersion(env)
	require.NoError(t, err)
	ver, ok := res.(models.VersionResponse)
	require.True(t, ok)
	assert.Equal(t, config.AppVersion, ver.Version)
	assert.NotEmpty(t, ver.Platform)
}

func TestHandleGames_View(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"favoritesOnly":true}`)

	fav := games.Game{Name: "Celeste", Process: "celeste.exe", IsFavorite: true}
	mon.On("Games", mock.Anything).Return([]games.Game{hollow, fav}, nil)

	res, err := HandleGames(env)
	require.NoError(t, err)
	resp, ok := res.(models.GamesResponse)
	require.True(t, ok)
	require.Len(t, resp.Games, 1)
	assert.Equal(t, "Celeste", resp.Games[0].Name)
}

func TestHandleGames_NoParams(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, "")
	mon.On("Games", mock.Anything).Return([]games.Game{hollow}, nil)

	res, err := HandleGames(env)
	require.NoError(t, err)
	assert.Len(t, res.(models.GamesResponse).Games, 1)
}

func TestHandleGamesAdd_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  string
		wantErr error
	}{
		{name: "missing params", params: "", wantErr: validation.ErrMissingParams},
		{name: "missing name", params: `{"process":"a.exe"}`},
		{name: "process with path", params: `{"name":"A","process":"C:\\a.exe"}`},
		{name: "relative save path", params: `{"name":"A","process":"a.exe","savePath":"saves"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, _ := newEnv(t, tt.params)
			_, err := HandleGamesAdd(env)
			require.Error(t, err)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestHandleGamesAdd_PersistErrorIsWarning(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"name":"Hollow Knight","process":"hollow_knight.exe","savePath":"/saves/hk"}`)

	mon.On("AddGame", mock.Anything, hollow).Return(hollow, games.ErrPersist)

	res, err := HandleGamesAdd(env)
	require.NoError(t, err)
	assert.Equal(t, "hollow_knight.exe", res.(models.GameResponse).Process)
}

func TestHandleGamesAdd_Duplicate(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"name":"Hollow Knight","process":"hollow_knight.exe","savePath":"/saves/hk"}`)

	mon.On("AddGame", mock.Anything, hollow).Return(games.Game{}, games.ErrDuplicateProcess)

	_, err := HandleGamesAdd(env)
	require.ErrorIs(t, err, games.ErrDuplicateProcess)
}

type coverFunc func(ctx context.Context, name string) (string, error)

func (f coverFunc) Fetch(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

func TestHandleGamesAdd_FetchesCover(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t,
		`{"name":"Hollow Knight","process":"hollow_knight.exe","savePath":"/saves/hk","fetchCover":true}`)

	done := make(chan struct{})
	env.Covers = coverFunc(func(_ context.Context, name string) (string, error) {
		assert.Equal(t, "Hollow Knight", name)
		return "/covers/367520.jpg", nil
	})
	mon.On("AddGame", mock.Anything, hollow).Return(hollow, nil)
	mon.On("SetImagePath", mock.Anything, "hollow_knight.exe", "/covers/367520.jpg").
		Run(func(mock.Arguments) { close(done) }).
		Return(hollow, nil)

	_, err := HandleGamesAdd(env)
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("cover was not recorded")
	}
}

func TestHandleGamesUpdate(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{
		"original": {"name":"Hollow Knight","process":"hollow_knight.exe","savePath":"/saves/hk"},
		"updated": {"name":"Hollow Knight","process":"hk.exe","savePath":"/saves/hk"}
	}`)

	updated := hollow
	updated.Process = "hk.exe"
	mon.On("UpdateGame", mock.Anything, hollow, updated).Return(updated, nil)

	res, err := HandleGamesUpdate(env)
	require.NoError(t, err)
	assert.Equal(t, "hk.exe", res.(models.GameResponse).Process)
}

func TestHandleGamesDelete_NotFound(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"game":{"name":"Hollow Knight","process":"hollow_knight.exe","savePath":"/saves/hk"}}`)

	mon.On("RemoveGame", mock.Anything, hollow).Return(games.ErrNotFound)

	_, err := HandleGamesDelete(env)
	require.ErrorIs(t, err, games.ErrNotFound)
}

func TestHandleGamesFavorite(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"process":"hollow_knight.exe"}`)

	fav := hollow
	fav.IsFavorite = true
	mon.On("ToggleFavorite", mock.Anything, "hollow_knight.exe").Return(fav, nil)

	res, err := HandleGamesFavorite(env)
	require.NoError(t, err)
	assert.True(t, res.(models.GameResponse).IsFavorite)
}

func TestHandleGamesSync_Modes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params string
		want   syncer.Mode
	}{
		{name: "default", params: `{"process":"hollow_knight.exe"}`, want: syncer.ModeSyncNow},
		{name: "sync", params: `{"process":"hollow_knight.exe","mode":"sync"}`, want: syncer.ModeSyncNow},
		{name: "upload", params: `{"process":"hollow_knight.exe","mode":"upload"}`, want: syncer.ModeUploadOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env, mon := newEnv(t, tt.params)
			job := syncer.NewJob(hollow, tt.want, syncer.TriggerManual)
			mon.On("RequestSync", mock.Anything, "hollow_knight.exe", tt.want).Return(job, nil)

			res, err := HandleGamesSync(env)
			require.NoError(t, err)
			resp := res.(models.SyncJobResponse)
			assert.Equal(t, string(tt.want), resp.Mode)
			assert.Equal(t, job.ID.String(), resp.ID)
		})
	}
}

func TestHandleGamesSync_BadMode(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, `{"process":"hollow_knight.exe","mode":"download"}`)

	_, err := HandleGamesSync(env)
	require.ErrorIs(t, err, validation.ErrInvalidParams)
}

func TestHandleGamesStatus_EmptyIsArray(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, "")
	mon.On("Statuses", mock.Anything).Return(nil, nil)

	res, err := HandleGamesStatus(env)
	require.NoError(t, err)
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"games":[]}`, string(data))
}

func TestHandleSaves(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"process":"hollow_knight.exe"}`)

	fsh := helpers.NewMemoryFS()
	mtime := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, fsh.WriteSave(hollow.SavePath, "user1.dat", mtime))
	require.NoError(t, fsh.WriteSave(hollow.SavePath, "user1.dat.bak", mtime))
	env.Ledger = ledger.New(fsh.Fs, "/status")

	mon.On("Find", mock.Anything, "hollow_knight.exe").Return(hollow, true, nil)

	res, err := HandleSaves(env)
	require.NoError(t, err)
	resp := res.(models.SavesResponse)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "user1.dat", resp.Files[0].Name)
	assert.Equal(t, "Hollow Knight/user1.dat", resp.Files[0].RemoteName)
	assert.Equal(t, "Nunca", resp.Files[0].UploadTime)
}

func TestHandleSaves_UnknownGame(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"process":"nope.exe"}`)
	mon.On("Find", mock.Anything, "nope.exe").Return(games.Game{}, false, nil)

	_, err := HandleSaves(env)
	require.ErrorIs(t, err, games.ErrNotFound)
}

func TestHandleSavesRemote(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"process":"hollow_knight.exe"}`)
	saves := &mocks.MockRemoteSaves{}
	env.Saves = saves

	mon.On("Find", mock.Anything, "hollow_knight.exe").Return(hollow, true, nil)
	saves.On("ListRemote", mock.Anything, "Hollow Knight").Return([]syncer.RemoteFile{
		{Filename: "user1.dat", Size: 2048, Timestamp: 1772359200},
	}, nil)

	res, err := HandleSavesRemote(env)
	require.NoError(t, err)
	resp := res.(models.RemoteSavesResponse)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "2.0 KB", resp.Files[0].Size)
	assert.Equal(t, int64(2048), resp.Files[0].SizeBytes)
	saves.AssertExpectations(t)
}

func TestHandleSavesDelete(t *testing.T) {
	t.Parallel()
	env, mon := newEnv(t, `{"process":"hollow_knight.exe","files":["user1.dat","user2.dat"]}`)
	saves := &mocks.MockRemoteSaves{}
	env.Saves = saves
	ns := make(chan models.Notification, 1)
	env.Notifications = ns

	names := []string{"Hollow Knight/user1.dat", "Hollow Knight/user2.dat"}
	mon.On("Find", mock.Anything, "hollow_knight.exe").Return(hollow, true, nil)
	saves.On("Delete", mock.Anything, names).Return(syncer.DeleteOutcome{
		Names:   names,
		Log:     "ERRO: timeout",
		Message: "delete failed",
		Err:     errors.New("failure marker"),
	})

	res, err := HandleSavesDelete(env)
	require.NoError(t, err)
	resp := res.(models.DeleteSavesResponse)
	assert.False(t, resp.Success)
	assert.Equal(t, "ERRO: timeout", resp.Log)

	n := <-ns
	assert.Equal(t, models.NotificationSavesDeleted, n.Method)
	saves.AssertExpectations(t)
}

func TestHandleSavesDelete_NoFiles(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, `{"process":"hollow_knight.exe","files":[]}`)
	env.Saves = &mocks.MockRemoteSaves{}

	_, err := HandleSavesDelete(env)
	require.ErrorIs(t, err, validation.ErrInvalidParams)
}

func TestHandleSettingsUpdate(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, `{"startWithWindows":true,"closeToTray":true}`)

	dir := t.TempDir()
	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)
	env.Config = cfg

	fs := helpers.NewMemoryFS().Fs
	env.Settings = config.LoadSettings(fs, "/cfg")

	var autostart []bool
	env.Autostart = func(enabled bool) error {
		autostart = append(autostart, enabled)
		return nil
	}

	res, err := HandleSettingsUpdate(env)
	require.NoError(t, err)
	resp := res.(models.SettingsResponse)
	assert.True(t, resp.StartWithWindows)
	assert.True(t, resp.CloseToTray)
	assert.Equal(t, []bool{true}, autostart)

	reloaded := config.LoadSettings(fs, "/cfg").Get()
	assert.True(t, reloaded.StartWithWindows)
	assert.FileExists(t, filepath.Join(dir, config.CfgFile))
}

func TestHandleSettingsUpdate_AutostartFails(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, `{"startWithWindows":true}`)

	fs := helpers.NewMemoryFS().Fs
	env.Settings = config.LoadSettings(fs, "/cfg")
	env.Autostart = func(bool) error { return errors.New("registry denied") }

	_, err := HandleSettingsUpdate(env)
	require.Error(t, err)
	assert.False(t, env.Settings.Get().StartWithWindows)
}

type catalogFunc func(ctx context.Context, text string) ([]catalog.Entry, error)

func (f catalogFunc) Search(ctx context.Context, text string) ([]catalog.Entry, error) {
	return f(ctx, text)
}

func TestHandleCatalogSearch(t *testing.T) {
	t.Parallel()

	t.Run("no catalog", func(t *testing.T) {
		t.Parallel()
		env, _ := newEnv(t, `{"query":"hollow"}`)
		res, err := HandleCatalogSearch(env)
		require.NoError(t, err)
		assert.Empty(t, res.(models.CatalogSearchResponse).Results)
	})

	t.Run("results", func(t *testing.T) {
		t.Parallel()
		env, _ := newEnv(t, `{"query":"hollow"}`)
		env.Catalog = catalogFunc(func(_ context.Context, text string) ([]catalog.Entry, error) {
			assert.Equal(t, "hollow", text)
			return []catalog.Entry{{Name: "Hollow Knight", AppID: 367520}}, nil
		})
		res, err := HandleCatalogSearch(env)
		require.NoError(t, err)
		assert.Equal(t, []models.CatalogEntry{{Name: "Hollow Knight", AppID: 367520}},
			res.(models.CatalogSearchResponse).Results)
	})

	t.Run("missing query", func(t *testing.T) {
		t.Parallel()
		env, _ := newEnv(t, `{}`)
		_, err := HandleCatalogSearch(env)
		require.ErrorIs(t, err, validation.ErrInvalidParams)
	})
}

type historyFunc func(ctx context.Context, process string, limit int) ([]history.Entry, error)

func (f historyFunc) Recent(ctx context.Context, process string, limit int) ([]history.Entry, error) {
	return f(ctx, process, limit)
}

func TestHandleHistory(t *testing.T) {
	t.Parallel()
	env, _ := newEnv(t, `{"process":"hollow_knight.exe","limit":10}`)

	started := time.Unix(1772359200, 0)
	env.History = historyFunc(func(_ context.Context, process string, limit int) ([]history.Entry, error) {
		assert.Equal(t, "hollow_knight.exe", process)
		assert.Equal(t, 10, limit)
		return []history.Entry{{
			JobID:     "job-1",
			Game:      "Hollow Knight",
			Process:   "hollow_knight.exe",
			Mode:      "sync",
			Trigger:   "game_stopped",
			StartedAt: started,
			Duration:  1500 * time.Millisecond,
			Files:     2,
			Success:   true,
		}}, nil
	})

	res, err := HandleHistory(env)
	require.NoError(t, err)
	entries := res.(models.HistoryResponse).Entries
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1772359200), entries[0].StartedAt)
	assert.Equal(t, int64(1500), entries[0].DurationMs)
}
