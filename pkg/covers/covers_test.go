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

package covers

import (
	"context"
	"errors"
	"testing"

	"github.com/nakomaNS/AltCloud/pkg/shared/httpclient"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FindAppID(ctx context.Context, name string) (int, bool, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Bool(1), args.Error(2)
}

type mockDownloader struct {
	mock.Mock
	fs afero.Fs
}

func (m *mockDownloader) DownloadFile(ctx context.Context, a httpclient.DownloadFileArgs) error {
	args := m.Called(ctx, a)
	if args.Error(0) == nil {
		_ = afero.WriteFile(m.fs, a.OutputPath, []byte("jpg"), 0o600)
	}
	return args.Error(0)
}

func TestFetch_DownloadsOnce(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cat := &mockCatalog{}
	dl := &mockDownloader{fs: fs}
	f := New(fs, cat, dl, "/cache/images")

	cat.On("FindAppID", mock.Anything, "Hades").Return(1145360, true, nil)
	dl.On("DownloadFile", mock.Anything, httpclient.DownloadFileArgs{
		URL:        "https://cdn.akamai.steamstatic.com/steam/apps/1145360/library_600x900.jpg",
		OutputPath: "/cache/images/1145360.jpg",
	}).Return(nil).Once()

	path, err := f.Fetch(context.Background(), "Hades")
	require.NoError(t, err)
	assert.Equal(t, "/cache/images/1145360.jpg", path)

	path, err = f.Fetch(context.Background(), "Hades")
	require.NoError(t, err)
	assert.Equal(t, "/cache/images/1145360.jpg", path)
	dl.AssertExpectations(t)
}

func TestFetch_NotInCatalog(t *testing.T) {
	t.Parallel()

	cat := &mockCatalog{}
	cat.On("FindAppID", mock.Anything, "Homebrew").Return(0, false, nil)
	f := New(afero.NewMemMapFs(), cat, &mockDownloader{}, "/cache")

	_, err := f.Fetch(context.Background(), "Homebrew")
	require.ErrorIs(t, err, ErrNoAppID)

	_, err = New(afero.NewMemMapFs(), nil, nil, "/cache").Fetch(context.Background(), "x")
	require.ErrorIs(t, err, ErrNoAppID)
}

func TestFetch_DownloadError(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cat := &mockCatalog{}
	dl := &mockDownloader{fs: fs}
	cat.On("FindAppID", mock.Anything, "G").Return(7, true, nil)
	dl.On("DownloadFile", mock.Anything, mock.Anything).Return(errors.New("invalid status code: 404"))

	f := New(fs, cat, dl, "/cache").WithBaseURL("http://localhost")
	assert.Equal(t, "http://localhost/7/library_600x900.jpg", f.URL(7))

	_, err := f.Fetch(context.Background(), "G")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
