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

// Package covers finds and caches Steam library artwork for registered
// games.
package covers

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/nakomaNS/AltCloud/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const DefaultBaseURL = "https://cdn.akamai.steamstatic.com/steam/apps"

var ErrNoAppID = errors.New("game not found in catalog")

// AppIDFinder resolves a game name to a Steam app id.
type AppIDFinder interface {
	FindAppID(ctx context.Context, name string) (int, bool, error)
}

type Downloader interface {
	DownloadFile(ctx context.Context, args httpclient.DownloadFileArgs) error
}

type Fetcher struct {
	fs       afero.Fs
	catalog  AppIDFinder
	client   Downloader
	cacheDir string
	baseURL  string
}

func New(fs afero.Fs, catalog AppIDFinder, client Downloader, cacheDir string) *Fetcher {
	return &Fetcher{
		fs:       fs,
		catalog:  catalog,
		client:   client,
		cacheDir: cacheDir,
		baseURL:  DefaultBaseURL,
	}
}

// WithBaseURL points the fetcher at another CDN, for tests.
func (f *Fetcher) WithBaseURL(u string) *Fetcher {
	f.baseURL = u
	return f
}

func (f *Fetcher) URL(appID int) string {
	return f.baseURL + "/" + strconv.Itoa(appID) + "/library_600x900.jpg"
}

// Path is where the cover for appID is cached.
func (f *Fetcher) Path(appID int) string {
	return filepath.Join(f.cacheDir, strconv.Itoa(appID)+".jpg")
}

// Fetch returns the cached cover path for the named game, downloading it
// first if needed.
func (f *Fetcher) Fetch(ctx context.Context, name string) (string, error) {
	if f.catalog == nil {
		return "", ErrNoAppID
	}
	appID, found, err := f.catalog.FindAppID(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to look up app id: %w", err)
	}
	if !found {
		return "", ErrNoAppID
	}

	path := f.Path(appID)
	if exists, _ := afero.Exists(f.fs, path); exists {
		return path, nil
	}

	if err := f.fs.MkdirAll(f.cacheDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create image cache: %w", err)
	}
	err = f.client.DownloadFile(ctx, httpclient.DownloadFileArgs{
		URL:        f.URL(appID),
		OutputPath: path,
	})
	if err != nil {
		return "", fmt.Errorf("failed to download cover for %d: %w", appID, err)
	}
	log.Debug().Str("game", name).Int("appid", appID).Msg("downloaded cover art")
	return path, nil
}
