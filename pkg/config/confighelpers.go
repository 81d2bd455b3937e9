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

package config

import "path/filepath"

// Helpers locates the external sync and delete executables.
type Helpers struct {
	SyncExe    string `toml:"sync_exe,omitempty"`
	DeleterExe string `toml:"deleter_exe,omitempty"`
}

// Paths overrides where AltCloud keeps its derived data.
type Paths struct {
	StatusDir     string `toml:"status_dir,omitempty"`
	ImageCacheDir string `toml:"image_cache_dir,omitempty"`
	CatalogDB     string `toml:"catalog_db,omitempty"`
}

func (c *Instance) helpersDir() string {
	return filepath.Join(c.appDir, "main", "bin")
}

// SyncExe is the path of the upload/download helper.
func (c *Instance) SyncExe() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Helpers.SyncExe != "" {
		return c.vals.Helpers.SyncExe
	}
	return filepath.Join(c.helpersDir(), SyncExeName)
}

// DeleterExe is the path of the remote delete helper.
func (c *Instance) DeleterExe() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Helpers.DeleterExe != "" {
		return c.vals.Helpers.DeleterExe
	}
	return filepath.Join(c.helpersDir(), DeleterExeName)
}

// StatusDir holds the upload ledger records written by the sync helper.
// It defaults to the config directory, which is also passed to the helper
// as --configdir.
func (c *Instance) StatusDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Paths.StatusDir != "" {
		return c.vals.Paths.StatusDir
	}
	return filepath.Dir(c.cfgPath)
}

func (c *Instance) ImageCacheDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Paths.ImageCacheDir != "" {
		return c.vals.Paths.ImageCacheDir
	}
	return filepath.Join(filepath.Dir(c.cfgPath), "cache", "images")
}

func (c *Instance) CatalogDB() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Paths.CatalogDB != "" {
		return c.vals.Paths.CatalogDB
	}
	return filepath.Join(c.appDir, "data", CatalogDbFile)
}
