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

// Package database holds the sqlite plumbing shared by the history and
// catalog stores.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/nakomaNS/AltCloud/pkg/helpers/syncutil"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
)

// SqliteConnParams is appended to the path of every writable database.
const SqliteConnParams = "?_journal_mode=WAL&_synchronous=FULL&_busy_timeout=5000"

// goose keeps its dialect and filesystem in package globals.
var migrationMutex syncutil.Mutex

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	log.Debug().Msgf(format, v...)
}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Error().Msgf(format, v...)
}

// MigrateUp applies every pending migration found in dir of migrations.
func MigrateUp(db *sql.DB, migrations fs.FS, dir string) error {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	goose.SetLogger(gooseLogger{})
	goose.SetBaseFS(migrations)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("error setting goose dialect: %w", err)
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("error running migrations up: %w", err)
	}
	return nil
}

// Version reports the applied schema version.
func Version(db *sql.DB) (int64, error) {
	migrationMutex.Lock()
	defer migrationMutex.Unlock()

	if err := goose.SetDialect("sqlite3"); err != nil {
		return 0, fmt.Errorf("error setting goose dialect: %w", err)
	}
	v, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("error reading schema version: %w", err)
	}
	return v, nil
}
