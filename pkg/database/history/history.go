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

// Package history keeps a queryable record of every sync job in
// history.db next to the helper's own log.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/database"
	"github.com/nakomaNS/AltCloud/pkg/syncer"
	"github.com/rs/zerolog/log"
)

var ErrNullSQL = errors.New("history database is not connected")

const (
	DefaultLimit = 50
	// MaxLimit caps a single page of Recent.
	MaxLimit = 500
	// RetentionDays is how long entries are kept by Prune at startup.
	RetentionDays = 90
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Entry is one finished sync job.
type Entry struct {
	StartedAt time.Time
	JobID     string
	Game      string
	Process   string
	Mode      string
	Trigger   string
	Message   string
	DBID      int64
	Duration  time.Duration
	Files     int
	Success   bool
}

// EntryFromOutcome flattens a job outcome for storage.
func EntryFromOutcome(out *syncer.Outcome) Entry {
	return Entry{
		JobID:     out.Job.ID.String(),
		StartedAt: out.Started,
		Duration:  out.Duration(),
		Game:      out.Job.Game.Name,
		Process:   out.Job.Game.Process,
		Mode:      string(out.Job.Mode),
		Trigger:   string(out.Job.Trigger),
		Success:   out.Success(),
		Files:     out.Files,
		Message:   out.Message,
	}
}

type DB struct {
	sql *sql.DB
	now func() time.Time
}

// Path is the history database inside configDir.
func Path(configDir string) string {
	return filepath.Join(configDir, config.HistoryDbFile)
}

// Open opens or creates history.db in configDir and migrates it.
func Open(ctx context.Context, configDir string) (*DB, error) {
	path := Path(configDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create directory for database: %w", err)
	}
	sqlDB, err := sql.Open("sqlite3", path+database.SqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	db := New(sqlDB)
	if err := db.MigrateUp(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// New wraps an existing connection without migrating it.
func New(sqlDB *sql.DB) *DB {
	return &DB{sql: sqlDB, now: time.Now}
}

func (db *DB) MigrateUp() error {
	if db.sql == nil {
		return ErrNullSQL
	}
	if err := database.MigrateUp(db.sql, migrationFiles, "migrations"); err != nil {
		return fmt.Errorf("failed to run history database migrations: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	if db.sql == nil {
		return nil
	}
	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

// Add records a finished job.
func (db *DB) Add(ctx context.Context, out *syncer.Outcome) error {
	if db.sql == nil {
		return ErrNullSQL
	}
	return sqlAdd(ctx, db.sql, EntryFromOutcome(out))
}

// Recent returns the newest entries first, optionally only those of one
// process.
func (db *DB) Recent(ctx context.Context, process string, limit int) ([]Entry, error) {
	if db.sql == nil {
		return nil, ErrNullSQL
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}
	return sqlRecent(ctx, db.sql, process, limit)
}

// Prune deletes entries older than retentionDays.
func (db *DB) Prune(ctx context.Context, retentionDays int) (int64, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	cutoff := db.now().AddDate(0, 0, -retentionDays)
	n, err := sqlPrune(ctx, db.sql, cutoff)
	if err != nil {
		return n, err
	}
	if n > 0 {
		log.Info().Int64("entries", n).Int("days", retentionDays).Msg("pruned sync history")
	}
	return n, nil
}

type csvRow struct {
	StartedAt string `csv:"started_at"`
	JobID     string `csv:"job_id"`
	Game      string `csv:"game"`
	Process   string `csv:"process"`
	Mode      string `csv:"mode"`
	Trigger   string `csv:"trigger"`
	Message   string `csv:"message"`
	Duration  int64  `csv:"duration_ms"`
	Files     int    `csv:"files"`
	Success   bool   `csv:"success"`
}

// ExportCSV writes every entry, oldest first, as CSV with a header row.
func (db *DB) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	if db.sql == nil {
		return 0, ErrNullSQL
	}
	entries, err := sqlAll(ctx, db.sql)
	if err != nil {
		return 0, err
	}

	rows := make([]csvRow, len(entries))
	for i := range entries {
		e := &entries[i]
		rows[i] = csvRow{
			StartedAt: e.StartedAt.UTC().Format(time.RFC3339),
			JobID:     e.JobID,
			Game:      e.Game,
			Process:   e.Process,
			Mode:      e.Mode,
			Trigger:   e.Trigger,
			Message:   e.Message,
			Duration:  e.Duration.Milliseconds(),
			Files:     e.Files,
			Success:   e.Success,
		}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return 0, fmt.Errorf("failed to write history CSV: %w", err)
	}
	return len(rows), nil
}
