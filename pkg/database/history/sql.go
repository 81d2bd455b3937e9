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

package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

const selectColumns = `DBID, JobID, StartedAt, DurationMs, Game, Process, Mode, Cause, Success, Files, Message`

//nolint:gocritic // struct passed for DB insertion
func sqlAdd(ctx context.Context, db *sql.DB, e Entry) error {
	_, err := db.ExecContext(ctx, `
		insert into SyncHistory(
			JobID, StartedAt, DurationMs, Game, Process, Mode, Cause, Success, Files, Message
		) values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		e.JobID,
		e.StartedAt.Unix(),
		e.Duration.Milliseconds(),
		e.Game,
		e.Process,
		e.Mode,
		e.Trigger,
		e.Success,
		e.Files,
		e.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to execute history insert: %w", err)
	}
	return nil
}

func sqlRecent(ctx context.Context, db *sql.DB, process string, limit int) ([]Entry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if process == "" {
		rows, err = db.QueryContext(ctx,
			`select `+selectColumns+` from SyncHistory order by DBID desc limit ?;`,
			limit)
	} else {
		rows, err = db.QueryContext(ctx,
			`select `+selectColumns+` from SyncHistory where Process = ? collate nocase order by DBID desc limit ?;`,
			process, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return scanEntries(rows)
}

func sqlAll(ctx context.Context, db *sql.DB) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, `select `+selectColumns+` from SyncHistory order by DBID asc;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	list := make([]Entry, 0, 25)
	for rows.Next() {
		var (
			e          Entry
			started    int64
			durationMs int64
		)
		if err := rows.Scan(
			&e.DBID,
			&e.JobID,
			&started,
			&durationMs,
			&e.Game,
			&e.Process,
			&e.Mode,
			&e.Trigger,
			&e.Success,
			&e.Files,
			&e.Message,
		); err != nil {
			return list, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.StartedAt = time.Unix(started, 0)
		e.Duration = time.Duration(durationMs) * time.Millisecond
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return list, fmt.Errorf("error iterating history rows: %w", err)
	}
	return list, nil
}

func sqlPrune(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `delete from SyncHistory where StartedAt < ?;`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to execute history cleanup: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}
