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

// Package catalog looks up Steam app ids and names in the bundled
// steam_games.db. The database is opened read-only.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

var (
	ErrNullSQL = errors.New("catalog is not connected")
	ErrMissing = errors.New("catalog database not found")
)

const (
	// SearchLimit is how many suggestions Search returns.
	SearchLimit = 15
	// scanLimit bounds the rows fetched before filtering and ranking.
	scanLimit = 200

	sqliteConnParams = "?mode=ro&_busy_timeout=5000"
)

// nonGameWords mark catalog entries that are tools, media or add-ons
// rather than games.
var nonGameWords = []string{
	"server", "sdk", "demo", "beta", "dlc", "editor", "toolkit",
	"authoring tools", "benchmark", "dedicated", "bonus content", "configs",
	"redist", "test", "pack", "kit", "steam", "valve", "linux", "mac",
	"macos", "vr", "controller", "sharing", "client", "awards", "filmmaker",
	"add-on", "winui2", "slice", "greenlight", "depot", "key", "rgl/sc",
	"soundtrack", "playtest", "trailer", "artbook", "season pass", "episode",
	"movie", "filme", "application",
}

// IsGameName reports whether a catalog name looks like a game.
func IsGameName(name string) bool {
	lower := strings.ToLower(name)
	if lower == "" {
		return false
	}
	for _, w := range nonGameWords {
		if strings.Contains(lower, w) {
			return false
		}
	}
	return true
}

type Entry struct {
	Name  string
	AppID int
}

type Catalog struct {
	sql  *sql.DB
	path string
}

// Open connects to the catalog at path. A missing file is ErrMissing so the
// caller can run without cover art and suggestions.
func Open(ctx context.Context, path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissing, path)
	}
	db, err := sql.Open("sqlite3", "file:"+path+sqliteConnParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}
	return &Catalog{sql: db, path: path}, nil
}

// New wraps an existing connection.
func New(db *sql.DB) *Catalog {
	return &Catalog{sql: db}
}

func (c *Catalog) Path() string {
	return c.path
}

func (c *Catalog) Close() error {
	if c == nil || c.sql == nil {
		return nil
	}
	if err := c.sql.Close(); err != nil {
		return fmt.Errorf("failed to close catalog: %w", err)
	}
	return nil
}

func likePattern(s string) string {
	return "%" + s + "%"
}

// FindAppID resolves a game name to its app id: an exact name match first,
// then the first name containing it.
func (c *Catalog) FindAppID(ctx context.Context, name string) (int, bool, error) {
	if c == nil || c.sql == nil {
		return 0, false, ErrNullSQL
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, false, nil
	}

	id, found, err := c.queryAppID(ctx, `select appid from games where name = ? limit 1;`, name)
	if err != nil || found {
		return id, found, err
	}
	return c.queryAppID(ctx, `select appid from games where name like ? limit 1;`, likePattern(name))
}

func (c *Catalog) queryAppID(ctx context.Context, query, arg string) (int, bool, error) {
	var id int
	err := c.sql.QueryRowContext(ctx, query, arg).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	} else if err != nil {
		return 0, false, fmt.Errorf("failed to query app id: %w", err)
	}
	return id, true, nil
}

type scored struct {
	entry Entry
	score float32
}

// Search returns up to SearchLimit games whose name contains text, closest
// match first.
func (c *Catalog) Search(ctx context.Context, text string) ([]Entry, error) {
	if c == nil || c.sql == nil {
		return nil, ErrNullSQL
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return []Entry{}, nil
	}

	rows, err := c.sql.QueryContext(ctx, `
		select appid, name
		from games
		where name like ?
		order by name
		limit ?;
	`, likePattern(text), scanLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search catalog: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("failed to close sql rows")
		}
	}()

	query := strings.ToLower(text)
	var matches []scored
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.AppID, &e.Name); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		if !IsGameName(e.Name) {
			continue
		}
		matches = append(matches, scored{
			entry: e,
			score: edlib.JaroWinklerSimilarity(query, strings.ToLower(e.Name)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog rows: %w", err)
	}

	// rows arrive sorted by name, so equal scores keep that order
	slices.SortStableFunc(matches, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})

	out := make([]Entry, 0, min(len(matches), SearchLimit))
	for i := range matches {
		if len(out) == SearchLimit {
			break
		}
		out = append(out, matches[i].entry)
	}
	return out, nil
}
