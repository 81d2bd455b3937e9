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

package ledger

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// IsRecordFile reports whether a path in the status directory is a ledger
// record.
func IsRecordFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, "status_") && strings.HasSuffix(name, ".json")
}

// Watch calls onChange whenever a ledger record in the status directory is
// created, written or removed, until ctx is done. The watcher works on the
// real filesystem regardless of the Ledger's afero.Fs.
func (l *Ledger) Watch(ctx context.Context, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create ledger watcher: %w", err)
	}

	if err := watcher.Add(l.statusDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", l.statusDir, err)
	}

	log.Info().Str("dir", l.statusDir).Msg("watching ledger records")

	go func() {
		defer func() {
			if err := watcher.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing ledger watcher")
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !IsRecordFile(event.Name) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
					event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					log.Debug().Str("path", event.Name).Str("op", event.Op.String()).
						Msg("ledger record changed")
					onChange(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("error in ledger watcher")
			}
		}
	}()

	return nil
}
