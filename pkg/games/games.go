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

// Package games holds the user's registered games and their persistence
// in games.json.
package games

import (
	"strings"

	"golang.org/x/text/cases"
)

// Game is one registered entry. Process is the executable name watched in
// the process list and doubles as the game's identity.
type Game struct {
	Name       string `json:"name" validate:"required"`
	Process    string `json:"process" validate:"required"`
	SavePath   string `json:"save_path"`
	ImagePath  string `json:"image_path,omitempty"`
	IsFavorite bool   `json:"is_favorite"`
}

// Key is the case-folded process name used as the game's identifier.
func (g *Game) Key() string {
	return ProcessKey(g.Process)
}

// ProcessKey normalises an executable name for comparison. Windows process
// names are case-insensitive.
func ProcessKey(process string) string {
	return fold(strings.TrimSpace(process))
}

const forbiddenRunes = `™®©:/\?*|"<>`

// SanitizeName strips characters that cannot appear in a remote folder or
// ledger file name, then trims surrounding whitespace.
func SanitizeName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(forbiddenRunes, r) {
			return -1
		}
		return r
	}, name)
	return strings.TrimSpace(cleaned)
}

// fold is not shared: a Caser keeps state between calls.
func fold(s string) string {
	return cases.Fold().String(s)
}

// RemoteName is the cloud object name for one save file of a game.
func RemoteName(gameName, filename string) string {
	return SanitizeName(gameName) + "/" + filename
}
