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

package games

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortMode string

const (
	SortDefault        SortMode = "default"
	SortFavoritesFirst SortMode = "favorites_first"
	SortAlphaAsc       SortMode = "alpha_asc"
	SortAlphaDesc      SortMode = "alpha_desc"
)

// ViewOptions filters and orders the registry for display.
type ViewOptions struct {
	Sort          SortMode `json:"sort" validate:"omitempty,oneof=default favorites_first alpha_asc alpha_desc"`
	Query         string   `json:"query"`
	FavoritesOnly bool     `json:"favoritesOnly"`
}

// View returns a filtered, sorted copy of gs. The default order is
// registration order.
func View(gs []Game, opts ViewOptions) []Game {
	query := fold(strings.TrimSpace(opts.Query))
	out := make([]Game, 0, len(gs))
	for i := range gs {
		if opts.FavoritesOnly && !gs[i].IsFavorite {
			continue
		}
		if query != "" && !strings.Contains(fold(gs[i].Name), query) {
			continue
		}
		out = append(out, gs[i])
	}

	coll := collate.New(language.Und, collate.IgnoreCase)
	byName := func(a, b Game) int {
		return coll.CompareString(a.Name, b.Name)
	}

	switch opts.Sort {
	case SortAlphaAsc:
		slices.SortStableFunc(out, byName)
	case SortAlphaDesc:
		slices.SortStableFunc(out, func(a, b Game) int { return byName(b, a) })
	case SortFavoritesFirst:
		slices.SortStableFunc(out, func(a, b Game) int {
			switch {
			case a.IsFavorite == b.IsFavorite:
				return 0
			case a.IsFavorite:
				return -1
			default:
				return 1
			}
		})
	case SortDefault, "":
	}
	return out
}
