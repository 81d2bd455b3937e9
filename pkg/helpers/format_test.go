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

package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		expected string
		in       int64
	}{
		{in: 0, expected: "0 B"},
		{in: 1023, expected: "1023 B"},
		{in: 1024, expected: "1.0 KB"},
		{in: 1536, expected: "1.5 KB"},
		{in: 5 * 1024 * 1024, expected: "5.0 MB"},
		{in: 3 * 1024 * 1024 * 1024, expected: "3.0 GB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatBytes(tt.in))
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	assert.Equal(t, NeverLabel, FormatTimestamp(time.Time{}))

	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	assert.Equal(t, "09/03/2024 14:05:07", FormatTimestamp(ts))
}
