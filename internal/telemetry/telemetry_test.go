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

package telemetry

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty string", input: "", expected: ""},
		{
			name:     "no username in path",
			input:    "/usr/local/bin/altcloud",
			expected: "/usr/local/bin/altcloud",
		},
		{
			name:     "linux home path",
			input:    "/home/maria/.config/AltCloud/games.json",
			expected: "/home/<user>/.config/AltCloud/games.json",
		},
		{
			name:     "macos users path lowercase",
			input:    "/users/maria/Library/Application Support/AltCloud",
			expected: "/Users/<user>/Library/Application Support/AltCloud",
		},
		{
			name:     "windows save path",
			input:    "C:\\Users\\maria\\AppData\\LocalLow\\Team Cherry\\Hollow Knight",
			expected: "C:\\Users\\<user>\\AppData\\LocalLow\\Team Cherry\\Hollow Knight",
		},
		{
			name:     "windows other drive",
			input:    "D:\\Users\\admin\\Saved Games",
			expected: "C:\\Users\\<user>\\Saved Games",
		},
		{
			name:     "message with two paths",
			input:    "copying /home/alice/a to /home/bob/b",
			expected: "copying /home/<user>/a to /home/<user>/b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizePath(tt.input))
		})
	}
}

func TestSanitizeEvent(t *testing.T) {
	t.Parallel()

	event := &sentry.Event{
		ServerName: "MARIA-PC",
		Message:    "save dir missing: C:\\Users\\maria\\Saves\\",
		Extra:      map[string]any{"path": "/home/maria/x", "count": 3},
		Exception: []sentry.Exception{{
			Value: "open /home/maria/games.json",
			Stacktrace: &sentry.Stacktrace{Frames: []sentry.Frame{{
				AbsPath:  "/home/maria/src/AltCloud/pkg/games/registry.go",
				Filename: "pkg/games/registry.go",
			}}},
		}},
	}

	out := sanitizeEvent(event)
	require.NotNil(t, out)
	assert.Empty(t, out.ServerName)
	assert.Equal(t, "save dir missing: C:\\Users\\<user>\\Saves\\", out.Message)
	assert.Equal(t, "/home/<user>/x", out.Extra["path"])
	assert.Equal(t, 3, out.Extra["count"])
	assert.Equal(t, "open /home/<user>/games.json", out.Exception[0].Value)
	assert.Equal(t, "/home/<user>/src/AltCloud/pkg/games/registry.go",
		out.Exception[0].Stacktrace.Frames[0].AbsPath)
}

func TestInitDisabled(t *testing.T) {
	t.Parallel()
	require.NoError(t, Init(Options{Enabled: false}))
	assert.False(t, Enabled())
}

func TestInitWithoutDSN(t *testing.T) {
	t.Parallel()
	require.ErrorIs(t, Init(Options{Enabled: true}), ErrNoDSN)
	assert.False(t, Enabled())
}

func TestCloseAndFlushWhenDisabled(t *testing.T) {
	t.Parallel()
	Close()
	Flush()
}
