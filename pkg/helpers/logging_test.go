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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.Join("cfg", config.LogFile), LogPath("cfg"))
}

//nolint:paralleltest // replaces the global logger
func TestInitLogging(t *testing.T) {
	orig := log.Logger
	origWriter := logWriter
	t.Cleanup(func() {
		log.Logger = orig
		logWriter = origWriter
	})

	dir := filepath.Join(t.TempDir(), "nested")
	var extra bytes.Buffer
	require.NoError(t, InitLogging(dir, []io.Writer{&extra}))

	log.Info().Msg("hello from the test")

	assert.Contains(t, extra.String(), "hello from the test")
	assert.Equal(t, logWriter, LogWriter())

	data, err := os.ReadFile(LogPath(dir)) //nolint:gosec // test path
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from the test")
}
