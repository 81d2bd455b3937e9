//go:build !windows

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

package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("captures_stdout_and_stderr", func(t *testing.T) {
		t.Parallel()

		res, err := executor.Run(context.Background(), Options{}, "sh", "-c", "echo out; echo err >&2")

		require.NoError(t, err)
		assert.Equal(t, "out\n", res.Stdout)
		assert.Equal(t, "err\n", res.Stderr)
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("non_zero_exit_is_not_an_error", func(t *testing.T) {
		t.Parallel()

		res, err := executor.Run(context.Background(), Options{}, "sh", "-c", "exit 3")

		require.NoError(t, err)
		assert.Equal(t, 3, res.ExitCode)
	})

	t.Run("missing_executable", func(t *testing.T) {
		t.Parallel()

		res, err := executor.Run(context.Background(), Options{}, "nonexistent_command_that_should_not_exist_12345")

		require.Error(t, err)
		assert.Equal(t, -1, res.ExitCode)
	})

	t.Run("invalid_utf8_is_replaced", func(t *testing.T) {
		t.Parallel()

		res, err := executor.Run(context.Background(), Options{}, "printf", `a\377b`)

		require.NoError(t, err)
		assert.Equal(t, "a\uFFFDb", res.Stdout)
	})

	t.Run("working_directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		res, err := executor.Run(context.Background(), Options{Dir: dir}, "pwd")

		require.NoError(t, err)
		assert.Contains(t, res.Stdout, dir)
	})
}

func TestRealExecutor_Start(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	require.NoError(t, executor.Start(context.Background(), Options{HideWindow: true}, "true"))
	require.Error(t, executor.Start(context.Background(), Options{}, "nonexistent_command_that_should_not_exist_12345"))
}

func TestCommandLine(t *testing.T) {
	t.Parallel()

	got := CommandLine("altcloud_util.exe", "--sync-now", "--localpath", `C:\Saves\slot 1.sav`, "--remotename", "Game/slot 1.sav")

	assert.Equal(t,
		`altcloud_util.exe --sync-now --localpath "C:\Saves\slot 1.sav" --remotename "Game/slot 1.sav"`,
		got,
	)
}

func TestExecutor_Interface(t *testing.T) {
	t.Parallel()

	var _ Executor = (*RealExecutor)(nil)
}
