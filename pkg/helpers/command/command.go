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

// Package command runs external helper executables behind an interface so
// callers can be tested without spawning processes.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Options configures how a helper process is spawned.
type Options struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// HideWindow suppresses the console window of the child (Windows only).
	HideWindow bool
}

// Result is the captured outcome of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor spawns external processes.
type Executor interface {
	// Run executes the command, waits for it and captures its output. A
	// non-zero exit is reported through Result.ExitCode, not as an error;
	// the error is reserved for processes that could not be started or
	// were interrupted by ctx.
	Run(ctx context.Context, opts Options, name string, args ...string) (Result, error)

	// Start launches the command without waiting for it.
	Start(ctx context.Context, opts Options, name string, args ...string) error
}

// RealExecutor runs commands with os/exec.
type RealExecutor struct{}

func (*RealExecutor) Run(
	ctx context.Context,
	opts Options,
	name string,
	args ...string,
) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	applyOptions(cmd, opts)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Stdout: decode(stdout.Bytes()),
		Stderr: decode(stderr.Bytes()),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr) && ctx.Err() == nil:
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		res.ExitCode = -1
		return res, fmt.Errorf("run %s: %w", name, err)
	}
}

func (*RealExecutor) Start(ctx context.Context, opts Options, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	applyOptions(cmd, opts)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// decode returns helper output as text, replacing invalid UTF-8 sequences.
func decode(b []byte) string {
	return strings.ToValidUTF8(string(b), "\uFFFD")
}

// CommandLine renders a command the way it is written in helper logs.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, p := range append([]string{name}, args...) {
		if p == "" || strings.ContainsAny(p, " \t\"") {
			p = `"` + strings.ReplaceAll(p, `"`, `\"`) + `"`
		}
		parts = append(parts, p)
	}
	return strings.Join(parts, " ")
}
