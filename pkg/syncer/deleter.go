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

package syncer

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/helpers/command"
	"github.com/rs/zerolog/log"
)

// failureMarkers are printed by the delete helper on failure even when it
// exits with code 0.
var failureMarkers = []string{"ERRO", "FALHA AO CONECTAR"}

// DeleteOutcome is the result of one delete helper run.
type DeleteOutcome struct {
	Err     error
	Log     string
	Message string
	Names   []string
}

func (o *DeleteOutcome) Success() bool {
	return o.Err == nil
}

// Delete removes the given remote objects ("<game>/<file>") in a single
// helper run. The run fails on a non-zero exit or when the helper prints a
// failure marker.
func (i *Invoker) Delete(ctx context.Context, remoteNames []string) DeleteOutcome {
	out := DeleteOutcome{Names: remoteNames}
	fail := func(err error) DeleteOutcome {
		out.Err = err
		out.Message = err.Error()
		log.Error().Err(err).Strs("files", remoteNames).Msg("remote delete failed")
		return out
	}

	if len(remoteNames) == 0 {
		return fail(ErrNothingToDelete)
	}
	if !i.helperExists(i.deleterExe) {
		return fail(fmt.Errorf("%w: %s", ErrHelperNotFound, i.deleterExe))
	}

	res, err := i.exec.Run(ctx, runOptions, i.deleterExe, remoteNames...)

	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s\n\n", command.CommandLine(i.deleterExe, remoteNames...))
	fmt.Fprintf(&b, "STDOUT:\n%s\n\nSTDERR:\n%s\n", res.Stdout, res.Stderr)
	out.Log = b.String()

	if err != nil {
		return fail(&ExecutionError{File: strings.Join(remoteNames, ", "), ExitCode: res.ExitCode, Err: err})
	}
	if res.ExitCode != 0 {
		return fail(&ExecutionError{File: strings.Join(remoteNames, ", "), ExitCode: res.ExitCode})
	}
	upper := strings.ToUpper(res.Stdout)
	for _, m := range failureMarkers {
		if strings.Contains(upper, m) {
			return fail(fmt.Errorf("%w: %q in output", ErrHelperReportedFailure, m))
		}
	}

	out.Message = fmt.Sprintf("%d file(s) deleted", len(remoteNames))
	log.Info().Strs("files", remoteNames).Msg("remote files deleted")
	return out
}

// RemoteFile is one object stored in the cloud for a game.
type RemoteFile struct {
	Filename  string  `json:"filename"`
	Size      int64   `json:"size"`
	Timestamp float64 `json:"timestamp"`
}

func (f RemoteFile) Time() time.Time {
	if f.Timestamp <= 0 {
		return time.Time{}
	}
	whole, frac := math.Modf(f.Timestamp)
	return time.Unix(int64(whole), int64(frac*1e9))
}

// ListRemote lists the cloud objects in a game's remote folder.
func (i *Invoker) ListRemote(ctx context.Context, folder string) ([]RemoteFile, error) {
	if !i.helperExists(i.deleterExe) {
		return nil, fmt.Errorf("%w: %s", ErrHelperNotFound, i.deleterExe)
	}

	res, err := i.exec.Run(ctx, runOptions, i.deleterExe, "--list-remote", folder)
	if err != nil {
		return nil, &ExecutionError{File: folder, ExitCode: res.ExitCode, Err: err}
	}
	if res.ExitCode != 0 {
		log.Warn().Str("folder", folder).Str("stderr", res.Stderr).Msg("remote listing failed")
		return nil, &ExecutionError{File: folder, ExitCode: res.ExitCode}
	}

	files := []RemoteFile{}
	if strings.TrimSpace(res.Stdout) == "" {
		return files, nil
	}
	if err := json.Unmarshal([]byte(res.Stdout), &files); err != nil {
		return nil, fmt.Errorf("failed to parse remote listing: %w", err)
	}
	return files, nil
}
