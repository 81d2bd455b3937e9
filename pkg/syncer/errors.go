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
	"errors"
	"fmt"

	"github.com/nakomaNS/AltCloud/pkg/ledger"
)

var (
	ErrSaveDirNotFound       = ledger.ErrSaveDirNotFound
	ErrHelperNotFound        = errors.New("helper executable not found")
	ErrNothingToDelete       = errors.New("no remote files selected for deletion")
	ErrHelperReportedFailure = errors.New("helper reported a failure")
)

// ExecutionError is a helper run that could not start or exited non-zero
// while processing File.
type ExecutionError struct {
	Err      error
	File     string
	ExitCode int
}

func (e *ExecutionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("sync of %q failed: %v", e.File, e.Err)
	}
	return fmt.Sprintf("sync of %q exited with code %d", e.File, e.ExitCode)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
