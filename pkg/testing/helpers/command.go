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
	"github.com/nakomaNS/AltCloud/pkg/helpers/command"
	"github.com/nakomaNS/AltCloud/pkg/testing/mocks"
	"github.com/stretchr/testify/mock"
)

// NewMockCommandExecutor creates a MockCommandExecutor where every Run and
// Start succeeds with empty output unless overridden:
//
//	exec := helpers.NewMockCommandExecutor()
//	exec.ExpectedCalls = nil
//	exec.On("Run", mock.Anything, mock.Anything, "deleter.exe", []string{"a.sav"}).
//		Return(command.Result{Stdout: "ok"}, nil)
func NewMockCommandExecutor() *mocks.MockCommandExecutor {
	exec := &mocks.MockCommandExecutor{}
	exec.On("Run", mock.Anything, mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(command.Result{}, nil).Maybe()
	exec.On("Start", mock.Anything, mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(nil).Maybe()
	return exec
}
