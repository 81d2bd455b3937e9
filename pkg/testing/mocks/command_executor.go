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

package mocks

import (
	"context"

	"github.com/nakomaNS/AltCloud/pkg/helpers/command"
	"github.com/stretchr/testify/mock"
)

// MockCommandExecutor is a testify mock for command.Executor.
//
//	exec := &mocks.MockCommandExecutor{}
//	exec.On("Run", mock.Anything, mock.Anything, "altcloud_util.exe", mock.Anything).
//		Return(command.Result{Stdout: "ok"}, nil)
type MockCommandExecutor struct {
	mock.Mock
}

func (m *MockCommandExecutor) Run(
	ctx context.Context,
	opts command.Options,
	name string,
	args ...string,
) (command.Result, error) {
	called := m.Called(ctx, opts, name, args)
	res, _ := called.Get(0).(command.Result)
	//nolint:wrapcheck // mock
	return res, called.Error(1)
}

func (m *MockCommandExecutor) Start(
	ctx context.Context,
	opts command.Options,
	name string,
	args ...string,
) error {
	called := m.Called(ctx, opts, name, args)
	//nolint:wrapcheck // mock
	return called.Error(0)
}
