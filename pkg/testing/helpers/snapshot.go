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
	"context"
	"sync"

	"github.com/nakomaNS/AltCloud/pkg/procsnap"
)

// FakeSnapshotter is a procsnap.Snapshotter whose process list is set by
// the test. It is safe for concurrent use.
type FakeSnapshotter struct {
	err   error
	names []string
	calls int
	mu    sync.Mutex
}

func NewFakeSnapshotter(names ...string) *FakeSnapshotter {
	return &FakeSnapshotter{names: names}
}

// Set replaces the running process list and clears any error.
func (f *FakeSnapshotter) Set(names ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = names
	f.err = nil
}

// Fail makes every following snapshot return err.
func (f *FakeSnapshotter) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *FakeSnapshotter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *FakeSnapshotter) Snapshot(context.Context) (procsnap.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return procsnap.NewSnapshot(f.names...), nil
}
