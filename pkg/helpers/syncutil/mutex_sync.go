//go:build !deadlock

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

// Package syncutil holds the lock types used across AltCloud. Building with
// -tags=deadlock swaps them for go-deadlock implementations that report
// lock-order inversions and long waits.
package syncutil

import "sync"

// DeadlockEnabled reports whether lock diagnostics are compiled in.
const DeadlockEnabled = false

// Mutex guards state shared between the control loop and its helpers.
//
//nolint:gocritic // wrapper type
type Mutex struct {
	sync.Mutex //nolint:forbidigo // wrapped here only
}

// RWMutex guards read-mostly state such as the loaded configuration.
//
//nolint:gocritic // wrapper type
type RWMutex struct {
	sync.RWMutex //nolint:forbidigo // wrapped here only
}
