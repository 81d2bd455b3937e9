//go:build deadlock

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

import (
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// DeadlockEnabled reports whether lock diagnostics are compiled in.
const DeadlockEnabled = true

func init() {
	// helper runs can hold a game's lock for a long time
	deadlock.Opts.DeadlockTimeout = 2 * time.Minute
}

// Mutex guards state shared between the control loop and its helpers.
type Mutex struct {
	deadlock.Mutex
}

// RWMutex guards read-mostly state such as the loaded configuration.
type RWMutex struct {
	deadlock.RWMutex
}
