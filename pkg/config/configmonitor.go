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

package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval = 3 * time.Second
	DefaultWorkers      = 4
	minPollInterval     = 500 * time.Millisecond
)

// Monitor configures process polling and the sync worker pool.
type Monitor struct {
	PollInterval string `toml:"poll_interval,omitempty"`
	Workers      *int   `toml:"workers,omitempty"`
}

// PollInterval returns how often the process list is sampled. Invalid or
// too small values fall back to the default of 3 seconds.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Monitor.PollInterval == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(c.vals.Monitor.PollInterval)
	if err != nil {
		log.Warn().Err(err).Msgf("invalid poll interval: %s", c.vals.Monitor.PollInterval)
		return DefaultPollInterval
	}
	if d < minPollInterval {
		return minPollInterval
	}
	return d
}

func (c *Instance) SetPollInterval(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Monitor.PollInterval = d.String()
}

// Workers is the size of the pool running helper invocations.
func (c *Instance) Workers() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Monitor.Workers == nil || *c.vals.Monitor.Workers < 1 {
		return DefaultWorkers
	}
	return *c.vals.Monitor.Workers
}
