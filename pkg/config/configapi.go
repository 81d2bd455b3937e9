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

import "fmt"

const DefaultAPIPort = 7598

// API configures the local JSON-RPC endpoint used by front-ends.
type API struct {
	Port           *int     `toml:"port,omitempty"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
	AllowedIPs     []string `toml:"allowed_ips,omitempty"`
}

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.API.Port == nil || *c.vals.API.Port <= 0 {
		return DefaultAPIPort
	}
	return *c.vals.API.Port
}

func (c *Instance) SetAPIPort(port int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.API.Port = &port
}

// APIListen is the loopback address the API binds to.
func (c *Instance) APIListen() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	port := DefaultAPIPort
	if c.vals.API.Port != nil && *c.vals.API.Port > 0 {
		port = *c.vals.API.Port
	}
	return fmt.Sprintf("127.0.0.1:%d", port)
}

func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.API.AllowedOrigins...)
}

// AllowedIPs are addresses or CIDR ranges accepted in addition to loopback.
func (c *Instance) AllowedIPs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.API.AllowedIPs...)
}
