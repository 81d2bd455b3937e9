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

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nakomaNS/AltCloud/pkg/helpers/syncutil"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// The front-end polls games.status every few seconds and bursts on
	// startup, so the limit is generous for a single local client.
	DefaultRequestsPerMinute = 300
	DefaultBurstSize         = 50

	limiterMaxAge       = 10 * time.Minute
	limiterCleanupEvery = 5 * time.Minute
)

type Limits struct {
	RequestsPerMinute int
	Burst             int
}

var DefaultLimits = Limits{
	RequestsPerMinute: DefaultRequestsPerMinute,
	Burst:             DefaultBurstSize,
}

type IPRateLimiter struct {
	clock    clockwork.Clock
	limiters map[string]*rateLimiterEntry
	limits   Limits
	mu       syncutil.RWMutex
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewIPRateLimiter(clock clockwork.Clock, limits Limits) *IPRateLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if limits.RequestsPerMinute <= 0 {
		limits.RequestsPerMinute = DefaultRequestsPerMinute
	}
	if limits.Burst <= 0 {
		limits.Burst = DefaultBurstSize
	}
	return &IPRateLimiter{
		clock:    clock,
		limits:   limits,
		limiters: make(map[string]*rateLimiterEntry),
	}
}

func (rl *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	entry, exists := rl.limiters[ip]
	if !exists {
		perSecond := rate.Limit(float64(rl.limits.RequestsPerMinute) / 60.0)
		entry = &rateLimiterEntry{
			limiter:  rate.NewLimiter(perSecond, rl.limits.Burst),
			lastSeen: now,
		}
		rl.limiters[ip] = entry
	} else {
		entry.lastSeen = now
	}

	return entry.limiter
}

// Allow reports whether ip may make another request now.
func (rl *IPRateLimiter) Allow(ip string) bool {
	return rl.GetLimiter(ip).AllowN(rl.clock.Now(), 1)
}

func (rl *IPRateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

func (rl *IPRateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.clock.Now()
	for ip, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterMaxAge {
			delete(rl.limiters, ip)
			log.Debug().Str("ip", ip).Msg("removed stale rate limiter")
		}
	}
}

func (rl *IPRateLimiter) StartCleanup(ctx context.Context) {
	go func() {
		ticker := rl.clock.NewTicker(limiterCleanupEvery)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				rl.Cleanup()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func HTTPRateLimitMiddleware(limiter *IPRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host := ParseRemoteIP(r.RemoteAddr).String()
			if !limiter.Allow(host) {
				log.Warn().
					Str("ip", host).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Msg("HTTP rate limit exceeded")

				http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type jsonRPCError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type jsonRPCErrorResponse struct {
	ID      any          `json:"id"`
	JSONRPC string       `json:"jsonrpc"`
	Error   jsonRPCError `json:"error"`
}

func WebSocketRateLimitHandler(
	limiter *IPRateLimiter,
	handler func(*melody.Session, []byte),
) func(*melody.Session, []byte) {
	return func(session *melody.Session, msg []byte) {
		host := ParseRemoteIP(session.Request.RemoteAddr).String()
		if !limiter.Allow(host) {
			log.Warn().
				Str("ip", host).
				Int("msg_size", len(msg)).
				Msg("WebSocket rate limit exceeded")

			errorMsg, err := json.Marshal(jsonRPCErrorResponse{
				JSONRPC: "2.0",
				Error: jsonRPCError{
					Code:    -32000,
					Message: "Rate limit exceeded",
				},
			})
			if err != nil {
				log.Error().Err(err).Msg("failed to marshal rate limit error")
				return
			}
			if err := session.Write(errorMsg); err != nil {
				log.Error().Err(err).Msg("failed to send rate limit error")
			}
			return
		}

		handler(session, msg)
	}
}
