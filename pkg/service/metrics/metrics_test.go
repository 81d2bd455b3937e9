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

package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndRecord(t *testing.T) {
	require.NoError(t, Register(prometheus.DefaultRegisterer))
	require.NoError(t, Register(prometheus.DefaultRegisterer))

	before := testutil.ToFloat64(syncJobs.WithLabelValues("--sync-now", "manual", "failure"))
	ObserveSync("--sync-now", "manual", false, 1.5)
	after := testutil.ToFloat64(syncJobs.WithLabelValues("--sync-now", "manual", "failure"))
	assert.InDelta(t, 1, after-before, 0.0001)

	SetGames(3, 1)
	assert.InDelta(t, 3, testutil.ToFloat64(gamesRegistered), 0.0001)
	assert.InDelta(t, 1, testutil.ToFloat64(gamesRunning), 0.0001)

	IncSnapshotFailure()
	IncTransition(true)
	IncQueued()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "altcloud_sync_jobs_total"))
}
