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

package broker

import (
	"context"
	"testing"
	"time"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func receive(t *testing.T, ch <-chan models.Notification) models.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "channel closed")
		return n
	case <-time.After(time.Second):
		require.FailNow(t, "timed out waiting for notification")
		return models.Notification{}
	}
}

func TestBroker_SubscribeAndUnsubscribe(t *testing.T) {
	t.Parallel()

	b := NewBroker(context.Background(), make(chan models.Notification))
	ch, id := b.Subscribe("api", 4)
	_, id2 := b.Subscribe("tray", 4)

	assert.Equal(t, 0, id)
	assert.Equal(t, 1, id2)
	assert.Equal(t, 2, b.Subscribers())

	b.Unsubscribe(id)
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 1, b.Subscribers())

	b.Unsubscribe(id)
	b.Unsubscribe(42)
}

func TestBroker_BroadcastsToAll(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	source := make(chan models.Notification, 4)
	b := NewBroker(ctx, source)
	sub1, _ := b.Subscribe("api", 4)
	sub2, _ := b.Subscribe("tray", 4)
	b.Start()

	source <- models.Notification{Method: models.NotificationSyncStarted}

	assert.Equal(t, models.NotificationSyncStarted, receive(t, sub1).Method)
	assert.Equal(t, models.NotificationSyncStarted, receive(t, sub2).Method)

	cancel()
	<-b.Done()
	_, ok := <-sub1
	assert.False(t, ok)
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification)
	b := NewBroker(context.Background(), source)
	slow, _ := b.Subscribe("slow", 2)
	fast, _ := b.Subscribe("fast", 8)
	b.Start()

	for range 5 {
		source <- models.Notification{Method: models.NotificationGameStarted}
	}
	for range 5 {
		receive(t, fast)
	}
	assert.Len(t, slow, 2)

	close(source)
	<-b.Done()
}

func TestBroker_ReplaysRetainedToNewSubscribers(t *testing.T) {
	t.Parallel()

	source := make(chan models.Notification)
	b := NewBroker(context.Background(), source)
	first, _ := b.Subscribe("first", 8)
	b.Start()

	source <- models.Notification{Method: models.NotificationGamesStatus, Params: 1}
	source <- models.Notification{Method: models.NotificationSyncStarted}
	source <- models.Notification{Method: models.NotificationGamesStatus, Params: 2}
	for range 3 {
		receive(t, first)
	}

	late, _ := b.Subscribe("late", 0)
	n := receive(t, late)
	assert.Equal(t, models.NotificationGamesStatus, n.Method)
	assert.Equal(t, 2, n.Params)
	assert.Empty(t, late)

	close(source)
	<-b.Done()
}
