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

// Package broker fans the monitor's notifications out to the API clients
// and the tray without letting a slow reader stall the monitor.
package broker

import (
	"context"

	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// retained methods are replayed to new subscribers so they start with the
// current picture instead of waiting for the next change.
var retained = map[string]bool{
	models.NotificationGamesStatus:  true,
	models.NotificationGamesChanged: true,
}

type subscriber struct {
	ch   chan models.Notification
	name string
}

type Broker struct {
	ctx         context.Context
	source      <-chan models.Notification
	subscribers map[int]subscriber
	last        map[string]models.Notification
	done        chan struct{}
	mu          syncutil.RWMutex
	nextID      int
}

func NewBroker(ctx context.Context, source <-chan models.Notification) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]subscriber),
		last:        make(map[string]models.Notification),
		done:        make(chan struct{}),
	}
}

// Start runs the broadcast loop until the source closes or the context is
// cancelled, then closes every subscriber channel.
func (b *Broker) Start() {
	go func() {
		defer close(b.done)
		defer b.closeAll()
		for {
			select {
			case n, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source closed")
					return
				}
				b.broadcast(n)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled")
				return
			}
		}
	}()
}

// Done is closed once the broadcast loop has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

func (b *Broker) broadcast(n models.Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if retained[n.Method] {
		b.last[n.Method] = n
	}
	for id, sub := range b.subscribers {
		select {
		case sub.ch <- n:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("subscriber", sub.name).
				Str("method", n.Method).
				Msg("subscriber channel full, dropping notification")
		}
	}
}

// Subscribe registers a named reader. The returned channel first receives
// the latest retained notifications, then everything broadcast afterwards.
func (b *Broker) Subscribe(name string, bufferSize int) (notifications <-chan models.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if bufferSize < len(retained) {
		bufferSize = len(retained)
	}
	ch := make(chan models.Notification, bufferSize)
	for _, method := range []string{models.NotificationGamesChanged, models.NotificationGamesStatus} {
		if n, ok := b.last[method]; ok {
			ch <- n
		}
	}

	id = b.nextID
	b.nextID++
	b.subscribers[id] = subscriber{name: name, ch: ch}
	log.Debug().Int("subscriber_id", id).Str("subscriber", name).Msg("subscriber registered")

	return ch, id
}

// Unsubscribe closes the subscriber's channel. Unknown ids are ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(sub.ch)
		log.Debug().Int("subscriber_id", id).Str("subscriber", sub.name).Msg("subscriber removed")
	}
}

// Subscribers is the number of open subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		close(sub.ch)
	}
	b.subscribers = make(map[int]subscriber)
}
