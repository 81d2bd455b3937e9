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

// Package client is a minimal JSON-RPC client for the local AltCloud API,
// used by the CLI flags to talk to an already running instance.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrInvalidParams    = errors.New("invalid params")
	ErrRequestCancelled = errors.New("request cancelled")
)

const APIPath = "/api"

// RPCError is an error object returned by the server.
type RPCError struct {
	Message string
	Code    int
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

func apiURL(host string) string {
	u := url.URL{
		Scheme: "ws",
		Host:   host,
		Path:   APIPath,
	}
	return u.String()
}

func closeConn(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing websocket")
	}
}

func timeoutChan(timeout time.Duration) (<-chan time.Time, func()) {
	switch {
	case timeout == 0:
		timeout = config.APIRequestTimeout
	case timeout < 0:
		// wait forever
		return nil, func() {}
	}
	timer := time.NewTimer(timeout)
	return timer.C, func() { timer.Stop() }
}

// Call sends one request to the API at host ("127.0.0.1:7598") and returns
// the JSON encoded result.
func Call(ctx context.Context, host, method, params string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to create request id: %w", err)
	}

	req := models.RequestObject{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	switch {
	case params == "":
	case json.Valid([]byte(params)):
		req.Params = json.RawMessage(params)
	default:
		return "", ErrInvalidParams
	}

	c, _, err := websocket.DefaultDialer.DialContext(ctx, apiURL(host), nil)
	if err != nil {
		return "", fmt.Errorf("failed to connect to api: %w", err)
	}
	defer closeConn(c)

	done := make(chan struct{})
	var resp *models.ResponseObject

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("websocket read ended")
				return
			}

			var m models.ResponseObject
			if err := json.Unmarshal(message, &m); err != nil {
				continue
			}
			if m.JSONRPC != "2.0" || m.ID != id {
				continue
			}

			resp = &m
			return
		}
	}()

	if err := c.WriteJSON(req); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	timeout, stop := timeoutChan(0)
	defer stop()

	select {
	case <-done:
	case <-timeout:
		closeConn(c)
		return "", ErrRequestTimeout
	case <-ctx.Done():
		closeConn(c)
		return "", ErrRequestCancelled
	}

	if resp == nil {
		return "", ErrRequestTimeout
	}
	if resp.Error != nil {
		return "", &RPCError{Message: resp.Error.Message, Code: resp.Error.Code}
	}

	b, err := json.Marshal(resp.Result)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return string(b), nil
}

// WaitNotification blocks until the server sends a notification with the
// given method and returns its params. A zero timeout uses the default
// request timeout and a negative one waits until ctx is done.
func WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	host string,
	method string,
) (string, error) {
	c, _, err := websocket.DefaultDialer.DialContext(ctx, apiURL(host), nil)
	if err != nil {
		return "", fmt.Errorf("failed to connect to api: %w", err)
	}
	defer closeConn(c)

	done := make(chan struct{})
	var params json.RawMessage

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Debug().Err(err).Msg("websocket read ended")
				return
			}

			var m models.RequestObject
			if err := json.Unmarshal(message, &m); err != nil {
				continue
			}
			if m.JSONRPC != "2.0" || m.ID != nil || m.Method != method {
				continue
			}

			params = m.Params
			return
		}
	}()

	timerChan, stop := timeoutChan(timeout)
	defer stop()

	select {
	case <-done:
	case <-timerChan:
		closeConn(c)
		return "", ErrRequestTimeout
	case <-ctx.Done():
		closeConn(c)
		return "", ErrRequestCancelled
	}

	if params == nil {
		return "", ErrRequestTimeout
	}
	return string(params), nil
}
