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

// Package api serves the local JSON-RPC API the front-end and the tray use
// to manage games, request syncs and receive monitor notifications.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/nakomaNS/AltCloud/pkg/api/methods"
	apimiddleware "github.com/nakomaNS/AltCloud/pkg/api/middleware"
	"github.com/nakomaNS/AltCloud/pkg/api/models"
	"github.com/nakomaNS/AltCloud/pkg/api/models/requests"
	"github.com/nakomaNS/AltCloud/pkg/api/validation"
	"github.com/nakomaNS/AltCloud/pkg/config"
	"github.com/nakomaNS/AltCloud/pkg/service/broker"
	"github.com/nakomaNS/AltCloud/pkg/service/metrics"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const (
	maxRequestBytes   = 1 << 20
	sessionBufferSize = 64
	shutdownTimeout   = 5 * time.Second
	subscriptionKey   = "subscription"
)

var (
	JSONRPCErrorParseError = models.ErrorObject{
		Code:    -32700,
		Message: "Parse error",
	}
	JSONRPCErrorInvalidRequest = models.ErrorObject{
		Code:    -32600,
		Message: "Invalid Request",
	}
	JSONRPCErrorMethodNotFound = models.ErrorObject{
		Code:    -32601,
		Message: "Method not found",
	}
	JSONRPCErrorInvalidParams = models.ErrorObject{
		Code:    -32602,
		Message: "Invalid params",
	}
	JSONRPCErrorInternalError = models.ErrorObject{
		Code:    -32603,
		Message: "Internal error",
	}
	JSONRPCErrorServerError = models.ErrorObject{
		Code:    -32000,
		Message: "Server error",
	}
)

var (
	ErrMethodNotFound = errors.New("method not found")
	ErrMethodExists   = errors.New("method already registered")
)

type MethodFunc func(requests.RequestEnv) (any, error)

// MethodMap is the set of callable methods, keyed by lower-case name.
type MethodMap struct {
	methods map[string]MethodFunc
}

func NewMethodMap() *MethodMap {
	return &MethodMap{methods: make(map[string]MethodFunc)}
}

func (m *MethodMap) AddMethod(name string, fn MethodFunc) error {
	name = strings.ToLower(name)
	if _, ok := m.methods[name]; ok {
		return fmt.Errorf("%w: %s", ErrMethodExists, name)
	}
	m.methods[name] = fn
	return nil
}

func (m *MethodMap) GetMethod(name string) (MethodFunc, bool) {
	fn, ok := m.methods[strings.ToLower(name)]
	return fn, ok
}

// DefaultMethods registers every built-in method.
func DefaultMethods() *MethodMap {
	m := NewMethodMap()
	for name, fn := range map[string]MethodFunc{
		models.MethodVersion:        methods.HandleVersion,
		models.MethodGames:          methods.HandleGames,
		models.MethodGamesAdd:       methods.HandleGamesAdd,
		models.MethodGamesUpdate:    methods.HandleGamesUpdate,
		models.MethodGamesDelete:    methods.HandleGamesDelete,
		models.MethodGamesFavorite:  methods.HandleGamesFavorite,
		models.MethodGamesSync:      methods.HandleGamesSync,
		models.MethodGamesStatus:    methods.HandleGamesStatus,
		models.MethodSaves:          methods.HandleSaves,
		models.MethodSavesRemote:    methods.HandleSavesRemote,
		models.MethodSavesDelete:    methods.HandleSavesDelete,
		models.MethodSettings:       methods.HandleSettings,
		models.MethodSettingsUpdate: methods.HandleSettingsUpdate,
		models.MethodCatalogSearch:  methods.HandleCatalogSearch,
		models.MethodHistory:        methods.HandleHistory,
	} {
		_ = m.AddMethod(name, fn)
	}
	return m
}

// errorObject maps a method error to its JSON-RPC error. Parameter
// problems keep their message so the front-end can show it.
func errorObject(err error) models.ErrorObject {
	switch {
	case errors.Is(err, ErrMethodNotFound):
		return JSONRPCErrorMethodNotFound
	case errors.Is(err, validation.ErrMissingParams), errors.Is(err, validation.ErrInvalidParams):
		return models.ErrorObject{Code: JSONRPCErrorInvalidParams.Code, Message: err.Error()}
	default:
		return models.ErrorObject{Code: JSONRPCErrorServerError.Code, Message: err.Error()}
	}
}

type notificationObject struct {
	Params  any    `json:"params,omitempty"`
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
}

// Server holds everything the API needs between requests. Env is copied
// for every request and filled in with the request specifics.
type Server struct {
	ctx     context.Context
	env     requests.RequestEnv
	cfg     *config.Instance
	broker  *broker.Broker
	methods *MethodMap
	melody  *melody.Melody
	limiter *apimiddleware.IPRateLimiter
	filter  *apimiddleware.IPFilter
}

// NewServer builds the API. b may be nil, in which case no notifications
// are pushed to clients.
//
//nolint:gocritic // env is a template copied per request
func NewServer(
	ctx context.Context,
	cfg *config.Instance,
	env requests.RequestEnv,
	b *broker.Broker,
	mm *MethodMap,
) *Server {
	if mm == nil {
		mm = DefaultMethods()
	}
	env.Config = cfg
	s := &Server{
		ctx:     ctx,
		env:     env,
		cfg:     cfg,
		broker:  b,
		methods: mm,
		melody:  melody.New(),
		limiter: apimiddleware.NewIPRateLimiter(nil, apimiddleware.DefaultLimits),
		filter:  apimiddleware.NewIPFilter(cfg.AllowedIPs()),
	}

	s.melody.Config.MaxMessageSize = maxRequestBytes
	s.melody.Upgrader.CheckOrigin = s.checkOrigin
	s.melody.HandleConnect(s.handleConnect)
	s.melody.HandleDisconnect(s.handleDisconnect)
	s.melody.HandleMessage(apimiddleware.WebSocketRateLimitHandler(s.limiter, s.handleWSMessage))

	return s
}

// checkOrigin admits non-browser clients and the configured front-end
// origins. Loopback origins are always allowed.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.allowedOrigins() {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	log.Warn().Str("origin", origin).Msg("rejected websocket origin")
	return false
}

func (s *Server) allowedOrigins() []string {
	return append([]string{
		"http://localhost", "http://127.0.0.1", "app://.", "file://",
	}, s.cfg.AllowedOrigins()...)
}

func (s *Server) handleConnect(session *melody.Session) {
	log.Debug().Str("addr", session.Request.RemoteAddr).Msg("api client connected")
	if s.broker == nil {
		return
	}
	ch, id := s.broker.Subscribe("ws:"+session.Request.RemoteAddr, sessionBufferSize)
	session.Set(subscriptionKey, id)
	go pumpNotifications(session, ch)
}

func (s *Server) handleDisconnect(session *melody.Session) {
	log.Debug().Str("addr", session.Request.RemoteAddr).Msg("api client disconnected")
	if s.broker == nil {
		return
	}
	if id, ok := session.Get(subscriptionKey); ok {
		if subID, ok := id.(int); ok {
			s.broker.Unsubscribe(subID)
		}
	}
}

// pumpNotifications forwards one subscription to one session until the
// subscription is closed.
func pumpNotifications(session *melody.Session, ch <-chan models.Notification) {
	for n := range ch {
		data, err := json.Marshal(notificationObject{
			JSONRPC: "2.0",
			Method:  n.Method,
			Params:  n.Params,
		})
		if err != nil {
			log.Error().Err(err).Str("method", n.Method).Msg("marshalling notification")
			continue
		}
		if session.IsClosed() {
			continue
		}
		if err := session.Write(data); err != nil {
			log.Debug().Err(err).Msg("writing notification")
		}
	}
}

// handleRequest runs one request and returns either a result or an error
// object. ok is false for notifications, which get no reply.
func (s *Server) handleRequest(
	ctx context.Context,
	remoteAddr string,
	req *models.RequestObject,
) (result any, errObj *models.ErrorObject, ok bool) {
	if req.JSONRPC != "2.0" {
		log.Warn().Str("jsonrpc", req.JSONRPC).Msg("unsupported payload version")
		e := JSONRPCErrorInvalidRequest
		return nil, &e, true
	}
	if req.Method == "" {
		e := JSONRPCErrorInvalidRequest
		return nil, &e, true
	}
	if req.ID == nil {
		log.Info().Str("method", req.Method).Msg("received notification, ignoring")
		return nil, nil, false
	}

	log.Debug().Str("method", req.Method).Str("id", req.ID.String()).Msg("received request")

	fn, found := s.methods.GetMethod(req.Method)
	if !found {
		e := errorObject(fmt.Errorf("%w: %s", ErrMethodNotFound, req.Method))
		return nil, &e, true
	}

	reqCtx, cancel := context.WithTimeout(ctx, config.APIRequestTimeout)
	defer cancel()

	env := s.env
	env.Context = reqCtx
	env.ID = *req.ID
	env.Params = req.Params
	env.IsLocal = apimiddleware.IsLoopbackAddr(remoteAddr)

	resp, err := s.safeCall(fn, env)
	if err != nil {
		log.Warn().Err(err).Str("method", req.Method).Msg("method failed")
		e := errorObject(err)
		return nil, &e, true
	}
	return resp, nil, true
}

//nolint:gocritic // env is passed by value to the handler
func (*Server) safeCall(fn MethodFunc, env requests.RequestEnv) (resp any, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("method panicked")
			err = errors.New(JSONRPCErrorInternalError.Message)
		}
	}()
	return fn(env)
}

func marshalResponse(id uuid.UUID, result any, errObj *models.ErrorObject) ([]byte, error) {
	resp := models.ResponseObject{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
		Error:   errObj,
	}
	data, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("error marshalling response: %w", err)
	}
	return data, nil
}

func requestID(req *models.RequestObject) uuid.UUID {
	if req.ID == nil {
		return uuid.Nil
	}
	return *req.ID
}

// process decodes and runs one message. reply is nil when nothing should
// be sent back.
func (s *Server) process(ctx context.Context, remoteAddr string, msg []byte) []byte {
	var req models.RequestObject
	if !json.Valid(msg) || json.Unmarshal(msg, &req) != nil {
		data, err := marshalResponse(uuid.Nil, nil, &JSONRPCErrorParseError)
		if err != nil {
			log.Error().Err(err).Msg("error sending parse error")
			return nil
		}
		return data
	}

	result, errObj, ok := s.handleRequest(ctx, remoteAddr, &req)
	if !ok {
		return nil
	}
	data, err := marshalResponse(requestID(&req), result, errObj)
	if err != nil {
		log.Error().Err(err).Msg("error sending response")
		fallback, _ := marshalResponse(requestID(&req), nil, &JSONRPCErrorInternalError)
		return fallback
	}
	return data
}

func (s *Server) handleWSMessage(session *melody.Session, msg []byte) {
	// heartbeat
	if string(msg) == "ping" {
		if err := session.Write([]byte("pong")); err != nil {
			log.Error().Err(err).Msg("sending pong")
		}
		return
	}

	reply := s.process(s.ctx, session.Request.RemoteAddr, msg)
	if reply == nil {
		return
	}
	if err := session.Write(reply); err != nil {
		log.Error().Err(err).Msg("error sending response")
	}
}

// handlePost serves a single JSON-RPC request over HTTP. JSON-RPC errors
// are still HTTP 200.
func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		http.Error(w, "Unsupported Media Type", http.StatusUnsupportedMediaType)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes+1))
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if len(body) > maxRequestBytes {
		http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
		return
	}

	reply := s.process(r.Context(), r.RemoteAddr, body)
	if reply == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(reply); err != nil {
		log.Debug().Err(err).Msg("error writing response")
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(apimiddleware.HTTPIPFilterMiddleware(s.filter))
	r.Use(apimiddleware.HTTPRateLimitMiddleware(s.limiter))
	r.Use(chimiddleware.NoCache)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api", func(w http.ResponseWriter, r *http.Request) {
		if err := s.melody.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})
	r.With(chimiddleware.Timeout(config.APIRequestTimeout)).Post("/api", s.handlePost)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())

	return r
}

// Serve runs the API on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.limiter.StartCleanup(ctx)

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	log.Info().Str("addr", ln.Addr().String()).Msg("api server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := s.melody.Close(); err != nil {
		log.Debug().Err(err).Msg("closing websocket sessions")
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("api server shutdown: %w", err)
	}
	log.Info().Msg("api server stopped")
	return nil
}

// Start listens on the configured loopback address and serves until ctx is
// cancelled.
//
//nolint:gocritic // env is a template copied per request
func Start(
	ctx context.Context,
	cfg *config.Instance,
	env requests.RequestEnv,
	b *broker.Broker,
) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", cfg.APIListen())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.APIListen(), err)
	}
	return NewServer(ctx, cfg, env, b, nil).Serve(ctx, ln)
}
