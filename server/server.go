/*
 *  Copyright 2025 qitoi
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

// Package server exposes the agent over HTTP: the platform dispatches
// do-task actions to it, plus health and metrics endpoints.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/harvest"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/host"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/metrics"
	"github.com/bmatt974/OpenServ-DeFAI-Assistant-on-Steroids/storage"
)

// StoreFactory picks the artifact store for one task's file-mode
// deliveries.
type StoreFactory func(ref host.TaskRef) storage.ArtifactStore

type Server struct {
	runner *harvest.Runner
	stores StoreFactory
	logger *zap.SugaredLogger
}

func New(runner *harvest.Runner, stores StoreFactory, logger *zap.SugaredLogger) *Server {
	return &Server{
		runner: runner,
		stores: stores,
		logger: logger,
	}
}

type doTaskAction struct {
	Type      string `json:"type"`
	Workspace struct {
		ID int64 `json:"id"`
	} `json:"workspace"`
	Task struct {
		ID int64 `json:"id"`
	} `json:"task"`
	Input harvest.RunInput `json:"input"`
}

type actionResponse struct {
	Summary string `json:"summary"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/actions/do-task", s.handleDoTask)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func (s *Server) ListenAndServe(addr string) error {
	s.logger.Infow("agent server listening", "address", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleDoTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var action doTaskAction
	if err := json.NewDecoder(r.Body).Decode(&action); err != nil {
		http.Error(w, "invalid action payload", http.StatusBadRequest)
		return
	}
	if action.Type != "do-task" {
		http.Error(w, "unsupported action type", http.StatusBadRequest)
		return
	}

	ref := host.TaskRef{
		WorkspaceID: action.Workspace.ID,
		TaskID:      action.Task.ID,
	}
	s.logger.Infow("do-task action received", "workspace", ref.WorkspaceID, "task", ref.TaskID)

	result, err := s.runner.Run(r.Context(), ref, action.Input, s.stores(ref))

	resp := actionResponse{Summary: result.Summary}
	if err != nil {
		// Fatal run errors already marked the task; the response still
		// carries the summary for the dispatcher.
		resp.Error = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil && !errors.Is(err, http.ErrHandlerTimeout) {
		s.logger.Warnw("write action response", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.logger.Debugw("health check access", "uri", r.RequestURI, "remote_addr", r.RemoteAddr)
	w.WriteHeader(http.StatusOK)
}
