// Package api provides the HTTP API for observing the colony.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (admin control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/apiary/internal/bees"
	"github.com/talgya/apiary/internal/comb"
	"github.com/talgya/apiary/internal/engine"
	"github.com/talgya/apiary/internal/hive"
	"github.com/talgya/apiary/internal/persistence"
)

// Server serves the colony state over HTTP.
type Server struct {
	Hive     *hive.Hive
	Eng      *engine.Engine
	DB       *persistence.DB
	RunID    string
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Snapshots hit the database hard; keep them infrequent.
	snapshotLimiter := NewRateLimiter(12, time.Hour)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check on the hive).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/stats", s.handleStats)
	mux.HandleFunc("/api/v1/cells", s.handleCells)
	mux.HandleFunc("/api/v1/bees", s.handleBees)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(RateLimitMiddleware(snapshotLimiter, s.handleSnapshot)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no HIVESIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Hive.CollectStats()

	simDur := time.Duration(stats.SimTime * float64(time.Second))
	status := map[string]any{
		"name":        "Apiary",
		"run_id":      s.RunID,
		"sim_time":    stats.SimTime,
		"sim_elapsed": simDur.Round(time.Second).String(),
		"date":        stats.Date,
		"season":      stats.Season,
		"speed":       s.Eng.Speed(),
		"frames":      humanize.Comma(int64(s.Eng.Frames())),
		"population":  stats.Population,
		"queen_alive": stats.Queen != nil,
		"temperature": fmt.Sprintf("%.1f°C", stats.Temperature),
		"activity":    stats.Activity,
	}
	writeJSON(w, status)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Hive.CollectStats())
}

func (s *Server) handleCells(w http.ResponseWriter, r *http.Request) {
	type cellEntry struct {
		Q        int     `json:"q"`
		R        int     `json:"r"`
		State    string  `json:"state"`
		Content  float64 `json:"content,omitempty"`
		Dirty    bool    `json:"dirty,omitempty"`
		DeadBees int     `json:"dead_bees,omitempty"`
	}

	snap := s.Hive.Export()
	cells := make([]cellEntry, 0, len(snap.Cells))
	for _, c := range snap.Cells {
		cells = append(cells, cellEntry{
			Q:        c.Q,
			R:        c.R,
			State:    comb.StateName(c.State),
			Content:  c.ContentAmount,
			Dirty:    c.Dirty,
			DeadBees: c.DeadBees,
		})
	}

	writeJSON(w, map[string]any{
		"columns": snap.Config.Columns,
		"rows":    snap.Config.Rows,
		"cells":   cells,
	})
}

func (s *Server) handleBees(w http.ResponseWriter, r *http.Request) {
	type beeEntry struct {
		ID      uint64  `json:"id"`
		Kind    string  `json:"kind"`
		Q       int     `json:"q"`
		R       int     `json:"r"`
		AgePct  float64 `json:"age_pct"`
		Task    string  `json:"task"`
		Outside bool    `json:"outside,omitempty"`
	}

	snap := s.Hive.Export()
	result := make([]beeEntry, 0, len(snap.Bees))
	for _, b := range snap.Bees {
		agePct := 0.0
		if b.MaxAge > 0 {
			agePct = b.Age / b.MaxAge
		}
		result = append(result, beeEntry{
			ID:      b.ID,
			Kind:    bees.KindName(b.Kind),
			Q:       b.Q,
			R:       b.R,
			AgePct:  agePct,
			Task:    bees.TaskName(b.Task),
			Outside: b.Outside,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	events := s.Hive.Events(limit)

	// Optional category filter.
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []hive.Event
		for _, e := range events {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		events = filtered
	}

	writeJSON(w, events)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Eng.SetSpeed(req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Eng.Speed()})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	snap := s.Hive.Export()
	if err := s.DB.SaveSnapshot(snap); err != nil {
		slog.Error("snapshot save failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	if err := s.DB.SaveEvents(s.Hive.Events(0)); err != nil {
		slog.Error("event save failed", "error", err)
	}

	writeJSON(w, map[string]any{
		"saved": true,
		"cells": len(snap.Cells),
		"bees":  len(snap.Bees),
	})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
