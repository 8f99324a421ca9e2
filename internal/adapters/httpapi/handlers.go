package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/campoos/backend-lixeira-app/internal/core"
	"go.uber.org/zap"
)

type historyBody struct {
	Success bool                `json:"success"`
	Count   int                 `json:"count"`
	Data    []core.HistoryEntry `json:"data"`
}

type deviceStatusBody struct {
	Success bool `json:"success"`
	*core.DeviceStatus
}

type pingBody struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type lastActionBody struct {
	Success    bool       `json:"success"`
	Action     string     `json:"action"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	AnalysisID *int64     `json:"analysisId,omitempty"`
	Message    string     `json:"message,omitempty"`
}

type healthBody struct {
	Status      string            `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment"`
	Checks      map[string]string `json:"checks"`
}

// POST /api/analyze (multipart field "image")
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFrom(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	image, err := readImage(w, r, s.cfg.MaxUploadBytes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	decision, err := s.pipeline.Process(r.Context(), &core.AnalysisRequest{Image: image, UserID: userID})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, decision)
}

// GET /api/history?limit=N
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := parseHistoryLimit(r.URL.Query().Get("limit"))

	entries, err := s.pipeline.History(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, historyBody{Success: true, Count: len(entries), Data: entries})
}

// parseHistoryLimit reads the leading integer of raw ("20abc" is 20, "5.5"
// is 5). Values too large to represent clamp to MaxHistoryLimit; anything
// without leading digits falls back to DefaultHistoryLimit.
func parseHistoryLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	end := 0
	if end < len(raw) && (raw[end] == '+' || raw[end] == '-') {
		end++
	}
	digits := end
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	if end == digits {
		return core.DefaultHistoryLimit
	}

	n, err := strconv.ParseInt(raw[:end], 10, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange && raw[0] != '-' {
			return core.MaxHistoryLimit
		}
		return core.DefaultHistoryLimit
	}
	switch {
	case n <= 0:
		return core.DefaultHistoryLimit
	case n > core.MaxHistoryLimit:
		return core.MaxHistoryLimit
	}
	return int(n)
}

// GET /api/device/status
func (s *Server) handleDeviceStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.devices.Status(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deviceStatusBody{Success: true, DeviceStatus: status})
}

// POST /api/device/ping
func (s *Server) handleDevicePing(w http.ResponseWriter, r *http.Request) {
	var req core.PingRequest
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.writeError(w, r, core.NewValidationError(fmt.Errorf("invalid ping body: %w", err)))
		return
	}

	status, err := s.devices.Ping(r.Context(), &req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pingBody{Success: true, Message: "ping received", Timestamp: status.UpdatedAt})
}

// GET /api/device/last-action
func (s *Server) handleLastAction(w http.ResponseWriter, r *http.Request) {
	rec, err := s.devices.LastAction(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rec == nil {
		writeJSON(w, http.StatusOK, lastActionBody{Success: true, Action: "NONE", Message: "no action recorded"})
		return
	}
	writeJSON(w, http.StatusOK, lastActionBody{
		Success:    true,
		Action:     string(rec.Action),
		Timestamp:  &rec.Timestamp,
		AnalysisID: &rec.AnalysisID,
	})
}

// GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := healthBody{
		Status:      "ok",
		Timestamp:   s.now(),
		Environment: s.environment,
		Checks:      map[string]string{"database": "up"},
	}
	status := http.StatusOK
	if err := s.health.Ping(r.Context()); err != nil {
		s.logger.Warn("Health check failed", zap.Error(err))
		body.Status = "degraded"
		body.Checks["database"] = "down"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, body)
}
