package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/equitas/internal/common"
)

// StatusHandler handles HTTP requests for application status
type StatusHandler struct {
	provider  string
	startedAt time.Time
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(provider string) *StatusHandler {
	return &StatusHandler{
		provider:  provider,
		startedAt: time.Now(),
	}
}

type statusResponse struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Build     string           `json:"build"`
	GitCommit string           `json:"git_commit"`
	Provider  string           `json:"llm_provider"`
	Uptime    string           `json:"uptime"`
	Tasks     common.TaskStats `json:"background_tasks"`
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	info := common.GetVersionInfo()
	WriteJSON(w, http.StatusOK, statusResponse{
		Status:    "ok",
		Version:   info.Version,
		Build:     info.Build,
		GitCommit: info.GitCommit,
		Provider:  h.provider,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Tasks:     common.BackgroundTaskStats(),
	})
}

// NotFoundHandler handles unmatched API routes
func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, "Not found")
}
