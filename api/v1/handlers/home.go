package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/metrics"
	"github.com/pooplog/backend/api/v1/middleware"
	"github.com/pooplog/backend/api/v1/models"
	"github.com/pooplog/backend/api/v1/visibility"
)

type HomeHandler struct {
	DB *sql.DB
}

func NewHomeHandler(db *sql.DB) *HomeHandler {
	return &HomeHandler{DB: db}
}

// Dashboard serves the data behind the landing page: the accounts the viewer
// may browse, the selected user's full history and the last-entry label.
// Anonymous visitors get the public accounts and the default user's history.
func (h *HomeHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	viewer, _ := middleware.GetUserFromContext(r.Context())

	// A user_id query param is honored verbatim when present
	var requested int64
	if idStr := r.URL.Query().Get("user_id"); idStr != "" {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			requested = id
		}
	}
	selectedUserID := visibility.TargetUserID(requested, viewer)

	users, err := visibility.ViewableUsers(r.Context(), h.DB, viewer)
	if err != nil {
		SendError(w, "Could not load data", http.StatusInternalServerError)
		return
	}

	entries, err := database.GetEntries(r.Context(), h.DB, selectedUserID)
	if err != nil {
		SendError(w, "Could not load data", http.StatusInternalServerError)
		return
	}

	logs := make([]models.EntryResponse, 0, len(entries))
	for _, e := range entries {
		logs = append(logs, models.EntryResponse{
			ID:      e.ID,
			UserID:  e.UserID,
			LogTime: e.LogTime.Format(models.LogTimeLayout),
		})
	}

	lastEntry := ""
	if len(entries) > 0 {
		lastEntry = metrics.LastEntryLabel(entries[0].LogTime, time.Now())
	}

	if users == nil {
		users = []models.PublicUser{}
	}

	response := map[string]interface{}{
		"users":            users,
		"logs":             logs,
		"selected_user_id": selectedUserID,
		"logged_in":        viewer != nil,
	}
	if lastEntry != "" {
		response["last_entry"] = lastEntry
	}

	json.NewEncoder(w).Encode(response)
}
