package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/middleware"
	"github.com/pooplog/backend/api/v1/models"
)

// flashTimeLayout is the format used in user-facing success messages.
const flashTimeLayout = "02/01/2006 15:04"

type EntryHandler struct {
	DB *sql.DB
}

func NewEntryHandler(db *sql.DB) *EntryHandler {
	return &EntryHandler{DB: db}
}

// Form answers the browser GET on /private/poop with the logged-in user.
func (h *EntryHandler) Form(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"user": models.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Config:   user.Config,
		},
	})
}

// Create appends one entry for the logged-in user. The log time comes from
// the form and may be any instant.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	logTime, err := time.ParseInLocation(models.UserTimeLayout, r.FormValue("user_time"), time.Local)
	if err != nil {
		SendError(w, "Invalid date format. Use YYYY-MM-DDTHH:MM", http.StatusBadRequest)
		return
	}

	entryID, err := database.CreateEntry(r.Context(), h.DB, user.ID, logTime)
	if err != nil {
		if errors.Is(err, database.ErrDatabaseError) {
			SendError(w, "Hi ha hagut un problema amb la base de dades", http.StatusInternalServerError)
			return
		}
		SendError(w, "Failed to create entry", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": fmt.Sprintf("Èxit! Registre afegit correctament: %s", logTime.Format(flashTimeLayout)),
		"id":      entryID,
	})
}
