package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/middleware"
)

// UserHandler serves the logged-in user's own settings.
type UserHandler struct {
	DB *sql.DB
}

func NewUserHandler(db *sql.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// Privacy returns the current visibility flag.
func (h *UserHandler) Privacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	public, err := database.GetUserPrivacy(r.Context(), h.DB, user.ID)
	if err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"privacy": privacyString(public),
	})
}

// UpdatePrivacy flips the visibility flag for the logged-in user only.
func (h *UserHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		SendError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	newPrivacy := r.FormValue("privacy")
	if newPrivacy != "public" && newPrivacy != "private" {
		SendError(w, "Configuració de privacitat no vàlida.", http.StatusBadRequest)
		return
	}

	err := database.UpdateUserPrivacy(r.Context(), h.DB, user.ID, newPrivacy == "public")
	if err != nil {
		SendError(w, "Hi ha hagut un problema actualitzant la configuració de privacitat.", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "La configuració de privacitat s'ha actualitzat correctament.",
		"privacy": newPrivacy,
	})
}

func privacyString(public bool) string {
	if public {
		return "public"
	}
	return "private"
}
