package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/metrics"
	"github.com/pooplog/backend/api/v1/models"
	"github.com/pooplog/backend/api/v1/visibility"
	"golang.org/x/crypto/bcrypt"
)

// APIHandler serves the mobile API. Every route authenticates from email and
// password in the JSON body; there is no session state.
type APIHandler struct {
	DB *sql.DB
}

func NewAPIHandler(db *sql.DB) *APIHandler {
	return &APIHandler{DB: db}
}

// authenticate verifies body credentials and writes the error response
// itself on failure. Both unknown email and wrong password produce the same
// 401.
func (h *APIHandler) authenticate(w http.ResponseWriter, r *http.Request, email, password string) (*database.UserWithPassword, bool) {
	if email == "" || password == "" {
		SendError(w, "email and password are required", http.StatusBadRequest)
		return nil, false
	}

	user, err := database.GetUserByEmail(r.Context(), h.DB, email)
	if err != nil {
		if database.IsUserNotFoundError(err) {
			time.Sleep(authFailureDelay)
			SendError(w, "Invalid email or password", http.StatusUnauthorized)
			return nil, false
		}
		SendError(w, "Authentication failed", http.StatusInternalServerError)
		return nil, false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		time.Sleep(authFailureDelay)
		SendError(w, "Invalid email or password", http.StatusUnauthorized)
		return nil, false
	}

	return user, true
}

// Login validates credentials and returns the user profile.
func (h *APIHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, ok := h.authenticate(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"user": models.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Config:   user.Config,
		},
	})
}

// Register creates an account from a JSON body.
func (h *APIHandler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "JSON body required", http.StatusBadRequest)
		return
	}

	createAccount(w, r, h.DB, &req, "Account created successfully")
}

// CreateEntry appends one entry for the credentialed user.
func (h *APIHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		models.LoginRequest
		UserTime string `json:"user_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" || req.UserTime == "" {
		SendError(w, "email, password, and user_time are required", http.StatusBadRequest)
		return
	}

	// Validate the date before touching credentials or the store
	logTime, err := time.ParseInLocation(models.UserTimeLayout, req.UserTime, time.Local)
	if err != nil {
		SendError(w, "Invalid date format. Use YYYY-MM-DDTHH:MM", http.StatusBadRequest)
		return
	}

	user, ok := h.authenticate(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	if _, err := database.CreateEntry(r.Context(), h.DB, user.ID, logTime); err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	formatted := logTime.Format(flashTimeLayout)
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    "success",
		"message":   fmt.Sprintf("Registre afegit correctament: %s", formatted),
		"timestamp": formatted,
		"user_id":   user.ID,
	})
}

// Home returns the dashboard data: viewable users, the selected user's logs
// and the last-entry label. view_user_id is honored verbatim when present.
func (h *APIHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		models.LoginRequest
		ViewUserID int64 `json:"view_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, ok := h.authenticate(w, r, req.Email, req.Password)
	if !ok {
		return
	}
	viewer := &user.User

	selectedUserID := visibility.TargetUserID(req.ViewUserID, viewer)

	users, err := visibility.ViewableUsers(r.Context(), h.DB, viewer)
	if err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.PublicUser{}
	}

	entries, err := database.GetEntries(r.Context(), h.DB, selectedUserID)
	if err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
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

	response := map[string]interface{}{
		"status":           "success",
		"users":            users,
		"selected_user_id": selectedUserID,
		"logs":             logs,
	}
	if len(entries) > 0 {
		response["last_entry"] = metrics.LastEntryLabel(entries[0].LogTime, time.Now())
	}

	json.NewEncoder(w).Encode(response)
}

// Metrics returns the trailing-week aggregates plus the last entry, both as
// a relative label and as the raw instant.
func (h *APIHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, ok := h.authenticate(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	entries, err := database.GetEntries(r.Context(), h.DB, user.ID)
	if err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	summary := metrics.Summarize(entries, time.Now())

	breakdown := summary.DailyBreakdown
	if breakdown == nil {
		breakdown = []metrics.DailyCount{}
	}

	response := map[string]interface{}{
		"status":            "success",
		"user_id":           user.ID,
		"username":          user.Username,
		"total_last_7_days": summary.TotalLast7Days,
		"average_per_day":   summary.AveragePerDay,
		"daily_breakdown":   breakdown,
	}
	if summary.LastEntryLabel != "" {
		response["last_entry"] = summary.LastEntryLabel
		response["last_entry_time"] = entries[0].LogTime.Format(models.LogTimeLayout)
	}

	json.NewEncoder(w).Encode(response)
}

// GetPrivacy returns the credentialed user's visibility flag.
func (h *APIHandler) GetPrivacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, ok := h.authenticate(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"privacy": privacyString(user.Config.Public),
	})
}

// UpdatePrivacy writes the credentialed user's visibility flag.
func (h *APIHandler) UpdatePrivacy(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		models.LoginRequest
		Privacy string `json:"privacy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, ok := h.authenticate(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	if req.Privacy != "public" && req.Privacy != "private" {
		SendError(w, `privacy must be "public" or "private"`, http.StatusBadRequest)
		return
	}

	if err := database.UpdateUserPrivacy(r.Context(), h.DB, user.ID, req.Privacy == "public"); err != nil {
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"privacy": req.Privacy,
	})
}

// DeleteEntry removes one entry by id; only the owner's rows match. A miss
// is a 404 whether the row is absent or owned by somebody else.
func (h *APIHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req struct {
		models.LoginRequest
		EntryID int64 `json:"entry_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}

	user, ok := h.authenticate(w, r, req.Email, req.Password)
	if !ok {
		return
	}

	if req.EntryID == 0 {
		SendError(w, "entry_id is required", http.StatusBadRequest)
		return
	}

	err := database.DeleteEntry(r.Context(), h.DB, req.EntryID, user.ID)
	if err != nil {
		if database.IsEntryNotFoundError(err) {
			SendError(w, "Entry not found or not owned by user", http.StatusNotFound)
			return
		}
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "Entry deleted",
	})
}
