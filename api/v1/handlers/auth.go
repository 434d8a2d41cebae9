package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/middleware"
	"github.com/pooplog/backend/api/v1/models"
	"golang.org/x/crypto/bcrypt"
)

// authFailureDelay blunts timing probes against the login endpoints.
const authFailureDelay = 100 * time.Millisecond

const minPasswordLength = 6

type AuthHandler struct {
	DB       *sql.DB
	Sessions *middleware.SessionManager
}

func NewAuthHandler(db *sql.DB, sessions *middleware.SessionManager) *AuthHandler {
	return &AuthHandler{
		DB:       db,
		Sessions: sessions,
	}
}

// LoginForm answers the browser GET. The HTML lives in the frontend; this
// just reports whether a session is already active.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	_, loggedIn := middleware.GetUserFromContext(r.Context())
	json.NewEncoder(w).Encode(map[string]interface{}{
		"logged_in": loggedIn,
		"message":   "POST email and password to log in",
	})
}

// Login verifies form credentials and sets the session cookie.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	email := r.FormValue("email")
	password := r.FormValue("password")

	if strings.TrimSpace(email) == "" || password == "" {
		SendError(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := database.GetUserByEmail(r.Context(), h.DB, email)
	if err != nil {
		if database.IsUserNotFoundError(err) {
			// Same response shape as a wrong password; don't reveal which failed
			time.Sleep(authFailureDelay)
			SendError(w, "Correu electrònic o contrasenya incorrectes", http.StatusUnauthorized)
			return
		}
		SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		time.Sleep(authFailureDelay)
		SendError(w, "Correu electrònic o contrasenya incorrectes", http.StatusUnauthorized)
		return
	}

	token, err := h.Sessions.IssueToken(&user.User)
	if err != nil {
		SendError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}
	h.Sessions.SetSessionCookie(w, token)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "Has iniciat sessió correctament!",
		"user": models.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Config:   user.Config,
		},
	})
}

// RegisterForm answers the browser GET for the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "POST username, email, password, confirm_password and privacy to register",
	})
}

// Register creates an account from the browser form.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	req := models.RegisterRequest{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
		Privacy:         r.FormValue("privacy"),
	}

	createAccount(w, r, h.DB, &req, "Account created successfully! Please log in.")
}

// createAccount is shared between the form and JSON registration surfaces.
func createAccount(w http.ResponseWriter, r *http.Request, db *sql.DB, req *models.RegisterRequest, successMessage string) {
	if err := validateRegistration(req); err != nil {
		SendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		SendError(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user := &database.UserWithPassword{
		User: models.User{
			Username: strings.TrimSpace(req.Username),
			Email:    strings.TrimSpace(req.Email),
			Config:   models.UserConfig{Public: req.Privacy == "public"},
		},
		PasswordHash: string(hashedPassword),
	}

	err = database.CreateUser(r.Context(), db, user)
	if err != nil {
		if database.IsEmailExistsError(err) {
			SendError(w, "Email already exists", http.StatusConflict)
			return
		}
		if errors.Is(err, database.ErrDatabaseError) {
			SendError(w, "Unable to process request at this time", http.StatusInternalServerError)
			return
		}
		SendError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": successMessage,
		"user": models.UserResponse{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Config:   user.Config,
		},
	})
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.Sessions.ClearSessionCookie(w)

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "success",
		"message": "You have been logged out.",
	})
}

// validateRegistration checks the registration input before any store access.
func validateRegistration(req *models.RegisterRequest) error {
	if strings.TrimSpace(req.Username) == "" ||
		strings.TrimSpace(req.Email) == "" ||
		req.Password == "" {
		return errors.New("Username, email and password are required")
	}

	if req.Password != req.ConfirmPassword {
		return errors.New("Passwords do not match")
	}

	if len(req.Password) < minPasswordLength {
		return errors.New("Password must be at least 6 characters")
	}

	return nil
}
