package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/models"
)

type contextKey string

const UserContextKey contextKey = "user"

// SessionCookieName is the cookie browser clients carry between requests.
const SessionCookieName = "session"

const sessionLifetime = 24 * time.Hour

// SessionManager issues and verifies session tokens and resolves them back
// to a user record on every request. Handlers receive it explicitly; there
// is no ambient current-user state.
type SessionManager struct {
	DB     *sql.DB
	Secret string
}

// Claims represents session token claims
type Claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// ErrorResponse represents a JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func NewSessionManager(db *sql.DB, secret string) *SessionManager {
	return &SessionManager{
		DB:     db,
		Secret: secret,
	}
}

// IssueToken creates a new signed session token for the given user
func (sm *SessionManager) IssueToken(user *models.User) (string, error) {
	if user == nil {
		return "", errors.New("user cannot be nil")
	}

	expirationTime := time.Now().Add(sessionLifetime)
	claims := &Claims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "pooplog",
			Subject:   fmt.Sprintf("%d", user.ID),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(sm.Secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, nil
}

// ValidateToken validates and parses a session token string
func (sm *SessionManager) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token string cannot be empty")
	}

	claims := &Claims{}

	// Add leeway for clock skew (5 minutes)
	parser := jwt.NewParser(jwt.WithLeeway(5 * time.Minute))

	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(sm.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	if claims.UserID <= 0 {
		return nil, errors.New("invalid user ID in token")
	}

	return claims, nil
}

// SetSessionCookie writes the session cookie on a successful login.
func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie on logout.
func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// tokenFromRequest pulls the session token from the cookie or, for tooling,
// from a bearer Authorization header.
func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Fields(authHeader)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// RequireAuth middleware that validates session tokens and loads user context
func (sm *SessionManager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			sm.sendError(w, "Authentication required", http.StatusUnauthorized)
			return
		}

		claims, err := sm.ValidateToken(tokenString)
		if err != nil {
			sm.sendError(w, "Invalid session", http.StatusUnauthorized)
			return
		}

		// Resolve the token back to a live user record
		var user models.User
		err = database.GetUser(r.Context(), sm.DB, claims.UserID, &user)
		if err != nil {
			if database.IsUserNotFoundError(err) {
				sm.sendError(w, "User not found", http.StatusUnauthorized)
				return
			}
			if errors.Is(err, database.ErrDatabaseError) {
				sm.sendError(w, "Unable to verify user", http.StatusInternalServerError)
				return
			}
			sm.sendError(w, "Authentication failed", http.StatusUnauthorized)
			return
		}

		// Verify token claims match database user
		if user.Email != claims.Email {
			sm.sendError(w, "Session does not match user data", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, &user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth loads user context when a valid session is presented but
// lets anonymous requests through.
func (sm *SessionManager) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := tokenFromRequest(r)
		if tokenString == "" {
			next.ServeHTTP(w, r)
			return
		}

		if claims, err := sm.ValidateToken(tokenString); err == nil {
			var user models.User
			if err := database.GetUser(r.Context(), sm.DB, claims.UserID, &user); err == nil {
				if user.Email == claims.Email {
					ctx := context.WithValue(r.Context(), UserContextKey, &user)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}
		}

		// Bad or stale sessions degrade to anonymous
		next.ServeHTTP(w, r)
	})
}

// GetUserFromContext retrieves the authenticated user from the request context
func GetUserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	return user, ok
}

// GetUserIDFromContext is a helper to quickly get just the user ID
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	if user, ok := GetUserFromContext(ctx); ok {
		return user.ID, true
	}
	return 0, false
}

// sendError sends a JSON error response
func (sm *SessionManager) sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, fmt.Sprintf(`{"error": "Internal Server Error", "message": "%v"}`, err), http.StatusInternalServerError)
	}
}
