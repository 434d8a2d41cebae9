package models

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents an account creation request
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	Privacy         string `json:"privacy"`
}

// UserResponse represents a user in API responses (without sensitive data)
type UserResponse struct {
	ID       int64      `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Config   UserConfig `json:"config"`
}

// EntryResponse is one log row as rendered on the dashboard.
type EntryResponse struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	LogTime string `json:"log_time"`
}
