package models

import "time"

// UserConfig holds per-user settings stored in the users.config JSON column.
type UserConfig struct {
	Public bool `json:"public"`
}

type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Config    UserConfig `json:"config"`
	CreatedAt time.Time  `json:"created_at,omitempty"`
}

// PublicUser is the reduced shape shown in the viewable-users list.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
