package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pooplog/backend/api/v1/models"
)

var (
	ErrEmailExists   = errors.New("email already exists")
	ErrDatabaseError = errors.New("database error occurred")
	ErrNoUserError   = errors.New("user does not exist")
)

// pgUniqueViolation is the Postgres error code for unique constraint violations.
const pgUniqueViolation = "23505"

// UserWithPassword carries the stored hash alongside the public user record.
// It never leaves the handler layer.
type UserWithPassword struct {
	models.User
	PasswordHash string
}

func IsEmailExistsError(err error) bool {
	return errors.Is(err, ErrEmailExists)
}

func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrNoUserError)
}

func CreateUser(ctx context.Context, db *sql.DB, user *UserWithPassword) error {
	// Advisory existence check first; the unique index on email is the
	// authoritative guard against the check-then-insert race.
	var count int
	checkQuery := "SELECT COUNT(*) FROM users WHERE email = $1"
	err := db.QueryRowContext(ctx, checkQuery, user.Email).Scan(&count)
	if err != nil {
		log.Printf("Database error during email check: %v", err)
		return fmt.Errorf("%w: failed to check email availability", ErrDatabaseError)
	}
	if count > 0 {
		return fmt.Errorf("%w: email '%s' is already taken", ErrEmailExists, user.Email)
	}

	configJSON, err := json.Marshal(user.Config)
	if err != nil {
		return fmt.Errorf("%w: failed to encode user config", ErrDatabaseError)
	}

	insertQuery := `
		INSERT INTO users (username, email, password_hash, config, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	now := time.Now()
	err = db.QueryRowContext(ctx, insertQuery,
		user.Username, user.Email, user.PasswordHash, configJSON, now,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return fmt.Errorf("%w: email became unavailable", ErrEmailExists)
		}
		log.Printf("Database error during user creation: %v", err)
		return fmt.Errorf("%w: failed to create user", ErrDatabaseError)
	}

	return nil
}

// GetUserByEmail loads the full user record, stored hash included, for
// credential verification.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*UserWithPassword, error) {
	query := `
		SELECT id, username, email, password_hash, config, created_at
		FROM users
		WHERE email = $1`

	var user UserWithPassword
	var configJSON []byte
	err := db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&configJSON,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoUserError
		}
		log.Printf("Database error retrieving user by email: %v", err)
		return nil, fmt.Errorf("%w: failed to retrieve user", ErrDatabaseError)
	}

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &user.Config); err != nil {
			return nil, fmt.Errorf("%w: failed to decode user config", ErrDatabaseError)
		}
	}

	return &user, nil
}

func GetUser(ctx context.Context, db *sql.DB, userID int64, user *models.User) error {
	query := `
		SELECT id, username, email, config, created_at
		FROM users
		WHERE id = $1`

	var configJSON []byte
	err := db.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&configJSON,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoUserError
		}
		log.Printf("Database error retrieving user ID %d: %v", userID, err)
		return fmt.Errorf("%w: failed to retrieve user", ErrDatabaseError)
	}

	if len(configJSON) > 0 {
		if err := json.Unmarshal(configJSON, &user.Config); err != nil {
			return fmt.Errorf("%w: failed to decode user config", ErrDatabaseError)
		}
	}

	return nil
}

// GetPublicUsers returns every account with the public flag set, ordered by
// ascending id.
func GetPublicUsers(ctx context.Context, db *sql.DB) ([]models.PublicUser, error) {
	query := `
		SELECT id, username FROM users
		WHERE (config->>'public')::boolean = true
		ORDER BY id ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		log.Printf("Database error getting public users: %v", err)
		return nil, fmt.Errorf("%w: failed to get public users", ErrDatabaseError)
	}
	defer rows.Close()

	var users []models.PublicUser
	for rows.Next() {
		var u models.PublicUser
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, fmt.Errorf("%w: failed to scan public user", ErrDatabaseError)
		}
		users = append(users, u)
	}

	if err = rows.Err(); err != nil {
		log.Printf("Database error iterating public users: %v", err)
		return nil, fmt.Errorf("%w: failed to iterate public users", ErrDatabaseError)
	}

	return users, nil
}

func GetUserPrivacy(ctx context.Context, db *sql.DB, userID int64) (bool, error) {
	query := `
		SELECT COALESCE((config->>'public')::boolean, false)
		FROM users
		WHERE id = $1`

	var public bool
	err := db.QueryRowContext(ctx, query, userID).Scan(&public)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNoUserError
		}
		log.Printf("Database error fetching privacy for user %d: %v", userID, err)
		return false, fmt.Errorf("%w: failed to fetch privacy setting", ErrDatabaseError)
	}

	return public, nil
}

func UpdateUserPrivacy(ctx context.Context, db *sql.DB, userID int64, public bool) error {
	query := `
		UPDATE users
		SET config = jsonb_set(config::jsonb, '{public}', to_jsonb($1::boolean))
		WHERE id = $2`

	result, err := db.ExecContext(ctx, query, public, userID)
	if err != nil {
		log.Printf("Database error updating privacy for user %d: %v", userID, err)
		return fmt.Errorf("%w: failed to update privacy setting", ErrDatabaseError)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to verify privacy update", ErrDatabaseError)
	}
	if rowsAffected == 0 {
		return ErrNoUserError
	}

	return nil
}
