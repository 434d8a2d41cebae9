package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/pooplog/backend/api/v1/models"
)

var ErrNoEntryError = errors.New("entry does not exist")

func IsEntryNotFoundError(err error) bool {
	return errors.Is(err, ErrNoEntryError)
}

// CreateEntry inserts one log row. The log time comes from the client and is
// stored as given.
func CreateEntry(ctx context.Context, db *sql.DB, userID int64, logTime time.Time) (int64, error) {
	query := `
		INSERT INTO poop (user_id, log_time)
		VALUES ($1, $2)
		RETURNING id`

	var entryID int64
	err := db.QueryRowContext(ctx, query, userID, logTime).Scan(&entryID)
	if err != nil {
		log.Printf("Database error inserting entry for user %d: %v", userID, err)
		return 0, fmt.Errorf("%w: failed to insert entry", ErrDatabaseError)
	}

	return entryID, nil
}

// GetEntries returns the full history for a user, most recent first.
func GetEntries(ctx context.Context, db *sql.DB, userID int64) ([]models.Entry, error) {
	query := `
		SELECT id, user_id, log_time FROM poop
		WHERE user_id = $1
		ORDER BY log_time DESC`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Printf("Database error getting entries for user %d: %v", userID, err)
		return nil, fmt.Errorf("%w: failed to get entries", ErrDatabaseError)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.LogTime); err != nil {
			return nil, fmt.Errorf("%w: failed to scan entry", ErrDatabaseError)
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		log.Printf("Database error iterating entries: %v", err)
		return nil, fmt.Errorf("%w: failed to iterate entries", ErrDatabaseError)
	}

	return entries, nil
}

// DeleteEntry removes a row only when both id and owner match. A miss and a
// row owned by somebody else are indistinguishable to the caller.
func DeleteEntry(ctx context.Context, db *sql.DB, entryID, userID int64) error {
	query := "DELETE FROM poop WHERE id = $1 AND user_id = $2"

	result, err := db.ExecContext(ctx, query, entryID, userID)
	if err != nil {
		log.Printf("Database error deleting entry %d: %v", entryID, err)
		return fmt.Errorf("%w: failed to delete entry", ErrDatabaseError)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to verify deletion", ErrDatabaseError)
	}
	if rowsAffected == 0 {
		return ErrNoEntryError
	}

	return nil
}
