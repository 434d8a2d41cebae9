// Package visibility decides whose log history a viewer may list and which
// user a dashboard request targets.
package visibility

import (
	"context"
	"database/sql"

	"github.com/pooplog/backend/api/v1/database"
	"github.com/pooplog/backend/api/v1/models"
)

// DefaultUserID is the account shown to anonymous visitors.
const DefaultUserID int64 = 1

// ViewableUsers lists every public account ordered by id, plus the viewer's
// own account exactly once when it is private. A private user can always
// select themselves but never another private user.
func ViewableUsers(ctx context.Context, db *sql.DB, viewer *models.User) ([]models.PublicUser, error) {
	users, err := database.GetPublicUsers(ctx, db)
	if err != nil {
		return nil, err
	}

	if viewer != nil {
		found := false
		for _, u := range users {
			if u.ID == viewer.ID {
				found = true
				break
			}
		}
		if !found {
			users = append(users, models.PublicUser{ID: viewer.ID, Username: viewer.Username})
		}
	}

	return users, nil
}

// TargetUserID picks the user whose history a request displays. An explicit
// request wins verbatim; there is no server-side check that the requested id
// is public or belongs to the viewer. Otherwise the viewer sees their own
// history, and anonymous visitors fall back to the default account.
func TargetUserID(requested int64, viewer *models.User) int64 {
	if requested > 0 {
		return requested
	}
	if viewer != nil {
		return viewer.ID
	}
	return DefaultUserID
}
