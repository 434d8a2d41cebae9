package visibility

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pooplog/backend/api/v1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const publicUsersQuery = `SELECT id, username FROM users`

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestViewableUsersAnonymous(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(1, "anna").
		AddRow(3, "berta")
	mock.ExpectQuery(publicUsersQuery).WillReturnRows(rows)

	users, err := ViewableUsers(context.Background(), db, nil)
	require.NoError(t, err)

	assert.Equal(t, []models.PublicUser{
		{ID: 1, Username: "anna"},
		{ID: 3, Username: "berta"},
	}, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestViewableUsersPrivateViewerAppendedOnce(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(1, "anna")
	mock.ExpectQuery(publicUsersQuery).WillReturnRows(rows)

	viewer := &models.User{ID: 7, Username: "carla"}
	users, err := ViewableUsers(context.Background(), db, viewer)
	require.NoError(t, err)

	assert.Equal(t, []models.PublicUser{
		{ID: 1, Username: "anna"},
		{ID: 7, Username: "carla"},
	}, users)
}

func TestViewableUsersPublicViewerNotDuplicated(t *testing.T) {
	db, mock := newMockDB(t)

	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(1, "anna").
		AddRow(7, "carla")
	mock.ExpectQuery(publicUsersQuery).WillReturnRows(rows)

	viewer := &models.User{ID: 7, Username: "carla", Config: models.UserConfig{Public: true}}
	users, err := ViewableUsers(context.Background(), db, viewer)
	require.NoError(t, err)

	assert.Len(t, users, 2)
}

func TestViewableUsersExcludesOtherPrivateUsers(t *testing.T) {
	db, mock := newMockDB(t)

	// User C (id 9) is private, so the store never returns it
	rows := sqlmock.NewRows([]string{"id", "username"}).
		AddRow(1, "anna")
	mock.ExpectQuery(publicUsersQuery).WillReturnRows(rows)

	viewer := &models.User{ID: 7, Username: "berta"}
	users, err := ViewableUsers(context.Background(), db, viewer)
	require.NoError(t, err)

	for _, u := range users {
		assert.NotEqual(t, int64(9), u.ID)
	}
	assert.Contains(t, users, models.PublicUser{ID: 7, Username: "berta"})
}

func TestTargetUserID(t *testing.T) {
	viewer := &models.User{ID: 5, Username: "anna"}

	tests := []struct {
		name      string
		requested int64
		viewer    *models.User
		want      int64
	}{
		{"explicit request wins", 3, viewer, 3},
		{"explicit request wins even anonymous", 3, nil, 3},
		{"viewer default", 0, viewer, 5},
		{"anonymous fallback", 0, nil, DefaultUserID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TargetUserID(tt.requested, tt.viewer))
		})
	}
}
