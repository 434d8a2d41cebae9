package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pooplog/backend/api/v1/models"
	"github.com/stretchr/testify/assert"
)

func TestCreateEntryRequiresSession(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewEntryHandler(db)

	rec := httptest.NewRecorder()
	h.Create(rec, formRequest("/private/poop", url.Values{
		"user_time": {"2024-01-01T10:00"},
	}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateEntryInvalidDate(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewEntryHandler(db)

	viewer := &models.User{ID: 7, Username: "anna"}
	req := withViewer(formRequest("/private/poop", url.Values{
		"user_time": {"not-a-date"},
	}), viewer)

	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid date format")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntrySuccess(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewEntryHandler(db)

	mock.ExpectQuery(`INSERT INTO poop`).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(13))

	viewer := &models.User{ID: 7, Username: "anna"}
	req := withViewer(formRequest("/private/poop", url.Values{
		"user_time": {"2024-01-01T10:00"},
	}), viewer)

	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Registre afegit correctament")
	assert.Contains(t, rec.Body.String(), "01/01/2024 10:00")
}

func TestCreateEntryAcceptsFutureDates(t *testing.T) {
	// Clients may log events for any instant; no range validation
	db, mock := newMockDB(t)
	h := NewEntryHandler(db)

	mock.ExpectQuery(`INSERT INTO poop`).
		WithArgs(int64(7), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(14))

	viewer := &models.User{ID: 7, Username: "anna"}
	req := withViewer(formRequest("/private/poop", url.Values{
		"user_time": {"2099-12-31T23:59"},
	}), viewer)

	rec := httptest.NewRecorder()
	h.Create(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestPrivacyUpdateRejectsUnknownValue(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(db)

	viewer := &models.User{ID: 7, Username: "anna"}
	req := withViewer(formRequest("/private/user", url.Values{
		"privacy": {"friends-only"},
	}), viewer)

	rec := httptest.NewRecorder()
	h.UpdatePrivacy(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPrivacyUpdateSuccess(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(db)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(true, int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	viewer := &models.User{ID: 7, Username: "anna"}
	req := withViewer(formRequest("/private/user", url.Values{
		"privacy": {"public"},
	}), viewer)

	rec := httptest.NewRecorder()
	h.UpdatePrivacy(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "public", body["privacy"])
}

func TestPrivacyRead(t *testing.T) {
	db, mock := newMockDB(t)
	h := NewUserHandler(db)

	mock.ExpectQuery(`SELECT COALESCE`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(true))

	viewer := &models.User{ID: 7, Username: "anna"}
	req := withViewer(httptest.NewRequest(http.MethodGet, "/private/user", nil), viewer)

	rec := httptest.NewRecorder()
	h.Privacy(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "public", body["privacy"])
}
