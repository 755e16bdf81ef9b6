package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/mkravets/secretdrop/internal/models"
)

func setupMock(t *testing.T) (*PostgresSecretRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	repo := NewPostgresSecretRepository(db)
	cleanup := func() {
		db.Close()
	}
	return repo, mock, cleanup
}

func TestCreate_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now()
	s := &models.Secret{
		ID:         "abc",
		Ciphertext: "aa:bb",
		OneTime:    true,
		ExpiresAt:  now.Add(time.Hour),
		CreatedAt:  now,
	}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO secrets`)).
		WithArgs(s.ID, s.Ciphertext, "", true, false, s.ExpiresAt, s.CreatedAt, "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestCreate_Error(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO secrets`)).
		WillReturnError(errors.New("insert fail"))

	err := repo.Create(context.Background(), &models.Secret{ID: "abc"})
	if err == nil || !regexp.MustCompile(`insert secret`).MatchString(err.Error()) {
		t.Errorf("expected wrapped insert error, got %v", err)
	}
}

func TestGetByID_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "ciphertext", "password_hash", "one_time", "viewed", "expires_at", "created_at", "owner_id"}).
		AddRow("abc", "aa:bb", "hash", true, false, now.Add(time.Hour), now, "user1")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, ciphertext, password_hash, one_time, viewed, expires_at, created_at, owner_id`)).
		WithArgs("abc").
		WillReturnRows(rows)

	s, err := repo.GetByID(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.ID != "abc" || s.PasswordHash != "hash" || s.OwnerID != "user1" || !s.OneTime {
		t.Errorf("unexpected secret: %+v", s)
	}
}

func TestGetByID_NullColumns(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "ciphertext", "password_hash", "one_time", "viewed", "expires_at", "created_at", "owner_id"}).
		AddRow("abc", "aa:bb", nil, false, false, now.Add(time.Hour), now, nil)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, ciphertext, password_hash`)).
		WithArgs("abc").
		WillReturnRows(rows)

	s, err := repo.GetByID(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.PasswordHash != "" || s.OwnerID != "" {
		t.Errorf("NULL columns should scan to empty strings, got %+v", s)
	}
}

func TestGetByID_NoRowsPassesThrough(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, ciphertext, password_hash`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListByOwner_Success(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "password_hash", "one_time", "viewed", "expires_at", "created_at"}).
		AddRow("s2", "hash", false, false, now.Add(time.Hour), now).
		AddRow("s1", nil, true, true, now.Add(time.Hour), now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash, one_time, viewed, expires_at, created_at`)).
		WithArgs("user1", "").
		WillReturnRows(rows)

	secrets, err := repo.ListByOwner(context.Background(), "user1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(secrets) != 2 {
		t.Fatalf("expected 2 secrets, got %d", len(secrets))
	}
	if secrets[0].ID != "s2" || secrets[1].ID != "s1" {
		t.Errorf("unexpected order: %+v", secrets)
	}
	if secrets[0].Ciphertext != "" {
		t.Error("listing must not carry ciphertext")
	}
	if secrets[1].PasswordHash != "" {
		t.Error("NULL password_hash should scan to empty string")
	}
}

func TestListByOwner_SearchArgument(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "password_hash", "one_time", "viewed", "expires_at", "created_at"})

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, password_hash, one_time, viewed, expires_at, created_at`)).
		WithArgs("user1", "abc").
		WillReturnRows(rows)

	if _, err := repo.ListByOwner(context.Background(), "user1", "abc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestMarkViewed_Won(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE secrets SET viewed = TRUE WHERE id = $1 AND viewed = FALSE`)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 1))

	won, err := repo.MarkViewed(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !won {
		t.Error("expected MarkViewed to report the flip")
	}
}

func TestMarkViewed_AlreadyViewed(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE secrets SET viewed = TRUE WHERE id = $1 AND viewed = FALSE`)).
		WithArgs("abc").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.MarkViewed(context.Background(), "abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if won {
		t.Error("expected no affected row when viewed is already set")
	}
}

func TestDeleteOwned(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM secrets WHERE id = $1 AND owner_id = $2`)).
		WithArgs("abc", "user1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM secrets WHERE id = $1 AND owner_id = $2`)).
		WithArgs("abc", "intruder").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.DeleteOwned(context.Background(), "abc", "user1")
	if err != nil || !ok {
		t.Fatalf("owner delete = (%v, %v); want (true, nil)", ok, err)
	}
	ok, err = repo.DeleteOwned(context.Background(), "abc", "intruder")
	if err != nil || ok {
		t.Fatalf("foreign delete = (%v, %v); want (false, nil)", ok, err)
	}
}

func TestDeleteExpired(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM secrets WHERE expires_at < $1`)).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("deleted = %d; want 3", n)
	}
}

func TestDeleteExpired_Error(t *testing.T) {
	repo, mock, cleanup := setupMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM secrets WHERE expires_at < $1`)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	if _, err := repo.DeleteExpired(context.Background(), time.Now()); err == nil {
		t.Error("expected error from failed bulk delete")
	}
}
