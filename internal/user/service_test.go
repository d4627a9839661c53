package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"backend-travelapp/internal/shared/apperr"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"golang.org/x/crypto/bcrypt"
)

var userColumns = []string{"id", "nickname", "username", "email", "password_hash", "phone", "photo_profile", "description", "privacity", "created_at"}

func init() {
	hashCost = bcrypt.MinCost
}

func strPtr(s string) *string { return &s }

func TestCreateUser(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), "Ana", "ana", "ana@example.com", pgxmock.AnyArg(), "+5592", (*string)(nil), strPtr("viajante"), false).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	svc := NewService(mock)
	u, err := svc.Create(context.Background(), CreateInput{
		Nickname:    "Ana",
		Username:    "ana",
		Email:       "ana@example.com",
		Password:    "secret",
		Phone:       "+5592",
		Description: strPtr("viajante"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.ID == "" || u.PasswordHash == "secret" {
		t.Fatalf("expected id and hashed password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret")); err != nil {
		t.Fatalf("hash does not verify: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateUserValidationAndConflict(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)
	if _, err := svc.Create(context.Background(), CreateInput{Username: "ana"}); err == nil {
		t.Fatalf("expected validation error")
	}

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})
	_, err = svc.Create(context.Background(), CreateInput{Username: "ana", Email: "ana@example.com", Password: "x"})
	if !errors.Is(err, ErrExists) {
		t.Fatalf("expected USER_EXISTS, got %v", err)
	}
}

func TestGetAndList(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM users WHERE id=\$1`).WithArgs("u1").
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow("u1", "Ana", "ana", "ana@example.com", "hash", "", strPtr("https://img/ana.jpg"), nil, true, now))
	mock.ExpectQuery(`FROM users WHERE id=\$1`).WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(userColumns))
	mock.ExpectQuery(`FROM users ORDER BY created_at`).
		WillReturnRows(pgxmock.NewRows(userColumns).
			AddRow("u1", "Ana", "ana", "ana@example.com", "hash", "", nil, nil, false, now).
			AddRow("u2", "Bruno", "bruno", "bruno@example.com", "hash", "", nil, nil, false, now))

	svc := NewService(mock)
	u, err := svc.Get(context.Background(), "u1")
	if err != nil || !u.Privacity || u.PhotoProfile == nil {
		t.Fatalf("unexpected user %+v %v", u, err)
	}
	if _, err := svc.Get(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	users, err := svc.List(context.Background())
	if err != nil || len(users) != 2 {
		t.Fatalf("expected two users: %v", err)
	}
}

func TestUpdateSelfOnly(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)
	if _, err := svc.Update(context.Background(), "u1", "u2", UpdateInput{}); !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("expected not authorized, got %v", err)
	}

	priv := true
	mock.ExpectQuery(`UPDATE users`).
		WithArgs("u1", (*string)(nil), (*string)(nil), (*string)(nil), pgxmock.AnyArg(), (*string)(nil), (*string)(nil), (*string)(nil), &priv).
		WillReturnRows(pgxmock.NewRows(userColumns).AddRow("u1", "Ana", "ana", "ana@example.com", "newhash", "", nil, nil, true, time.Now()))

	u, err := svc.Update(context.Background(), "u1", "u1", UpdateInput{Password: strPtr("new"), Privacity: &priv})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !u.Privacity {
		t.Fatalf("expected privacity toggled")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDeleteUser(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	svc := NewService(mock)
	if err := svc.Delete(context.Background(), "u1", "u2"); !errors.Is(err, apperr.ErrNotAuthorized) {
		t.Fatalf("expected not authorized")
	}

	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := svc.Delete(context.Background(), "u1", "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	mock.ExpectExec(`DELETE FROM users`).WithArgs("u1").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	if err := svc.Delete(context.Background(), "u1", "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found")
	}
}

func TestGetMalformedIDIsNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery(`FROM users WHERE id=\$1`).WithArgs("nope").
		WillReturnError(&pgconn.PgError{Code: "22P02"})

	if _, err := NewService(mock).Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
