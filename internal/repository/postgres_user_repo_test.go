package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/pulsebook/storefront/internal/model"
)

func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Fatal("expected non-nil repo")
	}
}

func TestPostgresUserRepo_FindByEmail(t *testing.T) {
	db, mock := openMock(t)
	repo := NewPostgresUserRepo(db)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("a@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "is_admin", "created_at"}).
			AddRow(int64(3), "a@b.com", "Anna", true, created))

	user, err := repo.FindByEmail(context.Background(), "a@b.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user == nil || user.ID != 3 || user.Name != "Anna" || !user.IsAdmin || !user.CreatedAt.Equal(created) {
		t.Errorf("unexpected user: %+v", user)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_FindByEmail_NotFound(t *testing.T) {
	db, mock := openMock(t)
	repo := NewPostgresUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE email = $1")).
		WithArgs("nobody@b.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "is_admin", "created_at"}))

	user, err := repo.FindByEmail(context.Background(), "nobody@b.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_Create(t *testing.T) {
	db, mock := openMock(t)
	repo := NewPostgresUserRepo(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users (email, name)")).
		WithArgs("a@b.com", "Anna").
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_admin", "created_at"}).AddRow(int64(7), false, now))

	user := &model.User{Email: "a@b.com", Name: "Anna"}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.ID != 7 {
		t.Errorf("ID = %d, want 7", user.ID)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_Create_Duplicate(t *testing.T) {
	db, mock := openMock(t)
	repo := NewPostgresUserRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (email) DO NOTHING")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "is_admin", "created_at"}))

	err := repo.Create(context.Background(), &model.User{Email: "a@b.com", Name: "Anna"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("error = %v, want ErrDuplicate", err)
	}
	assertExpectations(t, mock)
}

func TestPostgresUserRepo_ListAndCount(t *testing.T) {
	db, mock := openMock(t)
	repo := NewPostgresUserRepo(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name", "is_admin", "created_at"}).
			AddRow(int64(2), "b@b.com", "B", false, now).
			AddRow(int64(1), "a@b.com", "A", true, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))

	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 || users[0].Email != "b@b.com" {
		t.Errorf("unexpected users: %+v", users)
	}

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}
	assertExpectations(t, mock)
}
