package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"nutrilog/internal/domain"
)

var _ domain.UserRepository = (*Store)(nil)

var userColumns = []string{"id", "username", "password_hash", "created_at"}

// GetByUsername retrieves a user by username.
func (s *Store) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, squirrel.Eq{"username": username}, username)
}

// GetByID retrieves a user by ID.
func (s *Store) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.getUser(ctx, squirrel.Eq{"id": id}, id)
}

func (s *Store) getUser(ctx context.Context, where squirrel.Eq, key any) (*domain.User, error) {
	row, err := s.queryRow(ctx, s.sb.Select(userColumns...).From("users").Where(where))
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, s.mapError(err, "user", key)
	}
	return &u, nil
}

// Create creates a new user.
func (s *Store) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	row, err := s.queryRow(ctx, s.sb.Insert("users").
		Columns("username", "password_hash", "created_at").
		Values(username, passwordHash, time.Now().UTC()).
		Suffix("RETURNING id, username, password_hash, created_at"))
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, s.mapError(err, "user", username)
	}
	return &u, nil
}

// Count returns the total number of users.
func (s *Store) Count(ctx context.Context) (int, error) {
	row, err := s.queryRow(ctx, s.sb.Select("COUNT(*)").From("users"))
	if err != nil {
		return 0, err
	}
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}
