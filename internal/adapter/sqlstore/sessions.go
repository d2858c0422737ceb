package sqlstore

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"nutrilog/internal/domain"
)

var _ domain.SessionRepository = (*SessionRepo)(nil)

// SessionRepo implements session repository operations on a Store. Its
// Create method would clash with the user repository's on Store itself.
type SessionRepo struct {
	s *Store
}

// NewSessionRepo wraps a Store as a SessionRepository.
func NewSessionRepo(s *Store) *SessionRepo {
	return &SessionRepo{s: s}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	_, err := r.s.exec(ctx, r.s.sb.Insert("sessions").
		Columns("token", "user_id", "user_agent", "ip", "expires_at", "created_at").
		Values(token, userID, userAgent, ip, expiresAt.UTC(), time.Now().UTC()))
	return r.s.mapError(err, "session for user", userID)
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	row, err := r.s.queryRow(ctx, r.s.sb.
		Select("token", "user_id", "user_agent", "ip", "expires_at", "created_at").
		From("sessions").
		Where(squirrel.Eq{"token": token}))
	if err != nil {
		return nil, err
	}
	var sess domain.Session
	if err := row.Scan(&sess.Token, &sess.UserID, &sess.UserAgent, &sess.IP, &sess.ExpiresAt, &sess.CreatedAt); err != nil {
		return nil, r.s.mapError(err, "session", "(token)")
	}
	return &sess, nil
}

// Delete deletes a session by token.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	_, err := r.s.exec(ctx, r.s.sb.Delete("sessions").Where(squirrel.Eq{"token": token}))
	return r.s.mapError(err, "session", "(token)")
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	_, err := r.s.exec(ctx, r.s.sb.Delete("sessions").Where(squirrel.Lt{"expires_at": time.Now().UTC()}))
	return r.s.mapError(err, "sessions", "expired")
}
