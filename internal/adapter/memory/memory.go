// Package memory implements in-memory repositories for development and testing.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"nutrilog/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	entries  []domain.FoodLogEntry
	goals    map[int64]domain.UserGoals
	users    []*domain.User
	sessions map[string]*domain.Session

	entryIDCounter int64
	userIDCounter  int64
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{
		goals:    make(map[int64]domain.UserGoals),
		sessions: make(map[string]*domain.Session),
	}
}

// Ensure interfaces are met.
var _ domain.FoodLogRepository = (*DB)(nil)
var _ domain.GoalsRepository = (*DB)(nil)
var _ domain.UserRepository = (*DB)(nil)
var _ domain.SessionRepository = (*SessionRepo)(nil)

// --- FoodLogRepository ---

// AddEntry stores a food-log entry and returns its id.
func (db *DB) AddEntry(ctx context.Context, e domain.FoodLogEntry) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.entryIDCounter++
	e.ID = db.entryIDCounter
	e.LoggedAt = e.LoggedAt.UTC()
	db.entries = append(db.entries, copyEntry(e))
	return e.ID, nil
}

// GetEntry returns one of the user's entries.
func (db *DB) GetEntry(ctx context.Context, userID, id int64) (*domain.FoodLogEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if i := db.indexOf(userID, id); i >= 0 {
		e := copyEntry(db.entries[i])
		return &e, nil
	}
	return nil, fmt.Errorf("entry %d: %w", id, domain.ErrNotFound)
}

// UpdateEntry replaces the serving and nutrient fields of an entry.
func (db *DB) UpdateEntry(ctx context.Context, e domain.FoodLogEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexOf(e.UserID, e.ID)
	if i < 0 {
		return fmt.Errorf("entry %d: %w", e.ID, domain.ErrNotFound)
	}
	cur := &db.entries[i]
	cur.ServingAmount = e.ServingAmount
	cur.ServingUnit = e.ServingUnit
	cur.Calories = e.Calories
	cur.Protein = copyFloat(e.Protein)
	cur.Carbs = copyFloat(e.Carbs)
	cur.Fat = copyFloat(e.Fat)
	return nil
}

// DeleteEntry removes one of the user's entries.
func (db *DB) DeleteEntry(ctx context.Context, userID, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	i := db.indexOf(userID, id)
	if i < 0 {
		return fmt.Errorf("entry %d: %w", id, domain.ErrNotFound)
	}
	db.entries = append(db.entries[:i], db.entries[i+1:]...)
	return nil
}

// ListEntries lists the user's entries matching f, oldest first unless
// f.NewestFirst is set.
func (db *DB) ListEntries(ctx context.Context, userID int64, f domain.EntryFilter) ([]domain.FoodLogEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var result []domain.FoodLogEntry
	for _, e := range db.entries {
		if e.UserID != userID {
			continue
		}
		if f.From != "" && e.Date < f.From {
			continue
		}
		if f.To != "" && e.Date > f.To {
			continue
		}
		if f.Meal != "" && e.Meal != f.Meal {
			continue
		}
		result = append(result, copyEntry(e))
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if !a.LoggedAt.Equal(b.LoggedAt) {
			if f.NewestFirst {
				return a.LoggedAt.After(b.LoggedAt)
			}
			return a.LoggedAt.Before(b.LoggedAt)
		}
		if f.NewestFirst {
			return a.ID > b.ID
		}
		return a.ID < b.ID
	})

	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func (db *DB) indexOf(userID, id int64) int {
	for i, e := range db.entries {
		if e.ID == id && e.UserID == userID {
			return i
		}
	}
	return -1
}

// --- GoalsRepository ---

// GetGoals returns the user's saved goals.
func (db *DB) GetGoals(ctx context.Context, userID int64) (*domain.UserGoals, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	g, ok := db.goals[userID]
	if !ok {
		return nil, fmt.Errorf("goals for user %d: %w", userID, domain.ErrNotFound)
	}
	g = copyGoals(g)
	return &g, nil
}

// SaveGoals upserts the user's goals.
func (db *DB) SaveGoals(ctx context.Context, g domain.UserGoals) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = time.Now()
	}
	g.UpdatedAt = g.UpdatedAt.UTC()
	db.goals[g.UserID] = copyGoals(g)
	return nil
}

// --- UserRepository ---

// GetByUsername retrieves a user by username.
func (db *DB) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}

// GetByID retrieves a user by ID.
func (db *DB) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user %d: %w", id, domain.ErrNotFound)
}

// Create creates a new user.
func (db *DB) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return nil, fmt.Errorf("user %q: %w", username, domain.ErrConflict)
		}
	}

	db.userIDCounter++
	u := &domain.User{
		ID:           db.userIDCounter,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	db.users = append(db.users, u)
	cp := *u
	return &cp, nil
}

// Count returns the total number of users.
func (db *DB) Count(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.users), nil
}

// --- SessionRepository ---

// SessionRepo implements session persistence.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new session repository.
func (db *DB) NewSessionRepo() *SessionRepo {
	return &SessionRepo{db: db}
}

// Create creates a new session.
func (r *SessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.sessions[token] = &domain.Session{
		Token:     token,
		UserID:    userID,
		UserAgent: userAgent,
		IP:        ip,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	}
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if s, ok := r.db.sessions[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

// Delete deletes a session.
func (r *SessionRepo) Delete(ctx context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.sessions, token)
	return nil
}

// DeleteExpired deletes all expired sessions.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := time.Now()
	for k, v := range r.db.sessions {
		if now.After(v.ExpiresAt) {
			delete(r.db.sessions, k)
		}
	}
	return nil
}

func copyEntry(e domain.FoodLogEntry) domain.FoodLogEntry {
	e.Protein = copyFloat(e.Protein)
	e.Carbs = copyFloat(e.Carbs)
	e.Fat = copyFloat(e.Fat)
	if e.Barcode != nil {
		code := *e.Barcode
		e.Barcode = &code
	}
	return e
}

func copyGoals(g domain.UserGoals) domain.UserGoals {
	g.Biometrics.WeightKg = copyFloat(g.Biometrics.WeightKg)
	g.Biometrics.HeightCm = copyFloat(g.Biometrics.HeightCm)
	if g.Biometrics.Age != nil {
		age := *g.Biometrics.Age
		g.Biometrics.Age = &age
	}
	return g
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
