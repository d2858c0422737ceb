package app_test

import (
	"context"
	"time"

	"nutrilog/internal/domain"
)

type mockUserRepo struct {
	getByUsernameFn func(ctx context.Context, username string) (*domain.User, error)
	getByIDFn       func(ctx context.Context, id int64) (*domain.User, error)
	createFn        func(ctx context.Context, username, passwordHash string) (*domain.User, error)
	countFn         func(ctx context.Context) (int, error)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockUserRepo) Create(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	if m.createFn != nil {
		return m.createFn(ctx, username, passwordHash)
	}
	return &domain.User{ID: 1, Username: username, PasswordHash: passwordHash}, nil
}

func (m *mockUserRepo) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

type mockSessionRepo struct {
	createFn        func(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error
	getByTokenFn    func(ctx context.Context, token string) (*domain.Session, error)
	deleteFn        func(ctx context.Context, token string) error
	deleteExpiredFn func(ctx context.Context) error
}

func (m *mockSessionRepo) Create(ctx context.Context, userID int64, token, userAgent, ip string, expiresAt time.Time) error {
	if m.createFn != nil {
		return m.createFn(ctx, userID, token, userAgent, ip, expiresAt)
	}
	return nil
}

func (m *mockSessionRepo) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	if m.getByTokenFn != nil {
		return m.getByTokenFn(ctx, token)
	}
	return nil, domain.ErrNotFound
}

func (m *mockSessionRepo) Delete(ctx context.Context, token string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, token)
	}
	return nil
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context) error {
	if m.deleteExpiredFn != nil {
		return m.deleteExpiredFn(ctx)
	}
	return nil
}

type mockFoodLogRepo struct {
	addFn    func(ctx context.Context, e domain.FoodLogEntry) (int64, error)
	getFn    func(ctx context.Context, userID, id int64) (*domain.FoodLogEntry, error)
	updateFn func(ctx context.Context, e domain.FoodLogEntry) error
	deleteFn func(ctx context.Context, userID, id int64) error
	listFn   func(ctx context.Context, userID int64, f domain.EntryFilter) ([]domain.FoodLogEntry, error)
}

func (m *mockFoodLogRepo) AddEntry(ctx context.Context, e domain.FoodLogEntry) (int64, error) {
	if m.addFn != nil {
		return m.addFn(ctx, e)
	}
	return 1, nil
}

func (m *mockFoodLogRepo) GetEntry(ctx context.Context, userID, id int64) (*domain.FoodLogEntry, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockFoodLogRepo) UpdateEntry(ctx context.Context, e domain.FoodLogEntry) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, e)
	}
	return nil
}

func (m *mockFoodLogRepo) DeleteEntry(ctx context.Context, userID, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockFoodLogRepo) ListEntries(ctx context.Context, userID int64, f domain.EntryFilter) ([]domain.FoodLogEntry, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, f)
	}
	return nil, nil
}

type mockGoalsRepo struct {
	getFn  func(ctx context.Context, userID int64) (*domain.UserGoals, error)
	saveFn func(ctx context.Context, g domain.UserGoals) error
}

func (m *mockGoalsRepo) GetGoals(ctx context.Context, userID int64) (*domain.UserGoals, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockGoalsRepo) SaveGoals(ctx context.Context, g domain.UserGoals) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, g)
	}
	return nil
}

type mockFoodDB struct {
	searchFn func(ctx context.Context, query string, limit int) ([]domain.NutritionalData, error)
	getFn    func(ctx context.Context, id string) (*domain.NutritionalData, error)
}

func (m *mockFoodDB) SearchFoods(ctx context.Context, query string, limit int) ([]domain.NutritionalData, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockFoodDB) GetFood(ctx context.Context, id string) (*domain.NutritionalData, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

type mockBarcodeLookup struct {
	lookupFn func(ctx context.Context, code string) (*domain.NutritionalData, error)
}

func (m *mockBarcodeLookup) LookupBarcode(ctx context.Context, code string) (*domain.NutritionalData, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, code)
	}
	return nil, domain.ErrNotFound
}

var testUser = &domain.User{ID: 1, Username: "tester"}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
