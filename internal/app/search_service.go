package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"nutrilog/internal/domain"
)

const (
	defaultSearchLimit = 25
	maxSearchLimit     = 50
)

// FoodSearchService looks foods up in the external food database and by
// barcode.
type FoodSearchService struct {
	foods    domain.FoodDatabase
	barcodes domain.BarcodeLookup
	guard    *SearchGuard
	log      *slog.Logger
}

// NewFoodSearchService creates a FoodSearchService. barcodes may be nil, in
// which case barcode lookups only use the food database. A nil guard runs
// every search immediately.
func NewFoodSearchService(foods domain.FoodDatabase, barcodes domain.BarcodeLookup, guard *SearchGuard, logger *slog.Logger) *FoodSearchService {
	return &FoodSearchService{foods: foods, barcodes: barcodes, guard: guard, log: orDiscard(logger)}
}

// Search runs a term search for user. Concurrent searches from the same
// user are de-duplicated: only the newest returns results, older ones get
// ErrSearchSuperseded.
func (s *FoodSearchService) Search(ctx context.Context, user *domain.User, query string, limit int) ([]domain.NutritionalData, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.NewValidationError("q", "is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	var results []domain.NutritionalData
	run := func(ctx context.Context) error {
		var err error
		results, err = s.foods.SearchFoods(ctx, query, limit)
		return err
	}

	var err error
	if s.guard != nil {
		err = s.guard.Do(ctx, strconv.FormatInt(user.ID, 10), run)
	} else {
		err = run(ctx)
	}
	if err != nil {
		if errors.Is(err, ErrSearchSuperseded) {
			return nil, err
		}
		return nil, fmt.Errorf("search foods: %w", err)
	}
	if results == nil {
		results = []domain.NutritionalData{}
	}
	return results, nil
}

// Get fetches one food by its database id.
func (s *FoodSearchService) Get(ctx context.Context, id string) (*domain.NutritionalData, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	food, err := s.foods.GetFood(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get food %s: %w", id, err)
	}
	return food, nil
}

// LookupBarcode resolves a product code, trying the barcode service first
// and then branded foods in the food database.
func (s *FoodSearchService) LookupBarcode(ctx context.Context, code string) (*domain.NutritionalData, error) {
	code = strings.TrimSpace(code)
	if !validBarcode(code) {
		return nil, domain.NewValidationError("code", "must be 8 to 14 digits")
	}

	if s.barcodes != nil {
		food, err := s.barcodes.LookupBarcode(ctx, code)
		if err == nil {
			return food, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "barcode lookup failed, trying food database", "code", code, "error", err)
		}
	}

	results, err := s.foods.SearchFoods(ctx, code, 5)
	if err != nil {
		return nil, fmt.Errorf("barcode fallback %s: %w", code, err)
	}
	for i := range results {
		if sameBarcode(results[i].Barcode, code) {
			return &results[i], nil
		}
	}
	return nil, fmt.Errorf("barcode %s: %w", code, domain.ErrNotFound)
}

func validBarcode(code string) bool {
	if len(code) < 8 || len(code) > 14 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// sameBarcode compares codes ignoring leading zeros, so UPC-A and EAN-13
// forms of the same product match.
func sameBarcode(a, b string) bool {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	return a != "" && a == b
}
