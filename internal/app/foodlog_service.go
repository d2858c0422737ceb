package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"nutrilog/internal/domain"
)

const (
	defaultMeal        = "Snack"
	defaultRecentLimit = 10
	maxRecentLimit     = 50
)

// FoodLogService encapsulates food-log use cases.
type FoodLogService struct {
	repo     domain.FoodLogRepository
	foods    domain.FoodDatabase
	barcodes domain.BarcodeLookup
	log      *slog.Logger
	now      func() time.Time
}

// NewFoodLogService creates a FoodLogService. foods and barcodes may be nil;
// edits then fall back to proportional scaling.
func NewFoodLogService(repo domain.FoodLogRepository, foods domain.FoodDatabase, barcodes domain.BarcodeLookup, logger *slog.Logger) *FoodLogService {
	return &FoodLogService{
		repo:     repo,
		foods:    foods,
		barcodes: barcodes,
		log:      orDiscard(logger),
		now:      time.Now,
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *FoodLogService) WithClock(now func() time.Time) *FoodLogService {
	s.now = now
	return s
}

// AddFoodInput logs a serving of a food-database record.
type AddFoodInput struct {
	Meal          string                 `json:"meal"`
	Date          string                 `json:"date"`
	Food          domain.NutritionalData `json:"food"`
	ServingAmount float64                `json:"servingAmount"`
	ServingUnit   string                 `json:"servingUnit"`
}

// ManualEntryInput logs explicit, already-totalled nutrients.
type ManualEntryInput struct {
	Meal          string   `json:"meal"`
	Date          string   `json:"date"`
	Description   string   `json:"description"`
	ServingAmount float64  `json:"servingAmount"`
	ServingUnit   string   `json:"servingUnit"`
	Calories      float64  `json:"calories"`
	Protein       *float64 `json:"protein"`
	Carbs         *float64 `json:"carbs"`
	Fat           *float64 `json:"fat"`
}

// DayLog is a day's entries with their totals.
type DayLog struct {
	Date    string                `json:"date"`
	Entries []domain.FoodLogEntry `json:"entries"`
	Totals  domain.DailyAggregate `json:"totals"`
}

// AddFood scales the food's nutrition for the requested serving and stores
// the entry.
func (s *FoodLogService) AddFood(ctx context.Context, user *domain.User, in AddFoodInput) (*domain.FoodLogEntry, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Food.Description) == "" {
		return nil, domain.NewValidationError("food.description", "is required")
	}
	unit := strings.TrimSpace(in.ServingUnit)
	if unit == "" {
		unit = in.Food.ServingUnit
	}

	n, err := domain.ScaleNutrition(in.Food, in.ServingAmount, unit)
	if err != nil {
		return nil, err
	}

	e := domain.FoodLogEntry{
		UserID:        user.ID,
		Meal:          mealOrDefault(in.Meal),
		FoodID:        in.Food.FoodID,
		Description:   in.Food.Description,
		ServingAmount: in.ServingAmount,
		ServingUnit:   domain.NormalizeUnit(unit),
		LoggedAt:      s.now(),
		Date:          date,
	}
	applyNutrients(&e, n)
	if in.Food.Barcode != "" {
		code := in.Food.Barcode
		e.Barcode = &code
	}
	return s.store(ctx, e)
}

// AddManual stores an entry with caller-supplied totals, as used for free-form
// agent logging.
func (s *FoodLogService) AddManual(ctx context.Context, user *domain.User, in ManualEntryInput) (*domain.FoodLogEntry, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(in.Date)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, domain.NewValidationError("description", "is required")
	}
	if !validQuantity(in.Calories) {
		return nil, domain.NewValidationError("calories", "must be a non-negative number")
	}
	macros := []struct {
		field string
		v     *float64
	}{{"protein", in.Protein}, {"carbs", in.Carbs}, {"fat", in.Fat}}
	for _, m := range macros {
		if m.v != nil && !validQuantity(*m.v) {
			return nil, domain.NewValidationError(m.field, "must be a non-negative number")
		}
	}

	amount, unit := in.ServingAmount, strings.TrimSpace(in.ServingUnit)
	if amount == 0 {
		amount = 1
	}
	if amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, domain.NewValidationError("servingAmount", "must be a positive number")
	}
	if unit == "" {
		unit = domain.UnitServing
	}

	e := domain.FoodLogEntry{
		UserID:        user.ID,
		Meal:          mealOrDefault(in.Meal),
		Description:   strings.TrimSpace(in.Description),
		ServingAmount: amount,
		ServingUnit:   domain.NormalizeUnit(unit),
		LoggedAt:      s.now(),
		Date:          date,
	}
	applyNutrients(&e, domain.Nutrients{
		Calories: math.Round(in.Calories),
		Protein:  roundMacro(in.Protein),
		Carbs:    roundMacro(in.Carbs),
		Fat:      roundMacro(in.Fat),
	})
	return s.store(ctx, e)
}

// ListByDate returns the user's entries for date ("" means today) with the
// day's totals.
func (s *FoodLogService) ListByDate(ctx context.Context, user *domain.User, date string) (*DayLog, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.ListEntries(ctx, user.ID, domain.EntryFilter{From: date, To: date})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	if entries == nil {
		entries = []domain.FoodLogEntry{}
	}

	day := DayLog{Date: date, Entries: entries, Totals: domain.DailyAggregate{Date: date}}
	if aggs := domain.AggregateByDay(entries); len(aggs) == 1 {
		day.Totals = aggs[0]
	}
	return &day, nil
}

// Update changes an entry's serving and recomputes all four nutrients. The
// food record is looked up again by barcode or food id; without one, the
// stored nutrients are scaled proportionally, which requires the unit to
// stay the same.
func (s *FoodLogService) Update(ctx context.Context, user *domain.User, id int64, amount float64, unit string) (*domain.FoodLogEntry, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, domain.NewValidationError("servingAmount", "must be a positive number")
	}

	e, err := s.repo.GetEntry(ctx, user.ID, id)
	if err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, err)
	}
	if strings.TrimSpace(unit) == "" {
		unit = e.ServingUnit
	}

	n, err := s.rescale(ctx, e, amount, unit)
	if err != nil {
		return nil, err
	}

	e.ServingAmount = amount
	e.ServingUnit = domain.NormalizeUnit(unit)
	applyNutrients(e, n)
	if err := s.repo.UpdateEntry(ctx, *e); err != nil {
		return nil, fmt.Errorf("update entry %d: %w", id, err)
	}
	return e, nil
}

// Delete removes one of the user's entries.
func (s *FoodLogService) Delete(ctx context.Context, user *domain.User, id int64) error {
	if err := requireUser(user); err != nil {
		return err
	}
	if err := s.repo.DeleteEntry(ctx, user.ID, id); err != nil {
		return fmt.Errorf("delete entry %d: %w", id, err)
	}
	return nil
}

// UndoLast deletes the most recently logged entry. It reports whether an
// entry was removed and its id.
func (s *FoodLogService) UndoLast(ctx context.Context, user *domain.User) (bool, int64, error) {
	if err := requireUser(user); err != nil {
		return false, 0, err
	}
	items, err := s.repo.ListEntries(ctx, user.ID, domain.EntryFilter{Limit: 1, NewestFirst: true})
	if err != nil {
		return false, 0, err
	}
	if len(items) == 0 {
		return false, 0, nil
	}
	if err := s.repo.DeleteEntry(ctx, user.ID, items[0].ID); err != nil {
		return false, 0, err
	}
	return true, items[0].ID, nil
}

// Recent returns the user's most recently logged distinct foods, newest
// first, for quick re-adding.
func (s *FoodLogService) Recent(ctx context.Context, user *domain.User, limit int) ([]domain.FoodLogEntry, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	entries, err := s.repo.ListEntries(ctx, user.ID, domain.EntryFilter{Limit: limit * 5, NewestFirst: true})
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}

	seen := make(map[string]bool)
	out := make([]domain.FoodLogEntry, 0, limit)
	for _, e := range entries {
		key := e.FoodID
		if key == "" {
			key = "desc:" + strings.ToLower(e.Description)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *FoodLogService) rescale(ctx context.Context, e *domain.FoodLogEntry, amount float64, unit string) (domain.Nutrients, error) {
	if food := s.lookupFood(ctx, e); food != nil {
		return domain.ScaleNutrition(*food, amount, unit)
	}

	if domain.NormalizeUnit(unit) != domain.NormalizeUnit(e.ServingUnit) {
		return domain.Nutrients{}, domain.NewValidationError("servingUnit",
			"cannot change unit for an entry without a food record")
	}
	if e.ServingAmount <= 0 {
		return domain.Nutrients{}, domain.NewValidationError("servingAmount", "stored serving is invalid")
	}
	ref := domain.NutritionalData{
		Calories:    e.Calories,
		Protein:     e.Protein,
		Carbs:       e.Carbs,
		Fat:         e.Fat,
		ServingSize: e.ServingAmount,
		ServingUnit: e.ServingUnit,
	}
	if domain.NormalizeUnit(e.ServingUnit) == domain.UnitServing {
		// A "serving" request multiplies by the raw amount; normalise to one serving first.
		ref.Calories = e.Calories / e.ServingAmount
		ref.Protein = divMacro(e.Protein, e.ServingAmount)
		ref.Carbs = divMacro(e.Carbs, e.ServingAmount)
		ref.Fat = divMacro(e.Fat, e.ServingAmount)
	}
	return domain.ScaleNutrition(ref, amount, unit)
}

func (s *FoodLogService) lookupFood(ctx context.Context, e *domain.FoodLogEntry) *domain.NutritionalData {
	var (
		food *domain.NutritionalData
		err  error
	)
	switch {
	case e.Barcode != nil && *e.Barcode != "" && s.barcodes != nil:
		food, err = s.barcodes.LookupBarcode(ctx, *e.Barcode)
	case e.FoodID != "" && s.foods != nil:
		food, err = s.foods.GetFood(ctx, e.FoodID)
	default:
		return nil
	}
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.WarnContext(ctx, "food lookup failed, scaling proportionally",
				"entry_id", e.ID, "food_id", e.FoodID, "error", err)
		}
		return nil
	}
	return food
}

func (s *FoodLogService) store(ctx context.Context, e domain.FoodLogEntry) (*domain.FoodLogEntry, error) {
	id, err := s.repo.AddEntry(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("add entry: %w", err)
	}
	e.ID = id
	s.log.DebugContext(ctx, "food logged", "user_id", e.UserID, "entry_id", id, "date", e.Date, "calories", e.Calories)
	return &e, nil
}

func (s *FoodLogService) resolveDate(date string) (string, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return s.now().In(time.Local).Format(domain.DateLayout), nil
	}
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return "", domain.NewValidationError("date", "must be YYYY-MM-DD")
	}
	return date, nil
}

func applyNutrients(e *domain.FoodLogEntry, n domain.Nutrients) {
	e.Calories = n.Calories
	e.Protein = n.Protein
	e.Carbs = n.Carbs
	e.Fat = n.Fat
}

func mealOrDefault(meal string) string {
	if m := strings.TrimSpace(meal); m != "" {
		return m
	}
	return defaultMeal
}

func validQuantity(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}

func roundMacro(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(math.Round(*v*10) / 10)
}

func divMacro(v *float64, d float64) *float64 {
	if v == nil {
		return nil
	}
	return domain.Float(*v / d)
}

func requireUser(u *domain.User) error {
	if u == nil {
		return domain.ErrNotAuthenticated
	}
	return nil
}
