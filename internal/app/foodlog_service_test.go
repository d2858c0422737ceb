package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"nutrilog/internal/app"
	"nutrilog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var foodNow = time.Date(2024, 5, 2, 8, 30, 0, 0, time.Local)

var oats = domain.NutritionalData{
	FoodID:      "173904",
	Source:      "usda",
	Description: "Oats, rolled",
	Calories:    380,
	Protein:     domain.Float(13),
	Carbs:       domain.Float(68),
	Fat:         domain.Float(6.5),
	ServingSize: 100,
	ServingUnit: "g",
}

func TestFoodLog_AddFood_ScalesServing(t *testing.T) {
	var stored domain.FoodLogEntry
	repo := &mockFoodLogRepo{
		addFn: func(_ context.Context, e domain.FoodLogEntry) (int64, error) {
			stored = e
			return 42, nil
		},
	}
	svc := app.NewFoodLogService(repo, nil, nil, nil).WithClock(fixedClock(foodNow))

	e, err := svc.AddFood(context.Background(), testUser, app.AddFoodInput{
		Meal: "Breakfast", Food: oats, ServingAmount: 50, ServingUnit: "grams",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), e.ID)
	assert.Equal(t, int64(1), stored.UserID)
	assert.Equal(t, "2024-05-02", stored.Date)
	assert.Equal(t, "g", stored.ServingUnit)
	assert.Equal(t, 190.0, stored.Calories)
	assert.Equal(t, 6.5, *stored.Protein)
	assert.Equal(t, 34.0, *stored.Carbs)
	assert.InDelta(t, 3.3, *stored.Fat, 1e-9)
	assert.Equal(t, "173904", stored.FoodID)
	assert.Nil(t, stored.Barcode)
}

func TestFoodLog_AddFood_Validation(t *testing.T) {
	svc := app.NewFoodLogService(&mockFoodLogRepo{
		addFn: func(context.Context, domain.FoodLogEntry) (int64, error) {
			t.Error("invalid entries must not be stored")
			return 0, nil
		},
	}, nil, nil, nil)

	tests := []struct {
		name string
		in   app.AddFoodInput
	}{
		{"zero amount", app.AddFoodInput{Food: oats, ServingAmount: 0}},
		{"negative amount", app.AddFoodInput{Food: oats, ServingAmount: -2}},
		{"bad date", app.AddFoodInput{Food: oats, ServingAmount: 1, Date: "May 2"}},
		{"no description", app.AddFoodInput{Food: domain.NutritionalData{Calories: 10}, ServingAmount: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddFood(context.Background(), testUser, tc.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}

	_, err := svc.AddFood(context.Background(), nil, app.AddFoodInput{Food: oats, ServingAmount: 1})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestFoodLog_AddManual(t *testing.T) {
	var stored domain.FoodLogEntry
	repo := &mockFoodLogRepo{
		addFn: func(_ context.Context, e domain.FoodLogEntry) (int64, error) {
			stored = e
			return 7, nil
		},
	}
	svc := app.NewFoodLogService(repo, nil, nil, nil).WithClock(fixedClock(foodNow))

	_, err := svc.AddManual(context.Background(), testUser, app.ManualEntryInput{
		Description: "Homemade soup", Date: "2024-05-01", Calories: 250.4, Protein: domain.Float(12.34),
	})
	require.NoError(t, err)
	assert.Equal(t, "Snack", stored.Meal)
	assert.Equal(t, "2024-05-01", stored.Date)
	assert.Equal(t, 1.0, stored.ServingAmount)
	assert.Equal(t, "serving", stored.ServingUnit)
	assert.Equal(t, 250.0, stored.Calories)
	assert.Equal(t, 12.3, *stored.Protein)
	assert.Nil(t, stored.Carbs)

	_, err = svc.AddManual(context.Background(), testUser, app.ManualEntryInput{Description: "x", Calories: -5})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.AddManual(context.Background(), testUser, app.ManualEntryInput{Description: "x", Fat: domain.Float(-1)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFoodLog_AddManual_ReportsFirstInvalidMacro(t *testing.T) {
	svc := app.NewFoodLogService(&mockFoodLogRepo{}, nil, nil, nil).WithClock(fixedClock(foodNow))

	for range 20 {
		_, err := svc.AddManual(context.Background(), testUser, app.ManualEntryInput{
			Description: "x", Protein: domain.Float(-1), Carbs: domain.Float(-2), Fat: domain.Float(-3),
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Errors, 1)
		assert.Equal(t, "protein", verr.Errors[0].Field)
	}
}

func TestFoodLog_ListByDate(t *testing.T) {
	repo := &mockFoodLogRepo{
		listFn: func(_ context.Context, userID int64, f domain.EntryFilter) ([]domain.FoodLogEntry, error) {
			assert.Equal(t, "2024-05-02", f.From)
			assert.Equal(t, "2024-05-02", f.To)
			return []domain.FoodLogEntry{
				{Date: "2024-05-02", Calories: 100, Protein: domain.Float(3)},
				{Date: "2024-05-02", Calories: 200},
			}, nil
		},
	}
	svc := app.NewFoodLogService(repo, nil, nil, nil).WithClock(fixedClock(foodNow))

	day, err := svc.ListByDate(context.Background(), testUser, "")
	require.NoError(t, err)
	assert.Len(t, day.Entries, 2)
	assert.Equal(t, 300.0, day.Totals.Calories)
	assert.Equal(t, 3.0, day.Totals.Protein)
	assert.Equal(t, 2, day.Totals.EntryCount)
}

func TestFoodLog_ListByDate_Empty(t *testing.T) {
	svc := app.NewFoodLogService(&mockFoodLogRepo{}, nil, nil, nil)

	day, err := svc.ListByDate(context.Background(), testUser, "2024-01-01")
	require.NoError(t, err)
	assert.NotNil(t, day.Entries)
	assert.Equal(t, "2024-01-01", day.Totals.Date)
	assert.Zero(t, day.Totals.EntryCount)
}

func TestFoodLog_Update_RecomputesFromFoodRecord(t *testing.T) {
	entry := &domain.FoodLogEntry{
		ID: 5, UserID: 1, FoodID: "173904", ServingAmount: 50, ServingUnit: "g",
		Calories: 190, Protein: domain.Float(6.5), Carbs: domain.Float(34), Fat: domain.Float(3.3),
	}
	var updated domain.FoodLogEntry
	repo := &mockFoodLogRepo{
		getFn: func(_ context.Context, userID, id int64) (*domain.FoodLogEntry, error) {
			e := *entry
			return &e, nil
		},
		updateFn: func(_ context.Context, e domain.FoodLogEntry) error {
			updated = e
			return nil
		},
	}
	foods := &mockFoodDB{
		getFn: func(_ context.Context, id string) (*domain.NutritionalData, error) {
			assert.Equal(t, "173904", id)
			f := oats
			return &f, nil
		},
	}
	svc := app.NewFoodLogService(repo, foods, nil, nil)

	got, err := svc.Update(context.Background(), testUser, 5, 2, "servings")
	require.NoError(t, err)
	assert.Equal(t, 760.0, got.Calories)
	assert.Equal(t, 26.0, *got.Protein)
	assert.Equal(t, "serving", updated.ServingUnit)
	assert.Equal(t, 2.0, updated.ServingAmount)
}

func TestFoodLog_Update_ProportionalWithoutRecord(t *testing.T) {
	repo := &mockFoodLogRepo{
		getFn: func(context.Context, int64, int64) (*domain.FoodLogEntry, error) {
			return &domain.FoodLogEntry{
				ID: 9, UserID: 1, ServingAmount: 2, ServingUnit: "serving",
				Calories: 300, Protein: domain.Float(10), Fat: nil,
			}, nil
		},
	}
	svc := app.NewFoodLogService(repo, nil, nil, nil)

	got, err := svc.Update(context.Background(), testUser, 9, 3, "")
	require.NoError(t, err)
	assert.Equal(t, 450.0, got.Calories)
	assert.Equal(t, 15.0, *got.Protein)
	assert.Nil(t, got.Fat)

	_, err = svc.Update(context.Background(), testUser, 9, 3, "g")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFoodLog_Update_LookupFailureFallsBack(t *testing.T) {
	repo := &mockFoodLogRepo{
		getFn: func(context.Context, int64, int64) (*domain.FoodLogEntry, error) {
			code := "0123456789012"
			return &domain.FoodLogEntry{
				ID: 3, UserID: 1, FoodID: code, Barcode: &code,
				ServingAmount: 100, ServingUnit: "g", Calories: 200,
			}, nil
		},
	}
	barcodes := &mockBarcodeLookup{
		lookupFn: func(context.Context, string) (*domain.NutritionalData, error) {
			return nil, errors.New("upstream 503")
		},
	}
	svc := app.NewFoodLogService(repo, nil, barcodes, nil)

	got, err := svc.Update(context.Background(), testUser, 3, 150, "g")
	require.NoError(t, err)
	assert.Equal(t, 300.0, got.Calories)
}

func TestFoodLog_Update_NotFound(t *testing.T) {
	svc := app.NewFoodLogService(&mockFoodLogRepo{}, nil, nil, nil)

	_, err := svc.Update(context.Background(), testUser, 99, 1, "g")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Update(context.Background(), testUser, 99, 0, "g")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFoodLog_Delete(t *testing.T) {
	var gotUser, gotID int64
	repo := &mockFoodLogRepo{
		deleteFn: func(_ context.Context, userID, id int64) error {
			gotUser, gotID = userID, id
			return nil
		},
	}
	svc := app.NewFoodLogService(repo, nil, nil, nil)

	require.NoError(t, svc.Delete(context.Background(), testUser, 12))
	assert.Equal(t, int64(1), gotUser)
	assert.Equal(t, int64(12), gotID)
}

func TestFoodLog_UndoLast(t *testing.T) {
	var deleted int64
	repo := &mockFoodLogRepo{
		listFn: func(_ context.Context, _ int64, f domain.EntryFilter) ([]domain.FoodLogEntry, error) {
			assert.True(t, f.NewestFirst)
			assert.Equal(t, 1, f.Limit)
			return []domain.FoodLogEntry{{ID: 77}}, nil
		},
		deleteFn: func(_ context.Context, _ int64, id int64) error {
			deleted = id
			return nil
		},
	}
	svc := app.NewFoodLogService(repo, nil, nil, nil)

	ok, id, err := svc.UndoLast(context.Background(), testUser)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(77), id)
	assert.Equal(t, int64(77), deleted)

	ok, _, err = app.NewFoodLogService(&mockFoodLogRepo{}, nil, nil, nil).UndoLast(context.Background(), testUser)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFoodLog_Recent_Dedupes(t *testing.T) {
	repo := &mockFoodLogRepo{
		listFn: func(_ context.Context, _ int64, f domain.EntryFilter) ([]domain.FoodLogEntry, error) {
			assert.Equal(t, 10, f.Limit)
			return []domain.FoodLogEntry{
				{ID: 5, FoodID: "1"},
				{ID: 4, Description: "Apple"},
				{ID: 3, FoodID: "1"},
				{ID: 2, Description: "apple"},
				{ID: 1, FoodID: "2"},
			}, nil
		},
	}
	svc := app.NewFoodLogService(repo, nil, nil, nil)

	got, err := svc.Recent(context.Background(), testUser, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].ID)
	assert.Equal(t, int64(4), got[1].ID)
}
