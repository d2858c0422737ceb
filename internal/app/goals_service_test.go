package app_test

import (
	"context"
	"errors"
	"testing"

	"nutrilog/internal/app"
	"nutrilog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestGoals_Get_DefaultsWhenAbsent(t *testing.T) {
	svc := app.NewGoalsService(&mockGoalsRepo{}, nil)

	g, err := svc.Get(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, 2000, g.Calories)
	assert.Equal(t, 150, g.Protein)
	assert.Equal(t, 200, g.Carbs)
	assert.Equal(t, 67, g.Fat)
}

func TestGoals_Get_StoreError(t *testing.T) {
	svc := app.NewGoalsService(&mockGoalsRepo{
		getFn: func(context.Context, int64) (*domain.UserGoals, error) { return nil, errors.New("boom") },
	}, nil)

	_, err := svc.Get(context.Background(), testUser)
	assert.Error(t, err)
	_, err = svc.Get(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestGoals_Save_Manual(t *testing.T) {
	var saved domain.UserGoals
	svc := app.NewGoalsService(&mockGoalsRepo{
		saveFn: func(_ context.Context, g domain.UserGoals) error {
			saved = g
			return nil
		},
	}, nil)

	g, err := svc.Save(context.Background(), testUser, app.SaveGoalsInput{
		Calories: 1800, Protein: 140, Carbs: 180, Fat: 60,
		Biometrics: &app.BiometricsInput{Weight: domain.Float(154), WeightUnit: "lb"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1800, g.Calories)
	assert.Equal(t, int64(1), saved.UserID)
	require.NotNil(t, saved.Biometrics.WeightKg)
	assert.InDelta(t, 69.85, *saved.Biometrics.WeightKg, 0.01)
	assert.False(t, saved.UpdatedAt.IsZero())
}

func TestGoals_Save_Validation(t *testing.T) {
	svc := app.NewGoalsService(&mockGoalsRepo{
		saveFn: func(context.Context, domain.UserGoals) error {
			t.Error("invalid goals must not be saved")
			return nil
		},
	}, nil)

	_, err := svc.Save(context.Background(), testUser, app.SaveGoalsInput{Calories: 2000, Protein: 0, Carbs: 200, Fat: 60})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Save(context.Background(), testUser, app.SaveGoalsInput{
		AutoCalculate: true,
		Biometrics:    &app.BiometricsInput{Weight: domain.Float(70)},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Save(context.Background(), testUser, app.SaveGoalsInput{
		Calories: 2000, Protein: 150, Carbs: 200, Fat: 67,
		Biometrics: &app.BiometricsInput{Height: domain.Float(70), HeightUnit: "ft"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGoals_Save_AutoCalculate(t *testing.T) {
	svc := app.NewGoalsService(&mockGoalsRepo{}, nil)

	g, err := svc.Save(context.Background(), testUser, app.SaveGoalsInput{
		Calories:      1, // ignored
		AutoCalculate: true,
		Biometrics: &app.BiometricsInput{
			Weight: domain.Float(70), Height: domain.Float(175), Age: intPtr(30),
			Sex: "Male", ActivityLevel: "moderately_active", WeightGoal: "lose",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2056, g.Calories)
	assert.Equal(t, domain.CalculateMacros(2056).Protein, g.Protein)
	assert.Equal(t, "male", g.Biometrics.Sex)
}

func TestGoals_Calculate(t *testing.T) {
	svc := app.NewGoalsService(&mockGoalsRepo{}, nil)

	plan, err := svc.Calculate(app.BiometricsInput{
		Weight: domain.Float(70), Height: domain.Float(68.9), HeightUnit: "in", Age: intPtr(30),
		Sex: "male", ActivityLevel: "sedentary", WeightGoal: "maintain",
	})
	require.NoError(t, err)
	assert.InDelta(t, 1648.75, plan.BMR, 0.5)
	assert.InDelta(t, plan.BMR*1.2, plan.TDEE, 1e-9)

	_, err = svc.Calculate(app.BiometricsInput{Weight: domain.Float(70)})
	assert.ErrorIs(t, err, domain.ErrValidation)
}
