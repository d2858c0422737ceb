package domain

import (
	"context"
	"time"
)

// Default goals applied when a user has never saved any: the 30/40/30
// split of 2000 kcal.
const (
	DefaultCalorieGoal = 2000
	DefaultProteinGoal = 150
	DefaultCarbsGoal   = 200
	DefaultFatGoal     = 67
)

// Biometrics is the calculator input snapshot stored alongside the goals.
// Every field is optional; CalculateGoals needs all of them.
type Biometrics struct {
	WeightKg      *float64 `json:"weightKg,omitempty"`
	HeightCm      *float64 `json:"heightCm,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Sex           string   `json:"sex,omitempty"`
	ActivityLevel string   `json:"activityLevel,omitempty"`
	WeightGoal    string   `json:"weightGoal,omitempty"`
}

// Empty reports whether no biometric field is set.
func (b Biometrics) Empty() bool {
	return b.WeightKg == nil && b.HeightCm == nil && b.Age == nil &&
		b.Sex == "" && b.ActivityLevel == "" && b.WeightGoal == ""
}

// UserGoals is a user's daily calorie and macro targets. The stored values
// may diverge from what the biometrics would derive.
type UserGoals struct {
	UserID     int64      `json:"userId"`
	Calories   int        `json:"calories"`
	Protein    int        `json:"protein"`
	Carbs      int        `json:"carbs"`
	Fat        int        `json:"fat"`
	Biometrics Biometrics `json:"biometrics"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// DefaultGoals returns the goals used for a user without a saved record.
func DefaultGoals(userID int64) UserGoals {
	return UserGoals{
		UserID:   userID,
		Calories: DefaultCalorieGoal,
		Protein:  DefaultProteinGoal,
		Carbs:    DefaultCarbsGoal,
		Fat:      DefaultFatGoal,
	}
}

// Validate checks that every target is a positive integer.
func (g UserGoals) Validate() error {
	var errs []FieldError
	check := func(field string, v int) {
		if v <= 0 {
			errs = append(errs, FieldError{Field: field, Message: "must be a positive integer"})
		}
	}
	check("calories", g.Calories)
	check("protein", g.Protein)
	check("carbs", g.Carbs)
	check("fat", g.Fat)
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}

// GoalsRepository is the port for goal persistence. GetGoals returns
// ErrNotFound when the user has no saved record; SaveGoals upserts.
type GoalsRepository interface {
	GetGoals(ctx context.Context, userID int64) (*UserGoals, error)
	SaveGoals(ctx context.Context, g UserGoals) error
}
