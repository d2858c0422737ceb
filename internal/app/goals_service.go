package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nutrilog/internal/domain"
)

// GoalsService reads, saves and derives calorie and macro goals.
type GoalsService struct {
	repo domain.GoalsRepository
	log  *slog.Logger
	now  func() time.Time
}

// NewGoalsService creates a GoalsService backed by the given repository.
func NewGoalsService(repo domain.GoalsRepository, logger *slog.Logger) *GoalsService {
	return &GoalsService{repo: repo, log: orDiscard(logger), now: time.Now}
}

// BiometricsInput is calculator input as entered by the user. Weight may be
// given in kg or lb and height in cm or in; both default to metric.
type BiometricsInput struct {
	Weight        *float64 `json:"weight,omitempty"`
	WeightUnit    string   `json:"weightUnit,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	HeightUnit    string   `json:"heightUnit,omitempty"`
	Age           *int     `json:"age,omitempty"`
	Sex           string   `json:"sex,omitempty"`
	ActivityLevel string   `json:"activityLevel,omitempty"`
	WeightGoal    string   `json:"weightGoal,omitempty"`
}

// Biometrics converts the input to metric units.
func (in BiometricsInput) Biometrics() (domain.Biometrics, error) {
	b := domain.Biometrics{
		Age:           in.Age,
		Sex:           strings.ToLower(strings.TrimSpace(in.Sex)),
		ActivityLevel: strings.ToLower(strings.TrimSpace(in.ActivityLevel)),
		WeightGoal:    strings.ToLower(strings.TrimSpace(in.WeightGoal)),
	}

	if in.Weight != nil {
		unit := strings.ToLower(strings.TrimSpace(in.WeightUnit))
		switch unit {
		case "", "kg":
			b.WeightKg = domain.Float(*in.Weight)
		case "lb", "lbs":
			b.WeightKg = domain.Float(domain.ConvertWeight(*in.Weight, "lb", "kg"))
		default:
			return domain.Biometrics{}, domain.NewValidationError("weightUnit", `must be "kg" or "lb"`)
		}
	}
	if in.Height != nil {
		unit := strings.ToLower(strings.TrimSpace(in.HeightUnit))
		switch unit {
		case "", "cm":
			b.HeightCm = domain.Float(*in.Height)
		case "in":
			b.HeightCm = domain.Float(domain.ConvertHeight(*in.Height, "in", "cm"))
		default:
			return domain.Biometrics{}, domain.NewValidationError("heightUnit", `must be "cm" or "in"`)
		}
	}
	return b, nil
}

// SaveGoalsInput is a goal update. With AutoCalculate set, the targets are
// derived from Biometrics and the explicit values are ignored.
type SaveGoalsInput struct {
	Calories      int              `json:"calories"`
	Protein       int              `json:"protein"`
	Carbs         int              `json:"carbs"`
	Fat           int              `json:"fat"`
	Biometrics    *BiometricsInput `json:"biometrics,omitempty"`
	AutoCalculate bool             `json:"autoCalculate"`
}

// Get returns the user's goals, or the defaults when none are saved.
func (s *GoalsService) Get(ctx context.Context, user *domain.User) (*domain.UserGoals, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	g, err := s.repo.GetGoals(ctx, user.ID)
	if errors.Is(err, domain.ErrNotFound) {
		d := domain.DefaultGoals(user.ID)
		return &d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get goals: %w", err)
	}
	return g, nil
}

// Save validates and upserts the user's goals.
func (s *GoalsService) Save(ctx context.Context, user *domain.User, in SaveGoalsInput) (*domain.UserGoals, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	var b domain.Biometrics
	if in.Biometrics != nil {
		var err error
		if b, err = in.Biometrics.Biometrics(); err != nil {
			return nil, err
		}
	}

	g := domain.UserGoals{
		UserID:     user.ID,
		Calories:   in.Calories,
		Protein:    in.Protein,
		Carbs:      in.Carbs,
		Fat:        in.Fat,
		Biometrics: b,
	}
	if in.AutoCalculate {
		plan, ok := domain.CalculateGoals(b)
		if !ok {
			return nil, domain.NewValidationError("biometrics", "all calculator inputs are required")
		}
		g = plan.Goals(user.ID, b)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	g.UpdatedAt = s.now()

	if err := s.repo.SaveGoals(ctx, g); err != nil {
		return nil, fmt.Errorf("save goals: %w", err)
	}
	s.log.InfoContext(ctx, "goals saved", "user_id", user.ID, "calories", g.Calories, "derived", in.AutoCalculate)
	return &g, nil
}

// Calculate previews the calculator output without saving.
func (s *GoalsService) Calculate(in BiometricsInput) (domain.GoalPlan, error) {
	b, err := in.Biometrics()
	if err != nil {
		return domain.GoalPlan{}, err
	}
	plan, ok := domain.CalculateGoals(b)
	if !ok {
		return domain.GoalPlan{}, domain.NewValidationError("biometrics", "all calculator inputs are required")
	}
	return plan, nil
}
