package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"

	"nutrilog/internal/app"
	"nutrilog/internal/domain"
)

// Tool names exposed to the model.
const (
	ToolSearchFood      = "search_food"
	ToolLogFood         = "log_food"
	ToolGetDailySummary = "get_daily_summary"
	ToolGetGoals        = "get_goals"
)

// FoodSearcher is the slice of app.FoodSearchService the tools use.
type FoodSearcher interface {
	Search(ctx context.Context, user *domain.User, query string, limit int) ([]domain.NutritionalData, error)
	Get(ctx context.Context, id string) (*domain.NutritionalData, error)
}

// FoodLogger is the slice of app.FoodLogService the tools use.
type FoodLogger interface {
	AddFood(ctx context.Context, user *domain.User, in app.AddFoodInput) (*domain.FoodLogEntry, error)
	AddManual(ctx context.Context, user *domain.User, in app.ManualEntryInput) (*domain.FoodLogEntry, error)
	ListByDate(ctx context.Context, user *domain.User, date string) (*app.DayLog, error)
}

// GoalsReader is the slice of app.GoalsService the tools use.
type GoalsReader interface {
	Get(ctx context.Context, user *domain.User) (*domain.UserGoals, error)
}

// Tools dispatches model tool calls to the application services on behalf
// of one user.
type Tools struct {
	search FoodSearcher
	logs   FoodLogger
	goals  GoalsReader
}

// NewTools creates the tool set.
func NewTools(search FoodSearcher, logs FoodLogger, goals GoalsReader) *Tools {
	return &Tools{search: search, logs: logs, goals: goals}
}

// Params returns the tool definitions sent with every request.
func (t *Tools) Params() []anthropic.ToolUnionParam {
	defs := []anthropic.ToolParam{
		{
			Name:        ToolSearchFood,
			Description: anthropic.String("Search the food database by name. Returns foods with per-serving calories and macros."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]any{
					"query": map[string]any{"type": "string", "description": "Food name, e.g. \"greek yogurt\""},
					"limit": map[string]any{"type": "integer", "description": "Maximum results, default 5"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name: ToolLogFood,
			Description: anthropic.String("Log a food to the user's diary. Pass food_id from search_food with a serving, " +
				"or a description with explicit calories and macros when no database match fits."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]any{
					"food_id":        map[string]any{"type": "string", "description": "Id returned by search_food"},
					"description":    map[string]any{"type": "string"},
					"meal":           map[string]any{"type": "string", "description": "Breakfast, Lunch, Dinner or Snack"},
					"date":           map[string]any{"type": "string", "description": "YYYY-MM-DD, default today"},
					"serving_amount": map[string]any{"type": "number"},
					"serving_unit":   map[string]any{"type": "string", "description": "g, ml, oz, cup, serving, ..."},
					"calories":       map[string]any{"type": "number"},
					"protein":        map[string]any{"type": "number"},
					"carbs":          map[string]any{"type": "number"},
					"fat":            map[string]any{"type": "number"},
				},
			},
		},
		{
			Name:        ToolGetDailySummary,
			Description: anthropic.String("Get the entries and calorie/macro totals logged on one day."),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: map[string]any{
					"date": map[string]any{"type": "string", "description": "YYYY-MM-DD, default today"},
				},
			},
		},
		{
			Name:        ToolGetGoals,
			Description: anthropic.String("Get the user's daily calorie and macro goals."),
			InputSchema: anthropic.ToolInputSchemaParam{Properties: map[string]any{}},
		},
	}

	out := make([]anthropic.ToolUnionParam, len(defs))
	for i := range defs {
		out[i] = anthropic.ToolUnionParam{OfTool: &defs[i]}
	}
	return out
}

// Call runs one tool and returns its JSON result.
func (t *Tools) Call(ctx context.Context, user *domain.User, name string, input json.RawMessage) (string, error) {
	var (
		result any
		err    error
	)
	switch name {
	case ToolSearchFood:
		result, err = t.searchFood(ctx, user, input)
	case ToolLogFood:
		result, err = t.logFood(ctx, user, input)
	case ToolGetDailySummary:
		result, err = t.dailySummary(ctx, user, input)
	case ToolGetGoals:
		result, err = t.goals.Get(ctx, user)
	default:
		return "", fmt.Errorf("unknown tool %q", name)
	}
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", name, err)
	}
	return string(b), nil
}

type foodSummary struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Brand       string   `json:"brand,omitempty"`
	Calories    float64  `json:"calories"`
	Protein     *float64 `json:"protein"`
	Carbs       *float64 `json:"carbs"`
	Fat         *float64 `json:"fat"`
	ServingSize float64  `json:"servingSize"`
	ServingUnit string   `json:"servingUnit"`
}

func (t *Tools) searchFood(ctx context.Context, user *domain.User, input json.RawMessage) ([]foodSummary, error) {
	var in struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	if in.Limit <= 0 {
		in.Limit = 5
	}
	foods, err := t.search.Search(ctx, user, in.Query, in.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]foodSummary, 0, len(foods))
	for _, f := range foods {
		out = append(out, foodSummary{
			ID:          f.FoodID,
			Description: f.Description,
			Brand:       f.Brand,
			Calories:    f.Calories,
			Protein:     f.Protein,
			Carbs:       f.Carbs,
			Fat:         f.Fat,
			ServingSize: f.ServingSize,
			ServingUnit: f.ServingUnit,
		})
	}
	return out, nil
}

func (t *Tools) logFood(ctx context.Context, user *domain.User, input json.RawMessage) (*domain.FoodLogEntry, error) {
	var in struct {
		FoodID        string   `json:"food_id"`
		Description   string   `json:"description"`
		Meal          string   `json:"meal"`
		Date          string   `json:"date"`
		ServingAmount float64  `json:"serving_amount"`
		ServingUnit   string   `json:"serving_unit"`
		Calories      *float64 `json:"calories"`
		Protein       *float64 `json:"protein"`
		Carbs         *float64 `json:"carbs"`
		Fat           *float64 `json:"fat"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}

	if id := strings.TrimSpace(in.FoodID); id != "" {
		food, err := t.search.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		amount, unit := in.ServingAmount, in.ServingUnit
		if amount <= 0 {
			amount, unit = 1, domain.UnitServing
		}
		return t.logs.AddFood(ctx, user, app.AddFoodInput{
			Meal:          in.Meal,
			Date:          in.Date,
			Food:          *food,
			ServingAmount: amount,
			ServingUnit:   unit,
		})
	}

	if in.Calories == nil {
		return nil, domain.NewValidationError("calories", "is required without food_id")
	}
	return t.logs.AddManual(ctx, user, app.ManualEntryInput{
		Meal:          in.Meal,
		Date:          in.Date,
		Description:   in.Description,
		ServingAmount: in.ServingAmount,
		ServingUnit:   in.ServingUnit,
		Calories:      *in.Calories,
		Protein:       in.Protein,
		Carbs:         in.Carbs,
		Fat:           in.Fat,
	})
}

func (t *Tools) dailySummary(ctx context.Context, user *domain.User, input json.RawMessage) (*app.DayLog, error) {
	var in struct {
		Date string `json:"date"`
	}
	if err := decodeInput(input, &in); err != nil {
		return nil, err
	}
	return t.logs.ListByDate(ctx, user, in.Date)
}

func decodeInput(input json.RawMessage, dst any) error {
	if len(input) == 0 {
		return nil
	}
	if err := json.Unmarshal(input, dst); err != nil {
		return fmt.Errorf("invalid tool input: %w", err)
	}
	return nil
}
