package domain

import (
	"context"
	"time"
)

// DateLayout is the calendar-date format used for FoodLogEntry.Date and all
// range boundaries. Lexical order equals chronological order.
const DateLayout = "2006-01-02"

// FoodLogEntry is one logged food occurrence. Calories and macros are stored
// already scaled for the chosen serving; nothing multiplies them at read time.
type FoodLogEntry struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Meal          string    `json:"meal"`
	FoodID        string    `json:"foodId,omitempty"`
	Description   string    `json:"description"`
	ServingAmount float64   `json:"servingAmount"`
	ServingUnit   string    `json:"servingUnit"`
	Calories      float64   `json:"calories"`
	Protein       *float64  `json:"protein"`
	Carbs         *float64  `json:"carbs"`
	Fat           *float64  `json:"fat"`
	LoggedAt      time.Time `json:"loggedAt"`
	Date          string    `json:"date"`
	Barcode       *string   `json:"barcode,omitempty"`
}

// Micronutrient is a single optional nutrient amount with its unit.
type Micronutrient struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// NutritionalData is a food-database record's per-serving nutrition. It is
// immutable input to the serving multiplier.
type NutritionalData struct {
	FoodID         string                   `json:"foodId"`
	Source         string                   `json:"source"`
	Description    string                   `json:"description"`
	Brand          string                   `json:"brand,omitempty"`
	Barcode        string                   `json:"barcode,omitempty"`
	Calories       float64                  `json:"calories"`
	Protein        *float64                 `json:"protein"`
	Carbs          *float64                 `json:"carbs"`
	Fat            *float64                 `json:"fat"`
	ServingSize    float64                  `json:"servingSize"`
	ServingUnit    string                   `json:"servingUnit"`
	Micronutrients map[string]Micronutrient `json:"micronutrients,omitempty"`
}

// EntryFilter narrows a FoodLogRepository listing. Zero values mean "no
// constraint". Dates are inclusive.
type EntryFilter struct {
	From        string
	To          string
	Meal        string
	Limit       int
	NewestFirst bool
}

// FoodLogRepository is the port for food-log persistence. All operations are
// scoped to the owning user.
type FoodLogRepository interface {
	AddEntry(ctx context.Context, e FoodLogEntry) (int64, error)
	GetEntry(ctx context.Context, userID, id int64) (*FoodLogEntry, error)
	UpdateEntry(ctx context.Context, e FoodLogEntry) error
	DeleteEntry(ctx context.Context, userID, id int64) error
	ListEntries(ctx context.Context, userID int64, f EntryFilter) ([]FoodLogEntry, error)
}

// FoodDatabase is the port for the third-party food-composition service.
type FoodDatabase interface {
	SearchFoods(ctx context.Context, query string, limit int) ([]NutritionalData, error)
	GetFood(ctx context.Context, id string) (*NutritionalData, error)
}

// BarcodeLookup resolves a scanned product code to nutrition data.
type BarcodeLookup interface {
	LookupBarcode(ctx context.Context, code string) (*NutritionalData, error)
}

// Float returns a pointer to v. Handy for the nullable macro fields.
func Float(v float64) *float64 { return &v }

// Value returns *p, or 0 when p is nil.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}
