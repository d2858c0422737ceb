package domain

import (
	"math"
	"strings"
)

// Canonical serving units.
const (
	UnitGram       = "g"
	UnitOunce      = "oz"
	UnitPound      = "lb"
	UnitMilliliter = "ml"
	UnitCup        = "cup"
	UnitTablespoon = "tbsp"
	UnitTeaspoon   = "tsp"
	UnitPiece      = "piece"
	UnitSlice      = "slice"
	UnitServing    = "serving"
)

const (
	defaultReferenceSize = 100
	defaultReferenceUnit = UnitGram
)

var unitSynonyms = map[string]string{
	"g": UnitGram, "gram": UnitGram, "grams": UnitGram, "gr": UnitGram, "gm": UnitGram,
	"grm": UnitGram, // USDA servingSizeUnit code

	"oz": UnitOunce, "ounce": UnitOunce, "ounces": UnitOunce,

	"lb": UnitPound, "lbs": UnitPound, "pound": UnitPound, "pounds": UnitPound,

	"ml": UnitMilliliter, "milliliter": UnitMilliliter, "milliliters": UnitMilliliter,
	"millilitre": UnitMilliliter, "millilitres": UnitMilliliter,
	"mlt": UnitMilliliter, // USDA servingSizeUnit code

	"cup": UnitCup, "cups": UnitCup,

	"tbsp": UnitTablespoon, "tbs": UnitTablespoon, "tbl": UnitTablespoon,
	"tablespoon": UnitTablespoon, "tablespoons": UnitTablespoon,

	"tsp": UnitTeaspoon, "teaspoon": UnitTeaspoon, "teaspoons": UnitTeaspoon,

	"piece": UnitPiece, "pieces": UnitPiece, "pc": UnitPiece, "pcs": UnitPiece,
	"item": UnitPiece, "items": UnitPiece, "each": UnitPiece, "whole": UnitPiece,

	"slice": UnitSlice, "slices": UnitSlice,

	"serving": UnitServing, "servings": UnitServing, "portion": UnitServing,
	"portions": UnitServing, "srv": UnitServing,
}

// NormalizeUnit maps free-text serving units onto the canonical set.
// Unrecognised units come back trimmed and lower-cased; it never fails.
func NormalizeUnit(unit string) string {
	u := strings.ToLower(strings.TrimSpace(unit))
	if canonical, ok := unitSynonyms[u]; ok {
		return canonical
	}
	return u
}

// ComputeMultiplier returns the factor applied to a food's per-serving
// nutrition for the requested amount and unit. A reference size <= 0 means
// 100 and an empty reference unit means grams.
//
// Units that differ (and are not "serving") are not converted: the raw amount
// is returned. Non-finite results are left for the caller to reject.
func ComputeMultiplier(amount float64, unit string, refSize float64, refUnit string) float64 {
	if refSize <= 0 || math.IsNaN(refSize) {
		refSize = defaultReferenceSize
	}
	if strings.TrimSpace(refUnit) == "" {
		refUnit = defaultReferenceUnit
	}

	requested := NormalizeUnit(unit)
	reference := NormalizeUnit(refUnit)

	switch {
	case requested == UnitServing:
		return amount
	case requested == reference:
		return amount / refSize
	default:
		return amount
	}
}

// Nutrients is a calorie/macro tuple. Nil macros stay nil through scaling.
type Nutrients struct {
	Calories float64
	Protein  *float64
	Carbs    *float64
	Fat      *float64
}

// ScaleNutrition applies the serving multiplier to food and returns the
// absolute nutrients to persist. Calories are rounded to whole kcal and
// macros to 0.1 g.
func ScaleNutrition(food NutritionalData, amount float64, unit string) (Nutrients, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Nutrients{}, NewValidationError("servingAmount", "must be a positive number")
	}
	m := ComputeMultiplier(amount, unit, food.ServingSize, food.ServingUnit)
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		return Nutrients{}, NewValidationError("servingAmount", "produces an invalid serving multiplier")
	}
	return Nutrients{
		Calories: math.Round(food.Calories * m),
		Protein:  scaleMacro(food.Protein, m),
		Carbs:    scaleMacro(food.Carbs, m),
		Fat:      scaleMacro(food.Fat, m),
	}, nil
}

func scaleMacro(v *float64, m float64) *float64 {
	if v == nil {
		return nil
	}
	return Float(math.Round(*v*m*10) / 10)
}
