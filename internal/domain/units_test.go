package domain_test

import (
	"errors"
	"math"
	"testing"

	"nutrilog/internal/domain"
)

func TestNormalizeUnit(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tablespoons", "tbsp"},
		{"  Grams ", "g"},
		{"GRM", "g"},
		{"MLT", "ml"},
		{"ounces", "oz"},
		{"lbs", "lb"},
		{"Cups", "cup"},
		{"teaspoon", "tsp"},
		{"pcs", "piece"},
		{"Slices", "slice"},
		{"Servings", "serving"},
		{"xyz", "xyz"},
		{"  Handful ", "handful"},
		{"", ""},
	}
	for _, tc := range tests {
		if got := domain.NormalizeUnit(tc.in); got != tc.want {
			t.Errorf("NormalizeUnit(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestComputeMultiplier(t *testing.T) {
	tests := []struct {
		name    string
		amount  float64
		unit    string
		refSize float64
		refUnit string
		want    float64
	}{
		{"same unit divides", 150, "g", 100, "g", 1.5},
		{"synonyms match", 2, "Tablespoons", 1, "tbsp", 2},
		{"serving passes through", 2, "serving", 30, "g", 2},
		{"mismatched units pass through", 3, "oz", 240, "ml", 3},
		{"zero reference defaults to 100", 50, "g", 0, "g", 0.5},
		{"negative reference defaults to 100", 200, "g", -5, "g", 2},
		{"empty reference unit means grams", 250, "grams", 100, "", 2.5},
		{"usda code", 60, "g", 30, "GRM", 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.ComputeMultiplier(tc.amount, tc.unit, tc.refSize, tc.refUnit)
			if !almostEqual(got, tc.want, 1e-9) {
				t.Errorf("ComputeMultiplier = %v; want %v", got, tc.want)
			}
		})
	}
}

func TestComputeMultiplier_NeverDividesByZero(t *testing.T) {
	got := domain.ComputeMultiplier(10, "g", 0, "")
	if math.IsInf(got, 0) || math.IsNaN(got) {
		t.Fatalf("expected finite result, got %v", got)
	}
}

func TestScaleNutrition(t *testing.T) {
	food := domain.NutritionalData{
		Calories:    200,
		Protein:     domain.Float(10),
		Fat:         domain.Float(3.33),
		ServingSize: 100,
		ServingUnit: "g",
	}

	got, err := domain.ScaleNutrition(food, 150, "grams")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Calories != 300 {
		t.Errorf("calories = %v; want 300", got.Calories)
	}
	if got.Protein == nil || *got.Protein != 15 {
		t.Errorf("protein = %v; want 15", got.Protein)
	}
	if got.Carbs != nil {
		t.Errorf("carbs = %v; want nil", *got.Carbs)
	}
	if got.Fat == nil || *got.Fat != 5 {
		t.Errorf("fat = %v; want 5", got.Fat)
	}
}

func TestScaleNutrition_RejectsInvalidAmounts(t *testing.T) {
	food := domain.NutritionalData{Calories: 100, ServingSize: 100, ServingUnit: "g"}
	for _, amount := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := domain.ScaleNutrition(food, amount, "g")
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("amount %v: expected ErrValidation, got %v", amount, err)
		}
	}
}
