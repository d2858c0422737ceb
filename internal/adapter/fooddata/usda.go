package fooddata

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"nutrilog/internal/domain"
)

// SourceUSDA tags foods from FoodData Central.
const SourceUSDA = "usda"

const defaultUSDABaseURL = "https://api.nal.usda.gov/fdc/v1"

// FoodData Central nutrient ids.
const (
	nutrientEnergy        = 1008
	nutrientEnergyAtwater = 2047
	nutrientEnergyGeneral = 2048
	nutrientProtein       = 1003
	nutrientFat           = 1004
	nutrientCarbs         = 1005
)

var _ domain.FoodDatabase = (*USDAClient)(nil)

// USDAClient searches FoodData Central. Its FoodIDs are FDC ids.
type USDAClient struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// SearchFoods runs a term search across all data types.
func (c *USDAClient) SearchFoods(ctx context.Context, query string, limit int) ([]domain.NutritionalData, error) {
	q := url.Values{}
	q.Set("api_key", c.apiKey())
	q.Set("query", strings.TrimSpace(query))
	q.Set("pageSize", strconv.Itoa(limit))

	var parsed usdaSearchResponse
	if err := getJSON(ctx, httpClientOrDefault(c.HTTPClient), "USDA", c.base()+"/foods/search?"+q.Encode(), &parsed); err != nil {
		return nil, err
	}

	out := make([]domain.NutritionalData, 0, len(parsed.Foods))
	for _, f := range parsed.Foods {
		nutrients := make([]usdaNutrientValue, 0, len(f.FoodNutrients))
		for _, n := range f.FoodNutrients {
			nutrients = append(nutrients, usdaNutrientValue{ID: n.NutrientID, Name: n.NutrientName, Unit: n.UnitName, Value: n.Value})
		}
		out = append(out, f.toDomain(nutrients))
	}
	return out, nil
}

// GetFood fetches one food by FDC id.
func (c *USDAClient) GetFood(ctx context.Context, id string) (*domain.NutritionalData, error) {
	fdcID, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
	if err != nil || fdcID <= 0 {
		return nil, fmt.Errorf("USDA food %q: %w", id, domain.ErrNotFound)
	}
	q := url.Values{}
	q.Set("api_key", c.apiKey())

	var parsed usdaFoodDetail
	u := fmt.Sprintf("%s/food/%d?%s", c.base(), fdcID, q.Encode())
	if err := getJSON(ctx, httpClientOrDefault(c.HTTPClient), "USDA", u, &parsed); err != nil {
		return nil, err
	}

	nutrients := make([]usdaNutrientValue, 0, len(parsed.FoodNutrients))
	for _, n := range parsed.FoodNutrients {
		nutrients = append(nutrients, usdaNutrientValue{ID: n.Nutrient.ID, Name: n.Nutrient.Name, Unit: n.Nutrient.UnitName, Value: n.Amount})
	}
	food := parsed.usdaFood.toDomain(nutrients)
	return &food, nil
}

func (c *USDAClient) base() string {
	return trimBase(c.BaseURL, defaultUSDABaseURL)
}

func (c *USDAClient) apiKey() string {
	if k := strings.TrimSpace(c.APIKey); k != "" {
		return k
	}
	return "DEMO_KEY"
}

type usdaSearchResponse struct {
	Foods []usdaSearchFood `json:"foods"`
}

type usdaFood struct {
	FDCID           int64   `json:"fdcId"`
	Description     string  `json:"description"`
	DataType        string  `json:"dataType"`
	BrandOwner      string  `json:"brandOwner"`
	BrandName       string  `json:"brandName"`
	GTINUPC         string  `json:"gtinUpc"`
	ServingSize     float64 `json:"servingSize"`
	ServingSizeUnit string  `json:"servingSizeUnit"`
}

type usdaSearchFood struct {
	usdaFood
	FoodNutrients []struct {
		NutrientID   int     `json:"nutrientId"`
		NutrientName string  `json:"nutrientName"`
		UnitName     string  `json:"unitName"`
		Value        float64 `json:"value"`
	} `json:"foodNutrients"`
}

type usdaFoodDetail struct {
	usdaFood
	FoodNutrients []struct {
		Nutrient struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			UnitName string `json:"unitName"`
		} `json:"nutrient"`
		Amount float64 `json:"amount"`
	} `json:"foodNutrients"`
}

type usdaNutrientValue struct {
	ID    int
	Name  string
	Unit  string
	Value float64
}

// toDomain converts per-100 g nutrient values. Foods with a declared
// gram or millilitre serving are rescaled to that serving; everything else
// is reported per 100 g.
func (f usdaFood) toDomain(nutrients []usdaNutrientValue) domain.NutritionalData {
	out := domain.NutritionalData{
		FoodID:      strconv.FormatInt(f.FDCID, 10),
		Source:      SourceUSDA,
		Description: strings.TrimSpace(f.Description),
		Brand:       strings.TrimSpace(firstNonEmpty(f.BrandName, f.BrandOwner)),
		Barcode:     strings.TrimSpace(f.GTINUPC),
		ServingSize: 100,
		ServingUnit: domain.UnitGram,
	}

	factor := 1.0
	if unit := domain.NormalizeUnit(f.ServingSizeUnit); f.ServingSize > 0 && (unit == domain.UnitGram || unit == domain.UnitMilliliter) {
		factor = f.ServingSize / 100
		out.ServingSize = f.ServingSize
		out.ServingUnit = unit
	}

	var energy, energyFallback *float64
	for _, n := range nutrients {
		v := round1(n.Value * factor)
		switch n.ID {
		case nutrientEnergy:
			if strings.EqualFold(n.Unit, "kcal") {
				energy = domain.Float(v)
			}
		case nutrientEnergyAtwater, nutrientEnergyGeneral:
			if energyFallback == nil && strings.EqualFold(n.Unit, "kcal") {
				energyFallback = domain.Float(v)
			}
		case nutrientProtein:
			out.Protein = domain.Float(v)
		case nutrientFat:
			out.Fat = domain.Float(v)
		case nutrientCarbs:
			out.Carbs = domain.Float(v)
		default:
			if key, ok := micronutrientKey(n.Name); ok && n.Unit != "" {
				if out.Micronutrients == nil {
					out.Micronutrients = map[string]domain.Micronutrient{}
				}
				out.Micronutrients[key] = domain.Micronutrient{Value: v, Unit: strings.ToLower(n.Unit)}
			}
		}
	}
	switch {
	case energy != nil:
		out.Calories = *energy
	case energyFallback != nil:
		out.Calories = *energyFallback
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
