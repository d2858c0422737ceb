package fooddata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"nutrilog/internal/domain"
)

// SourceOpenFoodFacts tags products from Open Food Facts.
const SourceOpenFoodFacts = "openfoodfacts"

const defaultOFFBaseURL = "https://world.openfoodfacts.org"

var _ domain.BarcodeLookup = (*OpenFoodFactsClient)(nil)

// OpenFoodFactsClient resolves product barcodes.
type OpenFoodFactsClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// LookupBarcode fetches a product. Unknown products and products without a
// name return domain.ErrNotFound.
func (c *OpenFoodFactsClient) LookupBarcode(ctx context.Context, code string) (*domain.NutritionalData, error) {
	code = strings.TrimSpace(code)
	u := fmt.Sprintf("%s/api/v2/product/%s.json", trimBase(c.BaseURL, defaultOFFBaseURL), code)

	var parsed offResponse
	if err := getJSON(ctx, httpClientOrDefault(c.HTTPClient), "openfoodfacts", u, &parsed); err != nil {
		return nil, err
	}
	if parsed.Status != 1 || strings.TrimSpace(parsed.Product.ProductName) == "" {
		return nil, fmt.Errorf("openfoodfacts product %q: %w", code, domain.ErrNotFound)
	}
	food := parsed.Product.toDomain(code)
	return &food, nil
}

type offResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offProduct struct {
	Code                string         `json:"code"`
	ProductName         string         `json:"product_name"`
	Brands              string         `json:"brands"`
	ServingSize         string         `json:"serving_size"`
	ServingQuantity     any            `json:"serving_quantity"`
	ServingQuantityUnit string         `json:"serving_quantity_unit"`
	Nutriments          map[string]any `json:"nutriments"`
}

// toDomain prefers per-serving nutriments when the product declares a
// serving and falls back to per-100 g values.
func (p offProduct) toDomain(code string) domain.NutritionalData {
	barcode := strings.TrimSpace(p.Code)
	if barcode == "" {
		barcode = code
	}
	out := domain.NutritionalData{
		FoodID:      barcode,
		Source:      SourceOpenFoodFacts,
		Description: strings.TrimSpace(p.ProductName),
		Brand:       strings.TrimSpace(p.Brands),
		Barcode:     barcode,
	}

	suffix := "_100g"
	out.ServingSize, out.ServingUnit = 100, domain.UnitGram
	if size, unit, ok := p.serving(); ok {
		if _, has := p.Nutriments["energy-kcal_serving"]; has {
			suffix = "_serving"
			out.ServingSize, out.ServingUnit = size, unit
		}
	}

	if v, ok := parseFloatAny(p.Nutriments["energy-kcal"+suffix]); ok {
		out.Calories = v
	}
	out.Protein = nutrimentPtr(p.Nutriments, "proteins"+suffix)
	out.Carbs = nutrimentPtr(p.Nutriments, "carbohydrates"+suffix)
	out.Fat = nutrimentPtr(p.Nutriments, "fat"+suffix)

	for key, raw := range p.Nutriments {
		if !strings.HasSuffix(key, suffix) {
			continue
		}
		base := strings.TrimSuffix(key, suffix)
		switch base {
		case "energy-kcal", "energy", "energy-kj", "proteins", "carbohydrates", "fat":
			continue
		}
		name, ok := micronutrientKey(strings.ReplaceAll(base, "-", " "))
		if !ok {
			continue
		}
		v, ok := parseFloatAny(raw)
		if !ok {
			continue
		}
		unit := "g"
		if u, ok := p.Nutriments[base+"_unit"].(string); ok && u != "" {
			unit = strings.ToLower(u)
		}
		if out.Micronutrients == nil {
			out.Micronutrients = map[string]domain.Micronutrient{}
		}
		out.Micronutrients[name] = domain.Micronutrient{Value: v, Unit: unit}
	}
	return out
}

func (p offProduct) serving() (float64, string, bool) {
	if qty, ok := parseFloatAny(p.ServingQuantity); ok && qty > 0 {
		unit := strings.TrimSpace(p.ServingQuantityUnit)
		if unit == "" {
			unit = domain.UnitGram
		}
		return qty, domain.NormalizeUnit(unit), true
	}
	parts := strings.Fields(strings.TrimSpace(p.ServingSize))
	if len(parts) >= 2 {
		if val, err := strconv.ParseFloat(strings.ReplaceAll(parts[0], ",", "."), 64); err == nil && val > 0 {
			return val, domain.NormalizeUnit(parts[1]), true
		}
	}
	return 0, "", false
}

func nutrimentPtr(n map[string]any, key string) *float64 {
	if v, ok := parseFloatAny(n[key]); ok {
		return domain.Float(v)
	}
	return nil
}

func parseFloatAny(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
