package fooddata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrilog/internal/config"
	"nutrilog/internal/domain"
)

func TestOpenFoodFactsLookupBarcode(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/product/3017620422003.json", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "code": "3017620422003",
    "product_name": "Hazelnut spread",
    "brands": "Spready",
    "serving_quantity": "15",
    "serving_quantity_unit": "g",
    "nutriments": {
      "energy-kcal_serving": 81,
      "energy-kcal_100g": 539,
      "proteins_serving": 0.9,
      "carbohydrates_serving": 8.6,
      "fat_serving": 4.6,
      "sugars_serving": 8.5,
      "sugars_unit": "g"
    }
  }
}`))
	}))
	defer ts.Close()

	c := &OpenFoodFactsClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	food, err := c.LookupBarcode(context.Background(), "3017620422003")
	require.NoError(t, err)

	assert.Equal(t, "3017620422003", food.FoodID)
	assert.Equal(t, "3017620422003", food.Barcode)
	assert.Equal(t, SourceOpenFoodFacts, food.Source)
	assert.Equal(t, "Hazelnut spread", food.Description)
	assert.Equal(t, "Spready", food.Brand)
	assert.Equal(t, 15.0, food.ServingSize)
	assert.Equal(t, domain.UnitGram, food.ServingUnit)
	assert.Equal(t, 81.0, food.Calories)
	assert.InDelta(t, 8.6, domain.Value(food.Carbs), 1e-9)
	assert.Equal(t, domain.Micronutrient{Value: 8.5, Unit: "g"}, food.Micronutrients["sugar"])
}

func TestOpenFoodFactsPer100gFallback(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
  "status": 1,
  "product": {
    "product_name": "Oat drink",
    "nutriments": {"energy-kcal_100g": 46, "fat_100g": 1.5}
  }
}`))
	}))
	defer ts.Close()

	c := &OpenFoodFactsClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	food, err := c.LookupBarcode(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, "12345678", food.Barcode)
	assert.Equal(t, 100.0, food.ServingSize)
	assert.Equal(t, domain.UnitGram, food.ServingUnit)
	assert.Equal(t, 46.0, food.Calories)
	assert.Nil(t, food.Protein)
	assert.InDelta(t, 1.5, domain.Value(food.Fat), 1e-9)
}

func TestOpenFoodFactsNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": 0, "status_verbose": "product not found"}`))
	}))
	defer ts.Close()

	c := &OpenFoodFactsClient{BaseURL: ts.URL, HTTPClient: ts.Client()}
	_, err := c.LookupBarcode(context.Background(), "00000000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewClients(t *testing.T) {
	t.Parallel()

	usda, off := NewClients(config.FoodDataConfig{
		USDAAPIKey:  "k",
		USDABaseURL: "https://usda.example",
		OFFBaseURL:  "https://off.example",
		Timeout:     3 * time.Second,
	})
	assert.Equal(t, "k", usda.APIKey)
	assert.Equal(t, "https://off.example", off.BaseURL)
	assert.Same(t, usda.HTTPClient, off.HTTPClient)
	assert.Equal(t, 3*time.Second, usda.HTTPClient.Timeout)
}
