// Package fooddata implements the food database and barcode ports against
// USDA FoodData Central and Open Food Facts.
package fooddata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nutrilog/internal/config"
	"nutrilog/internal/domain"
)

const (
	defaultTimeout = 12 * time.Second
	userAgent      = "nutrilog/1.0"
	maxBodyBytes   = 4 << 20
)

// NewClients builds both clients from configuration, sharing one
// *http.Client.
func NewClients(cfg config.FoodDataConfig) (*USDAClient, *OpenFoodFactsClient) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}
	return &USDAClient{APIKey: cfg.USDAAPIKey, BaseURL: cfg.USDABaseURL, HTTPClient: httpClient},
		&OpenFoodFactsClient{BaseURL: cfg.OFFBaseURL, HTTPClient: httpClient}
}

func httpClientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}

func trimBase(base, fallback string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return fallback
	}
	return base
}

// getJSON issues a GET and decodes a 2xx body into out. 404 maps to
// domain.ErrNotFound, other failures to domain.ErrUpstream.
func getJSON(ctx context.Context, client *http.Client, source, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", source, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("execute %s request: %w: %v", source, domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read %s response: %w: %v", source, domain.ErrUpstream, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", source, domain.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s request failed with status %d: %w", source, resp.StatusCode, domain.ErrUpstream)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w: %v", source, domain.ErrUpstream, err)
	}
	return nil
}

// micronutrientKey turns a nutrient name into a snake_case key for the
// vitamins and minerals worth keeping. ok is false for everything else.
func micronutrientKey(name string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return "", false
	}
	switch {
	case strings.HasPrefix(lower, "fiber"):
		return "fiber", true
	case strings.HasPrefix(lower, "sugars"):
		return "sugar", true
	case strings.HasPrefix(lower, "sodium"):
		return "sodium", true
	}
	isVitamin := strings.Contains(lower, "vitamin")
	isMineral := false
	for _, m := range []string{"iron", "calcium", "potassium", "zinc", "magnesium", "phosphorus", "selenium", "copper", "manganese"} {
		if strings.Contains(lower, m) {
			isMineral = true
			break
		}
	}
	if !isVitamin && !isMineral {
		return "", false
	}
	clean := strings.NewReplacer(",", "", "(", "", ")", "", "-", "_", " ", "_").Replace(lower)
	for strings.Contains(clean, "__") {
		clean = strings.ReplaceAll(clean, "__", "_")
	}
	clean = strings.Trim(clean, "_")
	return clean, clean != ""
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
