package config

import (
	"fmt"
	"strings"
)

// Validate performs cross-field validation on the loaded configuration.
// Load calls it automatically.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url is required for driver %q", c.Database.Driver)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("database.driver must be one of postgres, sqlite, memory (got %q)", c.Database.Driver)
	}

	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("auth.session_ttl must be > 0 (got %s)", c.Auth.SessionTTL)
	}
	oidcSet := c.Auth.OIDCIssuer != "" || c.Auth.OIDCClientID != "" || c.Auth.OIDCSecret != "" || c.Auth.OIDCRedirect != ""
	if oidcSet && !c.Auth.SSOEnabled() {
		return fmt.Errorf("auth: oidc issuer, client id, secret and redirect must be set together")
	}

	if c.FoodData.Timeout <= 0 {
		return fmt.Errorf("food_data.timeout must be > 0 (got %s)", c.FoodData.Timeout)
	}
	if c.Search.QuietPeriod < 0 {
		return fmt.Errorf("search.quiet_period must be >= 0 (got %s)", c.Search.QuietPeriod)
	}
	if c.Agent.MaxTurns <= 0 {
		return fmt.Errorf("agent.max_turns must be > 0 (got %d)", c.Agent.MaxTurns)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	return nil
}
