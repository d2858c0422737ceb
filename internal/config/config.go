// Package config loads the application configuration from YAML and the
// environment.
package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	FoodData FoodDataConfig `yaml:"food_data"`
	Search   SearchConfig   `yaml:"search"`
	Agent    AgentConfig    `yaml:"agent"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"ADDR"                    env-default:":8080"`
	WebDir          string        `yaml:"web_dir"          env:"WEB_DIR"                 env-default:"web"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// DatabaseConfig selects and tunes the storage backend.
type DatabaseConfig struct {
	Driver          string        `yaml:"driver"             env:"DATABASE_DRIVER"             env-default:"postgres"`
	URL             string        `yaml:"url"                env:"DATABASE_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns"     env:"DATABASE_MAX_OPEN_CONNS"     env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns"     env:"DATABASE_MAX_IDLE_CONNS"     env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"  env:"DATABASE_CONN_MAX_LIFETIME"  env-default:"5m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DATABASE_CONN_MAX_IDLE_TIME" env-default:"1m"`
}

// AuthConfig holds session, token and SSO settings.
type AuthConfig struct {
	Disabled     bool          `yaml:"disabled"       env:"AUTH_DISABLED"     env-default:"false"`
	ForwardAuth  bool          `yaml:"forward_auth"   env:"AUTH_FORWARD_AUTH" env-default:"false"`
	SessionTTL   time.Duration `yaml:"session_ttl"    env:"AUTH_SESSION_TTL"  env-default:"24h"`
	JWTSecret    string        `yaml:"jwt_secret"     env:"AUTH_JWT_SECRET"`
	JWTIssuer    string        `yaml:"jwt_issuer"     env:"AUTH_JWT_ISSUER"   env-default:"nutrilog"`
	TokenTTL     time.Duration `yaml:"token_ttl"      env:"AUTH_TOKEN_TTL"    env-default:"720h"`
	OIDCIssuer   string        `yaml:"oidc_issuer"    env:"OIDC_ISSUER"`
	OIDCClientID string        `yaml:"oidc_client_id" env:"OIDC_CLIENT_ID"`
	OIDCSecret   string        `yaml:"oidc_secret"    env:"OIDC_CLIENT_SECRET"`
	OIDCRedirect string        `yaml:"oidc_redirect"  env:"OIDC_REDIRECT_URL"`
}

// SSOEnabled reports whether every OIDC setting is present.
func (c AuthConfig) SSOEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != "" && c.OIDCSecret != "" && c.OIDCRedirect != ""
}

// TokensEnabled reports whether JWT bearer tokens can be issued.
func (c AuthConfig) TokensEnabled() bool {
	return c.JWTSecret != ""
}

// FoodDataConfig holds the external food database clients' settings.
type FoodDataConfig struct {
	USDAAPIKey     string        `yaml:"usda_api_key"     env:"USDA_API_KEY"          env-default:"DEMO_KEY"`
	USDABaseURL    string        `yaml:"usda_base_url"    env:"USDA_BASE_URL"         env-default:"https://api.nal.usda.gov/fdc/v1"`
	OFFBaseURL     string        `yaml:"off_base_url"     env:"OFF_BASE_URL"          env-default:"https://world.openfoodfacts.org"`
	Timeout        time.Duration `yaml:"timeout"          env:"FOOD_DATA_TIMEOUT"     env-default:"12s"`
	SearchPageSize int           `yaml:"search_page_size" env:"FOOD_SEARCH_PAGE_SIZE" env-default:"25"`
}

// SearchConfig tunes search-as-you-type de-duplication.
type SearchConfig struct {
	QuietPeriod time.Duration `yaml:"quiet_period" env:"SEARCH_QUIET_PERIOD" env-default:"300ms"`
}

// AgentConfig holds the conversational agent settings. The agent is disabled
// when APIKey is empty.
type AgentConfig struct {
	APIKey    string `yaml:"api_key"    env:"ANTHROPIC_API_KEY"`
	Model     string `yaml:"model"      env:"AGENT_MODEL"      env-default:"claude-sonnet-4-5"`
	MaxTokens int64  `yaml:"max_tokens" env:"AGENT_MAX_TOKENS" env-default:"1024"`
	MaxTurns  int    `yaml:"max_turns"  env:"AGENT_MAX_TURNS"  env-default:"6"`
}

// Enabled reports whether an API key is configured.
func (c AgentConfig) Enabled() bool {
	return c.APIKey != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}
