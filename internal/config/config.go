// Package config loads the process configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env"
	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
// Airtable credentials and table ids are required; the rest has defaults
// that match a local development setup.
type Config struct {
	Addr string `env:"ADDR" envDefault:":8080"`

	AirtableAPIKey             string `env:"AIRTABLE_API_KEY,required"`
	ProjectsBaseID             string `env:"PROJECTS_BASE_ID,required"`
	InventoryBaseID            string `env:"INVENTORY_BASE_ID,required"`
	CommercialProjectsTableID  string `env:"COMMERCIAL_PROJECTS_TABLE_ID,required"`
	ResidentialPropsTableID    string `env:"RESIDENTIAL_PROPERTIES_TABLE_ID,required"`
	CommercialPropsTableID     string `env:"COMMERCIAL_PROPERTIES_TABLE_ID,required"`
	LocalitiesTableID          string `env:"LOCALITIES_TABLE_ID,required"`
	ResidentialProjectsTableID string `env:"RESIDENTIAL_PROJECTS_TABLE_ID" envDefault:"residential projects"`

	// FetchBackoffSeconds paces the sequential Airtable fetches during cache
	// population so a full rebuild stays under the remote rate limit.
	FetchBackoffSeconds int `env:"FETCH_BACKOFF_SECONDS" envDefault:"10"`

	// StatsDSN enables the Postgres request-stats store when set.
	StatsDSN string `env:"STATS_DSN"`

	RedisHost string `env:"REDIS_HOST"`
	RedisPort string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPass string `env:"REDIS_PASS"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	AdminToken string `env:"ADMIN_TOKEN"`

	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"false"`
	RateLimitQPS     int  `env:"RATE_LIMIT_QPS" envDefault:"200"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")
	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	if c.FetchBackoffSeconds < 0 {
		return nil, errors.New("FETCH_BACKOFF_SECONDS must not be negative")
	}
	return &c, nil
}

// FetchBackoff returns the inter-fetch pause as a duration.
func (c *Config) FetchBackoff() time.Duration {
	return time.Duration(c.FetchBackoffSeconds) * time.Second
}

// RedisAddr returns host:port, or "" when redis is not configured.
func (c *Config) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}
