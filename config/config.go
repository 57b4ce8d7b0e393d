package config

import (
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// VersionPolicy decides how applicationVersion is assigned on a new submission.
type VersionPolicy string

const (
	// VersionIncrement numbers each resubmission after the previous one.
	VersionIncrement VersionPolicy = "increment"
	// VersionFixed keeps every submission at version 1.
	VersionFixed VersionPolicy = "fixed"
)

func (p VersionPolicy) IsValid() bool {
	switch p {
	case VersionIncrement, VersionFixed:
		return true
	default:
		return false
	}
}

// Config holds everything the API and the index CLI read from the environment.
type Config struct {
	Address string `env:"ADDRESS" envDefault:"0.0.0.0:8080"`
	GinMode string `env:"GIN_MODE" envDefault:"debug"`

	DatabaseURL string `env:"DATABASE_URL" envDefault:"mongodb://localhost:27017"`
	DBName      string `env:"DB_NAME" envDefault:"agrimarket"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	Secret string `env:"SECRET,required"`

	RateLimit       uint          `env:"RATE_LIMIT" envDefault:"5"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`

	ApplicationVersionPolicy VersionPolicy `env:"APPLICATION_VERSION_POLICY" envDefault:"increment"`
	StatsCacheTTL            time.Duration `env:"STATS_CACHE_TTL" envDefault:"5m"`
	IdempotencyTTL           time.Duration `env:"IDEMPOTENCY_TTL" envDefault:"24h"`
}

// Load reads an optional .env file (ENV_FILE overrides the path) and parses the environment.
func Load() (*Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrapf(err, "load %s", envFile)
	}

	return Parse()
}

// Parse builds a Config from the current process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "parse environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	c.ApplicationVersionPolicy = VersionPolicy(strings.ToLower(string(c.ApplicationVersionPolicy)))
	if !c.ApplicationVersionPolicy.IsValid() {
		return errors.Errorf("invalid APPLICATION_VERSION_POLICY %q: want increment or fixed", c.ApplicationVersionPolicy)
	}
	if c.Secret == "" {
		return errors.New("SECRET must not be empty")
	}
	if c.RateLimit == 0 {
		return errors.New("RATE_LIMIT must be greater than zero")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
