package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/wichananm65/able-backend/internal/catalog"
	"github.com/wichananm65/able-backend/internal/domain"
	"github.com/wichananm65/able-backend/internal/filter"
	"github.com/wichananm65/able-backend/internal/preference"
	"github.com/wichananm65/able-backend/internal/rank"
)

type Config struct {
	Addr string
	// DatabaseURL selects the Postgres catalog; empty serves the built-in fixtures.
	DatabaseURL string
	// RedisURL, then PreferenceDB, pick the preference store; neither means memory.
	RedisURL       string
	PreferenceDB   string
	JWTSecret      string
	AllowDevTokens bool

	LogMode string
	LogFile string

	CatalogWarmSpec string
	Timeouts        catalog.Timeouts
	// SessionIdle is how long an unused preference session stays in memory.
	SessionIdle time.Duration

	Tuning Tuning
}

// Tuning holds the ranking weights and the closure to feature table.
type Tuning struct {
	Weights         rank.Weights
	ClosureFeatures filter.ClosureMap
}

// ErrMissingJWTSecret is returned by Load when JWT_SECRET is unset.
var ErrMissingJWTSecret = errors.New("JWT_SECRET is required")

type tuningFile struct {
	Weights         rank.Weights                  `yaml:"weights"`
	ClosureFeatures map[domain.ClosureType]string `yaml:"closure_features"`
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func duration(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	d, err := cast.ToDurationE(raw)
	if err != nil || d <= 0 {
		return 0, errors.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

// Load reads .env when present, then the environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Addr:            env("ABLE_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisURL:        os.Getenv("REDIS_URL"),
		PreferenceDB:    os.Getenv("PREFERENCE_DB"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		AllowDevTokens:  cast.ToBool(os.Getenv("ALLOW_DEV_TOKENS")),
		LogMode:         env("LOG_MODE", "development"),
		LogFile:         os.Getenv("LOG_FILE"),
		CatalogWarmSpec: env("CATALOG_WARM_SPEC", "@every 5m"),
	}
	if cfg.JWTSecret == "" {
		return cfg, ErrMissingJWTSecret
	}

	defaults := catalog.DefaultTimeouts()
	var err error
	if cfg.Timeouts.Products, err = duration("PRODUCT_CACHE_TTL", defaults.Products); err != nil {
		return cfg, err
	}
	if cfg.Timeouts.Brands, err = duration("BRAND_CACHE_TTL", defaults.Brands); err != nil {
		return cfg, err
	}
	if cfg.Timeouts.Categories, err = duration("CATEGORY_CACHE_TTL", defaults.Categories); err != nil {
		return cfg, err
	}
	if cfg.Timeouts.Features, err = duration("FEATURE_CACHE_TTL", defaults.Features); err != nil {
		return cfg, err
	}

	if cfg.SessionIdle, err = duration("SESSION_IDLE_TTL", preference.DefaultIdleTimeout); err != nil {
		return cfg, err
	}

	cfg.Tuning, err = LoadTuning(os.Getenv("TUNING_FILE"))
	return cfg, err
}

// LoadTuning reads a YAML tuning file. Missing weights keep their defaults;
// a closure_features table replaces the built-in one. An empty path yields
// the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := Tuning{Weights: rank.DefaultWeights(), ClosureFeatures: filter.DefaultClosureMap()}
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, errors.Wrap(err, "read tuning file")
	}
	doc := tuningFile{Weights: t.Weights}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return t, errors.Wrapf(err, "parse tuning file %s", path)
	}
	t.Weights = doc.Weights
	if len(doc.ClosureFeatures) > 0 {
		t.ClosureFeatures = filter.ClosureMap(doc.ClosureFeatures)
	}
	return t, nil
}
