package core

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvName is the variable selecting which .env files are loaded.
const EnvName = "MOOHUB_ENV"

// Config carries the secrets and upstream settings that come from the
// environment rather than from command-line flags.
type Config struct {
	Env string

	// BaseURL is the externally visible address, used for the OAuth redirect.
	BaseURL string

	GoogleClientID     string
	GoogleClientSecret string

	// Session cookie keys. The hash key is required; the block key enables
	// encryption when set (16, 24 or 32 bytes).
	SessionHashKey  string
	SessionBlockKey string

	OpenWeatherAPIKey string
	WeatherCity       string
}

// LoadDotEnvs loads .env files following the dotenv convention. Files that
// are loaded first win, since godotenv never overrides variables that are
// already set.
func LoadDotEnvs(dir string) {
	env := os.Getenv(EnvName)
	if env == "" {
		env = "dev"
	}
	prefix := ""
	if dir != "" {
		prefix = dir + string(os.PathSeparator)
	}

	// .env.[env].local has highest priority and usually holds the OAuth secrets.
	_ = godotenv.Load(prefix + ".env." + env + ".local")
	_ = godotenv.Load(prefix + ".env.local")
	_ = godotenv.Load(prefix + ".env." + env)
	_ = godotenv.Load(prefix + ".env")
}

// ConfigFromEnv reads the configuration from the process environment.
func ConfigFromEnv(baseURL string) (Config, error) {
	cfg := Config{
		Env:                getenv(EnvName, "dev"),
		BaseURL:            baseURL,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		SessionHashKey:     os.Getenv("SESSION_HASH_KEY"),
		SessionBlockKey:    os.Getenv("SESSION_BLOCK_KEY"),
		OpenWeatherAPIKey:  os.Getenv("OPENWEATHER_API_KEY"),
		WeatherCity:        getenv("WEATHER_CITY", "Seoul"),
	}
	if cfg.SessionHashKey == "" {
		return Config{}, fmt.Errorf("SESSION_HASH_KEY must be set")
	}
	switch len(cfg.SessionBlockKey) {
	case 0, 16, 24, 32:
	default:
		return Config{}, fmt.Errorf("SESSION_BLOCK_KEY must be 16, 24 or 32 bytes, got %d", len(cfg.SessionBlockKey))
	}
	return cfg, nil
}

// OAuthEnabled reports whether Google sign-in is configured.
func (c Config) OAuthEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
