package config // package config loads application configuration from environment variables

import (
	"errors"
	"fmt"
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"strings"
	"time"
)

// InsecureJWTSecret is the signing secret used when JWT_SECRET is not set.
// It is public knowledge and must never be used outside local development;
// Load refuses it when APP_ENV is "prod".
const InsecureJWTSecret = "your-secret-key-change-in-production"

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env         string        // application environment (e.g. "dev", "prod")
	Port        string        // HTTP port to listen on
	DBUser      string        // database username
	DBPass      string        // database password (optional)
	DBHost      string        // database host address
	DBPort      string        // database port number
	DBName      string        // database name
	JWTSecret   string        // secret used to sign JWTs
	TokenTTL    time.Duration // lifetime of issued access tokens
	BcryptCost  int           // bcrypt cost for password hashing
	CORSOrigins []string      // origins allowed by the CORS middleware
}

// IsProd reports whether the service runs in the production environment.
func (c Config) IsProd() bool { return c.Env == "prod" }

// UsesInsecureSecret reports whether tokens are signed with the documented
// development default.
func (c Config) UsesInsecureSecret() bool { return c.JWTSecret == InsecureJWTSecret }

// Load reads configuration values from environment variables and returns a
// Config.  Unset variables fall back to development defaults; malformed
// numbers or durations are reported as errors rather than silently ignored.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Env:         getenv("APP_ENV", "dev"),
		Port:        getenv("APP_PORT", "3001"),
		DBUser:      getenv("DB_USER", "todo"),
		DBPass:      os.Getenv("DB_PASS"), // empty allowed
		DBHost:      getenv("DB_HOST", "127.0.0.1"),
		DBPort:      getenv("DB_PORT", "3306"),
		DBName:      getenv("DB_NAME", "todo"),
		JWTSecret:   getenv("JWT_SECRET", InsecureJWTSecret),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "*")),
	}

	ttl, err := envDuration("TOKEN_TTL", 24*time.Hour)
	errs = append(errs, err)
	cfg.TokenTTL = ttl

	cost, err := envInt("BCRYPT_COST", 10)
	errs = append(errs, err)
	cfg.BcryptCost = cost

	if cfg.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL))
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST out of range: %d", cfg.BcryptCost))
	}
	if cfg.IsProd() && cfg.UsesInsecureSecret() {
		errs = append(errs, errors.New("JWT_SECRET must be set in prod"))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// getenv returns the value of key or def when it is unset or empty.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt is like getenv but converts the retrieved string into an integer.
func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def, fmt.Errorf("invalid int for %s: %q", key, s)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def, fmt.Errorf("invalid duration for %s: %q", key, s)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
